package soma

import (
	"testing"

	"github.com/soma-lang/soma/internal/fileinput"
	"github.com/stretchr/testify/assert"
)

func TestEqualCrossKindIsFalseNotError(t *testing.T) {
	assert.False(t, Int64(0).Equal(False), "Int 0 and Bool False must not compare equal")
	assert.False(t, Str("").Equal(Void), "String and Void must not compare equal")
}

func TestEqualSameKindSameValue(t *testing.T) {
	assert.True(t, Int64(7).Equal(Int64(7)))
	assert.False(t, Int64(7).Equal(Int64(8)))
	assert.True(t, Str("x").Equal(Str("x")))
	assert.True(t, Void.Equal(Void))
	assert.True(t, Nil.Equal(Nil))
	assert.False(t, Void.Equal(Nil), "Void and Nil are distinct sentinels")
}

func TestEqualBlocksByIdentity(t *testing.T) {
	a := Value{Kind: KindBlock, Block: 1}
	b := Value{Kind: KindBlock, Block: 1}
	c := Value{Kind: KindBlock, Block: 2}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestCallable(t *testing.T) {
	assert.True(t, Value{Kind: KindBlock}.Callable())
	assert.True(t, Value{Kind: KindBuiltin, Builtin: func(*VM, fileinput.Position) {}}.Callable())
	assert.False(t, Int64(1).Callable())
	assert.False(t, Void.Callable())
}

func TestIsTruthyOnlyTrueSingletonIsTruthy(t *testing.T) {
	assert.True(t, True.IsTruthy())
	assert.False(t, False.IsTruthy())
	assert.False(t, Void.IsTruthy())
	assert.False(t, Int64(1).IsTruthy(), "IsTruthy is not a general coercion, only Bool is meaningful")
}

func TestCanonicalString(t *testing.T) {
	assert.Equal(t, "42", Int64(42).CanonicalString())
	assert.Equal(t, "True", True.CanonicalString())
	assert.Equal(t, "False", False.CanonicalString())
	assert.Equal(t, "Void", Void.CanonicalString())
	assert.Equal(t, "Nil", Nil.CanonicalString())
	assert.Equal(t, "hi", Str("hi").CanonicalString())
}

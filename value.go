package soma

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/soma-lang/soma/internal/cellarena"
	"github.com/soma-lang/soma/internal/fileinput"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindVoid Kind = iota
	KindNil
	KindBool
	KindInt
	KindString
	KindBlock
	KindCellRef
	KindForeign
	KindBuiltin
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "Void"
	case KindNil:
		return "Nil"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindString:
		return "String"
	case KindBlock:
		return "Block"
	case KindCellRef:
		return "CellRef"
	case KindForeign:
		return "Foreign"
	case KindBuiltin:
		return "Builtin"
	default:
		return "?"
	}
}

// BuiltinFunc is the native Go shape of a built-in or extension-registered
// callable. It is handed the VM (to manipulate the AL and resolve further
// paths) and the source position of the Exec/ExecTop instruction that
// invoked it, for diagnostics.
type BuiltinFunc func(vm *VM, pos fileinput.Position)

// Value is SOMA's tagged variant. Void and Nil are system/user absent
// sentinels respectively (see the package doc in vm.go); Bool, Int and String are ordinary
// scalars; Block and CellRef carry stable identities (a BlockID into the
// VM's block table, or a cellarena.ID into a Cell graph); Foreign wraps an
// opaque host object supplied by an extension; Builtin wraps a native Go
// callable — the uniform-dispatch mechanism treats Block and Builtin Cells
// identically (see dispatch.go).
type Value struct {
	Kind    Kind
	Int     int64
	Str     string
	Block   BlockID
	Cell    cellarena.ID
	Foreign interface{}
	Builtin BuiltinFunc
}

// Singleton values. Void and the two Bools are true singletons: every
// Value of that Kind compares equal regardless of how it was produced.
var (
	Void  = Value{Kind: KindVoid}
	Nil   = Value{Kind: KindNil}
	True  = Value{Kind: KindBool, Int: 1}
	False = Value{Kind: KindBool, Int: 0}
)

// Bool converts a Go bool to the corresponding SOMA singleton.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Int64 wraps an int64 as an Int Value.
func Int64(i int64) Value { return Value{Kind: KindInt, Int: i} }

// Str wraps a string as a String Value.
func Str(s string) Value { return Value{Kind: KindString, Str: s} }

// Callable reports whether v is something Exec/ExecTop may invoke: a
// user-defined Block or a native Builtin. Every other Kind is "not
// executable".
func (v Value) Callable() bool { return v.Kind == KindBlock || v.Kind == KindBuiltin }

// IsTruthy reports whether v is the True singleton; used only by built-ins
// that have already asserted v.Kind == KindBool (choose, and the stdlib's
// not/and/or), never as a general-purpose "truthiness" coercion — SOMA has
// none, per spec.
func (v Value) IsTruthy() bool { return v.Kind == KindBool && v.Int != 0 }

// Equal treats equality as kind-equal-and-value-equal; a cross-kind
// comparison is simply False, not an error.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindVoid, KindNil:
		return true
	case KindBool, KindInt:
		return v.Int == o.Int
	case KindString:
		return v.Str == o.Str
	case KindBlock:
		return v.Block == o.Block
	case KindCellRef:
		return v.Cell == o.Cell
	case KindForeign:
		return reflect.DeepEqual(v.Foreign, o.Foreign)
	case KindBuiltin:
		if v.Builtin == nil || o.Builtin == nil {
			return v.Builtin == nil && o.Builtin == nil
		}
		return reflect.ValueOf(v.Builtin).Pointer() == reflect.ValueOf(o.Builtin).Pointer()
	default:
		return false
	}
}

// CanonicalString renders v the way toString and print do: integers in base
// 10, True/False/Void/Nil as those words, Blocks as an opaque identity
// token. Foreign values defer to fmt.Stringer if implemented, else a
// generic placeholder — extensions that want a nicer rendering should
// implement fmt.Stringer on their Foreign payload.
func (v Value) CanonicalString() string {
	switch v.Kind {
	case KindVoid:
		return "Void"
	case KindNil:
		return "Nil"
	case KindBool:
		if v.Int != 0 {
			return "True"
		}
		return "False"
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindString:
		return v.Str
	case KindBlock:
		return fmt.Sprintf("<block %d>", v.Block)
	case KindCellRef:
		return fmt.Sprintf("<cellref %d>", v.Cell)
	case KindForeign:
		if s, ok := v.Foreign.(fmt.Stringer); ok {
			return s.String()
		}
		return fmt.Sprintf("<foreign %T>", v.Foreign)
	case KindBuiltin:
		return "<builtin>"
	default:
		return "<?>"
	}
}

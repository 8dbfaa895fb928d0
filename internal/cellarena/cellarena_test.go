package cellarena_test

import (
	"testing"

	"github.com/soma-lang/soma/internal/cellarena"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocAndGet(t *testing.T) {
	a := cellarena.New()
	id := a.Alloc("root")
	require.Equal(t, cellarena.ID(0), id)
	assert.Equal(t, "root", a.Get(id).Value)
	assert.Equal(t, 1, a.Len())

	id2 := a.Alloc(42)
	assert.Equal(t, cellarena.ID(1), id2)
	assert.Equal(t, 42, a.Get(id2).Value)
}

func TestChildLazyCreation(t *testing.T) {
	a := cellarena.New()
	root := a.Alloc(nil)

	_, ok := a.LookupChild(root, "x")
	assert.False(t, ok, "child should not exist before first access")

	child := a.Child(root, "x", func() interface{} { return nil })
	again := a.Child(root, "x", func() interface{} { return "should not be used" })
	assert.Equal(t, child, again, "repeat Child access must return the same id")

	got, ok := a.LookupChild(root, "x")
	require.True(t, ok)
	assert.Equal(t, child, got)
}

func TestCyclicGraphTolerated(t *testing.T) {
	a := cellarena.New()
	n1 := a.Alloc(nil)
	n2 := a.Child(n1, "next", func() interface{} { return nil })

	// Point n2's "next" back at n1 to form a cycle; the arena must not care.
	a.Get(n2).Children = map[string]cellarena.ID{"next": n1}

	got, ok := a.LookupChild(n2, "next")
	require.True(t, ok)
	assert.Equal(t, n1, got)
}

func TestGrowthAcrossPageBoundary(t *testing.T) {
	a := &cellarena.Arena{PageSize: 2}
	var last cellarena.ID
	for i := 0; i < 10; i++ {
		last = a.Alloc(i)
	}
	assert.Equal(t, 10, a.Len())
	assert.Equal(t, 9, a.Get(last).Value)
}

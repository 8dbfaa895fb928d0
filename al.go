package soma

import "github.com/soma-lang/soma/internal/fileinput"

// AL is the Accumulator List: the ordered value channel shared by every
// built-in, user block, and extension callable. It is initialized with a
// single Void sentinel at position 0 (I2); every AL-consuming primitive
// must stop before consuming that sentinel.
type AL struct {
	values []Value
}

func newAL() *AL {
	return &AL{values: []Value{Void}}
}

// Push appends v to the top of the AL.
func (al *AL) Push(v Value) {
	al.values = append(al.values, v)
}

// Len reports the AL's current depth, sentinel included.
func (al *AL) Len() int { return len(al.values) }

// Top returns the AL's top value without removing it. Only valid when
// Len() > 0, which is always true once the sentinel is in place.
func (al *AL) Top() Value { return al.values[len(al.values)-1] }

// Pop removes and returns the AL's top value. Popping the bottom Void
// sentinel is never permitted — doing so halts the VM with ALUnderflow,
// citing who (the primitive or instruction name) attempted it.
func (al *AL) Pop(who string, pos fileinput.Position) Value {
	if len(al.values) <= 1 {
		panic(haltError{newError(ALUnderflow, pos, "%s: AL underflow", who)})
	}
	v := al.values[len(al.values)-1]
	al.values = al.values[:len(al.values)-1]
	return v
}

// PopN pops n values and returns them in AL order (bottom-most of the
// popped group first), i.e. the same left-to-right order they'd be listed
// in "[ ... a b c ]" notation.
func (al *AL) PopN(who string, pos fileinput.Position, n int) []Value {
	out := make([]Value, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = al.Pop(who, pos)
	}
	return out
}

// Snapshot returns a copy of the AL's contents, bottom-to-top, for
// diagnostics (-dump) and test assertions. It never aliases AL's backing
// array.
func (al *AL) Snapshot() []Value {
	out := make([]Value, len(al.values))
	copy(out, al.values)
	return out
}

package soma

import "github.com/soma-lang/soma/internal/cellarena"

// cellValue reads the Value held at id, defaulting to Void for a Cell that
// exists only as an intermediate path segment and was never itself given a
// value (e.g. the "a" in "a.b.c" after "42 !a.b.c").
func cellValue(a *cellarena.Arena, id cellarena.ID) Value {
	v := a.Get(id).Value
	if v == nil {
		return Void
	}
	return v.(Value)
}

func setCellValue(a *cellarena.Arena, id cellarena.ID, v Value) {
	a.Get(id).Value = v
}

// resolvePath walks path segment by segment from root, never creating
// Cells. ok is false the moment a segment is absent.
func resolvePath(a *cellarena.Arena, root cellarena.ID, path []string) (cellarena.ID, bool) {
	id := root
	for _, seg := range path {
		next, ok := a.LookupChild(id, seg)
		if !ok {
			return 0, false
		}
		id = next
	}
	return id, true
}

// resolveOrCreatePath walks path from root, lazily creating Void-valued
// Cells along the way (the mechanism behind "42 !a.b.c" creating "a" and
// "a.b" on the fly).
func resolveOrCreatePath(a *cellarena.Arena, root cellarena.ID, path []string) cellarena.ID {
	id := root
	for _, seg := range path {
		id = a.Child(id, seg, voidValue)
	}
	return id
}

func voidValue() interface{} { return Void }

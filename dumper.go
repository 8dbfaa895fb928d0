package soma

import (
	"fmt"
	"sort"
	"strings"

	"github.com/soma-lang/soma/internal/cellarena"
)

// dump renders a diagnostic snapshot of the AL, the active Register, and
// however many Store paths have been bound so far, for the CLI's -dump
// flag. It walks each Cell's named children recursively but never follows
// a CellRef value (it prints the ref's ID instead), since CellRef-connected
// graphs may be cyclic (§9).
func (vm *VM) dump() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "AL (bottom..top):\n")
	for i, v := range vm.al.Snapshot() {
		fmt.Fprintf(&sb, "  [%d] %v %s\n", i, v.Kind, v.CanonicalString())
	}
	fmt.Fprintf(&sb, "Register (depth %d):\n", len(vm.registers))
	if len(vm.registers) > 0 {
		dumpCell(&sb, vm.arena, vm.currentRegister(), "  ")
	}
	fmt.Fprintf(&sb, "Store:\n")
	dumpCell(&sb, vm.arena, vm.store, "  ")
	return sb.String()
}

func dumpCell(sb *strings.Builder, a *cellarena.Arena, id cellarena.ID, indent string) {
	rec := a.Get(id)
	v, _ := rec.Value.(Value)
	fmt.Fprintf(sb, "%s(%d) = %v %s\n", indent, id, v.Kind, v.CanonicalString())
	names := make([]string, 0, len(rec.Children))
	for name := range rec.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(sb, "%s.%s ->\n", indent, name)
		dumpCell(sb, a, rec.Children[name], indent+"  ")
	}
}

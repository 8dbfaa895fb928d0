// Package envx is the "env" extension: use.env.get and use.env.set over
// the host process's environment variables, following the dual-return FFI
// discipline for the one call that trivially fails (an unset variable).
package envx

import (
	"fmt"
	"os"

	"github.com/soma-lang/soma"
	"github.com/soma-lang/soma/internal/fileinput"
)

type extension struct{}

// New returns the "env" extension, registrable under that name in a
// soma.MapRegistry.
func New() soma.Extension { return extension{} }

func (extension) Setup() string { return "" }

func (extension) Register(reg *soma.Registrar) error {
	if err := reg.Builtin("get", get); err != nil {
		return err
	}
	return reg.Builtin("set", set)
}

// get pops a variable name and pushes [value, Void] if set, or [Void,
// errorString] if not — an unset variable is the ordinary, expected
// failure mode the dual-return discipline exists for, not a host
// malfunction, so it never halts the VM.
func get(vm *soma.VM, pos fileinput.Position) {
	name := vm.Pop("use.env.get", pos)
	if name.Kind != soma.KindString {
		vm.Halt(soma.TypeError, pos, "use.env.get: expected a String name (got %v)", name.Kind)
	}
	val, ok := os.LookupEnv(name.Str)
	if !ok {
		vm.Push(soma.Void)
		vm.Push(soma.Str(fmt.Sprintf("use.env.get: %q is not set", name.Str)))
		return
	}
	vm.Push(soma.Str(val))
	vm.Push(soma.Void)
}

// set pops a value then a name (name pushed first, so it sits deeper) and
// sets the host environment variable, pushing [Void, Void] on success or
// [Void, errorString] if the host call itself fails.
func set(vm *soma.VM, pos fileinput.Position) {
	args := vm.PopN("use.env.set", pos, 2)
	name, val := args[0], args[1]
	if name.Kind != soma.KindString || val.Kind != soma.KindString {
		vm.Halt(soma.TypeError, pos, "use.env.set: expected two Strings (name, value)")
	}
	if err := os.Setenv(name.Str, val.Str); err != nil {
		vm.Push(soma.Void)
		vm.Push(soma.Str(fmt.Sprintf("use.env.set: %v", err)))
		return
	}
	vm.Push(soma.Void)
	vm.Push(soma.Void)
}

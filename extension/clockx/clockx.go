// Package clockx is the "clock" extension: use.clock.now and
// use.clock.sleep wrapping time.Now and time.Sleep. sleep honors the VM's
// context.Context, so a run under the CLI's -timeout flag can interrupt a
// blocked sleep rather than running past the deadline — extension calls
// are the one place control may leave the VM for an unbounded time.
package clockx

import (
	"fmt"
	"time"

	"github.com/soma-lang/soma"
	"github.com/soma-lang/soma/internal/fileinput"
)

type extension struct{}

// New returns the "clock" extension, registrable under that name in a
// soma.MapRegistry.
func New() soma.Extension { return extension{} }

func (extension) Setup() string { return "" }

func (extension) Register(reg *soma.Registrar) error {
	if err := reg.Builtin("now", now); err != nil {
		return err
	}
	return reg.Builtin("sleep", sleep)
}

// now pushes the current Unix time in nanoseconds as an Int. It cannot
// fail, so unlike sleep it skips the dual-return wrapper.
func now(vm *soma.VM, pos fileinput.Position) {
	vm.Push(soma.Int64(time.Now().UnixNano()))
}

// sleep pops an Int count of milliseconds and blocks for that long, or
// until the VM's context is done, whichever comes first. Pushes [Nil,
// Void] if the sleep ran to completion, [Void, errorString] if the
// context ended first.
func sleep(vm *soma.VM, pos fileinput.Position) {
	ms := vm.Pop("use.clock.sleep", pos)
	if ms.Kind != soma.KindInt {
		vm.Halt(soma.TypeError, pos, "use.clock.sleep: expected an Int (milliseconds), got %v", ms.Kind)
	}
	if ms.Int < 0 {
		vm.Halt(soma.TypeError, pos, "use.clock.sleep: duration must be non-negative (got %d)", ms.Int)
	}

	timer := time.NewTimer(time.Duration(ms.Int) * time.Millisecond)
	defer timer.Stop()

	select {
	case <-timer.C:
		vm.Push(soma.Nil)
		vm.Push(soma.Void)
	case <-vm.Context().Done():
		vm.Push(soma.Void)
		vm.Push(soma.Str(fmt.Sprintf("use.clock.sleep: %v", vm.Context().Err())))
	}
}

// Package regexpx is the "regex" extension: use.regex.match wraps
// regexp.MatchString directly for a one-shot test; use.regex.compile and
// use.regex.test demonstrate a cached Foreign handle — a compiled
// *regexp.Regexp returned from one call and consumed by another.
package regexpx

import (
	"fmt"
	"regexp"

	"github.com/soma-lang/soma"
	"github.com/soma-lang/soma/internal/fileinput"
)

type extension struct{}

// New returns the "regex" extension, registrable under that name in a
// soma.MapRegistry.
func New() soma.Extension { return extension{} }

func (extension) Setup() string { return "" }

func (extension) Register(reg *soma.Registrar) error {
	if err := reg.Builtin("match", match); err != nil {
		return err
	}
	if err := reg.Builtin("compile", compile); err != nil {
		return err
	}
	return reg.Builtin("test", test)
}

// match pops a subject then a pattern and pushes [Bool, Void] on success,
// [Void, errorString] if the pattern fails to compile.
func match(vm *soma.VM, pos fileinput.Position) {
	args := vm.PopN("use.regex.match", pos, 2)
	pattern, subject := args[0], args[1]
	if pattern.Kind != soma.KindString || subject.Kind != soma.KindString {
		vm.Halt(soma.TypeError, pos, "use.regex.match: expected two Strings (pattern, subject)")
	}
	ok, err := regexp.MatchString(pattern.Str, subject.Str)
	if err != nil {
		vm.Push(soma.Void)
		vm.Push(soma.Str(fmt.Sprintf("use.regex.match: %v", err)))
		return
	}
	vm.Push(soma.Bool(ok))
	vm.Push(soma.Void)
}

// compile pops a pattern String and pushes [Foreign(*regexp.Regexp),
// Void] on success, [Void, errorString] on a bad pattern.
func compile(vm *soma.VM, pos fileinput.Position) {
	pattern := vm.Pop("use.regex.compile", pos)
	if pattern.Kind != soma.KindString {
		vm.Halt(soma.TypeError, pos, "use.regex.compile: expected a String (got %v)", pattern.Kind)
	}
	re, err := regexp.Compile(pattern.Str)
	if err != nil {
		vm.Push(soma.Void)
		vm.Push(soma.Str(fmt.Sprintf("use.regex.compile: %v", err)))
		return
	}
	vm.Push(soma.Value{Kind: soma.KindForeign, Foreign: re})
	vm.Push(soma.Void)
}

// test pops a subject String then a compiled-pattern Foreign handle (as
// produced by compile) and pushes a single Bool; it has no dual-return
// form, and a wrong argument Kind halts the VM.
func test(vm *soma.VM, pos fileinput.Position) {
	args := vm.PopN("use.regex.test", pos, 2)
	handle, subject := args[0], args[1]
	re, ok := handle.Foreign.(*regexp.Regexp)
	if handle.Kind != soma.KindForeign || !ok {
		vm.Halt(soma.TypeError, pos, "use.regex.test: expected a compiled pattern from use.regex.compile")
	}
	if subject.Kind != soma.KindString {
		vm.Halt(soma.TypeError, pos, "use.regex.test: expected a String subject (got %v)", subject.Kind)
	}
	vm.Push(soma.Bool(re.MatchString(subject.Str)))
}

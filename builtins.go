package soma

import (
	"fmt"
	"io"
	"strconv"

	"github.com/soma-lang/soma/internal/fileinput"
	"github.com/soma-lang/soma/internal/runeio"
)

// installBuiltins binds every required native primitive (§4.4) into the
// Store as an ordinary Cell whose value is a Builtin — the same uniform
// dispatch path a user-defined Block or an extension callable goes
// through (§9, "Uniform dispatch"). User code may rebind any of these
// paths; nothing here is special-cased by the dispatcher.
func installBuiltins(vm *VM) {
	bind := func(name string, fn BuiltinFunc) {
		id := resolveOrCreatePath(vm.arena, vm.store, []string{name})
		setCellValue(vm.arena, id, Value{Kind: KindBuiltin, Builtin: fn})
	}

	bind("+", arith("+", func(a, b int64) int64 { return a + b }))
	bind("-", arith("-", func(a, b int64) int64 { return a - b }))
	bind("*", arith("*", func(a, b int64) int64 { return a * b }))
	bind("/", intDiv)
	bind("%", intMod)
	bind("<", lessThan)
	bind("=", equal)

	bind("concat", concat)
	bind("toString", toStringBuiltin)
	bind("toInt", toInt)

	bind("isVoid", isVoid)
	bind("isNil", isNil)

	bind("print", printBuiltin)
	bind("readLine", readLine)

	bind("choose", choose)
	bind("chain", chain)

	bind("use", use)
}

// arith implements the binary integer arithmetic primitives (+, -, *):
// pop two Ints (bottom-most popped first, matching "2 3 >+" computing
// 2+3), push the Int result. Fixed 64-bit, wrapping on overflow the same
// way Go's own int64 arithmetic does.
func arith(name string, f func(a, b int64) int64) BuiltinFunc {
	return func(vm *VM, pos fileinput.Position) {
		args := vm.al.PopN(name, pos, 2)
		a, b := requireInt(vm, name, pos, args[0]), requireInt(vm, name, pos, args[1])
		vm.al.Push(Int64(f(a, b)))
	}
}

func intDiv(vm *VM, pos fileinput.Position) {
	args := vm.al.PopN("/", pos, 2)
	a, b := requireInt(vm, "/", pos, args[0]), requireInt(vm, "/", pos, args[1])
	if b == 0 {
		vm.halt(newError(TypeError, pos, "/: division by zero"))
	}
	vm.al.Push(Int64(a / b))
}

func intMod(vm *VM, pos fileinput.Position) {
	args := vm.al.PopN("%", pos, 2)
	a, b := requireInt(vm, "%", pos, args[0]), requireInt(vm, "%", pos, args[1])
	if b == 0 {
		vm.halt(newError(TypeError, pos, "%%: division by zero"))
	}
	vm.al.Push(Int64(a % b))
}

func lessThan(vm *VM, pos fileinput.Position) {
	args := vm.al.PopN("<", pos, 2)
	a, b := requireInt(vm, "<", pos, args[0]), requireInt(vm, "<", pos, args[1])
	vm.al.Push(Bool(a < b))
}

// equal implements the core "=" primitive the standard library's eq/neq
// build on: kind-equal-and-value-equal, cross-kind simply False (Value's
// own open-question resolution — see DESIGN.md).
func equal(vm *VM, pos fileinput.Position) {
	args := vm.al.PopN("=", pos, 2)
	vm.al.Push(Bool(args[0].Equal(args[1])))
}

func requireInt(vm *VM, name string, pos fileinput.Position, v Value) int64 {
	if v.Kind != KindInt {
		vm.halt(newError(TypeError, pos, "%s: expected an Int (got %v)", name, v.Kind))
	}
	return v.Int
}

func requireString(vm *VM, name string, pos fileinput.Position, v Value) string {
	if v.Kind != KindString {
		vm.halt(newError(TypeError, pos, "%s: expected a String (got %v)", name, v.Kind))
	}
	return v.Str
}

func concat(vm *VM, pos fileinput.Position) {
	args := vm.al.PopN("concat", pos, 2)
	a, b := requireString(vm, "concat", pos, args[0]), requireString(vm, "concat", pos, args[1])
	vm.al.Push(Str(a + b))
}

func toStringBuiltin(vm *VM, pos fileinput.Position) {
	v := vm.al.Pop("toString", pos)
	vm.al.Push(Str(v.CanonicalString()))
}

// toInt follows the dual-return discipline (§7): on success it pushes
// [Int, Void]; on a malformed string it pushes [Void, errorObject] rather
// than halting the VM, since a bad parse isn't a HostError-grade host
// failure but is still the kind of recoverable condition the discipline
// exists for — letting SOMA code decide what "not a number" means for it.
func toInt(vm *VM, pos fileinput.Position) {
	v := vm.al.Pop("toInt", pos)
	s := requireString(vm, "toInt", pos, v)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		vm.al.Push(Void)
		vm.al.Push(Str(fmt.Sprintf("toInt: not an integer: %q", s)))
		return
	}
	vm.al.Push(Int64(n))
	vm.al.Push(Void)
}

func isVoid(vm *VM, pos fileinput.Position) {
	v := vm.al.Pop("isVoid", pos)
	vm.al.Push(Bool(v.Kind == KindVoid))
}

func isNil(vm *VM, pos fileinput.Position) {
	v := vm.al.Pop("isNil", pos)
	vm.al.Push(Bool(v.Kind == KindNil))
}

// printBuiltin pops one value, writes its canonical text plus a trailing
// newline to the VM's configured output stream. Writes go through
// runeio.WriteANSIString so that embedded control runes in a String value
// are rendered consistently rather than dumped as raw UTF-8 bytes.
func printBuiltin(vm *VM, pos fileinput.Position) {
	v := vm.al.Pop("print", pos)
	if _, err := runeio.WriteANSIString(vm.out, v.CanonicalString()); err != nil {
		vm.halt(newError(HostError, pos, "print: %v", err))
	}
	if _, err := vm.out.Write([]byte{'\n'}); err != nil {
		vm.halt(newError(HostError, pos, "print: %v", err))
	}
}

// readLine reads one line from the VM's configured stdin, pushing it
// (newline stripped) as a String. At end of input it pushes the empty
// string, treating EOF as a benign boundary rather than a fatal condition
// — readLine has no dual-return form, so EOF cannot be distinguished from
// a blank line by the caller; callers that need to tell them apart should
// use an extension-provided reader instead.
func readLine(vm *VM, pos fileinput.Position) {
	line, err := vm.stdinReader().ReadString('\n')
	if err != nil && err != io.EOF {
		vm.halt(newError(HostError, pos, "readLine: %v", err))
	}
	line = trimNewline(line)
	vm.al.Push(Str(line))
}

func trimNewline(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
		if n := len(s); n > 0 && s[n-1] == '\r' {
			s = s[:n-1]
		}
	}
	return s
}

// choose implements §4.4's selection primitive: pop three values and
// push trueBlock back if cond is True, falseBlock if False, never
// executing the chosen Block itself.
//
// Argument order follows the worked end-to-end example in the language's
// testable-properties section ("True { (yes) } { (no) } >choose"), which
// pushes cond first, trueBlock second, falseBlock last (on top) — the
// opposite of that section's own one-line aside claiming cond is on top.
// The worked example is load-bearing (it names an exact expected stdout);
// the aside is treated as the documentation error here.
func choose(vm *VM, pos fileinput.Position) {
	args := vm.al.PopN("choose", pos, 3)
	cond, trueBlock, falseBlock := args[0], args[1], args[2]
	if cond.Kind != KindBool {
		vm.halt(newError(TypeError, pos, "choose: condition must be True or False (got %v)", cond.Kind))
	}
	if cond.IsTruthy() {
		vm.al.Push(trueBlock)
	} else {
		vm.al.Push(falseBlock)
	}
}

// chain is the sole looping construct (§4.4, §8): pop and invoke a Block;
// if it leaves a Block on top, chain loops on that Block; if it leaves
// Nil, chain drops it and terminates. Any other top-of-AL value is a
// TypeError — chain's driven blocks must honor this two-outcome protocol.
func chain(vm *VM, pos fileinput.Position) {
	v := vm.al.Pop("chain", pos)
	for {
		if v.Kind != KindBlock {
			vm.halt(newError(NotExecutable, pos, "chain: expected a Block to drive (got %v)", v.Kind))
		}
		vm.invokeBlock(v.Block)
		next := vm.al.Pop("chain", pos)
		switch next.Kind {
		case KindNil:
			return
		case KindBlock:
			v = next
		default:
			vm.halt(newError(TypeError, pos, "chain: driven block must leave a Block or Nil (got %v)", next.Kind))
		}
	}
}

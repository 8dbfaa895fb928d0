// Package soma implements the SOMA execution core: lexer, parser, and the
// virtual machine that runs the parsed instruction stream against the
// three state components described in the language's data model — the
// Accumulator List (AL), the Store, and the per-invocation Register.
//
// Void and Nil are deliberately distinct: Void is the system's own "no
// value here" sentinel (the AL's permanent bottom element, and the
// dual-return discipline's "no error" marker); Nil is an ordinary
// first-class value that SOMA programs use as their own "nothing" (e.g.
// a list terminator). Built-ins never treat one as a stand-in for the
// other.
package soma

import (
	"bufio"
	"context"
	"errors"
	"io"
	"io/ioutil"
	"sync"

	"github.com/soma-lang/soma/internal/cellarena"
	"github.com/soma-lang/soma/internal/fileinput"
	"github.com/soma-lang/soma/internal/flushio"
	"github.com/soma-lang/soma/internal/panicerr"
	"github.com/soma-lang/soma/lexer"
	"github.com/soma-lang/soma/parser"
	"github.com/soma-lang/soma/stdlib"
	"golang.org/x/sync/singleflight"
)

// VM holds every piece of execution state described in §4.3 of the
// language's data model: the AL, the Store root Cell, a stack of Register
// roots (one per active block invocation, only the top addressable as
// "_"), the block table, and the set of loaded extensions.
type VM struct {
	inputQueue []io.Reader

	arena     *cellarena.Arena
	store     cellarena.ID
	registers []cellarena.ID
	blocks    *blockTable

	al  *AL
	ctx context.Context

	out   flushio.WriteFlusher
	stdin io.Reader
	stdr  *bufio.Reader

	trace func(mess string, args ...interface{})

	noStdlib   bool
	extensions ExtensionRegistry
	loadedMu   sync.Mutex
	loaded     map[string]bool
	loadGroup  singleflight.Group
}

// New builds a VM ready to run. Queued input sources (WithInput) are
// lexed and executed, in order, by Run; the bundled standard library runs
// first unless WithNoStdlib is given.
func New(opts ...VMOption) *VM {
	vm := &VM{
		arena:  cellarena.New(),
		blocks: newBlockTable(nil),
		al:     newAL(),
		loaded: make(map[string]bool),
	}
	vm.store = vm.arena.Alloc(Void)
	defaultOptions.apply(vm)
	VMOptions(opts...).apply(vm)
	installBuiltins(vm)
	return vm
}

// Run lexes, parses, and executes every source queued via WithInput (the
// stdlib first, unless disabled), returning the first fatal error
// encountered — a LexError, ParseError, or one of the VM-internal halt
// kinds (UndefinedPath, NotExecutable, ALUnderflow, TypeError,
// ExtensionError) — or ctx's own error once its deadline has passed. An
// extension's HostError never reaches here: it is surfaced to SOMA code on
// the AL per the dual-return discipline. The one HostError Run does return
// is print's failure to write its output.
func (vm *VM) Run(ctx context.Context) error {
	err := panicerr.Recover("soma.VM", func() error {
		return vm.run(ctx)
	})
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var he haltError
	if errors.As(err, &he) {
		return he.error
	}
	return err
}

func (vm *VM) run(ctx context.Context) error {
	vm.ctx = ctx
	if vm.out == nil {
		vm.out = flushio.NewWriteFlusher(ioutil.Discard)
	}
	defer vm.out.Flush()

	if !vm.noStdlib {
		if err := vm.loadSource(stdlib.NewReader()); err != nil {
			return err
		}
	}

	return vm.lexSourceQueue(ctx)
}

// lexSourceQueue drains whatever srcs remain in vm.inputQueue (populated
// by WithInput) by lexing and parsing each as one program, in turn.
func (vm *VM) lexSourceQueue(ctx context.Context) error {
	for len(vm.inputQueue) > 0 {
		src := vm.inputQueue[0]
		vm.inputQueue = vm.inputQueue[1:]
		if err := vm.loadSource(src); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// loadSource lexes and parses src as one complete program, merges its
// blocks into the VM's running block table, and executes its top-level
// instructions against the AL and the Store. "_"-rooted paths at top level
// resolve against the implicit Register that execTopLevel provides.
func (vm *VM) loadSource(src io.Reader) error {
	lx := lexer.New(src)
	prog, err := parser.New(lx).Parse()
	if err != nil {
		var lerr lexer.Error
		if errors.As(err, &lerr) {
			return newError(LexError, lerr.Pos, "%s", lerr.Message)
		}
		var perr parser.Error
		if errors.As(err, &perr) {
			return newError(ParseError, perr.Pos, "%s", perr.Message)
		}
		return err
	}
	prog = vm.blocks.extend(prog)
	vm.execTopLevel(prog.Instructions)
	return nil
}

// execTopLevel runs instrs with no Register on the stack: any "_"-rooted
// path used at top level resolves against an implicit empty Register that
// exists only for the duration of the call, matching "every block
// invocation" semantics without requiring user source to be wrapped in a
// synthetic block.
func (vm *VM) execTopLevel(instrs []parser.Instruction) {
	vm.pushRegister()
	defer vm.popRegister()
	vm.exec(instrs)
}

func (vm *VM) pushRegister() {
	vm.registers = append(vm.registers, vm.arena.Alloc(Void))
}

func (vm *VM) popRegister() {
	vm.registers = vm.registers[:len(vm.registers)-1]
}

func (vm *VM) currentRegister() cellarena.ID {
	return vm.registers[len(vm.registers)-1]
}

func (vm *VM) rebindRegister(id cellarena.ID) {
	vm.registers[len(vm.registers)-1] = id
}

// stdinReader lazily wraps vm.stdin (or an empty reader, if none was
// configured) in a bufio.Reader for line-oriented reads by readLine.
func (vm *VM) stdinReader() *bufio.Reader {
	if vm.stdr == nil {
		r := vm.stdin
		if r == nil {
			r = emptyReader{}
		}
		vm.stdr = bufio.NewReader(r)
	}
	return vm.stdr
}

type emptyReader struct{}

func (emptyReader) Read([]byte) (int, error) { return 0, io.EOF }

// Dump renders a diagnostic snapshot of the AL, Store, and active Register
// for the -dump CLI flag; see dumper.go.
func (vm *VM) Dump() string { return vm.dump() }

// Context returns the context.Context the current Run call was given,
// honoring any deadline or cancellation set via -timeout. Extension
// callables that may block (see extension/clockx) should select on it
// rather than blocking unconditionally. Outside of Run, returns
// context.Background().
func (vm *VM) Context() context.Context {
	if vm.ctx == nil {
		return context.Background()
	}
	return vm.ctx
}

// ALSnapshot returns the AL's contents bottom-to-top, excluding the
// permanent Void sentinel at position 0 — the part of the AL a SOMA
// program actually pushed, which is what the test-file format's
// EXPECT_AL directive (see sometest) describes.
func (vm *VM) ALSnapshot() []Value {
	snap := vm.al.Snapshot()
	if len(snap) <= 1 {
		return nil
	}
	return snap[1:]
}

// Pop, PopN, and Push let an extension's BuiltinFunc manipulate the AL
// exactly as a core built-in does (see builtins.go) — extensions live
// outside this package, so the AL itself cannot be reached directly.

// Pop removes and returns the AL's top value, halting with ALUnderflow
// (naming who) if only the sentinel remains.
func (vm *VM) Pop(who string, pos fileinput.Position) Value { return vm.al.Pop(who, pos) }

// PopN pops n values, bottom-most of the popped group first.
func (vm *VM) PopN(who string, pos fileinput.Position, n int) []Value {
	return vm.al.PopN(who, pos, n)
}

// Push appends v to the top of the AL.
func (vm *VM) Push(v Value) { vm.al.Push(v) }

// Halt aborts the running VM with a constructed Error, to be recovered at
// the Run boundary — an extension's equivalent of a core built-in halting
// via builtins.go's newError+halt pair.
func (vm *VM) Halt(kind ErrorKind, pos fileinput.Position, format string, args ...interface{}) {
	vm.halt(newError(kind, pos, format, args...))
}

package soma

import (
	"github.com/soma-lang/soma/internal/cellarena"
	"github.com/soma-lang/soma/internal/fileinput"
	"github.com/soma-lang/soma/lexer"
	"github.com/soma-lang/soma/parser"
)

// exec runs instrs against vm's AL, Store, and whatever Register is
// currently on top of the stack. It is the single place every instruction
// kind is interpreted — top-level program bodies and block invocations
// both funnel through it.
func (vm *VM) exec(instrs []parser.Instruction) {
	for _, instr := range instrs {
		vm.execOne(instr)
	}
}

func (vm *VM) execOne(instr parser.Instruction) {
	if vm.trace != nil {
		vm.trace("%v %v", instr.Op, instr.Pos)
	}
	switch instr.Op {
	case parser.PushLiteral:
		vm.al.Push(literalValue(instr.Literal))

	case parser.PushBlock:
		vm.al.Push(Value{Kind: KindBlock, Block: instr.Block})

	case parser.PushPathValue:
		root, path := vm.resolveRoot(instr.Path)
		id, ok := resolvePath(vm.arena, root, path)
		if !ok {
			vm.halt(newError(UndefinedPath, instr.Pos, "undefined path %v", instr.Path))
		}
		vm.al.Push(cellValue(vm.arena, id))

	case parser.PushCellRef:
		root, path := vm.resolveRoot(instr.Path)
		id, ok := resolvePath(vm.arena, root, path)
		if !ok {
			vm.halt(newError(UndefinedPath, instr.Pos, "undefined path %v", instr.Path))
		}
		vm.al.Push(Value{Kind: KindCellRef, Cell: id})

	case parser.Set:
		vm.execSet(instr)

	case parser.Exec:
		root, path := vm.resolveRoot(instr.Path)
		id, ok := resolvePath(vm.arena, root, path)
		if !ok {
			vm.halt(newError(UndefinedPath, instr.Pos, "undefined path %v", instr.Path))
		}
		v := cellValue(vm.arena, id)
		vm.invokeOrPush(v, instr.Path.String(), instr.Pos)

	case parser.ExecTop:
		v := vm.al.Pop("^", instr.Pos)
		if v.Kind != KindBlock {
			vm.halt(newError(NotExecutable, instr.Pos, "^: top of AL is not a Block (got %v)", v.Kind))
		}
		vm.invokeBlock(v.Block)

	default:
		vm.halt(newError(ParseError, instr.Pos, "unknown instruction op %v", instr.Op))
	}
}

// execSet implements the Setter instruction, including the special
// "!_." case: setting the bare Register path rebinds the current Register
// root to the CellRef popped from the AL, rather than writing a value
// into a Cell named "_" (there is no such Cell — "_" names the root
// itself).
func (vm *VM) execSet(instr parser.Instruction) {
	if instr.Path.RegisterRooted() && len(instr.Path) == 1 {
		v := vm.al.Pop("!_.", instr.Pos)
		if v.Kind != KindCellRef {
			vm.halt(newError(TypeError, instr.Pos, "!_.  requires a CellRef on top of the AL (got %v)", v.Kind))
		}
		vm.rebindRegister(v.Cell)
		return
	}
	v := vm.al.Pop(instr.Path.String(), instr.Pos)
	root, path := vm.resolveRoot(instr.Path)
	id := resolveOrCreatePath(vm.arena, root, path)
	setCellValue(vm.arena, id, v)
}

// resolveRoot implements §4.3's path-resolution rule: a path whose first
// segment is the bare underscore is rooted in the current Register (that
// segment itself is not part of the walk); every other path is rooted in
// the Store, first segment included.
func (vm *VM) resolveRoot(path lexer.Path) (cellarena.ID, []string) {
	if path.RegisterRooted() {
		return vm.currentRegister(), path[1:]
	}
	return vm.store, path
}

// invokeOrPush is Exec's dispatch rule: a Block or Builtin Cell value is
// invoked; any other Kind is NotExecutable (§4.3: "if the value is any
// other kind, this is a runtime error").
func (vm *VM) invokeOrPush(v Value, name string, pos fileinput.Position) {
	switch v.Kind {
	case KindBlock:
		vm.invokeBlock(v.Block)
	case KindBuiltin:
		v.Builtin(vm, pos)
	default:
		vm.halt(newError(NotExecutable, pos, "%s: value of kind %v is not executable", name, v.Kind))
	}
}

// invokeBlock is block invocation per §4.3: a fresh Register is pushed,
// the block's instructions run against the shared AL, and the Register is
// popped again on every exit path — normal completion or a halting error,
// since halt unwinds via Go panic and this defer still runs.
func (vm *VM) invokeBlock(id BlockID) {
	vm.pushRegister()
	defer vm.popRegister()
	vm.exec(vm.blocks.instructions(id))
}

// halt aborts the running VM with err, to be recovered at the Run
// boundary. It is how every built-in and dispatch step reports a fatal
// (non-HostError) condition — there is no user-visible unwinding
// primitive in SOMA itself (§4.3); this panic/recover pair is purely the
// Go-level plumbing that gets control back to Run.
func (vm *VM) halt(err Error) {
	panic(haltError{err})
}

func literalValue(lit parser.Literal) Value {
	switch lit.Kind {
	case lexer.Int:
		return Int64(lit.Int)
	case lexer.String:
		return Str(lit.Str)
	case lexer.Nil:
		return Nil
	case lexer.Void:
		return Void
	case lexer.True:
		return True
	case lexer.False:
		return False
	default:
		return Void
	}
}

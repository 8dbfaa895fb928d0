package soma

import "github.com/soma-lang/soma/parser"

// BlockID is a Block's stable parse-time identity, carried straight
// through from parser.BlockID: two textually identical `{ ... }` literals
// parsed as separate occurrences get distinct IDs.
type BlockID = parser.BlockID

// blockTable holds every Block parsed out of a program, indexed by
// BlockID, plus the instructions each one runs when invoked.
type blockTable struct {
	blocks []parser.Block
}

func newBlockTable(blocks []parser.Block) *blockTable {
	return &blockTable{blocks: blocks}
}

func (t *blockTable) instructions(id BlockID) []parser.Instruction {
	return t.blocks[id].Instructions
}

// extend appends a parser.Program's blocks to the table, offsetting every
// BlockID the program's instructions reference so they still point at the
// right entry. Used when a VM loads more than one program (stdlib, then
// user source) into the same running block table.
func (t *blockTable) extend(prog parser.Program) parser.Program {
	offset := BlockID(len(t.blocks))
	for _, b := range prog.Blocks {
		t.blocks = append(t.blocks, parser.Block{Instructions: offsetInstructions(b.Instructions, offset)})
	}
	return parser.Program{
		Instructions: offsetInstructions(prog.Instructions, offset),
		Blocks:       nil, // callers only need the (now correctly offset) top-level Instructions
	}
}

func offsetInstructions(instrs []parser.Instruction, offset BlockID) []parser.Instruction {
	out := make([]parser.Instruction, len(instrs))
	for i, instr := range instrs {
		if instr.Op == parser.PushBlock {
			instr.Block += offset
		}
		out[i] = instr
	}
	return out
}

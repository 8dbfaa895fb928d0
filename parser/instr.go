// Package parser turns a lexer.Token stream into a linear instruction
// stream with nested block values captured as first-class literals at
// parse time.
package parser

import (
	"github.com/soma-lang/soma/internal/fileinput"
	"github.com/soma-lang/soma/lexer"
)

// Op identifies an Instruction's operation.
type Op uint8

const (
	PushLiteral Op = iota
	PushBlock
	PushPathValue
	PushCellRef
	Set
	Exec
	ExecTop
)

func (op Op) String() string {
	switch op {
	case PushLiteral:
		return "PushLiteral"
	case PushBlock:
		return "PushBlock"
	case PushPathValue:
		return "PushPathValue"
	case PushCellRef:
		return "PushCellRef"
	case Set:
		return "Set"
	case Exec:
		return "Exec"
	case ExecTop:
		return "ExecTop"
	default:
		return "?"
	}
}

// LiteralKind identifies which kind of literal a PushLiteral instruction
// carries. It reuses the lexer's reserved-word/Int/String token kinds.
type LiteralKind = lexer.Kind

// Literal is the payload of a PushLiteral instruction.
type Literal struct {
	Kind LiteralKind // one of lexer.Int, lexer.String, lexer.Nil, lexer.Void, lexer.True, lexer.False
	Int  int64
	Str  string
}

// BlockID is a Block's stable parse-time identity: two textually identical
// `{ ... }` literals parsed as separate occurrences get distinct IDs.
type BlockID int

// Block is an immutable, already-parsed sequence of instructions.
type Block struct {
	Instructions []Instruction
}

// Instruction is one parsed step of a program or block body.
type Instruction struct {
	Op      Op
	Literal Literal
	Block   BlockID
	Path    lexer.Path
	Pos     fileinput.Position
}

// Program is the result of parsing: the top-level instruction stream plus
// the table of blocks referenced from it (and from each other) by BlockID.
type Program struct {
	Instructions []Instruction
	Blocks       []Block
}

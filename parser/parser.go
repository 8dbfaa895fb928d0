package parser

import (
	"fmt"

	"github.com/soma-lang/soma/internal/fileinput"
	"github.com/soma-lang/soma/lexer"
)

// Error is an unmatched-delimiter or unexpected-token diagnostic. The
// caller is expected to wrap it as a soma.ParseError.
type Error struct {
	Pos     fileinput.Position
	Message string
}

func (err Error) Error() string { return fmt.Sprintf("%v at %v", err.Message, err.Pos) }

// Parser consumes tokens from a lexer.Lexer and produces a Program.
type Parser struct {
	lx     *lexer.Lexer
	blocks []Block
}

// New returns a Parser reading tokens from lx.
func New(lx *lexer.Lexer) *Parser {
	return &Parser{lx: lx}
}

// Parse consumes the entire token stream and returns the resulting Program.
func (p *Parser) Parse() (Program, error) {
	instrs, err := p.parseBody(false)
	if err != nil {
		return Program{}, err
	}
	return Program{Instructions: instrs, Blocks: p.blocks}, nil
}

// parseBody parses instructions until EOF (inBlock == false) or a matching
// BlockClose (inBlock == true), which it consumes.
func (p *Parser) parseBody(inBlock bool) ([]Instruction, error) {
	var instrs []Instruction
	for {
		tok, err := p.lx.Next()
		if err != nil {
			return nil, err
		}

		switch tok.Kind {
		case lexer.EOF:
			if inBlock {
				return nil, Error{Pos: tok.Pos, Message: "unterminated block: missing '}'"}
			}
			return instrs, nil

		case lexer.Comment:
			continue

		case lexer.BlockClose:
			if !inBlock {
				return nil, Error{Pos: tok.Pos, Message: "unmatched '}'"}
			}
			return instrs, nil

		case lexer.BlockOpen:
			body, err := p.parseBody(true)
			if err != nil {
				return nil, err
			}
			id := BlockID(len(p.blocks))
			p.blocks = append(p.blocks, Block{Instructions: body})
			instrs = append(instrs, Instruction{Op: PushBlock, Block: id, Pos: tok.Pos})

		case lexer.Int:
			instrs = append(instrs, Instruction{
				Op:      PushLiteral,
				Literal: Literal{Kind: lexer.Int, Int: tok.Int},
				Pos:     tok.Pos,
			})

		case lexer.String:
			instrs = append(instrs, Instruction{
				Op:      PushLiteral,
				Literal: Literal{Kind: lexer.String, Str: tok.Str},
				Pos:     tok.Pos,
			})

		case lexer.Nil, lexer.Void, lexer.True, lexer.False:
			instrs = append(instrs, Instruction{
				Op:      PushLiteral,
				Literal: Literal{Kind: tok.Kind},
				Pos:     tok.Pos,
			})

		case lexer.PathValue:
			instrs = append(instrs, Instruction{Op: PushPathValue, Path: tok.Path, Pos: tok.Pos})

		case lexer.CellRefPath:
			instrs = append(instrs, Instruction{Op: PushCellRef, Path: tok.Path, Pos: tok.Pos})

		case lexer.Setter:
			instrs = append(instrs, Instruction{Op: Set, Path: tok.Path, Pos: tok.Pos})

		case lexer.Executor:
			instrs = append(instrs, Instruction{Op: Exec, Path: tok.Path, Pos: tok.Pos})

		case lexer.ExecTop:
			instrs = append(instrs, Instruction{Op: ExecTop, Pos: tok.Pos})

		default:
			return nil, Error{Pos: tok.Pos, Message: fmt.Sprintf("unexpected token %v", tok)}
		}
	}
}

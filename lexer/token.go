// Package lexer turns SOMA source text into a stream of positioned tokens.
// Tokens are deliberately "thin": literal payloads are carried as plain Go
// scalars (int64, string) rather than the VM's richer Value type, so that
// this package has no dependency on the VM or the Cell/Block machinery —
// only the parser and VM attach that meaning.
package lexer

import (
	"fmt"
	"strings"

	"github.com/soma-lang/soma/internal/fileinput"
)

// Kind identifies the syntactic category of a Token.
type Kind uint8

const (
	EOF Kind = iota
	Comment
	String
	Int
	Nil
	Void
	True
	False
	PathValue   // a bare path: push.path.value
	CellRefPath // a path with a trailing dot: push.a.cellref.
	Setter      // !path
	Executor    // >path
	ExecTop     // bare ^
	BlockOpen   // {
	BlockClose  // }
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Comment:
		return "Comment"
	case String:
		return "String"
	case Int:
		return "Int"
	case Nil:
		return "Nil"
	case Void:
		return "Void"
	case True:
		return "True"
	case False:
		return "False"
	case PathValue:
		return "PathValue"
	case CellRefPath:
		return "CellRefPath"
	case Setter:
		return "Setter"
	case Executor:
		return "Executor"
	case ExecTop:
		return "ExecTop"
	case BlockOpen:
		return "BlockOpen"
	case BlockClose:
		return "BlockClose"
	default:
		return "?"
	}
}

// Path is a dot-separated sequence of identifier segments. A Path whose
// first segment is the bare underscore is rooted in the current block
// invocation's Register; every other Path is rooted in the Store.
type Path []string

// RegisterRooted reports whether p's first segment is "_".
func (p Path) RegisterRooted() bool { return len(p) > 0 && p[0] == "_" }

func (p Path) String() string { return strings.Join([]string(p), ".") }

// Token is one lexical unit together with its source position.
type Token struct {
	Kind Kind
	Str  string // String literal text, or comment text
	Int  int64  // Int literal value
	Path Path   // PathValue, CellRefPath, Setter, Executor
	Pos  fileinput.Position
}

func (t Token) String() string {
	switch t.Kind {
	case String:
		return fmt.Sprintf("String(%q)", t.Str)
	case Int:
		return fmt.Sprintf("Int(%d)", t.Int)
	case PathValue, CellRefPath, Setter, Executor:
		return fmt.Sprintf("%v(%v)", t.Kind, t.Path)
	default:
		return t.Kind.String()
	}
}

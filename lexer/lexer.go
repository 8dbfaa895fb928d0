package lexer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/soma-lang/soma/internal/fileinput"
)

// Error is a malformed-token diagnostic (an unterminated string, a bad
// escape, an unexpected character, ...). The caller is expected to wrap it
// as a soma.LexError.
type Error struct {
	Pos     fileinput.Position
	Message string
}

func (err Error) Error() string { return fmt.Sprintf("%v at %v", err.Message, err.Pos) }

// isIdentStart accepts ordinary identifier characters plus the bare
// arithmetic/comparison operator symbols ('+' '-' '*' '/' '%' '<' '='), so
// that built-in words like "+" and "<" are ordinary path segments. Next's
// top-level dispatch special-cases a leading '-' ahead of this (see
// lexDashOrPath) to resolve its ambiguity with a negative Int literal;
// within an already-started path (after '>' or '!', or after a '.') that
// ambiguity doesn't exist, so '-' is just another segment-starting rune
// here. '!' and '>' are never identifier characters: they are reserved
// exclusively as the Setter and Executor prefix sigils.
func isIdentStart(r rune) bool {
	switch r {
	case '_', '#', '+', '-', '*', '/', '%', '<', '=':
		return true
	}
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}
func isIdentCont(r rune) bool { return isIdentStart(r) || ('0' <= r && r <= '9') }
func isDigit(r rune) bool     { return '0' <= r && r <= '9' }

// Lexer scans a sequence of Tokens out of one or more queued input sources.
type Lexer struct {
	in fileinput.Input

	r      rune
	rPos   fileinput.Position // position of r, captured before it was read
	rValid bool

	pushedDot bool // set by lexPathSegments when it consumed a trailing '.'
}

// New returns a Lexer reading, in order, from each of srcs.
func New(srcs ...io.Reader) *Lexer {
	lx := &Lexer{}
	lx.in.Queue = append(lx.in.Queue, srcs...)
	return lx
}

// peek returns the next rune without consuming it, reading ahead by
// exactly one rune and remembering its position for pos().
func (lx *Lexer) peek() (rune, error) {
	if !lx.rValid {
		r, _, err := lx.in.ReadRune()
		if err != nil {
			return 0, err
		}
		lx.r = r
		lx.rPos = lx.in.Pos()
		lx.rValid = true
	}
	return lx.r, nil
}

func (lx *Lexer) advance() {
	lx.rValid = false
}

// pos returns the position of the rune that peek last returned (or that a
// subsequent peek will return, if none is currently buffered).
func (lx *Lexer) pos() fileinput.Position {
	if lx.rValid {
		return lx.rPos
	}
	return lx.in.Pos()
}

// Next scans and returns the next Token. At end of input it returns a Token
// with Kind == EOF and a nil error.
func (lx *Lexer) Next() (Token, error) {
	for {
		r, err := lx.peek()
		if err == io.EOF {
			return Token{Kind: EOF, Pos: lx.pos()}, nil
		}
		if err != nil {
			return Token{}, err
		}

		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			lx.advance()
			continue
		case r == ')':
			return lx.lexComment()
		case r == '(':
			return lx.lexString()
		case r == '!':
			return lx.lexSetter()
		case r == '>':
			return lx.lexExecutorOrExecTop()
		case r == '^':
			pos := lx.pos()
			lx.advance()
			return Token{Kind: ExecTop, Pos: pos}, nil
		case r == '{':
			pos := lx.pos()
			lx.advance()
			return Token{Kind: BlockOpen, Pos: pos}, nil
		case r == '}':
			pos := lx.pos()
			lx.advance()
			return Token{Kind: BlockClose, Pos: pos}, nil
		case isDigit(r):
			return lx.lexInt()
		case r == '-':
			return lx.lexDashOrPath()
		case isIdentStart(r):
			return lx.lexPathOrReserved()
		default:
			pos := lx.pos()
			return Token{}, Error{Pos: pos, Message: fmt.Sprintf("unexpected character %q", r)}
		}
	}
}

func (lx *Lexer) lexComment() (Token, error) {
	pos := lx.pos()
	lx.advance() // consume ')'
	var sb strings.Builder
	for {
		r, err := lx.peek()
		if err == io.EOF || r == '\n' {
			break
		}
		if err != nil {
			return Token{}, err
		}
		sb.WriteRune(r)
		lx.advance()
	}
	return Token{Kind: Comment, Str: sb.String(), Pos: pos}, nil
}

// lexString scans a ( ... ) string literal. A bare ')' always closes the
// string — '(' nested inside is just a character, per spec. \HEX\ escapes a
// Unicode code point.
func (lx *Lexer) lexString() (Token, error) {
	pos := lx.pos()
	lx.advance() // consume '('
	var sb strings.Builder
	for {
		r, err := lx.peek()
		if err == io.EOF {
			return Token{}, Error{Pos: pos, Message: "unterminated string literal"}
		}
		if err != nil {
			return Token{}, err
		}
		lx.advance()
		if r == ')' {
			return Token{Kind: String, Str: sb.String(), Pos: pos}, nil
		}
		if r == '\\' {
			cp, err := lx.lexEscape(pos)
			if err != nil {
				return Token{}, err
			}
			sb.WriteRune(cp)
			continue
		}
		sb.WriteRune(r)
	}
}

// lexEscape scans the hex digits and trailing backslash of a \HEX\ escape,
// the leading backslash already having been consumed.
func (lx *Lexer) lexEscape(stringPos fileinput.Position) (rune, error) {
	var hex strings.Builder
	for {
		r, err := lx.peek()
		if err == io.EOF {
			return 0, Error{Pos: stringPos, Message: "unterminated escape sequence"}
		}
		if err != nil {
			return 0, err
		}
		if r == '\\' {
			lx.advance()
			break
		}
		if !isHexDigit(r) {
			return 0, Error{Pos: stringPos, Message: fmt.Sprintf("invalid escape digit %q", r)}
		}
		hex.WriteRune(r)
		lx.advance()
	}
	if hex.Len() == 0 {
		return 0, Error{Pos: stringPos, Message: "empty escape sequence"}
	}
	cp, err := strconv.ParseUint(hex.String(), 16, 32)
	if err != nil {
		return 0, Error{Pos: stringPos, Message: fmt.Sprintf("invalid escape %q: %v", hex.String(), err)}
	}
	return rune(cp), nil
}

func isHexDigit(r rune) bool {
	return isDigit(r) || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')
}

func (lx *Lexer) lexInt() (Token, error) {
	return lx.lexIntDigits(lx.pos(), false)
}

// lexIntDigits scans a run of decimal digits, optionally negated, the
// leading '-' (if any) already having been consumed by the caller.
func (lx *Lexer) lexIntDigits(pos fileinput.Position, negative bool) (Token, error) {
	var sb strings.Builder
	if negative {
		sb.WriteRune('-')
	}
	start := sb.Len()
	for {
		r, err := lx.peek()
		if err != nil || !isDigit(r) {
			break
		}
		sb.WriteRune(r)
		lx.advance()
	}
	if sb.Len() == start {
		return Token{}, Error{Pos: pos, Message: "expected digits after '-'"}
	}
	n, err := strconv.ParseInt(sb.String(), 10, 64)
	if err != nil {
		return Token{}, Error{Pos: pos, Message: fmt.Sprintf("invalid integer literal %q: %v", sb.String(), err)}
	}
	return Token{Kind: Int, Int: n, Pos: pos}, nil
}

// lexDashOrPath handles a leading '-'. Immediately followed by a digit, it
// is a negative Int literal; otherwise '-' is itself a one-character path
// segment (the subtraction word), continued like any other path.
func (lx *Lexer) lexDashOrPath() (Token, error) {
	pos := lx.pos()
	lx.advance() // consume '-'
	if r, err := lx.peek(); err == nil && isDigit(r) {
		return lx.lexIntDigits(pos, true)
	}
	return lx.lexPathOrReservedFrom(pos, "-")
}

func (lx *Lexer) lexSetter() (Token, error) {
	pos := lx.pos()
	lx.advance() // consume '!'
	path, err := lx.lexPathSegments()
	if err != nil {
		return Token{}, err
	}
	if len(path) == 0 {
		return Token{}, Error{Pos: pos, Message: "'!' must be immediately followed by a path"}
	}
	return Token{Kind: Setter, Path: path, Pos: pos}, nil
}

// lexExecutorOrExecTop handles '>'. A following '^' is treated as the bare
// ExecTop operator with an absorbed, decorative '>' prefix ("^" and ">^"
// are accepted as the same operation); otherwise '>' must be immediately
// followed by a path.
func (lx *Lexer) lexExecutorOrExecTop() (Token, error) {
	pos := lx.pos()
	lx.advance() // consume '>'
	if r, err := lx.peek(); err == nil && r == '^' {
		lx.advance()
		return Token{Kind: ExecTop, Pos: pos}, nil
	}
	path, err := lx.lexPathSegments()
	if err != nil {
		return Token{}, err
	}
	if len(path) == 0 {
		return Token{}, Error{Pos: pos, Message: "'>' must be immediately followed by a path"}
	}
	return Token{Kind: Executor, Path: path, Pos: pos}, nil
}

func (lx *Lexer) lexPathOrReserved() (Token, error) {
	pos := lx.pos()
	seg, ok, err := lx.lexSegment()
	if err != nil {
		return Token{}, err
	}
	if !ok {
		return Token{}, Error{Pos: pos, Message: "expected a path"}
	}
	return lx.lexPathOrReservedFrom(pos, seg)
}

// lexPathOrReservedFrom continues lexing a bare path/reserved-word token
// whose first segment (firstSeg) the caller has already scanned.
func (lx *Lexer) lexPathOrReservedFrom(pos fileinput.Position, firstSeg string) (Token, error) {
	lx.pushedDot = false
	path, err := lx.lexPathSegmentsFrom(firstSeg)
	if err != nil {
		return Token{}, err
	}
	trailingDot := lx.pushedDot
	lx.pushedDot = false

	if !trailingDot && len(path) == 1 {
		switch path[0] {
		case "Nil":
			return Token{Kind: Nil, Pos: pos}, nil
		case "Void":
			return Token{Kind: Void, Pos: pos}, nil
		case "True":
			return Token{Kind: True, Pos: pos}, nil
		case "False":
			return Token{Kind: False, Pos: pos}, nil
		}
	}

	if trailingDot {
		return Token{Kind: CellRefPath, Path: path, Pos: pos}, nil
	}
	return Token{Kind: PathValue, Path: path, Pos: pos}, nil
}

// lexPathSegments scans one or more dot-separated identifier segments. A
// trailing '.' that is not followed by another segment is the CellRef
// marker: it is consumed and recorded in lx.pushedDot for the caller
// (lexPathOrReservedFrom) to check.
func (lx *Lexer) lexPathSegments() (Path, error) {
	seg, ok, err := lx.lexSegment()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return lx.lexPathSegmentsFrom(seg)
}

// lexPathSegmentsFrom continues scanning dot-separated segments given the
// first segment (firstSeg) the caller already has in hand.
func (lx *Lexer) lexPathSegmentsFrom(firstSeg string) (Path, error) {
	path := Path{firstSeg}
	for {
		r, err := lx.peek()
		if err != nil || r != '.' {
			break
		}
		lx.advance()
		r2, err2 := lx.peek()
		if err2 != nil || !isIdentStart(r2) {
			// Trailing dot: a CellRef marker, not a segment separator.
			// Re-surface it for the caller's trailing-dot check.
			lx.pushedDot = true
			break
		}
		seg, ok, err := lx.lexSegment()
		if err != nil {
			return nil, err
		}
		if !ok {
			// Unreachable: r2 was already confirmed to be an ident start.
			break
		}
		path = append(path, seg)
	}
	return path, nil
}

func (lx *Lexer) lexSegment() (string, bool, error) {
	r, err := lx.peek()
	if err != nil || !isIdentStart(r) {
		return "", false, nil
	}
	var sb strings.Builder
	for {
		r, err := lx.peek()
		if err != nil || !isIdentCont(r) {
			break
		}
		sb.WriteRune(r)
		lx.advance()
	}
	return sb.String(), true, nil
}

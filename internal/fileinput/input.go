// Package fileinput provides sequential rune reading across a queue of
// input sources, tracking source position (name, line, column) as it goes
// so that lexer diagnostics can cite an exact location.
package fileinput

import (
	"bytes"
	"fmt"
	"io"

	"github.com/soma-lang/soma/internal/runeio"
)

// Position names a single rune position within a named source.
type Position struct {
	Name   string
	Line   int
	Column int
}

func (p Position) String() string { return fmt.Sprintf("%v:%v:%v", p.Name, p.Line, p.Column) }

// Line combines a Position along with a buffer holding the line scanned so far.
type Line struct {
	Position
	bytes.Buffer
}

func (il Line) String() string { return fmt.Sprintf("%v %q", il.Position, il.Buffer.String()) }

// Input implements sequential rune reading through a Queue of one or more
// input streams, presenting them as a single logical source. Both the
// current and last scanned lines are retained to support diagnostics that
// want to show the offending line.
type Input struct {
	rr      io.RuneReader
	Queue   []io.Reader
	Last    Line
	Scan    Line
	lastPos Position
}

// Pos returns the position of the most recently read rune (the one last
// returned by ReadRune), valid only after at least one successful ReadRune.
func (in *Input) Pos() Position { return in.lastPos }

// ReadRune reads one rune from the current input stream, advancing the
// tracked line/column, and rolling Scan over to Last after a line feed. The
// rune's own position (not the position of whatever follows it) is
// available afterward via Pos.
func (in *Input) ReadRune() (rune, int, error) {
	if in.rr == nil && !in.nextIn() {
		return 0, 0, io.EOF
	}

	r, n, err := in.rr.ReadRune()
	if r != 0 {
		in.lastPos = in.Scan.Position
	}
	if r == '\n' {
		in.nextLine()
	} else if r != 0 {
		in.Scan.WriteRune(r)
		in.Scan.Column++
	}

	if r != 0 {
		return r, n, nil
	}
	if err == io.EOF && in.nextIn() {
		err = nil
	}
	return 0, n, err
}

func (in *Input) nextLine() {
	in.Last.Reset()
	in.Last.Name = in.Scan.Name
	in.Last.Line = in.Scan.Line
	in.Last.Write(in.Scan.Bytes())
	in.Scan.Reset()
	in.Scan.Line++
	in.Scan.Column = 1
}

func (in *Input) nextIn() bool {
	in.nextLine()
	if in.rr != nil {
		if cl, ok := in.rr.(io.Closer); ok {
			cl.Close()
		}
		in.rr = nil
	}
	if len(in.Queue) > 0 {
		r := in.Queue[0]
		in.Queue = in.Queue[1:]
		in.rr = runeio.NewReader(r)
		in.Scan.Name = nameOf(r)
		in.Scan.Line = 1
		in.Scan.Column = 1
	}
	return in.rr != nil
}

func nameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return fmt.Sprintf("<unnamed %T>", obj)
}

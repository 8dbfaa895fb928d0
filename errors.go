package soma

import (
	"fmt"

	"github.com/soma-lang/soma/internal/fileinput"
)

// ErrorKind names one of the error taxonomy members from the language
// specification. LexError through ExtensionError are fatal: the VM halts
// with them. HostError marks a host failure; extension callables surface
// those to SOMA code through the dual-return discipline instead of
// halting, while print halts with HostError when writing its output fails.
type ErrorKind string

const (
	LexError        ErrorKind = "LexError"
	ParseError      ErrorKind = "ParseError"
	UndefinedPath   ErrorKind = "UndefinedPath"
	NotExecutable   ErrorKind = "NotExecutable"
	ALUnderflow     ErrorKind = "ALUnderflow"
	TypeError       ErrorKind = "TypeError"
	ExtensionError  ErrorKind = "ExtensionError"
	HostError       ErrorKind = "HostError"
)

// Error is a diagnostic naming its kind, a human-readable detail, and the
// source position it occurred at, if known.
type Error struct {
	Kind ErrorKind
	Detail string
	Pos fileinput.Position
}

func (err Error) Error() string {
	if err.Pos.Name == "" {
		return fmt.Sprintf("%v: %v", err.Kind, err.Detail)
	}
	return fmt.Sprintf("%v: %v at %v", err.Kind, err.Detail, err.Pos)
}

func newError(kind ErrorKind, pos fileinput.Position, format string, args ...interface{}) Error {
	return Error{Kind: kind, Detail: fmt.Sprintf(format, args...), Pos: pos}
}

// haltError wraps an Error (or any error) so that the panic-based abort
// path used by built-ins (see halt in dispatch.go) can be told apart, at the
// Run boundary, from a genuine Go panic raised by a bug.
type haltError struct{ error }

func (err haltError) Error() string {
	if err.error != nil {
		return fmt.Sprintf("halted: %v", err.error)
	}
	return "halted"
}

func (err haltError) Unwrap() error { return err.error }

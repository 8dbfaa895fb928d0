// Package stdlib embeds the pure-SOMA standard library source loaded into
// every fresh VM before user source runs.
package stdlib

import (
	_ "embed"
	"io"
	"strings"
)

//go:embed stdlib.soma
var source string

// NewReader returns a fresh reader over the embedded standard library
// source, suitable for feeding directly into the lexer/parser pipeline.
func NewReader() io.Reader {
	return strings.NewReader(source)
}

// Source returns the embedded standard library source as a string.
func Source() string {
	return source
}

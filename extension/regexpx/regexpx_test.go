package regexpx_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/soma-lang/soma"
	"github.com/soma-lang/soma/extension/regexpx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	reg := soma.MapRegistry{"regex": regexpx.New()}
	vm := soma.New(
		soma.WithInput(strings.NewReader(src)),
		soma.WithOutput(&out),
		soma.WithExtensions(reg),
	)
	err := vm.Run(context.Background())
	return out.String(), err
}

func TestRegexMatchTrue(t *testing.T) {
	out, err := run(t, `
		(regex) >use
		(^[a-z]+$) (hello) >use.regex.match >drop >print
	`)
	require.NoError(t, err)
	assert.Equal(t, "True\n", out)
}

func TestRegexMatchFalse(t *testing.T) {
	out, err := run(t, `
		(regex) >use
		(^[0-9]+$) (hello) >use.regex.match >drop >print
	`)
	require.NoError(t, err)
	assert.Equal(t, "False\n", out)
}

func TestRegexMatchBadPatternIsDualReturnError(t *testing.T) {
	// The pattern string is a single unmatched "(" — invalid regex syntax,
	// chosen to avoid the lexer's own \HEX\ string escape entirely.
	out, err := run(t, `
		(regex) >use
		(() (hello) >use.regex.match >isVoid
		{ >print } { >drop (bad-pattern) >print } >choose >^
	`)
	require.NoError(t, err)
	assert.Equal(t, "bad-pattern\n", out)
}

func TestRegexCompileThenTest(t *testing.T) {
	out, err := run(t, `
		(regex) >use
		(^[a-z]+$) >use.regex.compile >drop !pat
		pat (hello) >use.regex.test >print
		pat (HELLO) >use.regex.test >print
	`)
	require.NoError(t, err)
	assert.Equal(t, "True\nFalse\n", out)
}

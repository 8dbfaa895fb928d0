package lexer_test

import (
	"strings"
	"testing"

	"github.com/soma-lang/soma/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string) []lexer.Token {
	t.Helper()
	lx := lexer.New(strings.NewReader(src))
	var toks []lexer.Token
	for {
		tok, err := lx.Next()
		require.NoError(t, err)
		if tok.Kind == lexer.EOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

func TestLexLiterals(t *testing.T) {
	toks := scanAll(t, `42 -7 (hello world) Nil Void True False`)
	require.Len(t, toks, 7)
	assert.Equal(t, lexer.Int, toks[0].Kind)
	assert.EqualValues(t, 42, toks[0].Int)
	assert.Equal(t, lexer.Int, toks[1].Kind)
	assert.EqualValues(t, -7, toks[1].Int)
	assert.Equal(t, lexer.String, toks[2].Kind)
	assert.Equal(t, "hello world", toks[2].Str)
	assert.Equal(t, lexer.Nil, toks[3].Kind)
	assert.Equal(t, lexer.Void, toks[4].Kind)
	assert.Equal(t, lexer.True, toks[5].Kind)
}

func TestLexStringEscapes(t *testing.T) {
	toks := scanAll(t, `(a\29\b\5C\c)`)
	require.Len(t, toks, 1)
	assert.Equal(t, "a)b\\c", toks[0].Str)
}

func TestLexStringAllowsUnescapedOpenParen(t *testing.T) {
	toks := scanAll(t, `(a(b)`)
	require.Len(t, toks, 1)
	assert.Equal(t, "a(b", toks[0].Str)
}

func TestLexComment(t *testing.T) {
	toks := scanAll(t, "1 ) this is a comment\n2")
	require.Len(t, toks, 3)
	assert.Equal(t, lexer.Int, toks[0].Kind)
	assert.Equal(t, lexer.Comment, toks[1].Kind)
	assert.Equal(t, " this is a comment", toks[1].Str)
	assert.Equal(t, lexer.Int, toks[2].Kind)
	assert.EqualValues(t, 2, toks[2].Int)
}

func TestLexPaths(t *testing.T) {
	toks := scanAll(t, `list.reverse _.x.y foo.`)
	require.Len(t, toks, 3)
	assert.Equal(t, lexer.PathValue, toks[0].Kind)
	assert.Equal(t, lexer.Path{"list", "reverse"}, toks[0].Path)
	assert.Equal(t, lexer.PathValue, toks[1].Kind)
	assert.Equal(t, lexer.Path{"_", "x", "y"}, toks[1].Path)
	assert.Equal(t, lexer.CellRefPath, toks[2].Kind)
	assert.Equal(t, lexer.Path{"foo"}, toks[2].Path)
}

func TestLexSetterAndExecutor(t *testing.T) {
	toks := scanAll(t, `!a.b >c.d ^ >^`)
	require.Len(t, toks, 4)
	assert.Equal(t, lexer.Setter, toks[0].Kind)
	assert.Equal(t, lexer.Path{"a", "b"}, toks[0].Path)
	assert.Equal(t, lexer.Executor, toks[1].Kind)
	assert.Equal(t, lexer.Path{"c", "d"}, toks[1].Path)
	assert.Equal(t, lexer.ExecTop, toks[2].Kind)
	assert.Equal(t, lexer.ExecTop, toks[3].Kind)
}

func TestLexBlockDelimiters(t *testing.T) {
	toks := scanAll(t, `{ 1 { 2 } }`)
	kinds := make([]lexer.Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}
	assert.Equal(t, []lexer.Kind{
		lexer.BlockOpen, lexer.Int, lexer.BlockOpen, lexer.Int, lexer.BlockClose, lexer.BlockClose,
	}, kinds)
}

func TestLexRegisterRootedSetter(t *testing.T) {
	toks := scanAll(t, `!_.`)
	require.Len(t, toks, 1)
	assert.Equal(t, lexer.Setter, toks[0].Kind)
	assert.Equal(t, lexer.Path{"_"}, toks[0].Path)
	assert.True(t, toks[0].Path.RegisterRooted())
}

func TestLexUnterminatedString(t *testing.T) {
	lx := lexer.New(strings.NewReader(`(abc`))
	_, err := lx.Next()
	require.Error(t, err)
}

func TestLexPositions(t *testing.T) {
	lx := lexer.New(strings.NewReader("1\n  2"))
	tok, err := lx.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, tok.Pos.Line)
	assert.Equal(t, 1, tok.Pos.Column)

	tok, err = lx.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, tok.Pos.Line)
	assert.Equal(t, 3, tok.Pos.Column)
}

package jsonx_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/soma-lang/soma"
	"github.com/soma-lang/soma/extension/jsonx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	reg := soma.MapRegistry{"json": jsonx.New()}
	vm := soma.New(
		soma.WithInput(strings.NewReader(src)),
		soma.WithOutput(&out),
		soma.WithExtensions(reg),
	)
	err := vm.Run(context.Background())
	return out.String(), err
}

func TestJSONEncodeScalarInt(t *testing.T) {
	out, err := run(t, `
		(json) >use
		42 >use.json.encode >drop >print
	`)
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)
}

func TestJSONEncodeScalarString(t *testing.T) {
	out, err := run(t, `
		(json) >use
		(hi) >use.json.encode >drop >print
	`)
	require.NoError(t, err)
	assert.Equal(t, `"hi"`+"\n", out)
}

func TestJSONDecodeScalarNumber(t *testing.T) {
	out, err := run(t, `
		(json) >use
		(7) >use.json.decode >drop >print
	`)
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)
}

func TestJSONDecodeMalformedInputIsDualReturnError(t *testing.T) {
	out, err := run(t, `
		(json) >use
		(not json) >use.json.decode >isVoid
		{ >print } { >drop (bad-json) >print } >choose >^
	`)
	require.NoError(t, err)
	assert.Equal(t, "bad-json\n", out)
}

func TestJSONDecodeObjectThenGet(t *testing.T) {
	out, err := run(t, `
		(json) >use
		({"name":"ada","age":36}) >use.json.decode >drop !obj
		obj (name) >use.json.get >drop >print
		obj (age) >use.json.get >drop >print
	`)
	require.NoError(t, err)
	assert.Equal(t, "ada\n36\n", out)
}

package soma_test

import (
	"testing"

	"github.com/soma-lang/soma"
	"github.com/soma-lang/soma/internal/fileinput"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingExtension registers one builtin under its own "use.<name>."
// prefix and counts how many times Register actually runs, to verify the
// idempotent-use property: Register must run exactly once no matter how
// many times SOMA source says "(name) >use".
type countingExtension struct {
	registrations int
	setupSrc      string
}

func (c *countingExtension) Register(reg *soma.Registrar) error {
	c.registrations++
	return reg.Builtin("answer", func(vm *soma.VM, _ fileinput.Position) {
		_ = vm
	})
}

func (c *countingExtension) Setup() string { return c.setupSrc }

func TestUseWithoutExtensionsConfiguredIsExtensionError(t *testing.T) {
	_, err := run(t, `(greet) >use`)
	require.Error(t, err)
	var serr soma.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, soma.ExtensionError, serr.Kind)
}

func TestUseUnknownExtensionIsExtensionError(t *testing.T) {
	reg := soma.MapRegistry{}
	_, err := run(t, `(nope) >use`, soma.WithExtensions(reg))
	require.Error(t, err)
	var serr soma.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, soma.ExtensionError, serr.Kind)
}

func TestUseNonStringArgumentIsTypeError(t *testing.T) {
	_, err := run(t, `42 >use`)
	require.Error(t, err)
	var serr soma.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, soma.TypeError, serr.Kind)
}

func TestUseIsIdempotent(t *testing.T) {
	ext := &countingExtension{setupSrc: `(loaded) >print`}
	reg := soma.MapRegistry{"fake": ext}
	out, err := run(t, `(fake) >use (fake) >use (fake) >use`, soma.WithExtensions(reg))
	require.NoError(t, err)
	assert.Equal(t, 1, ext.registrations, "Register must run exactly once regardless of repeated use")
	assert.Equal(t, "loaded\n", out, "Setup source must run exactly once, on first load only")
}

func TestUseRegistersUnderExtensionPrefix(t *testing.T) {
	ext := &countingExtension{}
	reg := soma.MapRegistry{"fake": ext}
	out, err := run(t, `(fake) >use use.fake.answer >print`, soma.WithExtensions(reg))
	require.NoError(t, err)
	assert.Equal(t, 1, ext.registrations)
	assert.Equal(t, "<builtin>\n", out, "the registered callable must be reachable at its use.<name>. prefix")
}

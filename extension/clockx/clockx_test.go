package clockx_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/soma-lang/soma"
	"github.com/soma-lang/soma/extension/clockx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, ctx context.Context, src string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	reg := soma.MapRegistry{"clock": clockx.New()}
	vm := soma.New(
		soma.WithInput(strings.NewReader(src)),
		soma.WithOutput(&out),
		soma.WithExtensions(reg),
	)
	err := vm.Run(ctx)
	return out.String(), err
}

func TestClockNowPushesAPositiveInt(t *testing.T) {
	out, err := run(t, context.Background(), `
		(clock) >use
		>use.clock.now 0 >gt >print
	`)
	require.NoError(t, err)
	assert.Equal(t, "True\n", out)
}

func TestClockSleepCompletesAndPrintsNil(t *testing.T) {
	out, err := run(t, context.Background(), `
		(clock) >use
		1 >use.clock.sleep >drop >print
	`)
	require.NoError(t, err)
	assert.Equal(t, "Nil\n", out)
}

func TestClockSleepInterruptedByContextDeadline(t *testing.T) {
	// By the time sleep's own select fires on ctx.Done() and prints, the
	// deadline has necessarily already passed — so the VM's own
	// between-sources deadline check (lexSourceQueue) also sees it expired
	// and Run reports that same context error. The print still happened,
	// and that's what this test is about: sleep itself did not block past
	// the deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	out, err := run(t, ctx, `
		(clock) >use
		60000 >use.clock.sleep >isVoid
		{ >print } { >drop (timed out) >print } >choose >^
	`)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "timed out\n", out)
}

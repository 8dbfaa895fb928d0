package sometest_test

import (
	"strings"
	"testing"

	"github.com/soma-lang/soma/sometest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSplitsMultipleCasesOnBlankLines(t *testing.T) {
	src := `
) TEST: addition
) EXPECT_AL: [5]
2 3 >+

) TEST: greeting
) EXPECT_OUTPUT: hello
(hello) >print
`
	cases, err := sometest.Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, cases, 2)

	assert.Equal(t, "addition", cases[0].Name)
	assert.True(t, cases[0].HasExpectAL)
	assert.Equal(t, []string{"5"}, cases[0].ExpectAL)

	assert.Equal(t, "greeting", cases[1].Name)
	assert.Equal(t, []string{"hello"}, cases[1].ExpectOutput)
}

func TestRunPassingCase(t *testing.T) {
	src := `
) TEST: addition
) EXPECT_AL: [5]
2 3 >+
`
	cases, err := sometest.Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, cases, 1)

	results := sometest.Run(cases)
	require.Len(t, results, 1)
	assert.True(t, results[0].Passed())
	assert.Equal(t, []string{"5"}, results[0].GotAL)
}

func TestRunDetectsALMismatch(t *testing.T) {
	src := `
) TEST: addition
) EXPECT_AL: [6]
2 3 >+
`
	cases, err := sometest.Parse(strings.NewReader(src))
	require.NoError(t, err)
	results := sometest.Run(cases)
	require.Len(t, results, 1)
	assert.False(t, results[0].Passed())
	assert.True(t, results[0].ALMismatch)
	assert.Equal(t, []string{"5"}, results[0].GotAL)
}

func TestRunDetectsOutputMismatch(t *testing.T) {
	src := `
) TEST: greeting
) EXPECT_OUTPUT: goodbye
(hello) >print
`
	cases, err := sometest.Parse(strings.NewReader(src))
	require.NoError(t, err)
	results := sometest.Run(cases)
	require.Len(t, results, 1)
	assert.True(t, results[0].OutputMismatch)
	assert.Equal(t, []string{"hello"}, results[0].GotOutput)
}

func TestRunPropagatesVMErrors(t *testing.T) {
	src := `
) TEST: bad path
) EXPECT_AL: [Void]
nope.never
`
	cases, err := sometest.Parse(strings.NewReader(src))
	require.NoError(t, err)
	results := sometest.Run(cases)
	require.Len(t, results, 1)
	require.Error(t, results[0].RunErr)
	assert.False(t, results[0].Passed())
}

func TestRunMultipleOutputLinesInOrder(t *testing.T) {
	src := `
) TEST: two lines
) EXPECT_OUTPUT: one
) EXPECT_OUTPUT: two
(one) >print
(two) >print
`
	cases, err := sometest.Parse(strings.NewReader(src))
	require.NoError(t, err)
	results := sometest.Run(cases)
	require.Len(t, results, 1)
	assert.True(t, results[0].Passed())
}

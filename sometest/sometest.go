// Package sometest implements the test-file-format runner described by the
// "Test-file format" entry of the external interfaces: plain SOMA source
// carrying `) TEST:`, `) EXPECT_AL:`, and `) EXPECT_OUTPUT:` directive
// comments. A file may hold several such cases, each separated by at least
// one blank line; each runs independently against its own fresh VM.
package sometest

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/soma-lang/soma"
)

// Case is one test case extracted from a file: its description, the SOMA
// source to run, and the expectations to check the run against.
type Case struct {
	Name         string
	Source       string
	ExpectAL     []string // canonical-string form, bottom-to-top, sentinel excluded
	HasExpectAL  bool
	ExpectOutput []string
}

// Result reports the outcome of running one Case.
type Result struct {
	Case
	RunErr         error
	GotAL          []string
	GotOutput      []string
	ALMismatch     bool
	OutputMismatch bool
}

// Passed reports whether the case ran clean and every declared expectation
// (AL contents, output lines) matched.
func (r Result) Passed() bool {
	return r.RunErr == nil && !r.ALMismatch && !r.OutputMismatch
}

var (
	testDirective   = regexp.MustCompile(`^\)\s*TEST:\s?(.*)$`)
	alDirective     = regexp.MustCompile(`^\)\s*EXPECT_AL:\s?(.*)$`)
	outputDirective = regexp.MustCompile(`^\)\s*EXPECT_OUTPUT:\s?(.*)$`)
)

// Parse splits r's contents into Cases on blank-line boundaries, reading
// directive comments out of each block's raw text while leaving the block
// itself intact as the source to execute — directives are ordinary SOMA
// comments, so the source text handed to Run is exactly what was written,
// unmodified.
func Parse(r io.Reader) ([]Case, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	blocks := splitBlocks(string(data))

	var cases []Case
	for i, block := range blocks {
		if strings.TrimSpace(block) == "" {
			continue
		}
		c, err := parseBlock(block)
		if err != nil {
			return nil, fmt.Errorf("test case %d: %w", i+1, err)
		}
		cases = append(cases, c)
	}
	return cases, nil
}

// splitBlocks breaks src on runs of two-or-more newlines (a blank line),
// preserving each block's own internal formatting.
func splitBlocks(src string) []string {
	return regexp.MustCompile(`\n[ \t]*\n+`).Split(src, -1)
}

func parseBlock(block string) (Case, error) {
	c := Case{Source: block}
	sc := bufio.NewScanner(strings.NewReader(block))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case testDirective.MatchString(trimmed):
			m := testDirective.FindStringSubmatch(trimmed)
			c.Name = strings.TrimSpace(m[1])
		case alDirective.MatchString(trimmed):
			m := alDirective.FindStringSubmatch(trimmed)
			vals, err := parseALList(m[1])
			if err != nil {
				return Case{}, fmt.Errorf("EXPECT_AL: %w", err)
			}
			c.ExpectAL = vals
			c.HasExpectAL = true
		case outputDirective.MatchString(trimmed):
			m := outputDirective.FindStringSubmatch(trimmed)
			c.ExpectOutput = append(c.ExpectOutput, m[1])
		}
	}
	if err := sc.Err(); err != nil {
		return Case{}, err
	}
	if c.Name == "" {
		c.Name = "unnamed"
	}
	return c, nil
}

// parseALList parses the "[v1, v2, …]" payload of an EXPECT_AL directive
// into a sequence of canonical-string forms comparable against
// Value.CanonicalString — the same rendering print and toString use, so an
// expectation can be written exactly as it would appear on stdout.
func parseALList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := splitTopLevelCommas(s)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len(p) >= 2 && p[0] == '"' && p[len(p)-1] == '"' {
			p = p[1 : len(p)-1]
		}
		out = append(out, p)
	}
	return out, nil
}

// splitTopLevelCommas splits on commas outside of any quoted string, since
// a String-typed AL entry may itself legitimately contain a comma.
func splitTopLevelCommas(s string) []string {
	var parts []string
	var cur strings.Builder
	inString := false
	for _, r := range s {
		switch {
		case r == '"':
			inString = !inString
			cur.WriteRune(r)
		case r == ',' && !inString:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 || len(parts) > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

// Run executes every Case against a fresh VM (seeded with extraOpts, e.g.
// WithNoStdlib or WithExtensions), reporting pass/fail for each. Cases run
// against context.Background(); use RunContext to honor a caller-supplied
// deadline (e.g. the CLI's -timeout flag) across every case.
func Run(cases []Case, extraOpts ...soma.VMOption) []Result {
	return RunContext(context.Background(), cases, extraOpts...)
}

// RunContext is Run, but every case's VM.Run is given ctx directly instead
// of context.Background().
func RunContext(ctx context.Context, cases []Case, extraOpts ...soma.VMOption) []Result {
	results := make([]Result, 0, len(cases))
	for _, c := range cases {
		results = append(results, runOne(ctx, c, extraOpts))
	}
	return results
}

func runOne(ctx context.Context, c Case, extraOpts []soma.VMOption) Result {
	res := Result{Case: c}

	var out bytes.Buffer
	opts := append([]soma.VMOption{
		soma.WithInput(strings.NewReader(c.Source)),
		soma.WithOutput(&out),
	}, extraOpts...)

	vm := soma.New(opts...)
	res.RunErr = vm.Run(ctx)
	if res.RunErr != nil {
		return res
	}

	res.GotAL = alStrings(vm)
	if c.HasExpectAL && !stringSlicesEqual(res.GotAL, c.ExpectAL) {
		res.ALMismatch = true
	}

	res.GotOutput = splitLines(out.String())
	if len(c.ExpectOutput) > 0 && !stringSlicesEqual(res.GotOutput, c.ExpectOutput) {
		res.OutputMismatch = true
	}
	return res
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func alStrings(vm *soma.VM) []string {
	snap := vm.ALSnapshot()
	out := make([]string, len(snap))
	for i, v := range snap {
		out[i] = v.CanonicalString()
	}
	return out
}

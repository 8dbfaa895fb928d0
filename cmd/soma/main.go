// Command soma reads SOMA source from standard input and runs it, writing
// program output to standard output and diagnostics to standard error.
// Exit code 0 on clean termination; non-zero on any parse or runtime
// error.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/soma-lang/soma"
	"github.com/soma-lang/soma/extension/clockx"
	"github.com/soma-lang/soma/extension/envx"
	"github.com/soma-lang/soma/extension/jsonx"
	"github.com/soma-lang/soma/extension/regexpx"
	"github.com/soma-lang/soma/internal/logio"
	"github.com/soma-lang/soma/sometest"
)

func main() {
	var (
		timeout  time.Duration
		trace    bool
		dump     bool
		noStdlib bool
		testMode bool
	)
	flag.DurationVar(&timeout, "timeout", 0, "specify a time limit")
	flag.BoolVar(&trace, "trace", false, "enable trace logging")
	flag.BoolVar(&dump, "dump", false, "print a dump after execution")
	flag.BoolVar(&noStdlib, "no-stdlib", false, "disable loading the bundled standard library")
	flag.BoolVar(&testMode, "test", false, "read a test file from stdin instead of a program")
	flag.Parse()

	log := logio.Logger{}
	log.SetOutput(os.Stderr)
	defer os.Exit(log.ExitCode())

	ctx := context.Background()
	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if testMode {
		runTests(&log, ctx, noStdlib)
		return
	}

	opts := []soma.VMOption{
		soma.WithInput(os.Stdin),
		soma.WithOutput(os.Stdout),
		soma.WithStdin(os.Stdin),
		soma.WithExtensions(defaultExtensions()),
	}
	if trace {
		opts = append(opts, soma.WithTrace(log.Leveledf("TRACE")))
	}
	if noStdlib {
		opts = append(opts, soma.WithNoStdlib())
	}

	vm := soma.New(opts...)

	if dump {
		lw := &logio.Writer{Logf: log.Leveledf("DUMP")}
		defer lw.Close()
		defer func() { lw.Write([]byte(vm.Dump())) }()
	}

	log.ErrorIf(vm.Run(ctx))
}

// runTests reads a test file from stdin per the "Test-file format" of the
// external interfaces and reports one PASS/FAIL line per case to stderr,
// marking the run as failed (ExitCode 1) if any case did not pass.
func runTests(log *logio.Logger, ctx context.Context, noStdlib bool) {
	cases, err := sometest.Parse(os.Stdin)
	if err != nil {
		log.Errorf("%v", err)
		return
	}

	var opts []soma.VMOption
	if noStdlib {
		opts = append(opts, soma.WithNoStdlib())
	}
	opts = append(opts, soma.WithExtensions(defaultExtensions()))

	results := sometest.RunContext(ctx, cases, opts...)
	failed := 0
	for _, res := range results {
		if res.Passed() {
			log.Printf("PASS", "%s", res.Name)
			continue
		}
		failed++
		switch {
		case res.RunErr != nil:
			log.Printf("FAIL", "%s: %v", res.Name, res.RunErr)
		case res.ALMismatch:
			log.Printf("FAIL", "%s: AL got %v, want %v", res.Name, res.GotAL, res.ExpectAL)
		case res.OutputMismatch:
			log.Printf("FAIL", "%s: output got %v, want %v", res.Name, res.GotOutput, res.ExpectOutput)
		}
	}
	if failed > 0 {
		log.Errorf("%d/%d test case(s) failed", failed, len(results))
	}
}

func defaultExtensions() soma.MapRegistry {
	return soma.MapRegistry{
		"env":   envx.New(),
		"clock": clockx.New(),
		"json":  jsonx.New(),
		"regex": regexpx.New(),
	}
}

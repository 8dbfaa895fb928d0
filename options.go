package soma

import (
	"bytes"
	"io"
	"io/ioutil"

	"github.com/soma-lang/soma/internal/flushio"
)

// VMOption configures a VM at construction time.
type VMOption interface{ apply(vm *VM) }

var defaultOptions = VMOptions(
	withInput(bytes.NewReader(nil)),
	withOutput(ioutil.Discard),
)

// VMOptions flattens and combines any number of VMOption values into one.
func VMOptions(opts ...VMOption) VMOption {
	var res options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil, noption:
		case options:
			res = append(res, impl...)
		default:
			res = append(res, opt)
		}
	}
	switch len(res) {
	case 0:
		return noption{}
	case 1:
		return res[0]
	default:
		return res
	}
}

type noption struct{}

func (noption) apply(vm *VM) {}

type options []VMOption

func (opts options) apply(vm *VM) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(vm)
		}
	}
}

// WithInput queues r as a source program the VM's lexer reads from, in the
// order supplied across calls.
func WithInput(r io.Reader) VMOption { return withInput(r) }

// WithOutput sets the stream that the print built-in writes to. Defaults
// to ioutil.Discard.
func WithOutput(w io.Writer) VMOption { return withOutput(w) }

// WithTee additionally mirrors print's output to w, without replacing the
// primary output stream.
func WithTee(w io.Writer) VMOption { return withTee(w) }

// WithStdin sets the stream readLine reads from. Defaults to an empty
// reader (readLine then always pushes the empty string, its EOF result).
func WithStdin(r io.Reader) VMOption { return withStdin(r) }

// WithTrace enables dispatch tracing: every instruction logs its op and
// source position through logfn before it runs.
func WithTrace(logfn func(mess string, args ...interface{})) VMOption { return withTrace(logfn) }

// WithNoStdlib disables automatic loading of the bundled stdlib.soma
// before the first queued program runs.
func WithNoStdlib() VMOption { return noStdlibOption{} }

// WithExtensions installs the registry used to resolve names passed to the
// use built-in. Without this option, use always fails with ExtensionError.
func WithExtensions(reg ExtensionRegistry) VMOption { return extensionsOption{reg} }

type inputOption struct{ io.Reader }
type outputOption struct{ io.Writer }
type teeOption struct{ io.Writer }
type stdinOption struct{ io.Reader }
type traceOption struct {
	logfn func(mess string, args ...interface{})
}
type noStdlibOption struct{}
type extensionsOption struct{ reg ExtensionRegistry }

func withInput(r io.Reader) inputOption { return inputOption{r} }
func withOutput(w io.Writer) outputOption { return outputOption{w} }
func withTee(w io.Writer) teeOption     { return teeOption{w} }
func withStdin(r io.Reader) stdinOption { return stdinOption{r} }
func withTrace(logfn func(mess string, args ...interface{})) traceOption {
	return traceOption{logfn}
}

func (i inputOption) apply(vm *VM) { vm.inputQueue = append(vm.inputQueue, i.Reader) }

func (o outputOption) apply(vm *VM) {
	if vm.out != nil {
		vm.out.Flush()
	}
	vm.out = flushio.NewWriteFlusher(o.Writer)
}

func (o teeOption) apply(vm *VM) {
	vm.out = flushio.WriteFlushers(vm.out, flushio.NewWriteFlusher(o.Writer))
}

func (s stdinOption) apply(vm *VM) { vm.stdin = s.Reader }

func (t traceOption) apply(vm *VM) { vm.trace = t.logfn }

func (noStdlibOption) apply(vm *VM) { vm.noStdlib = true }

func (e extensionsOption) apply(vm *VM) { vm.extensions = e.reg }

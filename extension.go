package soma

import (
	"strings"

	"github.com/soma-lang/soma/internal/fileinput"
)

// Extension is a host-provided module loadable by name through the `use`
// built-in (§4.6). Register installs the extension's callables into the
// VM through a Registrar restricted to the "use.<name>." path prefix;
// Setup, if non-empty, is SOMA source executed in the VM immediately
// after registration.
type Extension interface {
	Register(reg *Registrar) error
	Setup() string
}

// ExtensionRegistry resolves an extension name to its implementation. A
// VM with no registry configured rejects every `use` call with
// ExtensionError, matching an extension-less embedding.
type ExtensionRegistry interface {
	Lookup(name string) (Extension, bool)
}

// ExtensionRegistryFunc adapts a plain function to ExtensionRegistry.
type ExtensionRegistryFunc func(name string) (Extension, bool)

// Lookup implements ExtensionRegistry.
func (f ExtensionRegistryFunc) Lookup(name string) (Extension, bool) { return f(name) }

// MapRegistry is an ExtensionRegistry backed by a fixed name-to-Extension
// map, the shape every extension/* package in this module exposes.
type MapRegistry map[string]Extension

// Lookup implements ExtensionRegistry.
func (m MapRegistry) Lookup(name string) (Extension, bool) {
	ext, ok := m[name]
	return ext, ok
}

// Registrar is the restricted interface an Extension's Register method
// receives: it may only bind callables under "use.<name>.", never
// anywhere else in the Store (§4.6 step 2).
type Registrar struct {
	vm     *VM
	prefix string
}

// Builtin registers fn under "use.<name>.<path>". path may itself contain
// dots to register a nested Cell (e.g. "http.get").
func (r *Registrar) Builtin(path string, fn BuiltinFunc) error {
	full := r.prefix + path
	segs := strings.Split(full, ".")
	for _, seg := range segs {
		if seg == "" {
			return newError(ExtensionError, fileinput.Position{}, "invalid extension path %q", full)
		}
	}
	id := resolveOrCreatePath(r.vm.arena, r.vm.store, segs)
	setCellValue(r.vm.arena, id, Value{Kind: KindBuiltin, Builtin: fn})
	return nil
}

// use is the `use` built-in: pop a string naming an extension, load it if
// not already loaded (idempotent per §8's "Idempotent use" property), and
// run its setup source, if any, in the current VM.
func use(vm *VM, pos fileinput.Position) {
	name := vm.al.Pop("use", pos)
	if name.Kind != KindString {
		vm.halt(newError(TypeError, pos, "use: expected a String naming the extension (got %v)", name.Kind))
	}
	vm.loadExtension(name.Str, pos)
}

// loadExtension ensures name is loaded exactly once: registered, marked
// loaded, and its setup source run, in that order. A Store may be shared
// by VMs running on separate goroutines (§5), so the "already loaded"
// check and the load sequence itself are collapsed onto a single flight
// per extension name via singleflight.Group — two concurrent "use"
// builtins for the same unloaded name block on one real load rather than
// racing to register and run setup twice.
func (vm *VM) loadExtension(name string, pos fileinput.Position) {
	vm.loadedMu.Lock()
	already := vm.loaded[name]
	vm.loadedMu.Unlock()
	if already {
		return
	}

	_, err, _ := vm.loadGroup.Do(name, func() (interface{}, error) {
		vm.loadedMu.Lock()
		already := vm.loaded[name]
		vm.loadedMu.Unlock()
		if already {
			return nil, nil
		}
		if vm.extensions == nil {
			return nil, newError(ExtensionError, pos, "use: no extension registry configured (wanted %q)", name)
		}
		ext, ok := vm.extensions.Lookup(name)
		if !ok {
			return nil, newError(ExtensionError, pos, "use: unknown extension %q", name)
		}
		reg := &Registrar{vm: vm, prefix: "use." + name + "."}
		if rerr := ext.Register(reg); rerr != nil {
			return nil, newError(ExtensionError, pos, "use: %q registration failed: %v", name, rerr)
		}
		vm.loadedMu.Lock()
		vm.loaded[name] = true
		vm.loadedMu.Unlock()
		if src := ext.Setup(); src != "" {
			if serr := vm.loadSource(strings.NewReader(src)); serr != nil {
				return nil, newError(ExtensionError, pos, "use: %q setup failed: %v", name, serr)
			}
		}
		return nil, nil
	})
	if err != nil {
		serr, ok := err.(Error)
		if !ok {
			serr = newError(ExtensionError, pos, "use: %q: %v", name, err)
		}
		vm.halt(serr)
	}
}

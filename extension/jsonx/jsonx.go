// Package jsonx is the "json" extension: use.json.encode and
// use.json.decode over encoding/json, converting between SOMA's scalar
// Values and JSON text. Compound JSON (objects, arrays) decodes to an
// opaque Foreign handle navigable with use.json.get, since there is no
// public way for an extension outside this module to grow a Cell subtree
// directly in the Store.
package jsonx

import (
	"encoding/json"
	"fmt"

	"github.com/soma-lang/soma"
	"github.com/soma-lang/soma/internal/fileinput"
)

type extension struct{}

// New returns the "json" extension, registrable under that name in a
// soma.MapRegistry.
func New() soma.Extension { return extension{} }

func (extension) Setup() string { return "" }

func (extension) Register(reg *soma.Registrar) error {
	if err := reg.Builtin("encode", encode); err != nil {
		return err
	}
	if err := reg.Builtin("decode", decode); err != nil {
		return err
	}
	return reg.Builtin("get", get)
}

// encode pops a Value and pushes [String, Void] on success, [Void,
// errorString] if the Value's Kind has no JSON rendering (Block, CellRef,
// Builtin, Foreign with no natural encoding).
func encode(vm *soma.VM, pos fileinput.Position) {
	v := vm.Pop("use.json.encode", pos)
	native, err := toNative(v)
	if err != nil {
		vm.Push(soma.Void)
		vm.Push(soma.Str(fmt.Sprintf("use.json.encode: %v", err)))
		return
	}
	b, err := json.Marshal(native)
	if err != nil {
		vm.Push(soma.Void)
		vm.Push(soma.Str(fmt.Sprintf("use.json.encode: %v", err)))
		return
	}
	vm.Push(soma.Str(string(b)))
	vm.Push(soma.Void)
}

// decode pops a String of JSON text and pushes [Value, Void] on success,
// [Void, errorString] on malformed input. Scalars map onto the matching
// SOMA Kind directly; objects and arrays become a Foreign handle.
func decode(vm *soma.VM, pos fileinput.Position) {
	s := vm.Pop("use.json.decode", pos)
	if s.Kind != soma.KindString {
		vm.Halt(soma.TypeError, pos, "use.json.decode: expected a String (got %v)", s.Kind)
	}
	var native interface{}
	if err := json.Unmarshal([]byte(s.Str), &native); err != nil {
		vm.Push(soma.Void)
		vm.Push(soma.Str(fmt.Sprintf("use.json.decode: %v", err)))
		return
	}
	vm.Push(fromNative(native))
	vm.Push(soma.Void)
}

// get pops a dotted path String and a Foreign container (as produced by
// decode), walking object keys and array indices, and pushes [Value,
// Void] on success or [Void, errorString] if the path does not resolve.
func get(vm *soma.VM, pos fileinput.Position) {
	args := vm.PopN("use.json.get", pos, 2)
	container, path := args[0], args[1]
	if path.Kind != soma.KindString {
		vm.Halt(soma.TypeError, pos, "use.json.get: expected a String path (got %v)", path.Kind)
	}
	if container.Kind != soma.KindForeign {
		vm.Halt(soma.TypeError, pos, "use.json.get: expected a Foreign json value (got %v)", container.Kind)
	}
	cur := container.Foreign
	for _, seg := range splitPath(path.Str) {
		next, err := index(cur, seg)
		if err != nil {
			vm.Push(soma.Void)
			vm.Push(soma.Str(fmt.Sprintf("use.json.get: %v", err)))
			return
		}
		cur = next
	}
	vm.Push(fromNative(cur))
	vm.Push(soma.Void)
}

func splitPath(s string) []string {
	if s == "" {
		return nil
	}
	var segs []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			segs = append(segs, s[start:i])
			start = i + 1
		}
	}
	segs = append(segs, s[start:])
	return segs
}

func index(cur interface{}, seg string) (interface{}, error) {
	switch c := cur.(type) {
	case map[string]interface{}:
		v, ok := c[seg]
		if !ok {
			return nil, fmt.Errorf("no key %q", seg)
		}
		return v, nil
	case []interface{}:
		var i int
		if _, err := fmt.Sscanf(seg, "%d", &i); err != nil || i < 0 || i >= len(c) {
			return nil, fmt.Errorf("bad array index %q", seg)
		}
		return c[i], nil
	default:
		return nil, fmt.Errorf("cannot index into a scalar with %q", seg)
	}
}

// toNative converts a scalar SOMA Value into the Go value encoding/json
// can marshal. Compound Values (a previously-decoded Foreign handle) pass
// its wrapped Go value straight through.
func toNative(v soma.Value) (interface{}, error) {
	switch v.Kind {
	case soma.KindVoid, soma.KindNil:
		return nil, nil
	case soma.KindBool:
		return v.IsTruthy(), nil
	case soma.KindInt:
		return v.Int, nil
	case soma.KindString:
		return v.Str, nil
	case soma.KindForeign:
		return v.Foreign, nil
	default:
		return nil, fmt.Errorf("%v has no JSON rendering", v.Kind)
	}
}

// fromNative converts a decoded Go value back into a SOMA Value: JSON
// numbers (always float64 from encoding/json) become an Int by truncation
// toward zero, since SOMA has no Float kind; a fractional part is dropped.
func fromNative(v interface{}) soma.Value {
	switch t := v.(type) {
	case nil:
		return soma.Nil
	case bool:
		return soma.Bool(t)
	case string:
		return soma.Str(t)
	case float64:
		return soma.Int64(int64(t))
	default:
		return soma.Value{Kind: soma.KindForeign, Foreign: t}
	}
}

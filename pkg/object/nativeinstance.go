package object

import (
	"fmt"

	"github.com/wisplang/wisp/pkg/value"
)

// NativeSubKind distinguishes the two built-in container kinds a
// NativeInstance can hold.
type NativeSubKind byte

const (
	NativeList NativeSubKind = iota
	NativeMap
)

// mapEntry is one live key/value pair of a NativeInstance map. Map keys may
// be any non-nil Value; since Value isn't hashable in the general case
// (object keys compare by identity, not deep structure), the backing store
// is a slice searched linearly, mirroring how the original's Map type
// handles arbitrary-Value keys without a hashable-key constraint.
type mapEntry struct {
	key   value.Value
	value value.Value
}

// NativeInstance backs the two built-in container constructors, _List()
// and _Map().
type NativeInstance struct {
	Header
	Sub     NativeSubKind
	list    []value.Value
	entries []mapEntry
}

func (*NativeInstance) Kind() value.ObjKind { return value.ObjNativeInstance }

func (n *NativeInstance) String() string {
	if n.Sub == NativeList {
		return "<List>"
	}
	return "<Map>"
}

// NewList allocates an empty List NativeInstance.
func NewList() *NativeInstance { return &NativeInstance{Sub: NativeList} }

// NewMap allocates an empty Map NativeInstance.
func NewMap() *NativeInstance { return &NativeInstance{Sub: NativeMap} }

// Elements exposes the contained values for the GC tracer: a List's raw
// backing slice (which must not be mutated by callers outside this
// package), or a fresh slice of a Map's alternating keys and values.
func (n *NativeInstance) Elements() []value.Value {
	if n.Sub == NativeList {
		return n.list
	}
	out := make([]value.Value, 0, len(n.entries)*2)
	for _, e := range n.entries {
		out = append(out, e.key, e.value)
	}
	return out
}

// Call dispatches a native-instance method by name. heap is needed by any
// method that constructs a new native instance (Map.entries' List-of-pairs),
// since every such object must be allocated before it's reachable from a
// Value.
func (n *NativeInstance) Call(heap *Heap, name string, args []value.Value) (value.Value, error) {
	if n.Sub == NativeList {
		return n.callList(name, args)
	}
	return n.callMap(heap, name, args)
}

func (n *NativeInstance) callList(name string, args []value.Value) (value.Value, error) {
	switch name {
	case "push":
		if len(args) != 1 {
			return value.Nil, fmt.Errorf("push() takes 1 argument.")
		}
		n.list = append(n.list, args[0])
		return value.Nil, nil
	case "pop":
		if len(n.list) == 0 {
			return value.Nil, fmt.Errorf("pop() on empty List.")
		}
		last := n.list[len(n.list)-1]
		n.list = n.list[:len(n.list)-1]
		return last, nil
	case "get":
		idx, err := n.index(args, len(n.list))
		if err != nil {
			return value.Nil, err
		}
		return n.list[idx], nil
	case "set":
		if len(args) != 2 {
			return value.Nil, fmt.Errorf("set() takes 2 arguments.")
		}
		idx, err := n.index(args[:1], len(n.list))
		if err != nil {
			return value.Nil, err
		}
		n.list[idx] = args[1]
		return value.Nil, nil
	case "len":
		return value.Number(float64(len(n.list))), nil
	default:
		return value.Nil, fmt.Errorf("Undefined List method '%s'.", name)
	}
}

func (n *NativeInstance) index(args []value.Value, length int) (int, error) {
	if len(args) != 1 || !args[0].IsNumber() {
		return 0, fmt.Errorf("index must be a number.")
	}
	idx := int(args[0].AsNumber())
	if idx < 0 || idx >= length {
		return 0, fmt.Errorf("index out of range.")
	}
	return idx, nil
}

func (n *NativeInstance) callMap(heap *Heap, name string, args []value.Value) (value.Value, error) {
	switch name {
	case "set":
		if len(args) != 2 {
			return value.Nil, fmt.Errorf("set() takes 2 arguments.")
		}
		if args[0].IsNil() {
			return value.Nil, fmt.Errorf("Map keys may not be nil.")
		}
		if i := n.find(args[0]); i >= 0 {
			n.entries[i].value = args[1]
		} else {
			n.entries = append(n.entries, mapEntry{key: args[0], value: args[1]})
		}
		return value.Nil, nil
	case "get":
		if len(args) != 1 {
			return value.Nil, fmt.Errorf("get() takes 1 argument.")
		}
		if i := n.find(args[0]); i >= 0 {
			return n.entries[i].value, nil
		}
		return value.Nil, fmt.Errorf("Key not found.")
	case "has":
		if len(args) != 1 {
			return value.Nil, fmt.Errorf("has() takes 1 argument.")
		}
		return value.Bool(n.find(args[0]) >= 0), nil
	case "remove":
		if len(args) != 1 {
			return value.Nil, fmt.Errorf("remove() takes 1 argument.")
		}
		if i := n.find(args[0]); i >= 0 {
			n.entries = append(n.entries[:i], n.entries[i+1:]...)
			return value.Bool(true), nil
		}
		return value.Bool(false), nil
	case "size":
		return value.Number(float64(len(n.entries))), nil
	case "entries":
		out := NewList()
		heap.Allocate(out)
		for _, e := range n.entries {
			pair := NewList()
			heap.Allocate(pair)
			pair.list = append(pair.list, e.key, e.value)
			out.list = append(out.list, value.FromObj(pair))
		}
		return value.FromObj(out), nil
	default:
		return value.Nil, fmt.Errorf("Undefined Map method '%s'.", name)
	}
}

func (n *NativeInstance) find(key value.Value) int {
	for i, e := range n.entries {
		if value.Equal(e.key, key) {
			return i
		}
	}
	return -1
}

package object

import "github.com/wisplang/wisp/pkg/value"

// DefaultGrowFactor is the multiplier applied to bytesAllocated to compute
// the next collection threshold when a caller has no tuned value to supply.
const DefaultGrowFactor = 2

// sizeOf is a rough, intentionally coarse accounting unit for
// bytesAllocated bookkeeping — the GC only needs a monotonically
// increasing proxy for live heap size, not an exact byte count.
func sizeOf(o value.Obj) int {
	switch o.(type) {
	case *String:
		return 32
	case *Function:
		return 64
	case *Closure:
		return 48
	case *Upvalue:
		return 24
	case *Native:
		return 32
	case *Class:
		return 48
	case *Instance:
		return 48
	case *BoundMethod:
		return 32
	case *NativeInstance:
		return 48
	default:
		return 16
	}
}

// Heap owns the intrusive singly-linked list of every allocated object, the
// string-intern table, and the mark-sweep GC bookkeeping.
type Heap struct {
	head           value.Obj
	Strings        *Table
	bytesAllocated int
	nextGC         int
	gray           []value.Obj
	growFactor     int

	// nextGC defaults to a generous initial budget so the first few
	// allocations (the builtins, the top-level script) don't trigger a
	// collection before there are any roots worth tracing.
}

// NewHeap returns an empty heap with a generous initial GC threshold (first
// collection after roughly 1MiB of accounted size). growFactor multiplies
// bytesAllocated to compute each subsequent collection's threshold; pass
// DefaultGrowFactor absent a tuned value.
func NewHeap(growFactor int) *Heap {
	return &Heap{Strings: NewTable(), nextGC: 1 << 20, growFactor: growFactor}
}

// Allocate prepends obj to the heap's intrusive list and updates the
// bytes-allocated counter. Every constructor in this package that produces
// a heap object must route through Allocate before the object becomes
// reachable from a Value.
func (h *Heap) Allocate(obj value.Obj) {
	obj.SetNext(h.head)
	h.head = obj
	h.bytesAllocated += sizeOf(obj)
}

// ShouldCollect reports whether bytesAllocated has crossed nextGC.
func (h *Heap) ShouldCollect() bool { return h.bytesAllocated > h.nextGC }

// BytesAllocated exposes the current accounting total (for tests / tuning).
func (h *Heap) BytesAllocated() int { return h.bytesAllocated }

// InternString returns the canonical String for chars, allocating and
// interning a new one if none exists yet. Two calls with equal chars
// always return the identical *String.
func (h *Heap) InternString(chars string) *String {
	hash := hashString(chars)
	if s := h.Strings.FindInterned(chars, hash); s != nil {
		return s
	}
	s := &String{Chars: chars, Hash: hash}
	h.Allocate(s)
	h.Strings.Set(s, value.Nil)
	return s
}

// Collect runs one mark-sweep cycle. markRoots is invoked once with a mark
// function the caller uses to mark every root Value (stack slots, frame
// closures, open upvalues, globals, and — if compilation is still active —
// any live compiler-context Function objects). Interned strings are marked
// weakly: they are not roots themselves and are swept first, so a String
// reachable only from the intern table is collected.
func (h *Heap) Collect(markRoots func(mark func(value.Value))) {
	h.gray = h.gray[:0]
	markRoots(h.markValue)
	h.trace()
	h.sweepStrings()
	h.sweep()
	h.nextGC = h.bytesAllocated * h.growFactor
}

func (h *Heap) markValue(v value.Value) {
	if v.IsObj() {
		h.markObject(v.AsObj())
	}
}

func (h *Heap) markObject(o value.Obj) {
	if o == nil || o.Marked() {
		return
	}
	o.SetMarked(true)
	h.gray = append(h.gray, o)
}

func (h *Heap) trace() {
	for len(h.gray) > 0 {
		o := h.gray[len(h.gray)-1]
		h.gray = h.gray[:len(h.gray)-1]
		h.blacken(o)
	}
}

// blacken walks o's out-edges, marking (and so graying) everything it
// directly references.
func (h *Heap) blacken(o value.Obj) {
	switch obj := o.(type) {
	case *String:
		// no out-edges
	case *Function:
		if obj.Name != nil {
			h.markObject(obj.Name)
		}
		for _, c := range obj.Chunk.Constants {
			h.markValue(c)
		}
	case *Closure:
		h.markObject(obj.Function)
		for _, uv := range obj.Upvalues {
			h.markObject(uv)
		}
	case *Upvalue:
		h.markValue(*obj.Location)
	case *Native:
		// no out-edges
	case *Class:
		h.markObject(obj.Name)
		for _, v := range obj.Methods.Entries() {
			h.markValue(v)
		}
	case *Instance:
		h.markObject(obj.Class)
		for _, v := range obj.Fields.Entries() {
			h.markValue(v)
		}
	case *BoundMethod:
		h.markValue(obj.Receiver)
		h.markObject(obj.Method)
	case *NativeInstance:
		for _, v := range obj.Elements() {
			h.markValue(v)
		}
	}
}

// sweepStrings clears any interned string whose mark bit is unset: the
// intern table holds weak references, so strings reachable only from it
// must not survive.
func (h *Heap) sweepStrings() {
	for _, s := range h.Strings.Keys() {
		if !s.Marked() {
			h.Strings.Delete(s)
		}
	}
}

// sweep walks the intrusive heap list, freeing unmarked objects and
// unlinking them, and clears the mark bit on survivors for the next cycle.
func (h *Heap) sweep() {
	var prev value.Obj
	node := h.head
	for node != nil {
		next := node.Next()
		if node.Marked() {
			node.SetMarked(false)
			prev = node
		} else {
			h.bytesAllocated -= sizeOf(node)
			if prev == nil {
				h.head = next
			} else {
				prev.SetNext(next)
			}
		}
		node = next
	}
}

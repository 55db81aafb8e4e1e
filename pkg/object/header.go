// Package object implements the heap object kinds, the generic hash table,
// string interning, and the mark-sweep garbage collector.
package object

import "github.com/wisplang/wisp/pkg/value"

// Header is embedded by every concrete object kind. It carries the GC mark
// bit and the forward link of the VM's intrusive heap list; its methods are
// promoted into each concrete type so that every kind automatically
// satisfies value.Obj.
type Header struct {
	marked bool
	next   value.Obj
}

func (h *Header) Marked() bool        { return h.marked }
func (h *Header) SetMarked(m bool)    { h.marked = m }
func (h *Header) Next() value.Obj     { return h.next }
func (h *Header) SetNext(n value.Obj) { h.next = n }

package object

import "github.com/wisplang/wisp/pkg/value"

// String is an interned byte sequence. At most one live String object
// exists per distinct byte sequence (see Heap.InternString); consequently
// string equality in the VM reduces to pointer equality.
type String struct {
	Header
	Chars string
	Hash  uint32
}

func (*String) Kind() value.ObjKind { return value.ObjString }
func (s *String) String() string    { return s.Chars }

// hashString computes the 32-bit FNV-1a hash used for the intern table.
// Go's hash/fnv package implements the identical algorithm;
// it is reimplemented here inline (rather than imported) only because the
// intern table needs the hash of a string *before* allocating an
// io.Writer-shaped hasher, and the loop is three lines — see DESIGN.md for
// why no third-party hashing library applies here.
func hashString(s string) uint32 {
	var hash uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= 16777619
	}
	return hash
}

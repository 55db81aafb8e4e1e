package bytecode

import "github.com/wisplang/wisp/pkg/value"

// MaxConstants is the per-chunk constant-pool ceiling: constant indices are
// encoded in a single byte operand.
const MaxConstants = 256

// Chunk is a compiled function body: an append-only byte stream, a parallel
// per-byte source-line array, and a constant pool.
//
// Invariant: len(Code) == len(Lines). Constant indices fit in one byte
// (len(Constants) <= MaxConstants).
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []value.Value
}

// NewChunk returns an empty chunk with the spec's 8-slot floor capacity.
func NewChunk() *Chunk {
	return &Chunk{
		Code:  make([]byte, 0, 8),
		Lines: make([]int, 0, 8),
	}
}

// Write appends one byte, recording the source line it came from.
func (c *Chunk) Write(b byte, line int) int {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
	return len(c.Code) - 1
}

// AddConstant appends a value to the constant pool and returns its index.
// The caller must guarantee v is reachable (on the VM stack or protected by
// compiler roots) for the duration of this call, since appending may grow
// the backing array and, in a tracing collector, may be observed mid-GC.
func (c *Chunk) AddConstant(v value.Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// PatchJump overwrites the 16-bit big-endian operand at offset with the
// distance from offset+2 to the current end of code, used to back-patch
// forward jumps once the jump target is known.
func (c *Chunk) PatchJump(offset int) {
	jump := len(c.Code) - offset - 2
	c.Code[offset] = byte((jump >> 8) & 0xff)
	c.Code[offset+1] = byte(jump & 0xff)
}

// ReadShort reads the 16-bit big-endian operand at ip.
func (c *Chunk) ReadShort(ip int) int {
	return int(c.Code[ip])<<8 | int(c.Code[ip+1])
}

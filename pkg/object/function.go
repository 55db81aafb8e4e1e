package object

import (
	"fmt"

	"github.com/wisplang/wisp/pkg/bytecode"
	"github.com/wisplang/wisp/pkg/value"
)

// Function is produced by the compiler and is immutable once compiled: an
// arity, an upvalue count, an owned Chunk, and an optional name (nil for
// the top-level script and for lambdas).
type Function struct {
	Header
	Arity      int
	UpvalCount int
	Chunk      *bytecode.Chunk
	Name       *String
}

func (*Function) Kind() value.ObjKind { return value.ObjFunction }

func (f *Function) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name.Chars)
}

// UpvalueCount exposes Function.UpvalCount generically for the
// disassembler, which only has a value.Obj in hand.
func (f *Function) UpvalueCount() int { return f.UpvalCount }

// NewFunction allocates a Function with a fresh empty chunk.
func NewFunction() *Function {
	return &Function{Chunk: bytecode.NewChunk()}
}

// Native is a host function: (argCount, args) -> (Value, error). A non-nil
// error is surfaced as a runtime error by the VM.
type Native struct {
	Header
	Name string
	Fn   func(argCount int, args []value.Value) (value.Value, error)
}

func (*Native) Kind() value.ObjKind { return value.ObjNative }
func (n *Native) String() string    { return fmt.Sprintf("<native fn %s>", n.Name) }

// Closure pairs a Function with its resolved upvalue array.
type Closure struct {
	Header
	Function *Function
	Upvalues []*Upvalue
}

func (*Closure) Kind() value.ObjKind { return value.ObjClosure }
func (c *Closure) String() string    { return c.Function.String() }

// NewClosure allocates a Closure over fn with UpvalCount empty upvalue slots.
func NewClosure(fn *Function) *Closure {
	return &Closure{Function: fn, Upvalues: make([]*Upvalue, fn.UpvalCount)}
}

// Upvalue either points at a live stack slot (open) or owns a closed-over
// Value (closed). It transitions open -> closed exactly once, when the
// stack slot it references is about to leave the stack.
type Upvalue struct {
	Header
	Location *value.Value // points into the VM stack while open
	Closed   value.Value  // owned value once closed
	nextOpen *Upvalue      // VM's open-upvalue list link (descending by address)
}

func (*Upvalue) Kind() value.ObjKind { return value.ObjUpvalue }
func (u *Upvalue) String() string    { return "<upvalue>" }

// NewOpenUpvalue wraps a live stack slot.
func NewOpenUpvalue(slot *value.Value) *Upvalue {
	return &Upvalue{Location: slot}
}

// Close severs the upvalue from the stack, copying the current value into
// its own storage and repointing Location at that owned copy.
func (u *Upvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
	u.nextOpen = nil
}

// NextOpen / SetNextOpen expose the VM's open-upvalue list link.
func (u *Upvalue) NextOpen() *Upvalue     { return u.nextOpen }
func (u *Upvalue) SetNextOpen(n *Upvalue) { u.nextOpen = n }

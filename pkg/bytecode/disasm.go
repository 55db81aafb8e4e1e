package bytecode

import (
	"fmt"
	"io"

	"github.com/wisplang/wisp/pkg/value"
)

// Disassemble writes a human-readable listing of chunk to w, one
// instruction per line, in the style of a classic bytecode-VM debugger. It
// is a read-only diagnostic aid, not part of the language's external
// interface.
func Disassemble(w io.Writer, c *Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		offset = DisassembleInstruction(w, c, offset)
	}
}

// DisassembleInstruction prints the instruction at offset and returns the
// offset of the next instruction.
func DisassembleInstruction(w io.Writer, c *Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", c.Lines[offset])
	}

	op := Op(c.Code[offset])
	switch op {
	case OpConstant, OpGetGlobal, OpDefineGlobal, OpSetGlobal,
		OpGetProperty, OpSetProperty, OpGetSuper, OpClass, OpMethod:
		return constantInstruction(w, op, c, offset)
	case OpGetLocal, OpSetLocal, OpGetUpvalue, OpSetUpvalue, OpCall:
		return byteInstruction(w, op, c, offset)
	case OpInvoke, OpSuperInvoke:
		return invokeInstruction(w, op, c, offset)
	case OpJump, OpJumpIfFalse:
		return jumpInstruction(w, op, c, offset, 1)
	case OpLoop:
		return jumpInstruction(w, op, c, offset, -1)
	case OpClosure:
		return closureInstruction(w, op, c, offset)
	default:
		fmt.Fprintf(w, "%s\n", op)
		return offset + 1
	}
}

func constantInstruction(w io.Writer, op Op, c *Chunk, offset int) int {
	idx := c.Code[offset+1]
	fmt.Fprintf(w, "%-18s %4d '%s'\n", op, idx, describe(c.Constants[idx]))
	return offset + 2
}

func byteInstruction(w io.Writer, op Op, c *Chunk, offset int) int {
	slot := c.Code[offset+1]
	fmt.Fprintf(w, "%-18s %4d\n", op, slot)
	return offset + 2
}

func invokeInstruction(w io.Writer, op Op, c *Chunk, offset int) int {
	idx := c.Code[offset+1]
	argc := c.Code[offset+2]
	fmt.Fprintf(w, "%-18s (%d args) %4d '%s'\n", op, argc, idx, describe(c.Constants[idx]))
	return offset + 3
}

func jumpInstruction(w io.Writer, op Op, c *Chunk, offset int, sign int) int {
	jump := c.ReadShort(offset + 1)
	target := offset + 3 + sign*jump
	fmt.Fprintf(w, "%-18s %4d -> %d\n", op, offset, target)
	return offset + 3
}

func closureInstruction(w io.Writer, op Op, c *Chunk, offset int) int {
	offset++
	idx := c.Code[offset]
	offset++
	fmt.Fprintf(w, "%-18s %4d '%s'\n", op, idx, describe(c.Constants[idx]))
	fn, ok := c.Constants[idx].AsObj().(interface{ UpvalueCount() int })
	if !ok {
		return offset
	}
	for i := 0; i < fn.UpvalueCount(); i++ {
		isLocal := c.Code[offset]
		offset++
		index := c.Code[offset]
		offset++
		kind := "upvalue"
		if isLocal != 0 {
			kind = "local"
		}
		fmt.Fprintf(w, "%04d      |                     %s %d\n", offset-2, kind, index)
	}
	return offset
}

// describe renders a constant value for disassembly, using the value's
// Stringer implementation when available (every object kind implements
// String() for this purpose) and a direct print otherwise.
func describe(v value.Value) string {
	if v.IsObj() {
		if s, ok := v.AsObj().(fmt.Stringer); ok {
			return s.String()
		}
		return "<obj>"
	}
	if v.IsNumber() {
		return fmt.Sprintf("%g", v.AsNumber())
	}
	if v.IsBool() {
		return fmt.Sprintf("%v", v.AsBool())
	}
	return "nil"
}

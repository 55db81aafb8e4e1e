package vm

import (
	"fmt"

	"github.com/wisplang/wisp/internal/diag"
	"github.com/wisplang/wisp/pkg/object"
	"github.com/wisplang/wisp/pkg/value"
)

// runtimeErrorResult builds the backtrace for cause (writing it to stderr
// is the caller's job — callers at the cmd/wisp layer print err.Error()),
// resets both stacks, and returns InterpretRuntimeError. Globals, the heap,
// and the interned-strings table are left untouched so a REPL can keep
// going after a failed line.
func (vm *VM) runtimeErrorResult(cause error) (InterpretResult, error) {
	frames := make([]diag.Frame, 0, vm.frameCount)
	for i := vm.frameCount - 1; i >= 0; i-- {
		fr := vm.frames[i]
		fn := fr.closure.Function
		name := ""
		if fn.Name != nil {
			name = fn.Name.Chars
		}
		line := 0
		if fr.ip-1 >= 0 && fr.ip-1 < len(fn.Chunk.Lines) {
			line = fn.Chunk.Lines[fr.ip-1]
		}
		frames = append(frames, diag.Frame{Name: name, Line: line})
	}
	vm.resetStack()
	return InterpretRuntimeError, diag.NewRuntimeError(cause.Error(), frames)
}

// numberBinop applies op to two number operands; both must be numbers.
func (vm *VM) numberBinop(op func(a, b float64) float64) (value.Value, error) {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return value.Nil, fmt.Errorf("Operands must be numbers.")
	}
	b, a := vm.pop().AsNumber(), vm.pop().AsNumber()
	return value.Number(op(a, b)), nil
}

func (vm *VM) numberCompare(op func(a, b float64) bool) (value.Value, error) {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return value.Nil, fmt.Errorf("Operands must be numbers.")
	}
	b, a := vm.pop().AsNumber(), vm.pop().AsNumber()
	return value.Bool(op(a, b)), nil
}

// add implements ADD: string-concat if both operands are strings, numeric
// add if both are numbers, else a runtime error.
func (vm *VM) add() (value.Value, error) {
	bv, av := vm.peek(0), vm.peek(1)
	switch {
	case av.IsNumber() && bv.IsNumber():
		vm.pop()
		vm.pop()
		return value.Number(av.AsNumber() + bv.AsNumber()), nil
	case av.ObjIs(value.ObjString) && bv.ObjIs(value.ObjString):
		vm.pop()
		vm.pop()
		a := av.AsObj().(*object.String).Chars
		b := bv.AsObj().(*object.String).Chars
		return value.FromObj(vm.heap.InternString(a + b)), nil
	default:
		return value.Nil, fmt.Errorf("Operands must be two numbers or two strings.")
	}
}

// stringify renders v for OP_PRINT and the `string` native, coercing any
// value to its printed form.
func (vm *VM) stringify(v value.Value) string {
	switch {
	case v.IsNil():
		return "nil"
	case v.IsBool():
		return fmt.Sprintf("%v", v.AsBool())
	case v.IsNumber():
		return fmt.Sprintf("%g", v.AsNumber())
	case v.IsObj():
		if s, ok := v.AsObj().(fmt.Stringer); ok {
			return s.String()
		}
		return "<obj>"
	default:
		return ""
	}
}

// Package vm implements the bytecode virtual machine: a fetch-decode-
// execute loop over a shared value stack and a LIFO call-frame stack, with
// closures, classes, inheritance, and bound methods.
package vm

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/wisplang/wisp/internal/config"
	"github.com/wisplang/wisp/pkg/bytecode"
	"github.com/wisplang/wisp/pkg/compiler"
	"github.com/wisplang/wisp/pkg/object"
	"github.com/wisplang/wisp/pkg/value"
)

// InterpretResult reports whether Interpret succeeded, failed to compile,
// or failed at runtime.
type InterpretResult int

const (
	InterpretOK InterpretResult = iota
	InterpretCompileError
	InterpretRuntimeError
)

// frame is one call-frame: a closure, its instruction pointer, and the
// stack slot holding its receiver/arg-0.
type frame struct {
	closure  *object.Closure
	ip       int
	slotBase int
}

// VM executes compiled Functions. Heap, globals, and the open-upvalue list
// persist across Interpret calls so a REPL can chain statements.
type VM struct {
	heap *object.Heap

	stack    []value.Value
	stackTop int

	frames     []frame
	frameCount int

	globals      *object.Table
	openUpvalues *object.Upvalue

	initName *object.String

	Stdout io.Writer
	Stdin  *bufio.Reader
}

// New returns a VM sized per cfg (use config.Defaults() for the
// recommended capacities).
func New(cfg *config.Config) *VM {
	vm := &VM{
		heap:    object.NewHeap(cfg.GCGrowFactor),
		stack:   make([]value.Value, cfg.StackSlots()),
		frames:  make([]frame, cfg.FrameCapacity),
		globals: object.NewTable(),
		Stdout:  os.Stdout,
		Stdin:   bufio.NewReader(os.Stdin),
	}
	vm.initName = vm.heap.InternString("init")
	vm.defineNatives()
	return vm
}

// Interpret compiles and runs source against this VM.
func (vm *VM) Interpret(source string) (InterpretResult, error) {
	fn, err := compiler.New(vm.heap).Compile(source)
	if err != nil {
		return InterpretCompileError, err
	}

	closure := object.NewClosure(fn)
	vm.heap.Allocate(closure)
	vm.push(value.FromObj(closure))
	if err := vm.callClosure(closure, 0); err != nil {
		return vm.runtimeErrorResult(err)
	}

	return vm.run()
}

// ---- stack primitives ----

func (vm *VM) push(v value.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUpvalues = nil
}

// ---- the interpreter loop ----

func (vm *VM) run() (InterpretResult, error) {
	f := &vm.frames[vm.frameCount-1]

	readByte := func() byte {
		b := f.closure.Function.Chunk.Code[f.ip]
		f.ip++
		return b
	}
	readShort := func() int {
		hi, lo := readByte(), readByte()
		return int(hi)<<8 | int(lo)
	}
	readConstant := func() value.Value {
		return f.closure.Function.Chunk.Constants[readByte()]
	}
	readString := func() *object.String {
		return readConstant().AsObj().(*object.String)
	}

	for {
		op := bytecode.Op(readByte())
		switch op {
		case bytecode.OpConstant:
			vm.push(readConstant())
		case bytecode.OpNil:
			vm.push(value.Nil)
		case bytecode.OpTrue:
			vm.push(value.Bool(true))
		case bytecode.OpFalse:
			vm.push(value.Bool(false))
		case bytecode.OpPop:
			vm.pop()
		case bytecode.OpDup:
			vm.push(vm.peek(0))

		case bytecode.OpGetLocal:
			vm.push(vm.stack[f.slotBase+int(readByte())])
		case bytecode.OpSetLocal:
			vm.stack[f.slotBase+int(readByte())] = vm.peek(0)

		case bytecode.OpGetGlobal:
			name := readString()
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeErrorResult(fmt.Errorf("Undefined variable '%s'.", name.Chars))
			}
			vm.push(v)
		case bytecode.OpDefineGlobal:
			vm.globals.Set(readString(), vm.peek(0))
			vm.pop()
		case bytecode.OpSetGlobal:
			name := readString()
			if vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				return vm.runtimeErrorResult(fmt.Errorf("Undefined variable '%s'.", name.Chars))
			}

		case bytecode.OpGetUpvalue:
			vm.push(*f.closure.Upvalues[readByte()].Location)
		case bytecode.OpSetUpvalue:
			*f.closure.Upvalues[readByte()].Location = vm.peek(0)

		case bytecode.OpGetProperty:
			inst, ok := vm.peek(0).AsObj().(*object.Instance)
			if !ok {
				return vm.runtimeErrorResult(fmt.Errorf("Only instances have properties."))
			}
			name := readString()
			if v, ok := inst.Fields.Get(name); ok {
				vm.pop()
				vm.push(v)
				break
			}
			if !vm.bindMethod(inst.Class, name) {
				return vm.runtimeErrorResult(fmt.Errorf("Undefined property '%s'.", name.Chars))
			}
		case bytecode.OpSetProperty:
			inst, ok := vm.peek(1).AsObj().(*object.Instance)
			if !ok {
				return vm.runtimeErrorResult(fmt.Errorf("Only instances have fields."))
			}
			inst.Fields.Set(readString(), vm.peek(0))
			v := vm.pop()
			vm.pop()
			vm.push(v)
		case bytecode.OpGetSuper:
			name := readString()
			super := vm.pop().AsObj().(*object.Class)
			if !vm.bindMethod(super, name) {
				return vm.runtimeErrorResult(fmt.Errorf("Undefined property '%s'.", name.Chars))
			}

		case bytecode.OpEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case bytecode.OpGreater:
			res, err := vm.numberCompare(func(a, b float64) bool { return a > b })
			if err != nil {
				return vm.runtimeErrorResult(err)
			}
			vm.push(res)
		case bytecode.OpLess:
			res, err := vm.numberCompare(func(a, b float64) bool { return a < b })
			if err != nil {
				return vm.runtimeErrorResult(err)
			}
			vm.push(res)
		case bytecode.OpAdd:
			res, err := vm.add()
			if err != nil {
				return vm.runtimeErrorResult(err)
			}
			vm.push(res)
		case bytecode.OpSubtract:
			res, err := vm.numberBinop(func(a, b float64) float64 { return a - b })
			if err != nil {
				return vm.runtimeErrorResult(err)
			}
			vm.push(res)
		case bytecode.OpMultiply:
			res, err := vm.numberBinop(func(a, b float64) float64 { return a * b })
			if err != nil {
				return vm.runtimeErrorResult(err)
			}
			vm.push(res)
		case bytecode.OpDivide:
			res, err := vm.numberBinop(func(a, b float64) float64 { return a / b })
			if err != nil {
				return vm.runtimeErrorResult(err)
			}
			vm.push(res)
		case bytecode.OpIntDivide:
			res, err := vm.numberBinop(func(a, b float64) float64 { return float64(int64(a) / int64(b)) })
			if err != nil {
				return vm.runtimeErrorResult(err)
			}
			vm.push(res)
		case bytecode.OpPow:
			res, err := vm.numberBinop(math.Pow)
			if err != nil {
				return vm.runtimeErrorResult(err)
			}
			vm.push(res)
		case bytecode.OpNot:
			vm.push(value.Bool(vm.pop().Falsey()))
		case bytecode.OpNegate:
			if !vm.peek(0).IsNumber() {
				return vm.runtimeErrorResult(fmt.Errorf("Operand must be a number."))
			}
			vm.push(value.Number(-vm.pop().AsNumber()))

		case bytecode.OpPrint:
			fmt.Fprintln(vm.Stdout, vm.stringify(vm.pop()))

		case bytecode.OpJump:
			f.ip += readShort()
		case bytecode.OpJumpIfFalse:
			offset := readShort()
			if vm.peek(0).Falsey() {
				f.ip += offset
			}
		case bytecode.OpLoop:
			f.ip -= readShort()

		case bytecode.OpCall:
			argCount := int(readByte())
			if err := vm.callValue(vm.peek(argCount), argCount); err != nil {
				return vm.runtimeErrorResult(err)
			}
			f = &vm.frames[vm.frameCount-1]
		case bytecode.OpInvoke:
			name := readString()
			argCount := int(readByte())
			if err := vm.invoke(name, argCount); err != nil {
				return vm.runtimeErrorResult(err)
			}
			f = &vm.frames[vm.frameCount-1]
		case bytecode.OpSuperInvoke:
			name := readString()
			argCount := int(readByte())
			super := vm.pop().AsObj().(*object.Class)
			if err := vm.invokeFromClass(super, name, argCount); err != nil {
				return vm.runtimeErrorResult(err)
			}
			f = &vm.frames[vm.frameCount-1]
		case bytecode.OpClosure:
			fn := readConstant().AsObj().(*object.Function)
			closure := object.NewClosure(fn)
			vm.heap.Allocate(closure)
			for i := 0; i < fn.UpvalCount; i++ {
				isLocal := readByte()
				index := readByte()
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(&vm.stack[f.slotBase+int(index)])
				} else {
					closure.Upvalues[i] = f.closure.Upvalues[index]
				}
			}
			vm.push(value.FromObj(closure))
		case bytecode.OpCloseUpvalue:
			vm.closeUpvalues(&vm.stack[vm.stackTop-1])
			vm.pop()
		case bytecode.OpReturn:
			result := vm.pop()
			vm.closeUpvalues(&vm.stack[f.slotBase])
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop()
				return InterpretOK, nil
			}
			vm.stackTop = f.slotBase
			vm.push(result)
			f = &vm.frames[vm.frameCount-1]

		case bytecode.OpClass:
			vm.push(value.FromObj(vm.newClass(readString())))
		case bytecode.OpInherit:
			super, ok := vm.peek(1).AsObj().(*object.Class)
			if !ok {
				return vm.runtimeErrorResult(fmt.Errorf("Superclass must be a class."))
			}
			sub := vm.peek(0).AsObj().(*object.Class)
			super.Methods.CopyInto(sub.Methods)
			vm.pop()
		case bytecode.OpMethod:
			vm.defineMethod(readString())

		default:
			return vm.runtimeErrorResult(fmt.Errorf("Unknown opcode %d.", byte(op)))
		}

		if vm.heap.ShouldCollect() {
			vm.collectGarbage()
		}
	}
}

func (vm *VM) newClass(name *object.String) *object.Class {
	c := object.NewClass(name)
	vm.heap.Allocate(c)
	return c
}

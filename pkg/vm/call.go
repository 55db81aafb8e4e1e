package vm

import (
	"fmt"
	"unsafe"

	"github.com/wisplang/wisp/pkg/object"
	"github.com/wisplang/wisp/pkg/value"
)

// callValue dispatches OP_CALL's callee by kind: BoundMethod swaps in its
// receiver and calls the method; Class constructs an Instance and runs its
// initializer; Closure pushes a frame; Native invokes immediately.
func (vm *VM) callValue(callee value.Value, argCount int) error {
	if callee.IsObj() {
		switch obj := callee.AsObj().(type) {
		case *object.BoundMethod:
			vm.stack[vm.stackTop-argCount-1] = obj.Receiver
			return vm.callClosure(obj.Method, argCount)
		case *object.Class:
			inst := object.NewInstance(obj)
			vm.heap.Allocate(inst)
			vm.stack[vm.stackTop-argCount-1] = value.FromObj(inst)
			if init, ok := obj.Methods.Get(vm.initName); ok {
				return vm.callClosure(init.AsObj().(*object.Closure), argCount)
			}
			if argCount != 0 {
				return fmt.Errorf("Expected 0 arguments but got %d.", argCount)
			}
			return nil
		case *object.Closure:
			return vm.callClosure(obj, argCount)
		case *object.Native:
			args := vm.stack[vm.stackTop-argCount : vm.stackTop]
			result, err := obj.Fn(argCount, args)
			if err != nil {
				return err
			}
			vm.stackTop -= argCount + 1
			vm.push(result)
			return nil
		}
	}
	return fmt.Errorf("Can only call functions and classes.")
}

// callClosure pushes a new frame for closure: slot base = stack top -
// (argCount+1); arity is checked; the frame-capacity cap is enforced here,
// before the frame is pushed.
func (vm *VM) callClosure(closure *object.Closure, argCount int) error {
	if argCount != closure.Function.Arity {
		return fmt.Errorf("Expected %d arguments but got %d.", closure.Function.Arity, argCount)
	}
	if vm.frameCount == len(vm.frames) {
		return fmt.Errorf("Stack overflow.")
	}
	vm.frames[vm.frameCount] = frame{
		closure:  closure,
		slotBase: vm.stackTop - argCount - 1,
	}
	vm.frameCount++
	return nil
}

// invoke fuses property lookup and call for OP_INVOKE: a field holding a
// callable takes priority over a method of the same name; NativeInstance
// receivers dispatch through Call instead.
func (vm *VM) invoke(name *object.String, argCount int) error {
	receiver := vm.peek(argCount)
	if !receiver.IsObj() {
		return fmt.Errorf("Only instances have methods.")
	}
	switch recv := receiver.AsObj().(type) {
	case *object.Instance:
		if v, ok := recv.Fields.Get(name); ok {
			vm.stack[vm.stackTop-argCount-1] = v
			return vm.callValue(v, argCount)
		}
		return vm.invokeFromClass(recv.Class, name, argCount)
	case *object.NativeInstance:
		args := vm.stack[vm.stackTop-argCount : vm.stackTop]
		result, err := recv.Call(vm.heap, name.Chars, args)
		if err != nil {
			return err
		}
		vm.stackTop -= argCount + 1
		vm.push(result)
		return nil
	default:
		return fmt.Errorf("Only instances have methods.")
	}
}

func (vm *VM) invokeFromClass(class *object.Class, name *object.String, argCount int) error {
	method, ok := class.Methods.Get(name)
	if !ok {
		return fmt.Errorf("Undefined property '%s'.", name.Chars)
	}
	return vm.callClosure(method.AsObj().(*object.Closure), argCount)
}

// bindMethod looks up name in class's method table and, if found, replaces
// the top-of-stack instance with a BoundMethod pairing it as receiver.
func (vm *VM) bindMethod(class *object.Class, name *object.String) bool {
	method, ok := class.Methods.Get(name)
	if !ok {
		return false
	}
	bound := &object.BoundMethod{Receiver: vm.peek(0), Method: method.AsObj().(*object.Closure)}
	vm.heap.Allocate(bound)
	vm.pop()
	vm.push(value.FromObj(bound))
	return true
}

// closeUpvalues closes every open upvalue whose location is at or above
// last, removing it from the open-upvalue list.
func (vm *VM) closeUpvalues(last *value.Value) {
	threshold := slotAddr(last)
	for vm.openUpvalues != nil && slotAddr(vm.openUpvalues.Location) >= threshold {
		uv := vm.openUpvalues
		uv.Close()
		vm.openUpvalues = uv.NextOpen()
	}
}

func (vm *VM) defineMethod(name *object.String) {
	method := vm.peek(0)
	class := vm.peek(1).AsObj().(*object.Class)
	class.Methods.Set(name, method)
	vm.pop()
}

// captureUpvalue returns the existing open upvalue for slot if one is
// already in the descending-by-address list, else inserts a new one in
// sorted position.
func (vm *VM) captureUpvalue(slot *value.Value) *object.Upvalue {
	var prev *object.Upvalue
	cur := vm.openUpvalues
	for cur != nil && slotAddr(cur.Location) > slotAddr(slot) {
		prev = cur
		cur = cur.NextOpen()
	}
	if cur != nil && cur.Location == slot {
		return cur
	}

	created := object.NewOpenUpvalue(slot)
	vm.heap.Allocate(created)
	created.SetNextOpen(cur)
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.SetNextOpen(created)
	}
	return created
}

// slotAddr exposes a stack slot pointer's address for the open-upvalue
// list's descending-by-stack-location ordering; Go gives no portable
// integer view of a pointer other than uintptr for this kind of address
// comparison.
func slotAddr(p *value.Value) uintptr {
	return uintptr(unsafe.Pointer(p))
}

package vm

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wisplang/wisp/pkg/object"
	"github.com/wisplang/wisp/pkg/value"
)

// processStart anchors the clock() native; Wisp reports wall-clock seconds
// since process start as a stand-in for the original's CPU-clock reading,
// since Go exposes no portable per-process CPU-seconds call outside of
// runtime-internal profiling hooks.
var processStart = time.Now()

// defineNatives registers the required native-function table as globals,
// once at VM startup.
func (vm *VM) defineNatives() {
	vm.defineNative("clock", func(argCount int, args []value.Value) (value.Value, error) {
		return value.Number(time.Since(processStart).Seconds()), nil
	})
	vm.defineNative("print", func(argCount int, args []value.Value) (value.Value, error) {
		parts := make([]string, argCount)
		for i, a := range args {
			parts[i] = vm.stringify(a)
		}
		fmt.Fprint(vm.Stdout, strings.Join(parts, " "))
		return value.Nil, nil
	})
	vm.defineNative("println", func(argCount int, args []value.Value) (value.Value, error) {
		parts := make([]string, argCount)
		for i, a := range args {
			parts[i] = vm.stringify(a)
		}
		fmt.Fprintln(vm.Stdout, strings.Join(parts, " "))
		return value.Nil, nil
	})
	vm.defineNative("input", func(argCount int, args []value.Value) (value.Value, error) {
		line, err := vm.Stdin.ReadString('\n')
		if err != nil && line == "" {
			return value.Nil, fmt.Errorf("input(): %v", err)
		}
		line = strings.TrimRight(line, "\r\n")
		return value.FromObj(vm.heap.InternString(line)), nil
	})
	vm.defineNative("number", func(argCount int, args []value.Value) (value.Value, error) {
		if argCount != 1 {
			return value.Nil, fmt.Errorf("number() takes 1 argument.")
		}
		return vm.toNumber(args[0])
	})
	vm.defineNative("string", func(argCount int, args []value.Value) (value.Value, error) {
		if argCount != 1 {
			return value.Nil, fmt.Errorf("string() takes 1 argument.")
		}
		return value.FromObj(vm.heap.InternString(vm.stringify(args[0]))), nil
	})
	vm.defineNative("bool", func(argCount int, args []value.Value) (value.Value, error) {
		if argCount != 1 {
			return value.Nil, fmt.Errorf("bool() takes 1 argument.")
		}
		return value.Bool(args[0].Truthy()), nil
	})
	vm.defineNative("type", func(argCount int, args []value.Value) (value.Value, error) {
		if argCount != 1 {
			return value.Nil, fmt.Errorf("type() takes 1 argument.")
		}
		return value.FromObj(vm.heap.InternString(vm.typeTag(args[0]))), nil
	})
	vm.defineNative("_List", func(argCount int, args []value.Value) (value.Value, error) {
		list := object.NewList()
		vm.heap.Allocate(list)
		return value.FromObj(list), nil
	})
	vm.defineNative("_Map", func(argCount int, args []value.Value) (value.Value, error) {
		m := object.NewMap()
		vm.heap.Allocate(m)
		return value.FromObj(m), nil
	})
}

func (vm *VM) defineNative(name string, fn func(argCount int, args []value.Value) (value.Value, error)) {
	n := &object.Native{Name: name, Fn: fn}
	vm.heap.Allocate(n)
	vm.globals.Set(vm.heap.InternString(name), value.FromObj(n))
}

// toNumber implements the `number` native's coercion table: numbers pass
// through, booleans become 0/1, strings are parsed with a runtime error on
// failure, anything else is a runtime error.
func (vm *VM) toNumber(v value.Value) (value.Value, error) {
	switch {
	case v.IsNumber():
		return v, nil
	case v.IsBool():
		if v.AsBool() {
			return value.Number(1), nil
		}
		return value.Number(0), nil
	case v.ObjIs(value.ObjString):
		s := v.AsObj().(*object.String).Chars
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return value.Nil, fmt.Errorf("Cannot convert '%s' to a number.", s)
		}
		return value.Number(n), nil
	default:
		return value.Nil, fmt.Errorf("Cannot convert value to a number.")
	}
}

// typeTag implements the `type` native's tag table.
func (vm *VM) typeTag(v value.Value) string {
	switch {
	case v.IsNil():
		return "nil"
	case v.IsBool():
		return "bool"
	case v.IsNumber():
		return "number"
	case v.ObjIs(value.ObjString):
		return "string"
	case v.ObjIs(value.ObjClosure), v.ObjIs(value.ObjNative), v.ObjIs(value.ObjBoundMethod):
		return "fn"
	case v.ObjIs(value.ObjClass):
		return v.AsObj().(*object.Class).Name.Chars
	case v.ObjIs(value.ObjInstance):
		return v.AsObj().(*object.Instance).Class.Name.Chars
	case v.ObjIs(value.ObjNativeInstance):
		ni := v.AsObj().(*object.NativeInstance)
		if ni.Sub == object.NativeList {
			return "List"
		}
		return "Map"
	default:
		return "unknown"
	}
}

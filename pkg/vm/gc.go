package vm

import "github.com/wisplang/wisp/pkg/value"

// collectGarbage runs one mark-sweep cycle, supplying the VM's root set:
// every live stack slot, every frame's closure, every open upvalue, and the
// globals table's keys and values. The interned-strings
// table is deliberately NOT marked here — object.Heap.Collect sweeps it
// weakly, so a string reachable only from the intern table is freed.
func (vm *VM) collectGarbage() {
	vm.heap.Collect(func(mark func(value.Value)) {
		for i := 0; i < vm.stackTop; i++ {
			mark(vm.stack[i])
		}
		for i := 0; i < vm.frameCount; i++ {
			mark(value.FromObj(vm.frames[i].closure))
		}
		for uv := vm.openUpvalues; uv != nil; uv = uv.NextOpen() {
			mark(value.FromObj(uv))
		}
		for k, v := range vm.globals.Entries() {
			mark(value.FromObj(k))
			mark(v)
		}
	})
}

package vm

import "github.com/embr-lang/embr/internal/value"

// collectGarbage runs a demonstrative mark-sweep pass over vm.heap (spec
// §5): the Go runtime already owns the actual memory, so this exists to
// model the reclamation discipline spec.md describes — mark every object
// reachable from the stack, the open-upvalue list, every active
// CallFrame's closure, and the globals table, then sweep the heap's
// intrusive list down to what survived.
func (vm *VM) collectGarbage() {
	for i := 0; i < vm.sp; i++ {
		vm.markValue(vm.stack[i])
	}
	for i := 0; i < vm.frameCount; i++ {
		vm.markObject(vm.frames[i].closure)
	}
	for uv := vm.openUpvalues; uv != nil; uv = uv.next {
		vm.markObject(uv.uv)
	}
	vm.globals.table.Each(func(_ string, v value.Value) {
		vm.markValue(v)
	})

	vm.heap.Sweep(value.Marked)
	vm.heap.Walk(value.Unmark)
	vm.gcBaseline = vm.heap.Count()
}

func (vm *VM) markValue(v value.Value) {
	if v.IsObject() {
		vm.markObject(v.AsObject())
	}
}

// markObject marks obj and, the first time it's marked, recurses into
// whatever it references — the "blacken" step of a mark-sweep pass.
func (vm *VM) markObject(obj value.Object) {
	if obj == nil || !value.Mark(obj) {
		return
	}
	switch o := obj.(type) {
	case *value.Closure:
		vm.markObject(o.Function)
		for _, uv := range o.Upvalues {
			vm.markObject(uv)
		}
	case *value.Function:
		for _, c := range o.Chunk.Constants {
			vm.markValue(c)
		}
	case *value.Upvalue:
		vm.markValue(o.Closed)
	case *value.Class:
		for _, m := range o.Methods {
			vm.markObject(m)
		}
	case *value.Instance:
		vm.markObject(o.Class)
		for _, v := range o.Fields {
			vm.markValue(v)
		}
	case *value.BoundMethod:
		vm.markValue(o.Receiver)
		vm.markObject(o.Method)
	case *value.Array:
		for _, v := range o.Elements {
			vm.markValue(v)
		}
	case *value.Dict:
		o.Table.Each(func(_ string, v value.Value) { vm.markValue(v) })
	}
}

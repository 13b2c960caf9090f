package value

// NativeFn is a host-provided callable (spec §3, §4.5): given the argument
// count and slice, returns a result or an error that the VM turns into a
// runtime error.
type NativeFn func(argc int, args []Value) (Value, error)

// Native wraps a NativeFn as a heap object so it can sit on the VM stack
// and be dispatched by OP_CALL like any other callable.
type Native struct {
	ObjHeader
	Name string
	Fn   NativeFn
}

func NewNative(heap *Heap, name string, fn NativeFn) *Native {
	n := &Native{ObjHeader: newObj(ObjNative), Name: name, Fn: fn}
	heap.Track(n)
	return n
}

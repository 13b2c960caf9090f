package value

// Closure pairs a Function with its captured Upvalues (spec §3). It is
// what OP_CLOSURE builds and what OP_CALL actually invokes.
type Closure struct {
	ObjHeader
	Function *Function
	Upvalues []*Upvalue
}

func NewClosure(heap *Heap, fn *Function) *Closure {
	c := &Closure{
		ObjHeader: newObj(ObjClosure),
		Function:  fn,
		Upvalues:  make([]*Upvalue, fn.UpvalueCount),
	}
	heap.Track(c)
	return c
}

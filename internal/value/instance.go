package value

// Instance is produced by calling a Class (spec §3): a class reference
// plus a field table keyed by interned name.
type Instance struct {
	ObjHeader
	Class  *Class
	Fields map[*String]Value
}

func NewInstance(heap *Heap, class *Class) *Instance {
	i := &Instance{ObjHeader: newObj(ObjInstance), Class: class, Fields: make(map[*String]Value)}
	heap.Track(i)
	return i
}

// BoundMethod pairs a receiver with the method Closure resolved against it
// (spec §3): produced by a property read that resolves to a method on an
// Instance rather than a field.
type BoundMethod struct {
	ObjHeader
	Receiver Value
	Method   *Closure
}

func NewBoundMethod(heap *Heap, receiver Value, method *Closure) *BoundMethod {
	b := &BoundMethod{ObjHeader: newObj(ObjBoundMethod), Receiver: receiver, Method: method}
	heap.Track(b)
	return b
}

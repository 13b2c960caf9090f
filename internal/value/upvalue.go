package value

// Upvalue is the indirection a nested function reads/writes a captured
// variable through (spec §3, GLOSSARY). While open it points at a live
// stack slot; Close relocates the value into Closed and redirects Location
// to point at that field, so reads/writes stay uniform either way (spec
// §3's closing invariant).
type Upvalue struct {
	ObjHeader
	Location *Value // points into the stack while open, or &Closed once closed
	Closed   Value
	Next     *Upvalue // not set by the VM; its open list is internal/vm's openUpvalue nodes
}

func NewUpvalue(heap *Heap, slot *Value) *Upvalue {
	uv := &Upvalue{ObjHeader: newObj(ObjUpvalue), Location: slot}
	heap.Track(uv)
	return uv
}

// Close relocates the current value at Location into this Upvalue's own
// storage and redirects Location to it.
func (u *Upvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
}

package value

// Class is created by OP_CLASS and populated by OP_METHOD/OP_INHERIT
// (spec §3, §4.3). Methods are keyed by interned name string so lookups
// and super-dispatch compare by pointer identity.
type Class struct {
	ObjHeader
	Name    string
	Methods map[*String]*Closure
}

func NewClass(heap *Heap, name string) *Class {
	c := &Class{ObjHeader: newObj(ObjClass), Name: name, Methods: make(map[*String]*Closure)}
	heap.Track(c)
	return c
}

// Inherit copies every method of super into c, an at-compile-time-emitted
// but runtime-performed linearization (spec §4.3's OP_INHERIT): later
// OP_METHODs on the subclass shadow the copied entries.
func (c *Class) Inherit(super *Class) {
	for name, method := range super.Methods {
		c.Methods[name] = method
	}
}

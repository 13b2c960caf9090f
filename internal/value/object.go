// Package value implements embr's tagged Value universe and heap object
// variants (spec §3). One file per object kind, mirroring the layout
// mna-nenuphar uses for its lang/types package.
package value

import "github.com/google/uuid"

// ObjType tags the concrete kind of a heap object.
type ObjType byte

const (
	ObjString ObjType = iota
	ObjFunction
	ObjClosure
	ObjUpvalue
	ObjClass
	ObjInstance
	ObjBoundMethod
	ObjArray
	ObjDict
	ObjNative
)

func (t ObjType) String() string {
	switch t {
	case ObjString:
		return "string"
	case ObjFunction:
		return "function"
	case ObjClosure:
		return "closure"
	case ObjUpvalue:
		return "upvalue"
	case ObjClass:
		return "class"
	case ObjInstance:
		return "instance"
	case ObjBoundMethod:
		return "bound method"
	case ObjArray:
		return "array"
	case ObjDict:
		return "dict"
	case ObjNative:
		return "native"
	default:
		return "object"
	}
}

// ObjHeader is embedded by every heap object. It carries the type tag, an
// intrusive-list link so a mark-sweep pass can walk every live object
// (spec §5), and a diagnostic UUID stamped at allocation. Nothing in the
// repository reads the UUID; language-level equality never consults it
// (spec §3).
type ObjHeader struct {
	Type ObjType
	ID   uuid.UUID

	next   Object // intrusive list link, set by Heap.Track
	marked bool
}

// Object is the interface every heap object satisfies.
type Object interface {
	objType() ObjType
	objHeader() *ObjHeader
}

func newObj(t ObjType) ObjHeader {
	return ObjHeader{Type: t, ID: uuid.New()}
}

func (o *ObjHeader) objType() ObjType     { return o.Type }
func (o *ObjHeader) objHeader() *ObjHeader { return o }

// Mark/Marked/Unmark expose the intrusive mark bit a mark-sweep pass needs
// (spec §5) to callers outside this package, which only ever hold an
// Object, never a concrete *ObjHeader. Mark reports whether obj was
// previously unmarked, so a caller doing a graph walk knows whether to
// recurse into its children.
func Mark(obj Object) bool {
	h := obj.objHeader()
	if h.marked {
		return false
	}
	h.marked = true
	return true
}

func Marked(obj Object) bool { return obj.objHeader().marked }
func Unmark(obj Object)      { obj.objHeader().marked = false }

// Heap owns the intrusive list of every live heap object, the root set
// a reclamation scheme walks (spec §5). embr's Go objects are already
// collected by the Go runtime; Heap exists to model the ownership
// discipline spec.md describes and to demonstrate the root walk
// (internal/vm/gc.go performs the actual mark-sweep pass over it).
type Heap struct {
	head  Object
	count int
}

// Track links obj into the intrusive list. Every constructor in this
// package calls it.
func (h *Heap) Track(obj Object) {
	hdr := obj.objHeader()
	hdr.next = h.head
	h.head = obj
	h.count++
}

// Count returns how many objects are currently tracked.
func (h *Heap) Count() int { return h.count }

// Walk calls fn for every tracked object, newest-allocated first.
func (h *Heap) Walk(fn func(Object)) {
	for o := h.head; o != nil; o = o.objHeader().next {
		fn(o)
	}
}

// Sweep drops objects for which keep returns false from the intrusive
// list. It does not free Go memory (the Go GC owns that) — it only
// un-tracks objects the mark phase did not visit, matching a mark-sweep's
// external bookkeeping.
func (h *Heap) Sweep(keep func(Object) bool) int {
	var newHead Object
	var tail Object
	swept := 0
	for o := h.head; o != nil; {
		next := o.objHeader().next
		if keep(o) {
			o.objHeader().next = nil
			if tail == nil {
				newHead = o
			} else {
				tail.objHeader().next = o
			}
			tail = o
		} else {
			swept++
		}
		o = next
	}
	h.head = newHead
	h.count -= swept
	return swept
}

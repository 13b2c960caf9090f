package value

import "github.com/dolthub/swiss"

// StringTable is the dolthub/swiss-backed open-addressing hash map used for
// a Dict's own storage and (internal/vm) the globals table. Instance
// fields, class method tables and the interning set are plain Go maps.
// Swiss is adopted from mna-nenuphar's lang/machine.Map, which wraps the
// same library for its dictionary type — wired here for the identical
// reason: open addressing keeps OP_GET_GLOBAL and dict lookups
// (OP_GET_PROPERTY on a dict, dict indexing) off Go map bucket-chasing.
type StringTable struct {
	m *swiss.Map[*String, Value]
}

func NewStringTable(size int) *StringTable {
	if size < 1 {
		size = 1
	}
	return &StringTable{m: swiss.NewMap[*String, Value](uint32(size))}
}

func (t *StringTable) Get(k *String) (Value, bool) {
	return t.m.Get(k)
}

func (t *StringTable) Set(k *String, v Value) {
	t.m.Put(k, v)
}

func (t *StringTable) Has(k *String) bool {
	return t.m.Has(k)
}

func (t *StringTable) Delete(k *String) bool {
	return t.m.Delete(k)
}

func (t *StringTable) Len() int {
	return t.m.Count()
}

// Each calls fn for every entry. Iteration order is unspecified, matching
// the language's dict semantics (spec §3 names no ordering guarantee).
func (t *StringTable) Each(fn func(key string, v Value)) {
	t.m.Iter(func(k *String, v Value) bool {
		fn(k.Value, v)
		return false
	})
}

// Dict is embr's string-keyed table (spec §3): `{ k: v, ... }` literals,
// `.field` / `["key"]` access, and the `remove` native.
type Dict struct {
	ObjHeader
	Table *StringTable
}

func NewDict(heap *Heap, size int) *Dict {
	d := &Dict{ObjHeader: newObj(ObjDict), Table: NewStringTable(size)}
	heap.Track(d)
	return d
}

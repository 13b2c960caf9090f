package value

// String is embr's interned byte-string object (spec §3). The language is
// byte-oriented: no Unicode-aware operations are performed on it.
type String struct {
	ObjHeader
	Value string
	Hash  uint32
}

// fnv1a computes the FNV-1a hash spec §3 mandates for interning.
func fnv1a(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// Strings is the process-wide interning table: a global dedup set keyed by
// (length, hash, bytes). It backs the compiler's string literals and every
// identifier name constant, and the VM's globals/property name lookups.
type Strings struct {
	heap    *Heap
	entries map[uint32][]*String
}

func NewStrings(heap *Heap) *Strings {
	return &Strings{heap: heap, entries: make(map[uint32][]*String)}
}

// Intern returns the canonical *String for s, allocating one the first
// time s's bytes are seen. Two source occurrences of the same string
// literal are guaranteed identity-equal afterward (spec §8's interning
// invariant).
func (s *Strings) Intern(str string) *String {
	h := fnv1a(str)
	for _, cand := range s.entries[h] {
		if cand.Value == str {
			return cand
		}
	}
	obj := &String{ObjHeader: newObj(ObjString), Value: str, Hash: h}
	s.entries[h] = append(s.entries[h], obj)
	s.heap.Track(obj)
	return obj
}

// Copy interns a freshly-read buffer (scanner/concat results): the "copy"
// operation named in spec §3.
func (s *Strings) Copy(buf []byte) *String {
	return s.Intern(string(buf))
}

// Take adopts ownership of buf, interning it; if a duplicate already
// exists the freshly-built buffer is discarded (Go's GC reclaims it — the
// "take" operation's free-on-duplicate behavior from spec §3 falls out for
// free in a garbage-collected host).
func (s *Strings) Take(buf []byte) *String {
	return s.Intern(string(buf))
}

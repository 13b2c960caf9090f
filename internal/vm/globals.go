package vm

import "github.com/embr-lang/embr/internal/value"

// globals backs OP_DEFINE_GLOBAL/OP_GET_GLOBAL/OP_SET_GLOBAL (spec §3, §6):
// late-bound, interned-name-keyed storage shared by the whole VM and
// every imported module (spec §4.3's import runs against the same VM).
type globals struct {
	table *value.StringTable
}

func newGlobals() *globals {
	return &globals{table: value.NewStringTable(64)}
}

func (g *globals) define(name *value.String, v value.Value) {
	g.table.Set(name, v)
}

func (g *globals) get(name *value.String) (value.Value, bool) {
	return g.table.Get(name)
}

// set implements the spec §3 invariant that OP_SET_GLOBAL never creates:
// assigning to an undefined global is a runtime error, reported by the
// caller when ok is false.
func (g *globals) set(name *value.String, v value.Value) bool {
	if !g.table.Has(name) {
		return false
	}
	g.table.Set(name, v)
	return true
}

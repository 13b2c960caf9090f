package value

// ReturnKind is the static return-type annotation from spec §3:
// `@void|int|float|str|bool`, or ReturnNone when the function is untyped.
type ReturnKind byte

const (
	ReturnNone ReturnKind = iota
	ReturnVoid
	ReturnInt
	ReturnFloat
	ReturnStr
	ReturnBool
)

func (k ReturnKind) String() string {
	switch k {
	case ReturnVoid:
		return "void"
	case ReturnInt:
		return "int"
	case ReturnFloat:
		return "float"
	case ReturnStr:
		return "str"
	case ReturnBool:
		return "bool"
	default:
		return "none"
	}
}

// Function is the compile-time product of compiling one function or
// script body (spec §3): arity, upvalue count, declared return kind, its
// Chunk, and an optional name (empty for the top-level script). Chunk
// lives in this same package (chunk.go) rather than a separate one: its
// constant pool holds Values, and Function (a Value) holds a Chunk, so the
// two are mutually dependent and belong together the way clox's object.h
// and chunk.h are compiled as one translation unit.
type Function struct {
	ObjHeader
	Name         string
	Arity        int
	UpvalueCount int
	ReturnKind   ReturnKind
	Chunk        *Chunk
}

func NewFunction(heap *Heap, name string) *Function {
	f := &Function{ObjHeader: newObj(ObjFunction), Name: name}
	heap.Track(f)
	return f
}

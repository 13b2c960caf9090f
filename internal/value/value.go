package value

import (
	"fmt"
	"math"
	"strconv"
)

// Kind tags which alternative of the Value union is populated.
type Kind byte

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObject
)

// Value is the tagged union described in spec §3: nil, bool, number
// (float64), or a reference to a heap Object. A Value is always passed and
// stored by... value — it is small enough (a tag, a bool, a float64 and a
// two-word interface) that the VM's stack holds Values directly, never
// pointers to them.
type Value struct {
	kind Kind
	b    bool
	n    float64
	obj  Object
}

var Nil = Value{kind: KindNil}

func Bool(b bool) Value   { return Value{kind: KindBool, b: b} }
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }
func Obj(o Object) Value   { return Value{kind: KindObject, obj: o} }

func (v Value) IsNil() bool    { return v.kind == KindNil }
func (v Value) IsBool() bool   { return v.kind == KindBool }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsObject() bool { return v.kind == KindObject }

func (v Value) AsBool() bool     { return v.b }
func (v Value) AsNumber() float64 { return v.n }
func (v Value) AsObject() Object  { return v.obj }

func (v Value) ObjType() ObjType {
	if v.kind != KindObject {
		panic("value: ObjType on non-object Value")
	}
	return v.obj.objType()
}

func (v Value) IsObjType(t ObjType) bool {
	return v.kind == KindObject && v.obj.objType() == t
}

// Truthy implements spec §3: nil and false are falsey; everything else,
// including 0 and "", is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.b
	default:
		return true
	}
}

// Equal implements spec §3 equality: nil=nil; same-tagged primitives by
// value; objects by identity, except interned strings compare equal by
// identity after interning (so string equality IS identity equality here
// — Intern guarantees two equal byte sequences share one String object).
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n
	case KindObject:
		return a.obj == b.obj
	default:
		return false
	}
}

// TypeName returns the language-level type name used in runtime error
// messages.
func (v Value) TypeName() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindObject:
		return v.obj.objType().String()
	default:
		return "value"
	}
}

// Format renders a Value the way OP_OUT does (spec §4.4): nil -> "nil",
// booleans lowercase, numbers with %g, strings raw, objects with their
// type-specific representation.
func (v Value) Format() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.n)
	case KindObject:
		return formatObject(v.obj)
	default:
		return "?"
	}
}

func formatNumber(n float64) string {
	if math.IsInf(n, 1) {
		return "inf"
	}
	if math.IsInf(n, -1) {
		return "-inf"
	}
	if math.IsNaN(n) {
		return "nan"
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}

func formatObject(o Object) string {
	switch obj := o.(type) {
	case *String:
		return obj.Value
	case *Function:
		if obj.Name == "" {
			return "<script>"
		}
		return fmt.Sprintf("<fn %s>", obj.Name)
	case *Closure:
		return formatObject(obj.Function)
	case *Class:
		return fmt.Sprintf("<class %s>", obj.Name)
	case *Instance:
		return fmt.Sprintf("<instance %s>", obj.Class.Name)
	case *BoundMethod:
		return formatObject(obj.Method)
	case *Array:
		return formatArray(obj)
	case *Dict:
		return formatDict(obj)
	case *Native:
		return fmt.Sprintf("<native %s>", obj.Name)
	default:
		return "<object>"
	}
}

func formatArray(a *Array) string {
	s := "["
	for i, v := range a.Elements {
		if i > 0 {
			s += ", "
		}
		if v.IsObjType(ObjString) {
			s += strconv.Quote(v.AsObject().(*String).Value)
		} else {
			s += v.Format()
		}
	}
	return s + "]"
}

func formatDict(d *Dict) string {
	s := "{"
	first := true
	d.Table.Each(func(k string, v Value) {
		if !first {
			s += ", "
		}
		first = false
		s += strconv.Quote(k) + ": " + v.Format()
	})
	return s + "}"
}

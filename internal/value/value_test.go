package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruthy(t *testing.T) {
	require.False(t, Nil.Truthy())
	require.False(t, Bool(false).Truthy())
	require.True(t, Bool(true).Truthy())
	require.True(t, Number(0).Truthy())
	require.True(t, Number(-1).Truthy())

	heap := &Heap{}
	strs := NewStrings(heap)
	require.True(t, Obj(strs.Intern("")).Truthy())
}

func TestEqual_Primitives(t *testing.T) {
	require.True(t, Equal(Nil, Nil))
	require.True(t, Equal(Bool(true), Bool(true)))
	require.False(t, Equal(Bool(true), Bool(false)))
	require.True(t, Equal(Number(1), Number(1)))
	require.False(t, Equal(Number(1), Number(2)))
	require.False(t, Equal(Nil, Bool(false)))
}

func TestEqual_InternedStringsByIdentity(t *testing.T) {
	heap := &Heap{}
	strs := NewStrings(heap)
	a := strs.Intern("hello")
	b := strs.Intern("hello")
	require.True(t, a == b, "two interns of the same text must share one object")
	require.True(t, Equal(Obj(a), Obj(b)))
}

func TestEqual_ObjectsByIdentityOtherwise(t *testing.T) {
	heap := &Heap{}
	a := NewArray(heap, nil)
	b := NewArray(heap, nil)
	require.False(t, Equal(Obj(a), Obj(b)), "distinct arrays are not equal even with identical contents")
	require.True(t, Equal(Obj(a), Obj(a)))
}

func TestFormat(t *testing.T) {
	require.Equal(t, "nil", Nil.Format())
	require.Equal(t, "true", Bool(true).Format())
	require.Equal(t, "false", Bool(false).Format())
	require.Equal(t, "1.5", Number(1.5).Format())
	require.Equal(t, "3", Number(3).Format())
}

func TestFormat_Array(t *testing.T) {
	heap := &Heap{}
	strs := NewStrings(heap)
	arr := NewArray(heap, []Value{Number(1), Obj(strs.Intern("x"))})
	require.Equal(t, `[1, "x"]`, Obj(arr).Format())
}

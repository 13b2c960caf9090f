package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIntern_DedupsByContent(t *testing.T) {
	strs := NewStrings(&Heap{})
	a := strs.Intern("repeat")
	b := strs.Intern("repeat")
	c := strs.Intern("different")
	require.Same(t, a, b)
	require.NotSame(t, a, c)
}

func TestIntern_TracksHeap(t *testing.T) {
	heap := &Heap{}
	strs := NewStrings(heap)
	strs.Intern("a")
	strs.Intern("b")
	strs.Intern("a")
	require.Equal(t, 2, heap.Count())
}

func TestCopyAndTake_BothIntern(t *testing.T) {
	strs := NewStrings(&Heap{})
	a := strs.Copy([]byte("hi"))
	b := strs.Take([]byte("hi"))
	require.Same(t, a, b)
}

func TestFnv1aHash_StableAndDeterministic(t *testing.T) {
	require.Equal(t, fnv1a("abc"), fnv1a("abc"))
	require.NotEqual(t, fnv1a("abc"), fnv1a("abd"))
}

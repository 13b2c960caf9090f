package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeap_TrackAndWalk(t *testing.T) {
	heap := &Heap{}
	a := NewArray(heap, nil)
	b := NewArray(heap, nil)
	require.Equal(t, 2, heap.Count())

	var seen []Object
	heap.Walk(func(o Object) { seen = append(seen, o) })
	require.ElementsMatch(t, []Object{a, b}, seen)
}

func TestHeap_SweepDropsUnmarked(t *testing.T) {
	heap := &Heap{}
	kept := NewArray(heap, nil)
	dropped := NewArray(heap, nil)
	Mark(kept)

	swept := heap.Sweep(Marked)
	require.Equal(t, 1, swept)
	require.Equal(t, 1, heap.Count())

	var seen []Object
	heap.Walk(func(o Object) { seen = append(seen, o) })
	require.Equal(t, []Object{kept}, seen)
	_ = dropped
}

func TestMark_ReportsFirstTimeOnly(t *testing.T) {
	heap := &Heap{}
	obj := NewArray(heap, nil)
	require.True(t, Mark(obj))
	require.False(t, Mark(obj))
	Unmark(obj)
	require.True(t, Mark(obj))
}

package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDict_SetGetDelete(t *testing.T) {
	heap := &Heap{}
	strs := NewStrings(heap)
	d := NewDict(heap, 4)
	key := strs.Intern("a")

	_, ok := d.Table.Get(key)
	require.False(t, ok)

	d.Table.Set(key, Number(1))
	v, ok := d.Table.Get(key)
	require.True(t, ok)
	require.Equal(t, Number(1), v)
	require.Equal(t, 1, d.Table.Len())

	require.True(t, d.Table.Delete(key))
	_, ok = d.Table.Get(key)
	require.False(t, ok)
	require.Equal(t, 0, d.Table.Len())
}

func TestDict_EachVisitsEveryEntry(t *testing.T) {
	heap := &Heap{}
	strs := NewStrings(heap)
	d := NewDict(heap, 4)
	d.Table.Set(strs.Intern("a"), Number(1))
	d.Table.Set(strs.Intern("b"), Number(2))

	seen := map[string]float64{}
	d.Table.Each(func(k string, v Value) { seen[k] = v.AsNumber() })
	require.Equal(t, map[string]float64{"a": 1, "b": 2}, seen)
}

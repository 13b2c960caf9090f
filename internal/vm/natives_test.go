package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/embr-lang/embr/internal/host"
	"github.com/embr-lang/embr/internal/hostconfig"
	"github.com/embr-lang/embr/internal/value"
)

func newTestVM() (*VM, *value.Heap, *value.Strings) {
	heap := &value.Heap{}
	strs := value.NewStrings(heap)
	return New(heap, strs, host.Host{}, hostconfig.Default()), heap, strs
}

// TestNatives_AppendPrepend covers spec §8's array invariants: after
// append(a,v), length grows by one and v lands at the new last slot;
// after prepend(a,v), v lands at slot 0 and every old element shifts up.
func TestNatives_AppendPrepend(t *testing.T) {
	vm, heap, _ := newTestVM()
	a := value.NewArray(heap, []value.Value{value.Number(1), value.Number(2)})

	v, err := nativeAppend(2, []value.Value{value.Obj(a), value.Number(3)})
	require.NoError(t, err)
	require.Equal(t, value.Obj(a), v)
	require.Equal(t, []value.Value{value.Number(1), value.Number(2), value.Number(3)}, a.Elements)

	v2, err := nativePrepend(2, []value.Value{value.Obj(a), value.Number(0)})
	require.NoError(t, err)
	require.Equal(t, value.Obj(a), v2)
	require.Equal(t, []value.Value{value.Number(0), value.Number(1), value.Number(2), value.Number(3)}, a.Elements)
	_ = vm
}

func TestNatives_HeadTailMutateRestDoesNot(t *testing.T) {
	vm, heap, _ := newTestVM()
	a := value.NewArray(heap, []value.Value{value.Number(10), value.Number(20), value.Number(30)})

	head, err := nativeHead(1, []value.Value{value.Obj(a)})
	require.NoError(t, err)
	require.Equal(t, value.Number(10), head)
	require.Equal(t, []value.Value{value.Number(20), value.Number(30)}, a.Elements)

	rest, err := vm.nativeRest(1, []value.Value{value.Obj(a)})
	require.NoError(t, err)
	restArr := rest.AsObject().(*value.Array)
	require.Equal(t, []value.Value{value.Number(30)}, restArr.Elements)
	require.Equal(t, []value.Value{value.Number(20), value.Number(30)}, a.Elements, "rest must not mutate its input")

	tail, err := nativeTail(1, []value.Value{value.Obj(a)})
	require.NoError(t, err)
	require.Equal(t, value.Number(30), tail)
	require.Equal(t, []value.Value{value.Number(20)}, a.Elements)
}

func TestNatives_HeadOnEmptyArrayErrors(t *testing.T) {
	_, heap, _ := newTestVM()
	a := value.NewArray(heap, nil)
	_, err := nativeHead(1, []value.Value{value.Obj(a)})
	require.Error(t, err)
}

func TestNatives_Length(t *testing.T) {
	_, heap, strs := newTestVM()
	a := value.NewArray(heap, []value.Value{value.Number(1), value.Number(2)})
	n, err := nativeLength(1, []value.Value{value.Obj(a)})
	require.NoError(t, err)
	require.Equal(t, value.Number(2), n)

	s := strs.Intern("hello")
	n2, err := nativeLength(1, []value.Value{value.Obj(s)})
	require.NoError(t, err)
	require.Equal(t, value.Number(5), n2)
}

func TestNatives_RemoveMissingKeyReturnsNil(t *testing.T) {
	_, heap, strs := newTestVM()
	d := value.NewDict(heap, 4)
	v, err := nativeRemove(2, []value.Value{value.Obj(d), value.Obj(strs.Intern("missing"))})
	require.NoError(t, err)
	require.True(t, v.IsNil())
}

func TestNatives_RemoveExistingKey(t *testing.T) {
	_, heap, strs := newTestVM()
	d := value.NewDict(heap, 4)
	key := strs.Intern("a")
	d.Table.Set(key, value.Number(42))

	v, err := nativeRemove(2, []value.Value{value.Obj(d), value.Obj(key)})
	require.NoError(t, err)
	require.Equal(t, value.Number(42), v)
	_, ok := d.Table.Get(key)
	require.False(t, ok)
}

func TestNatives_ClockWithoutHostErrors(t *testing.T) {
	vm, _, _ := newTestVM()
	_, err := vm.nativeClock(0, nil)
	require.Error(t, err)
}

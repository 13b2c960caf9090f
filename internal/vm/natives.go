package vm

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/embr-lang/embr/internal/value"
)

// defineNatives registers every spec §4.5 native under its global name.
// Each is a thin adapter from value.Value arguments onto either a host
// hook (clock/time/term — spec §1's external collaborators) or a plain
// container operation.
func (vm *VM) defineNatives() {
	register := func(name string, fn value.NativeFn) {
		native := value.NewNative(vm.heap, name, fn)
		vm.globals.define(vm.strings.Intern(name), value.Obj(native))
	}

	register("clock", vm.nativeClock)
	register("time", vm.nativeTime)
	register("term", vm.nativeTerm)
	register("length", nativeLength)
	register("append", nativeAppend)
	register("prepend", nativePrepend)
	register("head", nativeHead)
	register("tail", nativeTail)
	register("rest", vm.nativeRest)
	register("remove", nativeRemove)
}

func arityError(name string, want, got int) error {
	return fmt.Errorf("%s expects %d argument(s), got %d", name, want, got)
}

func (vm *VM) nativeClock(argc int, args []value.Value) (value.Value, error) {
	if argc != 0 {
		return value.Nil, arityError("clock", 0, argc)
	}
	if vm.host.Clock == nil {
		return value.Nil, fmt.Errorf("clock: no clock configured for this host")
	}
	return value.Number(vm.host.Clock.Monotonic()), nil
}

func (vm *VM) nativeTime(argc int, args []value.Value) (value.Value, error) {
	if argc != 0 {
		return value.Nil, arityError("time", 0, argc)
	}
	if vm.host.Wall == nil {
		return value.Nil, fmt.Errorf("time: no wall clock configured for this host")
	}
	return value.Number(vm.host.Wall.Now()), nil
}

func (vm *VM) nativeTerm(argc int, args []value.Value) (value.Value, error) {
	if argc != 1 || !args[0].IsObjType(value.ObjString) {
		return value.Nil, fmt.Errorf("term expects a single string argument")
	}
	if vm.host.Runner == nil {
		return value.Nil, fmt.Errorf("term: no command runner configured for this host")
	}
	status, err := vm.host.Runner.Run(args[0].AsObject().(*value.String).Value)
	if err != nil {
		return value.Nil, err
	}
	return value.Number(float64(status)), nil
}

func nativeLength(argc int, args []value.Value) (value.Value, error) {
	if argc != 1 {
		return value.Nil, arityError("length", 1, argc)
	}
	switch {
	case args[0].IsObjType(value.ObjString):
		return value.Number(float64(len(args[0].AsObject().(*value.String).Value))), nil
	case args[0].IsObjType(value.ObjArray):
		return value.Number(float64(args[0].AsObject().(*value.Array).Len())), nil
	case args[0].IsObjType(value.ObjDict):
		return value.Number(float64(args[0].AsObject().(*value.Dict).Table.Len())), nil
	default:
		return value.Nil, fmt.Errorf("length expects a string, array or dict")
	}
}

func nativeAppend(argc int, args []value.Value) (value.Value, error) {
	if argc != 2 || !args[0].IsObjType(value.ObjArray) {
		return value.Nil, fmt.Errorf("append expects (array, value)")
	}
	arr := args[0].AsObject().(*value.Array)
	arr.Elements = append(arr.Elements, args[1])
	return args[0], nil
}

func nativePrepend(argc int, args []value.Value) (value.Value, error) {
	if argc != 2 || !args[0].IsObjType(value.ObjArray) {
		return value.Nil, fmt.Errorf("prepend expects (array, value)")
	}
	arr := args[0].AsObject().(*value.Array)
	arr.Elements = slices.Insert(arr.Elements, 0, args[1])
	return args[0], nil
}

// nativeHead returns and removes the first element (spec §4.5).
func nativeHead(argc int, args []value.Value) (value.Value, error) {
	if argc != 1 || !args[0].IsObjType(value.ObjArray) {
		return value.Nil, fmt.Errorf("head expects an array")
	}
	arr := args[0].AsObject().(*value.Array)
	if len(arr.Elements) == 0 {
		return value.Nil, fmt.Errorf("head: empty array")
	}
	v := arr.Elements[0]
	arr.Elements = slices.Delete(arr.Elements, 0, 1)
	return v, nil
}

// nativeTail returns and removes the last element (spec §4.5).
func nativeTail(argc int, args []value.Value) (value.Value, error) {
	if argc != 1 || !args[0].IsObjType(value.ObjArray) {
		return value.Nil, fmt.Errorf("tail expects an array")
	}
	arr := args[0].AsObject().(*value.Array)
	n := len(arr.Elements)
	if n == 0 {
		return value.Nil, fmt.Errorf("tail: empty array")
	}
	v := arr.Elements[n-1]
	arr.Elements = slices.Delete(arr.Elements, n-1, n)
	return v, nil
}

// nativeRest returns a new array without the first element, leaving the
// original untouched (spec §4.5 — the one container native that copies
// rather than mutating in place). It needs vm.heap to track the new
// Array, so unlike its siblings it's a VM method rather than a bare func.
func (vm *VM) nativeRest(argc int, args []value.Value) (value.Value, error) {
	if argc != 1 || !args[0].IsObjType(value.ObjArray) {
		return value.Nil, fmt.Errorf("rest expects an array")
	}
	arr := args[0].AsObject().(*value.Array)
	if len(arr.Elements) == 0 {
		return value.Obj(value.NewArray(vm.heap, nil)), nil
	}
	rest := slices.Delete(slices.Clone(arr.Elements), 0, 1)
	return value.Obj(value.NewArray(vm.heap, rest)), nil
}

func nativeRemove(argc int, args []value.Value) (value.Value, error) {
	if argc != 2 || !args[0].IsObjType(value.ObjDict) || !args[1].IsObjType(value.ObjString) {
		return value.Nil, fmt.Errorf("remove expects (dict, string key)")
	}
	d := args[0].AsObject().(*value.Dict)
	key := args[1].AsObject().(*value.String)
	v, ok := d.Table.Get(key)
	if !ok {
		return value.Nil, nil
	}
	d.Table.Delete(key)
	return v, nil
}

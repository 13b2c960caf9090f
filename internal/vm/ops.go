package vm

import "github.com/embr-lang/embr/internal/value"

// numericBinary pops two numbers, applies fn, and pushes the result (spec
// §4.4's OP_SUBTRACT/OP_MULTIPLY/OP_GREATER/OP_LESS family).
func (vm *VM) numericBinary(fn func(a, b float64) value.Value) bool {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("operands must be numbers")
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	vm.push(fn(a, b))
	return true
}

// intBinary implements the bitwise family (spec §4.4): operands truncate
// to int64 the way embr's single numeric type stands in for both integer
// and floating-point arithmetic.
func (vm *VM) intBinary(fn func(a, b int64) int64) bool {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("operands must be numbers")
	}
	b := int64(vm.pop().AsNumber())
	a := int64(vm.pop().AsNumber())
	vm.push(value.Number(float64(fn(a, b))))
	return true
}

// add implements OP_ADD's two overloads (spec §4.4): numeric addition, or
// string concatenation when either operand is a string (the other is
// rendered with Format() and interned, so "x" + 1 -> "x1").
func (vm *VM) add() bool {
	b := vm.peek(0)
	a := vm.peek(1)
	if a.IsNumber() && b.IsNumber() {
		vm.pop()
		vm.pop()
		vm.push(value.Number(a.AsNumber() + b.AsNumber()))
		return true
	}
	if a.IsObjType(value.ObjString) || b.IsObjType(value.ObjString) {
		vm.pop()
		vm.pop()
		result := a.Format() + b.Format()
		vm.push(value.Obj(vm.strings.Intern(result)))
		return true
	}
	return vm.runtimeError("operands must be two numbers or involve a string")
}

// divide implements OP_DIVIDE (spec §4.4): unlike modulo, a zero divisor
// is not a runtime error — IEEE-754 division already yields +-inf or nan,
// which embr lets through unchanged.
func (vm *VM) divide() bool {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("operands must be numbers")
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	vm.push(value.Number(a / b))
	return true
}

func (vm *VM) modulo() bool {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("operands must be numbers")
	}
	b := int64(vm.pop().AsNumber())
	a := int64(vm.pop().AsNumber())
	if b == 0 {
		return vm.runtimeError("division by zero")
	}
	vm.push(value.Number(float64(a % b)))
	return true
}

// getProperty implements OP_GET_PROPERTY (spec §4.4): on an Instance, a
// field hit returns the field, otherwise it falls through to a bound
// method lookup (same precedence order as clox's instance property read);
// on a Dict, it returns the value for the interned-string key, or nil if
// absent — `.` always compiles to OP_GET_PROPERTY regardless of receiver
// type (internal/compiler/compiler.go's dot()), so both receiver kinds
// have to be handled here, the same way objectGet handles both for `[]`.
func (vm *VM) getProperty(frame *CallFrame) bool {
	name := frame.readString()
	recvVal := vm.peek(0)
	if !recvVal.IsObject() {
		return vm.runtimeError("only instances and dicts have properties")
	}
	switch obj := recvVal.AsObject().(type) {
	case *value.Instance:
		if v, ok := obj.Fields[name]; ok {
			vm.pop()
			vm.push(v)
			return true
		}
		method, ok := obj.Class.Methods[name]
		if !ok {
			return vm.runtimeError("undefined property '%s'", name.Value)
		}
		vm.pop() // receiver
		vm.push(value.Obj(value.NewBoundMethod(vm.heap, recvVal, method)))
		return true
	case *value.Dict:
		v, _ := obj.Table.Get(name)
		vm.pop()
		vm.push(v)
		return true
	default:
		return vm.runtimeError("only instances and dicts have properties")
	}
}

// setProperty implements OP_SET_PROPERTY (spec §4.4): instance sets field,
// dict sets key, else runtime error.
func (vm *VM) setProperty(frame *CallFrame) bool {
	name := frame.readString()
	recvVal := vm.peek(1)
	if !recvVal.IsObject() {
		return vm.runtimeError("only instances and dicts have fields")
	}
	switch obj := recvVal.AsObject().(type) {
	case *value.Instance:
		v := vm.pop()
		obj.Fields[name] = v
		vm.pop()
		vm.push(v)
		return true
	case *value.Dict:
		v := vm.pop()
		obj.Table.Set(name, v)
		vm.pop()
		vm.push(v)
		return true
	default:
		return vm.runtimeError("only instances and dicts have fields")
	}
}

// bindMethod looks name up in class.Methods and pushes a BoundMethod
// pairing receiver with it (spec §3, used by OP_GET_SUPER — the caller has
// already popped both the superclass and the receiver off the stack).
func (vm *VM) bindMethod(class *value.Class, name *value.String, receiver value.Value) bool {
	method, ok := class.Methods[name]
	if !ok {
		return vm.runtimeError("undefined property '%s'", name.Value)
	}
	vm.push(value.Obj(value.NewBoundMethod(vm.heap, receiver, method)))
	return true
}

// objectGet implements `a[i]` for both Array and Dict (spec §3, §4.4).
func (vm *VM) objectGet() bool {
	index := vm.pop()
	target := vm.pop()
	if !target.IsObject() {
		return vm.runtimeError("cannot index a %s", target.TypeName())
	}
	switch obj := target.AsObject().(type) {
	case *value.Array:
		if !index.IsNumber() {
			return vm.runtimeError("array index must be a number")
		}
		i := int(index.AsNumber())
		if i < 0 || i >= len(obj.Elements) {
			return vm.runtimeError("array index out of range: %d", i)
		}
		vm.push(obj.Elements[i])
		return true
	case *value.Dict:
		if !index.IsObjType(value.ObjString) {
			return vm.runtimeError("dict key must be a string")
		}
		v, ok := obj.Table.Get(index.AsObject().(*value.String))
		if !ok {
			return vm.runtimeError("key not found: %s", index.Format())
		}
		vm.push(v)
		return true
	default:
		return vm.runtimeError("cannot index a %s", target.TypeName())
	}
}

func (vm *VM) objectSet() bool {
	val := vm.pop()
	index := vm.pop()
	target := vm.pop()
	if !target.IsObject() {
		return vm.runtimeError("cannot index a %s", target.TypeName())
	}
	switch obj := target.AsObject().(type) {
	case *value.Array:
		if !index.IsNumber() {
			return vm.runtimeError("array index must be a number")
		}
		i := int(index.AsNumber())
		if i < 0 || i >= len(obj.Elements) {
			return vm.runtimeError("array index out of range: %d", i)
		}
		obj.Elements[i] = val
		vm.push(val)
		return true
	case *value.Dict:
		if !index.IsObjType(value.ObjString) {
			return vm.runtimeError("dict key must be a string")
		}
		obj.Table.Set(index.AsObject().(*value.String), val)
		vm.push(val)
		return true
	default:
		return vm.runtimeError("cannot index a %s", target.TypeName())
	}
}

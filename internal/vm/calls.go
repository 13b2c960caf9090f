package vm

import "github.com/embr-lang/embr/internal/value"

// callValue dispatches OP_CALL's callee, which may be a Closure, a
// Native, a Class (constructing an Instance and running `init` if
// present), or a BoundMethod (spec §3, §4.4).
func (vm *VM) callValue(callee value.Value, argc int) bool {
	if !callee.IsObject() {
		return vm.runtimeError("can only call functions and classes")
	}
	switch obj := callee.AsObject().(type) {
	case *value.Closure:
		return vm.callClosure(obj, argc)
	case *value.Native:
		return vm.callNative(obj, argc)
	case *value.Class:
		instance := value.NewInstance(vm.heap, obj)
		vm.stack[vm.sp-argc-1] = value.Obj(instance)
		if init, ok := obj.Methods[vm.initName()]; ok {
			return vm.callClosure(init, argc)
		}
		if argc != 0 {
			return vm.runtimeError("expected 0 arguments but got %d", argc)
		}
		return true
	case *value.BoundMethod:
		vm.stack[vm.sp-argc-1] = obj.Receiver
		return vm.callClosure(obj.Method, argc)
	default:
		return vm.runtimeError("can only call functions and classes")
	}
}

// initName interns "init" once the constructor-name the compiler uses to
// mark an initializer (spec §4.3). Interning on every call is cheap
// (interning dedups), but caching it on the VM would work just as well;
// kept simple since construction is not embr's hottest path.
func (vm *VM) initName() *value.String { return vm.strings.Intern("init") }

func (vm *VM) callClosure(closure *value.Closure, argc int) bool {
	if argc != closure.Function.Arity {
		return vm.runtimeError("expected %d arguments but got %d", closure.Function.Arity, argc)
	}
	if vm.frameCount >= len(vm.frames) {
		return vm.runtimeError("stack overflow")
	}
	frame := &vm.frames[vm.frameCount]
	frame.closure = closure
	frame.ip = 0
	frame.base = vm.sp - argc - 1
	vm.frameCount++
	return true
}

func (vm *VM) callNative(native *value.Native, argc int) bool {
	args := vm.stack[vm.sp-argc : vm.sp]
	result, err := native.Fn(argc, args)
	if err != nil {
		return vm.runtimeError("%s", err)
	}
	vm.sp -= argc + 1
	if err := vm.push(result); err != nil {
		return vm.runtimeError("%s", err)
	}
	return true
}

// invoke fuses OP_GET_PROPERTY + OP_CALL into one dispatch (spec §4.4):
// if the property is a field holding something callable, it calls that;
// otherwise it resolves a method directly, skipping the BoundMethod
// allocation a plain get-then-call would need.
func (vm *VM) invoke(name *value.String, argc int) bool {
	recvVal := vm.peek(argc)
	instance, ok := recvVal.AsObject().(*value.Instance)
	if !recvVal.IsObject() || !ok {
		return vm.runtimeError("only instances have methods")
	}
	if v, ok := instance.Fields[name]; ok {
		vm.stack[vm.sp-argc-1] = v
		return vm.callValue(v, argc)
	}
	return vm.invokeFromClass(instance.Class, name, argc)
}

func (vm *VM) invokeFromClass(class *value.Class, name *value.String, argc int) bool {
	method, ok := class.Methods[name]
	if !ok {
		return vm.runtimeError("undefined property '%s'", name.Value)
	}
	return vm.callClosure(method, argc)
}

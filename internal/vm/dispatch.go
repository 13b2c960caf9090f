package vm

import (
	"fmt"

	"github.com/embr-lang/embr/internal/value"
)

// run is the dispatch loop (spec §4.4): decode one opcode from the
// current frame, act on it, repeat until OP_RETURN unwinds the outermost
// frame or a runtime error aborts. Grounded on kristofer-smog's
// VM.Run's instruction switch, restructured around embr's CallFrame stack
// instead of smog's single flat ip.
func (vm *VM) run() error {
	frame := vm.frame()
	for {
		if vm.heap.Count()-vm.gcBaseline >= vm.config.GCAllocThreshold {
			vm.collectGarbage()
		}
		// Several handlers below ignore push's error, so a full value stack
		// is reported here, before the next instruction can lose a value.
		if vm.sp >= len(vm.stack) {
			return vm.asError(vm.runtimeError("stack overflow"))
		}

		op := value.OpCode(frame.readByte())
		switch op {
		case value.OpConstant:
			if err := vm.push(frame.readConstant()); err != nil {
				return vm.asError(vm.runtimeError("%s", err))
			}

		case value.OpConstantLong:
			if err := vm.push(frame.readConstantLong()); err != nil {
				return vm.asError(vm.runtimeError("%s", err))
			}

		case value.OpNil:
			vm.push(value.Nil)
		case value.OpTrue:
			vm.push(value.Bool(true))
		case value.OpFalse:
			vm.push(value.Bool(false))
		case value.OpPop:
			vm.pop()

		case value.OpGetLocal:
			slot := int(frame.readByte())
			vm.push(vm.stack[frame.base+slot])
		case value.OpSetLocal:
			slot := int(frame.readByte())
			vm.stack[frame.base+slot] = vm.peek(0)

		case value.OpGetUpvalue:
			slot := frame.readByte()
			vm.push(*frame.closure.Upvalues[slot].Location)
		case value.OpSetUpvalue:
			slot := frame.readByte()
			*frame.closure.Upvalues[slot].Location = vm.peek(0)

		case value.OpDefineGlobal:
			name := frame.readString()
			vm.globals.define(name, vm.peek(0))
			vm.pop()
		case value.OpGetGlobal:
			name := frame.readString()
			v, ok := vm.globals.get(name)
			if !ok {
				return vm.asError(vm.runtimeError("undefined variable '%s'", name.Value))
			}
			vm.push(v)
		case value.OpSetGlobal:
			name := frame.readString()
			if !vm.globals.set(name, vm.peek(0)) {
				return vm.asError(vm.runtimeError("undefined variable '%s'", name.Value))
			}

		case value.OpGetProperty:
			if !vm.getProperty(frame) {
				return vm.lastErr
			}
		case value.OpSetProperty:
			if !vm.setProperty(frame) {
				return vm.lastErr
			}
		case value.OpGetSuper:
			name := frame.readString()
			super := vm.pop().AsObject().(*value.Class)
			receiver := vm.pop()
			if !vm.bindMethod(super, name, receiver) {
				return vm.lastErr
			}

		case value.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case value.OpGreater:
			if !vm.numericBinary(func(a, b float64) value.Value { return value.Bool(a > b) }) {
				return vm.lastErr
			}
		case value.OpLess:
			if !vm.numericBinary(func(a, b float64) value.Value { return value.Bool(a < b) }) {
				return vm.lastErr
			}

		case value.OpAdd:
			if !vm.add() {
				return vm.lastErr
			}
		case value.OpSubtract:
			if !vm.numericBinary(func(a, b float64) value.Value { return value.Number(a - b) }) {
				return vm.lastErr
			}
		case value.OpMultiply:
			if !vm.numericBinary(func(a, b float64) value.Value { return value.Number(a * b) }) {
				return vm.lastErr
			}
		case value.OpDivide:
			if !vm.divide() {
				return vm.lastErr
			}
		case value.OpModulo:
			if !vm.modulo() {
				return vm.lastErr
			}
		case value.OpNegate:
			if !vm.peek(0).IsNumber() {
				return vm.asError(vm.runtimeError("operand must be a number"))
			}
			vm.push(value.Number(-vm.pop().AsNumber()))

		case value.OpBitAnd:
			if !vm.intBinary(func(a, b int64) int64 { return a & b }) {
				return vm.lastErr
			}
		case value.OpBitOr:
			if !vm.intBinary(func(a, b int64) int64 { return a | b }) {
				return vm.lastErr
			}
		case value.OpBitXor:
			if !vm.intBinary(func(a, b int64) int64 { return a ^ b }) {
				return vm.lastErr
			}
		case value.OpShiftLeft:
			if !vm.intBinary(func(a, b int64) int64 { return a << uint(b) }) {
				return vm.lastErr
			}
		case value.OpShiftRight:
			if !vm.intBinary(func(a, b int64) int64 { return a >> uint(b) }) {
				return vm.lastErr
			}
		case value.OpBitNot:
			if !vm.peek(0).IsNumber() {
				return vm.asError(vm.runtimeError("operand must be a number"))
			}
			vm.push(value.Number(float64(^int64(vm.pop().AsNumber()))))

		case value.OpNot:
			vm.push(value.Bool(!vm.pop().Truthy()))

		case value.OpOut:
			fmt.Fprintln(vm.Stdout, vm.pop().Format())

		case value.OpJump:
			offset := frame.readShort()
			frame.ip += offset
		case value.OpJumpIfFalse:
			offset := frame.readShort()
			if !vm.peek(0).Truthy() {
				frame.ip += offset
			}
		case value.OpLoop:
			offset := frame.readShort()
			frame.ip -= offset

		case value.OpCall:
			argc := int(frame.readByte())
			if !vm.callValue(vm.peek(argc), argc) {
				return vm.lastErr
			}
			frame = vm.frame()

		case value.OpInvoke:
			name := frame.readString()
			argc := int(frame.readByte())
			if !vm.invoke(name, argc) {
				return vm.lastErr
			}
			frame = vm.frame()

		case value.OpSuperInvoke:
			name := frame.readString()
			argc := int(frame.readByte())
			super := vm.pop().AsObject().(*value.Class)
			if !vm.invokeFromClass(super, name, argc) {
				return vm.lastErr
			}
			frame = vm.frame()

		case value.OpClosure:
			fn := frame.readConstant().AsObject().(*value.Function)
			closure := value.NewClosure(vm.heap, fn)
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := frame.readByte()
				index := frame.readByte()
				if isLocal == 1 {
					closure.Upvalues[i] = vm.captureUpvalue(frame.base + int(index))
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}
			vm.push(value.Obj(closure))

		case value.OpCloseUpvalue:
			vm.closeUpvalues(vm.sp - 1)
			vm.pop()

		case value.OpReturn:
			result := vm.pop()
			vm.closeUpvalues(frame.base)
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop()
				return nil
			}
			vm.sp = frame.base
			if err := vm.push(result); err != nil {
				return vm.asError(vm.runtimeError("%s", err))
			}
			frame = vm.frame()

		case value.OpClass:
			name := frame.readString()
			vm.push(value.Obj(value.NewClass(vm.heap, name.Value)))
		case value.OpInherit:
			sub := vm.peek(0).AsObject().(*value.Class)
			superVal := vm.peek(1)
			super, ok := superVal.AsObject().(*value.Class)
			if !superVal.IsObject() || !ok {
				return vm.asError(vm.runtimeError("superclass must be a class"))
			}
			sub.Inherit(super)
			vm.pop() // subclass (spec §6: OP_INHERIT is stack Δ −1)
		case value.OpMethod:
			name := frame.readString()
			method := vm.pop().AsObject().(*value.Closure)
			class := vm.peek(0).AsObject().(*value.Class)
			class.Methods[name] = method

		case value.OpArray:
			count := int(frame.readByte())
			elems := make([]value.Value, count)
			copy(elems, vm.stack[vm.sp-count:vm.sp])
			vm.sp -= count
			vm.push(value.Obj(value.NewArray(vm.heap, elems)))

		case value.OpDict:
			count := int(frame.readByte())
			d := value.NewDict(vm.heap, count)
			base := vm.sp - count*2
			for i := 0; i < count; i++ {
				k := vm.stack[base+i*2].AsObject().(*value.String)
				v := vm.stack[base+i*2+1]
				d.Table.Set(k, v)
			}
			vm.sp = base
			vm.push(value.Obj(d))

		case value.OpObjectGet:
			if !vm.objectGet() {
				return vm.lastErr
			}
		case value.OpObjectSet:
			if !vm.objectSet() {
				return vm.lastErr
			}

		default:
			return vm.asError(vm.runtimeError("unknown opcode %d", byte(op)))
		}
	}
}

func (vm *VM) asError(ok bool) error {
	if ok {
		return nil
	}
	return vm.lastErr
}


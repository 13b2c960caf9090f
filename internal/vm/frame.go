package vm

import "github.com/embr-lang/embr/internal/value"

// CallFrame is one activation record (spec §4.4): a running Closure, an
// instruction pointer private to that call, and the value-stack slot its
// locals start at. Grounded on kristofer-smog's pkg/vm.StackFrame /
// funvibe-funxy's call-frame bookkeeping, but — unlike smog's single flat
// VM — embr keeps a frame per call so OP_RETURN can unwind to exactly the
// caller's ip and stack base (spec §4.4's CallFrame array).
type CallFrame struct {
	closure *value.Closure
	ip      int
	base    int
}

func (f *CallFrame) chunk() *value.Chunk { return f.closure.Function.Chunk }

func (f *CallFrame) readByte() byte {
	b := f.chunk().Code[f.ip]
	f.ip++
	return b
}

func (f *CallFrame) readShort() int {
	hi := f.chunk().Code[f.ip]
	lo := f.chunk().Code[f.ip+1]
	f.ip += 2
	return int(hi)<<8 | int(lo)
}

func (f *CallFrame) readConstant() value.Value {
	return f.chunk().Constants[f.readByte()]
}

func (f *CallFrame) readConstantLong() value.Value {
	return f.chunk().Constants[f.readShort()]
}

func (f *CallFrame) readString() *value.String {
	return f.readConstant().AsObject().(*value.String)
}

func (f *CallFrame) line() int {
	return f.chunk().GetLine(f.ip - 1)
}

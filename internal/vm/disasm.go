package vm

import (
	"fmt"
	"strings"

	"github.com/embr-lang/embr/internal/value"
)

// Disassemble renders every instruction in chunk as human-readable text,
// one line per instruction, prefixed with name (spec §4.6 debug tooling).
// Grounded on kristofer-smog's pkg/bytecode formatting and pkg/vm/debugger.go,
// adapted to embr's flat byte-buffer Chunk rather than smog's pre-decoded
// Instruction slice.
func Disassemble(chunk *value.Chunk, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	for offset := 0; offset < len(chunk.Code); {
		line, next := DisassembleInstruction(chunk, offset)
		b.WriteString(line)
		b.WriteByte('\n')
		offset = next
	}
	return b.String()
}

// DisassembleInstruction formats the single instruction at offset and
// returns the offset of the next one.
func DisassembleInstruction(chunk *value.Chunk, offset int) (string, int) {
	var b strings.Builder
	fmt.Fprintf(&b, "%04d ", offset)

	line := chunk.GetLine(offset)
	if offset > 0 && line == chunk.GetLine(offset-1) {
		b.WriteString("   | ")
	} else {
		fmt.Fprintf(&b, "%4d ", line)
	}

	op := value.OpCode(chunk.Code[offset])
	switch op {
	case value.OpConstant:
		return constantInstr(&b, chunk, op, offset)
	case value.OpConstantLong:
		return constantLongInstr(&b, chunk, op, offset)
	case value.OpGetLocal, value.OpSetLocal, value.OpGetUpvalue, value.OpSetUpvalue,
		value.OpCall, value.OpArray, value.OpDict:
		return byteInstr(&b, chunk, op, offset)
	case value.OpDefineGlobal, value.OpGetGlobal, value.OpSetGlobal,
		value.OpGetProperty, value.OpSetProperty, value.OpGetSuper,
		value.OpClass, value.OpMethod:
		return constantInstr(&b, chunk, op, offset)
	case value.OpInvoke, value.OpSuperInvoke:
		return invokeInstr(&b, chunk, op, offset)
	case value.OpJump, value.OpJumpIfFalse:
		return jumpInstr(&b, chunk, op, offset, 1)
	case value.OpLoop:
		return jumpInstr(&b, chunk, op, offset, -1)
	case value.OpClosure:
		return closureInstr(&b, chunk, offset)
	default:
		fmt.Fprintf(&b, "%s", op)
		return b.String(), offset + 1
	}
}

func simpleName(b *strings.Builder, op value.OpCode) {
	fmt.Fprintf(b, "%-16s", op.String())
}

func constantInstr(b *strings.Builder, chunk *value.Chunk, op value.OpCode, offset int) (string, int) {
	idx := chunk.Code[offset+1]
	simpleName(b, op)
	fmt.Fprintf(b, " %4d '%s'", idx, chunk.Constants[idx].Format())
	return b.String(), offset + 2
}

func constantLongInstr(b *strings.Builder, chunk *value.Chunk, op value.OpCode, offset int) (string, int) {
	idx := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	simpleName(b, op)
	fmt.Fprintf(b, " %4d '%s'", idx, chunk.Constants[idx].Format())
	return b.String(), offset + 3
}

func byteInstr(b *strings.Builder, chunk *value.Chunk, op value.OpCode, offset int) (string, int) {
	slot := chunk.Code[offset+1]
	simpleName(b, op)
	fmt.Fprintf(b, " %4d", slot)
	return b.String(), offset + 2
}

func invokeInstr(b *strings.Builder, chunk *value.Chunk, op value.OpCode, offset int) (string, int) {
	idx := chunk.Code[offset+1]
	argc := chunk.Code[offset+2]
	simpleName(b, op)
	fmt.Fprintf(b, " (%d args) %4d '%s'", argc, idx, chunk.Constants[idx].Format())
	return b.String(), offset + 3
}

func jumpInstr(b *strings.Builder, chunk *value.Chunk, op value.OpCode, offset, sign int) (string, int) {
	jump := int(chunk.Code[offset+1])<<8 | int(chunk.Code[offset+2])
	simpleName(b, op)
	fmt.Fprintf(b, " %4d -> %d", offset, offset+3+sign*jump)
	return b.String(), offset + 3
}

func closureInstr(b *strings.Builder, chunk *value.Chunk, offset int) (string, int) {
	idx := chunk.Code[offset+1]
	simpleName(b, value.OpClosure)
	fmt.Fprintf(b, " %4d '%s'", idx, chunk.Constants[idx].Format())
	next := offset + 2
	fn, ok := chunk.Constants[idx].AsObject().(*value.Function)
	if ok {
		for i := 0; i < fn.UpvalueCount; i++ {
			isLocal := chunk.Code[next]
			index := chunk.Code[next+1]
			kind := "upvalue"
			if isLocal == 1 {
				kind = "local"
			}
			fmt.Fprintf(b, "\n%04d      |                     %s %d", next, kind, index)
			next += 2
		}
	}
	return b.String(), next
}

package vm

import "github.com/embr-lang/embr/internal/value"

// openUpvalue links an Upvalue still pointing into the live stack to the
// slot index it was captured at, so the VM can find/close it without
// doing pointer arithmetic on the stack's backing array.
type openUpvalue struct {
	index int
	uv    *value.Upvalue
	next  *openUpvalue
}

// captureUpvalue returns an open Upvalue for stack slot idx, reusing an
// existing one if a closure already captured that exact slot (spec §3:
// closures sharing a captured local share one Upvalue). The open list is
// kept sorted by descending slot index, mirroring clox's captureUpvalue
// and this language's GLOSSARY description of the structure.
func (vm *VM) captureUpvalue(idx int) *value.Upvalue {
	var prev *openUpvalue
	cur := vm.openUpvalues
	for cur != nil && cur.index > idx {
		prev = cur
		cur = cur.next
	}
	if cur != nil && cur.index == idx {
		return cur.uv
	}

	uv := value.NewUpvalue(vm.heap, &vm.stack[idx])
	node := &openUpvalue{index: idx, uv: uv, next: cur}
	if prev == nil {
		vm.openUpvalues = node
	} else {
		prev.next = node
	}
	return uv
}

// closeUpvalues closes every open upvalue at or above fromIdx, relocating
// each one's value off the stack before the frame that owns it is
// discarded (spec §3's closing invariant; used by OP_CLOSE_UPVALUE and on
// function return).
func (vm *VM) closeUpvalues(fromIdx int) {
	for vm.openUpvalues != nil && vm.openUpvalues.index >= fromIdx {
		vm.openUpvalues.uv.Close()
		vm.openUpvalues = vm.openUpvalues.next
	}
}

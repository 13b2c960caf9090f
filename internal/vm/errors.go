// Package vm implements embr's stack-based bytecode interpreter (spec §4.4).
package vm

import (
	"fmt"
	"strings"
)

// StackFrame is one entry of a RuntimeError's trace: which function was
// running and at what source line, captured at the moment the error was
// raised. Named and shaped after kristofer-smog's pkg/vm.StackFrame, minus
// the Selector/SourceCol fields embr has no use for.
type StackFrame struct {
	Name string
	Line int
}

// RuntimeError is a dynamic (as opposed to compile-time) error (spec §7):
// a message plus the call stack at the point of failure, deepest call
// first. The VM unwinds every CallFrame on a RuntimeError rather than
// trying to resume.
type RuntimeError struct {
	Message string
	Trace   []StackFrame
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, f := range e.Trace {
		b.WriteString("\n  at ")
		if f.Name == "" {
			b.WriteString("<script>")
		} else {
			b.WriteString(f.Name + "()")
		}
		fmt.Fprintf(&b, " [line %d]", f.Line)
	}
	return b.String()
}

func newRuntimeError(msg string, trace []StackFrame) *RuntimeError {
	return &RuntimeError{Message: msg, Trace: trace}
}

package compiler

import "fmt"

// CompileError is one static diagnostic (spec §7): unexpected token,
// missing terminator, invalid assignment target, over-limit locals, and
// so on. The compiler accumulates these rather than stopping at the
// first one, the way kristofer-smog's parser.Parser.errors does. Errors
// raised while the compiler is in panic mode are dropped; after
// synchronize() the next error is collected again, so one compile can
// return several (cmd/embr prints just the first).
type CompileError struct {
	Line    int
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
}

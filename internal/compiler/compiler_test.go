package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/embr-lang/embr/internal/value"
)

func compileOK(t *testing.T, src string) *value.Function {
	t.Helper()
	heap := &value.Heap{}
	strs := value.NewStrings(heap)
	c := New(src, heap, strs, func(string) error { return nil })
	fn, errs := c.Compile()
	require.Empty(t, errs)
	require.NotNil(t, fn)
	return fn
}

func opBytes(ops ...any) []byte {
	var out []byte
	for _, o := range ops {
		switch v := o.(type) {
		case value.OpCode:
			out = append(out, byte(v))
		case byte:
			out = append(out, v)
		case int:
			out = append(out, byte(v))
		}
	}
	return out
}

// TestCompile_ArithmeticPrecedence asserts on the exact emitted bytecode
// for spec §8 scenario 1 (`1 + 2 * 3`), per the compiler's design note:
// since there is no AST, compiler tests assert on opcode sequences.
func TestCompile_ArithmeticPrecedence(t *testing.T) {
	fn := compileOK(t, "1 + 2 * 3;")
	want := opBytes(
		value.OpConstant, 0,
		value.OpConstant, 1,
		value.OpConstant, 2,
		value.OpMultiply,
		value.OpAdd,
		value.OpPop,
		value.OpNil,
		value.OpReturn,
	)
	require.Equal(t, want, fn.Chunk.Code)
	require.Equal(t, []value.Value{value.Number(1), value.Number(2), value.Number(3)}, fn.Chunk.Constants)
}

func TestCompile_StringConcatNoCoercionAtCompileTime(t *testing.T) {
	fn := compileOK(t, `"a" + "b";`)
	want := opBytes(value.OpConstant, 0, value.OpConstant, 1, value.OpAdd, value.OpPop, value.OpNil, value.OpReturn)
	require.Equal(t, want, fn.Chunk.Code)
}

func TestCompile_GlobalDefineGetSet(t *testing.T) {
	fn := compileOK(t, "var x = 1; x = 2; x;")
	require.Equal(t, value.OpDefineGlobal, value.OpCode(fn.Chunk.Code[2]))
	require.Contains(t, fn.Chunk.Code, byte(value.OpSetGlobal))
	require.Contains(t, fn.Chunk.Code, byte(value.OpGetGlobal))
}

func TestCompile_LocalsUseSlotOpcodesNotGlobals(t *testing.T) {
	fn := compileOK(t, "{ var x = 1; x = x + 1; }")
	require.NotContains(t, fn.Chunk.Code, byte(value.OpDefineGlobal))
	require.Contains(t, fn.Chunk.Code, byte(value.OpGetLocal))
	require.Contains(t, fn.Chunk.Code, byte(value.OpSetLocal))
}

func TestCompile_AndOrShortCircuit(t *testing.T) {
	fn := compileOK(t, "true and false;")
	require.Equal(t, value.OpJumpIfFalse, value.OpCode(fn.Chunk.Code[1]))
	fn2 := compileOK(t, "true or false;")
	require.Equal(t, value.OpJumpIfFalse, value.OpCode(fn2.Chunk.Code[1]))
	require.Equal(t, value.OpJump, value.OpCode(fn2.Chunk.Code[4]))
}

func TestCompile_ClosureCapturesUpvalue(t *testing.T) {
	fn := compileOK(t, `
		fn make() {
			var x = 0;
			fn inc() { x = x + 1; return x; }
			return inc;
		}
	`)
	// make()'s Function constant holds inc's Function as one of its
	// constants; inc's Function.UpvalueCount must be 1 for the one
	// captured local (spec §8's invariant on upvalueCount).
	var makeFn *value.Function
	for _, c := range fn.Chunk.Constants {
		if c.IsObjType(value.ObjFunction) {
			makeFn = c.AsObject().(*value.Function)
		}
	}
	require.NotNil(t, makeFn)
	var incFn *value.Function
	for _, c := range makeFn.Chunk.Constants {
		if c.IsObjType(value.ObjFunction) {
			incFn = c.AsObject().(*value.Function)
		}
	}
	require.NotNil(t, incFn)
	require.Equal(t, 1, incFn.UpvalueCount)
	require.Contains(t, incFn.Chunk.Code, byte(value.OpGetUpvalue))
	require.Contains(t, incFn.Chunk.Code, byte(value.OpSetUpvalue))
}

func TestCompile_ReturnTypeMismatchIsCompileError(t *testing.T) {
	heap := &value.Heap{}
	strs := value.NewStrings(heap)
	c := New(`fn bad() @int { return "x"; }`, heap, strs, func(string) error { return nil })
	_, errs := c.Compile()
	require.NotEmpty(t, errs)
	require.Contains(t, errs[0].Error(), "Function must return a number")
}

func TestCompile_SelfReferenceInInitializerIsError(t *testing.T) {
	heap := &value.Heap{}
	strs := value.NewStrings(heap)
	c := New(`{ var x = x; }`, heap, strs, func(string) error { return nil })
	_, errs := c.Compile()
	require.NotEmpty(t, errs)
}

func TestCompile_DuplicateLocalInSameScopeIsError(t *testing.T) {
	heap := &value.Heap{}
	strs := value.NewStrings(heap)
	c := New(`{ var x = 1; var x = 2; }`, heap, strs, func(string) error { return nil })
	_, errs := c.Compile()
	require.NotEmpty(t, errs)
}

func TestCompile_ThisOutsideClassIsError(t *testing.T) {
	heap := &value.Heap{}
	strs := value.NewStrings(heap)
	c := New(`fn f() { return this; }`, heap, strs, func(string) error { return nil })
	_, errs := c.Compile()
	require.NotEmpty(t, errs)
}

func TestCompile_ClassInheritSelfIsError(t *testing.T) {
	heap := &value.Heap{}
	strs := value.NewStrings(heap)
	c := New(`class A < A {}`, heap, strs, func(string) error { return nil })
	_, errs := c.Compile()
	require.NotEmpty(t, errs)
}

func TestCompile_PanicModeSuppressesCascadingErrors(t *testing.T) {
	heap := &value.Heap{}
	strs := value.NewStrings(heap)
	// Two independent syntax errors on two statements; synchronize()
	// should let the second be reported too, but never more than one
	// per malformed statement (spec §4.3 panic-mode recovery).
	c := New(`var ; var ;`, heap, strs, func(string) error { return nil })
	_, errs := c.Compile()
	require.Len(t, errs, 2)
}

func TestCompile_ArrayAndDictLiterals(t *testing.T) {
	fn := compileOK(t, `[1, 2, 3];`)
	require.Contains(t, fn.Chunk.Code, byte(value.OpArray))

	fn2 := compileOK(t, `var d = {"a": 1};`)
	require.Contains(t, fn2.Chunk.Code, byte(value.OpDict))
}

func TestCompile_IndexOpcode(t *testing.T) {
	fn := compileOK(t, `var a = [1]; a[0];`)
	require.Contains(t, fn.Chunk.Code, byte(value.OpObjectGet))
}

func TestCompile_PropertyOpcodes(t *testing.T) {
	fn := compileOK(t, `
		class C { init() { this.x = 1; } }
		var c = C();
		c.x;
	`)
	require.Contains(t, fn.Chunk.Code, byte(value.OpGetProperty))

	found := false
	var walk func(f *value.Function)
	walk = func(f *value.Function) {
		for _, b := range f.Chunk.Code {
			if value.OpCode(b) == value.OpSetProperty {
				found = true
			}
		}
		for _, c := range f.Chunk.Constants {
			if c.IsObjType(value.ObjFunction) {
				walk(c.AsObject().(*value.Function))
			}
		}
	}
	walk(fn)
	require.True(t, found)
}

func TestCompile_MethodInvokeFuses(t *testing.T) {
	fn := compileOK(t, `
		class C { greet() { out "hi"; } }
		var c = C();
		c.greet();
	`)
	require.Contains(t, fn.Chunk.Code, byte(value.OpInvoke))
}

func TestCompile_SuperInvoke(t *testing.T) {
	fn := compileOK(t, `
		class A { greet() { out "A"; } }
		class B < A { greet() { super.greet(); } }
	`)
	require.Contains(t, fn.Chunk.Code, byte(value.OpInherit))
	// B.greet's own chunk is nested; search all function constants for
	// OP_SUPER_INVOKE.
	found := false
	var walk func(f *value.Function)
	walk = func(f *value.Function) {
		for _, b := range f.Chunk.Code {
			if value.OpCode(b) == value.OpSuperInvoke {
				found = true
			}
		}
		for _, c := range f.Chunk.Constants {
			if c.IsObjType(value.ObjFunction) {
				walk(c.AsObject().(*value.Function))
			}
		}
	}
	walk(fn)
	require.True(t, found)
}

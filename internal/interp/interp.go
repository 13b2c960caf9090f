// Package interp wires internal/compiler and internal/vm together behind
// the single entry point a host actually calls (spec §1's pipeline: source
// -> compiler -> chunk -> VM -> exit code). It is the one package allowed
// to know about both, resolving the compiler's need to invoke a full
// compile-and-run for `import` without compiler importing vm directly.
package interp

import (
	"fmt"
	"io"
	"strings"

	"github.com/embr-lang/embr/internal/compiler"
	"github.com/embr-lang/embr/internal/host"
	"github.com/embr-lang/embr/internal/hostconfig"
	"github.com/embr-lang/embr/internal/value"
	"github.com/embr-lang/embr/internal/vm"
)

// CompileErrors wraps every static diagnostic accumulated from one compile
// (spec §7): cmd/embr reports only the first but exits 65 regardless of
// how many were collected.
type CompileErrors []*compiler.CompileError

func (e CompileErrors) Error() string {
	var b strings.Builder
	for i, ce := range e {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(ce.Error())
	}
	return b.String()
}

// First returns the first reported diagnostic, the one cmd/embr prints.
func (e CompileErrors) First() *compiler.CompileError { return e[0] }

// Interpreter owns one shared heap, string interner, and VM — shared
// across the top-level program and every module it imports, so object
// identity and string interning hold across import boundaries (spec
// §4.3).
type Interpreter struct {
	heap    *value.Heap
	strings *value.Strings
	vm      *vm.VM
	host    host.Host
}

func New(h host.Host, cfg hostconfig.Config) *Interpreter {
	heap := &value.Heap{}
	strs := value.NewStrings(heap)
	return &Interpreter{
		heap:    heap,
		strings: strs,
		vm:      vm.New(heap, strs, h, cfg),
		host:    h,
	}
}

// SetStdout redirects where `out` statements write, the way cmd/embr's
// default os.Stdout can be swapped for a capture buffer in tests.
func (in *Interpreter) SetStdout(w io.Writer) { in.vm.Stdout = w }

// Run compiles and executes source as the top-level program. A
// CompileErrors means the program never ran at all (exit 65); any other
// error is a *vm.RuntimeError from execution (exit 70).
func (in *Interpreter) Run(source string) error {
	fn, errs := in.compileUnit(source)
	if len(errs) > 0 {
		return CompileErrors(errs)
	}
	return in.vm.Interpret(fn)
}

// Disassemble compiles source without running it and returns its bytecode
// listing (spec §4.6 debug tooling), recursing into every nested function
// constant the way kristofer-smog's debugger walks class method tables.
func (in *Interpreter) Disassemble(source, name string) (string, error) {
	fn, errs := in.compileUnit(source)
	if len(errs) > 0 {
		return "", CompileErrors(errs)
	}
	var b strings.Builder
	disassembleFunctionTree(&b, fn, name)
	return b.String(), nil
}

func disassembleFunctionTree(b *strings.Builder, fn *value.Function, name string) {
	b.WriteString(vm.Disassemble(fn.Chunk, name))
	for _, c := range fn.Chunk.Constants {
		if !c.IsObjType(value.ObjFunction) {
			continue
		}
		nested := c.AsObject().(*value.Function)
		nestedName := nested.Name
		if nestedName == "" {
			nestedName = "<anonymous>"
		}
		b.WriteByte('\n')
		disassembleFunctionTree(b, nested, nestedName)
	}
}

func (in *Interpreter) compileUnit(source string) (*value.Function, []*compiler.CompileError) {
	hook := func(name string) error {
		if in.host.Loader == nil {
			return fmt.Errorf("import: no source loader configured")
		}
		src, err := in.host.Loader.Load(name)
		if err != nil {
			return err
		}
		fn, errs := in.compileUnit(src)
		if len(errs) > 0 {
			return CompileErrors(errs)
		}
		return in.vm.Interpret(fn)
	}
	c := compiler.New(source, in.heap, in.strings, hook)
	return c.Compile()
}

package interp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/embr-lang/embr/internal/host"
	"github.com/embr-lang/embr/internal/hostconfig"
)

func run(t *testing.T, src string) string {
	t.Helper()
	var out bytes.Buffer
	it := New(host.Host{}, hostconfig.Default())
	it.SetStdout(&out)
	err := it.Run(src)
	require.NoError(t, err)
	return out.String()
}

// TestScenario1_ArithmeticPrecedence is spec §8 scenario 1.
func TestScenario1_ArithmeticPrecedence(t *testing.T) {
	out := run(t, "out 1 + 2 * 3;")
	require.Equal(t, "7\n", out)
}

// TestScenario2_ClosureCapturesMutableLocal is spec §8 scenario 2.
func TestScenario2_ClosureCapturesMutableLocal(t *testing.T) {
	src := `
		fn make(){ var x=0; fn inc(){ x=x+1; return x; } return inc; }
		var f=make(); out f(); out f(); out f();
	`
	out := run(t, src)
	require.Equal(t, "1\n2\n3\n", out)
}

// TestScenario3_InheritanceAndSuper is spec §8 scenario 3.
func TestScenario3_InheritanceAndSuper(t *testing.T) {
	src := `
		class A{ greet(){ out "A"; } }
		class B < A { greet(){ super.greet(); out "B"; } }
		B().greet();
	`
	out := run(t, src)
	require.Equal(t, "A\nB\n", out)
}

// TestScenario4_DictRemoveAndPropertyAccess is spec §8 scenario 4.
func TestScenario4_DictRemoveAndPropertyAccess(t *testing.T) {
	src := `var d = {"a": 1, "b": 2}; remove(d,"a"); out length(d); out d.b;`
	out := run(t, src)
	require.Equal(t, "1\n2\n", out)
}

// TestScenario5_ArrayNatives is spec §8 scenario 5.
func TestScenario5_ArrayNatives(t *testing.T) {
	src := `var a=[10,20,30]; out head(a); out tail(a); out length(a); out a[0];`
	out := run(t, src)
	require.Equal(t, "10\n30\n1\n20\n", out)
}

// TestScenario6_ReturnTypeMismatchIsCompileError is spec §8 scenario 6.
func TestScenario6_ReturnTypeMismatchIsCompileError(t *testing.T) {
	var out bytes.Buffer
	it := New(host.Host{}, hostconfig.Default())
	it.SetStdout(&out)
	err := it.Run(`fn bad() @int { return "x"; } out bad();`)
	require.Error(t, err)
	var ce CompileErrors
	require.ErrorAs(t, err, &ce)
	require.Contains(t, ce.First().Error(), "Function must return a number")
}

func TestRun_UndefinedGlobalIsRuntimeError(t *testing.T) {
	it := New(host.Host{}, hostconfig.Default())
	it.SetStdout(&bytes.Buffer{})
	err := it.Run(`out undefinedThing;`)
	require.Error(t, err)
	_, isCompileErr := err.(CompileErrors)
	require.False(t, isCompileErr, "undefined global is a runtime error, not a compile error")
}

func TestRun_DivisionByZeroIsInfNotError(t *testing.T) {
	out := run(t, `out 1 / 0;`)
	require.Equal(t, "inf\n", out)
}

func TestRun_ModuloByZeroIsRuntimeError(t *testing.T) {
	it := New(host.Host{}, hostconfig.Default())
	it.SetStdout(&bytes.Buffer{})
	err := it.Run(`out 1 % 0;`)
	require.Error(t, err)
}

func TestRun_ArrayOutOfRangeIsRuntimeError(t *testing.T) {
	it := New(host.Host{}, hostconfig.Default())
	it.SetStdout(&bytes.Buffer{})
	err := it.Run(`var a = [1]; out a[5];`)
	require.Error(t, err)
	require.Contains(t, strings.ToLower(err.Error()), "out of range")
}

func TestRun_TruthinessOfZeroAndEmptyString(t *testing.T) {
	out := run(t, `if (0) { out "zero is truthy"; } if ("") { out "empty str is truthy"; }`)
	require.Equal(t, "zero is truthy\nempty str is truthy\n", out)
}

func TestRun_ImportRunsHookedSource(t *testing.T) {
	var out bytes.Buffer
	h := host.Host{Loader: stubLoader{"greeter": `out "hello from import";`}}
	it := New(h, hostconfig.Default())
	it.SetStdout(&out)
	err := it.Run(`import greeter;`)
	require.NoError(t, err)
	require.Equal(t, "hello from import\n", out.String())
}

type stubLoader map[string]string

func (s stubLoader) Load(name string) (string, error) { return s[name], nil }

func TestDisassemble_ListsOpcodes(t *testing.T) {
	it := New(host.Host{}, hostconfig.Default())
	listing, err := it.Disassemble("out 1 + 2;", "test")
	require.NoError(t, err)
	require.Contains(t, listing, "ADD")
	require.Contains(t, listing, "OUT")
}

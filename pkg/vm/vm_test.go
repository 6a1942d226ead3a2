package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, source string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	vm := NewWithOutput(&buf)
	err := vm.Interpret(source)
	return buf.String(), err
}

func TestPrintArithmetic(t *testing.T) {
	out, err := run(t, "print 1 + 2;")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}

func TestStringInterningEquality(t *testing.T) {
	out, err := run(t, `var a = "hi"; var b = "hi"; print a == b;`)
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestWhileLoop(t *testing.T) {
	out, err := run(t, "var i = 0; while (i < 3) { print i; i = i + 1; }")
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n2\n", out)
}

func TestFibonacciRecursion(t *testing.T) {
	out, err := run(t, `fun fib(n) { if (n < 2) return n; return fib(n-1) + fib(n-2); } print fib(10);`)
	require.NoError(t, err)
	assert.Equal(t, "55\n", out)
}

func TestScopeShadowing(t *testing.T) {
	out, err := run(t, `var x = 1; { var x = 2; print x; } print x;`)
	require.NoError(t, err)
	assert.Equal(t, "2\n1\n", out)
}

func TestStringConcatenation(t *testing.T) {
	out, err := run(t, `print "a" + "b" + "c";`)
	require.NoError(t, err)
	assert.Equal(t, "abc\n", out)
}

func TestEmptyProgramPrintsNothingAndExitsCleanly(t *testing.T) {
	out, err := run(t, "")
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestForLoop(t *testing.T) {
	out, err := run(t, "for (var i = 0; i < 3; i = i + 1) { print i; }")
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n2\n", out)
}

// TestAndOrShortCircuit checks that the right-hand operand is never
// evaluated once the result is already determined — each rhs here would
// raise a runtime type error if reached.
func TestAndOrShortCircuit(t *testing.T) {
	out, err := run(t, `print false and (1 + "x" == 1); print true or (1 + "x" == 1);`)
	require.NoError(t, err)
	assert.Equal(t, "false\ntrue\n", out)
}

func TestUndefinedGlobalIsRuntimeError(t *testing.T) {
	_, err := run(t, "print undefinedThing;")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Undefined variable")
}

func TestTypeErrorOnArithmetic(t *testing.T) {
	_, err := run(t, `print 1 + "a";`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Operands must be")
}

func TestCallingNonFunctionIsRuntimeError(t *testing.T) {
	_, err := run(t, "var x = 1; x();")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can only call functions")
}

func TestArityMismatchIsRuntimeError(t *testing.T) {
	_, err := run(t, "fun f(a, b) { return a; } f(1);")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected 2 arguments but got 1")
}

func TestRuntimeErrorIncludesStackTrace(t *testing.T) {
	_, err := run(t, "fun f() { return 1 + \"a\"; } f();")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[line 1] in f")
	assert.Contains(t, err.Error(), "[line 1] in script")
}

func TestCompileErrorSurfacesAsCompileErrors(t *testing.T) {
	vm := NewWithOutput(&bytes.Buffer{})
	err := vm.Interpret("print ;")
	require.Error(t, err)
	var ce *CompileErrors
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Error(), "[line 1] Error")
}

func TestGlobalsPersistAcrossInterpretCalls(t *testing.T) {
	var buf bytes.Buffer
	vmInstance := NewWithOutput(&buf)
	require.NoError(t, vmInstance.Interpret("var counter = 0;"))
	require.NoError(t, vmInstance.Interpret("counter = counter + 1; print counter;"))
	require.NoError(t, vmInstance.Interpret("counter = counter + 1; print counter;"))
	assert.Equal(t, "1\n2\n", buf.String())
}

func TestStackResetsAfterRuntimeErrorButGlobalsSurvive(t *testing.T) {
	var buf bytes.Buffer
	vmInstance := NewWithOutput(&buf)
	require.NoError(t, vmInstance.Interpret("var a = 1;"))
	err := vmInstance.Interpret("print a + nope;")
	require.Error(t, err)
	require.NoError(t, vmInstance.Interpret("print a;"))
	assert.Equal(t, "1\n", buf.String())
}

// TestCallDepthBoundary exercises the deepest recursion that still fits
// the 64-frame limit: the top-level script occupies one frame, leaving
// room for 63 nested recurse() activations (n = 62 down to 0), for 64
// live frames total.
func TestCallDepthBoundary(t *testing.T) {
	var src strings.Builder
	src.WriteString("fun recurse(n) { if (n <= 0) return 0; return recurse(n - 1); }\n")
	src.WriteString("print recurse(62);\n")
	_, err := run(t, src.String())
	require.NoError(t, err)
}

// TestCallDepthOverflowIsRuntimeError pushes one recursion level past the
// boundary above, which must be rejected rather than silently truncated.
func TestCallDepthOverflowIsRuntimeError(t *testing.T) {
	var src strings.Builder
	src.WriteString("fun recurse(n) { if (n <= 0) return 0; return recurse(n - 1); }\n")
	src.WriteString("print recurse(63);\n")
	_, err := run(t, src.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Stack overflow")
}

func TestNativeClockReturnsNumber(t *testing.T) {
	out, err := run(t, "print clock() >= 0;")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)
}

func TestNativeStringHelpers(t *testing.T) {
	out, err := run(t, `print len("hello"); print substr("hello", 1, 3);`)
	require.NoError(t, err)
	assert.Equal(t, "5\nell\n", out)
}

package compiler

import (
	"testing"

	"github.com/ember-lang/ember/pkg/chunk"
	"github.com/ember-lang/ember/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, source string) *chunk.Chunk {
	t.Helper()
	fn, errs := Compile(source, table.NewStrings())
	require.Empty(t, errs)
	require.NotNil(t, fn)
	return fn.Chunk.(*chunk.Chunk)
}

func TestCompileSimplePrint(t *testing.T) {
	c := compile(t, "print 1 + 2;")
	ops := opcodesOf(c)
	assert.Contains(t, ops, chunk.OpAdd)
	assert.Contains(t, ops, chunk.OpPrint)
	assert.Equal(t, chunk.OpReturn, ops[len(ops)-1])
}

func opcodesOf(c *chunk.Chunk) []chunk.Opcode {
	var out []chunk.Opcode
	i := 0
	for i < len(c.Ops) {
		op := chunk.Opcode(c.Ops[i])
		out = append(out, op)
		i += operandWidth(op) + 1
	}
	return out
}

func operandWidth(op chunk.Opcode) int {
	switch op {
	case chunk.OpConstant, chunk.OpGetLocal, chunk.OpSetLocal,
		chunk.OpGetGlobal, chunk.OpSetGlobal, chunk.OpDefGlobal, chunk.OpCall:
		return 1
	case chunk.OpJump, chunk.OpJumpIfFalse, chunk.OpLoop:
		return 2
	default:
		return 0
	}
}

func TestTooManyConstantsIsCompileError(t *testing.T) {
	// Force 257+ distinct numeric constants to overflow the 256 cap.
	src := "fun f() {\n"
	for i := 0; i < 257; i++ {
		src += "print " + itoa(i) + ";\n"
	}
	src += "}\n"
	_, errs := Compile(src, table.NewStrings())
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if e.Message == "Too many constants in one chunk." {
			found = true
		}
	}
	assert.True(t, found)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := ""
	for i > 0 {
		digits = string(rune('0'+i%10)) + digits
		i /= 10
	}
	return digits
}

func TestReturnAtTopLevelIsCompileError(t *testing.T) {
	_, errs := Compile("return 1;", table.NewStrings())
	require.NotEmpty(t, errs)
	assert.Equal(t, "Can't return from top-level code.", errs[0].Message)
}

func TestRedeclarationInSameScopeIsCompileError(t *testing.T) {
	_, errs := Compile("{ var a = 1; var a = 2; }", table.NewStrings())
	require.NotEmpty(t, errs)
	assert.Equal(t, "Already a variable with this name in this scope.", errs[0].Message)
}

func TestReadLocalInOwnInitializerIsCompileError(t *testing.T) {
	_, errs := Compile("{ var a = a; }", table.NewStrings())
	require.NotEmpty(t, errs)
	assert.Equal(t, "Can't read local variable in its own initializer.", errs[0].Message)
}

func TestInvalidAssignmentTargetIsCompileError(t *testing.T) {
	_, errs := Compile("a + b = 1;", table.NewStrings())
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if e.Message == "Invalid assignment target." {
			found = true
		}
	}
	assert.True(t, found)
}

func TestMoreThan255ParametersIsCompileError(t *testing.T) {
	src := "fun f("
	for i := 0; i < 256; i++ {
		if i > 0 {
			src += ", "
		}
		src += "p" + itoa(i)
	}
	src += ") {}"
	_, errs := Compile(src, table.NewStrings())
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if e.Message == "Can't have more than 255 parameters." {
			found = true
		}
	}
	assert.True(t, found)
}

func Test255ParametersCompiles(t *testing.T) {
	src := "fun f("
	for i := 0; i < 255; i++ {
		if i > 0 {
			src += ", "
		}
		src += "p" + itoa(i)
	}
	src += ") { return 0; }"
	_, errs := Compile(src, table.NewStrings())
	assert.Empty(t, errs)
}

func TestSyncRecoversAfterError(t *testing.T) {
	_, errs := Compile("print ;\nprint 1;", table.NewStrings())
	require.NotEmpty(t, errs)
	// The second, well-formed statement should not itself add an error
	// beyond the first, demonstrating panic-mode recovery.
	assert.Len(t, errs, 1)
}

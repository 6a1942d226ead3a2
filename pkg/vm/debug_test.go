package vm

import (
	"strings"
	"testing"

	"github.com/ember-lang/ember/pkg/chunk"
	"github.com/ember-lang/ember/pkg/compiler"
	"github.com/ember-lang/ember/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileChunk(t *testing.T, source string) *chunk.Chunk {
	t.Helper()
	fn, errs := compiler.Compile(source, table.NewStrings())
	require.Empty(t, errs)
	c, ok := fn.Chunk.(*chunk.Chunk)
	require.True(t, ok)
	return c
}

func TestDisassembleChunkListsOpcodesAndCounts(t *testing.T) {
	listing := DisassembleChunk("script", compileChunk(t, `var x = 1 + 2; print x;`))

	assert.True(t, strings.HasPrefix(listing, "== script ==\n"))
	assert.Contains(t, listing, "OP_CONSTANT")
	assert.Contains(t, listing, "OP_PRINT")
	assert.Contains(t, listing, "constants")
}

func TestDisassembleJumpInstructionsShowTarget(t *testing.T) {
	listing := DisassembleChunk("script", compileChunk(t, `if (true) { print 1; } else { print 2; }`))
	assert.Contains(t, listing, "OP_JUMP_IF_FALSE")
	assert.Contains(t, listing, "->")
}

func TestDisassembleLoopInstructionShowsBackwardTarget(t *testing.T) {
	listing := DisassembleChunk("script", compileChunk(t, `var i = 0; while (i < 3) { i = i + 1; }`))
	assert.Contains(t, listing, "OP_LOOP")
}

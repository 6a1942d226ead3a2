package chunk

import (
	"testing"

	"github.com/ember-lang/ember/pkg/object"
	"github.com/ember-lang/ember/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOpTracksLines(t *testing.T) {
	c := New()
	idx := c.WriteOp(OpNil, 3)
	assert.Equal(t, 0, idx)
	assert.Equal(t, []int{3}, c.Lines)
	assert.Equal(t, byte(OpNil), c.Ops[0])
}

func TestAddConstantCapsAt256(t *testing.T) {
	c := New()
	for i := 0; i < MaxConstants; i++ {
		idx, err := c.AddConstant(value.NumberValue(float64(i)))
		require.NoError(t, err)
		assert.Equal(t, i, idx)
	}
	_, err := c.AddConstant(value.NumberValue(999))
	assert.Error(t, err)
	assert.IsType(t, ErrTooManyConstants{}, err)
}

func TestPatchJumpComputesForwardDistance(t *testing.T) {
	c := New()
	jumpPos := c.WriteOp(OpJumpIfFalse, 1)
	c.Write(0xFF, 1)
	c.Write(0xFF, 1)
	// Three unrelated instructions in between.
	c.WriteOp(OpPop, 1)
	c.WriteOp(OpPop, 1)
	c.WriteOp(OpPop, 1)

	require.NoError(t, c.PatchJump(jumpPos))
	dist := int(c.Ops[jumpPos+1])<<8 | int(c.Ops[jumpPos+2])
	assert.Equal(t, 3, dist)
}

func TestEmitLoopComputesBackwardDistance(t *testing.T) {
	c := New()
	loopStart := c.Len()
	c.WriteOp(OpPop, 1)
	c.WriteOp(OpPop, 1)
	require.NoError(t, c.EmitLoop(loopStart, 1))

	loopPos := loopStart + 2
	dist := int(c.Ops[loopPos+1])<<8 | int(c.Ops[loopPos+2])
	assert.Equal(t, loopPos+3-loopStart, dist)
}

func TestGetConstantString(t *testing.T) {
	c := New()
	idx, err := c.AddConstant(value.ObjValue(object.NewString("name")))
	require.NoError(t, err)
	got := c.GetConstantString(idx)
	assert.Equal(t, "name", got.Chars)
}

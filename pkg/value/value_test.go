package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeObj struct{ name string }

func (f *fakeObj) String() string { return f.name }

func TestFalseyness(t *testing.T) {
	assert.True(t, NilValue.IsFalsey())
	assert.True(t, FalseValue.IsFalsey())
	assert.False(t, TrueValue.IsFalsey())
	assert.False(t, NumberValue(0).IsFalsey(), "0 is truthy, unlike C")
	assert.False(t, ObjValue(&fakeObj{"x"}).IsFalsey())
}

func TestEqualDifferentTagsNeverEqual(t *testing.T) {
	assert.False(t, Equal(NilValue, FalseValue))
	assert.False(t, Equal(NumberValue(0), FalseValue))
	assert.False(t, Equal(NumberValue(0), ObjValue(&fakeObj{"0"})))
}

func TestEqualNumbersUseIEEE(t *testing.T) {
	assert.True(t, Equal(NumberValue(1), NumberValue(1)))
	nan := NumberValue(numNaN())
	assert.False(t, Equal(nan, nan), "NaN != NaN")
}

func numNaN() float64 {
	var zero float64
	return zero / zero
}

func TestEqualObjIsPointerIdentity(t *testing.T) {
	a := &fakeObj{"s"}
	b := &fakeObj{"s"}
	assert.True(t, Equal(ObjValue(a), ObjValue(a)))
	assert.False(t, Equal(ObjValue(a), ObjValue(b)), "distinct pointers are never equal even with equal content")
}

func TestStringRendering(t *testing.T) {
	assert.Equal(t, "nil", NilValue.String())
	assert.Equal(t, "true", TrueValue.String())
	assert.Equal(t, "false", FalseValue.String())
	assert.Equal(t, "3", NumberValue(3).String())
	assert.Equal(t, "3.5", NumberValue(3.5).String())
	assert.Equal(t, "hi", ObjValue(&fakeObj{"hi"}).String())
}

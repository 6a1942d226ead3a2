package table

import (
	"fmt"
	"testing"

	"github.com/ember-lang/ember/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) *Key {
	return &Key{Chars: s, Hash: hashFNV(s)}
}

// hashFNV mirrors object.HashString without importing pkg/object, so the
// table package's own tests stay independent of pkg/object's internals.
func hashFNV(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

func TestTableSetGetDelete(t *testing.T) {
	tbl := New()

	isNew := tbl.Set(key("a"), value.NumberValue(1))
	assert.True(t, isNew)

	isNew = tbl.Set(key("a"), value.NumberValue(2))
	assert.False(t, isNew, "re-setting an existing key is not a new insert")

	v, ok := tbl.Get(key("a"))
	require.True(t, ok)
	assert.Equal(t, float64(2), v.AsNumber())

	_, ok = tbl.Get(key("missing"))
	assert.False(t, ok)

	assert.True(t, tbl.Delete(key("a")))
	_, ok = tbl.Get(key("a"))
	assert.False(t, ok, "deleted key must not be found")

	assert.False(t, tbl.Delete(key("a")), "deleting twice reports false the second time")
}

func TestTableTombstoneReuseDoesNotGrowCount(t *testing.T) {
	tbl := New()
	tbl.Set(key("x"), value.NumberValue(1))
	tbl.Delete(key("x"))
	before := tbl.count

	// Re-inserting the same key probes to its own tombstone first and
	// reuses it, so count must not change.
	tbl.Set(key("x"), value.NumberValue(2))
	assert.Equal(t, before, tbl.count)
}

func TestTableGrowRehashesAllLiveKeys(t *testing.T) {
	tbl := New()
	const n = 200
	for i := 0; i < n; i++ {
		tbl.Set(key(fmt.Sprintf("key-%d", i)), value.NumberValue(float64(i)))
	}
	assert.Equal(t, n, tbl.Len())
	for i := 0; i < n; i++ {
		v, ok := tbl.Get(key(fmt.Sprintf("key-%d", i)))
		require.True(t, ok)
		assert.Equal(t, float64(i), v.AsNumber())
	}
}

func TestStringsInternReturnsIdenticalPointerForEqualContent(t *testing.T) {
	pool := NewStrings()
	a := pool.Intern("hello")
	b := pool.Intern("hello")
	assert.Same(t, a, b, "interning equal content twice must return the same object")

	c := pool.Intern("world")
	assert.NotSame(t, a, c)
}

func TestAddAllCopiesLiveEntries(t *testing.T) {
	src := New()
	src.Set(key("a"), value.NumberValue(1))
	src.Set(key("b"), value.NumberValue(2))

	dst := New()
	dst.AddAll(src)

	v, ok := dst.Get(key("a"))
	require.True(t, ok)
	assert.Equal(t, float64(1), v.AsNumber())
	v, ok = dst.Get(key("b"))
	require.True(t, ok)
	assert.Equal(t, float64(2), v.AsNumber())
}

// Package object defines Ember's heap-allocated runtime objects: interned
// strings, compiled function objects, and native-function wrappers. These
// are the three concrete types a value.Value of kind Obj can hold.
//
// Grounded in the teacher's pkg/bytecode (constant representations) and
// pkg/vm (function/closure records), generalized to this specification's
// three object kinds and its reference-counted-by-sharing lifetime model
// (see pkg/table for how strings are canonicalized on construction).
package object

import (
	"fmt"

	"github.com/ember-lang/ember/pkg/value"
)

// String is an immutable interned string: content plus a precomputed
// FNV-1a hash over its bytes. Two String objects with equal content are
// guaranteed (by pkg/table.Table.FindString) to be the same *String
// pointer, so value.Equal on two String values is pointer comparison.
type String struct {
	Chars string
	Hash  uint32
}

// String implements value.Stringer so value.Value.String() can render it.
func (s *String) String() string { return s.Chars }

// HashString computes FNV-1a over s, matching pkg/table's hashing so a
// freshly-read or freshly-concatenated string hashes identically to one
// interned earlier from the same bytes.
func HashString(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// NewString builds an unintenned String object. Callers almost always
// want pkg/table.Strings.Intern instead, which canonicalizes against
// existing strings; NewString is exposed for the table package itself and
// for tests.
func NewString(chars string) *String {
	return &String{Chars: chars, Hash: HashString(chars)}
}

// Function is a compiled function's runtime representation: a name, an
// arity, and the chunk of bytecode that implements its body. Functions
// are immutable once the compiler finishes emitting their chunk.
//
// Chunk is stored as interface{} (rather than *chunk.Chunk) to break the
// import cycle pkg/object -> pkg/chunk -> pkg/value -> (no cycle, but)
// pkg/chunk also wants to embed value.Value constants, and pkg/value
// cannot import pkg/object (Value.obj needs to hold *object.Function).
// pkg/vm and pkg/compiler, which both already import pkg/chunk and
// pkg/object, perform the one required type assertion back to
// *chunk.Chunk.
type Function struct {
	Name  *String
	Arity int
	Chunk interface{}
}

func (f *Function) String() string {
	if f.Name == nil || f.Name.Chars == "" {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name.Chars)
}

// NewFunction allocates a function object with no chunk attached yet; the
// compiler fills Chunk in as it emits the body.
func NewFunction(name *String, arity int) *Function {
	return &Function{Name: name, Arity: arity}
}

// NativeFn is the signature every native function implements: given the
// VM-visible argument slice, produce a value.Value. Per spec, natives
// cannot fail — any error condition is encoded as value.NilValue or
// another sentinel, never a Go error return.
type NativeFn func(args []value.Value) value.Value

// Native wraps a NativeFn with the name it renders under. It records no
// arity: the VM hands a native whatever arguments the call supplied, and
// the native itself decides what to do with missing or extra ones.
type Native struct {
	Name string
	Fn   NativeFn
}

func (n *Native) String() string {
	return fmt.Sprintf("<native fn %s>", n.Name)
}

// NewNative wraps fn as a Native object named name.
func NewNative(name string, fn NativeFn) *Native {
	return &Native{Name: name, Fn: fn}
}

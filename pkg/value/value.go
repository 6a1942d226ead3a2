// Package value defines Ember's runtime value representation.
//
// A Value covers exactly six cases: Nil, Bool, Number, String, Function,
// and NativeFunction. The tag has four values (Nil, Bool, Number, Obj);
// the three heap cases share the Obj tag and are told apart by the
// concrete pkg/object type the value holds. It is deliberately not a Go
// interface with a grab-bag of implementations — the VM and compiler both
// need to switch over "what kind of value is this" constantly, and a
// closed tag is cheaper and clearer than a type switch over interface{}.
//
// Strings and functions live on the heap (pkg/object) and are referenced
// here by pointer; Value itself stays a small, copyable struct so pushing
// and popping it on the VM's value stack never allocates.
package value

import (
	"fmt"
	"math"
)

// Type is the tag discriminating a Value's case.
type Type byte

const (
	Nil Type = iota
	Bool
	Number
	Obj
)

// Value is a tagged union of Ember's runtime values.
//
// Only one of the payload fields is meaningful for a given Type:
//   - Type == Bool:   boolean
//   - Type == Number: number
//   - Type == Obj:    obj (an *object.String, *object.Function, or
//     *object.Native — see pkg/object)
//
// Type == Nil uses none of them. Obj is stored as interface{} rather than
// a concrete pointer type to avoid an import cycle between pkg/value and
// pkg/object; pkg/object imports pkg/value (a function's return value is
// a Value), so pkg/value cannot import it back.
type Value struct {
	typ     Type
	boolean bool
	number  float64
	obj     interface{}
}

// NilValue is the singular Nil value.
var NilValue = Value{typ: Nil}

// TrueValue and FalseValue are the two Bool values.
var (
	TrueValue  = Value{typ: Bool, boolean: true}
	FalseValue = Value{typ: Bool, boolean: false}
)

// NumberValue wraps a float64 as a Value.
func NumberValue(n float64) Value {
	return Value{typ: Number, number: n}
}

// BoolValue wraps a bool as a Value.
func BoolValue(b bool) Value {
	if b {
		return TrueValue
	}
	return FalseValue
}

// ObjValue wraps a heap object handle (an *object.String or
// *object.Function or *object.Native) as a Value.
func ObjValue(o interface{}) Value {
	return Value{typ: Obj, obj: o}
}

// Type reports which of the four tags v carries.
func (v Value) Type() Type { return v.typ }

// IsNil reports whether v is the Nil value.
func (v Value) IsNil() bool { return v.typ == Nil }

// IsBool reports whether v holds a Bool.
func (v Value) IsBool() bool { return v.typ == Bool }

// IsNumber reports whether v holds a Number.
func (v Value) IsNumber() bool { return v.typ == Number }

// IsObj reports whether v holds a heap object handle.
func (v Value) IsObj() bool { return v.typ == Obj }

// AsBool returns v's boolean payload. Only valid when IsBool(v).
func (v Value) AsBool() bool { return v.boolean }

// AsNumber returns v's float64 payload. Only valid when IsNumber(v).
func (v Value) AsNumber() float64 { return v.number }

// AsObj returns v's heap object handle. Only valid when IsObj(v).
func (v Value) AsObj() interface{} { return v.obj }

// IsFalsey reports whether v is falsey for control flow: Nil and
// Bool(false) are falsey, everything else is truthy.
func (v Value) IsFalsey() bool {
	return v.typ == Nil || (v.typ == Bool && !v.boolean)
}

// Equal implements Ember's value-equality: values of different tags are
// never equal; numbers compare by IEEE-754 (so NaN != NaN); strings are
// interned, so two String values are equal iff they share the same heap
// handle (reference equality coincides with content equality because of
// interning — see pkg/table); functions and native functions likewise
// compare by identity.
func Equal(a, b Value) bool {
	if a.typ != b.typ {
		return false
	}
	switch a.typ {
	case Nil:
		return true
	case Bool:
		return a.boolean == b.boolean
	case Number:
		return a.number == b.number
	case Obj:
		return a.obj == b.obj
	default:
		return false
	}
}

// Stringer is implemented by heap objects (pkg/object) so that
// Value.String can render them without pkg/value importing pkg/object.
type Stringer interface {
	String() string
}

// String renders v the way `print` and the REPL do: nil/true/false as
// bare words, numbers without a trailing ".0" for integral values, and
// objects via their own String method.
func (v Value) String() string {
	switch v.typ {
	case Nil:
		return "nil"
	case Bool:
		if v.boolean {
			return "true"
		}
		return "false"
	case Number:
		return formatNumber(v.number)
	case Obj:
		if s, ok := v.obj.(Stringer); ok {
			return s.String()
		}
		return fmt.Sprintf("%v", v.obj)
	default:
		return "<invalid value>"
	}
}

func formatNumber(n float64) string {
	if math.IsInf(n, 1) {
		return "inf"
	}
	if math.IsInf(n, -1) {
		return "-inf"
	}
	if math.IsNaN(n) {
		return "nan"
	}
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return fmt.Sprintf("%.0f", n)
	}
	return fmt.Sprintf("%g", n)
}

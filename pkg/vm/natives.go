package vm

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"math/rand"
	"time"

	"github.com/ember-lang/ember/pkg/object"
	"github.com/ember-lang/ember/pkg/value"
)

// defineNative registers fn in the globals table under name, the way
// spec.md §4.6 describes native pre-registration. Natives never fail —
// any error condition a native hits is encoded as value.NilValue.
func (vm *VM) defineNative(name string, fn object.NativeFn) {
	str := vm.strings.Intern(name)
	vm.globals.Set(globalKey(str), value.ObjValue(object.NewNative(name, fn)))
}

// registerNatives installs spec.md §4.6's mandatory clock plus the small
// standard-library bundle SPEC_FULL.md §4.9 adds, adapted from the
// teacher's pkg/vm/primitives.go (which wrapped the equivalent
// stdlib calls behind Smalltalk message sends) onto this specification's
// plain native-function calling convention. Every native here returns
// Nil, Bool, Number, or String — never a new Value kind — per spec.md
// §3's fixed six-case model.
func (vm *VM) registerNatives() {
	vm.defineNative("clock", vm.nativeClock)
	vm.defineNative("sha256", vm.nativeSHA256)
	vm.defineNative("len", vm.nativeLen)
	vm.defineNative("substr", vm.nativeSubstr)
	vm.defineNative("randomInt", vm.nativeRandomInt)
	vm.defineNative("dateNow", vm.nativeDateNow)
	vm.defineNative("base64Encode", vm.nativeBase64Encode)
	vm.defineNative("base64Decode", vm.nativeBase64Decode)
}

// nativeClock returns seconds elapsed since this VM was constructed,
// matching spec.md §4.6's "process CPU time in seconds since VM
// construction" closely enough for timing loops and benchmarks — Go
// doesn't expose per-process CPU time without an extra syscall package,
// so wall-clock elapsed time is used instead (see DESIGN.md).
func (vm *VM) nativeClock(args []value.Value) value.Value {
	return value.NumberValue(time.Since(vm.startTime).Seconds())
}

func argString(args []value.Value, i int) (*object.String, bool) {
	if i >= len(args) || !args[i].IsObj() {
		return nil, false
	}
	s, ok := args[i].AsObj().(*object.String)
	return s, ok
}

// nativeSHA256 adapts primitives.go's sha256Hash: hex-encoded SHA-256 of
// a string.
func (vm *VM) nativeSHA256(args []value.Value) value.Value {
	s, ok := argString(args, 0)
	if !ok {
		return value.NilValue
	}
	sum := sha256.Sum256([]byte(s.Chars))
	return value.ObjValue(vm.strings.Intern(hex.EncodeToString(sum[:])))
}

func (vm *VM) nativeLen(args []value.Value) value.Value {
	s, ok := argString(args, 0)
	if !ok {
		return value.NilValue
	}
	return value.NumberValue(float64(len(s.Chars)))
}

// nativeSubstr returns the count bytes of s starting at start, or Nil if
// the range is out of bounds.
func (vm *VM) nativeSubstr(args []value.Value) value.Value {
	s, ok := argString(args, 0)
	if !ok || len(args) < 3 || !args[1].IsNumber() || !args[2].IsNumber() {
		return value.NilValue
	}
	start := int(args[1].AsNumber())
	count := int(args[2].AsNumber())
	if start < 0 || count < 0 || start+count > len(s.Chars) {
		return value.NilValue
	}
	return value.ObjValue(vm.strings.Intern(s.Chars[start : start+count]))
}

// nativeRandomInt adapts primitives.go's randomInt: a uniform integer in
// [lo, hi).
func (vm *VM) nativeRandomInt(args []value.Value) value.Value {
	if len(args) < 2 || !args[0].IsNumber() || !args[1].IsNumber() {
		return value.NilValue
	}
	lo := int(args[0].AsNumber())
	hi := int(args[1].AsNumber())
	if hi <= lo {
		return value.NilValue
	}
	return value.NumberValue(float64(lo + rand.Intn(hi-lo)))
}

// nativeDateNow adapts primitives.go's dateNow: Unix seconds.
func (vm *VM) nativeDateNow(args []value.Value) value.Value {
	return value.NumberValue(float64(time.Now().Unix()))
}

func (vm *VM) nativeBase64Encode(args []value.Value) value.Value {
	s, ok := argString(args, 0)
	if !ok {
		return value.NilValue
	}
	return value.ObjValue(vm.strings.Intern(base64.StdEncoding.EncodeToString([]byte(s.Chars))))
}

func (vm *VM) nativeBase64Decode(args []value.Value) value.Value {
	s, ok := argString(args, 0)
	if !ok {
		return value.NilValue
	}
	decoded, err := base64.StdEncoding.DecodeString(s.Chars)
	if err != nil {
		return value.NilValue
	}
	return value.ObjValue(vm.strings.Intern(string(decoded)))
}

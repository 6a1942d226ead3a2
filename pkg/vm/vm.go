// Package vm implements Ember's stack-based bytecode virtual machine: a
// single fetch-decode-execute loop over a value stack and a call-frame
// stack, with a globals table, a string-interning pool shared with the
// compiler, and native-function callouts.
//
// The VM owns all of its mutable state exclusively; it is single
// threaded and not safe to share across goroutines, per spec.md §5.
package vm

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ember-lang/ember/pkg/chunk"
	"github.com/ember-lang/ember/pkg/compiler"
	"github.com/ember-lang/ember/pkg/object"
	"github.com/ember-lang/ember/pkg/table"
	"github.com/ember-lang/ember/pkg/value"
)

// MaxFrames bounds the call-frame stack depth (spec.md §5's resource
// bound, default 64). StackSize is the value stack's fixed capacity,
// MaxFrames x 256 slots per spec.md §3.
const MaxFrames = 64
const StackSize = MaxFrames * 256

// CallFrame is one activation record: the function executing, an
// instruction cursor into its chunk, and the base index into the VM's
// value stack identifying this call's local slot 0 (always the callee
// itself, per spec.md §3).
type CallFrame struct {
	function *object.Function
	ip       int
	slots    int
}

// VM executes compiled Ember chunks. Construct with New (or
// NewWithOutput to capture `print` output, e.g. in tests).
type VM struct {
	stack      [StackSize]value.Value
	stackTop   int
	frames     [MaxFrames]CallFrame
	frameCount int
	globals    *table.Table
	strings    *table.Strings
	startTime  time.Time
	out        io.Writer
}

// New returns a VM with an empty globals table, a fresh string-intern
// pool, and the standard native-function bundle registered (pkg/vm's
// natives.go), writing `print` output to os.Stdout.
func New() *VM {
	vm := &VM{
		globals:   table.New(),
		strings:   table.NewStrings(),
		startTime: time.Now(),
		out:       os.Stdout,
	}
	vm.registerNatives()
	return vm
}

// NewWithOutput behaves like New but routes `print` output to w, letting
// tests capture it instead of the process's stdout.
func NewWithOutput(w io.Writer) *VM {
	vm := New()
	vm.out = w
	return vm
}

// Strings exposes the VM's string-intern pool so a driver can decode a
// .emc file (pkg/chunk.Decode) against the same pool this VM will run
// constants through.
func (vm *VM) Strings() *table.Strings { return vm.strings }

// Interpret compiles source and, on success, runs it against this VM.
// Globals and interned strings persist across calls on the same VM,
// which is what lets a REPL keep state between lines.
func (vm *VM) Interpret(source string) error {
	fn, errs := compiler.Compile(source, vm.strings)
	if len(errs) > 0 {
		return &CompileErrors{Errors: errs}
	}
	return vm.Run(fn)
}

// Run executes a compiled function (ordinarily the "script" top-level
// function Compile or chunk.Decode produced) against this VM.
func (vm *VM) Run(fn *object.Function) error {
	vm.push(value.ObjValue(fn))
	if err := vm.call(fn, 0); err != nil {
		return err
	}
	return vm.run()
}

// CompileErrors aggregates every diagnostic a single Interpret call's
// compilation accumulated (panic-mode recovery lets more than one
// surface per invocation, per spec.md §7).
type CompileErrors struct {
	Errors []compiler.CompileError
}

func (e *CompileErrors) Error() string {
	s := ""
	for i, ce := range e.Errors {
		if i > 0 {
			s += "\n"
		}
		s += ce.Error()
	}
	return s
}

func (vm *VM) push(v value.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
}

func currentChunk(f *CallFrame) *chunk.Chunk {
	return f.function.Chunk.(*chunk.Chunk)
}

func (vm *VM) readByte(f *CallFrame) byte {
	b := currentChunk(f).Ops[f.ip]
	f.ip++
	return b
}

func (vm *VM) readShort(f *CallFrame) uint16 {
	hi := currentChunk(f).Ops[f.ip]
	lo := currentChunk(f).Ops[f.ip+1]
	f.ip += 2
	return uint16(hi)<<8 | uint16(lo)
}

// runtimeError builds a RuntimeError carrying the current call stack
// (outermost frame first), then resets the VM's value and frame stacks per
// spec.md §7 — globals and interned strings survive so a REPL session
// can continue after a runtime error.
func (vm *VM) runtimeError(format string, args ...interface{}) *RuntimeError {
	msg := fmt.Sprintf(format, args...)
	stack := make([]Frame, vm.frameCount)
	for i := 0; i < vm.frameCount; i++ {
		f := &vm.frames[i]
		c := currentChunk(f)
		line := 0
		if idx := f.ip - 1; idx >= 0 && idx < len(c.Lines) {
			line = c.Lines[idx]
		}
		name := ""
		if f.function.Name != nil {
			name = f.function.Name.Chars
		}
		stack[i] = Frame{FunctionName: name, Line: line}
	}
	vm.resetStack()
	return newRuntimeError(msg, stack)
}

func globalKey(name *object.String) *table.Key {
	return &table.Key{Chars: name.Chars, Hash: name.Hash}
}

// run is the VM's hot dispatch loop: read the opcode at the active
// frame's ip, advance, branch on it. Op handlers that change the frame
// stack (Call, Return) don't refresh a cached frame pointer themselves —
// the loop re-fetches the top frame at the start of every iteration,
// which is exactly the reseating spec.md §4.5 calls for.
func (vm *VM) run() error {
	for {
		frame := &vm.frames[vm.frameCount-1]
		op := chunk.Opcode(vm.readByte(frame))

		switch op {
		case chunk.OpConstant:
			idx := vm.readByte(frame)
			vm.push(currentChunk(frame).GetConstant(int(idx)))

		case chunk.OpNil:
			vm.push(value.NilValue)
		case chunk.OpTrue:
			vm.push(value.TrueValue)
		case chunk.OpFalse:
			vm.push(value.FalseValue)

		case chunk.OpPop:
			vm.pop()

		case chunk.OpGetLocal:
			slot := vm.readByte(frame)
			vm.push(vm.stack[frame.slots+int(slot)])

		case chunk.OpSetLocal:
			slot := vm.readByte(frame)
			vm.stack[frame.slots+int(slot)] = vm.peek(0)

		case chunk.OpGetGlobal:
			idx := vm.readByte(frame)
			name := currentChunk(frame).GetConstantString(int(idx))
			v, ok := vm.globals.Get(globalKey(name))
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}
			vm.push(v)

		case chunk.OpSetGlobal:
			idx := vm.readByte(frame)
			name := currentChunk(frame).GetConstantString(int(idx))
			key := globalKey(name)
			if vm.globals.Set(key, vm.peek(0)) {
				vm.globals.Delete(key)
				return vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}

		case chunk.OpDefGlobal:
			idx := vm.readByte(frame)
			name := currentChunk(frame).GetConstantString(int(idx))
			vm.globals.Set(globalKey(name), vm.pop())

		case chunk.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.BoolValue(value.Equal(a, b)))

		case chunk.OpGreater:
			if err := vm.numberCompare(func(a, b float64) bool { return a > b }); err != nil {
				return err
			}
		case chunk.OpLess:
			if err := vm.numberCompare(func(a, b float64) bool { return a < b }); err != nil {
				return err
			}

		case chunk.OpAdd:
			if err := vm.add(); err != nil {
				return err
			}
		case chunk.OpSubtract:
			if err := vm.numberBinary(func(a, b float64) float64 { return a - b }); err != nil {
				return err
			}
		case chunk.OpMultiply:
			if err := vm.numberBinary(func(a, b float64) float64 { return a * b }); err != nil {
				return err
			}
		case chunk.OpDivide:
			if err := vm.numberBinary(func(a, b float64) float64 { return a / b }); err != nil {
				return err
			}

		case chunk.OpNot:
			vm.push(value.BoolValue(vm.pop().IsFalsey()))

		case chunk.OpNegate:
			if !vm.peek(0).IsNumber() {
				return vm.runtimeError("Operand must be a number.")
			}
			vm.push(value.NumberValue(-vm.pop().AsNumber()))

		case chunk.OpPrint:
			fmt.Fprintln(vm.out, vm.pop().String())

		case chunk.OpJump:
			dist := vm.readShort(frame)
			frame.ip += int(dist)

		case chunk.OpJumpIfFalse:
			dist := vm.readShort(frame)
			if vm.peek(0).IsFalsey() {
				frame.ip += int(dist)
			}

		case chunk.OpLoop:
			dist := vm.readShort(frame)
			frame.ip -= int(dist)

		case chunk.OpCall:
			argCount := int(vm.readByte(frame))
			callee := vm.peek(argCount)
			if err := vm.callValue(callee, argCount); err != nil {
				return err
			}

		case chunk.OpReturn:
			result := vm.pop()
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop() // discard the script/callee value sitting in slot 0
				return nil
			}
			vm.stackTop = frame.slots
			vm.push(result)

		default:
			return vm.runtimeError("Unknown opcode %d.", op)
		}
	}
}

func (vm *VM) numberCompare(cmp func(a, b float64) bool) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("Operands must be numbers.")
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	vm.push(value.BoolValue(cmp(a, b)))
	return nil
}

func (vm *VM) numberBinary(op func(a, b float64) float64) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("Operands must be numbers.")
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	vm.push(value.NumberValue(op(a, b)))
	return nil
}

// add implements spec.md §4.5's overloaded Add: number+number sums, and
// string+string interns the concatenation — everything else is a
// runtime type error.
func (vm *VM) add() error {
	bv := vm.peek(0)
	av := vm.peek(1)

	if av.IsNumber() && bv.IsNumber() {
		b := vm.pop().AsNumber()
		a := vm.pop().AsNumber()
		vm.push(value.NumberValue(a + b))
		return nil
	}

	aStr, aOk := asString(av)
	bStr, bOk := asString(bv)
	if aOk && bOk {
		vm.pop()
		vm.pop()
		vm.push(value.ObjValue(vm.strings.Intern(aStr.Chars + bStr.Chars)))
		return nil
	}

	return vm.runtimeError("Operands must be two numbers or two strings.")
}

func asString(v value.Value) (*object.String, bool) {
	if !v.IsObj() {
		return nil, false
	}
	s, ok := v.AsObj().(*object.String)
	return s, ok
}

// callValue implements spec.md §4.5's call protocol: a Function checks
// arity and frame-depth then pushes a new CallFrame; a NativeFunction is
// invoked directly and its arguments popped; anything else is a runtime
// error.
func (vm *VM) callValue(callee value.Value, argCount int) error {
	if callee.IsObj() {
		switch c := callee.AsObj().(type) {
		case *object.Function:
			return vm.call(c, argCount)
		case *object.Native:
			args := vm.stack[vm.stackTop-argCount : vm.stackTop]
			result := c.Fn(args)
			vm.stackTop -= argCount + 1
			vm.push(result)
			return nil
		}
	}
	return vm.runtimeError("Can only call functions.")
}

func (vm *VM) call(fn *object.Function, argCount int) error {
	if argCount != fn.Arity {
		return vm.runtimeError("Expected %d arguments but got %d.", fn.Arity, argCount)
	}
	if vm.frameCount == MaxFrames {
		return vm.runtimeError("Stack overflow.")
	}
	frame := &vm.frames[vm.frameCount]
	frame.function = fn
	frame.ip = 0
	frame.slots = vm.stackTop - argCount - 1
	vm.frameCount++
	return nil
}

// Package chunk defines the bytecode format Ember's compiler emits and
// its virtual machine executes.
//
// A chunk is the compiled form of one function body: a flat sequence of
// opcodes, a parallel array of source line numbers (one entry per
// opcode), and a constant pool of runtime values the opcodes index into.
// There is no intermediate tree above this representation — the compiler
// (pkg/compiler) emits directly into a Chunk as it parses, and the VM
// (pkg/vm) executes a Chunk's Ops with nothing else in between.
//
// Architecture:
//
// Ember is a stack-based bytecode machine where:
//  1. Values are pushed onto and popped from a runtime value stack
//  2. Operations consume operands from the stack and push results back
//  3. Locals live at fixed stack offsets relative to the active call
//     frame; globals live in a separate hash table (pkg/table)
//  4. Every instruction with an immediate (a constant index, a local
//     slot, a jump distance, an argument count) stores it as one or two
//     bytes immediately following the opcode — chunk iteration must know
//     each opcode's operand width to skip over it correctly
//
// Example compilation:
//
//	Source:  var x = 10; print x + 5;
//
//	Bytecode:
//	  Constant 1      ; push constants[1] == 10
//	  DefGlobal 0     ; pop, bind global constants[0] == "x"
//	  GetGlobal 2     ; push the value of x (constants[2] == "x")
//	  Constant 3      ; push constants[3] == 5
//	  Add             ; pop two, push their sum
//	  Print           ; pop, print it
//	  Nil             ; implicit return value of the script
//	  Return
//
//	Constants: ["x", 10, "x", 5]
package chunk

import (
	"github.com/ember-lang/ember/pkg/object"
	"github.com/ember-lang/ember/pkg/value"
)

// Opcode identifies a single bytecode instruction. Opcodes are single
// bytes, making them compact and fast to decode in the VM's hot dispatch
// loop.
type Opcode byte

// The full Ember opcode set, exactly as spec.md §4.5 defines it. Payload
// widths (documented per opcode) are fixed by the compiler's emission
// code and must agree with the VM's decode loop and the disassembler.
const (
	// OpConstant pushes constants[operand] onto the stack.
	// Operand: one byte, constant-pool index (0-255).
	OpConstant Opcode = iota

	// OpNil, OpTrue, OpFalse push the corresponding literal value.
	// Operand: none.
	OpNil
	OpTrue
	OpFalse

	// OpPop discards the top of the stack.
	// Operand: none.
	OpPop

	// OpGetLocal pushes stack[frame.slots+operand].
	// OpSetLocal writes the top of stack (without popping) into that
	// slot — assignment is an expression that yields its value, so the
	// enclosing expression statement's OpPop removes the residue.
	// Operand: one byte, local slot index.
	OpGetLocal
	OpSetLocal

	// OpGetGlobal reads, OpSetGlobal overwrites, and OpDefGlobal defines
	// the global whose name is constants[operand] (always a String).
	// OpSetGlobal on an undefined name and OpGetGlobal on an undefined
	// name are both runtime errors; OpDefGlobal always succeeds.
	// Operand: one byte, constant-pool index of the name.
	OpGetGlobal
	OpSetGlobal
	OpDefGlobal

	// OpEqual, OpGreater, OpLess pop two values and push a Bool.
	// Greater/Less additionally require both operands to be numbers.
	// Operand: none.
	OpEqual
	OpGreater
	OpLess

	// OpAdd pops two values: two numbers produce their sum, two strings
	// produce a new interned concatenation, anything else is a runtime
	// type error.
	// Operand: none.
	OpAdd

	// OpSubtract, OpMultiply, OpDivide pop two numbers and push the
	// result; a non-number operand is a runtime error.
	// Operand: none.
	OpSubtract
	OpMultiply
	OpDivide

	// OpNot pops a value and pushes its falsey test (logical negation).
	// Operand: none.
	OpNot

	// OpNegate pops a number and pushes its arithmetic negation; a
	// non-number operand is a runtime error.
	// Operand: none.
	OpNegate

	// OpPrint pops the top of stack, writes its human-readable form
	// followed by a newline.
	// Operand: none.
	OpPrint

	// OpJump unconditionally advances ip by operand.
	// Operand: two bytes, unsigned big-endian distance.
	OpJump

	// OpJumpIfFalse advances ip by operand iff the top of stack is
	// falsey. The value is NOT popped — the compiler always emits a
	// paired OpPop on whichever branch it chose, which is what lets
	// `and`/`or` yield the tested value on the short-circuit path.
	// Operand: two bytes, unsigned big-endian distance.
	OpJumpIfFalse

	// OpLoop subtracts operand from ip, jumping backward to the top of a
	// loop. The distance is measured from the byte just past this
	// instruction's two operand bytes, so it already covers the loop
	// instruction itself.
	// Operand: two bytes, unsigned big-endian distance.
	OpLoop

	// OpCall invokes the callable sitting at stack position
	// top-1-operand with operand arguments already above it on the
	// stack.
	// Operand: one byte, argument count (0-255).
	OpCall

	// OpReturn pops the return value, discards the current call frame,
	// truncates the stack to the departing frame's base slot, and
	// pushes the return value back. Returning from the outermost frame
	// halts the VM.
	// Operand: none.
	OpReturn
)

// opcodeNames is used only for disassembly (pkg/vm's debug dump and
// `ember disasm`); the VM's dispatch loop never consults it.
var opcodeNames = map[Opcode]string{
	OpConstant:    "OP_CONSTANT",
	OpNil:         "OP_NIL",
	OpTrue:        "OP_TRUE",
	OpFalse:       "OP_FALSE",
	OpPop:         "OP_POP",
	OpGetLocal:    "OP_GET_LOCAL",
	OpSetLocal:    "OP_SET_LOCAL",
	OpGetGlobal:   "OP_GET_GLOBAL",
	OpSetGlobal:   "OP_SET_GLOBAL",
	OpDefGlobal:   "OP_DEFINE_GLOBAL",
	OpEqual:       "OP_EQUAL",
	OpGreater:     "OP_GREATER",
	OpLess:        "OP_LESS",
	OpAdd:         "OP_ADD",
	OpSubtract:    "OP_SUBTRACT",
	OpMultiply:    "OP_MULTIPLY",
	OpDivide:      "OP_DIVIDE",
	OpNot:         "OP_NOT",
	OpNegate:      "OP_NEGATE",
	OpPrint:       "OP_PRINT",
	OpJump:        "OP_JUMP",
	OpJumpIfFalse: "OP_JUMP_IF_FALSE",
	OpLoop:        "OP_LOOP",
	OpCall:        "OP_CALL",
	OpReturn:      "OP_RETURN",
}

// String renders an opcode's mnemonic name, falling back to
// "OP_UNKNOWN" for anything outside the defined set (which would indicate
// a corrupted or hand-crafted chunk).
func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "OP_UNKNOWN"
}

// MaxConstants is the hard cap on a chunk's constant pool, fixed by the
// one-byte constant index used throughout the opcode set.
const MaxConstants = 256

// ErrTooManyConstants is returned by AddConstant once a chunk's pool
// would exceed MaxConstants; the compiler turns this into the
// user-facing diagnostic "Too many constants in one chunk."
type ErrTooManyConstants struct{}

func (ErrTooManyConstants) Error() string { return "Too many constants in one chunk." }

// Chunk is one function body's compiled bytecode: a flat opcode stream, a
// parallel per-instruction source line table, and a constant pool. Ops
// and Lines always have equal length; Chunk is write-only during
// compilation (via Write/AddConstant) and read-only thereafter.
type Chunk struct {
	Ops       []byte
	Lines     []int
	Constants []value.Value
}

// New returns an empty chunk ready for the compiler to emit into.
func New() *Chunk {
	return &Chunk{}
}

// Write appends a raw byte (an opcode or an operand byte) at the given
// source line, returning the index it was written to. Multi-byte
// operands are written via successive Write calls so Lines stays in
// lock-step with Ops; only the opcode's own index matters for jump
// patching, which is why WriteOp (below) is the one callers use for
// opcodes themselves.
func (c *Chunk) Write(b byte, line int) int {
	c.Ops = append(c.Ops, b)
	c.Lines = append(c.Lines, line)
	return len(c.Ops) - 1
}

// WriteOp appends an opcode at the given source line, returning its
// instruction index — used by the compiler to remember positions it must
// later patch (forward jumps) or jump back to (loops).
func (c *Chunk) WriteOp(op Opcode, line int) int {
	return c.Write(byte(op), line)
}

// Len reports the number of bytes written to the chunk so far, used by
// the compiler to compute jump distances.
func (c *Chunk) Len() int { return len(c.Ops) }

// PatchJump overwrites the two-byte big-endian operand starting right
// after the jump instruction at pos with the distance from there to the
// chunk's current end. Returns ErrTooMuchCodeToJump if that distance
// overflows 16 bits.
type ErrTooMuchCodeToJump struct{}

func (ErrTooMuchCodeToJump) Error() string { return "too much code to jump over" }

func (c *Chunk) PatchJump(pos int) error {
	// pos is the index of the opcode byte; its two operand bytes follow
	// immediately, so the jump is relative to pos+3 (opcode + 2 operand
	// bytes already consumed by the time the VM evaluates the offset).
	dist := len(c.Ops) - pos - 3
	if dist < 0 || dist > 0xFFFF {
		return ErrTooMuchCodeToJump{}
	}
	c.Ops[pos+1] = byte(dist >> 8)
	c.Ops[pos+2] = byte(dist)
	return nil
}

// EmitLoop appends an OpLoop instruction at line whose distance jumps ip
// back to target (an instruction index earlier in this same chunk).
func (c *Chunk) EmitLoop(target int, line int) error {
	c.WriteOp(OpLoop, line)
	// +3 accounts for the loop opcode and its own two operand bytes,
	// mirroring PatchJump's offset convention in the opposite direction.
	dist := len(c.Ops) - target + 2
	if dist > 0xFFFF {
		return ErrTooMuchCodeToJump{}
	}
	c.Write(byte(dist>>8), line)
	c.Write(byte(dist), line)
	return nil
}

// AddConstant interns val into the constant pool and returns its byte
// index. Fails once the pool would exceed MaxConstants.
func (c *Chunk) AddConstant(val value.Value) (int, error) {
	if len(c.Constants) >= MaxConstants {
		return 0, ErrTooManyConstants{}
	}
	c.Constants = append(c.Constants, val)
	return len(c.Constants) - 1, nil
}

// GetConstant returns the constant at index k.
func (c *Chunk) GetConstant(k int) value.Value {
	return c.Constants[k]
}

// GetConstantString returns the constant at index k, which must hold an
// interned string (used for global-variable-name operands); panics
// otherwise, since a well-formed chunk never violates this by
// construction.
func (c *Chunk) GetConstantString(k int) *object.String {
	return c.Constants[k].AsObj().(*object.String)
}

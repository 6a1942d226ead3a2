// Encode/Decode implements serialization for .emc bytecode files.
//
// File Format Specification:
//
// The .emc file format is a binary format for storing a compiled Ember
// chunk. It lets `ember build` pre-compile a .em source file once so
// `ember run` can later skip lexing and compiling entirely. The format is
// adapted from the teacher's .sg format (same magic+version+flags header,
// same length-prefixed sections, same encoding/binary style) but
// retargeted at this specification's chunk shape — a byte opcode stream,
// a per-instruction line table, and a constant pool of value.Value,
// where Function constants recursively embed another encoded chunk.
//
// Binary Format Layout:
//
//	[Header]
//	  Magic Number (4 bytes): "EMBR" (0x454D4252)
//	  Version (4 bytes): format version, currently 1
//	  Flags (4 bytes): reserved, currently 0
//
//	[Constants Section]
//	  Count (4 bytes)
//	  For each constant:
//	    Type (1 byte)
//	    Data (variable, type-specific)
//
//	[Code Section]
//	  Op count (4 bytes)
//	  Ops (Op count bytes)
//	  Lines (Op count x 4 bytes, one int32 per op byte)
//
// Constant Types:
//
//	0x01 = Nil (0 bytes)
//	0x02 = Bool (1 byte: 0=false, 1=true)
//	0x03 = Number (8 bytes, float64 bits)
//	0x04 = String (4-byte length + UTF-8 bytes)
//	0x05 = Function (name string, arity int32, nested chunk)
package chunk

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/ember-lang/ember/pkg/object"
	"github.com/ember-lang/ember/pkg/value"
)

// MagicNumber is the file signature for .emc files: "EMBR".
const MagicNumber uint32 = 0x454D4252

// FormatVersion is the current .emc format version.
const FormatVersion uint32 = 1

const formatFlags uint32 = 0

const (
	constTypeNil      byte = 0x01
	constTypeBool     byte = 0x02
	constTypeNumber   byte = 0x03
	constTypeString   byte = 0x04
	constTypeFunction byte = 0x05
)

// Interner is the minimal string-canonicalization surface Decode needs;
// satisfied by *table.Strings. Decoding always interns so that a
// deserialized chunk's string constants compare equal, by the usual
// pointer-identity rule, to any same-content string the VM encounters
// elsewhere.
type Interner interface {
	Intern(chars string) *object.String
}

// Encode writes c to w in the .emc binary format.
func Encode(w io.Writer, c *Chunk) error {
	if err := writeHeader(w); err != nil {
		return err
	}
	if err := writeConstants(w, c.Constants); err != nil {
		return err
	}
	return writeCode(w, c)
}

func writeHeader(w io.Writer) error {
	for _, v := range []uint32{MagicNumber, FormatVersion, formatFlags} {
		if err := binary.Write(w, binary.BigEndian, v); err != nil {
			return fmt.Errorf("chunk: write header: %w", err)
		}
	}
	return nil
}

func writeConstants(w io.Writer, constants []value.Value) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(constants))); err != nil {
		return fmt.Errorf("chunk: write constant count: %w", err)
	}
	for _, c := range constants {
		if err := writeConstant(w, c); err != nil {
			return err
		}
	}
	return nil
}

func writeConstant(w io.Writer, v value.Value) error {
	switch v.Type() {
	case value.Nil:
		return writeByte(w, constTypeNil)
	case value.Bool:
		if err := writeByte(w, constTypeBool); err != nil {
			return err
		}
		b := byte(0)
		if v.AsBool() {
			b = 1
		}
		return writeByte(w, b)
	case value.Number:
		if err := writeByte(w, constTypeNumber); err != nil {
			return err
		}
		return binary.Write(w, binary.BigEndian, math.Float64bits(v.AsNumber()))
	case value.Obj:
		switch obj := v.AsObj().(type) {
		case *object.String:
			if err := writeByte(w, constTypeString); err != nil {
				return err
			}
			return writeString(w, obj.Chars)
		case *object.Function:
			if err := writeByte(w, constTypeFunction); err != nil {
				return err
			}
			return writeFunction(w, obj)
		default:
			return fmt.Errorf("chunk: cannot encode object constant of type %T", obj)
		}
	default:
		return fmt.Errorf("chunk: cannot encode constant of unknown type")
	}
}

func writeFunction(w io.Writer, fn *object.Function) error {
	name := ""
	if fn.Name != nil {
		name = fn.Name.Chars
	}
	if err := writeString(w, name); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, uint32(fn.Arity)); err != nil {
		return fmt.Errorf("chunk: write function arity: %w", err)
	}
	inner, _ := fn.Chunk.(*Chunk)
	if inner == nil {
		inner = New()
	}
	if err := writeConstants(w, inner.Constants); err != nil {
		return err
	}
	return writeCode(w, inner)
}

func writeCode(w io.Writer, c *Chunk) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(c.Ops))); err != nil {
		return fmt.Errorf("chunk: write op count: %w", err)
	}
	if _, err := w.Write(c.Ops); err != nil {
		return fmt.Errorf("chunk: write ops: %w", err)
	}
	for _, line := range c.Lines {
		if err := binary.Write(w, binary.BigEndian, uint32(line)); err != nil {
			return fmt.Errorf("chunk: write line: %w", err)
		}
	}
	return nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(s))); err != nil {
		return fmt.Errorf("chunk: write string length: %w", err)
	}
	_, err := io.WriteString(w, s)
	if err != nil {
		return fmt.Errorf("chunk: write string bytes: %w", err)
	}
	return nil
}

func writeByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	if err != nil {
		return fmt.Errorf("chunk: write byte: %w", err)
	}
	return nil
}

// Decode reads a chunk previously written by Encode. interner is used to
// canonicalize every decoded string constant (function names and String
// constants alike) against the VM's intern pool.
func Decode(r io.Reader, interner Interner) (*Chunk, error) {
	if err := readHeader(r); err != nil {
		return nil, err
	}
	return readChunkBody(r, interner)
}

func readHeader(r io.Reader) error {
	var magic, version, flags uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return fmt.Errorf("chunk: read magic: %w", err)
	}
	if magic != MagicNumber {
		return fmt.Errorf("chunk: bad magic number %#x, expected %#x", magic, MagicNumber)
	}
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return fmt.Errorf("chunk: read version: %w", err)
	}
	if version != FormatVersion {
		return fmt.Errorf("chunk: unsupported format version %d", version)
	}
	if err := binary.Read(r, binary.BigEndian, &flags); err != nil {
		return fmt.Errorf("chunk: read flags: %w", err)
	}
	return nil
}

func readChunkBody(r io.Reader, interner Interner) (*Chunk, error) {
	constants, err := readConstants(r, interner)
	if err != nil {
		return nil, err
	}
	ops, lines, err := readCode(r)
	if err != nil {
		return nil, err
	}
	return &Chunk{Ops: ops, Lines: lines, Constants: constants}, nil
}

func readConstants(r io.Reader, interner Interner) ([]value.Value, error) {
	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, fmt.Errorf("chunk: read constant count: %w", err)
	}
	constants := make([]value.Value, 0, count)
	for i := uint32(0); i < count; i++ {
		v, err := readConstant(r, interner)
		if err != nil {
			return nil, err
		}
		constants = append(constants, v)
	}
	return constants, nil
}

func readConstant(r io.Reader, interner Interner) (value.Value, error) {
	typ, err := readByte(r)
	if err != nil {
		return value.NilValue, err
	}
	switch typ {
	case constTypeNil:
		return value.NilValue, nil
	case constTypeBool:
		b, err := readByte(r)
		if err != nil {
			return value.NilValue, err
		}
		return value.BoolValue(b != 0), nil
	case constTypeNumber:
		var bits uint64
		if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
			return value.NilValue, fmt.Errorf("chunk: read number: %w", err)
		}
		return value.NumberValue(math.Float64frombits(bits)), nil
	case constTypeString:
		s, err := readString(r)
		if err != nil {
			return value.NilValue, err
		}
		return value.ObjValue(interner.Intern(s)), nil
	case constTypeFunction:
		fn, err := readFunction(r, interner)
		if err != nil {
			return value.NilValue, err
		}
		return value.ObjValue(fn), nil
	default:
		return value.NilValue, fmt.Errorf("chunk: unknown constant type %#x", typ)
	}
}

func readFunction(r io.Reader, interner Interner) (*object.Function, error) {
	name, err := readString(r)
	if err != nil {
		return nil, err
	}
	var arity uint32
	if err := binary.Read(r, binary.BigEndian, &arity); err != nil {
		return nil, fmt.Errorf("chunk: read function arity: %w", err)
	}
	inner, err := readChunkBody(r, interner)
	if err != nil {
		return nil, err
	}
	var nameObj *object.String
	if name != "" {
		nameObj = interner.Intern(name)
	}
	fn := object.NewFunction(nameObj, int(arity))
	fn.Chunk = inner
	return fn, nil
}

func readCode(r io.Reader) (ops []byte, lines []int, err error) {
	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, nil, fmt.Errorf("chunk: read op count: %w", err)
	}
	ops = make([]byte, count)
	if count > 0 {
		if _, err := io.ReadFull(r, ops); err != nil {
			return nil, nil, fmt.Errorf("chunk: read ops: %w", err)
		}
	}
	lines = make([]int, count)
	for i := uint32(0); i < count; i++ {
		var line uint32
		if err := binary.Read(r, binary.BigEndian, &line); err != nil {
			return nil, nil, fmt.Errorf("chunk: read line: %w", err)
		}
		lines[i] = int(line)
	}
	return ops, lines, nil
}

func readString(r io.Reader) (string, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return "", fmt.Errorf("chunk: read string length: %w", err)
	}
	buf := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", fmt.Errorf("chunk: read string bytes: %w", err)
		}
	}
	return string(buf), nil
}

func readByte(r io.Reader) (byte, error) {
	buf := make([]byte, 1)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, fmt.Errorf("chunk: read byte: %w", err)
	}
	return buf[0], nil
}

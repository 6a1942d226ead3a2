// Debug disassembly, used only by `ember disasm` and debug traces — an
// external collaborator per spec.md §1, never consulted by Run's hot
// loop. Adapted from the teacher's pkg/vm/debugger.go (which paired a
// Debugger with the VM for breakpoints and stepping) and its
// pkg/bytecode/format.go disassembly helpers, narrowed to straight-line
// listing since Ember has no interactive breakpoint/step feature in
// scope.
package vm

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/ember-lang/ember/pkg/chunk"
	"github.com/ember-lang/ember/pkg/object"
)

// DisassembleChunk renders c as a human-readable instruction listing
// under the given name (typically the function's own name, or "script"),
// recursing into any Function constants the chunk references.
func DisassembleChunk(name string, c *chunk.Chunk) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	fmt.Fprintf(&b, "%s bytes of code, %s constants\n",
		humanize.Comma(int64(len(c.Ops))), humanize.Comma(int64(len(c.Constants))))

	offset := 0
	for offset < len(c.Ops) {
		offset = disassembleInstruction(&b, c, offset)
	}
	for _, k := range c.Constants {
		fn, ok := k.AsObj().(*object.Function)
		if !ok {
			continue
		}
		if inner, ok := fn.Chunk.(*chunk.Chunk); ok {
			fnName := "script"
			if fn.Name != nil {
				fnName = fn.Name.Chars
			}
			b.WriteString(DisassembleChunk(fnName, inner))
		}
	}
	return b.String()
}

func disassembleInstruction(b *strings.Builder, c *chunk.Chunk, offset int) int {
	fmt.Fprintf(b, "%04d ", offset)
	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		fmt.Fprint(b, "   | ")
	} else {
		fmt.Fprintf(b, "%4d ", c.Lines[offset])
	}

	op := chunk.Opcode(c.Ops[offset])
	switch op {
	case chunk.OpConstant, chunk.OpGetGlobal, chunk.OpSetGlobal, chunk.OpDefGlobal:
		return constantInstruction(b, op, c, offset)
	case chunk.OpGetLocal, chunk.OpSetLocal, chunk.OpCall:
		return byteInstruction(b, op, c, offset)
	case chunk.OpJump, chunk.OpJumpIfFalse:
		return jumpInstruction(b, op, c, offset, 1)
	case chunk.OpLoop:
		return jumpInstruction(b, op, c, offset, -1)
	default:
		fmt.Fprintf(b, "%s\n", op)
		return offset + 1
	}
}

func constantInstruction(b *strings.Builder, op chunk.Opcode, c *chunk.Chunk, offset int) int {
	idx := c.Ops[offset+1]
	fmt.Fprintf(b, "%-16s %4d '%s'\n", op, idx, c.GetConstant(int(idx)).String())
	return offset + 2
}

func byteInstruction(b *strings.Builder, op chunk.Opcode, c *chunk.Chunk, offset int) int {
	slot := c.Ops[offset+1]
	fmt.Fprintf(b, "%-16s %4d\n", op, slot)
	return offset + 2
}

func jumpInstruction(b *strings.Builder, op chunk.Opcode, c *chunk.Chunk, offset int, sign int) int {
	dist := int(c.Ops[offset+1])<<8 | int(c.Ops[offset+2])
	target := offset + 3 + sign*dist
	fmt.Fprintf(b, "%-16s %4d -> %d\n", op, offset, target)
	return offset + 3
}

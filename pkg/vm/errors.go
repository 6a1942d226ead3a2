package vm

import (
	"fmt"
	"strings"
)

// Frame is one entry of a RuntimeError's stack trace: the name of the
// function executing (empty for the top-level script) and the source
// line of the instruction that was executing when the error occurred.
//
// Directly descended from the teacher's pkg/vm/errors.go StackFrame —
// same role (a snapshot of one call-stack entry for error reporting) —
// trimmed to the two fields spec.md §6 actually requires the driver to
// print (`[line N] in <function-name>`), since Ember has no message
// selectors or source columns to report.
type Frame struct {
	FunctionName string
	Line         int
}

// RuntimeError is the first violated runtime invariant (type error,
// undefined global, arity mismatch, call of a non-callable, stack
// overflow) reached during Interpret. It carries the full call stack at
// the moment the error was raised, outermost frame (the script) first;
// Error prints it in the opposite order.
//
// Grounded in the teacher's RuntimeError/StackFrame pair; renamed fields,
// same shape (a message plus an ordered stack trace), same
// self-formatting Error() method.
type RuntimeError struct {
	Message string
	Stack   []Frame
}

// Error renders the error per spec.md §6: the message, then one line per
// live frame, top to bottom, formatted "[line N] in <function-name>" (the
// top-level script prints as "script").
func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for i := len(e.Stack) - 1; i >= 0; i-- {
		f := e.Stack[i]
		name := f.FunctionName
		if name == "" {
			name = "script"
		}
		b.WriteString(fmt.Sprintf("\n[line %d] in %s", f.Line, name))
	}
	return b.String()
}

func newRuntimeError(message string, stack []Frame) *RuntimeError {
	return &RuntimeError{Message: message, Stack: stack}
}

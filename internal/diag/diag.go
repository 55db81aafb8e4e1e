// Package diag centralizes the two kinds of error the language surfaces:
// CompileError (accumulated parse/compile diagnostics) and RuntimeError (a
// message plus a call-stack backtrace). Both implement error.
package diag

import (
	"fmt"
	"strings"
)

// CompileError aggregates every diagnostic produced by one Compile call.
// Messages are already formatted as `[line L] Error at 'lexeme': MSG` (or
// the "at end"/bare-message variants) by the compiler.
type CompileError struct {
	Messages []string
}

func (e *CompileError) Error() string {
	return strings.Join(e.Messages, "\n")
}

// Frame is one entry of a RuntimeError's backtrace: the function NAME is
// "script" for the top-level frame.
type Frame struct {
	Name string
	Line int
}

// RuntimeError is raised by the VM mid-execution. Rendered as
// "message\n[line L] in NAME()" per frame, innermost first.
type RuntimeError struct {
	Message string
	Frames  []Frame
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, f := range e.Frames {
		name := f.Name
		if name == "" {
			name = "script"
		}
		fmt.Fprintf(&b, "\n[line %d] in %s()", f.Line, name)
	}
	return b.String()
}

// NewRuntimeError builds a RuntimeError with the given message and
// backtrace, innermost frame first.
func NewRuntimeError(message string, frames []Frame) *RuntimeError {
	return &RuntimeError{Message: message, Frames: frames}
}

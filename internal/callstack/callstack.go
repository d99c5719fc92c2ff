// Package callstack implements the call stack used by the dispatcher,
// grounded on original_source/repl/base/callstack.py. Frame identity is
// strengthened with a ULID (ahead of the original's Python id(callable)),
// grounded on taskguild's ulid.Make().String() request-ID pattern.
package callstack

import (
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Entry is one call-stack frame: the command name invoked, a
// collision-resistant object id distinguishing concurrently-active
// recursive frames, and the source line number within the caller
// (incremented as a user function's body executes).
type Entry struct {
	CommandName string
	ObjectID    string
	LineNumber  int
}

// NewEntry creates a frame for commandName with a fresh ULID identity.
func NewEntry(commandName string) Entry {
	return Entry{
		CommandName: commandName,
		ObjectID:    ulid.Make().String(),
	}
}

func (e Entry) String() string {
	return fmt.Sprintf("%s:%d (%s)", e.CommandName, e.LineNumber, e.ObjectID)
}

// Stack is a strictly push/pop call stack, observable by diagnostics. At
// quiescence (no command executing) it is always empty.
type Stack struct {
	frames []Entry
}

// Push appends a new frame.
func (s *Stack) Push(e Entry) {
	s.frames = append(s.frames, e)
}

// Pop removes and returns the top frame. It panics if the stack is empty,
// since every Execute call is required to push exactly one frame before
// popping — an empty pop means that invariant was violated by the caller,
// a programming error worth surfacing loudly rather than masking.
func (s *Stack) Pop() Entry {
	last := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return last
}

// Top returns a pointer to the top frame so callers can mutate its
// LineNumber in place, or nil if the stack is empty.
func (s *Stack) Top() *Entry {
	if len(s.frames) == 0 {
		return nil
	}
	return &s.frames[len(s.frames)-1]
}

// Len reports the current depth, used by the echo-trace builtin to indent
// by nesting level.
func (s *Stack) Len() int { return len(s.frames) }

// String renders a Python-traceback-style dump, most recent call last.
func (s *Stack) String() string {
	var b strings.Builder
	b.WriteString("Traceback (most recent call last):\n")
	for _, f := range s.frames {
		b.WriteString(f.String())
		b.WriteByte('\n')
	}
	return b.String()
}

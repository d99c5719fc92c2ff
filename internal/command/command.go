// Package command implements the Command record and the four-namespace
// registry, grounded on original_source/repl/base/command.py (Command) and
// core/decorator.Registry (mutex-guarded map, Register/Lookup accessors).
package command

import "context"

// InvokeContext is threaded through every Command invocation. It carries
// the capture sink (as a plain io.Writer, since invokers only ever write
// to stdout) and a context.Context for a future host to attach
// cancellation to — trimmed of the transport/session/deadline machinery
// this single-threaded evaluator has no use for.
type InvokeContext struct {
	Context context.Context
	Stdout  interface {
		Write(p []byte) (int, error)
	}
	// Stdin is the current pipeline stage's input, or nil outside a
	// pipeline. It stands in for the original's process-wide retargetable
	// sys.stdin: rather than a global, it is threaded explicitly through
	// each invocation.
	Stdin interface {
		Read(p []byte) (int, error)
	}
}

// Printf writes a formatted line to the invocation's stdout, the Go
// analogue of the original command bodies' bare print().
func (c *InvokeContext) Printf(format string, args ...any) {
	fprintfTo(c.Stdout, format, args...)
}

// Println writes args separated by spaces followed by a newline.
func (c *InvokeContext) Println(args ...any) {
	fprintlnTo(c.Stdout, args...)
}

// Command is a named, host-registerable operation: name, usage string,
// multi-line help text, and an invoke function returning an integer exit
// status.
type Command struct {
	Name   string
	Usage  string
	Help   string
	Invoke func(ctx *InvokeContext, args []string) (int, error)
}

// Call is a convenience wrapper used by the dispatcher; it exists so call
// sites read as "invoke this command" rather than reaching into the
// struct field directly.
func (c Command) Call(ctx *InvokeContext, args []string) (int, error) {
	return c.Invoke(ctx, args)
}

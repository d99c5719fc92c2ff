package interp

import (
	"fmt"
	"io"
	"strings"

	"github.com/aledsdavies/shellrepl/internal/callstack"
	"github.com/aledsdavies/shellrepl/internal/command"
	"github.com/aledsdavies/shellrepl/internal/control"
	"github.com/aledsdavies/shellrepl/internal/lexer"
	"github.com/aledsdavies/shellrepl/internal/sink"
	"github.com/aledsdavies/shellrepl/internal/token"
)

// Eval is the dispatcher entry point. Its returned error is nil, one of
// control.Break/Return/Shift escaping with no context to catch them, or an
// error returned by a command's Invoke (such as a *control.RuntimeError).
// A malformed line and an arity mismatch are reported to the error sink,
// and an unknown command prints its own message; each is folded into "?"
// right here, never returned as a Go error.
func (r *REPL) Eval(line string) (string, error) {
	if n := len(r.blockStack); n > 0 {
		top := r.blockStack[n-1]
		done, err := top.Append(line)
		if err != nil {
			r.blockStack = r.blockStack[:n-1]
			r.errorf("Syntax error: %s", err)
			r.setStatus(2)
			return "", nil
		}
		if done {
			r.blockStack = r.blockStack[:n-1]
			if cerr := top.Complete(); cerr != nil {
				return "", cerr
			}
		}
		return "", nil
	}

	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", nil
	}

	if r.echo {
		r.errorf("%s%s", strings.Repeat("  ", r.callStack.Len()), trimmed)
	}

	tokens, err := lexer.Lex(trimmed)
	if err != nil {
		r.errorf("Syntax error: %s", err)
		r.setStatus(2)
		return "", nil
	}
	if len(tokens) == 0 {
		return "", nil
	}

	if handler, ok := r.keywords[tokens[0].Raw()]; ok {
		rest := rawJoin(tokens[1:])
		status, herr := handler(r, rest)
		if herr != nil {
			return "", herr
		}
		r.setStatus(status)
		return "", nil
	}

	fields := make([]string, len(tokens))
	for i, t := range tokens {
		fields[i] = t.Expand(r.currentEnv())
	}

	fields, err = r.expandSubshells(fields)
	if err != nil {
		r.errorf("Syntax error: %s", err)
		r.setStatus(2)
		return "", nil
	}

	out, err := r.runPipeline(fields)
	if err != nil {
		return "", err
	}
	return out, nil
}

// rawJoin reconstructs a re-lexable source fragment from a token slice,
// re-quoting any field the lexer would otherwise split or misparse. Used
// to hand a keyword handler its remaining argument text.
func rawJoin(tokens []token.Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = token.Quote(t.Raw())
	}
	return strings.Join(parts, " ")
}

// expandSubshells scans already-expanded fields left to right, collapsing
// each matched backtick pair into a single field holding its inner
// pipeline's captured stdout (trailing newlines trimmed). An odd count of
// lone backtick fields is a syntax error.
func (r *REPL) expandSubshells(fields []string) ([]string, error) {
	count := 0
	for _, f := range fields {
		if f == "`" {
			count++
		}
	}
	if count%2 != 0 {
		return nil, &control.SyntaxError{Message: "Unmatched `"}
	}
	if count == 0 {
		return fields, nil
	}

	var out []string
	var inner []string
	inSubshell := false
	for _, f := range fields {
		if f == "`" {
			if inSubshell {
				captured, err := r.runPipeline(inner)
				if err != nil {
					return nil, err
				}
				out = append(out, strings.TrimRight(captured, "\n"))
				inner = nil
			}
			inSubshell = !inSubshell
			continue
		}
		if inSubshell {
			inner = append(inner, f)
		} else {
			out = append(out, f)
		}
	}
	return out, nil
}

// runPipeline groups fields by literal "|" separators and executes every
// stage in order, piping each stage's captured stdout into the next
// stage's stdin. With a single group this is an ordinary dispatch.
func (r *REPL) runPipeline(fields []string) (string, error) {
	var groups [][]string
	var cur []string
	for _, f := range fields {
		if f == "|" {
			groups = append(groups, cur)
			cur = nil
			continue
		}
		cur = append(cur, f)
	}
	groups = append(groups, cur)

	var stdin *strings.Reader
	var result string
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		out, err := r.execute(g, stdin)
		if err != nil {
			return "", err
		}
		result = out
		stdin = strings.NewReader(out)
	}
	return result, nil
}

// execute looks up argv[0], pushes a call-stack frame, invokes the
// command with a tee sink capturing its stdout, and pops the frame.
// ArityError is converted inline to the "(Error) <usage>" diagnostic and
// ?=255; every other error (including an escaping control signal) passes
// through unchanged, to be caught by an enclosing block's body runner or,
// at the very top, by Run. A panic inside the command is re-raised when
// debug mode or the exceptions toggle is on; otherwise it is returned as a
// *control.RuntimeError, which Run reports as a one-line diagnostic.
func (r *REPL) execute(argv []string, stdin *strings.Reader) (out string, err error) {
	name := argv[0]
	cmd := r.registry.Lookup(name)

	r.callStack.Push(callstack.NewEntry(name))
	defer r.callStack.Pop()

	// The caller (runPipeline/Eval) decides what to do with the captured
	// text; execute itself never writes it to the outer sink, since a
	// piped intermediate stage's output must not appear to the user. A
	// block-structured command's body (runBody/writeLine) writes through
	// this same tee for as long as the invocation is live, so its visible
	// output is captured too, not just what it writes to ctx.Stdout directly.
	tee := sink.New()
	r.pushCapture(tee)
	defer r.popCapture()

	defer func() {
		if p := recover(); p != nil {
			if r.debug || r.reraise {
				panic(p)
			}
			out, err = "", &control.RuntimeError{Message: fmt.Sprint(p)}
		}
	}()

	ctx := &command.InvokeContext{Stdout: tee}
	if stdin != nil {
		ctx.Stdin = stdin
	}

	status, err := cmd.Call(ctx, argv[1:])
	if err != nil {
		if ae, ok := err.(*control.ArityError); ok {
			r.errorf("(Error) %s", ae.Usage)
			r.setStatus(255)
			return "", nil
		}
		return "", err
	}
	r.setStatus(status)
	return tee.String(), nil
}

// Source reads lines from r and evaluates each in turn, guarding against
// runaway recursion (nested source invocations beyond 500 deep is a
// runtime error unwinding to the outer call).
func (r *REPL) Source(lines []string) error {
	r.sourceDepth++
	defer func() { r.sourceDepth-- }()
	if r.sourceDepth > 500 {
		return &control.RuntimeError{Message: "source recursion limit exceeded"}
	}

	for _, line := range lines {
		out, err := r.Eval(line)
		if err != nil {
			return err
		}
		if out != "" {
			r.writeLine(out)
		}
		if r.done {
			return nil
		}
	}
	return nil
}

// Run drives the interactive loop: read a line, evaluate it, print
// non-empty output verbatim, repeat until the line source reaches EOF or
// a keyword sets the done flag (quit/exit). An uncaught control signal
// (break/return/shift with no enclosing loop/function) is reported as a
// diagnostic and the loop continues.
func (r *REPL) Run() {
	defer r.input.Close()

	for !r.done {
		line, err := r.input.ReadLine(r.prompt())
		if err == io.EOF {
			return
		}
		if err != nil {
			r.errorf("%s", err)
			continue
		}
		r.input.AddHistory(line)

		out, err := r.Eval(line)
		if err != nil {
			r.errorf("%s", err)
			r.setStatus(2)
			continue
		}
		if out != "" {
			r.writeRaw(out)
		}
	}
}

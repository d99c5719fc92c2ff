// Package interp implements the dispatcher/evaluator and the block
// builders (function, conditional, loop) on top of the lower-level
// token/lexer/env/command/callstack/control/sink packages.
package interp

import (
	"strings"

	"github.com/aledsdavies/shellrepl/internal/control"
)

// Block is the capability set shared by function, conditional, and loop
// accumulation, the "polymorphism over blocks" design from
// original_source/repl/{Function,Conditional,Loop}.py (which expose name,
// append, complete): Append buffers one raw line and reports whether the
// block's closing keyword was just seen; the driver (Eval) then pops the
// block and calls Complete, which runs the block's completion action
// (register a function, run a conditional's chosen branch, run a loop).
type Block interface {
	Name() string
	Append(line string) (done bool, err error)
	Complete() error
}

var indentKeywords = []string{"function", "while", "if", "elif", "else"}
var dedentKeywords = []string{"elif", "else", "endif", "endfunction", "done"}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// formatBlock pretty-prints a stored line sequence with simple
// indent/dedent tracking, used to build a registered function's help text.
func formatBlock(lines []string, indentSize int) string {
	if len(lines) == 0 {
		return ""
	}

	var out []string
	depth := 0
	if hasAnyPrefix(strings.TrimSpace(lines[0]), indentKeywords) {
		depth++
	}

	for _, raw := range lines {
		trimmed := strings.TrimSpace(raw)
		if hasAnyPrefix(trimmed, dedentKeywords) {
			depth--
			if depth < 0 {
				depth = 0
			}
		}
		out = append(out, strings.Repeat(" ", depth*indentSize)+trimmed)
		if hasAnyPrefix(trimmed, indentKeywords) {
			depth++
		}
	}

	return strings.Join(out, "\n")
}

// runBody evaluates lines in order against the REPL's current scope.
// Shift is always handled locally: it rebinds the innermost active
// function's positionals and execution continues with the next line.
// Break is absorbed only when catchBreak is true (Loop bodies); otherwise,
// like Return, it is propagated to the caller by returning it as the
// error. This mirrors the catch clauses in the original's Function/
// Conditional/Loop complete() methods exactly: only Loop catches Break,
// only Function catches Return, and all three catch Shift. Evaluation also
// stops after the line that sets the done flag (quit/exit).
func (r *REPL) runBody(lines []string, catchBreak bool) (broke bool, err error) {
	for _, line := range lines {
		out, lineErr := r.Eval(line)
		if top := r.callStack.Top(); top != nil {
			top.LineNumber++
		}

		if lineErr != nil {
			switch lineErr.(type) {
			case control.Shift:
				if frame := r.topFunctionFrame(); frame != nil {
					frame.shift(r.currentEnv())
					continue
				}
				return false, lineErr
			case control.Break:
				if catchBreak {
					return true, nil
				}
				return false, lineErr
			default:
				return false, lineErr
			}
		}

		if out != "" {
			r.writeLine(out)
		}
		if r.done {
			return false, nil
		}
	}
	return false, nil
}

package interp

import (
	"strings"

	"github.com/aledsdavies/shellrepl/internal/control"
)

type predicateBody struct {
	predicate string
	body      []string
}

// conditionalBlock accumulates `if pred … [elif pred …] [else …] endif`.
// Grounded on original_source/repl/Conditional.py. else is modeled as an
// implicit "elif true" branch, legal anywhere in the chain (the source
// allows a mid-chain else, even though any body following it is
// unreachable).
type conditionalBlock struct {
	r        *REPL
	branches []predicateBody
	current  predicateBody
}

func newConditionalBlock(r *REPL, predicate string) *conditionalBlock {
	return &conditionalBlock{r: r, current: predicateBody{predicate: predicate}}
}

func (c *conditionalBlock) Name() string { return "if " + c.current.predicate }

func (c *conditionalBlock) Append(line string) (bool, error) {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "endif":
		c.branches = append(c.branches, c.current)
		return true, nil

	case strings.HasPrefix(trimmed, "elif"):
		pred := strings.TrimSpace(strings.TrimPrefix(trimmed, "elif"))
		if pred == "" {
			return false, &control.SyntaxError{Message: "elif requires a predicate"}
		}
		c.branches = append(c.branches, c.current)
		c.current = predicateBody{predicate: pred}
		return false, nil

	case trimmed == "else" || strings.HasPrefix(trimmed, "else "):
		c.branches = append(c.branches, c.current)
		c.current = predicateBody{predicate: "true"}
		return false, nil

	default:
		c.current.body = append(c.current.body, line)
		return false, nil
	}
}

// Complete evaluates each (predicate, body) pair in order and runs the
// first whose predicate succeeds (? == 0). A syntax error in a predicate
// is reported by Eval itself, which sets ? to 2, so that branch is
// skipped. Any error Eval returns for a predicate, and any error escaping
// the chosen body (a control signal or a command's runtime error), is
// returned as is, so it surfaces as this if-block's own Eval("endif")
// error — reaching the loop that catches break, or the function
// invocation that catches return.
func (c *conditionalBlock) Complete() error {
	for _, branch := range c.branches {
		out, err := c.r.Eval(branch.predicate)
		if err != nil {
			return err
		}
		if out != "" {
			c.r.writeLine(out)
		}
		if c.r.Status() != 0 {
			continue
		}
		_, err = c.r.runBody(branch.body, false)
		return err
	}
	return nil
}

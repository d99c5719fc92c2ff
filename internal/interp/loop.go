package interp

import "strings"

// loopBlock accumulates `while pred … done`. Grounded on
// original_source/repl/Loop.py.
type loopBlock struct {
	r         *REPL
	predicate string
	body      []string
}

func newLoopBlock(r *REPL, predicate string) *loopBlock {
	return &loopBlock{r: r, predicate: predicate}
}

func (l *loopBlock) Name() string { return "while " + l.predicate }

func (l *loopBlock) Append(line string) (bool, error) {
	if strings.TrimSpace(line) == "done" {
		return true, nil
	}
	l.body = append(l.body, line)
	return false, nil
}

// Complete evaluates the predicate, and while it succeeds (? == 0) runs
// the body and re-evaluates. break stops the loop normally (absorbed
// here, by runBody's catchBreak=true); return propagates to the
// enclosing function invocation.
func (l *loopBlock) Complete() error {
	for {
		out, err := l.r.Eval(l.predicate)
		if err != nil {
			return err
		}
		if out != "" {
			l.r.writeLine(out)
		}
		if l.r.Status() != 0 {
			return nil
		}

		broke, err := l.r.runBody(l.body, true)
		if err != nil {
			return err
		}
		if broke {
			return nil
		}
	}
}

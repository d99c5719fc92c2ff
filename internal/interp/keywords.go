package interp

import (
	"strings"
	"time"

	"github.com/aledsdavies/shellrepl/internal/control"
)

// buildKeywordTable wires the ten reserved words (exit is a synonym for
// quit). Keywords are resolved
// before registry lookup and cannot be shadowed by an alias, function, or
// builtin of the same name. When noKeyword is set (an embedding host that
// wants the bare dispatcher with no block/control-flow surface) the table
// is empty.
func (r *REPL) buildKeywordTable(noKeyword bool) map[string]keywordHandler {
	if noKeyword {
		return map[string]keywordHandler{}
	}
	return map[string]keywordHandler{
		"function": keywordStartFunction,
		"while":    keywordStartLoop,
		"if":       keywordStartConditional,
		"break":    keywordBreak,
		"return":   keywordReturn,
		"shift":    keywordShift,
		"quit":     keywordQuit,
		"exit":     keywordQuit,
		"help":     keywordHelp,
		"time":     keywordTime,
	}
}

func keywordStartFunction(r *REPL, rest string) (int, error) {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		r.errorf("Syntax error: function requires a name")
		r.setStatus(2)
		return 0, nil
	}

	name := fields[0]
	argNames := fields[1:]
	variadic := false
	if n := len(argNames); n > 0 && argNames[n-1] == "..." {
		variadic = true
		argNames = argNames[:n-1]
	}
	for _, a := range argNames {
		if a == "" {
			continue
		}
		if a[0] >= '0' && a[0] <= '9' {
			r.errorf("Syntax error: argument names must not begin with a digit: %s", a)
			r.setStatus(2)
			return 0, nil
		}
	}

	r.pushBlock(newFunctionBlock(r, name, argNames, variadic))
	return 0, nil
}

func keywordStartLoop(r *REPL, rest string) (int, error) {
	if strings.TrimSpace(rest) == "" {
		r.errorf("Syntax error: while requires a predicate")
		r.setStatus(2)
		return 0, nil
	}
	r.pushBlock(newLoopBlock(r, rest))
	return 0, nil
}

func keywordStartConditional(r *REPL, rest string) (int, error) {
	if strings.TrimSpace(rest) == "" {
		r.errorf("Syntax error: if requires a predicate")
		r.setStatus(2)
		return 0, nil
	}
	r.pushBlock(newConditionalBlock(r, rest))
	return 0, nil
}

func keywordBreak(r *REPL, rest string) (int, error) {
	return 0, control.Break{}
}

func keywordReturn(r *REPL, rest string) (int, error) {
	rest = strings.TrimSpace(rest)
	value := 0
	if v, ok := parseInt(rest); ok {
		value = v
	}
	return 0, control.Return{Value: value}
}

func keywordShift(r *REPL, rest string) (int, error) {
	return 0, control.Shift{}
}

func keywordQuit(r *REPL, rest string) (int, error) {
	r.done = true
	return 0, nil
}

func keywordHelp(r *REPL, rest string) (int, error) {
	name := strings.TrimSpace(rest)
	if name == "" {
		r.writeLine(strings.Join(r.registry.Completions(keywordNames(r)), " "))
		return 0, nil
	}
	cmd := r.registry.Lookup(name)
	if cmd.Usage != "" {
		r.writeLine(cmd.Usage)
	}
	if cmd.Help != "" {
		r.writeLine(cmd.Help)
	}
	return 0, nil
}

func keywordTime(r *REPL, rest string) (int, error) {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return 0, nil
	}
	start := time.Now()
	out, err := r.Eval(rest)
	elapsed := time.Since(start)
	if err != nil {
		return 0, err
	}
	if out != "" {
		r.writeLine(out)
	}
	r.errorf("real %s", elapsed)
	return r.Status(), nil
}

func keywordNames(r *REPL) []string {
	names := make([]string, 0, len(r.keywords))
	for k := range r.keywords {
		names = append(names, k)
	}
	return names
}

func parseInt(s string) (int, bool) {
	neg := false
	if s == "" {
		return 0, false
	}
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		n = -n
	}
	return n, true
}

package interp

import (
	"strconv"
	"strings"

	"github.com/aledsdavies/shellrepl/internal/command"
	"github.com/aledsdavies/shellrepl/internal/control"
	"github.com/aledsdavies/shellrepl/internal/token"
)

// functionCall tracks one live invocation's positional state so that
// shift can rebuild FUNCTION/#/@/0/1..N bindings in place. Grounded on
// original_source/repl/Function.py's shift(), generalized to Go's
// explicit-state style instead of mutating instance attributes in place.
type functionCall struct {
	name    string
	argspec []string
	args    []string
}

func newFunctionCall(name string, argspec []string, args []string) *functionCall {
	argCopy := append([]string(nil), argspec...)
	return &functionCall{name: name, argspec: argCopy, args: args}
}

func (f *functionCall) bindings() map[string]string {
	b := map[string]string{
		"FUNCTION": f.name,
		"#":        strconv.Itoa(len(f.args)),
		"@":        quoteJoin(f.args),
		"0":        f.name,
	}
	for i, a := range f.args {
		b[strconv.Itoa(i+1)] = a
	}
	for i, name := range f.argspec {
		if i < len(f.args) {
			b[name] = f.args[i]
		}
	}
	return b
}

func quoteJoin(args []string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = token.Quote(a)
	}
	return strings.Join(parts, " ")
}

// shift drops the first positional argument: the last numeric positional
// and the first formal name are unbound (since the list is now one
// shorter), and every surviving binding is rebuilt. Past the last
// positional, shift is a silent no-op — one of two behaviors the source
// shows across revisions; a no-op matches the principle that control
// signals must not themselves raise.
func (f *functionCall) shift(e bindable) {
	if len(f.args) == 0 {
		return
	}
	e.Unbind(strconv.Itoa(len(f.args)))
	if len(f.argspec) > 0 {
		e.Unbind(f.argspec[0])
		f.argspec = f.argspec[1:]
	}
	f.args = f.args[1:]
	for k, v := range f.bindings() {
		e.BindHere(k, v)
	}
}

// bindable is the slice of *env.Environment that shift needs; declared
// locally so function.go does not need to import env directly for this
// one use.
type bindable interface {
	Unbind(name string)
	BindHere(name, value string)
}

// functionBlock accumulates a function body between `function NAME …`
// and `endfunction`. Grounded on original_source/repl/Function.py.
type functionBlock struct {
	r        *REPL
	name     string
	argspec  []string
	variadic bool
	body     []string
}

func newFunctionBlock(r *REPL, name string, argspec []string, variadic bool) *functionBlock {
	return &functionBlock{r: r, name: name, argspec: argspec, variadic: variadic}
}

func (b *functionBlock) Name() string { return "function " + b.name }

func (b *functionBlock) Append(line string) (bool, error) {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "endfunction":
		return true, nil
	case strings.HasPrefix(trimmed, "function "), trimmed == "function":
		return false, &control.SyntaxError{Message: "Cannot create nested functions"}
	default:
		b.body = append(b.body, line)
		return false, nil
	}
}

func (b *functionBlock) Complete() error {
	usage := b.usage()
	help := formatBlock(append([]string{"function " + usage}, append(append([]string(nil), b.body...), "endfunction")...), 4)

	fn := &userFunction{
		repl:     b.r,
		name:     b.name,
		argspec:  b.argspec,
		variadic: b.variadic,
		body:     b.body,
	}

	b.r.RegisterUserFunction(command.Command{
		Name:   b.name,
		Usage:  usage,
		Help:   help,
		Invoke: fn.invoke,
	})
	return nil
}

func (b *functionBlock) usage() string {
	parts := append([]string{b.name}, b.argspec...)
	if b.variadic {
		parts = append(parts, "...")
	}
	return strings.Join(parts, " ")
}

// userFunction is the runtime behind a registered function command.
type userFunction struct {
	repl     *REPL
	name     string
	argspec  []string
	variadic bool
	body     []string
}

func (fn *userFunction) invoke(ctx *command.InvokeContext, args []string) (int, error) {
	if fn.variadic {
		if len(args) < len(fn.argspec) {
			return 0, &control.ArityError{Usage: fn.usageString()}
		}
	} else if len(args) != len(fn.argspec) {
		return 0, &control.ArityError{Usage: fn.usageString()}
	}

	call := newFunctionCall(fn.name, fn.argspec, args)
	fn.repl.pushScope(call.bindings(), fn.name)
	fn.repl.funcFrames = append(fn.repl.funcFrames, call)
	defer func() {
		fn.repl.funcFrames = fn.repl.funcFrames[:len(fn.repl.funcFrames)-1]
		fn.repl.popScope()
	}()

	_, err := fn.repl.runBody(fn.body, false)
	if err != nil {
		if ret, ok := err.(control.Return); ok {
			return ret.Value, nil
		}
		return 0, err
	}
	return 0, nil
}

func (fn *userFunction) usageString() string {
	parts := append([]string{fn.name}, fn.argspec...)
	if fn.variadic {
		parts = append(parts, "...")
	}
	return strings.Join(parts, " ")
}

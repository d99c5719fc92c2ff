package interp

import (
	"bufio"
	"encoding/json"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aledsdavies/shellrepl/internal/command"
	"github.com/aledsdavies/shellrepl/internal/control"
	"github.com/tidwall/pretty"
)

// registerBuiltins installs the interpreter-provided commands, grounded on
// original_source/repl/base/modules/shell.py and repl.py's setup_builtins
// call list.
func (r *REPL) registerBuiltins() {
	for _, c := range []command.Command{
		r.builtinEcho(false),
		r.builtinEcho(true),
		r.builtinAlias(),
		r.builtinUnalias(),
		r.builtinSet(false),
		r.builtinSet(true),
		r.builtinUnset(),
		r.builtinSourceCmd(),
		r.builtinCat(),
		r.builtinConfig(),
		r.builtinEnv(),
		r.builtinSlice(),
		r.builtinSleep(),
		r.builtinList(false),
		r.builtinList(true),
		r.builtinVerbose(),
		r.builtinModules(),
		r.builtinUndef(),
		r.builtinExceptions(),
		r.builtinTrue(),
		r.builtinFalse(),
		r.builtinNot(),
	} {
		r.registry.RegisterBuiltin(c)
	}
}

func (r *REPL) builtinEcho(toError bool) command.Command {
	name := "echo"
	if toError {
		name = "echoe"
	}
	return command.Command{
		Name:  name,
		Usage: name + " [args...]",
		Help:  "Print args separated by spaces, interpreting \\n and \\t.",
		Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
			text := strings.Join(args, " ")
			text = strings.ReplaceAll(text, `\n`, "\n")
			text = strings.ReplaceAll(text, `\t`, "\t")
			if toError {
				r.errorf("%s", text)
			} else {
				ctx.Println(text)
			}
			return 0, nil
		},
	}
}

func (r *REPL) builtinAlias() command.Command {
	return command.Command{
		Name:  "alias",
		Usage: "alias new old",
		Help:  "Register new as a snapshot of old's current command.",
		Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
			if len(args) != 2 {
				return 0, &control.ArityError{Usage: "alias new old"}
			}
			r.registry.Alias(args[0], args[1])
			return 0, nil
		},
	}
}

func (r *REPL) builtinUnalias() command.Command {
	return command.Command{
		Name:  "unalias",
		Usage: "unalias name",
		Help:  "Remove an alias; missing names are ignored.",
		Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
			if len(args) != 1 {
				return 0, &control.ArityError{Usage: "unalias name"}
			}
			r.registry.Unalias(args[0])
			return 0, nil
		},
	}
}

func validIdentifier(name string) bool {
	if name == "" {
		return false
	}
	c := name[0]
	if !(c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' ||
		c == '_' || c == '?' || c == '@' || c == '#' || c == '-') {
		return false
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		if !(c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' ||
			c == '_' || c == '-') {
			return false
		}
	}
	return true
}

func (r *REPL) builtinSet(local bool) command.Command {
	name := "set"
	if local {
		name = "set-local"
	}
	help := "Bind a variable in the current scope (trampling upward if already bound)."
	if local {
		help = "Bind a variable in the current scope only, shadowing any ancestor."
	}
	return command.Command{
		Name:  name,
		Usage: name + " name value",
		Help:  help,
		Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
			if len(args) < 1 {
				return 0, &control.ArityError{Usage: name + " name value"}
			}
			if !validIdentifier(args[0]) {
				ctx.Println("invalid identifier:", args[0])
				return 2, nil
			}
			value := strings.Join(args[1:], " ")
			if local {
				r.SetLocal(args[0], value)
			} else {
				r.Set(args[0], value)
			}
			return 0, nil
		},
	}
}

func (r *REPL) builtinUnset() command.Command {
	return command.Command{
		Name:  "unset",
		Usage: "unset name",
		Help:  "Remove a variable from the current scope.",
		Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
			if len(args) != 1 {
				return 0, &control.ArityError{Usage: "unset name"}
			}
			if !validIdentifier(args[0]) {
				ctx.Println("invalid identifier:", args[0])
				return 2, nil
			}
			r.Unset(args[0])
			return 0, nil
		},
	}
}

func (r *REPL) builtinSourceCmd() command.Command {
	return command.Command{
		Name:  "source",
		Usage: "source path",
		Help:  "Evaluate every line of a file in the current scope.",
		Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
			if len(args) != 1 {
				return 0, &control.ArityError{Usage: "source path"}
			}
			f, err := os.Open(args[0])
			if err != nil {
				ctx.Println("cannot open:", args[0])
				return 1, nil
			}
			defer f.Close()

			var lines []string
			scanner := bufio.NewScanner(f)
			for scanner.Scan() {
				lines = append(lines, scanner.Text())
			}
			if err := r.Source(lines); err != nil {
				return 0, err
			}
			return 0, nil
		},
	}
}

func (r *REPL) builtinCat() command.Command {
	return command.Command{
		Name:  "cat",
		Usage: "cat [path]",
		Help:  "Print a file's contents, or stdin if no path is given (pipeline use).",
		Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
			if len(args) == 0 {
				if ctx.Stdin == nil {
					return 0, nil
				}
				buf := make([]byte, 4096)
				for {
					n, err := ctx.Stdin.Read(buf)
					if n > 0 {
						ctx.Stdout.Write(buf[:n])
					}
					if err != nil {
						break
					}
				}
				return 0, nil
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				ctx.Println("cannot read:", args[0])
				return 1, nil
			}
			ctx.Stdout.Write(data)
			return 0, nil
		},
	}
}

func (r *REPL) builtinConfig() command.Command {
	return command.Command{
		Name:  "config",
		Usage: "config [--pretty|--save|--reload]",
		Help:  "Print, persist, or reload the configuration scope.",
		Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
			if len(args) == 1 && args[0] == "--save" {
				if err := r.SaveConfig(); err != nil {
					ctx.Println("config save error:", err)
					return 3, nil
				}
				return 0, nil
			}
			if len(args) == 1 && args[0] == "--reload" {
				if err := r.ReloadConfig(); err != nil {
					ctx.Println("config reload error:", err)
					return 3, nil
				}
				return 0, nil
			}

			data, err := json.Marshal(r.configEnv.Bindings())
			if err != nil {
				ctx.Println("config marshal error:", err)
				return 3, nil
			}
			if len(args) == 1 && args[0] == "--pretty" {
				data = pretty.Pretty(data)
			}
			ctx.Stdout.Write(data)
			return 0, nil
		},
	}
}

func (r *REPL) builtinEnv() command.Command {
	return command.Command{
		Name:  "env",
		Usage: "env",
		Help:  "List bindings in the current scope.",
		Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
			for _, line := range r.currentEnv().List() {
				ctx.Println(line)
			}
			return 0, nil
		},
	}
}

func (r *REPL) builtinSlice() command.Command {
	return command.Command{
		Name:  "slice",
		Usage: "slice start end args...",
		Help:  "Print a sub-range of the remaining arguments, Python-slice style.",
		Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
			if len(args) < 2 {
				return 0, &control.ArityError{Usage: "slice start end args..."}
			}
			start, err1 := strconv.Atoi(args[0])
			end, err2 := strconv.Atoi(args[1])
			rest := args[2:]
			if err1 != nil || err2 != nil {
				ctx.Println("slice: start/end must be integers")
				return 2, nil
			}
			start = clampIndex(start, len(rest))
			end = clampIndex(end, len(rest))
			if start > end {
				start = end
			}
			ctx.Println(strings.Join(rest[start:end], " "))
			return 0, nil
		},
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

func (r *REPL) builtinSleep() command.Command {
	return command.Command{
		Name:  "sleep",
		Usage: "sleep seconds",
		Help:  "Block the evaluator for the given number of seconds.",
		Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
			if len(args) != 1 {
				return 0, &control.ArityError{Usage: "sleep seconds"}
			}
			secs, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				ctx.Println("sleep: not a number:", args[0])
				return 2, nil
			}
			time.Sleep(time.Duration(secs * float64(time.Second)))
			return 0, nil
		},
	}
}

func (r *REPL) builtinList(tree bool) command.Command {
	name := "list"
	if tree {
		name = "list-tree"
	}
	return command.Command{
		Name:  name,
		Usage: name,
		Help:  "List registered command names across every namespace.",
		Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
			names := r.registry.Completions(nil)
			sort.Strings(names)
			for _, n := range names {
				ctx.Println(n)
			}
			if tree {
				for _, line := range r.currentEnv().ListTree() {
					ctx.Println(line)
				}
			}
			return 0, nil
		},
	}
}

func (r *REPL) builtinVerbose() command.Command {
	return command.Command{
		Name:  "verbose",
		Usage: "verbose [on|off]",
		Help:  "Toggle echoing of each evaluated line to the error sink.",
		Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
			switch {
			case len(args) == 0:
				r.echo = !r.echo
			case args[0] == "on":
				r.echo = true
			case args[0] == "off":
				r.echo = false
			default:
				return 0, &control.ArityError{Usage: "verbose [on|off]"}
			}
			return 0, nil
		},
	}
}

func (r *REPL) builtinModules() command.Command {
	return command.Command{
		Name:  "modules",
		Usage: "modules [enable NAME]",
		Help:  "List loaded/known modules, or enable one.",
		Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
			if len(args) == 2 && args[0] == "enable" {
				if !r.EnableModule(args[1]) {
					ctx.Println("unknown module:", args[1])
					return 1, nil
				}
				return 0, nil
			}
			loaded := r.LoadedModules()
			known := r.KnownModules()
			sort.Strings(loaded)
			sort.Strings(known)
			ctx.Println("loaded:", strings.Join(loaded, " "))
			ctx.Println("known:", strings.Join(known, " "))
			return 0, nil
		},
	}
}

func (r *REPL) builtinUndef() command.Command {
	return command.Command{
		Name:  "undef",
		Usage: "undef name",
		Help:  "Remove a user-defined function.",
		Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
			if len(args) != 1 {
				return 0, &control.ArityError{Usage: "undef name"}
			}
			r.UnregisterUserFunction(args[0])
			return 0, nil
		},
	}
}

func (r *REPL) builtinExceptions() command.Command {
	return command.Command{
		Name:  "exceptions",
		Usage: "exceptions [on|off]",
		Help:  "Toggle re-raising low-level errors for a host stack trace instead of a one-line diagnostic.",
		Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
			switch {
			case len(args) == 0:
				r.reraise = !r.reraise
			case args[0] == "on":
				r.reraise = true
			case args[0] == "off":
				r.reraise = false
			default:
				return 0, &control.ArityError{Usage: "exceptions [on|off]"}
			}
			return 0, nil
		},
	}
}

func (r *REPL) builtinTrue() command.Command {
	return command.Command{
		Name: "true", Usage: "true", Help: "Always succeeds.",
		Invoke: func(ctx *command.InvokeContext, args []string) (int, error) { return 0, nil },
	}
}

func (r *REPL) builtinFalse() command.Command {
	return command.Command{
		Name: "false", Usage: "false", Help: "Always fails.",
		Invoke: func(ctx *command.InvokeContext, args []string) (int, error) { return 1, nil },
	}
}

func (r *REPL) builtinNot() command.Command {
	return command.Command{
		Name:  "not",
		Usage: "not cmd [args...]",
		Help:  "Run cmd and invert its result between 0 and 1.",
		Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
			if len(args) == 0 {
				return 0, &control.ArityError{Usage: "not cmd [args...]"}
			}
			out, err := r.runPipeline(args)
			if err != nil {
				return 0, err
			}
			if out != "" {
				ctx.Stdout.Write([]byte(out))
			}
			if r.Status() == 0 {
				return 1, nil
			}
			return 0, nil
		},
	}
}


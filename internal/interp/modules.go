package interp

import (
	"github.com/aledsdavies/shellrepl/internal/command"
	"github.com/aledsdavies/shellrepl/internal/control"
	"github.com/aledsdavies/shellrepl/modules/jsonmod"
	"github.com/aledsdavies/shellrepl/modules/mathmod"
	"github.com/aledsdavies/shellrepl/modules/shellmod"
	"github.com/aledsdavies/shellrepl/modules/textmod"
)

// registerModuleFactories wires the five built-in modules into the known-
// module table. Grounded on original_source/repl/base/modules/{math,text,
// shell,json}.py; json is included even though the captured __known_modules
// dict in repl.py omits it, since a full json.py module exists in the pack
// and this system ships it as one of the built-in modules. debug has no
// original_source counterpart and no standalone package (it toggles
// REPL state directly, per SPEC_FULL.md §9.5's Open Question resolution
// that debug is a module-gated builtin rather than a keyword).
func (r *REPL) registerModuleFactories() {
	r.knownModules["math"] = mathmod.Commands
	r.knownModules["text"] = textmod.Commands
	r.knownModules["shell"] = shellmod.Commands
	r.knownModules["json"] = jsonmod.Commands
	r.knownModules["debug"] = r.debugModuleCommands
}

func (r *REPL) debugModuleCommands() []command.Command {
	return []command.Command{
		{
			Name:  "debug",
			Usage: "debug [on|off]",
			Help:  "Toggle re-panicking on an internal error instead of a one-line diagnostic.",
			Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
				switch {
				case len(args) == 0:
					r.debug = !r.debug
				case args[0] == "on":
					r.debug = true
				case args[0] == "off":
					r.debug = false
				default:
					return 0, &control.ArityError{Usage: "debug [on|off]"}
				}
				return 0, nil
			},
		},
	}
}

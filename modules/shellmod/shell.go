// Package shellmod implements the "shell" built-in module: a passthrough
// to the host operating system's shell for commands with no native
// equivalent. Grounded on original_source/repl/base/modules/shell.py.
package shellmod

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/aledsdavies/shellrepl/internal/command"
)

// Commands returns the shell module's command set.
func Commands() []command.Command {
	return []command.Command{
		{
			Name:  "shell",
			Usage: "shell cmd [args...]",
			Help:  "Run cmd as a host process and print its combined output.",
			Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
				if len(args) == 0 {
					ctx.Println("usage: shell cmd [args...]")
					return 2, nil
				}
				cmd := exec.Command(args[0], args[1:]...)
				if ctx.Stdin != nil {
					cmd.Stdin = ctx.Stdin
				}
				var out bytes.Buffer
				cmd.Stdout = &out
				cmd.Stderr = &out
				err := cmd.Run()
				ctx.Stdout.Write(out.Bytes())
				if err != nil {
					if exitErr, ok := err.(*exec.ExitError); ok {
						return exitErr.ExitCode(), nil
					}
					return 1, nil
				}
				return 0, nil
			},
		},
		{
			Name:  "pwd",
			Usage: "pwd",
			Help:  "Print the host process's working directory.",
			Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
				out, err := exec.Command("pwd").Output()
				if err != nil {
					return 1, nil
				}
				ctx.Println(strings.TrimRight(string(out), "\n"))
				return 0, nil
			},
		},
	}
}

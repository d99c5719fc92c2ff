// Package textmod implements the "text" built-in module: regex-driven
// string inspection plus the two commands that don't need a pattern
// (length, strcmp) and the pipeline sink devnull. Grounded on
// original_source/repl/base/modules/text.py, ported from Python's re to
// stdlib regexp — no ecosystem regex library appears anywhere in the
// retrieved pack, so stdlib is the grounded choice here (see DESIGN.md).
package textmod

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/aledsdavies/shellrepl/internal/command"
	"github.com/aledsdavies/shellrepl/internal/control"
)

func compile(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(pattern)
}

// Commands returns the text module's command set.
func Commands() []command.Command {
	return []command.Command{
		{
			Name:  "regex-capture",
			Usage: "regex-capture pattern [strings...]",
			Help:  "Use a regex to extract capture groups from each string.",
			Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
				if len(args) < 1 {
					return 0, &control.ArityError{Usage: "regex-capture pattern [strings...]"}
				}
				re, err := compile(args[0])
				if err != nil {
					return 0, &control.RuntimeError{Message: err.Error()}
				}

				var captures []string
				for _, s := range args[1:] {
					m := re.FindStringSubmatch(s)
					if m == nil || len(m) < 2 {
						continue
					}
					var groups []string
					for _, g := range m[1:] {
						if g != "" {
							groups = append(groups, g)
						}
					}
					if len(groups) > 0 {
						captures = append(captures, strings.Join(groups, " "))
					}
				}
				if len(captures) == 0 {
					return 1, nil
				}
				ctx.Println(strings.Join(captures, "\n"))
				return 0, nil
			},
		},
		{
			Name:  "regex-replace",
			Usage: "regex-replace pattern replacement [strings...]",
			Help:  "Replace every regex match in each string with replacement.",
			Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
				if len(args) < 2 {
					return 0, &control.ArityError{Usage: "regex-replace pattern replacement [strings...]"}
				}
				re, err := compile(args[0])
				if err != nil {
					return 0, &control.RuntimeError{Message: err.Error()}
				}
				replacement := args[1]

				out := make([]string, 0, len(args)-2)
				for _, s := range args[2:] {
					out = append(out, re.ReplaceAllString(s, replacement))
				}
				if len(out) > 0 {
					ctx.Println(strings.Join(out, "\n"))
				}
				return 0, nil
			},
		},
		{
			Name:  "regex-match",
			Usage: "regex-match pattern [strings...]",
			Help:  "Filter strings through a regex anchored at their start.",
			Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
				if len(args) < 1 {
					return 0, &control.ArityError{Usage: "regex-match pattern [strings...]"}
				}
				re, err := compile(args[0])
				if err != nil {
					return 0, &control.RuntimeError{Message: err.Error()}
				}

				var matches []string
				for _, s := range args[1:] {
					loc := re.FindStringIndex(s)
					if loc != nil && loc[0] == 0 {
						matches = append(matches, s)
					}
				}
				if len(matches) == 0 {
					return 1, nil
				}
				ctx.Println(strings.Join(matches, "\n"))
				return 0, nil
			},
		},
		{
			Name:  "length",
			Usage: "length string",
			Help:  "Print the length of string.",
			Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
				if len(args) != 1 {
					return 0, &control.ArityError{Usage: "length string"}
				}
				ctx.Println(len(args[0]))
				return 0, nil
			},
		},
		{
			Name:  "devnull",
			Usage: "devnull",
			Help:  "Accept input and do nothing with it.",
			Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
				if ctx.Stdin == nil {
					return 0, nil
				}
				scanner := bufio.NewScanner(ctx.Stdin)
				for scanner.Scan() {
					if scanner.Text() == "" {
						break
					}
				}
				return 0, nil
			},
		},
		{
			Name:  "strcmp",
			Usage: "strcmp lhs rhs",
			Help:  "Compare lhs and rhs for string equality.",
			Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
				if len(args) != 2 {
					return 0, &control.ArityError{Usage: "strcmp lhs rhs"}
				}
				if args[0] == args[1] {
					return 0, nil
				}
				return 1, nil
			},
		},
	}
}

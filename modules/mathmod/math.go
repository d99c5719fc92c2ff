// Package mathmod implements the "math" built-in module: arithmetic and
// comparison commands operating on stringly-typed arguments, each
// returning its answer on stdout and a 0/1 success status for the
// comparisons. Grounded on original_source/repl/base/modules/math.py.
package mathmod

import (
	"strconv"
	"strings"

	"github.com/aledsdavies/shellrepl/internal/command"
	"github.com/aledsdavies/shellrepl/internal/control"
)

// number holds a parsed operand in whichever of the original's two Python
// number() branches matched: int64 when the text parses as an integer,
// float64 otherwise (the original's int(arg) then float(arg) fallback).
type number struct {
	i     int64
	f     float64
	isInt bool
}

func parseNumber(s string) (number, bool) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return number{i: i, isInt: true}, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return number{f: f}, true
	}
	return number{}, false
}

func (n number) asFloat() float64 {
	if n.isInt {
		return float64(n.i)
	}
	return n.f
}

// formatFloat mirrors Python's float stringification closely enough for
// this module's purposes: always showing a decimal point, even for a
// whole-number result (str(4.0) == "4.0", not "4").
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func formatNumber(n number) string {
	if n.isInt {
		return strconv.FormatInt(n.i, 10)
	}
	return formatFloat(n.f)
}

// arith builds a binary command that stays in int64 when both operands
// parse as integers and falls back to float64 otherwise, matching
// number()'s promotion in the original.
func arith(name, usage string, opInt func(a, b int64) int64, opFloat func(a, b float64) float64) command.Command {
	return command.Command{
		Name:  name,
		Usage: usage,
		Help:  "Print the result of applying " + name + " to a and b.",
		Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
			if len(args) != 2 {
				return 0, &control.ArityError{Usage: usage}
			}
			a, ok1 := parseNumber(args[0])
			b, ok2 := parseNumber(args[1])
			if !ok1 || !ok2 {
				ctx.Println("Can only", name, "valid numbers")
				return 2, nil
			}
			if a.isInt && b.isInt {
				ctx.Println(opInt(a.i, b.i))
			} else {
				ctx.Println(formatFloat(opFloat(a.asFloat(), b.asFloat())))
			}
			return 0, nil
		},
	}
}

func divide() command.Command {
	usage := "divide a b"
	return command.Command{
		Name:  "divide",
		Usage: usage,
		Help:  "Print a divided by b (true division, matching Python's /).",
		Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
			if len(args) != 2 {
				return 0, &control.ArityError{Usage: usage}
			}
			a, ok1 := parseNumber(args[0])
			b, ok2 := parseNumber(args[1])
			if !ok1 || !ok2 {
				ctx.Println("Can only divide valid numbers")
				return 2, nil
			}
			if b.asFloat() == 0 {
				return 0, &control.RuntimeError{Message: "division by zero"}
			}
			ctx.Println(formatFloat(a.asFloat() / b.asFloat()))
			return 0, nil
		},
	}
}

func compare(name, usage string, op func(a, b float64) bool) command.Command {
	return command.Command{
		Name:  name,
		Usage: usage,
		Help:  "Succeed (status 0) iff a " + name + " b.",
		Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
			if len(args) != 2 {
				return 0, &control.ArityError{Usage: usage}
			}
			a, ok1 := parseNumber(args[0])
			b, ok2 := parseNumber(args[1])
			if !ok1 || !ok2 {
				ctx.Println("Both operands must be numbers")
				return 2, nil
			}
			if op(a.asFloat(), b.asFloat()) {
				return 0, nil
			}
			return 1, nil
		},
	}
}

// equal compares the raw argument text, not the parsed numeric value,
// matching the original's eq(lhs, rhs) which never calls number() at all.
func equal() command.Command {
	usage := "equal a b"
	return command.Command{
		Name:  "equal",
		Usage: usage,
		Help:  "Succeed (status 0) iff a and b are the same text.",
		Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
			if len(args) != 2 {
				return 0, &control.ArityError{Usage: usage}
			}
			if args[0] == args[1] {
				return 0, nil
			}
			return 1, nil
		},
	}
}

// step builds increment/decrement: a number plus or minus a step, default
// 1, staying in int64 when both the number and the step are integers.
func step(name string, sign int64) command.Command {
	usage := name + " number [step]"
	return command.Command{
		Name:  name,
		Usage: usage,
		Help:  "Print number " + name + "ed by 1, or by a given step.",
		Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
			if len(args) != 1 && len(args) != 2 {
				return 0, &control.ArityError{Usage: usage}
			}
			n, ok := parseNumber(args[0])
			if !ok {
				ctx.Println("Can only", name, "valid numbers")
				return 2, nil
			}
			stepVal := number{i: 1, isInt: true}
			if len(args) == 2 {
				stepVal, ok = parseNumber(args[1])
				if !ok {
					ctx.Println("Can only", name, "valid numbers")
					return 2, nil
				}
			}
			if n.isInt && stepVal.isInt {
				ctx.Println(formatNumber(number{i: n.i + sign*stepVal.i, isInt: true}))
			} else {
				ctx.Println(formatFloat(n.asFloat() + float64(sign)*stepVal.asFloat()))
			}
			return 0, nil
		},
	}
}

// renamed returns c under a different name, usage rewritten to match; used
// to offer a "math-"-prefixed alias without duplicating Invoke logic.
func renamed(name string, c command.Command) command.Command {
	fields := strings.Fields(c.Usage)
	c.Name = name
	c.Usage = name + " " + strings.Join(fields[1:], " ")
	return c
}

// Commands returns the math module's command set: the nine names
// SPEC_FULL names (add, subtract, multiply, divide, less-than,
// greater-than, equal, increment, decrement), plus the "math-"-prefixed
// aliases some callers use to avoid colliding with a user-defined basis
// command of the bare name.
func Commands() []command.Command {
	return []command.Command{
		arith("add", "add a b", func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b }),
		arith("math-add", "math-add a b", func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b }),
		arith("subtract", "subtract a b", func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b }),
		arith("math-subtract", "math-subtract a b", func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b }),
		arith("multiply", "multiply a b", func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b }),
		arith("math-multiply", "math-multiply a b", func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b }),
		divide(),
		renamed("math-divide", divide()),
		compare("less-than", "less-than a b", func(a, b float64) bool { return a < b }),
		compare("greater-than", "greater-than a b", func(a, b float64) bool { return a > b }),
		equal(),
		step("increment", 1),
		step("decrement", -1),
	}
}

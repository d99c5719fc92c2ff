// Package token implements the token model: a small, closed set of
// quoting classes that carry distinct expansion behavior through the
// lexer and evaluator.
package token

import (
	"regexp"

	"github.com/aledsdavies/shellrepl/internal/env"
)

// identifier matches a bare $name reference: [A-Za-z0-9_?@#-][A-Za-z0-9_-]*
var identifier = regexp.MustCompile(`^[A-Za-z0-9_?@#-][A-Za-z0-9_-]*`)

// braced matches a ${name} reference.
var braced = regexp.MustCompile(`^\{([A-Za-z0-9_?@#-][A-Za-z0-9_-]*)\}`)

// Token is the closed sum type every lexed word reduces to. Expand returns
// the token's expanded text against env; Raw returns the unexpanded text,
// which the evaluator uses to recognize keywords and to hand a keyword its
// unexpanded argument text (subshell/pipeline splitting operate on the
// expanded text).
type Token interface {
	Expand(e *env.Environment) string
	Raw() string
}

// Expandable is a double-quoted or unquoted word: variable references
// inside it are expanded against an Environment.
type Expandable struct {
	Text string
}

// Expand scans left to right: a $ followed by an identifier (optionally
// wrapped in {...}) is replaced by e.Get(name); a bare $ not followed by an
// identifier stays a literal $.
func (t Expandable) Expand(e *env.Environment) string {
	return ExpandString(t.Text, e)
}

func (t Expandable) Raw() string { return t.Text }

// ExpandString performs variable expansion directly on a string;
// Expandable.Expand delegates to it.
func ExpandString(s string, e *env.Environment) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '$' {
			out = append(out, c)
			continue
		}

		rest := s[i+1:]
		if m := braced.FindStringSubmatch(rest); m != nil {
			out = append(out, e.Get(m[1])...)
			i += len(m[0])
			continue
		}
		if m := identifier.FindString(rest); m != "" {
			out = append(out, e.Get(m)...)
			i += len(m)
			continue
		}
		// Bare $ with no following identifier: literal dollar.
		out = append(out, '$')
	}
	return string(out)
}

// Literal is a single-quoted word: expansion is the identity.
type Literal struct {
	Text string
}

func (t Literal) Expand(*env.Environment) string { return t.Text }

func (t Literal) Raw() string { return t.Text }

// Raw is a transient lexer token: a bare metacharacter (| or `) or an
// unclassified word fragment before the lexer's final pass promotes it to
// Expandable. After lexing, no Raw remains except the two metacharacters.
type Raw struct {
	Text string
}

func (t Raw) Expand(*env.Environment) string { return t.Text }

func (t Raw) Raw() string { return t.Text }

// joined is a word built from more than one quoting-homogeneous fragment
// (e.g. 'lit'$var): each part expands independently and the results are
// concatenated, so a literal fragment never sees variable expansion even
// when it shares a word with an expandable one.
type joined struct {
	parts []Token
}

func (t joined) Expand(e *env.Environment) string {
	out := make([]byte, 0, len(t.parts)*8)
	for _, p := range t.parts {
		out = append(out, p.Expand(e)...)
	}
	return string(out)
}

func (t joined) Raw() string {
	out := make([]byte, 0, len(t.parts)*8)
	for _, p := range t.parts {
		out = append(out, p.Raw()...)
	}
	return string(out)
}

// Join combines fragments of mixed quoting class into a single Token that
// expands each part independently. A single-element parts slice is
// returned unwrapped.
func Join(parts []Token) Token {
	if len(parts) == 1 {
		return parts[0]
	}
	return joined{parts: parts}
}

// IsPipe reports whether t is the bare pipe metacharacter.
func IsPipe(t Token) bool {
	r, ok := t.(Raw)
	return ok && r.Text == "|"
}

// IsBacktick reports whether t is the bare backtick metacharacter.
func IsBacktick(t Token) bool {
	r, ok := t.(Raw)
	return ok && r.Text == "`"
}

// Quote wraps s in double quotes when it contains a space, '#' or '|', and
// returns it bare otherwise. Other characters the lexer treats specially
// (tabs, quote characters, backticks, backslashes) are not escaped. Used
// by rawJoin for keyword arguments and by function calls building "$@".
func Quote(s string) string {
	needsQuote := false
	for _, c := range s {
		if c == ' ' || c == '#' || c == '|' {
			needsQuote = true
			break
		}
	}
	if !needsQuote {
		return s
	}
	return `"` + s + `"`
}

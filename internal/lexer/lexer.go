// Package lexer turns one logical input line into an ordered token
// sequence honoring quoting, escapes, comments, and the pipe/backtick
// metacharacters.
//
// Grounded on original_source/repl/base/syntax.py's split_whitespace, which
// runs as a sequence of list-rewriting passes (quote-matching, string
// merging, whitespace splitting, comment discarding, metacharacter
// breaking). That pass pipeline has a known quirk: under the original's
// algorithm, `a"b"c` lexes as three separate tokens instead of joining into
// one, which surprises anyone used to ordinary shell quoting. This
// implementation performs the same six conceptual passes as a single
// left-to-right scan instead, joining adjacent quoted and unquoted runs
// into one token by construction.
package lexer

import (
	"github.com/aledsdavies/shellrepl/internal/control"
	"github.com/aledsdavies/shellrepl/internal/token"
)

// fragment is one quoting-homogeneous run of text inside a single word,
// before words are promoted to Token values.
type fragment struct {
	text    string
	literal bool
}

type wordBuilder struct {
	frags []fragment
}

// add appends text to the builder, merging with the previous fragment if
// it is the same quoting class (this realizes pass 2, "merge runs of
// unquoted raw strings into single raw strings", and its analogue for
// adjacent same-class quoted runs).
func (w *wordBuilder) add(text string, literal bool) {
	if text == "" {
		return
	}
	if n := len(w.frags); n > 0 && w.frags[n-1].literal == literal {
		w.frags[n-1].text += text
		return
	}
	w.frags = append(w.frags, fragment{text: text, literal: literal})
}

func (w *wordBuilder) empty() bool { return len(w.frags) == 0 }

// finish promotes the accumulated fragments to a single Token (pass 6),
// joining mixed-quoting-class words into one composite token (the fixed
// edge case above) while a single homogeneous run collapses to a plain
// Literal or Expandable.
func (w *wordBuilder) finish() token.Token {
	if len(w.frags) == 1 {
		f := w.frags[0]
		if f.literal {
			return token.Literal{Text: f.text}
		}
		return token.Expandable{Text: f.text}
	}

	parts := make([]token.Token, len(w.frags))
	for i, f := range w.frags {
		if f.literal {
			parts[i] = token.Literal{Text: f.text}
		} else {
			parts[i] = token.Expandable{Text: f.text}
		}
	}
	return token.Join(parts)
}

// Lex turns one logical input line into an ordered token list.
func Lex(line string) ([]token.Token, error) {
	var tokens []token.Token
	var word wordBuilder

	flush := func() {
		if !word.empty() {
			tokens = append(tokens, word.finish())
			word = wordBuilder{}
		}
	}

	n := len(line)
	for i := 0; i < n; i++ {
		c := line[i]

		switch {
		case c == '\\' && i+1 < n && isEscapable(line[i+1]):
			word.add(string(line[i+1]), false)
			i++

		case c == '\'':
			content, next, err := scanQuoted(line, i, '\'')
			if err != nil {
				return nil, err
			}
			word.add(content, true)
			i = next - 1

		case c == '"':
			content, next, err := scanQuoted(line, i, '"')
			if err != nil {
				return nil, err
			}
			word.add(content, false)
			i = next - 1

		case c == ' ' || c == '\t':
			flush()

		case c == '#':
			flush()
			return tokens, nil

		case c == '`' || c == '|':
			flush()
			tokens = append(tokens, token.Raw{Text: string(c)})

		default:
			word.add(string(c), false)
		}
	}

	flush()
	return tokens, nil
}

// isEscapable reports whether c is one of the characters a backslash may
// escape to strip its special meaning: the two quote characters, the
// comment character, the two metacharacters, and whitespace.
func isEscapable(c byte) bool {
	switch c {
	case '\'', '"', '#', '`', '|', ' ', '\t':
		return true
	default:
		return false
	}
}

// scanQuoted scans the quoted region starting at the opening quote
// character line[start], returning its (unescaped) content and the index
// just past the closing quote. A backslash immediately preceding a quote
// character of either kind inside the region consumes the backslash and
// embeds the quote character literally. The rule applies inside quotes too,
// not just in unquoted text.
func scanQuoted(line string, start int, quote byte) (string, int, error) {
	n := len(line)
	var out []byte
	for i := start + 1; i < n; i++ {
		c := line[i]
		if c == '\\' && i+1 < n && (line[i+1] == '\'' || line[i+1] == '"') {
			out = append(out, line[i+1])
			i++
			continue
		}
		if c == quote {
			return string(out), i + 1, nil
		}
		out = append(out, c)
	}
	return "", 0, &control.SyntaxError{Message: "Unmatched " + string(quote)}
}

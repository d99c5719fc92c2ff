package lexer_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/shellrepl/internal/env"
	"github.com/aledsdavies/shellrepl/internal/lexer"
)

func rawStrings(t *testing.T, line string) []string {
	t.Helper()
	tokens, err := lexer.Lex(line)
	require.NoError(t, err)
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Raw()
	}
	return out
}

func TestLexSplitsOnWhitespace(t *testing.T) {
	got := rawStrings(t, "add 1 2")
	want := []string{"add", "1", "2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLexQuotesAreMergedWhenAdjacent(t *testing.T) {
	tokens, err := lexer.Lex(`a"b"c`)
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	e := env.New("e", nil, "")
	assert.Equal(t, "abc", tokens[0].Expand(e))
}

func TestLexSingleQuotesAreLiteral(t *testing.T) {
	tokens, err := lexer.Lex(`'$x'`)
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	e := env.New("e", nil, "")
	e.BindHere("x", "surprise")
	assert.Equal(t, "$x", tokens[0].Expand(e))
}

func TestLexDoubleQuotesExpand(t *testing.T) {
	tokens, err := lexer.Lex(`"$x"`)
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	e := env.New("e", nil, "")
	e.BindHere("x", "value")
	assert.Equal(t, "value", tokens[0].Expand(e))
}

func TestLexUnmatchedQuoteIsSyntaxError(t *testing.T) {
	_, err := lexer.Lex(`echo "unterminated`)
	require.Error(t, err)
}

func TestLexUnescapedQuoteInsideOtherQuoteKindIsLiteral(t *testing.T) {
	tokens, err := lexer.Lex(`"it's fine"`)
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	e := env.New("e", nil, "")
	assert.Equal(t, "it's fine", tokens[0].Expand(e))
}

func TestLexEscapedQuoteInUnquotedContextBecomesLiteralQuote(t *testing.T) {
	tokens, err := lexer.Lex(`a\"b`)
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	e := env.New("e", nil, "")
	assert.Equal(t, `a"b`, tokens[0].Expand(e))
}

func TestLexCommentDiscardsRestOfLine(t *testing.T) {
	got := rawStrings(t, "echo hi # trailing comment")
	want := []string{"echo", "hi"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLexHashInsideQuotesIsNotAComment(t *testing.T) {
	tokens, err := lexer.Lex(`echo "a # b"`)
	require.NoError(t, err)
	require.Len(t, tokens, 2)

	e := env.New("e", nil, "")
	assert.Equal(t, "a # b", tokens[1].Expand(e))
}

func TestLexBacktickAndPipeBreakOutAsOwnTokens(t *testing.T) {
	got := rawStrings(t, "echo `date`|cat")
	want := []string{"echo", "`", "date", "`", "|", "cat"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLexDollarAtEndOfWordStaysLiteral(t *testing.T) {
	tokens, err := lexer.Lex("price$")
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	e := env.New("e", nil, "")
	assert.Equal(t, "price$", tokens[0].Expand(e))
}

func TestLexBracedAndBareNameAreEquivalent(t *testing.T) {
	e := env.New("e", nil, "")
	e.BindHere("name", "world")

	bare, err := lexer.Lex("$name")
	require.NoError(t, err)
	braced, err := lexer.Lex("${name}")
	require.NoError(t, err)

	require.Len(t, bare, 1)
	require.Len(t, braced, 1)
	assert.Equal(t, bare[0].Expand(e), braced[0].Expand(e))
}

func TestLexDoubleDollarIsTwoLiteralDollars(t *testing.T) {
	tokens, err := lexer.Lex("$$")
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	e := env.New("e", nil, "")
	assert.Equal(t, "$$", tokens[0].Expand(e))
}

func TestLexEscapedWhitespaceStaysInOneWord(t *testing.T) {
	tokens, err := lexer.Lex(`a\ b`)
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	e := env.New("e", nil, "")
	assert.Equal(t, "a b", tokens[0].Expand(e))
}

func TestLexEmptyLineProducesNoTokens(t *testing.T) {
	tokens, err := lexer.Lex("   ")
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

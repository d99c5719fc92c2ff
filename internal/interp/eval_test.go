package interp_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/shellrepl/internal/interp"
	"github.com/aledsdavies/shellrepl/internal/lineinput"
)

// newREPL builds a REPL whose output is captured in a buffer and whose
// input is a no-op Scripted over an empty reader, since these tests drive
// evaluation directly through Source rather than Run's interactive loop.
func newREPL(t *testing.T, modules ...string) (*interp.REPL, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	r := interp.New(interp.Options{
		ApplicationName: "test",
		NoEnv:           true,
		NoDotfile:       true,
		Input:           lineinput.NewScripted(strings.NewReader("")),
		Output:          &out,
		ErrOutput:       &out,
		ModulesEnabled:  modules,
	})
	return r, &out
}

func TestS1_SetThenEchoExpands(t *testing.T) {
	r, out := newREPL(t)
	require.NoError(t, r.Source([]string{"set x 5", "echo $x"}))
	assert.Equal(t, "5\n", out.String())
	assert.Equal(t, "0", r.Get("?"))
}

func TestS2_UserFunctionWithMathModule(t *testing.T) {
	r, out := newREPL(t, "math")
	require.NoError(t, r.Source([]string{
		"function add a b",
		"  math-add $a $b",
		"endfunction",
		"add 2 3",
	}))
	assert.Equal(t, "5\n", out.String())
	assert.Equal(t, "0", r.Get("?"))
}

func TestS3_ConditionalWithElse(t *testing.T) {
	r, out := newREPL(t, "math")
	require.NoError(t, r.Source([]string{
		"if equal 1 1",
		"  echo yes",
		"else",
		"  echo no",
		"endif",
	}))
	assert.Equal(t, "yes\n", out.String())
}

func TestS4_SubshellSubstitution(t *testing.T) {
	r, out := newREPL(t)
	require.NoError(t, r.Source([]string{"echo `echo hi` there"}))
	assert.Equal(t, "hi there\n", out.String())
}

func TestS5_LoopCountdown(t *testing.T) {
	r, out := newREPL(t, "math")
	require.NoError(t, r.Source([]string{
		"function loop n",
		"  while greater-than $n 0",
		"    echo $n",
		"    set n `subtract $n 1`",
		"  done",
		"endfunction",
		"loop 3",
	}))
	assert.Equal(t, "3\n2\n1\n", out.String())
}

func TestS6_Pipeline(t *testing.T) {
	r, out := newREPL(t)
	require.NoError(t, r.Source([]string{"set x 1", "echo $x | cat"}))
	assert.Equal(t, "1\n", out.String())
}

func TestEmptyLineLeavesStatusUnchanged(t *testing.T) {
	r, out := newREPL(t)
	require.NoError(t, r.Source([]string{"false", "", "echo $?"}))
	assert.Equal(t, "1\n", out.String())
}

func TestCommentLineProducesNoOutput(t *testing.T) {
	r, out := newREPL(t)
	require.NoError(t, r.Source([]string{"# a comment", "echo done"}))
	assert.Equal(t, "done\n", out.String())
}

func TestQuitEndsSourceAfterCurrentLine(t *testing.T) {
	r, out := newREPL(t)
	require.NoError(t, r.Source([]string{"echo before", "quit", "echo after"}))
	assert.Equal(t, "before\n", out.String())
}

func TestQuitInsideFunctionEndsAfterFunctionReturns(t *testing.T) {
	r, out := newREPL(t)
	require.NoError(t, r.Source([]string{
		"function stopit",
		"  echo inside",
		"  quit",
		"  echo unreachable-in-same-function-call",
		"endfunction",
		"stopit",
		"echo after-top-level",
	}))
	assert.Equal(t, "inside\n", out.String())
}

func TestSourceOnMissingFileReturnsOneNotCrash(t *testing.T) {
	r, out := newREPL(t)
	require.NoError(t, r.Source([]string{"source /no/such/file-ever"}))
	assert.Contains(t, out.String(), "cannot open")
	assert.Equal(t, "1", r.Get("?"))
}

func TestBreakExitsInnermostLoopOnly(t *testing.T) {
	r, out := newREPL(t, "math")
	require.NoError(t, r.Source([]string{
		"function countToBreak n",
		"  while greater-than $n 0",
		"    if equal $n 2",
		"      break",
		"    endif",
		"    echo $n",
		"    set n `subtract $n 1`",
		"  done",
		"  echo looped-out",
		"endfunction",
		"countToBreak 5",
	}))
	assert.Equal(t, "5\n4\n3\nlooped-out\n", out.String())
}

func TestReturnPropagatesThroughEnclosingConditional(t *testing.T) {
	r, out := newREPL(t, "math")
	require.NoError(t, r.Source([]string{
		"function pick a",
		"  if equal $a 1",
		"    return 7",
		"  endif",
		"  return 9",
		"endfunction",
		"pick 1",
		"echo $?",
	}))
	assert.Equal(t, "7\n", out.String())
}

func TestShiftDropsFirstPositional(t *testing.T) {
	r, out := newREPL(t)
	require.NoError(t, r.Source([]string{
		"function showAll a b c",
		"  echo $1",
		"  shift",
		"  echo $1",
		"  echo $#",
		"endfunction",
		"showAll x y z",
	}))
	assert.Equal(t, "x\ny\n2\n", out.String())
}

func TestNotInversion(t *testing.T) {
	r, out := newREPL(t)
	require.NoError(t, r.Source([]string{"not false", "echo $?"}))
	assert.Equal(t, "0\n", out.String())
	out.Reset()
	require.NoError(t, r.Source([]string{"not true", "echo $?"}))
	assert.Equal(t, "1\n", out.String())
}

func TestUnmatchedQuoteIsSyntaxErrorNotCrash(t *testing.T) {
	r, out := newREPL(t)
	require.NoError(t, r.Source([]string{`echo "oops`}))
	assert.Equal(t, "2", r.Get("?"))
	_ = out
}

func TestSetLocalAtTopLevelIsVisibleInFunctionBody(t *testing.T) {
	r, out := newREPL(t)
	require.NoError(t, r.Source([]string{
		"set-local n outer",
		"function readN",
		"  echo $n",
		"endfunction",
		"readN",
	}))
	assert.Equal(t, "outer\n", out.String())
}

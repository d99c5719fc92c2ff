package env_test

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/shellrepl/internal/env"
)

func TestBindTramplesUpward(t *testing.T) {
	parent := env.New("parent", nil, "")
	child := env.New("child", parent, "")

	parent.Bind("n", "v1")
	child.Bind("n", "v2")

	assert.Equal(t, "v2", parent.Get("n"))
	assert.Equal(t, "v2", child.Get("n"))
}

func TestBindCreatesInCurrentScopeWhenNoAncestorHasIt(t *testing.T) {
	parent := env.New("parent", nil, "")
	child := env.New("child", parent, "")

	child.Bind("fresh", "x")

	assert.Equal(t, "x", child.Get("fresh"))
	assert.Equal(t, "", parent.Get("fresh"))
}

func TestBindHereShadowsWithoutAffectingParent(t *testing.T) {
	parent := env.New("parent", nil, "")
	child := env.New("child", parent, "")

	parent.BindHere("n", "v1")
	child.BindHere("n", "v2")

	assert.Equal(t, "v2", child.Get("n"))
	assert.Equal(t, "v1", parent.Get("n"), "popping child must leave parent's own binding untouched")
}

func TestGetWalksUpstreamAndFallsBackToDefault(t *testing.T) {
	parent := env.New("parent", nil, "default")
	child := env.New("child", parent, "")

	assert.Equal(t, "default", child.Get("missing"))

	parent.BindHere("x", "1")
	assert.Equal(t, "1", child.Get("x"))
}

func TestUnbindIsNoOpForMissingName(t *testing.T) {
	e := env.New("e", nil, "")
	require.NotPanics(t, func() { e.Unbind("never-bound") })
}

func TestLoadFromJSONEmptyFileIsNotAnError(t *testing.T) {
	e := env.New("config", nil, "")
	err := env.LoadFromJSON(e, []byte(""))
	require.NoError(t, err)
}

func TestWriteToAndLoadFromRoundTrip(t *testing.T) {
	e := env.New("config", nil, "")
	e.BindHere("a", "1")
	e.BindHere("b", "2")

	var buf bytes.Buffer
	require.NoError(t, e.WriteTo(&buf))

	reloaded := env.New("config2", nil, "")
	require.NoError(t, env.LoadFromJSON(reloaded, buf.Bytes()))

	want := e.Bindings()
	got := reloaded.Bindings()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestListTreeIncludesAllAncestors(t *testing.T) {
	grandparent := env.New("grandparent", nil, "")
	parent := env.New("parent", grandparent, "")
	child := env.New("child", parent, "")

	grandparent.BindHere("g", "1")
	parent.BindHere("p", "2")
	child.BindHere("c", "3")

	tree := child.ListTree()
	assert.Contains(t, tree, "g -> 1")
	assert.Contains(t, tree, "p -> 2")
	assert.Contains(t, tree, "c -> 3")
}

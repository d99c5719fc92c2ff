package command_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aledsdavies/shellrepl/internal/command"
)

func noop(ctx *command.InvokeContext, args []string) (int, error) { return 0, nil }

func TestLookupOrderAliasesFunctionsBasisBuiltins(t *testing.T) {
	r := command.NewRegistry()

	r.RegisterBuiltin(command.Command{Name: "x", Invoke: noop})
	got := r.Lookup("x")
	require.Equal(t, "x", got.Name)

	r.RegisterBasis(command.Command{Name: "x", Usage: "basis", Invoke: noop})
	got = r.Lookup("x")
	assert.Equal(t, "basis", got.Usage, "basis must win over builtins")

	r.RegisterUserFunction(command.Command{Name: "x", Usage: "function", Invoke: noop})
	got = r.Lookup("x")
	assert.Equal(t, "function", got.Usage, "functions must win over basis")

	r.RegisterBasis(command.Command{Name: "y", Usage: "alias", Invoke: noop})
	r.Alias("x", "y") // x now also names an alias, distinct from the function x
	got = r.Lookup("x")
	assert.Equal(t, "alias", got.Usage, "aliases must win over functions")
}

func TestEscapePrefixReversesLookupOrder(t *testing.T) {
	r := command.NewRegistry()
	r.RegisterBuiltin(command.Command{Name: "x", Usage: "builtin", Invoke: noop})
	r.RegisterUserFunction(command.Command{Name: "x", Usage: "function", Invoke: noop})

	assert.Equal(t, "function", r.Lookup("x").Usage)
	assert.Equal(t, "builtin", r.Lookup(`\x`).Usage, "escape prefix must prefer builtins over functions")
}

func TestUnresolvedNameYieldsUnknown(t *testing.T) {
	r := command.NewRegistry()
	got := r.Lookup("nope")
	assert.Equal(t, "Unknown", got.Name)
}

func TestUnregisterMissingNameIsNoOp(t *testing.T) {
	r := command.NewRegistry()
	require.NotPanics(t, func() { r.UnregisterUserFunction("never-registered") })
}

func TestAliasSnapshotsAtAliasTimeNotByName(t *testing.T) {
	r := command.NewRegistry()
	r.RegisterBasis(command.Command{Name: "orig", Usage: "v1", Invoke: noop})
	r.Alias("a", "orig")

	r.RegisterBasis(command.Command{Name: "orig", Usage: "v2", Invoke: noop})

	assert.Equal(t, "v1", r.Lookup("a").Usage, "alias must not see later rebinding of its referent")
	assert.Equal(t, "v2", r.Lookup("orig").Usage)
}

func TestAliasOfUnknownIsRefusedSilently(t *testing.T) {
	r := command.NewRegistry()
	r.Alias("a", "does-not-exist")

	got := r.Lookup("a")
	assert.Equal(t, "Unknown", got.Name, "aliasing an unresolved name must be a silent no-op")
}

func TestSetUnknownFactory(t *testing.T) {
	r := command.NewRegistry()
	r.SetUnknownFactory(func(name string) command.Command {
		return command.Command{Name: "Custom", Invoke: noop}
	})

	assert.Equal(t, "Custom", r.Lookup("anything").Name)
}

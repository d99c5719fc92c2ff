// Package env implements chained, trampling-assignment variable scopes.
package env

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Environment is a named scope holding name->value bindings, a default
// value for missing lookups, and an optional upstream scope.
type Environment struct {
	name     string
	bindings map[string]string
	def      string
	upstream *Environment
}

// New creates an Environment with the given name, optional upstream scope,
// and default value returned by Get for names no ancestor defines.
func New(name string, upstream *Environment, def string) *Environment {
	return &Environment{
		name:     name,
		bindings: make(map[string]string),
		def:      def,
		upstream: upstream,
	}
}

// NewWithBindings is New plus an initial set of bindings, used to seed a
// function-call or subshell scope in one step.
func NewWithBindings(name string, upstream *Environment, bindings map[string]string) *Environment {
	e := New(name, upstream, "")
	for k, v := range bindings {
		e.bindings[k] = v
	}
	return e
}

// Name returns the scope's display name (used in list_tree output and
// diagnostics).
func (e *Environment) Name() string { return e.name }

// Upstream returns the parent scope, or nil at the top of the chain.
func (e *Environment) Upstream() *Environment { return e.upstream }

// Bind implements "trampling" assignment: if any ancestor already defines
// name, that binding is updated in place; otherwise a new binding is
// created in the current scope.
func (e *Environment) Bind(name, value string) {
	if e.updateUpstream(name, value) {
		return
	}
	e.bindings[name] = value
}

// updateUpstream walks up from e looking for an existing binding of name,
// updating the first one found (searching from the top of the chain
// downward, preserving the original's recursive search-then-fall-through
// behavior) and reporting whether it found one.
func (e *Environment) updateUpstream(name, value string) bool {
	if e.upstream != nil && e.upstream.updateUpstream(name, value) {
		return true
	}
	if _, ok := e.bindings[name]; ok {
		e.bindings[name] = value
		return true
	}
	return false
}

// BindHere always creates or updates the binding in the current scope,
// shadowing any ancestor binding of the same name.
func (e *Environment) BindHere(name, value string) {
	e.bindings[name] = value
}

// Get walks from the current scope upward, returning the default value if
// no ancestor defines name. Lookup terminates at the first definition
// found, with downstream scopes taking priority over upstream ones.
func (e *Environment) Get(name string) string {
	if v, ok := e.bindings[name]; ok {
		return v
	}
	if e.upstream != nil {
		return e.upstream.Get(name)
	}
	return e.def
}

// Unbind removes name from the current scope only. Unbinding a name that
// is not present is a no-op.
func (e *Environment) Unbind(name string) {
	delete(e.bindings, name)
}

// List returns this scope's own bindings, formatted "name -> value",
// sorted by name for stable output.
func (e *Environment) List() []string {
	names := make([]string, 0, len(e.bindings))
	for k := range e.bindings {
		names = append(names, k)
	}
	sort.Strings(names)

	out := make([]string, 0, len(names))
	for _, k := range names {
		out = append(out, fmt.Sprintf("%s -> %s", k, e.bindings[k]))
	}
	return out
}

// ListTree returns this scope's bindings followed by every ancestor's,
// each preceded by a "==========\nname\n==========" banner.
func (e *Environment) ListTree() []string {
	var accum []string
	for finger := e; finger != nil; finger = finger.upstream {
		accum = append(accum, fmt.Sprintf("==========\n%s\n==========", finger.name))
		accum = append(accum, strings.Join(finger.List(), "\n"))
	}
	return accum
}

// LoadFromJSON populates e's own bindings from a JSON object of
// string->string pairs. An empty file is not an error.
func LoadFromJSON(e *Environment, data []byte) error {
	data = []byte(strings.TrimSpace(string(data)))
	if len(data) == 0 {
		return nil
	}
	m, err := unmarshalStringMap(data)
	if err != nil {
		return err
	}
	for k, v := range m {
		e.bindings[k] = v
	}
	return nil
}

// WriteTo writes this scope's own bindings to w as a JSON object.
func (e *Environment) WriteTo(w io.Writer) error {
	data, err := marshalStringMap(e.bindings)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(data); err != nil {
		return err
	}
	return bw.Flush()
}

// Bindings returns a copy of this scope's own bindings, used by
// configstore implementations that want raw access rather than the
// formatted List().
func (e *Environment) Bindings() map[string]string {
	out := make(map[string]string, len(e.bindings))
	for k, v := range e.bindings {
		out[k] = v
	}
	return out
}

// ReplaceBindings overwrites this scope's own bindings wholesale, used
// when a config store reload (internal/watch) replaces the configuration
// scope's contents.
func (e *Environment) ReplaceBindings(m map[string]string) {
	e.bindings = make(map[string]string, len(m))
	for k, v := range m {
		e.bindings[k] = v
	}
}

package command

import "sync"

// EscapeChar reverses the lookup order when it prefixes a command name.
const EscapeChar = '\\'

// Registry holds four disjoint command namespaces: aliases, user
// functions, basis (host-registered), and builtins (interpreter-provided).
// Grounded on core/decorator.Registry (RWMutex-guarded map with
// Register/Lookup), generalized from one namespace to four.
type Registry struct {
	mu        sync.RWMutex
	aliases   map[string]Command
	functions map[string]Command
	basis     map[string]Command
	builtins  map[string]Command

	// makeUnknown produces the synthetic "Unknown" command for a name that
	// resolves nowhere. Replaceable via SetUnknownFactory.
	makeUnknown func(name string) Command
}

// NewRegistry returns an empty Registry with the default Unknown-command
// factory.
func NewRegistry() *Registry {
	return &Registry{
		aliases:     make(map[string]Command),
		functions:   make(map[string]Command),
		basis:       make(map[string]Command),
		builtins:    make(map[string]Command),
		makeUnknown: defaultUnknownFactory,
	}
}

func defaultUnknownFactory(name string) Command {
	return Command{
		Name:  "Unknown",
		Usage: "",
		Help:  "Unknown command: " + name,
		Invoke: func(ctx *InvokeContext, args []string) (int, error) {
			ctx.Println("Unknown command:", name)
			return 1, nil
		},
	}
}

// SetUnknownFactory replaces the factory used to synthesize a command for
// an unresolved name.
func (r *Registry) SetUnknownFactory(factory func(name string) Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.makeUnknown = factory
}

// RegisterBasis registers a host-provided command.
func (r *Registry) RegisterBasis(c Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.basis[c.Name] = c
}

// RegisterBuiltin registers an interpreter-provided command.
func (r *Registry) RegisterBuiltin(c Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builtins[c.Name] = c
}

// RegisterUserFunction registers a user function, silently overwriting any
// existing function of the same name.
func (r *Registry) RegisterUserFunction(c Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions[c.Name] = c
}

// UnregisterUserFunction removes name from the user-function namespace
// only; removing a missing name is a no-op.
func (r *Registry) UnregisterUserFunction(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.functions, name)
}

// Alias copies the command that newname's referent oldname resolves to at
// alias time, so that later rebinding of oldname does not affect the
// alias. Aliasing is refused silently when the referent resolves to
// Unknown.
func (r *Registry) Alias(newname, oldname string) {
	c := r.Lookup(oldname)
	if c.Name == "Unknown" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[newname] = c
}

// Unalias removes newname from the alias namespace; a no-op if absent.
func (r *Registry) Unalias(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.aliases, name)
}

// Lookup resolves name in the order aliases -> functions -> basis ->
// builtins, reversed if name is escape-prefixed (the prefix is consumed
// either way). An unresolved name yields the synthetic Unknown command.
func (r *Registry) Lookup(name string) Command {
	if name == "" {
		return r.unknown(name)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	reversed := false
	if name[0] == EscapeChar {
		name = name[1:]
		reversed = true
	}

	maps := []map[string]Command{r.aliases, r.functions, r.basis, r.builtins}
	if reversed {
		for i, j := 0, len(maps)-1; i < j; i, j = i+1, j-1 {
			maps[i], maps[j] = maps[j], maps[i]
		}
	}

	for _, m := range maps {
		if c, ok := m[name]; ok {
			return c
		}
	}
	return r.unknown(name)
}

func (r *Registry) unknown(name string) Command {
	return r.makeUnknown(name)
}

// Completions returns every registered name across all four namespaces
// plus any extra keyword names supplied by the caller, for a line source's
// tab-completion.
func (r *Registry) Completions(extra []string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name := range r.aliases {
		names = append(names, name)
	}
	for name := range r.functions {
		names = append(names, name)
	}
	for name := range r.basis {
		names = append(names, name)
	}
	for name := range r.builtins {
		names = append(names, name)
	}
	names = append(names, extra...)
	return names
}

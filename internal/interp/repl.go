package interp

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aledsdavies/shellrepl/internal/callstack"
	"github.com/aledsdavies/shellrepl/internal/command"
	"github.com/aledsdavies/shellrepl/internal/configstore"
	"github.com/aledsdavies/shellrepl/internal/env"
	"github.com/aledsdavies/shellrepl/internal/watch"
)

// keywordHandler runs a recognized keyword with its unexpanded remaining
// tokens (raw source text; keywords own their own argument-expansion
// policy) and returns the status to bind to "?".
type keywordHandler func(r *REPL, rest string) (int, error)

// REPL is the evaluator: registry, scope stack, call stack,
// block-under-construction stack, and the I/O endpoints a host wires up
// through Options. One REPL instance is one independent interpreter;
// hosts that want several run several instances.
type REPL struct {
	registry  *command.Registry
	scopes    []*env.Environment
	configEnv *env.Environment

	blockStack []Block
	funcFrames []*functionCall
	callStack  callstack.Stack

	keywords map[string]keywordHandler

	input     LineSource
	output    io.Writer
	errOutput io.Writer
	forceFlush bool

	// captureStack holds the tee sink of every invocation currently being
	// executed, innermost last. writeLine targets its top so a command's
	// visible body output (a function's echo, a loop's predicate result)
	// lands in the same capture its caller's pipeline/subshell will read,
	// instead of always going straight to the real output sink.
	captureStack []io.Writer

	applicationName string
	dotfilePrefix   string
	dotfileRoot     string
	historyLength   int
	echo            bool
	debug           bool
	reraise         bool

	loadedModules map[string]bool
	knownModules  map[string]func() []command.Command

	configStore configstore.Store
	watcher     *watch.DotfileWatcher

	promptFn    func() string
	done        bool
	sourceDepth int
}

// New builds a REPL from Options: a three-scope chain (an "upstream" scope
// seeded from the host's process environment unless NoEnv, a "config"
// scope loaded from the ConfigStore unless NoDotfile is set or no store is
// given, and a "global"
// working scope on top), the four command namespaces, the keyword table,
// and the built-in commands registered unless NoInit.
func New(opts Options) *REPL {
	var upstream *env.Environment
	if !opts.NoEnv {
		upstream = env.NewWithBindings("upstream", nil, opts.UpstreamEnvironment)
	} else {
		upstream = env.New("upstream", nil, "")
	}

	configEnv := env.New("config", upstream, "")
	global := env.New("global", configEnv, "")
	global.BindHere("?", "0")
	global.BindHere("0", opts.ApplicationName)

	r := &REPL{
		registry:        command.NewRegistry(),
		scopes:          []*env.Environment{global},
		configEnv:       configEnv,
		input:           opts.Input,
		output:          opts.Output,
		errOutput:       opts.ErrOutput,
		forceFlush:      opts.ForceOutputFlush,
		applicationName: opts.ApplicationName,
		dotfilePrefix:   firstNonEmpty(opts.DotfilePrefix, "p"),
		dotfileRoot:     opts.DotfileRoot,
		historyLength:   opts.HistoryLength,
		echo:            opts.Echo,
		debug:           opts.Debug,
		loadedModules:   make(map[string]bool),
		knownModules:    make(map[string]func() []command.Command),
		configStore:     opts.ConfigStore,
	}
	r.registerModuleFactories()
	r.keywords = r.buildKeywordTable(opts.NoKeyword)

	if !opts.NoInit {
		r.registerBuiltins()
	}
	for _, m := range opts.ModulesEnabled {
		r.EnableModule(m)
	}

	if !opts.NoDotfile && r.configStore != nil {
		if bindings, err := r.configStore.Load(); err == nil {
			configEnv.ReplaceBindings(bindings)
		}
	}

	if opts.WatchDotfiles && !opts.NoDotfile && opts.DotfileRoot != "" {
		rcName := "." + r.dotfilePrefix + "rc"
		varsName := "." + r.dotfilePrefix + "_vars"
		_ = r.WatchDotfiles(opts.DotfileRoot, rcName, varsName)
	}

	return r
}

// ReloadConfig re-reads the config store into the configuration scope,
// used by both the "config --reload" builtin and internal/watch's callback.
func (r *REPL) ReloadConfig() error {
	if r.configStore == nil {
		return nil
	}
	bindings, err := r.configStore.Load()
	if err != nil {
		return err
	}
	r.configEnv.ReplaceBindings(bindings)
	return nil
}

// SaveConfig writes the configuration scope's own bindings to the config
// store, used by the "config --save" builtin.
func (r *REPL) SaveConfig() error {
	if r.configStore == nil {
		return nil
	}
	return r.configStore.Save(r.configEnv.Bindings())
}

// WatchDotfiles starts watching root for writes to rcName (re-sourced via
// Source) and varsName (reloaded via ReloadConfig), each reported with a
// one-line notice to the error sink. Idempotent: a second call replaces the
// previous watcher.
func (r *REPL) WatchDotfiles(root, rcName, varsName string) error {
	r.StopWatch()

	w, err := watch.New(root, rcName, varsName,
		func() {
			data, err := readFile(root + "/" + rcName)
			if err != nil {
				r.errorf("watch: %s", err)
				return
			}
			if err := r.Source(splitLines(data)); err != nil {
				r.errorf("watch: %s", err)
				return
			}
			r.errorf("reloaded %s", rcName)
		},
		func() {
			if err := r.ReloadConfig(); err != nil {
				r.errorf("watch: %s", err)
				return
			}
			r.errorf("reloaded %s", varsName)
		},
	)
	if err != nil {
		return err
	}
	r.watcher = w
	return nil
}

// StopWatch stops any active dotfile watcher; a no-op if none is running.
func (r *REPL) StopWatch() {
	if r.watcher != nil {
		r.watcher.Close()
		r.watcher = nil
	}
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// currentEnv returns the innermost (topmost) scope.
func (r *REPL) currentEnv() *env.Environment {
	return r.scopes[len(r.scopes)-1]
}

// pushScope adds a new child scope seeded with bindings atop the current
// scope, named name for list-tree display.
func (r *REPL) pushScope(bindings map[string]string, name string) *env.Environment {
	e := env.NewWithBindings(name, r.currentEnv(), bindings)
	r.scopes = append(r.scopes, e)
	return e
}

// popScope removes the innermost scope.
func (r *REPL) popScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *REPL) pushBlock(b Block) {
	r.blockStack = append(r.blockStack, b)
}

func (r *REPL) topFunctionFrame() *functionCall {
	if n := len(r.funcFrames); n > 0 {
		return r.funcFrames[n-1]
	}
	return nil
}

// Set implements trampling assignment against the current scope.
func (r *REPL) Set(name, value string) {
	r.currentEnv().Bind(name, value)
}

// SetLocal binds name in the current scope only, shadowing any ancestor.
func (r *REPL) SetLocal(name, value string) {
	r.currentEnv().BindHere(name, value)
}

// Get reads name from the current scope chain.
func (r *REPL) Get(name string) string {
	return r.currentEnv().Get(name)
}

// Unset removes name from the current scope only.
func (r *REPL) Unset(name string) {
	r.currentEnv().Unbind(name)
}

// Status returns the current "?" result as an int, defaulting to 0 if it
// holds a non-numeric value (should not happen in normal operation).
func (r *REPL) Status() int {
	s := r.Get("?")
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0
	}
	return n
}

func (r *REPL) setStatus(n int) {
	r.Set("?", fmt.Sprintf("%d", n))
}

// RegisterBasis registers a host-provided command.
func (r *REPL) RegisterBasis(c command.Command) { r.registry.RegisterBasis(c) }

// RegisterUserFunction registers or overwrites a user function.
func (r *REPL) RegisterUserFunction(c command.Command) { r.registry.RegisterUserFunction(c) }

// UnregisterUserFunction removes name from the user-function namespace.
func (r *REPL) UnregisterUserFunction(name string) { r.registry.UnregisterUserFunction(name) }

// SetUnknownFactory replaces the synthetic command produced for an
// unresolved name.
func (r *REPL) SetUnknownFactory(factory func(name string) command.Command) {
	r.registry.SetUnknownFactory(factory)
}

// SetPrompt installs a dynamic prompt function, overriding the default.
func (r *REPL) SetPrompt(fn func() string) { r.promptFn = fn }

func (r *REPL) defaultPrompt() string {
	name := r.applicationName
	if name == "" {
		name = "shellrepl"
	}
	depth := r.callStack.Len()
	if depth > 0 {
		return fmt.Sprintf("%s(%d)> ", name, depth)
	}
	return name + "> "
}

func (r *REPL) prompt() string {
	if r.promptFn != nil {
		return r.promptFn()
	}
	return r.defaultPrompt()
}

// pushCapture installs w as the target for writeLine until popped, used by
// execute to route a block-structured command's body output into its own
// tee rather than straight to the terminal.
func (r *REPL) pushCapture(w io.Writer) {
	r.captureStack = append(r.captureStack, w)
}

func (r *REPL) popCapture() {
	r.captureStack = r.captureStack[:len(r.captureStack)-1]
}

// currentOutput is the innermost active capture, or the real output sink
// if no invocation is currently being captured.
func (r *REPL) currentOutput() io.Writer {
	if n := len(r.captureStack); n > 0 {
		return r.captureStack[n-1]
	}
	return r.output
}

// writeLine writes s to the current capture (or the output sink, at top
// level) with exactly one trailing newline, trimming any the command
// itself produced. Used by block body runners and source(), matching the
// original's print(res.strip("\n")).
func (r *REPL) writeLine(s string) {
	fmt.Fprintln(r.currentOutput(), strings.TrimRight(s, "\n"))
	r.maybeFlush()
}

// writeRaw writes s verbatim with no newline normalization, used by the
// interactive Run loop which mirrors the original's print(res, end="").
func (r *REPL) writeRaw(s string) {
	fmt.Fprint(r.output, s)
	r.maybeFlush()
}

func (r *REPL) maybeFlush() {
	if !r.forceFlush {
		return
	}
	if f, ok := r.output.(interface{ Flush() error }); ok {
		_ = f.Flush()
	}
}

func (r *REPL) errorf(format string, args ...any) {
	fmt.Fprintf(r.errOutput, format+"\n", args...)
}

// EnableModule registers a known module's commands as basis commands
// (idempotent).
func (r *REPL) EnableModule(name string) bool {
	if r.loadedModules[name] {
		return true
	}
	factory, ok := r.knownModules[name]
	if !ok {
		return false
	}
	for _, c := range factory() {
		r.RegisterBasis(c)
	}
	r.loadedModules[name] = true
	return true
}

// LoadedModules reports the names of currently-enabled modules.
func (r *REPL) LoadedModules() []string {
	names := make([]string, 0, len(r.loadedModules))
	for name, on := range r.loadedModules {
		if on {
			names = append(names, name)
		}
	}
	return names
}

// KnownModules reports every module name available for EnableModule.
func (r *REPL) KnownModules() []string {
	names := make([]string, 0, len(r.knownModules))
	for name := range r.knownModules {
		names = append(names, name)
	}
	return names
}

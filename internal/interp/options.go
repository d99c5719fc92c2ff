package interp

import (
	"io"

	"github.com/aledsdavies/shellrepl/internal/configstore"
)

// LineSource supplies one logical input line at a time, with its own
// prompt rendering and history; internal/lineinput's Terminal and Scripted
// types satisfy this structurally. ReadLine returns io.EOF at end of
// input.
type LineSource interface {
	ReadLine(prompt string) (string, error)
	AddHistory(line string)
	Close() error
}

// Options configures a new REPL, mirroring the original's REPL.__init__
// parameter list: the process identity used for the dotfile name, the
// inherited process environment, dotfile location, history depth, echo
// and module defaults, and the three I/O endpoints.
type Options struct {
	ApplicationName     string
	UpstreamEnvironment map[string]string
	DotfilePrefix       string
	DotfileRoot         string
	HistoryLength       int
	Echo                bool
	ModulesEnabled      []string
	Debug               bool
	NoInit              bool
	NoDotfile           bool
	NoEnv               bool
	NoKeyword           bool
	Input               LineSource
	Output              io.Writer
	ErrOutput           io.Writer
	ForceOutputFlush    bool

	// ConfigStore persists the configuration scope across runs. Nil means
	// the scope is in-memory only for this process.
	ConfigStore configstore.Store
	// WatchDotfiles enables internal/watch on DotfileRoot: edits to the
	// startup file re-source it, edits to the config store reload it.
	WatchDotfiles bool
}

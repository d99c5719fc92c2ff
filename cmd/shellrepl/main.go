// Command shellrepl is a thin CLI wrapping internal/interp into a runnable
// interactive shell, grounded on aledsdavies-opal's cmd/devcmd/main.go
// (a single cobra.Command with persistent flags and an Execute/os.Exit
// wrapper).
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aledsdavies/shellrepl/internal/configstore"
	"github.com/aledsdavies/shellrepl/internal/interp"
	"github.com/aledsdavies/shellrepl/internal/lineinput"
	"golang.org/x/term"
)

var opts struct {
	AppName     string
	Root        string
	Prefix      string
	History     int
	Echo        bool
	Modules     []string
	Debug       bool
	NoInit      bool
	NoDotfile   bool
	NoEnv       bool
	Watch       bool
	NoColor     bool
	OptionsFile string
}

// fileOptions mirrors the subset of opts an --options-file can supply
// defaults for; fields left zero/nil in the file are not applied.
type fileOptions struct {
	AppName   *string  `yaml:"app-name"`
	Root      *string  `yaml:"root"`
	Prefix    *string  `yaml:"prefix"`
	History   *int     `yaml:"history"`
	Echo      *bool    `yaml:"echo"`
	Modules   []string `yaml:"modules"`
	Debug     *bool    `yaml:"debug"`
	NoInit    *bool    `yaml:"no-init"`
	NoDotfile *bool    `yaml:"no-dotfile"`
	NoEnv     *bool    `yaml:"no-env"`
	Watch     *bool    `yaml:"watch"`
	NoColor   *bool    `yaml:"no-color"`
}

var rootCmd = &cobra.Command{
	Use:   "shellrepl",
	Short: "An embeddable, shell-flavored interactive command interpreter",
	Args:  cobra.NoArgs,
	RunE:  run,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.AppName, "app-name", "shellrepl", "process identity used for the prompt and dotfile name")
	flags.StringVar(&opts.Root, "root", ".", "directory holding the persisted dotfiles")
	flags.StringVar(&opts.Prefix, "prefix", "p", "dotfile name prefix (.prc, .p_history, .p_vars)")
	flags.IntVar(&opts.History, "history", 500, "maximum remembered history lines")
	flags.BoolVar(&opts.Echo, "echo", false, "echo each evaluated line to the error sink before running it")
	flags.StringSliceVar(&opts.Modules, "modules", nil, "built-in modules to enable at startup (math,text,shell,json,debug)")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debug diagnostics")
	flags.BoolVar(&opts.NoInit, "no-init", false, "skip registering builtins")
	flags.BoolVar(&opts.NoDotfile, "no-dotfile", false, "skip loading/saving dotfiles")
	flags.BoolVar(&opts.NoEnv, "no-env", false, "do not seed the upstream scope from the process environment")
	flags.BoolVar(&opts.Watch, "watch", false, "watch the dotfile root and hot-reload on change")
	flags.BoolVar(&opts.NoColor, "no-color", false, "disable colorized prompt and diagnostics")
	flags.StringVar(&opts.OptionsFile, "options-file", "", "YAML file of flag defaults, applied before flag overrides")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if opts.OptionsFile != "" {
		if err := applyOptionsFile(cmd, opts.OptionsFile); err != nil {
			return fmt.Errorf("options-file: %w", err)
		}
	}

	color.NoColor = opts.NoColor || !term.IsTerminal(int(os.Stdout.Fd()))

	rcName := "." + opts.Prefix + "rc"
	historyName := "." + opts.Prefix + "_history"
	varsName := "." + opts.Prefix + "_vars"

	input, err := buildInput(historyName)
	if err != nil {
		return err
	}

	r := interp.New(interp.Options{
		ApplicationName:     opts.AppName,
		UpstreamEnvironment: envMap(),
		DotfilePrefix:       opts.Prefix,
		DotfileRoot:         opts.Root,
		HistoryLength:       opts.History,
		Echo:                opts.Echo,
		ModulesEnabled:      opts.Modules,
		Debug:               opts.Debug,
		NoInit:              opts.NoInit,
		NoDotfile:           opts.NoDotfile,
		NoEnv:               opts.NoEnv,
		Input:               input,
		Output:              os.Stdout,
		ErrOutput:           colorWriter{color.New(color.FgRed), os.Stderr},
		ForceOutputFlush:    true,
		ConfigStore:         configstore.NewJSONFile(opts.Root + "/" + varsName),
		WatchDotfiles:       opts.Watch,
	})
	defer r.StopWatch()

	r.SetPrompt(func() string {
		text := opts.AppName + "> "
		if color.NoColor {
			return text
		}
		return color.New(color.FgCyan).Sprint(text)
	})

	if !opts.NoDotfile && !opts.NoInit {
		if data, err := os.ReadFile(opts.Root + "/" + rcName); err == nil {
			if err := r.Source(splitLines(string(data))); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}
	}

	r.Run()
	return nil
}

func buildInput(historyName string) (interp.LineSource, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return lineinput.NewScripted(os.Stdin), nil
	}
	return lineinput.NewTerminal(os.Stdin, os.Stdout, opts.Root+"/"+historyName, opts.History)
}

func envMap() map[string]string {
	m := make(map[string]string)
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				m[kv[:i]] = kv[i+1:]
				break
			}
		}
	}
	return m
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func applyOptionsFile(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fo fileOptions
	if err := yaml.Unmarshal(data, &fo); err != nil {
		return err
	}

	flags := cmd.PersistentFlags()
	applyString := func(name string, v *string, dst *string) {
		if v != nil && !flags.Changed(name) {
			*dst = *v
		}
	}
	applyBool := func(name string, v *bool, dst *bool) {
		if v != nil && !flags.Changed(name) {
			*dst = *v
		}
	}

	applyString("app-name", fo.AppName, &opts.AppName)
	applyString("root", fo.Root, &opts.Root)
	applyString("prefix", fo.Prefix, &opts.Prefix)
	if fo.History != nil && !flags.Changed("history") {
		opts.History = *fo.History
	}
	applyBool("echo", fo.Echo, &opts.Echo)
	if len(fo.Modules) > 0 && !flags.Changed("modules") {
		opts.Modules = fo.Modules
	}
	applyBool("debug", fo.Debug, &opts.Debug)
	applyBool("no-init", fo.NoInit, &opts.NoInit)
	applyBool("no-dotfile", fo.NoDotfile, &opts.NoDotfile)
	applyBool("no-env", fo.NoEnv, &opts.NoEnv)
	applyBool("watch", fo.Watch, &opts.Watch)
	applyBool("no-color", fo.NoColor, &opts.NoColor)
	return nil
}

type colorWriter struct {
	c *color.Color
	w *os.File
}

func (cw colorWriter) Write(p []byte) (int, error) {
	if color.NoColor {
		return cw.w.Write(p)
	}
	return cw.c.Fprint(cw.w, string(p))
}

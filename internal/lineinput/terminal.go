package lineinput

import (
	"bufio"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Terminal is an interactive LineSource backed by golang.org/x/term's raw
// mode: backspace, left/right cursor movement, and ctrl-c/ctrl-d are
// handled by term.Terminal itself. History is a separate, persisted list
// fed by AddHistory; x/term does not expose its internal key handling for
// up/down recall, so this is a write-through log rather than an
// in-line-editor recall feature.
type Terminal struct {
	fd       int
	oldState *term.State
	term     *term.Terminal

	history      []string
	historyLimit int
	historyPath  string
}

// NewTerminal puts fd (in's file descriptor) into raw mode and wraps
// in/out in a term.Terminal. If historyPath is non-empty, prior history
// is loaded from it immediately (a missing file is not an error).
func NewTerminal(in, out *os.File, historyPath string, historyLimit int) (*Terminal, error) {
	fd := int(in.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}

	t := &Terminal{
		fd:           fd,
		oldState:     oldState,
		term:         term.NewTerminal(readWriter{in, out}, ""),
		historyLimit: historyLimit,
		historyPath:  historyPath,
	}
	t.loadHistory()
	return t, nil
}

type readWriter struct {
	io.Reader
	io.Writer
}

func (t *Terminal) ReadLine(prompt string) (string, error) {
	t.term.SetPrompt(prompt)
	return t.term.ReadLine()
}

// AddHistory appends a non-blank line to the in-memory history, trimming
// to historyLimit from the front once exceeded.
func (t *Terminal) AddHistory(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	t.history = append(t.history, line)
	if t.historyLimit > 0 && len(t.history) > t.historyLimit {
		t.history = t.history[len(t.history)-t.historyLimit:]
	}
}

// Close restores the terminal's original mode and persists history.
func (t *Terminal) Close() error {
	t.saveHistory()
	return term.Restore(t.fd, t.oldState)
}

func (t *Terminal) loadHistory() {
	if t.historyPath == "" {
		return
	}
	f, err := os.Open(t.historyPath)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		t.history = append(t.history, scanner.Text())
	}
	if t.historyLimit > 0 && len(t.history) > t.historyLimit {
		t.history = t.history[len(t.history)-t.historyLimit:]
	}
}

func (t *Terminal) saveHistory() {
	if t.historyPath == "" {
		return
	}
	f, err := os.Create(t.historyPath)
	if err != nil {
		return
	}
	defer f.Close()
	for _, line := range t.history {
		io.WriteString(f, line+"\n")
	}
}

// History returns a snapshot of the in-memory line history.
func (t *Terminal) History() []string {
	return append([]string(nil), t.history...)
}

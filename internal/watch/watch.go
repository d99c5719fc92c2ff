// Package watch implements an optional dotfile watcher: when the
// interactive shell's startup script or config-scope file changes on
// disk, the running REPL reloads it rather than requiring a restart.
// This is additive to the original interpreter, which had no such
// watcher; the fsnotify usage and debounce pattern are grounded on
// original_source/../toba-jig's internal/todo/core/watcher.go (single
// fsnotify.Watcher, goroutine loop, best-effort directory Add).
package watch

import (
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 150 * time.Millisecond

// DotfileWatcher watches a directory for writes to two named files: a
// startup script (re-sourced on change) and a config-scope file
// (reloaded into the config environment on change).
type DotfileWatcher struct {
	watcher  *fsnotify.Watcher
	rcName   string
	varsName string
	onRC     func()
	onVars   func()
	stop     chan struct{}
}

// New creates a watcher on root, invoking onRC when rcName is written and
// onVars when varsName is written. Both callbacks are debounced so a
// burst of writes (an editor's atomic-rename save, for instance) fires
// the callback once.
func New(root, rcName, varsName string, onRC, onVars func()) (*DotfileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(root); err != nil {
		w.Close()
		return nil, err
	}

	dw := &DotfileWatcher{
		watcher:  w,
		rcName:   rcName,
		varsName: varsName,
		onRC:     onRC,
		onVars:   onVars,
		stop:     make(chan struct{}),
	}
	go dw.loop()
	return dw, nil
}

func (dw *DotfileWatcher) loop() {
	defer dw.watcher.Close()

	var timer *time.Timer
	var pendingRC, pendingVars bool

	fire := func() {
		if pendingRC && dw.onRC != nil {
			dw.onRC()
		}
		if pendingVars && dw.onVars != nil {
			dw.onVars()
		}
		pendingRC, pendingVars = false, false
	}

	for {
		select {
		case <-dw.stop:
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			switch baseName(ev.Name) {
			case dw.rcName:
				pendingRC = true
			case dw.varsName:
				pendingVars = true
			default:
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceDelay, fire)

		case _, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops the watcher goroutine and releases the underlying
// fsnotify.Watcher.
func (dw *DotfileWatcher) Close() {
	close(dw.stop)
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

package persistence

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bryanchriswhite/vcsengine/internal/logger"
)

// Watcher watches a single file's directory for changes and calls
// onChange, debounced, whenever the watched path itself is written or
// recreated. Grounded on the retrieval pack's generic config watcher,
// adapted here to a single path and the teacher's zerolog logging
// idiom instead of slog.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher creates a watcher for path. Call Start to begin watching.
func NewWatcher(path string, onChange func()) *Watcher {
	return &Watcher{path: path, debounce: 500 * time.Millisecond, onChange: onChange}
}

// Start begins watching the containing directory (fsnotify watches
// directories more reliably than individual files across editors that
// replace-on-save).
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := dirOf(w.path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return err
	}

	w.mu.Lock()
	w.watcher = fsw
	w.done = make(chan struct{})
	w.mu.Unlock()

	go w.run()
	return nil
}

// Stop halts the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done != nil {
		close(w.done)
		w.done = nil
	}
	if w.watcher != nil {
		err := w.watcher.Close()
		w.watcher = nil
		return err
	}
	return nil
}

func (w *Watcher) run() {
	log := logger.WithComponent("persistence-watcher")
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Name != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			timerC = timer.C
		case <-timerC:
			timerC = nil
			log.Debug().Str("path", w.path).Msg("reload triggered")
			w.onChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("watcher error")
		}
	}
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}

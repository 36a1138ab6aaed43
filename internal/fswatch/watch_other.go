//go:build !linux && !darwin

package fswatch

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Watcher polls mtimes on an interval where no native notification
// mechanism is wired up, driving the same onChange callback shape as
// the inotify/kqueue backends.
type Watcher struct {
	mu       sync.Mutex
	paths    map[string]time.Time
	onChange func(string)
	stop     chan struct{}
}

// New constructs a polling watcher.
func New(onChange func(string)) (*Watcher, error) {
	return &Watcher{
		paths:    make(map[string]time.Time),
		onChange: onChange,
		stop:     make(chan struct{}),
	}, nil
}

// Add starts watching path's modification time.
func (w *Watcher) Add(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.paths[absPath] = info.ModTime()
	w.mu.Unlock()
	return nil
}

// Run polls every 500ms until Close is called.
func (w *Watcher) Run() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *Watcher) poll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, lastMod := range w.paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.ModTime().After(lastMod) {
			w.paths[path] = info.ModTime()
			w.onChange(path)
		}
	}
}

// Close stops the polling loop.
func (w *Watcher) Close() error {
	close(w.stop)
	return nil
}

//go:build darwin

package fswatch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// Watcher watches one or more files for modifications via kqueue,
// debouncing rapid-fire writes into a single callback.
type Watcher struct {
	kq          int
	fds         map[int]*os.File
	paths       map[int]string
	mu          sync.Mutex
	debounceMap map[string]*time.Timer
	onChange    func(string)
}

// New opens a kqueue instance.
func New(onChange func(string)) (*Watcher, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, fmt.Errorf("fswatch: kqueue failed: %w", err)
	}
	return &Watcher{
		kq:          kq,
		fds:         make(map[int]*os.File),
		paths:       make(map[int]string),
		debounceMap: make(map[string]*time.Timer),
		onChange:    onChange,
	}, nil
}

// Add starts watching path for write/extend/rename events.
func (w *Watcher) Add(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	f, err := os.Open(absPath)
	if err != nil {
		return fmt.Errorf("fswatch: failed to open %s: %w", absPath, err)
	}
	fd := int(f.Fd())

	ev := unix.Kevent_t{
		Ident:  uint64(fd),
		Filter: unix.EVFILT_VNODE,
		Flags:  unix.EV_ADD | unix.EV_CLEAR,
		Fflags: unix.NOTE_WRITE | unix.NOTE_EXTEND | unix.NOTE_RENAME,
	}
	if _, err := unix.Kevent(w.kq, []unix.Kevent_t{ev}, nil, nil); err != nil {
		f.Close()
		return fmt.Errorf("fswatch: failed to watch %s: %w", absPath, err)
	}

	w.mu.Lock()
	w.fds[fd] = f
	w.paths[fd] = absPath
	w.mu.Unlock()
	return nil
}

// Run blocks, dispatching onChange as events arrive.
func (w *Watcher) Run() {
	events := make([]unix.Kevent_t, 10)
	for {
		n, err := unix.Kevent(w.kq, nil, events, nil)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			time.Sleep(100 * time.Millisecond)
			continue
		}
		for i := 0; i < n; i++ {
			fd := int(events[i].Ident)
			w.mu.Lock()
			path := w.paths[fd]
			w.mu.Unlock()
			if path != "" {
				w.debouncedCallback(path)
			}
		}
	}
}

func (w *Watcher) debouncedCallback(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, exists := w.debounceMap[path]; exists {
		timer.Stop()
	}
	w.debounceMap[path] = time.AfterFunc(500*time.Millisecond, func() {
		w.onChange(path)
		w.mu.Lock()
		delete(w.debounceMap, path)
		w.mu.Unlock()
	})
}

// Close releases the kqueue descriptor and every open file handle.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, f := range w.fds {
		f.Close()
	}
	return unix.Close(w.kq)
}

//go:build linux

package fswatch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Watcher watches one or more files for modifications via inotify,
// debouncing rapid-fire writes (a toolchain often truncates-then-
// writes a rebuilt binary in several syscalls) into a single callback.
type Watcher struct {
	fd          int
	watchMap    map[int]string
	mu          sync.Mutex
	debounceMap map[string]*time.Timer
	onChange    func(string)
}

// New opens an inotify instance; onChange fires at most once per
// debounce window per watched path.
func New(onChange func(string)) (*Watcher, error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("fswatch: inotify_init failed: %w", err)
	}
	return &Watcher{
		fd:          fd,
		watchMap:    make(map[int]string),
		debounceMap: make(map[string]*time.Timer),
		onChange:    onChange,
	}, nil
}

// Add starts watching path for modify/close-write events.
func (w *Watcher) Add(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	wd, err := unix.InotifyAddWatch(w.fd, absPath, unix.IN_MODIFY|unix.IN_CLOSE_WRITE)
	if err != nil {
		return fmt.Errorf("fswatch: failed to watch %s: %w", absPath, err)
	}
	w.mu.Lock()
	w.watchMap[wd] = absPath
	w.mu.Unlock()
	return nil
}

// Run blocks, dispatching onChange as events arrive. It never
// returns: a failed read is retried.
func (w *Watcher) Run() {
	buf := make([]byte, unix.SizeofInotifyEvent*10)
	for {
		n, err := unix.Read(w.fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				time.Sleep(100 * time.Millisecond)
				continue
			}
			continue
		}

		offset := 0
		for offset < n {
			event := (*unix.InotifyEvent)(unsafe.Pointer(&buf[offset]))
			offset += unix.SizeofInotifyEvent + int(event.Len)

			if event.Mask&(unix.IN_MODIFY|unix.IN_CLOSE_WRITE) != 0 {
				w.mu.Lock()
				path := w.watchMap[int(event.Wd)]
				w.mu.Unlock()
				if path != "" {
					w.debouncedCallback(path)
				}
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

// Close releases the inotify file descriptor.
func (w *Watcher) Close() error {
	return unix.Close(w.fd)
}

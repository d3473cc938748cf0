// Package watch observes the downloads directory and reports files that have
// finished writing, as a fallback for completion events the browser never
// delivered.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay is how long a file must stay quiet before it counts as done.
// Browsers stream into an in-progress file and rename it on completion, but
// some servers deliver the final name directly.
const settleDelay = 500 * time.Millisecond

var inProgressSuffixes = []string{".crdownload", ".part", ".partial", ".download", ".tmp"}

// Handler receives the absolute path of a settled file
type Handler func(path string)

// Watcher debounces filesystem events per path so a file being written in
// bursts reports once, after its last write
type Watcher struct {
	fs      *fsnotify.Watcher
	logger  *slog.Logger
	handler Handler

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// New watches a single directory. Subdirectories are not followed; browsers
// write downloads flat into the spool before any relocation happens.
func New(dir string, handler Handler) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating filesystem watcher: %w", err)
	}
	if err := fs.Add(dir); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	return &Watcher{
		fs:      fs,
		logger:  slog.Default(),
		handler: handler,
		timers:  make(map[string]*time.Timer),
	}, nil
}

// Run processes events until ctx is cancelled or the watcher is closed
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Downloads watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}

	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") || isInProgress(name) {
		return
	}

	// Rename events also fire for the vanished old path
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return
	}

	w.schedule(event.Name)
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if timer, ok := w.timers[path]; ok {
		timer.Reset(settleDelay)
		return
	}

	w.timers[path] = time.AfterFunc(settleDelay, func() {
		w.mu.Lock()
		delete(w.timers, path)
		closed := w.closed
		w.mu.Unlock()

		if closed {
			return
		}
		w.logger.Debug("File settled", "path", path)
		w.handler(path)
	})
}

// Close stops all pending reports and releases the filesystem watcher
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()

	return w.fs.Close()
}

func isInProgress(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range inProgressSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

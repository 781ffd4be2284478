package configwatch

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Watcher polls files for modification time changes and re-validates them,
// so broken data files show up in the logs before anything needs them.
type Watcher struct {
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	entries []watchEntry
}

type watchEntry struct {
	path     string
	modTime  time.Time
	missing  bool
	validate func(path string) error
}

// New creates a Watcher that polls at the given interval.
func New(interval time.Duration, logger *slog.Logger) *Watcher {
	return &Watcher{
		interval: interval,
		logger:   logger,
	}
}

// Watch adds a file to be watched. validate runs whenever the file's
// modification time changes. The file does not need to exist at watch time.
func (w *Watcher) Watch(path string, validate func(path string) error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	modTime := fileModTime(path)
	w.entries = append(w.entries, watchEntry{
		path:     path,
		modTime:  modTime,
		missing:  modTime.IsZero(),
		validate: validate,
	})
}

// Check validates every watched file once, regardless of modification time.
// It returns the first failure.
func (w *Watcher) Check() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var first error
	for i := range w.entries {
		e := &w.entries[i]
		if err := e.validate(e.path); err != nil {
			w.logger.Warn("watched file invalid", "path", e.path, "error", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// Run polls until the context is cancelled. It blocks, so call it in a goroutine.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *Watcher) poll() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := range w.entries {
		e := &w.entries[i]
		current := fileModTime(e.path)

		// Report a disappearing file once; it may be mid-save.
		if current.IsZero() {
			if !e.missing {
				e.missing = true
				w.logger.Warn("watched file missing", "path", e.path)
			}
			continue
		}
		if !e.missing && current.Equal(e.modTime) {
			continue
		}

		e.missing = false
		e.modTime = current
		if err := e.validate(e.path); err != nil {
			w.logger.Warn("watched file invalid", "path", e.path, "error", err)
			continue
		}
		w.logger.Info("watched file changed", "path", e.path)
	}
}

// fileModTime returns the file's modification time, or zero if it can't be read.
func fileModTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

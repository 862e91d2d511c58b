package importer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceInterval is the quiet period after a file event before a
// re-sync fires. Editors produce bursts of writes; one sync per burst is
// enough.
const DefaultDebounceInterval = 100 * time.Millisecond

// Watcher re-syncs the importer whenever a policy file under its directory
// changes.
type Watcher struct {
	importer *Importer
	watcher  *fsnotify.Watcher
	debounce *debouncer
	logger   *slog.Logger
}

// NewWatcher creates a watcher over imp's directory. interval <= 0 selects
// DefaultDebounceInterval.
func NewWatcher(imp *Importer, interval time.Duration) (*Watcher, error) {
	if interval <= 0 {
		interval = DefaultDebounceInterval
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &Watcher{
		importer: imp,
		watcher:  fsw,
		debounce: newDebouncer(interval),
		logger:   slog.Default().With("component", "policy-watcher"),
	}, nil
}

// Watch blocks, re-syncing on changes, until ctx is cancelled. The initial
// sync runs before the first event.
func (w *Watcher) Watch(ctx context.Context) error {
	if err := w.watcher.Add(w.importer.dir); err != nil {
		return fmt.Errorf("watch %q: %w", w.importer.dir, err)
	}
	defer w.watcher.Close()
	defer w.debounce.stop()

	if _, err := w.importer.Sync(ctx); err != nil {
		w.logger.Warn("initial policy sync had failures", "error", err)
	}

	w.logger.Info("policy watcher started", "dir", w.importer.dir)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("policy watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !shouldProcess(event) {
				continue
			}
			w.debounce.trigger(func() {
				w.logger.Info("policy files changed, re-syncing",
					"path", event.Name,
					"op", event.Op.String())
				if _, err := w.importer.Sync(ctx); err != nil {
					w.logger.Error("policy re-sync had failures", "error", err)
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("policy watcher error", "error", err)
		}
	}
}

func shouldProcess(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// debouncer collapses event bursts into one callback after a quiet period.
type debouncer struct {
	interval time.Duration
	mu       sync.Mutex
	timer    *time.Timer
	callback func()
	stopped  bool
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{interval: interval}
}

func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		cb := d.callback
		stopped := d.stopped
		d.mu.Unlock()
		if cb != nil && !stopped {
			cb()
		}
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}

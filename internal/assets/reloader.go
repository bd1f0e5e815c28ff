package assets

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Reloader watches the on-disk client bundle and swaps the served bytes
// after edits settle. Rapid saves are debounced.
type Reloader struct {
	bundle     *Bundle
	path       string
	logger     *zap.Logger
	watcher    *fsnotify.Watcher
	debounce   time.Duration
	mu         sync.Mutex
	pendingAt  time.Time
	hasPending bool
}

// NewReloader creates a reloader for the bundle file at path.
func NewReloader(bundle *Bundle, path string, logger *zap.Logger) (*Reloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Reloader{
		bundle:   bundle,
		path:     path,
		logger:   logger.Named("reloader"),
		watcher:  watcher,
		debounce: 200 * time.Millisecond,
	}, nil
}

// Run loads the bundle once, then watches until the context is done.
func (r *Reloader) Run(ctx context.Context) error {
	if err := r.bundle.LoadFile(r.path); err != nil {
		// Missing file at startup is fine; the embedded bundle serves
		// until the first write lands.
		r.logger.Warn("initial bundle load failed", zap.Error(err))
	}

	// Watch the directory: editors replace files rather than write in place,
	// which drops a watch registered on the file itself.
	if err := r.watcher.Add(filepath.Dir(r.path)); err != nil {
		return err
	}
	r.logger.Info("watching client bundle", zap.String("path", r.path))

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	defer r.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			r.handleEvent(event)

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("watcher error", zap.Error(err))

		case <-ticker.C:
			r.flushPending()
		}
	}
}

func (r *Reloader) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(r.path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	r.mu.Lock()
	r.pendingAt = time.Now()
	r.hasPending = true
	r.mu.Unlock()
}

func (r *Reloader) flushPending() {
	r.mu.Lock()
	ready := r.hasPending && time.Since(r.pendingAt) >= r.debounce
	if ready {
		r.hasPending = false
	}
	r.mu.Unlock()

	if !ready {
		return
	}
	if err := r.bundle.LoadFile(r.path); err != nil {
		r.logger.Error("bundle reload failed", zap.Error(err))
		return
	}
	r.logger.Info("client bundle reloaded",
		zap.String("path", r.path),
		zap.Int64("generation", r.bundle.Generation()))
}

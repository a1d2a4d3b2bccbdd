package shared

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"pomotimer/internal/logging"
)

// DefaultDebounce collapses the burst of events one atomic rewrite produces.
const DefaultDebounce = 50 * time.Millisecond

// Watcher signals when the published state file changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	debounce  time.Duration
	onChange  chan struct{}
}

// NewWatcher creates a watcher for the state file at path.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	return &Watcher{
		fsWatcher: fsw,
		path:      path,
		debounce:  debounce,
		onChange:  make(chan struct{}, 1),
	}, nil
}

// Start watches the file's directory until ctx ends. The returned channel
// receives at most one pending signal; readers re-read the store on each.
func (w *Watcher) Start(ctx context.Context) (<-chan struct{}, error) {
	// Atomic rewrites replace the inode, so the directory is what we watch.
	dir := filepath.Dir(w.path)
	if err := w.fsWatcher.Add(dir); err != nil {
		_ = w.fsWatcher.Close()
		return nil, fmt.Errorf("watching directory %s: %w", dir, err)
	}
	go w.loop(ctx)
	return w.onChange, nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer func() { _ = w.fsWatcher.Close() }()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevant(event) {
				continue
			}
			timer.Reset(w.debounce)
		case <-timer.C:
			select {
			case w.onChange <- struct{}{}:
			default:
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			logging.Warnf("state watcher: %v", err)
		}
	}
}

func (w *Watcher) isRelevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	return filepath.Base(event.Name) == filepath.Base(w.path)
}

package llm

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultReloadDebounce = 300 * time.Millisecond

// GuidelineWatcher reloads a guideline file into a GuidelineStore whenever it
// changes on disk. An invalid file leaves the previous set active.
type GuidelineWatcher struct {
	path     string
	store    *GuidelineStore
	logger   *slog.Logger
	debounce time.Duration
	onReload func(*GuidelineSet, error)
}

// NewGuidelineWatcher creates a watcher for the guideline file at path.
func NewGuidelineWatcher(path string, store *GuidelineStore, logger *slog.Logger) *GuidelineWatcher {
	return &GuidelineWatcher{
		path:     path,
		store:    store,
		logger:   logger,
		debounce: defaultReloadDebounce,
	}
}

// Run watches the file's directory until ctx is cancelled. Editors often
// replace files by rename, so the directory is watched rather than the file.
func (w *GuidelineWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("resolve guidelines path: %w", err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	w.logger.Info("watching guidelines file for changes", "path", target)

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.reload)
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func (w *GuidelineWatcher) reload() {
	set, err := LoadGuidelines(w.path)
	if err != nil {
		w.logger.Warn("keeping previous guidelines, reload failed", "path", w.path, "error", err)
	} else {
		w.store.Replace(set)
		w.logger.Info("guidelines reloaded", "path", w.path, "version", set.Version, "language", set.Language)
	}
	if w.onReload != nil {
		w.onReload(set, err)
	}
}

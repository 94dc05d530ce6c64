package core

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// RefWatcher debounces filesystem notifications on a branch's ref file (and
// packed-refs, for repositories that pack loose refs) into calls to the
// revision store's Update, so the bridge discovers new user commits without
// polling.
type RefWatcher struct {
	repoDir string
	branch  string
	onEvent func(context.Context) error
}

// NewRefWatcher builds a RefWatcher for the given bare repository directory
// and branch name. onEvent is invoked (debounced) after the ref changes.
func NewRefWatcher(repoDir, branch string, onEvent func(context.Context) error) *RefWatcher {
	return &RefWatcher{repoDir: repoDir, branch: branch, onEvent: onEvent}
}

func (w *RefWatcher) refPath() string {
	return filepath.Join(w.repoDir, "refs", "heads", w.branch)
}

func (w *RefWatcher) packedRefsPath() string {
	return filepath.Join(w.repoDir, "packed-refs")
}

// Run watches until ctx is cancelled or the watcher errors unrecoverably.
func (w *RefWatcher) Run(ctx context.Context, log *Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create ref watcher: %w", err)
	}
	defer watcher.Close()

	// Watch both the refs/heads directory (loose ref updates replace the
	// file) and the repository root (for packed-refs rewrites after `git
	// gc`/`pack-refs`).
	refsDir := filepath.Join(w.repoDir, "refs", "heads")
	if err := watcher.Add(refsDir); err != nil {
		return fmt.Errorf("watch %s: %w", refsDir, err)
	}
	if err := watcher.Add(w.repoDir); err != nil {
		return fmt.Errorf("watch %s: %w", w.repoDir, err)
	}

	const debounceDelay = 300 * time.Millisecond
	var debounceTimer *time.Timer
	fire := func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceTimer = time.AfterFunc(debounceDelay, func() {
			if err := w.onEvent(ctx); err != nil {
				log.Errorf("ref watcher: update failed: %v", err)
			}
		})
	}

	refPath := w.refPath()
	packedPath := w.packedRefsPath()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != refPath && event.Name != packedPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				fire()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("ref watcher: %v", err)
		}
	}
}

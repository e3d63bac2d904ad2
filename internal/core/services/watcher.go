package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/lingua-cli/internal/core/domain"
	"github.com/custodia-labs/lingua-cli/internal/core/ports/driving"
	"github.com/custodia-labs/lingua-cli/internal/logger"
)

// Watcher feeds filesystem events for resource files into the
// coordinator. It watches the project tree recursively and follows
// directories created while it runs.
type Watcher struct {
	ws          *domain.Workspace
	coordinator driving.IndexCoordinator
	ignoreDirs  map[string]struct{}
}

// NewWatcher creates a watcher over one project workspace.
func NewWatcher(ws *domain.Workspace, coordinator driving.IndexCoordinator, extraIgnoreDirs []string) *Watcher {
	ignore := make(map[string]struct{})
	for _, d := range defaultIgnoreDirs {
		ignore[d] = struct{}{}
	}
	for _, d := range extraIgnoreDirs {
		if d != "" {
			ignore[d] = struct{}{}
		}
	}
	return &Watcher{ws: ws, coordinator: coordinator, ignoreDirs: ignore}
}

// Run watches until the context is cancelled. Per-file indexing errors
// are logged, never fatal to the watch loop.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.ws.Root()); err != nil {
		return fmt.Errorf("watching project tree: %w", err)
	}
	logger.Info("watching %s", w.ws.Root())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, fw, event)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		}
	}
}

// handle dispatches one filesystem event.
func (w *Watcher) handle(ctx context.Context, fw *fsnotify.Watcher, event fsnotify.Event) {
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.skipDir(filepath.Base(event.Name)) {
				if err := w.addTree(fw, event.Name); err != nil {
					logger.Warn("watching new directory %s: %v", event.Name, err)
				}
			}
			return
		}
	}

	if !isResourcePath(event.Name) {
		return
	}

	var err error
	switch {
	case event.Op.Has(fsnotify.Create):
		err = w.coordinator.OnFileCreated(ctx, event.Name, driving.KindUnknown)
	case event.Op.Has(fsnotify.Write):
		err = w.coordinator.OnFileChanged(ctx, event.Name, driving.KindUnknown)
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		err = w.coordinator.OnFileDeleted(ctx, event.Name, driving.KindUnknown)
	default:
		return
	}
	if err != nil {
		logger.Warn("indexing %s: %v", event.Name, err)
	}
}

// addTree watches a directory and every non-ignored subdirectory.
func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && w.skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return fw.Add(p)
	})
}

func (w *Watcher) skipDir(name string) bool {
	if _, skip := w.ignoreDirs[name]; skip {
		return true
	}
	return strings.HasPrefix(name, ".")
}

// isResourcePath reports whether a path has a tracked resource extension.
func isResourcePath(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".grd", ".grdp", ".xtb":
		return true
	}
	return false
}

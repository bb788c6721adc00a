package library

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/scalesmith/internal/store"
)

const reconcileDelay = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the library root and processes file
// change events until ctx is cancelled. It calls cb (if non-nil) for each
// family a change created, updated or deleted.
//
// New directories created at runtime are added to the watch list. Rename
// events trigger a reconciliation pass that drops families whose file no
// longer exists.
func Watch(ctx context.Context, db store.ScaleIndex, lib *FS, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := lib.Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, lib, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			absPath := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					loadNewDir(db, lib, absPath, logger, cb)
					continue
				}
			}

			rel, relErr := filepath.Rel(root, absPath)
			if relErr != nil || !lib.Matches(rel) {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				data, readErr := lib.Read(rel)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", readErr.Error()))
					continue
				}
				changes, loadErr := loadFile(db, rel, data)
				if loadErr != nil {
					logger.Warn("watcher: load failed", slog.String("path", rel), slog.String("error", loadErr.Error()))
					continue
				}
				logger.Debug("watcher: loaded", slog.String("path", rel), slog.Int("changes", len(changes)))
				notify(cb, changes)

			case ev.Op&fsnotify.Remove != 0:
				changes, delErr := dropFile(db, rel)
				if delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("path", rel))
				notify(cb, changes)

			case ev.Op&fsnotify.Rename != 0:
				// Rename fires on the old path only; the new path arrives as
				// a Create when it stays inside a watched directory.
				changes, delErr := dropFile(db, rel)
				if delErr != nil {
					logger.Warn("watcher: rename delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
				} else {
					logger.Debug("watcher: rename old deleted", slog.String("path", rel))
					notify(cb, changes)
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile drops families whose file is gone and loads files whose checksum
// differs from the stored one.
func reconcile(db store.ScaleIndex, lib Provider, logger *slog.Logger, cb EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	metas, err := lib.List()
	if err != nil {
		logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if changes, delErr := dropFile(db, p); delErr == nil {
			logger.Debug("reconcile: removed stale", slog.String("path", p))
			notify(cb, changes)
		}
	}

	for p, cs := range disk {
		if checksums[p] == cs {
			continue
		}
		data, readErr := lib.Read(p)
		if readErr != nil {
			continue
		}
		if changes, loadErr := loadFile(db, p, data); loadErr == nil {
			logger.Debug("reconcile: loaded", slog.String("path", p))
			notify(cb, changes)
		}
	}
}

// loadNewDir loads the library files found in a newly created directory.
func loadNewDir(db store.ScaleIndex, lib *FS, dirPath string, logger *slog.Logger, cb EventCallback) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(lib.Root(), path)
		if relErr != nil || !lib.Matches(rel) {
			return nil
		}
		data, readErr := lib.Read(rel)
		if readErr != nil {
			return nil
		}
		if changes, loadErr := loadFile(db, rel, data); loadErr == nil {
			logger.Debug("watcher: loaded from new dir", slog.String("path", rel))
			notify(cb, changes)
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

package library

import (
	"log/slog"

	"github.com/starford/scalesmith/internal/store"
)

// Change kinds reported to an EventCallback.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// EventCallback is called for every family a library change touched.
type EventCallback func(kind string, family string)

// Sync brings the store up to date with the library:
//   - new/changed files are decoded and their families upserted
//   - families whose file disappeared are removed
func Sync(db store.ScaleIndex, lib Provider, logger *slog.Logger) error {
	return SyncWithProgress(db, lib, logger, nil)
}

// SyncWithProgress is Sync with a hook called once per library file, loaded
// or skipped, so callers can report progress.
func SyncWithProgress(db store.ScaleIndex, lib Provider, logger *slog.Logger, step func(path string)) error {
	metas, err := lib.List()
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}
		if step != nil {
			step(m.Path)
		}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := lib.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if _, err := loadFile(db, m.Path, data); err != nil {
			logger.Warn("sync: load failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: loaded", slog.String("path", m.Path))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if names, err := db.DeleteBySource(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: removed stale", slog.String("path", p), slog.Int("families", len(names)))
		}
	}

	return nil
}

type change struct {
	kind   string
	family string
}

// loadFile decodes data and makes its families the content of path in the
// store, returning what changed.
func loadFile(db store.ScaleIndex, path string, data []byte) ([]change, error) {
	families, err := Decode(path, data)
	if err != nil {
		return nil, err
	}
	before, err := db.NamesBySource(path)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(before))
	for _, n := range before {
		known[n] = struct{}{}
	}

	removed, err := db.ReplaceSource(path, Checksum(data), families)
	if err != nil {
		return nil, err
	}

	out := make([]change, 0, len(families)+len(removed))
	for _, f := range families {
		kind := KindCreated
		if _, ok := known[f.Name]; ok {
			kind = KindUpdated
		}
		out = append(out, change{kind: kind, family: f.Name})
	}
	for _, n := range removed {
		out = append(out, change{kind: KindDeleted, family: n})
	}
	return out, nil
}

func dropFile(db store.ScaleIndex, path string) ([]change, error) {
	names, err := db.DeleteBySource(path)
	if err != nil {
		return nil, err
	}
	out := make([]change, 0, len(names))
	for _, n := range names {
		out = append(out, change{kind: KindDeleted, family: n})
	}
	return out, nil
}

func notify(cb EventCallback, changes []change) {
	if cb == nil {
		return
	}
	for _, c := range changes {
		cb(c.kind, c.family)
	}
}

package library

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/scalesmith/internal/store"
)

func watcherTestEnv(t *testing.T) (string, *FS, *store.DB) {
	t.Helper()
	lib := tempLibrary(t)
	return lib.Root(), lib, testDB(t)
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func hasFamily(db *store.DB, name, source string) bool {
	r, err := db.Get(name)
	return err == nil && r.Source == source
}

func TestWatcher_NewFileLoaded(t *testing.T) {
	root, lib, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string

	go Watch(ctx, db, lib, quietLogger(), func(kind, family string) {
		mu.Lock()
		events = append(events, kind+":"+family)
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(root, "p.yaml"), []byte(pentatonicYAML), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return hasFamily(db, "Pentatonic", "p.yaml")
	}, "new file not loaded by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "created:Pentatonic" {
				return true
			}
		}
		return false
	}, "expected created:Pentatonic callback")
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	root, lib, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, lib, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(root, "p.txt"), []byte(pentatonicYAML), 0o644)
	_ = os.WriteFile(filepath.Join(root, "marker.yaml"), []byte("families: []\n"), 0o644)
	_ = os.WriteFile(filepath.Join(root, "s.json"), []byte(savedJSON), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return hasFamily(db, "Augmented Pair", "s.json")
	}, "json file not loaded by watcher")

	if _, err := db.Get("Pentatonic"); err == nil {
		t.Error("non-library file should be ignored")
	}
}

func TestWatcher_NewDirWatched(t *testing.T) {
	root, lib, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, lib, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	subDir := filepath.Join(root, "subdir")
	_ = os.MkdirAll(subDir, 0o755)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(subDir, "deep.yaml"), []byte(pentatonicYAML), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return hasFamily(db, "Pentatonic", filepath.Join("subdir", "deep.yaml"))
	}, "file in new subdir not loaded by watcher")
}

func TestWatcher_DeleteRemovesFamilies(t *testing.T) {
	root, lib, db := watcherTestEnv(t)

	_ = os.WriteFile(filepath.Join(root, "del.yaml"), []byte(pentatonicYAML), 0o644)
	Sync(db, lib, quietLogger())
	if !hasFamily(db, "Pentatonic", "del.yaml") {
		t.Fatal("precondition: family should be loaded")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, lib, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(filepath.Join(root, "del.yaml"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, err := db.Get("Pentatonic")
		return err != nil
	}, "deleted file's family still in store")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	root, lib, db := watcherTestEnv(t)

	_ = os.WriteFile(filepath.Join(root, "old.yaml"), []byte(pentatonicYAML), 0o644)
	Sync(db, lib, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, lib, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Rename(filepath.Join(root, "old.yaml"), filepath.Join(root, "renamed.yaml"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return hasFamily(db, "Pentatonic", "renamed.yaml")
	}, "rename reconciliation failed: family should move to the new file")
}

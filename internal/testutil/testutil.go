// Package testutil provides shared test helpers for setting up scale
// libraries and databases.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/scalesmith/internal/library"
	"github.com/starford/scalesmith/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "scalesmith-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestLibrary creates a temporary library directory with the default
// include patterns.
func TestLibrary(t *testing.T) (string, *library.FS) {
	t.Helper()
	dir := t.TempDir()
	lib, err := library.NewFS(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	return dir, lib
}

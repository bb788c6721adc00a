package store

import "github.com/starford/scalesmith/internal/scale"

// ScaleIndex defines the scale-family persistence operations.
// Consumers should depend on this interface rather than the concrete *DB type.
type ScaleIndex interface {
	Upsert(r FamilyRow) error
	Get(name string) (*FamilyRow, error)
	List() ([]FamilyRow, error)
	Delete(name string) error
	Search(query string, limit int) ([]FamilyRow, error)
	AllChecksums() (map[string]string, error)
	NamesBySource(source string) ([]string, error)
	ReplaceSource(source, checksum string, families []scale.Family) (removed []string, err error)
	DeleteBySource(source string) ([]string, error)
	SeedDefaults(reset bool) error
	Close() error
}

// Verify *DB satisfies ScaleIndex at compile time.
var _ ScaleIndex = (*DB)(nil)

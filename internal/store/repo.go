package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/scalesmith/internal/apperr"
	"github.com/starford/scalesmith/internal/scale"
)

// FamilyRow represents a row in the scale_families table.
type FamilyRow struct {
	Name      string
	Intervals []int
	Modes     []string
	Builtin   bool
	Position  int
	Source    string
	Checksum  string
	UpdatedAt time.Time
}

// Family returns the scale family stored in the row.
func (r FamilyRow) Family() scale.Family {
	return scale.Family{
		Name:      r.Name,
		Intervals: append([]int(nil), r.Intervals...),
		Modes:     append([]string(nil), r.Modes...),
	}
}

const selectColumns = `name, intervals, modes, builtin, position, source, checksum, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(s rowScanner) (FamilyRow, error) {
	var (
		r               FamilyRow
		intervals, mode string
	)
	if err := s.Scan(&r.Name, &intervals, &mode, &r.Builtin, &r.Position, &r.Source, &r.Checksum, &r.UpdatedAt); err != nil {
		return FamilyRow{}, err
	}
	if err := json.Unmarshal([]byte(intervals), &r.Intervals); err != nil {
		return FamilyRow{}, fmt.Errorf("store: decode intervals of %q: %w", r.Name, err)
	}
	if err := json.Unmarshal([]byte(mode), &r.Modes); err != nil {
		return FamilyRow{}, fmt.Errorf("store: decode modes of %q: %w", r.Name, err)
	}
	return r, nil
}

func collect(rows *sql.Rows) ([]FamilyRow, error) {
	defer rows.Close()
	var out []FamilyRow
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Upsert inserts or replaces a family. A custom row may not replace a
// builtin one, and a row loaded from one library file may not replace a row
// owned by another.
func (db *DB) Upsert(r FamilyRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if err := upsertTx(tx, r); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertTx(tx *sql.Tx, r FamilyRow) error {
	var (
		builtin bool
		source  string
	)
	err := tx.QueryRow(`SELECT builtin, source FROM scale_families WHERE name = ?`, r.Name).Scan(&builtin, &source)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("store: lookup %q: %w", r.Name, err)
	case builtin && !r.Builtin:
		return fmt.Errorf("store: %q is a builtin family: %w", r.Name, apperr.ErrConflict)
	case !builtin && !r.Builtin && source != "" && r.Source != "" && source != r.Source:
		return fmt.Errorf("store: %q already defined in %s: %w", r.Name, source, apperr.ErrAlreadyExists)
	}

	intervalsJSON, _ := json.Marshal(r.Intervals)
	modesJSON, _ := json.Marshal(r.Modes)
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now().UTC()
	}
	_, err = tx.Exec(`
		INSERT INTO scale_families (name, intervals, modes, builtin, position, source, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			intervals  = excluded.intervals,
			modes      = excluded.modes,
			builtin    = excluded.builtin,
			position   = excluded.position,
			source     = excluded.source,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, r.Name, string(intervalsJSON), string(modesJSON), r.Builtin, r.Position, r.Source, r.Checksum, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: upsert %q: %w", r.Name, err)
	}
	return nil
}

// Get returns the family called name.
func (db *DB) Get(name string) (*FamilyRow, error) {
	r, err := scanRow(db.conn.QueryRow(`SELECT `+selectColumns+` FROM scale_families WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: family %q: %w", name, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get %q: %w", name, err)
	}
	return &r, nil
}

// List returns the builtin families in factory order followed by every other
// family sorted by name.
func (db *DB) List() ([]FamilyRow, error) {
	rows, err := db.conn.Query(`SELECT ` + selectColumns + ` FROM scale_families ORDER BY builtin DESC, position, name`)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return collect(rows)
}

// Delete removes the family called name.
func (db *DB) Delete(name string) error {
	res, err := db.conn.Exec(`DELETE FROM scale_families WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("store: delete %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: family %q: %w", name, apperr.ErrNotFound)
	}
	return nil
}

// Search matches query against family and mode names.
func (db *DB) Search(query string, limit int) ([]FamilyRow, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT `+selectColumns+`
		FROM scale_families
		WHERE name LIKE ? OR modes LIKE ?
		ORDER BY builtin DESC, position, name
		LIMIT ?
	`, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	return collect(rows)
}

// AllChecksums maps every library source path to the checksum it was last
// loaded with.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT source, checksum FROM scale_families WHERE source != ''`)
	if err != nil {
		return nil, fmt.Errorf("store: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// NamesBySource returns the families loaded from source, sorted by name.
func (db *DB) NamesBySource(source string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT name FROM scale_families WHERE source = ? ORDER BY name`, source)
	if err != nil {
		return nil, fmt.Errorf("store: names by source: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// ReplaceSource makes families the exact content of source: each is upserted
// with the new checksum and families the file no longer defines are removed.
// It returns the removed names.
func (db *DB) ReplaceSource(source, checksum string, families []scale.Family) ([]string, error) {
	previous, err := db.NamesBySource(source)
	if err != nil {
		return nil, err
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	keep := make(map[string]struct{}, len(families))
	now := time.Now().UTC()
	for _, f := range families {
		keep[f.Name] = struct{}{}
		row := FamilyRow{
			Name:      f.Name,
			Intervals: f.Intervals,
			Modes:     f.Modes,
			Source:    source,
			Checksum:  checksum,
			UpdatedAt: now,
		}
		if err := upsertTx(tx, row); err != nil {
			return nil, err
		}
	}
	var removed []string
	for _, name := range previous {
		if _, ok := keep[name]; ok {
			continue
		}
		if _, err := tx.Exec(`DELETE FROM scale_families WHERE name = ? AND source = ?`, name, source); err != nil {
			return nil, fmt.Errorf("store: drop %q: %w", name, err)
		}
		removed = append(removed, name)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}
	return removed, nil
}

// DeleteBySource removes every family loaded from source and returns their
// names.
func (db *DB) DeleteBySource(source string) ([]string, error) {
	names, err := db.NamesBySource(source)
	if err != nil {
		return nil, err
	}
	if _, err := db.conn.Exec(`DELETE FROM scale_families WHERE source = ?`, source); err != nil {
		return nil, fmt.Errorf("store: delete source %s: %w", source, err)
	}
	return names, nil
}

// SeedDefaults writes the factory families. With reset every non-builtin
// family is removed first; without it custom families are kept and only the
// factory set is restored.
func (db *DB) SeedDefaults(reset bool) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if reset {
		if _, err := tx.Exec(`DELETE FROM scale_families WHERE builtin = 0`); err != nil {
			return fmt.Errorf("store: reset: %w", err)
		}
	}
	now := time.Now().UTC()
	for i, f := range scale.DefaultFamilies() {
		row := FamilyRow{
			Name:      f.Name,
			Intervals: f.Intervals,
			Modes:     f.Modes,
			Builtin:   true,
			Position:  i,
			UpdatedAt: now,
		}
		if err := upsertTx(tx, row); err != nil {
			return err
		}
	}
	return tx.Commit()
}

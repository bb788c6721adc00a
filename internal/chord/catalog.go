// Package chord holds the chord catalog and the matcher that names the chords
// available at a scale degree.
package chord

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/starford/scalesmith/internal/apperr"
	"github.com/starford/scalesmith/internal/interval"
)

// ErrMalformedCatalog wraps every construction-time catalog error.
var ErrMalformedCatalog = errors.New("chord: malformed catalog")

// Chord is one named chord of a catalog entry. Derivations are Stradella
// bass spellings shown as explanatory text; they play no part in matching.
type Chord struct {
	Name        string   `json:"name"`
	Tier        Level    `json:"tier"`
	Derivations []string `json:"derivations"`
}

// Entry maps one interval set to every chord name spelled by it.
type Entry struct {
	Set    interval.Set `json:"intervals"`
	Chords []Chord      `json:"chords"`
}

// EntrySpec is the literal form of an Entry used to build a Catalog.
type EntrySpec struct {
	Key    []int
	Chords []Chord
}

// Catalog is an immutable, ordered chord table. A *Catalog is safe for
// concurrent use.
type Catalog struct {
	entries []Entry
	byLevel [LevelAll + 1][]Entry
	bySet   map[interval.Set]int
}

// New validates specs and builds a Catalog. Any malformed entry aborts
// construction.
func New(specs []EntrySpec) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, 0, len(specs)),
		bySet:   make(map[interval.Set]int, len(specs)),
	}
	for i, spec := range specs {
		set, err := interval.NewSet(spec.Key...)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrMalformedCatalog, i, err)
		}
		if prev, dup := c.bySet[set]; dup {
			return nil, fmt.Errorf("%w: entry %d: key %s already defined by entry %d", ErrMalformedCatalog, i, set, prev)
		}
		if err := validateChords(spec.Chords); err != nil {
			return nil, fmt.Errorf("%w: entry %d %s: %v", ErrMalformedCatalog, i, set, err)
		}
		chords := make([]Chord, len(spec.Chords))
		for j, ch := range spec.Chords {
			chords[j] = Chord{
				Name:        ch.Name,
				Tier:        ch.Tier,
				Derivations: append([]string(nil), ch.Derivations...),
			}
		}
		c.bySet[set] = i
		c.entries = append(c.entries, Entry{Set: set, Chords: chords})
	}
	for _, lvl := range []Level{LevelBasic, LevelAdvanced, LevelAll} {
		c.byLevel[lvl] = filterLevel(c.entries, lvl)
	}
	return c, nil
}

func validateChords(chords []Chord) error {
	if len(chords) == 0 {
		return errors.New("no chord names")
	}
	seen := make(map[string]struct{}, len(chords))
	for _, ch := range chords {
		if strings.TrimSpace(ch.Name) == "" {
			return errors.New("empty chord name")
		}
		if _, ok := seen[ch.Name]; ok {
			return fmt.Errorf("duplicate chord name %q", ch.Name)
		}
		seen[ch.Name] = struct{}{}
		if ch.Tier < LevelBasic || ch.Tier > LevelAll {
			return fmt.Errorf("chord %q: invalid tier %s", ch.Name, ch.Tier)
		}
		if len(ch.Derivations) == 0 {
			return fmt.Errorf("chord %q: no derivations", ch.Name)
		}
		for _, d := range ch.Derivations {
			if strings.TrimSpace(d) == "" {
				return fmt.Errorf("chord %q: empty derivation", ch.Name)
			}
		}
	}
	return nil
}

// filterLevel keeps the chords whose tier is at most lvl, in table order,
// and drops entries left without chords.
func filterLevel(entries []Entry, lvl Level) []Entry {
	var out []Entry
	for _, e := range entries {
		var kept []Chord
		for _, ch := range e.Chords {
			if ch.Tier <= lvl {
				kept = append(kept, ch)
			}
		}
		if len(kept) == 0 {
			continue
		}
		out = append(out, Entry{Set: e.Set, Chords: kept})
	}
	return out
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalog. The table is built on first use and
// shared afterwards.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := New(defaultTable)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// ForLevel returns the catalog subset searched at the given level, in table
// order. LevelOff is not a catalog query and is rejected, as is any unknown
// level. The returned entries must be treated as read-only.
func (c *Catalog) ForLevel(level Level) ([]Entry, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("chord: invalid level %d: %w", int(level), apperr.ErrInvalidArgument)
	}
	if level == LevelOff {
		return nil, fmt.Errorf("chord: level off has no catalog: %w", apperr.ErrInvalidArgument)
	}
	src := c.byLevel[level]
	out := make([]Entry, len(src))
	copy(out, src)
	return out, nil
}

// Entries returns the full table in definition order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of interval sets in the full table.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Lookup returns the entry for an exact interval set.
func (c *Catalog) Lookup(set interval.Set) (Entry, bool) {
	i, ok := c.bySet[set]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// ChordsNamed returns every entry carrying a chord with the given raw name.
// A name may be spelled by several interval sets.
func (c *Catalog) ChordsNamed(name string) []Entry {
	var out []Entry
	for _, e := range c.entries {
		for _, ch := range e.Chords {
			if ch.Name == name {
				out = append(out, Entry{Set: e.Set, Chords: []Chord{ch}})
				break
			}
		}
	}
	return out
}

// Package scaleservice coordinates the scale store, the library files and the
// chord engine behind the API, MCP and CLI surfaces.
package scaleservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/starford/scalesmith/internal/apperr"
	"github.com/starford/scalesmith/internal/chart"
	"github.com/starford/scalesmith/internal/chord"
	"github.com/starford/scalesmith/internal/interval"
	"github.com/starford/scalesmith/internal/library"
	"github.com/starford/scalesmith/internal/midi"
	"github.com/starford/scalesmith/internal/scale"
	"github.com/starford/scalesmith/internal/store"
	"github.com/starford/scalesmith/internal/stradella"
)

// Preferences are the chord display settings used when a request leaves
// them out.
type Preferences struct {
	Level     chord.Level
	Symbology chord.Symbology
}

// FamilyDetail is the representation of a stored scale family.
type FamilyDetail struct {
	Name      string    `json:"name"`
	Intervals []int     `json:"intervals"`
	Modes     []string  `json:"modes"`
	Builtin   bool      `json:"builtin"`
	Source    string    `json:"source,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Family returns the scale family of d.
func (d FamilyDetail) Family() scale.Family {
	return scale.Family{Name: d.Name, Intervals: d.Intervals, Modes: d.Modes}
}

// ChartRequest selects a scale and how its chords are shown. Empty Level and
// Symbology fall back to the preferences; an empty Mode selects the first
// mode; an empty Key shows roman numerals.
type ChartRequest struct {
	Family    string
	Mode      string
	Key       string
	Level     string
	Symbology string
}

// MIDIRequest selects a keyed scale and how it is played.
type MIDIRequest struct {
	Family   string
	Mode     string
	Key      string
	Octaves  int
	Patterns string
	Tempo    float64
	Program  int
}

// CatalogChord is one chord name of a catalog entry.
type CatalogChord struct {
	Name        string      `json:"name"`
	Label       string      `json:"label"`
	Tier        chord.Level `json:"tier"`
	Derivations []Voicing   `json:"derivations"`
}

// Voicing is a derivation together with the pitch classes it sounds.
// Inexact marks a fingering whose pitch classes differ from the chord's
// interval set.
type Voicing struct {
	Text         string `json:"text"`
	PitchClasses []int  `json:"pitch_classes,omitempty"`
	Bass         int    `json:"bass"`
	Inexact      bool   `json:"inexact,omitempty"`
}

// CatalogEntry is one interval set of the catalog.
type CatalogEntry struct {
	Intervals interval.Set   `json:"intervals"`
	Chords    []CatalogChord `json:"chords"`
}

// Service coordinates store, library and chord operations.
type Service struct {
	db      store.ScaleIndex
	lib     library.Provider
	matcher *chord.Matcher
	prefs   Preferences
}

// NewService creates a new scale service. lib may be nil, in which case
// families created through the service live in the store only.
func NewService(db store.ScaleIndex, lib library.Provider, m *chord.Matcher, prefs Preferences) *Service {
	return &Service{db: db, lib: lib, matcher: m, prefs: prefs}
}

// Preferences returns the configured display settings.
func (s *Service) Preferences() Preferences {
	return s.prefs
}

// Init seeds the factory families into an empty store.
func (s *Service) Init(_ context.Context) error {
	rows, err := s.db.List()
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		return nil
	}
	return s.db.SeedDefaults(false)
}

// ListFamilies returns every stored family, builtins first.
func (s *Service) ListFamilies(_ context.Context) ([]FamilyDetail, error) {
	rows, err := s.db.List()
	if err != nil {
		return nil, err
	}
	return details(rows), nil
}

// GetFamily returns the family called name.
func (s *Service) GetFamily(_ context.Context, name string) (*FamilyDetail, error) {
	r, err := s.db.Get(name)
	if err != nil {
		return nil, err
	}
	d := detail(*r)
	return &d, nil
}

// PutFamily creates or replaces a custom family. Builtin families are read
// only. With a library the family is saved to the file that already holds it,
// or to a new file named after it. The boolean reports whether the family
// was created.
func (s *Service) PutFamily(ctx context.Context, f scale.Family) (*FamilyDetail, bool, error) {
	f = f.Clone()
	if err := f.Validate(); err != nil {
		return nil, false, fmt.Errorf("%w: %w", err, apperr.ErrInvalidArgument)
	}
	existing, err := s.db.Get(f.Name)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		existing = nil
	case err != nil:
		return nil, false, err
	case existing.Builtin:
		return nil, false, fmt.Errorf("scaleservice: %q is a builtin family: %w", f.Name, apperr.ErrConflict)
	}

	if s.lib == nil {
		if err := s.db.Upsert(store.FamilyRow{Name: f.Name, Intervals: f.Intervals, Modes: f.Modes}); err != nil {
			return nil, false, err
		}
	} else {
		path := library.FileName(f.Name)
		if existing != nil && existing.Source != "" {
			path = existing.Source
		}
		if err := s.rewriteFile(path, func(fams []scale.Family) []scale.Family {
			for i := range fams {
				if fams[i].Name == f.Name {
					fams[i] = f
					return fams
				}
			}
			return append(fams, f)
		}); err != nil {
			return nil, false, err
		}
	}
	d, err := s.GetFamily(ctx, f.Name)
	if err != nil {
		return nil, false, err
	}
	return d, existing == nil, nil
}

// DeleteFamily removes a family. A builtin family stays hidden until the
// defaults are restored. A family loaded from a library file is removed from
// that file, and a file left empty is deleted.
func (s *Service) DeleteFamily(_ context.Context, name string) error {
	r, err := s.db.Get(name)
	if err != nil {
		return err
	}
	if r.Source == "" || s.lib == nil {
		return s.db.Delete(name)
	}
	return s.rewriteFile(r.Source, func(fams []scale.Family) []scale.Family {
		out := fams[:0]
		for _, f := range fams {
			if f.Name != name {
				out = append(out, f)
			}
		}
		return out
	})
}

// rewriteFile applies edit to the families of a library file, writes the
// result and loads it into the store.
func (s *Service) rewriteFile(path string, edit func([]scale.Family) []scale.Family) error {
	var fams []scale.Family
	data, err := s.lib.Read(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return err
	default:
		if fams, err = library.Decode(path, data); err != nil {
			return err
		}
	}
	fams = edit(fams)
	if len(fams) == 0 {
		if err := s.lib.Delete(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		_, err := s.db.DeleteBySource(path)
		return err
	}
	out, err := library.Encode(path, fams)
	if err != nil {
		return err
	}
	if err := s.lib.Write(path, out); err != nil {
		return err
	}
	_, err = s.db.ReplaceSource(path, library.Checksum(out), fams)
	return err
}

// Search matches query against family and mode names.
func (s *Service) Search(_ context.Context, query string, limit int) ([]FamilyDetail, error) {
	rows, err := s.db.Search(query, limit)
	if err != nil {
		return nil, err
	}
	return details(rows), nil
}

// ResetDefaults restores the factory families. With reset every custom
// family is removed as well, together with the library files holding them.
func (s *Service) ResetDefaults(_ context.Context, reset bool) error {
	if reset && s.lib != nil {
		sources, err := s.db.AllChecksums()
		if err != nil {
			return err
		}
		for p := range sources {
			if err := s.lib.Delete(p); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
		}
	}
	return s.db.SeedDefaults(reset)
}

// Export renders the named families, or every family when names is empty,
// as a library YAML file.
func (s *Service) Export(ctx context.Context, names []string) ([]byte, error) {
	var fams []scale.Family
	if len(names) == 0 {
		all, err := s.ListFamilies(ctx)
		if err != nil {
			return nil, err
		}
		for _, d := range all {
			fams = append(fams, d.Family())
		}
	} else {
		for _, n := range names {
			d, err := s.GetFamily(ctx, n)
			if err != nil {
				return nil, err
			}
			fams = append(fams, d.Family())
		}
	}
	return library.EncodeYAML(fams)
}

// Scale resolves a family, mode and key into a scale.
func (s *Service) Scale(ctx context.Context, family, mode, key string) (*scale.Scale, error) {
	d, err := s.GetFamily(ctx, family)
	if err != nil {
		return nil, err
	}
	sc, err := scale.New(d.Family())
	if err != nil {
		return nil, err
	}
	if mode != "" {
		if err := sc.SetMode(mode); err != nil {
			i, convErr := strconv.Atoi(mode)
			if convErr != nil {
				return nil, err
			}
			if err := sc.SetModeIndex(i); err != nil {
				return nil, err
			}
		}
	}
	if err := sc.SetKey(key); err != nil {
		return nil, err
	}
	return sc, nil
}

// Display resolves level and symbology names, falling back to the preferences
// for empty ones.
func (s *Service) Display(level, symbology string) (chord.Level, chord.Symbology, error) {
	lvl, sym := s.prefs.Level, s.prefs.Symbology
	if level != "" {
		l, err := chord.ParseLevel(level)
		if err != nil {
			return 0, 0, err
		}
		lvl = l
	}
	if symbology != "" {
		y, err := chord.ParseSymbology(symbology)
		if err != nil {
			return 0, 0, err
		}
		sym = y
	}
	return lvl, sym, nil
}

// Chart annotates every degree of the requested scale.
func (s *Service) Chart(ctx context.Context, req ChartRequest) (*chart.Chart, error) {
	lvl, sym, err := s.Display(req.Level, req.Symbology)
	if err != nil {
		return nil, err
	}
	sc, err := s.Scale(ctx, req.Family, req.Mode, req.Key)
	if err != nil {
		return nil, err
	}
	return chart.Build(sc, s.matcher, lvl, sym)
}

// DegreeChords annotates one degree of the requested scale.
func (s *Service) DegreeChords(ctx context.Context, req ChartRequest, degree int) (*chart.Degree, error) {
	lvl, sym, err := s.Display(req.Level, req.Symbology)
	if err != nil {
		return nil, err
	}
	sc, err := s.Scale(ctx, req.Family, req.Mode, req.Key)
	if err != nil {
		return nil, err
	}
	return chart.BuildDegree(sc, s.matcher, degree, lvl, sym)
}

// Identify finds the stored families and modes that spell notes.
func (s *Service) Identify(ctx context.Context, notes []string) (*scale.Identification, error) {
	all, err := s.ListFamilies(ctx)
	if err != nil {
		return nil, err
	}
	fams := make([]scale.Family, len(all))
	for i, d := range all {
		fams[i] = d.Family()
	}
	return scale.Identify(notes, fams)
}

// Catalog lists the chord catalog at a level. Empty level and symbology
// fall back to the preferences; level off has no catalog.
func (s *Service) Catalog(level, symbology string) ([]CatalogEntry, error) {
	lvl, sym, err := s.Display(level, symbology)
	if err != nil {
		return nil, err
	}
	entries, err := s.matcher.Catalog().ForLevel(lvl)
	if err != nil {
		return nil, err
	}
	return catalogEntries(entries, sym), nil
}

// Explain returns every catalog entry carrying the chord name.
func (s *Service) Explain(name, symbology string) ([]CatalogEntry, error) {
	_, sym, err := s.Display("", symbology)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	entries := s.matcher.Catalog().ChordsNamed(name)
	if len(entries) == 0 {
		return nil, fmt.Errorf("scaleservice: chord %q: %w", name, apperr.ErrNotFound)
	}
	return catalogEntries(entries, sym), nil
}

func catalogEntries(entries []chord.Entry, sym chord.Symbology) []CatalogEntry {
	out := make([]CatalogEntry, len(entries))
	for i, e := range entries {
		ce := CatalogEntry{Intervals: e.Set, Chords: make([]CatalogChord, len(e.Chords))}
		for j, c := range e.Chords {
			ce.Chords[j] = CatalogChord{
				Name:        c.Name,
				Label:       sym.Format(c.Name),
				Tier:        c.Tier,
				Derivations: voicings(e.Set, c.Derivations),
			}
		}
		out[i] = ce
	}
	return out
}

func voicings(set interval.Set, derivations []string) []Voicing {
	out := make([]Voicing, len(derivations))
	for i, text := range derivations {
		v := Voicing{Text: text}
		if d, err := stradella.Parse(text); err == nil {
			v.PitchClasses = d.PitchClasses()
			v.Bass = d.BassNote()
			v.Inexact = interval.FromPositions(v.PitchClasses) != set
		}
		out[i] = v
	}
	return out
}

// MIDI renders the requested keyed scale as a Standard MIDI File.
func (s *Service) MIDI(ctx context.Context, req MIDIRequest) ([]byte, error) {
	sc, err := s.Scale(ctx, req.Family, req.Mode, req.Key)
	if err != nil {
		return nil, err
	}
	patterns, err := midi.ParsePatterns(req.Patterns)
	if err != nil {
		return nil, err
	}
	octaves := req.Octaves
	if octaves == 0 {
		octaves = 1
	}
	notes, err := midi.Sequence(sc, octaves, patterns)
	if err != nil {
		return nil, err
	}
	opts := midi.DefaultOptions()
	if req.Tempo != 0 {
		opts.Tempo = req.Tempo
	}
	if req.Program < 0 || req.Program > 127 {
		return nil, fmt.Errorf("scaleservice: program %d outside 0..127: %w", req.Program, apperr.ErrInvalidArgument)
	}
	opts.Program = uint8(req.Program)

	var buf bytes.Buffer
	if err := midi.WriteSMF(&buf, notes, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func detail(r store.FamilyRow) FamilyDetail {
	return FamilyDetail{
		Name:      r.Name,
		Intervals: nonNilSlice(r.Intervals),
		Modes:     nonNilSlice(r.Modes),
		Builtin:   r.Builtin,
		Source:    r.Source,
		UpdatedAt: r.UpdatedAt,
	}
}

func details(rows []store.FamilyRow) []FamilyDetail {
	out := make([]FamilyDetail, len(rows))
	for i, r := range rows {
		out[i] = detail(r)
	}
	return out
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

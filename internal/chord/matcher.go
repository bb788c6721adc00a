package chord

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/scalesmith/internal/apperr"
	"github.com/starford/scalesmith/internal/interval"
)

// ErrDegreeOutOfRange is returned when the requested degree is not a degree
// of the scale.
var ErrDegreeOutOfRange = errors.New("chord: scale degree out of range")

// Query describes one matching request.
type Query struct {
	// Intervals are the degree-to-degree gaps of the scale in its current
	// mode; index 0 is the tonic of that mode.
	Intervals []int
	Degree    int
	// NoteNames label each degree; they are only used for output text.
	NoteNames []string
	Level     Level
	Symbology Symbology
}

// Label is one line of a degree annotation.
type Label struct {
	Text    string `json:"text"`
	Tooltip string `json:"tooltip"`
	// Chord is the raw catalog name, empty for the bare note and fallback labels.
	Chord    string `json:"chord,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
}

// Result is the annotation of one scale degree.
type Result struct {
	Degree int    `json:"degree"`
	Note   string `json:"note"`
	// Positions are the relative chord-tone positions from the degree,
	// including any value of 12 or more.
	Positions []int   `json:"positions"`
	Labels    []Label `json:"labels"`
}

// Matches returns the chord labels, without the leading bare note label.
func (r *Result) Matches() []Label {
	if len(r.Labels) <= 1 {
		return nil
	}
	return r.Labels[1:]
}

// ChordNames returns the raw names of every matched chord in order.
func (r *Result) ChordNames() []string {
	var out []string
	for _, l := range r.Labels {
		if l.Chord != "" {
			out = append(out, l.Chord)
		}
	}
	return out
}

// Matcher names the chords available at a scale degree. It holds no mutable
// state and is safe for concurrent use.
type Matcher struct {
	catalog *Catalog
}

// NewMatcher returns a Matcher reading from catalog.
func NewMatcher(catalog *Catalog) *Matcher {
	return &Matcher{catalog: catalog}
}

// Catalog returns the catalog the matcher reads from.
func (m *Matcher) Catalog() *Catalog {
	return m.catalog
}

// Match annotates q.Degree of the scale described by q. Every chord whose
// interval set is contained in the degree's relative positions is reported,
// in catalog order. When nothing matches, a fallback label lists the
// positions below the octave.
func (m *Matcher) Match(q Query) (*Result, error) {
	if err := m.validate(q); err != nil {
		return nil, err
	}
	note := q.NoteNames[q.Degree]
	positions := interval.RelativePositions(q.Intervals, q.Degree)
	res := &Result{
		Degree:    q.Degree,
		Note:      note,
		Positions: positions,
		Labels:    []Label{{Text: note}},
	}
	if q.Level == LevelOff {
		return res, nil
	}

	entries, err := m.catalog.ForLevel(q.Level)
	if err != nil {
		return nil, err
	}
	available := interval.FromPositions(positions)
	for _, e := range entries {
		if !e.Set.SubsetOf(available) {
			continue
		}
		for _, ch := range e.Chords {
			res.Labels = append(res.Labels, Label{
				Text:    q.Symbology.Format(ch.Name),
				Tooltip: strings.Join(ch.Derivations, "\n"),
				Chord:   ch.Name,
			})
		}
	}
	if len(res.Labels) == 1 {
		res.Labels = append(res.Labels, Label{
			Text:     fallbackText(note, positions),
			Fallback: true,
		})
	}
	return res, nil
}

func (m *Matcher) validate(q Query) error {
	if !q.Level.Valid() {
		return fmt.Errorf("chord: invalid level %d: %w", int(q.Level), apperr.ErrInvalidArgument)
	}
	if !q.Symbology.Valid() {
		return fmt.Errorf("chord: invalid symbology %d: %w", int(q.Symbology), apperr.ErrInvalidArgument)
	}
	if err := interval.ValidateGaps(q.Intervals); err != nil {
		return fmt.Errorf("%w: %w", err, apperr.ErrInvalidArgument)
	}
	if q.Degree < 0 || q.Degree >= len(q.Intervals) {
		return fmt.Errorf("%w: degree %d of %d: %w", ErrDegreeOutOfRange, q.Degree, len(q.Intervals), apperr.ErrInvalidArgument)
	}
	if len(q.NoteNames) != len(q.Intervals) {
		return fmt.Errorf("chord: %d note names for %d degrees: %w", len(q.NoteNames), len(q.Intervals), apperr.ErrInvalidArgument)
	}
	return nil
}

// fallbackText renders "<note>: [0, 2, 5]" from the positions below the octave.
func fallbackText(note string, positions []int) string {
	below := interval.Below(positions, interval.Octave)
	parts := make([]string, len(below))
	for i, p := range below {
		parts[i] = strconv.Itoa(p)
	}
	return note + ": [" + strings.Join(parts, ", ") + "]"
}

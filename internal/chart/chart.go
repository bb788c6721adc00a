// Package chart assembles the per-degree chord annotations of a scale, the
// data a circular chromatic chart is drawn from.
package chart

import (
	"fmt"
	"strings"

	"github.com/starford/scalesmith/internal/chord"
	"github.com/starford/scalesmith/internal/scale"
)

// Degree is the annotation of one scale degree.
type Degree struct {
	Index int    `json:"index"`
	Note  string `json:"note"`
	// Position is the semitone distance from the tonic of the mode.
	Position int           `json:"position"`
	Labels   []chord.Label `json:"labels"`
}

// Chart is a fully annotated scale.
type Chart struct {
	Family    string          `json:"family"`
	Mode      string          `json:"mode"`
	Key       string          `json:"key"`
	Level     chord.Level     `json:"level"`
	Symbology chord.Symbology `json:"symbology"`
	Intervals []int           `json:"intervals"`
	Positions []int           `json:"positions"`
	Degrees   []Degree        `json:"degrees"`
	Legend    []string        `json:"legend,omitempty"`
}

// Build annotates every degree of s in its current mode.
func Build(s *scale.Scale, m *chord.Matcher, level chord.Level, sym chord.Symbology) (*Chart, error) {
	gaps := s.ModeIntervals()
	notes := s.NoteNames()
	positions := s.Positions()
	c := &Chart{
		Family:    s.Family().Name,
		Mode:      s.ModeName(),
		Key:       s.KeyName(),
		Level:     level,
		Symbology: sym,
		Intervals: gaps,
		Positions: positions,
		Degrees:   make([]Degree, 0, len(gaps)),
		Legend:    sym.Legend(),
	}
	for i := range gaps {
		d, err := annotate(m, gaps, notes, i, level, sym)
		if err != nil {
			return nil, err
		}
		d.Position = positions[i]
		c.Degrees = append(c.Degrees, d)
	}
	return c, nil
}

// BuildDegree annotates a single degree of s.
func BuildDegree(s *scale.Scale, m *chord.Matcher, degree int, level chord.Level, sym chord.Symbology) (*Degree, error) {
	d, err := annotate(m, s.ModeIntervals(), s.NoteNames(), degree, level, sym)
	if err != nil {
		return nil, err
	}
	d.Position = s.Positions()[degree]
	return &d, nil
}

func annotate(m *chord.Matcher, gaps []int, notes []string, degree int, level chord.Level, sym chord.Symbology) (Degree, error) {
	res, err := m.Match(chord.Query{
		Intervals: gaps,
		Degree:    degree,
		NoteNames: notes,
		Level:     level,
		Symbology: sym,
	})
	if err != nil {
		return Degree{}, fmt.Errorf("chart: degree %d: %w", degree, err)
	}
	return Degree{Index: degree, Note: res.Note, Labels: res.Labels}, nil
}

// Text renders the chart as plain text: a header line, then one line per
// degree with its note and chord labels, then the legend.
func (c *Chart) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, %s, key %s (%s, %s)\n", c.Family, c.Mode, c.Key, c.Level, c.Symbology)
	for _, d := range c.Degrees {
		chords := make([]string, 0, len(d.Labels))
		for _, l := range d.Labels[1:] {
			chords = append(chords, l.Text)
		}
		line := "(none)"
		if len(chords) > 0 {
			line = strings.Join(chords, ", ")
		}
		fmt.Fprintf(&b, "%d. %s: %s\n", d.Index+1, d.Note, line)
	}
	for _, l := range c.Legend {
		fmt.Fprintf(&b, "  %s\n", l)
	}
	return strings.TrimRight(b.String(), "\n")
}

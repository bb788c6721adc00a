// Package midi turns a keyed scale into practice note sequences and writes
// them as Standard MIDI Files.
package midi

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/starford/scalesmith/internal/apperr"
	"github.com/starford/scalesmith/internal/scale"
)

// Pattern selects one practice figure. Patterns combine as a bit set and are
// always played in declaration order.
type Pattern uint8

const (
	LinearUp Pattern = 1 << iota
	LinearDown
	PatternUp
	PatternDown
	ArpeggioUp
	ArpeggioDown
)

var patternNames = []struct {
	p    Pattern
	name string
}{
	{LinearUp, "linear-up"},
	{LinearDown, "linear-down"},
	{PatternUp, "pattern-up"},
	{PatternDown, "pattern-down"},
	{ArpeggioUp, "arpeggio-up"},
	{ArpeggioDown, "arpeggio-down"},
}

// ErrNoKey is returned when a scale without a key is sequenced.
var ErrNoKey = errors.New("midi: scale has no key")

// MaxOctaves is the largest supported run.
const MaxOctaves = 3

// Tempo bounds in BPM. Below MinTempo a quarter note no longer fits the
// 24-bit tempo meta event.
const (
	MinTempo = 4
	MaxTempo = 1000
)

// ParsePatterns reads a comma separated list such as "linear-up,arpeggio-down".
// An empty string selects LinearUp.
func ParsePatterns(s string) (Pattern, error) {
	if strings.TrimSpace(s) == "" {
		return LinearUp, nil
	}
	var out Pattern
	for _, tok := range strings.Split(s, ",") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		found := false
		for _, pn := range patternNames {
			if pn.name == tok {
				out |= pn.p
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("midi: unknown pattern %q: %w", tok, apperr.ErrInvalidArgument)
		}
	}
	return out, nil
}

func (p Pattern) String() string {
	var parts []string
	for _, pn := range patternNames {
		if p&pn.p != 0 {
			parts = append(parts, pn.name)
		}
	}
	return strings.Join(parts, ",")
}

// Sequence returns the MIDI note numbers for the selected patterns over the
// given number of octaves, starting from the key in the octave of middle C.
func Sequence(s *scale.Scale, octaves int, patterns Pattern) ([]uint8, error) {
	key, ok := s.Key()
	if !ok {
		return nil, fmt.Errorf("%w: %w", ErrNoKey, apperr.ErrInvalidArgument)
	}
	if octaves < 1 || octaves > MaxOctaves {
		return nil, fmt.Errorf("midi: octaves %d outside 1..%d: %w", octaves, MaxOctaves, apperr.ErrInvalidArgument)
	}
	positions := s.Positions()
	n := s.NumDegrees()
	base := int(scale.MIDINote(key))
	at := func(i int) uint8 {
		return uint8(base + 12*(i/n) + positions[i%n])
	}
	count := n*octaves + 1
	top := count - 1

	var out []uint8
	if patterns&LinearUp != 0 {
		for i := 0; i < count; i++ {
			out = append(out, at(i))
		}
	}
	if patterns&LinearDown != 0 {
		for i := top; i >= 0; i-- {
			out = append(out, at(i))
		}
	}
	if patterns&PatternUp != 0 {
		for i := 0; i < count; i++ {
			out = append(out, at(i))
			if i < top {
				out = append(out, at(i+2))
			}
		}
	}
	if patterns&PatternDown != 0 {
		for i := top; i >= 0; i-- {
			out = append(out, at(i+2), at(i))
		}
	}
	if patterns&ArpeggioUp != 0 {
		for i := 0; i < count; i++ {
			out = append(out, at(i), at(i+2), at(i+4))
		}
	}
	if patterns&ArpeggioDown != 0 {
		for i := top; i >= 0; i-- {
			out = append(out, at(i+4), at(i+2), at(i))
		}
	}
	return out, nil
}

// Options control the rendered file.
type Options struct {
	Tempo    float64
	Program  uint8
	Velocity uint8
}

// DefaultOptions returns a 120 BPM piano rendering.
func DefaultOptions() Options {
	return Options{Tempo: 120, Program: 0, Velocity: 100}
}

// WriteSMF writes notes as a single-track Standard MIDI File, one quarter
// note per entry on channel 0.
func WriteSMF(w io.Writer, notes []uint8, opts Options) error {
	if math.IsNaN(opts.Tempo) || opts.Tempo < MinTempo || opts.Tempo > MaxTempo {
		return fmt.Errorf("midi: tempo %v outside %d..%d: %w", opts.Tempo, MinTempo, MaxTempo, apperr.ErrInvalidArgument)
	}
	if opts.Program > 127 || opts.Velocity > 127 {
		return fmt.Errorf("midi: program and velocity must be 0..127: %w", apperr.ErrInvalidArgument)
	}
	if opts.Velocity == 0 {
		opts.Velocity = DefaultOptions().Velocity
	}

	clock := smf.MetricTicks(960)
	s := smf.New()
	s.TimeFormat = clock

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(opts.Tempo))
	tr.Add(0, gomidi.ProgramChange(0, opts.Program))
	for _, n := range notes {
		tr.Add(0, gomidi.NoteOn(0, n, opts.Velocity))
		tr.Add(clock.Ticks4th(), gomidi.NoteOff(0, n))
	}
	tr.Close(0)

	if err := s.Add(tr); err != nil {
		return fmt.Errorf("midi: add track: %w", err)
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("midi: write: %w", err)
	}
	return nil
}

package scale

import (
	"errors"
	"fmt"
	"strings"

	"github.com/starford/scalesmith/internal/apperr"
	"github.com/starford/scalesmith/internal/interval"
)

// ErrUnknownKey is returned for a key name that is not a chromatic note.
var ErrUnknownKey = errors.New("scale: unknown key")

// NoKey is the key name of a scale shown in roman numerals.
const NoKey = "none"

var keyNames = [interval.Octave]string{
	"C", "C#/Db", "D", "D#/Eb", "E", "F", "F#/Gb", "G", "G#/Ab", "A", "A#/Bb", "B",
}

var romanNumerals = [interval.Octave]string{
	"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X", "XI", "XII",
}

var (
	letterClasses = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}
	accidentals   = strings.NewReplacer("♯", "#", "♭", "b")
)

// Keys returns the twelve chromatic key names starting at C.
func Keys() []string {
	return append([]string(nil), keyNames[:]...)
}

// KeyName returns the display name of pitch class pc.
func KeyName(pc int) string {
	return keyNames[interval.Mod(pc)]
}

// PitchClass parses a note name into a pitch class (C = 0). It accepts
// "C#", "Db", "C♯", "D♭", the combined "C#/Db" form and lower-case letters.
func PitchClass(name string) (int, error) {
	s := strings.TrimSpace(name)
	if s == "" {
		return 0, fmt.Errorf("%w: empty note: %w", ErrUnknownKey, apperr.ErrInvalidArgument)
	}
	if i := strings.IndexByte(s, '/'); i > 0 {
		s = s[:i]
	}
	s = accidentals.Replace(s)
	pc, ok := letterClasses[strings.ToUpper(s[:1])[0]]
	if !ok {
		return 0, fmt.Errorf("%w: %q: %w", ErrUnknownKey, name, apperr.ErrInvalidArgument)
	}
	for _, acc := range s[1:] {
		switch acc {
		case '#':
			pc++
		case 'b':
			pc--
		default:
			return 0, fmt.Errorf("%w: %q: %w", ErrUnknownKey, name, apperr.ErrInvalidArgument)
		}
	}
	return interval.Mod(pc), nil
}

// MIDINote returns the MIDI note number of the key in the octave of middle C.
func MIDINote(pc int) uint8 {
	return uint8(60 + interval.Mod(pc))
}

// Scale is a family shown in one mode, optionally rooted on a key.
type Scale struct {
	family Family
	mode   int
	key    int
	hasKey bool
}

// New returns the first mode of family with no key. The family is validated
// and copied.
func New(family Family) (*Scale, error) {
	f := family.Clone()
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", err, apperr.ErrInvalidArgument)
	}
	return &Scale{family: f}, nil
}

// Family returns a copy of the scale's family.
func (s *Scale) Family() Family {
	return s.family.Clone()
}

// Mode returns the index of the current mode.
func (s *Scale) Mode() int {
	return s.mode
}

// ModeName returns the name of the current mode.
func (s *Scale) ModeName() string {
	return s.family.Modes[s.mode]
}

// SetMode selects a mode by name.
func (s *Scale) SetMode(name string) error {
	i, ok := s.family.ModeIndex(name)
	if !ok {
		return fmt.Errorf("%w: %q in %q: %w", ErrUnknownMode, name, s.family.Name, apperr.ErrInvalidArgument)
	}
	s.mode = i
	return nil
}

// SetModeIndex selects a mode by index.
func (s *Scale) SetModeIndex(i int) error {
	if i < 0 || i >= len(s.family.Modes) {
		return fmt.Errorf("%w: index %d in %q: %w", ErrUnknownMode, i, s.family.Name, apperr.ErrInvalidArgument)
	}
	s.mode = i
	return nil
}

// SetKey roots the scale on a key. An empty name or "none" clears the key.
func (s *Scale) SetKey(name string) error {
	if name == "" || strings.EqualFold(name, NoKey) {
		s.hasKey = false
		s.key = 0
		return nil
	}
	pc, err := PitchClass(name)
	if err != nil {
		return err
	}
	s.key = pc
	s.hasKey = true
	return nil
}

// Key returns the key's pitch class and whether a key is set.
func (s *Scale) Key() (int, bool) {
	return s.key, s.hasKey
}

// KeyName returns the key's display name, or "none".
func (s *Scale) KeyName() string {
	if !s.hasKey {
		return NoKey
	}
	return KeyName(s.key)
}

// NumDegrees returns the number of notes per octave.
func (s *Scale) NumDegrees() int {
	return s.family.NumDegrees()
}

// ModeIntervals returns the gap sequence of the current mode.
func (s *Scale) ModeIntervals() []int {
	return s.family.ModeIntervals(s.mode)
}

// Positions returns the semitone position of every degree of the current
// mode, closed by the octave.
func (s *Scale) Positions() []int {
	return interval.Cumulative(s.ModeIntervals())
}

// NoteNames labels each degree: chromatic names from the key when one is
// set, roman numerals otherwise.
func (s *Scale) NoteNames() []string {
	n := s.NumDegrees()
	out := make([]string, n)
	if !s.hasKey {
		for i := range out {
			out[i] = romanNumerals[i%interval.Octave]
		}
		return out
	}
	for i, p := range s.Positions()[:n] {
		out[i] = KeyName(s.key + p)
	}
	return out
}

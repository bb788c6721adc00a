// Package scale models scale families, their modes and keys, and finds the
// family and mode that fit a collection of notes.
package scale

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/scalesmith/internal/interval"
)

// Family is a scale family: the gap sequence of its first mode and the names
// of its modes. Mode i starts on degree i of the first mode.
type Family struct {
	Name      string   `yaml:"name" json:"name"`
	Intervals []int    `yaml:"intervals" json:"intervals"`
	Modes     []string `yaml:"modes" json:"modes"`
}

// Validate checks that the family describes an octave-repeating scale.
func (f *Family) Validate() error {
	if err := validation.ValidateStruct(f,
		validation.Field(&f.Name, validation.Required),
		validation.Field(&f.Intervals, validation.Required, validation.By(validGaps)),
		validation.Field(&f.Modes, validation.Required, validation.Length(1, len(f.Intervals)), validation.Each(validation.Required)),
	); err != nil {
		return fmt.Errorf("scale %q: %w", f.Name, err)
	}
	sum := 0
	for _, g := range f.Intervals {
		sum += g
	}
	if sum != interval.Octave {
		return fmt.Errorf("scale %q: intervals sum to %d, want %d", f.Name, sum, interval.Octave)
	}
	seen := make(map[string]struct{}, len(f.Modes))
	for _, m := range f.Modes {
		if _, ok := seen[m]; ok {
			return fmt.Errorf("scale %q: duplicate mode %q", f.Name, m)
		}
		seen[m] = struct{}{}
	}
	return nil
}

func validGaps(v interface{}) error {
	gaps, _ := v.([]int)
	return interval.ValidateGaps(gaps)
}

// NumDegrees returns the number of notes per octave.
func (f *Family) NumDegrees() int {
	return len(f.Intervals)
}

// ModeIntervals returns the gap sequence of mode i.
func (f *Family) ModeIntervals(mode int) []int {
	return interval.Rotate(f.Intervals, mode)
}

// ModeIndex returns the index of the named mode.
func (f *Family) ModeIndex(name string) (int, bool) {
	for i, m := range f.Modes {
		if m == name {
			return i, true
		}
	}
	return 0, false
}

// Clone returns a deep copy of f.
func (f Family) Clone() Family {
	return Family{
		Name:      f.Name,
		Intervals: append([]int(nil), f.Intervals...),
		Modes:     append([]string(nil), f.Modes...),
	}
}

// ErrUnknownMode is returned for a mode name or index the family lacks.
var ErrUnknownMode = errors.New("scale: unknown mode")

// DefaultFamilies returns the built-in scale families in display order.
func DefaultFamilies() []Family {
	out := make([]Family, len(defaultFamilies))
	for i, f := range defaultFamilies {
		out[i] = f.Clone()
	}
	return out
}

var defaultFamilies = []Family{
	{
		Name:      "Diatonic",
		Intervals: []int{2, 2, 1, 2, 2, 2, 1},
		Modes:     []string{"Ionian - Major", "Dorian", "Phrygain", "Lydian", "Mixolydian", "Aeolian - Natural Minor", "Locrian"},
	},
	{
		Name:      "Ascending Melodic Minor",
		Intervals: []int{2, 1, 2, 2, 2, 2, 1},
		Modes:     []string{"Dorian #7", "Phrygain #6", "Lydian #5", "Mixolydian #4", "Aeolian #3", "Locrian #2", "Ionian #1 - The Altered Scale"},
	},
	{
		Name:      "Harmonic Minor",
		Intervals: []int{2, 1, 2, 2, 1, 3, 1},
		Modes:     []string{"Aeolian #7", "Locrian #6", "Ionian #5", "Dorian #4", "Phrygain #3", "Lydian #2", "Mixolydian #1 - Super Locrian"},
	},
	{
		Name:      "Harmonic Major",
		Intervals: []int{2, 2, 1, 2, 1, 3, 1},
		Modes:     []string{"Ionian b6", "Dorian b5", "Phrygain b4", "Lydian b3", "Mixolydian b2", "Aeolian b1", "Locrian b7"},
	},
	{
		Name:      "Diminished",
		Intervals: []int{2, 1, 2, 1, 2, 1, 2, 1},
		Modes:     []string{"Diminished", "Inverted Diminished"},
	},
	{
		Name:      "Whole Tone",
		Intervals: []int{2, 2, 2, 2, 2, 2},
		Modes:     []string{"Whole Tone"},
	},
	{
		Name:      "Augmented",
		Intervals: []int{3, 1, 3, 1, 3, 1},
		Modes:     []string{"Augmented", "Inverted Augmented"},
	},
	{
		Name:      "Double Harmonic Major",
		Intervals: []int{1, 3, 1, 2, 1, 3, 1},
		Modes:     []string{"Bizantine", "Lydian #2 #6", "Ultraphrygain", "Hungarian Minor", "Oriental", "Ionian ♯2 ♯5", "Locrian bb3 bb7"},
	},
	{
		Name:      "Eight step scale",
		Intervals: []int{2, 3, 1, 1, 2, 1, 1, 1},
		Modes:     []string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII"},
	},
}

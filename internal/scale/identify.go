package scale

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/starford/scalesmith/internal/apperr"
	"github.com/starford/scalesmith/internal/interval"
)

// nearestLimit caps the number of ranked candidates returned when no exact
// match exists.
const nearestLimit = 5

// Candidate is a family and mode that spell the notes from the given key.
type Candidate struct {
	Family     string  `json:"family"`
	Mode       string  `json:"mode"`
	ModeIndex  int     `json:"mode_index"`
	Similarity float64 `json:"similarity"`
}

// Identification is the outcome of Identify.
type Identification struct {
	Key       string      `json:"key"`
	Intervals []int       `json:"intervals"`
	Exact     []Candidate `json:"exact"`
	Nearest   []Candidate `json:"nearest,omitempty"`
}

// Identify finds the families and modes whose gap sequence equals that of
// notes, taking the first note as the key. Duplicate and octave-equivalent
// notes collapse. When nothing matches exactly, Nearest ranks every mode by
// the cosine similarity of pitch-class profiles.
func Identify(notes []string, families []Family) (*Identification, error) {
	if len(notes) == 0 {
		return nil, fmt.Errorf("scale: no notes to identify: %w", apperr.ErrInvalidArgument)
	}
	key, err := PitchClass(notes[0])
	if err != nil {
		return nil, err
	}
	rel := make([]int, 0, len(notes))
	for _, n := range notes {
		pc, err := PitchClass(n)
		if err != nil {
			return nil, err
		}
		rel = append(rel, pc-key)
	}
	set := interval.Normalize(rel)
	gaps := gapsOf(set)

	out := &Identification{Key: KeyName(key), Intervals: gaps}
	target := profile(set)
	var ranked []Candidate
	for _, f := range families {
		for mi, mode := range f.Modes {
			modeGaps := f.ModeIntervals(mi)
			if equalInts(modeGaps, gaps) {
				out.Exact = append(out.Exact, Candidate{Family: f.Name, Mode: mode, ModeIndex: mi, Similarity: 1})
				continue
			}
			ranked = append(ranked, Candidate{
				Family:     f.Name,
				Mode:       mode,
				ModeIndex:  mi,
				Similarity: cosine(target, profile(interval.FromPositions(interval.Cumulative(modeGaps)))),
			})
		}
	}
	if len(out.Exact) > 0 {
		return out, nil
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})
	if len(ranked) > nearestLimit {
		ranked = ranked[:nearestLimit]
	}
	out.Nearest = ranked
	return out, nil
}

// gapsOf turns a pitch-class set into the gap sequence that closes at the
// octave.
func gapsOf(set interval.Set) []int {
	vals := append(set.Values(), interval.Octave)
	gaps := make([]int, len(vals)-1)
	for i := range gaps {
		gaps[i] = vals[i+1] - vals[i]
	}
	return gaps
}

func profile(set interval.Set) []float64 {
	v := make([]float64, interval.Octave)
	for _, pc := range set.Values() {
		v[pc] = 1
	}
	return v
}

func cosine(a, b []float64) float64 {
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

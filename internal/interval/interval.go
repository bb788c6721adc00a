// Package interval implements the semitone arithmetic shared by scales and chords:
// modulo-12 reduction, cyclic rotation of gap sequences and accumulation into
// relative positions.
package interval

import (
	"errors"
	"fmt"
)

// Octave is the number of semitones in an octave.
const Octave = 12

var (
	ErrEmptyGaps = errors.New("interval: gap sequence is empty")
	ErrBadGap    = errors.New("interval: gaps must be positive")
)

// Mod reduces x into [0, 12), also for negative x.
func Mod(x int) int {
	return ((x % Octave) + Octave) % Octave
}

// ValidateGaps reports whether gaps is a usable degree-to-degree gap sequence.
func ValidateGaps(gaps []int) error {
	if len(gaps) == 0 {
		return ErrEmptyGaps
	}
	for i, g := range gaps {
		if g < 1 {
			return fmt.Errorf("%w: gap %d is %d", ErrBadGap, i, g)
		}
	}
	return nil
}

// Rotate returns gaps cyclically rotated left by n. n may be negative or
// larger than len(gaps). The input is not modified.
func Rotate(gaps []int, n int) []int {
	out := make([]int, len(gaps))
	if len(gaps) == 0 {
		return out
	}
	l := len(gaps)
	shift := ((n % l) + l) % l
	for i := range out {
		out[i] = gaps[(i+shift)%l]
	}
	return out
}

// Cumulative prepends 0 to gaps and returns the running sum, so the result
// has len(gaps)+1 entries.
func Cumulative(gaps []int) []int {
	out := make([]int, len(gaps)+1)
	for i, g := range gaps {
		out[i+1] = out[i] + g
	}
	return out
}

// RelativePositions returns the semitone distance from the given degree to
// every following degree of the scale, starting at 0. For an octave-repeating
// scale the last entry is 12.
func RelativePositions(gaps []int, degree int) []int {
	l := len(gaps)
	out := make([]int, l+1)
	for i := 0; i < l; i++ {
		out[i+1] = out[i] + gaps[(i+degree)%l]
	}
	return out
}

// Below returns the values of positions that are strictly less than limit,
// preserving order.
func Below(positions []int, limit int) []int {
	out := make([]int, 0, len(positions))
	for _, p := range positions {
		if p < limit {
			out = append(out, p)
		}
	}
	return out
}

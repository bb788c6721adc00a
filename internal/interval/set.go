package interval

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrMalformedSet is returned by NewSet for keys that are not canonical.
var ErrMalformedSet = errors.New("interval: malformed interval set")

// Set is an interval set: distinct semitone offsets in [0, 11] relative to a
// root at 0. Bit i is set when offset i is present. The zero value is the
// empty set.
type Set uint16

// NewSet builds a Set from a canonical key. The key must be non-empty, sorted,
// free of duplicates, within [0, 11] and must contain 0. Nothing is
// normalised; a key that breaks any rule is an error.
func NewSet(values ...int) (Set, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("%w: empty", ErrMalformedSet)
	}
	if err := validation.Validate(values,
		validation.Each(validation.Min(0), validation.Max(Octave-1)),
	); err != nil {
		return 0, fmt.Errorf("%w: %v: %s", ErrMalformedSet, values, err.Error())
	}
	var s Set
	for i, v := range values {
		if s.Contains(v) {
			return 0, fmt.Errorf("%w: %v: duplicate %d", ErrMalformedSet, values, v)
		}
		if i > 0 && v < values[i-1] {
			return 0, fmt.Errorf("%w: %v: not sorted", ErrMalformedSet, values)
		}
		s |= 1 << uint(v)
	}
	if !s.Contains(0) {
		return 0, fmt.Errorf("%w: %v: missing root 0", ErrMalformedSet, values)
	}
	return s, nil
}

// MustSet is NewSet for literal tables; it panics on a malformed key.
func MustSet(values ...int) Set {
	s, err := NewSet(values...)
	if err != nil {
		panic(err)
	}
	return s
}

// Normalize reduces arbitrary semitone values mod 12, drops duplicates and
// always includes the root. Use it for user input, never for catalog keys.
func Normalize(values []int) Set {
	s := Set(1)
	for _, v := range values {
		s |= 1 << uint(Mod(v))
	}
	return s
}

// FromPositions collects relative positions into a Set, ignoring values
// outside [0, 11].
func FromPositions(positions []int) Set {
	var s Set
	for _, p := range positions {
		if p >= 0 && p < Octave {
			s |= 1 << uint(p)
		}
	}
	return s
}

// Contains reports whether offset v is in the set.
func (s Set) Contains(v int) bool {
	if v < 0 || v >= Octave {
		return false
	}
	return s&(1<<uint(v)) != 0
}

// SubsetOf reports whether every offset of s is also in other.
func (s Set) SubsetOf(other Set) bool {
	return s&^other == 0
}

// Len returns the number of offsets in the set.
func (s Set) Len() int {
	return bits.OnesCount16(uint16(s))
}

// Values returns the offsets in ascending order.
func (s Set) Values() []int {
	out := make([]int, 0, s.Len())
	for v := 0; v < Octave; v++ {
		if s.Contains(v) {
			out = append(out, v)
		}
	}
	return out
}

// String renders the set as "(0, 4, 7)".
func (s Set) String() string {
	vals := s.Values()
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// MarshalJSON encodes the set as an array of offsets.
func (s Set) MarshalJSON() ([]byte, error) {
	vals := s.Values()
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return []byte("[" + strings.Join(parts, ",") + "]"), nil
}

// UnmarshalJSON decodes an array of offsets, validating it like NewSet.
func (s *Set) UnmarshalJSON(b []byte) error {
	var vals []int
	if err := json.Unmarshal(b, &vals); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedSet, err)
	}
	set, err := NewSet(vals...)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

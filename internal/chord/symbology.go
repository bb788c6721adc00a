package chord

import (
	"fmt"
	"strings"

	"github.com/starford/scalesmith/internal/apperr"
)

// Symbology is a display-only rewrite of the mnemonic tokens in chord names.
// It never changes which chords match.
type Symbology int

const (
	SymbologyRaw Symbology = iota
	SymbologyCommon
	SymbologyJazz
)

var symbologyNames = [...]string{"raw", "common", "jazz"}

var (
	commonReplacer = strings.NewReplacer("sev", "⁷")
	jazzReplacer   = strings.NewReplacer(
		"dim", "°",
		"aug", "+",
		"sev", "⁷",
		"maj", "Δ",
		"min", "−",
	)
)

// Symbologies lists every valid symbology in order.
func Symbologies() []Symbology {
	return []Symbology{SymbologyRaw, SymbologyCommon, SymbologyJazz}
}

// Valid reports whether s is one of the defined symbologies.
func (s Symbology) Valid() bool {
	return s >= SymbologyRaw && s <= SymbologyJazz
}

func (s Symbology) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Symbology(%d)", int(s))
	}
	return symbologyNames[s]
}

// Format rewrites a raw chord name for display.
func (s Symbology) Format(name string) string {
	switch s {
	case SymbologyCommon:
		return commonReplacer.Replace(name)
	case SymbologyJazz:
		return jazzReplacer.Replace(name)
	default:
		return name
	}
}

// Legend returns the key printed next to a chart drawn in this symbology,
// one line per substituted token. RAW has no legend.
func (s Symbology) Legend() []string {
	switch s {
	case SymbologyCommon:
		return []string{"7 = dom 7th chord"}
	case SymbologyJazz:
		return []string{"Δ = maj", "− = min", "+ = aug", "7 = dom 7th"}
	default:
		return nil
	}
}

// ParseSymbology accepts a symbology name, case-insensitively.
func ParseSymbology(s string) (Symbology, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, name := range symbologyNames {
		if key == name {
			return Symbology(i), nil
		}
	}
	return 0, fmt.Errorf("chord: unknown symbology %q: %w", s, apperr.ErrInvalidArgument)
}

// MarshalText implements encoding.TextMarshaler.
func (s Symbology) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("chord: invalid symbology %d: %w", int(s), apperr.ErrInvalidArgument)
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Symbology) UnmarshalText(b []byte) error {
	v, err := ParseSymbology(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

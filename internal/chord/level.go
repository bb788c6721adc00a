package chord

import (
	"fmt"
	"strings"

	"github.com/starford/scalesmith/internal/apperr"
)

// Level selects how much of the catalog is searched.
type Level int

// Richness levels in increasing order. Every level's catalog contains the
// catalog of the levels below it.
const (
	LevelOff Level = iota
	LevelBasic
	LevelAdvanced
	LevelAll
)

var levelNames = [...]string{"off", "basic", "advanced", "all"}

// Levels lists every valid level in order.
func Levels() []Level {
	return []Level{LevelOff, LevelBasic, LevelAdvanced, LevelAll}
}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool {
	return l >= LevelOff && l <= LevelAll
}

func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel accepts a level name, case-insensitively.
func ParseLevel(s string) (Level, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, name := range levelNames {
		if key == name {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("chord: unknown level %q: %w", s, apperr.ErrInvalidArgument)
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("chord: invalid level %d: %w", int(l), apperr.ErrInvalidArgument)
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(b []byte) error {
	v, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

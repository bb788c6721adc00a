// Package stradella reads the accordion-bass notation used by chord
// derivations, e.g. "R_, maj-3, (sev+2)".
//
// The first token names the bass button: R is the root, R_ the counter-bass
// row 8 semitones away, either one optionally shifted by ±N semitones. Every
// following token is a chord button (maj, min, sev or dim) optionally moved
// N rows: "-N" is N fourths, "+N" is N fifths. A button in parentheses is
// optional.
package stradella

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/starford/scalesmith/internal/interval"
)

// ErrSyntax is returned for derivations that do not follow the notation.
var ErrSyntax = errors.New("stradella: invalid derivation")

// CounterBassOffset is the semitone offset of the R_ token.
const CounterBassOffset = 8

// Button is a chord button on the accordion bass.
type Button string

const (
	Major      Button = "maj"
	Minor      Button = "min"
	Seventh    Button = "sev"
	Diminished Button = "dim"
)

var buttonNotes = map[Button][3]int{
	Major:      {0, 4, 7},
	Minor:      {0, 3, 7},
	Seventh:    {0, 4, 10},
	Diminished: {0, 3, 9},
}

// Notes returns the button's three sounding intervals.
func (b Button) Notes() [3]int {
	return buttonNotes[b]
}

// Press is one chord button in a derivation.
type Press struct {
	Button Button `json:"button"`
	// Rows is the row shift: negative values move by fourths, positive by fifths.
	Rows     int  `json:"rows"`
	Optional bool `json:"optional,omitempty"`
}

// Semitones returns the transposition of the button relative to the bass row.
func (p Press) Semitones() int {
	if p.Rows < 0 {
		return -5 * p.Rows
	}
	return 7 * p.Rows
}

func (p Press) String() string {
	s := string(p.Button)
	switch {
	case p.Rows < 0:
		s += "-" + strconv.Itoa(-p.Rows)
	case p.Rows > 0:
		s += "+" + strconv.Itoa(p.Rows)
	}
	if p.Optional {
		s = "(" + s + ")"
	}
	return s
}

// Derivation is the structured form of a derivation string.
type Derivation struct {
	CounterBass bool    `json:"counter_bass"`
	Shift       int     `json:"shift"`
	Presses     []Press `json:"presses"`
}

// Parse reads a derivation string.
func Parse(s string) (Derivation, error) {
	tokens := strings.Split(s, ",")
	if len(tokens) < 2 {
		return Derivation{}, fmt.Errorf("%w: %q: need a bass and at least one button", ErrSyntax, s)
	}
	d, err := parseRoot(strings.TrimSpace(tokens[0]))
	if err != nil {
		return Derivation{}, fmt.Errorf("%w: %q: %v", ErrSyntax, s, err)
	}
	for _, tok := range tokens[1:] {
		p, err := parsePress(strings.TrimSpace(tok))
		if err != nil {
			return Derivation{}, fmt.Errorf("%w: %q: %v", ErrSyntax, s, err)
		}
		d.Presses = append(d.Presses, p)
	}
	return d, nil
}

// MustParse is Parse for literals.
func MustParse(s string) Derivation {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func parseRoot(tok string) (Derivation, error) {
	var d Derivation
	if !strings.HasPrefix(tok, "R") {
		return d, fmt.Errorf("bass %q must start with R", tok)
	}
	rest := tok[1:]
	if strings.HasPrefix(rest, "_") {
		d.CounterBass = true
		rest = rest[1:]
	}
	if rest == "" {
		return d, nil
	}
	if rest[0] != '+' && rest[0] != '-' {
		return d, fmt.Errorf("bass %q: unexpected %q", tok, rest)
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return d, fmt.Errorf("bass %q: %v", tok, err)
	}
	d.Shift = n
	return d, nil
}

func parsePress(tok string) (Press, error) {
	var p Press
	if strings.HasPrefix(tok, "(") {
		if !strings.HasSuffix(tok, ")") {
			return p, fmt.Errorf("button %q: unbalanced parenthesis", tok)
		}
		p.Optional = true
		tok = strings.TrimSpace(tok[1 : len(tok)-1])
	}
	if len(tok) < 3 {
		return p, fmt.Errorf("button %q too short", tok)
	}
	p.Button = Button(tok[:3])
	if _, ok := buttonNotes[p.Button]; !ok {
		return p, fmt.Errorf("unknown button %q", tok[:3])
	}
	row := tok[3:]
	if row == "" {
		return p, nil
	}
	if row[0] != '+' && row[0] != '-' {
		return p, fmt.Errorf("button %q: row must start with + or -", tok)
	}
	n, err := strconv.Atoi(row[1:])
	if err != nil || n < 0 {
		return p, fmt.Errorf("button %q: bad row %q", tok, row)
	}
	if row[0] == '-' {
		n = -n
	}
	p.Rows = n
	return p, nil
}

// RootOffset is the offset of the bass row the buttons are measured from.
func (d Derivation) RootOffset() int {
	if d.CounterBass {
		return CounterBassOffset + d.Shift
	}
	return d.Shift
}

// BassNote is the sounding bass: the root token without the counter-bass move.
func (d Derivation) BassNote() int {
	return interval.Mod(d.Shift)
}

// PitchClasses returns the sorted distinct pitch classes the derivation
// sounds, optional buttons included.
func (d Derivation) PitchClasses() []int {
	seen := map[int]struct{}{d.BassNote(): {}}
	root := d.RootOffset()
	for _, p := range d.Presses {
		for _, n := range p.Button.Notes() {
			seen[interval.Mod(root+p.Semitones()+n)] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for pc := range seen {
		out = append(out, pc)
	}
	slices.Sort(out)
	return out
}

func (d Derivation) String() string {
	root := "R"
	if d.CounterBass {
		root += "_"
	}
	switch {
	case d.Shift > 0:
		root += "+" + strconv.Itoa(d.Shift)
	case d.Shift < 0:
		root += strconv.Itoa(d.Shift)
	}
	parts := []string{root}
	for _, p := range d.Presses {
		parts = append(parts, p.String())
	}
	return strings.Join(parts, ", ")
}

package scale

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/starford/scalesmith/internal/apperr"
)

func diatonic(t *testing.T) *Scale {
	t.Helper()
	s, err := New(DefaultFamilies()[0])
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestDefaultFamilies_Valid(t *testing.T) {
	fams := DefaultFamilies()
	if len(fams) != 9 {
		t.Fatalf("families = %d, want 9", len(fams))
	}
	for _, f := range fams {
		if err := f.Validate(); err != nil {
			t.Errorf("%s: %v", f.Name, err)
		}
	}
	fams[0].Intervals[0] = 99
	if DefaultFamilies()[0].Intervals[0] != 2 {
		t.Error("DefaultFamilies must return copies")
	}
}

func TestFamily_ValidateRejects(t *testing.T) {
	cases := map[string]Family{
		"no name":       {Intervals: []int{12}, Modes: []string{"a"}},
		"bad sum":       {Name: "x", Intervals: []int{2, 2}, Modes: []string{"a"}},
		"zero gap":      {Name: "x", Intervals: []int{0, 12}, Modes: []string{"a"}},
		"inner zero":    {Name: "x", Intervals: []int{2, 0, 10}, Modes: []string{"a"}},
		"negative gap":  {Name: "x", Intervals: []int{14, -2}, Modes: []string{"a"}},
		"no modes":      {Name: "x", Intervals: []int{12}},
		"too many":      {Name: "x", Intervals: []int{12}, Modes: []string{"a", "b"}},
		"dup mode":      {Name: "x", Intervals: []int{6, 6}, Modes: []string{"a", "a"}},
		"empty mode":    {Name: "x", Intervals: []int{6, 6}, Modes: []string{""}},
		"no intervals":  {Name: "x", Modes: []string{"a"}},
	}
	for name, f := range cases {
		if err := f.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestScale_IonianNoKey(t *testing.T) {
	s := diatonic(t)
	if got := s.Positions(); !reflect.DeepEqual(got, []int{0, 2, 4, 5, 7, 9, 11, 12}) {
		t.Errorf("Positions = %v", got)
	}
	if got := s.NoteNames(); !reflect.DeepEqual(got, []string{"I", "II", "III", "IV", "V", "VI", "VII"}) {
		t.Errorf("NoteNames = %v", got)
	}
	if s.KeyName() != NoKey {
		t.Errorf("KeyName = %q", s.KeyName())
	}
}

func TestScale_DorianInD(t *testing.T) {
	s := diatonic(t)
	if err := s.SetMode("Dorian"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetKey("D"); err != nil {
		t.Fatal(err)
	}
	if got := s.ModeIntervals(); !reflect.DeepEqual(got, []int{2, 1, 2, 2, 2, 1, 2}) {
		t.Errorf("ModeIntervals = %v", got)
	}
	want := []string{"D", "E", "F", "G", "A", "B", "C"}
	if got := s.NoteNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("NoteNames = %v, want %v", got, want)
	}
}

func TestScale_KeyWithAccidentals(t *testing.T) {
	s := diatonic(t)
	if err := s.SetKey("Bb"); err != nil {
		t.Fatal(err)
	}
	got := s.NoteNames()
	if got[0] != "A#/Bb" || got[3] != "D#/Eb" {
		t.Errorf("NoteNames = %v", got)
	}
	if err := s.SetKey("none"); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Key(); ok {
		t.Error("key should be cleared")
	}
}

func TestScale_Errors(t *testing.T) {
	s := diatonic(t)
	if err := s.SetMode("Bebop"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("SetMode err = %v", err)
	}
	if err := s.SetModeIndex(7); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("SetModeIndex err = %v", err)
	}
	if err := s.SetKey("H"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("SetKey err = %v", err)
	}
	if _, err := New(Family{Name: "bad", Intervals: []int{5}, Modes: []string{"x"}}); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("New err = %v", err)
	}
}

func TestPitchClass(t *testing.T) {
	cases := map[string]int{
		"C": 0, "c": 0, "C#": 1, "Db": 1, "D♭": 1, "C#/Db": 1, "B": 11, "Cb": 11, "B#": 0, "F##": 7,
	}
	for in, want := range cases {
		got, err := PitchClass(in)
		if err != nil || got != want {
			t.Errorf("PitchClass(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	for _, in := range []string{"", "X", "C%"} {
		if _, err := PitchClass(in); err == nil {
			t.Errorf("PitchClass(%q) should fail", in)
		}
	}
	if MIDINote(9) != 69 {
		t.Errorf("MIDINote(A) = %d", MIDINote(9))
	}
}

func TestIdentify_ExactMatches(t *testing.T) {
	res, err := Identify(strings.Fields("A B C D E F G"), DefaultFamilies())
	if err != nil {
		t.Fatal(err)
	}
	if res.Key != "A" {
		t.Errorf("key = %q", res.Key)
	}
	if len(res.Exact) != 1 {
		t.Fatalf("exact = %+v", res.Exact)
	}
	if res.Exact[0].Family != "Diatonic" || res.Exact[0].Mode != "Aeolian - Natural Minor" {
		t.Errorf("exact = %+v", res.Exact[0])
	}
	if res.Nearest != nil {
		t.Errorf("nearest should be empty on exact match: %+v", res.Nearest)
	}
}

func TestIdentify_OrderIndependent(t *testing.T) {
	res, err := Identify([]string{"D", "A", "F#", "E", "B", "G", "C#"}, DefaultFamilies())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Exact) != 1 || res.Exact[0].Mode != "Ionian - Major" {
		t.Errorf("exact = %+v", res.Exact)
	}
	if !reflect.DeepEqual(res.Intervals, []int{2, 2, 1, 2, 2, 2, 1}) {
		t.Errorf("intervals = %v", res.Intervals)
	}
}

func TestIdentify_NearestWhenNoExact(t *testing.T) {
	res, err := Identify(strings.Fields("C D E G A"), DefaultFamilies())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Exact) != 0 {
		t.Fatalf("pentatonic should not match exactly: %+v", res.Exact)
	}
	if len(res.Nearest) != nearestLimit {
		t.Fatalf("nearest = %d, want %d", len(res.Nearest), nearestLimit)
	}
	for i := 1; i < len(res.Nearest); i++ {
		if res.Nearest[i].Similarity > res.Nearest[i-1].Similarity {
			t.Errorf("nearest not sorted: %+v", res.Nearest)
		}
	}
	top := res.Nearest[0]
	if top.Family != "Diatonic" {
		t.Errorf("top candidate = %+v", top)
	}
}

func TestIdentify_BadInput(t *testing.T) {
	if _, err := Identify(nil, DefaultFamilies()); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("nil notes err = %v", err)
	}
	if _, err := Identify([]string{"C", "Q"}, DefaultFamilies()); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("bad note err = %v", err)
	}
}

package chord

import (
	"errors"
	"reflect"
	"slices"
	"testing"

	"github.com/starford/scalesmith/internal/apperr"
	"github.com/starford/scalesmith/internal/interval"
	"github.com/starford/scalesmith/internal/stradella"
)

var (
	ionian      = []int{2, 2, 1, 2, 2, 2, 1}
	ionianNotes = []string{"C", "D", "E", "F", "G", "A", "B"}
)

func match(t *testing.T, gaps []int, notes []string, degree int, lvl Level, sym Symbology) *Result {
	t.Helper()
	res, err := NewMatcher(Default()).Match(Query{
		Intervals: gaps,
		Degree:    degree,
		NoteNames: notes,
		Level:     lvl,
		Symbology: sym,
	})
	if err != nil {
		t.Fatalf("Match(degree=%d, level=%s): %v", degree, lvl, err)
	}
	return res
}

func texts(labels []Label) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = l.Text
	}
	return out
}

func TestDefaultCatalog_Builds(t *testing.T) {
	c := Default()
	if c.Len() != 79 {
		t.Errorf("Len = %d, want 79", c.Len())
	}
	if Default() != c {
		t.Error("Default should return the shared catalog")
	}
}

func TestForLevel_Basic(t *testing.T) {
	entries, err := Default().ForLevel(LevelBasic)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		for _, ch := range e.Chords {
			names = append(names, ch.Name)
		}
	}
	want := []string{"maj", "min", "7", "dim"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("basic names = %v, want %v", names, want)
	}
}

func TestForLevel_AdvancedAddsAugAndSus2(t *testing.T) {
	entries, err := Default().ForLevel(LevelAdvanced)
	if err != nil {
		t.Fatal(err)
	}
	found := map[string]string{}
	for _, e := range entries {
		for _, ch := range e.Chords {
			found[ch.Name] = e.Set.String()
		}
	}
	if len(found) != 6 {
		t.Errorf("advanced has %d chords, want 6: %v", len(found), found)
	}
	if found["aug"] != "(0, 4, 8)" {
		t.Errorf("aug = %q", found["aug"])
	}
	if found["sus2"] != "(0, 2, 7)" {
		t.Errorf("sus2 = %q", found["sus2"])
	}
}

func TestForLevel_NestedSubsets(t *testing.T) {
	c := Default()
	names := func(lvl Level) map[string]bool {
		entries, err := c.ForLevel(lvl)
		if err != nil {
			t.Fatal(err)
		}
		out := map[string]bool{}
		for _, e := range entries {
			for _, ch := range e.Chords {
				out[e.Set.String()+" "+ch.Name] = true
			}
		}
		return out
	}
	basic, adv, all := names(LevelBasic), names(LevelAdvanced), names(LevelAll)
	for k := range basic {
		if !adv[k] {
			t.Errorf("basic chord %q missing from advanced", k)
		}
	}
	for k := range adv {
		if !all[k] {
			t.Errorf("advanced chord %q missing from all", k)
		}
	}
}

func TestForLevel_OffAndUnknownRejected(t *testing.T) {
	if _, err := Default().ForLevel(LevelOff); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("off: err = %v", err)
	}
	if _, err := Default().ForLevel(Level(9)); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("unknown: err = %v", err)
	}
}

func TestNew_RejectsMalformedEntries(t *testing.T) {
	ok := []Chord{basic("maj", "R, maj")}
	cases := map[string][]EntrySpec{
		"duplicate value": {{Key: []int{0, 4, 4}, Chords: ok}},
		"out of range":    {{Key: []int{0, 4, 12}, Chords: ok}},
		"missing root":    {{Key: []int{4, 7}, Chords: ok}},
		"unsorted":        {{Key: []int{0, 7, 4}, Chords: ok}},
		"duplicate key":   {{Key: []int{0, 4, 7}, Chords: ok}, {Key: []int{0, 4, 7}, Chords: ok}},
		"no chords":       {{Key: []int{0, 4, 7}}},
		"no derivations":  {{Key: []int{0, 4, 7}, Chords: []Chord{{Name: "maj", Tier: LevelBasic}}}},
		"duplicate name":  {{Key: []int{0, 4, 7}, Chords: []Chord{basic("maj", "R, maj"), full("maj", "R, maj")}}},
		"off tier":        {{Key: []int{0, 4, 7}, Chords: []Chord{{Name: "maj", Tier: LevelOff, Derivations: []string{"R, maj"}}}}},
	}
	for name, specs := range cases {
		if _, err := New(specs); !errors.Is(err, ErrMalformedCatalog) {
			t.Errorf("%s: err = %v, want ErrMalformedCatalog", name, err)
		}
	}
}

func TestLookup_And_ChordsNamed(t *testing.T) {
	c := Default()
	e, ok := c.Lookup(interval.MustSet(0, 3, 6))
	if !ok {
		t.Fatal("dim set not found")
	}
	if len(e.Chords) != 2 || e.Chords[0].Name != "dim" || e.Chords[1].Name != "m(-5)" {
		t.Errorf("dim entry chords = %+v", e.Chords)
	}
	if _, ok := c.Lookup(interval.MustSet(0, 1, 2)); ok {
		t.Error("cluster should not be in the catalog")
	}
	if got := len(c.ChordsNamed("13")); got != 3 {
		t.Errorf("ChordsNamed(13) = %d entries, want 3", got)
	}
}

func TestMatch_IonianTonicBasic(t *testing.T) {
	res := match(t, ionian, ionianNotes, 0, LevelBasic, SymbologyRaw)
	want := []int{0, 2, 4, 5, 7, 9, 11, 12}
	if !reflect.DeepEqual(res.Positions, want) {
		t.Errorf("positions = %v, want %v", res.Positions, want)
	}
	if got := texts(res.Labels); !reflect.DeepEqual(got, []string{"C", "maj"}) {
		t.Errorf("labels = %v", got)
	}
	if res.Labels[0].Tooltip != "" {
		t.Errorf("bare label tooltip = %q, want empty", res.Labels[0].Tooltip)
	}
	if res.Labels[1].Tooltip != "R, maj" {
		t.Errorf("maj tooltip = %q", res.Labels[1].Tooltip)
	}
}

func TestMatch_RelativeMinorBasic(t *testing.T) {
	res := match(t, ionian, ionianNotes, 5, LevelBasic, SymbologyRaw)
	if !slices.Contains(res.ChordNames(), "min") {
		t.Errorf("degree 5 chords = %v, want min", res.ChordNames())
	}
	if !interval.MustSet(0, 3, 7).SubsetOf(interval.FromPositions(res.Positions)) {
		t.Errorf("positions %v lack a minor triad", res.Positions)
	}
}

func TestMatch_DominantOrder(t *testing.T) {
	res := match(t, ionian, ionianNotes, 4, LevelBasic, SymbologyRaw)
	if got := texts(res.Labels); !reflect.DeepEqual(got, []string{"G", "maj", "7"}) {
		t.Errorf("labels = %v", got)
	}
}

func TestMatch_DiminishedAmbiguity(t *testing.T) {
	res := match(t, ionian, ionianNotes, 6, LevelAll, SymbologyRaw)
	names := res.ChordNames()
	if !slices.Contains(names, "dim") || !slices.Contains(names, "m(-5)") {
		t.Errorf("degree 6 chords = %v, want dim and m(-5)", names)
	}
	dimTip := ""
	for _, l := range res.Labels {
		if l.Chord == "dim" {
			dimTip = l.Tooltip
		}
	}
	if dimTip != "R, dim\nR, dim-3\nR_, dim+1" {
		t.Errorf("dim tooltip = %q", dimTip)
	}
}

func TestMatch_OffReturnsBareLabel(t *testing.T) {
	for _, sym := range Symbologies() {
		for deg := range ionian {
			res := match(t, ionian, ionianNotes, deg, LevelOff, sym)
			if len(res.Labels) != 1 || res.Labels[0].Text != ionianNotes[deg] {
				t.Errorf("off %s degree %d labels = %v", sym, deg, texts(res.Labels))
			}
		}
	}
}

func TestMatch_FallbackWhenNothingMatches(t *testing.T) {
	gaps := []int{1, 1, 10}
	res := match(t, gaps, []string{"I", "II", "III"}, 0, LevelAll, SymbologyJazz)
	if len(res.Labels) != 2 {
		t.Fatalf("labels = %v", texts(res.Labels))
	}
	fb := res.Labels[1]
	if !fb.Fallback || fb.Text != "I: [0, 1, 2]" {
		t.Errorf("fallback = %+v", fb)
	}
}

func TestMatch_NeverEmpty(t *testing.T) {
	scales := [][]int{ionian, {2, 1, 2, 1, 2, 1, 2, 1}, {2, 2, 2, 2, 2, 2}, {3, 1, 3, 1, 3, 1}, {1, 1, 10}, {12}}
	for _, gaps := range scales {
		notes := make([]string, len(gaps))
		for i := range notes {
			notes[i] = "x"
		}
		for _, lvl := range []Level{LevelBasic, LevelAdvanced, LevelAll} {
			for deg := range gaps {
				res := match(t, gaps, notes, deg, lvl, SymbologyRaw)
				if len(res.Labels) < 2 {
					t.Errorf("%v degree %d %s: labels = %v", gaps, deg, lvl, texts(res.Labels))
				}
			}
		}
	}
}

func TestMatch_MonotonicAcrossLevels(t *testing.T) {
	for deg := range ionian {
		basicNames := match(t, ionian, ionianNotes, deg, LevelBasic, SymbologyRaw).ChordNames()
		advNames := match(t, ionian, ionianNotes, deg, LevelAdvanced, SymbologyRaw).ChordNames()
		allNames := match(t, ionian, ionianNotes, deg, LevelAll, SymbologyRaw).ChordNames()
		for _, n := range basicNames {
			if !slices.Contains(advNames, n) {
				t.Errorf("degree %d: %q in basic but not advanced", deg, n)
			}
		}
		for _, n := range advNames {
			if !slices.Contains(allNames, n) {
				t.Errorf("degree %d: %q in advanced but not all", deg, n)
			}
		}
	}
}

func TestMatch_SubsetConsistency(t *testing.T) {
	entries, err := Default().ForLevel(LevelAll)
	if err != nil {
		t.Fatal(err)
	}
	for deg := range ionian {
		res := match(t, ionian, ionianNotes, deg, LevelAll, SymbologyRaw)
		avail := interval.FromPositions(res.Positions)
		names := res.ChordNames()
		for _, e := range entries {
			if !e.Set.SubsetOf(avail) {
				continue
			}
			for _, ch := range e.Chords {
				if !slices.Contains(names, ch.Name) {
					t.Errorf("degree %d: %s %q not reported", deg, e.Set, ch.Name)
				}
			}
		}
	}
}

func TestMatch_SymbologyDoesNotChangeMatches(t *testing.T) {
	for deg := range ionian {
		raw := match(t, ionian, ionianNotes, deg, LevelAll, SymbologyRaw).ChordNames()
		for _, sym := range []Symbology{SymbologyCommon, SymbologyJazz} {
			got := match(t, ionian, ionianNotes, deg, LevelAll, sym).ChordNames()
			if !reflect.DeepEqual(got, raw) {
				t.Errorf("degree %d %s: chords %v, raw %v", deg, sym, got, raw)
			}
		}
	}
}

func TestMatch_JazzFormatting(t *testing.T) {
	res := match(t, ionian, ionianNotes, 0, LevelAll, SymbologyJazz)
	got := texts(res.Labels)
	if got[1] != "Δ" {
		t.Errorf("first chord = %q, want Δ", got[1])
	}
	if !slices.Contains(got, "Δ7") {
		t.Errorf("labels %v lack Δ7", got)
	}
}

func TestMatch_Idempotent(t *testing.T) {
	a := match(t, ionian, ionianNotes, 3, LevelAll, SymbologyCommon)
	b := match(t, ionian, ionianNotes, 3, LevelAll, SymbologyCommon)
	if !reflect.DeepEqual(a, b) {
		t.Error("repeated Match produced different results")
	}
}

func TestMatch_InvalidInput(t *testing.T) {
	m := NewMatcher(Default())
	base := Query{Intervals: ionian, NoteNames: ionianNotes, Level: LevelAll}

	q := base
	q.Degree = 7
	if _, err := m.Match(q); !errors.Is(err, ErrDegreeOutOfRange) {
		t.Errorf("degree 7: err = %v", err)
	}
	q = base
	q.Degree = -1
	if _, err := m.Match(q); !errors.Is(err, ErrDegreeOutOfRange) {
		t.Errorf("degree -1: err = %v", err)
	}
	q = base
	q.Level = Level(7)
	if _, err := m.Match(q); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("bad level: err = %v", err)
	}
	q = base
	q.Symbology = Symbology(-1)
	if _, err := m.Match(q); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("bad symbology: err = %v", err)
	}
	q = base
	q.NoteNames = ionianNotes[:3]
	if _, err := m.Match(q); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("short note names: err = %v", err)
	}
	q = base
	q.NoteNames = append(append([]string{}, ionianNotes...), "C")
	if _, err := m.Match(q); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("long note names: err = %v", err)
	}
	q = base
	q.Intervals = []int{2, 0, 10}
	if _, err := m.Match(q); !errors.Is(err, interval.ErrBadGap) {
		t.Errorf("zero gap: err = %v", err)
	}
}

func TestParseLevelAndSymbology(t *testing.T) {
	for _, l := range Levels() {
		got, err := ParseLevel(l.String())
		if err != nil || got != l {
			t.Errorf("ParseLevel(%q) = %v, %v", l.String(), got, err)
		}
	}
	if got, _ := ParseLevel(" ALL "); got != LevelAll {
		t.Errorf("ParseLevel(ALL) = %v", got)
	}
	if _, err := ParseLevel("extreme"); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("ParseLevel(extreme) err = %v", err)
	}
	if got, _ := ParseSymbology("Jazz"); got != SymbologyJazz {
		t.Errorf("ParseSymbology(Jazz) = %v", got)
	}
	if _, err := ParseSymbology("nashville"); err == nil {
		t.Error("ParseSymbology(nashville) should fail")
	}
}

func TestSymbology_FormatAndLegend(t *testing.T) {
	cases := []struct {
		sym  Symbology
		in   string
		want string
	}{
		{SymbologyRaw, "maj7(+5)", "maj7(+5)"},
		{SymbologyCommon, "sev", "⁷"},
		{SymbologyCommon, "dim7", "dim7"},
		{SymbologyJazz, "dim7", "°7"},
		{SymbologyJazz, "aug", "+"},
		{SymbologyJazz, "maj13(+11)", "Δ13(+11)"},
		{SymbologyJazz, "min", "−"},
	}
	for _, c := range cases {
		if got := c.sym.Format(c.in); got != c.want {
			t.Errorf("%s.Format(%q) = %q, want %q", c.sym, c.in, got, c.want)
		}
	}
	if SymbologyRaw.Legend() != nil {
		t.Error("raw legend should be empty")
	}
	if got := SymbologyJazz.Legend(); len(got) != 4 || got[0] != "Δ = maj" {
		t.Errorf("jazz legend = %v", got)
	}
}

func TestDefaultCatalog_DerivationsParse(t *testing.T) {
	for _, e := range Default().Entries() {
		for _, ch := range e.Chords {
			for _, d := range ch.Derivations {
				parsed, err := stradella.Parse(d)
				if err != nil {
					t.Errorf("%s %q: %v", e.Set, ch.Name, err)
					continue
				}
				if parsed.String() != d {
					t.Errorf("%s %q: derivation %q renders as %q", e.Set, ch.Name, d, parsed.String())
				}
			}
		}
	}
}

func TestDefaultCatalog_InexactDerivations(t *testing.T) {
	var got []string
	for _, e := range Default().Entries() {
		for _, ch := range e.Chords {
			for _, d := range ch.Derivations {
				if interval.FromPositions(stradella.MustParse(d).PitchClasses()) != e.Set {
					got = append(got, ch.Name+": "+d)
				}
			}
		}
	}
	want := []string{
		"aug: R-4, sev",
		"dim: R, dim",
		"sus2: R, min+1",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("inexact derivations = %q, want %q", got, want)
	}
}

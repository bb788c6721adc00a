package chord

func basic(name string, derivations ...string) Chord {
	return Chord{Name: name, Tier: LevelBasic, Derivations: derivations}
}

func advanced(name string, derivations ...string) Chord {
	return Chord{Name: name, Tier: LevelAdvanced, Derivations: derivations}
}

func full(name string, derivations ...string) Chord {
	return Chord{Name: name, Tier: LevelAll, Derivations: derivations}
}

func entry(key []int, chords ...Chord) EntrySpec {
	return EntrySpec{Key: key, Chords: chords}
}

// defaultTable is the hand-curated chord table. Derivations use the Stradella
// notation read by package stradella: R is the root button, R_ the counter
// bass, followed by chord buttons shifted by fourths (-N) or fifths (+N).
// Buttons in parentheses are optional.
var defaultTable = []EntrySpec{
	// Triads and the dominant seventh.
	entry([]int{0, 4, 7}, basic("maj", "R, maj")),
	entry([]int{0, 3, 7}, basic("min", "R, min")),
	entry([]int{0, 4, 7, 10},
		basic("7", "R, sev, (maj)", "R, dim+1, (maj)"),
		full("7/R+10", "R+10, maj+2"),
	),
	entry([]int{0, 4, 8}, advanced("aug", "R-4, sev")),
	entry([]int{0, 3, 6},
		basic("dim", "R, dim", "R, dim-3", "R_, dim+1"),
		full("m(-5)", "R, dim-3", "R_, dim+1"),
	),
	entry([]int{0, 2, 7}, advanced("sus2", "R, min+1")),
	entry([]int{0, 2, 7, 10},
		full("7sus2", "R, min+1"),
		full("9(≠3)", "R, min+1"),
	),
	entry([]int{0, 3, 6, 9}, full("dim7", "R, dim-3, dim", "R_, dim-2, (dim+1)", "R_, dim-2, (dim-5)")),
	entry([]int{0, 2, 4, 8}, full("(+5, 9)", "R_, sev-4")),

	// Sixths.
	entry([]int{0, 4, 7, 9},
		full("6", "R, min+3, (maj)"),
		full("6/R+4", "R+4, min-1, (maj-4)"),
		full("6/R+7", "R+7, min+2, (maj-1)"),
		full("6/R+9", "R+9, maj-3, (min)", "R_+9, maj+1"),
	),
	entry([]int{0, 1, 4, 7, 9}, full("6(m9)", "R, maj+3, (maj)")),
	entry([]int{0, 4, 6, 9}, full("6(-5)", "R_, dim-5, min-5")),

	// Dominant sevenths.
	entry([]int{0, 1, 4, 7, 10},
		full("7(m9)", "R, maj, dim-2", "R, sev, dim-2"),
		full("7(m9)/R+10", "R+10, dim, maj+2"),
	),
	entry([]int{0, 1, 7, 10}, full("7(≠3, m9)", "R, dim-2")),
	entry([]int{0, 3, 4, 7, 10},
		full("7(m10)", "R, min, sev", "R, min, dim+1", "R, maj-3, sev"),
		full("7(m10)/R+7", "R+7, min-1, dim", "R+7, min-1, sev-1"),
	),
	entry([]int{0, 4, 9, 10}, full("7(13)", "R, sev, min+3")),
	entry([]int{0, 4, 6, 10}, full("7(-5)", "R, sev-6", "R_, sev-2")),
	entry([]int{0, 3, 4, 6, 10}, full("7(-5, m10)", "R, dim-3, sev")),
	entry([]int{0, 4, 6, 8, 10}, full("7(+5, +11)", "R, sev-4, sev")),
	entry([]int{0, 1, 5, 7, 10},
		full("7sus4(m9)", "R, min-2, dim-2"),
		full("11(m9)", "R, min-2, (dim-2)"),
	),

	// Ninths and elevenths.
	entry([]int{0, 2, 4, 7, 10},
		full("9", "R, maj, min+1", "R, sev, min+1", "R, min+1, dim+1"),
		full("9/R+2", "R+2, maj-2, dim-1"),
		full("9/R+7", "R+7, min, sev-1"),
	),
	entry([]int{0, 2, 4, 6, 10}, full("9(-5)", "R, sev, sev+2")),
	entry([]int{0, 2, 4, 8, 10}, full("9(+5)", "R, sev-2, sev", "R_, sev-4, sev+2")),
	entry([]int{0, 2, 8, 10}, full("9(≠3, +5)", "R, sev-2")),
	entry([]int{0, 2, 5, 7, 10},
		full("9sus4", "R, maj-2, min+1"),
		full("11", "R, maj-2, (min+1)"),
	),
	entry([]int{0, 2, 5, 8, 10}, full("11(+5)", "R, maj-2, dim-1", "R, maj-2, min-1")),
	entry([]int{0, 2, 6, 7, 10}, full("11(+11)", "R, min+1, sev+2")),

	// Thirteenths.
	entry([]int{0, 2, 4, 7, 9, 10},
		full("13", "R, min+1, min+3"),
		full("13/R+4", "R+4, min-3, min-1"),
	),
	entry([]int{0, 2, 4, 5, 9, 10}, full("13", "R, sev, min+2")),
	entry([]int{0, 4, 5, 9, 10}, full("13", "R, maj-1, sev")),
	entry([]int{0, 2, 5, 7, 9, 10}, full("13(≠3)", "R, maj-1, min+1", "R, min+1, min+2")),
	entry([]int{0, 2, 5, 9, 10}, full("13(≠3)", "R, maj-1, maj-2")),
	entry([]int{0, 1, 4, 9, 10}, full("13(m9)", "R, sev, maj+3")),
	entry([]int{0, 2, 4, 6, 9, 10}, full("13(+11)", "R, sev, maj+2")),
	entry([]int{0, 2, 4, 6, 7, 9, 10}, full("13(+11)", "R, dim+1, maj+2")),
	entry([]int{0, 4, 6, 9, 10}, full("13(+11)", "R, sev, dim+3")),

	// Major sevenths.
	entry([]int{0, 4, 7, 11}, full("maj7", "R, min+4, (maj)", "R_, min-4")),
	entry([]int{0, 4, 8, 11}, full("maj7(+5)", "R, maj+4")),
	entry([]int{0, 2, 4, 7, 11},
		full("maj9", "R, maj, maj+1", "R, maj+1, min+4"),
		full("maj9/R+2", "R+2, maj-1, maj-2"),
	),
	entry([]int{0, 2, 7, 11}, full("maj9(≠3)", "R, maj+1")),
	entry([]int{0, 2, 4, 8, 11}, full("maj9(+5)", "R_, maj-4, sev-4", "R_, sev-4, dim-3")),
	entry([]int{0, 2, 5, 11}, full("maj11", "R, dim+2")),
	entry([]int{0, 2, 5, 7, 11}, full("maj11", "R, maj+1, sev+1")),
	entry([]int{0, 2, 5, 8, 11}, full("maj11(+5)", "R_, dim, (dim-3)", "R, min-1, dim+2", "R, dim-1, dim+2")),
	entry([]int{0, 2, 4, 7, 9, 11}, full("maj13", "R, maj+1, min+3")),
	entry([]int{0, 4, 7, 9, 11}, full("maj13", "R_, min-4, min-5")),
	entry([]int{0, 2, 5, 7, 9, 11}, full("maj13(≠3)", "R, maj-1, maj+1")),
	entry([]int{0, 2, 4, 6, 7, 9, 11}, full("maj13(+11)", "R, maj+2, min+4")),
	entry([]int{0, 2, 4, 6, 9, 11}, full("maj13(+11)", "R_, min-5, min-3")),

	// Minor chords.
	entry([]int{0, 1, 3, 7}, full("m(m9)", "R, sev-3, (min)", "R_, sev+1")),
	entry([]int{0, 3, 6, 8}, full("m(-5, m6)", "R_, maj, sev")),
	entry([]int{0, 2, 3, 6}, full("m(-5, 9)", "R, dim-3, sev+2")),
	entry([]int{0, 3, 8}, full("m(+5)", "R, maj-4", "R_, maj")),
	entry([]int{0, 3, 7, 9},
		full("m6", "R, dim, (min)"),
		full("m6/R+3", "R_+3, dim-5, (min-5)"),
		full("m6/R+7", "R+7, dim-1, (min-1)"),
		full("m6/R+9", "R+9, min-3, (dim-3)", "R_+9, min+1, (dim+1)"),
	),
	entry([]int{0, 1, 3, 7, 9}, full("m6(m9)", "R, min, sev+3")),
	entry([]int{0, 3, 7, 10},
		full("m7", "R, maj-3, (min)", "R_, maj+1"),
		full("m7/R+10", "R+10, min+2, (maj-1)"),
	),
	entry([]int{0, 1, 3, 7, 10}, full("m7(m9)", "R, maj-3, sev-3", "R, sev-3, dim-2", "R, maj-3, dim-2")),
	entry([]int{0, 3, 6, 10},
		full("m7(-5)", "R, min-3", "R_, min+1"),
		full("m7(-5)/R+3", "R+3, min, dim"),
		full("m7(-5)/R+6", "R_+6, min-5, dim-5"),
		full("m7(-5)/R+10", "R+10, dim-1, (min-1)"),
	),
	entry([]int{0, 3, 6, 8, 10}, full("m7(-5, m6)", "R_, maj, min+1")),
	entry([]int{0, 2, 3, 7, 10},
		full("m9", "R, min, min+1", "R, maj-3, min+1"),
		full("m9/R+2", "R+2, min-2, min-1", "R+2, maj-5, min-2"),
	),
	entry([]int{0, 2, 3, 5, 7, 10},
		full("m9/R+5", "R+5, min+1, min+2"),
		full("m11", "R, maj-2, min", "R, maj-3, maj-2"),
	),
	entry([]int{0, 2, 3, 6, 10}, full("m9(-5)", "R, min-3, sev+2")),
	entry([]int{0, 2, 3, 7, 9, 10}, full("m13", "R, min+1, dim")),
	entry([]int{0, 3, 7, 9, 10}, full("m13", "R, maj-3, dim", "R_, maj+1, dim+4")),
	entry([]int{0, 2, 3, 6, 9, 10}, full("m13(+11)", "R, min-3, maj+2")),
	entry([]int{0, 3, 6, 9, 10}, full("m13(+11)", "R_, min+1, dim-2")),
	entry([]int{0, 2, 3, 5, 8, 10}, full("m13(m13)", "R, maj-4, maj-2")),

	// Minor-major sevenths.
	entry([]int{0, 3, 6, 11}, full("mMaj7(-5)", "R_, maj-3, (dim+1)")),
	entry([]int{0, 3, 8, 11}, full("mMaj7(+5)", "R_, min, (maj)")),
	entry([]int{0, 2, 3, 7, 11}, full("mMaj9", "R, min, maj+1")),
	entry([]int{0, 2, 3, 8, 11}, full("mMaj9(+5)", "R_, dim-3, min")),
	entry([]int{0, 3, 5, 7, 11}, full("mMaj11", "R, min, sev+1")),
	entry([]int{0, 2, 3, 5, 7, 11}, full("mMaj11", "R, min, dim+2")),
	entry([]int{0, 2, 3, 6, 11}, full("mMaj11(+11)", "R_, maj-3, min-3", "R_, maj-3, sev-6")),
	entry([]int{0, 3, 5, 7, 9, 11}, full("mMaj13", "R, dim, sev+1")),
	entry([]int{0, 2, 3, 7, 9, 11}, full("mMaj13", "R, maj+1, dim")),
	entry([]int{0, 2, 3, 5, 9, 11}, full("mMaj13", "R, dim, dim+2")),
	entry([]int{0, 3, 6, 9, 11}, full("mMaj13(+11)", "R_, maj-3, sev-3", "R_, maj-3, dim-5", "R_, dim-5, sev-3")),
	entry([]int{0, 3, 5, 8, 11}, full("mMaj13(m13)", "R_, maj, dim", "R_, min, dim", "R, min-4, min-1")),
}

package mcpserver

// ChordNotationGuide explains how chord charts and catalog entries are
// written, so that LLM consumers can read tool output correctly.
const ChordNotationGuide = `# Scalesmith Chord Notation

## Scales

A scale family is a list of semitone gaps that sums to 12, plus one mode
name per gap. Mode N starts the gap list at position N.

` + "```" + `yaml
families:
  - name: Pentatonic
    intervals: [2, 2, 3, 2, 3]
    modes: [Major Pentatonic, Suspended, Blues Minor, Blues Major, Minor Pentatonic]
` + "```" + `

Without a key, degrees are shown as roman numerals (I, II, III ...).
With a key, degrees are shown as note names; black keys use the combined
form "C#/Db".

## Chord labels

Every degree of a chart carries the bare note label first, then one label
per chord that can be built from notes of the scale, for example
"G", "Gmaj", "G7".

Chord names use these tokens:

| Token | Meaning          |
|-------|------------------|
| maj   | major            |
| min   | minor            |
| dim   | diminished       |
| aug   | augmented        |
| 7     | dominant seventh |
| sus   | suspended        |
| (-5)  | flattened fifth  |

## Levels

- off: no chords, only note names
- basic: maj, min, dim and 7
- advanced: basic plus aug and sus2
- all: the full catalog from triads to 13th chords

## Symbologies

- raw: names exactly as in the catalog
- common: sev is written ⁷
- jazz: maj is written Δ, min −, aug +, dim ° and sev ⁷

Charts drawn in common or jazz carry a legend listing the substitutions.

## Derivations

Catalog chords explain themselves with accordion bass (stradella)
derivations such as "R_, maj-3, (sev+2)":

1. The first token is the bass button. R is the root; R_ is the
   counter-bass row, 8 semitones away. Either may be shifted by ±N
   semitones.
2. Each following token is a chord button: maj, min, sev or dim.
3. A "-N" suffix moves the button N rows by fourths, "+N" by fifths.
4. A button in parentheses is optional.

Derivations are explanatory text. Matching uses the interval sets only.
A few fingerings sound notes outside their chord (aug "R-4, sev",
dim "R, dim", sus2 "R, min+1"); catalog output marks them inexact.
`

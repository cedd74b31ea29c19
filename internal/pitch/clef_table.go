// Package pitch implements duration classification, pitch mapping
// (clef + key signature + accidental state), tie collapsing, SATB
// voice assignment, measure grouping, and rhythm quantization.
package pitch

import "scoreforge/internal/sheet"

// naturalSemitone gives the semitone offset from C for each natural
// letter, indexed C=0 D=1 E=2 F=3 G=4 A=5 B=6.
var naturalSemitone = [7]int{0, 2, 4, 5, 7, 9, 11}

const letters = "CDEFGAB"

type clefAnchor struct {
	letterIdx int
	octave    int
}

// anchors give the (letter, octave) of staffPosition 0 (the bottom
// staff line) for each clef, per standard clef conventions: treble's
// bottom line is E4, bass's is G2, alto's is F3, soprano's is C4,
// tenor's is D3.
var anchors = map[sheet.Clef]clefAnchor{
	sheet.ClefTreble:   {letterIdx: 2, octave: 4}, // E4
	sheet.ClefBass:     {letterIdx: 4, octave: 2}, // G2
	sheet.ClefAlto:     {letterIdx: 3, octave: 3}, // F3
	sheet.ClefSoprano:  {letterIdx: 0, octave: 4}, // C4
	sheet.ClefTenor:    {letterIdx: 1, octave: 3}, // D3
}

// NaturalPitch resolves a staff position to its natural (no key
// signature, no accidental) letter and MIDI note for the given clef,
// computed arithmetically from the clef's bottom-line anchor for every
// position.
func NaturalPitch(clef sheet.Clef, position int) (letter sheet.PitchName, midi int) {
	a, ok := anchors[clef]
	if !ok {
		a = anchors[sheet.ClefTreble]
	}
	total := a.letterIdx + position
	letterIdx := floorMod(total, 7)
	octave := a.octave + floorDiv(total, 7)

	midi = (octave+1)*12 + naturalSemitone[letterIdx]
	letter = sheet.PitchName(letters[letterIdx])
	return
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// ClampMidi enforces the [21,108] invariant.
func ClampMidi(midi int) int {
	if midi < 21 {
		return 21
	}
	if midi > 108 {
		return 108
	}
	return midi
}

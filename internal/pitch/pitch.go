package pitch

import "scoreforge/internal/sheet"

// ResolvePitch resolves a note's sounding pitch: it combines the
// clef's natural staff-position mapping with the active key signature
// and any per-measure accidental override, then clamps to the
// instrument range.
//
// inline is the accidental glyph (if any) detected immediately to the
// left of this note; AccidentalNone means no glyph was seen. When
// inline is present it is recorded into state so that later
// notes at the same (staff, measure, staffPosition) inherit it for the
// rest of the measure.
func ResolvePitch(clef sheet.Clef, position int, ks sheet.KeySignature, state *AccidentalState, staffIndex, measureIndex int, inline sheet.Accidental) (sheet.PitchName, int, sheet.Accidental) {
	letter, natural := NaturalPitch(clef, position)

	if inline != sheet.AccidentalNone {
		state.Set(staffIndex, measureIndex, position, inline)
		return letter, ClampMidi(natural + accidentalDelta(inline)), inline
	}

	if active, ok := state.Lookup(staffIndex, measureIndex, position); ok {
		return letter, ClampMidi(natural + accidentalDelta(active)), active
	}

	keySet := activeKeySet(ks)
	if delta, ok := keySet[byte(letter)]; ok {
		applied := sheet.AccidentalSharp
		if delta < 0 {
			applied = sheet.AccidentalFlat
		}
		return letter, ClampMidi(natural + delta), applied
	}

	return letter, ClampMidi(natural), sheet.AccidentalNone
}

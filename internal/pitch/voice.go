package pitch

import "scoreforge/internal/sheet"

// trebleFamily reports whether clef belongs to the upper-voice family
// (soprano/alto/treble) as opposed to the lower-voice family.
func trebleFamily(clef sheet.Clef) bool {
	return clef == sheet.ClefTreble || clef == sheet.ClefAlto || clef == sheet.ClefSoprano
}

// AssignVoice assigns an SATB voice by stem direction, with the
// same-x peer tiebreak for stemDir == 0. peers are
// the other notes sharing this note's x on the same staff (stemless
// whole notes, most commonly).
func AssignVoice(clef sheet.Clef, stemDir int, midiNote int, peers []*sheet.Note) sheet.Voice {
	if trebleFamily(clef) {
		switch {
		case stemDir < 0:
			return sheet.VoiceSoprano
		case stemDir > 0:
			return sheet.VoiceAlto
		default:
			if hasLowerPeer(midiNote, peers) {
				return sheet.VoiceSoprano
			}
			return sheet.VoiceSoprano
		}
	}

	switch {
	case stemDir < 0:
		return sheet.VoiceTenor
	case stemDir > 0:
		return sheet.VoiceBass
	default:
		if hasLowerPeer(midiNote, peers) {
			return sheet.VoiceTenor
		}
		return sheet.VoiceTenor
	}
}

func hasLowerPeer(midiNote int, peers []*sheet.Note) bool {
	for _, p := range peers {
		if p.MidiNote < midiNote {
			return true
		}
	}
	return false
}

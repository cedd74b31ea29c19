package pitch

import "scoreforge/internal/sheet"

// sharpsOrder and flatsOrder are the standard key-signature accidental
// orders.
var sharpsOrder = []byte("FCGDAEB")
var flatsOrder = []byte("BEADGCF")

// activeKeySet returns the set of letters affected by the key
// signature.
func activeKeySet(ks sheet.KeySignature) map[byte]int {
	set := map[byte]int{}
	var order []byte
	var delta int
	switch ks.Type {
	case sheet.KeySharps:
		order = sharpsOrder
		delta = 1
	case sheet.KeyFlats:
		order = flatsOrder
		delta = -1
	default:
		return set
	}
	n := ks.Count
	if n > len(order) {
		n = len(order)
	}
	for i := 0; i < n; i++ {
		set[order[i]] = delta
	}
	return set
}

// accidentalDelta converts an Accidental glyph to a semitone delta;
// Natural is 0 but is tracked separately from "no accidental" by the
// caller since it still overrides the key signature for the measure.
func accidentalDelta(a sheet.Accidental) int {
	switch a {
	case sheet.AccidentalSharp:
		return 1
	case sheet.AccidentalFlat:
		return -1
	default:
		return 0
	}
}

// measureKey identifies one (staff, measure, staffPosition) slot in
// the accidental-state map as a plain comparable struct, so it can key
// a Go map directly instead of needing a packed integer encoding.
type measureKey struct {
	staffIndex    int
	measureIndex  int
	staffPosition int
}

// AccidentalState tracks the active accidental per (staff, measure,
// staffPosition); keying on the measure index scopes each accidental
// to its own measure, so one state can serve a whole staff.
type AccidentalState struct {
	active map[measureKey]sheet.Accidental
}

// NewAccidentalState creates an empty per-score accidental state map.
func NewAccidentalState() *AccidentalState {
	return &AccidentalState{active: map[measureKey]sheet.Accidental{}}
}

// Reset clears all tracked accidentals.
func (s *AccidentalState) Reset() {
	s.active = map[measureKey]sheet.Accidental{}
}

// Set records an explicit inline accidental for (staff, measure,
// staffPosition).
func (s *AccidentalState) Set(staffIndex, measureIndex, staffPosition int, a sheet.Accidental) {
	s.active[measureKey{staffIndex, measureIndex, staffPosition}] = a
}

// Lookup returns the active accidental override, if any, for
// (staff, measure, staffPosition).
func (s *AccidentalState) Lookup(staffIndex, measureIndex, staffPosition int) (sheet.Accidental, bool) {
	a, ok := s.active[measureKey{staffIndex, measureIndex, staffPosition}]
	return a, ok
}

package pipeline

import (
	"math"
	"sort"

	"scoreforge/internal/neural"
	"scoreforge/internal/pitch"
	"scoreforge/internal/sheet"
	"scoreforge/internal/symbols"
)

// detectStaffEvents runs notehead and rest detection, the neural
// confidence gate, duration/pitch/tie mapping, and voice assignment
// for a single staff. barXs are the staff's bar-line x positions in
// ascending order, used to advance the per-measure accidental state.
func detectStaffEvents(img *sheet.Image, st sheet.Staff, staffIdx int, clef sheet.Clef, ks sheet.KeySignature, classifiers *neural.Classifiers, shrinkRegion bool, barXs []int) ([]*sheet.Note, []*sheet.Rest) {
	spacing := st.Spacing()
	if spacing <= 0 {
		return nil, nil
	}

	candidates := symbols.DetectNoteheads(img, st, staffIdx, shrinkRegion)
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].X < candidates[j].X })

	noteheadXs := make([]int, len(candidates))
	for i, c := range candidates {
		noteheadXs[i] = c.X
	}
	restCandidates := symbols.DetectRests(img, st, staffIdx, noteheadXs)

	accState := pitch.NewAccidentalState()
	measureIdx := 0
	barIdx := 0

	var notes []*sheet.Note
	for _, c := range candidates {
		measureIdx, barIdx = advanceMeasure(c.X, barXs, barIdx, measureIdx)

		gate := gateCandidate(img, c.X, c.Y, spacing, classifiers)
		if !gate.Keep {
			continue
		}

		stem := pitch.DetectStem(img, c.X, c.Y, spacing)
		beamFlag := pitch.DetectBeamsFlags(img, c.X, c.Y, stem, spacing)
		filled, split := pitch.FillVoteSplit(img, c.X, c.Y, spacing, beamFlag.Count)
		duration := pitch.ClassifyDuration(stem.HasStem, filled, beamFlag.Count, gate.Subtype, gate.Category == neural.CategoryNote, split)
		dotted := pitch.DetectDot(img, c.X, c.Y, st, spacing)

		position := staffPositionOf(st, c.Y)
		inline := symbols.ClassifyInlineAccidental(img, c.X, c.Y, spacing)
		_, midi, accidental := pitch.ResolvePitch(clef, position, ks, accState, staffIdx, measureIdx, inline)
		letter, _ := pitch.NaturalPitch(clef, position)

		n := &sheet.Note{
			X: c.X, Y: c.Y,
			StaffIndex:    staffIdx,
			StaffPosition: position,
			PitchName:     letter,
			MidiNote:      midi,
			Duration:      duration,
			Dotted:        dotted,
			StemDir:       stem.Dir,
			ClefType:      clef,
			Accidental:    accidental,
		}
		notes = append(notes, n)
	}

	notes = collapseTiesForStaff(img, notes, spacing)
	assignVoicesForStaff(clef, notes)

	var rests []*sheet.Rest
	for _, rc := range restCandidates {
		rests = append(rests, &sheet.Rest{
			X: rc.X, Y: rc.Y,
			StaffIndex: staffIdx,
			RestType:   rc.RestType,
			Dotted:     rc.Dotted,
			Voice:      pitch.AssignVoice(clef, 0, 0, nil),
		})
	}

	return notes, rests
}

// advanceMeasure counts how many of the ascending barXs lie at or
// before x, advancing barIdx past each and bumping measureIdx once per
// bar line crossed, so the accidental state that ResolvePitch keys on
// resets at every bar line instead of running for the whole staff.
func advanceMeasure(x int, barXs []int, barIdx, measureIdx int) (newMeasureIdx, newBarIdx int) {
	for barIdx < len(barXs) && x >= barXs[barIdx] {
		measureIdx++
		barIdx++
	}
	return measureIdx, barIdx
}

// gateCandidate crops a 2s x 2s patch around (cx, cy), resamples to
// 24x24, and runs it through the OCR classifier. With no classifiers
// available, every candidate passes through unfiltered as an
// unqualified note.
func gateCandidate(img *sheet.Image, cx, cy int, spacing float64, classifiers *neural.Classifiers) neural.GateResult {
	if !classifiers.Available() || classifiers.OCR == nil {
		return neural.GateResult{Keep: true, Category: neural.CategoryNote}
	}
	patch := extractOCRPatch(img, cx, cy, spacing)
	probs, err := classifiers.OCR(patch)
	if err != nil {
		return neural.GateResult{Keep: true, Category: neural.CategoryNote}
	}
	return neural.Evaluate(probs)
}

// extractOCRPatch implements OCR crop: a 2s x 2s window
// centered on (cx, cy), nearest-neighbor resampled to 24x24, inverted
// (dark ink -> high activation) and standardized to zero mean / unit
// variance.
func extractOCRPatch(img *sheet.Image, cx, cy int, spacing float64) neural.OCRInput {
	half := spacing
	x0, y0 := cx-int(half), cy-int(half)
	x1, y1 := cx+int(half), cy+int(half)
	w, h := x1-x0, y1-y0
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}

	var out neural.OCRInput
	for dy := 0; dy < 24; dy++ {
		sy := y0 + dy*h/24
		for dx := 0; dx < 24; dx++ {
			sx := x0 + dx*w/24
			v := float32(200)
			if sx >= 0 && sx < img.Width && sy >= 0 && sy < img.Height {
				v = float32(img.At(sx, sy))
			}
			out[dy*24+dx] = 1.0 - v/255.0
		}
	}

	var mean float32
	for _, v := range out {
		mean += v
	}
	mean /= float32(len(out))

	var variance float32
	for _, v := range out {
		d := v - mean
		variance += d * d
	}
	variance /= float32(len(out))
	if variance <= 0 {
		return out
	}
	stddev := float32(math.Sqrt(float64(variance)))
	for i, v := range out {
		out[i] = (v - mean) / stddev
	}
	return out
}

// staffPositionOf mirrors symbols.snapStaffPosition's formula (the
// notehead candidate already passed this check to be accepted, so it
// is re-derived here rather than threaded through Candidate).
func staffPositionOf(st sheet.Staff, y int) int {
	h := st.HalfSpace()
	if h <= 0 {
		return 0
	}
	raw := float64(st.Bottom()-y) / h
	return int(math.Round(raw))
}

func collapseTiesForStaff(img *sheet.Image, notes []*sheet.Note, spacing float64) []*sheet.Note {
	if len(notes) < 2 {
		return notes
	}
	return pitch.CollapseTies(notes, func(a, b *sheet.Note) bool {
		return pitch.DetectTieArc(img, a, b, spacing)
	})
}

func assignVoicesForStaff(clef sheet.Clef, notes []*sheet.Note) {
	for _, n := range notes {
		var peers []*sheet.Note
		for _, other := range notes {
			if other == n {
				continue
			}
			if other.X == n.X {
				peers = append(peers, other)
			}
		}
		n.Voice = pitch.AssignVoice(clef, n.StemDir, n.MidiNote, peers)
	}
}

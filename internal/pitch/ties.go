package pitch

import "scoreforge/internal/sheet"

// CollapseTies implements tie detection and collapse
// over one staff's notes, already sorted by x. hasArc reports whether
// a tie arc was found between consecutive notes a and b (the caller
// supplies this since it requires image access; see DetectTieArc).
func CollapseTies(notes []*sheet.Note, hasArc func(a, b *sheet.Note) bool) []*sheet.Note {
	if len(notes) == 0 {
		return notes
	}

	var out []*sheet.Note
	i := 0
	for i < len(notes) {
		chain := []*sheet.Note{notes[i]}
		j := i + 1
		for j < len(notes) && notes[j].MidiNote == chain[len(chain)-1].MidiNote && hasArc(chain[len(chain)-1], notes[j]) {
			chain = append(chain, notes[j])
			j++
		}
		if len(chain) == 1 {
			out = append(out, chain[0])
		} else {
			out = append(out, collapseChain(chain))
		}
		i = j
	}
	return out
}

func collapseChain(chain []*sheet.Note) *sheet.Note {
	total := 0.0
	for _, n := range chain {
		total += sheet.Beats(n.Duration, n.Dotted)
	}
	head := chain[0]
	head.TiedBeats = &total
	head.Duration, head.Dotted = closestNamedDuration(total)
	return head
}

// closestNamedDuration assigns the closest plain-or-dotted duration
// label to a collapsed tie chain's total beat count.
func closestNamedDuration(beats float64) (sheet.Duration, bool) {
	type candidate struct {
		d      sheet.Duration
		dotted bool
		beats  float64
	}
	candidates := []candidate{
		{sheet.DurWhole, false, 4},
		{sheet.DurWhole, true, 6},
		{sheet.DurHalf, false, 2},
		{sheet.DurHalf, true, 3},
		{sheet.DurQuarter, false, 1},
		{sheet.DurQuarter, true, 1.5},
		{sheet.DurEighth, false, 0.5},
		{sheet.DurEighth, true, 0.75},
		{sheet.DurSixteenth, false, 0.25},
		{sheet.DurSixteenth, true, 0.375},
		{sheet.Dur32nd, false, 0.125},
		{sheet.Dur32nd, true, 0.1875},
	}
	best := candidates[0]
	bestDiff := absFloat(beats - best.beats)
	for _, c := range candidates[1:] {
		d := absFloat(beats - c.beats)
		if d < bestDiff {
			bestDiff = d
			best = c
		}
	}
	return best.d, best.dotted
}

// DetectTieArc implements tie-arc band scan between two
// consecutive same-pitch notes: notes farther apart than 8 spacings
// never qualify, and the arc band sits just above or below the
// notes' mean y.
func DetectTieArc(img *sheet.Image, a, b *sheet.Note, spacing float64) bool {
	if float64(b.X-a.X) > 8*spacing {
		return false
	}
	meanY := (a.Y + b.Y) / 2
	thickness := 0.3 * spacing
	for _, off := range []float64{0.8, 1.2} {
		for _, sign := range []float64{1, -1} {
			y := float64(meanY) + sign*off*spacing
			dens := fillDensity(img, a.X, b.X, int(y-thickness/2), int(y+thickness/2))
			if dens >= 0.12 && dens <= 0.55 {
				return true
			}
		}
	}
	return false
}

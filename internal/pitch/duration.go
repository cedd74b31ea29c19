package pitch

import "scoreforge/internal/sheet"

const durationDarkThreshold = 110

// StemInfo is the result of the stem scan step of duration
// classification.
type StemInfo struct {
	HasStem bool
	Length  float64
	Dir     int // -1 up, +1 down, 0 none
}

// DetectStem scans several x-offsets from the notehead center for the
// longest continuous dark column, tolerating small gaps.
func DetectStem(img *sheet.Image, cx, cy int, spacing float64) StemInfo {
	offsets := []float64{-1.0, -0.7, -0.4, 0.4, 0.7, 1.0}
	best := 0.0
	dir := 0
	for _, off := range offsets {
		x := cx + int(off*spacing)
		if x < 0 || x >= img.Width {
			continue
		}
		up := darkColumnRun(img, x, cy, -1, 4)
		down := darkColumnRun(img, x, cy, 1, 4)
		if float64(up) > best {
			best = float64(up)
			dir = -1
		}
		if float64(down) > best {
			best = float64(down)
			dir = 1
		}
	}
	info := StemInfo{Length: best, Dir: dir}
	info.HasStem = best > 1.5*spacing
	if !info.HasStem {
		info.Dir = 0
	}
	return info
}

// darkColumnRun scans a single column from (x,y) in direction dy
// (-1 up, +1 down), tolerating gaps up to gapTolerance pixels, and
// returns the length of the continuous run including crossed gaps.
func darkColumnRun(img *sheet.Image, x, y, dy, gapTolerance int) int {
	run := 0
	gap := 0
	yy := y
	for yy >= 0 && yy < img.Height {
		if img.At(x, yy) < durationDarkThreshold {
			run += gap + 1
			gap = 0
		} else {
			gap++
			if gap > gapTolerance {
				break
			}
		}
		yy += dy
	}
	return run
}

// BeamFlagResult is the outcome of the beam/flag scan.
type BeamFlagResult struct {
	Count int
}

// DetectBeamsFlags counts beams, or failing that flags, starting from
// the far end of the stem from the notehead (cy - length for an up
// stem, cy + length for a down stem).
func DetectBeamsFlags(img *sheet.Image, cx, cy int, stem StemInfo, spacing float64) BeamFlagResult {
	if !stem.HasStem {
		return BeamFlagResult{}
	}
	stemTipY := cy - int(stem.Length)
	stepDir := -1
	if stem.Dir > 0 {
		stemTipY = cy + int(stem.Length)
		stepDir = 1
	}

	maxBeams := -1
	for k := 0; k <= 2; k++ {
		y := stemTipY - stepDir*int(float64(k)*0.45*spacing)
		found := false
		for _, side := range []int{-1, 1} {
			x0 := cx
			x1 := cx + side*int(1.2*spacing)
			if horizontalRunLength(img, min2(x0, x1), max2(x0, x1), y, int(0.25*spacing)) > 0.5*spacing {
				found = true
			}
		}
		if found {
			maxBeams = k
		}
	}
	if maxBeams < 0 {
		maxBeams = 0
	} else {
		maxBeams++ // levels are 0-indexed; count of beams is highest level + 1
	}

	hookExtra := 0
	for k := maxBeams; k <= 2; k++ {
		y := stemTipY - stepDir*int(float64(k)*0.45*spacing)
		for _, side := range []int{-1, 1} {
			x0 := cx
			x1 := cx + side*int(1.2*spacing)
			run := horizontalRunLength(img, min2(x0, x1), max2(x0, x1), y, int(0.25*spacing))
			if run >= 0.3*spacing && run <= 1.5*spacing {
				hookExtra++
				break
			}
		}
	}

	if maxBeams > 0 {
		return BeamFlagResult{Count: maxBeams + hookExtra}
	}

	// No beam found: flag scan on the side opposite the stem.
	flagSide := 1
	if stem.Dir < 0 {
		flagSide = -1 // stem goes up through the note; flags sit on the right regardless in practice, kept symmetric here
	}
	flags := 0
	zoneW := int(0.7 * spacing)
	zoneH := int(1.2 * spacing)
	for zone := 0; zone < 3; zone++ {
		y0 := stemTipY - stepDir*zone*zoneH
		y1 := y0 + stepDir*zoneH
		x0 := cx + flagSide*int(0.2*spacing)
		x1 := x0 + flagSide*zoneW
		if fillDensity(img, min2(x0, x1), max2(x0, x1), min2(y0, y1), max2(y0, y1)) >= 0.25 {
			flags++
		}
	}
	return BeamFlagResult{Count: flags}
}

func horizontalRunLength(img *sheet.Image, x0, x1, y, rowBand int) float64 {
	best := 0
	for dy := -rowBand; dy <= rowBand; dy++ {
		yy := y + dy
		if yy < 0 || yy >= img.Height {
			continue
		}
		run := 0
		gap := 0
		for x := x0; x < x1; x++ {
			if x < 0 || x >= img.Width {
				continue
			}
			if img.At(x, yy) < durationDarkThreshold {
				run += gap + 1
				gap = 0
			} else {
				gap++
				if gap > 4 {
					break
				}
			}
		}
		if run > best {
			best = run
		}
	}
	return float64(best)
}

func fillDensity(img *sheet.Image, x0, x1, y0, y1 int) float64 {
	dark, total := 0, 0
	for y := y0; y < y1; y++ {
		if y < 0 || y >= img.Height {
			continue
		}
		for x := x0; x < x1; x++ {
			if x < 0 || x >= img.Width {
				continue
			}
			total++
			if img.At(x, y) < durationDarkThreshold {
				dark++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(dark) / float64(total)
}

// FillVote runs three independent strategies that vote on whether the
// notehead is filled.
func FillVote(img *sheet.Image, cx, cy int, spacing float64, beamFlagCount int) bool {
	filled, _ := FillVoteSplit(img, cx, cy, spacing, beamFlagCount)
	return filled
}

// FillVoteSplit is FillVote plus whether the three-strategy vote was
// split (1-or-2-of-3, the ambiguous case where an OCR label is allowed
// to override) rather than unanimous.
func FillVoteSplit(img *sheet.Image, cx, cy int, spacing float64, beamFlagCount int) (filled, split bool) {
	r := 0.5 * spacing
	strategyR := fillDensity(img, cx-int(r), cx+int(r), cy-int(r), cy+int(r)) > 0.35

	cr := 0.7 * spacing
	hBand := fillDensity(img, cx-int(cr), cx+int(cr), cy-1, cy+1)
	vBand := fillDensity(img, cx-1, cx+1, cy-int(cr), cy+int(cr))
	strategyC := (hBand+vBand)/2 > 0.40

	strategyP := fillDensity(img, cx-1, cx+2, cy-1, cy+2) > 0.30

	votes := 0
	for _, v := range []bool{strategyR, strategyC, strategyP} {
		if v {
			votes++
		}
	}
	filled = votes >= 2
	if beamFlagCount > 0 {
		filled = true
	}
	split = votes == 1 || votes == 2
	return filled, split
}

// ClassifyDuration applies the OCR override first: when fill voting is
// split (the ambiguous 1-or-2-of-3 case, which FillVote already
// resolved one way — callers pass ocrSubtype to let it override) and
// the OCR label names a note subtype, trust the OCR subtype outright;
// when no beams/flags were found but OCR names eighth/sixteenth/32nd,
// treat that as the beam count.
func ClassifyDuration(hasStem, filled bool, beamFlagCount int, ocrSubtype string, ocrIsNote bool, fillWasSplit bool) sheet.Duration {
	if ocrIsNote && fillWasSplit {
		if d, ok := subtypeToDuration(ocrSubtype); ok {
			return d
		}
	}
	if beamFlagCount == 0 && ocrIsNote {
		switch ocrSubtype {
		case "eighth":
			beamFlagCount = 1
		case "sixteenth":
			beamFlagCount = 2
		case "32nd":
			beamFlagCount = 3
		}
	}

	if !hasStem {
		if !filled {
			return sheet.DurWhole
		}
		return sheet.DurQuarter
	}
	if !filled {
		return sheet.DurHalf
	}
	switch {
	case beamFlagCount <= 0:
		return sheet.DurQuarter
	case beamFlagCount == 1:
		return sheet.DurEighth
	case beamFlagCount == 2:
		return sheet.DurSixteenth
	default:
		return sheet.Dur32nd
	}
}

func subtypeToDuration(subtype string) (sheet.Duration, bool) {
	switch subtype {
	case "whole":
		return sheet.DurWhole, true
	case "half":
		return sheet.DurHalf, true
	case "quarter":
		return sheet.DurQuarter, true
	case "eighth":
		return sheet.DurEighth, true
	case "sixteenth":
		return sheet.DurSixteenth, true
	case "32nd":
		return sheet.Dur32nd, true
	default:
		return 0, false
	}
}

// DetectDot scans for a dotted-note dot: a dense dot 0.7s..2.2s to the
// right, snapped to the nearest space row.
func DetectDot(img *sheet.Image, cx, cy int, st sheet.Staff, spacing float64) bool {
	spaceY := nearestSpaceRow(st, spacing, cy)
	radius := 0.22 * spacing
	for _, dist := range []float64{0.7, 1.0, 1.3, 1.6, 1.9, 2.2} {
		x := cx + int(dist*spacing)
		if fillDensity(img, x-int(radius), x+int(radius), spaceY-int(radius), spaceY+int(radius)) > 0.55 {
			return true
		}
	}
	return false
}

// nearestSpaceRow snaps y to the nearest of the four spaces between
// staff lines; y is returned unchanged when no space is within one
// spacing of it.
func nearestSpaceRow(st sheet.Staff, spacing float64, y int) int {
	best := y
	bestDist := spacing
	for i := 0; i < 4; i++ {
		spaceY := (st.Lines[i] + st.Lines[i+1]) / 2
		d := absFloat(float64(spaceY - y))
		if d < bestDist {
			bestDist = d
			best = spaceY
		}
	}
	return best
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func min2(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max2(a, b int) int {
	if a > b {
		return a
	}
	return b
}

package symbols

import "scoreforge/internal/sheet"

// RestCandidate is a detected rest glyph window before duration
// classification.
type RestCandidate struct {
	X, Y       int
	StaffIndex int
	RestType   sheet.Duration
	Dotted     bool
}

// The rest classifier's thresholds are tuned empirically on a specific
// training corpus and deliberately have no catch-all fallback: a
// window that matches no shape bucket below is simply not reported as
// a rest, even if it is plausibly one. Do not widen these thresholds
// without a matching test corpus.

// DetectRests slides a window between consecutive noteheads on a
// staff, scanning each gap for a rest glyph.
func DetectRests(img *sheet.Image, st sheet.Staff, staffIndex int, noteheadXs []int) []RestCandidate {
	spacing := st.Spacing()
	if spacing <= 0 || len(noteheadXs) < 2 {
		return nil
	}

	windowWidth := int(1.2 * spacing)
	step := int(0.5 * spacing)
	if step < 1 {
		step = 1
	}

	var out []RestCandidate
	for i := 1; i < len(noteheadXs); i++ {
		gapStart, gapEnd := noteheadXs[i-1], noteheadXs[i]
		if float64(gapEnd-gapStart) <= 2.5*spacing {
			continue
		}
		for x := gapStart; x+windowWidth < gapEnd; x += step {
			if cand, ok := classifyRestWindow(img, st, staffIndex, x, x+windowWidth, spacing); ok {
				out = append(out, cand)
			}
		}
	}
	return out
}

func classifyRestWindow(img *sheet.Image, st sheet.Staff, staffIndex, x0, x1 int, spacing float64) (RestCandidate, bool) {
	top := st.Top() - int(3*spacing)
	bottom := st.Bottom() + int(3*spacing)
	if top < 0 {
		top = 0
	}
	if bottom >= img.Height {
		bottom = img.Height - 1
	}

	dens := density(img, x0, x1, top, bottom)
	if dens < 0.12 || dens > 0.45 {
		return RestCandidate{}, false
	}
	if isBarlineLike(img, x0, x1, st) {
		return RestCandidate{}, false
	}

	minY, maxY, found := darkBoundsY(img, x0, x1, top, bottom)
	if !found {
		return RestCandidate{}, false
	}
	h := float64(maxY - minY + 1)
	w := float64(x1 - x0)
	bands := verticalBandDensities(img, x0, x1, minY, maxY, 5)
	contourChanges := countContourChanges(img, x0, x1, minY, maxY)

	cy := (minY + maxY) / 2
	restType, ok := classifyShape(h, w, spacing, bands, contourChanges, dens)
	if !ok {
		return RestCandidate{}, false
	}

	dotted := hasDotToRight(img, x1, st, spacing)

	return RestCandidate{X: (x0 + x1) / 2, Y: cy, StaffIndex: staffIndex, RestType: restType, Dotted: dotted}, true
}

func classifyShape(h, w, spacing float64, bands [5]float64, contourChanges int, dens float64) (sheet.Duration, bool) {
	aspect := 0.0
	if h > 0 {
		aspect = w / h
	}

	if h < 0.9*spacing && w > 0.5*spacing && aspect > 1.2 {
		return sheet.DurWhole, true // also covers the "half, sitting on line 3" case
	}
	if h >= 1.8*spacing && h <= 4.5*spacing && contourChanges >= 3 {
		return sheet.DurQuarter, true
	}
	if h >= 0.7*spacing && h <= 2.2*spacing && dens > 0.10 && w < 1.5*spacing && bands[0] > bands[4] {
		return sheet.DurEighth, true
	}
	if h >= 0.8*spacing && h <= 2.8*spacing && dens > 0.15 && hasTwoPeaks(bands) {
		return sheet.DurSixteenth, true
	}
	return 0, false
}

func isBarlineLike(img *sheet.Image, x0, x1 int, st sheet.Staff) bool {
	for x := x0; x < x1; x++ {
		dark := 0
		for y := st.Top(); y <= st.Bottom(); y++ {
			if img.At(x, y) < darkThreshold {
				dark++
			}
		}
		if float64(dark)/float64(st.Bottom()-st.Top()+1) > 0.60 {
			return true
		}
	}
	return false
}

func darkBoundsY(img *sheet.Image, x0, x1, top, bottom int) (int, int, bool) {
	minY, maxY := bottom, top
	found := false
	for y := top; y <= bottom; y++ {
		for x := x0; x < x1; x++ {
			if img.At(x, y) < darkThreshold {
				found = true
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}
	return minY, maxY, found
}

func verticalBandDensities(img *sheet.Image, x0, x1, top, bottom, nBands int) [5]float64 {
	var bands [5]float64
	h := bottom - top + 1
	if h <= 0 {
		return bands
	}
	bandH := h / nBands
	if bandH < 1 {
		bandH = 1
	}
	for b := 0; b < nBands; b++ {
		y0 := top + b*bandH
		y1 := y0 + bandH
		bands[b] = density(img, x0, x1, y0, y1)
	}
	return bands
}

func countContourChanges(img *sheet.Image, x0, x1, top, bottom int) int {
	changes := 0
	var prevLeft, prevRight int
	prevSet := false
	for y := top; y <= bottom; y++ {
		left, right, ok := rowDarkExtent(img, x0, x1, y)
		if !ok {
			continue
		}
		if prevSet {
			if abs(left-prevLeft) > 1 || abs(right-prevRight) > 1 {
				changes++
			}
		}
		prevLeft, prevRight, prevSet = left, right, true
	}
	return changes
}

func rowDarkExtent(img *sheet.Image, x0, x1, y int) (int, int, bool) {
	left, right := -1, -1
	for x := x0; x < x1; x++ {
		if img.At(x, y) < darkThreshold {
			if left == -1 {
				left = x
			}
			right = x
		}
	}
	return left, right, left != -1
}

func hasTwoPeaks(bands [5]float64) bool {
	peaks := 0
	for i := 1; i < len(bands)-1; i++ {
		if bands[i] > bands[i-1] && bands[i] > bands[i+1] {
			peaks++
		}
	}
	return peaks >= 2
}

func hasDotToRight(img *sheet.Image, x int, st sheet.Staff, spacing float64) bool {
	line34 := float64(st.Lines[2]+st.Lines[3]) / 2
	radius := 0.22 * spacing
	x0, x1 := x, x+int(2*spacing)
	y0, y1 := int(line34-radius), int(line34+radius)
	return density(img, x0, x1, y0, y1) > 0.55
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

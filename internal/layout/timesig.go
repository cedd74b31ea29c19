package layout

import "scoreforge/internal/sheet"

// DetectTimeSignature scans x in [6%,22%] of width for a window where
// both staff halves have 15-55% dark density, classifies each half as
// a digit by quadrant-density heuristics, and validates
// numerator/denominator ranges.
func DetectTimeSignature(img *sheet.Image, st sheet.Staff) (sheet.TimeSignature, bool) {
	spacing := st.Spacing()
	if spacing <= 0 {
		return sheet.TimeSignature{}, false
	}
	windowWidth := int(1.5 * spacing)
	if windowWidth < 1 {
		windowWidth = 1
	}

	xStart := int(0.06 * float64(img.Width))
	xEnd := int(0.22 * float64(img.Width))
	mid := (st.Top() + st.Bottom()) / 2

	for x := xStart; x < xEnd && x+windowWidth < img.Width; x++ {
		topDensity := density(img, x, x+windowWidth, st.Top(), mid)
		bottomDensity := density(img, x, x+windowWidth, mid, st.Bottom())
		if inRange(topDensity, 0.15, 0.55) && inRange(bottomDensity, 0.15, 0.55) {
			num := classifyDigit(img, x, x+windowWidth, st.Top(), mid)
			den := classifyDigit(img, x, x+windowWidth, mid, st.Bottom())
			ts, ok := validate(num, den, x+windowWidth)
			if ok {
				return ts, true
			}
		}
	}
	return sheet.TimeSignature{}, false
}

func density(img *sheet.Image, x0, x1, y0, y1 int) float64 {
	if x1 <= x0 || y1 <= y0 {
		return 0
	}
	dark, total := 0, 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			total++
			if img.At(x, y) < darkThreshold {
				dark++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(dark) / float64(total)
}

func inRange(v, lo, hi float64) bool { return v >= lo && v <= hi }

// classifyDigit uses quadrant dark-pixel ratios and row fill to guess
// a digit 1..16. This is a coarse heuristic: it buckets
// density into one of the legal numerator/denominator values rather
// than doing real glyph recognition, matching the scope of a
// projection-based OMR stage.
func classifyDigit(img *sheet.Image, x0, x1, y0, y1 int) int {
	halfW := (x0 + x1) / 2
	halfH := (y0 + y1) / 2

	q1 := density(img, x0, halfW, y0, halfH)
	q2 := density(img, halfW, x1, y0, halfH)
	q3 := density(img, x0, halfW, halfH, y1)
	q4 := density(img, halfW, x1, halfH, y1)
	topRow := density(img, x0, x1, y0, halfH)
	bottomRow := density(img, x0, x1, halfH, y1)

	total := q1 + q2 + q3 + q4
	switch {
	case total < 0.05:
		return 4
	case topRow > bottomRow*1.8:
		return 2
	case bottomRow > topRow*1.8:
		return 3
	case q1 > 0.3 && q4 > 0.3 && q2 < 0.15:
		return 6
	case q2 > 0.3 && q3 > 0.3 && q1 < 0.15:
		return 9
	case total > 0.45:
		return 8
	default:
		return 4
	}
}

// validate enforces the numerator 1..16 / denominator power-of-2<=16
// rule and flags compound meter (numerator divisible by 3, >3, with
// denominator 8), snapping illegal pairs to 4/4.
func validate(num, den int, endX int) (sheet.TimeSignature, bool) {
	legalDen := map[int]bool{1: true, 2: true, 4: true, 8: true, 16: true}
	if num < 1 || num > 16 || !legalDen[den] {
		return sheet.TimeSignature{Beats: 4, BeatType: 4, EndX: endX}, true
	}
	compound := den == 8 && num > 3 && num%3 == 0
	return sheet.TimeSignature{Beats: num, BeatType: den, Compound: compound, EndX: endX}, true
}

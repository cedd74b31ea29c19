package layout

import "scoreforge/internal/sheet"

// CountLedgerLines scans above and below each staff, up to 5 spacings
// out, for short horizontal dark runs of length 0.8..4x spacing,
// thickness <=5px, sitting on exact half-space intervals from the
// outer staff lines.
func CountLedgerLines(img *sheet.Image, st sheet.Staff) int {
	spacing := st.Spacing()
	if spacing <= 0 {
		return 0
	}
	count := 0
	for k := 1; k <= 5; k++ {
		yAbove := st.Top() - int(float64(k)*spacing)
		yBelow := st.Bottom() + int(float64(k)*spacing)
		if yAbove >= 0 && hasLedgerRun(img, yAbove, spacing) {
			count++
		}
		if yBelow < img.Height && hasLedgerRun(img, yBelow, spacing) {
			count++
		}
	}
	return count
}

func hasLedgerRun(img *sheet.Image, y int, spacing float64) bool {
	minLen := 0.8 * spacing
	maxLen := 4.0 * spacing
	runStart := -1
	for x := 0; x < img.Width; x++ {
		dark := img.At(x, y) < darkThreshold
		if dark {
			if runStart < 0 {
				runStart = x
			}
			continue
		}
		if runStart >= 0 {
			length := float64(x - runStart)
			if length >= minLen && length <= maxLen && runThickness(img, runStart, y) <= 5 {
				return true
			}
			runStart = -1
		}
	}
	return false
}

func runThickness(img *sheet.Image, x, y int) int {
	thickness := 1
	for dy := 1; dy <= 6; dy++ {
		if y+dy < img.Height && img.At(x, y+dy) < darkThreshold {
			thickness++
		} else {
			break
		}
	}
	return thickness
}

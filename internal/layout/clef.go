// Package layout implements clef classification, key/time signature
// regions, bar lines (with cross-staff consensus), ledger lines, and
// repeat expansion.
package layout

import (
	"scoreforge/internal/sheet"
)

const clefMarginFraction = 0.14

// ClassifyClef runs the clef decision tree for one staff within its
// system role (roleIsTop is true for the top staff of a multi-staff
// system, used only for the final fallback rule).
func ClassifyClef(img *sheet.Image, st sheet.Staff, systemSize int, roleIsTop bool) sheet.Clef {
	spacing := st.Spacing()
	if spacing <= 0 {
		return sheet.ClefTreble
	}
	marginWidth := int(float64(img.Width) * clefMarginFraction)

	extentTop, extentBottom := verticalExtent(img, marginWidth, st.Top(), st.Bottom(), spacing)
	extent := float64(extentBottom-extentTop) / spacing

	aboveLine1 := float64(st.Top()-extentTop) / spacing
	belowLine5 := float64(extentBottom-st.Bottom()) / spacing

	if aboveLine1 >= 1.0 && belowLine5 >= 0.5 && extent > 3.8 {
		return sheet.ClefTreble
	}

	if extent <= 5.5 && upperHalfDense(img, marginWidth, st) && hasBassDots(img, marginWidth, st) {
		return sheet.ClefBass
	}

	if extent >= 2.0 && extent <= 4.5 {
		if c, ok := classifyCClef(img, marginWidth, st, spacing); ok {
			return c
		}
	}

	if systemSize == 2 {
		if roleIsTop {
			return sheet.ClefTreble
		}
		return sheet.ClefBass
	}
	return sheet.ClefTreble
}

// verticalExtent finds the topmost/bottommost dark row within
// marginWidth columns, scanning up to 5 spacings beyond the staff.
func verticalExtent(img *sheet.Image, marginWidth, top, bottom int, spacing float64) (int, int) {
	scanTop := maxInt(0, top-int(5*spacing))
	scanBottom := minInt(img.Height-1, bottom+int(5*spacing))

	extentTop, extentBottom := top, bottom
	for y := scanTop; y <= scanBottom; y++ {
		if rowDarkInMargin(img, marginWidth, y) {
			if y < extentTop {
				extentTop = y
			}
			if y > extentBottom {
				extentBottom = y
			}
		}
	}
	return extentTop, extentBottom
}

func rowDarkInMargin(img *sheet.Image, marginWidth, y int) bool {
	for x := 0; x < marginWidth && x < img.Width; x++ {
		if img.At(x, y) < darkThreshold {
			return true
		}
	}
	return false
}

func upperHalfDense(img *sheet.Image, marginWidth int, st sheet.Staff) bool {
	mid := (st.Top() + st.Bottom()) / 2
	upper := densityInMargin(img, marginWidth, st.Top(), mid)
	lower := densityInMargin(img, marginWidth, mid, st.Bottom())
	return upper > lower
}

func densityInMargin(img *sheet.Image, marginWidth, top, bottom int) float64 {
	if bottom <= top {
		return 0
	}
	dark := 0
	total := 0
	for y := top; y < bottom; y++ {
		for x := 0; x < marginWidth && x < img.Width; x++ {
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

// hasBassDots looks for two dense small regions in the two spaces
// flanking line 3 (the bass clef's two dots).
func hasBassDots(img *sheet.Image, marginWidth int, st sheet.Staff) bool {
	line3 := st.Lines[2]
	h := st.HalfSpace()
	spaceAbove := densityInMargin(img, marginWidth, int(float64(line3)-3*h), int(float64(line3)-h))
	spaceBelow := densityInMargin(img, marginWidth, int(float64(line3)+h), int(float64(line3)+3*h))
	return spaceAbove > 0.20 && spaceBelow > 0.20
}

// classifyCClef distinguishes Alto/Soprano/Tenor by the row with the
// dark-weighted center of mass, snapped to the nearest staff line.
func classifyCClef(img *sheet.Image, marginWidth int, st sheet.Staff, spacing float64) (sheet.Clef, bool) {
	var weightedSum, weightTotal float64
	for y := st.Top(); y <= st.Bottom(); y++ {
		w := float64(darkCountInMargin(img, marginWidth, y))
		weightedSum += w * float64(y)
		weightTotal += w
	}
	if weightTotal == 0 {
		return sheet.ClefAlto, false
	}
	centerRow := weightedSum / weightTotal

	bestLine := -1
	bestDist := spacing
	for i, ly := range st.Lines {
		d := centerRow - float64(ly)
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			bestDist = d
			bestLine = i
		}
	}
	if bestLine == -1 {
		return sheet.ClefAlto, false
	}

	band := densityInMargin(img, marginWidth, int(centerRow-0.6*st.HalfSpace()), int(centerRow+0.6*st.HalfSpace()))
	if band <= 0.30 {
		return sheet.ClefAlto, false
	}

	switch bestLine {
	case 0:
		return sheet.ClefSoprano, true
	case 2:
		return sheet.ClefAlto, true
	case 3:
		return sheet.ClefTenor, true
	default:
		return sheet.ClefAlto, true
	}
}

func darkCountInMargin(img *sheet.Image, marginWidth, y int) int {
	n := 0
	for x := 0; x < marginWidth && x < img.Width; x++ {
		if img.At(x, y) < darkThreshold {
			n++
		}
	}
	return n
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Package symbols implements notehead candidate detection, inline
// accidental classification, and rest detection.
package symbols

import (
	"math"

	"scoreforge/internal/sheet"
)

const darkThreshold = 110

// Candidate is a detected notehead before the neural confidence gate
// runs over it.
type Candidate struct {
	X, Y       int
	StaffIndex int
}

// DetectNoteheads scans for notehead candidates using ellipse fill
// ratio, bounding-box aspect, stem-run rejection, left/right symmetry,
// and staff-position snapping, followed by Chebyshev deduplication.
func DetectNoteheads(img *sheet.Image, st sheet.Staff, staffIndex int, shrinkRegion bool) []Candidate {
	spacing := st.Spacing()
	if spacing <= 0 {
		return nil
	}
	h := st.HalfSpace()

	margin := 3.0
	if shrinkRegion {
		margin = 2.0
	}
	top := st.Top() - int(margin*spacing)
	bottom := st.Bottom() + int(margin*spacing)
	if top < 0 {
		top = 0
	}
	if bottom >= img.Height {
		bottom = img.Height - 1
	}

	staffRowMask := buildStaffRowMask(st, spacing)

	var accepted []Candidate
	for y := top; y <= bottom; y++ {
		for x := 0; x < img.Width; x++ {
			if img.At(x, y) >= darkThreshold {
				continue
			}
			if !passesEllipseFill(img, x, y, spacing, staffRowMask) {
				continue
			}
			if !passesShapeBounds(img, x, y, spacing) {
				continue
			}
			if !passesStemRejection(img, x, y, spacing) {
				continue
			}
			if !passesSymmetry(img, x, y, spacing) {
				continue
			}
			pos, ok := snapStaffPosition(st, h, y)
			if !ok {
				continue
			}
			if isDuplicate(accepted, x, y, spacing) {
				continue
			}
			accepted = append(accepted, Candidate{X: x, Y: y, StaffIndex: staffIndex})
			_ = pos
		}
	}
	return accepted
}

// buildStaffRowMask marks rows within +-1 or +-2px of a staff line
// (chosen by spacing) to exclude from fill statistics.
func buildStaffRowMask(st sheet.Staff, spacing float64) map[int]bool {
	radius := 1
	if spacing > 8 {
		radius = 2
	}
	mask := map[int]bool{}
	for _, ly := range st.Lines {
		for dy := -radius; dy <= radius; dy++ {
			mask[ly+dy] = true
		}
	}
	return mask
}

func passesEllipseFill(img *sheet.Image, cx, cy int, spacing float64, mask map[int]bool) bool {
	halfW := 0.55 * spacing
	halfH := 0.40 * spacing
	dark, total := 0, 0
	for dy := -int(halfH); dy <= int(halfH); dy++ {
		y := cy + dy
		if y < 0 || y >= img.Height || mask[y] {
			continue
		}
		for dx := -int(halfW); dx <= int(halfW); dx++ {
			x := cx + dx
			if x < 0 || x >= img.Width {
				continue
			}
			// ellipse membership test
			fx := float64(dx) / halfW
			fy := float64(dy) / halfH
			if fx*fx+fy*fy > 1.0 {
				continue
			}
			total++
			if img.At(x, y) < darkThreshold {
				dark++
			}
		}
	}
	if total < 8 {
		return false
	}
	return float64(dark)/float64(total) >= 0.48
}

func passesShapeBounds(img *sheet.Image, cx, cy int, spacing float64) bool {
	radius := int(1.2 * spacing)
	minX, maxX, minY, maxY := cx, cx, cy, cy
	found := false
	for dy := -radius; dy <= radius; dy++ {
		y := cy + dy
		if y < 0 || y >= img.Height {
			continue
		}
		for dx := -radius; dx <= radius; dx++ {
			x := cx + dx
			if x < 0 || x >= img.Width {
				continue
			}
			if img.At(x, y) < darkThreshold {
				found = true
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}
	if !found {
		return false
	}
	w := float64(maxX - minX + 1)
	hgt := float64(maxY - minY + 1)
	if hgt == 0 {
		return false
	}
	aspect := w / hgt
	return aspect >= 0.55 && aspect <= 2.5
}

func passesStemRejection(img *sheet.Image, cx, cy int, spacing float64) bool {
	run := verticalDarkRun(img, cx, cy)
	return float64(run) <= 3*spacing
}

func verticalDarkRun(img *sheet.Image, x, y int) int {
	up := 0
	for yy := y; yy >= 0 && img.At(x, yy) < darkThreshold; yy-- {
		up++
	}
	down := 0
	for yy := y; yy < img.Height && img.At(x, yy) < darkThreshold; yy++ {
		down++
	}
	return up + down - 1
}

func passesSymmetry(img *sheet.Image, cx, cy int, spacing float64) bool {
	radius := int(0.6 * spacing)
	left := darkCount(img, cx-radius, cx, cy, int(0.4*spacing))
	right := darkCount(img, cx, cx+radius, cy, int(0.4*spacing))
	if left == 0 || right == 0 {
		return false
	}
	ratio := math.Min(float64(left), float64(right)) / math.Max(float64(left), float64(right))
	return ratio >= 0.30
}

func darkCount(img *sheet.Image, x0, x1, cy, halfH int) int {
	n := 0
	for y := cy - halfH; y <= cy+halfH; y++ {
		if y < 0 || y >= img.Height {
			continue
		}
		for x := x0; x < x1; x++ {
			if x < 0 || x >= img.Width {
				continue
			}
			if img.At(x, y) < darkThreshold {
				n++
			}
		}
	}
	return n
}

// snapStaffPosition maps a y coordinate to a staff position:
// (bottomLine - y)/h must round to an integer with snapping error
// <0.38 and the rounded position in [-5,13].
func snapStaffPosition(st sheet.Staff, h float64, y int) (int, bool) {
	if h <= 0 {
		return 0, false
	}
	raw := float64(st.Bottom()-y) / h
	rounded := math.Round(raw)
	if math.Abs(raw-rounded) >= 0.38 {
		return 0, false
	}
	pos := int(rounded)
	if pos < -5 || pos > 13 {
		return 0, false
	}
	return pos, true
}

func isDuplicate(accepted []Candidate, x, y int, spacing float64) bool {
	for _, c := range accepted {
		dx := math.Abs(float64(x - c.X))
		dy := math.Abs(float64(y - c.Y))
		if math.Max(dx, dy) < spacing {
			return true
		}
	}
	return false
}

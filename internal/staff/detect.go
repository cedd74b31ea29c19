// Package staff finds staff lines, groups them into 5-line staves,
// and pairs staves into systems.
//
// The row-by-row dark-pixel scan below walks every row once,
// classifies it, and folds classified rows into higher-level
// structures in a single forward pass.
package staff

import (
	"sort"

	"scoreforge/internal/sheet"
)

const (
	darkThreshold   = 120
	darkRowFraction = 0.30
	maxLineRunPx    = 6
)

// line is an internal candidate: the midpoint y of one detected run of
// dark rows, and its thickness.
type line struct {
	y         int
	thickness int
}

// Detect finds staff lines, groups them into staves, and pairs staves
// into systems.
func Detect(img *sheet.Image) ([]sheet.Staff, []sheet.System) {
	lines := detectLines(img)
	staves := groupStaves(lines)
	systems := pairSystems(img, staves)
	return staves, systems
}

// detectLines scans every row; a row is "dark" if >=30% of its pixels
// are below darkThreshold. Contiguous dark rows of thickness <=6 form
// one line at their midpoint.
func detectLines(img *sheet.Image) []line {
	var lines []line
	runStart := -1

	flush := func(end int) {
		if runStart < 0 {
			return
		}
		thickness := end - runStart
		if thickness <= maxLineRunPx {
			lines = append(lines, line{y: (runStart + end - 1) / 2, thickness: thickness})
		}
		runStart = -1
	}

	for y := 0; y < img.Height; y++ {
		if isDarkRow(img, y) {
			if runStart < 0 {
				runStart = y
			}
		} else {
			flush(y)
		}
	}
	flush(img.Height)

	return lines
}

func isDarkRow(img *sheet.Image, y int) bool {
	dark := 0
	for x := 0; x < img.Width; x++ {
		if img.At(x, y) < darkThreshold {
			dark++
		}
	}
	return float64(dark)/float64(img.Width) >= darkRowFraction
}

// groupStaves walks the line list, joining lines within 2.2x the
// median consecutive gap into the current staff; every 5th line closes
// a staff.
func groupStaves(lines []line) []sheet.Staff {
	if len(lines) < 5 {
		return nil
	}

	gaps := make([]int, 0, len(lines)-1)
	for i := 1; i < len(lines); i++ {
		gaps = append(gaps, lines[i].y-lines[i-1].y)
	}
	medianGap := median(gaps)
	if medianGap <= 0 {
		medianGap = 1
	}
	threshold := 2.2 * float64(medianGap)

	var staves []sheet.Staff
	var current []int

	flushStaff := func() {
		if len(current) == 5 {
			var st sheet.Staff
			for i, y := range current {
				st.Lines[i] = y
			}
			staves = append(staves, st)
		}
		current = nil
	}

	for i, ln := range lines {
		if len(current) == 0 {
			current = append(current, ln.y)
			continue
		}
		gap := ln.y - current[len(current)-1]
		if float64(gap) <= threshold && len(current) < 5 {
			current = append(current, ln.y)
		} else {
			flushStaff()
			current = append(current, ln.y)
		}
		if len(current) == 5 {
			flushStaff()
		}
		_ = i
	}
	flushStaff()

	return staves
}

func median(xs []int) int {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]int(nil), xs...)
	sort.Ints(sorted)
	return sorted[len(sorted)/2]
}

// pairSystems walks the staff list and pairs adjacent staves into one
// system when the inter-staff gap is small relative to staff height,
// or a brace/systemic barline is detected in the left margin.
func pairSystems(img *sheet.Image, staves []sheet.Staff) []sheet.System {
	var systems []sheet.System
	used := make([]bool, len(staves))

	for i := 0; i < len(staves); i++ {
		if used[i] {
			continue
		}
		if i+1 < len(staves) && !used[i+1] && shouldPair(img, staves[i], staves[i+1]) {
			systems = append(systems, sheet.System{
				Top:          staves[i].Top(),
				Bottom:       staves[i+1].Bottom(),
				StaffIndices: []int{i, i + 1},
			})
			used[i] = true
			used[i+1] = true
			continue
		}
		systems = append(systems, sheet.System{
			Top:          staves[i].Top(),
			Bottom:       staves[i].Bottom(),
			StaffIndices: []int{i},
		})
		used[i] = true
	}
	return systems
}

func shouldPair(img *sheet.Image, a, b sheet.Staff) bool {
	staffHeight := a.Bottom() - a.Top()
	gap := b.Top() - a.Bottom()
	if staffHeight > 0 && gap < 6*staffHeight {
		return true
	}
	return hasBrace(img, a, b)
}

// hasBrace scans the leftmost 8% of the image width for a column with
// a near-continuous dark vertical run spanning >=60% of the
// inter-staff gap (gaps of <=15% of the gap height are bridged), or a
// barline-like dense column at the same x in both staves.
func hasBrace(img *sheet.Image, a, b sheet.Staff) bool {
	gapTop, gapBottom := a.Bottom(), b.Top()
	gapHeight := gapBottom - gapTop
	if gapHeight <= 0 {
		return false
	}
	marginWidth := int(float64(img.Width) * 0.08)
	bridgeTolerance := int(float64(gapHeight) * 0.15)

	for x := 0; x < marginWidth && x < img.Width; x++ {
		if verticalRunCovers(img, x, gapTop, gapBottom, bridgeTolerance, 0.60) {
			return true
		}
		if verticalRunCovers(img, x, a.Top(), a.Bottom()+1, 0, 0.80) && verticalRunCovers(img, x, b.Top(), b.Bottom()+1, 0, 0.80) {
			return true
		}
	}
	return false
}

// verticalRunCovers reports whether column x has a dark run (bridging
// gaps up to maxGap px) covering at least minFraction of [top,bottom).
func verticalRunCovers(img *sheet.Image, x, top, bottom, maxGap int, minFraction float64) bool {
	if x < 0 || x >= img.Width {
		return false
	}
	covered := 0
	gapRun := 0
	inRun := false
	for y := top; y < bottom; y++ {
		if img.At(x, y) < darkThreshold {
			covered++
			gapRun = 0
			inRun = true
		} else if inRun {
			gapRun++
			if gapRun > maxGap {
				inRun = false
			} else {
				covered++ // bridged gap still counts toward the run
			}
		}
	}
	return float64(covered)/float64(bottom-top) >= minFraction
}

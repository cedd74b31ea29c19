package layout

import "scoreforge/internal/sheet"

const minBarSeparationSpacings = 1.5
const minMeasureWidthSpacings = 6.0

// DetectBarLines runs a bar-line scan (dense column, stem rejection,
// double/final/repeat classification) plus the cross-staff consensus
// filter for multi-staff systems.
func DetectBarLines(img *sheet.Image, staves []sheet.Staff, systems []sheet.System, timeSigEndX []int) []sheet.BarLine {
	perStaff := make([][]sheet.BarLine, len(staves))
	for i, st := range staves {
		startX := maxInt(int(0.16*float64(img.Width)), timeSigEndX[i])
		perStaff[i] = scanStaffBarLines(img, st, startX, i)
	}

	var out []sheet.BarLine
	for _, sys := range systems {
		if len(sys.StaffIndices) <= 1 {
			out = append(out, perStaff[sys.StaffIndices[0]]...)
			continue
		}
		out = append(out, consensusFilter(staves, sys.StaffIndices, perStaff)...)
	}
	return out
}

func scanStaffBarLines(img *sheet.Image, st sheet.Staff, startX, staffIndex int) []sheet.BarLine {
	spacing := st.Spacing()
	if spacing <= 0 {
		return nil
	}
	var candidates []int

	for x := startX; x < img.Width; x++ {
		if !isDenseColumn(img, x, st.Top(), st.Bottom(), 0.80) {
			continue
		}
		if isDenseColumn(img, x-3, st.Top(), st.Bottom(), 0.80) && isDenseColumn(img, x+3, st.Top(), st.Bottom(), 0.80) {
			continue // wide stroke, likely a stem through the staff
		}
		if hasNoteheadNear(img, x, st, spacing) {
			continue
		}
		if len(candidates) > 0 && float64(x-candidates[len(candidates)-1]) < minBarSeparationSpacings*spacing {
			continue
		}
		candidates = append(candidates, x)
	}

	var lines []sheet.BarLine
	for i := 0; i < len(candidates); i++ {
		x := candidates[i]
		typ := sheet.BarSingle
		if i+1 < len(candidates) {
			gap := candidates[i+1] - x
			if gap >= 2 && gap <= 6 {
				typ = sheet.BarDouble
				if isThickColumn(img, candidates[i+1], st.Top(), st.Bottom(), 3) {
					typ = sheet.BarFinal
				}
			}
		}

		left := hasDotPair(img, x-int(spacing), st, spacing)
		right := hasDotPair(img, x+int(spacing), st, spacing)
		switch {
		case left && right:
			typ = sheet.BarRepeatBoth
		case left:
			typ = sheet.BarRepeatEnd
		case right:
			typ = sheet.BarRepeatStart
		}

		lines = append(lines, sheet.BarLine{X: x, StaffIndex: staffIndex, Type: typ})
	}
	return lines
}

func isDenseColumn(img *sheet.Image, x, top, bottom int, minFraction float64) bool {
	if x < 0 || x >= img.Width || bottom <= top {
		return false
	}
	dark := 0
	for y := top; y <= bottom; y++ {
		if img.At(x, y) < darkThreshold {
			dark++
		}
	}
	return float64(dark)/float64(bottom-top+1) >= minFraction
}

func isThickColumn(img *sheet.Image, x, top, bottom, minThicknessPx int) bool {
	thick := 0
	for dx := 0; dx < minThicknessPx+2; dx++ {
		if isDenseColumn(img, x+dx, top, bottom, 0.80) {
			thick++
		}
	}
	return thick >= minThicknessPx
}

// hasNoteheadNear rejects stems by checking the candidate column for a
// notehead-like dark blob one spacing above the top line and one
// spacing below the bottom line. Columns to either side are not
// examined.
func hasNoteheadNear(img *sheet.Image, x int, st sheet.Staff, spacing float64) bool {
	rows := []int{st.Top() - int(spacing), st.Bottom() + int(spacing)}
	for _, y := range rows {
		if y < 0 || y >= img.Height {
			continue
		}
		if isDenseColumn(img, x, maxInt(0, y-2), minInt(img.Height-1, y+2), 0.6) {
			return true
		}
	}
	return false
}

func hasDotPair(img *sheet.Image, x int, st sheet.Staff, spacing float64) bool {
	line2Space := float64(st.Lines[1]+st.Lines[2]) / 2
	line3Space := float64(st.Lines[2]+st.Lines[3]) / 2
	return isDenseColumn(img, x, int(line2Space-spacing*0.4), int(line2Space+spacing*0.4), 0.4) ||
		isDenseColumn(img, x, int(line3Space-spacing*0.4), int(line3Space+spacing*0.4), 0.4)
}

// consensusFilter accepts a barline only if all staves in the system
// have a candidate within +-1 spacing at the same x, and enforces the
// minimum measure width.
func consensusFilter(staves []sheet.Staff, indices []int, perStaff [][]sheet.BarLine) []sheet.BarLine {
	base := indices[0]
	spacing := staves[base].Spacing()

	var accepted []sheet.BarLine
	var lastX = -1
	for _, bl := range perStaff[base] {
		agree := true
		for _, idx := range indices[1:] {
			if !hasCandidateNear(perStaff[idx], bl.X, spacing) {
				agree = false
				break
			}
		}
		if !agree {
			continue
		}
		if lastX >= 0 && float64(bl.X-lastX) < minMeasureWidthSpacings*spacing {
			continue
		}
		for _, idx := range indices {
			accepted = append(accepted, sheet.BarLine{X: bl.X, StaffIndex: idx, Type: bl.Type})
		}
		lastX = bl.X
	}
	return accepted
}

func hasCandidateNear(lines []sheet.BarLine, x int, spacing float64) bool {
	for _, bl := range lines {
		d := bl.X - x
		if d < 0 {
			d = -d
		}
		if float64(d) <= spacing {
			return true
		}
	}
	return false
}

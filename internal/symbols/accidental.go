package symbols

import "scoreforge/internal/sheet"

// ClassifyInlineAccidental runs shape analysis over the region
// immediately left of a kept notehead to classify an inline
// accidental.
func ClassifyInlineAccidental(img *sheet.Image, noteX, noteY int, spacing float64) sheet.Accidental {
	radius := 0.4 * spacing // approximate notehead radius
	x1 := noteX - int(radius) - 1
	x0 := noteX - int(2.5*spacing)
	y0 := noteY - int(1.2*spacing)
	y1 := noteY + int(1.2*spacing)
	if x0 < 0 {
		x0 = 0
	}
	if x1 <= x0 {
		return sheet.AccidentalNone
	}

	vRuns := countVerticalRuns(img, x0, x1, y0, y1, 0.8*spacing, 0.25*spacing)
	hRuns := countHorizontalRuns(img, x0, x1, y0, y1, 0.5*spacing)
	dens := density(img, x0, x1, y0, y1)
	top := density(img, x0, x1, y0, (y0+y1)/2)
	bottom := density(img, x0, x1, (y0+y1)/2, y1)
	aspect := boundingAspect(img, x0, x1, y0, y1)

	if vRuns >= 2 && hRuns >= 1 && dens > 0.22 && ratioBalanced(top, bottom, 0.35) {
		return sheet.AccidentalSharp
	}

	if dens > 0.15 && aspect > 1.5 && bottom > top && lowerRightDominates(img, x0, x1, y0, y1) {
		return sheet.AccidentalFlat
	}

	if dens > 0.16 && aspect > 1.3 && vRuns >= 1 && vRuns <= 2 && hRuns >= 1 {
		return sheet.AccidentalNatural
	}

	return sheet.AccidentalNone
}

func density(img *sheet.Image, x0, x1, y0, y1 int) float64 {
	if x1 <= x0 || y1 <= y0 {
		return 0
	}
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

func countVerticalRuns(img *sheet.Image, x0, x1, y0, y1 int, minLen, dedupeDist float64) int {
	var starts []int
	for x := x0; x < x1; x++ {
		if x < 0 || x >= img.Width {
			continue
		}
		runLen := 0
		for y := y0; y < y1; y++ {
			if y < 0 || y >= img.Height {
				continue
			}
			if img.At(x, y) < darkThreshold {
				runLen++
			}
		}
		if float64(runLen) > minLen {
			starts = append(starts, x)
		}
	}
	count := 0
	lastX := -1000
	for _, x := range starts {
		if float64(x-lastX) > dedupeDist {
			count++
			lastX = x
		}
	}
	return count
}

func countHorizontalRuns(img *sheet.Image, x0, x1, y0, y1 int, minLen float64) int {
	count := 0
	for y := y0; y < y1; y++ {
		if y < 0 || y >= img.Height {
			continue
		}
		runLen := 0
		for x := x0; x < x1; x++ {
			if x < 0 || x >= img.Width {
				continue
			}
			if img.At(x, y) < darkThreshold {
				runLen++
			} else {
				if float64(runLen) > minLen {
					count++
				}
				runLen = 0
			}
		}
		if float64(runLen) > minLen {
			count++
		}
	}
	return count
}

func boundingAspect(img *sheet.Image, x0, x1, y0, y1 int) float64 {
	minX, maxX, minY, maxY := x1, x0, y1, y0
	found := false
	for y := y0; y < y1; y++ {
		if y < 0 || y >= img.Height {
			continue
		}
		for x := x0; x < x1; x++ {
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
	if !found || maxY == minY {
		return 0
	}
	return float64(maxX-minX+1) / float64(maxY-minY+1)
}

func ratioBalanced(a, b, tolerance float64) bool {
	if a == 0 && b == 0 {
		return true
	}
	hi, lo := a, b
	if lo > hi {
		hi, lo = lo, hi
	}
	if hi == 0 {
		return true
	}
	return 1-lo/hi <= tolerance
}

func lowerRightDominates(img *sheet.Image, x0, x1, y0, y1 int) bool {
	midX := (x0 + x1) / 2
	midY := (y0 + y1) / 2
	lowerLeft := density(img, x0, midX, midY, y1)
	lowerRight := density(img, midX, x1, midY, y1)
	return lowerRight > lowerLeft
}

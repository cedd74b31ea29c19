package imageio

import (
	"math"
	"sort"

	"scoreforge/internal/sheet"
)

// estimateSkew is a row-sampling skew estimator: sample ~20
// equally-spaced rows, treat a row as a staff-line candidate
// if >=30% of its pixels are dark, find its leftmost/rightmost dark
// pixel, then look a few rows above/below for dark pixels at the same
// x to build angle samples. The result is the median sample in
// degrees.
func estimateSkew(img *sheet.Image) float64 {
	if img.Height < skewSampleRows {
		return 0
	}

	step := img.Height / skewSampleRows
	if step < 1 {
		step = 1
	}

	var samples []float64

	for y := 0; y < img.Height; y += step {
		if !isDarkRow(img, y) {
			continue
		}
		left, right, ok := darkExtent(img, y)
		if !ok {
			continue
		}

		// Look a few rows above/below for a dark pixel at the same x,
		// near the left and right extents, and turn each match into
		// an angle sample.
		for _, x := range []int{left, right} {
			for _, dy := range []int{-3, -2, -1, 1, 2, 3} {
				ny := y + dy
				if ny < 0 || ny >= img.Height {
					continue
				}
				nx, found := nearestDarkX(img, ny, x, 5)
				if !found {
					continue
				}
				angle := math.Atan2(float64(dy), float64(nx-x))
				// Normalize to an angle relative to the horizontal axis.
				deg := (angle - math.Pi/2) * 180 / math.Pi
				if deg > 90 {
					deg -= 180
				} else if deg < -90 {
					deg += 180
				}
				samples = append(samples, deg)
			}
		}
	}

	if len(samples) == 0 {
		return 0
	}
	sort.Float64s(samples)
	return samples[len(samples)/2]
}

func isDarkRow(img *sheet.Image, y int) bool {
	dark := 0
	for x := 0; x < img.Width; x++ {
		if img.At(x, y) < darkThreshold {
			dark++
		}
	}
	return float64(dark)/float64(img.Width) >= 0.30
}

func darkExtent(img *sheet.Image, y int) (left, right int, ok bool) {
	left, right = -1, -1
	for x := 0; x < img.Width; x++ {
		if img.At(x, y) < darkThreshold {
			if left == -1 {
				left = x
			}
			right = x
		}
	}
	return left, right, left != -1
}

func nearestDarkX(img *sheet.Image, y, x, radius int) (int, bool) {
	for d := 0; d <= radius; d++ {
		for _, cand := range []int{x - d, x + d} {
			if cand < 0 || cand >= img.Width {
				continue
			}
			if img.At(cand, y) < darkThreshold {
				return cand, true
			}
		}
	}
	return 0, false
}

// rotate rotates img by angleDeg degrees about its center using
// nearest-neighbor sampling, returning the deskewed pixels in a new
// buffer with no re-encode/re-decode round trip.
func rotate(img *sheet.Image, angleDeg float64) *sheet.Image {
	theta := angleDeg * math.Pi / 180
	cosT, sinT := math.Cos(theta), math.Sin(theta)
	cx, cy := float64(img.Width)/2, float64(img.Height)/2

	out := &sheet.Image{Width: img.Width, Height: img.Height, Luma: make([]uint8, img.Width*img.Height)}
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			srcX := cosT*dx - sinT*dy + cx
			srcY := sinT*dx + cosT*dy + cy
			sx := int(math.Round(srcX))
			sy := int(math.Round(srcY))
			if sx < 0 || sx >= img.Width || sy < 0 || sy >= img.Height {
				out.Set(x, y, 255) // background
				continue
			}
			out.Set(x, y, img.At(sx, sy))
		}
	}
	return out
}

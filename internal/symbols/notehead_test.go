package symbols

import (
	"testing"

	"scoreforge/internal/sheet"
)

func blankImage(w, h int) *sheet.Image {
	im := &sheet.Image{Width: w, Height: h, Luma: make([]uint8, w*h)}
	for i := range im.Luma {
		im.Luma[i] = 255
	}
	return im
}

func fillEllipse(img *sheet.Image, cx, cy int, halfW, halfH float64) {
	for dy := -int(halfH) - 1; dy <= int(halfH)+1; dy++ {
		for dx := -int(halfW) - 1; dx <= int(halfW)+1; dx++ {
			fx := float64(dx) / halfW
			fy := float64(dy) / halfH
			if fx*fx+fy*fy <= 1.0 {
				x, y := cx+dx, cy+dy
				if x >= 0 && x < img.Width && y >= 0 && y < img.Height {
					img.Set(x, y, 0)
				}
			}
		}
	}
}

func drawStaffLines(img *sheet.Image, top, spacing int) sheet.Staff {
	var st sheet.Staff
	for i := 0; i < 5; i++ {
		y := top + i*spacing
		st.Lines[i] = y
		for x := 0; x < img.Width; x++ {
			img.Set(x, y, 0)
		}
	}
	return st
}

func TestDetectNoteheadsFindsFilledEllipse(t *testing.T) {
	img := blankImage(200, 200)
	st := drawStaffLines(img, 80, 10)
	spacing := st.Spacing()

	noteX, noteY := 100, st.Lines[2] // sitting on the middle line
	fillEllipse(img, noteX, noteY, 0.55*spacing, 0.40*spacing)

	candidates := DetectNoteheads(img, st, 0, false)
	if len(candidates) == 0 {
		t.Fatal("expected at least one notehead candidate")
	}
	found := false
	for _, c := range candidates {
		if abs(c.X-noteX) <= 2 && abs(c.Y-noteY) <= 2 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a candidate near (%d,%d), got %+v", noteX, noteY, candidates)
	}
}

func TestDetectNoteheadsDedupesNearbyHits(t *testing.T) {
	img := blankImage(200, 200)
	st := drawStaffLines(img, 80, 10)
	spacing := st.Spacing()
	fillEllipse(img, 100, st.Lines[2], 0.55*spacing, 0.40*spacing)

	candidates := DetectNoteheads(img, st, 0, false)
	if len(candidates) > 2 {
		t.Fatalf("expected heavy deduplication around one notehead, got %d candidates", len(candidates))
	}
}

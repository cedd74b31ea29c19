package layout

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

func fillMargin(img *sheet.Image, marginWidth, y0, y1 int) {
	for y := y0; y < y1 && y < img.Height; y++ {
		for x := 0; x < marginWidth && x < img.Width; x++ {
			img.Set(x, y, 0)
		}
	}
}

func TestClassifyClefTrebleFromTallBlob(t *testing.T) {
	img := blankImage(400, 300)
	st := sheet.Staff{Lines: [5]int{100, 110, 120, 130, 140}}
	marginWidth := int(float64(img.Width) * clefMarginFraction)

	// A blob extending well above line 1 and below line 5: extent
	// (154-80)/10 = 7.4 spacings, clears the 3.8 threshold.
	fillMargin(img, marginWidth, 80, 155)

	got := ClassifyClef(img, st, 1, true)
	if got != sheet.ClefTreble {
		t.Fatalf("got %v, want treble", got)
	}
}

func TestClassifyClefBlankStaffFallsBackToSystemRole(t *testing.T) {
	img := blankImage(400, 300)
	st := sheet.Staff{Lines: [5]int{100, 110, 120, 130, 140}}

	if got := ClassifyClef(img, st, 2, true); got != sheet.ClefTreble {
		t.Fatalf("top of pair: got %v, want treble", got)
	}
	if got := ClassifyClef(img, st, 2, false); got != sheet.ClefBass {
		t.Fatalf("bottom of pair: got %v, want bass", got)
	}
	if got := ClassifyClef(img, st, 1, true); got != sheet.ClefTreble {
		t.Fatalf("solo staff: got %v, want treble default", got)
	}
}

func TestClassifyClefZeroSpacingDefaultsTreble(t *testing.T) {
	img := blankImage(100, 100)
	st := sheet.Staff{Lines: [5]int{10, 10, 10, 10, 10}}
	if got := ClassifyClef(img, st, 1, true); got != sheet.ClefTreble {
		t.Fatalf("got %v, want treble", got)
	}
}

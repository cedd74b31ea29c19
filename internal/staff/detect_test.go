package staff

import (
	"testing"

	"scoreforge/internal/sheet"
)

// drawStaff draws 5 horizontal dark lines of the given spacing into img,
// starting at top.
func drawStaff(img *sheet.Image, top, spacing int) {
	for i := 0; i < 5; i++ {
		y := top + i*spacing
		for x := 0; x < img.Width; x++ {
			img.Set(x, y, 0)
		}
	}
}

func blankImage(w, h int) *sheet.Image {
	im := &sheet.Image{Width: w, Height: h, Luma: make([]uint8, w*h)}
	for i := range im.Luma {
		im.Luma[i] = 255
	}
	return im
}

func TestDetectSingleStaff(t *testing.T) {
	img := blankImage(400, 200)
	drawStaff(img, 50, 10)

	staves, systems := Detect(img)
	if len(staves) != 1 {
		t.Fatalf("expected 1 staff, got %d", len(staves))
	}
	if staves[0].Lines[0] != 50 || staves[0].Lines[4] != 90 {
		t.Fatalf("unexpected staff line ys: %v", staves[0].Lines)
	}
	if len(systems) != 1 || len(systems[0].StaffIndices) != 1 {
		t.Fatalf("expected 1 single-staff system, got %+v", systems)
	}
}

func TestDetectGrandStaffPairs(t *testing.T) {
	img := blankImage(400, 400)
	drawStaff(img, 40, 8)   // treble: lines at 40..72, height 32
	drawStaff(img, 150, 8) // bass: gap from 72 to 150 = 78 < 6*32=192

	staves, systems := Detect(img)
	if len(staves) != 2 {
		t.Fatalf("expected 2 staves, got %d", len(staves))
	}
	if len(systems) != 1 {
		t.Fatalf("expected staves to pair into one system, got %d systems", len(systems))
	}
	if len(systems[0].StaffIndices) != 2 {
		t.Fatalf("expected 2-staff system, got %+v", systems[0].StaffIndices)
	}
}

func TestDetectNoStaves(t *testing.T) {
	img := blankImage(200, 200)
	staves, _ := Detect(img)
	if len(staves) != 0 {
		t.Fatalf("expected zero staves on a blank image, got %d", len(staves))
	}
}

package imageio

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"scoreforge/internal/sheet"
)

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestLoadRejectsNonJPEG(t *testing.T) {
	if _, err := Load([]byte("not an image"), nil, ""); err == nil {
		t.Fatal("expected ImageDecodeError for non-JPEG input")
	}
}

func TestLoadRejectsTooSmall(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 10, 10))
	data := encodeJPEG(t, img)
	if _, err := Load(data, nil, ""); err == nil {
		t.Fatal("expected ImageTooSmall error")
	}
}

func TestLoadDoesNotUpscaleUnder1400(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 800, 600))
	for y := 0; y < 600; y++ {
		for x := 0; x < 800; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x + y) % 256)})
		}
	}
	data := encodeJPEG(t, img)
	out, err := Load(data, nil, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.Width != 800 {
		t.Fatalf("expected width to stay 800 (no upscale), got %d", out.Width)
	}
}

func TestLoadDownscalesOver1400(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3200, 2400))
	data := encodeJPEG(t, img)
	out, err := Load(data, nil, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.Width != maxWidth {
		t.Fatalf("expected width downscaled to %d, got %d", maxWidth, out.Width)
	}
}

func TestAutoContrastStretchesRange(t *testing.T) {
	img := &sheet.Image{Width: 4, Height: 1, Luma: []uint8{100, 110, 120, 130}}
	autoContrast(img)
	if img.Luma[0] != 0 {
		t.Fatalf("expected darkest pixel to map to 0, got %d", img.Luma[0])
	}
	if img.Luma[3] != 255 {
		t.Fatalf("expected lightest pixel to map to 255, got %d", img.Luma[3])
	}
}

func TestAutoContrastGuardsFlatImage(t *testing.T) {
	img := &sheet.Image{Width: 3, Height: 1, Luma: []uint8{128, 128, 128}}
	autoContrast(img) // must not divide by zero
	for _, v := range img.Luma {
		if v != 128 {
			t.Fatalf("flat image should be unchanged, got %d", v)
		}
	}
}

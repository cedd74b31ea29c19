package layout

import (
	"scoreforge/internal/neural"
	"scoreforge/internal/sheet"
)

// KeySignature crops the global thumbnail region immediately after the
// clef and runs the two-stage neural key-signature classifier. A nil
// Classifiers yields {None, 0} with a nil error.
func KeySignature(img *sheet.Image, st sheet.Staff, c *neural.Classifiers) (sheet.KeySignature, error) {
	typeCrop := cropNormalize30x15(img, st)
	digitCrop := func() neural.KeyDigitInput {
		return cropNormalize30x27(img, st)
	}
	return neural.ClassifyKeySignature(c, typeCrop, digitCrop)
}

// cropRegion returns the crop window used for key-signature reading:
// just to the right of the clef margin, spanning the staff's vertical
// extent.
func cropRegion(img *sheet.Image, st sheet.Staff) (x0, y0, x1, y1 int) {
	x0 = int(float64(img.Width) * clefMarginFraction)
	x1 = x0 + int(st.Spacing()*3)
	if x1 > img.Width {
		x1 = img.Width
	}
	y0 = st.Top()
	y1 = st.Bottom()
	return
}

func cropNormalize30x15(img *sheet.Image, st sheet.Staff) neural.KeyTypeInput {
	x0, y0, x1, y1 := cropRegion(img, st)
	return neural.KeyTypeInput(resampleNormalize(img, x0, y0, x1, y1, 30, 15))
}

func cropNormalize30x27(img *sheet.Image, st sheet.Staff) neural.KeyDigitInput {
	x0, y0, x1, y1 := cropRegion(img, st)
	return neural.KeyDigitInput(resampleNormalize(img, x0, y0, x1, y1, 30, 27))
}

// resampleNormalize nearest-neighbor resamples the [x0,x1)x[y0,y1)
// region of img into a dstW x dstH buffer normalized to [0,1].
func resampleNormalize(img *sheet.Image, x0, y0, x1, y1, dstW, dstH int) []float32 {
	out := make([]float32, dstW*dstH)
	w := x1 - x0
	h := y1 - y0
	if w <= 0 || h <= 0 {
		return out
	}
	for dy := 0; dy < dstH; dy++ {
		sy := y0 + dy*h/dstH
		for dx := 0; dx < dstW; dx++ {
			sx := x0 + dx*w/dstW
			if sx < 0 || sx >= img.Width || sy < 0 || sy >= img.Height {
				continue
			}
			out[dy*dstW+dx] = float32(img.At(sx, sy)) / 255.0
		}
	}
	return out
}

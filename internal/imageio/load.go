// Package imageio decodes an encoded sheet-music photo, rescales it,
// converts it to single-channel luma, stretches contrast, and
// corrects small skew.
//
// No importable third-party JPEG decoder module was available to
// build on, so this stage uses the standard library's image/jpeg —
// the one place this repo falls back to stdlib for a concern nothing
// else covers. See DESIGN.md.
package imageio

import (
	"bytes"
	"image"
	"image/jpeg"
	"math"
	"net/http"

	"scoreforge/internal/diag"
	"scoreforge/internal/sheet"
)

const (
	maxWidth        = 1400
	minDimension    = 50
	darkThreshold   = 120
	skewSampleRows  = 20
	skewThresholdDeg = 0.15
)

// Load decodes raw image bytes into a prepared luma buffer: rescaled,
// contrast-stretched, and deskewed.
func Load(data []byte, logger *diag.Logger, runID string) (*sheet.Image, error) {
	mime := http.DetectContentType(data)
	if mime != "image/jpeg" {
		return nil, sheet.Stage("imageio", sheet.ErrImageDecode, "unsupported encoding "+mime)
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, sheet.Stage("imageio", sheet.ErrImageDecode, err.Error())
	}

	bounds := img.Bounds()
	if bounds.Dx() < minDimension || bounds.Dy() < minDimension {
		return nil, sheet.Stage("imageio", sheet.ErrImageTooSmall, "")
	}

	luma := toLuma(img)
	luma = rescale(luma)
	autoContrast(luma)

	angle := estimateSkew(luma)
	if math.Abs(angle) > skewThresholdDeg {
		luma = rotate(luma, -angle)
		if logger != nil {
			logger.Logf(diag.StageImageIO, diag.LevelInfo, runID, "corrected skew of %.3f degrees", angle)
		}
	}

	return luma, nil
}

// toLuma converts an arbitrary image.Image to an 8-bit luma buffer
// using BT.601-ish weights.
func toLuma(img image.Image) *sheet.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := &sheet.Image{Width: w, Height: h, Luma: make([]uint8, w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			// RGBA() returns 16-bit-per-channel premultiplied values.
			rf := float64(r >> 8)
			gf := float64(g >> 8)
			bf := float64(bl >> 8)
			y8 := 0.299*rf + 0.587*gf + 0.114*bf
			if y8 > 255 {
				y8 = 255
			} else if y8 < 0 {
				y8 = 0
			}
			out.Set(x, y, uint8(y8+0.5))
		}
	}
	return out
}

// rescale preserves aspect ratio so width <= maxWidth; it never
// upscales (an 800px-wide image is left alone).
func rescale(src *sheet.Image) *sheet.Image {
	if src.Width <= maxWidth {
		return src
	}
	scale := float64(maxWidth) / float64(src.Width)
	dstW := maxWidth
	dstH := int(math.Round(float64(src.Height) * scale))
	if dstH < 1 {
		dstH = 1
	}
	return bilinearResize(src, dstW, dstH)
}

// bilinearResize is a hand-rolled resampler following a per-pixel
// scanline loop idiom: it renders pixel-by-pixel over the destination
// buffer rather than calling into an image-scaling library.
func bilinearResize(src *sheet.Image, dstW, dstH int) *sheet.Image {
	dst := &sheet.Image{Width: dstW, Height: dstH, Luma: make([]uint8, dstW*dstH)}
	xRatio := float64(src.Width-1) / float64(maxInt(dstW-1, 1))
	yRatio := float64(src.Height-1) / float64(maxInt(dstH-1, 1))

	for dy := 0; dy < dstH; dy++ {
		sy := float64(dy) * yRatio
		y0 := int(sy)
		y1 := minInt(y0+1, src.Height-1)
		fy := sy - float64(y0)

		for dx := 0; dx < dstW; dx++ {
			sx := float64(dx) * xRatio
			x0 := int(sx)
			x1 := minInt(x0+1, src.Width-1)
			fx := sx - float64(x0)

			p00 := float64(src.At(x0, y0))
			p10 := float64(src.At(x1, y0))
			p01 := float64(src.At(x0, y1))
			p11 := float64(src.At(x1, y1))

			top := p00*(1-fx) + p10*fx
			bottom := p01*(1-fx) + p11*fx
			v := top*(1-fy) + bottom*fy

			dst.Set(dx, dy, uint8(v+0.5))
		}
	}
	return dst
}

// autoContrast linearly maps [min,max] of the luma histogram to
// [0,255] in place, guarding max==min.
func autoContrast(img *sheet.Image) {
	lo, hi := uint8(255), uint8(0)
	for _, v := range img.Luma {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return
	}
	scale := 255.0 / float64(hi-lo)
	for i, v := range img.Luma {
		nv := (float64(v) - float64(lo)) * scale
		if nv < 0 {
			nv = 0
		} else if nv > 255 {
			nv = 255
		}
		img.Luma[i] = uint8(nv + 0.5)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Package postprocess resamples rendered frames.
package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample scales an opaque frame to w×h with Catmull-Rom filtering.
// img is returned unchanged when it is already that size or smaller.
func Downsample(img *image.NRGBA, w, h int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() <= w && b.Dy() <= h {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Supersampled returns the render size for a target size and factor;
// factors below 1 count as 1.
func Supersampled(w, h, factor int) (int, int) {
	if factor < 1 {
		factor = 1
	}
	return w * factor, h * factor
}

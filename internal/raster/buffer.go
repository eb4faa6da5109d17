package raster

import (
	"image"
	"math"
)

// FrameBuffer holds the rendering target as flat slices for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	ZBuf   []float32 // NDC depth per pixel, smaller is closer
}

// NewFrameBuffer allocates a transparent color buffer and a +inf z-buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	n := w * h
	zbuf := make([]float32, n)
	inf := float32(math.Inf(1))
	for i := range zbuf {
		zbuf[i] = inf
	}
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]uint8, n*4),
		ZBuf:   zbuf,
	}
}

// Clear fills the color buffer with an opaque color.
func (fb *FrameBuffer) Clear(r, g, b uint8) {
	for i := 0; i < len(fb.Color); i += 4 {
		fb.Color[i] = r
		fb.Color[i+1] = g
		fb.Color[i+2] = b
		fb.Color[i+3] = 255
	}
}

// blend writes c over the pixel with straight alpha.
func (fb *FrameBuffer) blend(i int, r, g, b, a uint8) {
	p := i * 4
	if a == 255 {
		fb.Color[p], fb.Color[p+1], fb.Color[p+2], fb.Color[p+3] = r, g, b, 255
		return
	}
	fa := float32(a) / 255
	inv := 1 - fa
	fb.Color[p] = clamp255(float32(r)*fa + float32(fb.Color[p])*inv)
	fb.Color[p+1] = clamp255(float32(g)*fa + float32(fb.Color[p+1])*inv)
	fb.Color[p+2] = clamp255(float32(b)*fa + float32(fb.Color[p+2])*inv)
	fb.Color[p+3] = clamp255(float32(a) + float32(fb.Color[p+3])*inv)
}

// Image copies the color buffer into a new image.
func (fb *FrameBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.Color)
	return img
}

func clamp255(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

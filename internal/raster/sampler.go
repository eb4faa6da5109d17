package raster

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// SampleTexture performs bilinear filtering with UV wrapping. v runs down
// the image rows; OBJ texture coordinates must be flipped by the caller.
// Accesses tex.Pix directly for performance.
func SampleTexture(tex *image.NRGBA, u, v float32) (r, g, b, a uint8) {
	w := tex.Rect.Dx()
	h := tex.Rect.Dy()

	u -= math32.Floor(u)
	v -= math32.Floor(v)

	fx := u * float32(w-1)
	fy := v * float32(h-1)
	x0 := int(fx)
	y0 := int(fy)
	x1 := (x0 + 1) % w
	y1 := (y0 + 1) % h
	dx := fx - float32(x0)
	dy := fy - float32(y0)

	stride := tex.Stride
	pix := tex.Pix

	i00 := y0*stride + x0*4
	i10 := y0*stride + x1*4
	i01 := y1*stride + x0*4
	i11 := y1*stride + x1*4

	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	mix := func(o int) uint8 {
		return clamp255(float32(pix[i00+o])*w00 + float32(pix[i10+o])*w10 +
			float32(pix[i01+o])*w01 + float32(pix[i11+o])*w11)
	}
	return mix(0), mix(1), mix(2), mix(3)
}

// SampleEquirect looks up a direction in an equirectangular (latitude/
// longitude) environment image. -Z maps to the horizontal center, +Y to the
// top row.
func SampleEquirect(env *image.NRGBA, dir mgl32.Vec3) (r, g, b, a uint8) {
	d := dir.Normalize()
	u := 0.5 + math32.Atan2(d[0], -d[2])/(2*math32.Pi)
	v := math32.Acos(mgl32.Clamp(d[1], -1, 1)) / math32.Pi
	return SampleTexture(env, u, mgl32.Clamp(v, 0, 0.9999))
}

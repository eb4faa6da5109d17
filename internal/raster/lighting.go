package raster

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"obj-scene-renderer/internal/mtl"
)

// LightConfig holds the per-frame lighting parameters.
type LightConfig struct {
	Position mgl32.Vec3 // point light, world space
	Color    mgl32.Vec3
	Eye      mgl32.Vec3 // camera position, world space
	Ambient  float32    // ambient light intensity, scaled by Ka
	Exposure float32
	InvGamma float32
}

// DefaultLightConfig returns a white light at (5, 5, 5), matching the
// classroom scenes.
func DefaultLightConfig() LightConfig {
	return LightConfig{
		Position: mgl32.Vec3{5, 5, 5},
		Color:    mgl32.Vec3{1, 1, 1},
		Ambient:  0.2,
		Exposure: 1.6,
		InvGamma: 1.0 / 2.2,
	}
}

// BlinnPhong returns linear radiance at p with normal n for a surface of
// material m whose diffuse color (Kd times texel) is base. The surface is
// lit from both sides.
func (lc *LightConfig) BlinnPhong(m *mtl.Material, base, p, n mgl32.Vec3) mgl32.Vec3 {
	v := lc.Eye.Sub(p)
	if v.Len() < 1e-6 {
		v = n
	}
	v = v.Normalize()
	if n.Dot(v) < 0 {
		n = n.Mul(-1)
	}
	l := lc.Position.Sub(p).Normalize()
	h := l.Add(v)
	if h.Len() > 1e-6 {
		h = h.Normalize()
	}

	ndl := math32.Max(n.Dot(l), 0)
	var spec float32
	if ndl > 0 {
		spec = math32.Pow(math32.Max(n.Dot(h), 0), math32.Max(m.Shininess, 1))
	}

	ambient := mul(m.Ambient, base).Mul(lc.Ambient)
	diffuse := mul(base, lc.Color).Mul(ndl)
	specular := mul(m.Specular, lc.Color).Mul(spec)
	return ambient.Add(diffuse).Add(specular)
}

// Encode tone maps linear radiance and converts it to 8-bit sRGB.
func (lc *LightConfig) Encode(c mgl32.Vec3) (r, g, b uint8) {
	e := func(x float32) uint8 {
		t := ACESTonemap(float64(x * lc.Exposure))
		return clamp255(float32(math.Pow(t, float64(lc.InvGamma))) * 255)
	}
	return e(c[0]), e(c[1]), e(c[2])
}

func mul(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// reflect mirrors the incident direction i about n.
func reflect(i, n mgl32.Vec3) mgl32.Vec3 {
	return i.Sub(n.Mul(2 * n.Dot(i)))
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float32

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = float32(math.Pow(float64(i)/255.0, 2.2))
	}
}

func linear(r, g, b uint8) mgl32.Vec3 {
	return mgl32.Vec3{srgbToLinear[r], srgbToLinear[g], srgbToLinear[b]}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

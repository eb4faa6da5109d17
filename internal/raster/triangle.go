package raster

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"obj-scene-renderer/internal/mtl"
	"obj-scene-renderer/internal/scene"
)

// vertex is one projected triangle corner.
type vertex struct {
	sx, sy, sz float32 // pixel coordinates and NDC depth
	invW       float32
	world      mgl32.Vec3
	normal     mgl32.Vec3
	uv         mgl32.Vec2
}

// surface shades the fragments of one triangle.
type surface struct {
	mat     *mtl.Material
	tex     *image.NRGBA
	env     *image.NRGBA
	mode    scene.Shading
	hasUV   bool
	lc      *LightConfig
	faceN   mgl32.Vec3 // world-space face normal for flat shading
	faceP   mgl32.Vec3 // centroid
	opacity float32
}

// shade returns the encoded fragment color, or ok=false for a discarded
// (nearly transparent) texel.
func (s *surface) shade(p, n mgl32.Vec3, uv mgl32.Vec2) (r, g, b, a uint8, ok bool) {
	base := s.mat.Diffuse
	alpha := s.opacity
	if s.hasUV {
		tr, tg, tb, ta := SampleTexture(s.tex, uv[0], 1-uv[1])
		if ta < 8 {
			return 0, 0, 0, 0, false
		}
		base = mul(base, linear(tr, tg, tb))
		alpha *= float32(ta) / 255
	}

	if s.mode == scene.Flat {
		p, n = s.faceP, s.faceN
	} else if l := n.Len(); l > 1e-8 {
		n = n.Mul(1 / l)
	} else {
		n = s.faceN
	}

	c := s.lc.BlinnPhong(s.mat, base, p, n)
	if s.mode == scene.Environment && s.env != nil {
		view := p.Sub(s.lc.Eye)
		if view.Dot(n) > 0 {
			n = n.Mul(-1)
		}
		er, eg, eb, _ := SampleEquirect(s.env, reflect(view, n))
		c = c.Add(mul(s.mat.Specular, linear(er, eg, eb)))
	}

	r, g, b = s.lc.Encode(c)
	return r, g, b, clamp255(alpha * 255), true
}

// fillTriangle rasterizes a triangle with a z-buffer and perspective-correct
// attribute interpolation. Opaque fragments write depth; translucent ones
// are blended without it.
//
// Pixel loop allocates nothing.
func fillTriangle(fb *FrameBuffer, v *[3]vertex, s *surface, cullBack bool) {
	x0, y0, z0 := v[0].sx, v[0].sy, v[0].sz
	x1, y1, z1 := v[1].sx, v[1].sy, v[1].sz
	x2, y2, z2 := v[2].sx, v[2].sy, v[2].sz

	// Barycentric setup; det is twice the signed screen area, negative for
	// counter-clockwise (front-facing) triangles since screen y points down.
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	if cullBack && det > 0 {
		return
	}
	invDet := 1 / det

	minX, maxX, minY, maxY, ok := clipBox(fb, x0, x1, x2, y0, y1, y2)
	if !ok {
		return
	}

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for py := minY; py <= maxY; py++ {
		dsy := float32(py) + 0.5 - y2
		rowOff := py * fb.Width
		for px := minX; px <= maxX; px++ {
			dsx := float32(px) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1 - w0 - w1

			if w0 < -0.0001 || w1 < -0.0001 || w2 < -0.0001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			if z < -1 || z > 1 {
				continue
			}
			zIdx := rowOff + px
			if z >= fb.ZBuf[zIdx] {
				continue
			}

			// perspective-correct weights
			iw := w0*v[0].invW + w1*v[1].invW + w2*v[2].invW
			a0 := w0 * v[0].invW / iw
			a1 := w1 * v[1].invW / iw
			a2 := 1 - a0 - a1

			p := v[0].world.Mul(a0).Add(v[1].world.Mul(a1)).Add(v[2].world.Mul(a2))
			n := v[0].normal.Mul(a0).Add(v[1].normal.Mul(a1)).Add(v[2].normal.Mul(a2))
			uv := v[0].uv.Mul(a0).Add(v[1].uv.Mul(a1)).Add(v[2].uv.Mul(a2))

			r, g, b, a, ok := s.shade(p, n, uv)
			if !ok {
				continue
			}
			if a == 255 {
				fb.ZBuf[zIdx] = z
			}
			fb.blend(zIdx, r, g, b, a)
		}
	}
}

// strokeTriangle draws the three edges of a triangle with depth testing.
func strokeTriangle(fb *FrameBuffer, v *[3]vertex, r, g, b uint8) {
	for i := 0; i < 3; i++ {
		drawLine(fb, &v[i], &v[(i+1)%3], r, g, b)
	}
}

func drawLine(fb *FrameBuffer, a, b *vertex, r, g, bl uint8) {
	dx, dy := b.sx-a.sx, b.sy-a.sy
	steps := int(math32.Ceil(math32.Max(math32.Abs(dx), math32.Abs(dy))))
	if steps == 0 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		t := float32(i) / float32(steps)
		x := int(a.sx + dx*t)
		y := int(a.sy + dy*t)
		if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
			continue
		}
		z := a.sz + (b.sz-a.sz)*t
		if z < -1 || z > 1 {
			continue
		}
		idx := y*fb.Width + x
		// lines sit on their own faces, so allow a small bias
		if z > fb.ZBuf[idx]+1e-4 {
			continue
		}
		fb.ZBuf[idx] = z
		fb.blend(idx, r, g, bl, 255)
	}
}

func clipBox(fb *FrameBuffer, x0, x1, x2, y0, y1, y2 float32) (minX, maxX, minY, maxY int, ok bool) {
	minX = int(math32.Floor(math32.Min(math32.Min(x0, x1), x2)))
	maxX = int(math32.Ceil(math32.Max(math32.Max(x0, x1), x2)))
	minY = int(math32.Floor(math32.Min(math32.Min(y0, y1), y2)))
	maxY = int(math32.Ceil(math32.Max(math32.Max(y0, y1), y2)))

	minX = max(minX, 0)
	minY = max(minY, 0)
	maxX = min(maxX, fb.Width-1)
	maxY = min(maxY, fb.Height-1)
	return minX, maxX, minY, maxY, minX <= maxX && minY <= maxY
}

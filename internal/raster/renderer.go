// Package raster is a CPU triangle rasterizer for built scenes: z-buffered,
// flat, Phong or environment-mapped shading, alpha blending and an optional
// wireframe mode.
package raster

import (
	"image"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"

	"obj-scene-renderer/internal/camera"
	"obj-scene-renderer/internal/obj"
	"obj-scene-renderer/internal/scene"
	"obj-scene-renderer/internal/texture"
)

// Options controls a render.
type Options struct {
	Width, Height int

	// Textures resolves map_Kd images; nil renders material colors only.
	Textures texture.Resolver

	// Environment is an equirectangular image used by environment shading
	// and, with Skybox, drawn behind the scene.
	Environment *image.NRGBA
	Skybox      bool

	Wireframe bool
	CullBack  bool

	// Shading overrides every node's mode when set.
	Shading scene.Shading

	// Light replaces the scene light; the eye is always taken from the camera.
	Light *LightConfig
}

// Render draws sc through cam into a new Width×Height image.
func Render(sc *scene.Scene, cam camera.Camera, opts Options) *image.NRGBA {
	if opts.Width <= 0 || opts.Height <= 0 {
		return image.NewNRGBA(image.Rectangle{})
	}
	fb := NewFrameBuffer(opts.Width, opts.Height)

	lc := DefaultLightConfig()
	if opts.Light != nil {
		lc = *opts.Light
	} else if sc.Light != (scene.Light{}) {
		lc.Position = sc.Light.Position
		lc.Color = sc.Light.Color
	}
	lc.Eye = cam.Eye()

	view := cam.View()
	proj := sc.Projection
	if proj == (camera.Projection{}) {
		proj = camera.DefaultProjection()
	}
	pm := proj.Matrix(float32(opts.Width) / float32(opts.Height))

	bg := sc.Background
	fb.Clear(clamp255(bg[0]*255), clamp255(bg[1]*255), clamp255(bg[2]*255))
	if opts.Skybox && opts.Environment != nil {
		drawSky(fb, opts.Environment, pm, view)
	}

	for _, item := range sc.DrawList() {
		mode := item.Shading
		if opts.Shading != scene.Inherit {
			mode = opts.Shading
		}
		d := drawer{
			fb:    fb,
			mvp:   pm.Mul4(view).Mul4(item.World),
			model: item.World,
			nmat:  item.World.Mat3().Inv().Transpose(),
			lc:    &lc,
			opts:  &opts,
			mode:  mode,
		}
		d.mesh(item.Mesh, textureFor(opts.Textures, item))
	}
	return fb.Image()
}

// textureFor resolves a material's map_Kd against its model's directory.
func textureFor(res texture.Resolver, item scene.DrawItem) *image.NRGBA {
	name := item.Mesh.Material.DiffuseMap
	if res == nil || name == "" {
		return nil
	}
	if !filepath.IsAbs(name) && item.Node.Model != "" {
		name = filepath.Join(filepath.Dir(item.Node.Model), name)
	}
	return res.Resolve(name)
}

type drawer struct {
	fb    *FrameBuffer
	mvp   mgl32.Mat4
	model mgl32.Mat4
	nmat  mgl32.Mat3
	lc    *LightConfig
	opts  *Options
	mode  scene.Shading
}

func (d *drawer) mesh(m *obj.Mesh, tex *image.NRGBA) {
	if len(m.Indices) == 0 {
		return
	}
	normals := m.Normals
	if normals == nil && d.mode != scene.Flat {
		normals = m.SmoothNormals()
	}

	s := surface{
		mat:     m.Material,
		tex:     tex,
		env:     d.opts.Environment,
		mode:    d.mode,
		hasUV:   tex != nil && m.TexCoords != nil,
		lc:      d.lc,
		opacity: m.Material.Opacity,
	}

	var tri [3]vertex
	for _, idx := range m.Indices {
		visible := true
		for k, vi := range idx {
			if !d.project(&tri[k], m, normals, vi) {
				visible = false
				break
			}
		}
		if !visible {
			continue
		}

		e1 := tri[1].world.Sub(tri[0].world)
		e2 := tri[2].world.Sub(tri[0].world)
		fn := e1.Cross(e2)
		if l := fn.Len(); l > 1e-12 {
			fn = fn.Mul(1 / l)
		}
		s.faceN = fn
		s.faceP = tri[0].world.Add(tri[1].world).Add(tri[2].world).Mul(1.0 / 3)

		if d.opts.Wireframe {
			r, g, b := d.lc.Encode(d.lc.BlinnPhong(m.Material, m.Material.Diffuse, s.faceP, fn))
			strokeTriangle(d.fb, &tri, r, g, b)
			continue
		}
		fillTriangle(d.fb, &tri, &s, d.opts.CullBack)
	}
}

// project transforms vertex vi into out. It reports false when the vertex
// is behind the camera, in which case the triangle is dropped.
func (d *drawer) project(out *vertex, m *obj.Mesh, normals []mgl32.Vec3, vi uint32) bool {
	p := m.Vertices[vi]
	clip := d.mvp.Mul4x1(p.Vec4(1))
	if clip[3] <= 1e-6 {
		return false
	}
	invW := 1 / clip[3]
	out.sx = (clip[0]*invW + 1) * 0.5 * float32(d.fb.Width)
	out.sy = (1 - clip[1]*invW) * 0.5 * float32(d.fb.Height)
	out.sz = clip[2] * invW
	out.invW = invW
	out.world = mgl32.TransformCoordinate(p, d.model)

	out.normal = mgl32.Vec3{}
	if normals != nil {
		out.normal = d.nmat.Mul3x1(normals[vi])
	}
	out.uv = mgl32.Vec2{}
	if m.TexCoords != nil {
		out.uv = m.TexCoords[vi]
	}
	return true
}

// drawSky fills the background with the environment seen along each pixel's
// view ray. Only the camera rotation is used, so the sky stays at infinity.
func drawSky(fb *FrameBuffer, env *image.NRGBA, proj, view mgl32.Mat4) {
	rot := view
	rot.SetCol(3, mgl32.Vec4{0, 0, 0, 1})
	inv := proj.Mul4(rot).Inv()
	for y := 0; y < fb.Height; y++ {
		ny := 1 - (float32(y)+0.5)/float32(fb.Height)*2
		for x := 0; x < fb.Width; x++ {
			nx := (float32(x)+0.5)/float32(fb.Width)*2 - 1
			w := inv.Mul4x1(mgl32.Vec4{nx, ny, 1, 1})
			dir := w.Vec3().Mul(1 / w[3])
			r, g, b, _ := SampleEquirect(env, dir)
			fb.blend(y*fb.Width+x, r, g, b, 255)
		}
	}
}

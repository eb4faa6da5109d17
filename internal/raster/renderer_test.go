package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obj-scene-renderer/internal/camera"
	"obj-scene-renderer/internal/mtl"
	"obj-scene-renderer/internal/obj"
	"obj-scene-renderer/internal/scene"
)

const (
	testW = 64
	testH = 48
)

var background = color.NRGBA{0, 0, 128, 255}

func matte(name string, kd mgl32.Vec3) *mtl.Material {
	m := mtl.New(name)
	m.Diffuse = kd
	m.Specular = mgl32.Vec3{}
	return m
}

// quad spans [-1, 1]² at depth z, counter-clockwise seen from +Z.
func quad(z float32, m *mtl.Material, reversed bool) obj.Mesh {
	idx := [][3]uint32{{0, 1, 2}, {0, 2, 3}}
	if reversed {
		idx = [][3]uint32{{0, 2, 1}, {0, 3, 2}}
	}
	return obj.Mesh{
		Name:      m.Name,
		Vertices:  []mgl32.Vec3{{-1, -1, z}, {1, -1, z}, {1, 1, z}, {-1, 1, z}},
		TexCoords: []mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		Indices:   idx,
		Material:  m,
	}
}

func testScene(meshes ...obj.Mesh) *scene.Scene {
	return &scene.Scene{
		Nodes:      []*scene.Node{{Name: "root", Local: mgl32.Ident4(), Meshes: meshes}},
		Background: mgl32.Vec3{0, 0, 128.0 / 255},
		Shading:    scene.Flat,
		Projection: camera.DefaultProjection(),
	}
}

func render(sc *scene.Scene, opts Options) *image.NRGBA {
	opts.Width, opts.Height = testW, testH
	return Render(sc, camera.Orbit{Distance: 3}, opts)
}

func TestRenderSolidQuad(t *testing.T) {
	img := render(testScene(quad(0, matte("red", mgl32.Vec3{1, 0, 0}), false)), Options{})
	require.Equal(t, image.Rect(0, 0, testW, testH), img.Rect)

	assert.Equal(t, background, img.NRGBAAt(0, 0))
	c := img.NRGBAAt(testW/2, testH/2)
	assert.Greater(t, c.R, uint8(150))
	assert.Zero(t, c.G)
	assert.Zero(t, c.B)
	assert.Equal(t, uint8(255), c.A)
}

func TestRenderDepthOrder(t *testing.T) {
	near := quad(0.5, matte("green", mgl32.Vec3{0, 1, 0}), false)
	far := quad(-0.5, matte("red", mgl32.Vec3{1, 0, 0}), false)

	for _, sc := range []*scene.Scene{testScene(near, far), testScene(far, near)} {
		c := render(sc, Options{}).NRGBAAt(testW/2, testH/2)
		assert.Greater(t, c.G, uint8(100))
		assert.Zero(t, c.R)
	}
}

func TestRenderBlending(t *testing.T) {
	glass := matte("glass", mgl32.Vec3{0, 0, 1})
	glass.SetOpacity(0.5)
	// the transparent mesh is listed first but must be drawn last
	sc := testScene(quad(0.5, glass, false), quad(0, matte("red", mgl32.Vec3{1, 0, 0}), false))

	c := render(sc, Options{}).NRGBAAt(testW/2, testH/2)
	assert.Greater(t, c.R, uint8(60))
	assert.Greater(t, c.B, uint8(60))
	assert.Equal(t, uint8(255), c.A)
}

func TestRenderCullBack(t *testing.T) {
	sc := testScene(quad(0, matte("red", mgl32.Vec3{1, 0, 0}), true))

	assert.Equal(t, background, render(sc, Options{CullBack: true}).NRGBAAt(testW/2, testH/2))
	assert.NotEqual(t, background, render(sc, Options{}).NRGBAAt(testW/2, testH/2))

	front := testScene(quad(0, matte("red", mgl32.Vec3{1, 0, 0}), false))
	assert.NotEqual(t, background, render(front, Options{CullBack: true}).NRGBAAt(testW/2, testH/2))
}

func TestRenderWireframe(t *testing.T) {
	sc := testScene(quad(0, matte("red", mgl32.Vec3{1, 0, 0}), false))

	filled := render(sc, Options{})
	wire := render(sc, Options{Wireframe: true})

	// inside a face, away from every edge
	assert.NotEqual(t, background, filled.NRGBAAt(38, 28))
	assert.Equal(t, background, wire.NRGBAAt(38, 28))
	// on the x = 1 edge
	assert.NotEqual(t, background, wire.NRGBAAt(45, 24))
}

type fakeTextures struct {
	img  *image.NRGBA
	asks []string
}

func (f *fakeTextures) Resolve(path string) *image.NRGBA {
	f.asks = append(f.asks, path)
	return f.img
}

func uniform(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestRenderTexture(t *testing.T) {
	m := matte("crate", mgl32.Vec3{1, 1, 1})
	m.DiffuseMap = "maps/crate.png"
	sc := testScene(quad(0, m, false))
	sc.Nodes[0].Model = "/models/crate.obj"

	tex := &fakeTextures{img: uniform(2, 2, color.NRGBA{G: 255, A: 255})}
	c := render(sc, Options{Textures: tex}).NRGBAAt(testW/2, testH/2)
	assert.Greater(t, c.G, uint8(150))
	assert.Zero(t, c.R)
	require.NotEmpty(t, tex.asks)
	assert.Equal(t, "/models/maps/crate.png", tex.asks[0])

	// without a resolver the material color is used
	c = render(sc, Options{}).NRGBAAt(testW/2, testH/2)
	assert.Greater(t, c.R, uint8(150))
}

func TestRenderEnvironment(t *testing.T) {
	m := matte("chrome", mgl32.Vec3{0.2, 0.2, 0.2})
	m.Specular = mgl32.Vec3{1, 1, 1}
	env := uniform(8, 4, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	phong := render(testScene(quad(0, m, false)), Options{Shading: scene.Phong, Environment: env})
	mirror := render(testScene(quad(0, m, false)), Options{Shading: scene.Environment, Environment: env})

	p, e := phong.NRGBAAt(20, 30), mirror.NRGBAAt(20, 30)
	assert.Greater(t, e.R, p.R)
	assert.Equal(t, background, mirror.NRGBAAt(0, 0))
}

func TestRenderSkybox(t *testing.T) {
	sky := color.NRGBA{R: 200, G: 100, B: 50, A: 255}
	img := render(testScene(), Options{Skybox: true, Environment: uniform(8, 4, sky)})
	assert.Equal(t, sky, img.NRGBAAt(0, 0))
	assert.Equal(t, sky, img.NRGBAAt(testW-1, testH-1))
}

func TestRenderBehindCamera(t *testing.T) {
	// the quad sits behind the orbit camera at z = 3
	img := render(testScene(quad(5, matte("red", mgl32.Vec3{1, 0, 0}), false)), Options{})
	assert.Equal(t, background, img.NRGBAAt(testW/2, testH/2))
}

func TestRenderEmpty(t *testing.T) {
	img := Render(testScene(), camera.Orbit{Distance: 3}, Options{})
	assert.True(t, img.Rect.Empty())
}

func TestSampleTexture(t *testing.T) {
	tex := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	tex.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	tex.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
	tex.SetNRGBA(0, 1, color.NRGBA{B: 255, A: 255})
	tex.SetNRGBA(1, 1, color.NRGBA{A: 255})

	r, g, b, a := SampleTexture(tex, 0, 0)
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, [4]uint8{r, g, b, a})
	r, g, b, a = SampleTexture(tex, 1, 2)
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, [4]uint8{r, g, b, a})
	r, g, _, _ = SampleTexture(tex, 0.5, 0)
	assert.InDelta(t, 128, int(r), 1)
	assert.InDelta(t, 128, int(g), 1)
}

func TestSampleEquirect(t *testing.T) {
	env := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	env.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	env.SetNRGBA(0, 1, color.NRGBA{B: 255, A: 255})

	r, _, b, _ := SampleEquirect(env, mgl32.Vec3{0, 1, 0})
	assert.Equal(t, uint8(255), r)
	assert.Zero(t, b)
	r, _, b, _ = SampleEquirect(env, mgl32.Vec3{0, -3, 0})
	assert.Zero(t, r)
	assert.Equal(t, uint8(255), b)
}

func TestACESTonemap(t *testing.T) {
	assert.Zero(t, ACESTonemap(0))
	assert.Zero(t, ACESTonemap(-1))
	prev := 0.0
	for x := 0.1; x < 10; x += 0.1 {
		v := ACESTonemap(x)
		assert.Greater(t, v, prev)
		prev = v
	}
}

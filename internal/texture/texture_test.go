package texture

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 255, A: 255}
			if (x+y)%2 == 1 {
				c = color.NRGBA{B: 255, A: 128}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func writeImage(t *testing.T, path string, img image.Image) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	switch filepath.Ext(path) {
	case ".png":
		require.NoError(t, png.Encode(f, img))
	case ".bmp":
		require.NoError(t, bmp.Encode(f, img))
	default:
		_, err := f.WriteString("not an image")
		require.NoError(t, err)
	}
}

func TestLoadTexture(t *testing.T) {
	dir := t.TempDir()
	pngPath := filepath.Join(dir, "wood.png")
	writeImage(t, pngPath, checker(4, 2))

	img, err := LoadTexture(pngPath)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 2), img.Rect)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{B: 255, A: 128}, img.NRGBAAt(1, 0))

	bmpPath := filepath.Join(dir, "stone.bmp")
	opaque := image.NewRGBA(image.Rect(0, 0, 3, 3))
	for i := 3; i < len(opaque.Pix); i += 4 {
		opaque.Pix[i] = 255
	}
	opaque.Set(1, 1, color.RGBA{G: 200, A: 255})
	writeImage(t, bmpPath, opaque)
	img, err = LoadTexture(bmpPath)
	require.NoError(t, err)
	assert.Equal(t, uint8(200), img.NRGBAAt(1, 1).G)
	assert.Equal(t, uint8(255), img.NRGBAAt(1, 1).A)

	_, err = LoadTexture(filepath.Join(dir, "missing.png"))
	assert.ErrorContains(t, err, "texture: open")

	junk := filepath.Join(dir, "junk.tga")
	writeImage(t, junk, nil)
	_, err = LoadTexture(junk)
	assert.ErrorContains(t, err, "texture: decode")

	_, err = LoadTexture(filepath.Join(dir, "wood.gif"))
	assert.ErrorContains(t, err, "unknown extension")
}

func TestToNRGBAMovesOrigin(t *testing.T) {
	src := image.NewNRGBA(image.Rect(2, 3, 4, 5))
	src.SetNRGBA(2, 3, color.NRGBA{R: 9, A: 255})
	dst := toNRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 2, 2), dst.Rect)
	assert.Equal(t, uint8(9), dst.NRGBAAt(0, 0).R)

	same := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	assert.Same(t, same, toNRGBA(same))
}

func TestIndex(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"maps/Wood.JPG", "maps/wood.png", "maps/deep/Stone.bmp", "notes.txt"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o644))
	}
	idx := BuildIndex(dir, filepath.Join(dir, "absent"))
	assert.Equal(t, 3, idx.Len())

	p, ok := idx.ResolvePath(`C:\textures\WOOD.jpg`)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "maps/Wood.JPG"), p)

	// stem match prefers the format with alpha
	p, ok = idx.ResolvePath("wood.tga")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "maps/wood.png"), p)

	p, ok = idx.ResolvePath("stone")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "maps/deep/Stone.bmp"), p)

	_, ok = idx.ResolvePath("notes.txt")
	assert.False(t, ok)
}

func TestCache(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "maps", "Brick.png")
	writeImage(t, real, checker(2, 2))

	c := NewCache(BuildIndex(dir), nil)
	assert.Nil(t, c.Resolve(""))

	img := c.Resolve(real)
	require.NotNil(t, img)
	assert.Same(t, img, c.Resolve(real))

	// missing by exact path, found through the index
	viaIndex := c.Resolve(filepath.Join(dir, "brick.png"))
	require.NotNil(t, viaIndex)

	assert.Nil(t, c.Resolve(filepath.Join(dir, "nothing.png")))
	assert.Equal(t, 3, c.Len())

	var wg sync.WaitGroup
	got := make([]*image.NRGBA, 8)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = c.Resolve(real)
		}()
	}
	wg.Wait()
	for _, g := range got {
		assert.Same(t, img, g)
	}
}

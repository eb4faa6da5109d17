package mtl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obj-scene-renderer/internal/loaderr"
)

func parseString(t *testing.T, src string) (*Library, error) {
	t.Helper()
	return Parse(strings.NewReader(src), "test.mtl")
}

func TestParseDefaults(t *testing.T) {
	lib, err := parseString(t, "newmtl X\nKd 0.1 0.2 0.3\nNs 5\n")
	require.NoError(t, err)

	m, ok := lib.Lookup("X")
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{0.1, 0.2, 0.3}, m.Diffuse)
	assert.Equal(t, float32(5), m.Shininess)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, m.Ambient)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, m.Specular)
	assert.Equal(t, float32(1), m.Opacity)
	assert.Empty(t, m.DiffuseMap)
}

func TestOpacityDirectives(t *testing.T) {
	lib, err := parseString(t, "newmtl glass\nTr 0.3\n")
	require.NoError(t, err)
	m, _ := lib.Lookup("glass")
	assert.InDelta(t, 0.7, m.Opacity, 1e-6)

	lib, err = parseString(t, "newmtl glass\nTr 0.3\nd 0.9\n")
	require.NoError(t, err)
	m, _ = lib.Lookup("glass")
	assert.InDelta(t, 0.9, m.Opacity, 1e-6)
}

func TestParseFullMaterial(t *testing.T) {
	src := `# Blender MTL File
newmtl red
Ns 96.078431
Ka 0.2 0 0
Kd 0.8 0 0
Ks 0.5 0.5 0.5
Ni 1.0
d 1.000000
illum 2

newmtl blue
Kd 0 0 0.8
map_Kd -s 1 1 1 textures/blue.png
`
	lib, err := parseString(t, src)
	require.NoError(t, err)
	require.Equal(t, 2, lib.Len())

	red, ok := lib.Lookup("red")
	require.True(t, ok)
	assert.InDelta(t, 96.078431, red.Shininess, 1e-4)
	assert.Equal(t, mgl32.Vec3{0.2, 0, 0}, red.Ambient)
	assert.Equal(t, 2, red.Illum)

	blue, ok := lib.Lookup("blue")
	require.True(t, ok)
	assert.Equal(t, "textures/blue.png", blue.DiffuseMap)
	assert.Equal(t, 1, lib.Index("blue"))
	assert.Equal(t, -1, lib.Index("green"))
}

func TestLastRegisteredWins(t *testing.T) {
	lib, err := parseString(t, "newmtl A\nNs 1\nnewmtl A\nNs 2\n")
	require.NoError(t, err)

	assert.Equal(t, 2, lib.Len())
	m, ok := lib.Lookup("A")
	require.True(t, ok)
	assert.Equal(t, float32(2), m.Shininess)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind loaderr.Kind
		line int
	}{
		{"property before newmtl", "# header\nKd 1 1 1\n", loaderr.UnflushedMaterialContext, 2},
		{"map before newmtl", "map_Kd a.png\n", loaderr.UnflushedMaterialContext, 1},
		{"short color", "newmtl a\nKa 0.5\n", loaderr.MalformedLine, 2},
		{"bad float", "newmtl a\n\nNs high\n", loaderr.MalformedLine, 3},
		{"bad illum", "newmtl a\nillum 2.5\n", loaderr.MalformedLine, 2},
		{"newmtl without name", "newmtl\n", loaderr.MalformedLine, 1},
		{"no materials", "# nothing here\n\n", loaderr.EmptyFile, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib, err := parseString(t, tt.src)
			require.Error(t, err)
			assert.Nil(t, lib)
			assert.ErrorIs(t, err, tt.kind)

			le, ok := err.(*loaderr.Error)
			require.True(t, ok)
			assert.Equal(t, tt.line, le.Line)
			assert.Equal(t, "test.mtl", le.File)
		})
	}
}

func TestUnknownDirectivesIgnored(t *testing.T) {
	lib, err := parseString(t, "Ke 0 0 0\nnewmtl a\nNi 1.45\nmap_Bump n.png\nKd 0.5 0.5 0.5\n")
	require.NoError(t, err)
	m, _ := lib.Lookup("a")
	assert.Equal(t, mgl32.Vec3{0.5, 0.5, 0.5}, m.Diffuse)
}

func TestLoadAndLoadFS(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.mtl")
	require.NoError(t, os.WriteFile(path, []byte("newmtl rock\nKd 0.4 0.4 0.4\n"), 0644))

	lib, err := Load(path)
	require.NoError(t, err)
	_, ok := lib.Lookup("rock")
	assert.True(t, ok)

	_, err = Load(filepath.Join(dir, "missing.mtl"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	fsys := fstest.MapFS{"models/scene.mtl": {Data: []byte("newmtl leaf\n")}}
	lib, err = LoadFS(fsys, "models/scene.mtl")
	require.NoError(t, err)
	_, ok = lib.Lookup("leaf")
	assert.True(t, ok)
}

func TestMaterialOpacity(t *testing.T) {
	m := New("fade")
	assert.False(t, m.Transparent())
	m.SetOpacity(0.25)
	assert.True(t, m.Transparent())
	m.SetOpacity(-1)
	assert.Equal(t, float32(0), m.Opacity)
	m.SetOpacity(3)
	assert.Equal(t, float32(1), m.Opacity)
}

func TestLibraryMerge(t *testing.T) {
	a := NewLibrary()
	a.Add(New("x"))
	b := NewLibrary()
	nx := New("x")
	nx.Shininess = 42
	b.Add(nx)
	b.Add(New("y"))

	a.Merge(b)
	assert.Equal(t, 3, a.Len())
	m, _ := a.Lookup("x")
	assert.Same(t, nx, m)

	var zero Library
	zero.Add(New("z"))
	_, ok := zero.Lookup("z")
	assert.True(t, ok)
}

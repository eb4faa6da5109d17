package obj

import (
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"obj-scene-renderer/internal/mtl"
)

// Mesh is one material run of an OBJ file, ready for drawing. Indices refer
// to Vertices only. TexCoords and Normals are either nil or aligned 1:1 with
// Vertices.
type Mesh struct {
	Name      string
	Vertices  []mgl32.Vec3
	Normals   []mgl32.Vec3
	TexCoords []mgl32.Vec2
	Indices   [][3]uint32
	Material  *mtl.Material

	// Source lines of the first and last face of the run
	FirstLine int
	LastLine  int
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices)
}

// Bounds returns the axis-aligned bounding box of the vertices.
// An empty mesh returns an inverted box (min > max).
func (m *Mesh) Bounds() (lo, hi mgl32.Vec3) {
	lo = mgl32.Vec3{math32.Inf(1), math32.Inf(1), math32.Inf(1)}
	hi = mgl32.Vec3{math32.Inf(-1), math32.Inf(-1), math32.Inf(-1)}
	for _, v := range m.Vertices {
		for k := 0; k < 3; k++ {
			lo[k] = math32.Min(lo[k], v[k])
			hi[k] = math32.Max(hi[k], v[k])
		}
	}
	return lo, hi
}

// SmoothNormals returns per-vertex normals averaged from the adjacent face
// normals, weighted by face area. It does not modify the mesh.
func (m *Mesh) SmoothNormals() []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(m.Vertices))
	for _, tri := range m.Indices {
		a, b, c := m.Vertices[tri[0]], m.Vertices[tri[1]], m.Vertices[tri[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		for _, i := range tri {
			out[i] = out[i].Add(n)
		}
	}
	for i, n := range out {
		if l := n.Len(); l > 1e-12 {
			out[i] = n.Mul(1 / l)
		}
	}
	return out
}

// Reindex selects how a run's vertex references are renumbered.
type Reindex int

const (
	// Remap maps each referenced vertex to a compact local index in order of
	// first use. Correct for any reference pattern.
	Remap Reindex = iota
	// Window keeps the contiguous vertex range spanned by the run. It matches
	// the behaviour of the classic exporter pipeline but carries unreferenced
	// vertices when references have gaps.
	Window
)

func (r Reindex) String() string {
	switch r {
	case Remap:
		return "remap"
	case Window:
		return "window"
	}
	return fmt.Sprintf("Reindex(%d)", int(r))
}

// ParseReindex parses "remap" or "window". The empty string is Remap.
func ParseReindex(s string) (Reindex, error) {
	switch s {
	case "", "remap":
		return Remap, nil
	case "window":
		return Window, nil
	}
	return Remap, fmt.Errorf("obj: unknown reindex strategy %q", s)
}

// Options controls an import.
type Options struct {
	Reindex Reindex

	// Lenient skips lines with unknown directives with a warning instead of
	// failing the import. Malformed known directives always fail.
	Lenient bool

	// Materials, when set, is available to usemtl before any mtllib line.
	// Libraries referenced by mtllib are merged into a copy of it.
	Materials *mtl.Library

	// FS resolves mtllib references. When nil the OS filesystem is used.
	FS fs.FS

	Logger *slog.Logger
}

func (o *Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

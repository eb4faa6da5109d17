package obj

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"obj-scene-renderer/internal/loaderr"
)

// assemble builds the renderable mesh for one material run.
func assemble(s *stream, run []triangle, strategy Reindex) (Mesh, error) {
	if err := s.checkRange(run); err != nil {
		return Mesh{}, err
	}

	var verts []mgl32.Vec3
	var local func(v int) uint32
	switch strategy {
	case Window:
		verts, local = window(s.vertices, run)
	default:
		verts, local = remap(s.vertices, run)
	}

	indices := make([][3]uint32, len(run))
	for i, tri := range run {
		for k, c := range tri.corners {
			indices[i][k] = local(c.V)
		}
	}

	m := Mesh{
		Name:      run[0].material.Name,
		Vertices:  verts,
		Indices:   indices,
		Material:  run[0].material,
		FirstLine: run[0].line,
		LastLine:  run[len(run)-1].line,
	}
	m.TexCoords = reconcile(run, len(verts), local, s.texcoords, func(c Corner) (int, bool) { return c.T, c.HasT })
	m.Normals = reconcile(run, len(verts), local, s.normals, func(c Corner) (int, bool) { return c.N, c.HasN })
	return m, nil
}

// checkRange validates every 1-based corner index of the run.
func (s *stream) checkRange(run []triangle) error {
	for _, tri := range run {
		for _, c := range tri.corners {
			if c.V < 1 || c.V > len(s.vertices) {
				return loaderr.New("obj", loaderr.IndexOutOfRange, s.name, tri.line,
					"vertex %d, %d declared", c.V, len(s.vertices))
			}
			if c.HasT && (c.T < 1 || c.T > len(s.texcoords)) {
				return loaderr.New("obj", loaderr.IndexOutOfRange, s.name, tri.line,
					"texture coordinate %d, %d declared", c.T, len(s.texcoords))
			}
			if c.HasN && (c.N < 1 || c.N > len(s.normals)) {
				return loaderr.New("obj", loaderr.IndexOutOfRange, s.name, tri.line,
					"normal %d, %d declared", c.N, len(s.normals))
			}
		}
	}
	return nil
}

// remap numbers referenced vertices in order of first use.
func remap(all []mgl32.Vec3, run []triangle) ([]mgl32.Vec3, func(int) uint32) {
	index := make(map[int]uint32)
	var verts []mgl32.Vec3
	for _, tri := range run {
		for _, c := range tri.corners {
			if _, ok := index[c.V]; !ok {
				index[c.V] = uint32(len(verts))
				verts = append(verts, all[c.V-1])
			}
		}
	}
	return verts, func(v int) uint32 { return index[v] }
}

// window keeps all[lo-1:hi] where lo and hi are the smallest and largest
// vertex index of the run.
func window(all []mgl32.Vec3, run []triangle) ([]mgl32.Vec3, func(int) uint32) {
	lo, hi := run[0].corners[0].V, run[0].corners[0].V
	for _, tri := range run {
		for _, c := range tri.corners {
			lo = min(lo, c.V)
			hi = max(hi, c.V)
		}
	}
	base := lo - 1
	return slices.Clone(all[base:hi]), func(v int) uint32 { return uint32(v - base - 1) }
}

// reconcile gives each output vertex slot one attribute value. Every corner
// writes its attribute at its vertex's local index, so the last corner wins
// when a vertex is paired with different attribute indices. It returns nil
// when no corner of the run carries the attribute.
func reconcile[T any](run []triangle, n int, local func(int) uint32, src []T, attr func(Corner) (int, bool)) []T {
	var out []T
	for _, tri := range run {
		for _, c := range tri.corners {
			i, ok := attr(c)
			if !ok {
				continue
			}
			if out == nil {
				out = make([]T, n)
			}
			out[local(c.V)] = src[i-1]
		}
	}
	return out
}

// Package obj imports Wavefront OBJ geometry (*.obj) into renderable meshes.
//
// Only v, vn, vt, f, mtllib and usemtl are understood. Each usemtl starts a
// new logical mesh, so a file is returned as one Mesh per material run, each
// with its own compact vertex buffer and zero-based index buffer.
package obj

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"

	"obj-scene-renderer/internal/loaderr"
	"obj-scene-renderer/internal/mtl"
)

// Import reads an OBJ file from disk. mtllib references are resolved
// relative to the file's directory.
func Import(filename string, opts Options) ([]Mesh, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("obj: open %s: %w", filename, err)
	}
	defer f.Close()
	return Decode(f, filename, opts)
}

// ImportFS reads an OBJ file from fsys; mtllib references are resolved in fsys.
func ImportFS(fsys fs.FS, name string, opts Options) ([]Mesh, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("obj: open %s: %w", name, err)
	}
	defer f.Close()
	opts.FS = fsys
	return Decode(f, name, opts)
}

// Decode reads OBJ data from r. name is used in errors and to resolve
// mtllib references.
func Decode(r io.Reader, name string, opts Options) ([]Mesh, error) {
	log := opts.logger()
	s := &stream{name: name}
	if opts.Materials != nil {
		s.lib = mtl.NewLibrary()
		s.lib.Merge(opts.Materials)
	}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		rec, err := parseLine(scanner.Text(), name, line)
		if err != nil {
			if opts.Lenient && errors.Is(err, loaderr.UnknownDirective) {
				log.Warn("skipping line", "file", name, "line", line, "err", err)
				continue
			}
			return nil, err
		}
		if rec == nil {
			continue
		}
		if err := s.add(rec, line, &opts); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("obj: read %s: %w", name, err)
	}

	if s.records == 0 {
		return nil, loaderr.New("obj", loaderr.EmptyFile, name, 0, "")
	}
	if len(s.faces) == 0 {
		return nil, loaderr.New("obj", loaderr.NoFacesProduced, name, 0, "%d records read", s.records)
	}
	log.Debug("file read", "file", name, "vertices", len(s.vertices), "texcoords", len(s.texcoords),
		"normals", len(s.normals), "faces", len(s.faces))

	runs := s.runs()
	meshes := make([]Mesh, 0, len(runs))
	for _, run := range runs {
		m, err := assemble(s, run, opts.Reindex)
		if err != nil {
			return nil, err
		}
		log.Debug("mesh created", "file", name, "material", m.Material.Name,
			"lines", fmt.Sprintf("%d-%d", m.FirstLine, m.LastLine),
			"vertices", len(m.Vertices), "triangles", len(m.Indices))
		meshes = append(meshes, m)
	}
	return meshes, nil
}

// triangle is one triangulated face with the context it was read in.
type triangle struct {
	corners  [3]Corner
	mesh     int
	material *mtl.Material
	line     int
}

// stream accumulates the flat arrays of one file.
type stream struct {
	name      string
	vertices  []mgl32.Vec3
	normals   []mgl32.Vec3
	texcoords []mgl32.Vec2
	faces     []triangle
	records   int

	lib      *mtl.Library
	material *mtl.Material // nil until the first usemtl
	meshID   int
	fallback *mtl.Material
}

func (s *stream) add(rec Record, line int, opts *Options) error {
	s.records++
	switch r := rec.(type) {
	case Comment:
	case Vertex:
		s.vertices = append(s.vertices, r.Pos)
	case Normal:
		s.normals = append(s.normals, r.Dir)
	case TexCoord:
		s.texcoords = append(s.texcoords, r.UV)
	case Face:
		mat := s.material
		if mat == nil {
			if s.fallback == nil {
				s.fallback = mtl.Default()
			}
			mat = s.fallback
		}
		for _, tri := range r.Triangles() {
			s.faces = append(s.faces, triangle{corners: tri, mesh: s.meshID, material: mat, line: line})
		}
	case MaterialLib:
		lib, err := s.loadLibrary(r.File, opts)
		if err != nil {
			return fmt.Errorf("obj: mtllib %s:%d: %w", s.name, line, err)
		}
		if s.lib == nil {
			s.lib = mtl.NewLibrary()
		}
		s.lib.Merge(lib)
	case UseMaterial:
		if s.lib == nil {
			return loaderr.New("obj", loaderr.UnresolvedMaterialReference, s.name, line,
				"usemtl %q before any mtllib", r.Name)
		}
		m, ok := s.lib.Lookup(r.Name)
		if !ok {
			return loaderr.New("obj", loaderr.UnresolvedMaterialReference, s.name, line,
				"material %q not in library", r.Name)
		}
		s.meshID++
		s.material = m
		opts.logger().Debug("loading mesh with material", "file", s.name, "line", line, "material", r.Name)
	}
	return nil
}

func (s *stream) loadLibrary(file string, opts *Options) (*mtl.Library, error) {
	if opts.FS != nil {
		return mtl.LoadFS(opts.FS, path.Join(path.Dir(s.name), file))
	}
	if filepath.IsAbs(file) {
		return mtl.Load(file)
	}
	return mtl.Load(filepath.Join(filepath.Dir(s.name), file))
}

// runs partitions the faces into contiguous groups of equal mesh id.
// Ids only change on usemtl and faces are appended in file order, so every
// id forms exactly one run.
func (s *stream) runs() [][]triangle {
	var out [][]triangle
	start := 0
	for i := 1; i <= len(s.faces); i++ {
		if i == len(s.faces) || s.faces[i].mesh != s.faces[start].mesh {
			out = append(out, s.faces[start:i])
			start = i
		}
	}
	return out
}

// Package scene holds a tree of imported OBJ models with their transforms
// and produces the ordered draw list the rasterizer consumes.
package scene

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mitchellh/go-homedir"

	"obj-scene-renderer/internal/camera"
	"obj-scene-renderer/internal/mtl"
	"obj-scene-renderer/internal/obj"
)

// Node is one element of the scene graph. Meshes may be empty for pure
// grouping nodes.
type Node struct {
	Name     string
	Model    string // resolved OBJ path, empty for groups
	Meshes   []obj.Mesh
	Local    mgl32.Mat4
	Shading  Shading // Inherit takes the parent's mode
	Children []*Node
}

// Light is a point light.
type Light struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
}

// Scene is a built description, ready to render.
type Scene struct {
	Nodes       []*Node
	Background  mgl32.Vec3
	Shading     Shading
	Light       Light
	Environment string // resolved path of the environment image, if any
	Camera      camera.Camera
	Projection  camera.Projection
}

// DrawItem is one mesh placed in the world.
type DrawItem struct {
	Node    *Node
	Mesh    *obj.Mesh
	World   mgl32.Mat4
	Shading Shading
}

// Walk visits nodes depth-first, parents before children, passing the
// accumulated world matrix and the effective shading. Returning false skips
// the node's children.
func (s *Scene) Walk(fn func(n *Node, world mgl32.Mat4, shading Shading) bool) {
	var visit func(nodes []*Node, parent mgl32.Mat4, shading Shading)
	visit = func(nodes []*Node, parent mgl32.Mat4, shading Shading) {
		for _, n := range nodes {
			world := parent.Mul4(n.Local)
			sh := shading
			if n.Shading != Inherit {
				sh = n.Shading
			}
			if fn(n, world, sh) {
				visit(n.Children, world, sh)
			}
		}
	}
	base := s.Shading
	if base == Inherit {
		base = Flat
	}
	visit(s.Nodes, mgl32.Ident4(), base)
}

// DrawList returns every mesh of the scene: opaque meshes first, then
// transparent ones, each group in visit order.
func (s *Scene) DrawList() []DrawItem {
	var opaque, transparent []DrawItem
	s.Walk(func(n *Node, world mgl32.Mat4, sh Shading) bool {
		for i := range n.Meshes {
			m := &n.Meshes[i]
			item := DrawItem{Node: n, Mesh: m, World: world, Shading: sh}
			if m.Material.Transparent() {
				transparent = append(transparent, item)
			} else {
				opaque = append(opaque, item)
			}
		}
		return true
	})
	return append(opaque, transparent...)
}

// Find returns the first node named name in visit order.
func (s *Scene) Find(name string) *Node {
	var found *Node
	s.Walk(func(n *Node, _ mgl32.Mat4, _ Shading) bool {
		if found == nil && n.Name == name {
			found = n
		}
		return found == nil
	})
	return found
}

// SetOpacity fades every material of the named node, children excluded.
func (s *Scene) SetOpacity(name string, a float32) error {
	n := s.Find(name)
	if n == nil {
		return fmt.Errorf("scene: no node named %q", name)
	}
	for i := range n.Meshes {
		n.Meshes[i].Material.SetOpacity(a)
	}
	return nil
}

// Bounds returns the world-space bounding box of all meshes. An empty scene
// gives an inverted box.
func (s *Scene) Bounds() (lo, hi mgl32.Vec3) {
	lo = mgl32.Vec3{math32.Inf(1), math32.Inf(1), math32.Inf(1)}
	hi = mgl32.Vec3{math32.Inf(-1), math32.Inf(-1), math32.Inf(-1)}
	s.Walk(func(n *Node, world mgl32.Mat4, _ Shading) bool {
		for _, m := range n.Meshes {
			for _, v := range m.Vertices {
				p := mgl32.TransformCoordinate(v, world)
				for k := 0; k < 3; k++ {
					lo[k] = math32.Min(lo[k], p[k])
					hi[k] = math32.Max(hi[k], p[k])
				}
			}
		}
		return true
	})
	return lo, hi
}

// Stats counts meshes and triangles.
func (s *Scene) Stats() (meshes, triangles int) {
	s.Walk(func(n *Node, _ mgl32.Mat4, _ Shading) bool {
		meshes += len(n.Meshes)
		for i := range n.Meshes {
			triangles += n.Meshes[i].TriangleCount()
		}
		return true
	})
	return meshes, triangles
}

// Build imports every model of d. Relative paths are resolved against
// baseDir. Each model file is parsed once; nodes sharing a file get their own
// copy of the materials so opacity changes stay per node.
func Build(d *Description, baseDir string, opts obj.Options) (*Scene, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	b := &builder{baseDir: baseDir, opts: opts, log: log, cache: make(map[string][]obj.Mesh)}

	s := &Scene{
		Background: mgl32.Vec3(d.Background),
		Shading:    d.Shading,
		Light:      Light{Position: mgl32.Vec3(d.Light.Position), Color: mgl32.Vec3{1, 1, 1}},
	}
	if d.Light.Color != nil {
		s.Light.Color = mgl32.Vec3(*d.Light.Color)
	}
	if d.Environment != "" {
		p, err := b.resolve(d.Environment)
		if err != nil {
			return nil, err
		}
		s.Environment = p
	}

	for _, nd := range d.Nodes {
		n, err := b.node(nd)
		if err != nil {
			return nil, err
		}
		s.Nodes = append(s.Nodes, n)
	}

	lo, hi := s.Bounds()
	s.Camera, s.Projection = d.CameraFor(lo, hi)
	meshes, tris := s.Stats()
	log.Debug("scene built", "models", len(b.cache), "meshes", meshes, "triangles", tris)
	return s, nil
}

type builder struct {
	baseDir string
	opts    obj.Options
	log     *slog.Logger
	cache   map[string][]obj.Mesh
}

func (b *builder) resolve(p string) (string, error) {
	p, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("scene: expand %s: %w", p, err)
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(b.baseDir, p)
	}
	return p, nil
}

func (b *builder) node(nd NodeDesc) (*Node, error) {
	n := &Node{
		Name:    nd.Name,
		Local:   Transform(nd.Translate, nd.Rotate, nd.Scale),
		Shading: nd.Shading,
	}
	if nd.Model != "" {
		path, err := b.resolve(nd.Model)
		if err != nil {
			return nil, err
		}
		meshes, err := b.load(path)
		if err != nil {
			return nil, err
		}
		n.Model = path
		n.Meshes = cloneMaterials(meshes)
		if nd.Opacity != nil {
			for i := range n.Meshes {
				n.Meshes[i].Material.SetOpacity(*nd.Opacity)
			}
		}
	}
	for _, cd := range nd.Children {
		c, err := b.node(cd)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, c)
	}
	return n, nil
}

func (b *builder) load(path string) ([]obj.Mesh, error) {
	if m, ok := b.cache[path]; ok {
		return m, nil
	}
	meshes, err := obj.Import(path, b.opts)
	if err != nil {
		return nil, err
	}
	b.log.Debug("imported model", "path", path, "meshes", len(meshes))
	b.cache[path] = meshes
	return meshes, nil
}

// cloneMaterials copies the mesh headers and materials; geometry is shared.
func cloneMaterials(meshes []obj.Mesh) []obj.Mesh {
	out := make([]obj.Mesh, len(meshes))
	seen := make(map[*mtl.Material]*mtl.Material)
	for i, m := range meshes {
		c, ok := seen[m.Material]
		if !ok {
			cp := *m.Material
			c = &cp
			seen[m.Material] = c
		}
		m.Material = c
		out[i] = m
	}
	return out
}

// Transform composes T·Rz·Ry·Rx·S. Rotation angles are in degrees. A zero
// scale vector is treated as unit scale.
func Transform(translate, rotateDeg, scale [3]float32) mgl32.Mat4 {
	if scale == [3]float32{} {
		scale = [3]float32{1, 1, 1}
	}
	t := mgl32.Translate3D(translate[0], translate[1], translate[2])
	r := mgl32.HomogRotate3DZ(mgl32.DegToRad(rotateDeg[2])).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(rotateDeg[1]))).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(rotateDeg[0])))
	s := mgl32.Scale3D(scale[0], scale[1], scale[2])
	return t.Mul4(r).Mul4(s)
}

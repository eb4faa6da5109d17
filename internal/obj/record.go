package obj

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Record is one classified line of an OBJ file. The concrete type is one of
// Comment, Vertex, Normal, TexCoord, Face, MaterialLib or UseMaterial.
type Record interface {
	directive() string
}

// Comment is a "#" line.
type Comment struct {
	Text string
}

// Vertex is a "v x y z" position.
type Vertex struct {
	Pos mgl32.Vec3
}

// Normal is a "vn x y z" direction.
type Normal struct {
	Dir mgl32.Vec3
}

// TexCoord is a "vt u v" texture coordinate.
type TexCoord struct {
	UV mgl32.Vec2
}

// Face is an "f" triangle or quad.
type Face struct {
	Corners []Corner
}

// MaterialLib is a "mtllib file" reference.
type MaterialLib struct {
	File string
}

// UseMaterial is a "usemtl name" material switch.
type UseMaterial struct {
	Name string
}

func (Comment) directive() string     { return "#" }
func (Vertex) directive() string      { return "v" }
func (Normal) directive() string      { return "vn" }
func (TexCoord) directive() string    { return "vt" }
func (Face) directive() string        { return "f" }
func (MaterialLib) directive() string { return "mtllib" }
func (UseMaterial) directive() string { return "usemtl" }

// Corner is one v[/vt[/vn]] reference of a face. Indices are 1-based as read
// and are not range checked until the mesh is assembled.
type Corner struct {
	V    int
	T    int
	N    int
	HasT bool
	HasN bool
}

// Triangles splits the face into triangles: a quad a-b-c-d becomes a-b-c
// followed by a-c-d.
func (f Face) Triangles() [][3]Corner {
	c := f.Corners
	switch len(c) {
	case 3:
		return [][3]Corner{{c[0], c[1], c[2]}}
	case 4:
		return [][3]Corner{{c[0], c[1], c[2]}, {c[0], c[2], c[3]}}
	}
	// ParseLine never produces other corner counts
	panic(fmt.Sprintf("obj: face with %d corners", len(c)))
}

package mtl

import "github.com/go-gl/mathgl/mgl32"

// Material holds one newmtl block of a material library.
type Material struct {
	Name       string
	Ambient    mgl32.Vec3 // Ka
	Diffuse    mgl32.Vec3 // Kd
	Specular   mgl32.Vec3 // Ks
	Shininess  float32    // Ns, specular exponent
	Opacity    float32    // d, or 1-Tr
	Illum      int        // illumination model id
	DiffuseMap string     // map_Kd, as written in the file
}

// New returns a material with the loader defaults: white reflectances,
// Ns 10, fully opaque and no texture.
func New(name string) *Material {
	return &Material{
		Name:      name,
		Ambient:   mgl32.Vec3{1, 1, 1},
		Diffuse:   mgl32.Vec3{1, 1, 1},
		Specular:  mgl32.Vec3{1, 1, 1},
		Shininess: 10,
		Opacity:   1,
	}
}

// Default returns the light gray material used for faces that are read
// before any usemtl.
func Default() *Material {
	m := New("default")
	m.Ambient = mgl32.Vec3{0.63, 0.63, 0.63}
	m.Diffuse = mgl32.Vec3{0.63, 0.63, 0.63}
	m.Specular = mgl32.Vec3{0.5, 0.5, 0.5}
	m.Shininess = 30
	return m
}

// SetOpacity changes the opacity used when drawing, clamped to [0, 1].
// It is the only field meant to change after loading (fade effects).
func (m *Material) SetOpacity(a float32) {
	switch {
	case a < 0:
		a = 0
	case a > 1:
		a = 1
	}
	m.Opacity = a
}

// Transparent reports whether the material needs blending.
func (m *Material) Transparent() bool {
	return m.Opacity < 1
}

// Library is an ordered set of materials with a name index.
// Registering a name twice keeps both entries; lookups return the later one.
type Library struct {
	Materials []*Material
	names     map[string]int
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{names: make(map[string]int)}
}

// Add registers m under its name.
func (l *Library) Add(m *Material) {
	if l.names == nil {
		l.names = make(map[string]int)
	}
	l.names[m.Name] = len(l.Materials)
	l.Materials = append(l.Materials, m)
}

// Merge adds every material of o, in order.
func (l *Library) Merge(o *Library) {
	for _, m := range o.Materials {
		l.Add(m)
	}
}

// Lookup returns the material registered last under name.
func (l *Library) Lookup(name string) (*Material, bool) {
	i, ok := l.names[name]
	if !ok {
		return nil, false
	}
	return l.Materials[i], true
}

// Index returns the position of the material registered last under name, or -1.
func (l *Library) Index(name string) int {
	if i, ok := l.names[name]; ok {
		return i
	}
	return -1
}

// Len returns the number of registered materials, duplicates included.
func (l *Library) Len() int {
	return len(l.Materials)
}

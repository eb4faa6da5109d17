package scene

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"obj-scene-renderer/internal/camera"
)

// Shading selects how a node's meshes are lit.
type Shading string

const (
	Inherit     Shading = ""
	Flat        Shading = "flat"
	Phong       Shading = "phong"
	Environment Shading = "environment"
)

// ParseShading accepts flat, phong, environment or the empty string.
func ParseShading(s string) (Shading, error) {
	switch sh := Shading(strings.ToLower(s)); sh {
	case Inherit, Flat, Phong, Environment:
		return sh, nil
	}
	return Inherit, fmt.Errorf("scene: unknown shading %q", s)
}

// Description is the on-disk form of a scene, written as YAML or TOML.
type Description struct {
	Background  [3]float32 `yaml:"background" toml:"background"`
	Shading     Shading    `yaml:"shading" toml:"shading"`
	Environment string     `yaml:"environment" toml:"environment"` // equirectangular image
	Camera      CameraDesc `yaml:"camera" toml:"camera"`
	Light       LightDesc  `yaml:"light" toml:"light"`
	Nodes       []NodeDesc `yaml:"nodes" toml:"nodes"`
}

// CameraDesc describes either an orbit or a first-person camera.
// Angles are in degrees.
type CameraDesc struct {
	Kind string `yaml:"kind" toml:"kind"` // orbit (default) or firstperson

	Center   [3]float32 `yaml:"center" toml:"center"`
	Distance float32    `yaml:"distance" toml:"distance"`
	Phi      float32    `yaml:"phi" toml:"phi"`
	Psi      float32    `yaml:"psi" toml:"psi"`

	Eye   [3]float32 `yaml:"eye" toml:"eye"`
	Yaw   float32    `yaml:"yaw" toml:"yaw"`
	Pitch float32    `yaml:"pitch" toml:"pitch"`

	FovY float32 `yaml:"fov" toml:"fov"`
	Near float32 `yaml:"near" toml:"near"`
	Far  float32 `yaml:"far" toml:"far"`
}

type LightDesc struct {
	Position [3]float32  `yaml:"position" toml:"position"`
	Color    *[3]float32 `yaml:"color" toml:"color"`
}

// NodeDesc is one entry of the node tree. Rotate is in degrees around X, Y
// then Z. A zero Scale means 1.
type NodeDesc struct {
	Name      string     `yaml:"name" toml:"name"`
	Model     string     `yaml:"model" toml:"model"`
	Translate [3]float32 `yaml:"translate" toml:"translate"`
	Rotate    [3]float32 `yaml:"rotate" toml:"rotate"`
	Scale     [3]float32 `yaml:"scale" toml:"scale"`
	Shading   Shading    `yaml:"shading" toml:"shading"`
	Opacity   *float32   `yaml:"opacity" toml:"opacity"`
	Children  []NodeDesc `yaml:"children" toml:"children"`
}

// LoadDescription reads a scene description; the format follows the
// extension (.yaml, .yml or .toml).
func LoadDescription(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: read %s: %w", path, err)
	}
	var d *Description
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		d, err = DecodeYAML(bytes.NewReader(data))
	case ".toml":
		d, err = DecodeTOML(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("scene: unsupported description format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("scene: parse %s: %w", path, err)
	}
	return d, nil
}

// DecodeYAML decodes a YAML description. Unknown keys are an error.
func DecodeYAML(r io.Reader) (*Description, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var d Description
	if err := dec.Decode(&d); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &d, d.validate()
}

// DecodeTOML decodes a TOML description. Unknown keys are an error.
func DecodeTOML(r io.Reader) (*Description, error) {
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	var d Description
	if err := dec.Decode(&d); err != nil {
		return nil, err
	}
	return &d, d.validate()
}

func (d *Description) validate() error {
	if _, err := ParseShading(string(d.Shading)); err != nil {
		return err
	}
	switch strings.ToLower(d.Camera.Kind) {
	case "", "orbit", "firstperson":
	default:
		return fmt.Errorf("scene: unknown camera kind %q", d.Camera.Kind)
	}
	var walk func(nodes []NodeDesc) error
	walk = func(nodes []NodeDesc) error {
		for _, n := range nodes {
			if _, err := ParseShading(string(n.Shading)); err != nil {
				return fmt.Errorf("scene: node %q: unknown shading %q", n.Name, n.Shading)
			}
			if n.Opacity != nil && (*n.Opacity < 0 || *n.Opacity > 1) {
				return fmt.Errorf("scene: node %q: opacity %v outside [0, 1]", n.Name, *n.Opacity)
			}
			if err := walk(n.Children); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(d.Nodes)
}

// CameraFor builds the camera and projection of the description. An orbit
// camera with no distance frames the given bounds.
func (d *Description) CameraFor(lo, hi mgl32.Vec3) (camera.Camera, camera.Projection) {
	c := d.Camera
	proj := camera.DefaultProjection()
	if c.FovY > 0 {
		proj.FovY = c.FovY
	}
	if c.Near > 0 {
		proj.Near = c.Near
	}
	if c.Far > 0 {
		proj.Far = c.Far
	}

	if strings.ToLower(c.Kind) == "firstperson" {
		return camera.FirstPerson{
			Position: mgl32.Vec3(c.Eye),
			Yaw:      mgl32.DegToRad(c.Yaw),
			Pitch:    mgl32.DegToRad(c.Pitch),
		}, proj
	}

	o := camera.Orbit{
		Center:   mgl32.Vec3(c.Center),
		Distance: c.Distance,
		Phi:      mgl32.DegToRad(c.Phi),
		Psi:      mgl32.DegToRad(c.Psi),
	}
	if o.Distance <= 0 {
		radius := float32(1)
		if lo[0] <= hi[0] {
			o.Center = lo.Add(hi).Mul(0.5)
			radius = math32.Max(hi.Sub(lo).Len()/2, 1e-3)
		}
		half := mgl32.DegToRad(proj.FovY) / 2
		o.Distance = radius/math32.Sin(half) + proj.Near
	}
	return o, proj
}

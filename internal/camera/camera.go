// Package camera builds view and projection matrices for the renderer.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera produces a world-to-view matrix.
type Camera interface {
	View() mgl32.Mat4
	Eye() mgl32.Vec3
}

// Orbit looks at Center from Distance away, rotated by Phi around Y and then
// Psi around X (radians).
type Orbit struct {
	Center   mgl32.Vec3
	Distance float32
	Phi      float32
	Psi      float32
}

// View returns D·R·T: move the center to the origin, rotate, then back off
// along -Z.
func (o Orbit) View() mgl32.Mat4 {
	t := mgl32.Translate3D(-o.Center[0], -o.Center[1], -o.Center[2])
	r := mgl32.HomogRotate3DX(o.Psi).Mul4(mgl32.HomogRotate3DY(o.Phi))
	d := mgl32.Translate3D(0, 0, -o.Distance)
	return d.Mul4(r.Mul4(t))
}

// Eye returns the camera position in world space.
func (o Orbit) Eye() mgl32.Vec3 {
	inv := o.View().Inv()
	return inv.Col(3).Vec3()
}

// Turn returns a copy rotated by dphi around the vertical axis.
func (o Orbit) Turn(dphi float32) Orbit {
	o.Phi = float32(math.Mod(float64(o.Phi+dphi), 2*math.Pi))
	return o
}

// FirstPerson looks from Position along the direction given by Yaw (around Y,
// 0 looks down -Z) and Pitch (up positive), both in radians.
type FirstPerson struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32
}

// Forward returns the unit view direction.
func (f FirstPerson) Forward() mgl32.Vec3 {
	sy, cy := math.Sincos(float64(f.Yaw))
	sp, cp := math.Sincos(float64(f.Pitch))
	return mgl32.Vec3{float32(sy * cp), float32(sp), float32(-cy * cp)}
}

func (f FirstPerson) View() mgl32.Mat4 {
	return mgl32.LookAtV(f.Position, f.Position.Add(f.Forward()), mgl32.Vec3{0, 1, 0})
}

func (f FirstPerson) Eye() mgl32.Vec3 { return f.Position }

// Projection is a symmetric perspective frustum.
type Projection struct {
	FovY float32 // degrees
	Near float32
	Far  float32
}

// DefaultProjection matches the classroom demo: 60° field of view and a far
// plane large enough for a whole scene.
func DefaultProjection() Projection {
	return Projection{FovY: 60, Near: 0.5, Far: 100}
}

// Matrix returns the projection for the given width/height ratio.
func (p Projection) Matrix(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(p.FovY), aspect, p.Near, p.Far)
}

package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func assertVec3(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-4, "component %d of %v", i, got)
	}
}

func TestOrbitView(t *testing.T) {
	o := Orbit{Center: mgl32.Vec3{1, 2, 3}, Distance: 5}
	// the center lands on the view axis, Distance in front of the camera
	p := o.View().Mul4x1(o.Center.Vec4(1)).Vec3()
	assertVec3(t, mgl32.Vec3{0, 0, -5}, p)
	assertVec3(t, mgl32.Vec3{1, 2, 8}, o.Eye())

	turned := o.Turn(math.Pi / 2)
	assertVec3(t, mgl32.Vec3{0, 0, -5}, turned.View().Mul4x1(o.Center.Vec4(1)).Vec3())
	eye := turned.Eye()
	assert.InDelta(t, 5, eye.Sub(o.Center).Len(), 1e-4)
	assert.InDelta(t, 2, eye[1], 1e-4)
}

func TestFirstPerson(t *testing.T) {
	f := FirstPerson{Position: mgl32.Vec3{0, 1, 0}}
	assertVec3(t, mgl32.Vec3{0, 0, -1}, f.Forward())

	ahead := f.View().Mul4x1(mgl32.Vec4{0, 1, -4, 1}).Vec3()
	assertVec3(t, mgl32.Vec3{0, 0, -4}, ahead)
	assert.Equal(t, f.Position, f.Eye())

	f.Yaw = math.Pi / 2
	assertVec3(t, mgl32.Vec3{1, 0, 0}, f.Forward())
}

func TestProjection(t *testing.T) {
	p := DefaultProjection()
	m := p.Matrix(4.0 / 3.0)
	near := m.Mul4x1(mgl32.Vec4{0, 0, -p.Near, 1})
	far := m.Mul4x1(mgl32.Vec4{0, 0, -p.Far, 1})
	assert.InDelta(t, -1, near[2]/near[3], 1e-4)
	assert.InDelta(t, 1, far[2]/far[3], 1e-3)
}

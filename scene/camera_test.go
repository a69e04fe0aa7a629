package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestNewViewCameraKeepsFront(t *testing.T) {
	c := NewViewCamera(mgl32.Vec3{0, 1, 5}, mgl32.Vec3{0, 0, -2}, mgl32.Vec3{0, 1, 0})
	assertVec3(t, mgl32.Vec3{0, 0, -1}, c.Front)
	assertMat4(t, mgl32.LookAtV(mgl32.Vec3{0, 1, 5}, mgl32.Vec3{0, 1, 4}, mgl32.Vec3{0, 1, 0}), c.ViewMatrix())
}

func TestViewCameraMove(t *testing.T) {
	c := NewViewCamera(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	c.Move(Forward, 2)
	assertVec3(t, mgl32.Vec3{0, 0, -2}, c.Position)
	c.Move(Right, 1)
	assertVec3(t, mgl32.Vec3{1, 0, -2}, c.Position)
	c.Move(Up, 3)
	assertVec3(t, mgl32.Vec3{1, 3, -2}, c.Position)
	c.Move(Backward, 2)
	c.Move(Left, 1)
	c.Move(Down, 3)
	assertVec3(t, mgl32.Vec3{}, c.Position)
}

func TestViewCameraTurnClampsPitch(t *testing.T) {
	c := NewViewCamera(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	c.Turn(0, 500)
	assert.Equal(t, float32(89), c.Pitch)
	c.Turn(0, -1000)
	assert.Equal(t, float32(-89), c.Pitch)

	c.Turn(90, 89)
	assertVec3(t, mgl32.Vec3{1, 0, 0}, c.Front)
}

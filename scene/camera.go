package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"mirror-engine/shader"
)

// Direction is a camera-relative movement axis.
type Direction int

const (
	Forward Direction = iota
	Backward
	Left
	Right
	Up
	Down
)

// ViewCamera is a free-fly camera described by a position and yaw/pitch in
// degrees. The front vector is derived from the angles.
type ViewCamera struct {
	Position mgl32.Vec3
	Front    mgl32.Vec3
	WorldUp  mgl32.Vec3
	Yaw      float32
	Pitch    float32
}

const maxPitch = 89

// NewViewCamera looks from pos along front. front need not be normalised.
func NewViewCamera(pos, front, up mgl32.Vec3) *ViewCamera {
	f := front.Normalize()
	c := &ViewCamera{
		Position: pos,
		WorldUp:  up.Normalize(),
		Yaw:      mgl32.RadToDeg(float32(math.Atan2(float64(f.Z()), float64(f.X())))),
		Pitch:    mgl32.RadToDeg(float32(math.Asin(float64(mgl32.Clamp(f.Y(), -1, 1))))),
	}
	c.Pitch = mgl32.Clamp(c.Pitch, -maxPitch, maxPitch)
	c.updateFront()
	return c
}

func (c *ViewCamera) updateFront() {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	c.Front = mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}.Normalize()
}

func (c *ViewCamera) Right() mgl32.Vec3 {
	return c.Front.Cross(c.WorldUp).Normalize()
}

func (c *ViewCamera) Up() mgl32.Vec3 {
	return c.Right().Cross(c.Front).Normalize()
}

func (c *ViewCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front), c.Up())
}

// Move slides the camera along one of its local axes.
func (c *ViewCamera) Move(dir Direction, amount float32) {
	var d mgl32.Vec3
	switch dir {
	case Forward:
		d = c.Front
	case Backward:
		d = c.Front.Mul(-1)
	case Right:
		d = c.Right()
	case Left:
		d = c.Right().Mul(-1)
	case Up:
		d = c.WorldUp
	case Down:
		d = c.WorldUp.Mul(-1)
	}
	c.Position = c.Position.Add(d.Mul(amount))
}

// Turn adds to yaw and pitch (degrees). Pitch is clamped short of the poles.
func (c *ViewCamera) Turn(dYaw, dPitch float32) {
	c.Yaw += dYaw
	c.Pitch = mgl32.Clamp(c.Pitch+dPitch, -maxPitch, maxPitch)
	c.updateFront()
}

// SendUniforms pushes ViewMatrix and cameraPos into prog.
func (c *ViewCamera) SendUniforms(prog *shader.Program) {
	prog.SetMat4fv("ViewMatrix", c.ViewMatrix())
	prog.SetVec3f("cameraPos", c.Position)
}

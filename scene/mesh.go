package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"mirror-engine/core"
	"mirror-engine/gpu"
	"mirror-engine/shader"
)

// Renderable is anything that draws itself with a caller-supplied program
// whose camera uniforms are already set.
type Renderable interface {
	Render(prog *shader.Program)
}

// Mesh is CPU geometry plus its GPU buffers and transform. Translation lives
// in a shared PositionTable so another entity can drive it.
type Mesh struct {
	Name     string
	Data     core.MeshData
	Material *Material

	// Rotation is the accumulated Euler rotation in degrees.
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3

	// Spin (degrees/s) and Drift (units/s) are applied by Animate.
	Spin  mgl32.Vec3
	Drift mgl32.Vec3

	positions *PositionTable
	pos       PositionHandle
	local     AABB

	dev gpu.Device
	gpu gpu.Mesh
}

// NewMesh registers a translation slot for the mesh at the origin.
func NewMesh(name string, data core.MeshData, positions *PositionTable) *Mesh {
	return &Mesh{
		Name:      name,
		Data:      data,
		Material:  DefaultMaterial(),
		Scale:     mgl32.Vec3{1, 1, 1},
		positions: positions,
		pos:       positions.Add(mgl32.Vec3{}),
		local:     BoundsOf(data),
	}
}

func (m *Mesh) Position() mgl32.Vec3 { return m.positions.Get(m.pos) }
func (m *Mesh) SetPosition(p mgl32.Vec3) { m.positions.Set(m.pos, p) }
func (m *Mesh) PositionHandle() PositionHandle { return m.pos }
func (m *Mesh) Translate(d mgl32.Vec3) { m.positions.Translate(m.pos, d) }
func (m *Mesh) Rotate(degrees mgl32.Vec3) { m.Rotation = m.Rotation.Add(degrees) }
func (m *Mesh) SetScale(s mgl32.Vec3) { m.Scale = s }
func (m *Mesh) Uploaded() bool { return m.dev != nil }
func (m *Mesh) GPU() gpu.Mesh { return m.gpu }
func (m *Mesh) AttachPosition(h PositionHandle) { m.pos = h }

// ScaleUp adds amount to every scale axis; negative values shrink.
func (m *Mesh) ScaleUp(amount float32) {
	m.Scale = m.Scale.Add(mgl32.Vec3{amount, amount, amount})
}

// Animate advances the mesh by one frame of its drift and spin.
func (m *Mesh) Animate(dt float32) {
	if m.Drift != (mgl32.Vec3{}) {
		m.Translate(m.Drift.Mul(dt))
	}
	if m.Spin != (mgl32.Vec3{}) {
		m.Rotate(m.Spin.Mul(dt))
	}
}

// ModelMatrix is T · Rx · Ry · Rz · S.
func (m *Mesh) ModelMatrix() mgl32.Mat4 {
	p := m.Position()
	return mgl32.Translate3D(p.X(), p.Y(), p.Z()).
		Mul4(RotationMatrix(m.Rotation)).
		Mul4(mgl32.Scale3D(m.Scale.X(), m.Scale.Y(), m.Scale.Z()))
}

// Bounds is the world-space box around the mesh at its current transform.
func (m *Mesh) Bounds() AABB { return m.local.Transform(m.ModelMatrix()) }

// RotationMatrix builds Rx · Ry · Rz from Euler angles in degrees.
func RotationMatrix(degrees mgl32.Vec3) mgl32.Mat4 {
	return mgl32.HomogRotate3DX(mgl32.DegToRad(degrees.X())).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(degrees.Y()))).
		Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(degrees.Z())))
}

// Upload sends vertex/index data and the material texture to the GPU.
func (m *Mesh) Upload(dev gpu.Device) error {
	if m.dev != nil {
		return nil
	}
	gm, err := dev.UploadMesh(m.Data)
	if err != nil {
		return fmt.Errorf("upload mesh %q: %w", m.Name, err)
	}
	if m.Material != nil {
		if err := m.Material.Upload(dev); err != nil {
			dev.ReleaseMesh(gm)
			return err
		}
	}
	m.dev, m.gpu = dev, gm
	return nil
}

// Render draws the mesh with prog. Meshes that were never uploaded are
// skipped.
func (m *Mesh) Render(prog *shader.Program) {
	if m.dev == nil {
		return
	}
	prog.SetMat4fv("ModelMatrix", m.ModelMatrix())
	if m.Material != nil {
		m.Material.Apply(m.dev, prog)
	}
	prog.Use()
	m.dev.DrawMesh(m.gpu)
	prog.StopUsing()
}

func (m *Mesh) Destroy() {
	if m.dev == nil {
		return
	}
	m.dev.ReleaseMesh(m.gpu)
	if m.Material != nil {
		m.Material.Release(m.dev)
	}
	m.dev, m.gpu = nil, gpu.Mesh{}
}

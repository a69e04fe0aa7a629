package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"mirror-engine/core"
	"mirror-engine/gpu"
	"mirror-engine/shader"
)

// planeNormal is the up-facing normal every Plane is built with.
var planeNormal = mgl32.Vec3{0, 1, 0}

// PlaneGeometry tessellates a width×width square in the XZ plane into
// div×div cells, centred on the origin. It produces (div+1)² vertices and
// 6·div² indices wound counter-clockwise when seen from +Y.
func PlaneGeometry(div int, width float32) core.MeshData {
	if div < 1 {
		div = 1
	}
	row := div + 1
	half := width / 2
	step := width / float32(div)

	data := core.MeshData{
		Vertices: make([]core.Vertex, 0, row*row),
		Indices:  make([]uint32, 0, 6*div*div),
	}
	for i := 0; i < row; i++ {
		for j := 0; j < row; j++ {
			data.Vertices = append(data.Vertices, core.Vertex{
				Position: mgl32.Vec3{-half + float32(j)*step, 0, -half + float32(i)*step},
				Normal:   planeNormal,
				UV:       mgl32.Vec2{float32(j) / float32(div), float32(i) / float32(div)},
			})
		}
	}
	for i := 0; i < div; i++ {
		for j := 0; j < div; j++ {
			a := uint32(i*row + j)
			b := a + 1
			c := a + uint32(row)
			d := c + 1
			data.Indices = append(data.Indices, a, c, b, b, c, d)
		}
	}
	return data
}

// ReflectionMatrix mirrors points across the plane through point with unit
// normal n: I − 2·n·nᵀ plus a translation of −2·d·n, where d = −n·point.
func ReflectionMatrix(n, point mgl32.Vec3) mgl32.Mat4 {
	n = n.Normalize()
	d := -n.Dot(point)
	x, y, z := n.X(), n.Y(), n.Z()
	// column-major
	return mgl32.Mat4{
		1 - 2*x*x, -2 * x * y, -2 * x * z, 0,
		-2 * x * y, 1 - 2*y*y, -2 * y * z, 0,
		-2 * x * z, -2 * y * z, 1 - 2*z*z, 0,
		-2 * d * x, -2 * d * y, -2 * d * z, 1,
	}
}

// Plane is the reflective floor. It owns its mesh and the colour target the
// mirrored scene is rendered into.
type Plane struct {
	Div          int
	Width        float32
	Material     *Material
	Reflectivity float32

	position   mgl32.Vec3
	reflection mgl32.Mat4

	data   core.MeshData
	dev    gpu.Device
	mesh   gpu.Mesh
	target gpu.Target
}

// NewPlane uploads the floor mesh and allocates a targetW×targetH reflection
// target.
func NewPlane(dev gpu.Device, div int, width float32, position mgl32.Vec3, targetW, targetH int) (*Plane, error) {
	p := &Plane{
		Div:          div,
		Width:        width,
		Material:     NewMaterial("floor", core.Color{R: 0.8, G: 0.8, B: 0.85, A: 1}),
		Reflectivity: 0.6,
		data:         PlaneGeometry(div, width),
		dev:          dev,
	}
	p.SetPosition(position)

	mesh, err := dev.UploadMesh(p.data)
	if err != nil {
		return nil, fmt.Errorf("upload plane: %w", err)
	}
	target, err := dev.NewColorTarget(targetW, targetH)
	if err != nil {
		dev.ReleaseMesh(mesh)
		return nil, fmt.Errorf("plane reflection target: %w", err)
	}
	p.mesh, p.target = mesh, target
	return p, nil
}

// SetPosition moves the plane and recomputes its reflection matrix.
func (p *Plane) SetPosition(pos mgl32.Vec3) {
	p.position = pos
	p.reflection = ReflectionMatrix(planeNormal, pos)
}

func (p *Plane) Position() mgl32.Vec3 { return p.position }
func (p *Plane) Normal() mgl32.Vec3 { return planeNormal }
func (p *Plane) Reflection() mgl32.Mat4 { return p.reflection }
func (p *Plane) Data() core.MeshData { return p.data }
func (p *Plane) Target() gpu.Target { return p.target }
func (p *Plane) ModelMatrix() mgl32.Mat4 { return mgl32.Translate3D(p.position.X(), p.position.Y(), p.position.Z()) }

// Mirror renders objects and the optional sky reflected across the plane
// into whichever target is currently bound. Reflection flips handedness, so
// front faces are clockwise for the duration.
func (p *Plane) Mirror(prog *shader.Program, objects []Renderable, view, projection mgl32.Mat4, sky *Skybox) {
	mirrored := view.Mul4(p.reflection)

	p.dev.SetFrontFace(gpu.Clockwise)
	prog.SetMat4fv("ProjViewMatrix", projection.Mul4(mirrored))
	for _, o := range objects {
		o.Render(prog)
	}
	if sky != nil {
		sky.Render(mirrored)
	}
	p.dev.SetFrontFace(gpu.CounterClockwise)
}

// Render draws the floor itself, sampling the reflection texture on unit 0.
func (p *Plane) Render(prog *shader.Program) {
	prog.SetMat4fv("ModelMatrix", p.ModelMatrix())
	prog.SetVec3f("matAlbedo", p.Material.Albedo.Vec3())
	prog.Set1f("reflectivity", p.Reflectivity)
	prog.Set1i("reflectionTex", 0)

	p.dev.BindTexture(0, p.target.Texture)
	prog.Use()
	p.dev.DrawMesh(p.mesh)
	prog.StopUsing()
}

// ResizeTarget replaces the reflection target with one of the new size.
func (p *Plane) ResizeTarget(width, height int) error {
	if width == p.target.Width && height == p.target.Height {
		return nil
	}
	target, err := p.dev.NewColorTarget(width, height)
	if err != nil {
		return fmt.Errorf("resize reflection target: %w", err)
	}
	p.dev.ReleaseTarget(p.target)
	p.target = target
	return nil
}

func (p *Plane) Destroy() {
	if p.mesh.VAO == 0 {
		return
	}
	p.dev.ReleaseMesh(p.mesh)
	p.dev.ReleaseTarget(p.target)
	p.mesh, p.target = gpu.Mesh{}, gpu.Target{}
}

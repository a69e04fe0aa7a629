package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirror-engine/core"
	"mirror-engine/gpu/gputest"
)

func TestModelMatrixComposition(t *testing.T) {
	m := NewMesh("m", CreateCube(1), NewPositionTable())
	m.SetPosition(mgl32.Vec3{1, 2, 3})
	m.Rotate(mgl32.Vec3{30, 45, 60})
	m.ScaleUp(1)

	want := mgl32.Translate3D(1, 2, 3).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(30))).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(45))).
		Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(60))).
		Mul4(mgl32.Scale3D(2, 2, 2))
	assertMat4(t, want, m.ModelMatrix())
}

func TestScaleUpShrinks(t *testing.T) {
	m := NewMesh("m", CreateCube(1), NewPositionTable())
	m.ScaleUp(-0.75)
	assertVec3(t, mgl32.Vec3{0.25, 0.25, 0.25}, m.Scale)
}

func TestAnimateAccumulates(t *testing.T) {
	m := NewMesh("m", CreateCube(1), NewPositionTable())
	m.Spin = mgl32.Vec3{0, 90, 0}
	m.Drift = mgl32.Vec3{1, 0, -2}

	for i := 0; i < 10; i++ {
		m.Animate(0.1)
	}
	assertVec3(t, mgl32.Vec3{1, 0, -2}, m.Position())
	assertVec3(t, mgl32.Vec3{0, 90, 0}, m.Rotation)
}

func TestAttachPositionFollowsLight(t *testing.T) {
	dev := gputest.New()
	positions := NewPositionTable()
	light, err := NewLight(dev, positions, mgl32.Vec3{1, 1, 1}, core.ColorWhite, 64, 0.1, 25)
	require.NoError(t, err)

	m := NewMesh("lamp", CreateSphere(0.1, 8, 4), positions)
	m.SetPosition(mgl32.Vec3{9, 9, 9})
	m.AttachPosition(light.PositionHandle())
	assertVec3(t, mgl32.Vec3{1, 1, 1}, m.Position())

	light.SetPosition(mgl32.Vec3{-2, 3, 0})
	assertVec3(t, mgl32.Vec3{-2, 3, 0}, m.Position())

	// moving the mesh moves the shared slot
	m.Translate(mgl32.Vec3{1, 0, 0})
	assertVec3(t, mgl32.Vec3{-1, 3, 0}, light.Position())

	// growing the table keeps the handle valid
	for i := 0; i < 100; i++ {
		positions.Add(mgl32.Vec3{})
	}
	assertVec3(t, mgl32.Vec3{-1, 3, 0}, m.Position())
}

func TestMeshRenderOrder(t *testing.T) {
	dev := gputest.New()
	prog := loadProgram(t, dev, "mesh.vert", "mesh.frag")
	m := NewMesh("m", CreateCube(1), NewPositionTable())

	m.Render(prog)
	assert.Zero(t, dev.Count("DrawMesh"), "meshes are not drawn before upload")

	require.NoError(t, m.Upload(dev))
	dev.Reset()
	m.Render(prog)

	model := dev.First(func(c gputest.Call) bool { return c.Name == "ModelMatrix" })
	draw := dev.First(gputest.OpOn("DrawMesh", m.GPU().VAO))
	require.NotEqual(t, -1, model)
	assert.Less(t, model, draw)
	assert.Equal(t, prog.ID(), dev.Calls[draw].Program)
	assert.Zero(t, dev.Bound())
}

func TestMeshMaterialTexture(t *testing.T) {
	dev := gputest.New()
	prog := loadProgram(t, dev, "mesh.vert", "mesh.frag")
	m := NewMesh("m", CreateCube(1), NewPositionTable())
	m.Material.AlbedoTexture = NewSolidTexture("white", 255, 255, 255, 255)
	require.NoError(t, m.Upload(dev))
	dev.Reset()

	m.Render(prog)
	has, _ := dev.LastWrite(prog.ID(), "hasTexture")
	assert.Equal(t, int32(1), has)
	assert.NotEqual(t, -1, dev.First(gputest.OpOn("BindTexture", m.Material.AlbedoTexture.GPU.ID)))

	vao := m.GPU().VAO
	tex := m.Material.AlbedoTexture.GPU.ID
	m.Destroy()
	m.Destroy()
	assert.Equal(t, 1, dev.Released("mesh", vao))
	assert.Equal(t, 1, dev.Released("texture", tex))
}

func TestCreateCubeFacesOutward(t *testing.T) {
	data := CreateCube(2)
	require.Len(t, data.Vertices, 24)
	require.Len(t, data.Indices, 36)
	for i := 0; i < len(data.Indices); i += 3 {
		a := data.Vertices[data.Indices[i]]
		b := data.Vertices[data.Indices[i+1]]
		c := data.Vertices[data.Indices[i+2]]
		n := b.Position.Sub(a.Position).Cross(c.Position.Sub(a.Position)).Normalize()
		assertVec3(t, a.Normal, n)
	}
}

package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirror-engine/gpu"
	"mirror-engine/gpu/gputest"
)

func TestPlaneGeometryCounts(t *testing.T) {
	for _, div := range []int{1, 2, 5, 16} {
		data := PlaneGeometry(div, 10)
		assert.Len(t, data.Vertices, (div+1)*(div+1), "div=%d", div)
		assert.Len(t, data.Indices, 6*div*div, "div=%d", div)
		for _, i := range data.Indices {
			assert.Less(t, int(i), len(data.Vertices))
		}
	}
}

func TestPlaneGeometryExtentAndWinding(t *testing.T) {
	data := PlaneGeometry(4, 8)
	first, last := data.Vertices[0], data.Vertices[len(data.Vertices)-1]
	assertVec3(t, mgl32.Vec3{-4, 0, -4}, first.Position)
	assertVec3(t, mgl32.Vec3{4, 0, 4}, last.Position)
	assert.Equal(t, mgl32.Vec2{0, 0}, first.UV)
	assert.Equal(t, mgl32.Vec2{1, 1}, last.UV)

	for i := 0; i < len(data.Indices); i += 3 {
		a := data.Vertices[data.Indices[i]].Position
		b := data.Vertices[data.Indices[i+1]].Position
		c := data.Vertices[data.Indices[i+2]].Position
		n := b.Sub(a).Cross(c.Sub(a))
		assert.Greater(t, n.Y(), float32(0), "triangle %d faces down", i/3)
	}
}

func TestReflectionMatrix(t *testing.T) {
	tests := []struct {
		name   string
		normal mgl32.Vec3
		point  mgl32.Vec3
	}{
		{"floor at origin", mgl32.Vec3{0, 1, 0}, mgl32.Vec3{}},
		{"lowered floor", mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, -1.5, 0}},
		{"wall", mgl32.Vec3{1, 0, 0}, mgl32.Vec3{3, 2, 1}},
		{"tilted", mgl32.Vec3{1, 1, 0}.Normalize(), mgl32.Vec3{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ReflectionMatrix(tt.normal, tt.point)
			apply := func(v mgl32.Vec3) mgl32.Vec3 { return r.Mul4x1(v.Vec4(1)).Vec3() }

			assertVec3(t, tt.point, apply(tt.point))
			assertVec3(t, tt.point.Sub(tt.normal), apply(tt.point.Add(tt.normal)))
			assertMat4(t, mgl32.Ident4(), r.Mul4(r))
		})
	}
}

func TestPlaneSetPositionRecomputesReflection(t *testing.T) {
	dev := gputest.New()
	p, err := NewPlane(dev, 2, 4, mgl32.Vec3{}, 64, 64)
	require.NoError(t, err)

	p.SetPosition(mgl32.Vec3{0, -2, 0})
	got := p.Reflection().Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Vec3()
	assertVec3(t, mgl32.Vec3{0, -4, 0}, got)
}

func TestPlaneMirrorRendersReflected(t *testing.T) {
	dev := gputest.New()
	prog := loadProgram(t, dev, "mesh.vert", "mesh.frag")
	positions := NewPositionTable()

	p, err := NewPlane(dev, 2, 4, mgl32.Vec3{0, -1, 0}, 64, 64)
	require.NoError(t, err)
	m := NewMesh("cube", CreateCube(1), positions)
	require.NoError(t, m.Upload(dev))

	view := mgl32.LookAtV(mgl32.Vec3{0, 2, 5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(45), 1.5, 0.1, 100)
	dev.Reset()

	p.Mirror(prog, []Renderable{m}, view, proj, nil)

	pv, ok := dev.LastWrite(prog.ID(), "ProjViewMatrix")
	require.True(t, ok)
	assertMat4(t, proj.Mul4(view).Mul4(p.Reflection()), pv.(mgl32.Mat4))

	cw := dev.First(func(c gputest.Call) bool { return c.Op == "SetFrontFace" && c.Value == gpu.Clockwise })
	draw := dev.First(gputest.DrawWith(prog.ID()))
	ccw := dev.Last(func(c gputest.Call) bool { return c.Op == "SetFrontFace" && c.Value == gpu.CounterClockwise })
	require.NotEqual(t, -1, draw)
	assert.Less(t, cw, draw)
	assert.Less(t, draw, ccw)
}

func TestPlaneMirrorIncludesSkyWhenPresent(t *testing.T) {
	dev := gputest.New()
	prog := loadProgram(t, dev, "mesh.vert", "mesh.frag")
	skyProg := loadProgram(t, dev, "sky.vert", "sky.frag")
	sky, err := NewSkybox(dev, skyProg, GradientFaces(4, SkyZenith, SkyHorizon, SkyGround))
	require.NoError(t, err)
	p, err := NewPlane(dev, 1, 4, mgl32.Vec3{}, 64, 64)
	require.NoError(t, err)
	dev.Reset()

	p.Mirror(prog, nil, mgl32.Ident4(), mgl32.Ident4(), sky)
	assert.Len(t, dev.Filter(gputest.DrawWith(skyProg.ID())), 1)
}

func TestPlaneRenderSamplesReflection(t *testing.T) {
	dev := gputest.New()
	prog := loadProgram(t, dev, "mesh.vert", "mesh.frag")
	p, err := NewPlane(dev, 2, 4, mgl32.Vec3{0, -1, 0}, 64, 64)
	require.NoError(t, err)
	dev.Reset()

	p.Render(prog)

	bind := dev.First(gputest.OpOn("BindTexture", p.Target().Texture.ID))
	draw := dev.First(gputest.DrawWith(prog.ID()))
	require.NotEqual(t, -1, bind)
	assert.Less(t, bind, draw)
	assert.Equal(t, 0, dev.Calls[bind].Value)

	unit, _ := dev.LastWrite(prog.ID(), "reflectionTex")
	assert.Equal(t, int32(0), unit)
	model, _ := dev.LastWrite(prog.ID(), "ModelMatrix")
	assertMat4(t, mgl32.Translate3D(0, -1, 0), model.(mgl32.Mat4))
}

func TestPlaneResizeAndDestroy(t *testing.T) {
	dev := gputest.New()
	p, err := NewPlane(dev, 2, 4, mgl32.Vec3{}, 64, 64)
	require.NoError(t, err)
	old := p.Target()

	require.NoError(t, p.ResizeTarget(128, 32))
	assert.Equal(t, 128, p.Target().Width)
	assert.Equal(t, 1, dev.Released("target", old.FBO))

	count := dev.Count("NewTarget")
	require.NoError(t, p.ResizeTarget(128, 32))
	assert.Equal(t, count, dev.Count("NewTarget"), "same size keeps the target")

	cur := p.Target()
	p.Destroy()
	p.Destroy()
	assert.Equal(t, 1, dev.Released("target", cur.FBO))
}

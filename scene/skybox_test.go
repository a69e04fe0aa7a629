package scene

import (
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirror-engine/gpu"
	"mirror-engine/gpu/gputest"
)

func TestGradientColor(t *testing.T) {
	up := GradientColor(mgl32.Vec3{0, 1, 0}, SkyZenith, SkyHorizon, SkyGround)
	assert.InDelta(t, SkyZenith.B, up.B, 1e-5)
	level := GradientColor(mgl32.Vec3{1, 0, 0}, SkyZenith, SkyHorizon, SkyGround)
	assert.InDelta(t, SkyHorizon.G, level.G, 1e-5)
	down := GradientColor(mgl32.Vec3{0, -1, 0}, SkyZenith, SkyHorizon, SkyGround)
	assert.InDelta(t, SkyGround.R, down.R, 1e-5)
}

func TestGradientFaces(t *testing.T) {
	faces := GradientFaces(8, SkyZenith, SkyHorizon, SkyGround)
	for _, f := range faces {
		require.NotNil(t, f)
		assert.Equal(t, image.Rect(0, 0, 8, 8), f.Bounds())
	}
	// top face is zenith-blue in the middle, bottom face is ground-brown
	top := faces[2].RGBAAt(4, 4)
	bottom := faces[3].RGBAAt(4, 4)
	assert.Greater(t, top.B, top.R)
	assert.Greater(t, bottom.R, bottom.B)
}

func TestLoadSkyboxFacesMissing(t *testing.T) {
	_, err := LoadSkyboxFaces("testdata/nosky", "jpg")
	assert.Error(t, err)
}

func TestResizeSquare(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 8))
	out := ResizeSquare(img, 4)
	assert.Equal(t, image.Rect(0, 0, 4, 4), out.Bounds())
	assert.Same(t, out, ResizeSquare(out, 4))
}

func TestSkyboxRenderStripsTranslation(t *testing.T) {
	dev := gputest.New()
	prog := loadProgram(t, dev, "sky.vert", "sky.frag")
	sky, err := NewSkybox(dev, prog, GradientFaces(4, SkyZenith, SkyHorizon, SkyGround))
	require.NoError(t, err)
	dev.Reset()

	view := mgl32.Translate3D(5, 6, 7).Mul4(mgl32.HomogRotate3DY(0.3))
	sky.Render(view)

	got, ok := dev.LastWrite(prog.ID(), "ViewMatrix")
	require.True(t, ok)
	m := got.(mgl32.Mat4)
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, m.Col(3))
	assertMat4(t, mgl32.HomogRotate3DY(0.3), m)

	leq := dev.First(func(c gputest.Call) bool { return c.Op == "SetDepthFunc" && c.Value == gpu.DepthLEqual })
	draw := dev.First(gputest.DrawWith(prog.ID()))
	less := dev.Last(func(c gputest.Call) bool { return c.Op == "SetDepthFunc" && c.Value == gpu.DepthLess })
	cullOn := dev.Last(func(c gputest.Call) bool { return c.Op == "SetCulling" && c.Value == true })
	assert.Less(t, leq, draw)
	assert.Less(t, draw, less)
	assert.Less(t, draw, cullOn)
}

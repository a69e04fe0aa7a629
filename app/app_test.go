package app

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"mirror-engine/config"
	"mirror-engine/gpu"
	"mirror-engine/gpu/gputest"
	"mirror-engine/renderer"
	"mirror-engine/scene"
)

func intPtr(v int) *int { return &v }

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Window.Width, cfg.Window.Height = 640, 480
	cfg.Renderer.ShaderDir = "../assets/shaders"
	cfg.Renderer.ShadowSize = 32
	cfg.Scene.SkyboxDir = "testdata/nosky"
	cfg.Scene.Lights = []config.LightConfig{
		{Position: [3]float32{0, 4, 0}, Color: [3]float32{1, 1, 1}},
	}
	cfg.Scene.Meshes = []config.MeshConfig{
		{Primitive: "cube", Position: [3]float32{1, 0, 0}, Scale: 2, Spin: [3]float32{10, 20, 30}, Drift: [3]float32{0, 0.5, 0}},
		{Path: "../assets/models/pyramid.gltf", Position: [3]float32{-1, 0, 2}, Scale: 1, Spin: [3]float32{0, -45, 0}, Drift: [3]float32{-1, 0, 0}},
	}
	return cfg
}

func newTestApp(t *testing.T, cfg config.Config) (*gputest.Device, *App) {
	t.Helper()
	dev := gputest.New()
	a, err := New(dev, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(a.Destroy)
	return dev, a
}

func assertMat4(t *testing.T, want, got mgl32.Mat4) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, 1e-3), "want\n%v\ngot\n%v", want, got)
}

func TestNewBuildsScene(t *testing.T) {
	cfg := testConfig()
	cfg.Scene.Meshes = append(cfg.Scene.Meshes, config.MeshConfig{Primitive: "sphere", Scale: 0.1, Light: intPtr(0)})
	_, a := newTestApp(t, cfg)

	w := a.World
	require.Len(t, w.Meshes(), 3)
	assert.Len(t, w.Lights(), 1)
	assert.NotNil(t, w.Floor())
	assert.NotNil(t, w.Skybox())
	assert.Equal(t, "pyramid", w.Meshes()[1].Name)
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, w.Meshes()[0].Scale)

	marker := w.Meshes()[2]
	assert.Equal(t, w.Light(0).PositionHandle(), marker.PositionHandle())
	w.Light(0).SetPosition(mgl32.Vec3{3, 3, 3})
	assert.Equal(t, mgl32.Vec3{3, 3, 3}, marker.Position())
}

func TestNewSkipsBrokenMeshes(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	cfg := testConfig()
	cfg.Scene.Meshes = append(cfg.Scene.Meshes,
		config.MeshConfig{Path: "testdata/missing.obj"},
		config.MeshConfig{Primitive: "teapot"})

	a, err := New(gputest.New(), cfg, zap.New(core))
	require.NoError(t, err)
	defer a.Destroy()

	assert.Len(t, a.World.Meshes(), 2)
	assert.Equal(t, 2, logs.FilterMessage("skipping mesh").Len())
}

func TestNewKeepsGoingWithoutShaders(t *testing.T) {
	cfg := testConfig()
	cfg.Renderer.ShaderDir = "testdata/noshaders"
	dev, a := newTestApp(t, cfg)

	assert.Nil(t, a.World.Skybox(), "no sky without a sky program")
	require.NotPanics(t, func() { a.Frame(0.016) })
	assert.Zero(t, dev.Count("UseProgram"))
}

// Meshes animated for n frames of dt end at T(p0+n·dt·drift)·R(r0+n·dt·spin)·S.
func TestAnimationEndToEnd(t *testing.T) {
	cfg := testConfig()
	_, a := newTestApp(t, cfg)

	const (
		frames = 50
		dt     = float32(0.02)
	)
	for i := 0; i < frames; i++ {
		a.Frame(dt)
	}

	elapsed := float32(frames) * dt
	for i, mc := range cfg.Scene.Meshes {
		m := a.World.Meshes()[i]
		p := mgl32.Vec3(mc.Position).Add(mgl32.Vec3(mc.Drift).Mul(elapsed))
		want := mgl32.Translate3D(p.X(), p.Y(), p.Z()).
			Mul4(scene.RotationMatrix(mgl32.Vec3(mc.Spin).Mul(elapsed))).
			Mul4(mgl32.Scale3D(mc.Scale, mc.Scale, mc.Scale))
		assertMat4(t, want, m.ModelMatrix())
	}
}

func TestFramePushesCameraOnlyWhenChanged(t *testing.T) {
	dev, a := newTestApp(t, testConfig())
	in := &stubInput{}
	a.Input = in
	core := a.Shaders.Get(renderer.Core).ID()

	a.Frame(0.016)
	dev.Reset()
	a.Frame(0.016)
	assert.Empty(t, dev.Writes(core, "cameraPos"), "idle frame")

	in.move = true
	dev.Reset()
	a.Frame(0.016)
	require.Len(t, dev.Writes(core, "cameraPos"), 1)
	got, _ := dev.LastWrite(core, "cameraPos")
	assert.Equal(t, a.Camera.Position, got)
	pv, _ := dev.LastWrite(a.Shaders.Get(renderer.LightPass).ID(), "ProjViewMatrix")
	assert.Equal(t, a.World.PerspectiveMatrix().Mul4(a.Camera.ViewMatrix()), pv)
}

func TestFrameRepushesProjectionOnFOVChange(t *testing.T) {
	dev, a := newTestApp(t, testConfig())
	a.Overlay = &stubOverlay{dev: dev, fov: 70}
	sky := a.Shaders.Get(renderer.Skybox).ID()

	dev.Reset()
	a.Frame(0.016)
	assert.Equal(t, float32(70), a.World.FOV())
	proj, ok := dev.LastWrite(sky, "ProjectionMatrix")
	require.True(t, ok)
	assert.Equal(t, a.World.PerspectiveMatrix(), proj)
	pv, _ := dev.LastWrite(a.Shaders.Get(renderer.LightPass).ID(), "ProjViewMatrix")
	assert.Equal(t, a.World.PerspectiveMatrix().Mul4(a.Camera.ViewMatrix()), pv)

	// the same FOV again is not re-sent
	dev.Reset()
	a.Frame(0.016)
	assert.Empty(t, dev.Writes(sky, "ProjectionMatrix"))
}

func TestShadowToggle(t *testing.T) {
	dev, a := newTestApp(t, testConfig())
	lightPass := a.Shaders.Get(renderer.LightPass).ID()
	corePass := a.Shaders.Get(renderer.Core).ID()
	isShadowBind := func(c gputest.Call) bool { return c.Op == "BindTarget" && c.Value == gpu.DepthCubeTarget }

	dev.Reset()
	a.Frame(0.016)
	assert.Len(t, dev.Filter(isShadowBind), 1)
	assert.Len(t, dev.Filter(gputest.DrawWith(lightPass)), 2)
	assert.Empty(t, dev.Filter(gputest.DrawWith(corePass)))

	a.Settings.Shadows = false
	dev.Reset()
	a.Frame(0.016)
	assert.Empty(t, dev.Filter(isShadowBind))
	assert.Empty(t, dev.Filter(gputest.DrawWith(lightPass)))
	assert.Len(t, dev.Filter(gputest.DrawWith(corePass)), 2)
}

func TestOverlayRendersLast(t *testing.T) {
	dev, a := newTestApp(t, testConfig())
	ov := &stubOverlay{dev: dev, changeCamera: true}
	a.Overlay = ov

	dev.Reset()
	a.Frame(0.016)
	assert.Equal(t, 1, ov.draws)
	assert.Equal(t, len(dev.Calls), ov.callsAtRender, "nothing is drawn after the overlay")
	assert.NotEmpty(t, dev.Writes(a.Shaders.Get(renderer.Core).ID(), "cameraPos"), "overlay camera edit is pushed")
}

func TestResize(t *testing.T) {
	dev, a := newTestApp(t, testConfig())
	dev.Reset()

	a.Resize(1000, 500)

	proj := a.World.PerspectiveMatrix()
	got, ok := dev.LastWrite(a.Shaders.Get(renderer.Skybox).ID(), "ProjectionMatrix")
	require.True(t, ok)
	assert.Equal(t, proj, got)
	for _, r := range []renderer.Role{renderer.Core, renderer.LightPass, renderer.Plain, renderer.Reflect} {
		pv, ok := dev.LastWrite(a.Shaders.Get(r).ID(), "ProjViewMatrix")
		require.True(t, ok, "role %s", r)
		assert.Equal(t, proj.Mul4(a.Camera.ViewMatrix()), pv)
	}
	assert.Equal(t, 1000, a.World.Floor().Target().Width)

	dev.Reset()
	a.Frame(0.016)
	vp := dev.First(func(c gputest.Call) bool { return c.Op == "Viewport" && c.Value == [4]int{0, 0, 1000, 500} })
	assert.NotEqual(t, -1, vp)
}

func TestPrimitive(t *testing.T) {
	for _, name := range []string{"cube", "Sphere", "TORUS"} {
		data, err := Primitive(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, data.Indices, name)
	}
	_, err := Primitive("teapot")
	assert.Error(t, err)
}

type stubInput struct{ move bool }

func (s *stubInput) Process(cam *scene.ViewCamera, dt float32) bool {
	if s.move {
		cam.Move(scene.Forward, 1)
	}
	return s.move
}

type stubOverlay struct {
	dev           *gputest.Device
	changeCamera  bool
	fov           float32
	draws         int
	callsAtRender int
}

func (s *stubOverlay) Draw(w *renderer.World, cam *scene.ViewCamera, dt float32) bool {
	s.draws++
	if s.fov != 0 {
		w.SetFOV(s.fov)
	}
	if s.changeCamera {
		cam.Turn(5, 0)
	}
	return s.changeCamera
}

func (s *stubOverlay) Render() { s.callsAtRender = len(s.dev.Calls) }

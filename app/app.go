// Package app builds the demo scene from configuration and runs frames:
// animation, input, uniform upkeep, the render passes and the overlay.
package app

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"mirror-engine/config"
	"mirror-engine/core"
	"mirror-engine/gpu"
	"mirror-engine/gui"
	"mirror-engine/renderer"
	"mirror-engine/scene"
	"mirror-engine/shader"
)

// InputProcessor moves the camera from user input and reports whether it
// did.
type InputProcessor interface {
	Process(cam *scene.ViewCamera, dt float32) bool
}

// Overlay is the debug GUI. Draw reports a camera change; Render draws on
// top of the finished frame.
type Overlay interface {
	Draw(w *renderer.World, cam *scene.ViewCamera, dt float32) bool
	Render()
}

// App is the state a frame needs. Input and Overlay are optional.
type App struct {
	log *zap.Logger

	World    *renderer.World
	Shaders  *renderer.ShaderSet
	Camera   *scene.ViewCamera
	Input    InputProcessor
	Overlay  Overlay
	Settings *gui.Settings

	cameraDirty bool
	pushedFOV   float32
}

// New loads the shaders and builds the configured scene on dev. Shader,
// mesh and skybox failures are logged and the scene is built without them;
// only failures that leave nothing to render are returned.
func New(dev gpu.Device, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	rc := cfg.Renderer
	version := shader.GLSLVersion(rc.GLMajor, rc.GLMinor)

	shaders, err := renderer.LoadShaderSet(dev, version, rc.ShaderDir, log)
	if err != nil {
		log.Error("some shader programs failed to build", zap.Error(err))
	}

	w := renderer.NewWorld(dev, rc.FOV, cfg.Window.Width, cfg.Window.Height, rc.Near, rc.Far, log)
	w.ShadowSize = rc.ShadowSize
	w.ShadowFar = rc.ShadowFar
	w.Culling = rc.Culling

	clear := core.ColorFromSlice(rc.ClearColor[:])
	a := &App{
		log:     log,
		World:   w,
		Shaders: shaders,
		Camera: scene.NewViewCamera(
			mgl32.Vec3(cfg.Camera.Position),
			mgl32.Vec3(cfg.Camera.Front),
			mgl32.Vec3{0, 1, 0}),
		Settings:    &gui.Settings{Shadows: rc.Shadows, ClearColor: clear, Visible: true},
		cameraDirty: true,
	}
	w.SetClearColor(clear)

	if err := a.buildScene(cfg.Scene); err != nil {
		a.Destroy()
		return nil, err
	}
	a.PushProjection()
	return a, nil
}

func (a *App) buildScene(sc config.SceneConfig) error {
	w := a.World
	for i, lc := range sc.Lights {
		c := lc.Color
		if _, err := w.AddLight(mgl32.Vec3(lc.Position), core.Color{R: c[0], G: c[1], B: c[2], A: 1}); err != nil {
			return fmt.Errorf("light %d: %w", i, err)
		}
	}

	for i, mc := range sc.Meshes {
		m, err := a.addMesh(mc)
		if err != nil {
			a.log.Error("skipping mesh", zap.Int("index", i), zap.Error(err))
			continue
		}
		if mc.Light != nil {
			if l := w.Light(*mc.Light); l != nil {
				m.AttachPosition(l.PositionHandle())
			}
		} else {
			m.SetPosition(mgl32.Vec3(mc.Position))
		}
		if mc.Scale > 0 {
			m.SetScale(mgl32.Vec3{mc.Scale, mc.Scale, mc.Scale})
		}
		m.Spin = mgl32.Vec3(mc.Spin)
		m.Drift = mgl32.Vec3(mc.Drift)
	}

	if sc.FloorDiv > 0 && sc.FloorWidth > 0 {
		if err := w.CreateFloor(sc.FloorDiv, sc.FloorWidth, mgl32.Vec3(sc.FloorPosition)); err != nil {
			return fmt.Errorf("floor: %w", err)
		}
		w.Floor().Reflectivity = sc.Reflectivity
	}

	if prog := a.Shaders.Get(renderer.Skybox); prog.Valid() {
		if err := w.CreateSkybox(prog, sc.SkyboxDir, sc.SkyboxExt); err != nil {
			a.log.Error("no skybox", zap.Error(err))
		}
	}
	return nil
}

func (a *App) addMesh(mc config.MeshConfig) (*scene.Mesh, error) {
	var mat *scene.Material
	if mc.Color != ([3]float32{}) {
		c := mc.Color
		mat = scene.NewMaterial("colour", core.Color{R: c[0], G: c[1], B: c[2], A: 1})
	}
	if mc.Path != "" {
		return a.World.LoadMesh(mc.Path, mat)
	}
	data, err := Primitive(mc.Primitive)
	if err != nil {
		return nil, err
	}
	return a.World.AddMesh(mc.Primitive, data, mat)
}

// Primitive returns the generated mesh called name.
func Primitive(name string) (core.MeshData, error) {
	switch strings.ToLower(name) {
	case "cube":
		return scene.CreateCube(1), nil
	case "sphere":
		return scene.CreateSphere(1, 32, 16), nil
	case "torus":
		return scene.CreateTorus(0.8, 0.25, 48, 16), nil
	}
	return core.MeshData{}, fmt.Errorf("unknown primitive %q", name)
}

// Passes picks the programs for this frame. With shadows off the main pass
// uses the unshadowed core program and no shadow maps are rendered.
func (a *App) Passes() renderer.Passes {
	p := renderer.Passes{
		Plain: a.Shaders.Get(renderer.Plain),
		Main:  a.Shaders.Get(renderer.Core),
		Floor: a.Shaders.Get(renderer.Reflect),
	}
	if a.Settings.Shadows {
		p.Shadow = a.Shaders.Get(renderer.ShadowPass)
		p.Main = a.Shaders.Get(renderer.LightPass)
	}
	return p
}

// Frame advances the scene by dt seconds and renders it.
func (a *App) Frame(dt float32) {
	a.World.Animate(dt)

	if a.Input != nil && a.Input.Process(a.Camera, dt) {
		a.cameraDirty = true
	}
	if a.Overlay != nil && a.Overlay.Draw(a.World, a.Camera, dt) {
		a.cameraDirty = true
	}
	switch {
	case a.World.FOV() != a.pushedFOV:
		a.PushProjection()
	case a.cameraDirty:
		a.PushCamera()
	}

	a.World.SendUniforms(a.Shaders.Get(renderer.Core))
	a.World.SendUniforms(a.Shaders.Get(renderer.LightPass))

	a.World.RenderFrame(a.Passes(), a.Camera, a.Settings.ClearColor)

	if a.Overlay != nil {
		a.Overlay.Render()
	}
}

// PushCamera sends the camera's view to every program and ProjViewMatrix to
// those that declare it.
func (a *App) PushCamera() {
	pv := a.World.PerspectiveMatrix().Mul4(a.Camera.ViewMatrix())
	a.Shaders.SetMat4All("ProjViewMatrix", pv)
	for _, p := range a.Shaders.All() {
		a.Camera.SendUniforms(p)
	}
	a.cameraDirty = false
}

// PushProjection re-sends everything derived from the perspective matrix.
func (a *App) PushProjection() {
	a.pushedFOV = a.World.FOV()
	a.Shaders.SetMat4All("ProjectionMatrix", a.World.PerspectiveMatrix())
	a.PushCamera()
}

// Resize handles a framebuffer size change.
func (a *App) Resize(width, height int) {
	if err := a.World.SetAspectRatio(width, height); err != nil {
		a.log.Error("resize failed", zap.Int("width", width), zap.Int("height", height), zap.Error(err))
	}
	a.PushProjection()
	a.log.Debug("resized", zap.Int("width", width), zap.Int("height", height))
}

func (a *App) Destroy() {
	a.World.Destroy()
	if a.Shaders != nil {
		a.Shaders.Destroy()
	}
}

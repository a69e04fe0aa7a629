// Package renderer owns the scene state and runs the multi-pass frame:
// shadow cube maps, planar reflection, lit meshes, the floor and the sky.
package renderer

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"mirror-engine/core"
	"mirror-engine/gpu"
	"mirror-engine/scene"
	"mirror-engine/shader"
)

// MaxLights matches MAX_LIGHTS in the lighting shaders.
const MaxLights = 4

// ErrTooManyLights is returned by AddLight once MaxLights exist.
var ErrTooManyLights = errors.New("too many lights")

// World holds everything that is drawn and the projection it is drawn with.
// Meshes render in insertion order.
type World struct {
	dev gpu.Device
	log *zap.Logger

	fov           float32 // degrees
	near, far     float32
	width, height int
	perspective   mgl32.Mat4

	// ShadowSize is the edge length of each light's depth cube map; ShadowFar
	// is the far plane the shadow shaders normalise depth against.
	ShadowSize int
	ShadowFar  float32

	// Culling skips meshes outside the camera frustum in the main pass.
	Culling bool
	culled  int

	positions *scene.PositionTable
	meshes    []*scene.Mesh
	lights    []*scene.Light
	sky       *scene.Skybox
	floor     *scene.Plane

	clearColor core.Color
}

func NewWorld(dev gpu.Device, fovDeg float32, width, height int, near, far float32, log *zap.Logger) *World {
	if log == nil {
		log = zap.NewNop()
	}
	w := &World{
		dev:        dev,
		log:        log,
		fov:        fovDeg,
		near:       near,
		far:        far,
		ShadowSize: 1024,
		ShadowFar:  25,
		Culling:    true,
		positions:  scene.NewPositionTable(),
		clearColor: core.Color{R: 0.45, G: 0.55, B: 0.60, A: 1},
	}
	w.setSize(width, height)
	return w
}

func (w *World) setSize(width, height int) {
	w.width, w.height = max(width, 1), max(height, 1)
	w.perspective = mgl32.Perspective(mgl32.DegToRad(w.fov), w.AspectRatio(), w.near, w.far)
}

// SetAspectRatio records a new framebuffer size, recomputes the perspective
// matrix and resizes the floor's reflection target to match.
func (w *World) SetAspectRatio(width, height int) error {
	w.setSize(width, height)
	if w.floor != nil {
		if err := w.floor.ResizeTarget(w.width, w.height); err != nil {
			return err
		}
	}
	return nil
}

func (w *World) PerspectiveMatrix() mgl32.Mat4 { return w.perspective }
func (w *World) Width() int { return w.width }
func (w *World) Height() int { return w.height }
func (w *World) AspectRatio() float32 { return float32(w.width) / float32(w.height) }
func (w *World) FOV() float32 { return w.fov }
func (w *World) Positions() *scene.PositionTable { return w.positions }
func (w *World) Meshes() []*scene.Mesh { return w.meshes }
func (w *World) Lights() []*scene.Light { return w.lights }
func (w *World) Skybox() *scene.Skybox { return w.sky }
func (w *World) Floor() *scene.Plane { return w.floor }
func (w *World) ClearColor() core.Color { return w.clearColor }

// Culled is how many meshes the last main pass skipped.
func (w *World) Culled() int { return w.culled }
func (w *World) SetClearColor(c core.Color) { w.clearColor = c }

// SetFOV changes the vertical field of view (degrees) and recomputes the
// perspective matrix.
func (w *World) SetFOV(deg float32) {
	w.fov = mgl32.Clamp(deg, 10, 120)
	w.setSize(w.width, w.height)
}

// AddLight creates a point light with its own shadow cube map.
func (w *World) AddLight(pos mgl32.Vec3, color core.Color) (*scene.Light, error) {
	if len(w.lights) >= MaxLights {
		return nil, fmt.Errorf("add light: %w (max %d)", ErrTooManyLights, MaxLights)
	}
	l, err := scene.NewLight(w.dev, w.positions, pos, color, w.ShadowSize, 0.1, w.ShadowFar)
	if err != nil {
		return nil, fmt.Errorf("add light: %w", err)
	}
	w.lights = append(w.lights, l)
	return l, nil
}

// Light returns light i, or nil when out of range.
func (w *World) Light(i int) *scene.Light {
	if i < 0 || i >= len(w.lights) {
		return nil
	}
	return w.lights[i]
}

// AddMesh uploads data as a new mesh appended to the render order.
func (w *World) AddMesh(name string, data core.MeshData, mat *scene.Material) (*scene.Mesh, error) {
	m := scene.NewMesh(name, data, w.positions)
	if mat != nil {
		m.Material = mat
	}
	if err := m.Upload(w.dev); err != nil {
		return nil, err
	}
	w.meshes = append(w.meshes, m)
	return m, nil
}

// LoadMesh reads an .obj, .gltf or .glb file and adds it as one mesh. A
// non-nil mat replaces the material the file describes.
func (w *World) LoadMesh(path string, mat *scene.Material) (*scene.Mesh, error) {
	model, err := scene.LoadModel(path)
	if err != nil {
		w.log.Error("could not load mesh", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	if mat != nil {
		model.Material = mat
	}
	m, err := w.AddMesh(model.Name, model.Data, model.Material)
	if err != nil {
		return nil, err
	}
	w.log.Info("mesh loaded",
		zap.String("path", path),
		zap.Int("vertices", len(model.Data.Vertices)),
		zap.Int("indices", len(model.Data.Indices)))
	return m, nil
}

// CreateSkybox loads dir/<face><ext> into a cube map drawn with prog. When
// the face images cannot be read a procedural gradient sky is used instead.
func (w *World) CreateSkybox(prog *shader.Program, dir, ext string) error {
	faces, err := scene.LoadSkyboxFaces(dir, ext)
	if err != nil {
		w.log.Warn("skybox images unavailable, using gradient sky", zap.String("dir", dir), zap.Error(err))
		faces = scene.GradientFaces(256, scene.SkyZenith, scene.SkyHorizon, scene.SkyGround)
	}
	sky, err := scene.NewSkybox(w.dev, prog, faces)
	if err != nil {
		return err
	}
	if w.sky != nil {
		w.sky.Destroy()
	}
	w.sky = sky
	return nil
}

// CreateFloor builds the reflective plane with a reflection target the size
// of the framebuffer.
func (w *World) CreateFloor(div int, width float32, pos mgl32.Vec3) error {
	p, err := scene.NewPlane(w.dev, div, width, pos, w.width, w.height)
	if err != nil {
		return err
	}
	if w.floor != nil {
		w.floor.Destroy()
	}
	w.floor = p
	return nil
}

// SendUniforms pushes the light table into prog. Shadow maps are bound to
// units 1..N by RenderMeshes; unit 0 stays free for material textures.
// Every shadowMaps slot gets its own unit even without a light behind it:
// a cube sampler left on unit 0 would clash with the 2D albedo sampler.
func (w *World) SendUniforms(prog *shader.Program) {
	prog.Set1i("lightCount", int32(len(w.lights)))
	prog.Set1f("far_plane", w.ShadowFar)
	for i, l := range w.lights {
		prog.SetVec3f(fmt.Sprintf("lightPositions[%d]", i), l.Position())
		prog.SetVec3f(fmt.Sprintf("lightColors[%d]", i), l.Color.Vec3())
	}
	for i := 0; i < MaxLights; i++ {
		prog.Set1i(fmt.Sprintf("shadowMaps[%d]", i), int32(1+i))
	}
}

// Animate advances every mesh by dt seconds of its spin and drift.
func (w *World) Animate(dt float32) {
	for _, m := range w.meshes {
		m.Animate(dt)
	}
}

// Destroy releases every GPU resource the world owns.
func (w *World) Destroy() {
	for _, m := range w.meshes {
		m.Destroy()
	}
	for _, l := range w.lights {
		l.Destroy()
	}
	if w.sky != nil {
		w.sky.Destroy()
	}
	if w.floor != nil {
		w.floor.Destroy()
	}
	w.meshes, w.lights, w.sky, w.floor = nil, nil, nil, nil
}

package scene

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"mirror-engine/core"
	"mirror-engine/gpu"
	"mirror-engine/shader"
)

// SkyboxFaces are the face image base names in GL cube-map order.
var SkyboxFaces = [6]string{"right", "left", "top", "bottom", "front", "back"}

// Default gradient colours: deep blue zenith, pale blue horizon, warm brown
// ground.
var (
	SkyZenith  = core.Color{R: 0.10, G: 0.30, B: 0.70, A: 1}
	SkyHorizon = core.Color{R: 0.60, G: 0.80, B: 1.00, A: 1}
	SkyGround  = core.Color{R: 0.30, G: 0.25, B: 0.20, A: 1}
)

// LoadSkyboxFaces reads dir/<face><ext> for every face and scales them all
// to the size of the smallest side found.
func LoadSkyboxFaces(dir, ext string) ([6]*image.RGBA, error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	var faces [6]*image.RGBA
	size := 0
	for i, name := range SkyboxFaces {
		img, err := LoadImage(filepath.Join(dir, name+ext))
		if err != nil {
			return faces, fmt.Errorf("skybox face %s: %w", name, err)
		}
		b := img.Bounds()
		side := min(b.Dx(), b.Dy())
		if size == 0 || side < size {
			size = side
		}
		faces[i] = img
	}
	for i := range faces {
		faces[i] = ResizeSquare(faces[i], size)
	}
	return faces, nil
}

// faceDirection maps face-local coordinates s,t in [-1,1] to a world
// direction using the GL cube-map face layout.
func faceDirection(face int, s, t float32) mgl32.Vec3 {
	switch face {
	case 0:
		return mgl32.Vec3{1, -t, -s}
	case 1:
		return mgl32.Vec3{-1, -t, s}
	case 2:
		return mgl32.Vec3{s, 1, t}
	case 3:
		return mgl32.Vec3{s, -1, -t}
	case 4:
		return mgl32.Vec3{s, -t, 1}
	default:
		return mgl32.Vec3{-s, -t, -1}
	}
}

// GradientColor is the sky colour seen along dir: horizon to zenith above,
// horizon to ground (quickly) below.
func GradientColor(dir mgl32.Vec3, zenith, horizon, ground core.Color) core.Color {
	t := dir.Normalize().Y()
	lerp := func(a, b core.Color, f float32) core.Color {
		return core.Color{
			R: a.R + (b.R-a.R)*f,
			G: a.G + (b.G-a.G)*f,
			B: a.B + (b.B-a.B)*f,
			A: 1,
		}
	}
	if t >= 0 {
		return lerp(horizon, zenith, float32(math.Pow(float64(t), 0.4)))
	}
	return lerp(horizon, ground, min(-t*3, 1))
}

// GradientFaces renders a procedural sky into six size×size faces. Used when
// no face images are available.
func GradientFaces(size int, zenith, horizon, ground core.Color) [6]*image.RGBA {
	var faces [6]*image.RGBA
	for f := range faces {
		img := image.NewRGBA(image.Rect(0, 0, size, size))
		for y := 0; y < size; y++ {
			t := 2*(float32(y)+0.5)/float32(size) - 1
			for x := 0; x < size; x++ {
				s := 2*(float32(x)+0.5)/float32(size) - 1
				c := GradientColor(faceDirection(f, s, t), zenith, horizon, ground)
				img.SetRGBA(x, y, color.RGBA{
					R: uint8(mgl32.Clamp(c.R, 0, 1) * 255),
					G: uint8(mgl32.Clamp(c.G, 0, 1) * 255),
					B: uint8(mgl32.Clamp(c.B, 0, 1) * 255),
					A: 255,
				})
			}
		}
		faces[f] = img
	}
	return faces
}

// skyCube is a unit cube seen from inside; culling is off while drawing it.
func skyCube() core.MeshData {
	corners := []mgl32.Vec3{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	}
	data := core.MeshData{Vertices: make([]core.Vertex, len(corners))}
	for i, c := range corners {
		data.Vertices[i] = core.Vertex{Position: c, Normal: c.Mul(-1).Normalize()}
	}
	data.Indices = []uint32{
		0, 1, 2, 2, 3, 0, // -Z
		4, 6, 5, 6, 4, 7, // +Z
		0, 3, 7, 7, 4, 0, // -X
		1, 5, 6, 6, 2, 1, // +X
		0, 4, 5, 5, 1, 0, // -Y
		3, 2, 6, 6, 7, 3, // +Y
	}
	return data
}

// Skybox is a cube-mapped environment drawn behind everything else with its
// own program.
type Skybox struct {
	dev     gpu.Device
	prog    *shader.Program
	mesh    gpu.Mesh
	texture gpu.Texture
}

func NewSkybox(dev gpu.Device, prog *shader.Program, faces [6]*image.RGBA) (*Skybox, error) {
	tex, err := dev.UploadCubeMap(faces)
	if err != nil {
		return nil, fmt.Errorf("skybox cube map: %w", err)
	}
	mesh, err := dev.UploadMesh(skyCube())
	if err != nil {
		dev.ReleaseTexture(tex)
		return nil, fmt.Errorf("skybox mesh: %w", err)
	}
	return &Skybox{dev: dev, prog: prog, mesh: mesh, texture: tex}, nil
}

func (s *Skybox) Program() *shader.Program { return s.prog }
func (s *Skybox) Texture() gpu.Texture { return s.texture }

// Render draws the sky with view's translation removed so it stays centred
// on the camera. Depth test is LEQUAL and culling is off while drawing; both
// are restored afterwards.
func (s *Skybox) Render(view mgl32.Mat4) {
	s.prog.SetMat4fv("ViewMatrix", view.Mat3().Mat4())
	s.prog.Set1i("skybox", 0)

	s.dev.SetDepthFunc(gpu.DepthLEqual)
	s.dev.SetCulling(false)
	s.dev.BindTexture(0, s.texture)
	s.prog.Use()
	s.dev.DrawMesh(s.mesh)
	s.prog.StopUsing()
	s.dev.SetCulling(true)
	s.dev.SetDepthFunc(gpu.DepthLess)
}

func (s *Skybox) Destroy() {
	if s.mesh.VAO == 0 {
		return
	}
	s.dev.ReleaseMesh(s.mesh)
	s.dev.ReleaseTexture(s.texture)
	s.mesh, s.texture = gpu.Mesh{}, gpu.Texture{}
}

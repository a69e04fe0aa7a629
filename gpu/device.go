// Package gpu defines the graphics-device surface the render pipeline is
// written against. internal/opengl provides the real implementation;
// gpu/gputest provides a recording fake for tests.
package gpu

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"

	"mirror-engine/core"
)

type ShaderStage int

const (
	VertexStage ShaderStage = iota
	GeometryStage
	FragmentStage
)

func (s ShaderStage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case GeometryStage:
		return "geometry"
	case FragmentStage:
		return "fragment"
	}
	return "unknown"
}

type TextureKind int

const (
	Texture2D TextureKind = iota
	TextureCube
)

// Texture is a GPU texture handle. ID 0 means "no texture".
type Texture struct {
	ID   uint32
	Kind TextureKind
}

type TargetKind int

const (
	// DepthCubeTarget is a depth-only framebuffer with a cube-map attachment.
	DepthCubeTarget TargetKind = iota
	// ColorTarget is a colour texture plus a depth renderbuffer.
	ColorTarget
)

func (k TargetKind) String() string {
	if k == DepthCubeTarget {
		return "depth-cube"
	}
	return "color"
}

// Target is an off-screen framebuffer. Texture is what later passes sample.
type Target struct {
	FBO           uint32
	Texture       Texture
	Renderbuffer  uint32
	Width, Height int
	Kind          TargetKind
}

// Mesh is an uploaded vertex/index buffer pair.
type Mesh struct {
	VAO, VBO, EBO uint32
	IndexCount    int32
}

type DepthFunc int

const (
	DepthLess DepthFunc = iota
	DepthLEqual
)

type FrontFace int

const (
	CounterClockwise FrontFace = iota
	Clockwise
)

// Device is every GPU operation the pipeline issues. All calls must come from
// the goroutine owning the GL context.
type Device interface {
	CompileShader(stage ShaderStage, source string) (uint32, error)
	LinkProgram(shaders []uint32) (uint32, error)
	DeleteShader(id uint32)
	DeleteProgram(id uint32)
	UseProgram(id uint32)

	// UniformLocation returns -1 when the linked program has no active
	// uniform called name.
	UniformLocation(program uint32, name string) int32
	Uniform1i(loc int32, v int32)
	Uniform1f(loc int32, v float32)
	Uniform2f(loc int32, v mgl32.Vec2)
	Uniform3f(loc int32, v mgl32.Vec3)
	Uniform4f(loc int32, v mgl32.Vec4)
	UniformMatrix3f(loc int32, m mgl32.Mat3, transpose bool)
	UniformMatrix4f(loc int32, m mgl32.Mat4, transpose bool)

	UploadMesh(data core.MeshData) (Mesh, error)
	DrawMesh(m Mesh)
	ReleaseMesh(m Mesh)

	UploadTexture(img *image.RGBA) (Texture, error)
	UploadCubeMap(faces [6]*image.RGBA) (Texture, error)
	BindTexture(unit int, t Texture)
	ReleaseTexture(t Texture)

	NewDepthCubeTarget(size int) (Target, error)
	NewColorTarget(width, height int) (Target, error)
	BindTarget(t Target)
	BindDefaultTarget(width, height int)
	ReleaseTarget(t Target)

	ClearColor(c core.Color)
	Clear(color, depth bool)
	Viewport(x, y, width, height int)
	SetDepthFunc(f DepthFunc)
	SetCulling(enabled bool)
	SetFrontFace(f FrontFace)
}

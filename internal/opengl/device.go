// Package opengl implements gpu.Device on an OpenGL 4.1 core context.
package opengl

import (
	"fmt"
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"mirror-engine/core"
	"mirror-engine/gpu"
)

// Device issues GL calls. It must only be used from the goroutine that owns
// the current context.
type Device struct {
	log *zap.Logger
}

var _ gpu.Device = (*Device)(nil)

// NewDevice loads GL function pointers for the current context and sets the
// default state: depth test LESS, back-face culling with CCW front faces,
// multisampling on.
func NewDevice(log *zap.Logger) (*Device, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Info("OpenGL context",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	gl.Enable(gl.MULTISAMPLE)
	gl.Enable(gl.TEXTURE_CUBE_MAP_SEAMLESS)

	return &Device{log: log}, nil
}

// ── Programs ──────────────────────────────────────────────────────────────────

var stageTypes = map[gpu.ShaderStage]uint32{
	gpu.VertexStage:   gl.VERTEX_SHADER,
	gpu.GeometryStage: gl.GEOMETRY_SHADER,
	gpu.FragmentStage: gl.FRAGMENT_SHADER,
}

func (d *Device) CompileShader(stage gpu.ShaderStage, source string) (uint32, error) {
	shaderType, ok := stageTypes[stage]
	if !ok {
		return 0, fmt.Errorf("unknown shader stage %d", stage)
	}
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s compile failed: %s", stage, strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

func (d *Device) LinkProgram(shaders []uint32) (uint32, error) {
	prog := gl.CreateProgram()
	for _, s := range shaders {
		gl.AttachShader(prog, s)
	}
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		return prog, fmt.Errorf("link failed: %s", strings.TrimRight(log, "\x00"))
	}
	for _, s := range shaders {
		gl.DetachShader(prog, s)
	}
	return prog, nil
}

func (d *Device) DeleteShader(id uint32)  { gl.DeleteShader(id) }
func (d *Device) DeleteProgram(id uint32) { gl.DeleteProgram(id) }
func (d *Device) UseProgram(id uint32)    { gl.UseProgram(id) }

// ── Uniforms ──────────────────────────────────────────────────────────────────

func (d *Device) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (d *Device) Uniform1i(loc int32, v int32)      { gl.Uniform1i(loc, v) }
func (d *Device) Uniform1f(loc int32, v float32)    { gl.Uniform1f(loc, v) }
func (d *Device) Uniform2f(loc int32, v mgl32.Vec2) { gl.Uniform2f(loc, v[0], v[1]) }
func (d *Device) Uniform3f(loc int32, v mgl32.Vec3) { gl.Uniform3f(loc, v[0], v[1], v[2]) }
func (d *Device) Uniform4f(loc int32, v mgl32.Vec4) { gl.Uniform4f(loc, v[0], v[1], v[2], v[3]) }

func (d *Device) UniformMatrix3f(loc int32, m mgl32.Mat3, transpose bool) {
	gl.UniformMatrix3fv(loc, 1, transpose, &m[0])
}

func (d *Device) UniformMatrix4f(loc int32, m mgl32.Mat4, transpose bool) {
	gl.UniformMatrix4fv(loc, 1, transpose, &m[0])
}

// ── Meshes ────────────────────────────────────────────────────────────────────

// UploadMesh creates a VAO with position (0), normal (1) and uv (2)
// attributes interleaved in one buffer, plus an element buffer.
func (d *Device) UploadMesh(data core.MeshData) (gpu.Mesh, error) {
	if len(data.Vertices) == 0 {
		return gpu.Mesh{}, fmt.Errorf("upload mesh: no vertices")
	}
	flat := data.Flatten()
	m := gpu.Mesh{IndexCount: int32(len(data.Indices))}

	gl.GenVertexArrays(1, &m.VAO)
	gl.GenBuffers(1, &m.VBO)
	gl.BindVertexArray(m.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, m.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(flat)*4, gl.Ptr(flat), gl.STATIC_DRAW)

	stride := int32(core.VertexStride)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 12)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 24)

	if len(data.Indices) > 0 {
		gl.GenBuffers(1, &m.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data.Indices)*4, gl.Ptr(data.Indices), gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)
	return m, nil
}

func (d *Device) DrawMesh(m gpu.Mesh) {
	if m.VAO == 0 || m.IndexCount == 0 {
		return
	}
	gl.BindVertexArray(m.VAO)
	gl.DrawElements(gl.TRIANGLES, m.IndexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

func (d *Device) ReleaseMesh(m gpu.Mesh) {
	if m.EBO != 0 {
		gl.DeleteBuffers(1, &m.EBO)
	}
	if m.VBO != 0 {
		gl.DeleteBuffers(1, &m.VBO)
	}
	if m.VAO != 0 {
		gl.DeleteVertexArrays(1, &m.VAO)
	}
}

// ── Fixed-function state ──────────────────────────────────────────────────────

func (d *Device) ClearColor(c core.Color) { gl.ClearColor(c.R, c.G, c.B, c.A) }

func (d *Device) Clear(color, depth bool) {
	var mask uint32
	if color {
		mask |= gl.COLOR_BUFFER_BIT
	}
	if depth {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if mask != 0 {
		gl.Clear(mask)
	}
}

func (d *Device) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (d *Device) SetDepthFunc(f gpu.DepthFunc) {
	if f == gpu.DepthLEqual {
		gl.DepthFunc(gl.LEQUAL)
		return
	}
	gl.DepthFunc(gl.LESS)
}

func (d *Device) SetCulling(enabled bool) {
	if enabled {
		gl.Enable(gl.CULL_FACE)
		return
	}
	gl.Disable(gl.CULL_FACE)
}

func (d *Device) SetFrontFace(f gpu.FrontFace) {
	if f == gpu.Clockwise {
		gl.FrontFace(gl.CW)
		return
	}
	gl.FrontFace(gl.CCW)
}

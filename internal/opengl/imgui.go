package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/inkyblackness/imgui-go/v4"

	"mirror-engine/gpu"
)

const imguiVertSrc = `
#version 410 core
uniform mat4 ProjMtx;
layout(location = 0) in vec2 Position;
layout(location = 1) in vec2 UV;
layout(location = 2) in vec4 Color;
out vec2 Frag_UV;
out vec4 Frag_Color;
void main() {
    Frag_UV = UV;
    Frag_Color = Color;
    gl_Position = ProjMtx * vec4(Position.xy, 0, 1);
}
`

const imguiFragSrc = `
#version 410 core
uniform sampler2D Texture;
in vec2 Frag_UV;
in vec4 Frag_Color;
out vec4 Out_Color;
void main() {
    Out_Color = Frag_Color * texture(Texture, Frag_UV.st);
}
`

// ImguiRenderer draws imgui draw lists. It owns its own program and buffers
// and saves and restores the GL state it changes, so it can run after the
// scene passes without disturbing them.
type ImguiRenderer struct {
	dev         *Device
	prog        uint32
	texLoc      int32
	projLoc     int32
	vao         uint32
	vbo, ebo    uint32
	fontTexture uint32
}

// NewImguiRenderer compiles the overlay program and uploads the font atlas
// of io.
func NewImguiRenderer(dev *Device, io imgui.IO) (*ImguiRenderer, error) {
	r := &ImguiRenderer{dev: dev}

	vert, err := dev.CompileShader(gpu.VertexStage, imguiVertSrc)
	if err != nil {
		return nil, fmt.Errorf("imgui shader: %w", err)
	}
	frag, err := dev.CompileShader(gpu.FragmentStage, imguiFragSrc)
	if err != nil {
		gl.DeleteShader(vert)
		return nil, fmt.Errorf("imgui shader: %w", err)
	}
	r.prog, err = dev.LinkProgram([]uint32{vert, frag})
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)
	if err != nil {
		gl.DeleteProgram(r.prog)
		return nil, fmt.Errorf("imgui shader: %w", err)
	}
	r.texLoc = dev.UniformLocation(r.prog, "Texture")
	r.projLoc = dev.UniformLocation(r.prog, "ProjMtx")

	gl.GenVertexArrays(1, &r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.GenBuffers(1, &r.ebo)

	vertexSize, posOffset, uvOffset, colOffset := imgui.VertexBufferLayout()
	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.EnableVertexAttribArray(0)
	gl.EnableVertexAttribArray(1)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, int32(vertexSize), uintptr(posOffset))
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, int32(vertexSize), uintptr(uvOffset))
	gl.VertexAttribPointerWithOffset(2, 4, gl.UNSIGNED_BYTE, true, int32(vertexSize), uintptr(colOffset))
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	gl.BindVertexArray(0)

	atlas := io.Fonts().TextureDataRGBA32()
	gl.GenTextures(1, &r.fontTexture)
	gl.BindTexture(gl.TEXTURE_2D, r.fontTexture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(atlas.Width), int32(atlas.Height),
		0, gl.RGBA, gl.UNSIGNED_BYTE, atlas.Pixels)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	io.Fonts().SetTextureID(imgui.TextureID(r.fontTexture))

	return r, nil
}

// Render draws drawData. displaySize is in window coordinates and
// framebufferSize in pixels; they differ on high-DPI displays.
func (r *ImguiRenderer) Render(displaySize, framebufferSize [2]float32, drawData imgui.DrawData) {
	fbWidth, fbHeight := framebufferSize[0], framebufferSize[1]
	if fbWidth <= 0 || fbHeight <= 0 {
		return
	}
	drawData.ScaleClipRects(imgui.Vec2{
		X: fbWidth / displaySize[0],
		Y: fbHeight / displaySize[1],
	})

	lastCull := gl.IsEnabled(gl.CULL_FACE)
	lastDepth := gl.IsEnabled(gl.DEPTH_TEST)
	lastScissor := gl.IsEnabled(gl.SCISSOR_TEST)
	lastBlend := gl.IsEnabled(gl.BLEND)

	gl.Enable(gl.BLEND)
	gl.BlendEquation(gl.FUNC_ADD)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.CULL_FACE)
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.SCISSOR_TEST)

	gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
	proj := mgl32.Ortho(0, displaySize[0], displaySize[1], 0, -1, 1)
	gl.UseProgram(r.prog)
	gl.Uniform1i(r.texLoc, 0)
	gl.UniformMatrix4fv(r.projLoc, 1, false, &proj[0])
	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ebo)
	gl.ActiveTexture(gl.TEXTURE0)

	vertexSize, _, _, _ := imgui.VertexBufferLayout()
	indexSize := imgui.IndexBufferLayout()
	drawType := uint32(gl.UNSIGNED_SHORT)
	if indexSize == 4 {
		drawType = gl.UNSIGNED_INT
	}

	for _, list := range drawData.CommandLists() {
		vertexBuffer, vertexBufferSize := list.VertexBuffer()
		gl.BufferData(gl.ARRAY_BUFFER, vertexBufferSize*vertexSize, vertexBuffer, gl.STREAM_DRAW)
		indexBuffer, indexBufferSize := list.IndexBuffer()
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, indexBufferSize*indexSize, indexBuffer, gl.STREAM_DRAW)

		var offset uintptr
		for _, cmd := range list.Commands() {
			if cmd.HasUserCallback() {
				cmd.CallUserCallback(list)
			} else {
				gl.BindTexture(gl.TEXTURE_2D, uint32(cmd.TextureID()))
				clip := cmd.ClipRect()
				gl.Scissor(int32(clip.X), int32(fbHeight)-int32(clip.W),
					int32(clip.Z-clip.X), int32(clip.W-clip.Y))
				gl.DrawElements(gl.TRIANGLES, int32(cmd.ElementCount()), drawType, gl.PtrOffset(int(offset)))
			}
			offset += uintptr(cmd.ElementCount() * indexSize)
		}
	}

	gl.BindVertexArray(0)
	gl.UseProgram(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	setEnabled(gl.CULL_FACE, lastCull)
	setEnabled(gl.DEPTH_TEST, lastDepth)
	setEnabled(gl.SCISSOR_TEST, lastScissor)
	setEnabled(gl.BLEND, lastBlend)
}

func setEnabled(capability uint32, on bool) {
	if on {
		gl.Enable(capability)
	} else {
		gl.Disable(capability)
	}
}

func (r *ImguiRenderer) Destroy() {
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.ebo != 0 {
		gl.DeleteBuffers(1, &r.ebo)
	}
	if r.fontTexture != 0 {
		gl.DeleteTextures(1, &r.fontTexture)
	}
	if r.prog != 0 {
		gl.DeleteProgram(r.prog)
	}
}

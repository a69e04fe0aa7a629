package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"mirror-engine/gpu"
)

// NewDepthCubeTarget creates a depth-only framebuffer whose attachment is a
// size×size cube map. The whole cube is attached as a layered image, so a
// geometry shader picks the face through gl_Layer.
func (d *Device) NewDepthCubeTarget(size int) (gpu.Target, error) {
	t := gpu.Target{Width: size, Height: size, Kind: gpu.DepthCubeTarget}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, tex)
	for i := uint32(0); i < 6; i++ {
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+i, 0, gl.DEPTH_COMPONENT32F,
			int32(size), int32(size), 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	}
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	t.Texture = gpu.Texture{ID: tex, Kind: gpu.TextureCube}

	gl.GenFramebuffers(1, &t.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.FBO)
	gl.FramebufferTexture(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, tex, 0)
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		d.ReleaseTarget(t)
		return gpu.Target{}, fmt.Errorf("depth cube FBO incomplete: status=0x%X", status)
	}
	return t, nil
}

// NewColorTarget creates an RGBA8 colour texture with a depth renderbuffer.
// The texture is what the floor samples its reflection from.
func (d *Device) NewColorTarget(width, height int) (gpu.Target, error) {
	t := gpu.Target{Width: width, Height: height, Kind: gpu.ColorTarget}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8,
		int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	t.Texture = gpu.Texture{ID: tex, Kind: gpu.Texture2D}

	gl.GenRenderbuffers(1, &t.Renderbuffer)
	gl.BindRenderbuffer(gl.RENDERBUFFER, t.Renderbuffer)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH24_STENCIL8, int32(width), int32(height))
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)

	gl.GenFramebuffers(1, &t.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, tex, 0)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, t.Renderbuffer)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		d.ReleaseTarget(t)
		return gpu.Target{}, fmt.Errorf("colour FBO incomplete: status=0x%X", status)
	}
	return t, nil
}

func (d *Device) BindTarget(t gpu.Target) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.FBO)
}

// BindDefaultTarget returns drawing to the window. width and height are
// unused by GL but keep the call symmetric with BindTarget.
func (d *Device) BindDefaultTarget(width, height int) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// ReleaseTarget frees the framebuffer and everything attached to it.
func (d *Device) ReleaseTarget(t gpu.Target) {
	if t.FBO != 0 {
		gl.DeleteFramebuffers(1, &t.FBO)
	}
	if t.Renderbuffer != 0 {
		gl.DeleteRenderbuffers(1, &t.Renderbuffer)
	}
	d.ReleaseTexture(t.Texture)
}

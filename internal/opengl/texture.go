package opengl

import (
	"fmt"
	"image"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"mirror-engine/gpu"
)

// UploadTexture uploads an RGBA8 image as a mipmapped, repeating 2D texture.
func (d *Device) UploadTexture(img *image.RGBA) (gpu.Texture, error) {
	if img == nil || len(img.Pix) == 0 {
		return gpu.Texture{}, fmt.Errorf("texture has no pixel data")
	}
	b := img.Bounds()

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.GenerateMipmap(gl.TEXTURE_2D)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return gpu.Texture{ID: id, Kind: gpu.Texture2D}, nil
}

// UploadCubeMap uploads six square faces in +X, -X, +Y, -Y, +Z, -Z order.
func (d *Device) UploadCubeMap(faces [6]*image.RGBA) (gpu.Texture, error) {
	for i, f := range faces {
		if f == nil || len(f.Pix) == 0 {
			return gpu.Texture{}, fmt.Errorf("cube map face %d has no pixel data", i)
		}
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, id)
	for i, f := range faces {
		b := f.Bounds()
		gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(f.Stride/4))
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, gl.RGBA,
			int32(b.Dx()), int32(b.Dy()), 0,
			gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(f.Pix))
	}
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)

	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)

	return gpu.Texture{ID: id, Kind: gpu.TextureCube}, nil
}

func textureTarget(k gpu.TextureKind) uint32 {
	if k == gpu.TextureCube {
		return gl.TEXTURE_CUBE_MAP
	}
	return gl.TEXTURE_2D
}

// BindTexture makes t current on the given texture unit. A zero texture
// unbinds the unit.
func (d *Device) BindTexture(unit int, t gpu.Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(textureTarget(t.Kind), t.ID)
}

func (d *Device) ReleaseTexture(t gpu.Texture) {
	if t.ID == 0 {
		return
	}
	gl.DeleteTextures(1, &t.ID)
}

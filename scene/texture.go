package scene

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"

	"mirror-engine/gpu"
)

// Texture holds CPU-side pixels for a 2D texture plus its GPU handle once
// uploaded.
type Texture struct {
	Name  string
	Image *image.RGBA
	GPU   gpu.Texture
}

// LoadImage decodes a PNG or JPEG file and converts it to RGBA8.
func LoadImage(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %q: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %q: %w", path, err)
	}
	return toRGBA(img), nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// ResizeSquare rescales img to size×size. Images already at that size are
// returned unchanged.
func ResizeSquare(img *image.RGBA, size int) *image.RGBA {
	b := img.Bounds()
	if b.Dx() == size && b.Dy() == size {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// LoadTexture reads an image file into a CPU-side Texture.
func LoadTexture(path string) (*Texture, error) {
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	return &Texture{Name: path, Image: img}, nil
}

// NewSolidTexture creates a 1x1 texture with the given RGBA colour (0–255).
func NewSolidTexture(name string, r, g, b, a uint8) *Texture {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	copy(img.Pix, []byte{r, g, b, a})
	return &Texture{Name: name, Image: img}
}

// Upload sends the pixels to the GPU. Uploading twice is a no-op.
func (t *Texture) Upload(dev gpu.Device) error {
	if t.GPU.ID != 0 {
		return nil
	}
	tex, err := dev.UploadTexture(t.Image)
	if err != nil {
		return fmt.Errorf("upload texture %q: %w", t.Name, err)
	}
	t.GPU = tex
	return nil
}

func (t *Texture) Release(dev gpu.Device) {
	if t.GPU.ID == 0 {
		return
	}
	dev.ReleaseTexture(t.GPU)
	t.GPU = gpu.Texture{}
}

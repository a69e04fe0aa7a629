package scene

import (
	"mirror-engine/core"
	"mirror-engine/gpu"
	"mirror-engine/shader"
)

// Material describes Phong surface properties for a mesh or the floor.
type Material struct {
	Name      string
	Albedo    core.Color
	Specular  core.Color
	Shininess float32

	// AlbedoTexture is multiplied with Albedo when set. Sampled on unit 0.
	AlbedoTexture *Texture
}

// DefaultMaterial returns a plain white matte material.
func DefaultMaterial() *Material {
	return &Material{
		Name:      "Default",
		Albedo:    core.ColorWhite,
		Specular:  core.Color{R: 0.3, G: 0.3, B: 0.3, A: 1},
		Shininess: 32,
	}
}

func NewMaterial(name string, albedo core.Color) *Material {
	return &Material{
		Name:      name,
		Albedo:    albedo,
		Specular:  core.Color{R: 0.5, G: 0.5, B: 0.5, A: 1},
		Shininess: 32,
	}
}

// Upload sends the albedo texture, if any, to the GPU.
func (m *Material) Upload(dev gpu.Device) error {
	if m.AlbedoTexture == nil {
		return nil
	}
	return m.AlbedoTexture.Upload(dev)
}

// Apply pushes the material uniforms into prog and binds its texture.
func (m *Material) Apply(dev gpu.Device, prog *shader.Program) {
	prog.SetVec3f("matAlbedo", m.Albedo.Vec3())
	prog.SetVec3f("matSpecular", m.Specular.Vec3())
	prog.Set1f("matShininess", m.Shininess)

	hasTex := m.AlbedoTexture != nil && m.AlbedoTexture.GPU.ID != 0
	if hasTex {
		dev.BindTexture(0, m.AlbedoTexture.GPU)
		prog.Set1i("albedoTex", 0)
		prog.Set1i("hasTexture", 1)
	} else {
		prog.Set1i("hasTexture", 0)
	}
}

func (m *Material) Release(dev gpu.Device) {
	if m.AlbedoTexture != nil {
		m.AlbedoTexture.Release(dev)
	}
}

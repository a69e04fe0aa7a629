package scene

import (
	"fmt"
	"path/filepath"
	"strings"

	"mirror-engine/core"
)

// Model is geometry read from a file, before it is uploaded as a Mesh.
type Model struct {
	Name     string
	Data     core.MeshData
	Material *Material
}

// MergeModels concatenates parts into one model, rebasing indices. The
// material of the first part that has one is kept.
func MergeModels(name string, parts []Model) Model {
	out := Model{Name: name}
	for _, p := range parts {
		base := uint32(len(out.Data.Vertices))
		out.Data.Vertices = append(out.Data.Vertices, p.Data.Vertices...)
		for _, i := range p.Data.Indices {
			out.Data.Indices = append(out.Data.Indices, base+i)
		}
		if out.Material == nil {
			out.Material = p.Material
		}
	}
	if out.Material == nil {
		out.Material = DefaultMaterial()
	}
	return out
}

// LoadModel reads a .obj, .gltf or .glb file and merges everything it
// contains into a single model named after the file.
func LoadModel(path string) (Model, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var (
		parts []Model
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		parts, err = LoadOBJ(path)
	case ".gltf", ".glb":
		parts, err = LoadGLTF(path)
	default:
		return Model{}, fmt.Errorf("load model %q: unsupported format", path)
	}
	if err != nil {
		return Model{}, err
	}
	if len(parts) == 0 {
		return Model{}, fmt.Errorf("load model %q: no geometry", path)
	}
	return MergeModels(name, parts), nil
}

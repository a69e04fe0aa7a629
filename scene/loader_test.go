package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOBJWithMaterial(t *testing.T) {
	models, err := LoadOBJ("testdata/cube.obj")
	require.NoError(t, err)
	require.Len(t, models, 1)

	m := models[0]
	assert.Equal(t, "Cube", m.Name)
	assert.Len(t, m.Data.Vertices, 8)
	assert.Len(t, m.Data.Indices, 36)
	assert.InDelta(t, 0.9, m.Material.Albedo.R, 1e-6)
	assert.InDelta(t, 64, m.Material.Shininess, 1e-6)
	for _, v := range m.Data.Vertices {
		assert.InDelta(t, 1, v.Normal.Len(), 1e-4, "generated normals are unit length")
	}
}

func TestLoadOBJExplicitAttributes(t *testing.T) {
	models, err := LoadOBJ("testdata/tri.obj")
	require.NoError(t, err)
	require.Len(t, models, 1)
	v := models[0].Data.Vertices
	require.Len(t, v, 3)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, v[0].Normal)
	assert.Equal(t, mgl32.Vec2{1, 0}, v[1].UV)
	assert.Equal(t, "Default", models[0].Material.Name)
}

func writeOBJ(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "m.obj")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOBJRelativeIndicesAndGroups(t *testing.T) {
	path := writeOBJ(t, `g first
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f -4 -3 -2 -1
g second
v 0 0 1
v 1 0 1
v 0 1 1
f 5 6 7
`)
	models, err := LoadOBJ(path)
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "first", models[0].Name)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, models[0].Data.Indices, "quad is fanned into two triangles")
	assertVec3(t, mgl32.Vec3{0, 0, 1}, models[0].Data.Vertices[0].Normal)
	assert.Equal(t, "second", models[1].Name)
	assertVec3(t, mgl32.Vec3{0, 0, 1}, models[1].Data.Vertices[0].Position)
}

func TestLoadOBJRejectsMalformedLines(t *testing.T) {
	for name, body := range map[string]string{
		"bad number":            "v 0 zero 0\n",
		"short face":            "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"bad index":             "v 0 0 0\nf 1 a 1\n",
		"no geometry":           "# nothing here\n",
		"index past end":        "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 99\n",
		"relative before start": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -1 -2 -4\n",
		"zero index":            "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n",
		"undeclared normal":     "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1//1 2//1 3//1\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadOBJ(writeOBJ(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadOBJFaceIndexErrorNamesLine(t *testing.T) {
	_, err := LoadOBJ(writeOBJ(t, "v 0 0 0\nv 1 0 0\nv 0 1 0\n# tri\nf 1 2 4\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 5")
	assert.Contains(t, err.Error(), "out of range")
}

func TestLoadModelMerges(t *testing.T) {
	m, err := LoadModel("testdata/cube.obj")
	require.NoError(t, err)
	assert.Equal(t, "cube", m.Name)
	assert.Len(t, m.Data.Indices, 36)

	_, err = LoadModel("testdata/cube.fbx")
	assert.Error(t, err)
	_, err = LoadModel("testdata/missing.obj")
	assert.Error(t, err)
}

func TestMergeModelsRebasesIndices(t *testing.T) {
	a := Model{Data: CreateCube(1)}
	b := Model{Data: CreateCube(2), Material: NewMaterial("blue", SkyZenith)}
	m := MergeModels("both", []Model{a, b})

	assert.Len(t, m.Data.Vertices, 48)
	assert.Len(t, m.Data.Indices, 72)
	assert.Equal(t, uint32(24), m.Data.Indices[36])
	assert.Equal(t, "blue", m.Material.Name)
}

func TestLoadGLTFBakesNodeTransform(t *testing.T) {
	models, err := LoadGLTF("testdata/pyramid.gltf")
	require.NoError(t, err)
	require.Len(t, models, 1)

	m := models[0]
	require.Len(t, m.Data.Vertices, 5)
	assert.Len(t, m.Data.Indices, 18)
	assertVec3(t, mgl32.Vec3{0, 1.75, 0}, m.Data.Vertices[4].Position)
	assertVec3(t, mgl32.Vec3{0.5, 0.25, 0.5}, m.Data.Vertices[2].Position)
	assertVec3(t, mgl32.Vec3{0, 1, 0}, m.Data.Vertices[4].Normal)

	assert.Equal(t, "gold", m.Material.Name)
	assert.InDelta(t, 0.76, m.Material.Albedo.G, 1e-6)
	assert.Greater(t, m.Material.Shininess, float32(60))
}

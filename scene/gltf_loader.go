package scene

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"mirror-engine/core"
)

type gltfReader struct {
	doc       *gltf.Document
	dir       string
	textures  []*Texture // by texture index; nil when unreadable
	materials []*Material
	models    []Model
}

// LoadGLTF opens a .glb or .gltf file and returns one Model per mesh
// primitive reachable from the scene roots, with node transforms baked into
// the vertices. Metallic-roughness materials are approximated as Phong.
func LoadGLTF(path string) ([]Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	r := &gltfReader{doc: doc, dir: filepath.Dir(path)}
	r.readTextures()
	r.readMaterials()
	for _, root := range rootNodes(doc) {
		r.visit(root, mgl32.Ident4())
	}
	if len(r.models) == 0 {
		return nil, fmt.Errorf("no geometry found in %q", path)
	}
	return r.models, nil
}

func (r *gltfReader) readTextures() {
	r.textures = make([]*Texture, len(r.doc.Textures))
	for i, t := range r.doc.Textures {
		if t.Source == nil || *t.Source >= len(r.doc.Images) {
			continue
		}
		if tex, err := r.image(*t.Source); err == nil {
			r.textures[i] = tex
		}
	}
}

// image loads image i from its buffer view or from a file next to the
// document.
func (r *gltfReader) image(i int) (*Texture, error) {
	img := r.doc.Images[i]
	switch {
	case img.BufferView != nil:
		raw, err := modeler.ReadBufferView(r.doc, r.doc.BufferViews[*img.BufferView])
		if err != nil {
			return nil, err
		}
		name := img.Name
		if name == "" {
			name = fmt.Sprintf("image%d", i)
		}
		return decodeImageBytes(name, raw)
	case img.URI != "" && !img.IsEmbeddedResource():
		return LoadTexture(filepath.Join(r.dir, img.URI))
	}
	return nil, fmt.Errorf("image %d has no data", i)
}

func (r *gltfReader) readMaterials() {
	r.materials = make([]*Material, len(r.doc.Materials))
	for i, gm := range r.doc.Materials {
		mat := DefaultMaterial()
		mat.Name = gm.Name
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			c := pbr.BaseColorFactorOrDefault()
			mat.Albedo = core.Color{R: float32(c[0]), G: float32(c[1]), B: float32(c[2]), A: float32(c[3])}
			if bt := pbr.BaseColorTexture; bt != nil && bt.Index < len(r.textures) {
				mat.AlbedoTexture = r.textures[bt.Index]
			}
			// smoother surfaces get tighter highlights, metals brighter ones
			smooth := 1 - float32(pbr.RoughnessFactorOrDefault())
			mat.Shininess = smooth*smooth*128 + 1
			s := float32(pbr.MetallicFactorOrDefault()) * 0.7
			mat.Specular = core.Color{R: s, G: s, B: s, A: 1}
		}
		r.materials[i] = mat
	}
}

func (r *gltfReader) material(prim *gltf.Primitive) *Material {
	if prim.Material != nil && *prim.Material < len(r.materials) {
		return r.materials[*prim.Material]
	}
	return DefaultMaterial()
}

func (r *gltfReader) visit(idx int, parent mgl32.Mat4) {
	if idx < 0 || idx >= len(r.doc.Nodes) {
		return
	}
	node := r.doc.Nodes[idx]
	world := parent.Mul4(nodeMatrix(node))

	if node.Mesh != nil && *node.Mesh < len(r.doc.Meshes) {
		mesh := r.doc.Meshes[*node.Mesh]
		for i, prim := range mesh.Primitives {
			data, err := readPrimitive(r.doc, prim)
			if err != nil {
				continue
			}
			bakeTransform(&data, world)
			r.models = append(r.models, Model{
				Name:     fmt.Sprintf("%s.%d", mesh.Name, i),
				Data:     data,
				Material: r.material(prim),
			})
		}
	}
	for _, c := range node.Children {
		r.visit(c, world)
	}
}

// rootNodes returns the default scene's roots, or every parentless node when
// the file names no scene.
func rootNodes(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	child := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c < len(child) {
				child[c] = true
			}
		}
	}
	var roots []int
	for i, isChild := range child {
		if !isChild {
			roots = append(roots, i)
		}
	}
	return roots
}

func nodeMatrix(n *gltf.Node) mgl32.Mat4 {
	t, r, s := n.TranslationOrDefault(), n.RotationOrDefault(), n.ScaleOrDefault()
	rot := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}.Normalize()
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(rot.Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

// bakeTransform moves vertices into world space; normals use the
// inverse-transpose so non-uniform scale keeps them perpendicular.
func bakeTransform(data *core.MeshData, world mgl32.Mat4) {
	if world == mgl32.Ident4() {
		return
	}
	normalMat := world.Mat3().Inv().Transpose()
	for i := range data.Vertices {
		v := &data.Vertices[i]
		v.Position = world.Mul4x1(v.Position.Vec4(1)).Vec3()
		if n := normalMat.Mul3x1(v.Normal); n.Len() > 0 {
			v.Normal = n.Normalize()
		}
	}
}

// readPrimitive converts one triangle primitive into vertex data. Missing
// indices become 0..n-1 and missing normals are generated.
func readPrimitive(doc *gltf.Document, prim *gltf.Primitive) (core.MeshData, error) {
	attr := prim.Attributes
	posIdx, ok := attr["POSITION"]
	if !ok {
		return core.MeshData{}, fmt.Errorf("primitive has no POSITION")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return core.MeshData{}, fmt.Errorf("positions: %w", err)
	}
	var (
		normals [][3]float32
		uvs     [][2]float32
	)
	if i, ok := attr["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[i], nil)
	}
	if i, ok := attr["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[i], nil)
	}

	data := core.MeshData{Vertices: make([]core.Vertex, len(positions))}
	for i, p := range positions {
		data.Vertices[i] = core.Vertex{
			Position: mgl32.Vec3(p),
			Normal:   mgl32.Vec3(at(normals, i, [3]float32{0, 1, 0})),
			UV:       mgl32.Vec2(at(uvs, i, [2]float32{})),
		}
	}

	if prim.Indices != nil {
		if data.Indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return core.MeshData{}, fmt.Errorf("indices: %w", err)
		}
	} else {
		data.Indices = make([]uint32, len(positions))
		for i := range data.Indices {
			data.Indices[i] = uint32(i)
		}
	}
	if len(normals) == 0 {
		smoothNormals(data)
	}
	return data, nil
}

// decodeImageBytes decodes an embedded PNG or JPEG into an RGBA8 Texture.
func decodeImageBytes(name string, data []byte) (*Texture, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return &Texture{Name: name, Image: toRGBA(img)}, nil
}

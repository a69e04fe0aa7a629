package scene

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"mirror-engine/core"
)

// objRef points at one corner's position, texcoord and normal. Indices are
// resolved to 0-based; -1 marks an absent attribute.
type objRef struct{ v, vt, vn int }

type objGroup struct {
	name     string
	material string
	corners  []objRef // three per triangle
}

type objParser struct {
	dir       string
	positions []mgl32.Vec3
	normals   []mgl32.Vec3
	uvs       []mgl32.Vec2
	materials map[string]*Material
	groups    []*objGroup
	cur       *objGroup
}

// LoadOBJ reads a Wavefront .obj file. Each "o" or "g" section with faces
// becomes one Model; polygons are fan-triangulated. Materials come from
// the referenced .mtl library when it can be read.
func LoadOBJ(path string) ([]Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	p := &objParser{
		dir:       filepath.Dir(path),
		materials: map[string]*Material{},
		cur:       &objGroup{name: "default"},
	}
	if err := p.parse(f); err != nil {
		return nil, fmt.Errorf("parse obj %q: %w", path, err)
	}
	return p.models(path)
}

func (p *objParser) parse(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if err := p.directive(fields[0], fields[1:]); err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
	}
	return sc.Err()
}

func (p *objParser) directive(kw string, args []string) error {
	switch kw {
	case "v":
		v, err := parseFloats(args, 3)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, mgl32.Vec3{v[0], v[1], v[2]})
	case "vn":
		v, err := parseFloats(args, 3)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, mgl32.Vec3{v[0], v[1], v[2]})
	case "vt":
		v, err := parseFloats(args, 2)
		if err != nil {
			return err
		}
		p.uvs = append(p.uvs, mgl32.Vec2{v[0], v[1]})
	case "o", "g":
		name := "default"
		if len(args) > 0 {
			name = args[0]
		}
		p.startGroup(name)
	case "usemtl":
		if len(args) > 0 {
			p.cur.material = args[0]
		}
	case "mtllib":
		for _, lib := range args {
			// a missing library leaves the default material in place
			if mats, err := loadMTL(filepath.Join(p.dir, lib), p.dir); err == nil {
				for name, m := range mats {
					p.materials[name] = m
				}
			}
		}
	case "f":
		return p.face(args)
	}
	return nil
}

func (p *objParser) startGroup(name string) {
	if len(p.cur.corners) > 0 {
		p.groups = append(p.groups, p.cur)
	}
	p.cur = &objGroup{name: name, material: p.cur.material}
}

func (p *objParser) face(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("face needs 3 vertices, got %d", len(args))
	}
	refs := make([]objRef, len(args))
	for i, tok := range args {
		r, err := p.ref(tok)
		if err != nil {
			return err
		}
		refs[i] = r
	}
	for i := 1; i+1 < len(refs); i++ {
		p.cur.corners = append(p.cur.corners, refs[0], refs[i], refs[i+1])
	}
	return nil
}

// ref parses "v", "v/vt", "v//vn" or "v/vt/vn". Negative indices count back
// from the most recent element; an index outside what has been declared so
// far is an error.
func (p *objParser) ref(tok string) (objRef, error) {
	parts := strings.SplitN(tok, "/", 3)
	pools := [3]int{len(p.positions), len(p.uvs), len(p.normals)}
	out := [3]int{-1, -1, -1}
	for i, s := range parts {
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return objRef{}, fmt.Errorf("bad face index %q", tok)
		}
		switch {
		case n > 0:
			out[i] = n - 1
		case n < 0:
			out[i] = pools[i] + n
		}
		if n == 0 || out[i] < 0 || out[i] >= pools[i] {
			return objRef{}, fmt.Errorf("face index %q out of range", tok)
		}
	}
	if out[0] < 0 {
		return objRef{}, fmt.Errorf("face vertex %q has no position", tok)
	}
	return objRef{v: out[0], vt: out[1], vn: out[2]}, nil
}

func (p *objParser) models(path string) ([]Model, error) {
	p.startGroup("")
	if len(p.groups) == 0 {
		return nil, fmt.Errorf("no geometry found in %q", path)
	}
	models := make([]Model, 0, len(p.groups))
	for _, g := range p.groups {
		mat := p.materials[g.material]
		if mat == nil {
			mat = DefaultMaterial()
		}
		models = append(models, Model{Name: g.name, Data: p.build(g.corners), Material: mat})
	}
	return models, nil
}

// build welds identical corners into shared vertices. Files without normals
// get smooth area-weighted ones.
func (p *objParser) build(corners []objRef) core.MeshData {
	var data core.MeshData
	seen := make(map[objRef]uint32, len(corners))
	for _, c := range corners {
		idx, ok := seen[c]
		if !ok {
			idx = uint32(len(data.Vertices))
			seen[c] = idx
			data.Vertices = append(data.Vertices, core.Vertex{
				Position: at(p.positions, c.v, mgl32.Vec3{}),
				Normal:   at(p.normals, c.vn, mgl32.Vec3{0, 1, 0}),
				UV:       at(p.uvs, c.vt, mgl32.Vec2{}),
			})
		}
		data.Indices = append(data.Indices, idx)
	}
	if len(p.normals) == 0 {
		smoothNormals(data)
	}
	return data
}

func at[T any](pool []T, i int, fallback T) T {
	if i < 0 || i >= len(pool) {
		return fallback
	}
	return pool[i]
}

func smoothNormals(data core.MeshData) {
	sum := make([]mgl32.Vec3, len(data.Vertices))
	for i := 0; i+2 < len(data.Indices); i += 3 {
		a, b, c := data.Indices[i], data.Indices[i+1], data.Indices[i+2]
		pa := data.Vertices[a].Position
		n := data.Vertices[b].Position.Sub(pa).Cross(data.Vertices[c].Position.Sub(pa))
		sum[a], sum[b], sum[c] = sum[a].Add(n), sum[b].Add(n), sum[c].Add(n)
	}
	for i, n := range sum {
		if n.Len() > 0 {
			data.Vertices[i].Normal = n.Normalize()
		}
	}
}

func parseFloats(args []string, n int) ([]float32, error) {
	if len(args) < n {
		return nil, fmt.Errorf("want %d numbers, got %d", n, len(args))
	}
	out := make([]float32, n)
	for i := range out {
		f, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", args[i])
		}
		out[i] = float32(f)
	}
	return out, nil
}

// loadMTL reads the newmtl blocks of a material library. Diffuse texture
// maps that fail to load are ignored.
func loadMTL(path, dir string) (map[string]*Material, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mats := map[string]*Material{}
	var cur *Material
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fields[0] == "newmtl" {
			cur = DefaultMaterial()
			cur.Name = fields[1]
			mats[cur.Name] = cur
			continue
		}
		if cur == nil {
			continue
		}
		args := fields[1:]
		switch fields[0] {
		case "Kd":
			if v, err := parseFloats(args, 3); err == nil {
				cur.Albedo = core.Color{R: v[0], G: v[1], B: v[2], A: cur.Albedo.A}
			}
		case "Ks":
			if v, err := parseFloats(args, 3); err == nil {
				cur.Specular = core.Color{R: v[0], G: v[1], B: v[2], A: 1}
			}
		case "Ns":
			if v, err := parseFloats(args, 1); err == nil {
				cur.Shininess = max(1, v[0])
			}
		case "d":
			if v, err := parseFloats(args, 1); err == nil {
				cur.Albedo.A = v[0]
			}
		case "map_Kd":
			if tex, err := LoadTexture(filepath.Join(dir, args[len(args)-1])); err == nil {
				cur.AlbedoTexture = tex
			}
		}
	}
	return mats, sc.Err()
}

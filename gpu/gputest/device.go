// Package gputest provides a recording gpu.Device for tests. It never touches a
// real GPU: shader "compilation" parses uniform declarations out of the GLSL
// source so that UniformLocation behaves like a linked program would.
package gputest

import (
	"errors"
	"fmt"
	"image"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"mirror-engine/core"
	"mirror-engine/gpu"
)

// Call is one recorded device operation.
type Call struct {
	Op      string
	Program uint32 // program bound when the call was made
	Target  string // framebuffer bound when the call was made
	Name    string // uniform name for uniform writes
	ID      uint32 // object the call acted on, when there is one
	Value   any
}

type program struct {
	uniforms []string
}

// Device records every call. The zero value is not usable; use New.
type Device struct {
	Calls []Call

	// FailLink makes every LinkProgram call fail.
	FailLink bool

	nextID   uint32
	shaders  map[uint32][]string
	programs map[uint32]*program
	released map[string]int
	bound    uint32
	target   string
}

func New() *Device {
	return &Device{
		nextID:   1,
		shaders:  make(map[uint32][]string),
		programs: make(map[uint32]*program),
		released: make(map[string]int),
		target:   "default",
	}
}

var (
	uniformRe = regexp.MustCompile(`(?m)^\s*uniform\s+(?:(?:highp|mediump|lowp)\s+)?\w+\s+(\w+)\s*(?:\[\s*(\w+)\s*\])?\s*;`)
	defineRe  = regexp.MustCompile(`(?m)^\s*#define\s+(\w+)\s+(\d+)`)
)

func (d *Device) id() uint32 {
	id := d.nextID
	d.nextID++
	return id
}

func (d *Device) record(c Call) {
	c.Program = d.bound
	c.Target = d.target
	d.Calls = append(d.Calls, c)
}

// parseUniforms lists every uniform name a GL driver would resolve for src,
// including "name[i]" entries for arrays.
func parseUniforms(src string) []string {
	defines := map[string]int{}
	for _, m := range defineRe.FindAllStringSubmatch(src, -1) {
		n, _ := strconv.Atoi(m[2])
		defines[m[1]] = n
	}
	var names []string
	for _, m := range uniformRe.FindAllStringSubmatch(src, -1) {
		names = append(names, m[1])
		if m[2] == "" {
			continue
		}
		size, err := strconv.Atoi(m[2])
		if err != nil {
			size = defines[m[2]]
		}
		for i := 0; i < size; i++ {
			names = append(names, fmt.Sprintf("%s[%d]", m[1], i))
		}
	}
	return names
}

// CompileShader fails for empty sources, sources without a #version line and
// sources containing "#error", mirroring what a real driver reports.
func (d *Device) CompileShader(stage gpu.ShaderStage, source string) (uint32, error) {
	d.record(Call{Op: "CompileShader", Value: stage})
	switch {
	case strings.TrimSpace(source) == "":
		return 0, errors.New("0:1: error: empty source")
	case !strings.Contains(source, "#version"):
		return 0, errors.New("0:1: error: missing #version")
	case strings.Contains(source, "#error"):
		return 0, errors.New("0:1: error: #error directive")
	}
	id := d.id()
	d.shaders[id] = parseUniforms(source)
	return id, nil
}

func (d *Device) LinkProgram(shaders []uint32) (uint32, error) {
	d.record(Call{Op: "LinkProgram"})
	if d.FailLink {
		return 0, errors.New("link error: forced failure")
	}
	p := &program{}
	seen := map[string]bool{}
	for _, s := range shaders {
		names, ok := d.shaders[s]
		if !ok {
			return 0, fmt.Errorf("link error: unknown shader %d", s)
		}
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				p.uniforms = append(p.uniforms, n)
			}
		}
	}
	id := d.id()
	d.programs[id] = p
	return id, nil
}

func (d *Device) DeleteShader(id uint32) {
	d.record(Call{Op: "DeleteShader", ID: id})
	delete(d.shaders, id)
}

func (d *Device) DeleteProgram(id uint32) {
	d.record(Call{Op: "DeleteProgram", ID: id})
	d.released[fmt.Sprintf("program#%d", id)]++
	delete(d.programs, id)
}

func (d *Device) UseProgram(id uint32) {
	d.bound = id
	d.record(Call{Op: "UseProgram", ID: id})
}

func (d *Device) UniformLocation(prog uint32, name string) int32 {
	p, ok := d.programs[prog]
	if !ok {
		return -1
	}
	for i, n := range p.uniforms {
		if n == name {
			return int32(i)
		}
	}
	return -1
}

func (d *Device) uniform(loc int32, v any) {
	p, ok := d.programs[d.bound]
	if !ok || loc < 0 || int(loc) >= len(p.uniforms) {
		return
	}
	d.record(Call{Op: "Uniform", Name: p.uniforms[loc], Value: v})
}

func (d *Device) Uniform1i(loc int32, v int32)      { d.uniform(loc, v) }
func (d *Device) Uniform1f(loc int32, v float32)    { d.uniform(loc, v) }
func (d *Device) Uniform2f(loc int32, v mgl32.Vec2) { d.uniform(loc, v) }
func (d *Device) Uniform3f(loc int32, v mgl32.Vec3) { d.uniform(loc, v) }
func (d *Device) Uniform4f(loc int32, v mgl32.Vec4) { d.uniform(loc, v) }

func (d *Device) UniformMatrix3f(loc int32, m mgl32.Mat3, transpose bool) {
	if transpose {
		m = m.Transpose()
	}
	d.uniform(loc, m)
}

func (d *Device) UniformMatrix4f(loc int32, m mgl32.Mat4, transpose bool) {
	if transpose {
		m = m.Transpose()
	}
	d.uniform(loc, m)
}

func (d *Device) UploadMesh(data core.MeshData) (gpu.Mesh, error) {
	if len(data.Vertices) == 0 {
		return gpu.Mesh{}, errors.New("no vertices")
	}
	m := gpu.Mesh{VAO: d.id(), VBO: d.id(), EBO: d.id(), IndexCount: int32(len(data.Indices))}
	d.record(Call{Op: "UploadMesh", ID: m.VAO, Value: len(data.Vertices)})
	return m, nil
}

func (d *Device) DrawMesh(m gpu.Mesh) {
	d.record(Call{Op: "DrawMesh", ID: m.VAO})
}

func (d *Device) ReleaseMesh(m gpu.Mesh) {
	d.record(Call{Op: "ReleaseMesh", ID: m.VAO})
	d.released[fmt.Sprintf("mesh#%d", m.VAO)]++
}

func (d *Device) UploadTexture(img *image.RGBA) (gpu.Texture, error) {
	if img == nil {
		return gpu.Texture{}, errors.New("nil image")
	}
	t := gpu.Texture{ID: d.id(), Kind: gpu.Texture2D}
	d.record(Call{Op: "UploadTexture", ID: t.ID})
	return t, nil
}

func (d *Device) UploadCubeMap(faces [6]*image.RGBA) (gpu.Texture, error) {
	for i, f := range faces {
		if f == nil {
			return gpu.Texture{}, fmt.Errorf("face %d is nil", i)
		}
	}
	t := gpu.Texture{ID: d.id(), Kind: gpu.TextureCube}
	d.record(Call{Op: "UploadCubeMap", ID: t.ID})
	return t, nil
}

func (d *Device) BindTexture(unit int, t gpu.Texture) {
	d.record(Call{Op: "BindTexture", ID: t.ID, Value: unit})
}

func (d *Device) ReleaseTexture(t gpu.Texture) {
	d.record(Call{Op: "ReleaseTexture", ID: t.ID})
	d.released[fmt.Sprintf("texture#%d", t.ID)]++
}

func (d *Device) NewDepthCubeTarget(size int) (gpu.Target, error) {
	if size <= 0 {
		return gpu.Target{}, fmt.Errorf("invalid size %d", size)
	}
	t := gpu.Target{
		FBO:     d.id(),
		Texture: gpu.Texture{ID: d.id(), Kind: gpu.TextureCube},
		Width:   size,
		Height:  size,
		Kind:    gpu.DepthCubeTarget,
	}
	d.record(Call{Op: "NewTarget", ID: t.FBO, Value: t.Kind})
	return t, nil
}

func (d *Device) NewColorTarget(width, height int) (gpu.Target, error) {
	if width <= 0 || height <= 0 {
		return gpu.Target{}, fmt.Errorf("invalid size %dx%d", width, height)
	}
	t := gpu.Target{
		FBO:          d.id(),
		Texture:      gpu.Texture{ID: d.id(), Kind: gpu.Texture2D},
		Renderbuffer: d.id(),
		Width:        width,
		Height:       height,
		Kind:         gpu.ColorTarget,
	}
	d.record(Call{Op: "NewTarget", ID: t.FBO, Value: t.Kind})
	return t, nil
}

// TargetLabel is the label recorded in Call.Target while t is bound.
func TargetLabel(t gpu.Target) string {
	return fmt.Sprintf("%s#%d", t.Kind, t.FBO)
}

func (d *Device) BindTarget(t gpu.Target) {
	d.target = TargetLabel(t)
	d.record(Call{Op: "BindTarget", ID: t.FBO, Value: t.Kind})
}

func (d *Device) BindDefaultTarget(width, height int) {
	d.target = "default"
	d.record(Call{Op: "BindDefaultTarget", Value: [2]int{width, height}})
}

func (d *Device) ReleaseTarget(t gpu.Target) {
	d.record(Call{Op: "ReleaseTarget", ID: t.FBO})
	d.released[fmt.Sprintf("target#%d", t.FBO)]++
}

func (d *Device) ClearColor(c core.Color) { d.record(Call{Op: "ClearColor", Value: c}) }

func (d *Device) Clear(color, depth bool) {
	d.record(Call{Op: "Clear", Value: [2]bool{color, depth}})
}

func (d *Device) Viewport(x, y, width, height int) {
	d.record(Call{Op: "Viewport", Value: [4]int{x, y, width, height}})
}

func (d *Device) SetDepthFunc(f gpu.DepthFunc) { d.record(Call{Op: "SetDepthFunc", Value: f}) }
func (d *Device) SetCulling(enabled bool)      { d.record(Call{Op: "SetCulling", Value: enabled}) }
func (d *Device) SetFrontFace(f gpu.FrontFace) { d.record(Call{Op: "SetFrontFace", Value: f}) }

// ── Query helpers ────────────────────────────────────────────────────────────

// Reset drops the recorded calls but keeps every GPU object alive.
func (d *Device) Reset() { d.Calls = nil }

// Bound returns the currently bound program.
func (d *Device) Bound() uint32 { return d.bound }

// Released reports how many times an object was released. kind is one of
// "program", "mesh" (keyed by VAO), "texture" or "target" (keyed by FBO).
func (d *Device) Released(kind string, id uint32) int {
	return d.released[fmt.Sprintf("%s#%d", kind, id)]
}

// Count returns the number of recorded calls with the given op.
func (d *Device) Count(op string) int {
	n := 0
	for _, c := range d.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Filter returns the recorded calls matching keep, in order.
func (d *Device) Filter(keep func(Call) bool) []Call {
	var out []Call
	for _, c := range d.Calls {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// First returns the index of the first call matching pred, or -1.
func (d *Device) First(pred func(Call) bool) int {
	for i, c := range d.Calls {
		if pred(c) {
			return i
		}
	}
	return -1
}

// Last returns the index of the last call matching pred, or -1.
func (d *Device) Last(pred func(Call) bool) int {
	for i := len(d.Calls) - 1; i >= 0; i-- {
		if pred(d.Calls[i]) {
			return i
		}
	}
	return -1
}

// Writes returns every value written to uniform name of prog.
func (d *Device) Writes(prog uint32, name string) []any {
	var out []any
	for _, c := range d.Calls {
		if c.Op == "Uniform" && c.Program == prog && c.Name == name {
			out = append(out, c.Value)
		}
	}
	return out
}

// LastWrite returns the most recent value written to uniform name of prog.
func (d *Device) LastWrite(prog uint32, name string) (any, bool) {
	w := d.Writes(prog, name)
	if len(w) == 0 {
		return nil, false
	}
	return w[len(w)-1], true
}

// Op matches calls by operation name.
func Op(op string) func(Call) bool {
	return func(c Call) bool { return c.Op == op }
}

// OpOn matches calls by operation name and object id.
func OpOn(op string, id uint32) func(Call) bool {
	return func(c Call) bool { return c.Op == op && c.ID == id }
}

// DrawIn matches draws issued while the given target label was bound.
func DrawIn(target string) func(Call) bool {
	return func(c Call) bool { return c.Op == "DrawMesh" && c.Target == target }
}

// DrawWith matches draws issued while prog was bound.
func DrawWith(prog uint32) func(Call) bool {
	return func(c Call) bool { return c.Op == "DrawMesh" && c.Program == prog }
}

var _ gpu.Device = (*Device)(nil)

// Package shader loads GLSL stage files into linked GPU programs and pushes
// uniforms into them.
package shader

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"mirror-engine/gpu"
)

var (
	ErrSource  = errors.New("shader source unavailable")
	ErrCompile = errors.New("shader compile failed")
	ErrLink    = errors.New("program link failed")
)

// Source names the stage files of one program. Geometry is optional.
type Source struct {
	Vertex   string
	Geometry string
	Fragment string
}

// Program is a linked GPU program. An invalid Program (ID 0) is returned when
// loading fails; all of its setters do nothing.
type Program struct {
	dev     gpu.Device
	log     *zap.Logger
	id      uint32
	version string
	locs    map[string]int32
}

// GLSLVersion maps a GL context version to its GLSL directive number,
// e.g. 4.1 -> "410".
func GLSLVersion(major, minor int) string {
	return fmt.Sprintf("%d%d0", major, minor)
}

var versionRe = regexp.MustCompile(`(?m)^[ \t]*#version[ \t]+\d+`)

// RewriteVersion replaces the number of the first #version directive with
// version, keeping any profile suffix. found is false when src had none, in
// which case the directive is inserted as the first line.
func RewriteVersion(src, version string) (out string, found bool) {
	loc := versionRe.FindStringIndex(src)
	if loc == nil {
		return "#version " + version + "\n" + src, false
	}
	return src[:loc[0]] + "#version " + version + src[loc[1]:], true
}

// Load reads, rewrites and compiles every stage of src, then links them.
// Failures are logged and returned; the process keeps running with an invalid
// program.
func Load(dev gpu.Device, version string, src Source, log *zap.Logger) (*Program, error) {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Program{dev: dev, log: log, version: version, locs: make(map[string]int32)}

	stages := []struct {
		stage gpu.ShaderStage
		path  string
	}{
		{gpu.VertexStage, src.Vertex},
		{gpu.GeometryStage, src.Geometry},
		{gpu.FragmentStage, src.Fragment},
	}

	var (
		ids  []uint32
		errs []error
	)
	for _, s := range stages {
		if s.path == "" && s.stage == gpu.GeometryStage {
			continue
		}
		id, err := p.compile(s.stage, s.path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ids = append(ids, id)
	}

	release := func() {
		for _, id := range ids {
			dev.DeleteShader(id)
		}
	}

	if len(errs) > 0 {
		release()
		return p, errors.Join(errs...)
	}

	prog, err := dev.LinkProgram(ids)
	release()
	if err != nil {
		log.Error("program link failed",
			zap.String("vertex", src.Vertex),
			zap.String("fragment", src.Fragment),
			zap.Error(err))
		if prog != 0 {
			dev.DeleteProgram(prog)
		}
		return p, fmt.Errorf("%w: %s: %v", ErrLink, src.Vertex, err)
	}
	p.id = prog
	return p, nil
}

func (p *Program) compile(stage gpu.ShaderStage, path string) (uint32, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		p.log.Error("could not open shader file",
			zap.String("stage", stage.String()),
			zap.String("path", path),
			zap.Error(err))
		return 0, fmt.Errorf("%w: %s: %v", ErrSource, path, err)
	}

	text, found := RewriteVersion(string(raw), p.version)
	if !found {
		p.log.Warn("shader has no #version directive, inserting one",
			zap.String("path", path),
			zap.String("version", p.version))
	}

	id, err := p.dev.CompileShader(stage, text)
	if err != nil {
		p.log.Error("shader compile failed",
			zap.String("stage", stage.String()),
			zap.String("path", path),
			zap.Error(err))
		return 0, fmt.Errorf("%w: %s: %v", ErrCompile, path, err)
	}
	return id, nil
}

func (p *Program) ID() uint32 { return p.id }
func (p *Program) Valid() bool { return p.id != 0 }

func (p *Program) Use() {
	if p.Valid() {
		p.dev.UseProgram(p.id)
	}
}

func (p *Program) StopUsing() {
	if p.Valid() {
		p.dev.UseProgram(0)
	}
}

func (p *Program) location(name string) int32 {
	if loc, ok := p.locs[name]; ok {
		return loc
	}
	loc := p.dev.UniformLocation(p.id, name)
	p.locs[name] = loc
	return loc
}

// HasUniform reports whether the linked program has an active uniform name.
func (p *Program) HasUniform(name string) bool {
	return p.Valid() && p.location(name) >= 0
}

// set binds the program, writes one uniform and unbinds again.
func (p *Program) set(name string, write func(loc int32)) {
	if !p.Valid() {
		return
	}
	p.dev.UseProgram(p.id)
	write(p.location(name))
	p.dev.UseProgram(0)
}

func (p *Program) Set1i(name string, v int32) {
	p.set(name, func(loc int32) { p.dev.Uniform1i(loc, v) })
}

func (p *Program) Set1f(name string, v float32) {
	p.set(name, func(loc int32) { p.dev.Uniform1f(loc, v) })
}

func (p *Program) SetVec2f(name string, v mgl32.Vec2) {
	p.set(name, func(loc int32) { p.dev.Uniform2f(loc, v) })
}

func (p *Program) SetVec3f(name string, v mgl32.Vec3) {
	p.set(name, func(loc int32) { p.dev.Uniform3f(loc, v) })
}

func (p *Program) SetVec4f(name string, v mgl32.Vec4) {
	p.set(name, func(loc int32) { p.dev.Uniform4f(loc, v) })
}

func (p *Program) SetMat3fv(name string, m mgl32.Mat3) {
	p.set(name, func(loc int32) { p.dev.UniformMatrix3f(loc, m, false) })
}

func (p *Program) SetMat4fv(name string, m mgl32.Mat4) {
	p.set(name, func(loc int32) { p.dev.UniformMatrix4f(loc, m, false) })
}

// Destroy deletes the GPU program. Calling it again is a no-op.
func (p *Program) Destroy() {
	if !p.Valid() {
		return
	}
	p.dev.DeleteProgram(p.id)
	p.id = 0
	p.locs = make(map[string]int32)
}

package renderer

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"mirror-engine/gpu"
	"mirror-engine/shader"
)

// Role names one of the programs the frame pipeline uses.
type Role string

const (
	Core       Role = "core"
	Skybox     Role = "skybox"
	ShadowPass Role = "shadow_pass"
	LightPass  Role = "light_pass"
	Plain      Role = "plain"
	Reflect    Role = "reflect"
)

// Roles lists every role in load order.
var Roles = []Role{Core, Skybox, ShadowPass, LightPass, Plain, Reflect}

// SourceFor returns the stage files of role under dir. The shadow-map and
// shadowed-lighting programs share the shadow/ directory.
func SourceFor(dir string, r Role) shader.Source {
	switch r {
	case ShadowPass:
		base := filepath.Join(dir, "shadow", "shadow_pass")
		return shader.Source{Vertex: base + ".vert", Geometry: base + ".geom", Fragment: base + ".frag"}
	case LightPass:
		base := filepath.Join(dir, "shadow", "light_pass")
		return shader.Source{Vertex: base + ".vert", Fragment: base + ".frag"}
	default:
		base := filepath.Join(dir, string(r), string(r))
		return shader.Source{Vertex: base + ".vert", Fragment: base + ".frag"}
	}
}

// ShaderSet owns the pipeline's programs.
type ShaderSet struct {
	programs map[Role]*shader.Program
}

// LoadShaderSet loads every role from dir. Programs that fail are kept as
// invalid programs so the pipeline still runs; the failures are joined into
// the returned error.
func LoadShaderSet(dev gpu.Device, version, dir string, log *zap.Logger) (*ShaderSet, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &ShaderSet{programs: make(map[Role]*shader.Program, len(Roles))}
	var errs []error
	for _, r := range Roles {
		p, err := shader.Load(dev, version, SourceFor(dir, r), log.With(zap.String("program", string(r))))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r, err))
		}
		s.programs[r] = p
	}
	return s, errors.Join(errs...)
}

// Get returns the program for r. It is never nil for a role in Roles.
func (s *ShaderSet) Get(r Role) *shader.Program { return s.programs[r] }

// All returns the programs in Roles order.
func (s *ShaderSet) All() []*shader.Program {
	out := make([]*shader.Program, 0, len(Roles))
	for _, r := range Roles {
		if p := s.programs[r]; p != nil {
			out = append(out, p)
		}
	}
	return out
}

// SetMat4All pushes m to every program that declares name and returns how
// many received it.
func (s *ShaderSet) SetMat4All(name string, m mgl32.Mat4) int {
	n := 0
	for _, p := range s.All() {
		if p.HasUniform(name) {
			p.SetMat4fv(name, m)
			n++
		}
	}
	return n
}

func (s *ShaderSet) Destroy() {
	for _, p := range s.programs {
		p.Destroy()
	}
}

package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"mirror-engine/core"
	"mirror-engine/gpu"
)

// cubeFaces are the look direction and up vector of each cube-map face in
// GL face order (+X, -X, +Y, -Y, +Z, -Z).
var cubeFaces = [6][2]mgl32.Vec3{
	{{1, 0, 0}, {0, -1, 0}},
	{{-1, 0, 0}, {0, -1, 0}},
	{{0, 1, 0}, {0, 0, 1}},
	{{0, -1, 0}, {0, 0, -1}},
	{{0, 0, 1}, {0, -1, 0}},
	{{0, 0, -1}, {0, -1, 0}},
}

// Light is a point light with an omnidirectional shadow map. Its position is
// a slot in the shared PositionTable.
type Light struct {
	Color core.Color
	Near  float32
	Far   float32

	positions *PositionTable
	pos       PositionHandle

	dev    gpu.Device
	shadow gpu.Target
}

// NewLight allocates the light's position slot and its depth cube target.
func NewLight(dev gpu.Device, positions *PositionTable, pos mgl32.Vec3, color core.Color, shadowSize int, near, far float32) (*Light, error) {
	target, err := dev.NewDepthCubeTarget(shadowSize)
	if err != nil {
		return nil, fmt.Errorf("light shadow target: %w", err)
	}
	return &Light{
		Color:     color,
		Near:      near,
		Far:       far,
		positions: positions,
		pos:       positions.Add(pos),
		dev:       dev,
		shadow:    target,
	}, nil
}

func (l *Light) Position() mgl32.Vec3 { return l.positions.Get(l.pos) }
func (l *Light) SetPosition(p mgl32.Vec3) { l.positions.Set(l.pos, p) }
func (l *Light) PositionHandle() PositionHandle { return l.pos }
func (l *Light) ShadowTarget() gpu.Target { return l.shadow }

// ShadowMatrices returns projection · view for each cube face as seen from
// the light.
func (l *Light) ShadowMatrices() [6]mgl32.Mat4 {
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, l.Near, l.Far)
	p := l.Position()
	var out [6]mgl32.Mat4
	for i, f := range cubeFaces {
		out[i] = proj.Mul4(mgl32.LookAtV(p, p.Add(f[0]), f[1]))
	}
	return out
}

// BeginShadowPass binds the light's cube target and clears its depth.
func (l *Light) BeginShadowPass() {
	l.dev.BindTarget(l.shadow)
	l.dev.Viewport(0, 0, l.shadow.Width, l.shadow.Height)
	l.dev.Clear(false, true)
}

// BindShadowMap makes the depth cube-map available on texture unit.
func (l *Light) BindShadowMap(unit int) {
	l.dev.BindTexture(unit, l.shadow.Texture)
}

func (l *Light) Destroy() {
	if l.shadow.FBO == 0 {
		return
	}
	l.dev.ReleaseTarget(l.shadow)
	l.shadow = gpu.Target{}
}

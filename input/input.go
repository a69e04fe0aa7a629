// Package input turns polled keyboard and mouse state into camera motion.
package input

import (
	"mirror-engine/scene"
)

// Source is the polled device state, normally a *window.Window.
type Source interface {
	IsKeyPressed(key int) bool
	IsMouseButtonPressed(button int) bool
	GetCursorPos() (float64, float64)
}

// Bindings maps camera actions to key codes of the Source. Look is a mouse
// button held to turn the camera with the cursor.
type Bindings struct {
	Forward, Backward int
	Left, Right       int
	Up, Down          int
	Look              int
}

// Processor tracks button edges and cursor deltas between frames.
type Processor struct {
	src  Source
	keys Bindings

	// MoveSpeed is in world units per second; LookSpeed in degrees per
	// pixel of cursor travel.
	MoveSpeed float32
	LookSpeed float32

	// Captured, when set, reports whether another consumer (the GUI) owns
	// the mouse this frame.
	Captured func() bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	lastMouseX, lastMouseY   float64
	firstFrame               bool

	looking, lookingPrev bool
}

func NewProcessor(src Source, keys Bindings) *Processor {
	return &Processor{
		src:        src,
		keys:       keys,
		MoveSpeed:  4,
		LookSpeed:  0.15,
		firstFrame: true,
	}
}

// Update polls the cursor and look button once per frame.
func (p *Processor) Update() {
	x, y := p.src.GetCursorPos()
	if p.firstFrame {
		p.lastMouseX, p.lastMouseY = x, y
		p.firstFrame = false
	}
	p.MouseDeltaX = x - p.lastMouseX
	p.MouseDeltaY = y - p.lastMouseY
	p.lastMouseX, p.lastMouseY = x, y
	p.MouseX, p.MouseY = x, y

	p.lookingPrev = p.looking
	p.looking = p.src.IsMouseButtonPressed(p.keys.Look)
}

// Looking reports whether the look button is held.
func (p *Processor) Looking() bool { return p.looking }

// LookStarted reports whether the look button went down this frame.
func (p *Processor) LookStarted() bool { return p.looking && !p.lookingPrev }

// Process polls input and applies it to cam: movement keys slide it by
// MoveSpeed·dt, a held look button turns it by the cursor delta. It reports
// whether the camera changed.
func (p *Processor) Process(cam *scene.ViewCamera, dt float32) bool {
	p.Update()
	changed := false

	step := p.MoveSpeed * dt
	moves := []struct {
		key int
		dir scene.Direction
	}{
		{p.keys.Forward, scene.Forward},
		{p.keys.Backward, scene.Backward},
		{p.keys.Left, scene.Left},
		{p.keys.Right, scene.Right},
		{p.keys.Up, scene.Up},
		{p.keys.Down, scene.Down},
	}
	for _, m := range moves {
		if p.src.IsKeyPressed(m.key) {
			cam.Move(m.dir, step)
			changed = true
		}
	}

	if p.Captured != nil && p.Captured() {
		return changed
	}
	// The first held frame only anchors the cursor.
	if p.looking && !p.LookStarted() && (p.MouseDeltaX != 0 || p.MouseDeltaY != 0) {
		cam.Turn(float32(p.MouseDeltaX)*p.LookSpeed, float32(-p.MouseDeltaY)*p.LookSpeed)
		changed = true
	}
	return changed
}

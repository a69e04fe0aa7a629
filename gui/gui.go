// Package gui draws the debug overlay with Dear ImGui. The overlay edits
// world, camera and light state in place; it never changes pass order.
package gui

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/inkyblackness/imgui-go/v4"

	"mirror-engine/core"
	"mirror-engine/renderer"
	"mirror-engine/scene"
)

// Renderer draws imgui's output, normally an *opengl.ImguiRenderer.
type Renderer interface {
	Render(displaySize, framebufferSize [2]float32, drawData imgui.DrawData)
	Destroy()
}

// Platform supplies window size and mouse state, normally a *window.Window.
type Platform interface {
	GetSize() (int, int)
	GetFramebufferSize() (int, int)
	GetCursorPos() (float64, float64)
	IsMouseButtonPressed(button int) bool
}

// Settings are the toggles the overlay owns.
type Settings struct {
	Shadows    bool
	ClearColor core.Color
	Visible    bool
}

type GUI struct {
	ctx      *imgui.Context
	io       imgui.IO
	platform Platform
	renderer Renderer
	Stats    FrameStats
	Settings Settings

	// MouseButtons are the platform codes for imgui's left, right and
	// middle buttons.
	MouseButtons [3]int
	scroll       float32
}

// New creates the imgui context. The font atlas is built here so frames can
// be laid out before a renderer is attached.
func New(platform Platform, settings Settings) *GUI {
	g := &GUI{
		ctx:          imgui.CreateContext(nil),
		platform:     platform,
		Settings:     settings,
		MouseButtons: [3]int{0, 1, 2},
	}
	g.io = imgui.CurrentIO()
	g.io.SetIniFilename("")
	g.io.Fonts().TextureDataRGBA32()
	return g
}

func (g *GUI) IO() imgui.IO { return g.io }

// SetRenderer attaches r; until then Render does nothing.
func (g *GUI) SetRenderer(r Renderer) { g.renderer = r }

// WantCaptureMouse reports whether the cursor is over the overlay.
func (g *GUI) WantCaptureMouse() bool {
	return g.Settings.Visible && g.io.WantCaptureMouse()
}

// AddScroll forwards mouse-wheel motion.
func (g *GUI) AddScroll(yoff float64) { g.scroll += float32(yoff) }

func (g *GUI) newFrame(dt float32) {
	w, h := g.platform.GetSize()
	g.io.SetDisplaySize(imgui.Vec2{X: float32(w), Y: float32(h)})
	if dt <= 0 {
		dt = 1.0 / 60
	}
	g.io.SetDeltaTime(dt)

	x, y := g.platform.GetCursorPos()
	g.io.SetMousePosition(imgui.Vec2{X: float32(x), Y: float32(y)})
	for i, b := range g.MouseButtons {
		g.io.SetMouseButtonDown(i, g.platform.IsMouseButtonPressed(b))
	}
	g.io.AddMouseWheelDelta(0, g.scroll)
	g.scroll = 0

	imgui.NewFrame()
}

// Draw lays out one frame of the overlay and applies its edits. It reports
// whether the camera was changed, so the caller can re-push camera uniforms.
func (g *GUI) Draw(w *renderer.World, cam *scene.ViewCamera, dt float32) bool {
	g.Stats.Add(dt)
	g.newFrame(dt)
	defer imgui.Render()

	if !g.Settings.Visible {
		return false
	}

	imgui.SetNextWindowPosV(imgui.Vec2{X: 10, Y: 10}, imgui.ConditionFirstUseEver, imgui.Vec2{})
	imgui.SetNextWindowSizeV(imgui.Vec2{X: 340, Y: 520}, imgui.ConditionFirstUseEver)
	defer imgui.End()
	if !imgui.Begin("Mirror Engine") {
		return false
	}

	imgui.Text(fmt.Sprintf("%.1f FPS  (%.2f ms)", g.Stats.FPS(), g.Stats.FrameTime()))
	imgui.Text(fmt.Sprintf("framebuffer %dx%d", w.Width(), w.Height()))
	imgui.Text(fmt.Sprintf("meshes %d, culled %d", len(w.Meshes()), w.Culled()))
	imgui.Separator()

	camChanged := g.cameraPanel(cam)
	g.renderPanel(w)
	g.lightPanel(w)
	g.meshPanel(w)
	return camChanged
}

func (g *GUI) cameraPanel(cam *scene.ViewCamera) bool {
	if !imgui.CollapsingHeader("Camera") {
		return false
	}
	changed := false
	pos := [3]float32(cam.Position)
	if imgui.DragFloat3("Position", &pos) {
		cam.Position = mgl32.Vec3(pos)
		changed = true
	}
	yaw, pitch := cam.Yaw, cam.Pitch
	yawChanged := imgui.DragFloat("Yaw", &yaw)
	pitchChanged := imgui.DragFloat("Pitch", &pitch)
	if yawChanged || pitchChanged {
		cam.Turn(yaw-cam.Yaw, pitch-cam.Pitch)
		changed = true
	}
	return changed
}

func (g *GUI) renderPanel(w *renderer.World) {
	if !imgui.CollapsingHeader("Rendering") {
		return
	}
	imgui.Checkbox("Shadows", &g.Settings.Shadows)
	imgui.Checkbox("Frustum culling", &w.Culling)
	fov := w.FOV()
	if imgui.SliderFloat("FOV", &fov, 10, 120) {
		w.SetFOV(fov)
	}

	c := [3]float32{g.Settings.ClearColor.R, g.Settings.ClearColor.G, g.Settings.ClearColor.B}
	if imgui.ColorEdit3("Clear colour", &c) {
		g.Settings.ClearColor = core.Color{R: c[0], G: c[1], B: c[2], A: 1}
	}
	if floor := w.Floor(); floor != nil {
		imgui.SliderFloat("Reflectivity", &floor.Reflectivity, 0, 1)
	}
}

func (g *GUI) lightPanel(w *renderer.World) {
	if !imgui.CollapsingHeader("Lights") {
		return
	}
	for i, l := range w.Lights() {
		if !imgui.TreeNode(fmt.Sprintf("Light %d", i)) {
			continue
		}
		pos := [3]float32(l.Position())
		if imgui.DragFloat3(fmt.Sprintf("Position##light%d", i), &pos) {
			l.SetPosition(mgl32.Vec3(pos))
		}
		col := [3]float32(l.Color.Vec3())
		if imgui.ColorEdit3(fmt.Sprintf("Colour##light%d", i), &col) {
			l.Color = core.Color{R: col[0], G: col[1], B: col[2], A: 1}
		}
		imgui.TreePop()
	}
}

func (g *GUI) meshPanel(w *renderer.World) {
	if !imgui.CollapsingHeader("Meshes") {
		return
	}
	for i, m := range w.Meshes() {
		if !imgui.TreeNode(fmt.Sprintf("%s##mesh%d", m.Name, i)) {
			continue
		}
		pos := [3]float32(m.Position())
		if imgui.DragFloat3(fmt.Sprintf("Position##mesh%d", i), &pos) {
			m.SetPosition(mgl32.Vec3(pos))
		}
		spin := [3]float32(m.Spin)
		if imgui.DragFloat3(fmt.Sprintf("Spin##mesh%d", i), &spin) {
			m.Spin = mgl32.Vec3(spin)
		}
		drift := [3]float32(m.Drift)
		if imgui.DragFloat3(fmt.Sprintf("Drift##mesh%d", i), &drift) {
			m.Drift = mgl32.Vec3(drift)
		}
		imgui.TreePop()
	}
}

// Render draws the frame laid out by the last Draw. Call it after the scene
// passes so the overlay lands on top.
func (g *GUI) Render() {
	if g.renderer == nil {
		return
	}
	dw, dh := g.platform.GetSize()
	fw, fh := g.platform.GetFramebufferSize()
	g.renderer.Render(
		[2]float32{float32(dw), float32(dh)},
		[2]float32{float32(fw), float32(fh)},
		imgui.RenderedDrawData())
}

func (g *GUI) Destroy() {
	if g.renderer != nil {
		g.renderer.Destroy()
	}
	g.ctx.Destroy()
}

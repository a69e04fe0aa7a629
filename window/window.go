// Package window opens the GLFW window and its OpenGL 4.1 core context.
package window

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// GL contexts are bound to the thread that created them.
func init() {
	runtime.LockOSThread()
}

type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string

	lastFrame float64
	onResize  func(width, height int)
	onScroll  func(xoff, yoff float64)
}

type Config struct {
	Width     int
	Height    int
	Title     string
	Resizable bool
	VSync     bool
	Samples   int

	// GLMajor.GLMinor is the core-profile context version requested. It must
	// match the #version the shaders are rewritten to.
	GLMajor int
	GLMinor int
}

func DefaultConfig() Config {
	return Config{
		Width:     1280,
		Height:    720,
		Title:     "Mirror Engine",
		Resizable: true,
		VSync:     true,
		Samples:   4,
		GLMajor:   4,
		GLMinor:   1,
	}
}

// New creates the window and makes its context current. The context is a
// forward-compatible core profile; 4.1 is the newest macOS offers.
func New(config Config) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	if config.GLMajor == 0 {
		config.GLMajor, config.GLMinor = 4, 1
	}
	glfw.WindowHint(glfw.ContextVersionMajor, config.GLMajor)
	glfw.WindowHint(glfw.ContextVersionMinor, config.GLMinor)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))
	if config.Samples > 0 {
		glfw.WindowHint(glfw.Samples, config.Samples)
	}

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	w := &Window{
		Handle:    handle,
		Title:     config.Title,
		lastFrame: glfw.GetTime(),
	}
	// Rendering works in framebuffer pixels, which differ from window
	// coordinates on high-DPI displays.
	w.Width, w.Height = handle.GetFramebufferSize()

	handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		if width == 0 || height == 0 {
			return // minimised
		}
		w.Width, w.Height = width, height
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})
	handle.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		if w.onScroll != nil {
			w.onScroll(xoff, yoff)
		}
	})

	return w, nil
}

// OnResize registers fn to run whenever the framebuffer changes size.
func (w *Window) OnResize(fn func(width, height int)) { w.onResize = fn }

// SetScrollCallback registers fn for mouse-wheel events.
func (w *Window) SetScrollCallback(fn func(xoff, yoff float64)) { w.onScroll = fn }

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

func (w *Window) Close() {
	w.Handle.SetShouldClose(true)
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) SwapBuffers() {
	w.Handle.SwapBuffers()
}

// DeltaTime returns the seconds elapsed since the previous call.
func (w *Window) DeltaTime() float32 {
	now := glfw.GetTime()
	dt := now - w.lastFrame
	w.lastFrame = now
	return float32(dt)
}

func (w *Window) GetFramebufferSize() (int, int) {
	return w.Handle.GetFramebufferSize()
}

func (w *Window) GetSize() (int, int) {
	return w.Handle.GetSize()
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

func (w *Window) IsKeyPressed(key int) bool {
	return w.Handle.GetKey(glfw.Key(key)) == glfw.Press
}

func (w *Window) SetTitle(title string) {
	w.Handle.SetTitle(title)
	w.Title = title
}

func (w *Window) IsMouseButtonPressed(button int) bool {
	return w.Handle.GetMouseButton(glfw.MouseButton(button)) == glfw.Press
}

func (w *Window) GetCursorPos() (float64, float64) {
	return w.Handle.GetCursorPos()
}

func boolToInt(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

// Command demo renders a small scene over a mirror floor: point lights with
// cube-map shadows, a planar reflection, a skybox and a debug overlay.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"mirror-engine/app"
	"mirror-engine/config"
	"mirror-engine/gui"
	"mirror-engine/input"
	"mirror-engine/internal/opengl"
	"mirror-engine/logger"
	"mirror-engine/window"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.ParseFlags(args)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	wc := window.DefaultConfig()
	wc.Width, wc.Height = cfg.Window.Width, cfg.Window.Height
	wc.Title = cfg.Window.Title
	wc.VSync = cfg.Window.VSync
	wc.Samples = cfg.Window.Samples
	wc.GLMajor, wc.GLMinor = cfg.Renderer.GLMajor, cfg.Renderer.GLMinor
	win, err := window.New(wc)
	if err != nil {
		return err
	}
	defer win.Destroy()

	dev, err := opengl.NewDevice(log)
	if err != nil {
		return err
	}

	// The scene is sized to the framebuffer, not the requested window size.
	cfg.Window.Width, cfg.Window.Height = win.Width, win.Height
	a, err := app.New(dev, cfg, log)
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}
	defer a.Destroy()

	overlay := gui.New(win, *a.Settings)
	overlay.MouseButtons = [3]int{window.MouseLeft, window.MouseRight, window.MouseMiddle}
	a.Settings = &overlay.Settings
	defer overlay.Destroy()
	imguiRenderer, err := opengl.NewImguiRenderer(dev, overlay.IO())
	if err != nil {
		log.Error("overlay disabled", zap.Error(err))
		overlay.Settings.Visible = false
	} else {
		overlay.SetRenderer(imguiRenderer)
	}
	a.Overlay = overlay

	proc := input.NewProcessor(win, input.Bindings{
		Forward:  window.KeyW,
		Backward: window.KeyS,
		Left:     window.KeyA,
		Right:    window.KeyD,
		Up:       window.KeySpace,
		Down:     window.KeyLeftShift,
		Look:     window.MouseRight,
	})
	proc.MoveSpeed = cfg.Camera.MoveSpeed
	proc.LookSpeed = cfg.Camera.LookSpeed
	proc.Captured = overlay.WantCaptureMouse
	a.Input = proc

	win.OnResize(a.Resize)
	win.SetScrollCallback(func(_, yoff float64) { overlay.AddScroll(yoff) })

	log.Info("scene ready",
		zap.Int("meshes", len(a.World.Meshes())),
		zap.Int("lights", len(a.World.Lights())),
		zap.Bool("floor", a.World.Floor() != nil),
		zap.Bool("skybox", a.World.Skybox() != nil))

	toggleDown := false
	var sinceTitle float32
	win.DeltaTime()
	for !win.ShouldClose() {
		win.PollEvents()
		if win.IsKeyPressed(window.KeyEscape) {
			win.Close()
		}
		// F1 shows and hides the overlay.
		f1 := win.IsKeyPressed(window.KeyF1)
		if f1 && !toggleDown {
			overlay.Settings.Visible = !overlay.Settings.Visible
		}
		toggleDown = f1

		dt := win.DeltaTime()
		a.Frame(dt)
		win.SwapBuffers()

		// the title keeps a frame rate readout while the overlay is hidden
		if sinceTitle += dt; sinceTitle >= 1 {
			win.SetTitle(fmt.Sprintf("%s  %.0f FPS", cfg.Window.Title, overlay.Stats.FPS()))
			sinceTitle = 0
		}
	}
	return nil
}

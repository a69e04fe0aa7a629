// Package config loads the demo settings from config.toml and the command
// line. Flags override the file, which overrides the defaults.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
)

// MaxLights is the size of the light arrays in the lighting shaders.
const MaxLights = 4

type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
	Camera   CameraConfig   `toml:"camera"`
	Scene    SceneConfig    `toml:"scene"`
	Log      LogConfig      `toml:"log"`
}

type WindowConfig struct {
	Width   int    `toml:"width"`
	Height  int    `toml:"height"`
	Title   string `toml:"title"`
	VSync   bool   `toml:"vsync"`
	Samples int    `toml:"samples"`
}

type RendererConfig struct {
	GLMajor    int        `toml:"gl_major"`
	GLMinor    int        `toml:"gl_minor"`
	ShaderDir  string     `toml:"shader_dir"`
	FOV        float32    `toml:"fov"`
	Near       float32    `toml:"near"`
	Far        float32    `toml:"far"`
	ShadowSize int        `toml:"shadow_size"`
	ShadowFar  float32    `toml:"shadow_far"`
	Shadows    bool       `toml:"shadows"`
	Culling    bool       `toml:"culling"`
	ClearColor [4]float32 `toml:"clear_color"`
}

type CameraConfig struct {
	Position  [3]float32 `toml:"position"`
	Front     [3]float32 `toml:"front"`
	MoveSpeed float32    `toml:"move_speed"`
	LookSpeed float32    `toml:"look_speed"`
}

type LightConfig struct {
	Position [3]float32 `toml:"position"`
	Color    [3]float32 `toml:"color"`
}

// MeshConfig places one mesh. Either Path names a model file or Primitive
// names a generated shape: "cube", "sphere" or "torus".
type MeshConfig struct {
	Path      string     `toml:"path"`
	Primitive string     `toml:"primitive"`
	Position  [3]float32 `toml:"position"`
	Scale     float32    `toml:"scale"`
	Color     [3]float32 `toml:"color"`
	Spin      [3]float32 `toml:"spin"`
	Drift     [3]float32 `toml:"drift"`
	// Light, when set, attaches the mesh to that light's position.
	Light *int `toml:"light"`
}

type SceneConfig struct {
	SkyboxDir     string        `toml:"skybox_dir"`
	SkyboxExt     string        `toml:"skybox_ext"`
	FloorDiv      int           `toml:"floor_div"`
	FloorWidth    float32       `toml:"floor_width"`
	FloorPosition [3]float32    `toml:"floor_position"`
	Reflectivity  float32       `toml:"reflectivity"`
	Lights        []LightConfig `toml:"lights"`
	Meshes        []MeshConfig  `toml:"meshes"`
}

type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Default returns the settings the demo runs with when no file is given.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Width:   1280,
			Height:  720,
			Title:   "Mirror Engine",
			VSync:   true,
			Samples: 4,
		},
		Renderer: RendererConfig{
			GLMajor:    4,
			GLMinor:    1,
			ShaderDir:  "assets/shaders",
			FOV:        45,
			Near:       0.1,
			Far:        100,
			ShadowSize: 1024,
			ShadowFar:  25,
			Shadows:    true,
			Culling:    true,
			ClearColor: [4]float32{0.45, 0.55, 0.60, 1},
		},
		Camera: CameraConfig{
			Position:  [3]float32{0, 2, 6},
			Front:     [3]float32{0, -0.3, -1},
			MoveSpeed: 4,
			LookSpeed: 0.15,
		},
		Scene: SceneConfig{
			SkyboxDir:     "assets/skybox",
			SkyboxExt:     ".jpg",
			FloorDiv:      10,
			FloorWidth:    20,
			FloorPosition: [3]float32{0, -1, 0},
			Reflectivity:  0.6,
			Lights: []LightConfig{
				{Position: [3]float32{2, 4, 2}, Color: [3]float32{1, 1, 1}},
			},
			Meshes: []MeshConfig{
				{Path: "assets/models/cube.obj", Position: [3]float32{-1.5, 0, 0}, Scale: 1, Spin: [3]float32{0, 30, 0}},
				{Path: "assets/models/pyramid.gltf", Position: [3]float32{1.5, -1, 0}, Scale: 1, Spin: [3]float32{0, -20, 0}},
				{Primitive: "torus", Position: [3]float32{0, 0.5, -2}, Scale: 1, Color: [3]float32{0.2, 0.5, 0.9}, Spin: [3]float32{45, 0, 15}},
				{Primitive: "sphere", Scale: 0.15, Color: [3]float32{1, 1, 0.8}, Light: intPtr(0)},
			},
		},
		Log: LogConfig{Level: "info"},
	}
}

func intPtr(v int) *int { return &v }

// Load reads path over the defaults. Keys missing from the file keep their
// default values; a file that lists no lights or meshes keeps the default
// scene contents.
func Load(path string) (Config, error) {
	def := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return def, fmt.Errorf("read config: %w", err)
	}

	cfg := def
	cfg.Scene.Lights, cfg.Scene.Meshes = nil, nil
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return def, fmt.Errorf("parse config %q: %w", path, err)
	}
	if cfg.Scene.Lights == nil {
		cfg.Scene.Lights = def.Scene.Lights
	}
	if cfg.Scene.Meshes == nil {
		cfg.Scene.Meshes = def.Scene.Meshes
	}
	return cfg, nil
}

// ParseFlags parses args (without the program name). When --config is given
// the file is loaded first; explicitly set flags then override it.
func ParseFlags(args []string) (Config, error) {
	fs := pflag.NewFlagSet("mirror-engine", pflag.ContinueOnError)
	path := fs.StringP("config", "c", "", "path to a TOML config file")
	width := fs.Int("width", 0, "window width in pixels")
	height := fs.Int("height", 0, "window height in pixels")
	level := fs.String("log-level", "", "log level (debug, info, warn, error)")
	noVSync := fs.Bool("no-vsync", false, "disable vertical sync")
	noShadows := fs.Bool("no-shadows", false, "start with shadow mapping off")
	shaders := fs.String("shaders", "", "shader source directory")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if *path != "" {
		var err error
		if cfg, err = Load(*path); err != nil {
			return cfg, err
		}
	}
	if fs.Changed("width") {
		cfg.Window.Width = *width
	}
	if fs.Changed("height") {
		cfg.Window.Height = *height
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = *level
	}
	if *noVSync {
		cfg.Window.VSync = false
	}
	if *noShadows {
		cfg.Renderer.Shadows = false
	}
	if fs.Changed("shaders") {
		cfg.Renderer.ShaderDir = *shaders
	}
	return cfg, cfg.Validate()
}

var (
	ErrWindowSize = errors.New("window size must be positive")
	ErrGLVersion  = errors.New("OpenGL version must be between 3.3 and 4.1")
	ErrLights     = fmt.Errorf("at most %d lights are supported", MaxLights)
)

// Validate reports every problem with c, joined.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: %dx%d", ErrWindowSize, c.Window.Width, c.Window.Height))
	}
	// 4.1 is the ceiling of the GL bindings in use and of macOS core contexts.
	major, minor := c.Renderer.GLMajor, c.Renderer.GLMinor
	if minor < 0 || minor > 9 || major*10+minor < 33 || major*10+minor > 41 {
		errs = append(errs, fmt.Errorf("%w: %d.%d", ErrGLVersion, c.Renderer.GLMajor, c.Renderer.GLMinor))
	}
	if len(c.Scene.Lights) > MaxLights {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrLights, len(c.Scene.Lights)))
	}
	if c.Renderer.Near <= 0 || c.Renderer.Far <= c.Renderer.Near {
		errs = append(errs, fmt.Errorf("invalid clip planes near=%g far=%g", c.Renderer.Near, c.Renderer.Far))
	}
	for i, m := range c.Scene.Meshes {
		if (m.Path == "") == (m.Primitive == "") {
			errs = append(errs, fmt.Errorf("mesh %d: exactly one of path and primitive must be set", i))
		}
		if m.Light != nil && (*m.Light < 0 || *m.Light >= len(c.Scene.Lights)) {
			errs = append(errs, fmt.Errorf("mesh %d: light %d does not exist", i, *m.Light))
		}
	}
	return errors.Join(errs...)
}

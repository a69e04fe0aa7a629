package window

import "github.com/go-gl/glfw/v3.3/glfw"

// Key codes, re-exported so callers need not import glfw.
const (
	KeySpace     = int(glfw.KeySpace)
	KeyA         = int(glfw.KeyA)
	KeyD         = int(glfw.KeyD)
	KeyS         = int(glfw.KeyS)
	KeyW         = int(glfw.KeyW)
	KeyEscape    = int(glfw.KeyEscape)
	KeyLeftShift = int(glfw.KeyLeftShift)
	KeyF1        = int(glfw.KeyF1)
)

const (
	MouseLeft   = int(glfw.MouseButtonLeft)
	MouseRight  = int(glfw.MouseButtonRight)
	MouseMiddle = int(glfw.MouseButtonMiddle)
)

package window

import "github.com/go-gl/glfw/v3.3/glfw"

// Key identifies a keyboard key. Values match GLFW key codes.
type Key int

// Keys used by the viewer's orbit and profile controls.
const (
	KeyW          = Key(glfw.KeyW)
	KeyA          = Key(glfw.KeyA)
	KeyS          = Key(glfw.KeyS)
	KeyD          = Key(glfw.KeyD)
	KeyQ          = Key(glfw.KeyQ)
	KeyE          = Key(glfw.KeyE)
	KeyR          = Key(glfw.KeyR)
	KeyI          = Key(glfw.KeyI)
	KeyLeft       = Key(glfw.KeyLeft)
	KeyRight      = Key(glfw.KeyRight)
	KeyUp         = Key(glfw.KeyUp)
	KeyDown       = Key(glfw.KeyDown)
	KeyEqual      = Key(glfw.KeyEqual)
	KeyMinus      = Key(glfw.KeyMinus)
	KeySpace      = Key(glfw.KeySpace)
	KeyEscape     = Key(glfw.KeyEscape)
	KeyKPAdd      = Key(glfw.KeyKPAdd)
	KeyKPSubtract = Key(glfw.KeyKPSubtract)
)

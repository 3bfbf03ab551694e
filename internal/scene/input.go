package scene

import (
	uv "github.com/charmbracelet/ultraviolet"
)

// Orbit steps for keys, drags, and the wheel.
const (
	keyTurn   = 0.25
	keyTilt   = 0.1
	dragTurn  = 0.05
	dragTilt  = 0.03
	wheelZoom = 1.0
	keyZoom   = 0.5
)

type dragState struct {
	active bool
	x, y   int
}

// HandleEvent applies one terminal event to the scene and reports whether
// the user asked to quit.
func (s *Scene) HandleEvent(ev uv.Event) (quit bool) {
	switch ev := ev.(type) {
	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("q", "escape", "ctrl+c"):
			return true
		case ev.MatchString("space", "enter"):
			s.Roll()
		case ev.MatchString("left", "a"):
			s.orbit.Rotate(-keyTurn, 0)
		case ev.MatchString("right", "d"):
			s.orbit.Rotate(keyTurn, 0)
		case ev.MatchString("up", "w"):
			s.orbit.Rotate(0, -keyTilt)
		case ev.MatchString("down", "s"):
			s.orbit.Rotate(0, keyTilt)
		case ev.MatchString("="):
			s.orbit.Zoom(-keyZoom)
		case ev.MatchString("-"):
			s.orbit.Zoom(keyZoom)
		}

	case uv.MouseClickEvent:
		if ev.Button != uv.MouseLeft {
			break
		}
		if s.hud.hitButton(ev.X, ev.Y) {
			s.Roll()
			break
		}
		s.drag = dragState{active: true, x: ev.X, y: ev.Y}

	case uv.MouseMotionEvent:
		if !s.drag.active {
			break
		}
		dx, dy := ev.X-s.drag.x, ev.Y-s.drag.y
		s.orbit.Rotate(float64(dx)*dragTurn, float64(-dy)*dragTilt)
		s.drag.x, s.drag.y = ev.X, ev.Y

	case uv.MouseReleaseEvent:
		s.drag.active = false

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			s.orbit.Zoom(-wheelZoom)
		case uv.MouseWheelDown:
			s.orbit.Zoom(wheelZoom)
		}
	}
	return false
}

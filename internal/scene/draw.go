package scene

import (
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/tumble/pkg/math3d"
	"github.com/taigrr/tumble/pkg/render"
)

// Draw renders the table, the die, and the HUD into area. The top row holds
// the roll button and the result, the bottom row a hint, and the rows in
// between the 3D view.
func (s *Scene) Draw(scr uv.Screen, area uv.Rectangle) {
	view := viewport(area)
	w := view.Max.X - view.Min.X
	h := (view.Max.Y - view.Min.Y) * 2
	if w > 0 && h > 0 {
		s.resize(w, h)
		s.render()
		s.fb.Draw(scr, view)
	}
	s.drawHUD(scr, area)
}

// Snapshot renders a width by height frame and writes it as a PNG.
func (s *Scene) Snapshot(path string, width, height int) error {
	s.resize(width, height)
	s.render()
	return s.fb.SavePNG(path)
}

// Stats returns what the last frame drew.
func (s *Scene) Stats() render.Stats { return s.rast.Stats }

func viewport(area uv.Rectangle) uv.Rectangle {
	if area.Max.Y-area.Min.Y < 3 {
		return area
	}
	view := area
	view.Min.Y++
	view.Max.Y--
	return view
}

func (s *Scene) resize(w, h int) {
	if s.fb.Resize(w, h) {
		s.rast.Resize()
	}
	s.camera.SetAspectRatio(float64(w) / float64(h))
}

func (s *Scene) render() {
	s.fb.Clear(render.ColorFelt)
	s.rast.BeginFrame()
	s.orbit.Apply(s.camera)
	s.rast.DrawMesh(s.floor, math3d.Identity(), s.floorTex, s.lightDir)
	if s.body.Alive() {
		s.rast.DrawMesh(s.mesh, s.body.Transform(), s.dieTex, s.lightDir)
	}
}

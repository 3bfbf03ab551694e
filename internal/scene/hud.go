package scene

import (
	"fmt"

	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
)

const (
	rollLabel    = "Roll"
	rollingLabel = "Rolling..."
	hintText     = "Press SPACE to roll"
)

var (
	buttonStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#B3262E")).
			Padding(0, 2)
	busyStyle = buttonStyle.
			Background(lipgloss.Color("#4A4A4A")).
			Foreground(lipgloss.Color("#BBBBBB"))
	resultStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F5D76E"))
	hintStyle = lipgloss.NewStyle().
			Faint(true).
			Foreground(lipgloss.Color("#9A9A9A"))
)

// hud remembers where the button was last drawn so clicks can be tested
// against it.
type hud struct {
	button uv.Rectangle
}

func (h *hud) hitButton(x, y int) bool {
	b := h.button
	return x >= b.Min.X && x < b.Max.X && y >= b.Min.Y && y < b.Max.Y
}

func (s *Scene) drawHUD(scr uv.Screen, area uv.Rectangle) {
	width := area.Max.X - area.Min.X
	if width <= 0 || area.Max.Y <= area.Min.Y {
		return
	}
	top := area.Min.Y

	button := buttonStyle.Render(rollLabel)
	if s.Rolling() {
		button = busyStyle.Render(rollingLabel)
	}
	bw := min(lipgloss.Width(button), width)
	s.hud.button = uv.Rect(area.Min.X+1, top, bw, 1)
	uv.NewStyledString(button).Draw(scr, s.hud.button)

	// the badge is hidden while the die is in the air
	if res, ok := s.Result(); ok && !s.Rolling() {
		badge := resultStyle.Render(fmt.Sprintf("You rolled %d", int(res.Face)))
		rw := lipgloss.Width(badge)
		if x := area.Max.X - rw - 1; x > area.Min.X+1+bw {
			uv.NewStyledString(badge).Draw(scr, uv.Rect(x, top, rw, 1))
		}
	}

	if area.Max.Y-area.Min.Y < 3 {
		return
	}
	hint := hintStyle.Render(hintText)
	hw := min(lipgloss.Width(hint), width)
	x := area.Min.X + (width-hw)/2
	uv.NewStyledString(hint).Draw(scr, uv.Rect(x, area.Max.Y-1, hw, 1))
}

package scene

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/tumble/pkg/dice"
	"github.com/taigrr/tumble/pkg/math3d"
	"github.com/taigrr/tumble/pkg/physics"
	"github.com/taigrr/tumble/pkg/render"
)

func newTestScene(t *testing.T, seed uint64) *Scene {
	t.Helper()
	s, err := New(Options{Seed: seed})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func rowText(scr uv.ScreenBuffer, y, width int) string {
	var sb strings.Builder
	for x := range width {
		if c := scr.CellAt(x, y); c != nil {
			sb.WriteString(c.Content)
		}
	}
	return sb.String()
}

func TestNewRejectsBadOptions(t *testing.T) {
	cfg := physics.DefaultConfig()
	cfg.Restitution = 2
	if _, err := New(Options{World: cfg}); err == nil {
		t.Fatal("expected error for restitution 2")
	}

	throw := dice.DefaultThrowConfig()
	throw.DropHeight = -1
	_, err := New(Options{Throw: throw})
	if !errors.Is(err, dice.ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestNewStartsIdleOnTable(t *testing.T) {
	s := newTestScene(t, 1)
	if s.Rolling() {
		t.Error("new scene is rolling")
	}
	if _, ok := s.Result(); ok {
		t.Error("new scene has a result")
	}
	if y := s.Die().Position().Y; y != 0.5 {
		t.Errorf("die at y=%v, want 0.5", y)
	}
}

func TestDrawLayout(t *testing.T) {
	const w, h = 60, 16
	s := newTestScene(t, 1)
	scr := uv.NewScreenBuffer(w, h)
	s.Draw(scr, uv.Rect(0, 0, w, h))

	if top := rowText(scr, 0, w); !strings.Contains(top, rollLabel) {
		t.Errorf("top row %q has no button", top)
	}
	if bottom := rowText(scr, h-1, w); !strings.Contains(bottom, hintText) {
		t.Errorf("bottom row %q has no hint", bottom)
	}
	for y := 1; y < h-1; y++ {
		if c := scr.CellAt(w/2, y); c == nil || c.Content != "▀" {
			t.Fatalf("cell (%d, %d) is not a half block", w/2, y)
		}
	}
	if st := s.Stats(); st.MeshesDrawn != 2 {
		t.Errorf("meshes drawn = %d, want 2", st.MeshesDrawn)
	}
}

func TestDrawTinyArea(t *testing.T) {
	s := newTestScene(t, 1)
	scr := uv.NewScreenBuffer(4, 1)
	s.Draw(scr, uv.Rect(0, 0, 4, 1))
	s.Draw(scr, uv.Rect(0, 0, 0, 0))
}

func TestClickButtonRolls(t *testing.T) {
	const w, h = 60, 16
	s := newTestScene(t, 2)
	scr := uv.NewScreenBuffer(w, h)
	s.Draw(scr, uv.Rect(0, 0, w, h))

	b := s.hud.button
	s.HandleEvent(uv.MouseClickEvent{X: b.Min.X, Y: b.Min.Y, Button: uv.MouseLeft})
	if !s.Rolling() {
		t.Fatal("click on the button did not roll")
	}

	s.Draw(scr, uv.Rect(0, 0, w, h))
	if top := rowText(scr, 0, w); !strings.Contains(top, rollingLabel) {
		t.Errorf("top row %q does not show the roll in flight", top)
	}
}

func TestClickOutsideButtonDoesNotRoll(t *testing.T) {
	s := newTestScene(t, 2)
	scr := uv.NewScreenBuffer(60, 16)
	s.Draw(scr, uv.Rect(0, 0, 60, 16))

	s.HandleEvent(uv.MouseClickEvent{X: 30, Y: 8, Button: uv.MouseLeft})
	if s.Rolling() {
		t.Error("click in the view rolled")
	}
	if !s.drag.active {
		t.Error("click in the view did not start a drag")
	}
	s.HandleEvent(uv.MouseReleaseEvent{X: 30, Y: 8, Button: uv.MouseLeft})
	if s.drag.active {
		t.Error("release did not end the drag")
	}
}

func TestSpaceRollsOnce(t *testing.T) {
	s := newTestScene(t, 3)
	space := uv.KeyPressEvent{Code: uv.KeySpace, Text: " "}

	if s.HandleEvent(space) {
		t.Fatal("space quit")
	}
	if !s.Rolling() {
		t.Fatal("space did not roll")
	}
	s.Update(50 * time.Millisecond)
	s.HandleEvent(space)
	if got := s.Rolls(); got != 1 {
		t.Errorf("rolls = %d, want 1", got)
	}
}

func TestQuitKeys(t *testing.T) {
	tests := []struct {
		name string
		ev   uv.KeyPressEvent
		want bool
	}{
		{"q", uv.KeyPressEvent{Code: 'q', Text: "q"}, true},
		{"escape", uv.KeyPressEvent{Code: uv.KeyEscape}, true},
		{"ctrl+c", uv.KeyPressEvent{Code: 'c', Mod: uv.ModCtrl}, true},
		{"x", uv.KeyPressEvent{Code: 'x', Text: "x"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScene(t, 1)
			if got := s.HandleEvent(tt.ev); got != tt.want {
				t.Errorf("HandleEvent(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestRollToRest(t *testing.T) {
	var reported []dice.Result
	s, err := New(Options{Seed: 4, OnResult: func(r dice.Result) { reported = append(reported, r) }})
	if err != nil {
		t.Fatal(err)
	}

	res, err := s.RollToRest(time.Second/60, 30*time.Second)
	if err != nil {
		t.Fatalf("RollToRest: %v", err)
	}
	if !res.Face.Valid() {
		t.Fatalf("face %v", res.Face)
	}
	if len(reported) != 1 || reported[0].Face != res.Face {
		t.Errorf("handler saw %v, want one result with face %v", reported, res.Face)
	}
	if top := dice.TopFace(s.Die().Orientation()); top != res.Face {
		t.Errorf("top face %v, result %v", top, res.Face)
	}

	const w, h = 60, 16
	scr := uv.NewScreenBuffer(w, h)
	s.Draw(scr, uv.Rect(0, 0, w, h))
	if top := rowText(scr, 0, w); !strings.Contains(top, "You rolled") {
		t.Errorf("top row %q has no result", top)
	}
}

func TestRollToRestTimesOut(t *testing.T) {
	s := newTestScene(t, 5)
	_, err := s.RollToRest(time.Second/60, 100*time.Millisecond)
	if !errors.Is(err, ErrNotSettled) {
		t.Fatalf("err = %v, want ErrNotSettled", err)
	}
}

func TestCloseRemovesDie(t *testing.T) {
	s := newTestScene(t, 6)
	s.Roll()
	s.Close()
	if s.Die().Alive() {
		t.Error("die still in the world")
	}
	if s.Rolling() {
		t.Error("still rolling after Close")
	}
	if s.Roll() {
		t.Error("roll accepted after Close")
	}
	// drawing a closed scene shows the table only
	s.Draw(uv.NewScreenBuffer(20, 8), uv.Rect(0, 0, 20, 8))
	if st := s.Stats(); st.MeshesDrawn != 1 {
		t.Errorf("meshes drawn = %d, want 1", st.MeshesDrawn)
	}
}

func TestSnapshot(t *testing.T) {
	s := newTestScene(t, 7)
	path := filepath.Join(t.TempDir(), "frame.png")
	if err := s.Snapshot(path, 64, 48); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	tex, err := render.LoadTexture(path)
	if err != nil {
		t.Fatalf("LoadTexture: %v", err)
	}
	if tex.Width != 64 || tex.Height != 48 {
		t.Errorf("size %dx%d, want 64x48", tex.Width, tex.Height)
	}
}

func TestCameraFollowsDie(t *testing.T) {
	s := newTestScene(t, 8)
	s.Die().SetPosition(math3d.V3(4, 0.5, -3))
	for range 600 {
		s.orbit.Follow(s.Die().Position())
		s.orbit.Update()
	}
	f := s.orbit.Focus()
	if d := f.Sub(math3d.V3(4, 0.25, -3)).Len(); d > 0.01 {
		t.Errorf("focus %v is %v from the die", f, d)
	}
}

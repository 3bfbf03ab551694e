package dice

import (
	"errors"
	"math"
	"testing"

	"github.com/taigrr/tumble/pkg/math3d"
)

func TestThrowRanges(t *testing.T) {
	cfg := DefaultThrowConfig()
	th := NewThrower(cfg, 42)
	h, tq := cfg.HorizontalForce/2, cfg.TorqueRange/2

	for i := range 1000 {
		got := th.Next()
		if got.Position != math3d.V3(0, cfg.DropHeight, 0) {
			t.Fatalf("throw %d: position %v", i, got.Position)
		}
		lv := got.LinearVelocity
		if lv.X < -h || lv.X >= h || lv.Z < -h || lv.Z >= h {
			t.Fatalf("throw %d: horizontal velocity %v outside [-%v, %v)", i, lv, h, h)
		}
		if lv.Y != cfg.VerticalForce {
			t.Fatalf("throw %d: vertical velocity %v, want %v", i, lv.Y, cfg.VerticalForce)
		}
		av := got.AngularVelocity
		for _, c := range []float64{av.X, av.Y, av.Z} {
			if c < -tq || c >= tq {
				t.Fatalf("throw %d: angular velocity %v outside [-%v, %v)", i, av, tq, tq)
			}
		}
		if l := got.Orientation.Len(); math.Abs(l-1) > 1e-9 {
			t.Fatalf("throw %d: orientation not unit (%v)", i, l)
		}
	}
}

func TestThrowerSeeded(t *testing.T) {
	a := NewThrower(DefaultThrowConfig(), 9)
	b := NewThrower(DefaultThrowConfig(), 9)
	c := NewThrower(DefaultThrowConfig(), 10)
	for range 10 {
		ta, tb := a.Next(), b.Next()
		if ta != tb {
			t.Fatalf("same seed diverged: %v vs %v", ta, tb)
		}
	}
	if a.Next() == c.Next() {
		t.Error("different seeds gave the same throw")
	}
}

func TestThrowerFreshEachTime(t *testing.T) {
	th := NewThrower(DefaultThrowConfig(), 1)
	if th.Next() == th.Next() {
		t.Error("consecutive throws are identical")
	}
}

func TestThrowerApply(t *testing.T) {
	th := NewThrower(DefaultThrowConfig(), 3)
	b := newFakeBody()
	b.pos = math3d.V3(4, 0.5, -2)
	b.linvel = math3d.V3(100, 100, 100)

	got, ok := th.Apply(b)
	if !ok {
		t.Fatal("Apply on a live body reported false")
	}
	if b.pos != got.Position || b.rot != got.Orientation || b.linvel != got.LinearVelocity || b.angvel != got.AngularVelocity {
		t.Errorf("body state %+v does not match throw %+v", b, got)
	}
	if b.woken != 1 {
		t.Errorf("woken %d times, want 1", b.woken)
	}
}

func TestThrowerApplyUnavailable(t *testing.T) {
	th := NewThrower(DefaultThrowConfig(), 3)
	if _, ok := th.Apply(nil); ok {
		t.Error("Apply(nil) reported true")
	}

	b := newFakeBody()
	b.dead = true
	if _, ok := th.Apply(b); ok {
		t.Error("Apply on a dead body reported true")
	}
	if b.woken != 0 || b.pos != (math3d.Vec3{}) {
		t.Errorf("dead body was touched: %+v", b)
	}
}

func TestThrowConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ThrowConfig)
		wantErr bool
	}{
		{"defaults", func(*ThrowConfig) {}, false},
		{"zero height", func(c *ThrowConfig) { c.DropHeight = 0 }, true},
		{"negative torque", func(c *ThrowConfig) { c.TorqueRange = -1 }, true},
		{"nan horizontal", func(c *ThrowConfig) { c.HorizontalForce = math.NaN() }, true},
		{"upward throw", func(c *ThrowConfig) { c.VerticalForce = 3 }, false},
		{"infinite vertical", func(c *ThrowConfig) { c.VerticalForce = math.Inf(-1) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultThrowConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

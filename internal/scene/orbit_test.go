package scene

import (
	"math"
	"testing"

	"github.com/taigrr/tumble/pkg/math3d"
	"github.com/taigrr/tumble/pkg/render"
)

func TestOrbitClampsTargets(t *testing.T) {
	o := newOrbit(60)

	o.Zoom(-100)
	if o.distance.target != minDistance {
		t.Errorf("distance target %v, want %v", o.distance.target, minDistance)
	}
	o.Zoom(100)
	if o.distance.target != maxDistance {
		t.Errorf("distance target %v, want %v", o.distance.target, maxDistance)
	}

	o.Rotate(0, -10)
	if o.polar.target != minPolar {
		t.Errorf("polar target %v, want %v", o.polar.target, minPolar)
	}
	o.Rotate(0, 10)
	if o.polar.target != maxPolar {
		t.Errorf("polar target %v, want %v", o.polar.target, maxPolar)
	}
}

func TestOrbitSettlesOnTarget(t *testing.T) {
	o := newOrbit(60)
	o.Rotate(1, 0.2)
	o.Zoom(3)
	want := [3]float64{o.azimuth.target, o.polar.target, o.distance.target}

	for range 600 {
		o.Update()
	}
	got := [3]float64{o.azimuth.pos, o.polar.pos, o.distance.pos}
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-3 {
			t.Errorf("axis %d at %v, want %v", i, got[i], want[i])
		}
	}
}

func TestOrbitEyeAboveTable(t *testing.T) {
	o := newOrbit(60)
	for _, dp := range []float64{-10, 10} {
		o.Rotate(0, dp)
		for range 600 {
			o.Update()
		}
		eye := o.Eye()
		if eye.Y <= 0 {
			t.Errorf("eye %v below the table", eye)
		}
		if d := eye.Sub(o.Focus()).Len(); math.Abs(d-o.distance.pos) > 1e-9 {
			t.Errorf("eye distance %v, want %v", d, o.distance.pos)
		}
	}
}

func TestOrbitApply(t *testing.T) {
	o := newOrbit(60)
	o.Follow(math3d.V3(2, 0, 1))
	for range 600 {
		o.Update()
	}
	c := render.NewCamera()
	o.Apply(c)
	if c.Position != o.Eye() {
		t.Errorf("camera at %v, want %v", c.Position, o.Eye())
	}
	if c.Target != o.Focus() {
		t.Errorf("camera target %v, want %v", c.Target, o.Focus())
	}
}

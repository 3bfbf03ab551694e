package scene

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/taigrr/tumble/pkg/math3d"
	"github.com/taigrr/tumble/pkg/render"
)

// Orbit limits. The polar angle is measured from straight up, so the
// camera always stays above the table.
const (
	minDistance = 3.0
	maxDistance = 20.0
	minPolar    = math.Pi / 6
	maxPolar    = math.Pi / 2.5
)

// smoothed is one spring-driven value chasing its target.
type smoothed struct {
	pos, vel, target float64
}

func (s *smoothed) update(sp harmonica.Spring) {
	s.pos, s.vel = sp.Update(s.pos, s.vel, s.target)
}

func (s *smoothed) jump(v float64) {
	s.pos, s.vel, s.target = v, 0, v
}

// orbit is a camera circling a focus point. Input moves the targets and
// harmonica springs ease the camera after them, one step per frame.
type orbit struct {
	spring   harmonica.Spring
	azimuth  smoothed
	polar    smoothed
	distance smoothed
	focus    [3]smoothed
}

func newOrbit(fps int) *orbit {
	o := &orbit{
		// critically damped, no overshoot
		spring: harmonica.NewSpring(harmonica.FPS(max(fps, 1)), 5.0, 1.0),
	}
	o.azimuth.jump(0.6)
	o.polar.jump(1.0)
	o.distance.jump(9)
	return o
}

// Rotate moves the azimuth and polar targets by the given radians.
func (o *orbit) Rotate(dAzimuth, dPolar float64) {
	o.azimuth.target += dAzimuth
	o.polar.target = clamp(o.polar.target+dPolar, minPolar, maxPolar)
}

// Zoom moves the distance target.
func (o *orbit) Zoom(d float64) {
	o.distance.target = clamp(o.distance.target+d, minDistance, maxDistance)
}

// Follow points the focus target at p, halfway down to the table so the
// die and the floor around it stay in frame.
func (o *orbit) Follow(p math3d.Vec3) {
	o.focus[0].target = p.X
	o.focus[1].target = p.Y / 2
	o.focus[2].target = p.Z
}

func (o *orbit) Update() {
	o.azimuth.update(o.spring)
	o.polar.update(o.spring)
	o.distance.update(o.spring)
	for i := range o.focus {
		o.focus[i].update(o.spring)
	}
}

func (o *orbit) Focus() math3d.Vec3 {
	return math3d.V3(o.focus[0].pos, o.focus[1].pos, o.focus[2].pos)
}

func (o *orbit) Eye() math3d.Vec3 {
	// a spring may briefly carry the polar angle past its limit
	polar := clamp(o.polar.pos, minPolar, maxPolar)
	d := clamp(o.distance.pos, minDistance, maxDistance)
	offset := math3d.V3(
		math.Sin(polar)*math.Sin(o.azimuth.pos),
		math.Cos(polar),
		math.Sin(polar)*math.Cos(o.azimuth.pos),
	)
	return o.Focus().Add(offset.Scale(d))
}

// Apply moves the camera to the current orbit position.
func (o *orbit) Apply(c *render.Camera) {
	c.SetPosition(o.Eye())
	c.LookAt(o.Focus())
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

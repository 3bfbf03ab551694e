package physics

import (
	"math"

	"github.com/taigrr/tumble/pkg/math3d"
)

const (
	// contactMargin lets corners just above the floor join the solve so a
	// falling box is caught the step before it would sink in.
	contactMargin = 0.02
	// bounceThreshold is the approach speed below which impacts don't
	// bounce. Without it a resting box chatters.
	bounceThreshold = 1.0

	// A slow box touching the floor more than tipMinTilt (sine of the
	// angle) off its nearest flat face is spun toward it at tipAccel.
	// Balanced on an edge, gravity alone leaves it nearly still.
	tipAccel    = 8.0
	tipMinTilt  = 0.035
	tipMaxSpeed = 1.0
	tipMaxSpin  = 2.0
)

type contact struct {
	r      math3d.Vec3 // corner relative to the body center
	depth  float64     // corner height, negative when under the floor
	target float64     // desired normal velocity after the solve
	normal float64     // accumulated normal impulse
	fricX  float64     // accumulated friction impulses along X and Z
	fricZ  float64
	kn     float64 // effective mass denominators
	kx     float64
	kz     float64
}

var (
	axisX = math3d.V3(1, 0, 0)
	axisY = math3d.V3(0, 1, 0)
	axisZ = math3d.V3(0, 0, 1)
)

// solveFloor applies contact and friction impulses at every corner of b
// touching the floor. It reports whether any corner touched.
func (w *World) solveFloor(b *Body, dt float64) bool {
	var contacts [8]contact
	n := 0
	for _, r := range b.cornerOffsets() {
		y := b.pos.Y + r.Y
		if y >= contactMargin {
			continue
		}
		c := contact{r: r, depth: y}
		c.kn = b.effectiveMass(r, axisY)
		c.kx = b.effectiveMass(r, axisX)
		c.kz = b.effectiveMass(r, axisZ)

		// A corner above the floor may close the gap this step but no
		// more. One that hits hard this step bounces right away.
		vn := b.pointVelocity(r).Y
		if y > 0 {
			c.target = -y / dt
		}
		if vn < -bounceThreshold && y+vn*dt <= 0 {
			c.target = math.Max(c.target, -w.cfg.Restitution*vn)
		}
		contacts[n] = c
		n++
	}
	if n == 0 {
		return false
	}

	for range w.cfg.Iterations {
		for i := range contacts[:n] {
			c := &contacts[i]
			vn := b.pointVelocity(c.r).Y
			old := c.normal
			c.normal = math.Max(old+(c.target-vn)/c.kn, 0)
			b.applyImpulse(c.r, axisY.Scale(c.normal-old))

			limit := w.cfg.Friction * c.normal
			v := b.pointVelocity(c.r)
			old = c.fricX
			c.fricX = clamp(old-v.X/c.kx, -limit, limit)
			b.applyImpulse(c.r, axisX.Scale(c.fricX-old))

			v = b.pointVelocity(c.r)
			old = c.fricZ
			c.fricZ = clamp(old-v.Z/c.kz, -limit, limit)
			b.applyImpulse(c.r, axisZ.Scale(c.fricZ-old))
		}
	}
	return true
}

// tip turns a slow, tilted box toward the face nearest up so it cannot
// rest balanced on an edge or corner.
func tip(b *Body, dt float64) {
	if b.vel.Len() > tipMaxSpeed || b.angVel.Len() > tipMaxSpin {
		return
	}
	tilt := b.upAxis().Cross(axisY)
	if tilt.Len() < tipMinTilt {
		return
	}
	b.angVel = b.angVel.Add(tilt.Normalize().Scale(tipAccel * dt))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

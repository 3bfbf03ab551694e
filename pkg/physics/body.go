package physics

import (
	"math"
	"time"

	"github.com/taigrr/tumble/pkg/math3d"
)

// Body is a dynamic cube. Writes to a body removed from its world are
// ignored.
type Body struct {
	world      *World
	half       float64
	invMass    float64
	invInertia float64

	pos    math3d.Vec3
	rot    math3d.Quat
	vel    math3d.Vec3
	angVel math3d.Vec3

	sleeping bool
	idle     time.Duration
}

// Alive reports whether b still belongs to a world.
func (b *Body) Alive() bool { return b != nil && b.world != nil }

// HalfExtent returns half the side length.
func (b *Body) HalfExtent() float64 { return b.half }

// Sleeping reports whether the world has stopped simulating b.
func (b *Body) Sleeping() bool { return b.sleeping }

func (b *Body) Position() math3d.Vec3        { return b.pos }
func (b *Body) Orientation() math3d.Quat     { return b.rot }
func (b *Body) LinearVelocity() math3d.Vec3  { return b.vel }
func (b *Body) AngularVelocity() math3d.Vec3 { return b.angVel }

// SetPosition moves b. It does not wake it.
func (b *Body) SetPosition(p math3d.Vec3) {
	if b.Alive() {
		b.pos = p
	}
}

// SetOrientation rotates b. q is normalized.
func (b *Body) SetOrientation(q math3d.Quat) {
	if b.Alive() {
		b.rot = q.Normalize()
	}
}

func (b *Body) SetLinearVelocity(v math3d.Vec3) {
	if b.Alive() {
		b.vel = v
	}
}

func (b *Body) SetAngularVelocity(v math3d.Vec3) {
	if b.Alive() {
		b.angVel = v
	}
}

// Wake puts b back into the simulation.
func (b *Body) Wake() {
	if b.Alive() {
		b.sleeping = false
		b.idle = 0
	}
}

// Transform returns the model matrix for a mesh spanning [-1, 1] on each
// axis.
func (b *Body) Transform() math3d.Mat4 {
	return math3d.Compose(b.pos, b.rot, math3d.V3(b.half, b.half, b.half))
}

// Corners returns the world positions of the eight corners.
func (b *Body) Corners() [8]math3d.Vec3 {
	var out [8]math3d.Vec3
	for i, r := range b.cornerOffsets() {
		out[i] = b.pos.Add(r)
	}
	return out
}

func (b *Body) cornerOffsets() [8]math3d.Vec3 {
	var out [8]math3d.Vec3
	for i := range 8 {
		local := math3d.V3(b.half, b.half, b.half)
		if i&1 != 0 {
			local.X = -local.X
		}
		if i&2 != 0 {
			local.Y = -local.Y
		}
		if i&4 != 0 {
			local.Z = -local.Z
		}
		out[i] = b.rot.Rotate(local)
	}
	return out
}

// upAxis returns the body axis pointing most nearly up, in world space.
// Ties go to the first of +X, -X, +Y, -Y, +Z, -Z.
func (b *Body) upAxis() math3d.Vec3 {
	best, bestY := math3d.Vec3{}, math.Inf(-1)
	for _, a := range [6]math3d.Vec3{axisX, axisX.Scale(-1), axisY, axisY.Scale(-1), axisZ, axisZ.Scale(-1)} {
		if w := b.rot.Rotate(a); w.Y > bestY {
			best, bestY = w, w.Y
		}
	}
	return best
}

func (b *Body) lowestCorner() float64 {
	low := math.Inf(1)
	for _, r := range b.cornerOffsets() {
		low = math.Min(low, b.pos.Y+r.Y)
	}
	return low
}

// pointVelocity is the velocity of the body point at offset r from the
// center.
func (b *Body) pointVelocity(r math3d.Vec3) math3d.Vec3 {
	return b.vel.Add(b.angVel.Cross(r))
}

// effectiveMass returns the denominator of an impulse along dir at r. A
// cube's inertia is the same about every axis, so a scalar suffices.
func (b *Body) effectiveMass(r, dir math3d.Vec3) float64 {
	rn := r.Cross(dir)
	return b.invMass + rn.LenSq()*b.invInertia
}

func (b *Body) applyImpulse(r, j math3d.Vec3) {
	b.vel = b.vel.Add(j.Scale(b.invMass))
	b.angVel = b.angVel.Add(r.Cross(j).Scale(b.invInertia))
}

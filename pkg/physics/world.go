// Package physics is a small rigid-body world: box bodies falling onto a
// single static floor plane at y = 0. It steps at a fixed rate and resolves
// floor contacts with sequential impulses at the box corners.
package physics

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/taigrr/tumble/pkg/math3d"
)

// ErrInvalidBody is returned when a body is created with a non-positive
// size or mass.
var ErrInvalidBody = errors.New("invalid body")

// Config holds the world constants.
type Config struct {
	Gravity        math3d.Vec3
	Restitution    float64
	Friction       float64
	LinearDamping  float64 // fraction of velocity lost per second
	AngularDamping float64
	Timestep       time.Duration
	Iterations     int

	// Bodies slower than SleepSpeed on both channels for SleepTime stop
	// being simulated until woken.
	SleepSpeed float64
	SleepTime  time.Duration
}

// DefaultConfig returns a table top: strong gravity, a dull bounce and a
// grippy floor.
func DefaultConfig() Config {
	return Config{
		Gravity:        math3d.V3(0, -20, 0),
		Restitution:    0.3,
		Friction:       0.8,
		LinearDamping:  0.5,
		AngularDamping: 0.5,
		Timestep:       time.Second / 120,
		Iterations:     12,
		SleepSpeed:     0.05,
		SleepTime:      500 * time.Millisecond,
	}
}

// Validate checks the ranges of c.
func (c Config) Validate() error {
	var errs []error
	if c.Restitution < 0 || c.Restitution > 1 {
		errs = append(errs, fmt.Errorf("restitution %v outside [0, 1]", c.Restitution))
	}
	if c.Friction < 0 {
		errs = append(errs, fmt.Errorf("friction %v is negative", c.Friction))
	}
	if c.LinearDamping < 0 || c.LinearDamping >= 1 {
		errs = append(errs, fmt.Errorf("linear damping %v outside [0, 1)", c.LinearDamping))
	}
	if c.AngularDamping < 0 || c.AngularDamping >= 1 {
		errs = append(errs, fmt.Errorf("angular damping %v outside [0, 1)", c.AngularDamping))
	}
	if c.Timestep <= 0 {
		errs = append(errs, fmt.Errorf("timestep %v must be positive", c.Timestep))
	}
	if c.Iterations < 1 {
		errs = append(errs, fmt.Errorf("iterations %d must be at least 1", c.Iterations))
	}
	return errors.Join(errs...)
}

// World owns its bodies and steps them at a fixed timestep.
type World struct {
	cfg     Config
	bodies  []*Body
	elapsed time.Duration
	pending time.Duration
}

// NewWorld returns an empty world.
func NewWorld(cfg Config) *World {
	return &World{cfg: cfg}
}

// Config returns the world constants.
func (w *World) Config() Config { return w.cfg }

// Elapsed returns the simulation clock: steps taken times the timestep.
func (w *World) Elapsed() time.Duration { return w.elapsed }

// Bodies returns the live bodies.
func (w *World) Bodies() []*Body { return slices.Clone(w.bodies) }

// AddBox adds a cube with the given half extent and mass, resting at the
// origin until moved.
func (w *World) AddBox(halfExtent, mass float64) (*Body, error) {
	if !(halfExtent > 0) || !(mass > 0) {
		return nil, fmt.Errorf("%w: half extent %v, mass %v", ErrInvalidBody, halfExtent, mass)
	}
	side := 2 * halfExtent
	b := &Body{
		world:      w,
		half:       halfExtent,
		invMass:    1 / mass,
		invInertia: 6 / (mass * side * side),
		rot:        math3d.QuatIdent(),
		pos:        math3d.V3(0, halfExtent, 0),
	}
	w.bodies = append(w.bodies, b)
	return b, nil
}

// Remove takes b out of the world. b reports Alive() == false afterwards
// and ignores further writes.
func (w *World) Remove(b *Body) {
	i := slices.Index(w.bodies, b)
	if i < 0 {
		return
	}
	w.bodies = slices.Delete(w.bodies, i, i+1)
	b.world = nil
}

// Advance runs as many fixed steps as fit in d plus any time left over from
// earlier calls, and returns the number of steps taken.
func (w *World) Advance(d time.Duration) int {
	w.pending += d
	n := 0
	for w.pending >= w.cfg.Timestep {
		w.pending -= w.cfg.Timestep
		w.Step()
		n++
	}
	return n
}

// Step advances the world by one timestep.
func (w *World) Step() {
	dt := w.cfg.Timestep.Seconds()
	linKeep := math.Pow(1-w.cfg.LinearDamping, dt)
	angKeep := math.Pow(1-w.cfg.AngularDamping, dt)

	for _, b := range w.bodies {
		if b.sleeping {
			continue
		}
		b.vel = b.vel.Add(w.cfg.Gravity.Scale(dt)).Scale(linKeep)
		b.angVel = b.angVel.Scale(angKeep)

		if w.solveFloor(b, dt) {
			tip(b, dt)
		}

		b.pos = b.pos.Add(b.vel.Scale(dt))
		b.rot = b.rot.Integrate(b.angVel, dt)
		if low := b.lowestCorner(); low < 0 {
			b.pos.Y -= low
		}
		w.updateSleep(b)
	}
	w.elapsed += w.cfg.Timestep
}

func (w *World) updateSleep(b *Body) {
	if b.vel.Len() < w.cfg.SleepSpeed && b.angVel.Len() < w.cfg.SleepSpeed {
		b.idle += w.cfg.Timestep
		if b.idle > w.cfg.SleepTime {
			b.sleeping = true
			b.vel = math3d.Vec3{}
			b.angVel = math3d.Vec3{}
		}
		return
	}
	b.idle = 0
}

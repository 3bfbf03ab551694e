package dice

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/taigrr/tumble/pkg/math3d"
)

// ErrInvalidConfig is returned by the Validate methods.
var ErrInvalidConfig = errors.New("invalid dice config")

// ThrowConfig shapes the initial state of a throw.
type ThrowConfig struct {
	// DropHeight is the height above the floor the die starts from.
	DropHeight float64
	// HorizontalForce is the width of the symmetric range the horizontal
	// velocity components are drawn from.
	HorizontalForce float64
	// VerticalForce is the fixed initial vertical velocity. Negative
	// values throw the die down at the floor.
	VerticalForce float64
	// TorqueRange is the width of the symmetric range each angular
	// velocity component is drawn from.
	TorqueRange float64
}

// DefaultThrowConfig returns a tabletop throw from five units up.
func DefaultThrowConfig() ThrowConfig {
	return ThrowConfig{
		DropHeight:      5,
		HorizontalForce: 8,
		VerticalForce:   -2,
		TorqueRange:     30,
	}
}

// Validate checks the ranges of c.
func (c ThrowConfig) Validate() error {
	var errs []error
	if !(c.DropHeight > 0) {
		errs = append(errs, fmt.Errorf("%w: drop height %v must be positive", ErrInvalidConfig, c.DropHeight))
	}
	if !(c.HorizontalForce >= 0) {
		errs = append(errs, fmt.Errorf("%w: horizontal force %v must not be negative", ErrInvalidConfig, c.HorizontalForce))
	}
	if math.IsNaN(c.VerticalForce) || math.IsInf(c.VerticalForce, 0) {
		errs = append(errs, fmt.Errorf("%w: vertical force %v must be finite", ErrInvalidConfig, c.VerticalForce))
	}
	if !(c.TorqueRange >= 0) {
		errs = append(errs, fmt.Errorf("%w: torque range %v must not be negative", ErrInvalidConfig, c.TorqueRange))
	}
	return errors.Join(errs...)
}

// Throw is the kinematic state a throw puts the die in.
type Throw struct {
	Position        math3d.Vec3
	Orientation     math3d.Quat
	LinearVelocity  math3d.Vec3
	AngularVelocity math3d.Vec3
}

// Thrower draws throws from its own random source.
type Thrower struct {
	cfg ThrowConfig
	rng *rand.Rand
}

// NewThrower returns a thrower whose sequence of throws is fixed by seed.
func NewThrower(cfg ThrowConfig, seed uint64) *Thrower {
	return &Thrower{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Config returns the thrower's configuration.
func (t *Thrower) Config() ThrowConfig {
	return t.cfg
}

// Next draws a fresh throw. Nothing from earlier throws carries over.
func (t *Thrower) Next() Throw {
	angle := func() float64 { return t.rng.Float64() * 2 * math.Pi }
	spread := func(width float64) float64 { return (t.rng.Float64() - 0.5) * width }

	return Throw{
		Position:    math3d.V3(0, t.cfg.DropHeight, 0),
		Orientation: math3d.QuatEuler(angle(), angle(), angle()),
		LinearVelocity: math3d.V3(
			spread(t.cfg.HorizontalForce),
			t.cfg.VerticalForce,
			spread(t.cfg.HorizontalForce),
		),
		AngularVelocity: math3d.V3(
			spread(t.cfg.TorqueRange),
			spread(t.cfg.TorqueRange),
			spread(t.cfg.TorqueRange),
		),
	}
}

// Apply resets b to a fresh throw and wakes it. It reports false, touching
// nothing, when b is nil or no longer alive.
func (t *Thrower) Apply(b Body) (Throw, bool) {
	if !available(b) {
		return Throw{}, false
	}
	th := t.Next()
	b.SetPosition(th.Position)
	b.SetOrientation(th.Orientation)
	b.SetLinearVelocity(th.LinearVelocity)
	b.SetAngularVelocity(th.AngularVelocity)
	b.Wake()
	return th, true
}

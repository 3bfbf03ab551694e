// Package config reads tumble's settings from TUMBLE_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taigrr/tumble/pkg/dice"
	"github.com/taigrr/tumble/pkg/math3d"
	"github.com/taigrr/tumble/pkg/physics"
)

// Config is the full runtime configuration. Command-line flags override
// individual fields after Load.
type Config struct {
	FPS      int        `env:"TUMBLE_FPS" envDefault:"60"`
	Seed     uint64     `env:"TUMBLE_SEED" envDefault:"0"`
	LogFile  string     `env:"TUMBLE_LOG_FILE"`
	LogLevel slog.Level `env:"TUMBLE_LOG_LEVEL" envDefault:"info"`

	Physics Physics `envPrefix:"TUMBLE_PHYSICS_"`
	Throw   Throw   `envPrefix:"TUMBLE_THROW_"`
	Settle  Settle  `envPrefix:"TUMBLE_SETTLE_"`
}

// Physics holds the world constants that are worth tuning.
type Physics struct {
	Gravity        float64 `env:"GRAVITY" envDefault:"-20"`
	Restitution    float64 `env:"RESTITUTION" envDefault:"0.3"`
	Friction       float64 `env:"FRICTION" envDefault:"0.8"`
	LinearDamping  float64 `env:"LINEAR_DAMPING" envDefault:"0.5"`
	AngularDamping float64 `env:"ANGULAR_DAMPING" envDefault:"0.5"`
}

// Throw holds the ranges a throw is drawn from.
type Throw struct {
	DropHeight      float64 `env:"DROP_HEIGHT" envDefault:"5"`
	HorizontalForce float64 `env:"HORIZONTAL_FORCE" envDefault:"8"`
	VerticalForce   float64 `env:"VERTICAL_FORCE" envDefault:"-2"`
	TorqueRange     float64 `env:"TORQUE_RANGE" envDefault:"30"`
}

// Settle holds the settle detector thresholds.
type Settle struct {
	SpeedThreshold        float64       `env:"SPEED_THRESHOLD" envDefault:"0.1"`
	AngularSpeedThreshold float64       `env:"ANGULAR_SPEED_THRESHOLD" envDefault:"0.1"`
	Time                  time.Duration `env:"TIME" envDefault:"300ms"`
	CheckInterval         time.Duration `env:"CHECK_INTERVAL" envDefault:"100ms"`
}

// Parse reads the environment without validating it, for callers that
// apply overrides first.
func Parse() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	cfg, err := Parse()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section and joins the problems found.
func (c Config) Validate() error {
	var errs []error
	if c.FPS < 1 || c.FPS > 240 {
		errs = append(errs, fmt.Errorf("fps %d outside [1, 240]", c.FPS))
	}
	if !(c.Physics.Gravity < 0) {
		errs = append(errs, fmt.Errorf("gravity %v must pull down", c.Physics.Gravity))
	}
	if err := c.PhysicsConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("physics: %w", err))
	}
	if err := c.ThrowConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("throw: %w", err))
	}
	if err := c.SettleConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("settle: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// FrameInterval is the time between frames.
func (c Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(max(c.FPS, 1))
}

// PhysicsConfig returns the world config with the tunable fields applied.
func (c Config) PhysicsConfig() physics.Config {
	pc := physics.DefaultConfig()
	pc.Gravity = math3d.V3(0, c.Physics.Gravity, 0)
	pc.Restitution = c.Physics.Restitution
	pc.Friction = c.Physics.Friction
	pc.LinearDamping = c.Physics.LinearDamping
	pc.AngularDamping = c.Physics.AngularDamping
	return pc
}

// ThrowConfig returns the thrower settings.
func (c Config) ThrowConfig() dice.ThrowConfig {
	return dice.ThrowConfig{
		DropHeight:      c.Throw.DropHeight,
		HorizontalForce: c.Throw.HorizontalForce,
		VerticalForce:   c.Throw.VerticalForce,
		TorqueRange:     c.Throw.TorqueRange,
	}
}

// SettleConfig returns the detector settings.
func (c Config) SettleConfig() dice.SettleConfig {
	return dice.SettleConfig{
		SpeedThreshold:        c.Settle.SpeedThreshold,
		AngularSpeedThreshold: c.Settle.AngularSpeedThreshold,
		SettleTime:            c.Settle.Time,
		CheckInterval:         c.Settle.CheckInterval,
	}
}

package dice

import (
	"errors"
	"fmt"
	"time"
)

// SettleConfig decides when a die counts as resting.
type SettleConfig struct {
	// SpeedThreshold and AngularSpeedThreshold bound the linear and
	// angular speed of a resting die. Both must hold.
	SpeedThreshold        float64
	AngularSpeedThreshold float64
	// SettleTime is how long both bounds must hold without a break.
	SettleTime time.Duration
	// CheckInterval is the minimum simulation time between samples.
	CheckInterval time.Duration
}

// DefaultSettleConfig samples every 100ms and wants 300ms of stillness.
func DefaultSettleConfig() SettleConfig {
	return SettleConfig{
		SpeedThreshold:        0.1,
		AngularSpeedThreshold: 0.1,
		SettleTime:            300 * time.Millisecond,
		CheckInterval:         100 * time.Millisecond,
	}
}

// Validate checks the ranges of c.
func (c SettleConfig) Validate() error {
	var errs []error
	if !(c.SpeedThreshold > 0) {
		errs = append(errs, fmt.Errorf("%w: speed threshold %v must be positive", ErrInvalidConfig, c.SpeedThreshold))
	}
	if !(c.AngularSpeedThreshold > 0) {
		errs = append(errs, fmt.Errorf("%w: angular speed threshold %v must be positive", ErrInvalidConfig, c.AngularSpeedThreshold))
	}
	if c.SettleTime < 0 {
		errs = append(errs, fmt.Errorf("%w: settle time %v must not be negative", ErrInvalidConfig, c.SettleTime))
	}
	if c.CheckInterval < 0 {
		errs = append(errs, fmt.Errorf("%w: check interval %v must not be negative", ErrInvalidConfig, c.CheckInterval))
	}
	return errors.Join(errs...)
}

// SettlePhase is the state of a Detector.
type SettlePhase int

const (
	// SettleMoving: the last sample was above a threshold.
	SettleMoving SettlePhase = iota
	// SettlePending: every sample since PendingSince was below both
	// thresholds.
	SettlePending
	// SettleDone: the die rested long enough and its face was reported.
	SettleDone
	// SettleAborted: the body went away or the detector was stopped.
	SettleAborted
)

func (p SettlePhase) String() string {
	switch p {
	case SettleMoving:
		return "moving"
	case SettlePending:
		return "pending"
	case SettleDone:
		return "settled"
	case SettleAborted:
		return "aborted"
	default:
		return fmt.Sprintf("SettlePhase(%d)", int(p))
	}
}

// Listener receives the face of a settled die.
type Listener interface {
	OnSettled(Face)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Face)

// OnSettled calls f(face).
func (f ListenerFunc) OnSettled(face Face) { f(face) }

// Detector watches one throw of one body until it rests. It is polled from
// the simulation tick with the simulation clock; it never starts timers of
// its own.
type Detector struct {
	cfg      SettleConfig
	body     Body
	listener Listener

	phase        SettlePhase
	pendingSince time.Duration
	lastSample   time.Duration
	sampled      bool
	samples      int
	face         Face
}

// NewDetector returns a detector in the moving phase. l may be nil.
func NewDetector(body Body, cfg SettleConfig, l Listener) *Detector {
	return &Detector{cfg: cfg, body: body, listener: l}
}

// Phase returns the current phase.
func (d *Detector) Phase() SettlePhase { return d.phase }

// Samples returns how many samples have been taken.
func (d *Detector) Samples() int { return d.samples }

// Face returns the reported face once the detector is done.
func (d *Detector) Face() (Face, bool) {
	return d.face, d.phase == SettleDone
}

// PendingSince returns the time of the first sample of the current quiet
// stretch, if there is one.
func (d *Detector) PendingSince() (time.Duration, bool) {
	return d.pendingSince, d.phase == SettlePending
}

// Stop ends the detector without reporting. Later polls do nothing.
func (d *Detector) Stop() {
	if d.phase != SettleDone {
		d.phase = SettleAborted
	}
}

// Poll samples the body if at least CheckInterval has passed since the
// previous sample. When the die has rested for longer than SettleTime it
// reads the top face, reports it to the listener once and stops. A body that
// is gone moves the detector to SettleAborted without a report.
func (d *Detector) Poll(now time.Duration) SettlePhase {
	if d.phase == SettleDone || d.phase == SettleAborted {
		return d.phase
	}
	if d.sampled && now-d.lastSample < d.cfg.CheckInterval {
		return d.phase
	}
	if !available(d.body) {
		d.phase = SettleAborted
		return d.phase
	}
	d.lastSample, d.sampled = now, true
	d.samples++

	lin := d.body.LinearVelocity().Len()
	ang := d.body.AngularVelocity().Len()
	if d.Observe(now, lin, ang) == SettleDone {
		d.face = TopFace(d.body.Orientation())
		if d.listener != nil {
			d.listener.OnSettled(d.face)
		}
	}
	return d.phase
}

// Observe applies one speed sample taken at now and returns the new phase.
// It does not touch the body or the listener.
func (d *Detector) Observe(now time.Duration, speed, angSpeed float64) SettlePhase {
	if d.phase == SettleDone || d.phase == SettleAborted {
		return d.phase
	}
	quiet := speed < d.cfg.SpeedThreshold && angSpeed < d.cfg.AngularSpeedThreshold
	switch {
	case !quiet:
		d.phase = SettleMoving
	case d.phase == SettleMoving:
		d.phase = SettlePending
		d.pendingSince = now
	case now-d.pendingSince > d.cfg.SettleTime:
		d.phase = SettleDone
	}
	return d.phase
}

package dice

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// Phase is the state of a Roller.
type Phase int

const (
	// PhaseIdle: no roll in flight and no result to show.
	PhaseIdle Phase = iota
	// PhaseThrown: the throw is being applied. Only seen from inside
	// RequestRoll.
	PhaseThrown
	// PhaseSettling: the die is in the air or tumbling.
	PhaseSettling
	// PhaseSettled: idle, holding the last result.
	PhaseSettled
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseThrown:
		return "thrown"
	case PhaseSettling:
		return "settling"
	case PhaseSettled:
		return "settled"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Session is one roll from throw to result.
type Session struct {
	ID        uuid.UUID
	StartedAt time.Duration
	Throw     Throw
}

// Result is the outcome of a completed roll.
type Result struct {
	Face     Face
	Session  uuid.UUID
	Duration time.Duration
	Samples  int
}

// Roller runs at most one roll at a time against a single die.
type Roller struct {
	body     Body
	thrower  *Thrower
	settle   SettleConfig
	onResult func(Result)
	log      *slog.Logger

	phase     Phase
	now       time.Duration
	session   *Session
	detector  *Detector
	result    Result
	hasResult bool
	rolls     int
	closed    bool
}

// Option configures a Roller.
type Option func(*Roller)

// WithThrower replaces the default randomly seeded thrower.
func WithThrower(t *Thrower) Option {
	return func(r *Roller) { r.thrower = t }
}

// WithSettleConfig replaces DefaultSettleConfig.
func WithSettleConfig(c SettleConfig) Option {
	return func(r *Roller) { r.settle = c }
}

// WithResultHandler registers fn to receive each result, once per roll.
func WithResultHandler(fn func(Result)) Option {
	return func(r *Roller) { r.onResult = fn }
}

// WithLogger sets the logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(r *Roller) { r.log = l }
}

// NewRoller returns an idle roller for body.
func NewRoller(body Body, opts ...Option) *Roller {
	r := &Roller{
		body:   body,
		settle: DefaultSettleConfig(),
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.thrower == nil {
		r.thrower = NewThrower(DefaultThrowConfig(), rand.Uint64())
	}
	return r
}

// Phase returns the current phase.
func (r *Roller) Phase() Phase { return r.phase }

// Rolling reports whether a roll is in flight.
func (r *Roller) Rolling() bool {
	return r.phase == PhaseThrown || r.phase == PhaseSettling
}

// Result returns the last completed result. It is cleared when the next
// roll starts.
func (r *Roller) Result() (Result, bool) {
	return r.result, r.hasResult
}

// Session returns the roll in flight.
func (r *Roller) Session() (Session, bool) {
	if r.session == nil {
		return Session{}, false
	}
	return *r.session, true
}

// Rolls returns how many rolls were started.
func (r *Roller) Rolls() int { return r.rolls }

// RequestRoll throws the die. It returns false without doing anything if a
// roll is already in flight, the roller is closed, or the body is gone.
func (r *Roller) RequestRoll() bool {
	if r.closed {
		return false
	}
	if r.Rolling() {
		r.log.Debug("roll ignored, already rolling", "session", r.session.ID)
		return false
	}
	if !available(r.body) {
		r.log.Debug("roll ignored, no body")
		return false
	}

	r.result, r.hasResult = Result{}, false
	r.phase = PhaseThrown
	th, ok := r.thrower.Apply(r.body)
	if !ok {
		r.phase = PhaseIdle
		return false
	}

	r.session = &Session{ID: uuid.New(), StartedAt: r.now, Throw: th}
	r.detector = NewDetector(r.body, r.settle, r)
	r.phase = PhaseSettling
	r.rolls++
	r.log.Info("roll started",
		"session", r.session.ID,
		"linvel", th.LinearVelocity,
		"angvel", th.AngularVelocity,
	)
	return true
}

// Tick advances the roller clock to now, simulation time, and polls the
// settle detector. Call it once per frame, after the world advanced; the
// detector samples at most once per CheckInterval however often it runs.
func (r *Roller) Tick(now time.Duration) {
	r.now = now
	if r.phase != PhaseSettling || r.detector == nil {
		return
	}
	if r.detector.Poll(now) == SettleAborted {
		r.log.Warn("roll aborted, body gone", "session", r.session.ID)
		r.endSession()
		r.phase = PhaseIdle
	}
}

// Close stops any roll in flight without a result. Later calls do nothing.
func (r *Roller) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.endSession()
	if r.Rolling() {
		r.phase = PhaseIdle
	}
}

// OnSettled records face as the result of the roll in flight. The roller's
// own detector calls it; calls outside a roll are ignored.
func (r *Roller) OnSettled(face Face) {
	if r.phase != PhaseSettling || r.session == nil {
		return
	}
	res := Result{
		Face:     face,
		Session:  r.session.ID,
		Duration: r.now - r.session.StartedAt,
		Samples:  r.detector.Samples(),
	}
	r.endSession()
	r.result, r.hasResult = res, true
	r.phase = PhaseSettled
	r.log.Info("roll settled", "session", res.Session, "face", int(face), "duration", res.Duration)
	if r.onResult != nil {
		r.onResult(res)
	}
}

func (r *Roller) endSession() {
	if r.detector != nil {
		r.detector.Stop()
	}
	r.detector = nil
	r.session = nil
}

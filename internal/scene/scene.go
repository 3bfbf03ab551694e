// Package scene puts one die on a wooden table and draws it to a terminal
// screen. It owns the physics world, the roller, the orbit camera, and the
// heads-up display, and is driven by Update and HandleEvent calls from a
// single frame loop.
package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/taigrr/tumble/pkg/dice"
	"github.com/taigrr/tumble/pkg/math3d"
	"github.com/taigrr/tumble/pkg/models"
	"github.com/taigrr/tumble/pkg/physics"
	"github.com/taigrr/tumble/pkg/render"
)

// ErrNotSettled is returned by RollToRest when no result arrives in time.
var ErrNotSettled = errors.New("die did not settle")

// maxFrameStep caps one Update so a stalled frame does not fast-forward
// the throw.
const maxFrameStep = 100 * time.Millisecond

// Options configures a Scene. Zero values pick the defaults.
type Options struct {
	World  physics.Config
	Throw  dice.ThrowConfig
	Settle dice.SettleConfig
	// Seed seeds the thrower. Zero picks a random seed.
	Seed uint64
	FPS  int
	// Mesh replaces the built-in cube. It is drawn in [-1, 1] space.
	Mesh    *models.Mesh
	Texture *render.Texture
	// OnResult is called from Update once per completed roll.
	OnResult func(dice.Result)
	Logger   *slog.Logger
}

// DefaultOptions returns the options used when a field is left zero.
func DefaultOptions() Options {
	return Options{
		World:  physics.DefaultConfig(),
		Throw:  dice.DefaultThrowConfig(),
		Settle: dice.DefaultSettleConfig(),
		FPS:    60,
	}
}

// Scene is the die on its table.
type Scene struct {
	world  *physics.World
	body   *physics.Body
	roller *dice.Roller
	log    *slog.Logger

	mesh     *models.Mesh
	dieTex   *render.Texture
	floor    *models.Mesh
	floorTex *render.Texture
	lightDir math3d.Vec3

	camera *render.Camera
	fb     *render.Framebuffer
	rast   *render.Rasterizer
	orbit  *orbit

	hud  hud
	drag dragState
}

// New builds a scene with the die resting on the table.
func New(opts Options) (*Scene, error) {
	def := DefaultOptions()
	if opts.World == (physics.Config{}) {
		opts.World = def.World
	}
	if opts.Throw == (dice.ThrowConfig{}) {
		opts.Throw = def.Throw
	}
	if opts.Settle == (dice.SettleConfig{}) {
		opts.Settle = def.Settle
	}
	if opts.FPS <= 0 {
		opts.FPS = def.FPS
	}
	if opts.Seed == 0 {
		opts.Seed = rand.Uint64()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if err := errors.Join(opts.World.Validate(), opts.Throw.Validate(), opts.Settle.Validate()); err != nil {
		return nil, fmt.Errorf("scene options: %w", err)
	}

	world := physics.NewWorld(opts.World)
	body, err := world.AddBox(0.5, 1)
	if err != nil {
		return nil, fmt.Errorf("add die: %w", err)
	}
	body.SetOrientation(dice.FaceUp(dice.Face(1 + opts.Seed%6)))

	s := &Scene{
		world:    world,
		body:     body,
		log:      opts.Logger,
		mesh:     opts.Mesh,
		dieTex:   opts.Texture,
		floor:    models.NewFloor(40, 20, 4),
		floorTex: render.NewWoodTexture(256, 256, opts.Seed),
		lightDir: math3d.V3(0.4, 1, 0.3).Normalize(),
		camera:   render.NewCamera(),
		fb:       render.NewFramebuffer(1, 1),
		orbit:    newOrbit(opts.FPS),
	}
	if s.mesh == nil {
		s.mesh = models.NewDie()
	}
	if s.dieTex == nil {
		s.dieTex = render.NewPipAtlas(64, render.ColorIvory, render.ColorBlack, render.ColorRed)
	}
	s.rast = render.NewRasterizer(s.camera, s.fb)
	s.roller = dice.NewRoller(body,
		dice.WithThrower(dice.NewThrower(opts.Throw, opts.Seed)),
		dice.WithSettleConfig(opts.Settle),
		dice.WithResultHandler(opts.OnResult),
		dice.WithLogger(opts.Logger),
	)
	s.orbit.Follow(body.Position())
	s.log.Debug("scene ready", "seed", opts.Seed, "triangles", s.mesh.TriangleCount())
	return s, nil
}

// Roll throws the die. It returns false if a roll is already in flight.
func (s *Scene) Roll() bool {
	return s.roller.RequestRoll()
}

// Rolling reports whether a roll is in flight.
func (s *Scene) Rolling() bool { return s.roller.Rolling() }

// Result returns the last completed roll.
func (s *Scene) Result() (dice.Result, bool) { return s.roller.Result() }

// Rolls returns how many rolls were started.
func (s *Scene) Rolls() int { return s.roller.Rolls() }

// Elapsed returns the simulation time.
func (s *Scene) Elapsed() time.Duration { return s.world.Elapsed() }

// Die returns the physics body of the die.
func (s *Scene) Die() *physics.Body { return s.body }

// Update advances the simulation by dt, polls the roller, and moves the
// camera one frame toward the die.
func (s *Scene) Update(dt time.Duration) {
	s.world.Advance(min(dt, maxFrameStep))
	s.roller.Tick(s.world.Elapsed())
	if s.body.Alive() {
		s.orbit.Follow(s.body.Position())
	}
	s.orbit.Update()
}

// RollToRest throws the die and steps the simulation by step until the roll
// completes. It gives up with ErrNotSettled after limit of simulation time.
func (s *Scene) RollToRest(step, limit time.Duration) (dice.Result, error) {
	if !s.Roll() {
		return dice.Result{}, errors.New("roll refused")
	}
	start := s.world.Elapsed()
	for s.roller.Rolling() {
		if s.world.Elapsed()-start > limit {
			return dice.Result{}, fmt.Errorf("%w after %v", ErrNotSettled, limit)
		}
		s.Update(step)
	}
	res, ok := s.roller.Result()
	if !ok {
		return dice.Result{}, fmt.Errorf("%w: roll aborted", ErrNotSettled)
	}
	return res, nil
}

// Close stops any roll in flight and removes the die from the world.
func (s *Scene) Close() {
	s.roller.Close()
	s.world.Remove(s.body)
}

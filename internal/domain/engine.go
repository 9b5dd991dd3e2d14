package domain

import (
	"math/rand/v2"

	"github.com/jonboulle/clockwork"
)

// DefaultScene is the canvas size the dashboard renders the river into.
var DefaultScene = Scene{Width: 800, Height: 400}

// DefaultRadar is the bridge-mounted tripod the dashboard draws.
func DefaultRadar() RadarConfig {
	return RadarConfig{
		MountX:      100,
		MountY:      150,
		PoleHeight:  60,
		HeadOffsetX: 20,
		MaxRange:    DefaultMaxRange,
	}
}

// Engine owns one environment and one radar configuration and advances them
// one tick at a time. It is not safe for concurrent use; a single goroutine
// must own it.
type Engine struct {
	env    EnvironmentState
	radar  RadarConfig
	scene  Scene
	inputs Inputs
	rng    Rand
	clock  clockwork.Clock
	tick   uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand injects the jitter source. Tests pass a seeded or scripted source.
func WithRand(r Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithSeed uses a PCG source seeded with seed.
func WithSeed(seed uint64) Option {
	return func(e *Engine) { e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithClock sets the time source for reading timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithScene overrides the scene dimensions.
func WithScene(s Scene) Option {
	return func(e *Engine) { e.scene = s }
}

// WithRadar overrides the mount geometry. Beam angle and threshold still
// come from the inputs.
func WithRadar(c RadarConfig) Option {
	return func(e *Engine) { e.radar = c }
}

// NewEngine builds an engine at rest with the given operator inputs. Inputs
// are expected to have passed Sanitize.
func NewEngine(in Inputs, opts ...Option) *Engine {
	e := &Engine{
		radar: DefaultRadar(),
		scene: DefaultScene,
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	e.env = NewEnvironment(in)
	e.Apply(in)
	return e
}

// Apply replaces the operator inputs. It must not be called while Tick is
// running.
func (e *Engine) Apply(in Inputs) {
	e.inputs = in
	e.env.apply(in)
	e.radar.BeamAngleDeg = in.BeamAngleDeg
	e.radar.Threshold = in.Threshold
}

// Inputs returns the operator inputs currently in effect.
func (e *Engine) Inputs() Inputs {
	return e.inputs
}

// Snapshot returns copies of the environment and radar configuration.
func (e *Engine) Snapshot() (EnvironmentState, RadarConfig) {
	return e.env, e.radar
}

// Tick advances the simulation by one frame and returns the new reading.
func (e *Engine) Tick() Reading {
	env := e.env.Advance()
	angle := e.radar.BeamAngleDeg
	threshold := e.radar.Threshold

	hit := Cast(e.radar.Head(), angle, env.SurfaceY(e.scene), e.scene.Width, e.radar.MaxRange)
	frame := Evaluate(env.RainLevel, threshold)
	est := EstimateVelocity(hit.Type, env.FlowSpeed, DegToRad(angle), frame, threshold, e.rng)
	depth := env.DepthM()
	area, q := Discharge(est.Velocity, env.RiverWidthM, depth)

	e.tick++
	return Reading{
		Tick:                  e.tick,
		Timestamp:             e.clock.Now().UTC(),
		Velocity:              est.Velocity,
		FlowSpeed:             env.FlowSpeed,
		HitType:               hit.Type,
		BeamLength:            hit.Distance,
		HitPoint:              hit.HitPoint,
		SignalStrengthPercent: ReportedStrength(frame, est),
		NoiseFloor:            frame.NoiseFloor,
		Amplitude:             frame.Amplitude,
		Detected:              frame.Detected,
		DepthM:                depth,
		AreaM2:                area,
		DischargeM3s:          q,
		Moving:                IsMoving(est.Velocity),
		Status:                ClassifyDischarge(q),
	}
}

// Quiescent reports whether another tick would change nothing: no rain, no
// flow and a settled water level. A scheduler may stop ticking until the
// inputs change.
func (e *Engine) Quiescent() bool {
	return e.env.RainLevel == 0 && e.env.FlowSpeed == 0 && e.env.Settled()
}

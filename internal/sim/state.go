package sim

import (
	"log/slog"
	"math/rand/v2"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/iburimskiy/gw-visualization/internal/config"
)

// Frame is what a driver hands to its renderer after each tick. Heights and
// Colors are owned by the State and are only valid until the next Advance.
type Frame struct {
	Time         float64
	Body1, Body2 mgl64.Vec3
	Heights      []float64
	Colors       []Color // nil unless the heat map is enabled
	Phase        Phase
	Progress     float64
	Ripples      int
	Transition   Transition
}

// State is one simulation session. Advance must be called from a single
// goroutine; TriggerMerge and UpdateConfig may be called from any.
type State struct {
	pending        atomic.Pointer[config.Config]
	mergeRequested atomic.Bool
	phase          atomic.Uint32

	cfg     config.Config
	merge   MergeState
	bodies  [2]Body
	emitter *Emitter
	grid    *Grid
	field   field
	ripples []Ripple
	clock   float64
	logger  *slog.Logger
}

type options struct {
	seed    uint64
	heatMap bool
	workers int
	logger  *slog.Logger
}

// Option configures New.
type Option func(*options)

// WithSeed fixes the random source used for the bodies' pulse offsets.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed = seed }
}

// WithHeatMap enables per-sample color output.
func WithHeatMap(enabled bool) Option {
	return func(o *options) { o.heatMap = enabled }
}

// WithWorkers splits field evaluation across n goroutines.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithLogger sets the logger used to report driver contract violations.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New starts a session at t=0 with both bodies in their initial orbit
// positions and no ripples.
func New(cfg config.Config, grid *Grid, opts ...Option) *State {
	o := options{seed: rand.Uint64(), workers: 1, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	cfg = cfg.Clamped()
	rng := rand.New(rand.NewPCG(o.seed, o.seed^0x9e3779b97f4a7c15))

	s := &State{
		cfg:     cfg,
		emitter: NewEmitter(cfg.MaxActiveWaves),
		grid:    grid,
		field:   newField(grid.Len(), o.heatMap, o.workers),
		ripples: make([]Ripple, 0, cfg.MaxActiveWaves),
		logger:  o.logger,
	}
	s.pending.Store(&cfg)

	k, _, _ := Advance(0, cfg, s.merge, false)
	s.bodies[0] = Body{Position: k.Pos1, Velocity: k.Vel1, PulseOffset: rng.Float64() * 1000}
	s.bodies[1] = Body{Position: k.Pos2, Velocity: k.Vel2, PulseOffset: rng.Float64() * 1000}
	return s
}

// TriggerMerge arms the merge sequence. It reports false when the binary is
// no longer orbiting or a merge is already armed.
func (s *State) TriggerMerge() bool {
	if s.Phase() != PhaseOrbiting {
		return false
	}
	return s.mergeRequested.CompareAndSwap(false, true)
}

// UpdateConfig publishes a new parameter set, clamped to the documented
// ranges. It takes effect at the start of the next tick.
func (s *State) UpdateConfig(cfg config.Config) {
	cfg = cfg.Clamped()
	s.pending.Store(&cfg)
}

// Config returns the most recently published parameters.
func (s *State) Config() config.Config {
	return *s.pending.Load()
}

// Phase is the lifecycle phase as of the last tick.
func (s *State) Phase() Phase { return Phase(s.phase.Load()) }

// Bodies returns both bodies as of the last tick.
func (s *State) Bodies() [2]Body { return s.bodies }

// Ripples returns a copy of the active ripples, oldest first.
func (s *State) Ripples() []Ripple { return s.emitter.AppendRipples(nil) }

// Grid is the sample lattice the state was built with.
func (s *State) Grid() *Grid { return s.grid }

// Advance runs one tick at elapsed time t: kinematics, emission, then field
// evaluation. t must not decrease between calls; a regression is logged and
// the previous time is reused.
func (s *State) Advance(t float64) Frame {
	if t < s.clock {
		s.logger.Warn("simulation clock went backwards", "t", t, "last", s.clock)
		t = s.clock
	}
	s.clock = t
	s.cfg = *s.pending.Load()

	requested := s.mergeRequested.Load()
	k, ms, tr := Advance(t, s.cfg, s.merge, requested)
	s.merge = ms
	s.phase.Store(uint32(ms.Phase))
	if requested && ms.Phase != PhaseOrbiting {
		s.mergeRequested.Store(false)
	}

	s.bodies[0].Position, s.bodies[0].Velocity = k.Pos1, k.Vel1
	s.bodies[1].Position, s.bodies[1].Velocity = k.Pos2, k.Vel2

	s.emitter.Tick(t, ms.Phase, k, s.cfg)
	if tr == TransitionMerged {
		s.emitter.Collapse(t)
	}

	s.ripples = s.emitter.AppendRipples(s.ripples[:0])
	s.field.evaluate(s.grid, s.ripples, t, s.cfg.WaveSpeed, s.cfg.WaveAmplitude)

	return Frame{
		Time:       t,
		Body1:      k.Pos1,
		Body2:      k.Pos2,
		Heights:    s.field.heights,
		Colors:     s.field.colors,
		Phase:      ms.Phase,
		Progress:   ms.Progress,
		Ripples:    len(s.ripples),
		Transition: tr,
	}
}

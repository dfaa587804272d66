package sim

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"pgregory.net/rapid"

	"github.com/iburimskiy/gw-visualization/internal/config"
)

const frameDt = 1.0 / 60

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestState(cfg config.Config, opts ...Option) *State {
	opts = append([]Option{WithSeed(1), WithLogger(quietLogger())}, opts...)
	return New(cfg, NewGrid(10, 20), opts...)
}

// run advances s at frameDt from *now until done reports true or limit ticks pass.
func run(t *testing.T, s *State, now *float64, limit int, done func(Frame) bool) Frame {
	t.Helper()
	var f Frame
	for i := 0; i < limit; i++ {
		*now += frameDt
		f = s.Advance(*now)
		if done(f) {
			return f
		}
	}
	t.Fatalf("condition not reached after %d ticks", limit)
	return f
}

func TestNewInitialState(t *testing.T) {
	s := newTestState(config.Default())

	if s.Phase() != PhaseOrbiting {
		t.Errorf("phase = %v, want orbiting", s.Phase())
	}
	if n := len(s.Ripples()); n != 0 {
		t.Errorf("ripples = %d, want 0", n)
	}
	b := s.Bodies()
	if !vecNear(b[0].Position, mgl64.Vec3{2, 0, 0}, eps) || !vecNear(b[1].Position, mgl64.Vec3{-2, 0, 0}, eps) {
		t.Errorf("body positions = %v %v, want (±2,0,0)", b[0].Position, b[1].Position)
	}

	again := newTestState(config.Default())
	if again.Bodies()[0].PulseOffset != b[0].PulseOffset {
		t.Error("pulse offsets differ for the same seed")
	}

	f := s.Advance(0)
	for i, h := range f.Heights {
		if h != 0 {
			t.Fatalf("heights[%d] = %v, want 0 with no ripples", i, h)
		}
	}
	if f.Colors != nil {
		t.Error("colors produced without heat map")
	}
}

func TestHeatMapOption(t *testing.T) {
	s := newTestState(config.Default(), WithHeatMap(true))
	f := s.Advance(0)
	if len(f.Colors) != len(f.Heights) {
		t.Errorf("len(colors) = %d, want %d", len(f.Colors), len(f.Heights))
	}
}

func TestTriggerMergeIsIdempotent(t *testing.T) {
	s := newTestState(config.Default())
	now := 0.0
	s.Advance(now)

	if !s.TriggerMerge() {
		t.Fatal("first TriggerMerge = false, want true")
	}
	if s.TriggerMerge() {
		t.Error("second TriggerMerge before tick = true, want false")
	}

	now = 1
	f := s.Advance(now)
	if f.Transition != TransitionMergeBegan || f.Phase != PhaseMerging {
		t.Fatalf("frame = %v/%v, want merge began", f.Phase, f.Transition)
	}
	if s.TriggerMerge() {
		t.Error("TriggerMerge while merging = true, want false")
	}

	began := 0
	run(t, s, &now, 1000, func(f Frame) bool {
		if f.Transition == TransitionMergeBegan {
			began++
		}
		return f.Phase == PhaseMerged
	})
	if began != 0 {
		t.Errorf("merge began %d more times, want 0", began)
	}
	if s.TriggerMerge() {
		t.Error("TriggerMerge after merged = true, want false")
	}
}

func TestMergerCollapsesToSingleRipple(t *testing.T) {
	s := newTestState(config.Default())
	now := 0.0
	run(t, s, &now, 1000, func(f Frame) bool { return f.Ripples >= 10 })

	s.TriggerMerge()
	f := run(t, s, &now, 1000, func(f Frame) bool { return f.Transition == TransitionMerged })

	rs := s.Ripples()
	if len(rs) != 1 || f.Ripples != 1 {
		t.Fatalf("ripples = %d (frame %d), want 1", len(rs), f.Ripples)
	}
	if rs[0].Position != (mgl64.Vec3{}) || rs[0].Birth != now {
		t.Errorf("merger ripple = %+v, want origin born at %v", rs[0], now)
	}
	if f.Body1 != (mgl64.Vec3{}) || f.Body2 != (mgl64.Vec3{}) {
		t.Errorf("bodies = %v %v, want origin", f.Body1, f.Body2)
	}

	// Stays collapsed afterwards: no emission, ripple kept.
	for i := 0; i < 120; i++ {
		now += frameDt
		f = s.Advance(now)
	}
	if got := s.Ripples(); len(got) != 1 || got[0] != rs[0] {
		t.Errorf("ripples after merged = %+v, want only %+v", got, rs[0])
	}
	if f.Transition != TransitionNone || f.Phase != PhaseMerged {
		t.Errorf("frame = %v/%v, want merged/none", f.Phase, f.Transition)
	}
}

func TestNoEmissionWhileMerging(t *testing.T) {
	cfg := config.Default()
	cfg.EmitInterval = 0.05
	cfg.MergeDuration = 3
	s := newTestState(cfg)
	now := 0.0
	run(t, s, &now, 1000, func(f Frame) bool { return f.Ripples >= 6 })

	s.TriggerMerge()
	now += frameDt
	s.Advance(now)
	before := s.Ripples()

	run(t, s, &now, 1000, func(f Frame) bool {
		if f.Phase != PhaseMerging {
			return true
		}
		got := s.Ripples()
		if len(got) != len(before) {
			t.Fatalf("ripples during merge = %d, want %d", len(got), len(before))
		}
		for i := range got {
			if got[i] != before[i] {
				t.Fatalf("ripple %d changed during merge: %+v -> %+v", i, before[i], got[i])
			}
		}
		return false
	})
}

func TestMergeDurationAtFrameRate(t *testing.T) {
	cfg := config.Default()
	s := newTestState(cfg)
	now := 0.0
	run(t, s, &now, 10, func(Frame) bool { return now > 0.1 })

	s.TriggerMerge()
	start := now + frameDt
	f := run(t, s, &now, 1000, func(f Frame) bool { return f.Phase == PhaseMerged })

	elapsed := f.Time - start
	if elapsed < cfg.MergeDuration-eps || elapsed > cfg.MergeDuration+frameDt+eps {
		t.Errorf("merge took %v, want %v (±one tick)", elapsed, cfg.MergeDuration)
	}
}

func TestUpdateConfigMidMergeKeepsSchedule(t *testing.T) {
	cfg := config.Default()
	s := newTestState(cfg)
	now := 0.0
	run(t, s, &now, 10, func(Frame) bool { return now > 0.1 })

	s.TriggerMerge()
	start := now + frameDt
	f := run(t, s, &now, 1000, func(f Frame) bool { return f.Progress >= 0.9 })

	swapped := s.Config()
	swapped.MergeDuration = 30
	s.UpdateConfig(swapped)

	last := f.Progress
	f = run(t, s, &now, 1000, func(f Frame) bool {
		if f.Progress < last {
			t.Fatalf("progress went back from %v to %v at t=%v", last, f.Progress, f.Time)
		}
		last = f.Progress
		return f.Phase == PhaseMerged
	})

	elapsed := f.Time - start
	if elapsed < cfg.MergeDuration-eps || elapsed > cfg.MergeDuration+frameDt+eps {
		t.Errorf("merge took %v, want %v (±one tick)", elapsed, cfg.MergeDuration)
	}
}

func TestUpdateConfigHotSwapKeepsHistory(t *testing.T) {
	s := newTestState(config.Default())
	now := 0.0
	run(t, s, &now, 1000, func(f Frame) bool { return f.Ripples >= 8 })
	before := s.Ripples()

	cfg := s.Config()
	cfg.WaveSpeed = 9
	cfg.EmitInterval = 1
	s.UpdateConfig(cfg)
	if s.Config().WaveSpeed != 9 {
		t.Fatalf("Config().WaveSpeed = %v, want 9", s.Config().WaveSpeed)
	}

	now += frameDt
	f := s.Advance(now)
	after := s.Ripples()
	for i := range before {
		if after[i] != before[i] {
			t.Fatalf("ripple %d rewritten: %+v -> %+v", i, before[i], after[i])
		}
	}

	// The field uses the new speed against the recorded births.
	x, z := s.Grid().At(0)
	want := HeightAt(x, z, after, now, 9, cfg.WaveAmplitude)
	if f.Heights[0] != want {
		t.Errorf("heights[0] = %v, want %v", f.Heights[0], want)
	}
}

func TestUpdateConfigClamps(t *testing.T) {
	s := newTestState(config.Default())
	cfg := config.Default()
	cfg.WaveAmplitude = -4
	cfg.EmitInterval = 0
	s.UpdateConfig(cfg)

	got := s.Config()
	if got.WaveAmplitude != 0.1 || got.EmitInterval != 0.05 {
		t.Errorf("config = %+v, want amplitude 0.1 interval 0.05", got)
	}
}

func TestUpdateConfigShrinksRippleBound(t *testing.T) {
	s := newTestState(config.Default())
	now := 0.0
	run(t, s, &now, 1000, func(f Frame) bool { return f.Ripples >= 20 })
	before := s.Ripples()

	cfg := s.Config()
	cfg.MaxActiveWaves = 5
	s.UpdateConfig(cfg)
	now += frameDt
	f := s.Advance(now)

	after := s.Ripples()
	if len(after) > 5 || f.Ripples > 5 {
		t.Fatalf("ripples = %d, want ≤ 5", len(after))
	}
	if after[len(after)-1].Birth < before[len(before)-1].Birth {
		t.Error("newest ripple was evicted")
	}
}

func TestClockRegressionIsClamped(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	s := New(config.Default(), NewGrid(4, 4), WithSeed(1), WithLogger(logger))

	s.Advance(2)
	f := s.Advance(1)
	if f.Time != 2 {
		t.Errorf("frame time = %v, want 2", f.Time)
	}
	if !strings.Contains(buf.String(), "clock went backwards") {
		t.Errorf("log = %q, want regression warning", buf.String())
	}
}

func TestRippleBoundProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := config.Default()
		cfg.MaxActiveWaves = rapid.IntRange(1, 40).Draw(t, "max")
		cfg.EmitInterval = rapid.Float64Range(0.05, 1).Draw(t, "interval")
		steps := rapid.SliceOfN(rapid.Float64Range(0.001, 0.5), 1, 200).Draw(t, "steps")

		s := New(cfg, NewGrid(4, 4), WithSeed(1), WithLogger(quietLogger()))
		now := 0.0
		lastBirth := -1.0
		for _, dt := range steps {
			now += dt
			before := s.Ripples()
			s.Advance(now)
			rs := s.Ripples()

			if len(rs) > cfg.MaxActiveWaves {
				t.Fatalf("ripples = %d, want ≤ %d", len(rs), cfg.MaxActiveWaves)
			}
			for i := 1; i < len(rs); i++ {
				if rs[i].Birth < rs[i-1].Birth {
					t.Fatalf("ripples out of age order at %d: %v < %v", i, rs[i].Birth, rs[i-1].Birth)
				}
			}
			if len(rs) > 0 && rs[len(rs)-1].Birth < lastBirth {
				t.Fatalf("newest ripple born %v, older than previous newest %v", rs[len(rs)-1].Birth, lastBirth)
			}
			if len(rs) > 0 {
				lastBirth = rs[len(rs)-1].Birth
			}
			// Survivors are a suffix of what existed before plus the new pair.
			if len(rs) > 0 && len(before) > 0 && rs[0].Birth < before[0].Birth {
				t.Fatalf("older ripple resurrected: %v < %v", rs[0].Birth, before[0].Birth)
			}
		}
	})
}

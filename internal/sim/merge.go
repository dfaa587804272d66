package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/iburimskiy/gw-visualization/internal/config"
)

// Phase is the lifecycle of the binary. It only moves forward.
type Phase uint8

const (
	PhaseOrbiting Phase = iota
	PhaseMerging
	PhaseMerged
)

func (p Phase) String() string {
	switch p {
	case PhaseOrbiting:
		return "orbiting"
	case PhaseMerging:
		return "merging"
	case PhaseMerged:
		return "merged"
	default:
		return "unknown"
	}
}

// Transition reports which phase edge, if any, a call to Advance crossed.
type Transition uint8

const (
	TransitionNone Transition = iota
	TransitionMergeBegan
	TransitionMerged
)

// MergeState is the state machine's memory between ticks.
type MergeState struct {
	Phase Phase
	// StartTime is the clock value at which Merging began.
	StartTime float64
	// Duration is MergeDuration as it was when Merging began. Later config
	// changes do not stretch a merge already in flight.
	Duration float64
	// Progress is in [0,1]; 0 while orbiting, 1 once merged.
	Progress float64
}

// Advance computes body kinematics at time t. requested is the pending merge
// signal; it is ignored unless the binary is still orbiting.
//
// Merge progress is derived from t - StartTime rather than integrated, so the
// merge finishes exactly Duration after it began whatever the frame rate.
func Advance(t float64, cfg config.Config, ms MergeState, requested bool) (Kinematics, MergeState, Transition) {
	tr := TransitionNone

	if ms.Phase == PhaseOrbiting && requested {
		ms = MergeState{Phase: PhaseMerging, StartTime: t, Duration: cfg.MergeDuration}
		tr = TransitionMergeBegan
	}

	switch ms.Phase {
	case PhaseOrbiting:
		return orbit(cfg.OrbitRadius, t*cfg.OrbitSpeedFactor, cfg.OrbitSpeedFactor), ms, tr

	case PhaseMerging:
		if ms.Duration <= 0 {
			ms.Duration = cfg.MergeDuration
		}
		progress := math.Max(clamp01((t-ms.StartTime)/ms.Duration), ms.Progress)
		ms.Progress = progress
		if progress >= 1 {
			ms.Progress = 1
			ms.Phase = PhaseMerged
			return pinned(), ms, TransitionMerged
		}
		radius := cfg.OrbitRadius * (1 - progress)
		angle := t * cfg.OrbitSpeedFactor * (1 + 4*progress)
		return orbit(radius, angle, cfg.OrbitSpeedFactor), ms, tr

	default:
		return pinned(), ms, tr
	}
}

// pinned is the collapsed configuration: both bodies at rest on the origin.
func pinned() Kinematics {
	return Kinematics{
		Pos1: mgl64.Vec3{},
		Vel1: mgl64.Vec3{},
		Pos2: mgl64.Vec3{},
		Vel2: mgl64.Vec3{},
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

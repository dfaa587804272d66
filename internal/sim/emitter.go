package sim

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/iburimskiy/gw-visualization/internal/config"
)

// Emitter spawns ripples behind the orbiting bodies and owns the bounded
// collection of active ripples.
type Emitter struct {
	ring     rippleRing
	lastEmit float64
}

// NewEmitter returns an emitter with room for maxWaves ripples.
func NewEmitter(maxWaves int) *Emitter {
	return &Emitter{ring: newRippleRing(maxWaves)}
}

// Tick emits a trailing ripple pair when the binary is orbiting and the emit
// interval has elapsed. Nothing is emitted while merging or merged.
func (e *Emitter) Tick(t float64, phase Phase, k Kinematics, cfg config.Config) bool {
	e.ring.resize(cfg.MaxActiveWaves)

	if phase != PhaseOrbiting {
		return false
	}
	if t-e.lastEmit <= cfg.EmitInterval {
		return false
	}

	e.ring.push(Ripple{Position: TrailingOrigin(k.Pos1, k.Vel1, cfg.WaveOffsetDistance), Birth: t})
	e.ring.push(Ripple{Position: TrailingOrigin(k.Pos2, k.Vel2, cfg.WaveOffsetDistance), Birth: t})
	e.lastEmit = t
	return true
}

// Collapse discards every ripple and replaces them with the single merger
// ripple at the origin.
func (e *Emitter) Collapse(t float64) {
	e.ring.reset()
	e.ring.push(Ripple{Position: mgl64.Vec3{}, Birth: t})
}

// Len is the number of active ripples.
func (e *Emitter) Len() int { return e.ring.len() }

// AppendRipples appends the active ripples, oldest first, to dst.
func (e *Emitter) AppendRipples(dst []Ripple) []Ripple {
	return e.ring.appendTo(dst)
}

// TrailingOrigin places a ripple offset behind pos, opposite to the direction
// of travel. A body at rest emits from its own position.
func TrailingOrigin(pos, vel mgl64.Vec3, offset float64) mgl64.Vec3 {
	return pos.Add(normalizeOrZero(vel).Mul(-offset))
}

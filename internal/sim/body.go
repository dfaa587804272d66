package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Body is one of the two orbiting point masses.
type Body struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3

	// PulseOffset is a random phase fixed at creation. Only renderers read it.
	PulseOffset float64
}

// Kinematics is the per-tick output of the orbital state machine.
type Kinematics struct {
	Pos1, Vel1 mgl64.Vec3
	Pos2, Vel2 mgl64.Vec3
}

// orbit places body 1 on a circle of the given radius at angle and mirrors
// body 2 through the origin. angularRate scales the tangential velocity.
func orbit(radius, angle, angularRate float64) Kinematics {
	sin, cos := math.Sincos(angle)
	pos1 := mgl64.Vec3{radius * cos, 0, radius * sin}
	vel1 := mgl64.Vec3{-sin, 0, cos}.Mul(radius * angularRate)
	return Kinematics{
		Pos1: pos1,
		Vel1: vel1,
		Pos2: pos1.Mul(-1),
		Vel2: vel1.Mul(-1),
	}
}

// normalizeOrZero returns the unit vector along v, or the zero vector when
// v has no length.
func normalizeOrZero(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

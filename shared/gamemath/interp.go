package gamemath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// InterpAlpha is the fraction of the remaining distance covered in one step of
// exponential decay at the given rate. Non-positive dt or rate yields 0.
func InterpAlpha(dt, rate float64) float64 {
	if dt <= 0 || rate <= 0 {
		return 0
	}
	return 1 - math.Exp(-rate*dt)
}

// FInterpTo moves current toward target by exponential decay.
func FInterpTo(current, target, dt, rate float64) float64 {
	return current + (target-current)*InterpAlpha(dt, rate)
}

// VInterpTo is FInterpTo applied to a vector.
func VInterpTo(current, target mgl64.Vec3, dt, rate float64) mgl64.Vec3 {
	return current.Add(target.Sub(current).Mul(InterpAlpha(dt, rate)))
}

// RInterpTo moves a yaw toward target along the shortest arc and returns the
// result normalised to (-180, 180].
func RInterpTo(current, target, dt, rate float64) float64 {
	return NormalizeAngle(current + AngleDelta(current, target)*InterpAlpha(dt, rate))
}

// AngleDelta is the signed shortest rotation from one yaw to another, in
// (-180, 180].
func AngleDelta(from, to float64) float64 {
	return NormalizeAngle(to - from)
}

// NormalizeAngle wraps degrees into (-180, 180].
func NormalizeAngle(v float64) float64 {
	v = math.Mod(v, 360)
	if v <= -180 {
		v += 360
	} else if v > 180 {
		v -= 360
	}
	return v
}

// TicksToConverge is the number of steps after which the remaining distance
// falls below eps times its starting value.
func TicksToConverge(eps, rate, dt float64) int {
	if eps <= 0 || eps >= 1 || rate <= 0 || dt <= 0 {
		return 0
	}
	return int(math.Ceil(math.Log(eps) / (-rate * dt)))
}

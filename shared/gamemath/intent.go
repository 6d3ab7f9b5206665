// Package gamemath holds the pure movement math shared by the host and every
// client. It must stay free of ECS, network and rendering imports so both
// sides compute identical results from identical inputs.
package gamemath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Intent is one input-derived request to change a pawn's desired state.
type Intent struct {
	Move   mgl64.Vec2 // X = forward axis, Y = right axis
	Rotate float64
	Zoom   float64
}

// DesiredState is the target a pawn converges toward. Yaw is in degrees and
// is never wrapped.
type DesiredState struct {
	Position mgl64.Vec3
	Yaw      float64
	Zoom     float64
}

// Tuning holds the per-pawn constants. It is fixed once the pawn is spawned.
type Tuning struct {
	MovementSpeed   float64
	MovementInterp  float64
	RotationSpeed   float64
	RotationInterp  float64
	ZoomSpeed       float64
	ZoomInterp      float64
	MinZoom         float64
	MaxZoom         float64
	InitialZoom     float64
	CameraYawOffset float64
}

// DefaultTuning returns the stock RTS pawn constants.
func DefaultTuning() Tuning {
	return Tuning{
		MovementSpeed:  30,
		MovementInterp: 5,
		RotationSpeed:  5,
		RotationInterp: 10,
		ZoomSpeed:      70,
		ZoomInterp:     5,
		MinZoom:        500,
		MaxZoom:        2800,
		InitialZoom:    1800,
	}
}

// Basis returns the horizontal forward and right unit vectors for a yaw in
// degrees. Z is up.
func Basis(yaw float64) (forward, right mgl64.Vec3) {
	sin, cos := math.Sincos(mgl64.DegToRad(yaw))
	forward = mgl64.Vec3{cos, sin, 0}
	right = mgl64.Vec3{-sin, cos, 0}
	return forward, right
}

// ApplyIntent folds one intent into the desired state.
//
// The movement basis comes from the camera yaw, not the pawn's own target yaw.
// Zoom is computed from liveZoom, the current smoothed arm length, so several
// zoom intents issued before the arm settles compound against a moving
// baseline. A zoom that is not a number keeps the current target.
// Position and yaw accumulate without bounds.
func ApplyIntent(cur DesiredState, in Intent, cameraYaw, liveZoom float64, t Tuning) DesiredState {
	forward, right := Basis(cameraYaw)
	delta := forward.Mul(in.Move.X()).Add(right.Mul(in.Move.Y())).Mul(t.MovementSpeed)

	return DesiredState{
		Position: cur.Position.Add(delta),
		Yaw:      cur.Yaw + in.Rotate*t.RotationSpeed,
		Zoom:     clampZoom(liveZoom+in.Zoom*t.ZoomSpeed, cur.Zoom, t),
	}
}

// clampZoom bounds zoom to the tuning range, substituting fallback and then
// the minimum when zoom is NaN. Clamp alone passes NaN through.
func clampZoom(zoom, fallback float64, t Tuning) float64 {
	if math.IsNaN(zoom) {
		zoom = fallback
	}
	if math.IsNaN(zoom) {
		zoom = t.MinZoom
	}
	return mgl64.Clamp(zoom, t.MinZoom, t.MaxZoom)
}

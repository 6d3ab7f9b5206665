package systems

import (
	"github.com/automoto/rtspawn/shared/gamemath"
	"github.com/automoto/rtspawn/shared/netcomponents"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

// Transform is what the rendering layer receives for one pawn each tick.
type Transform struct {
	Position  mgl64.Vec3
	Yaw       float64 // degrees, (-180, 180]
	ArmLength float64
}

// TransformSink consumes per-tick pawn transforms.
type TransformSink interface {
	ApplyTransform(pawnID uint32, t Transform)
}

// Smooth moves a pawn's live state toward its desired state by dt seconds.
// Position, yaw and zoom decay independently at their own rates.
func Smooth(entry *donburi.Entry, dt float64) {
	tuning := netcomponents.PawnTuning.Get(entry).Tuning
	desired := netcomponents.Desired(entry)
	live := netcomponents.LiveState.Get(entry)

	live.Position = gamemath.VInterpTo(live.Position, desired.Position, dt, tuning.MovementInterp)
	live.Yaw = gamemath.RInterpTo(live.Yaw, desired.Yaw, dt, tuning.RotationInterp)
	live.Zoom = gamemath.FInterpTo(live.Zoom, desired.Zoom, dt, tuning.ZoomInterp)
}

// SmoothAll smooths every pawn in the world.
func SmoothAll(world donburi.World, dt float64) {
	PawnQuery.Each(world, func(entry *donburi.Entry) {
		Smooth(entry, dt)
	})
}

// NewSmootherSystem returns a fixed-step system advancing every pawn by dt
// seconds per update.
func NewSmootherSystem(dt float64) func(*ecs.ECS) {
	return func(e *ecs.ECS) {
		SmoothAll(e.World, dt)
	}
}

// TransformOf reads a pawn's current live transform.
func TransformOf(entry *donburi.Entry) Transform {
	live := netcomponents.LiveState.Get(entry)
	return Transform{
		Position:  live.Position,
		Yaw:       live.Yaw,
		ArmLength: live.Zoom,
	}
}

// NewTransformSystem pushes every pawn's live transform to sink.
func NewTransformSystem(sink TransformSink) func(*ecs.ECS) {
	return func(e *ecs.ECS) {
		PawnQuery.Each(e.World, func(entry *donburi.Entry) {
			sink.ApplyTransform(PawnID(entry), TransformOf(entry))
		})
	}
}

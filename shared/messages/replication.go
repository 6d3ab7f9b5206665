package messages

import "github.com/go-gl/mathgl/mgl64"

// DesiredPositionEvent is broadcast reliably by the host after every
// authoritative intent. Observers overwrite their mirror with it.
type DesiredPositionEvent struct {
	PawnID  uint32
	X, Y, Z float64
}

func NewDesiredPositionEvent(pawnID uint32, pos mgl64.Vec3) DesiredPositionEvent {
	return DesiredPositionEvent{PawnID: pawnID, X: pos.X(), Y: pos.Y(), Z: pos.Z()}
}

func (e DesiredPositionEvent) Position() mgl64.Vec3 {
	return mgl64.Vec3{e.X, e.Y, e.Z}
}

// ViewSync carries a pawn's desired yaw and zoom on the periodic sync path.
// Over necs the same data rides in esync snapshots; this form is used by
// transports without esync.
type ViewSync struct {
	PawnID uint32
	Yaw    float64
	Zoom   float64
}

// DesiredStateEvent replaces both paths above when the host runs in versioned
// replication mode. Observers drop events whose Version is not newer than the
// last one they applied.
type DesiredStateEvent struct {
	PawnID  uint32
	Version uint64
	X, Y, Z float64
	Yaw     float64
	Zoom    float64
}

func (e DesiredStateEvent) Position() mgl64.Vec3 {
	return mgl64.Vec3{e.X, e.Y, e.Z}
}

// PawnSpawnEvent announces a pawn and its starting desired state.
type PawnSpawnEvent struct {
	PawnID  uint32
	Owner   string
	X, Y, Z float64
	Yaw     float64
	Zoom    float64
}

// PawnDespawnEvent is broadcast when a pawn's owner leaves.
type PawnDespawnEvent struct {
	PawnID uint32
}

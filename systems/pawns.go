package systems

import (
	"fmt"

	"github.com/automoto/rtspawn/archetypes"
	"github.com/automoto/rtspawn/shared/gamemath"
	"github.com/automoto/rtspawn/shared/netcomponents"
	"github.com/automoto/rtspawn/tags"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

// PawnQuery matches every pawn entity.
var PawnQuery = donburi.NewQuery(filter.Contains(
	tags.Pawn,
	netcomponents.NetPawn,
	netcomponents.NetDesiredPosition,
	netcomponents.NetDesiredView,
	netcomponents.LiveState,
	netcomponents.PawnTuning,
))

// PawnSpec describes a pawn to create.
type PawnSpec struct {
	ID      uint32
	Owner   string
	IsLocal bool
	Desired gamemath.DesiredState
	Tuning  gamemath.Tuning
}

// SpawnPawn creates a pawn whose live state starts at its desired state, so
// nothing eases in from the origin on the first tick. A zero desired zoom is
// replaced by the tuning's initial arm length.
func SpawnPawn(world donburi.World, spec PawnSpec) *donburi.Entry {
	entry := archetypes.Pawn.Spawn(world)

	desired := spec.Desired
	if desired.Zoom == 0 {
		desired.Zoom = spec.Tuning.InitialZoom
	}

	netcomponents.NetPawn.SetValue(entry, netcomponents.NetPawnData{
		ID:      spec.ID,
		Owner:   spec.Owner,
		IsLocal: spec.IsLocal,
	})
	netcomponents.PawnTuning.SetValue(entry, netcomponents.PawnTuningData{Tuning: spec.Tuning})
	netcomponents.SetDesired(entry, desired)
	netcomponents.LiveState.SetValue(entry, netcomponents.LiveStateData{
		Position: desired.Position,
		Yaw:      gamemath.NormalizeAngle(desired.Yaw),
		Zoom:     desired.Zoom,
	})

	return entry
}

// FindPawn returns the pawn with the given ID.
func FindPawn(world donburi.World, id uint32) (*donburi.Entry, bool) {
	var found *donburi.Entry
	PawnQuery.Each(world, func(entry *donburi.Entry) {
		if found == nil && netcomponents.NetPawn.Get(entry).ID == id {
			found = entry
		}
	})
	return found, found != nil
}

// LookupPawn is FindPawn returning ErrUnknownPawn instead of a bool.
func LookupPawn(world donburi.World, id uint32) (*donburi.Entry, error) {
	entry, ok := FindPawn(world, id)
	if !ok {
		return nil, fmt.Errorf("pawn %d: %w", id, ErrUnknownPawn)
	}
	return entry, nil
}

// RemovePawn deletes the pawn with the given ID and reports whether it
// existed.
func RemovePawn(world donburi.World, id uint32) bool {
	entry, ok := FindPawn(world, id)
	if !ok {
		return false
	}
	world.Remove(entry.Entity())
	return true
}

// LocalPawn returns the pawn this participant controls, if any.
func LocalPawn(world donburi.World) (*donburi.Entry, bool) {
	var found *donburi.Entry
	PawnQuery.Each(world, func(entry *donburi.Entry) {
		if found == nil && netcomponents.NetPawn.Get(entry).IsLocal {
			found = entry
		}
	})
	return found, found != nil
}

// PawnID returns the network ID of a pawn entry.
func PawnID(entry *donburi.Entry) uint32 {
	return netcomponents.NetPawn.Get(entry).ID
}

func ownerOf(entry *donburi.Entry) string {
	return netcomponents.NetPawn.Get(entry).Owner
}

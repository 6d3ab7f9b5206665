package archetypes

import (
	"github.com/automoto/rtspawn/shared/netcomponents"
	"github.com/automoto/rtspawn/tags"
	"github.com/yohamta/donburi"
)

var (
	// Pawn is the full component set of an RTS camera pawn. Hosts and
	// observers spawn the same archetype; only the host attaches a network
	// ID afterwards.
	Pawn = newArchetype(
		tags.Pawn,
		netcomponents.NetPawn,
		netcomponents.NetDesiredPosition,
		netcomponents.NetDesiredView,
		netcomponents.LiveState,
		netcomponents.PawnTuning,
	)
)

type archetype struct {
	components []donburi.IComponentType
}

func newArchetype(cs ...donburi.IComponentType) *archetype {
	return &archetype{
		components: cs,
	}
}

func (a *archetype) Spawn(world donburi.World, cs ...donburi.IComponentType) *donburi.Entry {
	all := make([]donburi.IComponentType, 0, len(a.components)+len(cs))
	all = append(all, a.components...)
	all = append(all, cs...)
	return world.Entry(world.Create(all...))
}

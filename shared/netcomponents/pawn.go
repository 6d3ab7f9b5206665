package netcomponents

import (
	"github.com/automoto/rtspawn/shared/gamemath"
	"github.com/yohamta/donburi"
)

type NetPawnData struct {
	ID      uint32
	Owner   string // player name of the controlling client, empty for host-owned pawns
	Version uint64 // last desired-state version issued (host) or applied (observer)
	IsLocal bool   // Client-side only, true for the pawn this participant controls
}

var NetPawn = donburi.NewComponentType[NetPawnData]()

// PawnTuningData holds the constants a pawn was spawned with. Never written
// after spawn.
type PawnTuningData struct {
	gamemath.Tuning
}

var PawnTuning = donburi.NewComponentType[PawnTuningData]()

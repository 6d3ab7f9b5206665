package messages

import (
	"github.com/automoto/rtspawn/shared/gamemath"
	"github.com/go-gl/mathgl/mgl64"
)

// IntentRequest is sent by a non-authoritative client to the host each time
// the local player issues an intent. The host re-applies it authoritatively.
type IntentRequest struct {
	PawnID   uint32
	Sequence uint32 // client-local counter, used only for prediction bookkeeping
	MoveX    float64
	MoveY    float64
	MoveZ    float64 // always 0 from the stock input bindings
	Rotate   float64
	Zoom     float64
}

// NewIntentRequest builds the wire form of an intent.
func NewIntentRequest(pawnID, seq uint32, in gamemath.Intent) IntentRequest {
	return IntentRequest{
		PawnID:   pawnID,
		Sequence: seq,
		MoveX:    in.Move.X(),
		MoveY:    in.Move.Y(),
		Rotate:   in.Rotate,
		Zoom:     in.Zoom,
	}
}

// Intent returns the request as a gamemath.Intent. MoveZ is dropped because
// movement is projected onto the horizontal plane.
func (r IntentRequest) Intent() gamemath.Intent {
	return gamemath.Intent{
		Move:   mgl64.Vec2{r.MoveX, r.MoveY},
		Rotate: r.Rotate,
		Zoom:   r.Zoom,
	}
}

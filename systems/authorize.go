package systems

import (
	"math"

	"github.com/automoto/rtspawn/shared/messages"
	"github.com/yohamta/donburi"
)

// Authorizer decides whether the host accepts an intent from sender. It runs
// on the game loop goroutine, so it may read the world.
type Authorizer func(sender string, req messages.IntentRequest) bool

// AcceptAll is the default authorizer.
func AcceptAll(string, messages.IntentRequest) bool { return true }

// OwnerOnly accepts an intent only when sender owns the target pawn.
func OwnerOnly(world donburi.World) Authorizer {
	return func(sender string, req messages.IntentRequest) bool {
		entry, ok := FindPawn(world, req.PawnID)
		if !ok {
			return false
		}
		return ownerOf(entry) == sender
	}
}

// MagnitudeLimit rejects intents whose move axis length or scalar magnitudes
// exceed the given limits. A non-positive limit disables that check. NaN and
// infinite components are always rejected.
func MagnitudeLimit(maxMove, maxRotate, maxZoom float64) Authorizer {
	return func(_ string, req messages.IntentRequest) bool {
		for _, v := range []float64{req.MoveX, req.MoveY, req.MoveZ, req.Rotate, req.Zoom} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
		move := math.Sqrt(req.MoveX*req.MoveX + req.MoveY*req.MoveY + req.MoveZ*req.MoveZ)
		switch {
		case maxMove > 0 && move > maxMove:
			return false
		case maxRotate > 0 && math.Abs(req.Rotate) > maxRotate:
			return false
		case maxZoom > 0 && math.Abs(req.Zoom) > maxZoom:
			return false
		}
		return true
	}
}

// AllOf accepts only when every authorizer accepts. An empty list accepts.
func AllOf(auths ...Authorizer) Authorizer {
	return func(sender string, req messages.IntentRequest) bool {
		for _, auth := range auths {
			if !auth(sender, req) {
				return false
			}
		}
		return true
	}
}

package systems

import (
	"errors"

	"github.com/automoto/rtspawn/shared/gamemath"
	"github.com/automoto/rtspawn/shared/messages"
)

var (
	// ErrUnknownPawn is returned when a message names a pawn this world does
	// not contain.
	ErrUnknownPawn = errors.New("unknown pawn")
	// ErrNotAuthoritative is returned when host-only work is asked of a
	// client-side processor.
	ErrNotAuthoritative = errors.New("not authoritative")
	// ErrRejected is returned when the authorizer refuses an intent.
	ErrRejected = errors.New("intent rejected")
)

// Uplink carries raw intents from a client to the host.
type Uplink interface {
	SendIntent(req messages.IntentRequest) error
}

// Downlink carries authoritative desired state from the host to every
// observer. BroadcastDesiredPosition and BroadcastDesiredState must be
// reliable; PublishViews may be lossy since the next round repeats it.
type Downlink interface {
	BroadcastDesiredPosition(evt messages.DesiredPositionEvent) error
	BroadcastDesiredState(evt messages.DesiredStateEvent) error
	PublishViews(views []messages.ViewSync) error
}

// PredictionRecorder observes every intent a client predicts locally before
// forwarding it.
type PredictionRecorder interface {
	Record(req messages.IntentRequest, predicted gamemath.DesiredState)
}

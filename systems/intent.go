package systems

import (
	"fmt"

	"github.com/automoto/rtspawn/logging"
	"github.com/automoto/rtspawn/shared/gamemath"
	"github.com/automoto/rtspawn/shared/messages"
	"github.com/automoto/rtspawn/shared/netcomponents"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
	"go.uber.org/zap"
)

// IntentProcessor turns intents into desired-state changes. Every participant
// applies an intent to its own world immediately. A client then forwards the
// raw intent to the host; the host publishes the result to observers.
//
// An IntentProcessor is not safe for concurrent use. It must be driven from
// the goroutine that owns the world.
type IntentProcessor struct {
	world      donburi.World
	authority  bool
	uplink     Uplink
	replicator *Replicator
	authorize  Authorizer
	recorder   PredictionRecorder
	seq        uint32
	log        *zap.SugaredLogger
}

// NewHostProcessor returns an authoritative processor. A nil authorize
// accepts every remote intent.
func NewHostProcessor(world donburi.World, replicator *Replicator, authorize Authorizer) *IntentProcessor {
	if authorize == nil {
		authorize = AcceptAll
	}
	return &IntentProcessor{
		world:      world,
		authority:  true,
		replicator: replicator,
		authorize:  authorize,
		log:        logging.Named("intent"),
	}
}

// NewClientProcessor returns a processor that predicts locally and forwards
// over uplink. recorder may be nil.
func NewClientProcessor(world donburi.World, uplink Uplink, recorder PredictionRecorder) *IntentProcessor {
	return &IntentProcessor{
		world:    world,
		uplink:   uplink,
		recorder: recorder,
		log:      logging.Named("intent"),
	}
}

func (p *IntentProcessor) IsAuthoritative() bool {
	return p.authority
}

// ProcessIntent applies in to the pawn and then either publishes the result
// (host) or sends exactly one intent request (client). Nothing is retried.
func (p *IntentProcessor) ProcessIntent(pawnID uint32, in gamemath.Intent) error {
	entry, err := LookupPawn(p.world, pawnID)
	if err != nil {
		return err
	}

	predicted := ApplyToPawn(entry, in)

	if p.authority {
		return p.replicator.Publish(entry)
	}

	p.seq++
	req := messages.NewIntentRequest(pawnID, p.seq, in)
	if p.recorder != nil {
		p.recorder.Record(req, predicted)
	}
	if err := p.uplink.SendIntent(req); err != nil {
		return fmt.Errorf("send intent: %w", err)
	}
	return nil
}

// Move requests planar movement. axis.X() is forward, axis.Y() is right.
func (p *IntentProcessor) Move(pawnID uint32, axis mgl64.Vec2) error {
	return p.ProcessIntent(pawnID, gamemath.Intent{Move: axis})
}

// Rotate requests a yaw change in units of the pawn's rotation speed.
func (p *IntentProcessor) Rotate(pawnID uint32, value float64) error {
	return p.ProcessIntent(pawnID, gamemath.Intent{Rotate: value})
}

// Zoom requests a camera arm change in units of the pawn's zoom speed.
func (p *IntentProcessor) Zoom(pawnID uint32, value float64) error {
	return p.ProcessIntent(pawnID, gamemath.Intent{Zoom: value})
}

// HandleRemoteIntent is the host's handler for client intents. A rejected intent
// leaves the world untouched and returns ErrRejected.
func (p *IntentProcessor) HandleRemoteIntent(sender string, req messages.IntentRequest) error {
	if !p.authority {
		return ErrNotAuthoritative
	}
	if !p.authorize(sender, req) {
		p.log.Warnw("intent rejected", "sender", sender, "pawn", req.PawnID, "seq", req.Sequence)
		return fmt.Errorf("pawn %d from %q: %w", req.PawnID, sender, ErrRejected)
	}

	entry, err := LookupPawn(p.world, req.PawnID)
	if err != nil {
		return err
	}
	ApplyToPawn(entry, req.Intent())
	return p.replicator.Publish(entry)
}

// ApplyToPawn folds an intent into a pawn's desired state using the pawn's own
// live yaw and zoom, and returns the new desired state.
func ApplyToPawn(entry *donburi.Entry, in gamemath.Intent) gamemath.DesiredState {
	tuning := netcomponents.PawnTuning.Get(entry).Tuning
	live := netcomponents.LiveState.Get(entry)

	cameraYaw := live.Yaw + tuning.CameraYawOffset
	next := gamemath.ApplyIntent(netcomponents.Desired(entry), in, cameraYaw, live.Zoom, tuning)
	netcomponents.SetDesired(entry, next)
	return next
}

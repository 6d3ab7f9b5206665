package messages

import "github.com/automoto/rtspawn/shared/gamemath"

// JoinRequest is sent by a client after connecting to request a pawn.
type JoinRequest struct {
	Version    string
	PlayerName string
}

// JoinAccepted is sent by the host once the client's pawn exists. Tuning is
// sent so both sides run the apply routine with identical constants.
type JoinAccepted struct {
	PawnID      uint32
	ServerName  string
	TickRate    int
	SyncRate    int
	Replication string
	Tuning      TuningData
}

// JoinRejected is sent by the host when a client's join request is refused.
type JoinRejected struct {
	Reason string
}

// TuningData is the wire form of gamemath.Tuning.
type TuningData struct {
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

func NewTuningData(t gamemath.Tuning) TuningData {
	return TuningData(t)
}

func (d TuningData) Tuning() gamemath.Tuning {
	return gamemath.Tuning(d)
}

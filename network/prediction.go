package network

import (
	"github.com/automoto/rtspawn/shared/gamemath"
	"github.com/automoto/rtspawn/shared/messages"
	"github.com/go-gl/mathgl/mgl64"
)

const predictionLogSize = 64

// PredictionRecord stores an intent alongside the desired position the client
// predicted after applying it.
type PredictionRecord struct {
	Request   messages.IntentRequest
	Predicted mgl64.Vec3
}

// PredictionLog is a ring buffer of recent local predictions. Confirmed state
// from the host always overwrites the prediction; the log only measures how
// far the two disagreed.
type PredictionLog struct {
	history       [predictionLogSize]PredictionRecord
	nextSeq       uint32
	lastConfirmed uint32
	lastError     float64
	maxError      float64
}

// Record saves an intent and the resulting predicted desired state.
func (pl *PredictionLog) Record(req messages.IntentRequest, predicted gamemath.DesiredState) {
	idx := req.Sequence % predictionLogSize
	pl.history[idx] = PredictionRecord{
		Request:   req,
		Predicted: predicted.Position,
	}
	pl.nextSeq = req.Sequence + 1
}

// Get retrieves a stored record by sequence number. Returns false if not found
// or if the slot has been overwritten.
func (pl *PredictionLog) Get(seq uint32) (PredictionRecord, bool) {
	idx := seq % predictionLogSize
	record := pl.history[idx]
	if record.Request.Sequence != seq || seq == 0 {
		return PredictionRecord{}, false
	}
	return record, true
}

// NextSeq returns the next expected sequence number.
func (pl *PredictionLog) NextSeq() uint32 {
	return pl.nextSeq
}

// Pending returns every stored prediction newer than the last confirmed one.
func (pl *PredictionLog) Pending() []PredictionRecord {
	var results []PredictionRecord
	for seq := pl.lastConfirmed + 1; seq < pl.nextSeq; seq++ {
		if record, ok := pl.Get(seq); ok {
			results = append(results, record)
		}
	}
	return results
}

// Confirm takes a confirmed desired position for the local pawn and returns
// its distance to the closest pending prediction. That prediction and every
// older one count as confirmed afterwards. With nothing pending it returns 0.
//
// Confirmations carry no sequence number, so matching is by position: a
// host that applied exactly what the client predicted yields 0, while a
// rejected or reordered intent shows up as a positive error.
func (pl *PredictionLog) Confirm(confirmed mgl64.Vec3) float64 {
	pending := pl.Pending()
	if len(pending) == 0 {
		return 0
	}

	best := pending[0]
	bestDist := best.Predicted.Sub(confirmed).Len()
	for _, record := range pending[1:] {
		if d := record.Predicted.Sub(confirmed).Len(); d < bestDist {
			best, bestDist = record, d
		}
	}

	pl.lastConfirmed = best.Request.Sequence
	pl.lastError = bestDist
	if bestDist > pl.maxError {
		pl.maxError = bestDist
	}
	return bestDist
}

// LastError is the error measured by the most recent Confirm.
func (pl *PredictionLog) LastError() float64 {
	return pl.lastError
}

// MaxError is the largest error measured so far.
func (pl *PredictionLog) MaxError() float64 {
	return pl.maxError
}

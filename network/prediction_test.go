package network

import (
	"math"
	"testing"

	"github.com/automoto/rtspawn/shared/gamemath"
	"github.com/automoto/rtspawn/shared/messages"
	"github.com/go-gl/mathgl/mgl64"
)

func record(pl *PredictionLog, seq uint32, x float64) {
	pl.Record(messages.IntentRequest{PawnID: 1, Sequence: seq, MoveX: 1},
		gamemath.DesiredState{Position: mgl64.Vec3{x, 0, 0}})
}

func TestPredictionLogGet(t *testing.T) {
	var pl PredictionLog
	record(&pl, 1, 30)
	record(&pl, 2, 60)

	if r, ok := pl.Get(2); !ok || r.Predicted.X() != 60 {
		t.Fatalf("Get(2) = %+v, %v", r, ok)
	}
	if _, ok := pl.Get(3); ok {
		t.Fatal("Get(3) found a record that was never stored")
	}
	if _, ok := pl.Get(0); ok {
		t.Fatal("Get(0) matched an empty slot")
	}
	if pl.NextSeq() != 3 {
		t.Fatalf("NextSeq = %d, want 3", pl.NextSeq())
	}
}

func TestPredictionLogOverwrittenSlot(t *testing.T) {
	var pl PredictionLog
	for seq := uint32(1); seq <= predictionLogSize+1; seq++ {
		record(&pl, seq, float64(seq))
	}
	if _, ok := pl.Get(1); ok {
		t.Fatal("Get(1) survived a full wrap of the ring")
	}
	if _, ok := pl.Get(predictionLogSize + 1); !ok {
		t.Fatal("newest record missing")
	}
}

func TestPredictionLogConfirm(t *testing.T) {
	tests := []struct {
		name        string
		confirmed   float64
		wantErr     float64
		wantPending int
	}{
		{"matches first prediction", 30, 0, 2},
		{"matches last prediction", 90, 0, 0},
		{"between predictions", 50, 10, 1},
		{"diverged from all", 200, 110, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pl PredictionLog
			record(&pl, 1, 30)
			record(&pl, 2, 60)
			record(&pl, 3, 90)

			got := pl.Confirm(mgl64.Vec3{tt.confirmed, 0, 0})
			if math.Abs(got-tt.wantErr) > 1e-9 {
				t.Errorf("Confirm(%v) = %v, want %v", tt.confirmed, got, tt.wantErr)
			}
			if n := len(pl.Pending()); n != tt.wantPending {
				t.Errorf("pending = %d, want %d", n, tt.wantPending)
			}
			if pl.LastError() != got {
				t.Errorf("LastError = %v, want %v", pl.LastError(), got)
			}
		})
	}
}

func TestPredictionLogConfirmWithNothingPending(t *testing.T) {
	var pl PredictionLog
	if got := pl.Confirm(mgl64.Vec3{5, 0, 0}); got != 0 {
		t.Fatalf("Confirm on empty log = %v, want 0", got)
	}
}

func TestPredictionLogMaxError(t *testing.T) {
	var pl PredictionLog
	record(&pl, 1, 30)
	pl.Confirm(mgl64.Vec3{35, 0, 0})
	record(&pl, 2, 60)
	pl.Confirm(mgl64.Vec3{61, 0, 0})

	if pl.MaxError() != 5 {
		t.Fatalf("MaxError = %v, want 5", pl.MaxError())
	}
	if pl.LastError() != 1 {
		t.Fatalf("LastError = %v, want 1", pl.LastError())
	}
}

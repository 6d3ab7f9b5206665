package gamemath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const tolerance = 1e-9

func vecNear(a, b mgl64.Vec3) bool {
	return a.ApproxEqualThreshold(b, tolerance)
}

func TestApplyIntentMovesAlongCameraBasis(t *testing.T) {
	tuning := DefaultTuning()
	tests := []struct {
		name      string
		move      mgl64.Vec2
		cameraYaw float64
		want      mgl64.Vec3
	}{
		{name: "forward at yaw 0", move: mgl64.Vec2{1, 0}, cameraYaw: 0, want: mgl64.Vec3{30, 0, 0}},
		{name: "right at yaw 0", move: mgl64.Vec2{0, 1}, cameraYaw: 0, want: mgl64.Vec3{0, 30, 0}},
		{name: "forward at yaw 90", move: mgl64.Vec2{1, 0}, cameraYaw: 90, want: mgl64.Vec3{0, 30, 0}},
		{name: "right at yaw 90", move: mgl64.Vec2{0, 1}, cameraYaw: 90, want: mgl64.Vec3{-30, 0, 0}},
		{name: "backward at yaw 180", move: mgl64.Vec2{-1, 0}, cameraYaw: 180, want: mgl64.Vec3{30, 0, 0}},
		{name: "diagonal is not normalised", move: mgl64.Vec2{1, 1}, cameraYaw: 0, want: mgl64.Vec3{30, 30, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := DesiredState{Zoom: tuning.InitialZoom}
			got := ApplyIntent(cur, Intent{Move: tt.move}, tt.cameraYaw, tuning.InitialZoom, tuning)
			if !vecNear(got.Position, tt.want) {
				t.Fatalf("Position = %v, want %v", got.Position, tt.want)
			}
			if got.Position.Z() != 0 {
				t.Fatalf("movement left the horizontal plane: z=%v", got.Position.Z())
			}
		})
	}
}

func TestApplyIntentIgnoresPawnYawForMovement(t *testing.T) {
	tuning := DefaultTuning()
	cur := DesiredState{Yaw: 90, Zoom: tuning.InitialZoom}
	got := ApplyIntent(cur, Intent{Move: mgl64.Vec2{1, 0}}, 0, tuning.InitialZoom, tuning)
	if !vecNear(got.Position, mgl64.Vec3{30, 0, 0}) {
		t.Fatalf("Position = %v, want basis from camera yaw 0", got.Position)
	}
}

func TestApplyIntentYawAccumulatesUnwrapped(t *testing.T) {
	tuning := DefaultTuning()
	cur := DesiredState{Yaw: 350, Zoom: tuning.InitialZoom}
	got := ApplyIntent(cur, Intent{Rotate: 5}, 0, tuning.InitialZoom, tuning)
	if got.Yaw != 375 {
		t.Fatalf("Yaw = %v, want 375", got.Yaw)
	}
}

func TestApplyIntentZoomClampsAgainstLiveArm(t *testing.T) {
	tuning := Tuning{ZoomSpeed: 70, MinZoom: 500, MaxZoom: 2800}
	tests := []struct {
		name     string
		target   float64
		liveZoom float64
		zoom     float64
		want     float64
	}{
		{name: "clamped at max", target: 2750, liveZoom: 2750, zoom: 1, want: 2800},
		{name: "clamped at min", target: 520, liveZoom: 520, zoom: -1, want: 500},
		{name: "inside bounds", target: 1000, liveZoom: 1000, zoom: 2, want: 1140},
		{name: "baseline is live arm, not target", target: 2000, liveZoom: 1000, zoom: 1, want: 1070},
		{name: "zero zoom snaps target to live arm", target: 2000, liveZoom: 1500, zoom: 0, want: 1500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyIntent(DesiredState{Zoom: tt.target}, Intent{Zoom: tt.zoom}, 0, tt.liveZoom, tuning)
			if math.Abs(got.Zoom-tt.want) > tolerance {
				t.Fatalf("Zoom = %v, want %v", got.Zoom, tt.want)
			}
		})
	}
}

func TestApplyIntentZoomAlwaysWithinBounds(t *testing.T) {
	tuning := DefaultTuning()
	nan, inf := math.NaN(), math.Inf(1)
	for _, cur := range []float64{0, 1800, nan} {
		for _, live := range []float64{-1e6, 0, 499, 500, 1800, 2800, 2801, 1e6, nan, inf, -inf} {
			for _, zoom := range []float64{-1e3, -1, -0.5, 0, 0.5, 1, 1e3, nan, inf, -inf} {
				got := ApplyIntent(DesiredState{Zoom: cur}, Intent{Zoom: zoom}, 0, live, tuning)
				if math.IsNaN(got.Zoom) || got.Zoom < tuning.MinZoom || got.Zoom > tuning.MaxZoom {
					t.Fatalf("cur=%v live=%v zoom=%v gave Zoom=%v outside [%v,%v]",
						cur, live, zoom, got.Zoom, tuning.MinZoom, tuning.MaxZoom)
				}
			}
		}
	}
}

func TestApplyIntentNaNZoomKeepsTarget(t *testing.T) {
	tuning := DefaultTuning()
	got := ApplyIntent(DesiredState{Zoom: 1800}, Intent{Zoom: math.NaN()}, 0, 1800, tuning)
	if got.Zoom != 1800 {
		t.Fatalf("Zoom = %v, want 1800", got.Zoom)
	}
}

// A duplicated intent is applied twice. This pins the additive behaviour so a
// change to idempotent handling is a deliberate decision.
func TestApplyIntentTwiceIsAdditive(t *testing.T) {
	tuning := DefaultTuning()
	in := Intent{Move: mgl64.Vec2{1, 0}, Rotate: 1}
	start := DesiredState{Zoom: tuning.InitialZoom}

	once := ApplyIntent(start, in, 0, tuning.InitialZoom, tuning)
	twice := ApplyIntent(once, in, 0, tuning.InitialZoom, tuning)

	if !vecNear(twice.Position, mgl64.Vec3{60, 0, 0}) {
		t.Fatalf("Position after duplicate = %v, want (60,0,0)", twice.Position)
	}
	if twice.Yaw != 10 {
		t.Fatalf("Yaw after duplicate = %v, want 10", twice.Yaw)
	}
	if vecNear(once.Position, twice.Position) {
		t.Fatal("duplicate intent was idempotent, expected additive")
	}
}

func TestApplyIntentDoesNotMutateInput(t *testing.T) {
	tuning := DefaultTuning()
	start := DesiredState{Position: mgl64.Vec3{1, 2, 3}, Yaw: 4, Zoom: 1000}
	copyOf := start
	_ = ApplyIntent(start, Intent{Move: mgl64.Vec2{1, 1}, Rotate: 1, Zoom: 1}, 45, 1000, tuning)
	if start != copyOf {
		t.Fatalf("input state changed: %+v", start)
	}
}

package gamemath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestInterpAlpha(t *testing.T) {
	tests := []struct {
		dt, rate, want float64
	}{
		{0.1, 5, 1 - math.Exp(-0.5)},
		{1, 10, 1 - math.Exp(-10)},
		{0, 5, 0},
		{0.1, 0, 0},
		{-0.1, 5, 0},
	}
	for _, tt := range tests {
		if got := InterpAlpha(tt.dt, tt.rate); math.Abs(got-tt.want) > tolerance {
			t.Errorf("InterpAlpha(%v, %v) = %v, want %v", tt.dt, tt.rate, got, tt.want)
		}
	}
}

func TestFInterpToConvergesMonotonically(t *testing.T) {
	const eps = 1e-6
	for _, rate := range []float64{0.5, 5, 10, 60} {
		for _, dt := range []float64{1.0 / 60, 1.0 / 20, 0.1} {
			current, target := 1000.0, -250.0
			initial := math.Abs(target - current)
			ticks := TicksToConverge(eps, rate, dt)
			prev := initial
			for i := 0; i < ticks; i++ {
				current = FInterpTo(current, target, dt, rate)
				remaining := math.Abs(target - current)
				if remaining >= prev {
					t.Fatalf("rate=%v dt=%v tick %d: remaining %v did not decrease from %v", rate, dt, i, remaining, prev)
				}
				if (current-target)*(1000-target) < 0 {
					t.Fatalf("rate=%v dt=%v tick %d: overshoot to %v", rate, dt, i, current)
				}
				prev = remaining
			}
			if prev > eps*initial*(1+1e-6) {
				t.Fatalf("rate=%v dt=%v: after %d ticks remaining %v > %v", rate, dt, ticks, prev, eps*initial)
			}
		}
	}
}

func TestVInterpToMovesPartway(t *testing.T) {
	got := VInterpTo(mgl64.Vec3{}, mgl64.Vec3{30, 0, 0}, 0.1, 5)
	want := 30 * (1 - math.Exp(-0.5))
	if math.Abs(got.X()-want) > tolerance || got.Y() != 0 || got.Z() != 0 {
		t.Fatalf("VInterpTo = %v, want (%v,0,0)", got, want)
	}
	if got.X() >= 30 {
		t.Fatal("VInterpTo snapped to the target")
	}
}

func TestRInterpToTakesShortestArc(t *testing.T) {
	current := 350.0
	target := 10.0
	for i := 0; i < 200; i++ {
		current = RInterpTo(current, target, 1.0/60, 10)
		// Passing through 0 keeps every sample within 10 degrees of north.
		if current < -10-tolerance || current > 10+tolerance {
			t.Fatalf("tick %d: yaw %v left the short arc between 350 and 10", i, current)
		}
	}
	if d := math.Abs(AngleDelta(current, target)); d > 1e-6 {
		t.Fatalf("did not converge: %v away from target", d)
	}
}

func TestRInterpToUnwrappedTarget(t *testing.T) {
	// A target accumulated to 725 degrees is 5 degrees from a live yaw of 0.
	got := RInterpTo(0, 725, 1, 1000)
	if math.Abs(got-5) > 1e-6 {
		t.Fatalf("RInterpTo(0, 725) = %v, want 5", got)
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{180, 180},
		{-180, 180},
		{190, -170},
		{540, 180},
		{-190, 170},
		{725, 5},
	}
	for _, tt := range tests {
		if got := NormalizeAngle(tt.in); math.Abs(got-tt.want) > tolerance {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAngleDeltaWrapAround(t *testing.T) {
	if d := AngleDelta(350, 10); math.Abs(d-20) > tolerance {
		t.Fatalf("AngleDelta(350, 10) = %v, want 20", d)
	}
	if d := AngleDelta(10, 350); math.Abs(d+20) > tolerance {
		t.Fatalf("AngleDelta(10, 350) = %v, want -20", d)
	}
}

func TestTicksToConverge(t *testing.T) {
	if got := TicksToConverge(0.01, 5, 0.1); got != int(math.Ceil(math.Log(0.01)/-0.5)) {
		t.Fatalf("TicksToConverge = %d", got)
	}
	if got := TicksToConverge(0, 5, 0.1); got != 0 {
		t.Fatalf("TicksToConverge with eps 0 = %d, want 0", got)
	}
}

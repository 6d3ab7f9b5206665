package systems

import (
	"math"
	"testing"

	"github.com/automoto/rtspawn/shared/gamemath"
	"github.com/automoto/rtspawn/shared/netcomponents"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
)

type recordingSink struct {
	transforms map[uint32]Transform
}

func (s *recordingSink) ApplyTransform(pawnID uint32, t Transform) {
	s.transforms[pawnID] = t
}

func TestSmoothMovesEachAxisIndependently(t *testing.T) {
	world := donburi.NewWorld()
	entry := spawnAtOrigin(world, 1, "")
	netcomponents.SetDesired(entry, gamemath.DesiredState{
		Position: mgl64.Vec3{30, 0, 0},
		Yaw:      90,
		Zoom:     800,
	})

	Smooth(entry, 0.1)

	live := netcomponents.LiveState.Get(entry)
	wantPos := 30 * (1 - math.Exp(-5*0.1))
	wantYaw := 90 * (1 - math.Exp(-10*0.1))
	wantZoom := 1800 + (800-1800)*(1-math.Exp(-5*0.1))

	if !vecNear(live.Position, mgl64.Vec3{wantPos, 0, 0}) {
		t.Errorf("position = %v, want (%v,0,0)", live.Position, wantPos)
	}
	if math.Abs(live.Yaw-wantYaw) > 1e-9 {
		t.Errorf("yaw = %v, want %v", live.Yaw, wantYaw)
	}
	if math.Abs(live.Zoom-wantZoom) > 1e-9 {
		t.Errorf("zoom = %v, want %v", live.Zoom, wantZoom)
	}
}

func TestSmoothYawCrossesZero(t *testing.T) {
	world := donburi.NewWorld()
	entry := SpawnPawn(world, PawnSpec{
		ID:      1,
		Desired: gamemath.DesiredState{Yaw: 350},
		Tuning:  gamemath.DefaultTuning(),
	})
	netcomponents.NetDesiredView.Get(entry).Yaw = 10

	for i := 0; i < 60; i++ {
		Smooth(entry, 1.0/60)
		yaw := netcomponents.LiveState.Get(entry).Yaw
		if yaw < -10-1e-9 || yaw > 10+1e-9 {
			t.Fatalf("tick %d: yaw %v left the short arc [-10, 10]", i, yaw)
		}
	}
}

func TestSmoothConvergesWithinBound(t *testing.T) {
	world := donburi.NewWorld()
	entry := spawnAtOrigin(world, 1, "")
	netcomponents.SetDesiredPosition(entry, mgl64.Vec3{100, 0, 0})

	const dt = 1.0 / 30
	const tolerance = 0.01
	ticks := gamemath.TicksToConverge(tolerance, 5, dt)

	prev := 0.0
	for i := 0; i < ticks; i++ {
		Smooth(entry, dt)
		x := netcomponents.LiveState.Get(entry).Position.X()
		if x <= prev || x > 100 {
			t.Fatalf("tick %d: x = %v after %v, not monotonic toward 100", i, x, prev)
		}
		prev = x
	}
	if remaining := (100 - prev) / 100; remaining > tolerance {
		t.Fatalf("after %d ticks remaining fraction = %v, want <= %v", ticks, remaining, tolerance)
	}
}

func TestSmootherAndTransformSystems(t *testing.T) {
	world := donburi.NewWorld()
	a := spawnAtOrigin(world, 1, "")
	spawnAtOrigin(world, 2, "")
	netcomponents.SetDesiredPosition(a, mgl64.Vec3{10, 0, 0})

	sink := &recordingSink{transforms: make(map[uint32]Transform)}
	e := ecs.NewECS(world)
	e.AddSystem(NewSmootherSystem(0.1))
	e.AddSystem(NewTransformSystem(sink))
	e.Update()

	if len(sink.transforms) != 2 {
		t.Fatalf("sink received %d transforms, want 2", len(sink.transforms))
	}
	got := sink.transforms[1]
	want := 10 * (1 - math.Exp(-0.5))
	if math.Abs(got.Position.X()-want) > 1e-9 {
		t.Errorf("pawn 1 x = %v, want %v", got.Position.X(), want)
	}
	if got.ArmLength != 1800 {
		t.Errorf("pawn 1 arm length = %v, want 1800", got.ArmLength)
	}
	if sink.transforms[2].Position != (mgl64.Vec3{}) {
		t.Errorf("pawn 2 moved: %v", sink.transforms[2].Position)
	}
}

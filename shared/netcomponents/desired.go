package netcomponents

import (
	"github.com/automoto/rtspawn/shared/gamemath"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
)

// NetDesiredPositionData is the target position. It travels on the explicit
// broadcast path only and is never part of the periodic sync.
type NetDesiredPositionData struct {
	X, Y, Z float64
}

var NetDesiredPosition = donburi.NewComponentType[NetDesiredPositionData]()

// NetDesiredViewData is the target yaw and camera arm length, replicated by
// the periodic sync.
type NetDesiredViewData struct {
	Yaw  float64
	Zoom float64
}

var NetDesiredView = donburi.NewComponentType[NetDesiredViewData]()

// Desired reads an entry's desired state from its two components.
func Desired(entry *donburi.Entry) gamemath.DesiredState {
	pos := NetDesiredPosition.Get(entry)
	view := NetDesiredView.Get(entry)
	return gamemath.DesiredState{
		Position: mgl64.Vec3{pos.X, pos.Y, pos.Z},
		Yaw:      view.Yaw,
		Zoom:     view.Zoom,
	}
}

// SetDesired writes a desired state back into an entry's components.
func SetDesired(entry *donburi.Entry, ds gamemath.DesiredState) {
	SetDesiredPosition(entry, ds.Position)
	NetDesiredView.SetValue(entry, NetDesiredViewData{Yaw: ds.Yaw, Zoom: ds.Zoom})
}

func SetDesiredPosition(entry *donburi.Entry, pos mgl64.Vec3) {
	NetDesiredPosition.SetValue(entry, NetDesiredPositionData{X: pos.X(), Y: pos.Y(), Z: pos.Z()})
}

package netcomponents

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
)

// LiveStateData is the pawn's rendered position, yaw and camera arm length.
// Every participant owns its own copy; it is never sent over the network.
type LiveStateData struct {
	Position mgl64.Vec3
	Yaw      float64 // normalised to (-180, 180]
	Zoom     float64
}

var LiveState = donburi.NewComponentType[LiveStateData]()

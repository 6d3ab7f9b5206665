package tags

import "github.com/yohamta/donburi"

var (
	Pawn = donburi.NewTag().SetName("Pawn")
)

package scenes

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/yohamta/donburi/ecs"
)

const layerDefault ecs.LayerID = iota

var (
	colorBackground = color.RGBA{20, 20, 30, 255}
	colorGrid       = color.RGBA{40, 40, 55, 255}
	colorText       = color.RGBA{230, 230, 230, 255}
	colorLocal      = color.RGBA{80, 220, 120, 255}
)

var pawnColors = []color.RGBA{
	{90, 160, 255, 255},
	{240, 90, 90, 255},
	{220, 200, 80, 255},
	{190, 110, 230, 255},
	{80, 210, 210, 255},
}

// SceneChanger allows scenes to trigger transitions
type SceneChanger interface {
	ChangeScene(scene interface{})
}

func drawText(screen *ebiten.Image, s string, face text.Face, x, y float64, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, s, face, op)
}

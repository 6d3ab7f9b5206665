package scenes

import (
	"fmt"
	"math"
	"sync"

	"github.com/automoto/rtspawn/config"
	"github.com/automoto/rtspawn/fonts"
	"github.com/automoto/rtspawn/logging"
	"github.com/automoto/rtspawn/network"
	"github.com/automoto/rtspawn/shared/netcomponents"
	"github.com/automoto/rtspawn/systems"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/ecs"
	"go.uber.org/zap"
)

const (
	pawnSize   = 60.0 // world units
	gridStep   = 300.0
	facingSize = 1.5 // multiples of pawnSize
)

// PawnScene is the joined view: it mirrors the host's pawns, turns keyboard
// and wheel input into intents for the local pawn and draws everything top
// down around the local pawn's camera.
type PawnScene struct {
	ecs          *ecs.ECS
	sceneChanger SceneChanger
	cfg          *config.Config
	netClient    *network.Client
	replicator   *systems.Replicator
	intents      *systems.IntentProcessor
	predictions  *network.PredictionLog
	transforms   map[uint32]systems.Transform
	once         sync.Once
	log          *zap.SugaredLogger
}

func NewPawnScene(sc SceneChanger, cfg *config.Config, client *network.Client) *PawnScene {
	return &PawnScene{
		sceneChanger: sc,
		cfg:          cfg,
		netClient:    client,
		predictions:  &network.PredictionLog{},
		transforms:   make(map[uint32]systems.Transform),
		log:          logging.Named("pawn-scene"),
	}
}

func (ps *PawnScene) Update() {
	ps.once.Do(ps.configure)

	state := ps.netClient.State()
	if state == network.StateDisconnected || state == network.StateError {
		ps.log.Infow("disconnected, returning to browser", "error", ps.netClient.LastError())
		ps.netClient.Disconnect()
		ps.sceneChanger.ChangeScene(NewServerBrowserScene(ps.sceneChanger, ps.cfg))
		return
	}

	ps.netClient.Sync(ps.replicator, ps.predictions)
	ps.ecs.Update()
}

func (ps *PawnScene) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)

	if ps.ecs == nil {
		return
	}
	ps.ecs.Draw(screen)
}

func (ps *PawnScene) configure() {
	world := donburi.NewWorld()
	ps.ecs = ecs.NewECS(world)

	ps.replicator = systems.NewReplicator(world, ps.netClient.Replication(), nil)
	ps.intents = systems.NewClientProcessor(world, ps.netClient, ps.predictions)

	ps.ecs.AddSystem(ps.updateInput)
	ps.ecs.AddSystem(systems.NewSmootherSystem(1 / float64(ebiten.TPS())))
	ps.ecs.AddSystem(systems.NewTransformSystem(ps))
	ps.ecs.AddRenderer(layerDefault, ps.drawGrid)
	ps.ecs.AddRenderer(layerDefault, ps.drawPawns)
	ps.ecs.AddRenderer(layerDefault, ps.drawHUD)

	ps.log.Infow("joined",
		"server", ps.netClient.ServerName(), "pawn", ps.netClient.PawnID(),
		"replication", ps.netClient.Replication())
}

// ApplyTransform records the smoothed transform the renderer draws.
func (ps *PawnScene) ApplyTransform(pawnID uint32, t systems.Transform) {
	ps.transforms[pawnID] = t
}

func (ps *PawnScene) updateInput(e *ecs.ECS) {
	local := ps.netClient.PawnID()
	if _, ok := systems.FindPawn(e.World, local); !ok {
		return
	}

	var move mgl64.Vec2
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		move[0]++
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		move[0]--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		move[1]++
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		move[1]--
	}
	if move != (mgl64.Vec2{}) {
		ps.send(ps.intents.Move(local, move))
	}

	var rotate float64
	if ebiten.IsKeyPressed(ebiten.KeyE) {
		rotate++
	}
	if ebiten.IsKeyPressed(ebiten.KeyQ) {
		rotate--
	}
	if rotate != 0 {
		ps.send(ps.intents.Rotate(local, rotate))
	}

	if _, dy := ebiten.Wheel(); dy != 0 {
		ps.send(ps.intents.Zoom(local, -dy))
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		ps.netClient.Disconnect()
	}
}

func (ps *PawnScene) send(err error) {
	if err != nil {
		ps.log.Debugw("intent not sent", "error", err)
	}
}

// camera returns the world point at the screen centre and the world units per
// pixel, both following the local pawn's live transform.
func (ps *PawnScene) camera() (mgl64.Vec3, float64) {
	scale := ps.cfg.Viewer.WorldScale
	t, ok := ps.transforms[ps.netClient.PawnID()]
	if !ok {
		return mgl64.Vec3{}, scale
	}
	initial := ps.netClient.Tuning().InitialZoom
	if initial > 0 {
		scale *= t.ArmLength / initial
	}
	return t.Position, scale
}

func (ps *PawnScene) toScreen(screen *ebiten.Image, p mgl64.Vec3) (float32, float32) {
	center, scale := ps.camera()
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	x := float64(w)/2 + (p.X()-center.X())/scale
	y := float64(h)/2 - (p.Y()-center.Y())/scale
	return float32(x), float32(y)
}

func (ps *PawnScene) drawGrid(_ *ecs.ECS, screen *ebiten.Image) {
	center, scale := ps.camera()
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	halfW, halfH := w/2*scale, h/2*scale

	for x := math.Floor((center.X()-halfW)/gridStep) * gridStep; x <= center.X()+halfW; x += gridStep {
		sx, _ := ps.toScreen(screen, mgl64.Vec3{x, 0, 0})
		vector.StrokeLine(screen, sx, 0, sx, float32(h), 1, colorGrid, false)
	}
	for y := math.Floor((center.Y()-halfH)/gridStep) * gridStep; y <= center.Y()+halfH; y += gridStep {
		_, sy := ps.toScreen(screen, mgl64.Vec3{0, y, 0})
		vector.StrokeLine(screen, 0, sy, float32(w), sy, 1, colorGrid, false)
	}
}

func (ps *PawnScene) drawPawns(e *ecs.ECS, screen *ebiten.Image) {
	_, scale := ps.camera()
	size := float32(pawnSize / scale)
	small := fonts.Small.Get()
	colorIndex := 0

	systems.PawnQuery.Each(e.World, func(entry *donburi.Entry) {
		id := systems.PawnID(entry)
		pawn := netcomponents.NetPawn.Get(entry)

		rectColor := colorLocal
		if !pawn.IsLocal {
			rectColor = pawnColors[colorIndex%len(pawnColors)]
			colorIndex++
		}

		// Desired position as an outline ghost.
		desired := netcomponents.Desired(entry)
		gx, gy := ps.toScreen(screen, desired.Position)
		vector.StrokeRect(screen, gx-size/2, gy-size/2, size, size, 1, rectColor, false)

		t, ok := ps.transforms[id]
		if !ok {
			return
		}
		x, y := ps.toScreen(screen, t.Position)
		vector.FillRect(screen, x-size/2, y-size/2, size, size, rectColor, false)

		rad := mgl64.DegToRad(t.Yaw)
		fx := x + float32(math.Cos(rad))*size*facingSize
		fy := y - float32(math.Sin(rad))*size*facingSize
		vector.StrokeLine(screen, x, y, fx, fy, 2, colorText, false)

		label := fmt.Sprintf("%d %s", id, pawn.Owner)
		drawText(screen, label, small, float64(x-size/2), float64(y+size/2+2), colorText)
	})
}

func (ps *PawnScene) drawHUD(e *ecs.ECS, screen *ebiten.Image) {
	face := fonts.Small.Get()
	lines := []string{
		fmt.Sprintf("%s  (%s)", ps.netClient.ServerName(), ps.netClient.Replication()),
		fmt.Sprintf("pawn %d  pawns %d  TPS %.0f", ps.netClient.PawnID(), systems.PawnQuery.Count(e.World), ebiten.ActualTPS()),
		fmt.Sprintf("prediction error last %.1f max %.1f  pending %d",
			ps.predictions.LastError(), ps.predictions.MaxError(), len(ps.predictions.Pending())),
	}
	if t, ok := ps.transforms[ps.netClient.PawnID()]; ok {
		lines = append(lines, fmt.Sprintf("pos %.0f,%.0f  yaw %.1f  arm %.0f",
			t.Position.X(), t.Position.Y(), t.Yaw, t.ArmLength))
	}
	lines = append(lines, "WASD move  Q/E rotate  wheel zoom  Esc leave")

	for i, line := range lines {
		drawText(screen, line, face, 10, float64(10+i*16), colorText)
	}
}

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/automoto/rtspawn/config"
	"github.com/automoto/rtspawn/fonts"
	"github.com/automoto/rtspawn/logging"
	"github.com/automoto/rtspawn/scenes"
	"github.com/automoto/rtspawn/shared/protocol"
	"github.com/hajimehoshi/ebiten/v2"
)

type Scene interface {
	Update()
	Draw(screen *ebiten.Image)
}

type Game struct {
	cfg   *config.Config
	scene Scene
}

// ChangeScene switches to a new scene
func (g *Game) ChangeScene(scene interface{}) {
	g.scene = scene.(Scene)
}

func NewGame(cfg *config.Config) *Game {
	g := &Game{cfg: cfg}
	g.scene = scenes.NewServerBrowserScene(g, cfg)
	return g
}

func (g *Game) Update() error {
	g.scene.Update()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
}

func (g *Game) Layout(width, height int) (int, int) {
	return g.cfg.Viewer.Width, g.cfg.Viewer.Height
}

func main() {
	configPath := flag.String("config", "", "YAML config file (empty = built-in defaults)")
	address := flag.String("address", "", "Host address to offer for direct connect (default: last used)")
	name := flag.String("name", "", "Player name (default: last used)")
	masterURL := flag.String("master", "", "Master server URL for the server list")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *masterURL != "" {
		cfg.Master.URL = *masterURL
	}

	if err := logging.Init(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()
	log := logging.Named("viewer")

	// Register network components for client-side deserialization
	if err := protocol.RegisterComponents(); err != nil {
		log.Fatalw("failed to register network components", "error", err)
	}
	if err := fonts.LoadDefaults(); err != nil {
		log.Fatalw("failed to load fonts", "error", err)
	}

	addr, playerName := cfg.Net.Address, cfg.Viewer.PlayerName
	if err := scenes.InitPersistence(); err != nil {
		log.Warnw("could not initialize persistence", "error", err)
	} else if saved := scenes.LoadSettings(); saved != nil {
		if saved.Address != "" {
			addr = saved.Address
		}
		if saved.PlayerName != "" {
			playerName = saved.PlayerName
		}
	}
	if *address != "" {
		addr = *address
	}
	if *name != "" {
		playerName = *name
	}
	cfg.Net.Address = addr
	cfg.Viewer.PlayerName = playerName

	ebiten.SetWindowSize(cfg.Viewer.Width, cfg.Viewer.Height)
	ebiten.SetWindowTitle("rtspawn")
	ebiten.SetRunnableOnUnfocused(true)

	if err := ebiten.RunGame(NewGame(cfg)); err != nil {
		log.Fatalw("game exited", "error", err)
	}
}

package core

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

type GameLoop struct {
	server       *Server
	tickRate     int
	syncInterval int // ticks between periodic syncs
	ticks        uint64
	stopChan     chan struct{}
	log          *zap.SugaredLogger
}

func NewGameLoop(server *Server, tickRate, syncRate int) *GameLoop {
	interval := 1
	if syncRate > 0 && syncRate < tickRate {
		interval = tickRate / syncRate
	}
	return &GameLoop{
		server:       server,
		tickRate:     tickRate,
		syncInterval: interval,
		stopChan:     make(chan struct{}),
		log:          server.log.Named("loop"),
	}
}

func (g *GameLoop) Run() {
	defer sentry.Recover()

	ticker := time.NewTicker(time.Second / time.Duration(g.tickRate))
	defer ticker.Stop()

	g.log.Infow("game loop started", "tickRate", g.tickRate, "syncEvery", g.syncInterval)

	for {
		select {
		case <-g.stopChan:
			g.log.Info("game loop stopped")
			return
		case <-ticker.C:
			g.safeTick()
		}
	}
}

func (g *GameLoop) Stop() {
	close(g.stopChan)
}

// safeTick runs one tick, reporting a panic to sentry instead of killing the
// loop.
func (g *GameLoop) safeTick() {
	defer func() {
		if err := recover(); err != nil {
			g.log.Errorw("tick panic", "tick", g.ticks, "panic", err)
			hub := sentry.CurrentHub().Clone()
			hub.ConfigureScope(func(scope *sentry.Scope) {
				scope.SetTag("component", "game_loop")
				scope.SetTag("tick", fmt.Sprint(g.ticks))
			})
			hub.Recover(err)
			hub.Flush(2 * time.Second)
		}
	}()
	g.tick()
}

func (g *GameLoop) tick() {
	g.ticks++
	g.server.Tick(1 / float64(g.tickRate))

	if g.ticks%uint64(g.syncInterval) == 0 {
		if err := g.server.Sync(); err != nil {
			g.log.Warnw("sync error", "error", err)
		}
	}
}

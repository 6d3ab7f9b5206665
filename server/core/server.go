package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/automoto/rtspawn/config"
	"github.com/automoto/rtspawn/logging"
	"github.com/automoto/rtspawn/shared/gamemath"
	"github.com/automoto/rtspawn/shared/messages"
	"github.com/automoto/rtspawn/shared/netcomponents"
	"github.com/automoto/rtspawn/systems"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/leap-fish/necs/esync/srvsync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
	"github.com/yohamta/donburi"
	"go.uber.org/zap"
)

const (
	commandBufferSize = 1024
	spawnSpacing      = 300.0
)

// Peer is one connected client. *router.NetworkClient satisfies it.
type Peer interface {
	Id() string
	SendMessage(msg any) error
}

type session struct {
	peer   Peer
	name   string
	pawnID uint32 // zero until joined
}

// Server is the authoritative host. Router callbacks only enqueue commands;
// the game loop goroutine is the single writer of the world.
type Server struct {
	cfg        *config.Config
	world      donburi.World
	loop       *GameLoop
	transport  *transports.WsServerTransport
	replicator *systems.Replicator
	intents    *systems.IntentProcessor
	tuning     gamemath.Tuning

	commands chan func()

	// sessions is keyed by peer ID in connection order. Only the game loop
	// writes it; mu guards reads from other goroutines.
	sessions   *orderedmap.OrderedMap[string, *session]
	mu         sync.RWMutex
	nextPawnID uint32

	// syncFn publishes the periodic view sync. srvsync.DoSync by default.
	syncFn func() error

	log *zap.SugaredLogger
}

// Option customises a Server.
type Option func(*Server)

// WithAuthorizer installs an authorizer for remote intents. It is built
// against the server's world so predicates such as systems.OwnerOnly can read
// pawn ownership.
func WithAuthorizer(build func(world donburi.World) systems.Authorizer) Option {
	return func(s *Server) {
		s.intents = systems.NewHostProcessor(s.world, s.replicator, build(s.world))
	}
}

// WithSyncFunc replaces the periodic view publisher.
func WithSyncFunc(fn func() error) Option {
	return func(s *Server) {
		s.syncFn = fn
	}
}

// NewServer creates a host for cfg. cfg must already be validated.
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	mode, err := systems.ParseReplicationMode(cfg.Net.Replication)
	if err != nil {
		return nil, err
	}

	world := donburi.NewWorld()
	s := &Server{
		cfg:      cfg,
		world:    world,
		tuning:   cfg.Pawn.Tuning(),
		commands: make(chan func(), commandBufferSize),
		sessions: orderedmap.NewOrderedMap[string, *session](),
		syncFn:   srvsync.DoSync,
		log:      logging.Named("server"),
	}
	s.replicator = systems.NewReplicator(world, mode, s)
	s.intents = systems.NewHostProcessor(world, s.replicator, systems.AcceptAll)
	for _, opt := range opts {
		opt(s)
	}
	s.loop = NewGameLoop(s, cfg.Net.TickRate, cfg.Net.SyncRate)

	// Set up the world for esync
	srvsync.UseEsync(world)

	return s, nil
}

// Start registers the router callbacks, starts the game loop and blocks
// serving websocket connections on the configured port.
func (s *Server) Start() error {
	s.setupRouterCallbacks()

	go s.loop.Run()

	s.transport = transports.NewWsServerTransport(s.cfg.Net.Port, "", nil)
	return s.transport.Start()
}

// Stop gracefully shuts down the game loop.
func (s *Server) Stop() {
	s.loop.Stop()
}

func (s *Server) setupRouterCallbacks() {
	router.OnConnect(func(client *router.NetworkClient) {
		s.OnConnect(client)
	})

	router.OnDisconnect(func(client *router.NetworkClient, err error) {
		s.OnDisconnect(client, err)
	})

	router.On(func(client *router.NetworkClient, req messages.JoinRequest) {
		s.OnJoin(client, req)
	})

	router.On(func(client *router.NetworkClient, req messages.IntentRequest) {
		s.OnIntent(client, req)
	})

	router.OnError(func(client *router.NetworkClient, err error) {
		s.log.Errorw("client error", "client", client.Id(), "error", err)
	})
}

// enqueue hands work to the game loop. It blocks when the queue is full so
// no reliable message is dropped.
func (s *Server) enqueue(cmd func()) {
	s.commands <- cmd
}

// ProcessCommands runs every queued command. Called by the game loop each tick.
func (s *Server) ProcessCommands() {
	for {
		select {
		case cmd := <-s.commands:
			cmd()
		default:
			return
		}
	}
}

func (s *Server) OnConnect(peer Peer) {
	s.log.Infow("client connected", "client", peer.Id())
	s.enqueue(func() {
		s.mu.Lock()
		s.sessions.Set(peer.Id(), &session{peer: peer})
		s.mu.Unlock()
	})
}

func (s *Server) OnDisconnect(peer Peer, err error) {
	if err != nil {
		s.log.Infow("client disconnected", "client", peer.Id(), "error", err)
	} else {
		s.log.Infow("client disconnected", "client", peer.Id())
	}
	s.enqueue(func() { s.handleDisconnect(peer) })
}

func (s *Server) OnJoin(peer Peer, req messages.JoinRequest) {
	s.enqueue(func() { s.handleJoin(peer, req) })
}

func (s *Server) OnIntent(peer Peer, req messages.IntentRequest) {
	s.enqueue(func() { s.handleIntent(peer, req) })
}

func (s *Server) handleJoin(peer Peer, req messages.JoinRequest) {
	sess, ok := s.sessions.Get(peer.Id())
	if !ok {
		s.log.Warnw("join from unknown client", "client", peer.Id())
		return
	}
	if sess.pawnID != 0 {
		return
	}

	if want := s.cfg.Net.Version; want != "" && req.Version != want {
		s.reject(peer, fmt.Sprintf("version mismatch: server requires %s", want))
		return
	}
	if s.PlayerCount() >= s.cfg.Net.MaxPlayers {
		s.reject(peer, "server full")
		return
	}

	s.nextPawnID++
	id := s.nextPawnID
	name := s.uniqueName(req.PlayerName, id)

	entry := systems.SpawnPawn(s.world, systems.PawnSpec{
		ID:    id,
		Owner: name,
		Desired: gamemath.DesiredState{
			Position: spawnPoint(id),
			Zoom:     s.tuning.InitialZoom,
		},
		Tuning: s.tuning,
	})

	entity := entry.Entity()
	if err := srvsync.NetworkSync(s.world, &entity,
		netcomponents.NetPawn,
		netcomponents.NetDesiredView,
	); err != nil {
		s.log.Errorw("failed to set up network sync", "pawn", id, "error", err)
		s.world.Remove(entity)
		s.reject(peer, "internal error")
		return
	}

	s.mu.Lock()
	sess.name = name
	sess.pawnID = id
	s.mu.Unlock()

	s.send(peer, messages.JoinAccepted{
		PawnID:      id,
		ServerName:  s.cfg.Net.ServerName,
		TickRate:    s.cfg.Net.TickRate,
		SyncRate:    s.cfg.Net.SyncRate,
		Replication: s.cfg.Net.Replication,
		Tuning:      messages.NewTuningData(s.tuning),
	})

	// The newcomer learns every pawn, its own included; everyone else learns
	// the newcomer.
	systems.PawnQuery.Each(s.world, func(e *donburi.Entry) {
		s.send(peer, systems.SpawnEvent(e))
	})
	spawn := systems.SpawnEvent(entry)
	for el := s.sessions.Front(); el != nil; el = el.Next() {
		if el.Key != peer.Id() && el.Value.pawnID != 0 {
			s.send(el.Value.peer, spawn)
		}
	}

	s.log.Infow("player joined", "client", peer.Id(), "name", name, "pawn", id)
}

func (s *Server) handleIntent(peer Peer, req messages.IntentRequest) {
	sess, ok := s.sessions.Get(peer.Id())
	if !ok || sess.pawnID == 0 {
		s.log.Debugw("intent before join", "client", peer.Id())
		return
	}
	if err := s.intents.HandleRemoteIntent(sess.name, req); err != nil {
		if !errors.Is(err, systems.ErrRejected) {
			s.log.Warnw("intent failed", "client", peer.Id(), "pawn", req.PawnID, "error", err)
		}
	}
}

func (s *Server) handleDisconnect(peer Peer) {
	sess, ok := s.sessions.Get(peer.Id())
	if !ok {
		return
	}
	s.mu.Lock()
	s.sessions.Delete(peer.Id())
	s.mu.Unlock()

	if sess.pawnID == 0 {
		return
	}
	if systems.RemovePawn(s.world, sess.pawnID) {
		s.log.Infow("pawn removed", "client", peer.Id(), "pawn", sess.pawnID)
	}
	s.broadcast(messages.PawnDespawnEvent{PawnID: sess.pawnID})
}

func (s *Server) reject(peer Peer, reason string) {
	s.log.Infow("join rejected", "client", peer.Id(), "reason", reason)
	s.send(peer, messages.JoinRejected{Reason: reason})
}

// uniqueName returns name, or a variant of it no joined player uses yet.
func (s *Server) uniqueName(name string, id uint32) string {
	if name == "" {
		name = fmt.Sprintf("player-%d", id)
	}
	candidate := name
	for n := 2; s.nameTaken(candidate); n++ {
		candidate = fmt.Sprintf("%s#%d", name, n)
	}
	return candidate
}

func (s *Server) nameTaken(name string) bool {
	for el := s.sessions.Front(); el != nil; el = el.Next() {
		if el.Value.pawnID != 0 && el.Value.name == name {
			return true
		}
	}
	return false
}

// spawnPoint places pawns along the X axis so they never start stacked.
func spawnPoint(id uint32) mgl64.Vec3 {
	return mgl64.Vec3{float64(id-1) * spawnSpacing, 0, 0}
}

func (s *Server) send(peer Peer, msg any) {
	if err := peer.SendMessage(msg); err != nil {
		s.log.Warnw("send failed", "client", peer.Id(), "message", fmt.Sprintf("%T", msg), "error", err)
	}
}

// broadcast sends msg to every joined client and returns all send errors.
// Failed sends are not retried.
func (s *Server) broadcast(msg any) error {
	var errs []error
	for el := s.sessions.Front(); el != nil; el = el.Next() {
		if el.Value.pawnID == 0 {
			continue
		}
		if err := el.Value.peer.SendMessage(msg); err != nil {
			errs = append(errs, fmt.Errorf("client %s: %w", el.Key, err))
		}
	}
	return errors.Join(errs...)
}

// BroadcastDesiredPosition implements systems.Downlink.
func (s *Server) BroadcastDesiredPosition(evt messages.DesiredPositionEvent) error {
	return s.broadcast(evt)
}

// BroadcastDesiredState implements systems.Downlink.
func (s *Server) BroadcastDesiredState(evt messages.DesiredStateEvent) error {
	return s.broadcast(evt)
}

// PublishViews implements systems.Downlink. esync reads the synced components
// straight from the world, so views is only used for logging.
func (s *Server) PublishViews(views []messages.ViewSync) error {
	if err := s.syncFn(); err != nil {
		return fmt.Errorf("sync %d views: %w", len(views), err)
	}
	return nil
}

// Tick advances the host by one fixed step. It must only be called from the
// game loop goroutine, or from tests that own the server exclusively.
func (s *Server) Tick(dt float64) {
	s.ProcessCommands()
	systems.SmoothAll(s.world, dt)
}

// Sync runs one periodic replication round.
func (s *Server) Sync() error {
	return s.replicator.PeriodicSync()
}

// World returns the ECS world
func (s *Server) World() donburi.World {
	return s.world
}

// PlayerCount returns the number of joined players
func (s *Server) PlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for el := s.sessions.Front(); el != nil; el = el.Next() {
		if el.Value.pawnID != 0 {
			n++
		}
	}
	return n
}

// Players lists joined player names in connection order.
func (s *Server) Players() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var names []string
	for el := s.sessions.Front(); el != nil; el = el.Next() {
		if el.Value.pawnID != 0 {
			names = append(names, el.Value.name)
		}
	}
	return names
}

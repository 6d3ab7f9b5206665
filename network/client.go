package network

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/automoto/rtspawn/logging"
	"github.com/automoto/rtspawn/shared/gamemath"
	"github.com/automoto/rtspawn/shared/messages"
	"github.com/automoto/rtspawn/shared/netcomponents"
	"github.com/automoto/rtspawn/systems"
	"github.com/coder/websocket"
	"github.com/leap-fish/necs/esync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
	"go.uber.org/zap"
)

// ErrNotConnected is returned when sending without an open connection.
var ErrNotConnected = errors.New("not connected")

type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
	StateJoinedGame
	StateError
)

func (s ClientState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateJoinedGame:
		return "joined"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("ClientState(%d)", int(s))
	}
}

// Client manages a WebSocket connection to the host.
// All shared fields are protected by mu (router callbacks run on necs goroutines).
type Client struct {
	mu sync.RWMutex

	state       ClientState
	lastError   error
	pawnID      uint32
	serverName  string
	tickRate    int
	syncRate    int
	replication string
	tuning      gamemath.Tuning
	conn        *websocket.Conn

	// Reliable host events in arrival order. Unbounded so router callbacks
	// never block the connection reader while the game loop is paused.
	eventsMu sync.Mutex
	events   []any

	snapshotCh chan esync.WorldSnapshot // size-1 buffered; latest wins

	log *zap.SugaredLogger
}

func NewClient() *Client {
	return &Client{
		state:      StateDisconnected,
		snapshotCh: make(chan esync.WorldSnapshot, 1),
		log:        logging.Named("client"),
	}
}

// Connect dials the host in a background goroutine and initiates the join handshake.
func (c *Client) Connect(address, version, playerName string) {
	c.mu.Lock()
	c.state = StateConnecting
	c.lastError = nil
	c.mu.Unlock()

	router.OnConnect(func(_ *router.NetworkClient) {
		c.log.Infow("connected to host", "address", address)
		c.mu.Lock()
		c.state = StateConnected
		c.mu.Unlock()

		err := c.SendMessage(messages.JoinRequest{
			Version:    version,
			PlayerName: playerName,
		})
		if err != nil {
			c.setError(fmt.Errorf("failed to send join request: %w", err))
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinAccepted) {
		c.log.Infow("join accepted",
			"pawn", msg.PawnID, "server", msg.ServerName,
			"tickRate", msg.TickRate, "replication", msg.Replication)
		c.mu.Lock()
		c.pawnID = msg.PawnID
		c.serverName = msg.ServerName
		c.tickRate = msg.TickRate
		c.syncRate = msg.SyncRate
		c.replication = msg.Replication
		c.tuning = msg.Tuning.Tuning()
		c.state = StateJoinedGame
		c.mu.Unlock()
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinRejected) {
		c.log.Warnw("join rejected", "reason", msg.Reason)
		c.setError(fmt.Errorf("join rejected: %s", msg.Reason))
	})

	router.On(func(_ *router.NetworkClient, evt messages.PawnSpawnEvent) {
		c.pushEvent(evt)
	})

	router.On(func(_ *router.NetworkClient, evt messages.PawnDespawnEvent) {
		c.pushEvent(evt)
	})

	router.On(func(_ *router.NetworkClient, evt messages.DesiredPositionEvent) {
		c.pushEvent(evt)
	})

	router.On(func(_ *router.NetworkClient, evt messages.DesiredStateEvent) {
		c.pushEvent(evt)
	})

	router.On(func(_ *router.NetworkClient, snapshot esync.WorldSnapshot) {
		select { // drain stale, push latest
		case <-c.snapshotCh:
		default:
		}
		c.snapshotCh <- snapshot
	})

	router.OnDisconnect(func(_ *router.NetworkClient, err error) {
		c.log.Infow("disconnected", "error", err)
		c.mu.Lock()
		if c.state != StateError {
			c.state = StateDisconnected
		}
		c.conn = nil
		c.mu.Unlock()
	})

	router.OnError(func(_ *router.NetworkClient, err error) {
		c.log.Errorw("router error", "error", err)
	})

	go func() {
		transport := transports.NewWsClientTransport("ws://" + address)
		err := transport.Start(func(conn *websocket.Conn) {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
		})
		if err != nil {
			c.setError(fmt.Errorf("connection failed: %w", err))
		}
	}()
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.state = StateDisconnected
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.CloseNow()
	}

	router.ResetRouter()
}

func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// PawnID is the pawn the host assigned this client. Zero before joining.
func (c *Client) PawnID() uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pawnID
}

func (c *Client) ServerName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverName
}

func (c *Client) TickRate() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tickRate
}

func (c *Client) SyncRate() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.syncRate
}

// Replication returns the host's replication mode.
func (c *Client) Replication() systems.ReplicationMode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	mode, err := systems.ParseReplicationMode(c.replication)
	if err != nil {
		return systems.ReplicationSplit
	}
	return mode
}

// Tuning returns the pawn constants announced by the host.
func (c *Client) Tuning() gamemath.Tuning {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tuning
}

// LatestSnapshot returns the most recent WorldSnapshot, or nil. Non-blocking.
func (c *Client) LatestSnapshot() *esync.WorldSnapshot {
	select {
	case snap := <-c.snapshotCh:
		return &snap
	default:
		return nil
	}
}

func (c *Client) SendMessage(msg any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}

	payload, err := router.Serialize(msg)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	return conn.Write(context.Background(), websocket.MessageBinary, payload)
}

// SendIntent forwards an intent to the host.
func (c *Client) SendIntent(req messages.IntentRequest) error {
	return c.SendMessage(req)
}

// Sync applies every queued host event to the observer world, then the
// latest periodic snapshot. It must run on the goroutine that owns the
// replicator's world. predictions may be nil.
func (c *Client) Sync(rep *systems.Replicator, predictions *PredictionLog) {
	local := c.PawnID()
	tuning := c.Tuning()

	for _, evt := range c.takeEvents() {
		if err := applyEvent(rep, evt, local, tuning, predictions); err != nil {
			c.log.Debugw("dropping host event", "event", fmt.Sprintf("%T", evt), "error", err)
		}
	}

	if snap := c.LatestSnapshot(); snap != nil {
		rep.ApplyViews(ViewsFromSnapshot(*snap))
	}
}

func applyEvent(rep *systems.Replicator, evt any, local uint32, tuning gamemath.Tuning, predictions *PredictionLog) error {
	switch e := evt.(type) {
	case messages.PawnSpawnEvent:
		rep.ApplySpawn(e, tuning, e.PawnID == local)
	case messages.PawnDespawnEvent:
		rep.ApplyDespawn(e)
	case messages.DesiredPositionEvent:
		if err := rep.ApplyDesiredPosition(e); err != nil {
			return err
		}
		if e.PawnID == local && predictions != nil {
			predictions.Confirm(e.Position())
		}
	case messages.DesiredStateEvent:
		applied, err := rep.ApplyDesiredState(e)
		if err != nil {
			return err
		}
		if applied && e.PawnID == local && predictions != nil {
			predictions.Confirm(e.Position())
		}
	default:
		return fmt.Errorf("unexpected event %T", evt)
	}
	return nil
}

// ViewsFromSnapshot extracts yaw and zoom per pawn from an esync snapshot.
// Entities missing either component are skipped.
func ViewsFromSnapshot(snapshot esync.WorldSnapshot) []messages.ViewSync {
	var views []messages.ViewSync
	for _, ent := range snapshot {
		var (
			pawn *netcomponents.NetPawnData
			view *netcomponents.NetDesiredViewData
		)
		for _, componentBytes := range ent.State {
			instance, err := esync.Mapper.Deserialize(componentBytes)
			if err != nil {
				continue
			}
			switch v := instance.(type) {
			case netcomponents.NetPawnData:
				pawn = &v
			case netcomponents.NetDesiredViewData:
				view = &v
			}
		}
		if pawn == nil || view == nil {
			continue
		}
		views = append(views, messages.ViewSync{PawnID: pawn.ID, Yaw: view.Yaw, Zoom: view.Zoom})
	}
	return views
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
}

func (c *Client) pushEvent(evt any) {
	c.eventsMu.Lock()
	c.events = append(c.events, evt)
	c.eventsMu.Unlock()
}

func (c *Client) takeEvents() []any {
	c.eventsMu.Lock()
	defer c.eventsMu.Unlock()
	out := c.events
	c.events = nil
	return out
}

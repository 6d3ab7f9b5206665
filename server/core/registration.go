package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/automoto/rtspawn/master"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

const defaultHeartbeatInterval = 30 * time.Second

// PlayerCounter reports the current number of joined players.
type PlayerCounter interface {
	PlayerCount() int
}

// Registration handles registering and heartbeating with the master server.
type Registration struct {
	masterURL  string
	serverID   string
	name       string
	address    string
	version    string
	region     string
	maxPlayers int
	players    PlayerCounter
	client     *http.Client
	interval   time.Duration
	stopCh     chan struct{}
	log        *zap.SugaredLogger
}

func NewRegistration(masterURL, name, address, version, region string, maxPlayers int, players PlayerCounter, log *zap.SugaredLogger) *Registration {
	return &Registration{
		masterURL:  masterURL,
		name:       name,
		address:    address,
		version:    version,
		region:     region,
		maxPlayers: maxPlayers,
		players:    players,
		client:     &http.Client{Timeout: 5 * time.Second},
		interval:   defaultHeartbeatInterval,
		stopCh:     make(chan struct{}),
		log:        log.Named("registration"),
	}
}

// Start registers once and then heartbeats in the background. A failed first
// registration is retried by the heartbeat.
func (r *Registration) Start() {
	if err := r.register(); err != nil {
		r.log.Warnw("initial registration failed", "error", err)
	}
	go r.heartbeatLoop()
}

func (r *Registration) Stop() {
	close(r.stopCh)
}

// ServerID is the ID the master assigned, empty until registered.
func (r *Registration) ServerID() string {
	return r.serverID
}

func (r *Registration) register() error {
	body, err := json.Marshal(master.RegisterRequest{
		Name:       r.name,
		Address:    r.address,
		Players:    r.players.PlayerCount(),
		MaxPlayers: r.maxPlayers,
		Version:    r.version,
		Region:     r.region,
	})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	resp, err := r.client.Post(r.masterURL+"/servers/register", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result master.RegisterResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	r.serverID = result.ID
	r.log.Infow("registered with master", "id", r.serverID)
	return nil
}

func (r *Registration) heartbeatLoop() {
	defer sentry.Recover()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			if err := r.sendHeartbeat(); err != nil {
				r.log.Warnw("heartbeat failed", "error", err)
			}
		}
	}
}

func (r *Registration) sendHeartbeat() error {
	if r.serverID == "" {
		return r.register()
	}

	body, err := json.Marshal(master.HeartbeatRequest{
		ID:      r.serverID,
		Players: r.players.PlayerCount(),
	})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	resp, err := r.client.Post(r.masterURL+"/servers/heartbeat", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		r.log.Info("master lost our registration, re-registering")
		return r.register()
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return nil
}

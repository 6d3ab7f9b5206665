package scenes

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/automoto/rtspawn/config"
	"github.com/automoto/rtspawn/logging"
	"github.com/automoto/rtspawn/master"
	"github.com/automoto/rtspawn/network"
	"github.com/automoto/rtspawn/ui"
	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

type ServerBrowserScene struct {
	sceneChanger SceneChanger
	cfg          *config.Config
	browserUI    *ui.ServerBrowserUI
	netClient    *network.Client
	address      string
	playerName   string
	once         sync.Once

	mu             sync.Mutex
	fetchedServers []master.ServerInfo
	fetchErr       error
	fetchDone      bool
	httpClient     *http.Client

	log *zap.SugaredLogger
}

func NewServerBrowserScene(sc SceneChanger, cfg *config.Config) *ServerBrowserScene {
	return &ServerBrowserScene{
		sceneChanger: sc,
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: 5 * time.Second},
		log:          logging.Named("browser"),
	}
}

func (s *ServerBrowserScene) Update() {
	s.once.Do(s.configure)

	s.browserUI.Update()

	// Apply fetch results on the main goroutine
	s.mu.Lock()
	if s.fetchDone {
		servers := s.fetchedServers
		err := s.fetchErr
		s.fetchDone = false
		s.fetchedServers = nil
		s.fetchErr = nil
		s.mu.Unlock()

		if err != nil {
			s.browserUI.SetBrowseStatus(err.Error())
		} else {
			s.browserUI.SetServerList(servers)
			s.browserUI.SetBrowseStatus(fmt.Sprintf("%d servers", len(servers)))
		}
	} else {
		s.mu.Unlock()
	}

	if s.netClient == nil {
		return
	}

	switch s.netClient.State() {
	case network.StateJoinedGame:
		s.browserUI.SetStatus("Joined!")
		SaveSettings(SavedSettings{Address: s.address, PlayerName: s.playerName})
		s.cfg.Net.Address = s.address
		s.cfg.Viewer.PlayerName = s.playerName
		client := s.netClient
		s.netClient = nil
		s.sceneChanger.ChangeScene(NewPawnScene(s.sceneChanger, s.cfg, client))

	case network.StateError:
		errMsg := "Connection failed"
		if err := s.netClient.LastError(); err != nil {
			errMsg = err.Error()
		}
		s.browserUI.SetStatus(errMsg)
		s.browserUI.SetConnecting(false)
		s.netClient.Disconnect()
		s.netClient = nil

	case network.StateConnecting:
		s.browserUI.SetStatus("Connecting...")

	case network.StateConnected:
		s.browserUI.SetStatus("Connected, joining...")

	case network.StateDisconnected:
		s.browserUI.SetStatus("Disconnected")
		s.browserUI.SetConnecting(false)
		s.netClient = nil
	}
}

func (s *ServerBrowserScene) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)

	if s.browserUI == nil {
		return
	}
	s.browserUI.UI.Draw(screen)
}

func (s *ServerBrowserScene) configure() {
	s.browserUI = ui.NewServerBrowserUI(
		s.cfg.Net.Address,
		s.cfg.Viewer.PlayerName,
		s.onConnect,
		s.fetchServers,
	)
	s.fetchServers()
}

func (s *ServerBrowserScene) onConnect(address, playerName string) {
	if s.netClient != nil {
		s.netClient.Disconnect()
	}

	s.address = address
	s.playerName = playerName
	s.log.Infow("connecting", "address", address, "player", playerName)
	s.browserUI.SetStatus("Connecting...")
	s.browserUI.SetConnecting(true)

	s.netClient = network.NewClient()
	s.netClient.Connect(address, s.cfg.Net.Version, playerName)
}

func (s *ServerBrowserScene) fetchServers() {
	if s.cfg.Master.URL == "" {
		s.browserUI.SetBrowseStatus("No master server configured")
		return
	}
	s.browserUI.SetBrowseStatus("Fetching servers...")
	go s.queryMasterServer()
}

func (s *ServerBrowserScene) queryMasterServer() {
	servers, err := master.FetchServers(context.Background(), s.httpClient, s.cfg.Master.URL)
	if err != nil {
		s.log.Warnw("master server query failed", "error", err)
	}

	s.mu.Lock()
	s.fetchedServers = servers
	s.fetchErr = err
	s.fetchDone = true
	s.mu.Unlock()
}

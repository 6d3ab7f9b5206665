package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/automoto/rtspawn/shared/gamemath"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure returned by Validate.
var ErrInvalid = errors.New("invalid config")

// Replication modes.
const (
	// ReplicationSplit broadcasts position explicitly and leaves yaw and zoom to
	// the periodic sync.
	ReplicationSplit = "split"
	// ReplicationVersioned sends the whole desired state with a per-pawn
	// version on every change.
	ReplicationVersioned = "versioned"
)

// Config is the full runtime configuration shared by every binary.
type Config struct {
	Pawn    PawnConfig    `yaml:"pawn"`
	Net     NetConfig     `yaml:"net"`
	Logging LoggingConfig `yaml:"logging"`
	Sentry  SentryConfig  `yaml:"sentry"`
	Master  MasterConfig  `yaml:"master"`
	Viewer  ViewerConfig  `yaml:"viewer"`
}

// PawnConfig contains the per-pawn movement, rotation and zoom constants.
type PawnConfig struct {
	// Movement
	MovementSpeed  float64 `yaml:"movement_speed"`  // world units per unit of move axis, per intent
	MovementInterp float64 `yaml:"movement_interp"` // decay rate, 1/s

	// Rotation
	RotationSpeed  float64 `yaml:"rotation_speed"` // degrees per unit of rotate axis, per intent
	RotationInterp float64 `yaml:"rotation_interp"`

	// Zoom
	ZoomSpeed   float64 `yaml:"zoom_speed"`
	ZoomInterp  float64 `yaml:"zoom_interp"`
	MinZoom     float64 `yaml:"min_zoom"`
	MaxZoom     float64 `yaml:"max_zoom"`
	InitialZoom float64 `yaml:"initial_zoom"` // camera arm length at spawn

	// Camera rig
	CameraYawOffset float64 `yaml:"camera_yaw_offset"` // degrees added to live yaw to get the movement basis
}

// NetConfig contains host and transport settings.
type NetConfig struct {
	Port        uint   `yaml:"port"`
	Address     string `yaml:"address"` // host:port the viewer dials
	TickRate    int    `yaml:"tick_rate"`
	SyncRate    int    `yaml:"sync_rate"` // periodic yaw/zoom syncs per second
	ServerName  string `yaml:"server_name"`
	Version     string `yaml:"version"` // required client version, empty accepts any
	Replication string `yaml:"replication"`
	MaxPlayers  int    `yaml:"max_players"`
	Region      string `yaml:"region"`
	StatsView   string `yaml:"statsview"` // address for the runtime dashboard, empty disables it
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"` // empty logs to stderr only
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// SentryConfig enables crash reporting when DSN is set.
type SentryConfig struct {
	DSN         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
}

// MasterConfig points a host at the master server.
type MasterConfig struct {
	URL        string `yaml:"url"` // empty disables registration
	Port       int    `yaml:"port"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// ViewerConfig contains window settings for the viewer.
type ViewerConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	PlayerName string  `yaml:"player_name"`
	WorldScale float64 `yaml:"world_scale"` // world units per screen pixel at the initial arm length
}

// Default returns the stock configuration.
func Default() *Config {
	t := gamemath.DefaultTuning()
	return &Config{
		Pawn: PawnConfig{
			MovementSpeed:   t.MovementSpeed,
			MovementInterp:  t.MovementInterp,
			RotationSpeed:   t.RotationSpeed,
			RotationInterp:  t.RotationInterp,
			ZoomSpeed:       t.ZoomSpeed,
			ZoomInterp:      t.ZoomInterp,
			MinZoom:         t.MinZoom,
			MaxZoom:         t.MaxZoom,
			InitialZoom:     t.InitialZoom,
			CameraYawOffset: t.CameraYawOffset,
		},
		Net: NetConfig{
			Port:        7373,
			Address:     "localhost:7373",
			TickRate:    30,
			SyncRate:    10,
			ServerName:  "RTS Pawn Server",
			Replication: ReplicationSplit,
			MaxPlayers:  16,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		Master: MasterConfig{
			Port:       8080,
			TTLSeconds: 90,
		},
		Viewer: ViewerConfig{
			Width:      1280,
			Height:     720,
			PlayerName: "player",
			WorldScale: 4,
		},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads path when it is non-empty, otherwise returns Default.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks the invariants the simulation relies on.
func (c *Config) Validate() error {
	p := c.Pawn
	switch {
	case p.MovementInterp <= 0, p.RotationInterp <= 0, p.ZoomInterp <= 0:
		return fmt.Errorf("%w: interpolation rates must be positive", ErrInvalid)
	case !(p.MinZoom > 0): // zero is the unset marker for a spawn zoom; also rejects NaN
		return fmt.Errorf("%w: min_zoom %.1f must be positive", ErrInvalid, p.MinZoom)
	case p.MinZoom > p.MaxZoom:
		return fmt.Errorf("%w: min_zoom %.1f exceeds max_zoom %.1f", ErrInvalid, p.MinZoom, p.MaxZoom)
	case p.InitialZoom < p.MinZoom || p.InitialZoom > p.MaxZoom:
		return fmt.Errorf("%w: initial_zoom %.1f outside [%.1f, %.1f]", ErrInvalid, p.InitialZoom, p.MinZoom, p.MaxZoom)
	}

	n := c.Net
	switch {
	case n.TickRate <= 0:
		return fmt.Errorf("%w: tick_rate must be positive", ErrInvalid)
	case n.SyncRate <= 0 || n.SyncRate > n.TickRate:
		return fmt.Errorf("%w: sync_rate %d must be in (0, tick_rate=%d]", ErrInvalid, n.SyncRate, n.TickRate)
	case n.Replication != ReplicationSplit && n.Replication != ReplicationVersioned:
		return fmt.Errorf("%w: unknown replication mode %q", ErrInvalid, n.Replication)
	}
	return nil
}

// Tuning converts the pawn section into the form the apply routine uses.
func (p PawnConfig) Tuning() gamemath.Tuning {
	return gamemath.Tuning{
		MovementSpeed:   p.MovementSpeed,
		MovementInterp:  p.MovementInterp,
		RotationSpeed:   p.RotationSpeed,
		RotationInterp:  p.RotationInterp,
		ZoomSpeed:       p.ZoomSpeed,
		ZoomInterp:      p.ZoomInterp,
		MinZoom:         p.MinZoom,
		MaxZoom:         p.MaxZoom,
		InitialZoom:     p.InitialZoom,
		CameraYawOffset: p.CameraYawOffset,
	}
}

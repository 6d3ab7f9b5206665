package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rtspawn.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	tuning := cfg.Pawn.Tuning()
	if tuning.MovementSpeed != 30 || tuning.MinZoom != 500 || tuning.MaxZoom != 2800 {
		t.Fatalf("unexpected default tuning %+v", tuning)
	}
	if cfg.Net.Replication != ReplicationSplit {
		t.Fatalf("default replication = %q, want %q", cfg.Net.Replication, ReplicationSplit)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantErr  error
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name: "overlay keeps unspecified defaults",
			content: `pawn:
  movement_speed: 45
net:
  port: 9000
  replication: versioned
logging:
  level: debug
`,
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Pawn.MovementSpeed != 45 {
					t.Errorf("MovementSpeed = %v, want 45", cfg.Pawn.MovementSpeed)
				}
				if cfg.Pawn.ZoomSpeed != 70 {
					t.Errorf("ZoomSpeed = %v, want default 70", cfg.Pawn.ZoomSpeed)
				}
				if cfg.Net.Port != 9000 {
					t.Errorf("Port = %d, want 9000", cfg.Net.Port)
				}
				if cfg.Net.TickRate != 30 {
					t.Errorf("TickRate = %d, want default 30", cfg.Net.TickRate)
				}
				if cfg.Net.Replication != ReplicationVersioned {
					t.Errorf("Replication = %q, want %q", cfg.Net.Replication, ReplicationVersioned)
				}
				if cfg.Logging.Level != "debug" {
					t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
				}
			},
		},
		{
			name:    "inverted zoom bounds",
			content: "pawn:\n  min_zoom: 3000\n  max_zoom: 500\n",
			wantErr: ErrInvalid,
		},
		{
			name:    "zero min zoom",
			content: "pawn:\n  min_zoom: 0\n  initial_zoom: 0\n",
			wantErr: ErrInvalid,
		},
		{
			name:    "negative min zoom",
			content: "pawn:\n  min_zoom: -100\n",
			wantErr: ErrInvalid,
		},
		{
			name:    "zero interpolation rate",
			content: "pawn:\n  rotation_interp: 0\n",
			wantErr: ErrInvalid,
		},
		{
			name:    "sync faster than tick",
			content: "net:\n  tick_rate: 20\n  sync_rate: 40\n",
			wantErr: ErrInvalid,
		},
		{
			name:    "unknown replication mode",
			content: "net:\n  replication: eventual\n",
			wantErr: ErrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Load() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tt.validate(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load() on a missing file returned nil error")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "pawn: [")); err == nil {
		t.Fatal("Load() on malformed YAML returned nil error")
	}
}

func TestLoadOrDefaultEmptyPath(t *testing.T) {
	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault(\"\") error = %v", err)
	}
	if cfg.Net.Port != Default().Net.Port {
		t.Fatalf("Port = %d, want default", cfg.Net.Port)
	}
}

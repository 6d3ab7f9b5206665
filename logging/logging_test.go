package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/automoto/rtspawn/config"
)

func TestInitWritesToFile(t *testing.T) {
	prev := L()
	t.Cleanup(func() { Replace(prev) })

	path := filepath.Join(t.TempDir(), "rtspawn.log")
	if err := Init(config.LoggingConfig{Level: "debug", File: path, MaxSizeMB: 1}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	Named("server").Infow("pawn spawned", "pawn", 7)
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	for _, want := range []string{"INFO", "server", "pawn spawned", "pawn", "7"} {
		if !strings.Contains(line, want) {
			t.Fatalf("log line %q missing %q", line, want)
		}
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	prev := L()
	t.Cleanup(func() { Replace(prev) })

	if err := Init(config.LoggingConfig{Level: "chatty"}); err == nil {
		t.Fatal("Init() with unknown level returned nil error")
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	prev := L()
	t.Cleanup(func() { Replace(prev) })

	path := filepath.Join(t.TempDir(), "rtspawn.log")
	if err := Init(config.LoggingConfig{Level: "warn", File: path}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	L().Debug("hidden")
	L().Warn("shown")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(data), "hidden") {
		t.Fatal("debug line written at warn level")
	}
	if !strings.Contains(string(data), "shown") {
		t.Fatal("warn line missing")
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.World.Extent != 1024 {
		t.Errorf("world extent = %v, want 1024", cfg.World.Extent)
	}
	if cfg.Grid.Size != 8 {
		t.Errorf("grid size = %v, want 8", cfg.Grid.Size)
	}
	if cfg.Script.Timeout != 5*time.Second {
		t.Errorf("script timeout = %v, want 5s", cfg.Script.Timeout)
	}
	if !cfg.Editor.TextureLock {
		t.Error("texture lock must default on")
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	src := `
grid:
  size: 16
logging:
  level: debug
  log_file: editor.log
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Grid.Size != 16 {
		t.Errorf("grid size = %v, want 16", cfg.Grid.Size)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "editor.log" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	// Untouched sections keep their defaults.
	if cfg.World.Extent != 1024 {
		t.Errorf("world extent = %v, want default 1024", cfg.World.Extent)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Grid.Size != 8 {
		t.Errorf("grid size = %v, want default 8", cfg.Grid.Size)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"bad yaml", ":\n  - ]["},
		{"negative grid", "grid:\n  size: -4\n"},
		{"zero extent", "world:\n  extent: 0\n"},
		{"zero timeout", "script:\n  timeout: 0s\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.src), 0o644); err != nil {
				t.Fatalf("WriteFile() error: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() accepted invalid config")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Grid.Size = 32
	cfg.Editor.DefaultTexture = "stone"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Grid.Size != 32 || got.Editor.DefaultTexture != "stone" {
		t.Errorf("round trip = %+v", got)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		c := LoggingConfig{Level: level}
		if log := c.NewLogger(false); log == nil {
			t.Errorf("NewLogger(%q) returned nil", level)
		}
	}
}

func TestNewLoggerWithFile(t *testing.T) {
	c := LoggingConfig{
		Level:     "debug",
		LogFile:   filepath.Join(t.TempDir(), "editor.log"),
		MaxSizeMB: 1,
	}
	log := c.NewLogger(false)
	log.Info("hello")
	if err := log.Sync(); err != nil {
		t.Fatalf("Sync() error: %v", err)
	}
	if _, err := os.Stat(c.LogFile); err != nil {
		t.Errorf("log file not written: %v", err)
	}
}

// Package config handles editor configuration loading and management.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all editor settings.
type Config struct {
	World   WorldConfig   `yaml:"world"`
	Grid    GridConfig    `yaml:"grid"`
	Editor  EditorConfig  `yaml:"editor"`
	Script  ScriptConfig  `yaml:"script"`
	Logging LoggingConfig `yaml:"logging"`
}

// WorldConfig bounds the editable space.
type WorldConfig struct {
	// Extent is the half-size of the cubic world box on each axis.
	Extent float64 `yaml:"extent"`
}

// GridConfig holds snapping settings.
type GridConfig struct {
	Size float64 `yaml:"size"`
}

// EditorConfig holds interaction settings.
type EditorConfig struct {
	HandleRadius   float64 `yaml:"handle_radius"`
	HandleColor    string  `yaml:"handle_color"`
	HighlightColor string  `yaml:"highlight_color"`
	DefaultTexture string  `yaml:"default_texture"`
	TextureLock    bool    `yaml:"texture_lock"`
}

// ScriptConfig holds scene script evaluation settings.
type ScriptConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Extent: 1024,
		},
		Grid: GridConfig{
			Size: 8,
		},
		Editor: EditorConfig{
			HandleRadius:   0.25,
			HandleColor:    "#FFFFFF",
			HighlightColor: "#E74C3C",
			DefaultTexture: "default",
			TextureLock:    true,
		},
		Script: ScriptConfig{
			Timeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}

// Load reads configuration from a YAML file, merging it over the
// defaults. A missing path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config from %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.World.Extent <= 0 {
		return fmt.Errorf("world extent must be positive, got %g", c.World.Extent)
	}
	if c.Grid.Size < 0 {
		return fmt.Errorf("grid size must not be negative, got %g", c.Grid.Size)
	}
	if c.Script.Timeout <= 0 {
		return fmt.Errorf("script timeout must be positive, got %s", c.Script.Timeout)
	}
	return nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

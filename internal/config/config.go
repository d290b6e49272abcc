package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"quarkgrid/internal/domain"
)

// DefaultFileName is looked up in the working directory when no path is given
const DefaultFileName = ".quarkgrid.toml"

// Views the TUI can start on
const (
	ViewParticles = "particles"
	ViewElements  = "elements"
)

// Config represents the application configuration
type Config struct {
	Version      int        `toml:"version"`
	LogFile      string     `toml:"log_file"`
	HistoryLimit int        `toml:"history_limit"`
	InitialState string     `toml:"initial_state"`
	MetricsAddr  string     `toml:"metrics_addr"` // empty disables the metrics server
	UISettings   UISettings `toml:"ui"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	StartView string `toml:"start_view"`
	SkipGaps  bool   `toml:"skip_gaps"` // jump over empty periodic-table cells
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
}

// configService is the concrete implementation
type configService struct {
	filePath string
}

// NewConfigService creates a config service bound to path.
// An empty path means DefaultFileName in the working directory.
func NewConfigService(path string) ConfigService {
	if path == "" {
		path = DefaultFileName
	}
	return &configService{filePath: path}
}

// Load loads the configuration, returning defaults when the file is missing
func (cs *configService) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cs.LoadFromPath(cs.filePath)
}

// Save saves the configuration to the bound path
func (cs *configService) Save(config *Config) error {
	return cs.SaveToPath(config, cs.filePath)
}

// LoadFromPath loads configuration from a specific path. Keys missing from
// the file keep their default values.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks values the services would otherwise reject at runtime
func (c *Config) Validate() error {
	if _, err := domain.ParsePageState(c.InitialState); err != nil {
		return fmt.Errorf("initial_state: %w", err)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("history_limit must not be negative, got %d", c.HistoryLimit)
	}
	switch c.UISettings.StartView {
	case ViewParticles, ViewElements:
	default:
		return fmt.Errorf("ui.start_view must be %q or %q, got %q", ViewParticles, ViewElements, c.UISettings.StartView)
	}
	return nil
}

// State returns the parsed initial state, falling back to active
func (c *Config) State() domain.PageState {
	s, err := domain.ParsePageState(c.InitialState)
	if err != nil {
		return domain.StateActive
	}
	return s
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:      1,
		LogFile:      "quarkgrid.log",
		HistoryLimit: 100,
		InitialState: string(domain.StateActive),
		UISettings: UISettings{
			StartView: ViewElements,
			SkipGaps:  true,
		},
	}
}

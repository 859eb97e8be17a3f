package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bryanchriswhite/vcsengine/internal/logger"
	"gopkg.in/yaml.v3"
)

// DriverConfig selects and tunes the CaptureDriver implementation.
type DriverConfig struct {
	Model        string `yaml:"model"` // "gst" or "simulated"
	Device       string `yaml:"device"`
	Channel      int    `yaml:"channel"`
	FrameDropPct int    `yaml:"frame_drop_pct"`
}

// ScalerConfig mirrors internal/scaler.Config's persisted knobs.
type ScalerConfig struct {
	Upscaler            string  `yaml:"upscaler"`
	Downscaler          string  `yaml:"downscaler"`
	ForceBaseResolution bool    `yaml:"force_base_resolution"`
	BaseWidth           int     `yaml:"base_width"`
	BaseHeight          int     `yaml:"base_height"`
	ForceScaling        bool    `yaml:"force_scaling"`
	OutputScaling       float64 `yaml:"output_scaling"`
	ForcedAspect        bool    `yaml:"forced_aspect"`
	AspectMode          string  `yaml:"aspect_mode"` // native, always_4_3, traditional_4_3
}

// PersistenceConfig locates the three optional load files named on the
// CLI surface (spec.md §6) and controls hot-reload.
type PersistenceConfig struct {
	AliasesFile     string `yaml:"aliases_file"`
	ModeParamsFile  string `yaml:"mode_params_file"`
	FilterGraphFile string `yaml:"filter_graph_file"`
	WatchForChanges bool   `yaml:"watch_for_changes"`
}

// StatusBusConfig controls the HTTP/WS front end that relays status
// signals to the GUI observer.
type StatusBusConfig struct {
	Port int `yaml:"port"`
}

// Config is the engine's persisted settings.
type Config struct {
	LogLevel          string            `yaml:"log_level"`
	FrameBufferBytes  int               `yaml:"frame_buffer_bytes"`
	PollYieldMillis   int               `yaml:"poll_yield_millis"`
	Driver            DriverConfig      `yaml:"driver"`
	Scaler            ScalerConfig      `yaml:"scaler"`
	Persistence       PersistenceConfig `yaml:"persistence"`
	StatusBus         StatusBusConfig   `yaml:"status_bus"`
	FilteringEnabled  bool              `yaml:"filtering_enabled"`
	AntiTearEnabled   bool              `yaml:"anti_tear_enabled"`
}

// Manager owns the on-disk settings file and the in-memory Config it
// was parsed from.
type Manager struct {
	configPath string
	config     *Config
	mu         sync.RWMutex
}

// NewManager loads configFile, or the default path under
// $HOME/.config/vcsengine/config.yaml if configFile is empty, creating
// it with defaults if it doesn't exist yet.
func NewManager(configFile string) (*Manager, error) {
	actualConfigPath := configFile
	if actualConfigPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		actualConfigPath = filepath.Join(homeDir, ".config", "vcsengine", "config.yaml")
	}

	configDir := filepath.Dir(actualConfigPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	m := &Manager{configPath: actualConfigPath}

	if err := m.load(); err != nil {
		if os.IsNotExist(err) {
			logger.WithComponent("config").Info().
				Str("path", m.configPath).
				Msg("config file not found, creating new config")
			m.config = m.getDefaults()
			if err := m.Save(); err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	logger.WithComponent("config").Info().
		Str("path", m.configPath).
		Str("driver", m.config.Driver.Model).
		Msg("config loaded")

	return m, nil
}

func (m *Manager) getDefaults() *Config {
	return &Config{
		LogLevel:         "info",
		FrameBufferBytes: 1920 * 1080 * 4,
		PollYieldMillis:  2,
		Driver: DriverConfig{
			Model:        "simulated",
			Channel:      0,
			FrameDropPct: 0,
		},
		Scaler: ScalerConfig{
			Upscaler:      "Linear",
			Downscaler:    "Linear",
			OutputScaling: 1.0,
			AspectMode:    "native",
		},
		Persistence: PersistenceConfig{
			WatchForChanges: true,
		},
		StatusBus: StatusBusConfig{
			Port: 8787,
		},
		FilteringEnabled: true,
		AntiTearEnabled:  true,
	}
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	m.mu.Lock()
	m.config = &cfg
	m.mu.Unlock()
	return nil
}

// Get returns the current configuration snapshot.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg := *m.config
	return &cfg
}

// Update replaces the in-memory config and persists it.
func (m *Manager) Update(cfg *Config) error {
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return m.Save()
}

// GetConfigPath returns the path this manager loads from and saves to.
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

// Save writes the current configuration to disk atomically: write to
// <path>.tmp, delete any prior <path>, then rename over it (spec.md §6).
// A failed marshal or write leaves the prior on-disk file untouched.
func (m *Manager) Save() error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	if cfg == nil {
		cfg = m.getDefaults()
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		logger.WithComponent("config").Error().Err(err).Msg("failed to marshal config")
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configDir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmpPath := m.configPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		logger.WithComponent("config").Error().Err(err).Str("path", tmpPath).Msg("failed to write temp config")
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write config: %w", err)
	}

	if _, err := os.Stat(m.configPath); err == nil {
		if err := os.Remove(m.configPath); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to remove prior config: %w", err)
		}
	}

	if err := os.Rename(tmpPath, m.configPath); err != nil {
		os.Remove(tmpPath)
		logger.WithComponent("config").Error().Err(err).Msg("failed to rename config into place")
		return fmt.Errorf("failed to finalize config: %w", err)
	}

	logger.WithComponent("config").Debug().Str("path", m.configPath).Msg("config saved")
	return nil
}

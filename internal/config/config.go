// Package config loads and hot-reloads the options table documented in
// the external interfaces: data_dir, the RRF fusion weights, the vector
// dimension and content cap, the RRF smoothing constant, and the
// table-registry autobuild flag.
package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds the recognized retrieval-core options.
type Config struct {
	DataDir                string  `mapstructure:"data_dir" yaml:"data_dir"`
	FTSWeight              float64 `mapstructure:"fts_weight" yaml:"fts_weight"`
	VectorWeight           float64 `mapstructure:"vector_weight" yaml:"vector_weight"`
	VectorDimension        int     `mapstructure:"vector_dimension" yaml:"vector_dimension"`
	VectorContentLimit     int     `mapstructure:"vector_content_limit" yaml:"vector_content_limit"`
	RRFK                   int     `mapstructure:"rrf_k" yaml:"rrf_k"`
	TableRegistryAutobuild bool    `mapstructure:"table_registry_autobuild" yaml:"table_registry_autobuild"`
}

// DefaultConfig returns the defaults: a 0.4:0.6 lexical:vector fusion
// ratio, k=60, a 500-character vector content cap, and autobuild enabled.
func DefaultConfig() *Config {
	return &Config{
		DataDir:                "",
		FTSWeight:              0.4,
		VectorWeight:           0.6,
		VectorDimension:        1536,
		VectorContentLimit:     500,
		RRFK:                   60,
		TableRegistryAutobuild: true,
	}
}

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("data_dir", defaults.DataDir)
	viper.SetDefault("fts_weight", defaults.FTSWeight)
	viper.SetDefault("vector_weight", defaults.VectorWeight)
	viper.SetDefault("vector_dimension", defaults.VectorDimension)
	viper.SetDefault("vector_content_limit", defaults.VectorContentLimit)
	viper.SetDefault("rrf_k", defaults.RRFK)
	viper.SetDefault("table_registry_autobuild", defaults.TableRegistryAutobuild)

	// Environment variables with REGCORE_ prefix.
	viper.SetEnvPrefix("REGCORE")
	viper.AutomaticEnv()

	// Config file.
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.regcore")
	}

	// Try to read config file (not required).
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration. The server applies
// reloaded fusion weights and rrf_k from the next query on, without
// interrupting one already in flight; the other options are read once at
// startup.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# regcore configuration
# data_dir is loaded but not used: regulation data and indices are
# always stored under <home>/data.

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}

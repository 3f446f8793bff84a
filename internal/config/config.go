// Package config loads this client's runtime configuration: the
// protocol version to speak, the chunk store's vertical bounds,
// the lighting engine's per-tick budget, worker-pool sizes, and
// logging options.
//
// Grounded on nickheyer-discopanel/internal/config/config.go's
// viper idiom: a mapstructure-tagged nested struct, SetDefault per
// key, environment-variable overrides, a missing config file
// tolerated rather than fatal, and a validation pass after Unmarshal.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration surface.
type Config struct {
	Connection ConnectionConfig `mapstructure:"connection"`
	World      WorldConfig      `mapstructure:"world"`
	Lighting   LightingConfig   `mapstructure:"lighting"`
	Workers    WorkersConfig    `mapstructure:"workers"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ConnectionConfig names the server to connect to and the protocol
// version to negotiate, per spec §4.I's per-(state,direction) remap
// tables.
type ConnectionConfig struct {
	Address         string `mapstructure:"address"`
	ProtocolVersion int    `mapstructure:"protocol_version"`
}

// WorldConfig seeds pkg/world.Store.Configure before any chunk is
// loaded, with Overworld-shaped defaults. The login-time dimension-type
// NBT does not override these values.
type WorldConfig struct {
	MinY   int32 `mapstructure:"min_y"`
	Height int32 `mapstructure:"height"`
}

// LightingConfig bounds how much wall-clock time pkg/light.Engine.Tick
// may spend draining its queue per call.
type LightingConfig struct {
	TickBudgetMillis int64 `mapstructure:"tick_budget_millis"`
}

// WorkersConfig sizes the mesh-building and skin-fetch worker pools.
// Zero means "derive from GOMAXPROCS" (see pkg/meshpool, pkg/skincache).
type WorkersConfig struct {
	MeshBuilders int `mapstructure:"mesh_builders"`
	SkinFetchers int `mapstructure:"skin_fetchers"`
}

// LoggingConfig configures internal/applog.New.
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load reads configPath (if present), applies environment overrides
// under the MCCORE_ prefix, and validates the result. A missing
// config file is not an error; Load falls back to defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	ext := filepath.Ext(configPath)
	v.SetConfigName(strings.TrimSuffix(filepath.Base(configPath), ext))
	if ext != "" {
		v.SetConfigType(strings.TrimPrefix(ext, "."))
	} else {
		v.SetConfigType("yaml")
	}
	if dir := filepath.Dir(configPath); dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvPrefix("MCCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("reading config %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("connection.address", "localhost:25565")
	v.SetDefault("connection.protocol_version", 758)

	v.SetDefault("world.min_y", -64)
	v.SetDefault("world.height", 384)

	v.SetDefault("lighting.tick_budget_millis", 5)

	v.SetDefault("workers.mesh_builders", 0)
	v.SetDefault("workers.skin_fetchers", 0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)
}

func validate(cfg *Config) error {
	if cfg.Connection.Address == "" {
		return fmt.Errorf("connection.address must not be empty")
	}
	if cfg.Connection.ProtocolVersion < 5 {
		return fmt.Errorf("connection.protocol_version %d is below the supported minimum (5)", cfg.Connection.ProtocolVersion)
	}
	if cfg.World.Height <= 0 {
		return fmt.Errorf("world.height must be positive, got %d", cfg.World.Height)
	}
	if cfg.Lighting.TickBudgetMillis <= 0 {
		return fmt.Errorf("lighting.tick_budget_millis must be positive, got %d", cfg.Lighting.TickBudgetMillis)
	}
	if cfg.Workers.MeshBuilders < 0 {
		return fmt.Errorf("workers.mesh_builders must not be negative, got %d", cfg.Workers.MeshBuilders)
	}
	if cfg.Workers.SkinFetchers < 0 {
		return fmt.Errorf("workers.skin_fetchers must not be negative, got %d", cfg.Workers.SkinFetchers)
	}
	return nil
}

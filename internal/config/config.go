// Package config loads server settings from .env, the environment and an
// optional YAML file.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/gookit/validate"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port            int           `mapstructure:"PORT" validate:"required|min:1|max:65535"`
	LogLevel        string        `mapstructure:"LOG_LEVEL" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	LogPretty       bool          `mapstructure:"LOG_PRETTY"`
	DBPath          string        `mapstructure:"DB_PATH" validate:"required"`
	AssetsDir       string        `mapstructure:"ASSETS_DIR" validate:"required"`
	ClientOrigin    string        `mapstructure:"CLIENT_ORIGIN" validate:"required"`
	GameMode        string        `mapstructure:"GAME_MODE" validate:"required|in:random,daily"`
	DailySalt       string        `mapstructure:"DAILY_SALT"`
	MaxMisses       int           `mapstructure:"MAX_MISSES" validate:"required|min:1|max:100"`
	PreviewSeconds  int           `mapstructure:"PREVIEW_SECONDS" validate:"min:0"`
	ExtendedSeconds int           `mapstructure:"EXTENDED_SECONDS" validate:"min:0"`
	SessionTTL      time.Duration `mapstructure:"SESSION_TTL"`
	SweepInterval   time.Duration `mapstructure:"SWEEP_INTERVAL"`
	CacheSizeMB     int           `mapstructure:"CACHE_SIZE_MB" validate:"min:0"`
	CacheTTL        time.Duration `mapstructure:"CACHE_TTL"`
	MetricsEnabled  bool          `mapstructure:"METRICS_ENABLED"`
	SeedCatalog     bool          `mapstructure:"SEED_CATALOG"`
}

var defaults = map[string]any{
	"PORT":             5175,
	"LOG_LEVEL":        "info",
	"LOG_PRETTY":       false,
	"DB_PATH":          "data/spordle.db",
	"ASSETS_DIR":       "data/assets",
	"CLIENT_ORIGIN":    "http://localhost:5173",
	"GAME_MODE":        "random",
	"DAILY_SALT":       "spordle",
	"MAX_MISSES":       10,
	"PREVIEW_SECONDS":  5,
	"EXTENDED_SECONDS": 15,
	"SESSION_TTL":      "24h",
	"SWEEP_INTERVAL":   "5m",
	"CACHE_SIZE_MB":    8,
	"CACHE_TTL":        "10m",
	"METRICS_ENABLED":  true,
	"SEED_CATALOG":     true,
}

// Load reads .env (if present), then CONFIG_FILE (if set), then the
// environment, which wins over both.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	for k, d := range defaults {
		v.SetDefault(k, d)
		if err := v.BindEnv(k); err != nil {
			return nil, err
		}
	}
	if err := v.BindEnv("CONFIG_FILE"); err != nil {
		return nil, err
	}
	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	vd := validate.Struct(c)
	if !vd.Validate() {
		return fmt.Errorf("config: %s", vd.Errors.One())
	}
	if c.GameMode == "daily" && c.DailySalt == "" {
		return errors.New("config: DAILY_SALT is required in daily mode")
	}
	if c.ExtendedSeconds > 0 && c.ExtendedSeconds < c.PreviewSeconds {
		return errors.New("config: EXTENDED_SECONDS must not be shorter than PREVIEW_SECONDS")
	}
	return nil
}

func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

// Package config provides Viper-based configuration loading for the lucky
// draw server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// HTTPConfig holds the operator/display HTTP server settings.
type HTTPConfig struct {
	// Host is the bind address for the HTTP listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the HTTP listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-request read timeout.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-response write timeout. Zero disables it,
	// which the event stream endpoint requires to stay open.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ShutdownTimeout bounds graceful shutdown on stop.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// DrawConfig holds the draw engine settings: board width, sampling range,
// and reveal cadence.
type DrawConfig struct {
	// DigitCount is the number of digit slots on the reveal board.
	DigitCount int `mapstructure:"digit_count"`
	// MinValue is the inclusive lower bound for range-mode draws.
	MinValue int `mapstructure:"min_value"`
	// MaxValue is the inclusive upper bound for range-mode draws.
	MaxValue int `mapstructure:"max_value"`
	// TickInterval is the pause between digit shuffles on a spinning slot.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// GeneratingTime is how long all slots spin before the rightmost stops.
	GeneratingTime time.Duration `mapstructure:"generating_time"`
	// DigitStopDelay is the stagger between adjacent slots stopping.
	DigitStopDelay time.Duration `mapstructure:"digit_stop_delay"`
	// SettleDelay is the pause between the last slot stopping and the
	// winner being recorded.
	SettleDelay time.Duration `mapstructure:"settle_delay"`
}

// RosterConfig holds roster preload settings.
type RosterConfig struct {
	// Path is an optional roster CSV loaded at startup. Empty means the
	// session starts in range mode until a roster is uploaded.
	Path string `mapstructure:"path"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Draw    DrawConfig    `mapstructure:"draw"`
	Roster  RosterConfig  `mapstructure:"roster"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateHTTP(c.HTTP); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDraw(c.Draw); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateHTTP(h HTTPConfig) error {
	var errs []string
	if h.Port < 1 || h.Port > 65535 {
		errs = append(errs, fmt.Sprintf("http.port must be 1-65535, got %d", h.Port))
	}
	if h.ReadTimeout < 0 {
		errs = append(errs, "http.read_timeout must not be negative")
	}
	if h.WriteTimeout < 0 {
		errs = append(errs, "http.write_timeout must not be negative")
	}
	if h.ShutdownTimeout < 0 {
		errs = append(errs, "http.shutdown_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDraw(d DrawConfig) error {
	var errs []string
	if d.DigitCount < 1 {
		errs = append(errs, fmt.Sprintf("draw.digit_count must be >= 1, got %d", d.DigitCount))
	}
	if d.MinValue < 0 {
		errs = append(errs, fmt.Sprintf("draw.min_value must be >= 0, got %d", d.MinValue))
	}
	if d.MaxValue < d.MinValue {
		errs = append(errs, fmt.Sprintf("draw.max_value must be >= draw.min_value, got %d < %d", d.MaxValue, d.MinValue))
	}
	if d.TickInterval <= 0 {
		errs = append(errs, fmt.Sprintf("draw.tick_interval must be positive, got %s", d.TickInterval))
	}
	if d.GeneratingTime < 0 {
		errs = append(errs, "draw.generating_time must not be negative")
	}
	if d.DigitStopDelay < 0 {
		errs = append(errs, "draw.digit_stop_delay must not be negative")
	}
	if d.SettleDelay < 0 {
		errs = append(errs, "draw.settle_delay must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with LUCKYDRAW_ prefix
	v.SetEnvPrefix("LUCKYDRAW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadDefaults returns the built-in configuration, used when no config
// file is supplied.
//
// Postcondition: Returns a valid Config.
func LoadDefaults() (Config, error) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", "10s")
	v.SetDefault("http.write_timeout", "0s")
	v.SetDefault("http.shutdown_timeout", "10s")

	v.SetDefault("draw.digit_count", 4)
	v.SetDefault("draw.min_value", 0)
	v.SetDefault("draw.max_value", 9999)
	v.SetDefault("draw.tick_interval", "50ms")
	v.SetDefault("draw.generating_time", "1s")
	v.SetDefault("draw.digit_stop_delay", "300ms")
	v.SetDefault("draw.settle_delay", "200ms")

	v.SetDefault("roster.path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Package config loads the application configuration from a TOML file.
// Fleet definitions live separately in fleet_config.json (see the fleet
// package); this file covers paths, logging, the HTTP server, and the
// position-fetching subsystem.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the application configuration
type Config struct {
	Logging   LoggingConfig   `toml:"logging"`
	Paths     PathsConfig     `toml:"paths"`
	Server    ServerConfig    `toml:"server"`
	Build     BuildConfig     `toml:"build"`
	Positions PositionsConfig `toml:"positions"`
	Bases     []BaseConfig    `toml:"bases"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// PathsConfig locates the inputs and outputs of a build
type PathsConfig struct {
	FleetConfig string `toml:"fleet_config"`
	DataRoot    string `toml:"data_root"`
	DistRoot    string `toml:"dist_root"`
	Database    string `toml:"database"`
}

// ServerConfig configures the dashboard HTTP server
type ServerConfig struct {
	Host               string   `toml:"host"`
	Port               int      `toml:"port"`
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
	StaticFilesDir     string   `toml:"static_files_dir"`
}

// BuildConfig tunes the dashboard build
type BuildConfig struct {
	// RetirementKeywords overrides the default component-detection
	// keyword list; empty keeps the defaults
	RetirementKeywords []string `toml:"retirement_keywords"`
}

// PositionsConfig configures the live position fetcher
type PositionsConfig struct {
	ADSBBaseURL           string            `toml:"adsb_base_url"`
	ADSBMaxAgeSeconds     int               `toml:"adsb_max_age_seconds"`
	CallDelayMS           int               `toml:"call_delay_ms"`
	RequestTimeoutSeconds int               `toml:"request_timeout_seconds"`
	FlightAware           FlightAwareConfig `toml:"flightaware"`
}

// FlightAwareConfig configures the spend-capped FlightAware fallback. The
// API key itself comes from the environment, never from the config file.
type FlightAwareConfig struct {
	APIKeyEnv        string  `toml:"api_key_env"`
	BaseURL          string  `toml:"base_url"`
	MonthlyCapUSD    float64 `toml:"monthly_cap_usd"`
	CostPerCallUSD   float64 `toml:"cost_per_call_usd"`
	CapSafetyFactor  float64 `toml:"cap_safety_factor"`
	RateLimitDelayMS int     `toml:"rate_limit_delay_ms"`
}

// BaseConfig is one operating base for geofencing
type BaseConfig struct {
	ID       string  `toml:"id"`
	Name     string  `toml:"name"`
	Lat      float64 `toml:"lat"`
	Lon      float64 `toml:"lon"`
	RadiusNM float64 `toml:"radius_nm"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Paths: PathsConfig{
			FleetConfig: "fleet_config.json",
			DataRoot:    "data",
			DistRoot:    "dist/data",
			Database:    "data/fleetdash.db",
		},
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			StaticFilesDir: "dist",
		},
		Positions: PositionsConfig{
			ADSBBaseURL:           "https://api.adsb.lol/v2",
			ADSBMaxAgeSeconds:     300,
			CallDelayMS:           250,
			RequestTimeoutSeconds: 15,
			FlightAware: FlightAwareConfig{
				APIKeyEnv:        "FLIGHTAWARE_API_KEY",
				BaseURL:          "https://aeroapi.flightaware.com/aeroapi",
				MonthlyCapUSD:    5.00,
				CostPerCallUSD:   0.005,
				CapSafetyFactor:  0.90,
				RateLimitDelayMS: 1100,
			},
		},
	}
}

// Load reads the configuration file at path, falling back to defaults when
// the file does not exist. Values present in the file override defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}

// FlightAwareAPIKey resolves the FlightAware API key from the environment
func (c *Config) FlightAwareAPIKey() string {
	env := c.Positions.FlightAware.APIKeyEnv
	if env == "" {
		env = "FLIGHTAWARE_API_KEY"
	}
	return os.Getenv(env)
}

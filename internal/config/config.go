package config

import (
	"time"
)

// Config represents the complete application configuration.
// Values are layered by viper: built-in defaults, then the config file,
// then PRICELENS_* environment variables and flags.
type Config struct {
	League   string         `mapstructure:"league"`
	Items    []ItemConfig   `mapstructure:"items"`
	Trade    TradeConfig    `mapstructure:"trade"`
	Exchange ExchangeConfig `mapstructure:"exchange"`
	Output   OutputConfig   `mapstructure:"output"`
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Health   HealthConfig   `mapstructure:"health"`
}

// ItemConfig is a named trade query. Query is the JSON body sent to the
// search endpoint, kept as an opaque string.
type ItemConfig struct {
	Name  string `mapstructure:"name" yaml:"name"`
	Query string `mapstructure:"query" yaml:"query"`
}

// TradeConfig configures the trade API dispatcher.
type TradeConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	SessionID string        `mapstructure:"session_id"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Search    QuotaConfig   `mapstructure:"search"`
	Fetch     QuotaConfig   `mapstructure:"fetch"`
}

// QuotaConfig is a published request allowance: Requests per Window.
type QuotaConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// ExchangeConfig configures the exchange-ratio lookup.
type ExchangeConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	MaxAge  time.Duration `mapstructure:"max_age"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// OutputConfig holds presentation defaults.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig contains database configuration for libsql/Turso
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`

	// Profile selects the logging complexity level
	// Valid values: SIMPLE, STRUCTURED
	Profile string `mapstructure:"profile"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	// Enabled controls whether metrics are exposed
	Enabled bool `mapstructure:"enabled"`

	// Port is the dedicated metrics endpoint port (Prometheus format)
	Port int `mapstructure:"port"`
}

// HealthConfig contains health check configuration
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Package config provides centralized configuration management for pricelens.
// Settings are collected by viper (defaults, config file, environment) and
// decoded into typed structs with mapstructure.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	// AppName names the config and data directories and the default database file.
	AppName = "pricelens"
	// EnvPrefix is prepended to every environment override.
	EnvPrefix = "PRICELENS"
	// SessionEnv is the conventional environment variable carrying the trade session id.
	SessionEnv = "POESESSID"
)

var (
	// appConfig holds the current application configuration
	appConfig *Config
	configMu  sync.RWMutex
)

// SetDefaults registers default values on v. Every key that may be set from
// the environment needs a default so viper can resolve it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("league", "Standard")
	v.SetDefault("items", []map[string]any{})

	// Trade API defaults (published limits: 3 searches per 5s, 6 fetches per 4s)
	v.SetDefault("trade.base_url", "https://www.pathofexile.com/api/trade")
	v.SetDefault("trade.session_id", "")
	v.SetDefault("trade.user_agent", "pricelens/dev")
	v.SetDefault("trade.timeout", "30s")
	v.SetDefault("trade.search.requests", 3)
	v.SetDefault("trade.search.window", "5s")
	v.SetDefault("trade.fetch.requests", 6)
	v.SetDefault("trade.fetch.window", "4s")

	// Exchange ratio defaults
	v.SetDefault("exchange.base_url", "https://poe.ninja")
	v.SetDefault("exchange.max_age", "24h")
	v.SetDefault("exchange.timeout", "15s")

	v.SetDefault("output.format", "table")

	// Server defaults
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "structured")

	// Store defaults
	v.SetDefault("store.driver", "libsql")
	v.SetDefault("store.path", DefaultStorePath())
	v.SetDefault("store.url", "")
	v.SetDefault("store.auth_token", "")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	// Health check defaults
	v.SetDefault("health.enabled", true)
}

// BindEnv wires PRICELENS_* overrides (dots become underscores) and the
// conventional POESESSID variable into v.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("trade.session_id", EnvPrefix+"_TRADE_SESSION_ID", SessionEnv)
}

// Load decodes the settings collected by v into a Config and validates it.
// This function is safe to call multiple times (e.g., for config reload)
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		return nil, errors.New("viper instance is required")
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToFloat64HookFunc(),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.League = strings.TrimSpace(cfg.League)
	cfg.Trade.SessionID = strings.TrimSpace(cfg.Trade.SessionID)
	if strings.TrimSpace(cfg.Store.URL) == "" && strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = DefaultStorePath()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	setConfig(cfg)

	return cfg, nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.League) == "" {
		return errors.New("league is required")
	}

	seen := make(map[string]struct{}, len(c.Items))
	for i, item := range c.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return fmt.Errorf("items[%d]: name is required", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("items[%d]: duplicate item name %q", i, name)
		}
		seen[name] = struct{}{}

		if strings.TrimSpace(item.Query) == "" {
			return fmt.Errorf("item %q: query is required", name)
		}
		if !json.Valid([]byte(item.Query)) {
			return fmt.Errorf("item %q: query is not valid JSON", name)
		}
	}

	if err := c.Trade.Search.validate("trade.search"); err != nil {
		return err
	}
	if err := c.Trade.Fetch.validate("trade.fetch"); err != nil {
		return err
	}
	if c.Exchange.MaxAge < 0 {
		return errors.New("exchange.max_age must not be negative")
	}

	return nil
}

func (q QuotaConfig) validate(key string) error {
	if q.Requests <= 0 {
		return fmt.Errorf("%s.requests must be positive", key)
	}
	if q.Window <= 0 {
		return fmt.Errorf("%s.window must be positive", key)
	}
	return nil
}

// RequireSession reports whether a trade session id is available.
func (c *Config) RequireSession() error {
	if strings.TrimSpace(c.Trade.SessionID) == "" {
		return fmt.Errorf("trade session id is required (set %s or %s_TRADE_SESSION_ID)", SessionEnv, EnvPrefix)
	}
	return nil
}

// Item returns the configured item with the given name.
func (c *Config) Item(name string) (ItemConfig, bool) {
	name = strings.TrimSpace(name)
	for _, item := range c.Items {
		if strings.EqualFold(strings.TrimSpace(item.Name), name) {
			return item, true
		}
	}
	return ItemConfig{}, false
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// setConfig updates the current configuration (thread-safe)
func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

// DefaultConfigPath returns the XDG-compliant path to the user config file.
func DefaultConfigPath() string {
	configDir := gfconfig.GetAppConfigDir(AppName)
	if strings.TrimSpace(configDir) == "" {
		return ""
	}
	return filepath.Join(configDir, "config.yaml")
}

// DefaultDataDir returns the XDG-compliant data directory for the app.
func DefaultDataDir() string {
	return gfconfig.GetAppDataDir(AppName)
}

// DefaultStorePath returns the XDG-compliant path to the database file.
func DefaultStorePath() string {
	dataDir := DefaultDataDir()
	if strings.TrimSpace(dataDir) == "" {
		return "./" + AppName + ".db"
	}
	return filepath.Join(dataDir, AppName+".db")
}

// ConfigSearchPaths lists the directories searched for config.yaml when no
// explicit file is given.
func ConfigSearchPaths() []string {
	paths := []string{}
	if dir := gfconfig.GetAppConfigDir(AppName); strings.TrimSpace(dir) != "" {
		paths = append(paths, dir)
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "."+AppName))
	}
	return append(paths, "./config")
}

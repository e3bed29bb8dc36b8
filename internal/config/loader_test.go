package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	if yaml != "" {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
		v.SetConfigFile(path)
		require.NoError(t, v.ReadInConfig())
	}
	return v
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv(SessionEnv, "")

	cfg, err := Load(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "Standard", cfg.League)
	assert.Empty(t, cfg.Items)

	assert.Equal(t, "https://www.pathofexile.com/api/trade", cfg.Trade.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Trade.Timeout)
	assert.Equal(t, QuotaConfig{Requests: 3, Window: 5 * time.Second}, cfg.Trade.Search)
	assert.Equal(t, QuotaConfig{Requests: 6, Window: 4 * time.Second}, cfg.Trade.Fetch)

	assert.Equal(t, "https://poe.ninja", cfg.Exchange.BaseURL)
	assert.Equal(t, 24*time.Hour, cfg.Exchange.MaxAge)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, "libsql", cfg.Store.Driver)
	assert.Equal(t, filepath.Join(gfconfig.GetAppDataDir(AppName), AppName+".db"), cfg.Store.Path)

	assert.Equal(t, "table", cfg.Output.Format)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Error(t, cfg.RequireSession())
	assert.Same(t, cfg, GetConfig())
}

func TestLoadFromFile(t *testing.T) {
	v := newViper(t, `
league: Settlers
items:
  - name: Mageblood
    query: '{"query":{"type":"Heavy Belt","name":"Mageblood"}}'
  - name: Headhunter
    query: '{"query":{"name":"Headhunter"}}'
trade:
  search:
    requests: 2
    window: 10s
`)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "Settlers", cfg.League)
	require.Len(t, cfg.Items, 2)
	assert.Equal(t, "Mageblood", cfg.Items[0].Name)
	assert.JSONEq(t, `{"query":{"type":"Heavy Belt","name":"Mageblood"}}`, cfg.Items[0].Query)
	assert.Equal(t, QuotaConfig{Requests: 2, Window: 10 * time.Second}, cfg.Trade.Search)
	assert.Equal(t, QuotaConfig{Requests: 6, Window: 4 * time.Second}, cfg.Trade.Fetch)

	item, ok := cfg.Item("headhunter")
	require.True(t, ok)
	assert.Equal(t, "Headhunter", item.Name)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("PRICELENS_LEAGUE", "Hardcore")
	t.Setenv("PRICELENS_EXCHANGE_MAX_AGE", "6h")
	t.Setenv(SessionEnv, "abc123")

	cfg, err := Load(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "Hardcore", cfg.League)
	assert.Equal(t, 6*time.Hour, cfg.Exchange.MaxAge)
	assert.Equal(t, "abc123", cfg.Trade.SessionID)
	assert.NoError(t, cfg.RequireSession())
}

func TestLoadPrefixedSessionWins(t *testing.T) {
	t.Setenv("PRICELENS_TRADE_SESSION_ID", "prefixed")
	t.Setenv(SessionEnv, "plain")

	cfg, err := Load(newViper(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.Trade.SessionID)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			League: "Standard",
			Items:  []ItemConfig{{Name: "Belt", Query: `{"query":{}}`}},
			Trade: TradeConfig{
				Search: QuotaConfig{Requests: 3, Window: 5 * time.Second},
				Fetch:  QuotaConfig{Requests: 6, Window: 4 * time.Second},
			},
		}
	}

	require.NoError(t, valid().Validate())

	cases := map[string]func(*Config){
		"EmptyLeague":   func(c *Config) { c.League = " " },
		"MissingName":   func(c *Config) { c.Items[0].Name = "" },
		"MissingQuery":  func(c *Config) { c.Items[0].Query = "" },
		"InvalidQuery":  func(c *Config) { c.Items[0].Query = "{not json" },
		"DuplicateName": func(c *Config) { c.Items = append(c.Items, c.Items[0]) },
		"ZeroRequests":  func(c *Config) { c.Trade.Search.Requests = 0 },
		"ZeroWindow":    func(c *Config) { c.Trade.Fetch.Window = 0 },
		"NegativeAge":   func(c *Config) { c.Exchange.MaxAge = -time.Hour },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	v := newViper(t, `
items:
  - name: Broken
    query: 'not json'
`)
	_, err := Load(v)
	require.Error(t, err)
}

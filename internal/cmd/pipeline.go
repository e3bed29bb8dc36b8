package cmd

import (
	"fmt"
	"net/http"

	"github.com/fulmenhq/gofulmen/logging"
	"github.com/jonboulle/clockwork"

	"github.com/pricelens/pricelens/internal/config"
	"github.com/pricelens/pricelens/internal/core"
	"github.com/pricelens/pricelens/internal/core/engine"
	"github.com/pricelens/pricelens/internal/core/store"
	"github.com/pricelens/pricelens/internal/ninja"
	"github.com/pricelens/pricelens/internal/trade"
)

// buildExchange wires the poe.ninja lookup behind the stored ratio cache.
func buildExchange(cfg *config.Config, db *store.Store, logger *logging.Logger, clock clockwork.Clock) *engine.ExchangeRatios {
	exchange := &engine.ExchangeRatios{
		Source: ninja.NewClient(cfg.Exchange.BaseURL, cfg.Trade.UserAgent, cfg.Exchange.Timeout),
		Store:  db,
		MaxAge: cfg.Exchange.MaxAge,
		Clock:  clock,
	}
	if logger != nil {
		exchange.Logger = logger
	}
	return exchange
}

// buildService wires the trade client, the exchange ratios and the store into
// a pricing service for the configured league and items.
func buildService(cfg *config.Config, db *store.Store, logger *logging.Logger) (*engine.Service, error) {
	if err := cfg.RequireSession(); err != nil {
		return nil, err
	}

	searchQuota, err := engine.NewQuota(cfg.Trade.Search.Requests, cfg.Trade.Search.Window)
	if err != nil {
		return nil, fmt.Errorf("trade.search: %w", err)
	}
	fetchQuota, err := engine.NewQuota(cfg.Trade.Fetch.Requests, cfg.Trade.Fetch.Window)
	if err != nil {
		return nil, fmt.Errorf("trade.fetch: %w", err)
	}

	clock := clockwork.NewRealClock()
	opts := trade.Options{
		BaseURL:     cfg.Trade.BaseURL,
		SessionID:   cfg.Trade.SessionID,
		UserAgent:   cfg.Trade.UserAgent,
		HTTPClient:  &http.Client{Timeout: cfg.Trade.Timeout},
		SearchQuota: searchQuota,
		FetchQuota:  fetchQuota,
		Clock:       clock,
	}
	if logger != nil {
		opts.Logger = logger
	}
	client, err := trade.NewClient(opts)
	if err != nil {
		return nil, err
	}

	service := &engine.Service{
		League:     cfg.League,
		Items:      configuredItems(cfg),
		Aggregator: &engine.Aggregator{Trade: client, Clock: clock.Now},
		Ratios:     buildExchange(cfg, db, logger, clock),
		Snapshots:  db,
	}
	if logger != nil {
		service.Logger = logger
	}
	return service, nil
}

func configuredItems(cfg *config.Config) []core.Item {
	items := make([]core.Item, 0, len(cfg.Items))
	for _, item := range cfg.Items {
		items = append(items, core.Item{Name: item.Name, Query: item.Query})
	}
	return items
}

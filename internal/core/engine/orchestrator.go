package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pricelens/pricelens/internal/core"
	"github.com/pricelens/pricelens/internal/metrics"
)

// TradeAPI is the dispatcher surface the aggregator drives.
type TradeAPI interface {
	Search(ctx context.Context, league string, query string) ([]string, error)
	Fetch(ctx context.Context, ids []string) ([]core.Listing, error)
}

// Aggregator turns item queries into chaos-denominated prices.
type Aggregator struct {
	Trade TradeAPI
	Clock func() time.Time
	NewID func() string
}

// Prices searches league with query, fetches the first page of listings and
// returns their prices in chaos. Dispatcher errors are returned unchanged.
func (a *Aggregator) Prices(ctx context.Context, league string, query string, ratio float64) ([]float64, int, error) {
	if a == nil || a.Trade == nil {
		return nil, 0, fmt.Errorf("trade client not configured")
	}

	ids, err := a.Trade.Search(ctx, league, query)
	if err != nil {
		return nil, 0, err
	}

	listings, err := a.Trade.Fetch(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	return Normalize(listings, ratio), len(listings), nil
}

// Run prices every item in order. A failing item is recorded in its report
// and the run moves on to the next one.
func (a *Aggregator) Run(ctx context.Context, league string, items []core.Item, ratio float64) []*core.ItemReport {
	if ctx == nil {
		ctx = context.Background()
	}

	runID := a.newID()
	started := a.now()
	reports := make([]*core.ItemReport, 0, len(items))

	for _, item := range items {
		report := &core.ItemReport{
			RunID:       runID,
			League:      league,
			Name:        strings.TrimSpace(item.Name),
			Ratio:       ratio,
			RequestedAt: a.now(),
		}

		samples, listings, err := a.Prices(ctx, league, item.Query, ratio)
		report.ResolvedAt = a.now()
		if err != nil {
			report.Error = err.Error()
			report.Samples = []float64{}
			metrics.RecordPriceItem(league, false)
			reports = append(reports, report)
			continue
		}

		report.Samples = samples
		report.Listings = listings
		report.Average, report.HasAverage = Average(samples)
		metrics.RecordPriceItem(league, true)
		reports = append(reports, report)
	}

	metrics.RecordPriceRun(a.now().Sub(started))
	return reports
}

func (a *Aggregator) newID() string {
	if a.NewID != nil {
		return a.NewID()
	}
	return uuid.NewString()
}

func (a *Aggregator) now() time.Time {
	if a != nil && a.Clock != nil {
		return a.Clock()
	}
	return time.Now().UTC()
}

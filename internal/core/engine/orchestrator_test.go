package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pricelens/pricelens/internal/core"
)

type stubTrade struct {
	ids      map[string][]string
	listings map[string]core.Listing
	failOn   string
	queries  []string
}

func (s *stubTrade) Search(ctx context.Context, league string, query string) ([]string, error) {
	s.queries = append(s.queries, query)
	if query == s.failOn {
		return nil, errors.New("search failed")
	}
	return s.ids[query], nil
}

func (s *stubTrade) Fetch(ctx context.Context, ids []string) ([]core.Listing, error) {
	out := []core.Listing{}
	for _, id := range ids {
		if listing, ok := s.listings[id]; ok {
			out = append(out, listing)
		}
	}
	return out, nil
}

func newStubTrade() *stubTrade {
	return &stubTrade{
		ids: map[string][]string{
			"belt":  {"a", "b", "c"},
			"empty": {},
		},
		listings: map[string]core.Listing{
			"a": {ID: "a", Price: core.Price{Amount: 10, Currency: core.CurrencyChaos}},
			"b": {ID: "b", Price: core.Price{Amount: 2, Currency: core.CurrencyDivine}},
			"c": {ID: "c", Price: core.Price{Amount: 5, Currency: "exalted"}},
		},
	}
}

func TestAggregatorPrices(t *testing.T) {
	aggregator := &Aggregator{Trade: newStubTrade()}

	prices, listings, err := aggregator.Prices(context.Background(), "Standard", "belt", 150)
	require.NoError(t, err)
	require.Equal(t, []float64{10, 300}, prices)
	require.Equal(t, 3, listings)
}

func TestAggregatorPricesPropagatesErrors(t *testing.T) {
	trade := newStubTrade()
	trade.failOn = "belt"
	aggregator := &Aggregator{Trade: trade}

	_, _, err := aggregator.Prices(context.Background(), "Standard", "belt", 150)
	require.EqualError(t, err, "search failed")
}

func TestAggregatorRunContinuesPastFailures(t *testing.T) {
	trade := newStubTrade()
	trade.failOn = "broken"
	aggregator := &Aggregator{Trade: trade, NewID: func() string { return "run-1" }}

	items := []core.Item{
		{Name: "Broken", Query: "broken"},
		{Name: "Belt", Query: "belt"},
		{Name: "Nothing", Query: "empty"},
	}

	reports := aggregator.Run(context.Background(), "Standard", items, 150)
	require.Len(t, reports, 3)
	require.Equal(t, []string{"broken", "belt", "empty"}, trade.queries)

	require.Equal(t, "search failed", reports[0].Error)
	require.False(t, reports[0].HasAverage)

	require.Equal(t, "Belt", reports[1].Name)
	require.True(t, reports[1].HasAverage)
	require.InDelta(t, 155, reports[1].Average, 1e-9)
	require.Equal(t, []float64{10, 300}, reports[1].Samples)

	require.Empty(t, reports[2].Error)
	require.False(t, reports[2].HasAverage)
	require.NotNil(t, reports[2].Samples)

	for _, report := range reports {
		require.Equal(t, "run-1", report.RunID)
		require.Equal(t, 150.0, report.Ratio)
	}
}

func TestAggregatorRequiresTrade(t *testing.T) {
	_, _, err := (&Aggregator{}).Prices(context.Background(), "Standard", "belt", 150)
	require.Error(t, err)
}

package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/pricelens/pricelens/internal/core"
)

type stubSource struct {
	ratio float64
	err   error
	calls int
}

func (s *stubSource) ChaosRatio(ctx context.Context, league string) (float64, error) {
	s.calls++
	return s.ratio, s.err
}

type memoryRatios struct {
	ratios map[string]core.ExchangeRatio
}

func (m *memoryRatios) GetExchangeRatio(ctx context.Context, league string) (*core.ExchangeRatio, error) {
	ratio, ok := m.ratios[league]
	if !ok {
		return nil, nil
	}
	return &ratio, nil
}

func (m *memoryRatios) SetExchangeRatio(ctx context.Context, ratio core.ExchangeRatio) error {
	if m.ratios == nil {
		m.ratios = map[string]core.ExchangeRatio{}
	}
	m.ratios[ratio.League] = ratio
	return nil
}

func newExchange(source *stubSource, store *memoryRatios) (*ExchangeRatios, clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	return &ExchangeRatios{Source: source, Store: store, Clock: clock}, clock
}

func TestExchangeLooksUpWhenEmpty(t *testing.T) {
	source := &stubSource{ratio: 150}
	store := &memoryRatios{}
	exchange, clock := newExchange(source, store)

	ratio, err := exchange.Current(context.Background(), "Standard")
	require.NoError(t, err)
	require.Equal(t, 150.0, ratio.Ratio)
	require.False(t, ratio.FromCache)
	require.Equal(t, 1, source.calls)
	require.Equal(t, clock.Now().UTC(), store.ratios["Standard"].UpdatedAt)
}

func TestExchangeUsesFreshCache(t *testing.T) {
	source := &stubSource{ratio: 150}
	store := &memoryRatios{}
	exchange, clock := newExchange(source, store)

	_, err := exchange.Current(context.Background(), "Standard")
	require.NoError(t, err)

	clock.Advance(23 * time.Hour)
	source.ratio = 999

	ratio, err := exchange.Current(context.Background(), "Standard")
	require.NoError(t, err)
	require.Equal(t, 150.0, ratio.Ratio)
	require.True(t, ratio.FromCache)
	require.Equal(t, 1, source.calls)
}

func TestExchangeRefreshesStaleCache(t *testing.T) {
	source := &stubSource{ratio: 150}
	store := &memoryRatios{}
	exchange, clock := newExchange(source, store)

	_, err := exchange.Current(context.Background(), "Standard")
	require.NoError(t, err)

	clock.Advance(25 * time.Hour)
	source.ratio = 180

	ratio, err := exchange.Current(context.Background(), "Standard")
	require.NoError(t, err)
	require.Equal(t, 180.0, ratio.Ratio)
	require.Equal(t, 2, source.calls)
	require.Equal(t, 180.0, store.ratios["Standard"].Ratio)
}

func TestExchangeIgnoresNonPositiveCache(t *testing.T) {
	source := &stubSource{ratio: 160}
	exchange, clock := newExchange(source, &memoryRatios{})
	exchange.Store.(*memoryRatios).ratios = map[string]core.ExchangeRatio{
		"Standard": {League: "Standard", Ratio: 0, UpdatedAt: clock.Now()},
	}

	ratio, err := exchange.Current(context.Background(), "Standard")
	require.NoError(t, err)
	require.Equal(t, 160.0, ratio.Ratio)
	require.Equal(t, 1, source.calls)
}

func TestExchangeFallsBackToStaleValue(t *testing.T) {
	source := &stubSource{ratio: 150}
	exchange, clock := newExchange(source, &memoryRatios{})

	_, err := exchange.Current(context.Background(), "Standard")
	require.NoError(t, err)

	clock.Advance(48 * time.Hour)
	source.err = errors.New("ninja down")

	ratio, err := exchange.Current(context.Background(), "Standard")
	require.NoError(t, err)
	require.Equal(t, 150.0, ratio.Ratio)
	require.True(t, ratio.FromCache)
}

func TestExchangeFailsWithoutUsableValue(t *testing.T) {
	source := &stubSource{err: errors.New("ninja down")}
	exchange, _ := newExchange(source, &memoryRatios{})

	_, err := exchange.Current(context.Background(), "Standard")
	require.Error(t, err)
}

func TestExchangeRefreshForcesLookup(t *testing.T) {
	source := &stubSource{ratio: 150}
	exchange, _ := newExchange(source, &memoryRatios{})

	_, err := exchange.Current(context.Background(), "Standard")
	require.NoError(t, err)

	source.ratio = 151
	ratio, err := exchange.Refresh(context.Background(), "Standard")
	require.NoError(t, err)
	require.Equal(t, 151.0, ratio.Ratio)
	require.Equal(t, 2, source.calls)

	source.err = errors.New("ninja down")
	_, err = exchange.Refresh(context.Background(), "Standard")
	require.Error(t, err)
}

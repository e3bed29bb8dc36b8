package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pricelens/pricelens/internal/core"
)

type recordingSnapshots struct {
	saved []*core.PriceSnapshot
	err   error
}

func (r *recordingSnapshots) SaveSnapshot(ctx context.Context, snapshot *core.PriceSnapshot) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, snapshot)
	return nil
}

func newTestService(trade *stubTrade, snapshots SnapshotStore) *Service {
	exchange, _ := newExchange(&stubSource{ratio: 150}, &memoryRatios{})
	return &Service{
		League: "Standard",
		Items: []core.Item{
			{Name: "Belt", Query: "belt"},
			{Name: "Broken", Query: "broken"},
		},
		Aggregator: &Aggregator{Trade: trade, NewID: func() string { return "run-7" }},
		Ratios:     exchange,
		Snapshots:  snapshots,
	}
}

func TestServicePricesAllItemsAndRecordsSuccesses(t *testing.T) {
	trade := newStubTrade()
	trade.failOn = "broken"
	snapshots := &recordingSnapshots{}
	service := newTestService(trade, snapshots)

	run, err := service.Price(context.Background())
	require.NoError(t, err)
	require.Equal(t, "run-7", run.RunID)
	require.Equal(t, 150.0, run.Ratio.Ratio)
	require.Len(t, run.Reports, 2)
	require.Equal(t, 1, run.Failed())

	require.Len(t, snapshots.saved, 1)
	require.Equal(t, "Belt", snapshots.saved[0].Item)
	require.Equal(t, "run-7", snapshots.saved[0].RunID)
}

func TestServiceSelectsNamedItems(t *testing.T) {
	trade := newStubTrade()
	service := newTestService(trade, nil)

	run, err := service.Price(context.Background(), "belt")
	require.NoError(t, err)
	require.Len(t, run.Reports, 1)
	require.Equal(t, []string{"belt"}, trade.queries)

	_, err = service.Price(context.Background(), "Mirror")
	var unknown *UnknownItemError
	require.True(t, errors.As(err, &unknown))
	require.Equal(t, "Mirror", unknown.Name)
}

func TestServiceRequiresItems(t *testing.T) {
	service := newTestService(newStubTrade(), nil)
	service.Items = nil

	_, err := service.Price(context.Background())
	require.ErrorIs(t, err, ErrNoItems)
}

func TestServiceFailsWithoutRatio(t *testing.T) {
	service := newTestService(newStubTrade(), nil)
	service.Ratios.Source = &stubSource{err: errors.New("ninja down")}

	_, err := service.Price(context.Background())
	require.Error(t, err)
}

func TestServiceSnapshotFailureDoesNotFailRun(t *testing.T) {
	service := newTestService(newStubTrade(), &recordingSnapshots{err: errors.New("disk full")})

	run, err := service.Price(context.Background(), "Belt")
	require.NoError(t, err)
	require.Len(t, run.Reports, 1)
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pricelens/pricelens/internal/core"
	"github.com/pricelens/pricelens/internal/metrics"
)

// ErrNoItems is returned when a run has nothing to price.
var ErrNoItems = errors.New("no items configured")

// UnknownItemError names a requested item that is not configured.
type UnknownItemError struct {
	Name string
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("unknown item %q", e.Name)
}

// SnapshotStore records priced items.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot *core.PriceSnapshot) error
}

// Service prices the configured items for one league: it resolves the
// exchange ratio once per run, runs the aggregator and records a snapshot
// for every item that priced without error.
type Service struct {
	League     string
	Items      []core.Item
	Aggregator *Aggregator
	Ratios     *ExchangeRatios
	Snapshots  SnapshotStore
	Logger     Logger
}

// Price runs the named items, or every configured item when names is empty.
func (s *Service) Price(ctx context.Context, names ...string) (*core.PriceRun, error) {
	if s == nil || s.Aggregator == nil || s.Ratios == nil {
		return nil, errors.New("pricing service not configured")
	}

	items, err := s.selectItems(names)
	if err != nil {
		return nil, err
	}

	ratio, err := s.Ratios.Current(ctx, s.League)
	if err != nil {
		return nil, err
	}

	started := s.Aggregator.now()
	reports := s.Aggregator.Run(ctx, s.League, items, ratio.Ratio)
	run := &core.PriceRun{
		League:     s.League,
		Ratio:      ratio,
		Reports:    reports,
		StartedAt:  started,
		FinishedAt: s.Aggregator.now(),
	}
	if len(reports) > 0 {
		run.RunID = reports[0].RunID
	}

	s.record(ctx, run)
	return run, nil
}

func (s *Service) selectItems(names []string) ([]core.Item, error) {
	if len(s.Items) == 0 {
		return nil, ErrNoItems
	}

	wanted := make([]string, 0, len(names))
	for _, name := range names {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			wanted = append(wanted, trimmed)
		}
	}
	if len(wanted) == 0 {
		return s.Items, nil
	}

	selected := make([]core.Item, 0, len(wanted))
	for _, name := range wanted {
		found := false
		for _, item := range s.Items {
			if strings.EqualFold(strings.TrimSpace(item.Name), name) {
				selected = append(selected, item)
				found = true
				break
			}
		}
		if !found {
			return nil, &UnknownItemError{Name: name}
		}
	}
	return selected, nil
}

// record stores snapshots; a storage failure is logged and does not fail the run.
func (s *Service) record(ctx context.Context, run *core.PriceRun) {
	if s.Snapshots == nil {
		return
	}
	for _, report := range run.Reports {
		snapshot := core.NewSnapshot(report)
		if snapshot == nil {
			continue
		}
		if err := s.Snapshots.SaveSnapshot(ctx, snapshot); err != nil {
			metrics.RecordSnapshotFailure()
			if s.Logger != nil {
				s.Logger.Warn("Failed to record price snapshot",
					zap.String("item", snapshot.Item),
					zap.String("run_id", snapshot.RunID),
					zap.Error(err))
			}
		}
	}
}

// Elapsed reports how long a run took.
func Elapsed(run *core.PriceRun) time.Duration {
	if run == nil || run.FinishedAt.Before(run.StartedAt) {
		return 0
	}
	return run.FinishedAt.Sub(run.StartedAt)
}

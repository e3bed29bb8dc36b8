package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/pricelens/pricelens/internal/core"
	"github.com/pricelens/pricelens/internal/metrics"
)

// DefaultRatioMaxAge is how long a looked-up ratio stays current.
const DefaultRatioMaxAge = 24 * time.Hour

// RatioSource looks up the live exchange ratio for a league.
type RatioSource interface {
	ChaosRatio(ctx context.Context, league string) (float64, error)
}

// RatioStore persists the last looked-up ratio per league.
type RatioStore interface {
	GetExchangeRatio(ctx context.Context, league string) (*core.ExchangeRatio, error)
	SetExchangeRatio(ctx context.Context, ratio core.ExchangeRatio) error
}

// Logger is the subset of the application logger the engine writes to.
type Logger interface {
	Warn(msg string, fields ...zap.Field)
}

// ExchangeRatios serves the chaos-per-divine ratio, refreshing it from the
// source once the stored value is older than MaxAge.
type ExchangeRatios struct {
	Source RatioSource
	Store  RatioStore
	MaxAge time.Duration
	Clock  clockwork.Clock
	Logger Logger
}

// Current returns a usable ratio for league, looking it up only when the
// stored one is missing, non-positive, or stale.
func (e *ExchangeRatios) Current(ctx context.Context, league string) (core.ExchangeRatio, error) {
	league = strings.TrimSpace(league)
	if league == "" {
		return core.ExchangeRatio{}, errors.New("league is required")
	}

	cached, err := e.cached(ctx, league)
	if err != nil {
		return core.ExchangeRatio{}, err
	}
	if cached != nil && cached.Ratio > 0 && cached.Age(e.now()) < e.maxAge() {
		cached.FromCache = true
		metrics.RecordExchangeRatio(league, cached.Ratio, false)
		return *cached, nil
	}

	ratio, err := e.lookup(ctx, league)
	if err != nil {
		if cached != nil && cached.Ratio > 0 {
			e.warn("Exchange ratio refresh failed, using stale value",
				zap.String("league", league),
				zap.Float64("ratio", cached.Ratio),
				zap.Duration("age", cached.Age(e.now())),
				zap.Error(err))
			cached.FromCache = true
			metrics.RecordExchangeRatio(league, cached.Ratio, false)
			return *cached, nil
		}
		return core.ExchangeRatio{}, err
	}
	return ratio, nil
}

// Refresh looks up the ratio regardless of the stored value's age.
func (e *ExchangeRatios) Refresh(ctx context.Context, league string) (core.ExchangeRatio, error) {
	league = strings.TrimSpace(league)
	if league == "" {
		return core.ExchangeRatio{}, errors.New("league is required")
	}
	return e.lookup(ctx, league)
}

func (e *ExchangeRatios) lookup(ctx context.Context, league string) (core.ExchangeRatio, error) {
	if e.Source == nil {
		return core.ExchangeRatio{}, errors.New("exchange ratio source not configured")
	}

	value, err := e.Source.ChaosRatio(ctx, league)
	if err != nil {
		return core.ExchangeRatio{}, fmt.Errorf("lookup exchange ratio: %w", err)
	}
	if value <= 0 {
		return core.ExchangeRatio{}, fmt.Errorf("lookup exchange ratio: non-positive ratio %v", value)
	}

	ratio := core.ExchangeRatio{
		League:    league,
		Ratio:     value,
		UpdatedAt: e.now(),
	}
	if e.Store != nil {
		if err := e.Store.SetExchangeRatio(ctx, ratio); err != nil {
			return core.ExchangeRatio{}, fmt.Errorf("store exchange ratio: %w", err)
		}
	}
	metrics.RecordExchangeRatio(league, ratio.Ratio, true)
	return ratio, nil
}

func (e *ExchangeRatios) cached(ctx context.Context, league string) (*core.ExchangeRatio, error) {
	if e.Store == nil {
		return nil, nil
	}
	ratio, err := e.Store.GetExchangeRatio(ctx, league)
	if err != nil {
		return nil, fmt.Errorf("load exchange ratio: %w", err)
	}
	return ratio, nil
}

func (e *ExchangeRatios) maxAge() time.Duration {
	if e.MaxAge > 0 {
		return e.MaxAge
	}
	return DefaultRatioMaxAge
}

func (e *ExchangeRatios) now() time.Time {
	if e.Clock != nil {
		return e.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (e *ExchangeRatios) warn(msg string, fields ...zap.Field) {
	if e.Logger != nil {
		e.Logger.Warn(msg, fields...)
	}
}

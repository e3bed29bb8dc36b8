package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pricelens/pricelens/internal/core"
)

// GetExchangeRatio returns the stored ratio for a league, or nil when none was recorded.
func (s *Store) GetExchangeRatio(ctx context.Context, league string) (*core.ExchangeRatio, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	league = strings.TrimSpace(league)
	if league == "" {
		return nil, errors.New("league is required")
	}

	var (
		ratio     float64
		updatedAt int64
	)

	row := s.DB.QueryRowContext(ctx, `
		SELECT ratio, updated_at
		FROM exchange_ratios
		WHERE league = ?
	`, league)

	if err := row.Scan(&ratio, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch exchange ratio: %w", err)
	}

	return &core.ExchangeRatio{
		League:    league,
		Ratio:     ratio,
		UpdatedAt: time.Unix(updatedAt, 0).UTC(),
	}, nil
}

// SetExchangeRatio persists the ratio for a league, replacing any earlier value.
func (s *Store) SetExchangeRatio(ctx context.Context, ratio core.ExchangeRatio) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	league := strings.TrimSpace(ratio.League)
	if league == "" {
		return errors.New("league is required")
	}
	if ratio.Ratio <= 0 {
		return fmt.Errorf("exchange ratio must be positive, got %v", ratio.Ratio)
	}

	updatedAt := ratio.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO exchange_ratios (league, ratio, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(league) DO UPDATE SET
			ratio = excluded.ratio,
			updated_at = excluded.updated_at
	`, league, ratio.Ratio, updatedAt.UTC().Unix())
	if err != nil {
		return fmt.Errorf("store exchange ratio: %w", err)
	}

	return nil
}

// ListExchangeRatios returns every stored ratio ordered by league.
func (s *Store) ListExchangeRatios(ctx context.Context) ([]core.ExchangeRatio, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT league, ratio, updated_at
		FROM exchange_ratios
		ORDER BY league
	`)
	if err != nil {
		return nil, fmt.Errorf("list exchange ratios: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup

	ratios := []core.ExchangeRatio{}
	for rows.Next() {
		var (
			league    string
			ratio     float64
			updatedAt int64
		)
		if err := rows.Scan(&league, &ratio, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan exchange ratios: %w", err)
		}
		ratios = append(ratios, core.ExchangeRatio{
			League:    league,
			Ratio:     ratio,
			UpdatedAt: time.Unix(updatedAt, 0).UTC(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list exchange ratios: %w", err)
	}

	return ratios, nil
}

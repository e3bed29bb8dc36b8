package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pricelens/pricelens/internal/core"
)

const defaultSnapshotLimit = 20

// SnapshotQuery filters stored price snapshots. Empty fields match everything.
type SnapshotQuery struct {
	Item   string
	League string
	RunID  string
	Limit  int
}

func (q SnapshotQuery) whereClause() (string, []any) {
	clauses := []string{}
	args := []any{}
	if item := strings.TrimSpace(q.Item); item != "" {
		clauses = append(clauses, "item = ? COLLATE NOCASE")
		args = append(args, item)
	}
	if league := strings.TrimSpace(q.League); league != "" {
		clauses = append(clauses, "league = ?")
		args = append(args, league)
	}
	if runID := strings.TrimSpace(q.RunID); runID != "" {
		clauses = append(clauses, "run_id = ?")
		args = append(args, runID)
	}
	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func (q SnapshotQuery) limit() int {
	if q.Limit <= 0 {
		return defaultSnapshotLimit
	}
	return q.Limit
}

// SaveSnapshot stores a snapshot, assigning an id when it has none.
func (s *Store) SaveSnapshot(ctx context.Context, snapshot *core.PriceSnapshot) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if snapshot == nil {
		return errors.New("snapshot is required")
	}
	if strings.TrimSpace(snapshot.Item) == "" {
		return errors.New("snapshot item is required")
	}

	if strings.TrimSpace(snapshot.ID) == "" {
		snapshot.ID = uuid.NewString()
	}
	if snapshot.RecordedAt.IsZero() {
		snapshot.RecordedAt = time.Now().UTC()
	}

	samples := snapshot.Samples
	if samples == nil {
		samples = []float64{}
	}
	samplesJSON, err := json.Marshal(samples)
	if err != nil {
		return fmt.Errorf("encode snapshot samples: %w", err)
	}

	var average sql.NullFloat64
	if snapshot.HasAverage {
		average = sql.NullFloat64{Float64: snapshot.Average, Valid: true}
	}

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO price_snapshots (id, run_id, league, item, average, samples, listings, ratio, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, snapshot.ID, snapshot.RunID, snapshot.League, snapshot.Item, average, string(samplesJSON),
		snapshot.Listings, snapshot.Ratio, snapshot.RecordedAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}

	return nil
}

// ListSnapshots returns matching snapshots, newest first.
func (s *Store) ListSnapshots(ctx context.Context, q SnapshotQuery) ([]core.PriceSnapshot, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	where, args := q.whereClause()
	args = append(args, q.limit())

	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, run_id, league, item, average, samples, listings, ratio, recorded_at
		FROM price_snapshots
		%s
		ORDER BY recorded_at DESC, item
		LIMIT ?
	`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup

	snapshots := []core.PriceSnapshot{}
	for rows.Next() {
		var (
			snapshot    core.PriceSnapshot
			average     sql.NullFloat64
			samplesJSON string
			recordedAt  int64
		)
		if err := rows.Scan(&snapshot.ID, &snapshot.RunID, &snapshot.League, &snapshot.Item, &average,
			&samplesJSON, &snapshot.Listings, &snapshot.Ratio, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan snapshots: %w", err)
		}
		if err := json.Unmarshal([]byte(samplesJSON), &snapshot.Samples); err != nil {
			return nil, fmt.Errorf("decode snapshot samples: %w", err)
		}
		if average.Valid {
			snapshot.Average = average.Float64
			snapshot.HasAverage = true
		}
		snapshot.RecordedAt = time.UnixMilli(recordedAt).UTC()
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	return snapshots, nil
}

// CountSnapshots returns how many snapshots match q, ignoring its limit.
func (s *Store) CountSnapshots(ctx context.Context, q SnapshotQuery) (int, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	where, args := q.whereClause()
	row := s.DB.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT COUNT(*)
		FROM price_snapshots
		%s
	`, where), args...)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return count, nil
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Calibrhq/calibr-app-sub000/internal/domain"
)

// SnapshotStore implements domain.SnapshotStore using PostgreSQL. Rows and
// market views are stored as JSONB so the snapshot schema can evolve without
// migrations.
type SnapshotStore struct {
	pool *pgxpool.Pool
}

// NewSnapshotStore creates a new SnapshotStore backed by the given pool.
func NewSnapshotStore(pool *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

// Insert appends a snapshot to the history.
func (s *SnapshotStore) Insert(ctx context.Context, snap domain.LeaderboardSnapshot) error {
	rowsJSON, err := json.Marshal(snap.Rows)
	if err != nil {
		return fmt.Errorf("postgres: marshal snapshot rows: %w", err)
	}
	marketsJSON, err := json.Marshal(snap.Markets)
	if err != nil {
		return fmt.Errorf("postgres: marshal snapshot markets: %w", err)
	}

	const query = `
		INSERT INTO leaderboard_snapshots (id, window_id, board, markets, taken_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := s.pool.Exec(ctx, query, snap.ID, string(snap.Window), rowsJSON, marketsJSON, snap.TakenAt); err != nil {
		return fmt.Errorf("postgres: insert snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// Latest returns the most recent snapshot for a window, or domain.ErrNotFound
// when the history is empty.
func (s *SnapshotStore) Latest(ctx context.Context, window domain.Window) (domain.LeaderboardSnapshot, error) {
	const query = `
		SELECT id, window_id, board, markets, taken_at
		FROM leaderboard_snapshots
		WHERE window_id = $1
		ORDER BY taken_at DESC
		LIMIT 1`

	snap, err := scanSnapshot(s.pool.QueryRow(ctx, query, string(window)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.LeaderboardSnapshot{}, domain.ErrNotFound
		}
		return domain.LeaderboardSnapshot{}, fmt.Errorf("postgres: latest snapshot %s: %w", window, err)
	}
	return snap, nil
}

// ListBefore returns snapshots taken before the cutoff, oldest first, so the
// archiver can drain history in stable order. A limit <= 0 returns everything
// before the cutoff.
func (s *SnapshotStore) ListBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.LeaderboardSnapshot, error) {
	query := `
		SELECT id, window_id, board, markets, taken_at
		FROM leaderboard_snapshots
		WHERE taken_at < $1
		ORDER BY taken_at ASC`
	args := []any{cutoff}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list snapshots before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	defer rows.Close()

	var snaps []domain.LeaderboardSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list snapshots rows: %w", err)
	}
	return snaps, nil
}

// DeleteBefore removes snapshots taken before the cutoff and returns how many
// were deleted.
func (s *SnapshotStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM leaderboard_snapshots WHERE taken_at < $1`
	tag, err := s.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete snapshots before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	return tag.RowsAffected(), nil
}

// Count returns the number of snapshots currently retained.
func (s *SnapshotStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leaderboard_snapshots`).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count snapshots: %w", err)
	}
	return n, nil
}

func scanSnapshot(row pgx.Row) (domain.LeaderboardSnapshot, error) {
	var (
		snap        domain.LeaderboardSnapshot
		windowID    string
		rowsJSON    []byte
		marketsJSON []byte
	)
	if err := row.Scan(&snap.ID, &windowID, &rowsJSON, &marketsJSON, &snap.TakenAt); err != nil {
		return domain.LeaderboardSnapshot{}, err
	}
	snap.Window = domain.Window(windowID)

	if err := json.Unmarshal(rowsJSON, &snap.Rows); err != nil {
		return domain.LeaderboardSnapshot{}, fmt.Errorf("unmarshal rows: %w", err)
	}
	if err := json.Unmarshal(marketsJSON, &snap.Markets); err != nil {
		return domain.LeaderboardSnapshot{}, fmt.Errorf("unmarshal markets: %w", err)
	}
	return snap, nil
}

// Compile-time interface check.
var _ domain.SnapshotStore = (*SnapshotStore)(nil)

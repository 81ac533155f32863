package domain

import (
	"context"
	"time"
)

// SnapshotStore persists leaderboard snapshot history.
type SnapshotStore interface {
	Insert(ctx context.Context, snap LeaderboardSnapshot) error
	Latest(ctx context.Context, window Window) (LeaderboardSnapshot, error)
	ListBefore(ctx context.Context, cutoff time.Time, limit int) ([]LeaderboardSnapshot, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
}

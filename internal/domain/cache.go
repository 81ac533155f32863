package domain

import (
	"context"
	"time"
)

// SnapshotCache holds the latest leaderboard snapshot per window for the
// serving path. A cache miss is reported as ErrNotFound.
type SnapshotCache interface {
	Set(ctx context.Context, snap LeaderboardSnapshot) error
	Get(ctx context.Context, window Window) (LeaderboardSnapshot, error)
	Invalidate(ctx context.Context, window Window) error
}

// SignalBus provides pub/sub fan-out from the polling pipeline to the
// WebSocket hub.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// RateLimiter bounds request rates per key. Allow returns true when the
// request fits under the limit and counts it.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

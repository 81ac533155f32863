package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Calibrhq/calibr-app-sub000/internal/domain"
)

// SnapshotCache implements domain.SnapshotCache using Redis string keys.
// The latest leaderboard snapshot for each window is stored as JSON at
// "leaderboard:{window}" with a TTL, so a stalled poller eventually surfaces
// as a cache miss instead of a silently frozen board.
type SnapshotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSnapshotCache creates a SnapshotCache backed by the given Client. A zero
// ttl disables expiry.
func NewSnapshotCache(c *Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{rdb: c.Underlying(), ttl: ttl}
}

func snapshotKey(window domain.Window) string {
	return "leaderboard:" + string(window)
}

// Set stores the snapshot as the latest for its window.
func (sc *SnapshotCache) Set(ctx context.Context, snap domain.LeaderboardSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("redis: marshal snapshot %s: %w", snap.Window, err)
	}
	if err := sc.rdb.Set(ctx, snapshotKey(snap.Window), data, sc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set snapshot %s: %w", snap.Window, err)
	}
	return nil
}

// Get retrieves the latest snapshot for a window. It returns
// domain.ErrNotFound when no snapshot has been cached yet or the TTL expired.
func (sc *SnapshotCache) Get(ctx context.Context, window domain.Window) (domain.LeaderboardSnapshot, error) {
	data, err := sc.rdb.Get(ctx, snapshotKey(window)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.LeaderboardSnapshot{}, domain.ErrNotFound
		}
		return domain.LeaderboardSnapshot{}, fmt.Errorf("redis: get snapshot %s: %w", window, err)
	}

	var snap domain.LeaderboardSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.LeaderboardSnapshot{}, fmt.Errorf("redis: unmarshal snapshot %s: %w", window, err)
	}
	return snap, nil
}

// Invalidate drops the cached snapshot for a window.
func (sc *SnapshotCache) Invalidate(ctx context.Context, window domain.Window) error {
	if err := sc.rdb.Del(ctx, snapshotKey(window)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate snapshot %s: %w", window, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.SnapshotCache = (*SnapshotCache)(nil)

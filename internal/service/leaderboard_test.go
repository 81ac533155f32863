package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Calibrhq/calibr-app-sub000/internal/domain"
)

type fakeCache struct {
	snaps map[domain.Window]domain.LeaderboardSnapshot
	err   error
}

func (f *fakeCache) Set(ctx context.Context, snap domain.LeaderboardSnapshot) error {
	if f.snaps == nil {
		f.snaps = make(map[domain.Window]domain.LeaderboardSnapshot)
	}
	f.snaps[snap.Window] = snap
	return nil
}

func (f *fakeCache) Get(ctx context.Context, window domain.Window) (domain.LeaderboardSnapshot, error) {
	if f.err != nil {
		return domain.LeaderboardSnapshot{}, f.err
	}
	snap, ok := f.snaps[window]
	if !ok {
		return domain.LeaderboardSnapshot{}, domain.ErrNotFound
	}
	return snap, nil
}

func (f *fakeCache) Invalidate(ctx context.Context, window domain.Window) error {
	delete(f.snaps, window)
	return nil
}

type fakeStore struct {
	latest map[domain.Window]domain.LeaderboardSnapshot
}

func (f *fakeStore) Insert(ctx context.Context, snap domain.LeaderboardSnapshot) error { return nil }

func (f *fakeStore) Latest(ctx context.Context, window domain.Window) (domain.LeaderboardSnapshot, error) {
	snap, ok := f.latest[window]
	if !ok {
		return domain.LeaderboardSnapshot{}, domain.ErrNotFound
	}
	return snap, nil
}

func (f *fakeStore) ListBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.LeaderboardSnapshot, error) {
	return nil, nil
}

func (f *fakeStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeStore) Count(ctx context.Context) (int64, error) { return int64(len(f.latest)), nil }

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func snapshotFixture(window domain.Window) domain.LeaderboardSnapshot {
	return domain.LeaderboardSnapshot{
		ID:     "snap-1",
		Window: window,
		Rows: []domain.LeaderboardRow{
			{Rank: 1, Address: "0xa", Reputation: 820},
			{Rank: 2, Address: "0xb", Reputation: 700},
		},
		Markets: []domain.MarketSnapshot{
			{ID: "m1", Question: "Will A?", Status: domain.MarketStatusActive},
		},
		TakenAt: time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC),
	}
}

func TestLeaderboard_ServesFromCache(t *testing.T) {
	cache := &fakeCache{}
	require.NoError(t, cache.Set(context.Background(), snapshotFixture(domain.WindowAll)))
	svc := NewLeaderboardService(cache, &fakeStore{}, nil, testLogger())

	snap, err := svc.Leaderboard(context.Background(), domain.WindowAll, "")
	require.NoError(t, err)
	require.Equal(t, "snap-1", snap.ID)
	require.Len(t, snap.Rows, 2)
}

func TestLeaderboard_FallsBackToStoreOnMiss(t *testing.T) {
	store := &fakeStore{latest: map[domain.Window]domain.LeaderboardSnapshot{
		domain.WindowWeek: snapshotFixture(domain.WindowWeek),
	}}
	svc := NewLeaderboardService(&fakeCache{}, store, nil, testLogger())

	snap, err := svc.Leaderboard(context.Background(), domain.WindowWeek, "")
	require.NoError(t, err)
	require.Equal(t, domain.WindowWeek, snap.Window)
}

func TestLeaderboard_FallsBackToStoreOnCacheFailure(t *testing.T) {
	cache := &fakeCache{err: errors.New("redis down")}
	store := &fakeStore{latest: map[domain.Window]domain.LeaderboardSnapshot{
		domain.WindowAll: snapshotFixture(domain.WindowAll),
	}}
	svc := NewLeaderboardService(cache, store, nil, testLogger())

	snap, err := svc.Leaderboard(context.Background(), domain.WindowAll, "")
	require.NoError(t, err)
	require.Equal(t, "snap-1", snap.ID)
}

func TestLeaderboard_InvalidWindow(t *testing.T) {
	svc := NewLeaderboardService(&fakeCache{}, &fakeStore{}, nil, testLogger())

	_, err := svc.Leaderboard(context.Background(), domain.Window("fortnight"), "")
	require.ErrorIs(t, err, domain.ErrInvalidWindow)
}

func TestLeaderboard_NoSnapshotYet(t *testing.T) {
	svc := NewLeaderboardService(&fakeCache{}, &fakeStore{}, nil, testLogger())

	_, err := svc.Leaderboard(context.Background(), domain.WindowAll, "")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLeaderboard_MarksViewerRow(t *testing.T) {
	cache := &fakeCache{}
	require.NoError(t, cache.Set(context.Background(), snapshotFixture(domain.WindowAll)))
	svc := NewLeaderboardService(cache, &fakeStore{}, nil, testLogger())

	snap, err := svc.Leaderboard(context.Background(), domain.WindowAll, "0xb")
	require.NoError(t, err)
	require.False(t, snap.Rows[0].IsYou)
	require.True(t, snap.Rows[1].IsYou)
}

func TestMarket_ByID(t *testing.T) {
	cache := &fakeCache{}
	require.NoError(t, cache.Set(context.Background(), snapshotFixture(domain.WindowAll)))
	svc := NewLeaderboardService(cache, &fakeStore{}, nil, testLogger())

	m, err := svc.Market(context.Background(), "m1")
	require.NoError(t, err)
	require.Equal(t, "Will A?", m.Question)

	_, err = svc.Market(context.Background(), "m404")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUser_RowWithoutLedgerClient(t *testing.T) {
	cache := &fakeCache{}
	require.NoError(t, cache.Set(context.Background(), snapshotFixture(domain.WindowAll)))
	svc := NewLeaderboardService(cache, &fakeStore{}, nil, testLogger())

	detail, err := svc.User(context.Background(), domain.WindowAll, "0xa")
	require.NoError(t, err)
	require.Equal(t, "0xa", detail.Row.Address)
	require.True(t, detail.Row.IsYou)
	require.Empty(t, detail.Predictions, "no ledger client means the join is skipped")
}

func TestUser_NotOnBoard(t *testing.T) {
	cache := &fakeCache{}
	require.NoError(t, cache.Set(context.Background(), snapshotFixture(domain.WindowAll)))
	svc := NewLeaderboardService(cache, &fakeStore{}, nil, testLogger())

	_, err := svc.User(context.Background(), domain.WindowAll, "0xzzz")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

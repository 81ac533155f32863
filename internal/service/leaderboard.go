// Package service contains the read-side application services the HTTP
// layer is built on. Handlers stay thin; snapshot lookup, fallbacks, and
// per-user joins live here.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Calibrhq/calibr-app-sub000/internal/aggregate"
	"github.com/Calibrhq/calibr-app-sub000/internal/domain"
	"github.com/Calibrhq/calibr-app-sub000/internal/ledger"
)

// LeaderboardService serves leaderboard snapshots from the cache with a
// snapshot-store fallback, and joins per-user prediction detail on demand.
type LeaderboardService struct {
	cache  domain.SnapshotCache
	store  domain.SnapshotStore
	client *ledger.Client // nil when the ledger is not configured
	logger *slog.Logger
}

// NewLeaderboardService creates the service. client may be nil; user detail
// then omits the prediction list.
func NewLeaderboardService(
	cache domain.SnapshotCache,
	store domain.SnapshotStore,
	client *ledger.Client,
	logger *slog.Logger,
) *LeaderboardService {
	return &LeaderboardService{
		cache:  cache,
		store:  store,
		client: client,
		logger: logger.With(slog.String("component", "leaderboard_service")),
	}
}

// Leaderboard returns the latest snapshot for a window. The viewer address,
// when non-empty, marks the matching row. It returns domain.ErrInvalidWindow
// for unknown windows and domain.ErrNotFound when no snapshot exists yet.
func (s *LeaderboardService) Leaderboard(ctx context.Context, window domain.Window, viewer string) (domain.LeaderboardSnapshot, error) {
	if !window.Valid() {
		return domain.LeaderboardSnapshot{}, fmt.Errorf("%w: %q", domain.ErrInvalidWindow, window)
	}

	snap, err := s.latest(ctx, window)
	if err != nil {
		return domain.LeaderboardSnapshot{}, err
	}

	if viewer != "" {
		for i := range snap.Rows {
			snap.Rows[i].IsYou = snap.Rows[i].Address == viewer
		}
	}
	return snap, nil
}

// Markets returns the market views from the latest all-time snapshot.
func (s *LeaderboardService) Markets(ctx context.Context) ([]domain.MarketSnapshot, error) {
	snap, err := s.latest(ctx, domain.WindowAll)
	if err != nil {
		return nil, err
	}
	return snap.Markets, nil
}

// Market returns a single market view by id, or domain.ErrNotFound.
func (s *LeaderboardService) Market(ctx context.Context, id string) (domain.MarketSnapshot, error) {
	markets, err := s.Markets(ctx)
	if err != nil {
		return domain.MarketSnapshot{}, err
	}
	for _, m := range markets {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.MarketSnapshot{}, fmt.Errorf("%w: market %s", domain.ErrNotFound, id)
}

// UserDetail is a user's leaderboard row joined with their prediction
// history.
type UserDetail struct {
	Row         domain.LeaderboardRow   `json:"row"`
	Predictions []domain.PredictionView `json:"predictions"`
}

// User returns one user's row for the window plus their predictions. The row
// comes from the snapshot; predictions are fetched live from the ledger when
// a client is configured, and omitted otherwise. An address absent from the
// board yields domain.ErrNotFound.
func (s *LeaderboardService) User(ctx context.Context, window domain.Window, address string) (UserDetail, error) {
	snap, err := s.Leaderboard(ctx, window, address)
	if err != nil {
		return UserDetail{}, err
	}

	var detail UserDetail
	found := false
	for _, row := range snap.Rows {
		if row.Address == address {
			detail.Row = row
			found = true
			break
		}
	}
	if !found {
		return UserDetail{}, fmt.Errorf("%w: user %s", domain.ErrNotFound, address)
	}

	detail.Predictions = s.predictions(ctx, address, snap.Markets)
	return detail, nil
}

// predictions fetches and joins the user's placed and settled predictions.
// Fetch failures degrade to an empty list; the row is still served.
func (s *LeaderboardService) predictions(ctx context.Context, address string, markets []domain.MarketSnapshot) []domain.PredictionView {
	if s.client == nil {
		return nil
	}

	raw := ledger.RawEvents{
		Predictions: s.client.FetchAllEvents(ctx, domain.KindPredictionPlaced),
		Settlements: s.client.FetchAllEvents(ctx, domain.KindPredictionSettled),
	}
	batch := ledger.BuildBatch(raw, s.logger)

	questions := make(map[string]string, len(markets))
	for _, m := range markets {
		questions[m.ID] = m.Question
	}

	return aggregate.BuildPredictionViews(address, batch.Predictions, batch.Settlements, questions)
}

// latest reads the cached snapshot and falls back to the store when the cache
// misses or fails.
func (s *LeaderboardService) latest(ctx context.Context, window domain.Window) (domain.LeaderboardSnapshot, error) {
	snap, err := s.cache.Get(ctx, window)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn("snapshot cache read failed, falling back to store",
			slog.String("window", string(window)),
			slog.String("error", err.Error()),
		)
	}

	snap, err = s.store.Latest(ctx, window)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.LeaderboardSnapshot{}, fmt.Errorf("%w: no snapshot for window %s", domain.ErrNotFound, window)
		}
		return domain.LeaderboardSnapshot{}, fmt.Errorf("latest snapshot %s: %w", window, err)
	}
	return snap, nil
}

// Package pipeline runs the polling loops that turn raw ledger events into
// served leaderboard snapshots: the poller refreshes the cache and snapshot
// history on a fixed interval, the archive loop drains aged history to cold
// storage.
package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Calibrhq/calibr-app-sub000/internal/aggregate"
	"github.com/Calibrhq/calibr-app-sub000/internal/domain"
	"github.com/Calibrhq/calibr-app-sub000/internal/ledger"
	"github.com/Calibrhq/calibr-app-sub000/internal/notify"
)

// ChannelLeaderboard is the pub/sub channel refresh signals are published on.
const ChannelLeaderboard = "leaderboard"

// RefreshSignal is the payload published after each successful polling pass.
type RefreshSignal struct {
	SnapshotID string    `json:"snapshot_id"`
	Window     string    `json:"window"`
	Users      int       `json:"users"`
	Markets    int       `json:"markets"`
	TakenAt    time.Time `json:"taken_at"`
}

// LeaderboardPoller drives one full aggregation pass per tick: fetch every
// event kind, decode, reduce per window, rank, persist, publish.
type LeaderboardPoller struct {
	client   *ledger.Client
	store    domain.SnapshotStore
	cache    domain.SnapshotCache
	bus      domain.SignalBus
	notifier *notify.Notifier
	logger   *slog.Logger

	// seenMarkets accumulates market ids over the poller's lifetime so new
	// markets can be announced once. The first pass primes the set silently.
	seenMarkets map[string]bool
	primed      bool
}

// NewLeaderboardPoller creates a poller. The notifier may be nil when no
// notification channels are configured.
func NewLeaderboardPoller(
	client *ledger.Client,
	store domain.SnapshotStore,
	cache domain.SnapshotCache,
	bus domain.SignalBus,
	notifier *notify.Notifier,
	logger *slog.Logger,
) *LeaderboardPoller {
	return &LeaderboardPoller{
		client:      client,
		store:       store,
		cache:       cache,
		bus:         bus,
		notifier:    notifier,
		logger:      logger.With(slog.String("component", "poller")),
		seenMarkets: make(map[string]bool),
	}
}

// RunOnce executes a single polling pass. Fetch and decode failures degrade
// to partial views with logged warnings; only persistence failures are
// returned, since a pass that cannot store its snapshots has nothing to show
// for itself.
func (p *LeaderboardPoller) RunOnce(ctx context.Context) error {
	started := time.Now()
	now := started.UTC()

	raw := ledger.RawEvents{
		Profiles:          p.client.FetchAllEvents(ctx, domain.KindProfileCreated),
		ReputationUpdates: p.client.FetchAllEvents(ctx, domain.KindReputationUpdated),
		Predictions:       p.client.FetchAllEvents(ctx, domain.KindPredictionPlaced),
		Settlements:       p.client.FetchAllEvents(ctx, domain.KindPredictionSettled),
		Markets:           p.client.FetchAllEvents(ctx, domain.KindMarketCreated),
	}
	batch := ledger.BuildBatch(raw, p.logger)

	markets := p.buildMarketViews(ctx, batch.Markets)

	var firstErr error
	for _, window := range domain.Windows {
		aggs := aggregate.Reduce(batch, window, now, p.logger)
		rows := aggregate.Rank(aggs, window, "")

		snap := domain.LeaderboardSnapshot{
			ID:      uuid.NewString(),
			Window:  window,
			Rows:    rows,
			Markets: markets,
			TakenAt: now,
		}

		if err := p.store.Insert(ctx, snap); err != nil {
			p.logger.Error("snapshot insert failed",
				slog.String("window", string(window)),
				slog.String("error", err.Error()),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := p.cache.Set(ctx, snap); err != nil {
			p.logger.Warn("snapshot cache set failed",
				slog.String("window", string(window)),
				slog.String("error", err.Error()),
			)
		}

		p.publish(ctx, RefreshSignal{
			SnapshotID: snap.ID,
			Window:     string(window),
			Users:      len(rows),
			Markets:    len(markets),
			TakenAt:    now,
		})
	}

	p.announceNewMarkets(ctx, batch.Markets)

	p.logger.Info("polling pass complete",
		slog.Int("users", len(batch.Profiles)),
		slog.Int("settlements", len(batch.Settlements)),
		slog.Int("markets", len(markets)),
		slog.Duration("elapsed", time.Since(started)),
	)
	return firstErr
}

// RunLoop runs RunOnce immediately and then on every tick until the context
// is cancelled. Pass failures are logged and reported through the notifier;
// the loop never stops on them.
func (p *LeaderboardPoller) RunLoop(ctx context.Context, interval time.Duration) error {
	p.runReporting(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller loop stopped")
			return ctx.Err()
		case <-ticker.C:
			p.runReporting(ctx)
		}
	}
}

func (p *LeaderboardPoller) runReporting(ctx context.Context) {
	if err := p.RunOnce(ctx); err != nil && ctx.Err() == nil {
		p.logger.Error("polling pass failed", slog.String("error", err.Error()))
		if p.notifier != nil {
			_ = p.notifier.Notify(ctx, "poll_failed",
				"Polling pass failed",
				err.Error(),
			)
		}
	}
}

// buildMarketViews joins MarketCreated events with their current object
// state. An object fetch failure degrades to event-only views.
func (p *LeaderboardPoller) buildMarketViews(ctx context.Context, created []domain.MarketCreated) []domain.MarketSnapshot {
	ids := make([]string, 0, len(created))
	for _, m := range created {
		ids = append(ids, m.MarketID)
	}

	var states []domain.MarketState
	objects, err := p.client.GetObjects(ctx, ids)
	if err != nil {
		p.logger.Warn("market object fetch failed, serving event-only views",
			slog.Int("markets", len(ids)),
			slog.String("error", err.Error()),
		)
	} else {
		states = ledger.ParseMarketStates(objects, p.logger)
	}

	return aggregate.BuildMarketViews(created, states)
}

func (p *LeaderboardPoller) publish(ctx context.Context, sig RefreshSignal) {
	payload, err := json.Marshal(sig)
	if err != nil {
		p.logger.Warn("marshal refresh signal", slog.String("error", err.Error()))
		return
	}
	if err := p.bus.Publish(ctx, ChannelLeaderboard, payload); err != nil {
		p.logger.Warn("publish refresh signal", slog.String("error", err.Error()))
	}
}

// announceNewMarkets notifies once per market id first seen after the priming
// pass.
func (p *LeaderboardPoller) announceNewMarkets(ctx context.Context, markets []domain.MarketCreated) {
	for _, m := range markets {
		if p.seenMarkets[m.MarketID] {
			continue
		}
		p.seenMarkets[m.MarketID] = true

		if !p.primed || p.notifier == nil {
			continue
		}
		_ = p.notifier.Notify(ctx, "market_created",
			"New market: "+m.Question,
			"Market "+m.MarketID+" opened.",
		)
	}
	p.primed = true
}

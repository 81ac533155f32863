// Package aggregate folds the ledger event log into per-user aggregates and
// projects them into leaderboard, market, and prediction views. Everything
// here is a pure, full re-derivation: each call builds its result from
// scratch, so running the same input twice yields identical output and no
// state survives between polling passes.
package aggregate

import (
	"log/slog"
	"sort"
	"time"

	"github.com/Calibrhq/calibr-app-sub000/internal/domain"
)

// Reduce folds one pass's event batch into a map of per-address aggregates.
//
// The window applies to the counters only (PredictionsCount, Wins, PnL);
// History is built from every settlement regardless of window. This asymmetry
// is deliberate: a user's current form should not reset because the viewer
// switched to "this week".
func Reduce(batch domain.EventBatch, window domain.Window, now time.Time, logger *slog.Logger) map[string]*domain.UserAggregate {
	aggs := make(map[string]*domain.UserAggregate, len(batch.Profiles))

	// 1. Seed from profile creations. A duplicate profile for an address is
	// an indexer quirk; the first one wins.
	for _, p := range batch.Profiles {
		if _, ok := aggs[p.User]; ok {
			logger.Warn("duplicate profile event", slog.String("address", p.User))
			continue
		}
		aggs[p.User] = &domain.UserAggregate{
			Address:    p.User,
			Reputation: p.Reputation,
		}
	}

	// 2. Fold reputation updates in ascending time order. ApplyReputation
	// enforces latest-wins; under ascending iteration a timestamp tie goes to
	// the last event processed.
	updates := make([]domain.ReputationUpdated, len(batch.ReputationUpdates))
	copy(updates, batch.ReputationUpdates)
	sort.SliceStable(updates, func(i, j int) bool {
		return updates[i].Time.Before(updates[j].Time)
	})
	for _, u := range updates {
		agg := ensure(aggs, u.User)
		agg.ApplyReputation(u.NewScore, u.Time)
	}

	// 3. Fold settlements: history always, counters only inside the window.
	for _, s := range batch.Settlements {
		agg := ensure(aggs, s.User)
		agg.History = append(agg.History, domain.Outcome{Won: s.Won, Time: s.Time})

		if !window.Contains(s.Time, now) {
			continue
		}
		agg.PredictionsCount++
		if s.Won {
			agg.Wins++
		}
		agg.PnL += s.Profit - s.Loss
	}

	return aggs
}

// ensure returns the aggregate for addr, lazily initializing it with the
// neutral reputation when the address was never seen in a profile event
// (pagination and indexing gaps make that a normal condition, not an error).
func ensure(aggs map[string]*domain.UserAggregate, addr string) *domain.UserAggregate {
	if agg, ok := aggs[addr]; ok {
		return agg
	}
	agg := &domain.UserAggregate{
		Address:    addr,
		Reputation: domain.NeutralReputation,
	}
	aggs[addr] = agg
	return agg
}

// Package domain defines the core types shared across the Calibr backend:
// ledger events, per-user aggregates, market snapshots, and the store/cache
// interfaces implemented by the infrastructure packages.
package domain

import "time"

// EventKind identifies one of the ledger event types the aggregator consumes.
type EventKind string

const (
	KindProfileCreated    EventKind = "ProfileCreated"
	KindReputationUpdated EventKind = "ReputationUpdated"
	KindPredictionPlaced  EventKind = "PredictionPlaced"
	KindPredictionSettled EventKind = "PredictionSettled"
	KindMarketCreated     EventKind = "MarketCreated"
)

// ProfileCreated records a user's first appearance on the ledger.
type ProfileCreated struct {
	User       string
	Reputation int64
	Time       time.Time
}

// ReputationUpdated records a reputation score change after a settlement.
type ReputationUpdated struct {
	User            string
	OldScore        int64
	NewScore        int64
	Confidence      int64
	PredictionCount int64
	Time            time.Time
}

// PredictionPlaced records a user staking a prediction on a market.
type PredictionPlaced struct {
	User         string
	PredictionID string
	MarketID     string
	Side         bool // true = yes
	Confidence   int64
	Risk         int64
	Stake        int64
	Time         time.Time
}

// PredictionSettled records the resolution of a single prediction.
type PredictionSettled struct {
	User         string
	PredictionID string
	Won          bool
	Profit       int64
	Loss         int64
	Payout       int64
	Time         time.Time
}

// MarketCreated records a new market being opened on the ledger.
type MarketCreated struct {
	MarketID string
	Question string
	Time     time.Time
}

// EventBatch groups one polling pass's worth of parsed events by kind, each
// slice in the ascending ledger order it was fetched in. The aggregator
// consumes a batch as a whole; it never inspects raw payloads.
type EventBatch struct {
	Profiles          []ProfileCreated
	ReputationUpdates []ReputationUpdated
	Predictions       []PredictionPlaced
	Settlements       []PredictionSettled
	Markets           []MarketCreated
}

// Outcome is one settled prediction in a user's history. History entries are
// kept for all time regardless of the reporting window; streak and form are
// derived from them.
type Outcome struct {
	Won  bool      `json:"won"`
	Time time.Time `json:"time"`
}

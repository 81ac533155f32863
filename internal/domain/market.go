package domain

import "time"

// MarketStatus represents the lifecycle state of a market. Precedence when
// deriving from object state is resolved > locked > active.
type MarketStatus string

const (
	MarketStatusActive   MarketStatus = "active"
	MarketStatusLocked   MarketStatus = "locked"
	MarketStatusResolved MarketStatus = "resolved"
)

// MarketSnapshot combines a MarketCreated event with the market object's
// current on-ledger state, projected for presentation.
type MarketSnapshot struct {
	ID            string       `json:"id"`
	Question      string       `json:"question"`
	YesRiskTotal  int64        `json:"yes_risk_total"`
	NoRiskTotal   int64        `json:"no_risk_total"`
	YesCount      int64        `json:"yes_count"`
	NoCount       int64        `json:"no_count"`
	Locked        bool         `json:"locked"`
	Resolved      bool         `json:"resolved"`
	Outcome       *bool        `json:"outcome,omitempty"`
	YesPercentage int64        `json:"yes_percentage"`
	Status        MarketStatus `json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
}

// PredictionView is one user prediction joined with its settlement, if any.
type PredictionView struct {
	PredictionID string    `json:"prediction_id"`
	MarketID     string    `json:"market_id"`
	Question     string    `json:"question,omitempty"`
	Side         bool      `json:"side"`
	Confidence   int64     `json:"confidence"`
	Risk         int64     `json:"risk"`
	Stake        int64     `json:"stake"`
	Settled      bool      `json:"settled"`
	Won          bool      `json:"won"`
	Payout       int64     `json:"payout"`
	PlacedAt     time.Time `json:"placed_at"`
	SettledAt    time.Time `json:"settled_at,omitzero"`
}

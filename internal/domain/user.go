package domain

import "time"

// Tier is a reputation-derived user classification. It governs the maximum
// confidence a user may declare on a new prediction.
type Tier string

const (
	TierNew    Tier = "new"
	TierProven Tier = "proven"
	TierElite  Tier = "elite"
)

// NeutralReputation is the score assigned on profile creation and to any
// address first seen through a non-profile event (defensive default that
// tolerates pagination gaps in the event log).
const NeutralReputation int64 = 700

// Window selects the reporting period for win rate and PnL counters.
type Window string

const (
	WindowAll   Window = "all"
	WindowMonth Window = "month"
	WindowWeek  Window = "week"
)

// Windows lists every supported reporting window, in snapshot order.
var Windows = []Window{WindowAll, WindowMonth, WindowWeek}

// Valid reports whether w is a known window value.
func (w Window) Valid() bool {
	switch w {
	case WindowAll, WindowMonth, WindowWeek:
		return true
	}
	return false
}

// Start returns the inclusive lower bound of the window relative to now.
// The zero time means unbounded (all-time).
func (w Window) Start(now time.Time) time.Time {
	switch w {
	case WindowWeek:
		return now.AddDate(0, 0, -7)
	case WindowMonth:
		return now.AddDate(0, -1, 0)
	default:
		return time.Time{}
	}
}

// Contains reports whether t falls inside the window relative to now.
func (w Window) Contains(t, now time.Time) bool {
	start := w.Start(now)
	return start.IsZero() || !t.Before(start)
}

// UserAggregate is the per-address materialized view produced by one
// aggregation pass. Counters (PredictionsCount, Wins, PnL) respect the
// reporting window the pass was run with; History always covers all time so
// streak and form reflect a user's actual current run, not the window.
type UserAggregate struct {
	Address          string    `json:"address"`
	Reputation       int64     `json:"reputation"`
	PredictionsCount int64     `json:"predictions_count"`
	Wins             int64     `json:"wins"`
	PnL              int64     `json:"pnl"`
	History          []Outcome `json:"history"`

	// lastReputationAt is the ledger time of the applied ReputationUpdated
	// event; later events win, ties go to the last processed.
	lastReputationAt time.Time
}

// ApplyReputation applies a score update under the latest-timestamp-wins
// rule. It returns true when the update was applied.
func (u *UserAggregate) ApplyReputation(score int64, at time.Time) bool {
	if at.Before(u.lastReputationAt) {
		return false
	}
	u.Reputation = score
	u.lastReputationAt = at
	return true
}

// LeaderboardRow is one presentation-ready leaderboard entry.
type LeaderboardRow struct {
	Rank             int64     `json:"rank"`
	Address          string    `json:"address"`
	Reputation       int64     `json:"reputation"`
	Tier             Tier      `json:"tier"`
	PredictionsCount int64     `json:"predictions_count"`
	Wins             int64     `json:"wins"`
	WinRate          int64     `json:"win_rate"`
	PnL              int64     `json:"pnl"`
	Streak           int64     `json:"streak"`
	Form             []Outcome `json:"form"`
	IsYou            bool      `json:"is_you"`
}

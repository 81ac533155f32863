package domain

import "time"

// LeaderboardSnapshot is the output of one polling pass for one window: the
// ranked rows plus the market views current at that pass. The latest snapshot
// per window is what the serving layer returns; older snapshots are retained
// in the store for history and eventually archived to blob storage.
type LeaderboardSnapshot struct {
	ID      string           `json:"id"`
	Window  Window           `json:"window"`
	Rows    []LeaderboardRow `json:"rows"`
	Markets []MarketSnapshot `json:"markets"`
	TakenAt time.Time        `json:"taken_at"`
}

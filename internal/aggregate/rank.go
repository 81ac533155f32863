package aggregate

import (
	"sort"

	"github.com/Calibrhq/calibr-app-sub000/internal/domain"
	"github.com/Calibrhq/calibr-app-sub000/internal/formula"
)

// formLength is how many of the most recent outcomes make up a user's form.
const formLength = 5

// Rank projects aggregates into ordered leaderboard rows. The all-time
// window ranks by reputation, any other window by PnL; ties break by
// ascending address so identical input always produces identical output.
func Rank(aggs map[string]*domain.UserAggregate, window domain.Window, viewer string) []domain.LeaderboardRow {
	rows := make([]domain.LeaderboardRow, 0, len(aggs))

	for _, agg := range aggs {
		history := sortedHistory(agg.History)
		rows = append(rows, domain.LeaderboardRow{
			Address:          agg.Address,
			Reputation:       agg.Reputation,
			Tier:             formula.TierFor(agg.Reputation),
			PredictionsCount: agg.PredictionsCount,
			Wins:             agg.Wins,
			WinRate:          formula.WinRate(agg.Wins, agg.PredictionsCount),
			PnL:              agg.PnL,
			Streak:           streak(history),
			Form:             form(history),
			IsYou:            agg.Address == viewer,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if window == domain.WindowAll {
			if a.Reputation != b.Reputation {
				return a.Reputation > b.Reputation
			}
		} else {
			if a.PnL != b.PnL {
				return a.PnL > b.PnL
			}
		}
		return a.Address < b.Address
	})

	for i := range rows {
		rows[i].Rank = int64(i + 1)
	}
	return rows
}

// sortedHistory returns a copy of history in ascending time order.
func sortedHistory(history []domain.Outcome) []domain.Outcome {
	out := make([]domain.Outcome, len(history))
	copy(out, history)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.Before(out[j].Time)
	})
	return out
}

// streak counts consecutive wins from the most recent outcome backwards,
// stopping at the first loss.
func streak(history []domain.Outcome) int64 {
	var n int64
	for i := len(history) - 1; i >= 0; i-- {
		if !history[i].Won {
			break
		}
		n++
	}
	return n
}

// form returns the last formLength outcomes, oldest first.
func form(history []domain.Outcome) []domain.Outcome {
	if len(history) <= formLength {
		return history
	}
	return history[len(history)-formLength:]
}

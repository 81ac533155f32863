package aggregate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Calibrhq/calibr-app-sub000/internal/domain"
)

func outcomes(results ...bool) []domain.Outcome {
	out := make([]domain.Outcome, len(results))
	for i, won := range results {
		out[i] = domain.Outcome{Won: won, Time: at(len(results) - i)}
	}
	return out
}

func TestRank_StreakAndForm(t *testing.T) {
	// win, win, loss, win, win (oldest -> newest): streak 2, form is all 5.
	aggs := map[string]*domain.UserAggregate{
		"0xa": {
			Address: "0xa", Reputation: 750,
			PredictionsCount: 5, Wins: 4,
			History: outcomes(true, true, false, true, true),
		},
	}

	rows := Rank(aggs, domain.WindowAll, "")
	require.Len(t, rows, 1)
	require.Equal(t, int64(2), rows[0].Streak)
	require.Len(t, rows[0].Form, 5)
	wants := []bool{true, true, false, true, true}
	for i, o := range rows[0].Form {
		require.Equal(t, wants[i], o.Won, "form index %d", i)
	}
}

func TestRank_StreakZeroAfterLoss(t *testing.T) {
	aggs := map[string]*domain.UserAggregate{
		"0xa": {Address: "0xa", History: outcomes(true, true, false)},
	}
	rows := Rank(aggs, domain.WindowAll, "")
	require.Zero(t, rows[0].Streak)
}

func TestRank_FormIsLastFive(t *testing.T) {
	aggs := map[string]*domain.UserAggregate{
		"0xa": {Address: "0xa", History: outcomes(false, false, true, true, true, true, true)},
	}
	rows := Rank(aggs, domain.WindowAll, "")
	require.Len(t, rows[0].Form, 5)
	require.Equal(t, int64(5), rows[0].Streak)
}

func TestRank_StreakSortsUnorderedHistory(t *testing.T) {
	// History appended out of time order: the loss is most recent.
	aggs := map[string]*domain.UserAggregate{
		"0xa": {Address: "0xa", History: []domain.Outcome{
			{Won: false, Time: at(1)},
			{Won: true, Time: at(3)},
			{Won: true, Time: at(2)},
		}},
	}
	rows := Rank(aggs, domain.WindowAll, "")
	require.Zero(t, rows[0].Streak)
}

func TestRank_AllTimeSortsByReputation(t *testing.T) {
	aggs := map[string]*domain.UserAggregate{
		"0xa": {Address: "0xa", Reputation: 700, PnL: 500},
		"0xb": {Address: "0xb", Reputation: 860, PnL: -100},
		"0xc": {Address: "0xc", Reputation: 820, PnL: 900},
	}
	rows := Rank(aggs, domain.WindowAll, "")

	require.Equal(t, []string{"0xb", "0xc", "0xa"}, addresses(rows))
	require.Equal(t, int64(1), rows[0].Rank)
	require.Equal(t, int64(3), rows[2].Rank)
	require.Equal(t, domain.TierElite, rows[0].Tier)
	require.Equal(t, domain.TierProven, rows[1].Tier)
}

func TestRank_WindowedSortsByPnL(t *testing.T) {
	aggs := map[string]*domain.UserAggregate{
		"0xa": {Address: "0xa", Reputation: 900, PnL: -10},
		"0xb": {Address: "0xb", Reputation: 600, PnL: 250},
	}
	rows := Rank(aggs, domain.WindowWeek, "")
	require.Equal(t, []string{"0xb", "0xa"}, addresses(rows))
}

func TestRank_TiesBreakByAddress(t *testing.T) {
	aggs := map[string]*domain.UserAggregate{
		"0xc": {Address: "0xc", Reputation: 700},
		"0xa": {Address: "0xa", Reputation: 700},
		"0xb": {Address: "0xb", Reputation: 700},
	}
	rows := Rank(aggs, domain.WindowAll, "")
	require.Equal(t, []string{"0xa", "0xb", "0xc"}, addresses(rows))
}

func TestRank_WinRateAndViewer(t *testing.T) {
	aggs := map[string]*domain.UserAggregate{
		"0xa": {Address: "0xa", PredictionsCount: 3, Wins: 2},
		"0xb": {Address: "0xb"},
	}
	rows := Rank(aggs, domain.WindowAll, "0xa")

	byAddr := map[string]domain.LeaderboardRow{}
	for _, r := range rows {
		byAddr[r.Address] = r
	}
	require.Equal(t, int64(67), byAddr["0xa"].WinRate)
	require.True(t, byAddr["0xa"].IsYou)
	require.Zero(t, byAddr["0xb"].WinRate, "no predictions means 0, not a division error")
	require.False(t, byAddr["0xb"].IsYou)
}

func addresses(rows []domain.LeaderboardRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Address
	}
	return out
}

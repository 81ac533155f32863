package aggregate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Calibrhq/calibr-app-sub000/internal/domain"
)

func TestBuildMarketViews_YesPercentage(t *testing.T) {
	yes := true
	markets := []domain.MarketCreated{
		{MarketID: "m1", Question: "Will A?", Time: at(3)},
		{MarketID: "m2", Question: "Will B?", Time: at(2)},
		{MarketID: "m3", Question: "Will C?", Time: at(1)},
	}
	states := []domain.MarketState{
		{ID: "m1", YesRiskTotal: 150, NoRiskTotal: 50},
		{ID: "m2"}, // no risk placed yet
		{ID: "m3", YesRiskTotal: 100, NoRiskTotal: 200, Resolved: true, Outcome: &yes},
	}

	snaps := BuildMarketViews(markets, states)
	require.Len(t, snaps, 3)

	byID := map[string]domain.MarketSnapshot{}
	for _, s := range snaps {
		byID[s.ID] = s
	}

	require.Equal(t, int64(75), byID["m1"].YesPercentage)
	require.Equal(t, int64(50), byID["m2"].YesPercentage, "no risk defaults to an even split")
	require.Equal(t, int64(33), byID["m3"].YesPercentage)
	require.NotNil(t, byID["m3"].Outcome)
	require.True(t, *byID["m3"].Outcome)
}

func TestBuildMarketViews_StatusPrecedence(t *testing.T) {
	markets := []domain.MarketCreated{
		{MarketID: "m1", Time: at(1)},
		{MarketID: "m2", Time: at(2)},
		{MarketID: "m3", Time: at(3)},
	}
	states := []domain.MarketState{
		{ID: "m1", Resolved: true, Locked: true}, // resolved wins over locked
		{ID: "m2", Locked: true},
		{ID: "m3"},
	}

	snaps := BuildMarketViews(markets, states)
	byID := map[string]domain.MarketSnapshot{}
	for _, s := range snaps {
		byID[s.ID] = s
	}

	require.Equal(t, domain.MarketStatusResolved, byID["m1"].Status)
	require.Equal(t, domain.MarketStatusLocked, byID["m2"].Status)
	require.Equal(t, domain.MarketStatusActive, byID["m3"].Status)
}

func TestBuildMarketViews_NewestFirstAndMissingState(t *testing.T) {
	markets := []domain.MarketCreated{
		{MarketID: "m-old", Time: at(10)},
		{MarketID: "m-new", Time: at(1)},
	}

	// No object state at all: markets still appear, zeroed.
	snaps := BuildMarketViews(markets, nil)
	require.Len(t, snaps, 2)
	require.Equal(t, "m-new", snaps[0].ID)
	require.Equal(t, domain.MarketStatusActive, snaps[0].Status)
	require.Equal(t, int64(50), snaps[0].YesPercentage)
}

func TestBuildPredictionViews_JoinsSettlements(t *testing.T) {
	placed := []domain.PredictionPlaced{
		{User: "0xa", PredictionID: "p1", MarketID: "m1", Side: true, Confidence: 70, Risk: 50, Stake: 100, Time: at(5)},
		{User: "0xa", PredictionID: "p2", MarketID: "m2", Side: false, Confidence: 55, Risk: 13, Stake: 100, Time: at(2)},
		{User: "0xb", PredictionID: "p3", MarketID: "m1", Side: true, Confidence: 90, Risk: 100, Stake: 100, Time: at(4)},
	}
	settled := []domain.PredictionSettled{
		{User: "0xa", PredictionID: "p1", Won: true, Payout: 185, Time: at(3)},
		{User: "0xb", PredictionID: "p3", Won: false, Time: at(1)},
	}
	questions := map[string]string{"m1": "Will A?", "m2": "Will B?"}

	views := BuildPredictionViews("0xa", placed, settled, questions)
	require.Len(t, views, 2, "other users' predictions are excluded")

	// Newest placed first.
	require.Equal(t, "p2", views[0].PredictionID)
	require.False(t, views[0].Settled)

	require.Equal(t, "p1", views[1].PredictionID)
	require.True(t, views[1].Settled)
	require.True(t, views[1].Won)
	require.Equal(t, int64(185), views[1].Payout)
	require.Equal(t, "Will A?", views[1].Question)
}

package aggregate

import (
	"sort"

	"github.com/Calibrhq/calibr-app-sub000/internal/domain"
)

// BuildMarketViews combines MarketCreated events with the markets' current
// object state into presentation-ready snapshots, newest market first. A
// market whose object was not returned by the batch fetch still appears with
// zeroed live state — a missing object is a hydration gap, not a reason to
// hide the market.
func BuildMarketViews(markets []domain.MarketCreated, states []domain.MarketState) []domain.MarketSnapshot {
	stateByID := make(map[string]domain.MarketState, len(states))
	for _, st := range states {
		stateByID[st.ID] = st
	}

	snaps := make([]domain.MarketSnapshot, 0, len(markets))
	for _, m := range markets {
		st := stateByID[m.MarketID]
		snaps = append(snaps, domain.MarketSnapshot{
			ID:            m.MarketID,
			Question:      m.Question,
			YesRiskTotal:  st.YesRiskTotal,
			NoRiskTotal:   st.NoRiskTotal,
			YesCount:      st.YesCount,
			NoCount:       st.NoCount,
			Locked:        st.Locked,
			Resolved:      st.Resolved,
			Outcome:       st.Outcome,
			YesPercentage: yesPercentage(st.YesRiskTotal, st.NoRiskTotal),
			Status:        marketStatus(st),
			CreatedAt:     m.Time,
		})
	}

	sort.SliceStable(snaps, func(i, j int) bool {
		if !snaps[i].CreatedAt.Equal(snaps[j].CreatedAt) {
			return snaps[i].CreatedAt.After(snaps[j].CreatedAt)
		}
		return snaps[i].ID < snaps[j].ID
	})
	return snaps
}

// yesPercentage is the yes-side share of total risk as a whole percentage,
// rounded half up, defaulting to an even 50 when no risk has been placed.
func yesPercentage(yesRisk, noRisk int64) int64 {
	total := yesRisk + noRisk
	if total <= 0 {
		return 50
	}
	return (yesRisk*100 + total/2) / total
}

// marketStatus derives the lifecycle state with resolved > locked > active
// precedence.
func marketStatus(st domain.MarketState) domain.MarketStatus {
	switch {
	case st.Resolved:
		return domain.MarketStatusResolved
	case st.Locked:
		return domain.MarketStatusLocked
	default:
		return domain.MarketStatusActive
	}
}

// BuildPredictionViews joins a user's placed predictions with their
// settlements, newest first. questions maps market id to decoded question
// text for display; unknown markets keep an empty question.
func BuildPredictionViews(user string, placed []domain.PredictionPlaced, settled []domain.PredictionSettled, questions map[string]string) []domain.PredictionView {
	settledByID := make(map[string]domain.PredictionSettled, len(settled))
	for _, s := range settled {
		if s.User == user {
			settledByID[s.PredictionID] = s
		}
	}

	views := make([]domain.PredictionView, 0)
	for _, p := range placed {
		if p.User != user {
			continue
		}
		view := domain.PredictionView{
			PredictionID: p.PredictionID,
			MarketID:     p.MarketID,
			Question:     questions[p.MarketID],
			Side:         p.Side,
			Confidence:   p.Confidence,
			Risk:         p.Risk,
			Stake:        p.Stake,
			PlacedAt:     p.Time,
		}
		if s, ok := settledByID[p.PredictionID]; ok {
			view.Settled = true
			view.Won = s.Won
			view.Payout = s.Payout
			view.SettledAt = s.Time
		}
		views = append(views, view)
	}

	sort.SliceStable(views, func(i, j int) bool {
		if !views[i].PlacedAt.Equal(views[j].PlacedAt) {
			return views[i].PlacedAt.After(views[j].PlacedAt)
		}
		return views[i].PredictionID < views[j].PredictionID
	})
	return views
}

package ledger

import (
	"log/slog"

	"github.com/Calibrhq/calibr-app-sub000/internal/decode"
	"github.com/Calibrhq/calibr-app-sub000/internal/domain"
)

// ParseMarketStates converts raw market objects into typed MarketState
// records. A record missing its object id is skipped with a warning; numeric
// fields missing from older object versions default to zero.
func ParseMarketStates(objects []RawObject, logger *slog.Logger) []domain.MarketState {
	states := make([]domain.MarketState, 0, len(objects))
	for _, obj := range objects {
		if obj.ObjectID == "" {
			logger.Warn("skipping market object without id",
				slog.String("version", obj.Version),
			)
			continue
		}

		yesRisk, _ := fieldInt64(obj.Fields, "yes_risk_total")
		noRisk, _ := fieldInt64(obj.Fields, "no_risk_total")
		yesCount, _ := fieldInt64(obj.Fields, "yes_count")
		noCount, _ := fieldInt64(obj.Fields, "no_count")
		locked, _ := fieldBool(obj.Fields, "locked")
		resolved, _ := fieldBool(obj.Fields, "resolved")

		states = append(states, domain.MarketState{
			ID:           obj.ObjectID,
			YesRiskTotal: yesRisk,
			NoRiskTotal:  noRisk,
			YesCount:     yesCount,
			NoCount:      noCount,
			Locked:       locked,
			Resolved:     resolved,
			Outcome:      decode.OptionalBool(obj.Fields["outcome"]),
		})
	}
	return states
}

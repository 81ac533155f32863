package ledger

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/Calibrhq/calibr-app-sub000/internal/decode"
	"github.com/Calibrhq/calibr-app-sub000/internal/domain"
)

// RawEvents groups one polling pass's raw fetch results by kind.
type RawEvents struct {
	Profiles          []RawEvent
	ReputationUpdates []RawEvent
	Predictions       []RawEvent
	Settlements       []RawEvent
	Markets           []RawEvent
}

// BuildBatch performs the tagged-variant decode: every raw payload is parsed
// exactly once into its typed domain event, preserving fetch order. A
// malformed event (missing or mistyped field) is skipped with a warning; it
// never aborts the batch.
func BuildBatch(raw RawEvents, logger *slog.Logger) domain.EventBatch {
	var batch domain.EventBatch

	for _, ev := range raw.Profiles {
		p, ok := parseProfileCreated(ev)
		if !ok {
			warnMalformed(logger, ev)
			continue
		}
		batch.Profiles = append(batch.Profiles, p)
	}
	for _, ev := range raw.ReputationUpdates {
		u, ok := parseReputationUpdated(ev)
		if !ok {
			warnMalformed(logger, ev)
			continue
		}
		batch.ReputationUpdates = append(batch.ReputationUpdates, u)
	}
	for _, ev := range raw.Predictions {
		p, ok := parsePredictionPlaced(ev)
		if !ok {
			warnMalformed(logger, ev)
			continue
		}
		batch.Predictions = append(batch.Predictions, p)
	}
	for _, ev := range raw.Settlements {
		s, ok := parsePredictionSettled(ev)
		if !ok {
			warnMalformed(logger, ev)
			continue
		}
		batch.Settlements = append(batch.Settlements, s)
	}
	for _, ev := range raw.Markets {
		m, ok := parseMarketCreated(ev)
		if !ok {
			warnMalformed(logger, ev)
			continue
		}
		batch.Markets = append(batch.Markets, m)
	}

	return batch
}

func warnMalformed(logger *slog.Logger, ev RawEvent) {
	logger.Warn("skipping malformed event",
		slog.String("type", ev.Type),
		slog.String("tx_digest", ev.TxDigest),
		slog.String("event_seq", ev.EventSeq),
	)
}

func parseProfileCreated(ev RawEvent) (domain.ProfileCreated, bool) {
	user, ok1 := fieldStr(ev.ParsedJSON, "user")
	rep, ok2 := fieldInt64(ev.ParsedJSON, "initial_reputation")
	if !ok1 || !ok2 {
		return domain.ProfileCreated{}, false
	}
	return domain.ProfileCreated{
		User:       user,
		Reputation: rep,
		Time:       eventTime(ev),
	}, true
}

func parseReputationUpdated(ev RawEvent) (domain.ReputationUpdated, bool) {
	user, ok1 := fieldStr(ev.ParsedJSON, "user")
	oldScore, ok2 := fieldInt64(ev.ParsedJSON, "old_score")
	newScore, ok3 := fieldInt64(ev.ParsedJSON, "new_score")
	if !ok1 || !ok2 || !ok3 {
		return domain.ReputationUpdated{}, false
	}
	// Secondary fields default to zero when absent; older contract versions
	// did not emit them.
	confidence, _ := fieldInt64(ev.ParsedJSON, "prediction_confidence")
	count, _ := fieldInt64(ev.ParsedJSON, "prediction_count")
	return domain.ReputationUpdated{
		User:            user,
		OldScore:        oldScore,
		NewScore:        newScore,
		Confidence:      confidence,
		PredictionCount: count,
		Time:            eventTime(ev),
	}, true
}

func parsePredictionPlaced(ev RawEvent) (domain.PredictionPlaced, bool) {
	user, ok1 := fieldStr(ev.ParsedJSON, "user")
	predictionID, ok2 := fieldStr(ev.ParsedJSON, "prediction_id")
	marketID, ok3 := fieldStr(ev.ParsedJSON, "market_id")
	side, ok4 := fieldBool(ev.ParsedJSON, "side")
	confidence, ok5 := fieldInt64(ev.ParsedJSON, "confidence")
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		return domain.PredictionPlaced{}, false
	}
	risk, _ := fieldInt64(ev.ParsedJSON, "risk")
	stake, _ := fieldInt64(ev.ParsedJSON, "stake")
	return domain.PredictionPlaced{
		User:         user,
		PredictionID: predictionID,
		MarketID:     marketID,
		Side:         side,
		Confidence:   confidence,
		Risk:         risk,
		Stake:        stake,
		Time:         eventTime(ev),
	}, true
}

func parsePredictionSettled(ev RawEvent) (domain.PredictionSettled, bool) {
	user, ok1 := fieldStr(ev.ParsedJSON, "user")
	predictionID, ok2 := fieldStr(ev.ParsedJSON, "prediction_id")
	won, ok3 := fieldBool(ev.ParsedJSON, "won")
	if !ok1 || !ok2 || !ok3 {
		return domain.PredictionSettled{}, false
	}
	profit, _ := fieldInt64(ev.ParsedJSON, "profit")
	loss, _ := fieldInt64(ev.ParsedJSON, "loss")
	payout, _ := fieldInt64(ev.ParsedJSON, "payout")
	return domain.PredictionSettled{
		User:         user,
		PredictionID: predictionID,
		Won:          won,
		Profit:       profit,
		Loss:         loss,
		Payout:       payout,
		Time:         eventTime(ev),
	}, true
}

func parseMarketCreated(ev RawEvent) (domain.MarketCreated, bool) {
	marketID, ok := fieldStr(ev.ParsedJSON, "market_id")
	if !ok {
		return domain.MarketCreated{}, false
	}
	// The question is a byte array on the ledger, possibly double-encoded;
	// decode.Text never fails, it degrades to a placeholder.
	question := decode.Text(ev.ParsedJSON["question"])
	return domain.MarketCreated{
		MarketID: marketID,
		Question: question,
		Time:     eventTime(ev),
	}, true
}

func eventTime(ev RawEvent) time.Time {
	return time.UnixMilli(ev.TimestampMs).UTC()
}

// --------------------------------------------------------------------------
// Field coercion. The RPC layer encodes u64 values as JSON strings and
// smaller integers as numbers; these helpers accept both.
// --------------------------------------------------------------------------

func fieldStr(fields map[string]any, key string) (string, bool) {
	v, ok := fields[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func fieldInt64(fields map[string]any, key string) (int64, bool) {
	v, ok := fields[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

func fieldBool(fields map[string]any, key string) (bool, bool) {
	v, ok := fields[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

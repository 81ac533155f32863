// Package formula holds the pure pricing and risk arithmetic mirrored from
// the on-ledger settlement engine. Every function here is total, integer-only,
// and free of I/O; the outputs must agree value-for-value with settlement, so
// all rounding is round-half-up in integer arithmetic and no floating point
// is used anywhere in this package.
//
// The ledger remains the final arbiter: cost and payout figures are display
// estimates, and the authoritative purchase price may include a bonding-curve
// adjustment not computed client-side. Callers submitting a purchase should
// use EstimateCostBuffered to avoid slippage-induced rejection.
package formula

import "github.com/Calibrhq/calibr-app-sub000/internal/domain"

const (
	// Unit is the point granularity; every points quantity crossing the
	// formula boundary must be a positive multiple of it.
	Unit int64 = 100

	// BasePrice is the cost of one Unit of points in smallest currency units.
	BasePrice int64 = 10_000_000

	// RedemptionFeePct is the percentage withheld when redeeming points.
	RedemptionFeePct int64 = 5

	// SafetyBufferPct is the slippage buffer applied on top of the estimated
	// cost before an on-chain purchase is submitted.
	SafetyBufferPct int64 = 10

	// MinConfidence and MaxConfidence bound the declarable confidence range.
	MinConfidence int64 = 50
	MaxConfidence int64 = 90

	// MinRisk floors the risk for the lowest confidence levels.
	MinRisk int64 = 5

	// stakeScale maps the confidence range onto risk units: MaxConfidence
	// places the full scale at hazard.
	stakeScale int64 = 100
)

// Curve is the stateless bonding-curve approximation used for client-side
// cost estimates. It has no lifecycle; Default rebuilds it from constants.
type Curve struct {
	BasePrice int64
	Unit      int64
	FeePct    int64
	BufferPct int64
}

// Default returns the curve matching the settlement engine's constants.
func Default() Curve {
	return Curve{
		BasePrice: BasePrice,
		Unit:      Unit,
		FeePct:    RedemptionFeePct,
		BufferPct: SafetyBufferPct,
	}
}

// Risk returns the portion of a fixed stake placed at hazard for the given
// confidence level. It is monotonically non-decreasing over [50,90], floored
// at MinRisk, and rejects out-of-range confidence with ErrInvalidConfidence.
//
// Rounding rule: round half up, matching settlement. Risk(50)=5, Risk(70)=50,
// Risk(90)=100.
func Risk(confidence int64) (int64, error) {
	if confidence < MinConfidence || confidence > MaxConfidence {
		return 0, domain.ErrInvalidConfidence
	}
	r := roundHalfUp((confidence-MinConfidence)*stakeScale, MaxConfidence-MinConfidence)
	if r < MinRisk {
		r = MinRisk
	}
	return r, nil
}

// TierFor classifies a reputation score. Boundaries are inclusive on the
// Proven side: 700 and 850 are both Proven.
func TierFor(score int64) domain.Tier {
	switch {
	case score > 850:
		return domain.TierElite
	case score >= 700:
		return domain.TierProven
	default:
		return domain.TierNew
	}
}

// ConfidenceCap returns the maximum confidence a user of the given tier may
// declare on a new prediction.
func ConfidenceCap(tier domain.Tier) int64 {
	switch tier {
	case domain.TierElite:
		return 90
	case domain.TierProven:
		return 80
	default:
		return 70
	}
}

// Cost estimates the purchase price of the given points quantity. Points not
// a positive multiple of the unit are a caller error (ErrInvalidAmount), not
// a silent rounding.
func (c Curve) Cost(points int64) (int64, error) {
	if points <= 0 || points%c.Unit != 0 {
		return 0, domain.ErrInvalidAmount
	}
	return points / c.Unit * c.BasePrice, nil
}

// CostBuffered is Cost plus the safety buffer, for submitting a purchase.
func (c Curve) CostBuffered(points int64) (int64, error) {
	cost, err := c.Cost(points)
	if err != nil {
		return 0, err
	}
	return cost + cost*c.BufferPct/100, nil
}

// Payout is the redemption split for a points quantity.
type Payout struct {
	Gross int64 `json:"gross"`
	Fee   int64 `json:"fee"`
	Net   int64 `json:"net"`
}

// Redemption estimates the payout for redeeming points: gross at the curve
// price, the fee floored, and the net remainder.
func (c Curve) Redemption(points int64) (Payout, error) {
	gross, err := c.Cost(points)
	if err != nil {
		return Payout{}, err
	}
	fee := gross * c.FeePct / 100
	return Payout{Gross: gross, Fee: fee, Net: gross - fee}, nil
}

// EstimateCost applies the default curve.
func EstimateCost(points int64) (int64, error) { return Default().Cost(points) }

// EstimateCostBuffered applies the default curve with the safety buffer.
func EstimateCostBuffered(points int64) (int64, error) { return Default().CostBuffered(points) }

// RedemptionPayout applies the default curve.
func RedemptionPayout(points int64) (Payout, error) { return Default().Redemption(points) }

// WinRate returns wins/total as a whole percentage, rounded half up; 0 when
// total is zero.
func WinRate(wins, total int64) int64 {
	if total <= 0 {
		return 0
	}
	return roundHalfUp(wins*100, total)
}

// roundHalfUp divides num by den rounding halves up. Operands are
// non-negative everywhere this is called.
func roundHalfUp(num, den int64) int64 {
	return (num + den/2) / den
}

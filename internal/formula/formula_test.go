package formula

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Calibrhq/calibr-app-sub000/internal/domain"
)

func TestRisk_Boundaries(t *testing.T) {
	cases := []struct {
		confidence int64
		want       int64
	}{
		{50, 5},   // floored at MinRisk
		{70, 50},  // linear midpoint
		{90, 100}, // full scale
		{51, 5},   // still under the floor
		{60, 25},
		{80, 75},
	}
	for _, tc := range cases {
		got, err := Risk(tc.confidence)
		require.NoError(t, err, "confidence %d", tc.confidence)
		require.Equal(t, tc.want, got, "confidence %d", tc.confidence)
	}
}

func TestRisk_Monotonic(t *testing.T) {
	prev := int64(0)
	for c := MinConfidence; c <= MaxConfidence; c++ {
		r, err := Risk(c)
		require.NoError(t, err)
		require.GreaterOrEqual(t, r, prev, "risk must not decrease at confidence %d", c)
		require.GreaterOrEqual(t, r, MinRisk)
		prev = r
	}
}

func TestRisk_OutOfRange(t *testing.T) {
	for _, c := range []int64{0, 49, 91, 100, -5} {
		_, err := Risk(c)
		require.ErrorIs(t, err, domain.ErrInvalidConfidence, "confidence %d", c)
	}
}

func TestTierFor_BoundaryInclusivity(t *testing.T) {
	require.Equal(t, domain.TierNew, TierFor(699))
	require.Equal(t, domain.TierProven, TierFor(700))
	require.Equal(t, domain.TierProven, TierFor(850))
	require.Equal(t, domain.TierElite, TierFor(851))
}

func TestConfidenceCap(t *testing.T) {
	require.Equal(t, int64(70), ConfidenceCap(domain.TierNew))
	require.Equal(t, int64(80), ConfidenceCap(domain.TierProven))
	require.Equal(t, int64(90), ConfidenceCap(domain.TierElite))
}

func TestEstimateCost(t *testing.T) {
	cost, err := EstimateCost(500)
	require.NoError(t, err)
	require.Equal(t, int64(50_000_000), cost)

	cost, err = EstimateCost(100)
	require.NoError(t, err)
	require.Equal(t, BasePrice, cost)
}

func TestEstimateCost_InvalidAmount(t *testing.T) {
	for _, points := range []int64{150, 0, -100, 99, 101} {
		_, err := EstimateCost(points)
		require.ErrorIs(t, err, domain.ErrInvalidAmount, "points %d", points)
	}
}

func TestEstimateCostBuffered(t *testing.T) {
	buffered, err := EstimateCostBuffered(100)
	require.NoError(t, err)
	require.Equal(t, int64(11_000_000), buffered)
}

func TestRedemptionPayout(t *testing.T) {
	p, err := RedemptionPayout(500)
	require.NoError(t, err)
	require.Equal(t, int64(50_000_000), p.Gross)
	require.Equal(t, int64(2_500_000), p.Fee)
	require.Equal(t, int64(47_500_000), p.Net)
	require.Equal(t, p.Gross, p.Fee+p.Net)
}

func TestRedemptionPayout_InvalidAmount(t *testing.T) {
	_, err := RedemptionPayout(150)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestWinRate(t *testing.T) {
	require.Equal(t, int64(0), WinRate(0, 0))
	require.Equal(t, int64(100), WinRate(3, 3))
	require.Equal(t, int64(67), WinRate(2, 3)) // 66.67 rounds up
	require.Equal(t, int64(50), WinRate(1, 2))
	require.Equal(t, int64(33), WinRate(1, 3))
}

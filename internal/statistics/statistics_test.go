package statistics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatistics_Empty(t *testing.T) {
	stats := &Statistics{}

	assert.Zero(t, stats.Mean())
	assert.Zero(t, stats.Variance())
	assert.Zero(t, stats.StdDev())
	assert.Zero(t, stats.StdError())
	assert.Zero(t, stats.Median())
	assert.Zero(t, stats.Percentile(0.5))
	assert.Zero(t, stats.RTP())
	assert.Error(t, stats.Validate())
}

func TestStatistics_SingleRound(t *testing.T) {
	stats := &Statistics{}
	stats.Add(RoundResult{Staked: 100, Paid: 250})

	assert.Equal(t, 1, stats.Rounds)
	assert.InDelta(t, 2.5, stats.Mean(), 1e-9)
	assert.Zero(t, stats.Variance())
	assert.InDelta(t, 2.5, stats.Median(), 1e-9)
	assert.Equal(t, 1, stats.Pays)
	assert.Zero(t, stats.BigWins)
	assert.InDelta(t, 2.5, stats.Best, 1e-9)
	require.NoError(t, stats.Validate())
}

func TestStatistics_Distribution(t *testing.T) {
	stats := &Statistics{}
	for _, paid := range []int64{0, 0, 200, 0, 1000} {
		stats.Add(RoundResult{Staked: 100, Paid: paid})
	}

	// Returns are 0, 0, 2, 0, 10.
	assert.Equal(t, 5, stats.Rounds)
	assert.InDelta(t, 2.4, stats.Mean(), 1e-9)
	assert.InDelta(t, 2.4, stats.RTP(), 1e-9)
	assert.InDelta(t, (104.0-5*2.4*2.4)/4, stats.Variance(), 1e-9)
	assert.InDelta(t, math.Sqrt(stats.Variance())/math.Sqrt(5), stats.StdError(), 1e-9)
	assert.Zero(t, stats.Median())
	assert.InDelta(t, 10, stats.Percentile(1), 1e-9)
	assert.InDelta(t, 6, stats.Percentile(0.875), 1e-9)
	assert.Equal(t, 2, stats.Pays)
	assert.Equal(t, 1, stats.BigWins)

	lo, hi := stats.ConfidenceInterval95()
	assert.Less(t, lo, stats.Mean())
	assert.Greater(t, hi, stats.Mean())
	assert.InDelta(t, stats.Mean(), (lo+hi)/2, 1e-9)
	require.NoError(t, stats.Validate())
}

func TestStatistics_ValidateCatchesDrift(t *testing.T) {
	stats := &Statistics{}
	stats.Add(RoundResult{Staked: 100, Paid: 100})
	stats.Values = nil
	assert.ErrorContains(t, stats.Validate(), "values array length")
}

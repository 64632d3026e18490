// Package statistics accumulates per-round returns from simulated play.
package statistics

import (
	"fmt"
	"math"
	"sort"
)

// RoundResult is the outcome of one simulated round.
type RoundResult struct {
	Staked int64
	Paid   int64
}

// Return is the share of the stake paid back.
func (r RoundResult) Return() float64 {
	if r.Staked == 0 {
		return 0
	}
	return float64(r.Paid) / float64(r.Staked)
}

// Statistics tracks the distribution of round returns.
type Statistics struct {
	Rounds  int
	Sum     float64
	Sum2    float64   // Sum of squares for variance calculation
	Values  []float64 // Store all values for median/percentile calculation
	Staked  int64
	Paid    int64
	Pays    int     // Rounds that paid anything back
	BigWins int     // Rounds returning at least BigWin times the stake
	Best    float64 // Largest single-round return
}

// BigWin is the return multiple counted as a big win.
const BigWin = 5.0

// Mean returns the average per-round return
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.Sum / float64(s.Rounds)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.Sum2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// RTP is total paid over total staked.
func (s *Statistics) RTP() float64 {
	if s.Staked == 0 {
		return 0
	}
	return float64(s.Paid) / float64(s.Staked)
}

// Add incorporates a new round.
func (s *Statistics) Add(r RoundResult) {
	v := r.Return()
	s.Rounds++
	s.Sum += v
	s.Sum2 += v * v
	s.Values = append(s.Values, v)
	s.Staked += r.Staked
	s.Paid += r.Paid

	if r.Paid > 0 {
		s.Pays++
	}
	if v >= BigWin {
		s.BigWins++
	}
	if v > s.Best {
		s.Best = v
	}
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Validate checks the accumulated counters agree with each other.
func (s *Statistics) Validate() error {
	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}
	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values array length (%d) does not match rounds count (%d)",
			len(s.Values), s.Rounds)
	}
	if s.Pays > s.Rounds || s.BigWins > s.Pays {
		return fmt.Errorf("pays (%d) and big wins (%d) inconsistent with %d rounds",
			s.Pays, s.BigWins, s.Rounds)
	}
	if s.Staked <= 0 || s.Paid < 0 {
		return fmt.Errorf("invalid totals: staked %d, paid %d", s.Staked, s.Paid)
	}
	return nil
}

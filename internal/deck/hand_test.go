package deck

import (
	rand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hand  string
		score int
		soft  bool
	}{
		{"TsAh", 21, true},
		{"9d7c", 16, false},
		{"AsAh", 12, true},
		{"AsAhAdAc", 14, true},
		{"AsAhAdAcKs", 14, false},
		{"KsQsAh", 21, false},
		{"KsQs2h", 22, false},
		{"5s6hAd", 12, false},
		{"As6h", 17, true},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.hand, func(t *testing.T) {
			h := Hand(MustParseCards(tt.hand))
			assert.Equal(t, tt.score, h.Score())
			assert.Equal(t, tt.soft, h.Soft())
			assert.Equal(t, tt.score > 21, h.Busted())
		})
	}
}

// bestTotal enumerates every way of counting each ace as 1 or 11.
func bestTotal(h Hand) int {
	base, aces := 0, 0
	for _, c := range h {
		if c.IsAce() {
			aces++
			base++
			continue
		}
		base += c.Rank.Points()
	}
	best := -1
	for high := 0; high <= aces; high++ {
		total := base + 10*high
		if total <= 21 && total > best {
			best = total
		}
	}
	if best < 0 {
		return base
	}
	return best
}

func TestHandScoreMatchesExhaustiveAssignment(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(99, 1))
	for i := 0; i < 2000; i++ {
		d := NewDeck(rng)
		var h Hand
		for n := 2 + rng.IntN(8); n > 0; n-- {
			c, _ := d.Deal()
			h = append(h, c)
		}
		assert.Equal(t, bestTotal(h), h.Score(), "hand %s", h)
	}
}

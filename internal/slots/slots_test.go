package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/wagerbot/internal/game"
)

type scripted struct {
	ints []int
}

func (s *scripted) IntN(n int) int {
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v >= n {
		panic("scripted: value out of range")
	}
	return v
}

func (s *scripted) Float64() float64 { panic("scripted: unexpected Float64") }

func TestNet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		reels Reels
		bet   int64
		net   int64
	}{
		{Reels{"🍒", "🍒", "🍒"}, 50, 250},
		{Reels{"🍒", "🍋", "🍒"}, 50, 75},
		{Reels{"🍋", "💎", "💎"}, 7, 10},
		{Reels{"🍒", "🍋", "🔔"}, 50, -50},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.net, Net(tt.reels, tt.bet), "%v", tt.reels)
	}
}

func TestCosmeticSpinsAreNotScored(t *testing.T) {
	t.Parallel()

	// Three cosmetic jackpots, then a losing final draw.
	rng := &scripted{ints: []int{0, 0, 0, 1, 1, 1, 2, 2, 2, 0, 1, 2}}
	g, err := New("alice", 50, rng, DefaultConfig())
	require.NoError(t, err)
	assert.Nil(t, g.Snapshot().Slots.Reels)

	for i := 0; i < 3; i++ {
		g.Tick()
		assert.False(t, g.Terminal())
		assert.Equal(t, DefaultConfig().SpinDelay, g.Schedule().Tick)
	}
	g.Tick()

	out, ok := g.Outcome()
	require.True(t, ok)
	assert.Equal(t, game.StatusLost, out.Status)
	assert.Equal(t, []string{"🍒", "🍋", "🔔"}, g.Snapshot().Slots.Reels)
}

func TestCherryJackpot(t *testing.T) {
	t.Parallel()

	rng := &scripted{ints: []int{1, 2, 3, 4, 3, 2, 1, 1, 0, 0, 0, 0}}
	g, err := New("alice", 50, rng, DefaultConfig())
	require.NoError(t, err)
	for !g.Terminal() {
		g.Tick()
	}

	out, _ := g.Outcome()
	assert.Equal(t, game.StatusWon, out.Status)
	assert.Equal(t, int64(300), out.Credits["alice"])
	assert.Equal(t, int64(250), g.Snapshot().Net)
	assert.Equal(t, game.Schedule{}, g.Schedule())
}

func TestSlotsRejectsMoves(t *testing.T) {
	t.Parallel()

	g, err := New("alice", 5, &scripted{}, DefaultConfig())
	require.NoError(t, err)
	assert.ErrorIs(t, g.Apply(game.Move{Player: "alice", Action: game.ActionHit}), game.ErrInvalidMove)
	g.Cancel()
	out, _ := g.Outcome()
	assert.Equal(t, game.StatusCancelled, out.Status)
	assert.Equal(t, int64(5), out.Credits["alice"])
}

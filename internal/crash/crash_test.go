package crash

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/wagerbot/internal/game"
	"github.com/lox/wagerbot/internal/randutil"
)

type fixedFloat float64

func (f fixedFloat) IntN(int) int { panic("fixedFloat: unexpected IntN") }
func (f fixedFloat) Float64() float64 { return float64(f) }

func ticks(g *Game, n int) {
	for i := 0; i < n; i++ {
		g.Tick()
	}
}

func TestCashOutBeforeCrash(t *testing.T) {
	t.Parallel()

	g, err := NewWithPoint("alice", 100, 150, DefaultConfig())
	require.NoError(t, err)

	ticks(g, 45)
	assert.Equal(t, int64(145), g.Multiplier())
	assert.Zero(t, g.Snapshot().Crash.CrashPoint, "crash point stays hidden")

	require.NoError(t, g.Apply(game.Move{Player: "alice", Action: game.ActionCashOut}))
	out, ok := g.Outcome()
	require.True(t, ok)
	assert.Equal(t, game.StatusWon, out.Status)
	assert.Equal(t, int64(145), out.Credits["alice"])

	snap := g.Snapshot()
	assert.True(t, snap.Crash.CashedOut)
	assert.Equal(t, int64(150), snap.Crash.CrashPoint)
	assert.Equal(t, int64(45), snap.Net)
}

func TestPayoutIsFloored(t *testing.T) {
	t.Parallel()

	g, err := NewWithPoint("alice", 33, 500, DefaultConfig())
	require.NoError(t, err)
	ticks(g, 45)
	require.NoError(t, g.Apply(game.Move{Player: "alice", Action: game.ActionCashOut}))
	out, _ := g.Outcome()
	assert.Equal(t, int64(47), out.Credits["alice"]) // 33 * 1.45 = 47.85
}

func TestCrashWithoutCashOut(t *testing.T) {
	t.Parallel()

	g, err := NewWithPoint("alice", 100, 150, DefaultConfig())
	require.NoError(t, err)

	ticks(g, 49)
	assert.False(t, g.Terminal())
	g.Tick()

	out, ok := g.Outcome()
	require.True(t, ok)
	assert.Equal(t, game.StatusLost, out.Status)
	assert.Empty(t, out.Credits)
	assert.Equal(t, int64(150), g.Multiplier())

	assert.ErrorIs(t, g.Apply(game.Move{Player: "alice", Action: game.ActionCashOut}), game.ErrSessionTerminal)
}

func TestOnlyBettorCanCashOut(t *testing.T) {
	t.Parallel()

	g, err := NewWithPoint("alice", 100, 150, DefaultConfig())
	require.NoError(t, err)
	ticks(g, 10)

	assert.ErrorIs(t, g.Apply(game.Move{Player: "mallory", Action: game.ActionCashOut}), game.ErrNotOwner)
	assert.ErrorIs(t, g.Apply(game.Move{Player: "alice", Action: game.ActionHit}), game.ErrInvalidMove)
	assert.False(t, g.Terminal())
}

func TestDrawPoint(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(102), DrawPoint(fixedFloat(0)))
	assert.Equal(t, int64(2000), DrawPoint(fixedFloat(0.9999999999)))

	rng := randutil.New(3)
	for i := 0; i < 1000; i++ {
		p := DrawPoint(rng)
		assert.GreaterOrEqual(t, p, int64(102))
		assert.LessOrEqual(t, p, int64(2000))
	}
}

func TestScheduleAndTimeout(t *testing.T) {
	t.Parallel()

	g, err := New("alice", 10, fixedFloat(0.5), DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, game.Schedule{Tick: DefaultConfig().Tick, Timeout: DefaultConfig().Cap()}, g.Schedule())

	g.Timeout()
	out, _ := g.Outcome()
	assert.Equal(t, game.StatusTimedOut, out.Status)
	assert.Equal(t, game.Schedule{}, g.Schedule())
}

func TestCapCoversHighestPoint(t *testing.T) {
	t.Parallel()

	cfg := Config{Tick: 100 * time.Millisecond, MaxDuration: 60 * time.Second}
	climb := time.Duration((MaxPoint*100-Start)/Step) * cfg.Tick
	assert.Greater(t, cfg.Cap(), climb)

	cfg.MaxDuration = time.Hour
	assert.Equal(t, time.Hour, cfg.Cap())

	assert.Greater(t, DefaultConfig().Cap(), climb)
}

func TestNewWithPointValidates(t *testing.T) {
	t.Parallel()

	_, err := NewWithPoint("alice", 10, 100, DefaultConfig())
	assert.ErrorIs(t, err, game.ErrInvalidParams)
}

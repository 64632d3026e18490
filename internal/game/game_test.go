package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	t.Parallel()

	tests := map[string]Kind{
		"blackjack": Blackjack,
		"BJ":        Blackjack,
		" Slots ":   Slots,
		"flip":      Coinflip,
		"crash":     Crash,
	}
	for in, want := range tests {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseKind("poker")
	assert.Error(t, err)
}

func TestStatus(t *testing.T) {
	t.Parallel()

	assert.False(t, StatusActive.Terminal())
	for _, s := range []Status{StatusWon, StatusLost, StatusTied, StatusCancelled, StatusTimedOut} {
		assert.True(t, s.Terminal(), s.String())
	}
	assert.Equal(t, "timed_out", StatusTimedOut.String())
	assert.Equal(t, "status(42)", Status(42).String())
}

func TestNewBaseValidates(t *testing.T) {
	t.Parallel()

	_, err := NewBase("alice", 0)
	assert.ErrorIs(t, err, ErrNonPositiveBet)
	_, err = NewBase("alice", -5)
	assert.ErrorIs(t, err, ErrNonPositiveBet)
	_, err = NewBase("", 10)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestBaseFinishesOnce(t *testing.T) {
	t.Parallel()

	b, err := NewBase("alice", 100)
	require.NoError(t, err)

	_, ok := b.Outcome()
	assert.False(t, ok)
	assert.NoError(t, b.CheckMove(Move{Player: "alice"}))
	assert.ErrorIs(t, b.CheckMove(Move{Player: "bob"}), ErrNotOwner)

	b.Pay(StatusWon, 200)
	b.Cancel()

	out, ok := b.Outcome()
	require.True(t, ok)
	assert.Equal(t, StatusWon, out.Status)
	assert.Equal(t, map[string]int64{"alice": 200}, out.Credits)
	assert.ErrorIs(t, b.CheckMove(Move{Player: "alice"}), ErrSessionTerminal)

	snap := b.Header(Slots)
	assert.Equal(t, int64(200), snap.Payout)
	assert.Equal(t, int64(100), snap.Net)
}

func TestBaseLossHasNoCredits(t *testing.T) {
	t.Parallel()

	b, err := NewBase("alice", 100)
	require.NoError(t, err)
	b.Pay(StatusLost, 0)

	out, ok := b.Outcome()
	require.True(t, ok)
	assert.Empty(t, out.Credits)
	assert.Equal(t, int64(-100), b.Header(Crash).Net)
}

func TestSnapshotJSONOmitsOtherViews(t *testing.T) {
	t.Parallel()

	s := Snapshot{Kind: Crash, Status: StatusActive, Crash: &CrashView{Multiplier: 145}}
	data, err := json.Marshal(s)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "active", m["status"])
	assert.Contains(t, m, "crash")
	assert.NotContains(t, m, "mines")
	assert.NotContains(t, m["crash"], "crash_point")
}

func TestFormatHundredths(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1.00x", FormatHundredths(100))
	assert.Equal(t, "1.45x", FormatHundredths(145))
	assert.Equal(t, "20.05x", FormatHundredths(2005))
}

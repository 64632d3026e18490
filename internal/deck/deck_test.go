package deck

import (
	rand "math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeck(t *testing.T) {
	t.Parallel()

	d := NewDeck(rand.New(rand.NewPCG(1, 2)))
	require.Equal(t, Size, d.CardsRemaining())

	seen := make(map[Card]bool, Size)
	for i := 0; i < Size; i++ {
		c, err := d.Deal()
		require.NoError(t, err)
		assert.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
	}
	assert.Len(t, seen, Size)

	_, err := d.Deal()
	assert.ErrorIs(t, err, ErrEmptyDeck)
}

func TestNewDeckRequiresRNG(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewDeck(nil) })
}

func TestDeckShuffleIsSeedDeterministic(t *testing.T) {
	t.Parallel()

	a := NewDeck(rand.New(rand.NewPCG(42, 7)))
	b := NewDeck(rand.New(rand.NewPCG(42, 7)))
	c := NewDeck(rand.New(rand.NewPCG(43, 7)))

	var sameAsC = true
	for i := 0; i < Size; i++ {
		ca, _ := a.Deal()
		cb, _ := b.Deal()
		cc, _ := c.Deal()
		assert.Equal(t, ca, cb)
		if ca != cc {
			sameAsC = false
		}
	}
	assert.False(t, sameAsC, "different seeds should produce different orders")
}

func TestStackedDeckDealsInOrder(t *testing.T) {
	t.Parallel()

	cards := MustParseCards("TsAh9d7c")
	d := NewStackedDeck(cards)
	for _, want := range cards {
		got, err := d.Deal()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Zero(t, d.CardsRemaining())
}

package deck

import "errors"

// Size is the number of cards in a standard deck.
const Size = 52

// ErrEmptyDeck is returned when dealing from an exhausted deck.
var ErrEmptyDeck = errors.New("deck: no cards remaining")

// Shuffler is the randomness a deck needs. *rand.Rand from math/rand/v2
// satisfies it.
type Shuffler interface {
	IntN(n int) int
}

// Deck represents a deck of playing cards. Cards are dealt from the end of
// the slice.
type Deck struct {
	cards []Card
}

// NewDeck creates a standard 52-card deck shuffled with rng.
func NewDeck(rng Shuffler) *Deck {
	if rng == nil {
		panic("rng is required for deck creation")
	}

	d := &Deck{cards: make([]Card, 0, Size)}
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(suit, rank))
		}
	}

	// Fisher-Yates
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}

	return d
}

// NewStackedDeck returns a deck that deals exactly the given cards, in the
// given order. Used to replay fixed shoes.
func NewStackedDeck(cards []Card) *Deck {
	d := &Deck{cards: make([]Card, len(cards))}
	for i, c := range cards {
		d.cards[len(cards)-1-i] = c
	}
	return d
}

// Deal removes and returns the next card.
func (d *Deck) Deal() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrEmptyDeck
	}

	card := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card, nil
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return len(d.cards)
}

package deck

import (
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

// Points returns the blackjack value of the rank. Aces count 11 here; Hand.Score
// downgrades them to 1 as needed.
func (r Rank) Points() int {
	switch {
	case r == Ace:
		return 11
	case r >= Ten:
		return 10
	default:
		return int(r)
	}
}

// Card represents a playing card
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the string representation of a card (e.g., "A♠")
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// MarshalText renders the card the same way String does so snapshots carry
// readable cards.
func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// IsAce returns true if the card is an Ace
func (c Card) IsAce() bool {
	return c.Rank == Ace
}

// ParseCards parses a compact card list such as "TsAh9d7c" or "10sAh".
// Ranks are 2-9, T or 10, J, Q, K, A; suits are s, h, d, c. Case-insensitive.
func ParseCards(s string) ([]Card, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	var cards []Card
	for i := 0; i < len(s); {
		var rank Rank
		switch {
		case strings.HasPrefix(s[i:], "10"):
			rank = Ten
			i += 2
		default:
			r, ok := rankChars[s[i]]
			if !ok {
				return nil, fmt.Errorf("invalid rank %q at position %d", s[i], i)
			}
			rank = r
			i++
		}
		if i >= len(s) {
			return nil, fmt.Errorf("missing suit at position %d", i)
		}
		suit, ok := suitChars[s[i]]
		if !ok {
			return nil, fmt.Errorf("invalid suit %q at position %d", s[i], i)
		}
		i++
		cards = append(cards, NewCard(suit, rank))
	}
	return cards, nil
}

// MustParseCards is ParseCards for fixtures; it panics on malformed input.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

var rankChars = map[byte]Rank{
	'2': Two, '3': Three, '4': Four, '5': Five, '6': Six, '7': Seven,
	'8': Eight, '9': Nine, 't': Ten, 'j': Jack, 'q': Queen, 'k': King, 'a': Ace,
}

var suitChars = map[byte]Suit{
	's': Spades, 'h': Hearts, 'd': Diamonds, 'c': Clubs,
}

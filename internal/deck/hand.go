package deck

import "strings"

// Hand is an ordered set of cards held by a player or the dealer.
type Hand []Card

// Score returns the blackjack total. Aces start at 11 and are dropped to 1 one
// at a time while the total is over 21.
func (h Hand) Score() int {
	total, _ := h.score()
	return total
}

// Soft reports whether the total still counts an ace as 11.
func (h Hand) Soft() bool {
	_, soft := h.score()
	return soft > 0
}

func (h Hand) score() (total, softAces int) {
	for _, c := range h {
		total += c.Rank.Points()
		if c.IsAce() {
			softAces++
		}
	}
	for total > 21 && softAces > 0 {
		total -= 10
		softAces--
	}
	return total, softAces
}

// Busted reports whether the hand is over 21 even with every ace counted low.
func (h Hand) Busted() bool {
	return h.Score() > 21
}

// String joins the cards with spaces.
func (h Hand) String() string {
	parts := make([]string, len(h))
	for i, c := range h {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

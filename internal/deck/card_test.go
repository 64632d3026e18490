package deck

import "testing"

func TestParseCards(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Card
		wantErr  bool
	}{
		{
			name:  "natural",
			input: "TsAh",
			expected: []Card{
				{Suit: Spades, Rank: Ten},
				{Suit: Hearts, Rank: Ace},
			},
		},
		{
			name:  "two digit ten",
			input: "10s9d",
			expected: []Card{
				{Suit: Spades, Rank: Ten},
				{Suit: Diamonds, Rank: Nine},
			},
		},
		{
			name:  "case insensitive",
			input: "asKHqDjc",
			expected: []Card{
				{Suit: Spades, Rank: Ace},
				{Suit: Hearts, Rank: King},
				{Suit: Diamonds, Rank: Queen},
				{Suit: Clubs, Rank: Jack},
			},
		},
		{
			name:    "invalid rank",
			input:   "XsKs",
			wantErr: true,
		},
		{
			name:    "invalid suit",
			input:   "AsKx",
			wantErr: true,
		},
		{
			name:    "missing suit",
			input:   "AsK",
			wantErr: true,
		},
		{
			name:     "empty string",
			input:    "",
			expected: []Card{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCards(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseCards() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && !cardsEqual(got, tt.expected) {
				t.Errorf("ParseCards() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMustParseCards(t *testing.T) {
	cards := MustParseCards("AsKs")
	expected := []Card{
		{Suit: Spades, Rank: Ace},
		{Suit: Spades, Rank: King},
	}
	if !cardsEqual(cards, expected) {
		t.Errorf("MustParseCards() = %v, want %v", cards, expected)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("MustParseCards() should panic on invalid input")
		}
	}()
	MustParseCards("invalid")
}

func TestCardString(t *testing.T) {
	tests := map[string]Card{
		"10♠": NewCard(Spades, Ten),
		"A♥":  NewCard(Hearts, Ace),
		"9♦":  NewCard(Diamonds, Nine),
		"K♣":  NewCard(Clubs, King),
	}
	for want, card := range tests {
		if got := card.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestRankPoints(t *testing.T) {
	for r := Two; r <= Nine; r++ {
		if r.Points() != int(r) {
			t.Errorf("%s should be worth %d, got %d", r, int(r), r.Points())
		}
	}
	for _, r := range []Rank{Ten, Jack, Queen, King} {
		if r.Points() != 10 {
			t.Errorf("%s should be worth 10, got %d", r, r.Points())
		}
	}
	if Ace.Points() != 11 {
		t.Errorf("Ace should start at 11, got %d", Ace.Points())
	}
}

func cardsEqual(a, b []Card) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Rank != b[i].Rank || a[i].Suit != b[i].Suit {
			return false
		}
	}
	return true
}

package game

import (
	"fmt"

	"github.com/lox/wagerbot/internal/deck"
)

// Snapshot is the renderable state of a session. Hidden information (dealer
// hole card, mine positions, crash point, the coin result) only appears once
// the session is terminal, and no RNG state is ever included.
type Snapshot struct {
	Kind   Kind   `json:"kind"`
	Status Status `json:"status"`
	Owner  string `json:"owner"`
	Bet    int64  `json:"bet"`
	// Payout is the gross amount credited to the owner, set when terminal.
	Payout int64 `json:"payout"`
	// Net is Payout minus Bet, set when terminal.
	Net int64 `json:"net"`
	// Unpaid is the part of the owner's payout the ledger refused after
	// every retry. Payout and Net already exclude it.
	Unpaid int64 `json:"unpaid,omitempty"`
	Step   int   `json:"step"`

	Blackjack *BlackjackView `json:"blackjack,omitempty"`
	Roulette  *RouletteView  `json:"roulette,omitempty"`
	Slots     *SlotsView     `json:"slots,omitempty"`
	Mines     *MinesView     `json:"mines,omitempty"`
	Crash     *CrashView     `json:"crash,omitempty"`
	Coinflip  *CoinflipView  `json:"coinflip,omitempty"`
}

// BlackjackView shows both hands. While the player is acting the dealer's
// hole card is left out.
type BlackjackView struct {
	Player       []deck.Card `json:"player"`
	Dealer       []deck.Card `json:"dealer"`
	PlayerScore  int         `json:"player_score"`
	DealerScore  int         `json:"dealer_score"`
	DealerHidden bool        `json:"dealer_hidden"`
	Phase        string      `json:"phase"`
}

// RouletteView is one frame of the wheel animation.
type RouletteView struct {
	Choice string `json:"choice"`
	// Window holds the colors of the nine visible pockets; the pointer sits
	// over index PointerIndex.
	Window       []string `json:"window"`
	PointerIndex int      `json:"pointer_index"`
	Frame        int      `json:"frame"`
	Frames       int      `json:"frames"`
	Result       string   `json:"result,omitempty"`
	Number       int      `json:"number,omitempty"`
}

// SlotsView shows the reels of the current spin.
type SlotsView struct {
	Reels []string `json:"reels"`
	Spin  int      `json:"spin"`
	Spins int      `json:"spins"`
}

// Cell is the visible state of one mines tile.
type Cell int

const (
	CellHidden Cell = iota
	CellSafe
	CellMine
	CellExploded
	CellDisabled
)

func (c Cell) String() string {
	switch c {
	case CellHidden:
		return "hidden"
	case CellSafe:
		return "safe"
	case CellMine:
		return "mine"
	case CellExploded:
		return "exploded"
	case CellDisabled:
		return "disabled"
	}
	return fmt.Sprintf("cell(%d)", int(c))
}

func (c Cell) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// MinesView shows the grid and the current multiplier.
type MinesView struct {
	Cells       []Cell  `json:"cells"`
	Mines       int     `json:"mines"`
	SafeReveals int     `json:"safe_reveals"`
	Multiplier  float64 `json:"multiplier"`
	// CashOut is what cashing out now would pay.
	CashOut int64 `json:"cash_out"`
}

// CrashView shows the running multiplier in hundredths (145 is 1.45x).
type CrashView struct {
	Multiplier int64 `json:"multiplier"`
	CrashPoint int64 `json:"crash_point,omitempty"`
	CashedOut  bool  `json:"cashed_out"`
}

// CoinflipView shows the duel.
type CoinflipView struct {
	Challenger     string `json:"challenger"`
	Acceptor       string `json:"acceptor,omitempty"`
	ChallengerSide string `json:"challenger_side,omitempty"`
	AcceptorSide   string `json:"acceptor_side,omitempty"`
	// Frame is the animation text while the coin is in the air.
	Frame  string `json:"frame,omitempty"`
	Result string `json:"result,omitempty"`
	Winner string `json:"winner,omitempty"`
}

// FormatHundredths renders a multiplier kept in hundredths, e.g. "1.45x".
func FormatHundredths(h int64) string {
	return fmt.Sprintf("%d.%02dx", h/100, h%100)
}

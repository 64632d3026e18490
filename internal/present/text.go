package present

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/wagerbot/internal/deck"
	"github.com/lox/wagerbot/internal/game"
)

// Text renders updates as chat-style messages.
type Text struct {
	st styles
}

// NewText renders with r's color profile. Pass lipgloss.DefaultRenderer()
// for a terminal.
func NewText(r *lipgloss.Renderer) *Text {
	return &Text{st: newStyles(r)}
}

// NewPlainText renders without escape codes.
func NewPlainText() *Text {
	return NewText(plainRenderer())
}

// Render returns the message for one update.
func (t *Text) Render(u Update) string {
	s := u.Snapshot
	var b strings.Builder
	switch {
	case s.Blackjack != nil:
		t.blackjack(&b, s)
	case s.Roulette != nil:
		t.roulette(&b, s)
	case s.Slots != nil:
		t.slots(&b, s)
	case s.Mines != nil:
		t.mines(&b, s, u.SessionID)
	case s.Crash != nil:
		t.crash(&b, s)
	case s.Coinflip != nil:
		t.coinflip(&b, s, u.SessionID)
	default:
		fmt.Fprintf(&b, "%s session %s: %s", s.Kind, u.SessionID, s.Status)
	}
	if s.Unpaid > 0 {
		b.WriteString("\n" + t.st.loss.Render(fmt.Sprintf("⚠️ %d coins could not be credited to %s. Please contact an admin.", s.Unpaid, s.Owner)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (t *Text) header(b *strings.Builder, title string, s game.Snapshot) {
	fmt.Fprintf(b, "%s %s\n", t.st.header.Render(" "+title+" "),
		t.st.info.Render(fmt.Sprintf("%s bet %d", s.Owner, s.Bet)))
}

// result writes the generic settlement line.
func (t *Text) result(b *strings.Builder, s game.Snapshot) {
	switch s.Status {
	case game.StatusWon:
		b.WriteString(t.st.win.Render(fmt.Sprintf("🎉 %s won %d coins!", s.Owner, s.Net)))
	case game.StatusLost:
		b.WriteString(t.st.loss.Render(fmt.Sprintf("😔 %s lost %d coins.", s.Owner, s.Bet)))
	case game.StatusTied:
		b.WriteString(t.st.neutral.Render("🤝 It's a tie! Your bet is returned."))
	case game.StatusCancelled:
		b.WriteString(t.st.neutral.Render(fmt.Sprintf("Game cancelled, %d coins refunded.", s.Bet)))
	case game.StatusTimedOut:
		b.WriteString(t.st.loss.Render("⏰ Timeout! Game ended."))
	}
	b.WriteString("\n")
}

func (t *Text) cards(cards []deck.Card, hidden bool) string {
	parts := make([]string, 0, len(cards)+1)
	if hidden {
		parts = append(parts, "??")
	}
	for _, c := range cards {
		if c.IsRed() {
			parts = append(parts, t.st.red.Render(c.String()))
		} else {
			parts = append(parts, t.st.black.Render(c.String()))
		}
	}
	return strings.Join(parts, " ")
}

func (t *Text) blackjack(b *strings.Builder, s game.Snapshot) {
	v := s.Blackjack
	t.header(b, "🃏 Blackjack", s)
	fmt.Fprintf(b, "Your Hand: %s (Score: %d)\n", t.cards(v.Player, false), v.PlayerScore)
	if v.DealerHidden {
		fmt.Fprintf(b, "Dealer's Hand: %s\n", t.cards(v.Dealer, true))
	} else {
		fmt.Fprintf(b, "Dealer's Hand: %s (Score: %d)\n", t.cards(v.Dealer, false), v.DealerScore)
	}

	if !s.Status.Terminal() {
		if v.Phase == "player" {
			b.WriteString(t.st.prompt.Render("✋ Type `hit` to draw or `stand` to hold."))
		} else {
			b.WriteString(t.st.info.Render("Dealer is drawing..."))
		}
		b.WriteString("\n")
		return
	}
	switch {
	case v.PlayerScore > 21:
		b.WriteString(t.st.loss.Render("💥 Bust!") + " ")
	case v.PlayerScore == 21 && len(v.Player) == 2:
		b.WriteString(t.st.win.Render("Blackjack!") + " ")
	}
	t.result(b, s)
}

func colorEmoji(c string) string {
	switch c {
	case "red":
		return "🔴"
	case "black":
		return "⚫"
	case "green":
		return "🟢"
	}
	return "❔"
}

func (t *Text) roulette(b *strings.Builder, s game.Snapshot) {
	v := s.Roulette
	t.header(b, "🎡 Roulette", s)
	if s.Status.Terminal() && v.Result != "" {
		fmt.Fprintf(b, "🎯 The ball landed on %d (%s) %s\n", v.Number, v.Result, colorEmoji(v.Result))
		t.result(b, s)
		return
	}
	if s.Status.Terminal() {
		t.result(b, s)
		return
	}

	pockets := make([]string, len(v.Window))
	for i, c := range v.Window {
		pockets[i] = colorEmoji(c)
	}
	fmt.Fprintf(b, "%s⬇️\n", strings.Repeat("   ", v.PointerIndex))
	fmt.Fprintf(b, "🎡 %s 🎡\n", strings.Join(pockets, " "))
	b.WriteString(t.st.info.Render(fmt.Sprintf("You picked %s. Spinning the wheel...", v.Choice)))
	b.WriteString("\n")
}

func (t *Text) slots(b *strings.Builder, s game.Snapshot) {
	v := s.Slots
	t.header(b, "🎰 Slots", s)
	if len(v.Reels) == 0 {
		b.WriteString("🎰    Spinning...    🎰\n")
		return
	}
	fmt.Fprintf(b, "🎰    %s    🎰\n", strings.Join(v.Reels, " | "))
	if !s.Status.Terminal() {
		return
	}
	if s.Status == game.StatusWon && v.Reels[0] == v.Reels[1] && v.Reels[1] == v.Reels[2] {
		b.WriteString(t.st.win.Render("JACKPOT!") + " ")
	} else if s.Status == game.StatusLost {
		b.WriteString("No match. ")
	}
	t.result(b, s)
}

var cellEmoji = map[game.Cell]string{
	game.CellHidden:   "⬛",
	game.CellSafe:     "✅",
	game.CellMine:     "💣",
	game.CellExploded: "💥",
	game.CellDisabled: "▫️",
}

func (t *Text) mines(b *strings.Builder, s game.Snapshot, id string) {
	v := s.Mines
	t.header(b, "💣 Mines", s)
	const width = 5
	for i, c := range v.Cells {
		b.WriteString(cellEmoji[c])
		if (i+1)%width == 0 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	fmt.Fprintf(b, "Mines: %d  Multiplier: x%.2f  Cash out: %d\n", v.Mines, v.Multiplier, v.CashOut)

	switch s.Status {
	case game.StatusActive:
		b.WriteString(t.st.prompt.Render(
			"Type `reveal <1-25>` or `reveal <x> <y>` to open a tile, or `cash out` to stop."))
		b.WriteString("\n")
	case game.StatusLost:
		b.WriteString(t.st.loss.Render("💥 You hit a mine! Game over.") + "\n")
	case game.StatusWon:
		b.WriteString(t.st.win.Render(fmt.Sprintf("🎉 %s cashed out for %d coins!", s.Owner, s.Payout)) + "\n")
	default:
		t.result(b, s)
	}
}

func (t *Text) crash(b *strings.Builder, s game.Snapshot) {
	v := s.Crash
	t.header(b, "📈 Crash", s)
	switch {
	case s.Status == game.StatusActive:
		fmt.Fprintf(b, "Multiplier: %s\n", t.st.neutral.Render(game.FormatHundredths(v.Multiplier)))
		b.WriteString(t.st.prompt.Render("Type `cash out` before it crashes!") + "\n")
	case v.CashedOut:
		b.WriteString(t.st.win.Render(fmt.Sprintf("💰 %s cashed out at %s for %d coins!",
			s.Owner, game.FormatHundredths(v.Multiplier), s.Payout)) + "\n")
	case s.Status == game.StatusLost:
		b.WriteString(t.st.loss.Render(fmt.Sprintf("💥 Crash! Multiplier reached %s. You lost your bet.",
			game.FormatHundredths(v.CrashPoint))) + "\n")
	default:
		t.result(b, s)
	}
}

func (t *Text) coinflip(b *strings.Builder, s game.Snapshot, id string) {
	v := s.Coinflip
	t.header(b, "🪙 Coin Flip", s)

	switch {
	case v.Acceptor == "" && s.Status == game.StatusActive:
		fmt.Fprintf(b, "🪙 %s has created an open %d coin coin flip! First to type `accept %s` joins the duel!\n",
			v.Challenger, s.Bet, id)
		return
	case v.Acceptor == "" && s.Status == game.StatusTimedOut:
		b.WriteString(t.st.info.Render("Nobody accepted the challenge. Bet refunded.") + "\n")
		return
	case v.Acceptor == "":
		t.result(b, s)
		return
	}

	fmt.Fprintf(b, "🪙 %s is %s\n%s is %s\n", v.Challenger, v.ChallengerSide, v.Acceptor, v.AcceptorSide)
	switch {
	case v.Winner != "":
		b.WriteString(t.st.win.Render(fmt.Sprintf("🪙 The coin lands %s... and %s wins %d coins!",
			v.Result, v.Winner, s.Bet)) + "\n")
	case s.Status.Terminal():
		t.result(b, s)
	case v.Frame == "Settling...":
		b.WriteString("🪙 " + v.Frame + "\n")
	case v.Frame != "":
		b.WriteString("🔃 " + v.Frame + "\n")
	default:
		b.WriteString("Flipping the coin...\n")
	}
}

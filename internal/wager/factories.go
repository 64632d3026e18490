package wager

import (
	"github.com/lox/wagerbot/internal/blackjack"
	"github.com/lox/wagerbot/internal/coinflip"
	"github.com/lox/wagerbot/internal/crash"
	"github.com/lox/wagerbot/internal/game"
	"github.com/lox/wagerbot/internal/mines"
	"github.com/lox/wagerbot/internal/roulette"
	"github.com/lox/wagerbot/internal/slots"
)

// Games holds the per-engine settings.
type Games struct {
	Blackjack blackjack.Config
	Roulette  roulette.Config
	Slots     slots.Config
	Mines     mines.Config
	Crash     crash.Config
	Coinflip  coinflip.Config
}

func DefaultGames() Games {
	return Games{
		Blackjack: blackjack.DefaultConfig(),
		Roulette:  roulette.DefaultConfig(),
		Slots:     slots.DefaultConfig(),
		Mines:     mines.DefaultConfig(),
		Crash:     crash.DefaultConfig(),
		Coinflip:  coinflip.DefaultConfig(),
	}
}

// Factories returns a factory for every game.
func (g Games) Factories() map[game.Kind]game.Factory {
	return map[game.Kind]game.Factory{
		game.Blackjack: blackjack.Factory(g.Blackjack),
		game.Roulette:  roulette.Factory(g.Roulette),
		game.Slots:     slots.Factory(g.Slots),
		game.Mines:     mines.Factory(g.Mines),
		game.Crash:     crash.Factory(g.Crash),
		game.Coinflip:  coinflip.Factory(g.Coinflip),
	}
}

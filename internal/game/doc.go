// Package game defines the contracts shared by every wagering engine: kinds,
// statuses, moves, outcomes and the snapshot handed to presenters.
//
// An Engine is a pure state machine. It never touches balances or timers;
// the wager coordinator escrows bets, drives Tick and Timeout from its clock,
// and settles the Outcome exactly once.
//
// # Basic Usage
//
// Build an engine through its Factory and step it:
//
//	e, err := factory("alice", 100, game.Params{}, rng)
//	// Apply player moves, call Tick when Schedule().Tick elapses...
//	if out, ok := e.Outcome(); ok {
//	    // credit out.Credits
//	}
//
// # Deterministic Testing
//
// Every engine draws only from the RandSource it is given, so a seeded
// *rand.Rand replays a session exactly:
//
//	rng := randutil.New(42)
//	e, _ := factory("alice", 100, game.Params{Choice: "red"}, rng)
//
// # Architecture
//
// Engines embed Base, which tracks the owner, bet, status and step counter
// and records the Outcome once. Snapshot carries one view per game and hides
// whatever the player must not see until the session is terminal.
package game

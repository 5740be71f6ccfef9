// Package game implements the blackjack round state machine.
//
// The main type is RoundState, a plain value holding one round for one player:
// the dealer hand, the player hands (more than one after splits), the active
// hand index and the shoe being dealt from. Engine.Apply takes a state and an
// Action and returns the next state without touching the input, so callers can
// load a round from storage, apply one action and persist the result.
//
// # Basic Usage
//
//	engine := game.NewEngine(randutil.New(seed), game.WithLogger(logger))
//	tr, err := engine.Apply(nil, game.StartGame{Bet: 100, Rules: game.DefaultRules()}, balance)
//	// debit tr.Debit from the ledger, persist tr.State
//	tr, err = engine.Apply(tr.State, game.Stand{}, balance-100)
//	if tr.State.Phase == game.GameOver {
//	    credit := tr.State.Result.TotalWon
//	}
//
// # Deterministic Testing
//
// StartGame accepts an explicit shoe. A stacked shoe deals a fixed sequence:
//
//	shoe := deck.NewStackedShoe(deck.MustParseCards("Th 6s 7d 9c 8h")...)
//	tr, _ := engine.Apply(nil, game.StartGame{Bet: 100, Rules: rules, Shoe: shoe}, 1000)
//
// When no shoe is given the engine calls ResolveShoe with the previous round's
// shoe, which applies the table's shuffle policy.
//
// # Architecture
//
//   - Hand: card list, wager and flags; scoring, soft/blackjack/bust checks
//   - Rules: per-round snapshot of table rules, validated at round start
//   - Capabilities: which player actions are legal right now
//   - Settle: pure payout calculation once the round is over
//   - View: client-facing snapshot with the dealer hole card redacted
package game

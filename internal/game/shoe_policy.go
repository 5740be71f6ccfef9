package game

import (
	rand "math/rand/v2"

	"github.com/lox/blackjack/internal/deck"
)

// reserveCards is the least a shoe may hold at the start of a round. A shoe
// played below it is recomposed whatever the penetration setting.
const reserveCards = 20

// ShoeDecision records why ResolveShoe produced the shoe it did.
type ShoeDecision string

const (
	ShoeNew       ShoeDecision = "new"
	ShoeRecompose ShoeDecision = "recompose"
	ShoeReshuffle ShoeDecision = "reshuffle"
	ShoeContinue  ShoeDecision = "continue"
)

// ResolveShoe picks the shoe for the next round from the previous one:
//
//	no previous shoe or deck count changed  -> new shoe
//	penetration reached or below reserve    -> recompose and reshuffle
//	shuffle=auto                            -> reshuffle remaining cards in place
//	shuffle=shoe                            -> keep dealing from where it left off
//
// The previous shoe is never modified.
func ResolveShoe(prev *deck.Shoe, rules Rules, rng *rand.Rand) (*deck.Shoe, ShoeDecision) {
	if prev == nil || prev.Decks() != rules.Decks {
		return deck.NewShoe(rng, rules.Decks), ShoeNew
	}

	shoe := prev.Clone()
	if shoe.NeedsReshuffle(rules.Penetration) || shoe.CardsRemaining() < min(reserveCards, shoe.OriginalSize()) {
		shoe.Reset(rng, rules.Decks)
		return shoe, ShoeRecompose
	}

	if rules.Shuffle == ShuffleAuto {
		shoe.Shuffle(rng)
		return shoe, ShoeReshuffle
	}
	return shoe, ShoeContinue
}

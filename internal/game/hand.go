package game

import (
	"fmt"
	"strings"

	"github.com/lox/blackjack/internal/deck"
)

// Hand is an ordered list of cards with the wager riding on it.
type Hand struct {
	Cards       []deck.Card `json:"cards"`
	Bet         Money       `json:"bet"`
	Doubled     bool        `json:"doubled,omitempty"`
	Split       bool        `json:"split,omitempty"`
	Stood       bool        `json:"stood,omitempty"`
	Surrendered bool        `json:"surrendered,omitempty"`
}

// NewHand creates an empty hand carrying the given wager
func NewHand(bet Money, cards ...deck.Card) Hand {
	return Hand{Cards: append([]deck.Card(nil), cards...), Bet: bet}
}

// AddCard appends a card to the hand
func (h *Hand) AddCard(card deck.Card) {
	h.Cards = append(h.Cards, card)
}

// totals returns the best score and how many aces are still counted as 11.
func (h *Hand) totals() (score, softAces int) {
	for _, c := range h.Cards {
		score += c.Value()
		if c.IsAce() {
			softAces++
		}
	}
	for score > 21 && softAces > 0 {
		score -= 10
		softAces--
	}
	return score, softAces
}

// Score returns the best total, counting aces as 11 until that would bust.
func (h *Hand) Score() int {
	score, _ := h.totals()
	return score
}

// IsSoft reports whether at least one ace is still counted as 11.
func (h *Hand) IsSoft() bool {
	_, softAces := h.totals()
	return softAces > 0
}

// IsBlackjack reports a two-card 21
func (h *Hand) IsBlackjack() bool {
	return len(h.Cards) == 2 && h.Score() == 21
}

// IsNatural reports a blackjack dealt to an unsplit hand. A two-card 21 after
// a split is an ordinary 21.
func (h *Hand) IsNatural() bool {
	return !h.Split && h.IsBlackjack()
}

// IsBusted reports a total over 21
func (h *Hand) IsBusted() bool {
	return h.Score() > 21
}

// IsDone reports whether the hand takes no further player action.
func (h *Hand) IsDone() bool {
	return h.Stood || h.Surrendered || h.IsBusted()
}

// CanSplit reports a two-card pair of equal value; any two ten-valued ranks pair.
func (h *Hand) CanSplit() bool {
	if len(h.Cards) != 2 {
		return false
	}
	a, b := h.Cards[0], h.Cards[1]
	return a.Value() == b.Value() || (a.Rank.IsTen() && b.Rank.IsTen())
}

// SplitOff removes and returns the second card and marks the hand as split.
// The caller builds the sibling hand from the returned card.
func (h *Hand) SplitOff() (deck.Card, error) {
	if !h.CanSplit() {
		return deck.Card{}, fmt.Errorf("%w: hand %s is not a pair", ErrIneligibleAction, h)
	}
	card := h.Cards[1]
	h.Cards = h.Cards[:1]
	h.Split = true
	return card, nil
}

// DoubleBet doubles the wager and marks the hand doubled
func (h *Hand) DoubleBet() {
	h.Bet *= 2
	h.Doubled = true
}

// Clone returns a copy that shares no card storage with h
func (h Hand) Clone() Hand {
	h.Cards = append([]deck.Card(nil), h.Cards...)
	return h
}

// String returns the cards and total, e.g. "Ah 6c (soft 17)"
func (h Hand) String() string {
	if len(h.Cards) == 0 {
		return "(empty)"
	}
	parts := make([]string, len(h.Cards))
	for i, c := range h.Cards {
		parts[i] = c.String()
	}
	kind := ""
	if h.IsSoft() {
		kind = "soft "
	}
	return fmt.Sprintf("%s (%s%d)", strings.Join(parts, " "), kind, h.Score())
}

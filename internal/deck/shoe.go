package deck

import (
	"encoding/json"
	"errors"
	"fmt"
	rand "math/rand/v2"
)

// ErrEmptyShoe is returned when dealing from a shoe with no cards left.
var ErrEmptyShoe = errors.New("shoe is empty")

const (
	// CardsPerDeck is the size of one standard deck
	CardsPerDeck = 52
	// MinDecks and MaxDecks bound the number of decks in a shoe
	MinDecks = 1
	MaxDecks = 8
)

// Shoe is the working set of cards being dealt from. The top of the shoe is the
// end of the slice. originalSize is the size at the most recent full composition.
type Shoe struct {
	cards        []Card
	decks        int
	originalSize int
}

// NewShoe builds a shoe of the given number of standard decks and shuffles it.
func NewShoe(rng *rand.Rand, decks int) *Shoe {
	s := &Shoe{}
	s.Reset(rng, decks)
	return s
}

// NewStackedShoe builds an unshuffled shoe that deals the given cards in order,
// first card first. It is intended for deterministic tests and replays.
func NewStackedShoe(cards ...Card) *Shoe {
	s := &Shoe{
		cards:        make([]Card, len(cards)),
		decks:        max(1, (len(cards)+CardsPerDeck-1)/CardsPerDeck),
		originalSize: len(cards),
	}
	for i, c := range cards {
		s.cards[len(cards)-1-i] = c
	}
	return s
}

// Reset rebuilds the shoe to its full composition and shuffles it.
func (s *Shoe) Reset(rng *rand.Rand, decks int) {
	s.decks = decks
	s.cards = s.cards[:0]
	for range decks {
		for _, suit := range Suits {
			for rank := Ace; rank <= King; rank++ {
				s.cards = append(s.cards, NewCard(suit, rank))
			}
		}
	}
	s.originalSize = len(s.cards)
	s.Shuffle(rng)
}

// Shuffle randomizes the remaining cards in place using Fisher-Yates
func (s *Shoe) Shuffle(rng *rand.Rand) {
	for i := len(s.cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
}

// Deal removes and returns the top card of the shoe
func (s *Shoe) Deal() (Card, error) {
	if len(s.cards) == 0 {
		return Card{}, ErrEmptyShoe
	}
	card := s.cards[len(s.cards)-1]
	s.cards = s.cards[:len(s.cards)-1]
	return card, nil
}

// CardsRemaining returns the number of cards left in the shoe
func (s *Shoe) CardsRemaining() int {
	return len(s.cards)
}

// OriginalSize returns the card count at the most recent full composition
func (s *Shoe) OriginalSize() int {
	return s.originalSize
}

// Decks returns the number of decks the shoe was composed from
func (s *Shoe) Decks() int {
	return s.decks
}

// Penetration returns the percentage of the shoe dealt since composition.
func (s *Shoe) Penetration() float64 {
	if s.originalSize == 0 {
		return 100
	}
	return float64(s.originalSize-len(s.cards)) / float64(s.originalSize) * 100
}

// NeedsReshuffle reports whether the dealt fraction has reached the given
// penetration percentage.
func (s *Shoe) NeedsReshuffle(penetration int) bool {
	return NeedsReshuffle(s.originalSize, len(s.cards), penetration)
}

// NeedsReshuffle reports whether (originalSize-remaining)/originalSize*100 >= penetration.
// Integer arithmetic keeps the boundary exact.
func NeedsReshuffle(originalSize, remaining, penetration int) bool {
	if originalSize <= 0 {
		return true
	}
	dealt := originalSize - remaining
	return dealt*100 >= penetration*originalSize
}

// Clone returns an independent copy of the shoe
func (s *Shoe) Clone() *Shoe {
	if s == nil {
		return nil
	}
	c := *s
	c.cards = append([]Card(nil), s.cards...)
	return &c
}

type shoeJSON struct {
	Decks        int    `json:"decks"`
	OriginalSize int    `json:"original_size"`
	Cards        []Card `json:"cards"`
}

// MarshalJSON encodes the full remaining composition, bottom to top, so a
// reloaded shoe continues dealing exactly where it left off.
func (s *Shoe) MarshalJSON() ([]byte, error) {
	return json.Marshal(shoeJSON{
		Decks:        s.decks,
		OriginalSize: s.originalSize,
		Cards:        s.cards,
	})
}

// UnmarshalJSON restores a shoe encoded by MarshalJSON.
func (s *Shoe) UnmarshalJSON(data []byte) error {
	var raw shoeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Cards) > raw.OriginalSize {
		return fmt.Errorf("shoe holds %d cards but original size is %d", len(raw.Cards), raw.OriginalSize)
	}
	s.decks = raw.Decks
	s.originalSize = raw.OriginalSize
	s.cards = raw.Cards
	if s.cards == nil {
		s.cards = []Card{}
	}
	return nil
}

package game

import (
	"fmt"
	"strings"

	"github.com/lox/blackjack/internal/deck"
)

// Money is an amount in whole table units.
type Money int64

// ShuffleMethod selects when the shoe is shuffled between rounds.
type ShuffleMethod uint8

const (
	// ShuffleAuto reshuffles the remaining cards before every round.
	ShuffleAuto ShuffleMethod = iota
	// ShuffleShoe plays the shoe down to the penetration cut before recomposing.
	ShuffleShoe
)

var shuffleNames = []string{"auto", "shoe"}

func (m ShuffleMethod) String() string               { return enumName(shuffleNames, m) }
func (m ShuffleMethod) MarshalText() ([]byte, error) { return []byte(m.String()), nil }
func (m *ShuffleMethod) UnmarshalText(b []byte) error {
	return parseEnumInto(shuffleNames, "shuffle method", string(b), m)
}

// DealStyle controls whether the dealer takes a hole card.
type DealStyle uint8

const (
	// American deals the dealer a hole card and peeks for blackjack.
	American DealStyle = iota
	// European deals the dealer's second card only after the players act.
	European
	// Macau is European without a hole card, but only the original wager is
	// lost to a dealer blackjack.
	Macau
)

var dealStyleNames = []string{"american", "european", "macau"}

func (d DealStyle) String() string               { return enumName(dealStyleNames, d) }
func (d DealStyle) MarshalText() ([]byte, error) { return []byte(d.String()), nil }
func (d *DealStyle) UnmarshalText(b []byte) error {
	return parseEnumInto(dealStyleNames, "deal style", string(b), d)
}

// HasHoleCard reports whether the dealer receives a second card during the deal.
func (d DealStyle) HasHoleCard() bool {
	return d == American
}

// DealerDraw is the dealer's standing rule.
type DealerDraw uint8

const (
	// DrawAny17 stands on every 17.
	DrawAny17 DealerDraw = iota
	// DrawHard17 draws to a hard 17, hitting soft 17.
	DrawHard17
)

var dealerDrawNames = []string{"any17", "hard17"}

func (d DealerDraw) String() string               { return enumName(dealerDrawNames, d) }
func (d DealerDraw) MarshalText() ([]byte, error) { return []byte(d.String()), nil }
func (d *DealerDraw) UnmarshalText(b []byte) error {
	return parseEnumInto(dealerDrawNames, "dealer draw rule", string(b), d)
}

// Payout is the blackjack payout ratio.
type Payout uint8

const (
	Payout3to2 Payout = iota
	Payout1to1
)

var payoutNames = []string{"3:2", "1:1"}

func (p Payout) String() string               { return enumName(payoutNames, p) }
func (p Payout) MarshalText() ([]byte, error) { return []byte(p.String()), nil }
func (p *Payout) UnmarshalText(b []byte) error {
	return parseEnumInto(payoutNames, "blackjack payout", string(b), p)
}

// Bonus returns the winnings on top of the returned wager for a blackjack.
// Fractions are floored.
func (p Payout) Bonus(bet Money) Money {
	if p == Payout1to1 {
		return bet
	}
	return bet * 3 / 2
}

// SurrenderRule selects which surrender, if any, the table offers.
type SurrenderRule uint8

const (
	SurrenderNone SurrenderRule = iota
	SurrenderEarly
	SurrenderLate
)

var surrenderNames = []string{"none", "early", "late"}

func (s SurrenderRule) String() string               { return enumName(surrenderNames, s) }
func (s SurrenderRule) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
func (s *SurrenderRule) UnmarshalText(b []byte) error {
	return parseEnumInto(surrenderNames, "surrender rule", string(b), s)
}

// DoubleRestriction limits which totals may be doubled.
type DoubleRestriction uint8

const (
	DoubleAny DoubleRestriction = iota
	DoubleNineToEleven
)

var doubleNames = []string{"any", "9-10-11"}

func (d DoubleRestriction) String() string               { return enumName(doubleNames, d) }
func (d DoubleRestriction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }
func (d *DoubleRestriction) UnmarshalText(b []byte) error {
	return parseEnumInto(doubleNames, "double restriction", string(b), d)
}

// Allows reports whether a two-card total may be doubled.
func (d DoubleRestriction) Allows(score int) bool {
	if d == DoubleNineToEleven {
		return score >= 9 && score <= 11
	}
	return true
}

// Rules is the immutable snapshot of table rules a round is played under.
type Rules struct {
	Decks            int               `json:"decks"`
	Shuffle          ShuffleMethod     `json:"shuffle"`
	Penetration      int               `json:"penetration"`
	DealStyle        DealStyle         `json:"deal_style"`
	DealerDrawTo     DealerDraw        `json:"dealer_draw_to"`
	BlackjackPayout  Payout            `json:"blackjack_payout"`
	Surrender        SurrenderRule     `json:"surrender"`
	DoubleAfterSplit bool              `json:"double_after_split"`
	DoubleOn         DoubleRestriction `json:"double_on"`
	MaxSplits        int               `json:"max_splits"`
	MinBet           Money             `json:"min_bet"`
	MaxBet           Money             `json:"max_bet"`
	BetIncrement     Money             `json:"bet_increment"`
}

// DefaultRules returns a common six-deck shoe game.
func DefaultRules() Rules {
	return Rules{
		Decks:            6,
		Shuffle:          ShuffleShoe,
		Penetration:      75,
		DealStyle:        American,
		DealerDrawTo:     DrawHard17,
		BlackjackPayout:  Payout3to2,
		Surrender:        SurrenderLate,
		DoubleAfterSplit: true,
		DoubleOn:         DoubleAny,
		MaxSplits:        3,
		MinBet:           10,
		MaxBet:           500,
		BetIncrement:     1,
	}
}

// MaxHands is the number of player hands the split limit allows.
func (r Rules) MaxHands() int {
	return r.MaxSplits + 1
}

// Validate range-checks every rule.
func (r Rules) Validate() error {
	if r.Decks < deck.MinDecks || r.Decks > deck.MaxDecks {
		return fmt.Errorf("%w: decks must be between %d and %d, got %d", ErrConfigInvalid, deck.MinDecks, deck.MaxDecks, r.Decks)
	}
	if r.Penetration < 50 || r.Penetration > 100 {
		return fmt.Errorf("%w: penetration must be between 50 and 100, got %d", ErrConfigInvalid, r.Penetration)
	}
	if r.MaxSplits < 1 || r.MaxSplits > 4 {
		return fmt.Errorf("%w: max splits must be between 1 and 4, got %d", ErrConfigInvalid, r.MaxSplits)
	}
	if r.MinBet <= 0 {
		return fmt.Errorf("%w: minimum bet must be positive", ErrConfigInvalid)
	}
	if r.MaxBet < r.MinBet {
		return fmt.Errorf("%w: maximum bet %d is below minimum %d", ErrConfigInvalid, r.MaxBet, r.MinBet)
	}
	if r.BetIncrement <= 0 {
		return fmt.Errorf("%w: bet increment must be positive", ErrConfigInvalid)
	}
	for _, check := range []struct {
		name  string
		value uint8
		count int
	}{
		{"shuffle method", uint8(r.Shuffle), len(shuffleNames)},
		{"deal style", uint8(r.DealStyle), len(dealStyleNames)},
		{"dealer draw rule", uint8(r.DealerDrawTo), len(dealerDrawNames)},
		{"blackjack payout", uint8(r.BlackjackPayout), len(payoutNames)},
		{"surrender rule", uint8(r.Surrender), len(surrenderNames)},
		{"double restriction", uint8(r.DoubleOn), len(doubleNames)},
	} {
		if int(check.value) >= check.count {
			return fmt.Errorf("%w: unknown %s %d", ErrConfigInvalid, check.name, check.value)
		}
	}
	return nil
}

// ValidateBet checks a wager against the table limits and increment.
func (r Rules) ValidateBet(bet Money) error {
	switch {
	case bet < r.MinBet:
		return fmt.Errorf("%w: %d is below the table minimum %d", ErrInvalidBet, bet, r.MinBet)
	case bet > r.MaxBet:
		return fmt.Errorf("%w: %d is above the table maximum %d", ErrInvalidBet, bet, r.MaxBet)
	case r.BetIncrement > 0 && bet%r.BetIncrement != 0:
		return fmt.Errorf("%w: %d is not a multiple of %d", ErrInvalidBet, bet, r.BetIncrement)
	}
	return nil
}

// ParseShuffleMethod parses "auto" or "shoe".
func ParseShuffleMethod(s string) (ShuffleMethod, error) {
	return parseEnum[ShuffleMethod](shuffleNames, "shuffle method", s)
}

// ParseDealStyle parses "american", "european" or "macau".
func ParseDealStyle(s string) (DealStyle, error) {
	return parseEnum[DealStyle](dealStyleNames, "deal style", s)
}

// ParseDealerDraw parses "any17" or "hard17".
func ParseDealerDraw(s string) (DealerDraw, error) {
	return parseEnum[DealerDraw](dealerDrawNames, "dealer draw rule", s)
}

// ParsePayout parses "3:2" or "1:1".
func ParsePayout(s string) (Payout, error) {
	return parseEnum[Payout](payoutNames, "blackjack payout", s)
}

// ParseSurrenderRule parses "none", "early" or "late".
func ParseSurrenderRule(s string) (SurrenderRule, error) {
	return parseEnum[SurrenderRule](surrenderNames, "surrender rule", s)
}

// ParseDoubleRestriction parses "any" or "9-10-11".
func ParseDoubleRestriction(s string) (DoubleRestriction, error) {
	return parseEnum[DoubleRestriction](doubleNames, "double restriction", s)
}

func enumName[T ~uint8](names []string, v T) string {
	if int(v) < len(names) {
		return names[v]
	}
	return fmt.Sprintf("unknown(%d)", v)
}

func parseEnum[T ~uint8](names []string, kind, s string) (T, error) {
	s = strings.TrimSpace(s)
	for i, name := range names {
		if strings.EqualFold(name, s) {
			return T(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown %s %q (want one of %s)", ErrConfigInvalid, kind, s, strings.Join(names, ", "))
}

func parseEnumInto[T ~uint8](names []string, kind, s string, dst *T) error {
	v, err := parseEnum[T](names, kind, s)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

package game

import "github.com/lox/blackjack/internal/deck"

// HandView is a hand as shown to the client
type HandView struct {
	Cards       []deck.Card `json:"cards"`
	Hidden      int         `json:"hidden_cards,omitempty"`
	Score       int         `json:"score"`
	Soft        bool        `json:"soft"`
	Blackjack   bool        `json:"blackjack"`
	Busted      bool        `json:"busted"`
	Bet         Money       `json:"bet,omitempty"`
	Doubled     bool        `json:"doubled,omitempty"`
	Split       bool        `json:"split,omitempty"`
	Stood       bool        `json:"stood,omitempty"`
	Surrendered bool        `json:"surrendered,omitempty"`
}

// ShoeView reports the shoe's depletion without revealing its order
type ShoeView struct {
	Remaining      int     `json:"remaining"`
	OriginalSize   int     `json:"original_size"`
	Penetration    float64 `json:"penetration"`
	NeedsReshuffle bool    `json:"needs_reshuffle"`
}

// View is the serializable snapshot returned to clients after every action.
type View struct {
	RoundID     string       `json:"round_id,omitempty"`
	State       Phase        `json:"state"`
	Dealer      HandView     `json:"dealer_hand"`
	Hands       []HandView   `json:"player_hands"`
	CurrentHand int          `json:"current_hand_index"`
	Actions     Capabilities `json:"actions"`
	Shoe        *ShoeView    `json:"shoe,omitempty"`
	Rules       Rules        `json:"rules"`
	Result      *Settlement  `json:"result,omitempty"`
}

// View builds the client snapshot. While the player acts in the American
// style only the dealer's upcard is shown.
func (s *RoundState) View() View {
	v := View{
		RoundID:     s.ID,
		State:       s.Phase,
		Hands:       make([]HandView, len(s.Hands)),
		CurrentHand: s.Current,
		Actions:     s.Capabilities(),
		Rules:       s.Rules,
		Result:      s.Result,
	}

	dealer := s.Dealer
	hidden := 0
	if s.Phase == PlayerTurn && len(dealer.Cards) > 1 {
		hidden = len(dealer.Cards) - 1
		dealer = NewHand(0, dealer.Cards[0])
	}
	v.Dealer = viewHand(dealer)
	v.Dealer.Hidden = hidden

	for i, h := range s.Hands {
		v.Hands[i] = viewHand(h)
	}

	if s.Shoe != nil {
		v.Shoe = &ShoeView{
			Remaining:      s.Shoe.CardsRemaining(),
			OriginalSize:   s.Shoe.OriginalSize(),
			Penetration:    s.Shoe.Penetration(),
			NeedsReshuffle: s.Rules.Penetration > 0 && s.Shoe.NeedsReshuffle(s.Rules.Penetration),
		}
	}
	return v
}

func viewHand(h Hand) HandView {
	cards := h.Cards
	if cards == nil {
		cards = []deck.Card{}
	}
	return HandView{
		Cards:       cards,
		Score:       h.Score(),
		Soft:        h.IsSoft(),
		Blackjack:   h.IsNatural(),
		Busted:      h.IsBusted(),
		Bet:         h.Bet,
		Doubled:     h.Doubled,
		Split:       h.Split,
		Stood:       h.Stood,
		Surrendered: h.Surrendered,
	}
}

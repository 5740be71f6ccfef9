package game

// HandOutcome is the result of one player hand
type HandOutcome string

const (
	OutcomeWin       HandOutcome = "win"
	OutcomeLoss      HandOutcome = "loss"
	OutcomePush      HandOutcome = "push"
	OutcomeBlackjack HandOutcome = "blackjack"
	OutcomeBust      HandOutcome = "bust"
	OutcomeSurrender HandOutcome = "surrender"
)

// RoundOutcome summarizes the round for the player: credited more, the same
// or less than was wagered.
type RoundOutcome string

const (
	RoundWon  RoundOutcome = "won"
	RoundPush RoundOutcome = "push"
	RoundLost RoundOutcome = "lost"
)

// HandResult is the settlement of one player hand. Won is the amount credited
// back (returned wager included); Lost is the amount forfeited.
type HandResult struct {
	Hand    int         `json:"hand"`
	Outcome HandOutcome `json:"outcome"`
	Score   int         `json:"score"`
	Bet     Money       `json:"bet"`
	Won     Money       `json:"won"`
	Lost    Money       `json:"lost"`
}

// Settlement is the payout for a finished round. Net is TotalWon less TotalBet,
// not less TotalLost: a surrender that returns 50 of 100 nets -50.
type Settlement struct {
	Hands           []HandResult `json:"hands"`
	DealerScore     int          `json:"dealer_score"`
	DealerBlackjack bool         `json:"dealer_blackjack"`
	DealerBusted    bool         `json:"dealer_busted"`
	TotalBet        Money        `json:"total_bet"`
	TotalWon        Money        `json:"total_won"`
	TotalLost       Money        `json:"total_lost"`
	Net             Money        `json:"net_result"`
	Outcome         RoundOutcome `json:"game_outcome"`
}

// Settle computes per-hand payouts and round totals. Wagers were debited when
// placed, so TotalWon is the full amount to credit and Net is TotalWon-TotalBet.
//
// A dealer blackjack beats every hand except a player natural; 21 on a split
// hand is not one. In the
// American style that is caught by the peek before any player action. In the
// no-hole-card styles it can surface after doubles and splits: European
// forfeits everything, Macau forfeits only the original wager and refunds the
// rest.
func Settle(dealer Hand, hands []Hand, rules Rules) Settlement {
	dealerScore := dealer.Score()
	dealerBlackjack := dealer.IsBlackjack()
	dealerBusted := dealer.IsBusted()

	st := Settlement{
		Hands:           make([]HandResult, 0, len(hands)),
		DealerScore:     dealerScore,
		DealerBlackjack: dealerBlackjack,
		DealerBusted:    dealerBusted,
	}

	for i, h := range hands {
		r := HandResult{Hand: i, Score: h.Score(), Bet: h.Bet}

		switch {
		case h.Surrendered:
			r.Outcome = OutcomeSurrender
			r.Won = h.Bet / 2
			r.Lost = h.Bet - r.Won
		case h.IsBusted():
			r.Outcome = OutcomeBust
			r.Lost = h.Bet
		case h.IsNatural():
			if dealerBlackjack {
				r.Outcome = OutcomePush
				r.Won = h.Bet
			} else {
				r.Outcome = OutcomeBlackjack
				r.Won = h.Bet + rules.BlackjackPayout.Bonus(h.Bet)
			}
		case dealerBlackjack:
			r.Outcome = OutcomeLoss
			if rules.DealStyle == Macau {
				r.Won = h.Bet - originalWager(i, h)
			}
			r.Lost = h.Bet - r.Won
		case dealerBusted:
			r.Outcome = OutcomeWin
			r.Won = h.Bet * 2
		case r.Score > dealerScore:
			r.Outcome = OutcomeWin
			r.Won = h.Bet * 2
		case r.Score == dealerScore:
			r.Outcome = OutcomePush
			r.Won = h.Bet
		default:
			r.Outcome = OutcomeLoss
			r.Lost = h.Bet
		}

		st.Hands = append(st.Hands, r)
		st.TotalBet += r.Bet
		st.TotalWon += r.Won
		st.TotalLost += r.Lost
	}

	st.Net = st.TotalWon - st.TotalBet
	switch {
	case st.TotalWon > st.TotalBet:
		st.Outcome = RoundWon
	case st.TotalWon == st.TotalBet:
		st.Outcome = RoundPush
	default:
		st.Outcome = RoundLost
	}
	return st
}

// originalWager is the stake placed before any double or split. Split hands
// after the first carry only split money.
func originalWager(index int, h Hand) Money {
	if index > 0 {
		return 0
	}
	if h.Doubled {
		return h.Bet / 2
	}
	return h.Bet
}

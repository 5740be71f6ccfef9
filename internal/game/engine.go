package game

import (
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/gameid"
)

// Transition is the outcome of a successful Apply.
type Transition struct {
	// State is the new round state. The input state is never modified.
	State *RoundState
	// Debit is the amount the caller must take from the player's ledger for
	// this action: the opening bet, or the extra wager of a double or split.
	Debit Money
	// Settled is true when this action finished the round; State.Result then
	// holds the payout to credit.
	Settled bool
}

// Engine applies actions to round states. It holds no per-round data, so one
// engine can serve any number of sessions as long as each session's actions
// are serialized by the caller.
type Engine struct {
	rng    *rand.Rand
	ids    *gameid.Generator
	logger *log.Logger
}

// EngineOption configures an Engine during creation.
type EngineOption func(*Engine)

// WithLogger sets the engine's logger
func WithLogger(logger *log.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger.WithPrefix("engine")
	}
}

// WithIDGenerator sets the generator used for round IDs
func WithIDGenerator(ids *gameid.Generator) EngineOption {
	return func(e *Engine) {
		e.ids = ids
	}
}

// NewEngine creates an engine. The RNG is required so shuffles are explicit
// and reproducible in tests.
func NewEngine(rng *rand.Rand, opts ...EngineOption) *Engine {
	if rng == nil {
		panic("rng is required for engine creation")
	}
	e := &Engine{
		rng:    rng,
		ids:    gameid.NewGenerator(nil, nil),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply runs one action against a state. A nil state is a fresh session in
// the Betting phase. funds is the player's available balance, used to reject
// wagers the ledger could not cover. On error the returned Transition is
// empty and nothing has changed.
func (e *Engine) Apply(state *RoundState, action Action, funds Money) (Transition, error) {
	next := state.Clone()
	if next == nil {
		next = NewRoundState()
	}

	tr := Transition{}
	var err error
	switch a := action.(type) {
	case StartGame:
		err = e.start(next, a, funds, &tr)
	case Hit:
		err = e.hit(next)
	case Stand:
		err = e.stand(next)
	case DoubleDown:
		err = e.double(next, funds, &tr)
	case Split:
		err = e.split(next, funds, &tr)
	case Surrender:
		err = e.surrender(next)
	case NewGame:
		err = e.newGame(next)
	default:
		err = fmt.Errorf("%w: unsupported action %T", ErrInvalidState, action)
	}
	if err != nil {
		if errors.Is(err, ErrEmptyShoe) {
			e.logger.Error("Shoe ran out mid-round",
				"round", next.ID,
				"action", action.Kind(),
				"decks", next.Rules.Decks,
				"penetration", next.Rules.Penetration)
		} else {
			e.logger.Debug("Action rejected", "round", next.ID, "action", action.Kind(), "error", err)
		}
		return Transition{}, err
	}

	tr.State = next
	// Every action that can succeed from GameOver leaves it, so landing there
	// means this action finished the round.
	tr.Settled = next.Phase == GameOver
	return tr, nil
}

func (e *Engine) start(s *RoundState, a StartGame, funds Money, tr *Transition) error {
	if s.Phase != Betting && s.Phase != GameOver {
		return fmt.Errorf("%w: cannot start a round during %s", ErrInvalidState, s.Phase)
	}
	if err := a.Rules.Validate(); err != nil {
		return err
	}
	if err := a.Rules.ValidateBet(a.Bet); err != nil {
		return err
	}
	if funds < a.Bet {
		return fmt.Errorf("%w: bet %d exceeds balance %d", ErrInsufficientFunds, a.Bet, funds)
	}

	shoe := a.Shoe
	if shoe == nil {
		var decision ShoeDecision
		shoe, decision = ResolveShoe(s.Shoe, a.Rules, e.rng)
		e.logger.Debug("Resolved shoe", "decision", decision, "remaining", shoe.CardsRemaining())
	}

	*s = RoundState{
		ID:      e.ids.Generate(),
		Phase:   Dealing,
		Rules:   a.Rules,
		Hands:   []Hand{NewHand(a.Bet)},
		Current: 0,
		Shoe:    shoe,
	}
	tr.Debit = a.Bet

	player := &s.Hands[0]
	order := []*Hand{player, &s.Dealer, player}
	if s.Rules.DealStyle.HasHoleCard() {
		order = append(order, &s.Dealer)
	}
	for _, h := range order {
		if err := e.deal(s, h); err != nil {
			return err
		}
	}

	e.logger.Debug("Dealt round", "round", s.ID, "bet", a.Bet, "player", s.Hands[0], "upcard", s.Dealer.Cards[0])
	return e.resolveNaturals(s)
}

// resolveNaturals ends the round straight after the deal when a blackjack
// decides it, otherwise hands the turn to the player.
func (e *Engine) resolveNaturals(s *RoundState) error {
	player := &s.Hands[0]
	upcard := s.Dealer.Cards[0]

	if s.Rules.DealStyle.HasHoleCard() {
		if upcard.CanMakeBlackjack() && s.Dealer.IsBlackjack() {
			e.logger.Debug("Dealer blackjack", "round", s.ID)
			return e.finish(s)
		}
		if player.IsBlackjack() {
			return e.finish(s)
		}
	} else if player.IsBlackjack() {
		if upcard.CanMakeBlackjack() {
			if err := e.deal(s, &s.Dealer); err != nil {
				return err
			}
		}
		return e.finish(s)
	}

	s.Phase = PlayerTurn
	return nil
}

func (e *Engine) playerTurn(s *RoundState) (*Hand, error) {
	if s.Phase != PlayerTurn {
		return nil, fmt.Errorf("%w: no player action allowed during %s", ErrInvalidState, s.Phase)
	}
	h := s.ActiveHand()
	if h == nil || h.IsDone() {
		return nil, fmt.Errorf("%w: hand %d takes no further action", ErrInvalidState, s.Current)
	}
	return h, nil
}

func (e *Engine) hit(s *RoundState) error {
	h, err := e.playerTurn(s)
	if err != nil {
		return err
	}
	if err := e.deal(s, h); err != nil {
		return err
	}
	if h.IsBusted() {
		return e.advance(s)
	}
	return nil
}

func (e *Engine) stand(s *RoundState) error {
	h, err := e.playerTurn(s)
	if err != nil {
		return err
	}
	h.Stood = true
	return e.advance(s)
}

func (e *Engine) double(s *RoundState, funds Money, tr *Transition) error {
	h, err := e.playerTurn(s)
	if err != nil {
		return err
	}
	if !s.Capabilities().CanDouble {
		return fmt.Errorf("%w: cannot double %s", ErrIneligibleAction, h)
	}
	if funds < h.Bet {
		return fmt.Errorf("%w: doubling needs %d, balance is %d", ErrInsufficientFunds, h.Bet, funds)
	}
	tr.Debit = h.Bet
	h.DoubleBet()
	if err := e.deal(s, h); err != nil {
		return err
	}
	h.Stood = true
	return e.advance(s)
}

func (e *Engine) split(s *RoundState, funds Money, tr *Transition) error {
	h, err := e.playerTurn(s)
	if err != nil {
		return err
	}
	if !s.Capabilities().CanSplit {
		return fmt.Errorf("%w: cannot split %s with %d of %d hands in play", ErrIneligibleAction, h, len(s.Hands), s.Rules.MaxHands())
	}
	if funds < h.Bet {
		return fmt.Errorf("%w: splitting needs %d, balance is %d", ErrInsufficientFunds, h.Bet, funds)
	}
	tr.Debit = h.Bet

	card, err := h.SplitOff()
	if err != nil {
		return err
	}
	sibling := NewHand(h.Bet, card)
	sibling.Split = true

	i := s.Current
	s.Hands = slices.Insert(s.Hands, i+1, sibling)
	for _, idx := range []int{i, i + 1} {
		if err := e.deal(s, &s.Hands[idx]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) surrender(s *RoundState) error {
	h, err := e.playerTurn(s)
	if err != nil {
		return err
	}
	if !s.Capabilities().CanSurrender {
		return fmt.Errorf("%w: %s surrender not available", ErrIneligibleAction, s.Rules.Surrender)
	}
	h.Surrendered = true
	return e.advance(s)
}

func (e *Engine) newGame(s *RoundState) error {
	if s.Phase != Betting && s.Phase != GameOver {
		return fmt.Errorf("%w: round still in progress (%s)", ErrInvalidState, s.Phase)
	}
	*s = RoundState{Phase: Betting, Rules: s.Rules, Shoe: s.Shoe}
	return nil
}

// advance moves to the next hand, or to the dealer once every hand is played.
func (e *Engine) advance(s *RoundState) error {
	s.Current++
	if s.Current < len(s.Hands) {
		return nil
	}
	s.Phase = DealerTurn
	return e.playDealer(s)
}

func (e *Engine) playDealer(s *RoundState) error {
	live := slices.ContainsFunc(s.Hands, func(h Hand) bool {
		return !h.Surrendered && !h.IsBusted()
	})
	if !live {
		return e.finish(s)
	}

	if len(s.Dealer.Cards) < 2 {
		if err := e.deal(s, &s.Dealer); err != nil {
			return err
		}
	}
	for DealerShouldHit(&s.Dealer, s.Rules.DealerDrawTo) {
		if err := e.deal(s, &s.Dealer); err != nil {
			return err
		}
	}
	return e.finish(s)
}

// DealerShouldHit applies the dealer's drawing rule: below 17 always hits;
// soft 17 hits only when the table draws to a hard 17.
func DealerShouldHit(dealer *Hand, rule DealerDraw) bool {
	score := dealer.Score()
	if score < 17 {
		return true
	}
	return rule == DrawHard17 && score == 17 && dealer.IsSoft()
}

func (e *Engine) finish(s *RoundState) error {
	s.Phase = GameOver
	result := Settle(s.Dealer, s.Hands, s.Rules)
	s.Result = &result
	e.logger.Debug("Round settled",
		"round", s.ID,
		"dealer", s.Dealer,
		"outcome", result.Outcome,
		"won", result.TotalWon,
		"net", result.Net)
	return nil
}

func (e *Engine) deal(s *RoundState, h *Hand) error {
	if s.Shoe == nil {
		return fmt.Errorf("%w: no shoe in play", ErrEmptyShoe)
	}
	card, err := s.Shoe.Deal()
	if err != nil {
		return fmt.Errorf("round %s: %w", s.ID, err)
	}
	h.AddCard(card)
	return nil
}

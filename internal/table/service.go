// Package table serves the blackjack action API: it serializes each
// session's actions and keeps the round store and the money ledger in step
// with the engine.
package table

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/ledger"
	"github.com/lox/blackjack/internal/store"
)

// session is the per-session lock plus bookkeeping for idle reaping. The
// lock is a one-slot channel so waiting can be cancelled.
type session struct {
	lock     chan struct{}
	lastSeen time.Time
}

// Service runs actions for many sessions. Actions for one session run one
// at a time; different sessions proceed in parallel.
type Service struct {
	engine       *game.Engine
	ledger       ledger.Ledger
	store        store.Store
	tables       map[string]game.Rules
	defaultTable string
	clock        quartz.Clock
	logger       *log.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the service logger
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		s.logger = logger.WithPrefix("table")
	}
}

// WithClock sets the clock used for idle tracking
func WithClock(clock quartz.Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// NewService creates a service. tables maps table names to rules and must
// contain defaultTable.
func NewService(engine *game.Engine, l ledger.Ledger, st store.Store, tables map[string]game.Rules, defaultTable string, opts ...Option) (*Service, error) {
	if engine == nil || l == nil || st == nil {
		return nil, errors.New("engine, ledger and store are required")
	}
	if _, ok := tables[defaultTable]; !ok {
		return nil, fmt.Errorf("%w: default table %q is not configured", game.ErrConfigInvalid, defaultTable)
	}
	for name, rules := range tables {
		if err := rules.Validate(); err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
	}

	s := &Service{
		engine:       engine,
		ledger:       l,
		store:        st,
		tables:       tables,
		defaultTable: defaultTable,
		clock:        quartz.NewReal(),
		logger:       log.New(io.Discard),
		sessions:     make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Tables returns the configured table names in order
func (s *Service) Tables() []string {
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultTable returns the table start_game uses when none is named
func (s *Service) DefaultTable() string {
	return s.defaultTable
}

// Rules returns the rules of a named table
func (s *Service) Rules(table string) (game.Rules, bool) {
	if table == "" {
		table = s.defaultTable
	}
	r, ok := s.tables[table]
	return r, ok
}

// acquire takes the session lock, waiting until it is free or ctx is done.
// A session reaped while we waited is recreated.
func (s *Service) acquire(ctx context.Context, id string) (release func(), err error) {
	for {
		s.mu.Lock()
		sess, ok := s.sessions[id]
		if !ok {
			sess = &session{lock: make(chan struct{}, 1)}
			s.sessions[id] = sess
		}
		sess.lastSeen = s.clock.Now()
		s.mu.Unlock()

		select {
		case sess.lock <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		s.mu.Lock()
		current := s.sessions[id] == sess
		s.mu.Unlock()
		if current {
			return func() { <-sess.lock }, nil
		}
		<-sess.lock
	}
}

// Handle runs one request for a session.
func (s *Service) Handle(ctx context.Context, sessionID string, req Request) Response {
	logger := s.logger.With("session", sessionID)

	release, err := s.acquire(ctx, sessionID)
	if err != nil {
		return failure(err, 0)
	}
	defer release()

	action := normalizeAction(req.Action)
	var resp Response
	switch action {
	case ActionGetState:
		resp, err = s.getState(sessionID)
	case ActionGetStats:
		resp, err = s.getStats(sessionID)
	case ActionEndSession:
		resp, err = s.endSession(sessionID)
	default:
		resp, err = s.apply(sessionID, action, req, logger)
	}
	if err != nil {
		balance, _ := s.ledger.Balance(sessionID)
		if game.ErrorCode(err) == "internal" {
			logger.Error("Action failed", "action", action, "error", err)
		} else if !errors.Is(err, game.ErrEmptyShoe) {
			logger.Debug("Action rejected", "action", action, "error", err)
		}
		return failure(err, balance)
	}
	return resp
}

func (s *Service) load(sessionID string) (*game.RoundState, error) {
	state, err := s.store.LoadRound(sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return state, err
}

func (s *Service) respond(sessionID string, state *game.RoundState) (Response, error) {
	if state == nil {
		state = game.NewRoundState()
	}
	balance, err := s.ledger.Balance(sessionID)
	if err != nil {
		return Response{}, err
	}
	view := state.View()
	return Response{Success: true, GameState: &view, Balance: balance}, nil
}

func (s *Service) getState(sessionID string) (Response, error) {
	state, err := s.load(sessionID)
	if err != nil {
		return Response{}, err
	}
	return s.respond(sessionID, state)
}

func (s *Service) getStats(sessionID string) (Response, error) {
	stats, err := s.ledger.Stats(sessionID)
	if err != nil {
		return Response{}, err
	}
	return Response{Success: true, Balance: stats.Balance, Stats: &stats}, nil
}

// endSession drops the stored round and the session counters. Wagers on a
// live round would be forfeited, so a round in progress must finish first.
func (s *Service) endSession(sessionID string) (Response, error) {
	state, err := s.load(sessionID)
	if err != nil {
		return Response{}, err
	}
	if state != nil && state.Phase != game.Betting && state.Phase != game.GameOver {
		return Response{}, fmt.Errorf("%w: cannot end the session during %s", game.ErrInvalidState, state.Phase)
	}
	if err := s.store.ClearRound(sessionID); err != nil {
		return Response{}, err
	}
	if err := s.ledger.ResetSession(sessionID); err != nil {
		return Response{}, err
	}
	stats, err := s.ledger.Stats(sessionID)
	if err != nil {
		return Response{}, err
	}
	s.logger.Info("Session ended", "session", sessionID, "balance", stats.Balance, "lifetime_games", stats.Lifetime.GamesPlayed)
	return Response{Success: true, Balance: stats.Balance, Stats: &stats}, nil
}

// apply runs a state machine action: load, apply, debit, save, then credit
// and record the outcome when the round settles. Any failure after the
// debit undoes the earlier steps, the payout credit included.
func (s *Service) apply(sessionID, name string, req Request, logger *log.Logger) (Response, error) {
	kind, err := game.ParseActionKind(name)
	if err != nil {
		return Response{}, unknownAction(name)
	}

	var rules game.Rules
	if kind == game.ActionStartGame {
		var ok bool
		if rules, ok = s.Rules(req.Table); !ok {
			return Response{}, fmt.Errorf("%w: unknown table %q", game.ErrConfigInvalid, req.Table)
		}
	}
	action, err := game.ActionFor(kind, req.Bet, rules)
	if err != nil {
		return Response{}, err
	}

	prev, err := s.load(sessionID)
	if err != nil {
		return Response{}, err
	}
	balance, err := s.ledger.Balance(sessionID)
	if err != nil {
		return Response{}, err
	}

	tr, err := s.engine.Apply(prev, action, balance)
	if err != nil {
		return Response{}, err
	}

	if tr.Debit > 0 {
		if err := s.ledger.Debit(sessionID, tr.Debit); err != nil {
			return Response{}, err
		}
	}
	var credited game.Money
	undo := func(cause error) error {
		return s.rollback(sessionID, prev, tr.Debit, credited, cause, logger)
	}

	if err := s.store.SaveRound(sessionID, tr.State); err != nil {
		return Response{}, undo(fmt.Errorf("save round: %w", err))
	}

	if tr.Settled {
		result := tr.State.Result
		if result.TotalWon > 0 {
			if err := s.ledger.Credit(sessionID, result.TotalWon); err != nil {
				return Response{}, undo(fmt.Errorf("credit payout: %w", err))
			}
			credited = result.TotalWon
		}
		if err := s.ledger.RecordRoundOutcome(sessionID, ledger.OutcomeFromSettlement(tr.State.ID, *result)); err != nil {
			return Response{}, undo(fmt.Errorf("record outcome: %w", err))
		}
		logger.Info("Round settled",
			"round", tr.State.ID,
			"bet", result.TotalBet,
			"won", result.TotalWon,
			"net", result.Net,
			"outcome", result.Outcome)
	}

	logger.Debug("Applied action", "action", kind, "round", tr.State.ID, "state", tr.State.Phase, "debit", tr.Debit)
	return s.respond(sessionID, tr.State)
}

// rollback takes back any payout already credited, restores the previous
// round and refunds the debit.
func (s *Service) rollback(sessionID string, prev *game.RoundState, debit, credited game.Money, cause error, logger *log.Logger) error {
	if credited > 0 {
		if err := s.ledger.Debit(sessionID, credited); err != nil {
			logger.Error("Failed to reverse payout during rollback", "amount", credited, "error", err)
			return errors.Join(cause, err)
		}
	}
	var restore error
	if prev == nil {
		restore = s.store.ClearRound(sessionID)
	} else {
		restore = s.store.SaveRound(sessionID, prev)
	}
	if restore != nil {
		logger.Error("Failed to restore round during rollback", "error", restore)
	}
	if debit > 0 {
		if err := s.ledger.Credit(sessionID, debit); err != nil {
			logger.Error("Failed to refund debit during rollback", "amount", debit, "error", err)
			return errors.Join(cause, err)
		}
	}
	return cause
}

// Sessions returns the number of sessions seen and not yet reaped
func (s *Service) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// ReapIdle forgets sessions idle for longer than maxIdle. A finished or
// unstarted round is cleared from the store; a round in progress is kept so
// the player can resume it. Sessions with an action in flight are skipped.
func (s *Service) ReapIdle(maxIdle time.Duration) int {
	cutoff := s.clock.Now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	reaped := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.After(cutoff) {
			continue
		}
		select {
		case sess.lock <- struct{}{}:
		default:
			continue
		}
		state, err := s.load(id)
		if err == nil && (state == nil || state.Phase == game.Betting || state.Phase == game.GameOver) {
			if err := s.store.ClearRound(id); err != nil {
				s.logger.Warn("Failed to clear idle round", "session", id, "error", err)
			}
		}
		delete(s.sessions, id)
		<-sess.lock
		reaped++
	}
	if reaped > 0 {
		s.logger.Debug("Reaped idle sessions", "count", reaped)
	}
	return reaped
}

package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/lox/blackjack/internal/game"
)

// Memory keeps rounds in a map as encoded JSON, which gives the same copy
// semantics and shoe round-trip as the file store.
type Memory struct {
	mu     sync.RWMutex
	rounds map[string][]byte
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{rounds: make(map[string][]byte)}
}

func (m *Memory) LoadRound(session string) (*game.RoundState, error) {
	m.mu.RLock()
	data, ok := m.rounds[session]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, session)
	}

	var state game.RoundState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode round for %s: %w", session, err)
	}
	return &state, nil
}

func (m *Memory) SaveRound(session string, state *game.RoundState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode round for %s: %w", session, err)
	}
	m.mu.Lock()
	m.rounds[session] = data
	m.mu.Unlock()
	return nil
}

func (m *Memory) ClearRound(session string) error {
	m.mu.Lock()
	delete(m.rounds, session)
	m.mu.Unlock()
	return nil
}

// Sessions returns the IDs of every stored session
func (m *Memory) Sessions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.rounds))
	for id := range m.rounds {
		ids = append(ids, id)
	}
	return ids
}

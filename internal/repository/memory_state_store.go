package repository

import (
	"context"
	"sync"

	"RiskGate/internal/domain/models"
	domrepo "RiskGate/internal/domain/repository"
)

// MemoryStateStore keeps the previous risk state per symbol in process.
// Continuity is lost on restart; the classifier then falls back to its
// entry thresholds for one run.
type MemoryStateStore struct {
	mu     sync.RWMutex
	states map[string]models.RiskState
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]models.RiskState)}
}

func (s *MemoryStateStore) Load(ctx context.Context, symbol string) (*models.RiskState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[symbol]
	if !ok {
		return nil, nil
	}
	cp := st
	return &cp, nil
}

func (s *MemoryStateStore) Save(ctx context.Context, symbol string, state models.RiskState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[symbol] = state
	return nil
}

var _ domrepo.StateStore = (*MemoryStateStore)(nil)

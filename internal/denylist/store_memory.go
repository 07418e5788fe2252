package denylist

import (
	"context"
	"sync"

	"caplock/pkg/domain"
)

// InMemory is the mutex-guarded denylist used by tests and single-instance
// deployments.
type InMemory struct {
	mu      sync.RWMutex
	blocked map[domain.Address]struct{}
}

func NewInMemory() *InMemory {
	return &InMemory{blocked: make(map[domain.Address]struct{})}
}

func (s *InMemory) Set(_ context.Context, addr domain.Address, blocked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if blocked {
		s.blocked[addr] = struct{}{}
	} else {
		delete(s.blocked, addr)
	}
	return nil
}

func (s *InMemory) IsBlocked(_ context.Context, addr domain.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blocked[addr]
	return ok, nil
}

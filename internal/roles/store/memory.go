// Package store persists the role registry. Both implementations expose the
// same Execute callback so the service validates and mutates the registry
// under a single critical section.
package store

import (
	"context"
	"sync"

	"caplock/internal/roles/models"
	"caplock/pkg/platform/sentinel"
)

// InMemory holds the registry behind a mutex. Tests and single-instance
// deployments use this implementation.
type InMemory struct {
	mu          sync.RWMutex
	registry    models.Registry
	initialized bool
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

// Init seeds the registry exactly once.
func (s *InMemory) Init(_ context.Context, registry models.Registry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return sentinel.ErrInvalidState
	}
	s.registry = registry
	s.initialized = true
	return nil
}

// Get returns a copy of the current registry.
func (s *InMemory) Get(_ context.Context) (models.Registry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return models.Registry{}, sentinel.ErrNotFound
	}
	return s.registry, nil
}

// Execute runs validate and then mutate while holding the write lock, so a
// role check and the assignment it guards cannot interleave with another
// mutation. Validate failure leaves the registry untouched.
func (s *InMemory) Execute(_ context.Context, validate func(*models.Registry) error, mutate func(*models.Registry)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return sentinel.ErrNotFound
	}
	working := s.registry
	if err := validate(&working); err != nil {
		return err
	}
	mutate(&working)
	s.registry = working
	return nil
}

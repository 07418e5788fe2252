// Package store persists balances, allowances, and the supply counters.
//
// Every mutating method is atomic: the arithmetic precondition and the write
// it guards run under one critical section (mutex here, transaction in the
// Postgres implementation), so a failed precondition leaves no partial state.
package store

import (
	"context"
	"sync"

	"github.com/holiman/uint256"

	"caplock/internal/ledger/models"
	"caplock/pkg/domain"
	"caplock/pkg/platform/sentinel"
)

// InMemory is the mutex-guarded ledger used by tests and single-instance
// deployments. Amounts are copied on the way in and out because uint256.Int
// is mutable.
type InMemory struct {
	mu          sync.RWMutex
	balances    map[domain.Address]*uint256.Int
	allowances  map[models.AllowanceKey]*uint256.Int
	totalSupply *uint256.Int
	cap         *uint256.Int
	initialized bool
}

func NewInMemory() *InMemory {
	return &InMemory{
		balances:   make(map[domain.Address]*uint256.Int),
		allowances: make(map[models.AllowanceKey]*uint256.Int),
	}
}

// Init fixes the cap and zeroes the supply, exactly once.
func (s *InMemory) Init(_ context.Context, cap *uint256.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return sentinel.ErrInvalidState
	}
	s.cap = cap.Clone()
	s.totalSupply = uint256.NewInt(0)
	s.initialized = true
	return nil
}

// Mint credits to and raises totalSupply. This is the single mutation that
// can raise supply, so the cap check lives here, under the write lock.
func (s *InMemory) Mint(_ context.Context, to domain.Address, amount *uint256.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return sentinel.ErrNotFound
	}

	newSupply, overflow := new(uint256.Int).AddOverflow(s.totalSupply, amount)
	if overflow || newSupply.Gt(s.cap) {
		return ErrCapExceeded
	}
	s.totalSupply = newSupply
	s.credit(to, amount)
	return nil
}

// Transfer moves amount from one account to another.
func (s *InMemory) Transfer(_ context.Context, from, to domain.Address, amount *uint256.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transferLocked(from, to, amount)
}

// SetAllowance overwrites the (owner, spender) grant. Absolute set, never
// additive.
func (s *InMemory) SetAllowance(_ context.Context, owner, spender domain.Address, amount *uint256.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allowances[models.AllowanceKey{Owner: owner, Spender: spender}] = amount.Clone()
	return nil
}

// TransferFrom debits the (from, spender) allowance and then performs the
// transfer. Both debits happen under one lock: either both apply or neither.
func (s *InMemory) TransferFrom(_ context.Context, spender, from, to domain.Address, amount *uint256.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.AllowanceKey{Owner: from, Spender: spender}
	allowance, ok := s.allowances[key]
	if !ok || allowance.Lt(amount) {
		return ErrInsufficientAllowance
	}
	if err := s.transferLocked(from, to, amount); err != nil {
		return err
	}
	s.allowances[key] = new(uint256.Int).Sub(allowance, amount)
	return nil
}

// Balance returns the account's balance; unknown accounts hold zero.
func (s *InMemory) Balance(_ context.Context, addr domain.Address) (*uint256.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if balance, ok := s.balances[addr]; ok {
		return balance.Clone(), nil
	}
	return uint256.NewInt(0), nil
}

// Allowance returns the remaining (owner, spender) grant.
func (s *InMemory) Allowance(_ context.Context, owner, spender domain.Address) (*uint256.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if allowance, ok := s.allowances[models.AllowanceKey{Owner: owner, Spender: spender}]; ok {
		return allowance.Clone(), nil
	}
	return uint256.NewInt(0), nil
}

// Supply returns totalSupply and the cap.
func (s *InMemory) Supply(_ context.Context) (models.Supply, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return models.Supply{}, sentinel.ErrNotFound
	}
	return models.Supply{Total: s.totalSupply.Clone(), Cap: s.cap.Clone()}, nil
}

func (s *InMemory) transferLocked(from, to domain.Address, amount *uint256.Int) error {
	balance, ok := s.balances[from]
	if !ok || balance.Lt(amount) {
		return ErrInsufficientBalance
	}
	s.balances[from] = new(uint256.Int).Sub(balance, amount)
	s.credit(to, amount)
	return nil
}

func (s *InMemory) credit(to domain.Address, amount *uint256.Int) {
	if existing, ok := s.balances[to]; ok {
		s.balances[to] = new(uint256.Int).Add(existing, amount)
		return
	}
	s.balances[to] = amount.Clone()
}

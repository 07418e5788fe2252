// Package service implements the ledger core: cap-aware mint, transfer,
// approve, and delegated transfer. Every entry point resolves its caller
// through the roles service and checks both endpoints against the denylist
// before the store mutation runs.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/holiman/uint256"

	"caplock/internal/audit"
	ledgermetrics "caplock/internal/ledger/metrics"
	"caplock/internal/ledger/models"
	"caplock/internal/ledger/store"
	rolesmodels "caplock/internal/roles/models"
	dErrors "caplock/pkg/domain-errors"
	"caplock/pkg/domain"
)

// Store is the persistence contract. Implementations keep each mutation's
// arithmetic precondition and write atomic.
type Store interface {
	Init(ctx context.Context, cap *uint256.Int) error
	Mint(ctx context.Context, to domain.Address, amount *uint256.Int) error
	Transfer(ctx context.Context, from, to domain.Address, amount *uint256.Int) error
	SetAllowance(ctx context.Context, owner, spender domain.Address, amount *uint256.Int) error
	TransferFrom(ctx context.Context, spender, from, to domain.Address, amount *uint256.Int) error
	Balance(ctx context.Context, addr domain.Address) (*uint256.Int, error)
	Allowance(ctx context.Context, owner, spender domain.Address) (*uint256.Int, error)
	Supply(ctx context.Context) (models.Supply, error)
}

// Authorizer is the slice of the roles service the ledger needs: the role
// predicate and the denylist lookup.
type Authorizer interface {
	RequireRole(ctx context.Context, caller domain.Address, role rolesmodels.Role) error
	IsBlocked(ctx context.Context, addr domain.Address) (bool, error)
}

// Service is the ledger core.
type Service struct {
	store   Store
	authz   Authorizer
	logger  *slog.Logger
	audit   audit.Publisher
	metrics *ledgermetrics.Metrics
}

type serviceConfig struct {
	logger  *slog.Logger
	audit   audit.Publisher
	metrics *ledgermetrics.Metrics
}

// Option configures optional collaborators.
type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) { c.logger = logger }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(c *serviceConfig) { c.audit = publisher }
}

func WithMetrics(m *ledgermetrics.Metrics) Option {
	return func(c *serviceConfig) { c.metrics = m }
}

func New(st Store, authz Authorizer, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Service{
		store:   st,
		authz:   authz,
		logger:  cfg.logger,
		audit:   cfg.audit,
		metrics: cfg.metrics,
	}
}

// Init fixes the supply cap exactly once.
func (s *Service) Init(ctx context.Context, cap *uint256.Int) error {
	if cap == nil || cap.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "cap must be positive")
	}
	if err := s.store.Init(ctx, cap); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidState, "ledger already initialized")
	}
	return nil
}

// Mint credits to and raises totalSupply. This is the only operation that can
// raise supply, so it carries the strictest precondition set in the system:
// minting-admin role, real destination, positive amount, clean denylist on
// both endpoints, and the cap.
func (s *Service) Mint(ctx context.Context, caller, to domain.Address, amount *uint256.Int) error {
	start := time.Now()

	if err := s.authz.RequireRole(ctx, caller, rolesmodels.RoleMintingAdmin); err != nil {
		return err
	}
	if to.IsZero() {
		return dErrors.New(dErrors.CodeInvalidAddress, "cannot mint to the null address")
	}
	if amount == nil || amount.IsZero() {
		return dErrors.New(dErrors.CodeZeroAmount, "mint amount must be positive")
	}
	if err := s.requireClean(ctx, caller, to); err != nil {
		return err
	}

	if err := s.store.Mint(ctx, to, amount); err != nil {
		if errors.Is(err, store.ErrCapExceeded) {
			return dErrors.New(dErrors.CodeCapExceeded, "mint would exceed the supply cap")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint")
	}

	s.metrics.RecordMint(start)
	s.publishSupply(ctx)
	s.emit(ctx, audit.Event{
		Actor:   caller.String(),
		Action:  audit.ActionMint,
		Subject: to.String(),
		Amount:  amount.Dec(),
	})
	s.logger.InfoContext(ctx, "minted",
		"caller", caller.String(),
		"to", to.String(),
		"amount", amount.Dec(),
	)
	return nil
}

// Transfer moves amount from the caller to another account.
func (s *Service) Transfer(ctx context.Context, caller, to domain.Address, amount *uint256.Int) error {
	if to.IsZero() {
		return dErrors.New(dErrors.CodeInvalidAddress, "cannot transfer to the null address")
	}
	if amount == nil {
		return dErrors.New(dErrors.CodeBadRequest, "amount is required")
	}
	if err := s.requireClean(ctx, caller, to); err != nil {
		return err
	}

	if err := s.store.Transfer(ctx, caller, to, amount); err != nil {
		if errors.Is(err, store.ErrInsufficientBalance) {
			return dErrors.New(dErrors.CodeInsufficientBalance, "balance lower than transfer amount")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to transfer")
	}

	s.metrics.RecordTransfer()
	return nil
}

// Approve overwrites the caller's allowance for spender. Absolute set: a
// second approve replaces, never accumulates.
func (s *Service) Approve(ctx context.Context, caller, spender domain.Address, amount *uint256.Int) error {
	if spender.IsZero() {
		return dErrors.New(dErrors.CodeInvalidAddress, "cannot approve the null address")
	}
	if amount == nil {
		return dErrors.New(dErrors.CodeBadRequest, "amount is required")
	}
	if err := s.requireClean(ctx, caller, spender); err != nil {
		return err
	}

	if err := s.store.SetAllowance(ctx, caller, spender, amount); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to set allowance")
	}
	return nil
}

// TransferFrom spends the caller's allowance on from's balance. The allowance
// debit and the balance move are one atomic store operation: partial debits
// never occur.
func (s *Service) TransferFrom(ctx context.Context, caller, from, to domain.Address, amount *uint256.Int) error {
	if from.IsZero() || to.IsZero() {
		return dErrors.New(dErrors.CodeInvalidAddress, "transfer endpoints must not be the null address")
	}
	if amount == nil {
		return dErrors.New(dErrors.CodeBadRequest, "amount is required")
	}
	if err := s.requireClean(ctx, from, to); err != nil {
		return err
	}

	if err := s.store.TransferFrom(ctx, caller, from, to, amount); err != nil {
		switch {
		case errors.Is(err, store.ErrInsufficientAllowance):
			return dErrors.New(dErrors.CodeInsufficientAllowance, "allowance lower than transfer amount")
		case errors.Is(err, store.ErrInsufficientBalance):
			return dErrors.New(dErrors.CodeInsufficientBalance, "balance lower than transfer amount")
		default:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to transfer")
		}
	}

	s.metrics.RecordTransfer()
	return nil
}

// BalanceOf returns addr's balance.
func (s *Service) BalanceOf(ctx context.Context, addr domain.Address) (*uint256.Int, error) {
	balance, err := s.store.Balance(ctx, addr)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read balance")
	}
	return balance, nil
}

// AllowanceOf returns the remaining (owner, spender) grant.
func (s *Service) AllowanceOf(ctx context.Context, owner, spender domain.Address) (*uint256.Int, error) {
	allowance, err := s.store.Allowance(ctx, owner, spender)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read allowance")
	}
	return allowance, nil
}

// Supply returns totalSupply and the cap.
func (s *Service) Supply(ctx context.Context) (models.Supply, error) {
	supply, err := s.store.Supply(ctx)
	if err != nil {
		return models.Supply{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read supply")
	}
	return supply, nil
}

// requireClean fails with CodeBlacklisted if either transfer endpoint is on
// the denylist.
func (s *Service) requireClean(ctx context.Context, from, to domain.Address) error {
	for _, addr := range []domain.Address{from, to} {
		blocked, err := s.authz.IsBlocked(ctx, addr)
		if err != nil {
			return err
		}
		if blocked {
			return dErrors.Newf(dErrors.CodeBlacklisted, "address %s is blacklisted", addr)
		}
	}
	return nil
}

func (s *Service) publishSupply(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	if supply, err := s.store.Supply(ctx); err == nil {
		s.metrics.SetTotalSupply(supply.Total)
	}
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}

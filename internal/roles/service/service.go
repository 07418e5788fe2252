// Package service orchestrates the role registry and the denylist. Every
// privileged entry point in the system resolves its caller through Authorize
// here; no other package compares a caller against a stored role address.
package service

import (
	"context"
	"errors"
	"log/slog"

	"caplock/internal/audit"
	"caplock/internal/denylist"
	"caplock/internal/roles/models"
	dErrors "caplock/pkg/domain-errors"
	"caplock/pkg/domain"
	"caplock/pkg/platform/sentinel"
)

// Store persists the registry. Execute must run validate and mutate under one
// critical section.
type Store interface {
	Init(ctx context.Context, registry models.Registry) error
	Get(ctx context.Context) (models.Registry, error)
	Execute(ctx context.Context, validate func(*models.Registry) error, mutate func(*models.Registry)) error
}

// Service is the single authorization surface for roles and the denylist.
type Service struct {
	store    Store
	denylist denylist.Store
	logger   *slog.Logger
	audit    audit.Publisher
}

type serviceConfig struct {
	logger *slog.Logger
	audit  audit.Publisher
}

// Option configures optional collaborators.
type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) { c.logger = logger }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(c *serviceConfig) { c.audit = publisher }
}

func New(store Store, deny denylist.Store, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Service{
		store:    store,
		denylist: deny,
		logger:   cfg.logger,
		audit:    cfg.audit,
	}
}

// Init seeds the three role holders exactly once. Re-initialization fails
// with CodeInvalidState.
func (s *Service) Init(ctx context.Context, registry models.Registry) error {
	if !registry.Valid() {
		return dErrors.New(dErrors.CodeInvalidAddress, "role holders must not be the null address")
	}
	if err := s.store.Init(ctx, registry); err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			return dErrors.New(dErrors.CodeInvalidState, "role registry already initialized")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to initialize role registry")
	}
	return nil
}

// Authorize reports whether caller currently holds role. No side effects.
func (s *Service) Authorize(ctx context.Context, caller domain.Address, role models.Role) (bool, error) {
	registry, err := s.store.Get(ctx)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load role registry")
	}
	holder := registry.Holder(role)
	return !holder.IsZero() && holder == caller, nil
}

// RequireRole is Authorize with the failure already shaped as the
// CodeUnauthorized error every gated entry point surfaces.
func (s *Service) RequireRole(ctx context.Context, caller domain.Address, role models.Role) error {
	ok, err := s.Authorize(ctx, caller, role)
	if err != nil {
		return err
	}
	if !ok {
		return dErrors.Newf(dErrors.CodeUnauthorized, "caller does not hold role %s", role)
	}
	return nil
}

// Registry returns the current role holders.
func (s *Service) Registry(ctx context.Context) (models.Registry, error) {
	registry, err := s.store.Get(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Registry{}, dErrors.New(dErrors.CodeInvalidState, "role registry not initialized")
		}
		return models.Registry{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load role registry")
	}
	return registry, nil
}

// SetPrimaryAdmin replaces the primary administrator. Only the governance
// authority may call it, which in production means the call already cleared
// the timelock.
func (s *Service) SetPrimaryAdmin(ctx context.Context, caller, newAddr domain.Address) error {
	return s.setRole(ctx, caller, models.RoleGovernanceAuthority, newAddr,
		audit.ActionPrimaryAdminChanged,
		func(r *models.Registry) { r.PrimaryAdmin = newAddr },
	)
}

// SetMintingAdmin replaces the minting administrator. Governance-gated like
// SetPrimaryAdmin.
func (s *Service) SetMintingAdmin(ctx context.Context, caller, newAddr domain.Address) error {
	return s.setRole(ctx, caller, models.RoleGovernanceAuthority, newAddr,
		audit.ActionMintingAdminChanged,
		func(r *models.Registry) { r.MintingAdmin = newAddr },
	)
}

// SetGovernanceAuthority designates who controls the delay gate. This is the
// one role transfer gated by the primary admin directly rather than by the
// timelock: it is the bootstrap escape hatch that lets the primary admin
// repoint governance without going through the authority being replaced.
func (s *Service) SetGovernanceAuthority(ctx context.Context, caller, newAddr domain.Address) error {
	return s.setRole(ctx, caller, models.RolePrimaryAdmin, newAddr,
		audit.ActionGovernanceAuthorityChanged,
		func(r *models.Registry) { r.GovernanceAuthority = newAddr },
	)
}

func (s *Service) setRole(
	ctx context.Context,
	caller domain.Address,
	requiredRole models.Role,
	newAddr domain.Address,
	action string,
	assign func(*models.Registry),
) error {
	if newAddr.IsZero() {
		return dErrors.New(dErrors.CodeInvalidAddress, "new role holder must not be the null address")
	}
	err := s.store.Execute(ctx,
		func(r *models.Registry) error {
			holder := r.Holder(requiredRole)
			if holder.IsZero() || holder != caller {
				return dErrors.Newf(dErrors.CodeUnauthorized, "caller does not hold role %s", requiredRole)
			}
			return nil
		},
		assign,
	)
	if err != nil {
		var de *dErrors.Error
		if errors.As(err, &de) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update role registry")
	}

	s.emit(ctx, audit.Event{
		Actor:   caller.String(),
		Action:  action,
		Subject: newAddr.String(),
	})
	s.logger.InfoContext(ctx, "role changed",
		"action", action,
		"caller", caller.String(),
		"new_holder", newAddr.String(),
	)
	return nil
}

// Blacklist sets or clears addr's blocked flag. Primary-admin gated.
func (s *Service) Blacklist(ctx context.Context, caller, addr domain.Address, blocked bool) error {
	if addr.IsZero() {
		return dErrors.New(dErrors.CodeInvalidAddress, "cannot blacklist the null address")
	}
	if err := s.RequireRole(ctx, caller, models.RolePrimaryAdmin); err != nil {
		return err
	}
	if err := s.denylist.Set(ctx, addr, blocked); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update denylist")
	}

	action := audit.ActionDenylistSet
	if !blocked {
		action = audit.ActionDenylistCleared
	}
	s.emit(ctx, audit.Event{
		Actor:   caller.String(),
		Action:  action,
		Subject: addr.String(),
	})
	return nil
}

// IsBlocked is a pure lookup against the denylist.
func (s *Service) IsBlocked(ctx context.Context, addr domain.Address) (bool, error) {
	blocked, err := s.denylist.IsBlocked(ctx, addr)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read denylist")
	}
	return blocked, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}

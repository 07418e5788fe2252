// Package governance implements the gate through which every control change
// passes, and the timelock that delays those changes.
package governance

import (
	"context"
	"log/slog"
	"sync"

	"caplock/internal/audit"
	"caplock/internal/governance/models"
	rolesmodels "caplock/internal/roles/models"
	dErrors "caplock/pkg/domain-errors"
	"caplock/pkg/domain"
)

// RoleAdmin is the slice of the roles service the gate drives. The gate calls
// the setters with the governance authority's own address as caller, which is
// the proof the roles service trusts.
type RoleAdmin interface {
	SetPrimaryAdmin(ctx context.Context, caller, newAddr domain.Address) error
	SetMintingAdmin(ctx context.Context, caller, newAddr domain.Address) error
	Registry(ctx context.Context) (rolesmodels.Registry, error)
}

// Gate is the single dispatch point for governance actions. It holds the
// replaceable-logic pointer; the deployment mechanism that actually swaps
// logic consults AuthorizeControlChange before repointing.
type Gate struct {
	roles  RoleAdmin
	logger *slog.Logger
	audit  audit.Publisher

	mu           sync.RWMutex
	logicPointer domain.Address
}

type gateConfig struct {
	logger *slog.Logger
	audit  audit.Publisher
}

// GateOption configures optional collaborators.
type GateOption func(*gateConfig)

func WithGateLogger(logger *slog.Logger) GateOption {
	return func(c *gateConfig) { c.logger = logger }
}

func WithGateAuditPublisher(publisher audit.Publisher) GateOption {
	return func(c *gateConfig) { c.audit = publisher }
}

func NewGate(roles RoleAdmin, initialLogic domain.Address, opts ...GateOption) *Gate {
	cfg := &gateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Gate{
		roles:        roles,
		logger:       cfg.logger,
		audit:        cfg.audit,
		logicPointer: initialLogic,
	}
}

// AuthorizeControlChange is the predicate that must hold before the
// replaceable-logic pointer may be repointed or a delay-gated role
// reassigned. It has no side effect.
func (g *Gate) AuthorizeControlChange(ctx context.Context, caller domain.Address) error {
	registry, err := g.roles.Registry(ctx)
	if err != nil {
		return err
	}
	if registry.GovernanceAuthority.IsZero() || caller != registry.GovernanceAuthority {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not the governance authority")
	}
	return nil
}

// Apply runs one governance action. The caller must be the governance
// authority; arriving with that address is proof the delay and
// proposer/executor checks already passed inside the timelock.
func (g *Gate) Apply(ctx context.Context, caller domain.Address, action models.Action) error {
	if err := g.AuthorizeControlChange(ctx, caller); err != nil {
		return err
	}

	switch action.Kind {
	case models.KindSetPrimaryAdmin:
		return g.roles.SetPrimaryAdmin(ctx, caller, action.Target)
	case models.KindSetMintingAdmin:
		return g.roles.SetMintingAdmin(ctx, caller, action.Target)
	case models.KindSetLogicPointer:
		return g.setLogicPointer(ctx, caller, action.Target)
	default:
		return dErrors.Newf(dErrors.CodeBadRequest, "unknown governance action %q", action.Kind)
	}
}

// LogicPointer returns the current replaceable-logic target.
func (g *Gate) LogicPointer() domain.Address {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.logicPointer
}

func (g *Gate) setLogicPointer(ctx context.Context, caller, target domain.Address) error {
	if target.IsZero() {
		return dErrors.New(dErrors.CodeInvalidAddress, "logic pointer must not be the null address")
	}
	g.mu.Lock()
	g.logicPointer = target
	g.mu.Unlock()

	if g.audit != nil {
		if err := g.audit.Emit(ctx, audit.Event{
			Actor:   caller.String(),
			Action:  audit.ActionLogicPointerChanged,
			Subject: target.String(),
		}); err != nil {
			g.logger.WarnContext(ctx, "audit emit failed", "action", audit.ActionLogicPointerChanged, "error", err)
		}
	}
	g.logger.InfoContext(ctx, "logic pointer changed", "target", target.String())
	return nil
}

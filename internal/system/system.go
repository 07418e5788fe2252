// Package system assembles the ledger, the role registry, the denylist, and
// the governance gate into one explicitly owned aggregate. Tests construct
// isolated instances; main constructs exactly one.
package system

import (
	"context"
	"log/slog"
	"time"

	"github.com/holiman/uint256"

	"caplock/internal/audit"
	"caplock/internal/denylist"
	"caplock/internal/governance"
	govmetrics "caplock/internal/governance/metrics"
	"caplock/internal/governance/timelock"
	ledgermetrics "caplock/internal/ledger/metrics"
	ledgermodels "caplock/internal/ledger/models"
	ledgerservice "caplock/internal/ledger/service"
	ledgerstore "caplock/internal/ledger/store"
	rolesmodels "caplock/internal/roles/models"
	rolesservice "caplock/internal/roles/service"
	rolesstore "caplock/internal/roles/store"
	"caplock/pkg/domain"
)

// Config captures everything one instance needs. Zero-value store fields fall
// back to in-memory implementations, which is what tests use.
type Config struct {
	PrimaryAdmin  domain.Address
	MintingAdmin  domain.Address
	AuthorityAddr domain.Address
	InitialLogic  domain.Address
	Cap           *uint256.Int
	Delay         time.Duration

	RolesStore    rolesservice.Store
	LedgerStore   ledgerservice.Store
	Denylist      denylist.Store
	Audit         audit.Publisher
	Logger        *slog.Logger
	LedgerMetrics *ledgermetrics.Metrics
	GovMetrics    *govmetrics.Metrics
}

// System is the single shared-state instance: every entry point reaches the
// ledger and registry through it.
type System struct {
	Roles    *rolesservice.Service
	Ledger   *ledgerservice.Service
	Gate     *governance.Gate
	Timelock *timelock.Timelock

	cap *uint256.Int
	cfg Config
}

// New wires the services. Call Initialize before serving traffic.
func New(cfg Config) *System {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.RolesStore == nil {
		cfg.RolesStore = rolesstore.NewInMemory()
	}
	if cfg.LedgerStore == nil {
		cfg.LedgerStore = ledgerstore.NewInMemory()
	}
	if cfg.Denylist == nil {
		cfg.Denylist = denylist.NewInMemory()
	}
	if cfg.Cap == nil {
		cfg.Cap = ledgermodels.DefaultCap
	}

	roles := rolesservice.New(cfg.RolesStore, cfg.Denylist,
		rolesservice.WithLogger(cfg.Logger),
		rolesservice.WithAuditPublisher(cfg.Audit),
	)
	ledger := ledgerservice.New(cfg.LedgerStore, roles,
		ledgerservice.WithLogger(cfg.Logger),
		ledgerservice.WithAuditPublisher(cfg.Audit),
		ledgerservice.WithMetrics(cfg.LedgerMetrics),
	)
	gate := governance.NewGate(roles, cfg.InitialLogic,
		governance.WithGateLogger(cfg.Logger),
		governance.WithGateAuditPublisher(cfg.Audit),
	)
	// Proposer and executor sets both start as {primaryAdmin}.
	lock := timelock.New(
		cfg.AuthorityAddr,
		cfg.Delay,
		[]domain.Address{cfg.PrimaryAdmin},
		[]domain.Address{cfg.PrimaryAdmin},
		gate,
		timelock.WithLogger(cfg.Logger),
		timelock.WithAuditPublisher(cfg.Audit),
		timelock.WithMetrics(cfg.GovMetrics),
	)

	return &System{
		Roles:    roles,
		Ledger:   ledger,
		Gate:     gate,
		Timelock: lock,
		cap:      cfg.Cap,
		cfg:      cfg,
	}
}

// Initialize seeds the cap and the three role holders. Called exactly once
// per deployed instance; the stores reject re-initialization.
func (s *System) Initialize(ctx context.Context) error {
	if err := s.Ledger.Init(ctx, s.cap); err != nil {
		return err
	}
	return s.Roles.Init(ctx, rolesmodels.Registry{
		PrimaryAdmin:        s.cfg.PrimaryAdmin,
		MintingAdmin:        s.cfg.MintingAdmin,
		GovernanceAuthority: s.cfg.AuthorityAddr,
	})
}

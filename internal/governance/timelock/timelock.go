// Package timelock implements the delayed-execution authority: a minimum
// delay between proposing a control change and running it. The ledger core
// never inspects the queue; it only trusts calls arriving from the timelock's
// own address.
package timelock

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"caplock/internal/audit"
	govmetrics "caplock/internal/governance/metrics"
	"caplock/internal/governance/models"
	dErrors "caplock/pkg/domain-errors"
	"caplock/pkg/domain"
	"caplock/pkg/requestcontext"
)

// DefaultDelay is the minimum wait between Schedule and Execute.
const DefaultDelay = 600 * time.Second

// Dispatcher receives the action once the delay has elapsed. In production
// this is the governance gate.
type Dispatcher interface {
	Apply(ctx context.Context, caller domain.Address, action models.Action) error
}

// Timelock owns the operation queue. It reads time through
// requestcontext.Now so tests drive the clock instead of sleeping.
type Timelock struct {
	addr       domain.Address
	delay      time.Duration
	dispatcher Dispatcher
	logger     *slog.Logger
	audit      audit.Publisher
	metrics    *govmetrics.Metrics

	mu        sync.Mutex
	proposers map[domain.Address]struct{}
	executors map[domain.Address]struct{}
	ops       map[models.OperationID]*models.Operation
}

type config struct {
	logger  *slog.Logger
	audit   audit.Publisher
	metrics *govmetrics.Metrics
}

// Option configures optional collaborators.
type Option func(*config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(c *config) { c.audit = publisher }
}

func WithMetrics(m *govmetrics.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// New creates a timelock with its own principal address, a minimum delay, and
// the initial proposer and executor sets.
func New(addr domain.Address, delay time.Duration, proposers, executors []domain.Address, dispatcher Dispatcher, opts ...Option) *Timelock {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	t := &Timelock{
		addr:       addr,
		delay:      delay,
		dispatcher: dispatcher,
		logger:     cfg.logger,
		audit:      cfg.audit,
		metrics:    cfg.metrics,
		proposers:  make(map[domain.Address]struct{}, len(proposers)),
		executors:  make(map[domain.Address]struct{}, len(executors)),
		ops:        make(map[models.OperationID]*models.Operation),
	}
	for _, p := range proposers {
		t.proposers[p] = struct{}{}
	}
	for _, e := range executors {
		t.executors[e] = struct{}{}
	}
	return t
}

// Address returns the timelock's own principal address. The role registry
// stores it as the governance authority.
func (t *Timelock) Address() domain.Address {
	return t.addr
}

// Delay returns the minimum wait between scheduling and execution.
func (t *Timelock) Delay() time.Duration {
	return t.delay
}

// Schedule records an action for delayed execution and returns its operation
// ID. A payload already in the queue, in any state, cannot be scheduled
// again: executed and cancelled operations keep their terminal record so
// replays stay detectable.
func (t *Timelock) Schedule(ctx context.Context, caller domain.Address, action models.Action) (models.OperationID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.proposers[caller]; !ok {
		return models.OperationID{}, dErrors.New(dErrors.CodeUnauthorized, "caller is not a proposer")
	}
	if err := action.Validate(); err != nil {
		return models.OperationID{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid governance action")
	}

	id := models.ComputeOperationID(action)
	if _, exists := t.ops[id]; exists {
		return models.OperationID{}, dErrors.New(dErrors.CodeConflict, "operation already scheduled")
	}

	now := requestcontext.Now(ctx)
	op := &models.Operation{
		ID:          id,
		Action:      action,
		ScheduledAt: now,
		ReadyAt:     now.Add(t.delay),
		State:       models.StateProposed,
	}
	t.ops[id] = op

	t.metrics.RecordScheduled()
	t.emit(ctx, audit.Event{
		Actor:   caller.String(),
		Action:  audit.ActionGovernanceScheduled,
		Subject: id.String(),
		Detail:  string(op.Action.Kind),
	})
	t.logger.InfoContext(ctx, "governance operation scheduled",
		"operation", id.String(),
		"kind", op.Action.Kind,
		"ready_at", op.ReadyAt,
	)
	return id, nil
}

// Execute runs a scheduled operation exactly once. It fails before ReadyAt,
// and fails on any replay or cancelled operation. The wrapped action is
// dispatched with the timelock's own address as caller, which is what the
// gate accepts as proof of delay-gated authorization.
func (t *Timelock) Execute(ctx context.Context, caller domain.Address, id models.OperationID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.executors[caller]; !ok {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not an executor")
	}
	op, ok := t.ops[id]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "unknown operation")
	}
	switch op.State {
	case models.StateExecuted:
		return dErrors.New(dErrors.CodeInvalidState, "operation already executed")
	case models.StateCancelled:
		return dErrors.New(dErrors.CodeInvalidState, "operation was cancelled")
	}
	now := requestcontext.Now(ctx)
	if !op.ReadyBy(now) {
		return dErrors.New(dErrors.CodeInvalidState, "operation is not ready")
	}

	if err := t.dispatcher.Apply(ctx, t.addr, op.Action); err != nil {
		// The action did not run; the operation stays executable.
		return err
	}
	op.State = models.StateExecuted

	t.metrics.RecordExecuted()
	t.emit(ctx, audit.Event{
		Actor:   caller.String(),
		Action:  audit.ActionGovernanceExecuted,
		Subject: id.String(),
		Detail:  string(op.Action.Kind),
	})
	t.logger.InfoContext(ctx, "governance operation executed",
		"operation", id.String(),
		"kind", op.Action.Kind,
	)
	return nil
}

// Cancel removes a pending operation before execution. Terminal states stay
// terminal.
func (t *Timelock) Cancel(ctx context.Context, caller domain.Address, id models.OperationID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.proposers[caller]; !ok {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not a proposer")
	}
	op, ok := t.ops[id]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "unknown operation")
	}
	if op.State != models.StateProposed {
		return dErrors.Newf(dErrors.CodeInvalidState, "operation is %s", op.State)
	}
	op.State = models.StateCancelled

	t.metrics.RecordCancelled()
	t.emit(ctx, audit.Event{
		Actor:   caller.String(),
		Action:  audit.ActionGovernanceCancelled,
		Subject: id.String(),
	})
	return nil
}

// Operation returns a copy of the queue entry for observability endpoints.
func (t *Timelock) Operation(id models.OperationID) (models.Operation, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	op, ok := t.ops[id]
	if !ok {
		return models.Operation{}, dErrors.New(dErrors.CodeNotFound, "unknown operation")
	}
	return *op, nil
}

func (t *Timelock) emit(ctx context.Context, event audit.Event) {
	if t.audit == nil {
		return
	}
	if err := t.audit.Emit(ctx, event); err != nil {
		t.logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}

// Package httptransport is the thin HTTP layer. Handlers decode requests,
// resolve the caller from context, and delegate to domain services; no
// business logic lives here.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"caplock/internal/platform/metrics"
	"caplock/internal/platform/middleware"
	"caplock/internal/system"
)

// Handler bundles the domain services the routes need.
type Handler struct {
	logger *slog.Logger
	system *system.System
}

func NewHandler(sys *system.System, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, system: sys}
}

// NewRouter wires all endpoints. Queries are public; every mutation requires
// an authenticated caller address. A nil httpMetrics disables request
// instrumentation.
func NewRouter(h *Handler, validator middleware.TokenValidator, httpMetrics *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Recovery(h.logger))
	r.Use(httpMetrics.Middleware)
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Observable state queries, no side effects.
	r.Get("/ledger/balance/{address}", h.handleBalance)
	r.Get("/ledger/allowance/{owner}/{spender}", h.handleAllowance)
	r.Get("/ledger/supply", h.handleSupply)
	r.Get("/roles", h.handleRoles)
	r.Get("/denylist/{address}", h.handleIsBlocked)
	r.Get("/governance/logic-pointer", h.handleLogicPointer)
	r.Get("/governance/operations/{id}", h.handleOperation)

	// Mutations: authenticated callers only.
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireAuth(validator, h.logger))

		r.Post("/ledger/mint", h.handleMint)
		r.Post("/ledger/transfer", h.handleTransfer)
		r.Post("/ledger/approve", h.handleApprove)
		r.Post("/ledger/transfer-from", h.handleTransferFrom)

		r.Post("/admin/denylist", h.handleSetDenylist)
		r.Post("/admin/governance-authority", h.handleSetGovernanceAuthority)

		r.Post("/governance/schedule", h.handleSchedule)
		r.Post("/governance/execute", h.handleExecute)
		r.Post("/governance/cancel", h.handleCancel)
	})

	return r
}

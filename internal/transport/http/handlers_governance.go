package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	govmodels "caplock/internal/governance/models"
	dErrors "caplock/pkg/domain-errors"
	"caplock/pkg/requestcontext"
)

type scheduleRequest struct {
	Kind   string `json:"kind"`
	Target string `json:"target"`
}

type operationRequest struct {
	OperationID string `json:"operation_id"`
}

type operationResponse struct {
	OperationID string `json:"operation_id"`
	Kind        string `json:"kind"`
	Target      string `json:"target"`
	ScheduledAt string `json:"scheduled_at"`
	ReadyAt     string `json:"ready_at"`
	State       string `json:"state"`
}

func (h *Handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	target, err := parseAddressField(req.Target, "target")
	if err != nil {
		writeError(w, err)
		return
	}
	action := govmodels.Action{Kind: govmodels.Kind(req.Kind), Target: target}

	ctx := r.Context()
	id, err := h.system.Timelock.Schedule(ctx, requestcontext.Caller(ctx), action)
	if err != nil {
		writeError(w, err)
		return
	}
	op, err := h.system.Timelock.Operation(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, toOperationResponse(op))
}

func (h *Handler) handleExecute(w http.ResponseWriter, r *http.Request) {
	id, ok := decodeOperationID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	if err := h.system.Timelock.Execute(ctx, requestcontext.Caller(ctx), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "executed"})
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	id, ok := decodeOperationID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	if err := h.system.Timelock.Cancel(ctx, requestcontext.Caller(ctx), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *Handler) handleOperation(w http.ResponseWriter, r *http.Request) {
	id, err := govmodels.ParseOperationID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid operation id"))
		return
	}
	op, err := h.system.Timelock.Operation(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOperationResponse(op))
}

func (h *Handler) handleLogicPointer(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"logic_pointer": h.system.Gate.LogicPointer().String(),
	})
}

func decodeOperationID(w http.ResponseWriter, r *http.Request) (govmodels.OperationID, bool) {
	var req operationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return govmodels.OperationID{}, false
	}
	id, err := govmodels.ParseOperationID(req.OperationID)
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid operation id"))
		return govmodels.OperationID{}, false
	}
	return id, true
}

func toOperationResponse(op govmodels.Operation) operationResponse {
	return operationResponse{
		OperationID: op.ID.String(),
		Kind:        string(op.Action.Kind),
		Target:      op.Action.Target.String(),
		ScheduledAt: op.ScheduledAt.Format(timeLayout),
		ReadyAt:     op.ReadyAt.Format(timeLayout),
		State:       string(op.State),
	}
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	dErrors "caplock/pkg/domain-errors"
	"caplock/pkg/requestcontext"
)

type denylistRequest struct {
	Address string `json:"address"`
	Blocked bool   `json:"blocked"`
}

type setAuthorityRequest struct {
	Address string `json:"address"`
}

type rolesResponse struct {
	PrimaryAdmin        string `json:"primary_admin"`
	MintingAdmin        string `json:"minting_admin"`
	GovernanceAuthority string `json:"governance_authority"`
}

func (h *Handler) handleSetDenylist(w http.ResponseWriter, r *http.Request) {
	var req denylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	addr, err := parseAddressField(req.Address, "address")
	if err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	if err := h.system.Roles.Blacklist(ctx, requestcontext.Caller(ctx), addr, req.Blocked); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"address": addr.String(),
		"blocked": req.Blocked,
	})
}

func (h *Handler) handleIsBlocked(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddressField(chi.URLParam(r, "address"), "address")
	if err != nil {
		writeError(w, err)
		return
	}
	blocked, err := h.system.Roles.IsBlocked(r.Context(), addr)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"address": addr.String(),
		"blocked": blocked,
	})
}

func (h *Handler) handleRoles(w http.ResponseWriter, r *http.Request) {
	registry, err := h.system.Roles.Registry(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rolesResponse{
		PrimaryAdmin:        registry.PrimaryAdmin.String(),
		MintingAdmin:        registry.MintingAdmin.String(),
		GovernanceAuthority: registry.GovernanceAuthority.String(),
	})
}

// handleSetGovernanceAuthority is the one control change not routed through
// the timelock: the primary admin designates who controls the delay gate.
func (h *Handler) handleSetGovernanceAuthority(w http.ResponseWriter, r *http.Request) {
	var req setAuthorityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	addr, err := parseAddressField(req.Address, "address")
	if err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	if err := h.system.Roles.SetGovernanceAuthority(ctx, requestcontext.Caller(ctx), addr); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"governance_authority": addr.String()})
}

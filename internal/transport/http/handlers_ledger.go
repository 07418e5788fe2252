package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/holiman/uint256"

	dErrors "caplock/pkg/domain-errors"
	"caplock/pkg/domain"
	"caplock/pkg/requestcontext"
)

type mintRequest struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type transferRequest struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type approveRequest struct {
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

type transferFromRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type balanceResponse struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

type allowanceResponse struct {
	Owner     string `json:"owner"`
	Spender   string `json:"spender"`
	Allowance string `json:"allowance"`
}

type supplyResponse struct {
	TotalSupply string `json:"total_supply"`
	Cap         string `json:"cap"`
}

func (h *Handler) handleMint(w http.ResponseWriter, r *http.Request) {
	var req mintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	to, err := parseAddressField(req.To, "to")
	if err != nil {
		writeError(w, err)
		return
	}
	amount, err := parseAmountField(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	if err := h.system.Ledger.Mint(ctx, requestcontext.Caller(ctx), to, amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "minted"})
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	to, err := parseAddressField(req.To, "to")
	if err != nil {
		writeError(w, err)
		return
	}
	amount, err := parseAmountField(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	if err := h.system.Ledger.Transfer(ctx, requestcontext.Caller(ctx), to, amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "transferred"})
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	spender, err := parseAddressField(req.Spender, "spender")
	if err != nil {
		writeError(w, err)
		return
	}
	amount, err := parseAmountField(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	if err := h.system.Ledger.Approve(ctx, requestcontext.Caller(ctx), spender, amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

func (h *Handler) handleTransferFrom(w http.ResponseWriter, r *http.Request) {
	var req transferFromRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	from, err := parseAddressField(req.From, "from")
	if err != nil {
		writeError(w, err)
		return
	}
	to, err := parseAddressField(req.To, "to")
	if err != nil {
		writeError(w, err)
		return
	}
	amount, err := parseAmountField(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()
	if err := h.system.Ledger.TransferFrom(ctx, requestcontext.Caller(ctx), from, to, amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "transferred"})
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	addr, err := parseAddressField(chi.URLParam(r, "address"), "address")
	if err != nil {
		writeError(w, err)
		return
	}
	balance, err := h.system.Ledger.BalanceOf(r.Context(), addr)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Address: addr.String(), Balance: balance.Dec()})
}

func (h *Handler) handleAllowance(w http.ResponseWriter, r *http.Request) {
	owner, err := parseAddressField(chi.URLParam(r, "owner"), "owner")
	if err != nil {
		writeError(w, err)
		return
	}
	spender, err := parseAddressField(chi.URLParam(r, "spender"), "spender")
	if err != nil {
		writeError(w, err)
		return
	}
	allowance, err := h.system.Ledger.AllowanceOf(r.Context(), owner, spender)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, allowanceResponse{
		Owner:     owner.String(),
		Spender:   spender.String(),
		Allowance: allowance.Dec(),
	})
}

func (h *Handler) handleSupply(w http.ResponseWriter, r *http.Request) {
	supply, err := h.system.Ledger.Supply(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, supplyResponse{
		TotalSupply: supply.Total.Dec(),
		Cap:         supply.Cap.Dec(),
	})
}

func parseAddressField(raw, field string) (domain.Address, error) {
	addr, err := domain.ParseAddress(raw)
	if err != nil {
		return domain.ZeroAddress, dErrors.Newf(dErrors.CodeInvalidAddress, "invalid %s address", field)
	}
	return addr, nil
}

func parseAmountField(raw string) (*uint256.Int, error) {
	if raw == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "amount is required")
	}
	amount, err := uint256.FromDecimal(raw)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "amount must be a decimal integer")
	}
	return amount, nil
}

package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/event-cashless/internal/model"
)

type balanceResponse struct {
	NewBalance int `json:"newBalance"`
}

// TopUp handles POST /credits/topup
func (h *Handler) TopUp(w http.ResponseWriter, r *http.Request) {
	var req model.TopUpRequest
	if !decodeBody(w, r, &req) {
		return
	}

	balance, err := h.ledger.TopUp(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{NewBalance: balance})
}

// Debit handles POST /credits/debit
// Consumes exactly one unit; 400 when the wristband has no credit left.
func (h *Handler) Debit(w http.ResponseWriter, r *http.Request) {
	var req model.DebitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	balance, err := h.ledger.Debit(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{NewBalance: balance})
}

// Balances handles GET /credits/{wristbandId}
func (h *Handler) Balances(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "wristbandId")
	if !ok {
		return
	}

	balances, err := h.ledger.Balances(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if balances == nil {
		balances = []model.Balance{}
	}
	writeJSON(w, http.StatusOK, balances)
}

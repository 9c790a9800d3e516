package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/event-cashless/internal/model"
	"github.com/google/uuid"
)

// CreateOrder handles POST /orders
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req model.CreateOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	o, err := h.orders.CreateOrder(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uuid.UUID{"orderId": o.ID})
}

// GetOrder handles GET /orders/{id}
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	detail, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// RedeemOrder handles POST /orders/{id}/redeem
// A second redemption of the same order is rejected with 400.
func (h *Handler) RedeemOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req model.RedeemOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if _, err := h.orders.Redeem(r.Context(), id, req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody)
}

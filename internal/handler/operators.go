package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/event-cashless/internal/model"
)

// CreateOperator handles POST /operators
func (h *Handler) CreateOperator(w http.ResponseWriter, r *http.Request) {
	var req model.CreateOperatorRequest
	if !decodeBody(w, r, &req) {
		return
	}

	op, err := h.operators.CreateOperator(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, op)
}

// ListOperators handles GET /operators?eventId=
func (h *Handler) ListOperators(w http.ResponseWriter, r *http.Request) {
	eventID, ok := queryEventID(w, r)
	if !ok {
		return
	}

	ops, err := h.operators.ListOperators(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if ops == nil {
		ops = []model.Operator{}
	}
	writeJSON(w, http.StatusOK, ops)
}

// DeleteOperator handles DELETE /operators/{id}
func (h *Handler) DeleteOperator(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.operators.DeleteOperator(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody)
}

// Login handles POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	op, err := h.operators.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, op)
}

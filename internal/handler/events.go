package handler

import (
	"net/http"
	"strconv"

	"github.com/Shivanand-hulikatti/event-cashless/internal/model"
)

// CreateEvent handles POST /events
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if !decodeBody(w, r, &req) {
		return
	}

	event, err := h.events.CreateEvent(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// ListEvents handles GET /events?onlyPublic=bool
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	onlyPublic := false
	if raw := r.URL.Query().Get("onlyPublic"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeValidation, "onlyPublic must be a boolean")
			return
		}
		onlyPublic = v
	}

	events, err := h.events.ListEvents(r.Context(), onlyPublic)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if events == nil {
		events = []model.Event{}
	}

	writeJSON(w, http.StatusOK, events)
}

// SetVisibility handles POST /events/{id}/visibility
func (h *Handler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req model.VisibilityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.events.SetVisibility(r.Context(), id, req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody)
}

// DeleteEvent handles DELETE /events/{id}
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.events.DeleteEvent(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody)
}

// ResetEvent handles POST /events/{id}/reset
// Irreversibly wipes the event's wristbands, credits, transactions and orders.
func (h *Handler) ResetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	res, err := h.events.ResetEvent(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CreateProduct handles POST /products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req model.CreateProductRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := h.events.CreateProduct(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// ListProducts handles GET /products?eventId=
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	eventID, ok := queryEventID(w, r)
	if !ok {
		return
	}

	products, err := h.events.ListProducts(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// DeleteProduct handles DELETE /products/{id}
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.events.DeleteProduct(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody)
}

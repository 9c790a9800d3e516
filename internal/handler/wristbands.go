package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/event-cashless/internal/model"
	"github.com/go-chi/chi/v5"
)

// RegisterWristband handles POST /wristbands
// Registers a tag for an event, or returns the wristband already bound to it.
// 201 for a new wristband, 200 when the tag was already registered.
func (h *Handler) RegisterWristband(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterWristbandRequest
	if !decodeBody(w, r, &req) {
		return
	}
	reg, ok := h.register(w, r, req)
	if !ok {
		return
	}

	status := http.StatusCreated
	if reg.AlreadyRegistered {
		status = http.StatusOK
	}
	writeJSON(w, status, reg)
}

// WristbandByTag handles GET /wristbands/tag/{tag}?eventId=
// The scanner app calls this on every tap, so it registers on first sight.
// Always 200; alreadyRegistered tells the two cases apart.
func (h *Handler) WristbandByTag(w http.ResponseWriter, r *http.Request) {
	eventID, ok := queryEventID(w, r)
	if !ok {
		return
	}
	reg, ok := h.register(w, r, model.RegisterWristbandRequest{Tag: chi.URLParam(r, "tag"), EventID: eventID})
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request, req model.RegisterWristbandRequest) (*model.Registration, bool) {
	reg, err := h.wristbands.Register(r.Context(), req.Tag, req.EventID)
	if err != nil {
		writeServiceError(w, r, err)
		return nil, false
	}
	return reg, true
}

// ListWristbands handles GET /wristbands?eventId=
func (h *Handler) ListWristbands(w http.ResponseWriter, r *http.Request) {
	eventID, ok := queryEventID(w, r)
	if !ok {
		return
	}

	bands, err := h.wristbands.ListWristbands(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if bands == nil {
		bands = []model.Wristband{}
	}
	writeJSON(w, http.StatusOK, bands)
}

// WristbandByCode handles GET /wristbands/code/{code}?eventId=
func (h *Handler) WristbandByCode(w http.ResponseWriter, r *http.Request) {
	eventID, ok := queryEventID(w, r)
	if !ok {
		return
	}

	band, err := h.wristbands.LookupByCode(r.Context(), chi.URLParam(r, "code"), eventID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, band)
}

// SetSocial handles POST /wristbands/{id}/social
func (h *Handler) SetSocial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req model.SocialRequest
	if !decodeBody(w, r, &req) {
		return
	}

	band, err := h.wristbands.SetSocial(r.Context(), id, req.Handle)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, band)
}

// DeleteWristband handles DELETE /wristbands/{id}
func (h *Handler) DeleteWristband(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.wristbands.DeleteWristband(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody)
}

// RedeemByCode handles POST /wristbands/redeem-by-code
// Direct storefront top-up addressed by the printed code.
func (h *Handler) RedeemByCode(w http.ResponseWriter, r *http.Request) {
	var req model.RedeemByCodeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.wristbands.RedeemByCode(r.Context(), req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, okBody)
}

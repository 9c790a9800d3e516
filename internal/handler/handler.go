// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Shivanand-hulikatti/event-cashless/internal/model"
	"github.com/Shivanand-hulikatti/event-cashless/internal/repository"
	"github.com/Shivanand-hulikatti/event-cashless/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Stable machine-readable error codes returned next to the message.
const (
	codeValidation      = "validation"
	codeNotFound        = "not_found"
	codeConflict        = "conflict"
	codeAlreadyRedeemed = "already_redeemed"
	codeNoCredit        = "no_credit"
	codeExhausted       = "exhausted"
	codeAuthFailed      = "auth_failed"
	codeRateLimited     = "rate_limited"
	codeInternal        = "internal"
)

// Handler holds all HTTP handlers for the cashless API.
type Handler struct {
	events     EventService
	wristbands WristbandService
	ledger     LedgerService
	orders     OrderService
	operators  OperatorService
	reports    ReportService
	db         Pinger
}

// Services groups the dependencies of a Handler.
type Services struct {
	Events     EventService
	Wristbands WristbandService
	Ledger     LedgerService
	Orders     OrderService
	Operators  OperatorService
	Reports    ReportService
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New constructs a Handler.
func New(svc Services, db Pinger) *Handler {
	return &Handler{
		events:     svc.Events,
		wristbands: svc.Wristbands,
		ledger:     svc.Ledger,
		orders:     svc.Orders,
		operators:  svc.Operators,
		reports:    svc.Reports,
		db:         db,
	}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

var okBody = map[string]bool{"ok": true}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg, Code: code})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// decodeBody decodes the request body and answers 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(r, dst); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// pathID parses a UUID path parameter and answers 400 when it is malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// queryEventID parses the mandatory ?eventId= parameter.
func queryEventID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.URL.Query().Get("eventId")
	if raw == "" {
		writeError(w, http.StatusBadRequest, codeValidation, "eventId query parameter is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid eventId")
		return uuid.Nil, false
	}
	return id, true
}

// writeServiceError maps a service or repository error to its HTTP status.
// Anything unrecognised is a storage failure: it is logged and the caller
// gets a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case service.IsValidation(err):
		var ve *service.ValidationError
		errors.As(err, &ve)
		writeError(w, http.StatusBadRequest, codeValidation, ve.Msg)
	case errors.Is(err, repository.ErrEventMismatch), errors.Is(err, repository.ErrBalanceOverflow):
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, codeConflict, err.Error())
	case errors.Is(err, repository.ErrAlreadyRedeemed):
		writeError(w, http.StatusBadRequest, codeAlreadyRedeemed, "order already redeemed")
	case errors.Is(err, repository.ErrNoCredit):
		writeError(w, http.StatusBadRequest, codeNoCredit, "no credit for this product")
	case errors.Is(err, repository.ErrExhausted):
		writeError(w, http.StatusBadRequest, codeExhausted, "credit exhausted")
	case errors.Is(err, service.ErrAuthFailed):
		writeError(w, http.StatusUnauthorized, codeAuthFailed, "invalid credentials")
	case errors.Is(err, service.ErrRateLimited):
		w.Header().Set("Retry-After", "60")
		writeError(w, http.StatusTooManyRequests, codeRateLimited, "too many login attempts")
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			slog.WarnContext(r.Context(), "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

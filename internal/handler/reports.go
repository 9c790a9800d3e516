package handler

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/Shivanand-hulikatti/event-cashless/internal/model"
	"github.com/Shivanand-hulikatti/event-cashless/internal/service"
)

// Revenue handles GET /reports/revenue/{eventId}
func (h *Handler) Revenue(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}

	total, err := h.reports.Revenue(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"total": total})
}

// ProductSales handles GET /reports/products/{eventId}
func (h *Handler) ProductSales(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}

	rows, err := h.reports.ProductSales(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if rows == nil {
		rows = []model.ProductSales{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// OperatorActivity handles GET /reports/operators/{eventId}
func (h *Handler) OperatorActivity(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}

	rows, err := h.reports.OperatorActivity(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if rows == nil {
		rows = []model.OperatorActivity{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// Log handles GET /reports/log/{eventId}
func (h *Handler) Log(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}

	entries, err := h.reports.Log(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if entries == nil {
		entries = []model.LogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// LogCSV handles GET /reports/log/{eventId}/csv
func (h *Handler) LogCSV(w http.ResponseWriter, r *http.Request) {
	h.csvReport(w, r, "log", service.WriteLogCSV)
}

// ExportCSV handles GET /reports/export/{eventId}/csv
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	h.csvReport(w, r, "export", service.WriteExportCSV)
}

// csvReport renders into a buffer first so a failure can still be reported
// as a JSON error instead of a truncated download.
func (h *Handler) csvReport(w http.ResponseWriter, r *http.Request, kind string, render func(io.Writer, []model.LogEntry) error) {
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}

	entries, err := h.reports.Log(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := render(&buf, entries); err != nil {
		writeServiceError(w, r, fmt.Errorf("render %s csv: %w", kind, err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, service.ExportFilename(kind, eventID)))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// Audit handles GET /reports/audit/{eventId}
// Lists credit rows that disagree with a replay of the transaction log.
func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}

	diffs, err := h.ledger.Audit(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if diffs == nil {
		diffs = []model.Discrepancy{}
	}
	writeJSON(w, http.StatusOK, diffs)
}

package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-cashless/internal/model"
	"github.com/Shivanand-hulikatti/event-cashless/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportService serves the read-only aggregations and CSV exports.
type ReportService struct {
	events  *repository.EventRepository
	reports *repository.ReportRepository
}

// NewReportService constructs a ReportService.
func NewReportService(events *repository.EventRepository, reports *repository.ReportRepository) *ReportService {
	return &ReportService{events: events, reports: reports}
}

func (s *ReportService) requireEvent(ctx context.Context, eventID uuid.UUID) error {
	if err := requireID(eventID, "eventId"); err != nil {
		return err
	}
	_, err := s.events.GetByID(ctx, eventID)
	return err
}

// Revenue returns the event's total top-up revenue in cents.
func (s *ReportService) Revenue(ctx context.Context, eventID uuid.UUID) (int64, error) {
	if err := s.requireEvent(ctx, eventID); err != nil {
		return 0, err
	}
	return s.reports.Revenue(ctx, eventID)
}

// ProductSales returns per-product top-up totals.
func (s *ReportService) ProductSales(ctx context.Context, eventID uuid.UUID) ([]model.ProductSales, error) {
	if err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.reports.ProductSales(ctx, eventID)
}

// OperatorActivity returns per-operator counts and top-up value.
func (s *ReportService) OperatorActivity(ctx context.Context, eventID uuid.UUID) ([]model.OperatorActivity, error) {
	if err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.reports.OperatorActivity(ctx, eventID)
}

// Log returns the event's transaction log, oldest first.
func (s *ReportService) Log(ctx context.Context, eventID uuid.UUID) ([]model.LogEntry, error) {
	if err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.reports.Log(ctx, eventID)
}

// WriteLogCSV renders the transaction log as semicolon-separated CSV.
func WriteLogCSV(w io.Writer, entries []model.LogEntry) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write([]string{
		"id", "created_at", "kind", "quantity", "product", "price_cents",
		"wristband_id", "operator", "operator_role",
	}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{
			strconv.FormatInt(e.ID, 10),
			e.CreatedAt.UTC().Format(time.RFC3339),
			string(e.Kind),
			strconv.Itoa(e.Quantity),
			e.Product,
			strconv.FormatInt(e.PriceCents, 10),
			e.WristbandID.String(),
			deref(e.Operator),
			deref(e.OperatorRole),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteExportCSV renders the full accounting export: one row per transaction
// with line totals in cents and in euro.
func WriteExportCSV(w io.Writer, entries []model.LogEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"created_at", "kind", "wristband_code", "product", "quantity",
		"price_cents", "total_cents", "total_euro",
	}); err != nil {
		return err
	}
	for _, e := range entries {
		total := e.TotalCents()
		if err := cw.Write([]string{
			e.CreatedAt.UTC().Format(time.RFC3339),
			string(e.Kind),
			e.WristbandCode,
			e.Product,
			strconv.Itoa(e.Quantity),
			strconv.FormatInt(e.PriceCents, 10),
			strconv.FormatInt(total, 10),
			FormatEuro(total),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatEuro renders cents with two decimals and a comma separator, e.g.
// 1250 → "12,50".
func FormatEuro(cents int64) string {
	return strings.Replace(decimal.New(cents, -2).StringFixed(2), ".", ",", 1)
}

// ExportFilename names a CSV download for an event.
func ExportFilename(kind string, eventID uuid.UUID) string {
	return fmt.Sprintf("%s-%s.csv", kind, eventID)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

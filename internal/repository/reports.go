package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/event-cashless/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ReportRepository runs the read-only aggregations over the transaction log,
// plus the destructive event reset.
type ReportRepository struct {
	db *pgxpool.Pool
}

// NewReportRepository constructs a ReportRepository.
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

// Revenue is Σ quantity × price over every top-up of the event, in cents.
func (r *ReportRepository) Revenue(ctx context.Context, eventID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(t.quantity * p.price_cents), 0)::BIGINT
		 FROM transactions t
		 JOIN products p ON p.id = t.product_id
		 WHERE t.event_id = $1 AND t.kind IN ('top-up', 'web-top-up')`,
		eventID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum revenue: %w", err)
	}
	return total, nil
}

// ProductSales groups top-ups by product, highest revenue first.
func (r *ReportRepository) ProductSales(ctx context.Context, eventID uuid.UUID) ([]model.ProductSales, error) {
	rows, err := r.db.Query(ctx,
		`SELECT p.id, p.name,
		        SUM(t.quantity)::BIGINT,
		        SUM(t.quantity * p.price_cents)::BIGINT AS revenue
		 FROM transactions t
		 JOIN products p ON p.id = t.product_id
		 WHERE t.event_id = $1 AND t.kind IN ('top-up', 'web-top-up')
		 GROUP BY p.id, p.name
		 ORDER BY revenue DESC, p.name ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("product sales: %w", err)
	}
	defer rows.Close()

	var out []model.ProductSales
	for rows.Next() {
		var s model.ProductSales
		if err := rows.Scan(&s.ProductID, &s.Name, &s.Quantity, &s.RevenueCents); err != nil {
			return nil, fmt.Errorf("scan product sales: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// OperatorActivity summarises attributed transactions per operator, highest
// top-up value first. Unattributed transactions are left out.
func (r *ReportRepository) OperatorActivity(ctx context.Context, eventID uuid.UUID) ([]model.OperatorActivity, error) {
	rows, err := r.db.Query(ctx,
		`SELECT o.id, o.name, o.role,
		        COUNT(*) FILTER (WHERE t.kind <> 'debit'),
		        COALESCE(SUM(t.quantity * p.price_cents) FILTER (WHERE t.kind <> 'debit'), 0)::BIGINT AS value,
		        COUNT(*) FILTER (WHERE t.kind = 'debit')
		 FROM transactions t
		 JOIN operators o ON o.id = t.operator_id
		 JOIN products p ON p.id = t.product_id
		 WHERE t.event_id = $1
		 GROUP BY o.id, o.name, o.role
		 ORDER BY value DESC, o.name ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("operator activity: %w", err)
	}
	defer rows.Close()

	var out []model.OperatorActivity
	for rows.Next() {
		var a model.OperatorActivity
		if err := rows.Scan(&a.OperatorID, &a.Name, &a.Role, &a.TopUps, &a.TopUpValueCents, &a.Debits); err != nil {
			return nil, fmt.Errorf("scan operator activity: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Log returns the event's transaction log oldest first, joined with product,
// wristband and operator data.
func (r *ReportRepository) Log(ctx context.Context, eventID uuid.UUID) ([]model.LogEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT t.id, t.created_at, t.kind, t.quantity,
		        p.name, p.price_cents,
		        w.id, w.code,
		        o.name, o.role
		 FROM transactions t
		 JOIN products p ON p.id = t.product_id
		 JOIN wristbands w ON w.id = t.wristband_id
		 LEFT JOIN operators o ON o.id = t.operator_id
		 WHERE t.event_id = $1
		 ORDER BY t.created_at ASC, t.id ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("transaction log: %w", err)
	}
	defer rows.Close()

	var out []model.LogEntry
	for rows.Next() {
		var (
			e    model.LogEntry
			kind string
		)
		if err := rows.Scan(&e.ID, &e.CreatedAt, &kind, &e.Quantity,
			&e.Product, &e.PriceCents,
			&e.WristbandID, &e.WristbandCode,
			&e.Operator, &e.OperatorRole,
		); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		e.Kind = model.TransactionKind(kind)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Reset wipes the credits, transactions, orders and wristbands of one event
// in a single transaction. Products, operators and the event itself survive.
// Deletion order follows the foreign keys: the log references wristbands
// without cascading, so it has to go first.
func (r *ReportRepository) Reset(ctx context.Context, eventID uuid.UUID) (*model.ResetResult, error) {
	ctx, span := tracer.Start(ctx, "events.reset",
		trace.WithAttributes(attribute.String("event.id", eventID.String())),
	)
	defer span.End()

	var res model.ResetResult
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		var id uuid.UUID
		if err := tx.QueryRow(ctx,
			`SELECT id FROM events WHERE id = $1 FOR UPDATE`, eventID,
		).Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock event: %w", err)
		}

		steps := []struct {
			dst *int64
			sql string
		}{
			{&res.Credits, `DELETE FROM credits c USING wristbands w
			                WHERE c.wristband_id = w.id AND w.event_id = $1`},
			{&res.Transactions, `DELETE FROM transactions WHERE event_id = $1`},
			{&res.Orders, `DELETE FROM orders WHERE event_id = $1`},
			{&res.Wristbands, `DELETE FROM wristbands WHERE event_id = $1`},
		}
		for _, s := range steps {
			tag, err := tx.Exec(ctx, s.sql, eventID)
			if err != nil {
				return fmt.Errorf("reset event: %w", err)
			}
			*s.dst = tag.RowsAffected()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int64("credits", res.Credits),
		attribute.Int64("transactions", res.Transactions),
	)
	return &res, nil
}

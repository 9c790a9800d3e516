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
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// LedgerRepository owns the credits table and the transaction log.
//
// Every mutation updates a credit row and appends the matching transaction
// inside one database transaction, so a committed balance change without a
// log entry (or the reverse) is never observable.
type LedgerRepository struct {
	db *pgxpool.Pool
}

// NewLedgerRepository constructs a LedgerRepository.
func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// ledgerScope verifies that the wristband, the product and (if given) the
// operator exist and belong to one event, and returns that event.
func ledgerScope(ctx context.Context, q querier, wristbandID, productID uuid.UUID, operatorID *uuid.UUID) (uuid.UUID, error) {
	var (
		wristbandEvent uuid.UUID
		productEvent   *uuid.UUID
		operatorEvent  *uuid.UUID
	)
	err := q.QueryRow(ctx,
		`SELECT w.event_id, p.event_id, o.event_id
		 FROM wristbands w
		 LEFT JOIN products p ON p.id = $2
		 LEFT JOIN operators o ON o.id = $3
		 WHERE w.id = $1`,
		wristbandID, productID, operatorID,
	).Scan(&wristbandEvent, &productEvent, &operatorEvent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("wristband %s: %w", wristbandID, ErrNotFound)
		}
		return uuid.Nil, fmt.Errorf("resolve ledger scope: %w", err)
	}
	if productEvent == nil {
		return uuid.Nil, fmt.Errorf("product %s: %w", productID, ErrNotFound)
	}
	if operatorID != nil && operatorEvent == nil {
		return uuid.Nil, fmt.Errorf("operator %s: %w", *operatorID, ErrNotFound)
	}
	if *productEvent != wristbandEvent || (operatorEvent != nil && *operatorEvent != wristbandEvent) {
		return uuid.Nil, ErrEventMismatch
	}
	return wristbandEvent, nil
}

// appendTransaction writes one immutable log entry.
func appendTransaction(ctx context.Context, q querier, t model.Transaction) (int64, error) {
	var id int64
	err := q.QueryRow(ctx,
		`INSERT INTO transactions (event_id, wristband_id, product_id, kind, quantity, operator_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		t.EventID, t.WristbandID, t.ProductID, string(t.Kind), t.Quantity, t.OperatorID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("append %s transaction: %w", t.Kind, err)
	}
	return id, nil
}

// applyTopUp creates or increments a credit row and logs the top-up. It must
// run inside a transaction owned by the caller.
func applyTopUp(ctx context.Context, q querier, eventID, wristbandID, productID uuid.UUID, quantity int, kind model.TransactionKind, operatorID *uuid.UUID) (int, error) {
	var balance int
	err := q.QueryRow(ctx,
		`INSERT INTO credits (wristband_id, product_id, quantity, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (wristband_id, product_id)
		 DO UPDATE SET quantity = credits.quantity + EXCLUDED.quantity, updated_at = NOW()
		 RETURNING quantity`,
		wristbandID, productID, quantity,
	).Scan(&balance)
	if err != nil {
		if pgCode(err) == pgNumericOutOfRange {
			return 0, fmt.Errorf("upsert credit: %w", ErrBalanceOverflow)
		}
		return 0, fmt.Errorf("upsert credit: %w", err)
	}

	_, err = appendTransaction(ctx, q, model.Transaction{
		EventID:     eventID,
		WristbandID: wristbandID,
		ProductID:   productID,
		Kind:        kind,
		Quantity:    quantity,
		OperatorID:  operatorID,
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// TopUp adds quantity units of a product to a wristband and returns the new
// balance.
func (r *LedgerRepository) TopUp(ctx context.Context, wristbandID, productID uuid.UUID, quantity int, kind model.TransactionKind, operatorID *uuid.UUID) (int, error) {
	ctx, span := tracer.Start(ctx, "ledger.topup",
		trace.WithAttributes(
			attribute.String("wristband.id", wristbandID.String()),
			attribute.String("product.id", productID.String()),
			attribute.Int("quantity", quantity),
			attribute.String("kind", string(kind)),
		),
	)
	defer span.End()

	var balance int
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		eventID, err := ledgerScope(ctx, tx, wristbandID, productID, operatorID)
		if err != nil {
			return err
		}
		balance, err = applyTopUp(ctx, tx, eventID, wristbandID, productID, quantity, kind, operatorID)
		return err
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	span.SetAttributes(attribute.Int("balance", balance))
	return balance, nil
}

// TopUpBatch applies several top-ups to one wristband as a single unit: either
// every line item is credited and logged, or none is.
func (r *LedgerRepository) TopUpBatch(ctx context.Context, wristbandID uuid.UUID, items []model.LineItem, kind model.TransactionKind, operatorID *uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "ledger.topup_batch",
		trace.WithAttributes(
			attribute.String("wristband.id", wristbandID.String()),
			attribute.Int("items", len(items)),
			attribute.String("kind", string(kind)),
		),
	)
	defer span.End()

	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		return topUpItems(ctx, tx, wristbandID, items, kind, operatorID)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func topUpItems(ctx context.Context, q querier, wristbandID uuid.UUID, items []model.LineItem, kind model.TransactionKind, operatorID *uuid.UUID) error {
	for _, item := range items {
		eventID, err := ledgerScope(ctx, q, wristbandID, item.ProductID, operatorID)
		if err != nil {
			return err
		}
		if _, err := applyTopUp(ctx, q, eventID, wristbandID, item.ProductID, item.Quantity, kind, operatorID); err != nil {
			return err
		}
	}
	return nil
}

// Debit consumes exactly one unit and returns the new balance.
//
// The check and the decrement are one conditional UPDATE guarded by
// quantity > 0. Under concurrent debits of the same key the second UPDATE
// blocks on the row lock, re-evaluates the guard against the committed value
// and matches zero rows, so the balance can never go negative.
func (r *LedgerRepository) Debit(ctx context.Context, wristbandID, productID uuid.UUID, operatorID *uuid.UUID) (int, error) {
	ctx, span := tracer.Start(ctx, "ledger.debit",
		trace.WithAttributes(
			attribute.String("wristband.id", wristbandID.String()),
			attribute.String("product.id", productID.String()),
		),
	)
	defer span.End()

	var balance int
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		eventID, err := ledgerScope(ctx, tx, wristbandID, productID, operatorID)
		if err != nil {
			return err
		}

		err = tx.QueryRow(ctx,
			`UPDATE credits
			 SET quantity = quantity - 1, updated_at = NOW()
			 WHERE wristband_id = $1 AND product_id = $2 AND quantity > 0
			 RETURNING quantity`,
			wristbandID, productID,
		).Scan(&balance)
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := tx.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM credits WHERE wristband_id = $1 AND product_id = $2)`,
				wristbandID, productID,
			).Scan(&exists); err != nil {
				return fmt.Errorf("check credit: %w", err)
			}
			if !exists {
				return ErrNoCredit
			}
			return ErrExhausted
		}
		if err != nil {
			return fmt.Errorf("decrement credit: %w", err)
		}

		_, err = appendTransaction(ctx, tx, model.Transaction{
			EventID:     eventID,
			WristbandID: wristbandID,
			ProductID:   productID,
			Kind:        model.KindDebit,
			Quantity:    1,
			OperatorID:  operatorID,
		})
		return err
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	span.SetAttributes(attribute.Int("balance", balance))
	return balance, nil
}

// Balances returns every credit row of a wristband joined with product names.
func (r *LedgerRepository) Balances(ctx context.Context, wristbandID uuid.UUID) ([]model.Balance, error) {
	rows, err := r.db.Query(ctx,
		`SELECT p.id, p.name, c.quantity
		 FROM credits c
		 JOIN products p ON p.id = c.product_id
		 WHERE c.wristband_id = $1
		 ORDER BY p.name ASC`,
		wristbandID,
	)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()

	var out []model.Balance
	for rows.Next() {
		var b model.Balance
		if err := rows.Scan(&b.ProductID, &b.Name, &b.Quantity); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// EventTransactions returns the raw transaction log of an event in append
// order.
func (r *LedgerRepository) EventTransactions(ctx context.Context, eventID uuid.UUID) ([]model.Transaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, event_id, wristband_id, product_id, kind, quantity, operator_id, created_at
		 FROM transactions
		 WHERE event_id = $1
		 ORDER BY id ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		var (
			t    model.Transaction
			kind string
		)
		if err := rows.Scan(&t.ID, &t.EventID, &t.WristbandID, &t.ProductID, &kind, &t.Quantity, &t.OperatorID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Kind = model.TransactionKind(kind)
		out = append(out, t)
	}
	return out, rows.Err()
}

// EventCredits returns the stored credit balances of an event keyed by
// (wristband, product).
func (r *LedgerRepository) EventCredits(ctx context.Context, eventID uuid.UUID) (map[model.CreditKey]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT c.wristband_id, c.product_id, c.quantity
		 FROM credits c
		 JOIN wristbands w ON w.id = c.wristband_id
		 WHERE w.event_id = $1`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list credits: %w", err)
	}
	defer rows.Close()

	out := make(map[model.CreditKey]int)
	for rows.Next() {
		var (
			k   model.CreditKey
			qty int
		)
		if err := rows.Scan(&k.WristbandID, &k.ProductID, &qty); err != nil {
			return nil, fmt.Errorf("scan credit: %w", err)
		}
		out[k] = qty
	}
	return out, rows.Err()
}

// RebuildCredits recomputes every credit row of an event from the transaction
// log and returns the number of rows written. Writers are blocked for the
// duration so the replay sees a stable log.
func (r *LedgerRepository) RebuildCredits(ctx context.Context, eventID uuid.UUID) (int64, error) {
	ctx, span := tracer.Start(ctx, "ledger.rebuild",
		trace.WithAttributes(attribute.String("event.id", eventID.String())),
	)
	defer span.End()

	var written int64
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE credits, transactions IN EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("lock ledger: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM credits c USING wristbands w
			 WHERE c.wristband_id = w.id AND w.event_id = $1`,
			eventID,
		); err != nil {
			return fmt.Errorf("clear credits: %w", err)
		}
		tag, err := tx.Exec(ctx,
			`INSERT INTO credits (wristband_id, product_id, quantity, updated_at)
			 SELECT wristband_id, product_id,
			        SUM(CASE WHEN kind = 'debit' THEN -quantity ELSE quantity END),
			        NOW()
			 FROM transactions
			 WHERE event_id = $1
			 GROUP BY wristband_id, product_id`,
			eventID,
		)
		if err != nil {
			return fmt.Errorf("replay credits: %w", err)
		}
		written = tag.RowsAffected()
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	return written, nil
}

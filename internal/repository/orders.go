package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/event-cashless/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OrderRepository handles persistence for staged orders and their redemption.
type OrderRepository struct {
	db *pgxpool.Pool
}

// NewOrderRepository constructs an OrderRepository.
func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create stages a pending order with its line items in one transaction.
// Items must already be merged by product and carry positive quantities.
func (r *OrderRepository) Create(ctx context.Context, eventID uuid.UUID, items []model.LineItem) (*model.Order, error) {
	o := model.Order{
		ID:        uuid.New(),
		EventID:   eventID,
		Status:    model.OrderPending,
		CreatedAt: time.Now().UTC(),
	}

	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO orders (id, event_id, status, created_at)
			 VALUES ($1, $2, $3, $4)`,
			o.ID, o.EventID, string(o.Status), o.CreatedAt,
		)
		if err != nil {
			if pgCode(err) == pgForeignKeyViolation {
				return fmt.Errorf("event %s: %w", eventID, ErrNotFound)
			}
			return fmt.Errorf("insert order: %w", err)
		}

		for _, item := range items {
			var productEvent uuid.UUID
			err := tx.QueryRow(ctx,
				`SELECT event_id FROM products WHERE id = $1`, item.ProductID,
			).Scan(&productEvent)
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("product %s: %w", item.ProductID, ErrNotFound)
			}
			if err != nil {
				return fmt.Errorf("resolve product: %w", err)
			}
			if productEvent != eventID {
				return ErrEventMismatch
			}

			if _, err := tx.Exec(ctx,
				`INSERT INTO order_items (order_id, product_id, quantity)
				 VALUES ($1, $2, $3)`,
				o.ID, item.ProductID, item.Quantity,
			); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanOrder(row pgx.Row) (model.Order, error) {
	var (
		o      model.Order
		status string
	)
	err := row.Scan(&o.ID, &o.EventID, &status, &o.WristbandID, &o.CreatedAt, &o.RedeemedAt)
	o.Status = model.OrderStatus(status)
	return o, err
}

func orderItems(ctx context.Context, q querier, orderID uuid.UUID) ([]model.LineItem, error) {
	rows, err := q.Query(ctx,
		`SELECT oi.product_id, p.name, oi.quantity
		 FROM order_items oi
		 JOIN products p ON p.id = oi.product_id
		 WHERE oi.order_id = $1
		 ORDER BY p.name ASC`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	items := []model.LineItem{}
	for rows.Next() {
		var li model.LineItem
		if err := rows.Scan(&li.ProductID, &li.Name, &li.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, li)
	}
	return items, rows.Err()
}

// Get returns an order with its line items and product names.
func (r *OrderRepository) Get(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error) {
	o, err := scanOrder(r.db.QueryRow(ctx,
		`SELECT id, event_id, status, wristband_id, created_at, redeemed_at
		 FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := orderItems(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return &model.OrderDetail{Order: o, LineItems: items}, nil
}

// Redeem credits every line item of a pending order to a wristband and marks
// the order redeemed.
//
// The order row is locked with SELECT … FOR UPDATE before its status is
// checked. Without the lock two concurrent redeem requests could both read
// status = 'pending', both apply the top-ups, and the customer would receive
// the order twice. With it the second request blocks until the first commits
// and then sees status = 'redeemed'.
//
// The top-ups and the status flip share the transaction, so a failure on any
// line item leaves the order pending and no credit applied.
func (r *OrderRepository) Redeem(ctx context.Context, orderID, wristbandID uuid.UUID) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "orders.redeem",
		trace.WithAttributes(
			attribute.String("order.id", orderID.String()),
			attribute.String("wristband.id", wristbandID.String()),
		),
	)
	defer span.End()

	var redeemed model.Order
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		o, err := scanOrder(tx.QueryRow(ctx,
			`SELECT id, event_id, status, wristband_id, created_at, redeemed_at
			 FROM orders WHERE id = $1
			 FOR UPDATE`, orderID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
			}
			return fmt.Errorf("lock order: %w", err)
		}
		if o.Status == model.OrderRedeemed {
			return ErrAlreadyRedeemed
		}

		w, err := getWristband(ctx, tx, `id = $1`, wristbandID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("wristband %s: %w", wristbandID, ErrNotFound)
			}
			return err
		}
		if w.EventID != o.EventID {
			return ErrEventMismatch
		}

		// Rows must be fully drained before the connection is reused.
		items, err := orderItems(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if err := topUpItems(ctx, tx, wristbandID, items, model.KindTopUp, nil); err != nil {
			return err
		}

		redeemed, err = scanOrder(tx.QueryRow(ctx,
			`UPDATE orders
			 SET status = $1, wristband_id = $2, redeemed_at = NOW()
			 WHERE id = $3
			 RETURNING id, event_id, status, wristband_id, created_at, redeemed_at`,
			string(model.OrderRedeemed), wristbandID, orderID,
		))
		if err != nil {
			return fmt.Errorf("mark order redeemed: %w", err)
		}
		span.SetAttributes(attribute.Int("items", len(items)))
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return &redeemed, nil
}

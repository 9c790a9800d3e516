package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/event-cashless/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductRepository handles persistence for products.
type ProductRepository struct {
	db *pgxpool.Pool
}

// NewProductRepository constructs a ProductRepository.
func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a product for an existing event.
func (r *ProductRepository) Create(ctx context.Context, p model.Product) (*model.Product, error) {
	p.ID = uuid.New()
	p.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(ctx,
		`INSERT INTO products (id, event_id, name, price_cents, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.EventID, p.Name, p.PriceCents, p.CreatedAt,
	)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return &p, nil
}

// ListByEvent returns the products of one event ordered by name.
func (r *ProductRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Product, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, event_id, name, price_cents, created_at
		 FROM products
		 WHERE event_id = $1
		 ORDER BY name ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.EventID, &p.Name, &p.PriceCents, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Delete removes a product. Products referenced by the transaction log or by
// a staged order cannot be removed and yield ErrConflict.
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execDelete(ctx, r.db, "product", `DELETE FROM products WHERE id = $1`, id)
}

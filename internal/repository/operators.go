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
)

// OperatorRepository handles persistence for point-of-sale operators.
type OperatorRepository struct {
	db *pgxpool.Pool
}

// NewOperatorRepository constructs an OperatorRepository.
func NewOperatorRepository(db *pgxpool.Pool) *OperatorRepository {
	return &OperatorRepository{db: db}
}

// Create inserts an operator with an already-hashed credential. A second
// operator with the same name in the same event yields ErrConflict.
func (r *OperatorRepository) Create(ctx context.Context, op model.Operator, cred model.Credential) (*model.Operator, error) {
	op.ID = uuid.New()
	op.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(ctx,
		`INSERT INTO operators (id, event_id, name, role, password_hash, password_salt, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		op.ID, op.EventID, op.Name, op.Role, cred.PasswordHash, cred.Salt, op.CreatedAt,
	)
	if err != nil {
		switch pgCode(err) {
		case pgUniqueViolation:
			return nil, fmt.Errorf("operator %q: %w", op.Name, ErrConflict)
		case pgForeignKeyViolation:
			return nil, fmt.Errorf("event %s: %w", op.EventID, ErrNotFound)
		}
		return nil, fmt.Errorf("insert operator: %w", err)
	}
	return &op, nil
}

// ListByEvent returns the operators of an event ordered by name.
func (r *OperatorRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Operator, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, event_id, name, role, created_at
		 FROM operators
		 WHERE event_id = $1
		 ORDER BY name ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list operators: %w", err)
	}
	defer rows.Close()

	var ops []model.Operator
	for rows.Next() {
		var op model.Operator
		if err := rows.Scan(&op.ID, &op.EventID, &op.Name, &op.Role, &op.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan operator: %w", err)
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

// FindCredential loads an operator and its stored hash by (event, name).
func (r *OperatorRepository) FindCredential(ctx context.Context, eventID uuid.UUID, name string) (*model.Operator, *model.Credential, error) {
	var (
		op   model.Operator
		cred model.Credential
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, event_id, name, role, created_at, password_hash, password_salt
		 FROM operators
		 WHERE event_id = $1 AND name = $2`,
		eventID, name,
	).Scan(&op.ID, &op.EventID, &op.Name, &op.Role, &op.CreatedAt, &cred.PasswordHash, &cred.Salt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("find operator: %w", err)
	}
	cred.OperatorID = op.ID
	return &op, &cred, nil
}

// Delete removes an operator. An operator who already recorded transactions
// cannot be removed: ErrConflict.
func (r *OperatorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execDelete(ctx, r.db, "operator", `DELETE FROM operators WHERE id = $1`, id)
}

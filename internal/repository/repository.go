// Package repository implements all database queries for the cashless event
// system. It uses pgx directly (no ORM).
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write collides with a uniqueness or
// referential constraint that the caller cannot resolve.
var ErrConflict = errors.New("conflict")

// ErrNoCredit is returned when debiting a product the wristband never held.
var ErrNoCredit = errors.New("no credit for this product")

// ErrExhausted is returned when debiting a product whose balance is zero.
var ErrExhausted = errors.New("credit exhausted")

// ErrAlreadyRedeemed is returned when redeeming an order a second time.
var ErrAlreadyRedeemed = errors.New("order already redeemed")

// ErrEventMismatch is returned when a wristband, product or order belong to
// different events.
var ErrEventMismatch = errors.New("resources belong to different events")

// ErrBalanceOverflow is returned when a top-up would push a credit past the
// largest storable quantity. The whole mutation is rolled back.
var ErrBalanceOverflow = errors.New("credit balance out of range")

// ErrCodeSpaceExhausted is returned when no free wristband code was found
// within the retry budget.
var ErrCodeSpaceExhausted = errors.New("could not allocate a unique wristband code")

var tracer = otel.Tracer("event-cashless/repository")

// PostgreSQL SQLSTATE codes the repositories translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNumericOutOfRange   = "22003"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so statements can be
// shared between standalone calls and larger transactions.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// inTx runs fn inside a transaction, committing only if fn succeeds.
func inTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) (err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// pgCode extracts the SQLSTATE from err, or "" when err is not a server error.
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// execDelete runs a single-row DELETE and maps "no rows" to ErrNotFound and
// a referential violation to ErrConflict.
func execDelete(ctx context.Context, q querier, what, sql string, id any) error {
	tag, err := q.Exec(ctx, sql, id)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return fmt.Errorf("delete %s: %w", what, ErrConflict)
		}
		return fmt.Errorf("delete %s: %w", what, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

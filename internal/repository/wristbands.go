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
	"go.opentelemetry.io/otel/trace"
)

// MaxCodeAttempts bounds the code-collision loop of RegisterOrFind.
const MaxCodeAttempts = 64

// CodeSource yields candidate wristband codes.
type CodeSource func() (string, error)

// WristbandRepository handles persistence for wristbands.
type WristbandRepository struct {
	db *pgxpool.Pool
}

// NewWristbandRepository constructs a WristbandRepository.
func NewWristbandRepository(db *pgxpool.Pool) *WristbandRepository {
	return &WristbandRepository{db: db}
}

const wristbandColumns = `id, event_id, tag, code, social_handle, created_at`

func scanWristband(row pgx.Row) (model.Wristband, error) {
	var w model.Wristband
	err := row.Scan(&w.ID, &w.EventID, &w.Tag, &w.Code, &w.SocialHandle, &w.CreatedAt)
	return w, err
}

func getWristband(ctx context.Context, q querier, where string, args ...any) (*model.Wristband, error) {
	w, err := scanWristband(q.QueryRow(ctx,
		`SELECT `+wristbandColumns+` FROM wristbands WHERE `+where, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get wristband: %w", err)
	}
	return &w, nil
}

// RegisterOrFind returns the wristband already bound to (tag, eventID) or
// registers a new one with a fresh code drawn from next.
//
// Each attempt is a single INSERT … ON CONFLICT DO NOTHING, so concurrent
// callers never observe a half-registered wristband. When the insert is
// swallowed there are two possible causes:
//
//	(tag, event) already exists  → another request won the race; return it.
//	code already exists          → a collision in the code space; draw again.
//
// The loop is bounded by MaxCodeAttempts.
func (r *WristbandRepository) RegisterOrFind(ctx context.Context, tag string, eventID uuid.UUID, next CodeSource) (*model.Registration, error) {
	ctx, span := tracer.Start(ctx, "wristbands.register",
		trace.WithAttributes(attribute.String("event.id", eventID.String())),
	)
	defer span.End()

	existing, err := r.GetByTag(ctx, tag, eventID)
	if err == nil {
		return &model.Registration{Wristband: *existing, AlreadyRegistered: true}, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	for attempt := 1; attempt <= MaxCodeAttempts; attempt++ {
		code, err := next()
		if err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}

		w := model.Wristband{
			ID:        uuid.New(),
			EventID:   eventID,
			Tag:       tag,
			Code:      code,
			CreatedAt: time.Now().UTC(),
		}
		ct, err := r.db.Exec(ctx,
			`INSERT INTO wristbands (id, event_id, tag, code, created_at)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT DO NOTHING`,
			w.ID, w.EventID, w.Tag, w.Code, w.CreatedAt,
		)
		if err != nil {
			if pgCode(err) == pgForeignKeyViolation {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("insert wristband: %w", err)
		}
		if ct.RowsAffected() == 1 {
			span.SetAttributes(attribute.Int("code.attempts", attempt))
			return &model.Registration{Wristband: w}, nil
		}

		existing, err := r.GetByTag(ctx, tag, eventID)
		if err == nil {
			return &model.Registration{Wristband: *existing, AlreadyRegistered: true}, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		span.AddEvent("code.collision", trace.WithAttributes(attribute.Int("attempt", attempt)))
	}
	return nil, ErrCodeSpaceExhausted
}

// GetByID returns a single wristband or ErrNotFound.
func (r *WristbandRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Wristband, error) {
	return getWristband(ctx, r.db, `id = $1`, id)
}

// GetByTag looks a wristband up by its NFC tag within one event.
func (r *WristbandRepository) GetByTag(ctx context.Context, tag string, eventID uuid.UUID) (*model.Wristband, error) {
	return getWristband(ctx, r.db, `tag = $1 AND event_id = $2`, tag, eventID)
}

// GetByCode looks a wristband up by its printed code within one event.
// The code must already be normalised to upper case.
func (r *WristbandRepository) GetByCode(ctx context.Context, code string, eventID uuid.UUID) (*model.Wristband, error) {
	return getWristband(ctx, r.db, `code = $1 AND event_id = $2`, code, eventID)
}

// ListByEvent returns all wristbands of an event in registration order.
func (r *WristbandRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Wristband, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+wristbandColumns+`
		 FROM wristbands
		 WHERE event_id = $1
		 ORDER BY created_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list wristbands: %w", err)
	}
	defer rows.Close()

	var out []model.Wristband
	for rows.Next() {
		w, err := scanWristband(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wristband: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// SetSocialHandle stores a normalised social handle and returns the row.
func (r *WristbandRepository) SetSocialHandle(ctx context.Context, id uuid.UUID, handle string) (*model.Wristband, error) {
	w, err := scanWristband(r.db.QueryRow(ctx,
		`UPDATE wristbands SET social_handle = $1 WHERE id = $2
		 RETURNING `+wristbandColumns,
		handle, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update social handle: %w", err)
	}
	return &w, nil
}

// Delete removes a wristband and its credits. A wristband with transaction
// history yields ErrConflict; use an event reset instead.
func (r *WristbandRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execDelete(ctx, r.db, "wristband", `DELETE FROM wristbands WHERE id = $1`, id)
}

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

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, name, event_date, accent_color, logo_url, public, created_at`

func scanEvent(row pgx.Row) (model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Name, &e.Date, &e.AccentColor, &e.LogoURL, &e.Public, &e.CreatedAt)
	return e, err
}

// Create inserts a new event and returns it with a generated UUID.
func (r *EventRepository) Create(ctx context.Context, e model.Event) (*model.Event, error) {
	e.ID = uuid.New()
	e.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(ctx,
		`INSERT INTO events (id, name, event_date, accent_color, logo_url, public, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.Name, e.Date, e.AccentColor, e.LogoURL, e.Public, e.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return &e, nil
}

// List returns events newest first, optionally only the public ones.
func (r *EventRepository) List(ctx context.Context, onlyPublic bool) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 WHERE NOT $1 OR public
		 ORDER BY event_date DESC, created_at DESC`,
		onlyPublic,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

// SetVisibility flips the public flag.
func (r *EventRepository) SetVisibility(ctx context.Context, id uuid.UUID, public bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE events SET public = $1 WHERE id = $2`, public, id)
	if err != nil {
		return fmt.Errorf("update visibility: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an event; storage constraints cascade to everything it owns.
func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return execDelete(ctx, r.db, "event", `DELETE FROM events WHERE id = $1`, id)
}

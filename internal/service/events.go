package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-cashless/internal/model"
	"github.com/Shivanand-hulikatti/event-cashless/internal/repository"
	"github.com/google/uuid"
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// EventService orchestrates event and product catalogue operations.
type EventService struct {
	events   *repository.EventRepository
	products *repository.ProductRepository
	reports  *repository.ReportRepository
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(
	events *repository.EventRepository,
	products *repository.ProductRepository,
	reports *repository.ReportRepository,
) *EventService {
	return &EventService{events: events, products: products, reports: reports}
}

// CreateEvent validates the request and delegates to the repository.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("event name is required")
	}
	date, err := time.Parse(time.DateOnly, strings.TrimSpace(req.Date))
	if err != nil {
		return nil, invalid("date must be formatted as YYYY-MM-DD")
	}

	color := strings.TrimSpace(req.AccentColor)
	if color == "" {
		color = model.DefaultAccentColor
	}
	if !colorPattern.MatchString(color) {
		return nil, invalid("accentColor must look like #rrggbb")
	}

	var logo *string
	if req.LogoURL != nil {
		if l := strings.TrimSpace(*req.LogoURL); l != "" {
			logo = &l
		}
	}

	return s.events.Create(ctx, model.Event{
		Name:        name,
		Date:        date,
		AccentColor: color,
		LogoURL:     logo,
	})
}

// ListEvents returns every event, or only public ones.
func (s *EventService) ListEvents(ctx context.Context, onlyPublic bool) ([]model.Event, error) {
	return s.events.List(ctx, onlyPublic)
}

// SetVisibility toggles whether the storefront lists an event.
func (s *EventService) SetVisibility(ctx context.Context, id uuid.UUID, req model.VisibilityRequest) error {
	if err := requireID(id, "event id"); err != nil {
		return err
	}
	if req.Public == nil {
		return invalid("public is required")
	}
	return s.events.SetVisibility(ctx, id, *req.Public)
}

// DeleteEvent removes an event and everything it owns.
func (s *EventService) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	if err := requireID(id, "event id"); err != nil {
		return err
	}
	return s.events.Delete(ctx, id)
}

// ResetEvent wipes the event's wristbands, credits, transactions and orders.
func (s *EventService) ResetEvent(ctx context.Context, id uuid.UUID) (*model.ResetResult, error) {
	if err := requireID(id, "event id"); err != nil {
		return nil, err
	}
	res, err := s.reports.Reset(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reset event: %w", err)
	}
	return res, nil
}

// CreateProduct validates and stores a product.
func (s *EventService) CreateProduct(ctx context.Context, req model.CreateProductRequest) (*model.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("product name is required")
	}
	if req.Price <= 0 {
		return nil, invalid("price must be a positive amount in cents")
	}
	if err := requireID(req.EventID, "eventId"); err != nil {
		return nil, err
	}
	return s.products.Create(ctx, model.Product{EventID: req.EventID, Name: name, PriceCents: req.Price})
}

// ListProducts returns the products of an existing event.
func (s *EventService) ListProducts(ctx context.Context, eventID uuid.UUID) ([]model.Product, error) {
	if err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.products.ListByEvent(ctx, eventID)
}

// DeleteProduct removes a product that has no history.
func (s *EventService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := requireID(id, "product id"); err != nil {
		return err
	}
	return s.products.Delete(ctx, id)
}

func (s *EventService) requireEvent(ctx context.Context, eventID uuid.UUID) error {
	if err := requireID(eventID, "eventId"); err != nil {
		return err
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return err
	}
	return nil
}

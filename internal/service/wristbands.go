package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Shivanand-hulikatti/event-cashless/internal/model"
	"github.com/Shivanand-hulikatti/event-cashless/internal/repository"
	"github.com/google/uuid"
)

// WristbandService runs the wristband registry.
type WristbandService struct {
	events     *repository.EventRepository
	wristbands *repository.WristbandRepository
	ledger     *repository.LedgerRepository
	codes      repository.CodeSource
}

// NewWristbandService constructs a WristbandService drawing codes from NewCode.
func NewWristbandService(
	events *repository.EventRepository,
	wristbands *repository.WristbandRepository,
	ledger *repository.LedgerRepository,
) *WristbandService {
	return &WristbandService{events: events, wristbands: wristbands, ledger: ledger, codes: NewCode}
}

// Register returns the wristband bound to (tag, event), creating it on first
// sight.
func (s *WristbandService) Register(ctx context.Context, tag string, eventID uuid.UUID) (*model.Registration, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, invalid("tag is required")
	}
	if err := requireID(eventID, "eventId"); err != nil {
		return nil, err
	}

	reg, err := s.wristbands.RegisterOrFind(ctx, tag, eventID, s.codes)
	if err != nil {
		return nil, fmt.Errorf("register wristband: %w", err)
	}
	return reg, nil
}

// LookupByCode resolves a printed code within one event.
func (s *WristbandService) LookupByCode(ctx context.Context, code string, eventID uuid.UUID) (*model.Wristband, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, invalid("code is required")
	}
	if err := requireID(eventID, "eventId"); err != nil {
		return nil, err
	}
	return s.wristbands.GetByCode(ctx, code, eventID)
}

// ListWristbands returns the wristbands of an existing event.
func (s *WristbandService) ListWristbands(ctx context.Context, eventID uuid.UUID) ([]model.Wristband, error) {
	if err := requireID(eventID, "eventId"); err != nil {
		return nil, err
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.wristbands.ListByEvent(ctx, eventID)
}

// SetSocial attaches a normalised social handle to a wristband.
func (s *WristbandService) SetSocial(ctx context.Context, id uuid.UUID, handle string) (*model.Wristband, error) {
	if err := requireID(id, "wristband id"); err != nil {
		return nil, err
	}
	h, err := NormalizeSocialHandle(handle)
	if err != nil {
		return nil, err
	}
	return s.wristbands.SetSocialHandle(ctx, id, h)
}

// DeleteWristband removes a wristband that has no transaction history.
func (s *WristbandService) DeleteWristband(ctx context.Context, id uuid.UUID) error {
	if err := requireID(id, "wristband id"); err != nil {
		return err
	}
	return s.wristbands.Delete(ctx, id)
}

// RedeemByCode is the storefront's direct top-up: it resolves the wristband by
// its printed code and credits every line item as one web top-up.
func (s *WristbandService) RedeemByCode(ctx context.Context, req model.RedeemByCodeRequest) error {
	items, err := mergeLineItems(req.LineItems)
	if err != nil {
		return err
	}
	w, err := s.LookupByCode(ctx, req.Code, req.EventID)
	if err != nil {
		return err
	}
	if err := s.ledger.TopUpBatch(ctx, w.ID, items, model.KindWebTopUp, nil); err != nil {
		return fmt.Errorf("redeem by code: %w", err)
	}
	return nil
}

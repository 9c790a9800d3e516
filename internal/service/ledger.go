package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/Shivanand-hulikatti/event-cashless/internal/model"
	"github.com/Shivanand-hulikatti/event-cashless/internal/repository"
	"github.com/google/uuid"
)

// LedgerService validates credit mutations before they reach the ledger.
type LedgerService struct {
	events     *repository.EventRepository
	wristbands *repository.WristbandRepository
	ledger     *repository.LedgerRepository
}

// NewLedgerService constructs a LedgerService.
func NewLedgerService(
	events *repository.EventRepository,
	wristbands *repository.WristbandRepository,
	ledger *repository.LedgerRepository,
) *LedgerService {
	return &LedgerService{events: events, wristbands: wristbands, ledger: ledger}
}

// TopUp credits quantity units of a product and returns the new balance.
func (s *LedgerService) TopUp(ctx context.Context, req model.TopUpRequest) (int, error) {
	if err := requireID(req.WristbandID, "wristbandId"); err != nil {
		return 0, err
	}
	if err := requireID(req.ProductID, "productId"); err != nil {
		return 0, err
	}
	if err := requireQuantity(req.Quantity, "quantity"); err != nil {
		return 0, err
	}

	balance, err := s.ledger.TopUp(ctx, req.WristbandID, req.ProductID, req.Quantity, model.KindTopUp, req.OperatorID)
	if err != nil {
		return 0, fmt.Errorf("top up: %w", err)
	}
	return balance, nil
}

// Debit consumes one unit and returns the new balance.
func (s *LedgerService) Debit(ctx context.Context, req model.DebitRequest) (int, error) {
	if err := requireID(req.WristbandID, "wristbandId"); err != nil {
		return 0, err
	}
	if err := requireID(req.ProductID, "productId"); err != nil {
		return 0, err
	}

	balance, err := s.ledger.Debit(ctx, req.WristbandID, req.ProductID, req.OperatorID)
	if err != nil {
		return 0, fmt.Errorf("debit: %w", err)
	}
	return balance, nil
}

// Balances lists every credit of a known wristband.
func (s *LedgerService) Balances(ctx context.Context, wristbandID uuid.UUID) ([]model.Balance, error) {
	if err := requireID(wristbandID, "wristband id"); err != nil {
		return nil, err
	}
	if _, err := s.wristbands.GetByID(ctx, wristbandID); err != nil {
		return nil, err
	}
	return s.ledger.Balances(ctx, wristbandID)
}

// Audit replays the event's transaction log and reports every credit row
// whose stored balance differs from the replayed one.
func (s *LedgerService) Audit(ctx context.Context, eventID uuid.UUID) ([]model.Discrepancy, error) {
	if err := requireID(eventID, "eventId"); err != nil {
		return nil, err
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	txs, err := s.ledger.EventTransactions(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}
	stored, err := s.ledger.EventCredits(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}
	return diffBalances(stored, model.ReplayBalances(txs)), nil
}

// Rebuild rewrites the event's credit rows from the transaction log.
func (s *LedgerService) Rebuild(ctx context.Context, eventID uuid.UUID) (int64, error) {
	if err := requireID(eventID, "eventId"); err != nil {
		return 0, err
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return 0, err
	}
	return s.ledger.RebuildCredits(ctx, eventID)
}

// diffBalances compares two balance maps; a key missing on one side counts
// as zero there. The result is sorted for stable output.
func diffBalances(stored, replayed map[model.CreditKey]int) []model.Discrepancy {
	out := []model.Discrepancy{}
	for k, v := range stored {
		if replayed[k] != v {
			out = append(out, model.Discrepancy{CreditKey: k, Stored: v, Replayed: replayed[k]})
		}
	}
	for k, v := range replayed {
		if _, ok := stored[k]; !ok && v != 0 {
			out = append(out, model.Discrepancy{CreditKey: k, Stored: 0, Replayed: v})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.WristbandID != b.WristbandID {
			return a.WristbandID.String() < b.WristbandID.String()
		}
		return a.ProductID.String() < b.ProductID.String()
	})
	return out
}

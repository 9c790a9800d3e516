package service

import (
	"context"
	"fmt"

	"github.com/Shivanand-hulikatti/event-cashless/internal/model"
	"github.com/Shivanand-hulikatti/event-cashless/internal/repository"
	"github.com/google/uuid"
)

// OrderService stages storefront orders and redeems them onto wristbands.
type OrderService struct {
	orders *repository.OrderRepository
}

// NewOrderService constructs an OrderService.
func NewOrderService(orders *repository.OrderRepository) *OrderService {
	return &OrderService{orders: orders}
}

// CreateOrder validates the cart, merges duplicate products and stages a
// pending order.
func (s *OrderService) CreateOrder(ctx context.Context, req model.CreateOrderRequest) (*model.Order, error) {
	if err := requireID(req.EventID, "eventId"); err != nil {
		return nil, err
	}
	items, err := mergeLineItems(req.LineItems)
	if err != nil {
		return nil, err
	}

	o, err := s.orders.Create(ctx, req.EventID, items)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return o, nil
}

// GetOrder returns an order with its line items.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error) {
	if err := requireID(id, "order id"); err != nil {
		return nil, err
	}
	return s.orders.Get(ctx, id)
}

// Redeem applies a pending order to a wristband exactly once.
func (s *OrderService) Redeem(ctx context.Context, orderID uuid.UUID, req model.RedeemOrderRequest) (*model.Order, error) {
	if err := requireID(orderID, "order id"); err != nil {
		return nil, err
	}
	if err := requireID(req.WristbandID, "wristbandId"); err != nil {
		return nil, err
	}

	o, err := s.orders.Redeem(ctx, orderID, req.WristbandID)
	if err != nil {
		return nil, fmt.Errorf("redeem order: %w", err)
	}
	return o, nil
}

package handler

import (
	"context"

	"github.com/Shivanand-hulikatti/event-cashless/internal/model"
	"github.com/google/uuid"
)

// EventService is the event and product catalogue.
type EventService interface {
	CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error)
	ListEvents(ctx context.Context, onlyPublic bool) ([]model.Event, error)
	SetVisibility(ctx context.Context, id uuid.UUID, req model.VisibilityRequest) error
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	ResetEvent(ctx context.Context, id uuid.UUID) (*model.ResetResult, error)
	CreateProduct(ctx context.Context, req model.CreateProductRequest) (*model.Product, error)
	ListProducts(ctx context.Context, eventID uuid.UUID) ([]model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// WristbandService is the wristband registry.
type WristbandService interface {
	Register(ctx context.Context, tag string, eventID uuid.UUID) (*model.Registration, error)
	LookupByCode(ctx context.Context, code string, eventID uuid.UUID) (*model.Wristband, error)
	ListWristbands(ctx context.Context, eventID uuid.UUID) ([]model.Wristband, error)
	SetSocial(ctx context.Context, id uuid.UUID, handle string) (*model.Wristband, error)
	DeleteWristband(ctx context.Context, id uuid.UUID) error
	RedeemByCode(ctx context.Context, req model.RedeemByCodeRequest) error
}

// LedgerService mutates and reads credit balances.
type LedgerService interface {
	TopUp(ctx context.Context, req model.TopUpRequest) (int, error)
	Debit(ctx context.Context, req model.DebitRequest) (int, error)
	Balances(ctx context.Context, wristbandID uuid.UUID) ([]model.Balance, error)
	Audit(ctx context.Context, eventID uuid.UUID) ([]model.Discrepancy, error)
}

// OrderService stages and redeems orders.
type OrderService interface {
	CreateOrder(ctx context.Context, req model.CreateOrderRequest) (*model.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error)
	Redeem(ctx context.Context, orderID uuid.UUID, req model.RedeemOrderRequest) (*model.Order, error)
}

// OperatorService manages operator accounts.
type OperatorService interface {
	CreateOperator(ctx context.Context, req model.CreateOperatorRequest) (*model.Operator, error)
	ListOperators(ctx context.Context, eventID uuid.UUID) ([]model.Operator, error)
	DeleteOperator(ctx context.Context, id uuid.UUID) error
	Login(ctx context.Context, req model.LoginRequest) (*model.Operator, error)
}

// ReportService serves the reporting engine.
type ReportService interface {
	Revenue(ctx context.Context, eventID uuid.UUID) (int64, error)
	ProductSales(ctx context.Context, eventID uuid.UUID) ([]model.ProductSales, error)
	OperatorActivity(ctx context.Context, eventID uuid.UUID) ([]model.OperatorActivity, error)
	Log(ctx context.Context, eventID uuid.UUID) ([]model.LogEntry, error)
}

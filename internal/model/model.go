// Package model defines the core domain types for the cashless event system.
package model

import (
	"time"

	"github.com/google/uuid"
)

// TransactionKind labels a ledger mutation in the transaction log.
type TransactionKind string

const (
	KindTopUp    TransactionKind = "top-up"
	KindDebit    TransactionKind = "debit"
	KindWebTopUp TransactionKind = "web-top-up"
)

// Valid reports whether k is one of the known kinds.
func (k TransactionKind) Valid() bool {
	switch k {
	case KindTopUp, KindDebit, KindWebTopUp:
		return true
	}
	return false
}

// IsTopUp reports whether the kind adds credit (and so counts as revenue).
func (k TransactionKind) IsTopUp() bool {
	return k == KindTopUp || k == KindWebTopUp
}

// OrderStatus is the lifecycle state of a staged order.
type OrderStatus string

const (
	OrderPending  OrderStatus = "pending"
	OrderRedeemed OrderStatus = "redeemed"
)

// DefaultAccentColor is applied to events created without one.
const DefaultAccentColor = "#0a84ff"

// Event is the root of every other entity.
type Event struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	AccentColor string    `json:"accentColor"`
	LogoURL     *string   `json:"logoUrl,omitempty"`
	Public      bool      `json:"public"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Product is something sold at an event, priced in cents.
type Product struct {
	ID         uuid.UUID `json:"id"`
	EventID    uuid.UUID `json:"eventId"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Wristband ties a physical NFC tag to a prepaid account within one event.
type Wristband struct {
	ID           uuid.UUID `json:"id"`
	EventID      uuid.UUID `json:"eventId"`
	Tag          string    `json:"tag"`
	Code         string    `json:"code"`
	SocialHandle *string   `json:"socialHandle,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Registration is the outcome of a register-or-find call.
type Registration struct {
	Wristband
	AlreadyRegistered bool `json:"alreadyRegistered"`
}

// Balance is one credit row joined with its product name.
type Balance struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
}

// Transaction is an immutable entry of the transaction log.
type Transaction struct {
	ID          int64           `json:"id"`
	EventID     uuid.UUID       `json:"eventId"`
	WristbandID uuid.UUID       `json:"wristbandId"`
	ProductID   uuid.UUID       `json:"productId"`
	Kind        TransactionKind `json:"kind"`
	Quantity    int             `json:"quantity"`
	OperatorID  *uuid.UUID      `json:"operatorId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// LineItem is a (product, quantity) pair of an order or a batch top-up.
type LineItem struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name,omitempty"`
	Quantity  int       `json:"quantity"`
}

// Order is a pre-paid cart redeemable once against a wristband.
type Order struct {
	ID          uuid.UUID   `json:"id"`
	EventID     uuid.UUID   `json:"eventId"`
	Status      OrderStatus `json:"status"`
	WristbandID *uuid.UUID  `json:"wristbandId,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	RedeemedAt  *time.Time  `json:"redeemedAt,omitempty"`
}

// OrderDetail is an order together with its line items.
type OrderDetail struct {
	Order     Order      `json:"order"`
	LineItems []LineItem `json:"lineItems"`
}

// Operator is a point-of-sale staff account.
type Operator struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"eventId"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Credential holds an operator's salted password hash.
type Credential struct {
	OperatorID   uuid.UUID `json:"-"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
}

// ─── Reporting rows ───────────────────────────────────────────────────────────

// ProductSales aggregates top-ups of one product.
type ProductSales struct {
	ProductID    uuid.UUID `json:"productId"`
	Name         string    `json:"name"`
	Quantity     int64     `json:"quantity"`
	RevenueCents int64     `json:"revenue"`
}

// OperatorActivity aggregates the transactions attributed to one operator.
type OperatorActivity struct {
	OperatorID      uuid.UUID `json:"operatorId"`
	Name            string    `json:"name"`
	Role            string    `json:"role"`
	TopUps          int64     `json:"topUps"`
	TopUpValueCents int64     `json:"topUpValue"`
	Debits          int64     `json:"debits"`
}

// LogEntry is a transaction joined with product, wristband and operator data.
type LogEntry struct {
	ID            int64           `json:"id"`
	CreatedAt     time.Time       `json:"createdAt"`
	Kind          TransactionKind `json:"kind"`
	Quantity      int             `json:"quantity"`
	Product       string          `json:"product"`
	PriceCents    int64           `json:"priceCents"`
	WristbandID   uuid.UUID       `json:"wristbandId"`
	WristbandCode string          `json:"wristbandCode"`
	Operator      *string         `json:"operator,omitempty"`
	OperatorRole  *string         `json:"operatorRole,omitempty"`
}

// TotalCents is quantity × unit price.
func (e LogEntry) TotalCents() int64 {
	return int64(e.Quantity) * e.PriceCents
}

// ResetResult counts the rows removed by an event reset.
type ResetResult struct {
	Credits      int64 `json:"credits"`
	Transactions int64 `json:"transactions"`
	Orders       int64 `json:"orders"`
	Wristbands   int64 `json:"wristbands"`
}

// CreditKey addresses one credit balance.
type CreditKey struct {
	WristbandID uuid.UUID `json:"wristbandId"`
	ProductID   uuid.UUID `json:"productId"`
}

// Discrepancy is a credit row that disagrees with the replayed log.
type Discrepancy struct {
	CreditKey
	Stored   int `json:"stored"`
	Replayed int `json:"replayed"`
}

// ReplayBalances folds a transaction log into per-key balances.
// Top-ups add their quantity; debits subtract theirs.
func ReplayBalances(txs []Transaction) map[CreditKey]int {
	out := make(map[CreditKey]int)
	for _, t := range txs {
		k := CreditKey{WristbandID: t.WristbandID, ProductID: t.ProductID}
		if t.Kind == KindDebit {
			out[k] -= t.Quantity
		} else {
			out[k] += t.Quantity
		}
	}
	return out
}

// ─── Request payloads ─────────────────────────────────────────────────────────

// CreateEventRequest is the payload for creating an event.
type CreateEventRequest struct {
	Name        string  `json:"name"`
	Date        string  `json:"date"`
	AccentColor string  `json:"accentColor"`
	LogoURL     *string `json:"logoUrl"`
}

// VisibilityRequest toggles an event's public flag.
type VisibilityRequest struct {
	Public *bool `json:"public"`
}

// CreateProductRequest is the payload for creating a product.
type CreateProductRequest struct {
	Name    string    `json:"name"`
	Price   int64     `json:"price"`
	EventID uuid.UUID `json:"eventId"`
}

// RegisterWristbandRequest registers a tag for an event.
type RegisterWristbandRequest struct {
	Tag     string    `json:"tag"`
	EventID uuid.UUID `json:"eventId"`
}

// SocialRequest sets a wristband's social handle.
type SocialRequest struct {
	Handle string `json:"handle"`
}

// TopUpRequest adds credit to a wristband.
type TopUpRequest struct {
	WristbandID uuid.UUID  `json:"wristbandId"`
	ProductID   uuid.UUID  `json:"productId"`
	Quantity    int        `json:"quantity"`
	OperatorID  *uuid.UUID `json:"operatorId"`
}

// DebitRequest consumes one unit of credit.
type DebitRequest struct {
	WristbandID uuid.UUID  `json:"wristbandId"`
	ProductID   uuid.UUID  `json:"productId"`
	OperatorID  *uuid.UUID `json:"operatorId"`
}

// CreateOrderRequest stages an order.
type CreateOrderRequest struct {
	EventID   uuid.UUID  `json:"eventId"`
	LineItems []LineItem `json:"lineItems"`
}

// RedeemOrderRequest applies an order to a wristband.
type RedeemOrderRequest struct {
	WristbandID uuid.UUID `json:"wristbandId"`
}

// RedeemByCodeRequest tops up a wristband addressed by its printed code.
type RedeemByCodeRequest struct {
	Code      string     `json:"code"`
	EventID   uuid.UUID  `json:"eventId"`
	LineItems []LineItem `json:"lineItems"`
}

// CreateOperatorRequest creates an operator account.
type CreateOperatorRequest struct {
	Name     string    `json:"name"`
	Password string    `json:"password"`
	Role     string    `json:"role"`
	EventID  uuid.UUID `json:"eventId"`
}

// LoginRequest authenticates an operator for an event.
type LoginRequest struct {
	Name     string    `json:"name"`
	Password string    `json:"password"`
	EventID  uuid.UUID `json:"eventId"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"errors"
	"fmt"
	"math"

	"github.com/Shivanand-hulikatti/event-cashless/internal/model"
	"github.com/google/uuid"
)

// ValidationError reports a missing or malformed input. It is raised before
// any mutation is attempted.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrAuthFailed is returned for an unknown operator or a wrong password.
var ErrAuthFailed = errors.New("invalid credentials")

// ErrRateLimited is returned when login attempts exceed the configured rate.
var ErrRateLimited = errors.New("too many login attempts")

// MaxQuantity is the largest unit count a single credit or line item can hold.
const MaxQuantity = math.MaxInt32

func requireQuantity(q int, field string) error {
	if q <= 0 {
		return invalid("%s must be a positive integer", field)
	}
	if q > MaxQuantity {
		return invalid("%s must not exceed %d", field, MaxQuantity)
	}
	return nil
}

func requireID(id uuid.UUID, field string) error {
	if id == uuid.Nil {
		return invalid("%s is required", field)
	}
	return nil
}

// mergeLineItems validates a cart and folds duplicate products into one line.
// The order of first appearance is preserved.
func mergeLineItems(items []model.LineItem) ([]model.LineItem, error) {
	if len(items) == 0 {
		return nil, invalid("at least one line item is required")
	}

	merged := make([]model.LineItem, 0, len(items))
	index := make(map[uuid.UUID]int, len(items))
	for _, it := range items {
		if it.ProductID == uuid.Nil {
			return nil, invalid("line item productId is required")
		}
		if err := requireQuantity(it.Quantity, "line item quantity"); err != nil {
			return nil, err
		}
		if i, ok := index[it.ProductID]; ok {
			if merged[i].Quantity > MaxQuantity-it.Quantity {
				return nil, invalid("line item quantity must not exceed %d", MaxQuantity)
			}
			merged[i].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(merged)
		merged = append(merged, model.LineItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return merged, nil
}

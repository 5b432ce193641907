package engine

import (
	"errors"
	"fmt"
)

// ErrEmptyQueue is returned by PopFront on an empty level. Callers inside the package check
// emptiness first, so it never reaches the public API.
var ErrEmptyQueue = errors.New("pop from empty price level")

type InvalidSideError struct {
	Value any
}

func (e *InvalidSideError) Error() string {
	return fmt.Sprintf("Invalid side: %v (must be BID or ASK)", e.Value)
}

type InvalidOrderSizeError struct {
	Size int64
}

func (e *InvalidOrderSizeError) Error() string {
	return fmt.Sprintf("Invalid order size: %d (must be positive)", e.Size)
}

type InvalidPriceError struct {
	Price float32
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("Invalid price: %v", e.Price)
}

type PriceLevelNotFoundError struct {
	Side  Side
	Price float32
}

func (e *PriceLevelNotFoundError) Error() string {
	return fmt.Sprintf("Price level not found: %s %v", e.Side, e.Price)
}

type OrderNotFoundError struct {
	OrderID int64
}

func (e *OrderNotFoundError) Error() string {
	return fmt.Sprintf("Order not found: %d", e.OrderID)
}

type DuplicateOrderError struct {
	OrderID int64
}

func (e *DuplicateOrderError) Error() string {
	return fmt.Sprintf("Order already resting: %d", e.OrderID)
}

type AccountNotFoundError struct {
	AccountID int64
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("Account not found: %d", e.AccountID)
}

// IsNotFound reports whether err is one of the stale-reference errors a caller can fix by
// resubmitting with corrected data.
func IsNotFound(err error) bool {
	var (
		levelErr   *PriceLevelNotFoundError
		orderErr   *OrderNotFoundError
		accountErr *AccountNotFoundError
	)
	return errors.As(err, &levelErr) || errors.As(err, &orderErr) || errors.As(err, &accountErr)
}

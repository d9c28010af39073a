package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrPasswordMissMatch = errors.New("password mismatch")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrUnknown           = errors.New("unknown error")

	ErrForbidden        = errors.New("forbidden")
	ErrOutOfStock       = errors.New("product out of stock")
	ErrZeroPrice        = errors.New("original price cannot be 0")
	ErrBusinessNotEmpty = errors.New("business still has products")
)

// InsufficientStockError возвращается при попытке заказать больше, чем есть
// на складе. Available - остаток на момент проверки (под блокировкой строки).
type InsufficientStockError struct {
	ProductID int64
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf(
		"insufficient stock for product %d: requested %d, available %d",
		e.ProductID,
		e.Requested,
		e.Available,
	)
}

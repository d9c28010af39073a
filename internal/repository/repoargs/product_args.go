package repoargs

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateProduct struct {
	Name                string
	Category            string
	OriginalPrice       decimal.Decimal
	NewPrice            decimal.Decimal
	PercentageDiscount  decimal.Decimal
	OfferExpirationDate time.Time
	Quantity            int64
	BusinessID          int64
}

type UpdateProduct struct {
	Name                string
	Category            string
	OriginalPrice       decimal.Decimal
	NewPrice            decimal.Decimal
	PercentageDiscount  decimal.Decimal
	OfferExpirationDate time.Time
	Quantity            int64
}

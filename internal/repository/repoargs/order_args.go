package repoargs

import (
	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateOrder struct {
	ProductID  int64
	UserID     int64
	Quantity   int64
	TotalPrice decimal.Decimal
	Status     domain.OrderStatusType
}

package domain

import (
	"github.com/shopspring/decimal"

	"time"
)

type User struct {
	ID         int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Username   string
	Email      string
	Password   string
	IsVerified bool
	Role       RoleType
}

type Business struct {
	ID          int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string
	City        string
	Region      string
	Description string
	Logo        string
	// OwnerID nil только у сентинельного Default Business.
	OwnerID *int64
}

type Product struct {
	ID                  int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
	Name                string
	Category            string
	OriginalPrice       decimal.Decimal
	NewPrice            decimal.Decimal
	PercentageDiscount  decimal.Decimal
	OfferExpirationDate time.Time
	Image               string
	DatePublished       time.Time
	Quantity            int64
	BusinessID          int64
}

type Order struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	ProductID int64
	UserID    int64
	Quantity  int64
	// TotalPrice - снепшот new_price * quantity на момент создания заказа.
	// После создания не пересчитывается, даже если цена продукта изменится.
	TotalPrice decimal.Decimal
	Status     OrderStatusType
}

// IsDefault сообщает, является ли бизнес сентинельным Default Business.
func (b *Business) IsDefault() bool {
	return b.Name == DefaultBusinessName && b.OwnerID == nil
}

// OwnedBy проверяет принадлежность бизнеса юзеру.
func (b *Business) OwnedBy(userID int64) bool {
	return b.OwnerID != nil && *b.OwnerID == userID
}

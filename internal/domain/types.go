package domain

type RoleType string

const (
	RoleCustomer      RoleType = "customer"
	RoleBusinessOwner RoleType = "business_owner"
	RoleAdmin         RoleType = "admin"
)

type OrderStatusType string

// Статусы заказа. Переходы между ними не ограничены: любой разрешенный по
// роли вызов может выставить любое значение.
const (
	OrderStatusPending    OrderStatusType = "pending"
	OrderStatusProcessing OrderStatusType = "processing"
	OrderStatusShipped    OrderStatusType = "shipped"
	OrderStatusDelivered  OrderStatusType = "delivered"
	OrderStatusCancelled  OrderStatusType = "cancelled"
)

// DefaultBusinessName имя сентинельного бизнеса, к которому прикрепляются
// продукты без явно указанного business_id.
const DefaultBusinessName = "Default Business"

func (r RoleType) Valid() bool {
	switch r {
	case RoleCustomer, RoleBusinessOwner, RoleAdmin:
		return true
	}
	return false
}

func (s OrderStatusType) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

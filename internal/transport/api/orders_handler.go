package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/service"
)

type OrdersHandler struct {
	orderSvs OrderServicer
}

func NewOrdersHandler(orderSvs OrderServicer) *OrdersHandler {
	return &OrdersHandler{
		orderSvs: orderSvs,
	}
}

type OrderResponse struct {
	ID         int64                  `json:"id"`
	ProductID  int64                  `json:"product_id"`
	Quantity   int64                  `json:"quantity"`
	TotalPrice float64                `json:"total_price"`
	Status     domain.OrderStatusType `json:"status"`
	CreatedAt  time.Time              `json:"created_at"`
}

func newOrderResponse(o *domain.Order) OrderResponse {
	return OrderResponse{
		ID:         o.ID,
		ProductID:  o.ProductID,
		Quantity:   o.Quantity,
		TotalPrice: o.TotalPrice.InexactFloat64(),
		Status:     o.Status,
		CreatedAt:  o.CreatedAt,
	}
}

func newOrderResponses(orders []domain.Order) []OrderResponse {
	return lo.Map(orders, func(order domain.Order, _ int) OrderResponse {
		return newOrderResponse(&order)
	})
}

type OrderCreateParams struct {
	ProductID int64 `binding:"required"        json:"product_id"`
	Quantity  int64 `binding:"omitempty,min=1" json:"quantity"`
}

// Create POST OrderGroup. Только для покупателей. Остаток продукта
// декрементируется, цена фиксируется на момент заказа.
func (o *OrdersHandler) Create(c *gin.Context) {
	var params OrderCreateParams
	if !bindJSONParams(c, &params) {
		return
	}
	if params.Quantity == 0 {
		params.Quantity = 1
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, createErr := o.orderSvs.Create(ctx, getCurrentUser(c), service.CreateOrderArgs{
		ProductID: params.ProductID,
		Quantity:  params.Quantity,
	})
	if createErr != nil {
		if errors.Is(createErr, domain.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		abortWithDomainError(c, createErr)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order": newOrderResponse(order)})
}

// Index GET OrderGroup. Пагинированные заказы вызывающего.
func (o *OrdersHandler) Index(c *gin.Context) {
	page, pageErr := parsePage(c)
	if pageErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": pageErr.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	orders, err := o.orderSvs.ListByUser(ctx, getCurrentUser(c), page)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": newOrderResponses(orders)})
}

type OrderStatusParams struct {
	Status domain.OrderStatusType `binding:"required,oneof=pending processing shipped delivered cancelled" form:"status"`
}

// UpdateStatus PUT OrderGroup + /status/:id. Только для владельца бизнеса,
// которому принадлежит продукт заказа. Новый статус передается query параметром.
func (o *OrdersHandler) UpdateStatus(c *gin.Context) {
	id, idErr := parseIDParam(c)
	if idErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": idErr.Error()})
		return
	}

	var params OrderStatusParams
	if bindErr := c.ShouldBindQuery(&params); bindErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid order status"})
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, updErr := o.orderSvs.UpdateStatus(ctx, getCurrentUser(c), id, params.Status)
	if updErr != nil {
		if errors.Is(updErr, domain.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		abortWithDomainError(c, updErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": newOrderResponse(order)})
}

type OrderUpdateParams struct {
	Quantity int64 `binding:"required,min=1" json:"quantity"`
}

// Update PUT OrderGroup + /:id. Покупатель меняет количество в своем заказе.
// Снепшот total_price и остаток продукта при этом не трогаются.
func (o *OrdersHandler) Update(c *gin.Context) {
	id, idErr := parseIDParam(c)
	if idErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": idErr.Error()})
		return
	}

	var params OrderUpdateParams
	if !bindJSONParams(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, updErr := o.orderSvs.UpdateQuantity(ctx, getCurrentUser(c), id, params.Quantity)
	if updErr != nil {
		if errors.Is(updErr, domain.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		abortWithDomainError(c, updErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": newOrderResponse(order)})
}

// Delete DELETE OrderGroup + /:id. Только для покупателя заказа,
// остаток продукта не восстанавливается.
func (o *OrdersHandler) Delete(c *gin.Context) {
	id, idErr := parseIDParam(c)
	if idErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": idErr.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if delErr := o.orderSvs.Delete(ctx, getCurrentUser(c), id); delErr != nil {
		if errors.Is(delErr, domain.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		abortWithDomainError(c, delErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": "Order deleted"})
}

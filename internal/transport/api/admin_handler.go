package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/groph-market/internal/domain"
)

// AdminHandler проксирует админские операции, проверка роли в сервисном слое.
type AdminHandler struct {
	adminSvs AdminServicer
}

func NewAdminHandler(adminSvs AdminServicer) *AdminHandler {
	return &AdminHandler{
		adminSvs: adminSvs,
	}
}

// Users GET AdminGroup. Пагинированный список всех юзеров.
func (h *AdminHandler) Users(c *gin.Context) {
	page, pageErr := parsePage(c)
	if pageErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": pageErr.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	users, err := h.adminSvs.ListUsers(ctx, getCurrentUser(c), page)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	response := make([]UserResponse, len(users))
	for i := range users {
		response[i] = newUserResponse(&users[i])
	}
	c.JSON(http.StatusOK, gin.H{"users": response})
}

// DeleteUser DELETE AdminGroup + /:id.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, idErr := parseIDParam(c)
	if idErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": idErr.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if delErr := h.adminSvs.DeleteUser(ctx, getCurrentUser(c), id); delErr != nil {
		if errors.Is(delErr, domain.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		abortWithDomainError(c, delErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": "User deleted"})
}

// Products GET AdminGroup + /get_products.
func (h *AdminHandler) Products(c *gin.Context) {
	page, pageErr := parsePage(c)
	if pageErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": pageErr.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	products, err := h.adminSvs.ListProducts(ctx, getCurrentUser(c), page)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": newProductResponses(products)})
}

// DeleteProduct DELETE AdminGroup + /delete_products/:id.
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	id, idErr := parseIDParam(c)
	if idErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": idErr.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if delErr := h.adminSvs.DeleteProduct(ctx, getCurrentUser(c), id); delErr != nil {
		if errors.Is(delErr, domain.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		abortWithDomainError(c, delErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": "Product deleted"})
}

// Orders GET AdminGroup + /get_orders.
func (h *AdminHandler) Orders(c *gin.Context) {
	page, pageErr := parsePage(c)
	if pageErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": pageErr.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	orders, err := h.adminSvs.ListOrders(ctx, getCurrentUser(c), page)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": newOrderResponses(orders)})
}

type AdminOrderStatusParams struct {
	NewStatus domain.OrderStatusType `binding:"required,oneof=pending processing shipped delivered cancelled" form:"new_status"`
}

// UpdateOrderStatus PUT AdminGroup + /:id. Переопределение статуса заказа
// без проверки владения, новый статус передается query параметром new_status.
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	id, idErr := parseIDParam(c)
	if idErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": idErr.Error()})
		return
	}

	var params AdminOrderStatusParams
	if bindErr := c.ShouldBindQuery(&params); bindErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid order status"})
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, updErr := h.adminSvs.SetOrderStatus(ctx, getCurrentUser(c), id, params.NewStatus)
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

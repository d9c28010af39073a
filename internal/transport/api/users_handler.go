package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/internal/service"
)

type UsersHandler struct {
	userService     UserServicer
	businessService BusinessServicer
	orderService    OrderServicer
}

func NewUsersHandler(
	userService UserServicer,
	businessService BusinessServicer,
	orderService OrderServicer,
) *UsersHandler {
	return &UsersHandler{
		userService:     userService,
		businessService: businessService,
		orderService:    orderService,
	}
}

type UserRegisterParams struct {
	Username string          `binding:"required,min=6,max=25,username_format"       json:"username"`
	Email    string          `binding:"required,email,max_bytes=255"                json:"email"`
	Password string          `binding:"required,password_strength,max_bytes=72"     json:"password"`
	Role     domain.RoleType `binding:"required,oneof=customer business_owner admin" json:"role"`
}

type UserResponse struct {
	ID         int64           `json:"id"`
	Username   string          `json:"username"`
	Email      string          `json:"email"`
	Role       domain.RoleType `json:"role"`
	IsVerified bool            `json:"is_verified"`
	CreatedAt  time.Time       `json:"created_at"`
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

// Register POST RegistrationRoute. Регистрирует пользователя и отправляет
// письмо подтверждения email (вне транзакции регистрации).
func (h *UsersHandler) Register(c *gin.Context) {
	var params UserRegisterParams
	if !bindJSONParams(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, createErr := h.userService.Register(ctx, service.RegisterUserArgs{
		Username: params.Username,
		Email:    params.Email,
		Password: params.Password,
		Role:     params.Role,
	})
	if createErr != nil {
		if errors.Is(createErr, domain.ErrDuplicateKey) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Username or email already exists"})
			return
		}
		_ = c.AbortWithError(http.StatusBadRequest, createErr).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "ok",
		"data": fmt.Sprintf(
			"Hello %s, thanks for choosing our services. Please check your email to confirm your registration",
			user.Username,
		),
	})
}

// Me POST UserGroup + /me. Профиль текущего юзера, состав ответа зависит от роли:
// владельцу бизнеса возвращаются его бизнесы с продуктами, покупателю - заказы.
func (h *UsersHandler) Me(c *gin.Context) {
	user := getCurrentUser(c)

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	switch user.Role {
	case domain.RoleBusinessOwner:
		businesses, err := h.businessService.ListMine(ctx, user)
		if err != nil {
			abortWithDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user":       newUserResponse(user),
			"businesses": newBusinessWithProductsResponses(businesses),
		})
	case domain.RoleCustomer:
		orders, err := h.orderService.ListByUser(ctx, user, repoargs.Page{
			Number: defaultPageNumber,
			Size:   defaultPageSize,
		})
		if err != nil {
			abortWithDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user":   newUserResponse(user),
			"orders": newOrderResponses(orders),
		})
	default:
		c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
	}
}

type UserUpdateParams struct {
	Username *string `binding:"omitempty,min=6,max=25,username_format"   json:"username"`
	Password *string `binding:"omitempty,password_strength,max_bytes=72" json:"password"`
}

// Update PUT UserGroup. Меняет юзернейм и/или пароль текущего юзера.
func (h *UsersHandler) Update(c *gin.Context) {
	var params UserUpdateParams
	if !bindJSONParams(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	user, updErr := h.userService.UpdateProfile(ctx, getCurrentUser(c), service.UpdateProfileArgs{
		Username: params.Username,
		Password: params.Password,
	})
	if updErr != nil {
		if errors.Is(updErr, domain.ErrDuplicateKey) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
			return
		}
		abortWithDomainError(c, updErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}

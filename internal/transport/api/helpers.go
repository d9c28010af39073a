package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/internal/transport/api/middlewares"
)

const (
	defaultPageNumber int64 = 1
	defaultPageSize   int64 = 20
	maxPageSize       int64 = 100
)

var errInvalidPagination = errors.New("page and page_size must be positive integers")

// getCurrentUser достает юзера, положенного в контекст middleware'ой AuthRequired.
func getCurrentUser(c *gin.Context) *domain.User {
	user, _ := c.MustGet(middlewares.CurrentUserKey).(*domain.User)
	return user
}

// parsePage читает параметры пагинации page и page_size из query.
// Оба параметра 1-индексные и строго положительные.
func parsePage(c *gin.Context) (repoargs.Page, error) {
	page := repoargs.Page{Number: defaultPageNumber, Size: defaultPageSize}

	if raw := c.Query("page"); raw != "" {
		number, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || number < 1 {
			return repoargs.Page{}, errInvalidPagination
		}
		page.Number = number
	}
	if raw := c.Query("page_size"); raw != "" {
		size, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || size < 1 {
			return repoargs.Page{}, errInvalidPagination
		}
		if size > maxPageSize {
			size = maxPageSize
		}
		page.Size = size
	}
	return page, nil
}

func parseIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// abortWithDomainError транслирует ошибки доменного слоя в http статусы.
// Неизвестные ошибки (включая сбои персистентности) отдаются как 400
// с обезличенным текстом, детали уходят только в лог.
func abortWithDomainError(c *gin.Context, err error) {
	var stockErr *domain.InsufficientStockError

	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, domain.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
	case errors.Is(err, domain.ErrDuplicateKey):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Already exists"})
	case errors.Is(err, domain.ErrZeroPrice):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Original price cannot be 0"})
	case errors.Is(err, domain.ErrOutOfStock):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Product out of stock"})
	case errors.As(err, &stockErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": stockErr.Error()})
	case errors.Is(err, domain.ErrBusinessNotEmpty):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Business still has products"})
	default:
		_ = c.AbortWithError(http.StatusBadRequest, err).SetType(gin.ErrorTypePrivate)
	}
}

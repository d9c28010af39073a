package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/service"
	"github.com/fsdevblog/groph-market/internal/storage/images"
)

type BusinessHandler struct {
	businessSvs BusinessServicer
	store       *images.Store
	baseURL     string
}

func NewBusinessHandler(businessSvs BusinessServicer, store *images.Store, baseURL string) *BusinessHandler {
	return &BusinessHandler{
		businessSvs: businessSvs,
		store:       store,
		baseURL:     baseURL,
	}
}

type BusinessResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	City        string `json:"city"`
	Region      string `json:"region"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
	OwnerID     *int64 `json:"owner_id"`
}

func newBusinessResponse(b *domain.Business) BusinessResponse {
	return BusinessResponse{
		ID:          b.ID,
		Name:        b.Name,
		City:        b.City,
		Region:      b.Region,
		Description: b.Description,
		Logo:        b.Logo,
		OwnerID:     b.OwnerID,
	}
}

type BusinessWithProductsResponse struct {
	Business BusinessResponse  `json:"business"`
	Products []ProductResponse `json:"products"`
}

func newBusinessWithProductsResponse(bp *service.BusinessWithProducts) BusinessWithProductsResponse {
	return BusinessWithProductsResponse{
		Business: newBusinessResponse(&bp.Business),
		Products: newProductResponses(bp.Products),
	}
}

func newBusinessWithProductsResponses(items []service.BusinessWithProducts) []BusinessWithProductsResponse {
	return lo.Map(items, func(item service.BusinessWithProducts, _ int) BusinessWithProductsResponse {
		return newBusinessWithProductsResponse(&item)
	})
}

type BusinessParams struct {
	Name        string `binding:"required,max_bytes=255" json:"name"`
	City        string `binding:"max_bytes=255"          json:"city"`
	Region      string `binding:"max_bytes=255"          json:"region"`
	Description string `binding:"max_bytes=1000"         json:"description"`
}

// Create POST BusinessGroup. Только для роли business_owner,
// вызывающий становится владельцем.
func (h *BusinessHandler) Create(c *gin.Context) {
	var params BusinessParams
	if !bindJSONParams(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	business, createErr := h.businessSvs.Create(ctx, getCurrentUser(c), service.CreateBusinessArgs{
		Name:        params.Name,
		City:        params.City,
		Region:      params.Region,
		Description: params.Description,
	})
	if createErr != nil {
		if errors.Is(createErr, domain.ErrDuplicateKey) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Business name already exists"})
			return
		}
		abortWithDomainError(c, createErr)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"business": newBusinessResponse(business)})
}

// Update PUT BusinessGroup + /:id. Только для владельца бизнеса.
func (h *BusinessHandler) Update(c *gin.Context) {
	id, idErr := parseIDParam(c)
	if idErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": idErr.Error()})
		return
	}

	var params BusinessParams
	if !bindJSONParams(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	business, updErr := h.businessSvs.Update(ctx, getCurrentUser(c), id, service.UpdateBusinessArgs{
		Name:        params.Name,
		City:        params.City,
		Region:      params.Region,
		Description: params.Description,
	})
	if updErr != nil {
		abortWithDomainError(c, updErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"business": newBusinessResponse(business)})
}

// Delete DELETE BusinessGroup + /:id. Бизнес с продуктами удалить нельзя.
func (h *BusinessHandler) Delete(c *gin.Context) {
	id, idErr := parseIDParam(c)
	if idErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": idErr.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if delErr := h.businessSvs.Delete(ctx, getCurrentUser(c), id); delErr != nil {
		abortWithDomainError(c, delErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": "Business deleted"})
}

// Me GET BusinessGroup + /me. Бизнесы вызывающего вместе с их продуктами.
func (h *BusinessHandler) Me(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	businesses, err := h.businessSvs.ListMine(ctx, getCurrentUser(c))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"businesses": newBusinessWithProductsResponses(businesses)})
}

// Default GET BusinessGroup + /default. Общий Default Business с продуктами.
func (h *BusinessHandler) Default(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	business, err := h.businessSvs.GetDefault(ctx, getCurrentUser(c))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newBusinessWithProductsResponse(business))
}

// UploadLogo POST BusinessGroup + /business_logo/:id. Как загрузка картинки
// продукта, только для логотипа бизнеса.
func (h *BusinessHandler) UploadLogo(c *gin.Context) {
	id, idErr := parseIDParam(c)
	if idErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": idErr.Error()})
		return
	}

	filename, ok := saveUploadedImage(c, h.store)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if attachErr := h.businessSvs.AttachLogo(ctx, getCurrentUser(c), id, filename); attachErr != nil {
		_ = h.store.Remove(filename)
		abortWithDomainError(c, attachErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"file_url": fileURL(h.baseURL, filename),
	})
}

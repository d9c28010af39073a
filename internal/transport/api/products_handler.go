package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/service"
	"github.com/fsdevblog/groph-market/internal/storage/images"
)

type ProductsHandler struct {
	productSvs ProductServicer
	store      *images.Store
	baseURL    string
}

func NewProductsHandler(productSvs ProductServicer, store *images.Store, baseURL string) *ProductsHandler {
	return &ProductsHandler{
		productSvs: productSvs,
		store:      store,
		baseURL:    baseURL,
	}
}

type ProductResponse struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	Category            string    `json:"category"`
	OriginalPrice       float64   `json:"original_price"`
	NewPrice            float64   `json:"new_price"`
	PercentageDiscount  float64   `json:"percentage_discount"`
	OfferExpirationDate time.Time `json:"offer_expiration_date"`
	Quantity            int64     `json:"quantity"`
	Image               string    `json:"image"`
	DatePublished       time.Time `json:"date_published"`
	BusinessID          int64     `json:"business_id"`
}

func newProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:                  p.ID,
		Name:                p.Name,
		Category:            p.Category,
		OriginalPrice:       p.OriginalPrice.InexactFloat64(),
		NewPrice:            p.NewPrice.InexactFloat64(),
		PercentageDiscount:  p.PercentageDiscount.InexactFloat64(),
		OfferExpirationDate: p.OfferExpirationDate,
		Quantity:            p.Quantity,
		Image:               p.Image,
		DatePublished:       p.DatePublished,
		BusinessID:          p.BusinessID,
	}
}

func newProductResponses(products []domain.Product) []ProductResponse {
	return lo.Map(products, func(product domain.Product, _ int) ProductResponse {
		return newProductResponse(&product)
	})
}

type ProductCreateParams struct {
	Name                string          `binding:"required,max_bytes=255" json:"name"`
	Category            string          `binding:"required,max_bytes=255" json:"category"`
	OriginalPrice       decimal.Decimal `binding:"required"               json:"original_price"`
	NewPrice            decimal.Decimal `binding:"required"               json:"new_price"`
	OfferExpirationDate time.Time       `json:"offer_expiration_date"`
	Quantity            int64           `binding:"min=0"                  json:"quantity"`
	BusinessID          *int64          `json:"business_id"`
}

// Create POST ProductGroup + /products. Только для владельцев бизнесов.
// Без business_id продукт прикрепляется к общему Default Business.
func (h *ProductsHandler) Create(c *gin.Context) {
	var params ProductCreateParams
	if !bindJSONParams(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	product, createErr := h.productSvs.Create(ctx, getCurrentUser(c), service.CreateProductArgs{
		Name:                params.Name,
		Category:            params.Category,
		OriginalPrice:       params.OriginalPrice,
		NewPrice:            params.NewPrice,
		OfferExpirationDate: params.OfferExpirationDate,
		Quantity:            params.Quantity,
		BusinessID:          params.BusinessID,
	})
	if createErr != nil {
		if errors.Is(createErr, domain.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Business not found"})
			return
		}
		abortWithDomainError(c, createErr)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": newProductResponse(product)})
}

type ProductUpdateParams struct {
	Name                string          `binding:"required,max_bytes=255" json:"name"`
	Category            string          `binding:"required,max_bytes=255" json:"category"`
	OriginalPrice       decimal.Decimal `binding:"required"               json:"original_price"`
	NewPrice            decimal.Decimal `binding:"required"               json:"new_price"`
	OfferExpirationDate time.Time       `json:"offer_expiration_date"`
	Quantity            int64           `binding:"min=0"                  json:"quantity"`
}

// Update PUT ProductGroup + /:id. Только для владельца бизнеса продукта.
func (h *ProductsHandler) Update(c *gin.Context) {
	id, idErr := parseIDParam(c)
	if idErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": idErr.Error()})
		return
	}

	var params ProductUpdateParams
	if !bindJSONParams(c, &params) {
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	product, updErr := h.productSvs.Update(ctx, getCurrentUser(c), id, service.UpdateProductArgs{
		Name:                params.Name,
		Category:            params.Category,
		OriginalPrice:       params.OriginalPrice,
		NewPrice:            params.NewPrice,
		OfferExpirationDate: params.OfferExpirationDate,
		Quantity:            params.Quantity,
	})
	if updErr != nil {
		abortWithDomainError(c, updErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": newProductResponse(product)})
}

// Delete DELETE ProductGroup + /:id.
func (h *ProductsHandler) Delete(c *gin.Context) {
	id, idErr := parseIDParam(c)
	if idErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": idErr.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if delErr := h.productSvs.Delete(ctx, getCurrentUser(c), id); delErr != nil {
		abortWithDomainError(c, delErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": "Product deleted"})
}

// Index GET ProductGroup. Публичный пагинированный список продуктов.
func (h *ProductsHandler) Index(c *gin.Context) {
	page, pageErr := parsePage(c)
	if pageErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": pageErr.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	products, err := h.productSvs.List(ctx, page)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": newProductResponses(products)})
}

// Show GET ProductGroup + /:id. Продукт вместе с данными бизнеса и владельца.
func (h *ProductsHandler) Show(c *gin.Context) {
	id, idErr := parseIDParam(c)
	if idErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": idErr.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	details, err := h.productSvs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product":         newProductResponse(&details.Product),
		"business":        newBusinessResponse(&details.Business),
		"owner_email":     details.OwnerEmail,
		"owner_join_date": details.OwnerJoinDate,
	})
}

// UploadImage POST ProductGroup + /product_image/:id. Принимает multipart
// файл jpg/png, сохраняет его под случайным именем и привязывает к продукту.
func (h *ProductsHandler) UploadImage(c *gin.Context) {
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

	if attachErr := h.productSvs.AttachImage(ctx, getCurrentUser(c), id, filename); attachErr != nil {
		// файл без записи в базе осиротеет, подчищаем.
		_ = h.store.Remove(filename)
		abortWithDomainError(c, attachErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"file_url": fileURL(h.baseURL, filename),
	})
}

// bindJSONParams биндит json тело запроса, сам отвечая клиенту при ошибке.
func bindJSONParams(c *gin.Context, params any) bool {
	if bindErr := c.ShouldBindJSON(params); bindErr != nil {
		var valErrs validator.ValidationErrors
		if errors.As(bindErr, &valErrs) {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": valErrs.Error()})
			return false
		}
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).
			SetType(gin.ErrorTypeBind)
		return false
	}
	return true
}

// saveUploadedImage достает multipart файл из поля file и пишет его в store.
// При ошибке сам отвечает клиенту и возвращает ok=false.
func saveUploadedImage(c *gin.Context, store *images.Store) (string, bool) {
	fileHeader, fhErr := c.FormFile("file")
	if fhErr != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return "", false
	}

	src, openErr := fileHeader.Open()
	if openErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, openErr).SetType(gin.ErrorTypePrivate)
		return "", false
	}
	defer src.Close() //nolint:errcheck

	filename, saveErr := store.Save(src, fileHeader.Filename)
	if saveErr != nil {
		if errors.Is(saveErr, images.ErrUnsupportedExtension) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": images.ErrUnsupportedExtension.Error()})
			return "", false
		}
		_ = c.AbortWithError(http.StatusBadRequest, saveErr).SetType(gin.ErrorTypePrivate)
		return "", false
	}
	return filename, true
}

func fileURL(baseURL, filename string) string {
	return baseURL + StaticImagesRoute + "/" + filename
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/internal/service"
	"github.com/fsdevblog/groph-market/internal/transport/api/testutils"
)

type ProductsHandlerTestSuite struct {
	handlerSuite
	owner *domain.User
}

func TestProductsHandlerSuite(t *testing.T) {
	suite.Run(t, new(ProductsHandlerTestSuite))
}

func (s *ProductsHandlerTestSuite) SetupTest() {
	s.handlerSuite.SetupTest()
	s.owner = &domain.User{ID: 1, Username: "shopkeeper", Role: domain.RoleBusinessOwner}
}

func (s *ProductsHandlerTestSuite) request(method, target string, params map[string]any) *http.Response {
	opts := []func(*testutils.RequestOptions){
		testutils.WithHeader("Authorization", s.authHeader(s.owner)),
	}

	args := testutils.RequestArgs{
		Router: s.router,
		Method: method,
		URL:    target,
	}
	if params != nil {
		payload, marshalErr := json.Marshal(params)
		s.Require().NoError(marshalErr)
		args.Body = bytes.NewReader(payload)
		opts = append(opts, testutils.WithHeader("Content-Type", "application/json"))
	}

	resp, err := testutils.MakeRequest(args, opts...)
	s.Require().NoError(err)
	return resp
}

// uploadImage шлет multipart запрос с png картинкой в поле file.
func (s *ProductsHandlerTestSuite) uploadImage(target, filename string) *http.Response {
	var encoded bytes.Buffer
	s.Require().NoError(png.Encode(&encoded, image.NewRGBA(image.Rect(0, 0, 32, 32))))

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, partErr := form.CreateFormFile("file", filename)
	s.Require().NoError(partErr)
	_, writeErr := part.Write(encoded.Bytes())
	s.Require().NoError(writeErr)
	s.Require().NoError(form.Close())

	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    target,
		Body:   &body,
	},
		testutils.WithHeader("Authorization", s.authHeader(s.owner)),
		testutils.WithHeader("Content-Type", form.FormDataContentType()),
	)
	s.Require().NoError(err)
	return resp
}

func testProduct() *domain.Product {
	return &domain.Product{
		ID:                 7,
		Name:               "Mechanical keyboard",
		Category:           "electronics",
		OriginalPrice:      decimal.NewFromInt(100),
		NewPrice:           decimal.NewFromInt(75),
		PercentageDiscount: decimal.NewFromInt(25),
		Quantity:           5,
		Image:              "productdefault.jpg",
		BusinessID:         10,
	}
}

func (s *ProductsHandlerTestSuite) TestIndex() {
	s.productSvc.EXPECT().
		List(gomock.Any(), gomock.Eq(repoargs.Page{Number: 1, Size: 20})).
		Return([]domain.Product{*testProduct()}, nil)

	// каталог публичный, без авторизации.
	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    ProductGroup + "/",
	})
	s.Require().NoError(err)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	body := s.decodeBody(resp)
	products, ok := body["products"].([]any)
	s.Require().True(ok)
	s.Require().Len(products, 1)

	product, castOk := products[0].(map[string]any)
	s.Require().True(castOk)
	s.Equal("Mechanical keyboard", product["name"])
	s.InDelta(25.0, product["percentage_discount"], 0.001)
}

func (s *ProductsHandlerTestSuite) TestIndexPageSizeCapped() {
	s.productSvc.EXPECT().
		List(gomock.Any(), gomock.Eq(repoargs.Page{Number: 3, Size: 100})).
		Return([]domain.Product{}, nil)

	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    ProductGroup + "/?page=3&page_size=500",
	})
	s.Require().NoError(err)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
}

func (s *ProductsHandlerTestSuite) TestShow() {
	product := testProduct()
	s.productSvc.EXPECT().
		Get(gomock.Any(), product.ID).
		Return(&service.ProductDetails{
			Product:    *product,
			Business:   domain.Business{ID: 10, Name: "Keys and co"},
			OwnerEmail: "owner@example.com",
		}, nil)

	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    fmt.Sprintf("%s/%d", ProductGroup, product.ID),
	})
	s.Require().NoError(err)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	body := s.decodeBody(resp)
	s.Equal("owner@example.com", body["owner_email"])

	business, ok := body["business"].(map[string]any)
	s.Require().True(ok)
	s.Equal("Keys and co", business["name"])
}

func (s *ProductsHandlerTestSuite) TestShowNotFound() {
	s.productSvc.EXPECT().
		Get(gomock.Any(), int64(404)).
		Return(nil, fmt.Errorf("getting product: %w", domain.ErrRecordNotFound))

	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    ProductGroup + "/404",
	})
	s.Require().NoError(err)
	s.Require().Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal("Product not found", s.decodeBody(resp)["error"])
}

func (s *ProductsHandlerTestSuite) TestCreate() {
	product := testProduct()
	s.productSvc.EXPECT().
		Create(gomock.Any(), gomock.Eq(s.owner), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *domain.User, args service.CreateProductArgs) (*domain.Product, error) {
			s.Equal("Mechanical keyboard", args.Name)
			s.Nil(args.BusinessID)
			return product, nil
		})

	resp := s.request(http.MethodPost, ProductGroup+"/products", map[string]any{
		"name":           "Mechanical keyboard",
		"category":       "electronics",
		"original_price": 100,
		"new_price":      75,
		"quantity":       5,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	body := s.decodeBody(resp)
	created, ok := body["product"].(map[string]any)
	s.Require().True(ok)
	s.InDelta(25.0, created["percentage_discount"], 0.001)
}

func (s *ProductsHandlerTestSuite) TestCreateBusinessNotFound() {
	s.productSvc.EXPECT().
		Create(gomock.Any(), gomock.Eq(s.owner), gomock.Any()).
		Return(nil, fmt.Errorf("creating product: %w", domain.ErrRecordNotFound))

	resp := s.request(http.MethodPost, ProductGroup+"/products", map[string]any{
		"name":           "Mechanical keyboard",
		"category":       "electronics",
		"original_price": 100,
		"new_price":      75,
		"business_id":    42,
	})
	s.Require().Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal("Business not found", s.decodeBody(resp)["error"])
}

func (s *ProductsHandlerTestSuite) TestCreateUnauthorized() {
	s.productSvc.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	payload, marshalErr := json.Marshal(map[string]any{
		"name":           "Mechanical keyboard",
		"category":       "electronics",
		"original_price": 100,
		"new_price":      75,
	})
	s.Require().NoError(marshalErr)

	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    ProductGroup + "/products",
		Body:   bytes.NewReader(payload),
	}, testutils.WithHeader("Content-Type", "application/json"))
	s.Require().NoError(err)
	s.Require().Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *ProductsHandlerTestSuite) TestUploadImage() {
	var savedName string
	s.productSvc.EXPECT().
		AttachImage(gomock.Any(), gomock.Eq(s.owner), int64(7), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *domain.User, _ int64, filename string) error {
			savedName = filename
			return nil
		})

	resp := s.uploadImage(ProductGroup+"/product_image/7", "photo.png")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	body := s.decodeBody(resp)
	s.Equal("http://localhost:8080"+StaticImagesRoute+"/"+savedName, body["file_url"])

	_, statErr := os.Stat(filepath.Join(s.imageDir, savedName))
	s.Require().NoError(statErr)
}

func (s *ProductsHandlerTestSuite) TestUploadImageUnsupportedExtension() {
	s.productSvc.EXPECT().AttachImage(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	resp := s.uploadImage(ProductGroup+"/product_image/7", "photo.webp")
	s.Require().Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("File extension not supported", s.decodeBody(resp)["error"])

	entries, readErr := os.ReadDir(s.imageDir)
	s.Require().NoError(readErr)
	s.Empty(entries)
}

func (s *ProductsHandlerTestSuite) TestUploadImageMissingFile() {
	s.productSvc.EXPECT().AttachImage(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	resp := s.request(http.MethodPost, ProductGroup+"/product_image/7", map[string]any{})
	s.Require().Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("File is required", s.decodeBody(resp)["error"])
}

func (s *ProductsHandlerTestSuite) TestUploadImageForeignProduct() {
	s.productSvc.EXPECT().
		AttachImage(gomock.Any(), gomock.Eq(s.owner), int64(7), gomock.Any()).
		Return(fmt.Errorf("attaching product image: %w", domain.ErrForbidden))

	resp := s.uploadImage(ProductGroup+"/product_image/7", "photo.png")
	s.Require().Equal(http.StatusForbidden, resp.StatusCode)

	// осиротевший файл подчищен.
	entries, readErr := os.ReadDir(s.imageDir)
	s.Require().NoError(readErr)
	s.Empty(entries)
}

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/internal/service"
	"github.com/fsdevblog/groph-market/internal/transport/api/testutils"
)

type OrdersHandlerTestSuite struct {
	handlerSuite
	customer *domain.User
}

func TestOrdersHandlerSuite(t *testing.T) {
	suite.Run(t, new(OrdersHandlerTestSuite))
}

func (s *OrdersHandlerTestSuite) SetupTest() {
	s.handlerSuite.SetupTest()
	s.customer = &domain.User{ID: 1, Username: "customer", Role: domain.RoleCustomer}
}

func (s *OrdersHandlerTestSuite) request(method, target string, params map[string]any) *http.Response {
	var body *bytes.Reader
	opts := []func(*testutils.RequestOptions){
		testutils.WithHeader("Authorization", s.authHeader(s.customer)),
	}

	args := testutils.RequestArgs{
		Router: s.router,
		Method: method,
		URL:    target,
	}
	if params != nil {
		payload, marshalErr := json.Marshal(params)
		s.Require().NoError(marshalErr)
		body = bytes.NewReader(payload)
		args.Body = body
		opts = append(opts, testutils.WithHeader("Content-Type", "application/json"))
	}

	resp, err := testutils.MakeRequest(args, opts...)
	s.Require().NoError(err)
	return resp
}

func (s *OrdersHandlerTestSuite) TestCreate() {
	order := &domain.Order{
		ID:         3,
		ProductID:  7,
		UserID:     s.customer.ID,
		Quantity:   2,
		TotalPrice: decimal.RequireFromString("39.98"),
		Status:     domain.OrderStatusPending,
	}

	s.orderSvc.EXPECT().
		Create(gomock.Any(), gomock.Eq(s.customer), gomock.Eq(service.CreateOrderArgs{
			ProductID: 7,
			Quantity:  2,
		})).
		Return(order, nil)

	resp := s.request(http.MethodPost, OrderGroup+"/", map[string]any{
		"product_id": 7,
		"quantity":   2,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	body := s.decodeBody(resp)
	orderBody, ok := body["order"].(map[string]any)
	s.Require().True(ok)
	s.InDelta(39.98, orderBody["total_price"], 0.001)
	s.Equal("pending", orderBody["status"])
}

func (s *OrdersHandlerTestSuite) TestCreateDefaultQuantity() {
	// Без quantity заказывается одна единица.
	s.orderSvc.EXPECT().
		Create(gomock.Any(), gomock.Any(), gomock.Eq(service.CreateOrderArgs{
			ProductID: 7,
			Quantity:  1,
		})).
		Return(&domain.Order{ID: 3, ProductID: 7, Quantity: 1}, nil)

	resp := s.request(http.MethodPost, OrderGroup+"/", map[string]any{"product_id": 7})
	defer resp.Body.Close() //nolint:errcheck
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
}

func (s *OrdersHandlerTestSuite) TestCreateErrors() {
	notFoundArgs := service.CreateOrderArgs{ProductID: 404, Quantity: 1}
	outOfStockArgs := service.CreateOrderArgs{ProductID: 7, Quantity: 1}
	insufficientArgs := service.CreateOrderArgs{ProductID: 7, Quantity: 5}

	s.orderSvc.EXPECT().
		Create(gomock.Any(), gomock.Any(), gomock.Eq(notFoundArgs)).
		Return(nil, fmt.Errorf("creating order: %w", domain.ErrRecordNotFound))
	s.orderSvc.EXPECT().
		Create(gomock.Any(), gomock.Any(), gomock.Eq(outOfStockArgs)).
		Return(nil, fmt.Errorf("creating order: %w", domain.ErrOutOfStock))
	s.orderSvc.EXPECT().
		Create(gomock.Any(), gomock.Any(), gomock.Eq(insufficientArgs)).
		Return(nil, fmt.Errorf("creating order: %w", &domain.InsufficientStockError{Available: 2, Requested: 5}))

	cases := []struct {
		name       string
		params     map[string]any
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing product",
			params:     map[string]any{"product_id": 404},
			wantStatus: http.StatusNotFound,
			wantError:  "Product not found",
		},
		{
			name:       "out of stock",
			params:     map[string]any{"product_id": 7},
			wantStatus: http.StatusBadRequest,
			wantError:  "Product out of stock",
		},
		{
			name:       "insufficient stock",
			params:     map[string]any{"product_id": 7, "quantity": 5},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, t := range cases {
		s.Run(t.name, func() {
			resp := s.request(http.MethodPost, OrderGroup+"/", t.params)
			s.Require().Equal(t.wantStatus, resp.StatusCode)

			body := s.decodeBody(resp)
			if t.wantError != "" {
				s.Equal(t.wantError, body["error"])
			} else {
				s.NotEmpty(body["error"])
			}
		})
	}
}

func (s *OrdersHandlerTestSuite) TestCreateUnauthorized() {
	s.orderSvc.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    OrderGroup + "/",
	})
	s.Require().NoError(err)
	s.Require().Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal("Unauthorized", s.decodeBody(resp)["error"])
}

func (s *OrdersHandlerTestSuite) TestIndex() {
	orders := []domain.Order{
		{ID: 1, ProductID: 7, Quantity: 1, TotalPrice: decimal.RequireFromString("19.99")},
		{ID: 2, ProductID: 8, Quantity: 2, TotalPrice: decimal.RequireFromString("50")},
	}

	s.orderSvc.EXPECT().
		ListByUser(gomock.Any(), gomock.Eq(s.customer), gomock.Eq(repoargs.Page{Number: 2, Size: 5})).
		Return(orders, nil)

	resp := s.request(http.MethodGet, OrderGroup+"/?page=2&page_size=5", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	body := s.decodeBody(resp)
	s.Len(body["orders"], 2)
}

func (s *OrdersHandlerTestSuite) TestIndexInvalidPagination() {
	s.orderSvc.EXPECT().ListByUser(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	resp := s.request(http.MethodGet, OrderGroup+"/?page=0", nil)
	defer resp.Body.Close() //nolint:errcheck
	s.Require().Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *OrdersHandlerTestSuite) TestUpdateStatus() {
	s.orderSvc.EXPECT().
		UpdateStatus(gomock.Any(), gomock.Eq(s.customer), int64(3), domain.OrderStatusShipped).
		Return(&domain.Order{ID: 3, Status: domain.OrderStatusShipped}, nil)

	resp := s.request(http.MethodPut, OrderGroup+"/status/3?status=shipped", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	body := s.decodeBody(resp)
	orderBody, ok := body["order"].(map[string]any)
	s.Require().True(ok)
	s.Equal("shipped", orderBody["status"])
}

func (s *OrdersHandlerTestSuite) TestUpdateStatusInvalid() {
	s.orderSvc.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	resp := s.request(http.MethodPut, OrderGroup+"/status/3?status=teleported", nil)
	s.Require().Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("Invalid order status", s.decodeBody(resp)["error"])
}

func (s *OrdersHandlerTestSuite) TestUpdateStatusForbidden() {
	// Статус меняет владелец бизнеса продукта, покупателю нельзя.
	s.orderSvc.EXPECT().
		UpdateStatus(gomock.Any(), gomock.Any(), int64(3), domain.OrderStatusShipped).
		Return(nil, fmt.Errorf("updating order status: %w", domain.ErrForbidden))

	resp := s.request(http.MethodPut, OrderGroup+"/status/3?status=shipped", nil)
	s.Require().Equal(http.StatusForbidden, resp.StatusCode)
	s.Equal("Not authorized", s.decodeBody(resp)["error"])
}

func (s *OrdersHandlerTestSuite) TestUpdate() {
	s.orderSvc.EXPECT().
		UpdateQuantity(gomock.Any(), gomock.Eq(s.customer), int64(3), int64(4)).
		Return(&domain.Order{ID: 3, Quantity: 4}, nil)

	resp := s.request(http.MethodPut, OrderGroup+"/3", map[string]any{"quantity": 4})
	defer resp.Body.Close() //nolint:errcheck
	s.Require().Equal(http.StatusOK, resp.StatusCode)
}

func (s *OrdersHandlerTestSuite) TestDelete() {
	s.orderSvc.EXPECT().
		Delete(gomock.Any(), gomock.Eq(s.customer), int64(3)).
		Return(nil)

	resp := s.request(http.MethodDelete, OrderGroup+"/3", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("Order deleted", s.decodeBody(resp)["data"])
}

func (s *OrdersHandlerTestSuite) TestDeleteNotFound() {
	s.orderSvc.EXPECT().
		Delete(gomock.Any(), gomock.Any(), int64(404)).
		Return(fmt.Errorf("deleting order: %w", domain.ErrRecordNotFound))

	resp := s.request(http.MethodDelete, OrderGroup+"/404", nil)
	s.Require().Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal("Order not found", s.decodeBody(resp)["error"])
}

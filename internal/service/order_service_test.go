package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/logger"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/internal/service/mocks"
	"github.com/fsdevblog/groph-market/pkg/uow"
	uowmocks "github.com/fsdevblog/groph-market/pkg/uow/mocks"
)

type OrderServiceTestSuite struct {
	suite.Suite
	mockCtrl         *gomock.Controller
	mockUOW          *uowmocks.MockUOW
	mockTX           *uowmocks.MockTX
	mockOrderRepo    *mocks.MockOrderRepository
	mockProductRepo  *mocks.MockProductRepository
	mockBusinessRepo *mocks.MockBusinessRepository
	mockPublisher    *mocks.MockEventPublisher
	orderService     *OrderService

	customer *domain.User
	owner    *domain.User
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

func (s *OrderServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockOrderRepo = mocks.NewMockOrderRepository(s.mockCtrl)
	s.mockProductRepo = mocks.NewMockProductRepository(s.mockCtrl)
	s.mockBusinessRepo = mocks.NewMockBusinessRepository(s.mockCtrl)
	s.mockPublisher = mocks.NewMockEventPublisher(s.mockCtrl)

	s.customer = &domain.User{ID: 1, Username: "customer", Role: domain.RoleCustomer}
	s.owner = &domain.User{ID: 2, Username: "biz_owner", Role: domain.RoleBusinessOwner}

	// Мок получения репозитория из uow. Выполняется в инициализации сервиса.
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil).AnyTimes()

	// Мок получения репозиториев из транзакции.
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.ProductRepoName)).
		Return(s.mockProductRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.BusinessRepoName)).
		Return(s.mockBusinessRepo, nil).AnyTimes()

	// Мок uow: транзакция выполняется на месте.
	s.mockUOW.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		}).AnyTimes()

	// Инициализация сервиса.
	orderService, servErr := NewOrderService(s.mockUOW, s.mockPublisher, logger.New(io.Discard))
	s.Require().NoError(servErr)
	s.orderService = orderService
}

func (s *OrderServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *OrderServiceTestSuite) TestCreate() {
	product := domain.Product{
		ID:       10,
		NewPrice: decimal.RequireFromString("19.99"),
		Quantity: 5,
	}

	s.mockProductRepo.EXPECT().
		FindByIDForUpdate(gomock.Any(), product.ID).
		Return(&product, nil)
	s.mockProductRepo.EXPECT().
		DecrementQuantity(gomock.Any(), product.ID, int64(3)).
		Return(nil)

	// снепшот цены: 19.99 * 3.
	wantTotal := decimal.RequireFromString("59.97")

	createdOrder := domain.Order{
		ID:         100,
		ProductID:  product.ID,
		UserID:     s.customer.ID,
		Quantity:   3,
		TotalPrice: wantTotal,
		Status:     domain.OrderStatusPending,
	}
	s.mockOrderRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.CreateOrder) (*domain.Order, error) {
			s.True(args.TotalPrice.Equal(wantTotal))
			s.Equal(domain.OrderStatusPending, args.Status)
			s.Equal(s.customer.ID, args.UserID)
			return &createdOrder, nil
		})

	published := make(chan domain.Order, 1)
	s.mockPublisher.EXPECT().
		OrderCreated(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, order domain.Order) error {
			published <- order
			return nil
		})

	order, err := s.orderService.Create(s.T().Context(), s.customer, CreateOrderArgs{
		ProductID: product.ID,
		Quantity:  3,
	})
	s.Require().NoError(err)
	s.True(order.TotalPrice.Equal(wantTotal))

	select {
	case event := <-published:
		s.Equal(createdOrder.ID, event.ID)
	case <-time.After(time.Second):
		s.Fail("order_created event was not published")
	}
}

func (s *OrderServiceTestSuite) TestCreateStockErrors() {
	outOfStock := domain.Product{ID: 11, Quantity: 0, NewPrice: decimal.NewFromInt(5)}
	lowStock := domain.Product{ID: 12, Quantity: 2, NewPrice: decimal.NewFromInt(5)}

	s.mockProductRepo.EXPECT().
		FindByIDForUpdate(gomock.Any(), outOfStock.ID).
		Return(&outOfStock, nil)
	s.mockProductRepo.EXPECT().
		FindByIDForUpdate(gomock.Any(), lowStock.ID).
		Return(&lowStock, nil)
	s.mockProductRepo.EXPECT().
		FindByIDForUpdate(gomock.Any(), int64(404)).
		Return(nil, domain.ErrRecordNotFound)

	// до декремента и вставки заказа дело дойти не должно.
	s.mockProductRepo.EXPECT().DecrementQuantity(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	s.mockOrderRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
	s.mockPublisher.EXPECT().OrderCreated(gomock.Any(), gomock.Any()).Times(0)

	s.Run("product not found", func() {
		_, err := s.orderService.Create(s.T().Context(), s.customer, CreateOrderArgs{ProductID: 404, Quantity: 1})
		s.Require().ErrorIs(err, domain.ErrRecordNotFound)
	})

	s.Run("out of stock", func() {
		_, err := s.orderService.Create(s.T().Context(), s.customer, CreateOrderArgs{
			ProductID: outOfStock.ID,
			Quantity:  1,
		})
		s.Require().ErrorIs(err, domain.ErrOutOfStock)
	})

	s.Run("insufficient stock", func() {
		_, err := s.orderService.Create(s.T().Context(), s.customer, CreateOrderArgs{
			ProductID: lowStock.ID,
			Quantity:  3,
		})
		var stockErr *domain.InsufficientStockError
		s.Require().ErrorAs(err, &stockErr)
		s.Equal(int64(2), stockErr.Available)
		s.Equal(int64(3), stockErr.Requested)
	})

	s.Run("wrong role", func() {
		_, err := s.orderService.Create(s.T().Context(), s.owner, CreateOrderArgs{ProductID: 1, Quantity: 1})
		s.Require().ErrorIs(err, domain.ErrForbidden)
	})
}

func (s *OrderServiceTestSuite) TestUpdateStatus() {
	order := domain.Order{ID: 50, ProductID: 10, UserID: s.customer.ID, Status: domain.OrderStatusPending}
	product := domain.Product{ID: 10, BusinessID: 20}
	ownBusiness := domain.Business{ID: 20, OwnerID: &s.owner.ID}

	strangerID := int64(999)
	strangerBusiness := domain.Business{ID: 20, OwnerID: &strangerID}

	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), order.ID).Return(&order, nil).Times(2)
	s.mockProductRepo.EXPECT().FindByID(gomock.Any(), product.ID).Return(&product, nil).Times(2)

	gomock.InOrder(
		s.mockBusinessRepo.EXPECT().FindByID(gomock.Any(), ownBusiness.ID).Return(&ownBusiness, nil),
		s.mockBusinessRepo.EXPECT().FindByID(gomock.Any(), ownBusiness.ID).Return(&strangerBusiness, nil),
	)

	shipped := order
	shipped.Status = domain.OrderStatusShipped
	s.mockOrderRepo.EXPECT().
		UpdateStatus(gomock.Any(), order.ID, domain.OrderStatusShipped).
		Return(&shipped, nil)

	published := make(chan domain.Order, 1)
	s.mockPublisher.EXPECT().
		OrderStatusChanged(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, o domain.Order) error {
			published <- o
			return nil
		})

	s.Run("ok", func() {
		updated, err := s.orderService.UpdateStatus(s.T().Context(), s.owner, order.ID, domain.OrderStatusShipped)
		s.Require().NoError(err)
		s.Equal(domain.OrderStatusShipped, updated.Status)

		select {
		case event := <-published:
			s.Equal(domain.OrderStatusShipped, event.Status)
		case <-time.After(time.Second):
			s.Fail("order_status_changed event was not published")
		}
	})

	s.Run("not business owner of the product", func() {
		_, err := s.orderService.UpdateStatus(s.T().Context(), s.owner, order.ID, domain.OrderStatusShipped)
		s.Require().ErrorIs(err, domain.ErrForbidden)
	})

	s.Run("wrong role", func() {
		_, err := s.orderService.UpdateStatus(s.T().Context(), s.customer, order.ID, domain.OrderStatusShipped)
		s.Require().ErrorIs(err, domain.ErrForbidden)
	})
}

func (s *OrderServiceTestSuite) TestUpdateQuantity() {
	order := domain.Order{
		ID:         60,
		ProductID:  10,
		UserID:     s.customer.ID,
		Quantity:   1,
		TotalPrice: decimal.NewFromInt(10),
	}

	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), order.ID).Return(&order, nil).Times(2)

	updated := order
	updated.Quantity = 4
	s.mockOrderRepo.EXPECT().
		UpdateQuantity(gomock.Any(), order.ID, int64(4)).
		Return(&updated, nil)

	s.Run("ok", func() {
		got, err := s.orderService.UpdateQuantity(s.T().Context(), s.customer, order.ID, 4)
		s.Require().NoError(err)
		s.Equal(int64(4), got.Quantity)
		// снепшот цены не пересчитывается.
		s.True(got.TotalPrice.Equal(order.TotalPrice))
	})

	s.Run("not the buyer", func() {
		stranger := &domain.User{ID: 777, Role: domain.RoleCustomer}
		_, err := s.orderService.UpdateQuantity(s.T().Context(), stranger, order.ID, 4)
		s.Require().ErrorIs(err, domain.ErrForbidden)
	})
}

func (s *OrderServiceTestSuite) TestDelete() {
	order := domain.Order{ID: 70, UserID: s.customer.ID}

	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), order.ID).Return(&order, nil).Times(2)
	s.mockOrderRepo.EXPECT().Delete(gomock.Any(), order.ID).Return(nil)

	s.Run("ok", func() {
		s.Require().NoError(s.orderService.Delete(s.T().Context(), s.customer, order.ID))
	})

	s.Run("not the buyer", func() {
		stranger := &domain.User{ID: 777, Role: domain.RoleCustomer}
		err := s.orderService.Delete(s.T().Context(), stranger, order.ID)
		s.Require().ErrorIs(err, domain.ErrForbidden)
	})
}

func (s *OrderServiceTestSuite) TestListByUser() {
	page := repoargs.Page{Number: 1, Size: 20}
	orders := []domain.Order{{ID: 1, UserID: s.customer.ID}, {ID: 2, UserID: s.customer.ID}}

	s.mockOrderRepo.EXPECT().
		GetByUserID(gomock.Any(), s.customer.ID, page).
		Return(orders, nil)

	got, err := s.orderService.ListByUser(s.T().Context(), s.customer, page)
	s.Require().NoError(err)
	s.Len(got, 2)

	_, roleErr := s.orderService.ListByUser(s.T().Context(), s.owner, page)
	s.Require().ErrorIs(roleErr, domain.ErrForbidden)
}

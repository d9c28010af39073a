package service

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/internal/service/mocks"
	"github.com/fsdevblog/groph-market/pkg/uow"
	uowmocks "github.com/fsdevblog/groph-market/pkg/uow/mocks"
)

type AdminServiceTestSuite struct {
	suite.Suite
	mockCtrl        *gomock.Controller
	mockUOW         *uowmocks.MockUOW
	mockUserRepo    *mocks.MockUserRepository
	mockProductRepo *mocks.MockProductRepository
	mockOrderRepo   *mocks.MockOrderRepository
	adminService    *AdminService

	admin    *domain.User
	customer *domain.User
}

func TestAdminServiceSuite(t *testing.T) {
	suite.Run(t, new(AdminServiceTestSuite))
}

func (s *AdminServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockUserRepo = mocks.NewMockUserRepository(s.mockCtrl)
	s.mockProductRepo = mocks.NewMockProductRepository(s.mockCtrl)
	s.mockOrderRepo = mocks.NewMockOrderRepository(s.mockCtrl)

	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.UserRepoName)).
		Return(s.mockUserRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.ProductRepoName)).
		Return(s.mockProductRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil).AnyTimes()

	s.admin = &domain.User{ID: 1, Username: "admin", Role: domain.RoleAdmin}
	s.customer = &domain.User{ID: 2, Username: "customer", Role: domain.RoleCustomer}

	adminService, servErr := NewAdminService(s.mockUOW)
	s.Require().NoError(servErr)
	s.adminService = adminService
}

func (s *AdminServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *AdminServiceTestSuite) TestListUsers() {
	page := repoargs.Page{Number: 1, Size: 20}

	s.mockUserRepo.EXPECT().List(gomock.Any(), page).
		Return([]domain.User{{ID: 1}, {ID: 2}}, nil)

	users, err := s.adminService.ListUsers(s.T().Context(), s.admin, page)
	s.Require().NoError(err)
	s.Len(users, 2)

	s.Run("non admin", func() {
		_, roleErr := s.adminService.ListUsers(s.T().Context(), s.customer, page)
		s.Require().ErrorIs(roleErr, domain.ErrForbidden)
	})
}

func (s *AdminServiceTestSuite) TestDeleteUser() {
	s.mockUserRepo.EXPECT().Delete(gomock.Any(), int64(5)).Return(nil)

	s.Require().NoError(s.adminService.DeleteUser(s.T().Context(), s.admin, 5))

	s.Run("non admin", func() {
		err := s.adminService.DeleteUser(s.T().Context(), s.customer, 5)
		s.Require().ErrorIs(err, domain.ErrForbidden)
	})
}

func (s *AdminServiceTestSuite) TestListProducts() {
	page := repoargs.Page{Number: 2, Size: 10}

	s.mockProductRepo.EXPECT().List(gomock.Any(), page).
		Return([]domain.Product{{ID: 7}}, nil)

	products, err := s.adminService.ListProducts(s.T().Context(), s.admin, page)
	s.Require().NoError(err)
	s.Len(products, 1)
}

func (s *AdminServiceTestSuite) TestDeleteProduct() {
	s.mockProductRepo.EXPECT().Delete(gomock.Any(), int64(7)).Return(nil)

	s.Require().NoError(s.adminService.DeleteProduct(s.T().Context(), s.admin, 7))

	s.Run("missing product", func() {
		s.mockProductRepo.EXPECT().Delete(gomock.Any(), int64(404)).Return(domain.ErrRecordNotFound)

		err := s.adminService.DeleteProduct(s.T().Context(), s.admin, 404)
		s.Require().ErrorIs(err, domain.ErrRecordNotFound)
	})
}

func (s *AdminServiceTestSuite) TestListOrders() {
	page := repoargs.Page{Number: 1, Size: 20}

	s.mockOrderRepo.EXPECT().List(gomock.Any(), page).
		Return([]domain.Order{{ID: 3}}, nil)

	orders, err := s.adminService.ListOrders(s.T().Context(), s.admin, page)
	s.Require().NoError(err)
	s.Len(orders, 1)

	s.Run("non admin", func() {
		_, roleErr := s.adminService.ListOrders(s.T().Context(), s.customer, page)
		s.Require().ErrorIs(roleErr, domain.ErrForbidden)
	})
}

func (s *AdminServiceTestSuite) TestSetOrderStatus() {
	s.mockOrderRepo.EXPECT().
		UpdateStatus(gomock.Any(), int64(3), domain.OrderStatusCancelled).
		Return(&domain.Order{ID: 3, Status: domain.OrderStatusCancelled}, nil)

	order, err := s.adminService.SetOrderStatus(s.T().Context(), s.admin, 3, domain.OrderStatusCancelled)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusCancelled, order.Status)

	s.Run("non admin", func() {
		_, roleErr := s.adminService.SetOrderStatus(s.T().Context(), s.customer, 3, domain.OrderStatusCancelled)
		s.Require().ErrorIs(roleErr, domain.ErrForbidden)
	})
}

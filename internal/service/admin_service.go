package service

import (
	"context"
	"fmt"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/pkg/uow"
)

// AdminService операции надзора. Каждая требует роли admin и, в отличие от
// остальных сервисов, не проверяет владение.
type AdminService struct {
	uow         uow.UOW
	userRepo    UserRepository
	productRepo ProductRepository
	orderRepo   OrderRepository
}

func NewAdminService(u uow.UOW) (*AdminService, error) {
	userRepo, userRepoErr := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr
	}
	productRepo, productRepoErr := uow.GetRepositoryAs[ProductRepository](u, uow.RepositoryName(repoargs.ProductRepoName))
	if productRepoErr != nil {
		return nil, productRepoErr
	}
	orderRepo, orderRepoErr := uow.GetRepositoryAs[OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if orderRepoErr != nil {
		return nil, orderRepoErr
	}
	return &AdminService{
		uow:         u,
		userRepo:    userRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}, nil
}

func requireAdmin(caller *domain.User) error {
	if caller.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}

func (s *AdminService) ListUsers(ctx context.Context, caller *domain.User, page repoargs.Page) ([]domain.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	users, err := s.userRepo.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, caller *domain.User, id int64) error {
	if err := requireAdmin(caller); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

func (s *AdminService) ListProducts(
	ctx context.Context,
	caller *domain.User,
	page repoargs.Page,
) ([]domain.Product, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	products, err := s.productRepo.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

func (s *AdminService) DeleteProduct(ctx context.Context, caller *domain.User, id int64) error {
	if err := requireAdmin(caller); err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	return nil
}

func (s *AdminService) ListOrders(ctx context.Context, caller *domain.User, page repoargs.Page) ([]domain.Order, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	orders, err := s.orderRepo.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return orders, nil
}

// SetOrderStatus админский оверрайд статуса заказа, без проверки владения.
func (s *AdminService) SetOrderStatus(
	ctx context.Context,
	caller *domain.User,
	orderID int64,
	status domain.OrderStatusType,
) (*domain.Order, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, fmt.Errorf("setting order status: %w", err)
	}
	order, err := s.orderRepo.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return nil, fmt.Errorf("setting order status: %w", err)
	}
	return order, nil
}

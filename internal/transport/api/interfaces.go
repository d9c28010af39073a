package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/internal/service"
)

// UserServicer интерфейс исключительно для моков.
type UserServicer interface {
	Register(ctx context.Context, args service.RegisterUserArgs) (*domain.User, error)
	Login(ctx context.Context, args service.LoginUserArgs) (*domain.User, string, error)
	Verify(ctx context.Context, tokenString string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, caller *domain.User, args service.UpdateProfileArgs) (*domain.User, error)
}

type ProductServicer interface {
	Create(ctx context.Context, caller *domain.User, args service.CreateProductArgs) (*domain.Product, error)
	Update(ctx context.Context, caller *domain.User, id int64, args service.UpdateProductArgs) (*domain.Product, error)
	Delete(ctx context.Context, caller *domain.User, id int64) error
	List(ctx context.Context, page repoargs.Page) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (*service.ProductDetails, error)
	AttachImage(ctx context.Context, caller *domain.User, id int64, filename string) error
}

type BusinessServicer interface {
	Create(ctx context.Context, caller *domain.User, args service.CreateBusinessArgs) (*domain.Business, error)
	Update(ctx context.Context, caller *domain.User, id int64, args service.UpdateBusinessArgs) (*domain.Business, error)
	Delete(ctx context.Context, caller *domain.User, id int64) error
	ListMine(ctx context.Context, caller *domain.User) ([]service.BusinessWithProducts, error)
	GetDefault(ctx context.Context, caller *domain.User) (*service.BusinessWithProducts, error)
	AttachLogo(ctx context.Context, caller *domain.User, id int64, filename string) error
}

type OrderServicer interface {
	Create(ctx context.Context, caller *domain.User, args service.CreateOrderArgs) (*domain.Order, error)
	UpdateStatus(
		ctx context.Context,
		caller *domain.User,
		orderID int64,
		status domain.OrderStatusType,
	) (*domain.Order, error)
	UpdateQuantity(ctx context.Context, caller *domain.User, orderID int64, quantity int64) (*domain.Order, error)
	Delete(ctx context.Context, caller *domain.User, orderID int64) error
	ListByUser(ctx context.Context, caller *domain.User, page repoargs.Page) ([]domain.Order, error)
}

type AdminServicer interface {
	ListUsers(ctx context.Context, caller *domain.User, page repoargs.Page) ([]domain.User, error)
	DeleteUser(ctx context.Context, caller *domain.User, id int64) error
	ListProducts(ctx context.Context, caller *domain.User, page repoargs.Page) ([]domain.Product, error)
	DeleteProduct(ctx context.Context, caller *domain.User, id int64) error
	ListOrders(ctx context.Context, caller *domain.User, page repoargs.Page) ([]domain.Order, error)
	SetOrderStatus(
		ctx context.Context,
		caller *domain.User,
		orderID int64,
		status domain.OrderStatusType,
	) (*domain.Order, error)
}

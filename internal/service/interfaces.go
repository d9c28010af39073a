package service

import (
	"context"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePassword(password string, hashedPassword string) bool
}

type UserRepository interface {
	Create(ctx context.Context, args repoargs.CreateUser) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, id int64, args repoargs.UpdateUser) (*domain.User, error)
	MarkVerified(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, page repoargs.Page) ([]domain.User, error)
	Delete(ctx context.Context, id int64) error
}

type BusinessRepository interface {
	Create(ctx context.Context, args repoargs.CreateBusiness) (*domain.Business, error)
	FindByID(ctx context.Context, id int64) (*domain.Business, error)
	GetOrCreateDefault(ctx context.Context) (*domain.Business, error)
	GetByOwnerID(ctx context.Context, ownerID int64) ([]domain.Business, error)
	Update(ctx context.Context, id int64, args repoargs.UpdateBusiness) (*domain.Business, error)
	UpdateLogo(ctx context.Context, id int64, logo string) error
	Delete(ctx context.Context, id int64) error
}

type ProductRepository interface {
	Create(ctx context.Context, args repoargs.CreateProduct) (*domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, page repoargs.Page) ([]domain.Product, error)
	GetByBusinessID(ctx context.Context, businessID int64) ([]domain.Product, error)
	CountByBusinessID(ctx context.Context, businessID int64) (int64, error)
	Update(ctx context.Context, id int64, args repoargs.UpdateProduct) (*domain.Product, error)
	UpdateImage(ctx context.Context, id int64, image string) error
	DecrementQuantity(ctx context.Context, id int64, by int64) error
	Delete(ctx context.Context, id int64) error
}

type OrderRepository interface {
	Create(ctx context.Context, args repoargs.CreateOrder) (*domain.Order, error)
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	GetByUserID(ctx context.Context, userID int64, page repoargs.Page) ([]domain.Order, error)
	List(ctx context.Context, page repoargs.Page) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatusType) (*domain.Order, error)
	UpdateQuantity(ctx context.Context, id int64, quantity int64) (*domain.Order, error)
	Delete(ctx context.Context, id int64) error
}

// Mailer исходящая почта. Отправка не участвует в транзакциях и может
// независимо упасть.
type Mailer interface {
	SendVerification(ctx context.Context, email, username, token string) error
}

// EventPublisher сайд-канал событий заказов.
type EventPublisher interface {
	OrderCreated(ctx context.Context, order domain.Order) error
	OrderStatusChanged(ctx context.Context, order domain.Order) error
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/pkg/uow"
)

type OrderService struct {
	uow       uow.UOW
	orderRepo OrderRepository
	publisher EventPublisher
	logger    *logrus.Logger
}

func NewOrderService(u uow.UOW, publisher EventPublisher, l *logrus.Logger) (*OrderService, error) {
	orderRepo, err := uow.GetRepositoryAs[OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if err != nil {
		return nil, err
	}
	return &OrderService{
		uow:       u,
		orderRepo: orderRepo,
		publisher: publisher,
		logger:    l,
	}, nil
}

type CreateOrderArgs struct {
	ProductID int64
	Quantity  int64
}

// Create создает заказ. Только для роли customer.
//
// Критическая секция (чтение продукта -> проверка остатка -> декремент ->
// вставка заказа) выполняется одной транзакцией с блокировкой строки продукта,
// поэтому конкурентные заказы на один продукт сериализуются: из N параллельных
// покупателей последнюю единицу остатка получает максимум один.
//
// Ошибки: domain.ErrRecordNotFound (нет продукта), domain.ErrOutOfStock
// (остаток < 1), *domain.InsufficientStockError (запрошено больше остатка -
// оверселл в минус не допускается).
//
// total_price = new_price * quantity фиксируется на момент создания и далее
// не пересчитывается.
func (o *OrderService) Create(ctx context.Context, caller *domain.User, args CreateOrderArgs) (*domain.Order, error) {
	if caller.Role != domain.RoleCustomer {
		return nil, fmt.Errorf("creating order: %w", domain.ErrForbidden)
	}

	var order *domain.Order
	txErr := o.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		productRepo, productRepoErr := uow.GetAs[ProductRepository](tx, uow.RepositoryName(repoargs.ProductRepoName))
		if productRepoErr != nil {
			return productRepoErr //nolint:wrapcheck
		}
		orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
		if orderRepoErr != nil {
			return orderRepoErr //nolint:wrapcheck
		}

		product, productErr := productRepo.FindByIDForUpdate(c, args.ProductID)
		if productErr != nil {
			return productErr //nolint:wrapcheck
		}

		if product.Quantity < 1 {
			return domain.ErrOutOfStock
		}
		if product.Quantity < args.Quantity {
			return &domain.InsufficientStockError{
				ProductID: product.ID,
				Requested: args.Quantity,
				Available: product.Quantity,
			}
		}

		if decErr := productRepo.DecrementQuantity(c, product.ID, args.Quantity); decErr != nil {
			return decErr //nolint:wrapcheck
		}

		var createErr error
		order, createErr = orderRepo.Create(c, repoargs.CreateOrder{
			ProductID:  product.ID,
			UserID:     caller.ID,
			Quantity:   args.Quantity,
			TotalPrice: product.NewPrice.Mul(decimal.NewFromInt(args.Quantity)),
			Status:     domain.OrderStatusPending,
		})
		return createErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("creating order: %w", txErr)
	}

	o.publish("order_created", *order, o.publisher.OrderCreated)
	return order, nil
}

// UpdateStatus выставляет статус заказа. Только для business_owner, владеющего
// бизнесом продукта заказа. Допустимо любое значение статуса - жесткой машины
// переходов нет.
func (o *OrderService) UpdateStatus(
	ctx context.Context,
	caller *domain.User,
	orderID int64,
	status domain.OrderStatusType,
) (*domain.Order, error) {
	if caller.Role != domain.RoleBusinessOwner {
		return nil, fmt.Errorf("updating order status: %w", domain.ErrForbidden)
	}

	var order *domain.Order
	txErr := o.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		orderRepo, productRepo, businessRepo, reposErr := o.txRepos(tx)
		if reposErr != nil {
			return reposErr
		}

		existing, findErr := orderRepo.FindByID(c, orderID)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}
		product, productErr := productRepo.FindByID(c, existing.ProductID)
		if productErr != nil {
			return productErr //nolint:wrapcheck
		}
		business, businessErr := businessRepo.FindByID(c, product.BusinessID)
		if businessErr != nil {
			return businessErr //nolint:wrapcheck
		}
		if !business.OwnedBy(caller.ID) {
			return domain.ErrForbidden
		}

		var updErr error
		order, updErr = orderRepo.UpdateStatus(c, orderID, status)
		return updErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("updating order status: %w", txErr)
	}

	o.publish("order_status_changed", *order, o.publisher.OrderStatusChanged)
	return order, nil
}

// UpdateQuantity меняет количество в заказе. Только покупатель заказа.
// total_price и остаток продукта не пересчитываются.
func (o *OrderService) UpdateQuantity(
	ctx context.Context,
	caller *domain.User,
	orderID int64,
	quantity int64,
) (*domain.Order, error) {
	if caller.Role != domain.RoleCustomer {
		return nil, fmt.Errorf("updating order: %w", domain.ErrForbidden)
	}

	var order *domain.Order
	txErr := o.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
		if orderRepoErr != nil {
			return orderRepoErr //nolint:wrapcheck
		}

		existing, findErr := orderRepo.FindByID(c, orderID)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}
		if existing.UserID != caller.ID {
			return domain.ErrForbidden
		}

		var updErr error
		order, updErr = orderRepo.UpdateQuantity(c, orderID, quantity)
		return updErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("updating order: %w", txErr)
	}
	return order, nil
}

// Delete удаляет заказ покупателя. Остаток продукта не восстанавливается.
func (o *OrderService) Delete(ctx context.Context, caller *domain.User, orderID int64) error {
	if caller.Role != domain.RoleCustomer {
		return fmt.Errorf("deleting order: %w", domain.ErrForbidden)
	}

	txErr := o.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
		if orderRepoErr != nil {
			return orderRepoErr //nolint:wrapcheck
		}

		existing, findErr := orderRepo.FindByID(c, orderID)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}
		if existing.UserID != caller.ID {
			return domain.ErrForbidden
		}
		return orderRepo.Delete(c, orderID) //nolint:wrapcheck
	})
	if txErr != nil {
		return fmt.Errorf("deleting order: %w", txErr)
	}
	return nil
}

// ListByUser возвращает заказы вызывающего. Только для роли customer.
func (o *OrderService) ListByUser(
	ctx context.Context,
	caller *domain.User,
	page repoargs.Page,
) ([]domain.Order, error) {
	if caller.Role != domain.RoleCustomer {
		return nil, fmt.Errorf("listing orders: %w", domain.ErrForbidden)
	}

	orders, err := o.orderRepo.GetByUserID(ctx, caller.ID, page)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return orders, nil
}

// publish отправляет событие заказа fire-and-forget: сбой сайд-канала не
// влияет на результат операции.
func (o *OrderService) publish(event string, order domain.Order, fn func(context.Context, domain.Order) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second) //nolint:mnd
		defer cancel()
		if err := fn(ctx, order); err != nil {
			o.logger.WithError(err).
				WithField("OrderID", order.ID).
				Errorf("publishing %s event", event)
		}
	}()
}

func (o *OrderService) txRepos(tx uow.TX) (OrderRepository, ProductRepository, BusinessRepository, error) {
	orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
	if orderRepoErr != nil {
		return nil, nil, nil, orderRepoErr //nolint:wrapcheck
	}
	productRepo, productRepoErr := uow.GetAs[ProductRepository](tx, uow.RepositoryName(repoargs.ProductRepoName))
	if productRepoErr != nil {
		return nil, nil, nil, productRepoErr //nolint:wrapcheck
	}
	businessRepo, businessRepoErr := uow.GetAs[BusinessRepository](tx, uow.RepositoryName(repoargs.BusinessRepoName))
	if businessRepoErr != nil {
		return nil, nil, nil, businessRepoErr //nolint:wrapcheck
	}
	return orderRepo, productRepo, businessRepo, nil
}

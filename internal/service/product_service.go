package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/pkg/uow"
)

var oneHundred = decimal.NewFromInt(100)

type ProductService struct {
	uow          uow.UOW
	productRepo  ProductRepository
	businessRepo BusinessRepository
	userRepo     UserRepository
}

func NewProductService(u uow.UOW) (*ProductService, error) {
	productRepo, productRepoErr := uow.GetRepositoryAs[ProductRepository](u, uow.RepositoryName(repoargs.ProductRepoName))
	if productRepoErr != nil {
		return nil, productRepoErr
	}
	businessRepo, businessRepoErr := uow.GetRepositoryAs[BusinessRepository](u, uow.RepositoryName(repoargs.BusinessRepoName))
	if businessRepoErr != nil {
		return nil, businessRepoErr
	}
	userRepo, userRepoErr := uow.GetRepositoryAs[UserRepository](u, uow.RepositoryName(repoargs.UserRepoName))
	if userRepoErr != nil {
		return nil, userRepoErr
	}
	return &ProductService{
		uow:          u,
		productRepo:  productRepo,
		businessRepo: businessRepo,
		userRepo:     userRepo,
	}, nil
}

// percentageDiscount вычисляет (original - new) / original * 100.
// Скидка может быть отрицательной, если new_price > original_price.
func percentageDiscount(originalPrice, newPrice decimal.Decimal) decimal.Decimal {
	return originalPrice.Sub(newPrice).Div(originalPrice).Mul(oneHundred)
}

type CreateProductArgs struct {
	Name                string
	Category            string
	OriginalPrice       decimal.Decimal
	NewPrice            decimal.Decimal
	OfferExpirationDate time.Time
	Quantity            int64
	BusinessID          *int64
}

// Create создает продукт. Только для роли business_owner.
//
// Резолв бизнеса: при явном BusinessID бизнес должен существовать и (кроме
// бесхозного Default Business) принадлежать вызывающему; без BusinessID продукт
// прикрепляется к лениво создаваемому Default Business.
func (s *ProductService) Create(
	ctx context.Context,
	caller *domain.User,
	args CreateProductArgs,
) (*domain.Product, error) {
	if caller.Role != domain.RoleBusinessOwner {
		return nil, fmt.Errorf("creating product: %w", domain.ErrForbidden)
	}
	if args.OriginalPrice.Sign() <= 0 {
		return nil, fmt.Errorf("creating product: %w", domain.ErrZeroPrice)
	}

	var product *domain.Product
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		businessRepo, businessRepoErr := uow.GetAs[BusinessRepository](tx, uow.RepositoryName(repoargs.BusinessRepoName))
		if businessRepoErr != nil {
			return businessRepoErr //nolint:wrapcheck
		}
		productRepo, productRepoErr := uow.GetAs[ProductRepository](tx, uow.RepositoryName(repoargs.ProductRepoName))
		if productRepoErr != nil {
			return productRepoErr //nolint:wrapcheck
		}

		business, businessErr := s.resolveBusiness(c, businessRepo, caller, args.BusinessID)
		if businessErr != nil {
			return businessErr
		}

		var createErr error
		product, createErr = productRepo.Create(c, repoargs.CreateProduct{
			Name:                args.Name,
			Category:            args.Category,
			OriginalPrice:       args.OriginalPrice,
			NewPrice:            args.NewPrice,
			PercentageDiscount:  percentageDiscount(args.OriginalPrice, args.NewPrice),
			OfferExpirationDate: args.OfferExpirationDate,
			Quantity:            args.Quantity,
			BusinessID:          business.ID,
		})
		return createErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("creating product: %w", txErr)
	}
	return product, nil
}

func (s *ProductService) resolveBusiness(
	ctx context.Context,
	businessRepo BusinessRepository,
	caller *domain.User,
	businessID *int64,
) (*domain.Business, error) {
	if businessID == nil {
		return businessRepo.GetOrCreateDefault(ctx) //nolint:wrapcheck
	}

	business, findErr := businessRepo.FindByID(ctx, *businessID)
	if findErr != nil {
		return nil, findErr //nolint:wrapcheck
	}
	// Default Business без владельца доступен всем владельцам бизнесов.
	if business.IsDefault() {
		return business, nil
	}
	if !business.OwnedBy(caller.ID) {
		return nil, domain.ErrForbidden
	}
	return business, nil
}

type UpdateProductArgs struct {
	Name                string
	Category            string
	OriginalPrice       decimal.Decimal
	NewPrice            decimal.Decimal
	OfferExpirationDate time.Time
	Quantity            int64
}

// Update обновляет продукт и пересчитывает скидку из переданных цен.
// Доступно только владельцу бизнеса продукта.
func (s *ProductService) Update(
	ctx context.Context,
	caller *domain.User,
	id int64,
	args UpdateProductArgs,
) (*domain.Product, error) {
	if caller.Role != domain.RoleBusinessOwner {
		return nil, fmt.Errorf("updating product: %w", domain.ErrForbidden)
	}
	if args.OriginalPrice.Sign() <= 0 {
		return nil, fmt.Errorf("updating product: %w", domain.ErrZeroPrice)
	}

	var product *domain.Product
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		productRepo, businessRepo, reposErr := s.txRepos(tx)
		if reposErr != nil {
			return reposErr
		}

		if _, err := s.ownedProduct(c, productRepo, businessRepo, caller, id); err != nil {
			return err
		}

		var updErr error
		product, updErr = productRepo.Update(c, id, repoargs.UpdateProduct{
			Name:                args.Name,
			Category:            args.Category,
			OriginalPrice:       args.OriginalPrice,
			NewPrice:            args.NewPrice,
			PercentageDiscount:  percentageDiscount(args.OriginalPrice, args.NewPrice),
			OfferExpirationDate: args.OfferExpirationDate,
			Quantity:            args.Quantity,
		})
		return updErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("updating product: %w", txErr)
	}
	return product, nil
}

// Delete удаляет продукт. Доступно только владельцу бизнеса продукта.
func (s *ProductService) Delete(ctx context.Context, caller *domain.User, id int64) error {
	if caller.Role != domain.RoleBusinessOwner {
		return fmt.Errorf("deleting product: %w", domain.ErrForbidden)
	}

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		productRepo, businessRepo, reposErr := s.txRepos(tx)
		if reposErr != nil {
			return reposErr
		}
		if _, err := s.ownedProduct(c, productRepo, businessRepo, caller, id); err != nil {
			return err
		}
		return productRepo.Delete(c, id) //nolint:wrapcheck
	})
	if txErr != nil {
		return fmt.Errorf("deleting product: %w", txErr)
	}
	return nil
}

func (s *ProductService) List(ctx context.Context, page repoargs.Page) ([]domain.Product, error) {
	products, err := s.productRepo.List(ctx, page)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return products, nil
}

// ProductDetails продукт с денормализованными данными бизнеса и владельца.
type ProductDetails struct {
	Product       domain.Product
	Business      domain.Business
	OwnerEmail    string
	OwnerJoinDate time.Time
}

// Get возвращает продукт вместе с данными его бизнеса и email владельца.
func (s *ProductService) Get(ctx context.Context, id int64) (*ProductDetails, error) {
	product, productErr := s.productRepo.FindByID(ctx, id)
	if productErr != nil {
		return nil, fmt.Errorf("getting product: %w", productErr)
	}

	business, businessErr := s.businessRepo.FindByID(ctx, product.BusinessID)
	if businessErr != nil {
		return nil, fmt.Errorf("getting product business: %w", businessErr)
	}

	details := ProductDetails{
		Product:  *product,
		Business: *business,
	}
	if business.OwnerID != nil {
		owner, ownerErr := s.userRepo.FindByID(ctx, *business.OwnerID)
		if ownerErr != nil {
			return nil, fmt.Errorf("getting product owner: %w", ownerErr)
		}
		details.OwnerEmail = owner.Email
		details.OwnerJoinDate = owner.CreatedAt
	}
	return &details, nil
}

// AttachImage сохраняет ссылку на загруженный файл изображения.
// Сама запись файла на диск происходит вне транзакции.
func (s *ProductService) AttachImage(ctx context.Context, caller *domain.User, id int64, filename string) error {
	if caller.Role != domain.RoleBusinessOwner {
		return fmt.Errorf("attaching product image: %w", domain.ErrForbidden)
	}

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		productRepo, businessRepo, reposErr := s.txRepos(tx)
		if reposErr != nil {
			return reposErr
		}
		if _, err := s.ownedProduct(c, productRepo, businessRepo, caller, id); err != nil {
			return err
		}
		return productRepo.UpdateImage(c, id, filename) //nolint:wrapcheck
	})
	if txErr != nil {
		return fmt.Errorf("attaching product image: %w", txErr)
	}
	return nil
}

func (s *ProductService) txRepos(tx uow.TX) (ProductRepository, BusinessRepository, error) {
	productRepo, productRepoErr := uow.GetAs[ProductRepository](tx, uow.RepositoryName(repoargs.ProductRepoName))
	if productRepoErr != nil {
		return nil, nil, productRepoErr //nolint:wrapcheck
	}
	businessRepo, businessRepoErr := uow.GetAs[BusinessRepository](tx, uow.RepositoryName(repoargs.BusinessRepoName))
	if businessRepoErr != nil {
		return nil, nil, businessRepoErr //nolint:wrapcheck
	}
	return productRepo, businessRepo, nil
}

// ownedProduct возвращает продукт, убедившись что его бизнес принадлежит caller.
func (s *ProductService) ownedProduct(
	ctx context.Context,
	productRepo ProductRepository,
	businessRepo BusinessRepository,
	caller *domain.User,
	id int64,
) (*domain.Product, error) {
	product, productErr := productRepo.FindByID(ctx, id)
	if productErr != nil {
		return nil, productErr //nolint:wrapcheck
	}
	business, businessErr := businessRepo.FindByID(ctx, product.BusinessID)
	if businessErr != nil {
		return nil, businessErr //nolint:wrapcheck
	}
	if !business.OwnedBy(caller.ID) {
		return nil, domain.ErrForbidden
	}
	return product, nil
}

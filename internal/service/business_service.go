package service

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/pkg/uow"
)

type BusinessService struct {
	uow          uow.UOW
	businessRepo BusinessRepository
	productRepo  ProductRepository
}

func NewBusinessService(u uow.UOW) (*BusinessService, error) {
	businessRepo, businessRepoErr := uow.GetRepositoryAs[BusinessRepository](u, uow.RepositoryName(repoargs.BusinessRepoName))
	if businessRepoErr != nil {
		return nil, businessRepoErr
	}
	productRepo, productRepoErr := uow.GetRepositoryAs[ProductRepository](u, uow.RepositoryName(repoargs.ProductRepoName))
	if productRepoErr != nil {
		return nil, productRepoErr
	}
	return &BusinessService{
		uow:          u,
		businessRepo: businessRepo,
		productRepo:  productRepo,
	}, nil
}

type CreateBusinessArgs struct {
	Name        string
	City        string
	Region      string
	Description string
}

// Create создает бизнес, владельцем становится вызывающий.
// Только для роли business_owner.
func (s *BusinessService) Create(
	ctx context.Context,
	caller *domain.User,
	args CreateBusinessArgs,
) (*domain.Business, error) {
	if caller.Role != domain.RoleBusinessOwner {
		return nil, fmt.Errorf("creating business: %w", domain.ErrForbidden)
	}

	business, createErr := s.businessRepo.Create(ctx, repoargs.CreateBusiness{
		Name:        args.Name,
		City:        lo.Ternary(args.City != "", args.City, "Unspecified"),
		Region:      lo.Ternary(args.Region != "", args.Region, "Unspecified"),
		Description: args.Description,
		Logo:        "default.jpg",
		OwnerID:     &caller.ID,
	})
	if createErr != nil {
		return nil, fmt.Errorf("creating business: %w", createErr)
	}
	return business, nil
}

type UpdateBusinessArgs struct {
	Name        string
	City        string
	Region      string
	Description string
}

// Update обновляет бизнес. Доступно только его владельцу.
func (s *BusinessService) Update(
	ctx context.Context,
	caller *domain.User,
	id int64,
	args UpdateBusinessArgs,
) (*domain.Business, error) {
	if caller.Role != domain.RoleBusinessOwner {
		return nil, fmt.Errorf("updating business: %w", domain.ErrForbidden)
	}

	var business *domain.Business
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		businessRepo, businessRepoErr := uow.GetAs[BusinessRepository](tx, uow.RepositoryName(repoargs.BusinessRepoName))
		if businessRepoErr != nil {
			return businessRepoErr //nolint:wrapcheck
		}

		existing, findErr := businessRepo.FindByID(c, id)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}
		if !existing.OwnedBy(caller.ID) {
			return domain.ErrForbidden
		}

		var updErr error
		business, updErr = businessRepo.Update(c, id, repoargs.UpdateBusiness{
			Name:        args.Name,
			City:        args.City,
			Region:      args.Region,
			Description: args.Description,
		})
		return updErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, fmt.Errorf("updating business: %w", txErr)
	}
	return business, nil
}

// Delete удаляет бизнес владельца. Бизнес с продуктами не удаляется -
// возвращается domain.ErrBusinessNotEmpty (никаких неявных каскадов).
func (s *BusinessService) Delete(ctx context.Context, caller *domain.User, id int64) error {
	if caller.Role != domain.RoleBusinessOwner {
		return fmt.Errorf("deleting business: %w", domain.ErrForbidden)
	}

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		businessRepo, businessRepoErr := uow.GetAs[BusinessRepository](tx, uow.RepositoryName(repoargs.BusinessRepoName))
		if businessRepoErr != nil {
			return businessRepoErr //nolint:wrapcheck
		}
		productRepo, productRepoErr := uow.GetAs[ProductRepository](tx, uow.RepositoryName(repoargs.ProductRepoName))
		if productRepoErr != nil {
			return productRepoErr //nolint:wrapcheck
		}

		business, findErr := businessRepo.FindByID(c, id)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}
		if !business.OwnedBy(caller.ID) {
			return domain.ErrForbidden
		}

		count, countErr := productRepo.CountByBusinessID(c, id)
		if countErr != nil {
			return countErr //nolint:wrapcheck
		}
		if count > 0 {
			return domain.ErrBusinessNotEmpty
		}

		return businessRepo.Delete(c, id) //nolint:wrapcheck
	})
	if txErr != nil {
		return fmt.Errorf("deleting business: %w", txErr)
	}
	return nil
}

// BusinessWithProducts бизнес вместе с его продуктами.
type BusinessWithProducts struct {
	Business domain.Business
	Products []domain.Product
}

// ListMine возвращает бизнесы вызывающего вместе с продуктами.
func (s *BusinessService) ListMine(ctx context.Context, caller *domain.User) ([]BusinessWithProducts, error) {
	if caller.Role != domain.RoleBusinessOwner {
		return nil, fmt.Errorf("listing businesses: %w", domain.ErrForbidden)
	}

	businesses, listErr := s.businessRepo.GetByOwnerID(ctx, caller.ID)
	if listErr != nil {
		return nil, fmt.Errorf("listing businesses: %w", listErr)
	}

	result := make([]BusinessWithProducts, 0, len(businesses))
	for _, business := range businesses {
		products, productsErr := s.productRepo.GetByBusinessID(ctx, business.ID)
		if productsErr != nil {
			return nil, fmt.Errorf("listing businesses: %w", productsErr)
		}
		result = append(result, BusinessWithProducts{Business: business, Products: products})
	}
	return result, nil
}

// GetDefault возвращает сентинельный Default Business с его продуктами.
func (s *BusinessService) GetDefault(ctx context.Context, caller *domain.User) (*BusinessWithProducts, error) {
	if caller.Role != domain.RoleBusinessOwner {
		return nil, fmt.Errorf("getting default business: %w", domain.ErrForbidden)
	}

	business, businessErr := s.businessRepo.GetOrCreateDefault(ctx)
	if businessErr != nil {
		return nil, fmt.Errorf("getting default business: %w", businessErr)
	}
	products, productsErr := s.productRepo.GetByBusinessID(ctx, business.ID)
	if productsErr != nil {
		return nil, fmt.Errorf("getting default business: %w", productsErr)
	}
	return &BusinessWithProducts{Business: *business, Products: products}, nil
}

// AttachLogo сохраняет ссылку на загруженный логотип.
func (s *BusinessService) AttachLogo(ctx context.Context, caller *domain.User, id int64, filename string) error {
	if caller.Role != domain.RoleBusinessOwner {
		return fmt.Errorf("attaching business logo: %w", domain.ErrForbidden)
	}

	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		businessRepo, businessRepoErr := uow.GetAs[BusinessRepository](tx, uow.RepositoryName(repoargs.BusinessRepoName))
		if businessRepoErr != nil {
			return businessRepoErr //nolint:wrapcheck
		}

		business, findErr := businessRepo.FindByID(c, id)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}
		if !business.OwnedBy(caller.ID) {
			return domain.ErrForbidden
		}
		return businessRepo.UpdateLogo(c, id, filename) //nolint:wrapcheck
	})
	if txErr != nil {
		return fmt.Errorf("attaching business logo: %w", txErr)
	}
	return nil
}

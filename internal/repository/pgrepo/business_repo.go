package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/pkg/uow"
)

const businessColumns = "id, created_at, updated_at, name, city, region, description, logo, owner_id"

type BusinessRepository struct {
	db uow.DBTX
}

func NewBusinessRepository(db uow.DBTX) *BusinessRepository {
	return &BusinessRepository{db: db}
}

// Create создает бизнес. При конфликте имени возвращает domain.ErrDuplicateKey.
func (b *BusinessRepository) Create(ctx context.Context, args repoargs.CreateBusiness) (*domain.Business, error) {
	row := b.db.QueryRow(ctx, `
		INSERT INTO businesses (name, city, region, description, logo, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+businessColumns,
		args.Name, args.City, args.Region, args.Description, args.Logo, args.OwnerID)

	business, err := scanBusiness(row)
	if err != nil {
		return nil, convertErr(err, "creating business")
	}
	return business, nil
}

func (b *BusinessRepository) FindByID(ctx context.Context, id int64) (*domain.Business, error) {
	row := b.db.QueryRow(ctx, `SELECT `+businessColumns+` FROM businesses WHERE id = $1`, id)
	business, err := scanBusiness(row)
	if err != nil {
		return nil, convertErr(err, "finding business by id %d", id)
	}
	return business, nil
}

// GetOrCreateDefault идемпотентно создает и возвращает сентинельный Default Business.
// Гонка двух параллельных созданий гасится за счет ON CONFLICT DO NOTHING по
// уникальному имени и повторного чтения.
func (b *BusinessRepository) GetOrCreateDefault(ctx context.Context) (*domain.Business, error) {
	_, insErr := b.db.Exec(ctx, `
		INSERT INTO businesses (name, city, region, description, logo)
		VALUES ($1, 'Unspecified', 'Unspecified', 'Default business entity for products without specified business', 'default_logo.jpg')
		ON CONFLICT (name) DO NOTHING`,
		domain.DefaultBusinessName)
	if insErr != nil {
		return nil, convertErr(insErr, "creating default business")
	}

	row := b.db.QueryRow(ctx, `SELECT `+businessColumns+` FROM businesses WHERE name = $1`, domain.DefaultBusinessName)
	business, err := scanBusiness(row)
	if err != nil {
		return nil, convertErr(err, "finding default business")
	}
	return business, nil
}

// GetByOwnerID возвращает бизнесы юзера отсортированные по id.
func (b *BusinessRepository) GetByOwnerID(ctx context.Context, ownerID int64) ([]domain.Business, error) {
	rows, err := b.db.Query(ctx, `
		SELECT `+businessColumns+` FROM businesses WHERE owner_id = $1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, convertErr(err, "listing businesses of user %d", ownerID)
	}
	defer rows.Close()

	var businesses []domain.Business
	for rows.Next() {
		business, scanErr := scanBusiness(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning business")
		}
		businesses = append(businesses, *business)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "listing businesses of user %d", ownerID)
	}
	return businesses, nil
}

func (b *BusinessRepository) Update(
	ctx context.Context,
	id int64,
	args repoargs.UpdateBusiness,
) (*domain.Business, error) {
	row := b.db.QueryRow(ctx, `
		UPDATE businesses
		SET name = $2, city = $3, region = $4, description = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+businessColumns,
		id, args.Name, args.City, args.Region, args.Description)

	business, err := scanBusiness(row)
	if err != nil {
		return nil, convertErr(err, "updating business %d", id)
	}
	return business, nil
}

func (b *BusinessRepository) UpdateLogo(ctx context.Context, id int64, logo string) error {
	tag, err := b.db.Exec(ctx, `UPDATE businesses SET logo = $2, updated_at = now() WHERE id = $1`, id, logo)
	if err != nil {
		return convertErr(err, "updating logo of business %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(errNoRowsAffected, "updating logo of business %d", id)
	}
	return nil
}

func (b *BusinessRepository) Delete(ctx context.Context, id int64) error {
	tag, err := b.db.Exec(ctx, `DELETE FROM businesses WHERE id = $1`, id)
	if err != nil {
		return convertErr(err, "deleting business %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(errNoRowsAffected, "deleting business %d", id)
	}
	return nil
}

func scanBusiness(row rowScanner) (*domain.Business, error) {
	var business domain.Business
	err := row.Scan(
		&business.ID,
		&business.CreatedAt,
		&business.UpdatedAt,
		&business.Name,
		&business.City,
		&business.Region,
		&business.Description,
		&business.Logo,
		&business.OwnerID,
	)
	if err != nil {
		return nil, err
	}
	return &business, nil
}

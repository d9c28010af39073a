package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/pkg/uow"
)

const productColumns = "id, created_at, updated_at, name, category, original_price, new_price, " +
	"percentage_discount, offer_expiration_date, image, date_published, quantity, business_id"

type ProductRepository struct {
	db uow.DBTX
}

func NewProductRepository(db uow.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

func (p *ProductRepository) Create(ctx context.Context, args repoargs.CreateProduct) (*domain.Product, error) {
	row := p.db.QueryRow(ctx, `
		INSERT INTO products
			(name, category, original_price, new_price, percentage_discount, offer_expiration_date, quantity, business_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+productColumns,
		args.Name, args.Category, args.OriginalPrice, args.NewPrice,
		args.PercentageDiscount, args.OfferExpirationDate, args.Quantity, args.BusinessID)

	product, err := scanProduct(row)
	if err != nil {
		return nil, convertErr(err, "creating product")
	}
	return product, nil
}

func (p *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	row := p.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProduct(row)
	if err != nil {
		return nil, convertErr(err, "finding product by id %d", id)
	}
	return product, nil
}

// FindByIDForUpdate берет строку продукта под блокировку (SELECT ... FOR UPDATE).
// Вызывать только внутри транзакции: критическая секция создания заказа
// (чтение остатка -> декремент -> вставка заказа) сериализуется на этой блокировке.
func (p *ProductRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	row := p.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
	product, err := scanProduct(row)
	if err != nil {
		return nil, convertErr(err, "locking product %d", id)
	}
	return product, nil
}

func (p *ProductRepository) List(ctx context.Context, page repoargs.Page) ([]domain.Product, error) {
	rows, err := p.db.Query(ctx, `
		SELECT `+productColumns+` FROM products
		ORDER BY id
		LIMIT $1 OFFSET $2`, page.Size, page.Offset())
	if err != nil {
		return nil, convertErr(err, "listing products")
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (p *ProductRepository) GetByBusinessID(ctx context.Context, businessID int64) ([]domain.Product, error) {
	rows, err := p.db.Query(ctx, `
		SELECT `+productColumns+` FROM products WHERE business_id = $1 ORDER BY id`, businessID)
	if err != nil {
		return nil, convertErr(err, "listing products of business %d", businessID)
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (p *ProductRepository) CountByBusinessID(ctx context.Context, businessID int64) (int64, error) {
	var count int64
	err := p.db.QueryRow(ctx, `SELECT count(*) FROM products WHERE business_id = $1`, businessID).Scan(&count)
	if err != nil {
		return 0, convertErr(err, "counting products of business %d", businessID)
	}
	return count, nil
}

func (p *ProductRepository) Update(ctx context.Context, id int64, args repoargs.UpdateProduct) (*domain.Product, error) {
	row := p.db.QueryRow(ctx, `
		UPDATE products
		SET name = $2, category = $3, original_price = $4, new_price = $5,
		    percentage_discount = $6, offer_expiration_date = $7, quantity = $8, updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns,
		id, args.Name, args.Category, args.OriginalPrice, args.NewPrice,
		args.PercentageDiscount, args.OfferExpirationDate, args.Quantity)

	product, err := scanProduct(row)
	if err != nil {
		return nil, convertErr(err, "updating product %d", id)
	}
	return product, nil
}

func (p *ProductRepository) UpdateImage(ctx context.Context, id int64, image string) error {
	tag, err := p.db.Exec(ctx, `UPDATE products SET image = $2, updated_at = now() WHERE id = $1`, id, image)
	if err != nil {
		return convertErr(err, "updating image of product %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(errNoRowsAffected, "updating image of product %d", id)
	}
	return nil
}

// DecrementQuantity уменьшает остаток. Инвариант quantity >= 0 дополнительно
// защищен check-констрейнтом в схеме.
func (p *ProductRepository) DecrementQuantity(ctx context.Context, id int64, by int64) error {
	tag, err := p.db.Exec(ctx, `
		UPDATE products SET quantity = quantity - $2, updated_at = now() WHERE id = $1`, id, by)
	if err != nil {
		return convertErr(err, "decrementing quantity of product %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(errNoRowsAffected, "decrementing quantity of product %d", id)
	}
	return nil
}

func (p *ProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return convertErr(err, "deleting product %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(errNoRowsAffected, "deleting product %d", id)
	}
	return nil
}

func collectProducts(rows pgx.Rows) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		product, scanErr := scanProduct(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning product")
		}
		products = append(products, *product)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "listing products")
	}
	return products, nil
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var product domain.Product
	err := row.Scan(
		&product.ID,
		&product.CreatedAt,
		&product.UpdatedAt,
		&product.Name,
		&product.Category,
		&product.OriginalPrice,
		&product.NewPrice,
		&product.PercentageDiscount,
		&product.OfferExpirationDate,
		&product.Image,
		&product.DatePublished,
		&product.Quantity,
		&product.BusinessID,
	)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

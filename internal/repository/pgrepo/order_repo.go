package pgrepo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/pkg/uow"
)

const orderColumns = "id, created_at, updated_at, product_id, user_id, quantity, total_price, status"

type OrderRepository struct {
	db uow.DBTX
}

func NewOrderRepository(db uow.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func (o *OrderRepository) Create(ctx context.Context, args repoargs.CreateOrder) (*domain.Order, error) {
	row := o.db.QueryRow(ctx, `
		INSERT INTO orders (product_id, user_id, quantity, total_price, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+orderColumns,
		args.ProductID, args.UserID, args.Quantity, args.TotalPrice, args.Status)

	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "creating order")
	}
	return order, nil
}

func (o *OrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	row := o.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "finding order by id %d", id)
	}
	return order, nil
}

// GetByUserID возвращает заказы юзера отсортированные по дате создания по убыванию.
func (o *OrderRepository) GetByUserID(ctx context.Context, userID int64, page repoargs.Page) ([]domain.Order, error) {
	rows, err := o.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, page.Size, page.Offset())
	if err != nil {
		return nil, convertErr(err, "listing orders of user %d", userID)
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (o *OrderRepository) List(ctx context.Context, page repoargs.Page) ([]domain.Order, error) {
	rows, err := o.db.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		ORDER BY id
		LIMIT $1 OFFSET $2`, page.Size, page.Offset())
	if err != nil {
		return nil, convertErr(err, "listing orders")
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (o *OrderRepository) UpdateStatus(
	ctx context.Context,
	id int64,
	status domain.OrderStatusType,
) (*domain.Order, error) {
	row := o.db.QueryRow(ctx, `
		UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns, id, status)

	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "updating status of order %d", id)
	}
	return order, nil
}

// UpdateQuantity меняет только количество. total_price остается снепшотом
// на момент создания заказа, остаток продукта не корректируется.
func (o *OrderRepository) UpdateQuantity(ctx context.Context, id int64, quantity int64) (*domain.Order, error) {
	row := o.db.QueryRow(ctx, `
		UPDATE orders SET quantity = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns, id, quantity)

	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "updating quantity of order %d", id)
	}
	return order, nil
}

func (o *OrderRepository) Delete(ctx context.Context, id int64) error {
	tag, err := o.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return convertErr(err, "deleting order %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(errNoRowsAffected, "deleting order %d", id)
	}
	return nil
}

func collectOrders(rows pgx.Rows) ([]domain.Order, error) {
	var orders []domain.Order
	for rows.Next() {
		order, scanErr := scanOrder(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning order")
		}
		orders = append(orders, *order)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "listing orders")
	}
	return orders, nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.ProductID,
		&order.UserID,
		&order.Quantity,
		&order.TotalPrice,
		&order.Status,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-market/internal/domain"
	"github.com/fsdevblog/groph-market/internal/repository/repoargs"
	"github.com/fsdevblog/groph-market/pkg/uow"
)

const userColumns = "id, created_at, updated_at, username, email, encrypted_password, is_verified, role"

type UserRepository struct {
	db uow.DBTX
}

func NewUserRepository(db uow.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create создает юзера. При конфликте юзернейма или email возвращает ошибку
// domain.ErrDuplicateKey, во всех других случаях - domain.ErrUnknown.
func (u *UserRepository) Create(ctx context.Context, args repoargs.CreateUser) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `
		INSERT INTO users (username, email, encrypted_password, role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		args.Username, args.Email, args.Password, args.Role)

	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "creating user")
	}
	return user, nil
}

// FindByUsername возвращает ошибку domain.ErrRecordNotFound если запись не найдена.
func (u *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by username %s", username)
	}
	return user, nil
}

func (u *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by id %d", id)
	}
	return user, nil
}

// Update обновляет только не-nil поля args.
func (u *UserRepository) Update(ctx context.Context, id int64, args repoargs.UpdateUser) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `
		UPDATE users
		SET username           = COALESCE($2, username),
		    encrypted_password = COALESCE($3, encrypted_password),
		    updated_at         = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, args.Username, args.Password)

	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "updating user %d", id)
	}
	return user, nil
}

// MarkVerified выставляет флаг is_verified.
func (u *UserRepository) MarkVerified(ctx context.Context, id int64) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `
		UPDATE users SET is_verified = TRUE, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, id)

	user, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "verifying user %d", id)
	}
	return user, nil
}

func (u *UserRepository) List(ctx context.Context, page repoargs.Page) ([]domain.User, error) {
	rows, err := u.db.Query(ctx, `
		SELECT `+userColumns+` FROM users
		ORDER BY id
		LIMIT $1 OFFSET $2`, page.Size, page.Offset())
	if err != nil {
		return nil, convertErr(err, "listing users")
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, scanErr := scanUser(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning user")
		}
		users = append(users, *user)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "listing users")
	}
	return users, nil
}

func (u *UserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := u.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return convertErr(err, "deleting user %d", id)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(errNoRowsAffected, "deleting user %d", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Username,
		&user.Email,
		&user.Password,
		&user.IsVerified,
		&user.Role,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

package repoargs

import "github.com/fsdevblog/groph-market/internal/domain"

type CreateUser struct {
	Username string
	Email    string
	Password string
	Role     domain.RoleType
}

// UpdateUser nil-поля не трогаются.
type UpdateUser struct {
	Username *string
	Password *string
}

package ports

import (
	"context"
	"errors"

	"github.com/Apurer/supplychain-tracker/internal/domains/users/domain"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrDuplicate          = errors.New("username or email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAdminExists        = errors.New("an admin account already exists")
)

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// List returns every user ordered by username.
	List(ctx context.Context) ([]*domain.User, error)
	// Update rewrites the verification state of an existing user.
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	CountByRole(ctx context.Context, role identity.Role) (int64, error)
}

package ports

import (
	"context"

	"github.com/Apurer/supplychain-tracker/internal/domains/users/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/users/domain"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

// Service exposes user bounded context use cases to adapters.
type Service interface {
	Register(ctx context.Context, input types.RegisterInput) (*domain.User, error)
	CreateFirstAdmin(ctx context.Context, input types.RegisterInput) (*domain.User, error)
	CreateAdmin(ctx context.Context, actor identity.Actor, input types.RegisterInput) (*domain.User, error)
	ListUsers(ctx context.Context, input types.ListUsersInput) ([]*domain.User, error)
	ReviewUser(ctx context.Context, input types.ReviewInput) (*domain.User, error)
	Login(ctx context.Context, input types.LoginInput) (*types.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	Authenticate(ctx context.Context, token string) (*types.Principal, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Lookup(ctx context.Context, id string) (identity.Reference, error)
}

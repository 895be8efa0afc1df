package types

import (
	"time"

	"github.com/Apurer/supplychain-tracker/internal/domains/users/domain"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

// RegisterInput carries a sign-up request. Admin creation ignores Role.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	Role        string
	CompanyName string
}

// LoginInput carries credentials plus the caller address used for throttling.
type LoginInput struct {
	Username string
	Password string
	ClientIP string
}

// LoginResult is a signed token and the user it was issued to.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Principal is the caller resolved from a bearer token.
type Principal struct {
	Actor     identity.Actor
	SessionID string
}

// ListUsersInput filters the admin user listing. Empty fields match everything.
type ListUsersInput struct {
	Actor        identity.Actor
	Role         string
	Verification string
}

// ReviewInput is an admin's verify or reject decision on a user.
type ReviewInput struct {
	Actor  identity.Actor
	UserID string
	Action string
	Notes  string
}

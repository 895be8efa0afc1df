package mapper

import (
	"time"

	usertypes "github.com/Apurer/supplychain-tracker/internal/domains/users/application/types"
	userdomain "github.com/Apurer/supplychain-tracker/internal/domains/users/domain"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

// Register is the sign-up payload.
type Register struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Role        string `json:"role" binding:"required"`
	CompanyName string `json:"companyName,omitempty"`
}

// AdminRegister creates an admin account; the role is implied.
type AdminRegister struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	CompanyName string `json:"companyName,omitempty"`
}

// Review is an admin's verification decision.
type Review struct {
	Action string `json:"action" binding:"required"`
	Notes  string `json:"notes,omitempty"`
}

// Credentials is the login payload.
type Credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// User is the transport-level user view. The password hash never leaves the service.
type User struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	CompanyName  string       `json:"companyName,omitempty"`
	DisplayName  string       `json:"displayName"`
	Role         string       `json:"role"`
	Status       string       `json:"status"`
	Verification string       `json:"verificationStatus"`
	LastReview   *ReviewEntry `json:"review,omitempty"`
	CreatedAt    *time.Time   `json:"createdAt,omitempty"`
}

// ReviewEntry is the latest verification decision on a user.
type ReviewEntry struct {
	Decision   string    `json:"action"`
	Notes      string    `json:"notes,omitempty"`
	ReviewedBy string    `json:"reviewedBy"`
	ReviewedAt time.Time `json:"reviewedAt"`
}

// Session is returned by a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

func ToRegisterInput(payload Register) usertypes.RegisterInput {
	return usertypes.RegisterInput{
		Username:    payload.Username,
		Email:       payload.Email,
		Password:    payload.Password,
		Role:        payload.Role,
		CompanyName: payload.CompanyName,
	}
}

func ToAdminRegisterInput(payload AdminRegister) usertypes.RegisterInput {
	return usertypes.RegisterInput{
		Username:    payload.Username,
		Email:       payload.Email,
		Password:    payload.Password,
		CompanyName: payload.CompanyName,
	}
}

func ToReviewInput(actor identity.Actor, userID string, payload Review) usertypes.ReviewInput {
	return usertypes.ReviewInput{Actor: actor, UserID: userID, Action: payload.Action, Notes: payload.Notes}
}

func ToLoginInput(payload Credentials, clientIP string) usertypes.LoginInput {
	return usertypes.LoginInput{Username: payload.Username, Password: payload.Password, ClientIP: clientIP}
}

// FromDomainUser converts a domain user into a transport representation.
func FromDomainUser(user *userdomain.User) User {
	if user == nil {
		return User{}
	}
	out := User{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		CompanyName:  user.CompanyName,
		DisplayName:  user.DisplayName(),
		Role:         string(user.Role),
		Status:       string(user.Status),
		Verification: string(user.Verification),
	}
	if !user.CreatedAt.IsZero() {
		created := user.CreatedAt
		out.CreatedAt = &created
	}
	if r := user.LastReview; r != nil {
		out.LastReview = &ReviewEntry{
			Decision:   string(r.Decision),
			Notes:      r.Notes,
			ReviewedBy: r.ReviewedBy.DisplayName,
			ReviewedAt: r.ReviewedAt,
		}
	}
	return out
}

func FromDomainUsers(users []*userdomain.User) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		out = append(out, FromDomainUser(u))
	}
	return out
}

func FromLoginResult(result *usertypes.LoginResult) Session {
	if result == nil {
		return Session{}
	}
	return Session{Token: result.Token, ExpiresAt: result.ExpiresAt, User: FromDomainUser(result.User)}
}

package domain

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

var (
	ErrEmptyUsername = errors.New("username is required")
	ErrEmptyPassword = errors.New("password is required")
	ErrInvalidEmail  = errors.New("email must contain '@'")
	ErrWeakPassword  = errors.New("password must be at least 6 characters")
	ErrUnknownRole   = errors.New("unknown role")
	ErrInactive      = errors.New("user is not active")
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// Status flags whether a user may sign in.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// User is a registered party of the supply chain.
type User struct {
	ID           string
	Username     string
	Email        string
	CompanyName  string
	Role         identity.Role
	PasswordHash string
	Status       Status
	Verification Verification
	LastReview   *Review
	CreatedAt    time.Time
}

// NewUser builds an active user and hashes password. Verification starts at
// InitialVerification(role).
func NewUser(id, username, email, password string, role identity.Role) (*User, error) {
	user := &User{ID: id, Status: StatusActive, Verification: InitialVerification(role)}
	if err := user.SetUsername(username); err != nil {
		return nil, err
	}
	if err := user.SetEmail(email); err != nil {
		return nil, err
	}
	if _, ok := identity.ParseRole(string(role)); !ok {
		return nil, ErrUnknownRole
	}
	user.Role = role
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	return user, nil
}

// SetUsername trims and validates the username.
func (u *User) SetUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrEmptyUsername
	}
	u.Username = username
	return nil
}

// SetEmail validates and lowercases email.
func (u *User) SetEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	u.Email = email
	return nil
}

// SetPassword stores a bcrypt hash of password.
func (u *User) SetPassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return ErrEmptyPassword
	}
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" || password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// DisplayName is the company name when set, otherwise the username.
func (u *User) DisplayName() string {
	if name := strings.TrimSpace(u.CompanyName); name != "" {
		return name
	}
	return u.Username
}

// Reference resolves the user to a party reference.
func (u *User) Reference() identity.Reference {
	return identity.Reference{ID: u.ID, DisplayName: u.DisplayName()}
}

// Actor returns the user as an authenticated caller.
func (u *User) Actor() identity.Actor {
	return identity.Actor{ID: u.ID, Role: u.Role, DisplayName: u.DisplayName()}
}

// Active reports whether the user may sign in.
func (u *User) Active() bool {
	return u.Status == "" || u.Status == StatusActive
}

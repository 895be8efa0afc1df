package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/supplychain-tracker/internal/domains/users/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/users/domain"
	"github.com/Apurer/supplychain-tracker/internal/domains/users/ports"
	"github.com/Apurer/supplychain-tracker/internal/platform/auth"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

// Service exposes user bounded context use cases.
type Service struct {
	// bootstrap serializes CreateFirstAdmin within the process.
	bootstrap sync.Mutex
	repo      ports.Repository
	sessions  ports.SessionStore
	tokens    ports.TokenIssuer
	limiter   ports.AttemptLimiter
	now       func() time.Time
	newID     func() string
}

// Option customizes the service.
type Option func(*Service)

// WithAttemptLimiter throttles logins per username and client address.
func WithAttemptLimiter(l ports.AttemptLimiter) Option {
	return func(s *Service) {
		s.limiter = l
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides user id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewService wires the users service.
func NewService(repo ports.Repository, sessions ports.SessionStore, tokens ports.TokenIssuer, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		sessions: sessions,
		tokens:   tokens,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Register creates a user through the public form. Admin accounts come from
// CreateFirstAdmin or CreateAdmin only.
func (s *Service) Register(ctx context.Context, input types.RegisterInput) (*domain.User, error) {
	role, ok := identity.ParseRole(input.Role)
	if !ok {
		return nil, mapError(fmt.Errorf("%w: %q", domain.ErrUnknownRole, input.Role))
	}
	if err := domain.CheckSelfService(role); err != nil {
		return nil, mapError(err)
	}
	return s.create(ctx, input, role)
}

// CreateFirstAdmin bootstraps the admin account of an empty installation and
// is refused once any admin exists.
func (s *Service) CreateFirstAdmin(ctx context.Context, input types.RegisterInput) (*domain.User, error) {
	s.bootstrap.Lock()
	defer s.bootstrap.Unlock()
	admins, err := s.repo.CountByRole(ctx, identity.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if admins > 0 {
		return nil, mapError(ports.ErrAdminExists)
	}
	return s.create(ctx, input, identity.RoleAdmin)
}

// CreateAdmin lets an admin add another admin.
func (s *Service) CreateAdmin(ctx context.Context, actor identity.Actor, input types.RegisterInput) (*domain.User, error) {
	if !actor.Is(identity.RoleAdmin) {
		return nil, mapError(domain.ErrAdminOnly)
	}
	return s.create(ctx, input, identity.RoleAdmin)
}

func (s *Service) create(ctx context.Context, input types.RegisterInput, role identity.Role) (*domain.User, error) {
	user, err := domain.NewUser(s.newID(), input.Username, input.Email, input.Password, role)
	if err != nil {
		return nil, mapError(err)
	}
	user.CompanyName = strings.TrimSpace(input.CompanyName)
	user.CreatedAt = s.now().UTC()
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	return created, nil
}

// ListUsers returns users matching the filters. Admin only.
func (s *Service) ListUsers(ctx context.Context, input types.ListUsersInput) ([]*domain.User, error) {
	if !input.Actor.Is(identity.RoleAdmin) {
		return nil, mapError(domain.ErrAdminOnly)
	}
	var role identity.Role
	if raw := strings.TrimSpace(input.Role); raw != "" {
		parsed, ok := identity.ParseRole(raw)
		if !ok {
			return nil, mapError(fmt.Errorf("%w: %q", domain.ErrUnknownRole, raw))
		}
		role = parsed
	}
	verification := domain.Verification(strings.ToLower(strings.TrimSpace(input.Verification)))
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]*domain.User, 0, len(all))
	for _, u := range all {
		if role != "" && u.Role != role {
			continue
		}
		if verification != "" && u.Verification != verification {
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

// ReviewUser verifies or rejects an account. Rejecting revokes the user's
// sessions so existing tokens stop working.
func (s *Service) ReviewUser(ctx context.Context, input types.ReviewInput) (*domain.User, error) {
	if !input.Actor.Is(identity.RoleAdmin) {
		return nil, mapError(domain.ErrAdminOnly)
	}
	decision, err := domain.ParseDecision(input.Action)
	if err != nil {
		return nil, mapError(err)
	}
	user, err := s.repo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, mapError(err)
	}
	if err := user.ApplyReview(input.Actor, decision, input.Notes, s.now().UTC()); err != nil {
		return nil, mapError(err)
	}
	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	if updated.Rejected() {
		if _, err := s.sessions.DeleteByUser(ctx, updated.ID); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

// Login checks credentials, issues a token and records its session.
func (s *Service) Login(ctx context.Context, input types.LoginInput) (*types.LoginResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, strings.ToLower(username)+"|"+input.ClientIP)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, mapError(ports.ErrTooManyAttempts)
		}
	}
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, mapError(ports.ErrInvalidCredentials)
		}
		return nil, err
	}
	if !user.CheckPassword(input.Password) {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	if !user.Active() {
		return nil, mapError(domain.ErrInactive)
	}
	if user.Rejected() {
		return nil, mapError(domain.ErrRejected)
	}
	issued, err := s.tokens.Issue(auth.Subject{
		UserID:      user.ID,
		Username:    user.Username,
		Role:        string(user.Role),
		DisplayName: user.DisplayName(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, domain.Session{ID: issued.ID, UserID: user.ID, ExpiresAt: issued.ExpiresAt}); err != nil {
		return nil, err
	}
	return &types.LoginResult{Token: issued.Token, ExpiresAt: issued.ExpiresAt, User: user}, nil
}

// Logout deletes the session; later requests with its token are rejected.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

// Authenticate validates token and requires its session to still exist.
func (s *Service) Authenticate(ctx context.Context, token string) (*types.Principal, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	session, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		return nil, mapError(err)
	}
	if session.Expired(s.now()) || session.UserID != claims.UserID {
		return nil, mapError(ports.ErrSessionNotFound)
	}
	role, ok := identity.ParseRole(claims.Role)
	if !ok {
		return nil, mapError(domain.ErrUnknownRole)
	}
	return &types.Principal{
		Actor:     identity.Actor{ID: claims.UserID, Role: role, DisplayName: claims.DisplayName},
		SessionID: claims.ID,
	}, nil
}

// GetByID returns a single user.
func (s *Service) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

// Lookup resolves id to a party reference.
func (s *Service) Lookup(ctx context.Context, id string) (identity.Reference, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return identity.Reference{}, err
	}
	return user.Reference(), nil
}

var _ ports.Service = (*Service)(nil)

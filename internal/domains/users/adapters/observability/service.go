package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	usertypes "github.com/Apurer/supplychain-tracker/internal/domains/users/application/types"
	userdomain "github.com/Apurer/supplychain-tracker/internal/domains/users/domain"
	userports "github.com/Apurer/supplychain-tracker/internal/domains/users/ports"
	platformobs "github.com/Apurer/supplychain-tracker/internal/platform/observability"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

const tracerName = "github.com/Apurer/supplychain-tracker/internal/domains/users/adapters/observability/service"

// Service decorates the user service with tracing, logging, and metrics.
type Service struct {
	inner   userports.Service
	obs     *platformobs.Decorator
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.obs.SetLogger(logger) }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.obs.SetTracer(tr) }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core user service.
func New(inner userports.Service, opts ...Option) userports.Service {
	s := &Service{
		inner: inner,
		obs:   platformobs.NewDecorator(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) Register(ctx context.Context, input usertypes.RegisterInput) (*userdomain.User, error) {
	ctx, span := s.obs.Start(ctx, "UserService.Register",
		attribute.String("user.username", input.Username),
		attribute.String("user.role", input.Role),
	)
	defer span.End()
	s.obs.Info(ctx, "registering user", slog.String("username", input.Username), slog.String("role", input.Role))
	result, err := s.inner.Register(ctx, input)
	if err != nil {
		return nil, s.obs.Fail(ctx, span, err, "failed to register user", slog.String("username", input.Username))
	}
	platformobs.AddCounter(ctx, s.metrics.registered, 1, attribute.String("role", string(result.Role)))
	s.obs.Info(ctx, "user registered", slog.String("user.id", result.ID))
	return result, nil
}

func (s *Service) CreateFirstAdmin(ctx context.Context, input usertypes.RegisterInput) (*userdomain.User, error) {
	ctx, span := s.obs.Start(ctx, "UserService.CreateFirstAdmin", attribute.String("user.username", input.Username))
	defer span.End()
	result, err := s.inner.CreateFirstAdmin(ctx, input)
	if err != nil {
		return nil, s.obs.Fail(ctx, span, err, "failed to bootstrap admin", slog.String("username", input.Username))
	}
	platformobs.AddCounter(ctx, s.metrics.registered, 1, attribute.String("role", string(result.Role)))
	s.obs.Info(ctx, "first admin created", slog.String("user.id", result.ID))
	return result, nil
}

func (s *Service) CreateAdmin(ctx context.Context, actor identity.Actor, input usertypes.RegisterInput) (*userdomain.User, error) {
	ctx, span := s.obs.Start(ctx, "UserService.CreateAdmin",
		attribute.String("actor.id", actor.ID),
		attribute.String("user.username", input.Username),
	)
	defer span.End()
	result, err := s.inner.CreateAdmin(ctx, actor, input)
	if err != nil {
		return nil, s.obs.Fail(ctx, span, err, "failed to create admin", slog.String("actor.id", actor.ID))
	}
	platformobs.AddCounter(ctx, s.metrics.registered, 1, attribute.String("role", string(result.Role)))
	s.obs.Info(ctx, "admin created", slog.String("user.id", result.ID), slog.String("actor.id", actor.ID))
	return result, nil
}

func (s *Service) ListUsers(ctx context.Context, input usertypes.ListUsersInput) ([]*userdomain.User, error) {
	ctx, span := s.obs.Start(ctx, "UserService.ListUsers",
		attribute.String("actor.id", input.Actor.ID),
		attribute.String("filter.role", input.Role),
		attribute.String("filter.verification", input.Verification),
	)
	defer span.End()
	users, err := s.inner.ListUsers(ctx, input)
	if err != nil {
		return nil, s.obs.Fail(ctx, span, err, "failed to list users")
	}
	span.SetAttributes(attribute.Int("users.count", len(users)))
	return users, nil
}

func (s *Service) ReviewUser(ctx context.Context, input usertypes.ReviewInput) (*userdomain.User, error) {
	ctx, span := s.obs.Start(ctx, "UserService.ReviewUser",
		attribute.String("actor.id", input.Actor.ID),
		attribute.String("user.id", input.UserID),
		attribute.String("review.action", input.Action),
	)
	defer span.End()
	result, err := s.inner.ReviewUser(ctx, input)
	if err != nil {
		return nil, s.obs.Fail(ctx, span, err, "failed to review user", slog.String("user.id", input.UserID))
	}
	platformobs.AddCounter(ctx, s.metrics.reviews, 1, attribute.String("verification", string(result.Verification)))
	s.obs.Info(ctx, "user reviewed", slog.String("user.id", result.ID), slog.String("verification", string(result.Verification)))
	return result, nil
}

func (s *Service) Login(ctx context.Context, input usertypes.LoginInput) (*usertypes.LoginResult, error) {
	ctx, span := s.obs.Start(ctx, "UserService.Login", attribute.String("user.username", input.Username))
	defer span.End()
	result, err := s.inner.Login(ctx, input)
	if err != nil {
		platformobs.AddCounter(ctx, s.metrics.loginFailures, 1)
		return nil, s.obs.Fail(ctx, span, err, "login failed", slog.String("username", input.Username))
	}
	platformobs.AddCounter(ctx, s.metrics.logins, 1)
	return result, nil
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	ctx, span := s.obs.Start(ctx, "UserService.Logout")
	defer span.End()
	if err := s.inner.Logout(ctx, sessionID); err != nil {
		return s.obs.Fail(ctx, span, err, "logout failed")
	}
	return nil
}

// Authenticate runs on every request and only traces.
func (s *Service) Authenticate(ctx context.Context, token string) (*usertypes.Principal, error) {
	ctx, span := s.obs.Start(ctx, "UserService.Authenticate")
	defer span.End()
	principal, err := s.inner.Authenticate(ctx, token)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("actor.id", principal.Actor.ID), attribute.String("actor.role", string(principal.Actor.Role)))
	return principal, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	ctx, span := s.obs.Start(ctx, "UserService.GetByID", attribute.String("user.id", id))
	defer span.End()
	return s.inner.GetByID(ctx, id)
}

func (s *Service) Lookup(ctx context.Context, id string) (identity.Reference, error) {
	ctx, span := s.obs.Start(ctx, "UserService.Lookup", attribute.String("user.id", id))
	defer span.End()
	return s.inner.Lookup(ctx, id)
}

type serviceMetrics struct {
	registered    metric.Int64Counter
	logins        metric.Int64Counter
	loginFailures metric.Int64Counter
	reviews       metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	registered, _ := m.Int64Counter("users.service.registered", metric.WithDescription("Number of users registered"))
	logins, _ := m.Int64Counter("users.service.logins", metric.WithDescription("Number of successful logins"))
	failures, _ := m.Int64Counter("users.service.login_failures", metric.WithDescription("Number of rejected logins"))
	reviews, _ := m.Int64Counter("users.service.reviews", metric.WithDescription("Number of verification decisions"))
	return serviceMetrics{registered: registered, logins: logins, loginFailures: failures, reviews: reviews}
}

var _ userports.Service = (*Service)(nil)

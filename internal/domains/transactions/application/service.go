package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/supplychain-tracker/internal/domains/transactions/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/transactions/domain"
	"github.com/Apurer/supplychain-tracker/internal/domains/transactions/ports"
	"github.com/Apurer/supplychain-tracker/internal/shared/events"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
	"github.com/Apurer/supplychain-tracker/internal/shared/tracking"
)

// Listing bounds.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps (page-1)*limit far from integer overflow.
	MaxPage = 1_000_000
)

var errInvalidQuery = errors.New("invalid list query")

// Service orchestrates transaction use cases.
type Service struct {
	repo      ports.Repository
	parties   ports.PartyDirectory
	products  identity.Directory
	publisher events.Publisher
	now       func() time.Time
	newID     func() string
}

// Option customizes the service.
type Option func(*Service)

// WithPublisher sets where transaction events go after a successful write.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
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

// WithIDGenerator overrides entity id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

func NewService(repo ports.Repository, parties ports.PartyDirectory, products identity.Directory, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		parties:   parties,
		products:  products,
		publisher: events.Discard,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateTransaction records a pending transfer seeded with one note.
func (s *Service) CreateTransaction(ctx context.Context, input types.CreateTransactionInput) (*types.TransactionProjection, error) {
	if input.Actor.ID == "" || input.Actor.Is(identity.RoleCustomer) {
		return nil, mapError(domain.ErrCreateForbidden)
	}
	if strings.TrimSpace(input.ProductID) == "" {
		return nil, mapError(domain.ErrMissingProduct)
	}
	if strings.TrimSpace(input.ToUserID) == "" {
		return nil, mapError(domain.ErrMissingParty)
	}
	product, err := s.products.Lookup(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	fromID := strings.TrimSpace(input.FromUserID)
	if fromID == "" {
		fromID = input.Actor.ID
	}
	if fromID != input.Actor.ID && !input.Actor.Is(identity.RoleAdmin, identity.RoleManufacturer) {
		return nil, mapError(domain.ErrCreateForbidden)
	}
	from, err := s.parties.LookupParty(ctx, fromID)
	if err != nil {
		return nil, err
	}
	to, err := s.parties.LookupParty(ctx, input.ToUserID)
	if err != nil {
		return nil, err
	}
	id := s.newID()
	for attempt := 0; ; attempt++ {
		tx, err := domain.NewTransaction(id, tracking.Number("TXN", tracking.Seed(id, attempt)), product, from, to, input.Quantity, input.Note, input.Actor.Reference(), s.now())
		if err != nil {
			return nil, mapError(err)
		}
		if len(input.Metadata) > 0 {
			tx.Metadata = make(map[string]string, len(input.Metadata))
			for k, v := range input.Metadata {
				tx.Metadata[k] = v
			}
		}
		saved, err := s.repo.Create(ctx, tx)
		if tracking.Retry(errors.Is(err, ports.ErrDuplicate), attempt) {
			continue
		}
		if err != nil {
			return nil, mapError(err)
		}
		s.publish(ctx, tx)
		return saved, nil
	}
}

// UpdateTransactionStatus sets status and appends exactly one note.
func (s *Service) UpdateTransactionStatus(ctx context.Context, input types.UpdateStatusInput) (*types.TransactionProjection, error) {
	target, err := domain.ParseStatus(input.Status)
	if err != nil {
		return nil, mapError(err)
	}
	current, err := s.repo.GetByID(ctx, input.TransactionID)
	if err != nil {
		return nil, mapError(err)
	}
	tx := current.Entity
	if err := tx.UpdateStatus(input.Actor, target, input.Note, s.now()); err != nil {
		return nil, mapError(fmt.Errorf("transaction %s: %w", input.TransactionID, err))
	}
	saved, err := s.repo.Update(ctx, tx, current.Metadata.Version)
	if err != nil {
		return nil, mapError(fmt.Errorf("transaction %s: %w", input.TransactionID, err))
	}
	s.publish(ctx, tx)
	return saved, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*types.TransactionProjection, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// List validates the query and returns one page of matches.
func (s *Service) List(ctx context.Context, input types.ListTransactionsInput) (*types.TransactionPage, error) {
	filter, page, err := normalizeQuery(input)
	if err != nil {
		return nil, mapError(err)
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	return &types.TransactionPage{Items: items, Total: total, Page: page, Limit: filter.Limit}, nil
}

func normalizeQuery(input types.ListTransactionsInput) (ports.ListFilter, int, error) {
	filter := ports.ListFilter{
		From:      input.FromDate,
		To:        input.ToDate,
		ProductID: strings.TrimSpace(input.ProductID),
		UserID:    strings.TrimSpace(input.UserID),
		Search:    strings.TrimSpace(input.Search),
	}
	if strings.TrimSpace(input.Status) != "" {
		status, err := domain.ParseStatus(input.Status)
		if err != nil {
			return filter, 0, err
		}
		filter.Status = status
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, 0, fmt.Errorf("%w: toDate is before fromDate", errInvalidQuery)
	}
	page := input.Page
	if page <= 0 {
		page = 1
	}
	limit := input.Limit
	switch {
	case limit <= 0:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}
	if page > MaxPage {
		return filter, 0, fmt.Errorf("%w: page must not exceed %d", errInvalidQuery, MaxPage)
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	switch input.SortBy {
	case "", ports.SortByCreatedAt:
		filter.SortBy = ports.SortByCreatedAt
	case ports.SortByUpdatedAt, ports.SortByStatus:
		filter.SortBy = input.SortBy
	default:
		return filter, 0, fmt.Errorf("%w: unknown sortBy %q", errInvalidQuery, input.SortBy)
	}
	switch strings.ToLower(input.SortOrder) {
	case "", "desc":
		filter.Descending = true
	case "asc":
	default:
		return filter, 0, fmt.Errorf("%w: unknown sortOrder %q", errInvalidQuery, input.SortOrder)
	}
	return filter, page, nil
}

// publish is best effort; the write already happened.
func (s *Service) publish(ctx context.Context, tx *domain.Transaction) {
	_ = events.PublishAll(ctx, s.publisher, tx.ID, tx)
}

var _ ports.Service = (*Service)(nil)

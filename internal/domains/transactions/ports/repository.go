package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/supplychain-tracker/internal/domains/transactions/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/transactions/domain"
)

var (
	ErrNotFound = errors.New("transaction not found")
	// ErrVersionConflict means the stored transaction changed since it was read.
	ErrVersionConflict = errors.New("transaction was modified concurrently")
	ErrDuplicate       = errors.New("transaction already exists")
)

// Sort columns accepted by List.
const (
	SortByCreatedAt = "createdAt"
	SortByUpdatedAt = "updatedAt"
	SortByStatus    = "status"
)

// ListFilter is a normalized listing query. Offset and Limit are already
// validated by the service.
type ListFilter struct {
	Status     domain.Status
	From       *time.Time
	To         *time.Time
	ProductID  string
	UserID     string
	Search     string
	SortBy     string
	Descending bool
	Offset     int
	Limit      int
}

// Repository persists transactions. Update writes only when the stored
// version still equals expectedVersion.
type Repository interface {
	Create(ctx context.Context, tx *domain.Transaction) (*types.TransactionProjection, error)
	Update(ctx context.Context, tx *domain.Transaction, expectedVersion int64) (*types.TransactionProjection, error)
	GetByID(ctx context.Context, id string) (*types.TransactionProjection, error)
	// List returns one page of matches plus the total number of matches.
	List(ctx context.Context, filter ListFilter) ([]*types.TransactionProjection, int, error)
}

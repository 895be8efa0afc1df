package types

import (
	"time"

	"github.com/Apurer/supplychain-tracker/internal/domains/transactions/domain"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
	"github.com/Apurer/supplychain-tracker/internal/shared/projection"
)

// TransactionProjection transports a transaction with persistence metadata.
type TransactionProjection = projection.Projection[*domain.Transaction]

// TransactionPage is one page of a filtered listing.
type TransactionPage = projection.Page[*domain.Transaction]

func NewTransactionProjection(t *domain.Transaction, createdAt, updatedAt time.Time, version int64) *TransactionProjection {
	if t == nil {
		return nil
	}
	return &TransactionProjection{
		Entity:   t,
		Metadata: projection.Metadata{CreatedAt: createdAt, UpdatedAt: updatedAt, Version: version},
	}
}

// CreateTransactionInput records a transfer. FromUserID defaults to the actor.
type CreateTransactionInput struct {
	Actor      identity.Actor
	ProductID  string
	FromUserID string
	ToUserID   string
	Quantity   int64
	Note       string
	Metadata   map[string]string
}

// UpdateStatusInput sets a transaction status and appends one note.
type UpdateStatusInput struct {
	TransactionID string
	Actor         identity.Actor
	Status        string
	Note          string
}

// ListTransactionsInput filters listings. Zero values match everything;
// Page is 1-based.
type ListTransactionsInput struct {
	Status    string
	FromDate  *time.Time
	ToDate    *time.Time
	ProductID string
	UserID    string
	Search    string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

package ports

import (
	"context"

	"github.com/Apurer/supplychain-tracker/internal/domains/transactions/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/transactions/domain"
)

// Service exposes transaction use cases to adapters.
type Service interface {
	CreateTransaction(ctx context.Context, input types.CreateTransactionInput) (*types.TransactionProjection, error)
	UpdateTransactionStatus(ctx context.Context, input types.UpdateStatusInput) (*types.TransactionProjection, error)
	GetByID(ctx context.Context, id string) (*types.TransactionProjection, error)
	List(ctx context.Context, input types.ListTransactionsInput) (*types.TransactionPage, error)
}

// PartyDirectory resolves user ids to parties, role included.
type PartyDirectory interface {
	LookupParty(ctx context.Context, id string) (domain.Party, error)
}

// PartyDirectoryFunc adapts a function to PartyDirectory.
type PartyDirectoryFunc func(ctx context.Context, id string) (domain.Party, error)

func (f PartyDirectoryFunc) LookupParty(ctx context.Context, id string) (domain.Party, error) {
	return f(ctx, id)
}

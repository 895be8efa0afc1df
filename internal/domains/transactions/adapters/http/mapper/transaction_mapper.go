package mapper

import (
	"time"

	"github.com/Apurer/supplychain-tracker/internal/domains/transactions/application/types"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

// CreateTransaction is the inbound payload for recording a transfer.
type CreateTransaction struct {
	ProductID  string            `json:"productId" binding:"required"`
	FromUserID string            `json:"fromUser,omitempty"`
	ToUserID   string            `json:"toUser" binding:"required"`
	Quantity   int64             `json:"quantity" binding:"required"`
	Notes      string            `json:"notes,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// StatusUpdate is the inbound payload for a status change.
type StatusUpdate struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

type Party struct {
	identity.Reference
	Role string `json:"role"`
}

type Note struct {
	Timestamp time.Time          `json:"timestamp"`
	Status    string             `json:"status"`
	Note      string             `json:"note"`
	UpdatedBy identity.Reference `json:"updatedBy"`
}

// Transaction is the outbound representation.
type Transaction struct {
	ID            string             `json:"id"`
	TransactionID string             `json:"transactionId"`
	Product       identity.Reference `json:"product"`
	FromUser      Party              `json:"fromUser"`
	ToUser        Party              `json:"toUser"`
	Quantity      int64              `json:"quantity"`
	Status        string             `json:"status"`
	Notes         []Note             `json:"notes"`
	Metadata      map[string]string  `json:"metadata,omitempty"`
	Version       int64              `json:"version"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// TransactionPage is a listing response.
type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Pagination   Pagination    `json:"pagination"`
}

func ToCreateInput(actor identity.Actor, payload CreateTransaction) types.CreateTransactionInput {
	return types.CreateTransactionInput{
		Actor:      actor,
		ProductID:  payload.ProductID,
		FromUserID: payload.FromUserID,
		ToUserID:   payload.ToUserID,
		Quantity:   payload.Quantity,
		Note:       payload.Notes,
		Metadata:   payload.Metadata,
	}
}

func FromProjection(p *types.TransactionProjection) Transaction {
	if p == nil || p.Entity == nil {
		return Transaction{}
	}
	t := p.Entity
	out := Transaction{
		ID:            t.ID,
		TransactionID: t.TransactionID,
		Product:       t.Product,
		FromUser:      Party{Reference: t.From.Reference, Role: string(t.From.Role)},
		ToUser:        Party{Reference: t.To.Reference, Role: string(t.To.Role)},
		Quantity:      t.Quantity,
		Status:        string(t.Status),
		Notes:         make([]Note, 0, len(t.Notes)),
		Metadata:      t.Metadata,
		Version:       p.Metadata.Version,
		CreatedAt:     p.Metadata.CreatedAt,
		UpdatedAt:     p.Metadata.UpdatedAt,
	}
	for _, n := range t.Notes {
		out.Notes = append(out.Notes, Note{Timestamp: n.Timestamp, Status: string(n.Status), Note: n.Text, UpdatedBy: n.UpdatedBy})
	}
	return out
}

func FromPage(page *types.TransactionPage) TransactionPage {
	if page == nil {
		return TransactionPage{Transactions: []Transaction{}}
	}
	out := TransactionPage{
		Transactions: make([]Transaction, 0, len(page.Items)),
		Pagination:   Pagination{Total: page.Total, Page: page.Page, Limit: page.Limit},
	}
	if page.Limit > 0 {
		out.Pagination.Pages = (page.Total + page.Limit - 1) / page.Limit
	}
	for _, p := range page.Items {
		out.Transactions = append(out.Transactions, FromProjection(p))
	}
	return out
}

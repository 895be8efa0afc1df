package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Apurer/supplychain-tracker/internal/shared/events"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

// Status enumerates transaction progression.
type Status string

const (
	StatusPending   Status = "pending"
	StatusInTransit Status = "in-transit"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
	StatusDelayed   Status = "delayed"
)

// Statuses lists every transaction status.
var Statuses = []Status{StatusPending, StatusInTransit, StatusDelivered, StatusCancelled, StatusDelayed}

var (
	ErrUnknownStatus    = errors.New("unknown transaction status")
	ErrMissingProduct   = errors.New("product is required")
	ErrMissingParty     = errors.New("sender and receiver are required")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrUpdateForbidden  = errors.New("only the transaction parties, admins or manufacturers may update it")
	ErrCreateForbidden  = errors.New("role may not record transactions")
	ErrMissingUpdatedBy = errors.New("acting party is required")
)

// ParseStatus rejects anything outside Statuses.
func ParseStatus(raw string) (Status, error) {
	candidate := Status(strings.ToLower(strings.TrimSpace(raw)))
	for _, s := range Statuses {
		if s == candidate {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

// Note is one entry of the append-only audit trail.
type Note struct {
	Timestamp time.Time
	Status    Status
	Text      string
	UpdatedBy identity.Reference
}

// Party is a transaction side; the role is captured when the transaction is recorded.
type Party struct {
	identity.Reference
	Role identity.Role
}

// Transaction records an ownership transfer of a product between two parties.
type Transaction struct {
	events.Recorder

	ID            string
	TransactionID string
	Product       identity.Reference
	From          Party
	To            Party
	Quantity      int64
	Status        Status
	Notes         []Note
	Metadata      map[string]string
}

// TransactionStatusChanged is raised for every status change.
type TransactionStatusChanged struct {
	events.BaseEvent
	TransactionID string             `json:"transactionId"`
	FromStatus    Status             `json:"fromStatus"`
	ToStatus      Status             `json:"toStatus"`
	UpdatedBy     identity.Reference `json:"updatedBy"`
}

func (TransactionStatusChanged) EventName() string { return "transactions.transaction.status_changed" }

// TransactionRecorded is raised when a transaction is created.
type TransactionRecorded struct {
	events.BaseEvent
	TransactionID string             `json:"transactionId"`
	Product       identity.Reference `json:"product"`
	From          identity.Reference `json:"fromUser"`
	To            identity.Reference `json:"toUser"`
}

func (TransactionRecorded) EventName() string { return "transactions.transaction.recorded" }

// NewTransaction records a pending transaction seeded with one note.
func NewTransaction(id, publicID string, product identity.Reference, from, to Party, quantity int64, note string, by identity.Reference, at time.Time) (*Transaction, error) {
	if product.IsZero() {
		return nil, ErrMissingProduct
	}
	if from.IsZero() || to.IsZero() {
		return nil, ErrMissingParty
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if by.IsZero() {
		return nil, ErrMissingUpdatedBy
	}
	text := strings.TrimSpace(note)
	if text == "" {
		text = "Transaction created"
	}
	t := &Transaction{
		ID:            id,
		TransactionID: publicID,
		Product:       product,
		From:          from,
		To:            to,
		Quantity:      quantity,
		Status:        StatusPending,
		Notes:         []Note{{Timestamp: at, Status: StatusPending, Text: text, UpdatedBy: by}},
	}
	t.Record(TransactionRecorded{
		BaseEvent:     events.BaseEvent{Timestamp: at},
		TransactionID: id,
		Product:       product,
		From:          from.Reference,
		To:            to.Reference,
	})
	return t, nil
}

// CanUpdate reports whether actor may change the transaction.
func (t *Transaction) CanUpdate(actor identity.Actor) bool {
	if actor.Is(identity.RoleAdmin, identity.RoleManufacturer) {
		return true
	}
	return actor.ID != "" && (actor.ID == t.From.ID || actor.ID == t.To.ID)
}

// UpdateStatus sets status and appends exactly one note.
func (t *Transaction) UpdateStatus(actor identity.Actor, target Status, text string, at time.Time) error {
	if !t.CanUpdate(actor) {
		return ErrUpdateForbidden
	}
	if _, err := ParseStatus(string(target)); err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		text = fmt.Sprintf("Status updated to %s", target)
	}
	from := t.Status
	t.Notes = append(t.Notes, Note{Timestamp: at, Status: target, Text: text, UpdatedBy: actor.Reference()})
	t.Status = target
	t.Record(TransactionStatusChanged{
		BaseEvent:     events.BaseEvent{Timestamp: at},
		TransactionID: t.ID,
		FromStatus:    from,
		ToStatus:      target,
		UpdatedBy:     actor.Reference(),
	})
	return nil
}

// Matches reports whether any searchable text contains term, case-insensitively.
func (t *Transaction) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.TransactionID), term) ||
		strings.Contains(strings.ToLower(t.Product.DisplayName), term) {
		return true
	}
	for _, n := range t.Notes {
		if strings.Contains(strings.ToLower(n.Text), term) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy without buffered events.
func (t *Transaction) Clone() *Transaction {
	if t == nil {
		return nil
	}
	clone := *t
	clone.Recorder = events.Recorder{}
	clone.Notes = append([]Note(nil), t.Notes...)
	if t.Metadata != nil {
		clone.Metadata = make(map[string]string, len(t.Metadata))
		for k, v := range t.Metadata {
			clone.Metadata[k] = v
		}
	}
	return &clone
}

package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/supplychain-tracker/internal/domains/transactions/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/transactions/domain"
	"github.com/Apurer/supplychain-tracker/internal/domains/transactions/ports"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists transactions in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires the repository; the schema comes from platform/migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type transactionRecord struct {
	ID            string            `gorm:"primaryKey;column:id;size:64"`
	TransactionID string            `gorm:"column:transaction_id;size:32;uniqueIndex"`
	ProductID     string            `gorm:"column:product_id;size:64;index"`
	ProductName   string            `gorm:"column:product_name"`
	FromUserID    string            `gorm:"column:from_user_id;size:64;index"`
	FromUserName  string            `gorm:"column:from_user_name"`
	FromUserRole  string            `gorm:"column:from_user_role;type:varchar(32)"`
	ToUserID      string            `gorm:"column:to_user_id;size:64;index"`
	ToUserName    string            `gorm:"column:to_user_name"`
	ToUserRole    string            `gorm:"column:to_user_role;type:varchar(32)"`
	Quantity      int64             `gorm:"column:quantity"`
	Status        string            `gorm:"column:status;type:varchar(32);index"`
	Notes         []noteRecord      `gorm:"column:notes;type:jsonb;serializer:json"`
	Metadata      map[string]string `gorm:"column:metadata;type:jsonb;serializer:json"`
	Version       int64             `gorm:"column:version;not null;default:1"`
	CreatedAt     time.Time         `gorm:"column:created_at;index"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;index"`
}

func (transactionRecord) TableName() string { return "transactions" }

type noteRecord struct {
	Timestamp time.Time          `json:"timestamp"`
	Status    string             `json:"status"`
	Text      string             `json:"text"`
	UpdatedBy identity.Reference `json:"updatedBy"`
}

var mutableColumns = []string{"status", "notes", "metadata", "version", "updated_at"}

var sortColumns = map[string]string{
	ports.SortByCreatedAt: "created_at",
	ports.SortByUpdatedAt: "updated_at",
	ports.SortByStatus:    "status",
}

func (r *Repository) Create(ctx context.Context, tx *domain.Transaction) (*types.TransactionProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, errors.New("cannot save nil transaction")
	}
	record := newTransactionRecord(tx)
	record.Version = 1
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrDuplicate
		}
		return nil, err
	}
	return record.toProjection(), nil
}

// Update writes only when the stored version equals expectedVersion.
func (r *Repository) Update(ctx context.Context, tx *domain.Transaction, expectedVersion int64) (*types.TransactionProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, errors.New("cannot save nil transaction")
	}
	record := newTransactionRecord(tx)
	record.Version = expectedVersion + 1
	record.UpdatedAt = time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&transactionRecord{ID: tx.ID}).
		Where("version = ?", expectedVersion).
		Select(mutableColumns).
		Updates(&record)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&transactionRecord{}).Where("id = ?", tx.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ports.ErrNotFound
		}
		return nil, ports.ErrVersionConflict
	}
	return r.GetByID(ctx, tx.ID)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*types.TransactionProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record transactionRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

// List counts all matches, then fetches one sorted page. A zero Limit
// returns every match.
func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]*types.TransactionProjection, int, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	query := r.db.WithContext(ctx).Model(&transactionRecord{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}
	if filter.ProductID != "" {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.UserID != "" {
		query = query.Where("from_user_id = ? OR to_user_id = ?", filter.UserID, filter.UserID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("transaction_id ILIKE ? OR product_name ILIKE ? OR notes::text ILIKE ?", like, like, like)
	}
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := " ASC"
	if filter.Descending {
		direction = " DESC"
	}
	query = query.Order(column + direction)
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var records []transactionRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	list := make([]*types.TransactionProjection, 0, len(records))
	for i := range records {
		list = append(list, records[i].toProjection())
	}
	return list, int(total), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres transaction repository not configured")
	}
	return nil
}

func newTransactionRecord(tx *domain.Transaction) transactionRecord {
	rec := transactionRecord{
		ID:            tx.ID,
		TransactionID: tx.TransactionID,
		ProductID:     tx.Product.ID,
		ProductName:   tx.Product.DisplayName,
		FromUserID:    tx.From.ID,
		FromUserName:  tx.From.DisplayName,
		FromUserRole:  string(tx.From.Role),
		ToUserID:      tx.To.ID,
		ToUserName:    tx.To.DisplayName,
		ToUserRole:    string(tx.To.Role),
		Quantity:      tx.Quantity,
		Status:        string(tx.Status),
		Metadata:      tx.Metadata,
		Notes:         make([]noteRecord, 0, len(tx.Notes)),
	}
	for _, n := range tx.Notes {
		rec.Notes = append(rec.Notes, noteRecord{Timestamp: n.Timestamp, Status: string(n.Status), Text: n.Text, UpdatedBy: n.UpdatedBy})
	}
	return rec
}

func (r *transactionRecord) toProjection() *types.TransactionProjection {
	return types.NewTransactionProjection(r.toDomain(), r.CreatedAt, r.UpdatedAt, r.Version)
}

func (r *transactionRecord) toDomain() *domain.Transaction {
	tx := &domain.Transaction{
		ID:            r.ID,
		TransactionID: r.TransactionID,
		Product:       identity.Reference{ID: r.ProductID, DisplayName: r.ProductName},
		From:          domain.Party{Reference: identity.Reference{ID: r.FromUserID, DisplayName: r.FromUserName}, Role: identity.Role(r.FromUserRole)},
		To:            domain.Party{Reference: identity.Reference{ID: r.ToUserID, DisplayName: r.ToUserName}, Role: identity.Role(r.ToUserRole)},
		Quantity:      r.Quantity,
		Status:        domain.Status(r.Status),
		Metadata:      r.Metadata,
	}
	for _, n := range r.Notes {
		tx.Notes = append(tx.Notes, domain.Note{Timestamp: n.Timestamp, Status: domain.Status(n.Status), Text: n.Text, UpdatedBy: n.UpdatedBy})
	}
	return tx
}

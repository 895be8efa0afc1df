package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/supplychain-tracker/internal/domains/shipments/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/shipments/domain"
	"github.com/Apurer/supplychain-tracker/internal/domains/shipments/ports"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists shipments in PostgreSQL. History and delays are JSON
// columns written together with status in one guarded UPDATE.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires the repository; the schema comes from platform/migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type shipmentRecord struct {
	ID                   string          `gorm:"primaryKey;column:id;size:64"`
	TrackingNumber       string          `gorm:"column:tracking_number;size:32;uniqueIndex"`
	ProductID            string          `gorm:"column:product_id;size:64;index"`
	ProductName          string          `gorm:"column:product_name"`
	FromUserID           string          `gorm:"column:from_user_id;size:64;index"`
	FromUserName         string          `gorm:"column:from_user_name"`
	ToUserID             string          `gorm:"column:to_user_id;size:64;index"`
	ToUserName           string          `gorm:"column:to_user_name"`
	Status               string          `gorm:"column:status;type:varchar(32);index"`
	ExpectedDeliveryDate time.Time       `gorm:"column:expected_delivery_date"`
	DeliveredAt          *time.Time      `gorm:"column:delivered_at"`
	CurrentLocation      string          `gorm:"column:current_location"`
	History              []historyRecord `gorm:"column:location_history;type:jsonb;serializer:json"`
	Delays               []delayRecord   `gorm:"column:delays;type:jsonb;serializer:json"`
	Notes                string          `gorm:"column:notes"`
	Version              int64           `gorm:"column:version;not null;default:1"`
	CreatedAt            time.Time       `gorm:"column:created_at;index"`
	UpdatedAt            time.Time       `gorm:"column:updated_at"`
}

func (shipmentRecord) TableName() string { return "shipments" }

type historyRecord struct {
	Location  string    `json:"location"`
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
}

type delayRecord struct {
	Reason     string     `json:"reason"`
	ReportedAt time.Time  `json:"reportedAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

var mutableColumns = []string{
	"status", "delivered_at", "current_location", "location_history", "delays", "notes", "version", "updated_at",
}

func (r *Repository) Create(ctx context.Context, shipment *domain.Shipment) (*types.ShipmentProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, errors.New("cannot save nil shipment")
	}
	record := newShipmentRecord(shipment)
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
func (r *Repository) Update(ctx context.Context, shipment *domain.Shipment, expectedVersion int64) (*types.ShipmentProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if shipment == nil {
		return nil, errors.New("cannot save nil shipment")
	}
	record := newShipmentRecord(shipment)
	record.Version = expectedVersion + 1
	record.UpdatedAt = time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&shipmentRecord{ID: shipment.ID}).
		Where("version = ?", expectedVersion).
		Select(mutableColumns).
		Updates(&record)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&shipmentRecord{}).Where("id = ?", shipment.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ports.ErrNotFound
		}
		return nil, ports.ErrVersionConflict
	}
	return r.GetByID(ctx, shipment.ID)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*types.ShipmentProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record shipmentRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

// List returns shipments matching filter, newest first.
func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]*types.ShipmentProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.PartyID != "" {
		query = query.Where("from_user_id = ? OR to_user_id = ?", filter.PartyID, filter.PartyID)
	}
	if filter.ProductID != "" {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	var records []shipmentRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]*types.ShipmentProjection, 0, len(records))
	for i := range records {
		list = append(list, records[i].toProjection())
	}
	return list, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres shipment repository not configured")
	}
	return nil
}

func newShipmentRecord(s *domain.Shipment) shipmentRecord {
	rec := shipmentRecord{
		ID:                   s.ID,
		TrackingNumber:       s.TrackingNumber,
		ProductID:            s.Product.ID,
		ProductName:          s.Product.DisplayName,
		FromUserID:           s.From.ID,
		FromUserName:         s.From.DisplayName,
		ToUserID:             s.To.ID,
		ToUserName:           s.To.DisplayName,
		Status:               string(s.Status),
		ExpectedDeliveryDate: s.ExpectedDeliveryDate,
		DeliveredAt:          s.DeliveredAt,
		CurrentLocation:      s.CurrentLocation,
		Notes:                s.Notes,
		History:              make([]historyRecord, 0, len(s.History)),
		Delays:               make([]delayRecord, 0, len(s.Delays)),
	}
	for _, h := range s.History {
		rec.History = append(rec.History, historyRecord{Location: h.Location, Timestamp: h.Timestamp, Status: string(h.Status)})
	}
	for _, d := range s.Delays {
		rec.Delays = append(rec.Delays, delayRecord{Reason: d.Reason, ReportedAt: d.ReportedAt, ResolvedAt: d.ResolvedAt, Notes: d.Notes})
	}
	return rec
}

func (r *shipmentRecord) toProjection() *types.ShipmentProjection {
	return types.NewShipmentProjection(r.toDomain(), r.CreatedAt, r.UpdatedAt, r.Version)
}

func (r *shipmentRecord) toDomain() *domain.Shipment {
	s := &domain.Shipment{
		ID:                   r.ID,
		TrackingNumber:       r.TrackingNumber,
		Product:              identity.Reference{ID: r.ProductID, DisplayName: r.ProductName},
		From:                 identity.Reference{ID: r.FromUserID, DisplayName: r.FromUserName},
		To:                   identity.Reference{ID: r.ToUserID, DisplayName: r.ToUserName},
		Status:               domain.Status(r.Status),
		ExpectedDeliveryDate: r.ExpectedDeliveryDate,
		DeliveredAt:          r.DeliveredAt,
		CurrentLocation:      r.CurrentLocation,
		Notes:                r.Notes,
	}
	for _, h := range r.History {
		s.History = append(s.History, domain.LocationEntry{Location: h.Location, Timestamp: h.Timestamp, Status: domain.Status(h.Status)})
	}
	for _, d := range r.Delays {
		s.Delays = append(s.Delays, domain.Delay{Reason: d.Reason, ReportedAt: d.ReportedAt, ResolvedAt: d.ResolvedAt, Notes: d.Notes})
	}
	return s
}

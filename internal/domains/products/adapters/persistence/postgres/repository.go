package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/Apurer/supplychain-tracker/internal/domains/products/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/products/domain"
	"github.com/Apurer/supplychain-tracker/internal/domains/products/ports"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists products in PostgreSQL. The timeline and the latest
// quality check are JSON columns written together with status in one UPDATE.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. The caller owns the DB
// lifecycle; the schema comes from platform/migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type productRecord struct {
	ID               string              `gorm:"primaryKey;column:id;size:64"`
	TrackingNumber   string              `gorm:"column:tracking_number;size:32;uniqueIndex"`
	Name             string              `gorm:"column:name"`
	Description      string              `gorm:"column:description"`
	Category         string              `gorm:"column:category;index"`
	SubCategory      string              `gorm:"column:sub_category"`
	ManufacturerID   string              `gorm:"column:manufacturer_id;index"`
	ManufacturerName string              `gorm:"column:manufacturer_name"`
	OwnerID          string              `gorm:"column:owner_id;index"`
	OwnerName        string              `gorm:"column:owner_name"`
	CurrentLocation  string              `gorm:"column:current_location"`
	Quantity         int64               `gorm:"column:quantity"`
	Price            float64             `gorm:"column:price"`
	Material         string              `gorm:"column:material"`
	Size             string              `gorm:"column:size"`
	Grade            string              `gorm:"column:grade"`
	Finish           string              `gorm:"column:finish"`
	Standards        pq.StringArray      `gorm:"column:standards;type:text[]"`
	Status           string              `gorm:"column:status;type:varchar(32);index"`
	DelayedFrom      string              `gorm:"column:delayed_from;type:varchar(32)"`
	Timeline         []timelineRecord    `gorm:"column:timeline;type:jsonb;serializer:json"`
	QualityCheck     *qualityCheckRecord `gorm:"column:quality_check;type:jsonb;serializer:json"`
	Version          int64               `gorm:"column:version;not null;default:1"`
	CreatedAt        time.Time           `gorm:"column:created_at;index"`
	UpdatedAt        time.Time           `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

type timelineRecord struct {
	Status      string             `json:"status"`
	Title       string             `json:"title"`
	Date        time.Time          `json:"date"`
	Location    string             `json:"location"`
	Handler     identity.Reference `json:"handler"`
	Description string             `json:"description,omitempty"`
	Metadata    map[string]string  `json:"metadata,omitempty"`
}

type qualityCheckRecord struct {
	Passed           bool               `json:"passed"`
	Notes            string             `json:"notes,omitempty"`
	VisualInspection bool               `json:"visualInspection"`
	MeasurementCheck bool               `json:"measurementCheck"`
	FunctionalTest   bool               `json:"functionalTest"`
	PerformedBy      identity.Reference `json:"performedBy"`
	PerformedAt      time.Time          `json:"performedAt"`
	Automated        bool               `json:"automated"`
}

// mutableColumns are rewritten on every Update; identity columns never change.
var mutableColumns = []string{
	"name", "description", "category", "sub_category", "owner_id", "owner_name",
	"current_location", "quantity", "price", "material", "size", "grade", "finish",
	"standards", "status", "delayed_from", "timeline", "quality_check", "version", "updated_at",
}

// Create inserts a product at version 1.
func (r *Repository) Create(ctx context.Context, product *domain.Product) (*types.ProductProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.New("cannot save nil product")
	}
	record := newProductRecord(product)
	record.Version = 1
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrDuplicate
		}
		return nil, err
	}
	return record.toProjection(), nil
}

// Update writes the product only when the stored version equals
// expectedVersion. Zero rows affected means either the row is gone or another
// writer got there first.
func (r *Repository) Update(ctx context.Context, product *domain.Product, expectedVersion int64) (*types.ProductProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errors.New("cannot save nil product")
	}
	record := newProductRecord(product)
	record.Version = expectedVersion + 1
	record.UpdatedAt = time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&productRecord{ID: product.ID}).
		Where("version = ?", expectedVersion).
		Select(mutableColumns).
		Updates(&record)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&productRecord{}).Where("id = ?", product.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ports.ErrNotFound
		}
		return nil, ports.ErrVersionConflict
	}
	return r.GetByID(ctx, product.ID)
}

// GetByID fetches a product by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*types.ProductProjection, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByTrackingNumber fetches a product by tracking number.
func (r *Repository) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*types.ProductProjection, error) {
	return r.first(ctx, "tracking_number = ?", trackingNumber)
}

func (r *Repository) first(ctx context.Context, query string, arg any) (*types.ProductProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record productRecord
	if err := r.db.WithContext(ctx).First(&record, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

// List returns products matching filter, newest first.
func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]*types.ProductProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if len(filter.Statuses) > 0 {
		args := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			args = append(args, string(s))
		}
		query = query.Where("status IN ?", args)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.OwnerID != "" {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	var records []productRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]*types.ProductProjection, 0, len(records))
	for i := range records {
		list = append(list, records[i].toProjection())
	}
	return list, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres product repository not configured")
	}
	return nil
}

func newProductRecord(p *domain.Product) productRecord {
	rec := productRecord{
		ID:               p.ID,
		TrackingNumber:   p.TrackingNumber,
		Name:             p.Name,
		Description:      p.Description,
		Category:         p.Category,
		SubCategory:      p.SubCategory,
		ManufacturerID:   p.Manufacturer.ID,
		ManufacturerName: p.Manufacturer.DisplayName,
		OwnerID:          p.CurrentOwner.ID,
		OwnerName:        p.CurrentOwner.DisplayName,
		CurrentLocation:  p.CurrentLocation,
		Quantity:         p.Quantity,
		Price:            p.Price,
		Material:         p.Specifications.Material,
		Size:             p.Specifications.Size,
		Grade:            p.Specifications.Grade,
		Finish:           p.Specifications.Finish,
		Standards:        pq.StringArray(append([]string{}, p.Specifications.Standards...)),
		Status:           string(p.Status),
		DelayedFrom:      string(p.DelayedFrom),
	}
	rec.Timeline = make([]timelineRecord, 0, len(p.Timeline))
	for _, entry := range p.Timeline {
		rec.Timeline = append(rec.Timeline, timelineRecord{
			Status:      string(entry.Status),
			Title:       entry.Title,
			Date:        entry.Date,
			Location:    entry.Location,
			Handler:     entry.Handler,
			Description: entry.Description,
			Metadata:    entry.Metadata,
		})
	}
	if qc := p.QualityCheck; qc != nil {
		rec.QualityCheck = &qualityCheckRecord{
			Passed:           qc.Passed,
			Notes:            qc.Notes,
			VisualInspection: qc.CheckDetails.VisualInspection,
			MeasurementCheck: qc.CheckDetails.MeasurementCheck,
			FunctionalTest:   qc.CheckDetails.FunctionalTest,
			PerformedBy:      qc.PerformedBy,
			PerformedAt:      qc.PerformedAt,
			Automated:        qc.Automated,
		}
	}
	return rec
}

func (r *productRecord) toProjection() *types.ProductProjection {
	return types.NewProductProjection(r.toDomain(), r.CreatedAt, r.UpdatedAt, r.Version)
}

func (r *productRecord) toDomain() *domain.Product {
	p := &domain.Product{
		ID:              r.ID,
		TrackingNumber:  r.TrackingNumber,
		Name:            r.Name,
		Description:     r.Description,
		Category:        r.Category,
		SubCategory:     r.SubCategory,
		Manufacturer:    identity.Reference{ID: r.ManufacturerID, DisplayName: r.ManufacturerName},
		CurrentOwner:    identity.Reference{ID: r.OwnerID, DisplayName: r.OwnerName},
		CurrentLocation: r.CurrentLocation,
		Quantity:        r.Quantity,
		Price:           r.Price,
		Specifications: domain.Specifications{
			Material:  r.Material,
			Size:      r.Size,
			Grade:     r.Grade,
			Finish:    r.Finish,
			Standards: append([]string(nil), r.Standards...),
		},
		Status:      domain.Status(r.Status),
		DelayedFrom: domain.Status(r.DelayedFrom),
	}
	for _, entry := range r.Timeline {
		p.Timeline = append(p.Timeline, domain.TimelineEntry{
			Status:      domain.Status(entry.Status),
			Title:       entry.Title,
			Date:        entry.Date,
			Location:    entry.Location,
			Handler:     entry.Handler,
			Description: entry.Description,
			Metadata:    entry.Metadata,
		})
	}
	if qc := r.QualityCheck; qc != nil {
		p.QualityCheck = &domain.QualityCheck{
			Passed: qc.Passed,
			Notes:  qc.Notes,
			CheckDetails: domain.CheckDetails{
				VisualInspection: qc.VisualInspection,
				MeasurementCheck: qc.MeasurementCheck,
				FunctionalTest:   qc.FunctionalTest,
			},
			PerformedBy: qc.PerformedBy,
			PerformedAt: qc.PerformedAt,
			Automated:   qc.Automated,
		}
	}
	return p
}

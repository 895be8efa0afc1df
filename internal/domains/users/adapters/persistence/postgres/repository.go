package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/supplychain-tracker/internal/domains/users/domain"
	"github.com/Apurer/supplychain-tracker/internal/domains/users/ports"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists users in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type userRecord struct {
	ID             string     `gorm:"primaryKey;column:id;size:64"`
	Username       string     `gorm:"column:username;uniqueIndex"`
	Email          string     `gorm:"column:email;uniqueIndex"`
	CompanyName    string     `gorm:"column:company_name"`
	Role           string     `gorm:"column:role;type:varchar(32);index"`
	PasswordHash   string     `gorm:"column:password_hash"`
	Status         string     `gorm:"column:status;type:varchar(16)"`
	Verification   string     `gorm:"column:verification;type:varchar(16);index"`
	ReviewDecision string     `gorm:"column:review_decision;type:varchar(16)"`
	ReviewNotes    string     `gorm:"column:review_notes"`
	ReviewerID     string     `gorm:"column:reviewer_id;size:64"`
	ReviewerName   string     `gorm:"column:reviewer_name"`
	ReviewedAt     *time.Time `gorm:"column:reviewed_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;index"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

// Create inserts a user; unique violations surface as ports.ErrDuplicate.
func (r *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user is nil")
	}
	record := toRecord(user)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrDuplicate
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByUsername matches case-insensitively.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.first(ctx, "LOWER(username) = LOWER(?)", strings.TrimSpace(username))
}

func (r *Repository) first(ctx context.Context, query string, arg any) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record userRecord
	if err := r.db.WithContext(ctx).First(&record, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// List returns all users ordered by username.
func (r *Repository) List(ctx context.Context) ([]*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []userRecord
	if err := r.db.WithContext(ctx).Order("username").Find(&records).Error; err != nil {
		return nil, err
	}
	users := make([]*domain.User, 0, len(records))
	for i := range records {
		users = append(users, records[i].toDomain())
	}
	return users, nil
}

// Update writes the verification columns of an existing user.
func (r *Repository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user is nil")
	}
	record := toRecord(user)
	record.UpdatedAt = time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&userRecord{ID: user.ID}).
		Select("verification", "review_decision", "review_notes", "reviewer_id", "reviewer_name", "reviewed_at", "updated_at").
		Updates(&record)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, user.ID)
}

func (r *Repository) CountByRole(ctx context.Context, role identity.Role) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&userRecord{}).Where("role = ?", string(role)).Count(&n).Error
	return n, err
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres user repository not configured")
	}
	return nil
}

func toRecord(user *domain.User) userRecord {
	rec := userRecord{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		CompanyName:  user.CompanyName,
		Role:         string(user.Role),
		PasswordHash: user.PasswordHash,
		Status:       string(user.Status),
		Verification: string(user.Verification),
		CreatedAt:    user.CreatedAt,
	}
	if review := user.LastReview; review != nil {
		at := review.ReviewedAt
		rec.ReviewDecision = string(review.Decision)
		rec.ReviewNotes = review.Notes
		rec.ReviewerID = review.ReviewedBy.ID
		rec.ReviewerName = review.ReviewedBy.DisplayName
		rec.ReviewedAt = &at
	}
	return rec
}

func (r userRecord) toDomain() *domain.User {
	user := &domain.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		CompanyName:  r.CompanyName,
		Role:         identity.Role(r.Role),
		PasswordHash: r.PasswordHash,
		Status:       domain.Status(r.Status),
		Verification: domain.Verification(r.Verification),
		CreatedAt:    r.CreatedAt,
	}
	if r.ReviewDecision != "" && r.ReviewedAt != nil {
		user.LastReview = &domain.Review{
			Decision:   domain.Decision(r.ReviewDecision),
			Notes:      r.ReviewNotes,
			ReviewedBy: identity.Reference{ID: r.ReviewerID, DisplayName: r.ReviewerName},
			ReviewedAt: *r.ReviewedAt,
		}
	}
	return user
}

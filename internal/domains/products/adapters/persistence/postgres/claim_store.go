package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/supplychain-tracker/internal/domains/products/ports"
)

var _ ports.ClaimStore = (*ClaimStore)(nil)

// ClaimStore keeps registration claims in product_registration_claims. The
// key is the primary key; INSERT ... ON CONFLICT DO NOTHING decides the owner.
type ClaimStore struct {
	db *gorm.DB
}

func NewClaimStore(db *gorm.DB) *ClaimStore {
	return &ClaimStore{db: db}
}

type claimRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	Fingerprint string    `gorm:"column:fingerprint;size:64"`
	ProductID   string    `gorm:"column:product_id;size:64"`
	ClaimedAt   time.Time `gorm:"column:claimed_at"`
}

func (claimRecord) TableName() string { return "product_registration_claims" }

func (s *ClaimStore) Claim(ctx context.Context, c ports.Claim) (ports.Claim, bool, error) {
	if s == nil || s.db == nil {
		return ports.Claim{}, false, errors.New("postgres claim store not configured")
	}
	record := claimRecord{Key: c.Key, Fingerprint: c.Fingerprint, ProductID: c.ProductID, ClaimedAt: c.ClaimedAt}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&record)
	if result.Error != nil {
		return ports.Claim{}, false, result.Error
	}
	if result.RowsAffected == 1 {
		return c, true, nil
	}
	var owner claimRecord
	if err := s.db.WithContext(ctx).First(&owner, "key = ?", c.Key).Error; err != nil {
		return ports.Claim{}, false, err
	}
	return ports.Claim{Key: owner.Key, Fingerprint: owner.Fingerprint, ProductID: owner.ProductID, ClaimedAt: owner.ClaimedAt}, false, nil
}

func (s *ClaimStore) Release(ctx context.Context, key, productID string) error {
	if s == nil || s.db == nil {
		return errors.New("postgres claim store not configured")
	}
	return s.db.WithContext(ctx).
		Where("key = ? AND product_id = ?", key, productID).
		Delete(&claimRecord{}).Error
}

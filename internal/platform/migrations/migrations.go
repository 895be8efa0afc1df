package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Adapters never automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&productRecord{},
		&productClaimRecord{},
		&shipmentRecord{},
		&transactionRecord{},
		&userRecord{},
		&sessionRecord{},
	)
}

// Product schema mirrors the products Postgres adapter.
type productRecord struct {
	ID               string         `gorm:"primaryKey;column:id;size:64"`
	TrackingNumber   string         `gorm:"column:tracking_number;size:32;uniqueIndex"`
	Name             string         `gorm:"column:name"`
	Description      string         `gorm:"column:description"`
	Category         string         `gorm:"column:category;index"`
	SubCategory      string         `gorm:"column:sub_category"`
	ManufacturerID   string         `gorm:"column:manufacturer_id;index"`
	ManufacturerName string         `gorm:"column:manufacturer_name"`
	OwnerID          string         `gorm:"column:owner_id;index"`
	OwnerName        string         `gorm:"column:owner_name"`
	CurrentLocation  string         `gorm:"column:current_location"`
	Quantity         int64          `gorm:"column:quantity"`
	Price            float64        `gorm:"column:price"`
	Material         string         `gorm:"column:material"`
	Size             string         `gorm:"column:size"`
	Grade            string         `gorm:"column:grade"`
	Finish           string         `gorm:"column:finish"`
	Standards        pq.StringArray `gorm:"column:standards;type:text[]"`
	Status           string         `gorm:"column:status;type:varchar(32);index"`
	DelayedFrom      string         `gorm:"column:delayed_from;type:varchar(32)"`
	Timeline         string         `gorm:"column:timeline;type:jsonb"`
	QualityCheck     *string        `gorm:"column:quality_check;type:jsonb"`
	Version          int64          `gorm:"column:version;not null;default:1"`
	CreatedAt        time.Time      `gorm:"column:created_at;index"`
	UpdatedAt        time.Time      `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

type productClaimRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	Fingerprint string    `gorm:"column:fingerprint;size:64"`
	ProductID   string    `gorm:"column:product_id;size:64"`
	ClaimedAt   time.Time `gorm:"column:claimed_at"`
}

func (productClaimRecord) TableName() string { return "product_registration_claims" }

// Shipment schema mirrors the shipments Postgres adapter.
type shipmentRecord struct {
	ID                   string     `gorm:"primaryKey;column:id;size:64"`
	TrackingNumber       string     `gorm:"column:tracking_number;size:32;uniqueIndex"`
	ProductID            string     `gorm:"column:product_id;size:64;index"`
	ProductName          string     `gorm:"column:product_name"`
	FromUserID           string     `gorm:"column:from_user_id;size:64;index"`
	FromUserName         string     `gorm:"column:from_user_name"`
	ToUserID             string     `gorm:"column:to_user_id;size:64;index"`
	ToUserName           string     `gorm:"column:to_user_name"`
	Status               string     `gorm:"column:status;type:varchar(32);index"`
	ExpectedDeliveryDate time.Time  `gorm:"column:expected_delivery_date"`
	DeliveredAt          *time.Time `gorm:"column:delivered_at"`
	CurrentLocation      string     `gorm:"column:current_location"`
	History              string     `gorm:"column:location_history;type:jsonb"`
	Delays               string     `gorm:"column:delays;type:jsonb"`
	Notes                string     `gorm:"column:notes"`
	Version              int64      `gorm:"column:version;not null;default:1"`
	CreatedAt            time.Time  `gorm:"column:created_at;index"`
	UpdatedAt            time.Time  `gorm:"column:updated_at"`
}

func (shipmentRecord) TableName() string { return "shipments" }

// Transaction schema mirrors the transactions Postgres adapter.
type transactionRecord struct {
	ID            string    `gorm:"primaryKey;column:id;size:64"`
	TransactionID string    `gorm:"column:transaction_id;size:32;uniqueIndex"`
	ProductID     string    `gorm:"column:product_id;size:64;index"`
	ProductName   string    `gorm:"column:product_name"`
	FromUserID    string    `gorm:"column:from_user_id;size:64;index"`
	FromUserName  string    `gorm:"column:from_user_name"`
	FromUserRole  string    `gorm:"column:from_user_role;type:varchar(32)"`
	ToUserID      string    `gorm:"column:to_user_id;size:64;index"`
	ToUserName    string    `gorm:"column:to_user_name"`
	ToUserRole    string    `gorm:"column:to_user_role;type:varchar(32)"`
	Quantity      int64     `gorm:"column:quantity"`
	Status        string    `gorm:"column:status;type:varchar(32);index"`
	Notes         string    `gorm:"column:notes;type:jsonb"`
	Metadata      *string   `gorm:"column:metadata;type:jsonb"`
	Version       int64     `gorm:"column:version;not null;default:1"`
	CreatedAt     time.Time `gorm:"column:created_at;index"`
	UpdatedAt     time.Time `gorm:"column:updated_at;index"`
}

func (transactionRecord) TableName() string { return "transactions" }

// User schema mirrors the users Postgres adapter.
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

// Session schema mirrors the session store.
type sessionRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:64"`
	UserID    string    `gorm:"column:user_id;size:64;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (sessionRecord) TableName() string { return "user_sessions" }

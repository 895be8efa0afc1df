package types

import (
	"time"

	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

// SupplyChainInput bounds the measured shipments by creation time. Nil ends
// take their defaults.
type SupplyChainInput struct {
	Start *time.Time
	End   *time.Time
}

// ProductAnalyticsInput filters products by creation time and category.
type ProductAnalyticsInput struct {
	Start       *time.Time
	End         *time.Time
	Category    string
	SubCategory string
}

// TransactionAnalyticsInput narrows the daily volume to one status when
// Status is set.
type TransactionAnalyticsInput struct {
	Start  *time.Time
	End    *time.Time
	Status string
}

type UserAnalyticsInput struct {
	Actor identity.Actor
	Start *time.Time
	End   *time.Time
}

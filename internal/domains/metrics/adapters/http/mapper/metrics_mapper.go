package mapper

import (
	"time"

	"github.com/Apurer/supplychain-tracker/internal/domains/metrics/domain"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type MonthlyActivity struct {
	Month        string `json:"month"`
	Transactions int    `json:"transactions"`
	Shipments    int    `json:"shipments"`
	Products     int    `json:"products"`
}

type RecentTransaction struct {
	ID            string             `json:"id"`
	TransactionID string             `json:"transactionId"`
	Product       identity.Reference `json:"product"`
	FromUser      identity.Reference `json:"fromUser"`
	ToUser        identity.Reference `json:"toUser"`
	Quantity      int64              `json:"quantity"`
	Status        string             `json:"status"`
	CreatedAt     time.Time          `json:"createdAt"`
}

// Dashboard is the outbound dashboard payload.
type Dashboard struct {
	TotalUsers          int                 `json:"totalUsers"`
	TotalProducts       int                 `json:"totalProducts"`
	TotalTransactions   int                 `json:"totalTransactions"`
	TotalShipments      int                 `json:"totalShipments"`
	ProductsByStatus    map[string]int      `json:"productsByStatus"`
	ProductDistribution []CategoryCount     `json:"productDistribution"`
	ShipmentStatus      map[string]int      `json:"shipmentStatus"`
	SupplyChainHealth   int                 `json:"supplyChainHealth"`
	QualityScore        int                 `json:"qualityScore"`
	Efficiency          int                 `json:"efficiency"`
	DelayedShipments    int                 `json:"delayedShipments"`
	RecentTransactions  []RecentTransaction `json:"recentTransactions"`
	MonthlyActivity     []MonthlyActivity   `json:"monthlyActivity"`
	GeneratedAt         time.Time           `json:"generatedAt"`
}

// DeliveryTimes are in milliseconds.
type DeliveryTimes struct {
	Count               int   `json:"count"`
	AverageDeliveryTime int64 `json:"averageDeliveryTime"`
	MinDeliveryTime     int64 `json:"minDeliveryTime"`
	MaxDeliveryTime     int64 `json:"maxDeliveryTime"`
}

type DelayStat struct {
	Reason                string `json:"reason"`
	Count                 int    `json:"count"`
	Resolved              int    `json:"resolved"`
	AverageResolutionTime int64  `json:"averageResolutionTime"`
}

type SupplyChain struct {
	StartDate     time.Time     `json:"startDate"`
	EndDate       time.Time     `json:"endDate"`
	DeliveryTimes DeliveryTimes `json:"deliveryTimes"`
	DelayStats    []DelayStat   `json:"delayStats"`
}

func FromDashboard(d *domain.Dashboard) Dashboard {
	if d == nil {
		return Dashboard{}
	}
	out := Dashboard{
		TotalUsers:          d.TotalUsers,
		TotalProducts:       d.TotalProducts,
		TotalTransactions:   d.TotalTransactions,
		TotalShipments:      d.TotalShipments,
		ProductsByStatus:    d.ProductsByStatus,
		ProductDistribution: make([]CategoryCount, 0, len(d.ProductDistribution)),
		ShipmentStatus:      d.ShipmentStatus,
		SupplyChainHealth:   d.SupplyChainHealth,
		QualityScore:        d.QualityScore,
		Efficiency:          d.Efficiency,
		DelayedShipments:    d.DelayedShipments,
		RecentTransactions:  make([]RecentTransaction, 0, len(d.RecentTransactions)),
		MonthlyActivity:     make([]MonthlyActivity, 0, len(d.MonthlyActivity)),
		GeneratedAt:         d.GeneratedAt,
	}
	for _, c := range d.ProductDistribution {
		out.ProductDistribution = append(out.ProductDistribution, CategoryCount{Category: c.Category, Count: c.Count})
	}
	for _, t := range d.RecentTransactions {
		out.RecentTransactions = append(out.RecentTransactions, RecentTransaction{
			ID:            t.ID,
			TransactionID: t.TransactionID,
			Product:       t.Product,
			FromUser:      t.From,
			ToUser:        t.To,
			Quantity:      t.Quantity,
			Status:        t.Status,
			CreatedAt:     t.CreatedAt,
		})
	}
	for _, m := range d.MonthlyActivity {
		out.MonthlyActivity = append(out.MonthlyActivity, MonthlyActivity(m))
	}
	return out
}

func FromSupplyChain(m *domain.SupplyChain) SupplyChain {
	if m == nil {
		return SupplyChain{}
	}
	out := SupplyChain{
		StartDate: m.Window.Start,
		EndDate:   m.Window.End,
		DeliveryTimes: DeliveryTimes{
			Count:               m.DeliveryTimes.Count,
			AverageDeliveryTime: m.DeliveryTimes.Average.Milliseconds(),
			MinDeliveryTime:     m.DeliveryTimes.Min.Milliseconds(),
			MaxDeliveryTime:     m.DeliveryTimes.Max.Milliseconds(),
		},
		DelayStats: make([]DelayStat, 0, len(m.DelayStats)),
	}
	for _, d := range m.DelayStats {
		out.DelayStats = append(out.DelayStats, DelayStat{
			Reason:                d.Reason,
			Count:                 d.Count,
			Resolved:              d.Resolved,
			AverageResolutionTime: d.AverageResolution.Milliseconds(),
		})
	}
	return out
}

type Bucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type CategoryPairCount struct {
	Category    string `json:"category"`
	SubCategory string `json:"subCategory"`
	Count       int    `json:"count"`
}

// StageStat durations are in milliseconds.
type StageStat struct {
	Status          string `json:"status"`
	Count           int    `json:"count"`
	AverageDuration int64  `json:"averageDuration"`
}

type ProductAnalytics struct {
	StartDate           time.Time           `json:"startDate"`
	EndDate             time.Time           `json:"endDate"`
	ProductDistribution []CategoryPairCount `json:"productDistribution"`
	ProductTimelines    []StageStat         `json:"productTimelines"`
}

type DailyVolume struct {
	Date          string `json:"date"`
	Count         int    `json:"count"`
	TotalQuantity int64  `json:"totalQuantity"`
}

type TransactionAnalytics struct {
	StartDate          time.Time     `json:"startDate"`
	EndDate            time.Time     `json:"endDate"`
	Status             string        `json:"status,omitempty"`
	TransactionVolume  []DailyVolume `json:"transactionVolume"`
	StatusDistribution []Bucket      `json:"statusDistribution"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type UserAnalytics struct {
	StartDate                time.Time    `json:"startDate"`
	EndDate                  time.Time    `json:"endDate"`
	UserRegistration         []DailyCount `json:"userRegistration"`
	RoleDistribution         []Bucket     `json:"roleDistribution"`
	VerificationDistribution []Bucket     `json:"verificationDistribution"`
}

func fromBuckets(in []domain.KeyCount) []Bucket {
	out := make([]Bucket, 0, len(in))
	for _, b := range in {
		out = append(out, Bucket{Key: b.Key, Count: b.Count})
	}
	return out
}

func FromProductAnalytics(a *domain.ProductAnalytics) ProductAnalytics {
	if a == nil {
		return ProductAnalytics{}
	}
	out := ProductAnalytics{
		StartDate:           a.Window.Start,
		EndDate:             a.Window.End,
		ProductDistribution: make([]CategoryPairCount, 0, len(a.Distribution)),
		ProductTimelines:    make([]StageStat, 0, len(a.Timelines)),
	}
	for _, d := range a.Distribution {
		out.ProductDistribution = append(out.ProductDistribution, CategoryPairCount(d))
	}
	for _, st := range a.Timelines {
		out.ProductTimelines = append(out.ProductTimelines, StageStat{
			Status:          st.Status,
			Count:           st.Count,
			AverageDuration: st.AverageSinceCreation.Milliseconds(),
		})
	}
	return out
}

func FromTransactionAnalytics(a *domain.TransactionAnalytics) TransactionAnalytics {
	if a == nil {
		return TransactionAnalytics{}
	}
	out := TransactionAnalytics{
		StartDate:          a.Window.Start,
		EndDate:            a.Window.End,
		Status:             a.Status,
		TransactionVolume:  make([]DailyVolume, 0, len(a.Volume)),
		StatusDistribution: fromBuckets(a.StatusDistribution),
	}
	for _, v := range a.Volume {
		out.TransactionVolume = append(out.TransactionVolume, DailyVolume{Date: v.Day, Count: v.Count, TotalQuantity: v.Quantity})
	}
	return out
}

func FromUserAnalytics(a *domain.UserAnalytics) UserAnalytics {
	if a == nil {
		return UserAnalytics{}
	}
	out := UserAnalytics{
		StartDate:                a.Window.Start,
		EndDate:                  a.Window.End,
		UserRegistration:         make([]DailyCount, 0, len(a.Registrations)),
		RoleDistribution:         fromBuckets(a.RoleDistribution),
		VerificationDistribution: fromBuckets(a.VerificationDistribution),
	}
	for _, r := range a.Registrations {
		out.UserRegistration = append(out.UserRegistration, DailyCount{Date: r.Day, Count: r.Count})
	}
	return out
}

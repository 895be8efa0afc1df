// Package domain computes the read-only dashboard and supply-chain figures
// from flattened facts of the other bounded contexts.
package domain

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

const (
	// RecentTransactions is how many transactions the dashboard lists.
	RecentTransactions = 5
	// ActivityMonths is the width of the monthly activity chart.
	ActivityMonths = 6
	// DefaultWindow applies when a supply-chain query names no start.
	DefaultWindow = 30 * 24 * time.Hour
)

var ErrInvalidWindow = errors.New("window start is after its end")

// Shipment statuses counted on the dashboard, in display order.
var ShipmentStatuses = []string{"pending", "in-transit", "delivered", "delayed"}

// ProductFact is what the dashboard needs from a product.
type ProductFact struct {
	Status             string
	Category           string
	SubCategory        string
	FailedQualityCheck bool
	CreatedAt          time.Time
	Timeline           []StageFact
}

type DelayFact struct {
	Reason     string
	ReportedAt time.Time
	ResolvedAt *time.Time
}

// ShipmentFact is what the dashboard needs from a shipment.
type ShipmentFact struct {
	Status      string
	CreatedAt   time.Time
	DeliveredAt *time.Time
	OnTime      bool
	Delays      []DelayFact
}

type TransactionFact struct {
	ID            string
	TransactionID string
	Product       identity.Reference
	From          identity.Reference
	To            identity.Reference
	Quantity      int64
	Status        string
	CreatedAt     time.Time
}

// Snapshot is one consistent-enough read of every context. Eventual
// consistency between the lists is acceptable.
type Snapshot struct {
	Users             int
	Products          []ProductFact
	Shipments         []ShipmentFact
	TransactionTotal  int
	Recent            []TransactionFact
	TransactionsSince []time.Time
}

type CategoryCount struct {
	Category string
	Count    int
}

type MonthlyActivity struct {
	Month        string
	Transactions int
	Shipments    int
	Products     int
}

type Dashboard struct {
	TotalUsers          int
	TotalProducts       int
	TotalTransactions   int
	TotalShipments      int
	ProductsByStatus    map[string]int
	ProductDistribution []CategoryCount
	ShipmentStatus      map[string]int
	SupplyChainHealth   int
	QualityScore        int
	Efficiency          int
	DelayedShipments    int
	RecentTransactions  []TransactionFact
	MonthlyActivity     []MonthlyActivity
	GeneratedAt         time.Time
}

// ActivityStart is the first instant covered by the monthly chart ending at now.
func ActivityStart(now time.Time) time.Time {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return first.AddDate(0, -(ActivityMonths - 1), 0)
}

// BuildDashboard aggregates s as of now.
func BuildDashboard(s Snapshot, now time.Time) Dashboard {
	d := Dashboard{
		TotalUsers:        s.Users,
		TotalProducts:     len(s.Products),
		TotalTransactions: s.TransactionTotal,
		TotalShipments:    len(s.Shipments),
		ProductsByStatus:  map[string]int{},
		ShipmentStatus:    map[string]int{},
		GeneratedAt:       now,
	}
	for _, status := range ShipmentStatuses {
		d.ShipmentStatus[status] = 0
	}

	categories := map[string]int{}
	failed := 0
	for _, p := range s.Products {
		d.ProductsByStatus[p.Status]++
		categories[p.Category]++
		if p.FailedQualityCheck {
			failed++
		}
	}
	for name, count := range categories {
		d.ProductDistribution = append(d.ProductDistribution, CategoryCount{Category: name, Count: count})
	}
	sort.Slice(d.ProductDistribution, func(i, j int) bool {
		a, b := d.ProductDistribution[i], d.ProductDistribution[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Category < b.Category
	})

	delivered, onTime := 0, 0
	for _, sh := range s.Shipments {
		d.ShipmentStatus[sh.Status]++
		switch sh.Status {
		case "delivered":
			delivered++
			if sh.OnTime {
				onTime++
			}
		case "delayed":
			d.DelayedShipments++
		}
	}
	d.SupplyChainHealth = percent(delivered, len(s.Shipments))
	d.QualityScore = percent(len(s.Products)-failed, len(s.Products))
	d.Efficiency = percent(onTime, delivered)

	recent := append([]TransactionFact(nil), s.Recent...)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].CreatedAt.After(recent[j].CreatedAt) })
	if len(recent) > RecentTransactions {
		recent = recent[:RecentTransactions]
	}
	d.RecentTransactions = recent
	d.MonthlyActivity = monthlyActivity(s, now)
	return d
}

func monthlyActivity(s Snapshot, now time.Time) []MonthlyActivity {
	start := ActivityStart(now)
	months := make([]MonthlyActivity, ActivityMonths)
	index := map[string]int{}
	for i := range months {
		key := start.AddDate(0, i, 0).Format("2006-01")
		months[i].Month = key
		index[key] = i
	}
	bump := func(at time.Time, field func(*MonthlyActivity)) {
		if at.Before(start) || at.After(now) {
			return
		}
		if i, ok := index[at.In(now.Location()).Format("2006-01")]; ok {
			field(&months[i])
		}
	}
	for _, at := range s.TransactionsSince {
		bump(at, func(m *MonthlyActivity) { m.Transactions++ })
	}
	for _, sh := range s.Shipments {
		bump(sh.CreatedAt, func(m *MonthlyActivity) { m.Shipments++ })
	}
	for _, p := range s.Products {
		bump(p.CreatedAt, func(m *MonthlyActivity) { m.Products++ })
	}
	return months
}

// percent is round(part/whole*100), or 100 when whole is zero.
func percent(part, whole int) int {
	if whole <= 0 {
		return 100
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// Window is an inclusive creation-time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow fills a missing end with now and a missing start with
// DefaultWindow before the end.
func NewWindow(start, end *time.Time, now time.Time) (Window, error) {
	w := Window{End: now}
	if end != nil {
		w.End = *end
	}
	w.Start = w.End.Add(-DefaultWindow)
	if start != nil {
		w.Start = *start
	}
	if w.Start.After(w.End) {
		return Window{}, ErrInvalidWindow
	}
	return w, nil
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

type DurationStats struct {
	Count   int
	Average time.Duration
	Min     time.Duration
	Max     time.Duration
}

// DelayStat groups reported delays by reason. AverageResolution only counts
// resolved delays.
type DelayStat struct {
	Reason            string
	Count             int
	Resolved          int
	AverageResolution time.Duration
}

type SupplyChain struct {
	Window        Window
	DeliveryTimes DurationStats
	DelayStats    []DelayStat
}

// BuildSupplyChain measures shipments created inside w.
func BuildSupplyChain(shipments []ShipmentFact, w Window) SupplyChain {
	out := SupplyChain{Window: w}
	var total time.Duration
	type acc struct {
		count, resolved int
		sum             time.Duration
	}
	byReason := map[string]*acc{}
	for _, sh := range shipments {
		if !w.Contains(sh.CreatedAt) {
			continue
		}
		if sh.Status == "delivered" && sh.DeliveredAt != nil {
			took := sh.DeliveredAt.Sub(sh.CreatedAt)
			if out.DeliveryTimes.Count == 0 || took < out.DeliveryTimes.Min {
				out.DeliveryTimes.Min = took
			}
			if took > out.DeliveryTimes.Max {
				out.DeliveryTimes.Max = took
			}
			total += took
			out.DeliveryTimes.Count++
		}
		for _, delay := range sh.Delays {
			a, ok := byReason[delay.Reason]
			if !ok {
				a = &acc{}
				byReason[delay.Reason] = a
			}
			a.count++
			if delay.ResolvedAt != nil {
				a.resolved++
				a.sum += delay.ResolvedAt.Sub(delay.ReportedAt)
			}
		}
	}
	if out.DeliveryTimes.Count > 0 {
		out.DeliveryTimes.Average = total / time.Duration(out.DeliveryTimes.Count)
	}
	for reason, a := range byReason {
		stat := DelayStat{Reason: reason, Count: a.count, Resolved: a.resolved}
		if a.resolved > 0 {
			stat.AverageResolution = a.sum / time.Duration(a.resolved)
		}
		out.DelayStats = append(out.DelayStats, stat)
	}
	sort.Slice(out.DelayStats, func(i, j int) bool {
		a, b := out.DelayStats[i], out.DelayStats[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Reason < b.Reason
	})
	return out
}

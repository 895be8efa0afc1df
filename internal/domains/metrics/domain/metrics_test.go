package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func TestBuildDashboard_EmptyIsHealthy(t *testing.T) {
	d := BuildDashboard(Snapshot{}, now)
	assert.Equal(t, 100, d.SupplyChainHealth)
	assert.Equal(t, 100, d.QualityScore)
	assert.Equal(t, 100, d.Efficiency)
	assert.Equal(t, map[string]int{"pending": 0, "in-transit": 0, "delivered": 0, "delayed": 0}, d.ShipmentStatus)
	require.Len(t, d.MonthlyActivity, ActivityMonths)
	assert.Equal(t, "2024-01", d.MonthlyActivity[0].Month)
	assert.Equal(t, "2024-06", d.MonthlyActivity[5].Month)
}

func TestBuildDashboard_Scores(t *testing.T) {
	s := Snapshot{
		Users: 4,
		Products: []ProductFact{
			{Status: "delivered", Category: "Fasteners", CreatedAt: now.AddDate(0, -1, 0)},
			{Status: "manufactured", Category: "Fasteners", CreatedAt: now},
			{Status: "manufactured", Category: "Bearings", FailedQualityCheck: true, CreatedAt: now.AddDate(-1, 0, 0)},
		},
		Shipments: []ShipmentFact{
			{Status: "delivered", OnTime: true, CreatedAt: now},
			{Status: "delivered", CreatedAt: now},
			{Status: "delayed", CreatedAt: now},
		},
		TransactionTotal:  9,
		TransactionsSince: []time.Time{now, now.AddDate(0, -2, 0), now.AddDate(0, -7, 0)},
	}
	d := BuildDashboard(s, now)

	assert.Equal(t, 67, d.SupplyChainHealth)
	assert.Equal(t, 67, d.QualityScore)
	assert.Equal(t, 50, d.Efficiency)
	assert.Equal(t, 1, d.DelayedShipments)
	assert.Equal(t, 9, d.TotalTransactions)
	assert.Equal(t, 2, d.ProductsByStatus["manufactured"])
	assert.Equal(t, []CategoryCount{{"Fasteners", 2}, {"Bearings", 1}}, d.ProductDistribution)

	june, april := d.MonthlyActivity[5], d.MonthlyActivity[3]
	assert.Equal(t, MonthlyActivity{Month: "2024-06", Transactions: 1, Shipments: 3, Products: 1}, june)
	assert.Equal(t, 1, april.Transactions)
}

func TestBuildDashboard_RecentIsNewestFive(t *testing.T) {
	var recent []TransactionFact
	for i := 0; i < 7; i++ {
		recent = append(recent, TransactionFact{TransactionID: string(rune('a' + i)), CreatedAt: now.Add(time.Duration(i) * time.Hour)})
	}
	d := BuildDashboard(Snapshot{Recent: recent}, now)
	require.Len(t, d.RecentTransactions, RecentTransactions)
	assert.Equal(t, "g", d.RecentTransactions[0].TransactionID)
}

func TestNewWindow(t *testing.T) {
	w, err := NewWindow(nil, nil, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-DefaultWindow), w.Start)

	_, err = NewWindow(ptr(now), ptr(now.Add(-time.Hour)), now)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestBuildSupplyChain(t *testing.T) {
	w := Window{Start: now.AddDate(0, 0, -10), End: now}
	shipments := []ShipmentFact{
		{Status: "delivered", CreatedAt: now.AddDate(0, 0, -5), DeliveredAt: ptr(now.AddDate(0, 0, -3))},
		{Status: "delivered", CreatedAt: now.AddDate(0, 0, -5), DeliveredAt: ptr(now.AddDate(0, 0, -1))},
		{Status: "delayed", CreatedAt: now.AddDate(0, 0, -2), Delays: []DelayFact{
			{Reason: "Customs", ReportedAt: now.Add(-4 * time.Hour), ResolvedAt: ptr(now.Add(-2 * time.Hour))},
			{Reason: "Customs", ReportedAt: now.Add(-time.Hour)},
			{Reason: "Weather", ReportedAt: now.Add(-time.Hour)},
		}},
		{Status: "delivered", CreatedAt: now.AddDate(0, -2, 0), DeliveredAt: ptr(now)},
	}
	m := BuildSupplyChain(shipments, w)

	assert.Equal(t, 2, m.DeliveryTimes.Count)
	assert.Equal(t, 48*time.Hour, m.DeliveryTimes.Min)
	assert.Equal(t, 96*time.Hour, m.DeliveryTimes.Max)
	assert.Equal(t, 72*time.Hour, m.DeliveryTimes.Average)
	require.Len(t, m.DelayStats, 2)
	assert.Equal(t, DelayStat{Reason: "Customs", Count: 2, Resolved: 1, AverageResolution: 2 * time.Hour}, m.DelayStats[0])
	assert.Equal(t, "Weather", m.DelayStats[1].Reason)
}

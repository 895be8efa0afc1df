package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProductAnalytics(t *testing.T) {
	w := Window{Start: now.AddDate(0, 0, -30), End: now}
	made := now.AddDate(0, 0, -3)
	products := []ProductFact{
		{Category: "Gears", SubCategory: "Spur", CreatedAt: made, Timeline: []StageFact{
			{Status: "manufactured", At: made},
			{Status: "quality-check", At: made.Add(2 * time.Hour)},
		}},
		{Category: "Gears", SubCategory: "Spur", CreatedAt: made, Timeline: []StageFact{
			{Status: "manufactured", At: made},
			{Status: "quality-check", At: made.Add(4 * time.Hour)},
		}},
		{Category: "Gears", SubCategory: "Helical", CreatedAt: made, Timeline: []StageFact{{Status: "manufactured", At: made}}},
		{Category: "Bearings", CreatedAt: made},
		{Category: "Gears", SubCategory: "Spur", CreatedAt: now.AddDate(0, -3, 0)},
	}

	all := BuildProductAnalytics(products, ProductFilter{Window: w})
	require.Len(t, all.Distribution, 3)
	assert.Equal(t, CategoryPairCount{Category: "Gears", SubCategory: "Spur", Count: 2}, all.Distribution[0])
	assert.Equal(t, []StageStat{
		{Status: "manufactured", Count: 3},
		{Status: "quality-check", Count: 2, AverageSinceCreation: 3 * time.Hour},
	}, all.Timelines)

	spur := BuildProductAnalytics(products, ProductFilter{Window: w, Category: "gears", SubCategory: "spur"})
	require.Len(t, spur.Distribution, 1)
	assert.Equal(t, 2, spur.Distribution[0].Count)

	none := BuildProductAnalytics(products, ProductFilter{Window: w, Category: "Springs"})
	assert.Empty(t, none.Distribution)
	assert.Empty(t, none.Timelines)
}

func TestBuildTransactionAnalytics_StatusFiltersVolumeOnly(t *testing.T) {
	w := Window{Start: now.AddDate(0, 0, -30), End: now}
	day1 := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 6, 11, 9, 0, 0, 0, time.UTC)
	txs := []TransactionFact{
		{Status: "delivered", Quantity: 5, CreatedAt: day1},
		{Status: "delivered", Quantity: 3, CreatedAt: day1.Add(time.Hour)},
		{Status: "pending", Quantity: 7, CreatedAt: day2},
		{Status: "pending", Quantity: 9, CreatedAt: now.AddDate(0, -2, 0)},
	}

	all := BuildTransactionAnalytics(txs, w, "")
	assert.Equal(t, []DailyVolume{
		{Day: "2024-06-10", Count: 2, Quantity: 8},
		{Day: "2024-06-11", Count: 1, Quantity: 7},
	}, all.Volume)

	delivered := BuildTransactionAnalytics(txs, w, "delivered")
	assert.Equal(t, []DailyVolume{{Day: "2024-06-10", Count: 2, Quantity: 8}}, delivered.Volume)
	assert.Equal(t, []KeyCount{{Key: "delivered", Count: 2}, {Key: "pending", Count: 1}}, delivered.StatusDistribution)
}

func TestBuildUserAnalytics(t *testing.T) {
	w := Window{Start: now.AddDate(0, 0, -30), End: now}
	users := []UserFact{
		{Role: "manufacturer", Verification: "pending", CreatedAt: now.Add(-time.Hour)},
		{Role: "manufacturer", Verification: "verified", CreatedAt: now.Add(-2 * time.Hour)},
		{Role: "customer", Verification: "verified", CreatedAt: now.AddDate(0, 0, -2)},
		{Role: "admin", Verification: "verified", CreatedAt: now.AddDate(-1, 0, 0)},
	}
	a := BuildUserAnalytics(users, w)

	assert.Equal(t, []DailyCount{{Day: "2024-06-13", Count: 1}, {Day: "2024-06-15", Count: 2}}, a.Registrations)
	assert.Equal(t, []KeyCount{{"manufacturer", 2}, {"admin", 1}, {"customer", 1}}, a.RoleDistribution)
	assert.Equal(t, []KeyCount{{"verified", 3}, {"pending", 1}}, a.VerificationDistribution)
}

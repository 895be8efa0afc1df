package domain

import (
	"sort"
	"strings"
	"time"
)

// StageFact is one timeline entry of a product.
type StageFact struct {
	Status string
	At     time.Time
}

// UserFact is what user analytics need from an account.
type UserFact struct {
	Role         string
	Verification string
	CreatedAt    time.Time
}

// KeyCount is one bucket of a distribution.
type KeyCount struct {
	Key   string
	Count int
}

type CategoryPairCount struct {
	Category    string
	SubCategory string
	Count       int
}

// StageStat summarizes the timeline entries with one status. AverageSinceCreation
// is the mean time from product creation to reaching the status.
type StageStat struct {
	Status               string
	Count                int
	AverageSinceCreation time.Duration
}

// ProductFilter narrows product analytics. Empty category fields match all.
type ProductFilter struct {
	Window      Window
	Category    string
	SubCategory string
}

func (f ProductFilter) matches(p ProductFact) bool {
	if !f.Window.Contains(p.CreatedAt) {
		return false
	}
	if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	return f.SubCategory == "" || strings.EqualFold(p.SubCategory, f.SubCategory)
}

type ProductAnalytics struct {
	Window       Window
	Distribution []CategoryPairCount
	Timelines    []StageStat
}

// BuildProductAnalytics groups the products created inside the filter window
// by category pair and measures how long they took to reach each status.
func BuildProductAnalytics(products []ProductFact, f ProductFilter) ProductAnalytics {
	out := ProductAnalytics{Window: f.Window}
	type pair struct{ category, sub string }
	type acc struct {
		count int
		sum   time.Duration
	}
	pairs := map[pair]int{}
	stages := map[string]*acc{}
	for _, p := range products {
		if !f.matches(p) {
			continue
		}
		pairs[pair{p.Category, p.SubCategory}]++
		for _, st := range p.Timeline {
			a, ok := stages[st.Status]
			if !ok {
				a = &acc{}
				stages[st.Status] = a
			}
			a.count++
			a.sum += st.At.Sub(p.CreatedAt)
		}
	}
	for k, n := range pairs {
		out.Distribution = append(out.Distribution, CategoryPairCount{Category: k.category, SubCategory: k.sub, Count: n})
	}
	sort.Slice(out.Distribution, func(i, j int) bool {
		a, b := out.Distribution[i], out.Distribution[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.SubCategory < b.SubCategory
	})
	for status, a := range stages {
		out.Timelines = append(out.Timelines, StageStat{
			Status:               status,
			Count:                a.count,
			AverageSinceCreation: a.sum / time.Duration(a.count),
		})
	}
	sort.Slice(out.Timelines, func(i, j int) bool { return out.Timelines[i].Status < out.Timelines[j].Status })
	return out
}

// DailyVolume counts transactions and the units they moved on one UTC day.
type DailyVolume struct {
	Day      string
	Count    int
	Quantity int64
}

type TransactionAnalytics struct {
	Window             Window
	Status             string
	Volume             []DailyVolume
	StatusDistribution []KeyCount
}

// BuildTransactionAnalytics buckets transactions created inside w by day.
// The volume honours status when set; the status distribution never does.
func BuildTransactionAnalytics(txs []TransactionFact, w Window, status string) TransactionAnalytics {
	out := TransactionAnalytics{Window: w, Status: status}
	days := map[string]*DailyVolume{}
	statuses := map[string]int{}
	for _, tx := range txs {
		if !w.Contains(tx.CreatedAt) {
			continue
		}
		statuses[tx.Status]++
		if status != "" && tx.Status != status {
			continue
		}
		key := dayKey(tx.CreatedAt)
		v, ok := days[key]
		if !ok {
			v = &DailyVolume{Day: key}
			days[key] = v
		}
		v.Count++
		v.Quantity += tx.Quantity
	}
	for _, v := range days {
		out.Volume = append(out.Volume, *v)
	}
	sort.Slice(out.Volume, func(i, j int) bool { return out.Volume[i].Day < out.Volume[j].Day })
	out.StatusDistribution = distribution(statuses)
	return out
}

type DailyCount struct {
	Day   string
	Count int
}

// UserAnalytics reports registrations inside Window. The role and
// verification distributions cover every account.
type UserAnalytics struct {
	Window                   Window
	Registrations            []DailyCount
	RoleDistribution         []KeyCount
	VerificationDistribution []KeyCount
}

func BuildUserAnalytics(users []UserFact, w Window) UserAnalytics {
	out := UserAnalytics{Window: w}
	days := map[string]int{}
	roles := map[string]int{}
	verification := map[string]int{}
	for _, u := range users {
		roles[u.Role]++
		verification[u.Verification]++
		if w.Contains(u.CreatedAt) {
			days[dayKey(u.CreatedAt)]++
		}
	}
	for day, n := range days {
		out.Registrations = append(out.Registrations, DailyCount{Day: day, Count: n})
	}
	sort.Slice(out.Registrations, func(i, j int) bool { return out.Registrations[i].Day < out.Registrations[j].Day })
	out.RoleDistribution = distribution(roles)
	out.VerificationDistribution = distribution(verification)
	return out
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// distribution orders buckets by count, largest first, then by key.
func distribution(counts map[string]int) []KeyCount {
	out := make([]KeyCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, KeyCount{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

package stats

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendlog/spendlog/pkg/expense"
)

// DaySnapshotOf selects records with start <= timestamp < end, newest first.
// Records sharing a timestamp are ordered by descending Id, so the later
// insertion comes first. The input slice is not modified.
func DaySnapshotOf(records []expense.Record, start, end time.Time) DaySnapshot {
	selected := make([]expense.Record, 0)
	for _, r := range records {
		if !r.Timestamp.Before(start) && r.Timestamp.Before(end) {
			selected = append(selected, r)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		if selected[i].Timestamp.Equal(selected[j].Timestamp) {
			return selected[i].Id > selected[j].Id
		}
		return selected[i].Timestamp.After(selected[j].Timestamp)
	})

	return DaySnapshot{
		Start:   start,
		End:     end,
		Records: selected,
		Total:   Sum(selected),
	}
}

// DailyTotals sums amounts per calendar day in loc, ordered chronologically.
func DailyTotals(records []expense.Record, loc *time.Location) []DayTotal {
	sums := make(map[Day]decimal.Decimal)
	for _, r := range records {
		day := DayOf(r.Timestamp, loc)
		sums[day] = sums[day].Add(r.Amount)
	}

	totals := make([]DayTotal, 0, len(sums))
	for day, total := range sums {
		totals = append(totals, DayTotal{Day: day, Total: total})
	}
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Day.Before(totals[j].Day)
	})
	return totals
}

// CategoryTotals sums amounts per literal category string, in order of first
// appearance.
func CategoryTotals(records []expense.Record) []CategoryTotal {
	index := make(map[string]int)
	totals := make([]CategoryTotal, 0)
	for _, r := range records {
		i, ok := index[r.Category]
		if !ok {
			i = len(totals)
			index[r.Category] = i
			totals = append(totals, CategoryTotal{Category: r.Category, Total: decimal.Zero})
		}
		totals[i].Total = totals[i].Total.Add(r.Amount)
	}
	return totals
}

// LastDays returns exactly n consecutive day totals ending with today, taking
// values from totals and filling missing days with zero.
func LastDays(totals []DayTotal, today Day, n int) []DayTotal {
	if n <= 0 {
		return []DayTotal{}
	}
	byDay := make(map[Day]decimal.Decimal, len(totals))
	for _, t := range totals {
		byDay[t.Day] = t.Total
	}

	result := make([]DayTotal, 0, n)
	for i := n - 1; i >= 0; i-- {
		day := today.AddDays(-i)
		total, ok := byDay[day]
		if !ok {
			total = decimal.Zero
		}
		result = append(result, DayTotal{Day: day, Total: total})
	}
	return result
}

// IsLikelyDuplicate reports whether recent contains a record with the
// candidate's exact title and amount recorded in the window before at, that is
// at-window < timestamp <= at. A non-positive window means the default 24 hours.
func IsLikelyDuplicate(candidate expense.Candidate, recent []expense.Record, window time.Duration, at time.Time) bool {
	if window <= 0 {
		window = expense.DefaultDuplicateWindow
	}
	since := at.Add(-window)
	for _, r := range recent {
		if r.SimilarTo(candidate.Title, candidate.Amount, since, at) {
			return true
		}
	}
	return false
}

// Sum adds up the amounts of records exactly.
func Sum(records []expense.Record) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return total
}

// BuildReport aggregates the full history for export.
func BuildReport(records []expense.Record, today Day, loc *time.Location) Report {
	return Report{
		Today:      today,
		Daily:      DailyTotals(records, loc),
		Categories: CategoryTotals(records),
		GrandTotal: Sum(records),
	}
}

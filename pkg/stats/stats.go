package stats

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendlog/spendlog/pkg/expense"
)

type DayTotal struct {
	Day   Day
	Total decimal.Decimal
}

type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// DaySnapshot holds the records of one day, newest first, and their sum.
type DaySnapshot struct {
	Start   time.Time
	End     time.Time
	Records []expense.Record
	Total   decimal.Decimal
}

// Report is the export payload: full history grouped by day and by category.
type Report struct {
	Today      Day
	Daily      []DayTotal
	Categories []CategoryTotal
	GrandTotal decimal.Decimal
}

type StatsRenderer interface {
	RenderReport(report Report) (string, error)
}

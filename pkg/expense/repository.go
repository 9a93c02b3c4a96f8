package expense

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository is the durable, append-only expense log. A completed Insert must be
// visible to the next query.
type Repository interface {
	// Insert assigns Id and Uid and returns the stored record.
	Insert(ctx context.Context, record Record) (Record, error)
	// All returns every record in insertion order.
	All(ctx context.Context) ([]Record, error)
	// ForDay returns records with start <= timestamp < end, newest first.
	ForDay(ctx context.Context, start, end time.Time) ([]Record, error)
	// CountSimilar counts records with the same title and amount recorded in
	// (since, until].
	CountSimilar(ctx context.Context, title string, amount decimal.Decimal, since, until time.Time) (int, error)
}

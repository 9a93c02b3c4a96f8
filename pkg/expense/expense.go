package expense

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spendlog/spendlog/internal/event_bus"
)

const (
	CategoryStaff   = "Staff"
	CategoryTravel  = "Travel"
	CategoryFood    = "Food"
	CategoryUtility = "Utility"
)

// KnownCategories lists the categories offered to clients. Records may carry any
// category string; nothing downstream checks membership.
var KnownCategories = []string{CategoryStaff, CategoryTravel, CategoryFood, CategoryUtility}

const MaxNotesLength = 100

const DefaultDuplicateWindow = 24 * time.Hour

// Record is a persisted expense. Records are never updated or deleted.
type Record struct {
	Id        int64
	Uid       uuid.UUID
	Title     string
	Amount    decimal.Decimal
	Category  string
	Notes     string
	Timestamp time.Time
}

// SimilarTo reports whether r has the given title and amount and was recorded
// in (since, until].
func (r Record) SimilarTo(title string, amount decimal.Decimal, since, until time.Time) bool {
	return r.Title == title && r.Amount.Equal(amount) &&
		r.Timestamp.After(since) && !r.Timestamp.After(until)
}

// Candidate is an expense submitted for insertion.
type Candidate struct {
	Title    string
	Amount   decimal.Decimal
	Category string
	Notes    string
	// Zero means the service clock's current time.
	Timestamp        time.Time
	ConfirmDuplicate bool
}

func (c Candidate) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return &ValidationError{Field: "title", Err: ErrEmptyTitle}
	}
	if !c.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	if utf8.RuneCountInString(c.Notes) > MaxNotesLength {
		return &ValidationError{Field: "notes", Err: ErrNotesTooLong}
	}
	return nil
}

func (c Candidate) record(at time.Time) Record {
	return Record{
		Title:     c.Title,
		Amount:    c.Amount,
		Category:  c.Category,
		Notes:     c.Notes,
		Timestamp: at,
	}
}

// truncateMillis drops sub-millisecond precision and the monotonic clock reading.
func truncateMillis(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli())
}

func (r Record) toEvent() event_bus.ExpenseRecorded {
	return event_bus.ExpenseRecorded{
		Id:        r.Id,
		Uid:       r.Uid,
		Title:     r.Title,
		Amount:    r.Amount,
		Category:  r.Category,
		Notes:     r.Notes,
		Timestamp: r.Timestamp,
	}
}

// FromRecordedEvent rebuilds the record carried by an expense.recorded event.
func FromRecordedEvent(e event_bus.ExpenseRecorded) Record {
	return Record{
		Id:        e.Id,
		Uid:       e.Uid,
		Title:     e.Title,
		Amount:    e.Amount,
		Category:  e.Category,
		Notes:     e.Notes,
		Timestamp: e.Timestamp,
	}
}

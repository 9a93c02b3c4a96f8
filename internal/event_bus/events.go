package event_bus

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const ExpenseRecordedTopic EventType = "expense.recorded"

// ExpenseRecorded is published once per expense persisted by the store.
type ExpenseRecorded struct {
	Id        int64
	Uid       uuid.UUID
	Title     string
	Amount    decimal.Decimal
	Category  string
	Notes     string
	Timestamp time.Time
}

package broker

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendlog/spendlog/internal/event_bus"
)

// ExpenseMessage is the broker representation of a recorded expense.
type ExpenseMessage struct {
	Id        int64           `json:"id"`
	Uid       string          `json:"uid"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category"`
	Notes     string          `json:"notes,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewExpenseMessage(e event_bus.ExpenseRecorded) ExpenseMessage {
	return ExpenseMessage{
		Id:        e.Id,
		Uid:       e.Uid.String(),
		Title:     e.Title,
		Amount:    e.Amount,
		Category:  e.Category,
		Notes:     e.Notes,
		Timestamp: e.Timestamp.UTC(),
	}
}

func (m ExpenseMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseMessageFromJSON(data []byte) (ExpenseMessage, error) {
	var msg ExpenseMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ExpenseMessage{}, err
	}
	return msg, nil
}

package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"ledger/internal/core"
)

// ExpenseRecordedMessage announces a newly stored expense. Consumers treat
// the store as the source of truth and only rely on ID; the remaining fields
// are informational.
type ExpenseRecordedMessage struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Amount    string    `json:"amount"` // two fractional digits
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

func NewExpenseRecordedMessage(e core.Expense) *ExpenseRecordedMessage {
	return &ExpenseRecordedMessage{
		ID:        e.ID,
		UserID:    e.UserID,
		Amount:    e.Amount.String(),
		Category:  e.Category,
		CreatedAt: e.CreatedAt,
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseRecordedMessageFromJSON decodes and sanity checks a message body.
func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID <= 0 {
		return nil, fmt.Errorf("message has no expense id")
	}
	return &msg, nil
}

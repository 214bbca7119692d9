package notification

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type represents notification type
type Type string

const (
	TypeReminderDueSoon Type = "reminder_due_soon"
	TypeReminderOverdue Type = "reminder_overdue"
	TypePaymentReceived Type = "payment_received"
)

// Notification is an in-app message for a merchant
type Notification struct {
	ID         uuid.UUID       `db:"id"`
	MerchantID uuid.UUID       `db:"merchant_id"`
	Type       Type            `db:"type"`
	Title      string          `db:"title"`
	Body       sql.NullString  `db:"body"`
	Data       json.RawMessage `db:"data"`
	IsRead     bool            `db:"is_read"`
	ReadAt     sql.NullTime    `db:"read_at"`
	CreatedAt  time.Time       `db:"created_at"`
}

// Data links a notification to ledger entities
type Data struct {
	CustomerID    *uuid.UUID `json:"customer_id,omitempty"`
	CreditID      *uuid.UUID `json:"credit_id,omitempty"`
	TransactionID *uuid.UUID `json:"transaction_id,omitempty"`
	ReminderLevel int        `json:"reminder_level,omitempty"`
}

// SetData encodes data to JSON
func (n *Notification) SetData(data *Data) {
	if data != nil {
		n.Data, _ = json.Marshal(data)
	}
}

// GetData decodes data from JSON
func (n *Notification) GetData() *Data {
	if len(n.Data) == 0 {
		return nil
	}
	var data Data
	if err := json.Unmarshal(n.Data, &data); err != nil {
		return nil
	}
	return &data
}

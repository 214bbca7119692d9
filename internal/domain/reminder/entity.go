package reminder

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Channel is an outbound delivery channel
type Channel string

const (
	ChannelInApp    Channel = "IN_APP"
	ChannelSMS      Channel = "SMS"
	ChannelEmail    Channel = "EMAIL"
	ChannelWhatsApp Channel = "WHATSAPP"
)

// Reminder types
const (
	TypeDueSoon = "DUE_SOON"
	TypeOverdue = "OVERDUE"
)

// Outbound statuses
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusSent       = "SENT"
	StatusFailed     = "FAILED"
	// StatusLogged marks SMS/WhatsApp messages written to the log because no
	// gateway is configured. They were not delivered.
	StatusLogged = "LOGGED"
)

// Settings controls when a merchant's reminders fire, in days relative to
// the credit due date.
type Settings struct {
	MerchantID        uuid.UUID `db:"merchant_id"`
	DueSoonDaysBefore int       `db:"due_soon_days_before"`
	OverdueDays1      int       `db:"overdue_days_1"`
	OverdueDays2      int       `db:"overdue_days_2"`
	Enabled           bool      `db:"enabled"`
}

// DefaultSettings: remind on the due date, then 3 and 7 days late.
func DefaultSettings(merchantID uuid.UUID) *Settings {
	return &Settings{
		MerchantID:        merchantID,
		DueSoonDaysBefore: 0,
		OverdueDays1:      3,
		OverdueDays2:      7,
		Enabled:           true,
	}
}

// Target is one reminder level resolved against a day.
type Target struct {
	Level   int
	Type    string
	DueDate time.Time
}

// Targets returns the due dates that trigger each level on today.
func (s *Settings) Targets(today time.Time) []Target {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return []Target{
		{Level: 1, Type: TypeDueSoon, DueDate: day.AddDate(0, 0, s.DueSoonDaysBefore)},
		{Level: 2, Type: TypeOverdue, DueDate: day.AddDate(0, 0, -s.OverdueDays1)},
		{Level: 3, Type: TypeOverdue, DueDate: day.AddDate(0, 0, -s.OverdueDays2)},
	}
}

// Preferences are a customer's allowed channels
type Preferences struct {
	MerchantID       uuid.UUID `db:"merchant_id"`
	CustomerID       uuid.UUID `db:"customer_id"`
	AllowInApp       bool      `db:"allow_in_app"`
	AllowSMS         bool      `db:"allow_sms"`
	AllowEmail       bool      `db:"allow_email"`
	AllowWhatsApp    bool      `db:"allow_whatsapp"`
	PreferredChannel Channel   `db:"preferred_channel"`
}

// DefaultPreferences allow in-app only.
func DefaultPreferences(merchantID, customerID uuid.UUID) *Preferences {
	return &Preferences{
		MerchantID:       merchantID,
		CustomerID:       customerID,
		AllowInApp:       true,
		PreferredChannel: ChannelInApp,
	}
}

func (p *Preferences) allows(c Channel) bool {
	switch c {
	case ChannelInApp:
		return p.AllowInApp
	case ChannelSMS:
		return p.AllowSMS
	case ChannelEmail:
		return p.AllowEmail
	case ChannelWhatsApp:
		return p.AllowWhatsApp
	}
	return false
}

// Channel picks the preferred channel when allowed, otherwise the first
// allowed one. Empty when the customer allows nothing.
func (p *Preferences) Channel() Channel {
	if p.allows(p.PreferredChannel) {
		return p.PreferredChannel
	}
	for _, c := range []Channel{ChannelInApp, ChannelSMS, ChannelEmail, ChannelWhatsApp} {
		if p.allows(c) {
			return c
		}
	}
	return ""
}

// MerchantSettings pairs an enabled merchant with its effective settings.
type MerchantSettings struct {
	Settings
	MerchantName string `db:"merchant_name"`
}

// DueCredit is an open credit falling on a reminder date.
type DueCredit struct {
	CreditID     uuid.UUID       `db:"credit_id"`
	CustomerID   uuid.UUID       `db:"customer_id"`
	CustomerName string          `db:"customer_name"`
	Amount       decimal.Decimal `db:"amount"`
	Remaining    decimal.Decimal `db:"remaining"`
	DueDate      time.Time       `db:"due_date"`
}

// Reminder is a sent reminder; (merchant, customer, credit, due date, level) is unique.
type Reminder struct {
	ID         uuid.UUID `db:"id"`
	MerchantID uuid.UUID `db:"merchant_id"`
	CustomerID uuid.UUID `db:"customer_id"`
	CreditID   uuid.UUID `db:"credit_id"`
	DueDate    time.Time `db:"due_date"`
	Level      int       `db:"reminder_level"`
	Type       string    `db:"reminder_type"`
	CreatedAt  time.Time `db:"created_at"`
}

// Outbound is a message queued for a customer
type Outbound struct {
	ID           uuid.UUID           `db:"id"`
	MerchantID   uuid.UUID           `db:"merchant_id"`
	CustomerID   uuid.NullUUID       `db:"customer_id"`
	Channel      Channel             `db:"channel"`
	Type         string              `db:"type"`
	Title        string              `db:"title"`
	Message      string              `db:"message"`
	DueDate      sql.NullTime        `db:"due_date"`
	Amount       decimal.NullDecimal `db:"amount"`
	Status       string              `db:"status"`
	Attempts     int                 `db:"attempts"`
	ErrorMessage sql.NullString      `db:"error_message"`
	SentAt       sql.NullTime        `db:"sent_at"`
	CreatedAt    time.Time           `db:"created_at"`
	UpdatedAt    time.Time           `db:"updated_at"`

	// Joined for delivery
	MerchantName  string         `db:"merchant_name"`
	CustomerName  sql.NullString `db:"customer_name"`
	CustomerPhone sql.NullString `db:"customer_phone"`
	CustomerEmail sql.NullString `db:"customer_email"`
}

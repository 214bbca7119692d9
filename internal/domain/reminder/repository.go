package reminder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/payflow/payflow-api/internal/pkg/database"
)

const (
	queryTimeout = 10 * time.Second
	claimLease   = 15 * time.Minute
)

// Repository defines reminder data access
type Repository interface {
	GetSettings(ctx context.Context, merchantID uuid.UUID) (*Settings, error)
	SaveSettings(ctx context.Context, s *Settings) error
	GetPreferences(ctx context.Context, merchantID, customerID uuid.UUID) (*Preferences, error)
	SavePreferences(ctx context.Context, p *Preferences) error

	EnabledMerchants(ctx context.Context) ([]MerchantSettings, error)
	DueCredits(ctx context.Context, merchantID uuid.UUID, dueDate time.Time) ([]DueCredit, error)
	// RecordReminder inserts the reminder and, when it is new, its outbound
	// message. It reports false for a duplicate.
	RecordReminder(ctx context.Context, r *Reminder, out *Outbound) (bool, error)

	// ClaimPending also reclaims PROCESSING rows whose claim is older than
	// claimLease, so a crashed worker's batch is retried.
	ClaimPending(ctx context.Context, limit int) ([]*Outbound, error)
	MarkDelivered(ctx context.Context, id uuid.UUID, status string, errMsg string) error
	// ReleaseClaimed puts unattempted PROCESSING rows back to PENDING.
	ReleaseClaimed(ctx context.Context, ids []uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates reminder repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// GetSettings returns defaults when the merchant never saved settings.
func (r *repository) GetSettings(ctx context.Context, merchantID uuid.UUID) (*Settings, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var s Settings
	err := r.db.GetContext(ctx, &s, `
		SELECT merchant_id, due_soon_days_before, overdue_days_1, overdue_days_2, enabled
		FROM reminder_settings WHERE merchant_id = $1
	`, merchantID)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultSettings(merchantID), nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) SaveSettings(ctx context.Context, s *Settings) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reminder_settings (merchant_id, due_soon_days_before, overdue_days_1, overdue_days_2, enabled, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (merchant_id) DO UPDATE SET
			due_soon_days_before = EXCLUDED.due_soon_days_before,
			overdue_days_1 = EXCLUDED.overdue_days_1,
			overdue_days_2 = EXCLUDED.overdue_days_2,
			enabled = EXCLUDED.enabled,
			updated_at = NOW()
	`, s.MerchantID, s.DueSoonDaysBefore, s.OverdueDays1, s.OverdueDays2, s.Enabled)
	return err
}

// GetPreferences returns defaults when none were saved.
func (r *repository) GetPreferences(ctx context.Context, merchantID, customerID uuid.UUID) (*Preferences, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var p Preferences
	err := r.db.GetContext(ctx, &p, `
		SELECT merchant_id, customer_id, allow_in_app, allow_sms, allow_email, allow_whatsapp, preferred_channel
		FROM notification_preferences WHERE merchant_id = $1 AND customer_id = $2
	`, merchantID, customerID)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultPreferences(merchantID, customerID), nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) SavePreferences(ctx context.Context, p *Preferences) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notification_preferences
			(merchant_id, customer_id, allow_in_app, allow_sms, allow_email, allow_whatsapp, preferred_channel, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (merchant_id, customer_id) DO UPDATE SET
			allow_in_app = EXCLUDED.allow_in_app,
			allow_sms = EXCLUDED.allow_sms,
			allow_email = EXCLUDED.allow_email,
			allow_whatsapp = EXCLUDED.allow_whatsapp,
			preferred_channel = EXCLUDED.preferred_channel,
			updated_at = NOW()
	`, p.MerchantID, p.CustomerID, p.AllowInApp, p.AllowSMS, p.AllowEmail, p.AllowWhatsApp, p.PreferredChannel)
	return err
}

// EnabledMerchants lists merchants whose reminders are on, with defaults
// filled in for merchants without a settings row.
func (r *repository) EnabledMerchants(ctx context.Context) ([]MerchantSettings, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var out []MerchantSettings
	err := r.db.SelectContext(ctx, &out, `
		SELECT m.id AS merchant_id, m.name AS merchant_name,
		       COALESCE(s.due_soon_days_before, 0) AS due_soon_days_before,
		       COALESCE(s.overdue_days_1, 3) AS overdue_days_1,
		       COALESCE(s.overdue_days_2, 7) AS overdue_days_2,
		       COALESCE(s.enabled, true) AS enabled
		FROM merchants m
		LEFT JOIN reminder_settings s ON s.merchant_id = m.id
		WHERE COALESCE(s.enabled, true)
		ORDER BY m.created_at
	`)
	return out, err
}

// DueCredits returns credits due on dueDate that still have a remaining amount.
func (r *repository) DueCredits(ctx context.Context, merchantID uuid.UUID, dueDate time.Time) ([]DueCredit, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var out []DueCredit
	err := r.db.SelectContext(ctx, &out, `
		SELECT t.id AS credit_id, t.customer_id, c.name AS customer_name, t.amount,
		       t.amount - COALESCE(SUM(a.amount), 0) AS remaining, t.due_date
		FROM transactions t
		JOIN customers c ON c.id = t.customer_id
		LEFT JOIN payment_allocations a ON a.credit_id = t.id
		WHERE t.merchant_id = $1 AND t.type = 'CREDIT' AND t.due_date = $2::date
		GROUP BY t.id, c.name
		HAVING t.amount - COALESCE(SUM(a.amount), 0) > 0
		ORDER BY t.created_at
	`, merchantID, dueDate.Format("2006-01-02"))
	return out, err
}

func (r *repository) RecordReminder(ctx context.Context, rem *Reminder, out *Outbound) (bool, error) {
	inserted := false
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &rem.CreatedAt, `
			INSERT INTO payment_reminders (id, merchant_id, customer_id, credit_id, due_date, reminder_level, reminder_type)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT ON CONSTRAINT payment_reminders_unique DO NOTHING
			RETURNING created_at
		`, rem.ID, rem.MerchantID, rem.CustomerID, rem.CreditID, rem.DueDate.Format("2006-01-02"), rem.Level, rem.Type)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("insert reminder: %w", err)
		}
		inserted = true

		if out == nil {
			return nil
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO outbound_notifications
				(id, merchant_id, customer_id, channel, type, title, message, due_date, amount, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, out.ID, out.MerchantID, out.CustomerID, out.Channel, out.Type, out.Title, out.Message,
			out.DueDate, out.Amount, StatusPending)
		if err != nil {
			return fmt.Errorf("enqueue outbound: %w", err)
		}
		return nil
	})
	return inserted, err
}

// ClaimPending moves up to limit pending (or stale processing) messages to
// PROCESSING and returns them oldest first. SKIP LOCKED lets several workers
// share the queue.
func (r *repository) ClaimPending(ctx context.Context, limit int) ([]*Outbound, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var out []*Outbound
	err := r.db.SelectContext(ctx, &out, `
		WITH claimed AS (
			UPDATE outbound_notifications
			SET status = 'PROCESSING', updated_at = NOW()
			WHERE id IN (
				SELECT id FROM outbound_notifications
				WHERE status = 'PENDING'
				   OR (status = 'PROCESSING' AND updated_at < NOW() - $2 * INTERVAL '1 second')
				ORDER BY created_at
				LIMIT $1
				FOR UPDATE SKIP LOCKED
			)
			RETURNING *
		)
		SELECT cl.id, cl.merchant_id, cl.customer_id, cl.channel, cl.type, cl.title, cl.message,
		       cl.due_date, cl.amount,
		       cl.status, cl.attempts, cl.error_message, cl.sent_at, cl.created_at, cl.updated_at,
		       m.name AS merchant_name, c.name AS customer_name,
		       c.phone AS customer_phone, c.email AS customer_email
		FROM claimed cl
		JOIN merchants m ON m.id = cl.merchant_id
		LEFT JOIN customers c ON c.id = cl.customer_id
		ORDER BY cl.created_at
	`, limit, int(claimLease.Seconds()))
	return out, err
}

func (r *repository) MarkDelivered(ctx context.Context, id uuid.UUID, status string, errMsg string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		UPDATE outbound_notifications
		SET status = $2,
		    attempts = attempts + 1,
		    error_message = NULLIF($3, ''),
		    sent_at = CASE WHEN $2 = 'SENT' THEN NOW() ELSE sent_at END,
		    updated_at = NOW()
		WHERE id = $1
	`, id, status, errMsg)
	return err
}

func (r *repository) ReleaseClaimed(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE outbound_notifications
		SET status = 'PENDING', updated_at = NOW()
		WHERE id = ANY($1::uuid[]) AND status = 'PROCESSING'
	`, pq.StringArray(keys))
	return err
}

package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const queryTimeout = 5 * time.Second

// Repository computes dashboard figures
type Repository interface {
	Compute(ctx context.Context, merchantID uuid.UUID, period Period, today time.Time) (*Stats, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates stats repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Compute aggregates the period's transactions. Balances are per customer
// over the period; overdue credits are counted over the whole ledger.
func (r *repository) Compute(ctx context.Context, merchantID uuid.UUID, period Period, today time.Time) (*Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		WITH period_tx AS (
			SELECT customer_id, type, amount
			FROM transactions
			WHERE merchant_id = $1
			  AND ($2::date IS NULL OR transaction_date >= $2::date)
			  AND ($3::date IS NULL OR transaction_date <= $3::date)
		),
		balances AS (
			SELECT customer_id,
			       SUM(CASE WHEN type = 'CREDIT' THEN amount ELSE -amount END) AS balance
			FROM period_tx
			GROUP BY customer_id
		),
		open_credits AS (
			SELECT t.id
			FROM transactions t
			LEFT JOIN payment_allocations a ON a.credit_id = t.id
			WHERE t.merchant_id = $1 AND t.type = 'CREDIT'
			  AND t.due_date IS NOT NULL AND t.due_date < $4::date
			GROUP BY t.id, t.amount
			HAVING t.amount - COALESCE(SUM(a.amount), 0) > 0
		)
		SELECT
			COALESCE((SELECT SUM(balance) FROM balances WHERE balance > 0), 0) AS total_due,
			COALESCE((SELECT SUM(amount) FROM period_tx WHERE type = 'PAYMENT'), 0) AS total_payments,
			COALESCE((SELECT SUM(amount) FROM period_tx WHERE type = 'CREDIT'), 0) AS total_credits,
			(SELECT COUNT(*) FROM balances WHERE balance > 0) AS clients_with_debt,
			(SELECT COUNT(*) FROM customers WHERE merchant_id = $1) AS clients_total,
			(SELECT COUNT(*) FROM open_credits) AS overdue_credits
	`
	var s Stats
	if err := r.db.GetContext(ctx, &s, query, merchantID, period.From, period.To, today.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("stats repository compute: %w", err)
	}
	return &s, nil
}

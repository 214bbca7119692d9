package transaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/payflow/payflow-api/internal/domain/ledger"
	"github.com/payflow/payflow-api/internal/pkg/database"
)

const queryTimeout = 5 * time.Second

// AllocateFunc receives the customer's credits, read under row locks, and
// returns the allocations to persist with the payment.
type AllocateFunc func(credits []ledger.Credit) ([]ledger.Allocation, error)

// Repository defines ledger data access
type Repository interface {
	List(ctx context.Context, merchantID uuid.UUID, filter ListFilter) ([]*Transaction, error)
	ListCredits(ctx context.Context, merchantID, customerID uuid.UUID) ([]ledger.Credit, error)
	CreditPayments(ctx context.Context, merchantID, customerID, creditID uuid.UUID) ([]PaymentHistory, error)
	// Create inserts t. For payments, allocate runs inside the same database
	// transaction after the customer's credit rows are locked.
	Create(ctx context.Context, t *Transaction, allocate AllocateFunc) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates transaction repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, merchantID uuid.UUID, filter ListFilter) ([]*Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT t.id, t.merchant_id, t.customer_id, c.name AS customer_name, t.type, t.amount,
		       t.description, t.transaction_date, t.due_date, t.payment_method, t.created_at
		FROM transactions t
		JOIN customers c ON c.id = t.customer_id
		WHERE t.merchant_id = $1
		  AND ($2::date IS NULL OR t.transaction_date >= $2::date)
		  AND ($3::date IS NULL OR t.transaction_date <= $3::date)
		  AND ($4::uuid IS NULL OR t.customer_id = $4::uuid)
		ORDER BY t.transaction_date DESC, t.created_at DESC, t.id DESC
	`
	var items []*Transaction
	if err := r.db.SelectContext(ctx, &items, query, merchantID, filter.From, filter.To, filter.CustomerID); err != nil {
		return nil, fmt.Errorf("transaction repository list: %w", err)
	}
	return items, nil
}

const creditsQuery = `
	SELECT t.id, t.customer_id, t.amount, t.transaction_date, t.due_date, t.description,
	       COALESCE(SUM(a.amount), 0) AS allocated
	FROM transactions t
	LEFT JOIN payment_allocations a ON a.credit_id = t.id
	WHERE t.merchant_id = $1 AND t.customer_id = $2 AND t.type = 'CREDIT'
	GROUP BY t.id
	ORDER BY t.transaction_date ASC, t.id ASC
`

func selectCredits(ctx context.Context, q sqlx.QueryerContext, merchantID, customerID uuid.UUID) ([]ledger.Credit, error) {
	var rows []creditRow
	if err := sqlx.SelectContext(ctx, q, &rows, creditsQuery, merchantID, customerID); err != nil {
		return nil, err
	}
	credits := make([]ledger.Credit, 0, len(rows))
	for _, row := range rows {
		credits = append(credits, row.toCredit())
	}
	return credits, nil
}

// ListCredits returns every credit of the customer with its remaining
// amount (amount minus allocations). Closed credits are included.
func (r *repository) ListCredits(ctx context.Context, merchantID, customerID uuid.UUID) ([]ledger.Credit, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	credits, err := selectCredits(ctx, r.db, merchantID, customerID)
	if err != nil {
		return nil, fmt.Errorf("transaction repository list credits: %w", err)
	}
	return credits, nil
}

func (r *repository) CreditPayments(ctx context.Context, merchantID, customerID, creditID uuid.UUID) ([]PaymentHistory, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE id = $1 AND merchant_id = $2 AND customer_id = $3 AND type = 'CREDIT'
		)`, creditID, merchantID, customerID)
	if err != nil {
		return nil, fmt.Errorf("transaction repository credit lookup: %w", err)
	}
	if !exists {
		return nil, ErrCreditNotFound
	}

	query := `
		SELECT p.id AS payment_id, a.amount, p.transaction_date AS payment_date,
		       p.description, p.payment_method, a.created_at
		FROM payment_allocations a
		JOIN transactions p ON p.id = a.payment_id
		WHERE a.credit_id = $1
		ORDER BY p.transaction_date ASC, a.created_at ASC
	`
	var items []PaymentHistory
	if err := r.db.SelectContext(ctx, &items, query, creditID); err != nil {
		return nil, fmt.Errorf("transaction repository credit payments: %w", err)
	}
	return items, nil
}

func (r *repository) Create(ctx context.Context, t *Transaction, allocate AllocateFunc) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		// Serializes concurrent writes for one customer.
		var customerName string
		err := tx.GetContext(ctx, &customerName,
			`SELECT name FROM customers WHERE id = $1 AND merchant_id = $2 FOR UPDATE`,
			t.CustomerID, t.MerchantID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCustomerNotFound
			}
			return fmt.Errorf("lock customer: %w", err)
		}
		t.CustomerName = customerName

		var allocations []ledger.Allocation
		if t.Type == ledger.TxTypePayment && allocate != nil {
			if _, err := tx.ExecContext(ctx, `
				SELECT id FROM transactions
				WHERE merchant_id = $1 AND customer_id = $2 AND type = 'CREDIT'
				ORDER BY id
				FOR UPDATE`, t.MerchantID, t.CustomerID); err != nil {
				return fmt.Errorf("lock credits: %w", err)
			}

			credits, err := selectCredits(ctx, tx, t.MerchantID, t.CustomerID)
			if err != nil {
				return fmt.Errorf("load credits: %w", err)
			}

			allocations, err = allocate(credits)
			if err != nil {
				return err
			}
		}

		err = tx.QueryRowxContext(ctx, `
			INSERT INTO transactions (id, merchant_id, customer_id, type, amount, description,
			                          transaction_date, due_date, payment_method)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING created_at`,
			t.ID, t.MerchantID, t.CustomerID, t.Type, t.Amount, t.Description,
			t.TransactionDate, t.DueDate, t.PaymentMethod,
		).Scan(&t.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}

		for _, a := range allocations {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO payment_allocations (id, merchant_id, customer_id, payment_id, credit_id, amount)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				uuid.New(), t.MerchantID, t.CustomerID, t.ID, a.CreditID, a.Amount)
			if err != nil {
				return fmt.Errorf("insert allocation: %w", err)
			}
		}
		return nil
	})
}

package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const queryTimeout = 5 * time.Second

// Repository defines customer data access. Every lookup is scoped to the
// owning merchant.
type Repository interface {
	List(ctx context.Context, merchantID uuid.UUID) ([]*Customer, error)
	GetByID(ctx context.Context, merchantID, id uuid.UUID) (*Customer, error)
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, merchantID, id uuid.UUID) error
	TotalDue(ctx context.Context, merchantID, id uuid.UUID) (decimal.Decimal, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates customer repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// balanceSelect computes max(0, credits - payments) per customer.
const balanceSelect = `
	SELECT c.id, c.merchant_id, c.name, c.phone, c.email, c.notes, c.created_at, c.updated_at,
	       GREATEST(0, COALESCE(SUM(CASE WHEN t.type = 'CREDIT' THEN t.amount ELSE -t.amount END), 0)) AS total_due
	FROM customers c
	LEFT JOIN transactions t ON t.customer_id = c.id
`

func (r *repository) List(ctx context.Context, merchantID uuid.UUID) ([]*Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := balanceSelect + `
	WHERE c.merchant_id = $1
	GROUP BY c.id
	ORDER BY c.name ASC, c.id ASC
	`
	var items []*Customer
	if err := r.db.SelectContext(ctx, &items, query, merchantID); err != nil {
		return nil, fmt.Errorf("customer repository list: %w", err)
	}
	return items, nil
}

// GetByID returns nil when the customer does not exist or belongs to
// another merchant.
func (r *repository) GetByID(ctx context.Context, merchantID, id uuid.UUID) (*Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := balanceSelect + `
	WHERE c.merchant_id = $1 AND c.id = $2
	GROUP BY c.id
	`
	var c Customer
	if err := r.db.GetContext(ctx, &c, query, merchantID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("customer repository get: %w", err)
	}
	return &c, nil
}

func (r *repository) Create(ctx context.Context, c *Customer) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO customers (id, merchant_id, name, phone, email, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, c.ID, c.MerchantID, c.Name, c.Phone, c.Email, c.Notes).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("customer repository create: %w", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, c *Customer) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		UPDATE customers
		SET name = $3, phone = $4, email = $5, notes = $6, updated_at = NOW()
		WHERE merchant_id = $1 AND id = $2
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, c.MerchantID, c.ID, c.Name, c.Phone, c.Email, c.Notes).
		Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("customer repository update: %w", err)
	}
	return nil
}

// Delete removes the customer; transactions and allocations cascade.
func (r *repository) Delete(ctx context.Context, merchantID, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE merchant_id = $1 AND id = $2`, merchantID, id)
	if err != nil {
		return fmt.Errorf("customer repository delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

func (r *repository) TotalDue(ctx context.Context, merchantID, id uuid.UUID) (decimal.Decimal, error) {
	c, err := r.GetByID(ctx, merchantID, id)
	if err != nil {
		return decimal.Zero, err
	}
	if c == nil {
		return decimal.Zero, ErrCustomerNotFound
	}
	return c.TotalDue, nil
}

package transaction

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/payflow/payflow-api/internal/domain/ledger"
)

// Transaction is one immutable ledger entry: a CREDIT extended to a
// customer or a PAYMENT received from them.
type Transaction struct {
	ID              uuid.UUID       `db:"id"`
	MerchantID      uuid.UUID       `db:"merchant_id"`
	CustomerID      uuid.UUID       `db:"customer_id"`
	CustomerName    string          `db:"customer_name"`
	Type            ledger.TxType   `db:"type"`
	Amount          decimal.Decimal `db:"amount"`
	Description     sql.NullString  `db:"description"`
	TransactionDate time.Time       `db:"transaction_date"`
	DueDate         sql.NullTime    `db:"due_date"`
	PaymentMethod   sql.NullString  `db:"payment_method"`
	CreatedAt       time.Time       `db:"created_at"`
}

// creditRow is a CREDIT with the sum of its allocations.
type creditRow struct {
	ID              uuid.UUID       `db:"id"`
	CustomerID      uuid.UUID       `db:"customer_id"`
	Amount          decimal.Decimal `db:"amount"`
	Allocated       decimal.Decimal `db:"allocated"`
	TransactionDate time.Time       `db:"transaction_date"`
	DueDate         sql.NullTime    `db:"due_date"`
	Description     sql.NullString  `db:"description"`
}

func (r creditRow) toCredit() ledger.Credit {
	remaining := r.Amount.Sub(r.Allocated)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	c := ledger.Credit{
		ID:              r.ID,
		CustomerID:      r.CustomerID,
		Amount:          r.Amount,
		RemainingAmount: remaining,
		CreatedDate:     r.TransactionDate,
		Description:     r.Description.String,
	}
	if r.DueDate.Valid {
		due := r.DueDate.Time
		c.DueDate = &due
	}
	return c
}

// PaymentHistory is one payment's contribution to a single credit.
type PaymentHistory struct {
	PaymentID     uuid.UUID       `db:"payment_id"`
	Amount        decimal.Decimal `db:"amount"`
	PaymentDate   time.Time       `db:"payment_date"`
	Description   sql.NullString  `db:"description"`
	PaymentMethod sql.NullString  `db:"payment_method"`
	CreatedAt     time.Time       `db:"created_at"`
}

// ListFilter narrows List. Nil fields are not applied.
type ListFilter struct {
	From       *time.Time
	To         *time.Time
	CustomerID *uuid.UUID
}

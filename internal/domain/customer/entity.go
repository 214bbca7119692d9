package customer

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer owes money to a merchant. TotalDue is derived from the ledger.
type Customer struct {
	ID         uuid.UUID       `db:"id"`
	MerchantID uuid.UUID       `db:"merchant_id"`
	Name       string          `db:"name"`
	Phone      sql.NullString  `db:"phone"`
	Email      sql.NullString  `db:"email"`
	Notes      sql.NullString  `db:"notes"`
	TotalDue   decimal.Decimal `db:"total_due"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package merchant

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Merchant is a shop owner holding a credit book.
type Merchant struct {
	ID           uuid.UUID      `db:"id"`
	Name         string         `db:"name"`
	Phone        string         `db:"phone"`
	Email        sql.NullString `db:"email"`
	PasswordHash string         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

package merchant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/payflow/payflow-api/internal/pkg/database"
)

// Repository defines merchant data access interface
type Repository interface {
	Create(ctx context.Context, m *Merchant) error
	GetByID(ctx context.Context, id uuid.UUID) (*Merchant, error)
	GetByPhone(ctx context.Context, phone string) (*Merchant, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new merchant repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const merchantColumns = `id, name, phone, email, password_hash, created_at, updated_at`

// Create inserts a merchant. Unique violations on phone or email are mapped
// to ErrPhoneTaken / ErrEmailTaken.
func (r *repository) Create(ctx context.Context, m *Merchant) error {
	query := `
		INSERT INTO merchants (id, name, phone, email, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, m.ID, m.Name, m.Phone, m.Email, m.PasswordHash).
		Scan(&m.CreatedAt, &m.UpdatedAt)
	switch {
	case err == nil:
		return nil
	case database.IsUniqueViolation(err, "merchants_phone_key"):
		return ErrPhoneTaken
	case database.IsUniqueViolation(err, "merchants_email_key"):
		return ErrEmailTaken
	default:
		return fmt.Errorf("merchant repository create: %w", err)
	}
}

// GetByID returns merchant by ID, nil when missing
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Merchant, error) {
	var m Merchant
	err := r.db.GetContext(ctx, &m, `SELECT `+merchantColumns+` FROM merchants WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// GetByPhone returns merchant by phone, nil when missing
func (r *repository) GetByPhone(ctx context.Context, phone string) (*Merchant, error) {
	var m Merchant
	err := r.db.GetContext(ctx, &m, `SELECT `+merchantColumns+` FROM merchants WHERE phone = $1`, phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *repository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE merchants SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, passwordHash)
	return err
}

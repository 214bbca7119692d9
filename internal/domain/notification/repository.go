package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const queryTimeout = 5 * time.Second

// Repository defines notification data access
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByMerchant(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*Notification, error)
	CountUnread(ctx context.Context, merchantID uuid.UUID) (int, error)
	MarkAsRead(ctx context.Context, merchantID, id uuid.UUID) (bool, error)
	MarkAllAsRead(ctx context.Context, merchantID uuid.UUID) error
	DeleteBefore(ctx context.Context, cutoff time.Time, onlyRead bool) (int64, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates notification repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *Notification) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO notifications (id, merchant_id, type, title, body, data, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.MerchantID, n.Type, n.Title, n.Body, n.Data, n.IsRead, n.CreatedAt,
	)
	return err
}

func (r *repository) ListByMerchant(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT id, merchant_id, type, title, body, data, is_read, read_at, created_at
		FROM notifications
		WHERE merchant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	var items []*Notification
	err := r.db.SelectContext(ctx, &items, query, merchantID, limit, offset)
	return items, err
}

func (r *repository) CountUnread(ctx context.Context, merchantID uuid.UUID) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM notifications WHERE merchant_id = $1 AND NOT is_read`, merchantID)
	return count, err
}

// MarkAsRead reports false when the notification does not belong to the merchant.
func (r *repository) MarkAsRead(ctx context.Context, merchantID, id uuid.UUID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = true, read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND merchant_id = $2
	`, id, merchantID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

func (r *repository) MarkAllAsRead(ctx context.Context, merchantID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = true, read_at = NOW() WHERE merchant_id = $1 AND NOT is_read`, merchantID)
	return err
}

// DeleteBefore removes notifications created before cutoff, optionally only read ones.
func (r *repository) DeleteBefore(ctx context.Context, cutoff time.Time, onlyRead bool) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE created_at < $1 AND ($2 = false OR is_read)`, cutoff, onlyRead)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

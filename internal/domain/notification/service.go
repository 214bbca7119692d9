package notification

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/payflow/payflow-api/internal/pkg/logger"
)

// Publisher pushes new notifications to connected clients.
type Publisher interface {
	SendToMerchantJSON(merchantID uuid.UUID, payload any) error
}

// Service handles notification logic
type Service struct {
	repo      Repository
	publisher Publisher
	now       func() time.Time
}

// NewService creates notification service. publisher may be nil.
func NewService(repo Repository, publisher Publisher) *Service {
	return &Service{repo: repo, publisher: publisher, now: time.Now}
}

// Create stores a notification and pushes it to the merchant's open sockets.
func (s *Service) Create(ctx context.Context, merchantID uuid.UUID, notifType Type, title, body string, data *Data) (*Notification, error) {
	n := &Notification{
		ID:         uuid.New(),
		MerchantID: merchantID,
		Type:       notifType,
		Title:      title,
		CreatedAt:  s.now().UTC(),
	}
	if body != "" {
		n.Body = sql.NullString{String: body, Valid: true}
	}
	n.SetData(data)

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	s.publish(ctx, n)
	return n, nil
}

func (s *Service) publish(ctx context.Context, n *Notification) {
	if s.publisher == nil {
		return
	}
	unread, err := s.repo.CountUnread(ctx, n.MerchantID)
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("count unread for realtime push")
	}
	payload := map[string]interface{}{
		"type": "notification:new",
		"data": map[string]interface{}{
			"notification": ResponseFromEntity(n),
			"unread_count": unread,
		},
	}
	if err := s.publisher.SendToMerchantJSON(n.MerchantID, payload); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("notification_id", n.ID.String()).Msg("realtime push failed")
	}
}

// List returns notifications for merchant, newest first
func (s *Service) List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*Notification, error) {
	return s.repo.ListByMerchant(ctx, merchantID, limit, offset)
}

// UnreadCount returns unread count
func (s *Service) UnreadCount(ctx context.Context, merchantID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, merchantID)
}

// MarkAsRead marks single notification as read
func (s *Service) MarkAsRead(ctx context.Context, merchantID, id uuid.UUID) error {
	ok, err := s.repo.MarkAsRead(ctx, merchantID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllAsRead marks all notifications as read
func (s *Service) MarkAllAsRead(ctx context.Context, merchantID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, merchantID)
}

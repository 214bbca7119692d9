package notification

import (
	"time"

	"github.com/google/uuid"
)

// Response for API
type Response struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      *string   `json:"body,omitempty"`
	Data      *Data     `json:"data,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt string    `json:"created_at"`
}

// ResponseFromEntity converts entity to response
func ResponseFromEntity(n *Notification) *Response {
	resp := &Response{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		IsRead:    n.IsRead,
		Data:      n.GetData(),
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	if n.Body.Valid {
		resp.Body = &n.Body.String
	}
	return resp
}

// UnreadCountResponse for unread count endpoint
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

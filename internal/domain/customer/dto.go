package customer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateRequest for POST /me/customers
type CreateRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=255"`
	Phone string `json:"phone" validate:"omitempty,phone"`
	Email string `json:"email" validate:"omitempty,email,max=255"`
	Notes string `json:"notes" validate:"max=2000"`
}

// UpdateRequest for PUT /me/customers/{id}. An empty name keeps the current
// one; phone, email and notes are replaced as sent.
type UpdateRequest struct {
	Name  string `json:"name" validate:"max=255"`
	Phone string `json:"phone" validate:"omitempty,phone"`
	Email string `json:"email" validate:"omitempty,email,max=255"`
	Notes string `json:"notes" validate:"max=2000"`
}

// Response represents a customer in API responses
type Response struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Phone     string          `json:"phone,omitempty"`
	Email     string          `json:"email,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	TotalDue  decimal.Decimal `json:"totalDue"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewResponse converts entity to response
func NewResponse(c *Customer) Response {
	return Response{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone.String,
		Email:     c.Email.String,
		Notes:     c.Notes.String,
		TotalDue:  c.TotalDue,
		CreatedAt: c.CreatedAt,
	}
}

package customer

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Service handles customer business logic
type Service struct {
	repo Repository
}

// NewService creates customer service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, merchantID uuid.UUID) ([]*Customer, error) {
	return s.repo.List(ctx, merchantID)
}

// Get returns ErrCustomerNotFound for unknown ids and for customers of
// other merchants alike.
func (s *Service) Get(ctx context.Context, merchantID, id uuid.UUID) (*Customer, error) {
	c, err := s.repo.GetByID(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCustomerNotFound
	}
	return c, nil
}

func (s *Service) Create(ctx context.Context, merchantID uuid.UUID, req *CreateRequest) (*Customer, error) {
	c := &Customer{
		ID:         uuid.New(),
		MerchantID: merchantID,
		Name:       strings.TrimSpace(req.Name),
		Phone:      nullString(strings.TrimSpace(req.Phone)),
		Email:      nullString(strings.ToLower(strings.TrimSpace(req.Email))),
		Notes:      nullString(req.Notes),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, merchantID, id uuid.UUID, req *UpdateRequest) (*Customer, error) {
	c, err := s.Get(ctx, merchantID, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		c.Name = name
	}
	c.Phone = nullString(strings.TrimSpace(req.Phone))
	c.Email = nullString(strings.ToLower(strings.TrimSpace(req.Email)))
	c.Notes = nullString(req.Notes)

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, merchantID, id uuid.UUID) error {
	return s.repo.Delete(ctx, merchantID, id)
}

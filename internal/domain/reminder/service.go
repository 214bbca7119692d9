package reminder

import (
	"context"

	"github.com/google/uuid"

	"github.com/payflow/payflow-api/internal/domain/customer"
)

// CustomerLookup resolves a merchant's customer, nil when absent.
type CustomerLookup interface {
	GetByID(ctx context.Context, merchantID, id uuid.UUID) (*customer.Customer, error)
}

// Service handles reminder settings and notification preferences
type Service struct {
	repo      Repository
	customers CustomerLookup
}

// NewService creates reminder service
func NewService(repo Repository, customers CustomerLookup) *Service {
	return &Service{repo: repo, customers: customers}
}

// GetSettings returns the merchant's settings or the defaults
func (s *Service) GetSettings(ctx context.Context, merchantID uuid.UUID) (*Settings, error) {
	return s.repo.GetSettings(ctx, merchantID)
}

// UpdateSettings applies the non-negative values of req
func (s *Service) UpdateSettings(ctx context.Context, merchantID uuid.UUID, req *SettingsRequest) (*Settings, error) {
	settings, err := s.repo.GetSettings(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	req.apply(settings)
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *Service) ensureCustomer(ctx context.Context, merchantID, customerID uuid.UUID) error {
	c, err := s.customers.GetByID(ctx, merchantID, customerID)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrCustomerNotFound
	}
	return nil
}

// GetPreferences returns a customer's preferences or the defaults
func (s *Service) GetPreferences(ctx context.Context, merchantID, customerID uuid.UUID) (*Preferences, error) {
	if err := s.ensureCustomer(ctx, merchantID, customerID); err != nil {
		return nil, err
	}
	return s.repo.GetPreferences(ctx, merchantID, customerID)
}

// UpdatePreferences merges req into the stored preferences
func (s *Service) UpdatePreferences(ctx context.Context, merchantID, customerID uuid.UUID, req *PreferencesRequest) (*Preferences, error) {
	if err := s.ensureCustomer(ctx, merchantID, customerID); err != nil {
		return nil, err
	}
	prefs, err := s.repo.GetPreferences(ctx, merchantID, customerID)
	if err != nil {
		return nil, err
	}
	req.apply(prefs)
	switch prefs.PreferredChannel {
	case ChannelInApp, ChannelSMS, ChannelEmail, ChannelWhatsApp:
	default:
		return nil, ErrInvalidChannel
	}
	if err := s.repo.SavePreferences(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/payflow/payflow-api/internal/domain/merchant"
	"github.com/payflow/payflow-api/internal/pkg/jwt"
	"github.com/payflow/payflow-api/internal/pkg/password"
)

// Service handles authentication business logic
type Service struct {
	merchantRepo merchant.Repository
	jwtService   *jwt.Service
	refresh      RefreshStore
}

// NewService creates auth service
func NewService(merchantRepo merchant.Repository, jwtService *jwt.Service, refresh RefreshStore) *Service {
	return &Service{
		merchantRepo: merchantRepo,
		jwtService:   jwtService,
		refresh:      refresh,
	}
}

// Register creates new merchant account
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	phone := normalizePhone(req.Phone)

	existing, err := s.merchantRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPhoneAlreadyExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	m := &merchant.Merchant{
		ID:           uuid.New(),
		Name:         req.Name,
		Phone:        phone,
		PasswordHash: hash,
	}
	if email := normalizeEmail(req.Email); email != "" {
		m.Email = sql.NullString{String: email, Valid: true}
	}

	if err := s.merchantRepo.Create(ctx, m); err != nil {
		switch {
		case errors.Is(err, merchant.ErrPhoneTaken):
			return nil, ErrPhoneAlreadyExists
		case errors.Is(err, merchant.ErrEmailTaken):
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	log.Info().Str("merchant_id", m.ID.String()).Msg("merchant registered")
	return s.generateTokens(ctx, m)
}

// Login authenticates merchant by phone and password
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	m, err := s.merchantRepo.GetByPhone(ctx, normalizePhone(req.Phone))
	if err != nil {
		return nil, err
	}
	if m == nil || !password.Verify(req.Password, m.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if password.NeedsRehash(m.PasswordHash) {
		if hash, err := password.Hash(req.Password); err == nil {
			if err := s.merchantRepo.UpdatePassword(ctx, m.ID, hash); err != nil {
				log.Warn().Err(err).Str("merchant_id", m.ID.String()).Msg("password rehash failed")
			}
		}
	}

	return s.generateTokens(ctx, m)
}

// Refresh rotates the refresh token and issues a new access token
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if refreshToken == "" {
		return nil, ErrRefreshTokenRequired
	}

	refreshHash := jwt.HashRefreshToken(refreshToken)
	merchantID, err := s.refresh.Lookup(ctx, refreshHash)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	m, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMerchantNotFound
	}

	_ = s.refresh.Delete(ctx, refreshHash)

	return s.generateTokens(ctx, m)
}

// Logout invalidates refresh token
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.refresh.Delete(ctx, jwt.HashRefreshToken(refreshToken))
}

// GetCurrentMerchant returns current merchant by ID
func (s *Service) GetCurrentMerchant(ctx context.Context, merchantID uuid.UUID) (*MerchantResponse, error) {
	m, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMerchantNotFound
	}
	resp := NewMerchantResponse(m)
	return &resp, nil
}

// ChangePassword replaces the password after checking the current one
func (s *Service) ChangePassword(ctx context.Context, merchantID uuid.UUID, req *ChangePasswordRequest) error {
	m, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrMerchantNotFound
	}
	if !password.Verify(req.CurrentPassword, m.PasswordHash) {
		return ErrWrongPassword
	}

	hash, err := password.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	return s.merchantRepo.UpdatePassword(ctx, merchantID, hash)
}

func (s *Service) generateTokens(ctx context.Context, m *merchant.Merchant) (*AuthResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(m.ID, m.Phone)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtService.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	if err := s.refresh.Save(ctx, jwt.HashRefreshToken(refreshToken), m.ID, s.jwtService.GetRefreshTTL()); err != nil {
		return nil, err
	}

	return &AuthResponse{
		Merchant: NewMerchantResponse(m),
		Tokens: TokensResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    int(s.jwtService.GetAccessTTL().Seconds()),
			TokenType:    "Bearer",
		},
	}, nil
}

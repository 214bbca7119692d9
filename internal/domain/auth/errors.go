package auth

import "errors"

var (
	ErrPhoneAlreadyExists   = errors.New("phone already registered")
	ErrEmailAlreadyExists   = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid phone or password")
	ErrInvalidRefreshToken  = errors.New("invalid or expired refresh token")
	ErrMerchantNotFound     = errors.New("merchant not found")
	ErrRefreshTokenRequired = errors.New("refresh token is required")
	ErrWrongPassword        = errors.New("current password is incorrect")
)

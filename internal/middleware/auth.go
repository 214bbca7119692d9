package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/payflow/payflow-api/internal/pkg/jwt"
	"github.com/payflow/payflow-api/internal/pkg/logger"
	"github.com/payflow/payflow-api/internal/pkg/response"
)

type contextKey string

const (
	MerchantIDKey contextKey = "merchant_id"
	PhoneKey      contextKey = "phone"
)

// Auth returns middleware that validates JWT
func Auth(jwtService *jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				response.Unauthorized(w, "Missing authorization header")
				return
			}

			claims, err := jwtService.ValidateAccessToken(token)
			if err != nil {
				if errors.Is(err, jwt.ErrExpiredToken) {
					response.Unauthorized(w, "Token expired")
				} else {
					response.Unauthorized(w, "Invalid token")
				}
				return
			}

			ctx := context.WithValue(r.Context(), MerchantIDKey, claims.MerchantID)
			ctx = context.WithValue(ctx, PhoneKey, claims.Phone)
			ctx = logger.WithFields(ctx, map[string]string{"merchant_id": claims.MerchantID.String()})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken reads the token from the Authorization header. Browsers cannot
// set headers on websocket upgrades, so the ?token= query is accepted there.
func bearerToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return ""
		}
		return parts[1]
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get("token")
	}
	return ""
}

// GetMerchantID extracts merchant ID from context
func GetMerchantID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(MerchantIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// GetPhone extracts the merchant phone from context
func GetPhone(ctx context.Context) string {
	if phone, ok := ctx.Value(PhoneKey).(string); ok {
		return phone
	}
	return ""
}

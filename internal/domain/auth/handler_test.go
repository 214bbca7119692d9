package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/payflow/payflow-api/internal/domain/merchant"
	"github.com/payflow/payflow-api/internal/middleware"
	"github.com/payflow/payflow-api/internal/pkg/password"
	"github.com/payflow/payflow-api/internal/pkg/response"
)

func TestRegisterHandlerValidatesAndConflicts(t *testing.T) {
	repo := newFakeMerchantRepo(&merchant.Merchant{ID: uuid.New(), Phone: "+221770000000"})
	svc, _ := newTestService(repo)
	h := NewHandler(svc)

	body, _ := json.Marshal(map[string]string{"name": "A", "phone": "abc", "password": "1"})
	rr := httptest.NewRecorder()
	h.Register(rr, httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body)))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body=%s", rr.Code, rr.Body.String())
	}

	body, _ = json.Marshal(RegisterRequest{Name: "Awa", Phone: "+221770000000", Password: "secret1"})
	rr = httptest.NewRecorder()
	h.Register(rr, httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body)))
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestChangePasswordHandlerWrongCurrentIs401(t *testing.T) {
	hash, _ := password.Hash("secret1")
	m := &merchant.Merchant{ID: uuid.New(), Phone: "+221770000000", PasswordHash: hash}
	svc, _ := newTestService(newFakeMerchantRepo(m))
	h := NewHandler(svc)

	body, _ := json.Marshal(ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "secret2"})
	req := httptest.NewRequest(http.MethodPost, "/me/change-password", bytes.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), middleware.MerchantIDKey, m.ID))
	rr := httptest.NewRecorder()
	h.ChangePassword(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	var out response.Response
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Error == nil || out.Error.Code != response.CodeInvalidPassword {
		t.Fatalf("expected %s, got %+v", response.CodeInvalidPassword, out.Error)
	}
}

func TestLoginHandlerReturnsTokens(t *testing.T) {
	hash, _ := password.Hash("secret1")
	m := &merchant.Merchant{ID: uuid.New(), Phone: "+221770000000", PasswordHash: hash}
	svc, _ := newTestService(newFakeMerchantRepo(m))
	h := NewHandler(svc)

	body, _ := json.Marshal(LoginRequest{Phone: m.Phone, Password: "secret1"})
	rr := httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body)))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var out struct {
		Data AuthResponse `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Data.Tokens.AccessToken == "" || out.Data.Tokens.TokenType != "Bearer" {
		t.Fatalf("unexpected tokens: %+v", out.Data.Tokens)
	}
}

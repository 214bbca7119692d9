package payflowclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/payflow/payflow-api/internal/domain/transaction"
)

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": status < 400, "data": data})
}

func TestGetCreditsSendsSessionToken(t *testing.T) {
	customerID := uuid.New()
	creditID := uuid.New()
	due := "2026-03-01"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/me/customers/"+customerID.String()+"/credits" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeEnvelope(w, http.StatusOK, transaction.CreditsResponse{
			Credits: []transaction.CreditResponse{{
				ID: creditID, CustomerID: customerID,
				Amount: decimal.RequireFromString("100"), RemainingAmount: decimal.RequireFromString("60"),
				TransactionDate: "2026-02-01", DueDate: &due,
			}},
			TotalDue: decimal.RequireFromString("60"),
		})
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, time.Second, "payflowctl-test")
	resp, err := client.GetCredits(context.Background(), Session{AccessToken: "tok"}, customerID)
	if err != nil {
		t.Fatalf("get credits: %v", err)
	}
	if len(resp.Credits) != 1 || !resp.TotalDue.Equal(decimal.RequireFromString("60")) {
		t.Fatalf("unexpected response %+v", resp)
	}

	credits, err := LedgerCredits(resp)
	if err != nil {
		t.Fatalf("ledger credits: %v", err)
	}
	if credits[0].DueDate == nil || credits[0].DueDate.Format(dateLayout) != due || !credits[0].RemainingAmount.Equal(decimal.RequireFromString("60")) {
		t.Fatalf("unexpected ledger credit %+v", credits[0])
	}
}

func TestEmptySessionIsRejectedLocally(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second, "")
	_, err := client.GetCredits(context.Background(), Session{}, uuid.New())
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestCreateTransactionReturnsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body transaction.CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Type != "PAYMENT" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"ALLOCATION_EXCEEDS_PAYMENT","message":"allocations exceed payment"}}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, time.Second, "")
	_, err := client.CreateTransaction(context.Background(), Session{AccessToken: "tok"}, &transaction.CreateRequest{
		CustomerID: uuid.New(),
		Type:       "PAYMENT",
		Amount:     decimal.RequireFromString("10"),
	})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity || apiErr.Code != "ALLOCATION_EXCEEDS_PAYMENT" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}

func TestNonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, time.Second, "")
	_, err := client.GetCreditPayments(context.Background(), Session{AccessToken: "tok"}, uuid.New(), uuid.New())
	if err == nil || !strings.Contains(err.Error(), "status=502") || !strings.Contains(err.Error(), "upstream down") {
		t.Fatalf("expected status and body in error, got %v", err)
	}
}

func TestLoginReadsAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" || r.Header.Get("Authorization") != "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"tokens": map[string]any{"access_token": "abc", "token_type": "Bearer"},
		})
	}))
	t.Cleanup(server.Close)

	s, err := NewClient(server.URL, time.Second, "").Login(context.Background(), "+221770000000", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if s.AccessToken != "abc" {
		t.Fatalf("expected token abc, got %q", s.AccessToken)
	}
}

func TestTimeoutIsClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		writeEnvelope(w, http.StatusOK, nil)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, 50*time.Millisecond, "")
	_, err := client.GetCredits(context.Background(), Session{AccessToken: "tok"}, uuid.New())
	if err == nil || !strings.Contains(err.Error(), "timeout") {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

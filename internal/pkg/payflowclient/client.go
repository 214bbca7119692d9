package payflowclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/payflow/payflow-api/internal/domain/auth"
	"github.com/payflow/payflow-api/internal/domain/transaction"
)

const defaultTimeout = 15 * time.Second

// ErrNoSession is returned when a call needs a token and the session has none.
var ErrNoSession = errors.New("payflow client: session has no access token")

// Session carries the caller's access token. It is passed explicitly to
// every call; the client itself holds no credentials.
type Session struct {
	AccessToken string
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("payflow api error: status=%d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("payflow api error: status=%d code=%s %s", e.StatusCode, e.Code, e.Message)
}

// Client is a typed client for the PayFlow REST API.
type Client struct {
	baseURL string
	ua      string
	http    *http.Client
}

// NewClient creates a client for baseURL (scheme and host, without /api).
func NewClient(baseURL string, timeout time.Duration, ua string) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		ua:      ua,
		http:    &http.Client{Timeout: timeout, Transport: transport},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

// Login exchanges phone and password for a session.
func (c *Client) Login(ctx context.Context, phone, password string) (Session, error) {
	var out auth.AuthResponse
	err := c.do(ctx, nil, http.MethodPost, "/api/auth/login", auth.LoginRequest{Phone: phone, Password: password}, &out)
	if err != nil {
		return Session{}, err
	}
	return Session{AccessToken: out.Tokens.AccessToken}, nil
}

// GetCredits returns the customer's open credits in allocation order.
func (c *Client) GetCredits(ctx context.Context, s Session, customerID uuid.UUID) (*transaction.CreditsResponse, error) {
	var out transaction.CreditsResponse
	if err := c.do(ctx, &s, http.MethodGet, "/api/me/customers/"+customerID.String()+"/credits", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTransaction records a credit or a payment.
func (c *Client) CreateTransaction(ctx context.Context, s Session, req *transaction.CreateRequest) (*transaction.CreateResponse, error) {
	var out transaction.CreateResponse
	if err := c.do(ctx, &s, http.MethodPost, "/api/me/transactions", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCreditPayments returns the payments applied to one credit.
func (c *Client) GetCreditPayments(ctx context.Context, s Session, customerID, creditID uuid.UUID) ([]transaction.PaymentHistoryResponse, error) {
	var out []transaction.PaymentHistoryResponse
	path := "/api/me/customers/" + customerID.String() + "/credits/" + creditID.String() + "/payments"
	if err := c.do(ctx, &s, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, s *Session, method, path string, body, out any) error {
	if c == nil || c.http == nil {
		return errors.New("payflow client: client is nil")
	}
	if c.baseURL == "" {
		return errors.New("payflow client: base url is empty")
	}
	if s != nil && strings.TrimSpace(s.AccessToken) == "" {
		return ErrNoSession
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("payflow client: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("payflow client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s != nil {
		req.Header.Set("Authorization", "Bearer "+s.AccessToken)
	}
	if c.ua != "" {
		req.Header.Set("User-Agent", c.ua)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyRequestError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("payflow client: read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("payflow client: decode response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
		}
		return apiErr
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("payflow client: decode data: %w", err)
	}
	return nil
}

func classifyRequestError(ctx context.Context, err error) error {
	if isTimeoutError(ctx, err) {
		return fmt.Errorf("payflow client timeout: %w", err)
	}
	if isNetworkError(err) {
		return fmt.Errorf("payflow client network error: %w", err)
	}
	return fmt.Errorf("payflow client request error: %w", err)
}

func isTimeoutError(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isNetworkError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH)
}

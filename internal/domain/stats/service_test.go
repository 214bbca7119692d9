package stats

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/payflow/payflow-api/internal/middleware"
)

type countingRepo struct {
	calls int
	stats Stats
}

func (r *countingRepo) Compute(ctx context.Context, merchantID uuid.UUID, period Period, today time.Time) (*Stats, error) {
	r.calls++
	s := r.stats
	return &s, nil
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2026-03-01", "")
	if err != nil || p.From == nil || p.To != nil {
		t.Fatalf("unexpected period %+v err=%v", p, err)
	}
	if _, err := ParsePeriod("2026-03-10", "2026-03-01"); err != ErrInvalidPeriod {
		t.Fatalf("expected ErrInvalidPeriod for inverted bounds, got %v", err)
	}
	if _, err := ParsePeriod("march", ""); err != ErrInvalidPeriod {
		t.Fatalf("expected ErrInvalidPeriod for bad date, got %v", err)
	}
	if p.key() != "2026-03-01:-" {
		t.Fatalf("unexpected key %q", p.key())
	}
}

func TestServiceWithoutCacheAlwaysComputes(t *testing.T) {
	repo := &countingRepo{stats: Stats{TotalDue: decimal.RequireFromString("150"), ClientsTotal: 3}}
	svc := NewService(repo, NewCache(nil, time.Minute))

	for i := 0; i < 2; i++ {
		s, err := svc.Get(context.Background(), uuid.New(), Period{})
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if !s.TotalDue.Equal(decimal.RequireFromString("150")) {
			t.Fatalf("unexpected stats: %+v", s)
		}
	}
	if repo.calls != 2 {
		t.Fatalf("expected 2 computations without cache, got %d", repo.calls)
	}
	svc.Invalidate(context.Background(), uuid.New())
}

func TestHandlerRejectsBadPeriod(t *testing.T) {
	h := NewHandler(NewService(&countingRepo{}, nil))
	req := httptest.NewRequest(http.MethodGet, "/?from=2026-13-01", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.MerchantIDKey, uuid.New()))
	rr := httptest.NewRecorder()
	h.Get(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skipf("TEST_REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		t.Skipf("invalid TEST_REDIS_URL: %v", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCacheServesUntilInvalidated(t *testing.T) {
	client := setupTestRedis(t)
	repo := &countingRepo{stats: Stats{TotalCredits: decimal.RequireFromString("42.50")}}
	svc := NewService(repo, NewCache(client, time.Minute))
	merchantID := uuid.New()
	ctx := context.Background()

	if _, err := svc.Get(ctx, merchantID, Period{}); err != nil {
		t.Fatalf("get: %v", err)
	}
	s, err := svc.Get(ctx, merchantID, Period{})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if repo.calls != 1 || !s.TotalCredits.Equal(decimal.RequireFromString("42.50")) {
		t.Fatalf("expected cached hit, calls=%d stats=%+v", repo.calls, s)
	}

	svc.Invalidate(ctx, merchantID)
	if _, err := svc.Get(ctx, merchantID, Period{}); err != nil {
		t.Fatalf("get: %v", err)
	}
	if repo.calls != 2 {
		t.Fatalf("expected recompute after invalidation, got %d calls", repo.calls)
	}
}

package stats

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service serves dashboard stats through the cache
type Service struct {
	repo  Repository
	cache *Cache
	now   func() time.Time
}

// NewService creates stats service. cache may be nil.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// ParsePeriod parses optional YYYY-MM-DD bounds.
func ParsePeriod(from, to string) (Period, error) {
	var p Period
	for _, item := range []struct {
		raw string
		dst **time.Time
	}{{from, &p.From}, {to, &p.To}} {
		raw := strings.TrimSpace(item.raw)
		if raw == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return Period{}, ErrInvalidPeriod
		}
		*item.dst = &t
	}
	if p.From != nil && p.To != nil && p.From.After(*p.To) {
		return Period{}, ErrInvalidPeriod
	}
	return p, nil
}

// Get returns stats for the period, from cache when fresh.
func (s *Service) Get(ctx context.Context, merchantID uuid.UUID, period Period) (*Stats, error) {
	if cached := s.cache.Get(ctx, merchantID, period); cached != nil {
		return cached, nil
	}

	result, err := s.repo.Compute(ctx, merchantID, period, s.now())
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, merchantID, period, result)
	return result, nil
}

// Invalidate forwards to the cache; transaction writes call it.
func (s *Service) Invalidate(ctx context.Context, merchantID uuid.UUID) {
	s.cache.Invalidate(ctx, merchantID)
}

package feerules

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"quoteapi/src/calculator"
)

// DefaultSchedule is the built-in discount table used until the provider
// has been reached at least once, and whenever it is unreachable.
func DefaultSchedule() calculator.DiscountSchedule {
	return calculator.DiscountSchedule{
		calculator.Bounded(decimal.RequireFromString("10000"), decimal.RequireFromString("1")),
		calculator.Bounded(decimal.RequireFromString("100000"), decimal.RequireFromString("0.9")),
		calculator.Bounded(decimal.RequireFromString("1000000"), decimal.RequireFromString("0.8")),
		calculator.Unbounded(decimal.RequireFromString("0.7")),
	}
}

type fetcher interface {
	FetchSchedule(ctx context.Context) (calculator.DiscountSchedule, error)
}

// CachedSource serves the discount schedule with a TTL cache in front of
// the provider. A fetch failure never fails a quote: the last good schedule
// is reused, and before the first successful fetch the built-in default
// applies.
type CachedSource struct {
	client fetcher
	ttl    time.Duration

	mu        sync.RWMutex
	schedule  calculator.DiscountSchedule
	fetchedAt time.Time
}

// NewCachedSource wires a cached source around the given client.
func NewCachedSource(client fetcher, ttl time.Duration) *CachedSource {
	return &CachedSource{
		client:   client,
		ttl:      ttl,
		schedule: DefaultSchedule(),
	}
}

// Schedule returns the current discount schedule, refreshing from the
// provider when the cached copy is older than the TTL.
func (s *CachedSource) Schedule(ctx context.Context) calculator.DiscountSchedule {
	s.mu.RLock()
	fresh := time.Since(s.fetchedAt) < s.ttl && !s.fetchedAt.IsZero()
	cached := s.schedule
	s.mu.RUnlock()

	if fresh {
		return cached
	}

	schedule, err := s.client.FetchSchedule(ctx)
	if err != nil {
		logger.WithError(err).Warn("Using cached fee discount schedule, provider unavailable")
		return cached
	}

	s.mu.Lock()
	s.schedule = schedule
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	return schedule
}

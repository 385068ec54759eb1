package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/karloscodes/cartridge/cache"

	"statboard/internal/analytics"
)

// Revisioned is implemented by stores that can cheaply tell whether their
// revenue rows changed. Equal revisions mean equal channel totals.
type Revisioned interface {
	analytics.Store
	RevenueRevision(ctx context.Context) (string, error)
}

// CachedStore memoizes the all-time channel totals of another store. Totals
// are keyed by the inner store's revenue revision, so any import or
// truncation, from this process or another, is picked up on the next read.
type CachedStore struct {
	Revisioned
	channels *cache.Cache[string, []analytics.ChannelTotal]

	// mu serializes reads so the fetch runs under the caller's context.
	mu       sync.Mutex
	fetchCtx context.Context
	lastRev  string
}

var _ analytics.Store = (*CachedStore)(nil)

// NewCachedStore wraps inner, keeping channel totals for at most ttl.
func NewCachedStore(inner Revisioned, logger *slog.Logger, ttl time.Duration) *CachedStore {
	s := &CachedStore{Revisioned: inner}
	s.channels = cache.NewCache[string, []analytics.ChannelTotal](logger, ttl, func(string) ([]analytics.ChannelTotal, error) {
		return inner.SumRevenueByChannel(s.fetchCtx)
	})
	return s
}

func (s *CachedStore) SumRevenueByChannel(ctx context.Context) ([]analytics.ChannelTotal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rev, err := s.Revisioned.RevenueRevision(ctx)
	if err != nil {
		return nil, err
	}
	if s.lastRev != "" && s.lastRev != rev {
		s.channels.Remove(s.lastRev)
	}

	s.fetchCtx = ctx
	defer func() { s.fetchCtx = nil }()

	totals, err := s.channels.Get(rev)
	if err != nil {
		return nil, err
	}
	s.lastRev = rev
	return totals, nil
}

// Refresh drops cached aggregates so the next read hits the inner store.
func (s *CachedStore) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.channels.Clear()
	s.lastRev = ""
	s.mu.Unlock()

	if r, ok := s.Revisioned.(Refresher); ok {
		return r.Refresh(ctx)
	}
	return nil
}

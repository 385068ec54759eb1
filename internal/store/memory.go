package store

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"statboard/internal/analytics"
	"statboard/internal/timeframe"
)

// MemoryStore serves a Dataset from memory. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	pages   []analytics.PageStat
	metrics []analytics.DailyMetric
	revenue []analytics.RevenueEntry

	// revision counts Replace calls.
	revision uint64

	// reload resolves the dataset for a moment in time; nil for static
	// stores. day is the calendar day the served dataset was resolved for.
	reload func(now time.Time) (*Dataset, error)
	clock  timeframe.TimeProvider
	loc    *time.Location
	day    string
}

var _ Revisioned = (*MemoryStore)(nil)

// NewMemoryStore copies data into a new store.
func NewMemoryStore(data *Dataset) *MemoryStore {
	s := &MemoryStore{}
	s.Replace(data)
	return s
}

// Replace swaps the served records for data. Rows keep primary key order so
// ties sort the same way they do in the database.
func (s *MemoryStore) Replace(data *Dataset) {
	if data == nil {
		data = &Dataset{}
	}

	pages := slices.Clone(data.Pages)
	slices.SortStableFunc(pages, func(a, b analytics.PageStat) int {
		return compareIDs(a.ID, b.ID)
	})

	metrics := slices.Clone(data.Metrics)
	slices.SortStableFunc(metrics, func(a, b analytics.DailyMetric) int {
		return strings.Compare(b.Date, a.Date)
	})

	revenue := slices.Clone(data.Revenue)
	slices.SortStableFunc(revenue, func(a, b analytics.RevenueEntry) int {
		if c := strings.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})

	s.mu.Lock()
	s.pages, s.metrics, s.revenue = pages, metrics, revenue
	s.revision++
	s.mu.Unlock()
}

// Refresh rebuilds the dataset from its source, if it has one.
func (s *MemoryStore) Refresh(ctx context.Context) error {
	if s.reload == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.resolve(s.clock.Now(s.loc))
}

// followClock re-resolves a clock-relative dataset once the calendar day has
// moved on, so "today" in the data matches "today" in the chart window.
func (s *MemoryStore) followClock() error {
	if s.reload == nil {
		return nil
	}
	now := s.clock.Now(s.loc)

	s.mu.RLock()
	current := s.day
	s.mu.RUnlock()
	if now.Format(timeframe.DateLayout) == current {
		return nil
	}
	return s.resolve(now)
}

func (s *MemoryStore) resolve(now time.Time) error {
	data, err := s.reload(now)
	if err != nil {
		return err
	}
	s.Replace(data)

	s.mu.Lock()
	s.day = now.Format(timeframe.DateLayout)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) CountPages(_ context.Context, filter analytics.PageFilter) (int64, error) {
	if err := s.followClock(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, p := range s.pages {
		if filter.Matches(p) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) FindPages(_ context.Context, filter analytics.PageFilter, order analytics.PageOrder, limit, offset int) ([]analytics.PageStat, error) {
	if err := s.followClock(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := analytics.SortPages(analytics.FilterPages(s.pages, filter), order)
	return analytics.Window(rows, limit, offset), nil
}

func (s *MemoryStore) LatestMetrics(_ context.Context, limit int) ([]analytics.DailyMetric, error) {
	if err := s.followClock(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.metrics) {
		limit = len(s.metrics)
	}
	return slices.Clone(s.metrics[:limit]), nil
}

func (s *MemoryStore) FindRevenue(_ context.Context, from, to string) ([]analytics.RevenueEntry, error) {
	if err := s.followClock(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []analytics.RevenueEntry
	for _, e := range s.revenue {
		if e.Date >= from && e.Date <= to {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (s *MemoryStore) SumRevenueByChannel(_ context.Context) ([]analytics.ChannelTotal, error) {
	if err := s.followClock(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return analytics.SumByChannel(s.revenue), nil
}

// RevenueRevision changes every time the dataset is replaced.
func (s *MemoryStore) RevenueRevision(_ context.Context) (string, error) {
	if err := s.followClock(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return strconv.FormatUint(s.revision, 10), nil
}

func compareIDs(a, b uint) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/karloscodes/cartridge/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"statboard/internal/analytics"
)

// GormStore reads analytics records from the SQL database.
type GormStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

var _ Revisioned = (*GormStore)(nil)

func NewGormStore(db *gorm.DB, logger *slog.Logger) *GormStore {
	return &GormStore{db: db, logger: logger}
}

func (s *GormStore) pages(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&analytics.PageStat{})
}

// matchingPages loads the rows matching filter in primary key order. SQLite's
// LOWER and LIKE fold ASCII only, so searches are matched with the same
// Unicode folding the fixture store uses.
func (s *GormStore) matchingPages(ctx context.Context, filter analytics.PageFilter, columns ...string) ([]analytics.PageStat, error) {
	var rows []analytics.PageStat
	q := s.pages(ctx).Order("id ASC")
	if len(columns) > 0 {
		q = q.Select(columns)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load page stats: %w", err)
	}
	return analytics.FilterPages(rows, filter), nil
}

func (s *GormStore) CountPages(ctx context.Context, filter analytics.PageFilter) (int64, error) {
	if filter.Search != "" {
		rows, err := s.matchingPages(ctx, filter, "id", "page")
		if err != nil {
			return 0, err
		}
		return int64(len(rows)), nil
	}

	var total int64
	if err := s.pages(ctx).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count page stats: %w", err)
	}
	return total, nil
}

// FindPages orders numeric columns of unfiltered tables in SQL with the
// primary key as tie-breaker. SQLite has no locale collation and no Unicode
// case folding, so page ordering and searches run in memory with the same
// helpers the fixture store uses.
func (s *GormStore) FindPages(ctx context.Context, filter analytics.PageFilter, order analytics.PageOrder, limit, offset int) ([]analytics.PageStat, error) {
	if order.Collated() || filter.Search != "" {
		rows, err := s.matchingPages(ctx, filter)
		if err != nil {
			return nil, err
		}
		return analytics.Window(analytics.SortPages(rows, order), limit, offset), nil
	}

	dir := "ASC"
	if order.Descending() {
		dir = "DESC"
	}
	q := s.pages(ctx).Order(order.Column() + " " + dir).Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	var rows []analytics.PageStat
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query page stats: %w", err)
	}
	if rows == nil {
		rows = []analytics.PageStat{}
	}
	return rows, nil
}

func (s *GormStore) LatestMetrics(ctx context.Context, limit int) ([]analytics.DailyMetric, error) {
	var metrics []analytics.DailyMetric
	q := s.db.WithContext(ctx).Order("date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&metrics).Error; err != nil {
		return nil, fmt.Errorf("failed to query daily metrics: %w", err)
	}
	return metrics, nil
}

func (s *GormStore) FindRevenue(ctx context.Context, from, to string) ([]analytics.RevenueEntry, error) {
	var entries []analytics.RevenueEntry
	err := s.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC").Order("id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query revenue entries: %w", err)
	}
	return entries, nil
}

type channelSum struct {
	Channel string
	Total   decimal.Decimal
}

func (s *GormStore) SumRevenueByChannel(ctx context.Context) ([]analytics.ChannelTotal, error) {
	var sums []channelSum
	err := s.db.WithContext(ctx).
		Model(&analytics.RevenueEntry{}).
		Select("channel, SUM(amount) AS total").
		Group("channel").
		Scan(&sums).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue by channel: %w", err)
	}

	totals := make([]analytics.ChannelTotal, len(sums))
	for i, sum := range sums {
		// SUM over decimal columns comes back as a float in SQLite
		totals[i] = analytics.ChannelTotal{Channel: sum.Channel, Total: sum.Total.Round(2)}
	}
	return analytics.SortChannelTotals(totals), nil
}

type revenueRevision struct {
	RowCount    int64
	LastID      uint
	LastCreated string
}

// RevenueRevision identifies the current set of revenue rows. Rows are only
// ever inserted or deleted, so any change moves the row count, the highest id
// or the newest insert time.
func (s *GormStore) RevenueRevision(ctx context.Context) (string, error) {
	var rev revenueRevision
	err := s.db.WithContext(ctx).
		Model(&analytics.RevenueEntry{}).
		Select("COUNT(*) AS row_count, COALESCE(MAX(id), 0) AS last_id, COALESCE(MAX(created_at), '') AS last_created").
		Scan(&rev).Error
	if err != nil {
		return "", fmt.Errorf("failed to read revenue revision: %w", err)
	}
	return fmt.Sprintf("%d:%d:%s", rev.RowCount, rev.LastID, rev.LastCreated), nil
}

// Import writes every record of data in a single transaction.
func (s *GormStore) Import(data *Dataset) error {
	return sqlite.PerformWrite(s.logger, s.db, func(tx *gorm.DB) error {
		if len(data.Pages) > 0 {
			if err := tx.CreateInBatches(data.Pages, 100).Error; err != nil {
				return fmt.Errorf("failed to insert page stats: %w", err)
			}
		}
		if len(data.Metrics) > 0 {
			if err := tx.CreateInBatches(data.Metrics, 100).Error; err != nil {
				return fmt.Errorf("failed to insert daily metrics: %w", err)
			}
		}
		if len(data.Revenue) > 0 {
			if err := tx.CreateInBatches(data.Revenue, 100).Error; err != nil {
				return fmt.Errorf("failed to insert revenue entries: %w", err)
			}
		}
		return nil
	})
}

// Truncate deletes every analytics record.
func (s *GormStore) Truncate() error {
	return sqlite.PerformWrite(s.logger, s.db, func(tx *gorm.DB) error {
		for _, model := range []any{&analytics.PageStat{}, &analytics.DailyMetric{}, &analytics.RevenueEntry{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to truncate: %w", err)
			}
		}
		return nil
	})
}

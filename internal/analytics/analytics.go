// Package analytics turns stored page, KPI and revenue rows into the
// dashboard's read models.
//
// The package is organized into focused modules:
//   - analytics.go: record models and the Store contract
//   - table.go: filtering, sorting and pagination of page rows
//   - trends.go: KPI cards with period-over-period trends
//   - timeseries.go: calendar-aligned revenue and visitor series
//   - channels.go: revenue share per acquisition channel
//   - export.go: CSV encoding of page rows
//   - service.go: request-level orchestration over a Store
package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ===== Record Definitions =====

// PageStat is one recorded day of traffic for a page path.
type PageStat struct {
	ID             uint   `gorm:"primaryKey;autoIncrement"`
	Page           string `gorm:"index;not null"`
	Views          int    `gorm:"not null;default:0"`
	UniqueVisitors int    `gorm:"not null;default:0"`
	BounceRate     int    `gorm:"not null;default:0"` // integer percent, 0-100
	AvgDurationSec int    `gorm:"not null;default:0"`
	Conversions    int    `gorm:"not null;default:0"`
	RecordedAt     string `gorm:"size:10;index;not null"` // YYYY-MM-DD
	CreatedAt      time.Time
}

// DailyMetric is the KPI snapshot of one calendar date.
type DailyMetric struct {
	ID             uint            `gorm:"primaryKey;autoIncrement"`
	Date           string          `gorm:"size:10;uniqueIndex;not null"`
	TotalUsers     int             `gorm:"not null"`
	ActiveSessions int             `gorm:"not null"`
	Revenue        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	ConversionRate decimal.Decimal `gorm:"type:decimal(6,2);not null"` // percent
	CreatedAt      time.Time
}

// RevenueEntry is the revenue one channel produced on one date.
type RevenueEntry struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"`
	Date      string          `gorm:"size:10;index;not null"`
	Channel   string          `gorm:"index;not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CreatedAt time.Time
}

// Well-known revenue channels.
const (
	ChannelDirect   = "direct"
	ChannelSocial   = "social"
	ChannelOrganic  = "organic"
	ChannelReferral = "referral"
)

// Channels lists the known channels in presentation order.
var Channels = []string{ChannelDirect, ChannelSocial, ChannelOrganic, ChannelReferral}

// ===== Store Contract =====

// Store exposes the query primitives the engines are built on. Implementations
// must return identical results for identical inputs: the database-backed
// store and the in-memory fixture are interchangeable.
type Store interface {
	// CountPages counts the page rows matching filter.
	CountPages(ctx context.Context, filter PageFilter) (int64, error)
	// FindPages returns matching rows ordered by order. A limit <= 0 returns
	// every row from offset on.
	FindPages(ctx context.Context, filter PageFilter, order PageOrder, limit, offset int) ([]PageStat, error)
	// LatestMetrics returns up to limit snapshots, newest date first.
	LatestMetrics(ctx context.Context, limit int) ([]DailyMetric, error)
	// FindRevenue returns the revenue rows dated within [from, to].
	FindRevenue(ctx context.Context, from, to string) ([]RevenueEntry, error)
	// SumRevenueByChannel sums all revenue ever recorded per channel.
	SumRevenueByChannel(ctx context.Context) ([]ChannelTotal, error)
}

package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTrendDirection(t *testing.T) {
	assert.Equal(t, TrendUp, TrendDirection(d("12840"), d("12611")))
	assert.Equal(t, TrendDown, TrendDirection(d("3.38"), d("3.42")))
	assert.Equal(t, TrendNeutral, TrendDirection(d("10.00"), d("10")))
}

func TestTrendPercentage(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		previous string
		want     float64
	}{
		{"growth", "12840", "12611", 1.8},
		{"decline is absolute", "3.38", "3.42", 1.2},
		{"doubling", "200", "100", 100},
		{"unchanged", "50", "50", 0},
		{"zero previous", "100", "0", 0},
		{"negative previous", "100", "-5", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrendPercentage(d(tt.current), d(tt.previous)))
		})
	}
}

func TestLatestPair(t *testing.T) {
	current, previous := LatestPair(nil)
	assert.Nil(t, current)
	assert.Nil(t, previous)

	snapshots := []DailyMetric{{Date: "2024-03-10"}, {Date: "2024-03-09"}, {Date: "2024-03-08"}}
	current, previous = LatestPair(snapshots)
	require.NotNil(t, current)
	require.NotNil(t, previous)
	assert.Equal(t, "2024-03-10", current.Date)
	assert.Equal(t, "2024-03-09", previous.Date)

	current, previous = LatestPair(snapshots[:1])
	assert.Equal(t, "2024-03-10", current.Date)
	assert.Nil(t, previous)
}

func TestBuildMetricCards(t *testing.T) {
	current := &DailyMetric{Date: "2024-03-10", TotalUsers: 12840, ActiveSessions: 1932, Revenue: d("48210.50"), ConversionRate: d("3.42")}
	previous := &DailyMetric{Date: "2024-03-09", TotalUsers: 12611, ActiveSessions: 1874, Revenue: d("46980.00"), ConversionRate: d("3.38")}

	cards := BuildMetricCards(current, previous)
	require.Len(t, cards, 4)

	assert.Equal(t, MetricCard{
		ID: "total-users", Label: "Total Users", Value: 12840, PreviousValue: 12611,
		Format: FormatNumber, Trend: TrendUp, TrendPercentage: 1.8,
	}, cards[0])
	assert.Equal(t, MetricCard{
		ID: "active-sessions", Label: "Active Sessions", Value: 1932, PreviousValue: 1874,
		Format: FormatNumber, Trend: TrendUp, TrendPercentage: 3.1,
	}, cards[1])
	assert.Equal(t, MetricCard{
		ID: "revenue", Label: "Revenue", Value: 48210.5, PreviousValue: 46980,
		Format: FormatCurrency, Trend: TrendUp, TrendPercentage: 2.6,
	}, cards[2])
	assert.Equal(t, MetricCard{
		ID: "conversion-rate", Label: "Conversion Rate", Value: 3.42, PreviousValue: 3.38,
		Format: FormatPercentage, Trend: TrendUp, TrendPercentage: 1.2,
	}, cards[3])
}

func TestBuildMetricCardsWithoutHistory(t *testing.T) {
	t.Run("no snapshots", func(t *testing.T) {
		for _, card := range BuildMetricCards(nil, nil) {
			assert.Zero(t, card.Value)
			assert.Equal(t, TrendNeutral, card.Trend)
			assert.Zero(t, card.TrendPercentage)
		}
	})

	t.Run("only today", func(t *testing.T) {
		cards := BuildMetricCards(&DailyMetric{TotalUsers: 10, Revenue: d("5")}, nil)
		assert.Equal(t, TrendUp, cards[0].Trend)
		assert.Zero(t, cards[0].TrendPercentage)
		assert.Zero(t, cards[0].PreviousValue)
	})
}

package timeframe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrailingDays(t *testing.T) {
	now := time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC)

	points := TrailingDays(now, 7)
	require.Len(t, points, 7)

	assert.Equal(t, []string{
		"2024-03-04", "2024-03-05", "2024-03-06", "2024-03-07",
		"2024-03-08", "2024-03-09", "2024-03-10",
	}, Keys(points))
	assert.Equal(t, []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}, Labels(points))
}

func TestTrailingDaysUsesLocationBoundary(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 02:00 UTC on March 11 is still March 10 in New York.
	instant := time.Date(2024, 3, 11, 2, 0, 0, 0, time.UTC)
	provider := &FixedTimeProvider{At: instant}

	points := TrailingDays(provider.Now(ny), 7)
	assert.Equal(t, "2024-03-10", points[6].Key)

	points = TrailingDays(provider.Now(time.UTC), 7)
	assert.Equal(t, "2024-03-11", points[6].Key)
}

func TestTrailingDaysAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// DST starts on 2024-03-10 in New York.
	now := time.Date(2024, 3, 12, 0, 30, 0, 0, ny)
	points := TrailingDays(now, 7)

	assert.Equal(t, []string{
		"2024-03-06", "2024-03-07", "2024-03-08", "2024-03-09",
		"2024-03-10", "2024-03-11", "2024-03-12",
	}, Keys(points))
}

func TestTrailingDaysMonthAndYearRollover(t *testing.T) {
	now := time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC)
	points := TrailingDays(now, 7)

	assert.Equal(t, "2024-12-27", points[0].Key)
	assert.Equal(t, "2025-01-02", points[6].Key)
}

func TestTrailingDaysNonPositive(t *testing.T) {
	assert.Empty(t, TrailingDays(time.Now(), 0))
	assert.Empty(t, TrailingDays(time.Now(), -3))
}

func TestDaysAgo(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 5, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-01", DaysAgo(now, 0))
	assert.Equal(t, "2024-02-29", DaysAgo(now, 1))
	assert.Equal(t, "2024-02-24", DaysAgo(now, 6))
}

func TestBuildSeries(t *testing.T) {
	points := TrailingDays(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC), 7)

	series := BuildSeries(points, []DateStat{
		{Date: "2024-03-08", Value: 60},
		{Date: "2024-03-08", Value: 40},
		{Date: "2024-03-10", Value: 50},
		{Date: "2024-02-01", Value: 999}, // outside the window
	})

	assert.Equal(t, []float64{0, 0, 0, 0, 100, 0, 50}, series)
}

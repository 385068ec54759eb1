package timeframe

import (
	"time"
)

// DateLayout is the ISO calendar date format used for day keys.
const DateLayout = "2006-01-02"

// DateStat is a value attached to a day key.
type DateStat struct {
	Date  string
	Value float64
}

// TimeProvider supplies the current time, so "today" can be pinned in tests.
type TimeProvider interface {
	Now(loc *time.Location) time.Time
}

// DefaultTimeProvider reads the system clock.
type DefaultTimeProvider struct{}

// Now returns the current time in loc
func (p *DefaultTimeProvider) Now(loc *time.Location) time.Time {
	return time.Now().In(loc)
}

// FixedTimeProvider always returns the same instant. Used by tests and
// fixture-backed deployments that need a stable "today".
type FixedTimeProvider struct {
	At time.Time
}

// Now returns the fixed instant in loc.
func (p *FixedTimeProvider) Now(loc *time.Location) time.Time {
	return p.At.In(loc)
}

// DayPoint is one calendar day of a fixed window.
type DayPoint struct {
	Key   string // ISO date, e.g. 2024-03-10
	Label string // short English weekday, e.g. Sun
}

// TrailingDays returns the calendar days from now minus (days-1) through now,
// oldest first, using now's location for the day boundary.
func TrailingDays(now time.Time, days int) []DayPoint {
	if days <= 0 {
		return []DayPoint{}
	}

	// Anchor at noon so DST shifts never move the date.
	y, m, d := now.Date()
	anchor := time.Date(y, m, d, 12, 0, 0, 0, now.Location())

	points := make([]DayPoint, days)
	for i := 0; i < days; i++ {
		day := anchor.AddDate(0, 0, i-(days-1))
		points[i] = DayPoint{
			Key:   day.Format(DateLayout),
			Label: ShortWeekday(day.Weekday()),
		}
	}
	return points
}

// ShortWeekday returns the three letter English weekday name. The label does
// not depend on the server locale.
func ShortWeekday(wd time.Weekday) string {
	return wd.String()[:3]
}

// DaysAgo returns the ISO date key n days before now in now's location.
func DaysAgo(now time.Time, n int) string {
	y, m, d := now.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, now.Location()).AddDate(0, 0, -n).Format(DateLayout)
}

// Keys extracts the day keys of a window.
func Keys(points []DayPoint) []string {
	keys := make([]string, len(points))
	for i, p := range points {
		keys[i] = p.Key
	}
	return keys
}

// Labels extracts the weekday labels of a window.
func Labels(points []DayPoint) []string {
	labels := make([]string, len(points))
	for i, p := range points {
		labels[i] = p.Label
	}
	return labels
}

// BuildSeries maps sparse per-day values onto the window, filling days that
// have no value with zero.
func BuildSeries(points []DayPoint, stats []DateStat) []float64 {
	byDate := make(map[string]float64, len(stats))
	for _, s := range stats {
		byDate[s.Date] += s.Value
	}

	series := make([]float64, len(points))
	for i, p := range points {
		series[i] = byDate[p.Key]
	}
	return series
}

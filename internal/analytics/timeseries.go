package analytics

import (
	"math"

	"github.com/shopspring/decimal"

	"statboard/internal/timeframe"
)

// SeriesWindowDays is the length of the dashboard chart window.
const SeriesWindowDays = 7

// VisitorRevenueRatio derives the visitors series from revenue. There is no
// visitor source behind the chart, so the series is synthetic and flagged as such.
const VisitorRevenueRatio = 0.42

// Chart dataset colors
const (
	RevenueColor  = "var(--color-primary)"
	VisitorsColor = "var(--color-info)"
)

// Dataset is one named series of a chart.
type Dataset struct {
	Name      string    `json:"name"`
	Data      []float64 `json:"data"`
	Color     string    `json:"color"`
	Synthetic bool      `json:"synthetic,omitempty"`
}

// ChartData is a labelled multi-series chart.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// RevenueWindow returns the first and last day keys of the chart window.
func RevenueWindow(days []timeframe.DayPoint) (from, to string) {
	if len(days) == 0 {
		return "", ""
	}
	return days[0].Key, days[len(days)-1].Key
}

// AlignRevenue sums entries per day across channels and lays them onto days.
// Days without entries are 0.
func AlignRevenue(entries []RevenueEntry, days []timeframe.DayPoint) []float64 {
	sums := make(map[string]decimal.Decimal)
	var dates []string
	for _, e := range entries {
		if _, seen := sums[e.Date]; !seen {
			dates = append(dates, e.Date)
		}
		sums[e.Date] = sums[e.Date].Add(e.Amount)
	}

	stats := make([]timeframe.DateStat, len(dates))
	for i, date := range dates {
		stats[i] = timeframe.DateStat{Date: date, Value: sums[date].InexactFloat64()}
	}
	return timeframe.BuildSeries(days, stats)
}

// SyntheticVisitors scales each revenue point by VisitorRevenueRatio and
// rounds to a whole visitor.
func SyntheticVisitors(revenue []float64) []float64 {
	visitors := make([]float64, len(revenue))
	for i, r := range revenue {
		visitors[i] = math.Round(r * VisitorRevenueRatio)
	}
	return visitors
}

// BuildRevenueChart builds the revenue and visitors chart over days.
func BuildRevenueChart(entries []RevenueEntry, days []timeframe.DayPoint) ChartData {
	revenue := AlignRevenue(entries, days)
	return ChartData{
		Labels: timeframe.Labels(days),
		Datasets: []Dataset{
			{Name: "Revenue", Data: revenue, Color: RevenueColor},
			{Name: "Visitors", Data: SyntheticVisitors(revenue), Color: VisitorsColor, Synthetic: true},
		},
	}
}

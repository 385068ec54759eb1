package analytics

import (
	"github.com/shopspring/decimal"
)

// MetricFormat tells clients how to render a card value.
type MetricFormat string

const (
	FormatNumber     MetricFormat = "number"
	FormatCurrency   MetricFormat = "currency"
	FormatPercentage MetricFormat = "percentage"
)

// Trend is the direction of a metric against the previous period.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// MetricCard is a KPI with its trend against the previous snapshot.
type MetricCard struct {
	ID              string       `json:"id"`
	Label           string       `json:"label"`
	Value           float64      `json:"value"`
	PreviousValue   float64      `json:"previousValue"`
	Format          MetricFormat `json:"format"`
	Trend           Trend        `json:"trend"`
	TrendPercentage float64      `json:"trendPercentage"`
}

type trackedMetric struct {
	id     string
	label  string
	format MetricFormat
	value  func(DailyMetric) decimal.Decimal
}

var trackedMetrics = []trackedMetric{
	{
		id: "total-users", label: "Total Users", format: FormatNumber,
		value: func(m DailyMetric) decimal.Decimal { return decimal.NewFromInt(int64(m.TotalUsers)) },
	},
	{
		id: "active-sessions", label: "Active Sessions", format: FormatNumber,
		value: func(m DailyMetric) decimal.Decimal { return decimal.NewFromInt(int64(m.ActiveSessions)) },
	},
	{
		id: "revenue", label: "Revenue", format: FormatCurrency,
		value: func(m DailyMetric) decimal.Decimal { return m.Revenue },
	},
	{
		id: "conversion-rate", label: "Conversion Rate", format: FormatPercentage,
		value: func(m DailyMetric) decimal.Decimal { return m.ConversionRate },
	},
}

// LatestPair splits snapshots ordered newest first into current and previous.
// Either may be nil.
func LatestPair(snapshots []DailyMetric) (current, previous *DailyMetric) {
	if len(snapshots) > 0 {
		current = &snapshots[0]
	}
	if len(snapshots) > 1 {
		previous = &snapshots[1]
	}
	return current, previous
}

// BuildMetricCards derives one card per tracked metric. Missing snapshots
// count as zero.
func BuildMetricCards(current, previous *DailyMetric) []MetricCard {
	var cur, prev DailyMetric
	if current != nil {
		cur = *current
	}
	if previous != nil {
		prev = *previous
	}

	cards := make([]MetricCard, len(trackedMetrics))
	for i, m := range trackedMetrics {
		c, p := m.value(cur), m.value(prev)
		cards[i] = MetricCard{
			ID:              m.id,
			Label:           m.label,
			Value:           c.InexactFloat64(),
			PreviousValue:   p.InexactFloat64(),
			Format:          m.format,
			Trend:           TrendDirection(c, p),
			TrendPercentage: TrendPercentage(c, p),
		}
	}
	return cards
}

// TrendDirection compares current against previous.
func TrendDirection(current, previous decimal.Decimal) Trend {
	switch current.Cmp(previous) {
	case 1:
		return TrendUp
	case -1:
		return TrendDown
	default:
		return TrendNeutral
	}
}

// TrendPercentage is |current-previous|/previous*100 rounded to one decimal,
// or 0 when previous is not positive.
func TrendPercentage(current, previous decimal.Decimal) float64 {
	if previous.Sign() <= 0 {
		return 0
	}
	pct := current.Sub(previous).Abs().Div(previous).Mul(decimal.NewFromInt(100))
	return pct.Round(1).InexactFloat64()
}

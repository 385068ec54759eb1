package analytics

import (
	"strconv"
	"strings"
	"time"

	"statboard/internal/timeframe"
)

// CSVHeader is the first line of every export.
var CSVHeader = []string{"Page", "Views", "Unique Visitors", "Bounce Rate (%)", "Avg Duration (s)", "Conversions"}

// ExportQuery selects the rows of a CSV export. Exports are never paginated.
type ExportQuery struct {
	Search    string
	Sort      string
	Direction string
}

// Order resolves the export sort. Exports default to views ascending.
func (q ExportQuery) Order() PageOrder {
	return NewPageOrder(q.Sort, q.Direction, SortAsc)
}

// Export is an encoded CSV document.
type Export struct {
	Filename string
	Body     string
	Rows     int
}

// EncodeCSV writes the header and one line per row, joined by "\n" with no
// trailing newline. The page path is always quoted; numbers are raw.
func EncodeCSV(rows []PageStat) string {
	var b strings.Builder
	b.WriteString(strings.Join(CSVHeader, ","))
	for _, r := range rows {
		b.WriteByte('\n')
		b.WriteString(quoteField(r.Page))
		for _, n := range []int{r.Views, r.UniqueVisitors, r.BounceRate, r.AvgDurationSec, r.Conversions} {
			b.WriteByte(',')
			b.WriteString(strconv.Itoa(n))
		}
	}
	return b.String()
}

// quoteField wraps s in double quotes, doubling embedded quotes.
func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// ExportFilename names an export after the UTC date of now.
func ExportFilename(now time.Time) string {
	return "analytics-export-" + now.UTC().Format(timeframe.DateLayout) + ".csv"
}

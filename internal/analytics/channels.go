package analytics

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ChannelTotal is the summed revenue of one channel.
type ChannelTotal struct {
	Channel string
	Total   decimal.Decimal
}

// ChannelShare is a channel's rounded percentage of all revenue.
type ChannelShare struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// SumByChannel groups entries by channel and sums their amounts.
func SumByChannel(entries []RevenueEntry) []ChannelTotal {
	sums := make(map[string]decimal.Decimal)
	var order []string
	for _, e := range entries {
		if _, seen := sums[e.Channel]; !seen {
			order = append(order, e.Channel)
		}
		sums[e.Channel] = sums[e.Channel].Add(e.Amount)
	}

	totals := make([]ChannelTotal, len(order))
	for i, channel := range order {
		totals[i] = ChannelTotal{Channel: channel, Total: sums[channel].Round(2)}
	}
	return SortChannelTotals(totals)
}

// SortChannelTotals orders totals largest first, ties by channel name.
func SortChannelTotals(totals []ChannelTotal) []ChannelTotal {
	sorted := slices.Clone(totals)
	slices.SortStableFunc(sorted, func(a, b ChannelTotal) int {
		if c := b.Total.Cmp(a.Total); c != 0 {
			return c
		}
		return strings.Compare(a.Channel, b.Channel)
	})
	return sorted
}

// ChannelShares converts totals into whole-number percentages of the grand
// total. Shares are rounded independently and may not add up to 100.
func ChannelShares(totals []ChannelTotal) []ChannelShare {
	sorted := SortChannelTotals(totals)

	grand := decimal.Zero
	for _, t := range sorted {
		grand = grand.Add(t.Total)
	}

	hundred := decimal.NewFromInt(100)
	shares := make([]ChannelShare, len(sorted))
	for i, t := range sorted {
		value := 0
		if grand.Sign() > 0 {
			value = int(t.Total.Mul(hundred).Div(grand).Round(0).IntPart())
		}
		shares[i] = ChannelShare{Label: ChannelLabel(t.Channel), Value: value}
	}
	return shares
}

// ChannelLabel upper-cases the first character of a channel name and leaves
// the rest untouched.
func ChannelLabel(channel string) string {
	if channel == "" {
		return channel
	}
	_, size := utf8.DecodeRuneInString(channel)
	return cases.Upper(language.Und).String(channel[:size]) + channel[size:]
}

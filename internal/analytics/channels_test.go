package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumByChannel(t *testing.T) {
	entries := []RevenueEntry{
		{Date: "2024-03-09", Channel: ChannelSocial, Amount: d("100.10")},
		{Date: "2024-03-09", Channel: ChannelDirect, Amount: d("400.00")},
		{Date: "2024-03-10", Channel: ChannelSocial, Amount: d("99.905")},
		{Date: "2024-03-10", Channel: ChannelOrganic, Amount: d("50")},
	}

	totals := SumByChannel(entries)
	require.Len(t, totals, 3)
	assert.Equal(t, ChannelDirect, totals[0].Channel)
	assert.True(t, d("400").Equal(totals[0].Total))
	assert.Equal(t, ChannelSocial, totals[1].Channel)
	assert.True(t, d("200.01").Equal(totals[1].Total))
	assert.Equal(t, ChannelOrganic, totals[2].Channel)
}

func TestSortChannelTotalsBreaksTiesByName(t *testing.T) {
	totals := SortChannelTotals([]ChannelTotal{
		{Channel: "social", Total: d("10")},
		{Channel: "direct", Total: d("10")},
		{Channel: "referral", Total: d("30")},
	})

	assert.Equal(t, "referral", totals[0].Channel)
	assert.Equal(t, "direct", totals[1].Channel)
	assert.Equal(t, "social", totals[2].Channel)
}

func TestChannelShares(t *testing.T) {
	t.Run("proportional shares", func(t *testing.T) {
		shares := ChannelShares([]ChannelTotal{
			{Channel: "social", Total: d("200")},
			{Channel: "direct", Total: d("600")},
			{Channel: "organic", Total: d("200")},
		})

		assert.Equal(t, []ChannelShare{
			{Label: "Direct", Value: 60},
			{Label: "Organic", Value: 20},
			{Label: "Social", Value: 20},
		}, shares)
	})

	t.Run("rounded independently", func(t *testing.T) {
		shares := ChannelShares([]ChannelTotal{
			{Channel: "a", Total: d("1")},
			{Channel: "b", Total: d("1")},
			{Channel: "c", Total: d("1")},
		})

		sum := 0
		for _, s := range shares {
			assert.Equal(t, 33, s.Value)
			sum += s.Value
		}
		assert.Equal(t, 99, sum)
	})

	t.Run("all zero", func(t *testing.T) {
		shares := ChannelShares([]ChannelTotal{
			{Channel: "direct", Total: d("0")},
			{Channel: "social", Total: d("0")},
		})

		assert.Equal(t, []ChannelShare{{Label: "Direct", Value: 0}, {Label: "Social", Value: 0}}, shares)
	})

	t.Run("no channels", func(t *testing.T) {
		assert.Empty(t, ChannelShares(nil))
	})
}

func TestChannelLabel(t *testing.T) {
	assert.Equal(t, "Direct", ChannelLabel("direct"))
	assert.Equal(t, "Paid search", ChannelLabel("paid search"))
	assert.Equal(t, "Ölfeld", ChannelLabel("ölfeld"))
	assert.Equal(t, "SEO", ChannelLabel("SEO"))
	assert.Equal(t, "", ChannelLabel(""))
}

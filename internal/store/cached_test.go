package store_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statboard/internal/analytics"
	"statboard/internal/store"
	"statboard/internal/testsupport"
)

type requestIDKey struct{}

// countingStore counts channel aggregations served by the wrapped store.
type countingStore struct {
	*store.MemoryStore
	sums      atomic.Int32
	requestID atomic.Value
}

func (s *countingStore) SumRevenueByChannel(ctx context.Context) ([]analytics.ChannelTotal, error) {
	s.sums.Add(1)
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		s.requestID.Store(id)
	}
	return s.MemoryStore.SumRevenueByChannel(ctx)
}

func revenue(channel, amount string) analytics.RevenueEntry {
	return analytics.RevenueEntry{Date: "2024-03-10", Channel: channel, Amount: d(amount)}
}

func channelsOf(totals []analytics.ChannelTotal) map[string]string {
	out := make(map[string]string, len(totals))
	for _, ct := range totals {
		out[ct.Channel] = ct.Total.StringFixed(2)
	}
	return out
}

func TestCachedStoreMemoizesChannelTotals(t *testing.T) {
	inner := &countingStore{MemoryStore: store.NewMemoryStore(testsupport.LoadDemoFixture(t))}
	cached := store.NewCachedStore(inner, testsupport.GetLogger(), time.Minute)
	ctx := context.Background()

	first, err := cached.SumRevenueByChannel(ctx)
	require.NoError(t, err)
	second, err := cached.SumRevenueByChannel(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), inner.sums.Load())

	// Other queries pass straight through.
	total, err := cached.CountPages(ctx, analytics.PageFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(16), total)
}

func TestCachedStoreRefreshClearsTotals(t *testing.T) {
	inner := &countingStore{MemoryStore: store.NewMemoryStore(testsupport.LoadDemoFixture(t))}
	cached := store.NewCachedStore(inner, testsupport.GetLogger(), time.Minute)
	ctx := context.Background()

	_, err := cached.SumRevenueByChannel(ctx)
	require.NoError(t, err)

	inner.Replace(&store.Dataset{Revenue: []analytics.RevenueEntry{
		{ID: 1, Date: "2024-03-10", Channel: "direct", Amount: d("5")},
	}})
	require.NoError(t, cached.Refresh(ctx))

	totals, err := cached.SumRevenueByChannel(ctx)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, "5", totals[0].Total.String())
	assert.Equal(t, int32(2), inner.sums.Load())
}

func TestCachedStoreHonorsCancelledContext(t *testing.T) {
	cached := store.NewCachedStore(store.NewMemoryStore(nil), testsupport.GetLogger(), time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cached.SumRevenueByChannel(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCachedStoreFollowsReplacedData(t *testing.T) {
	inner := &countingStore{MemoryStore: store.NewMemoryStore(testsupport.LoadDemoFixture(t))}
	cached := store.NewCachedStore(inner, testsupport.GetLogger(), time.Hour)
	ctx := context.Background()

	_, err := cached.SumRevenueByChannel(ctx)
	require.NoError(t, err)

	inner.Replace(&store.Dataset{Revenue: []analytics.RevenueEntry{revenue("social", "300")}})

	totals, err := cached.SumRevenueByChannel(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"social": "300.00"}, channelsOf(totals))
	assert.Equal(t, int32(2), inner.sums.Load())
}

func TestCachedStoreSeesImportsFromOtherConnections(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	server := store.NewGormStore(db, testsupport.GetLogger())
	require.NoError(t, server.Import(&store.Dataset{Revenue: []analytics.RevenueEntry{revenue("direct", "100")}}))

	cached := store.NewCachedStore(server, testsupport.GetLogger(), time.Hour)
	ctx := context.Background()

	totals, err := cached.SumRevenueByChannel(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"direct": "100.00"}, channelsOf(totals))

	// A second writer, such as the seeding CLI, never touches the server's cache.
	writer := store.NewGormStore(db, testsupport.GetLogger())

	t.Run("import", func(t *testing.T) {
		require.NoError(t, writer.Import(&store.Dataset{Revenue: []analytics.RevenueEntry{revenue("social", "300")}}))

		totals, err := cached.SumRevenueByChannel(ctx)
		require.NoError(t, err)
		fresh, err := server.SumRevenueByChannel(ctx)
		require.NoError(t, err)
		assert.Equal(t, fresh, totals)
		assert.Equal(t, map[string]string{"social": "300.00", "direct": "100.00"}, channelsOf(totals))
	})

	t.Run("truncate and reimport with the same ids", func(t *testing.T) {
		entry := revenue("direct", "100")
		entry.ID = 1
		require.NoError(t, writer.Truncate())
		require.NoError(t, writer.Import(&store.Dataset{Revenue: []analytics.RevenueEntry{entry}}))
		_, err := cached.SumRevenueByChannel(ctx)
		require.NoError(t, err)

		entry.Amount = d("5")
		require.NoError(t, writer.Truncate())
		require.NoError(t, writer.Import(&store.Dataset{Revenue: []analytics.RevenueEntry{entry}}))

		totals, err := cached.SumRevenueByChannel(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"direct": "5.00"}, channelsOf(totals))
	})

	t.Run("truncate", func(t *testing.T) {
		require.NoError(t, writer.Truncate())

		totals, err := cached.SumRevenueByChannel(ctx)
		require.NoError(t, err)
		assert.Empty(t, totals)
	})
}

func TestCachedStoreFetchesWithRequestContext(t *testing.T) {
	inner := &countingStore{MemoryStore: store.NewMemoryStore(testsupport.LoadDemoFixture(t))}
	cached := store.NewCachedStore(inner, testsupport.GetLogger(), time.Minute)

	ctx := context.WithValue(context.Background(), requestIDKey{}, "req-1")
	_, err := cached.SumRevenueByChannel(ctx)
	require.NoError(t, err)

	assert.Equal(t, "req-1", inner.requestID.Load())
}

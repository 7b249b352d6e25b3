package stats

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/myshop/myshop-manager/internal/cache"
	"github.com/myshop/myshop-manager/internal/dependency"
	"github.com/myshop/myshop-manager/internal/entity"
	gerr "github.com/myshop/myshop-manager/internal/errors"
	"github.com/myshop/myshop-manager/internal/store/bunt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, c *Config, withCache bool) (*Service, *bunt.BuntStore, time.Time) {
	t.Helper()
	bs, err := bunt.New(context.Background(), bunt.Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(bs.Close)

	var sc dependency.StatsCache
	if withCache {
		sc = cache.NewMemory()
	}
	s, err := New(c, bs, sc)
	require.NoError(t, err)

	now := time.Date(2024, 3, 13, 18, 30, 0, 0, s.Location())
	s.SetClock(func() time.Time { return now })
	return s, bs, now
}

func TestStatisticsFromStore(t *testing.T) {
	ctx := context.Background()
	s, bs, now := newTestService(t, &Config{}, false)

	a := order("a", "Douala", 1000, now.Add(-time.Hour))
	b := order("b", "Yaoundé", 3000, now.Add(-2*time.Hour))
	old := order("old", "Yaoundé", 2000, now.AddDate(0, 0, -1))
	for _, o := range []entity.Order{a, b, old} {
		o := o
		require.NoError(t, bs.Order().AddOrder(ctx, &o))
	}

	st, err := s.Statistics(ctx, Query{Period: "day"})
	require.NoError(t, err)
	assertDec(t, dec(4000), st.TotalRevenue)
	assert.Equal(t, 2, st.TotalOrders)
	assertDec(t, dec(100), st.RevenueTrend)
	require.Len(t, st.TownBreakdown, 2)
	assertDec(t, dec(75), st.TownBreakdown[0].Percentage)

	st, err = s.Statistics(ctx, Query{Period: "day", Region: "yaoundé"})
	require.NoError(t, err)
	assert.Equal(t, "Yaoundé", st.Region)
	assertDec(t, dec(3000), st.TotalRevenue)
}

func TestStatisticsValidation(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService(t, &Config{}, false)

	_, err := s.Statistics(ctx, Query{Period: "fortnight"})
	assert.ErrorIs(t, err, gerr.ErrValidation)

	_, err = s.Statistics(ctx, Query{Period: "month", Value: "Thermidor"})
	assert.ErrorIs(t, err, gerr.ErrValidation)

	_, err = s.Statistics(ctx, Query{Period: "month", Region: "Atlantis"})
	assert.ErrorIs(t, err, gerr.ErrValidation)

	_, err = s.Statistics(ctx, Query{Period: "month", Region: "unknown"})
	assert.NoError(t, err)
}

func TestStatisticsCacheInvalidation(t *testing.T) {
	ctx := context.Background()
	s, bs, now := newTestService(t, &Config{CacheResolution: time.Minute}, true)

	a := order("a", "Douala", 1000, now.Add(-time.Hour))
	require.NoError(t, bs.Order().AddOrder(ctx, &a))

	first, err := s.Statistics(ctx, Query{Period: "week"})
	require.NoError(t, err)
	assertDec(t, dec(1000), first.TotalRevenue)

	// Written behind the service's back: the cached answer is still served.
	b := order("b", "Douala", 500, now.Add(-time.Hour))
	require.NoError(t, bs.Order().AddOrder(ctx, &b))
	cached, err := s.Statistics(ctx, Query{Period: "week"})
	require.NoError(t, err)
	assertDec(t, dec(1000), cached.TotalRevenue)

	s.Invalidate(ctx)
	fresh, err := s.Statistics(ctx, Query{Period: "week"})
	require.NoError(t, err)
	assertDec(t, dec(1500), fresh.TotalRevenue)
}

func TestRelativePeriodsNotCachedWithoutResolution(t *testing.T) {
	ctx := context.Background()
	s, bs, now := newTestService(t, &Config{}, true)

	a := order("a", "Douala", 1000, now.Add(-time.Hour))
	require.NoError(t, bs.Order().AddOrder(ctx, &a))
	_, err := s.Statistics(ctx, Query{Period: "day"})
	require.NoError(t, err)

	b := order("b", "Douala", 500, now.Add(-time.Hour))
	require.NoError(t, bs.Order().AddOrder(ctx, &b))
	st, err := s.Statistics(ctx, Query{Period: "day"})
	require.NoError(t, err)
	assertDec(t, dec(1500), st.TotalRevenue)
}

func TestRelativeWindowEndsAtNowWhenCached(t *testing.T) {
	ctx := context.Background()
	s, bs, now := newTestService(t, &Config{CacheResolution: time.Hour}, true)

	a := order("a", "Douala", 1000, now.Add(-10*time.Minute))
	require.NoError(t, bs.Order().AddOrder(ctx, &a))
	s.Invalidate(ctx)

	st, err := s.Statistics(ctx, Query{Period: "day"})
	require.NoError(t, err)
	assert.True(t, st.Range.Contains(now), "range %s..%s", st.Range.From, st.Range.To)
	assert.Equal(t, 1, st.TotalOrders)
	assertDec(t, dec(1000), st.TotalRevenue)

	// Same hour: the cached answer is reused.
	b := order("b", "Douala", 500, now.Add(5*time.Minute))
	require.NoError(t, bs.Order().AddOrder(ctx, &b))
	later := now.Add(10 * time.Minute)
	s.SetClock(func() time.Time { return later })
	st, err = s.Statistics(ctx, Query{Period: "day"})
	require.NoError(t, err)
	assert.Equal(t, 1, st.TotalOrders)

	s.Invalidate(ctx)
	st, err = s.Statistics(ctx, Query{Period: "day"})
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalOrders)
	assert.True(t, st.Range.Contains(later))
}

func TestPlatformAndChannels(t *testing.T) {
	ctx := context.Background()
	s, bs, now := newTestService(t, &Config{}, false)

	online := order("a", "Buea", 1000, now.AddDate(-1, 0, 0))
	shop := order("b", "Douala", 400, now)
	shop.IsInStoreSale = true
	shop.PaymentMethod = "Cash"
	shop.Items[0].Quantity = 3
	for _, o := range []entity.Order{online, shop} {
		o := o
		require.NoError(t, bs.Order().AddOrder(ctx, &o))
	}
	for i, stock := range []int{5, 0, -2} {
		require.NoError(t, bs.Products().AddProduct(ctx, &entity.Product{
			Id:        fmt.Sprintf("p%d", i),
			Name:      "Cap",
			Stock:     stock,
			CreatedAt: now,
		}))
	}

	ps, err := s.Platform(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, ps.TotalOrders)
	assert.Equal(t, 4, ps.ItemsSold)
	assertDec(t, dec(1400), ps.Revenue)
	assert.Equal(t, 3, ps.TotalProducts)
	assert.Equal(t, 5, ps.TotalInStock)

	ch, err := s.Channels(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ch.InStore.Count)
	assertDec(t, dec(400), ch.InStore.Revenue)
	assert.Equal(t, 1, ch.Online.Count)
	assert.Equal(t, map[string]int{"cash": 1}, ch.PaymentMethods)
}

func TestPOSStatistics(t *testing.T) {
	ctx := context.Background()
	s, bs, now := newTestService(t, &Config{}, false)

	rs := []entity.Receipt{
		{Id: "1", Items: []entity.ReceiptItem{
			{Name: "Cap", Price: decimal.NewFromInt(1000), Quantity: 2},
			{Name: "Belt", Price: decimal.NewFromInt(500), Quantity: 1},
		}, Totals: entity.ReceiptTotals{Total: dec(2500)}, Timestamp: now.UnixMilli()},
		{Id: "2", Items: []entity.ReceiptItem{
			{Name: "Belt", Price: decimal.NewFromInt(500), Quantity: 4},
		}, Totals: entity.ReceiptTotals{Total: dec(2000)}, Timestamp: now.AddDate(0, 0, -1).UnixMilli()},
	}
	for i := range rs {
		require.NoError(t, bs.Receipt().SaveReceipt(ctx, &rs[i]))
	}

	ps, err := s.POS(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, ps.TotalReceipts)
	assertDec(t, dec(4500), ps.TotalSales)
	assertDec(t, dec(2250), ps.AverageSale)
	assert.Equal(t, 7, ps.ItemsSold)
	require.Len(t, ps.TopItems, 2)
	assert.Equal(t, "Belt", ps.TopItems[0].Name)
	assertDec(t, dec(2500), ps.TopItems[0].Revenue)
	require.Len(t, ps.DailySales, 2)
	assert.Equal(t, "2024-03-12", ps.DailySales[0].Date)
	assert.Equal(t, "2024-03-13", ps.DailySales[1].Date)
}

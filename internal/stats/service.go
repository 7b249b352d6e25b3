package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/myshop/myshop-manager/internal/dependency"
	"github.com/myshop/myshop-manager/internal/entity"
	gerr "github.com/myshop/myshop-manager/internal/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Timezone string `mapstructure:"timezone"`
	// CacheTTL bounds how long a cached answer lives.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	// CacheResolution is the step relative periods are cached at: answers
	// computed within one step share a cache entry. The window itself always
	// ends at the real now. Zero disables caching of relative periods.
	CacheResolution time.Duration `mapstructure:"cache_resolution"`
}

const (
	defaultTimezone = "Africa/Douala"
	defaultCacheTTL = 10 * time.Minute
	posTopItems     = 10
	dateLayout      = "2006-01-02"
)

// Query selects the statistics to compute. An empty Value means the current
// period up to now.
type Query struct {
	Period string
	Value  string
	Region string
}

// Service computes statistics over the record store.
type Service struct {
	c     *Config
	rep   dependency.Repository
	cache dependency.StatsCache
	loc   *time.Location
	now   func() time.Time
}

// New creates a statistics service. cache may be nil.
func New(c *Config, rep dependency.Repository, cache dependency.StatsCache) (*Service, error) {
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = defaultCacheTTL
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("can't load timezone %q: %w", c.Timezone, err)
	}
	return &Service{
		c:     c,
		rep:   rep,
		cache: cache,
		loc:   loc,
		now:   time.Now,
	}, nil
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Location returns the location periods are resolved in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Statistics resolves q and aggregates the matching orders and receipts.
func (s *Service) Statistics(ctx context.Context, q Query) (*entity.Statistics, error) {
	kind, err := ParseKind(q.Period)
	if err != nil {
		return nil, err
	}

	relative := strings.TrimSpace(q.Value) == ""
	now := s.now().In(s.loc)
	cacheable := s.cache != nil && (!relative || s.c.CacheResolution > 0)

	p, err := Resolve(kind, q.Value, now)
	if err != nil {
		return nil, err
	}

	ss, err := s.rep.Settings().GetShippingSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't get shipping settings: %w", err)
	}
	region, err := resolveRegion(ss, q.Region)
	if err != nil {
		return nil, err
	}

	key := ""
	if cacheable {
		// Relative windows end at now; answers computed within the same
		// resolution step share a key.
		end := p.Range.To
		if relative {
			end = now.Truncate(s.c.CacheResolution)
		}
		key, err = s.cacheKey(ctx, p, region, end)
		if err != nil {
			slog.Default().ErrorContext(ctx, "can't get statistics cache version",
				slog.String("err", err.Error()),
			)
		} else if st, ok := s.cached(ctx, key); ok {
			return st, nil
		}
	}

	cur, prev, err := s.load(ctx, p)
	if err != nil {
		return nil, err
	}
	st := Aggregate(p, cur, prev, Filter{Region: region, MainTown: ss.MainShopTown, Towns: ss.Towns()})

	if key != "" {
		s.store(ctx, key, st)
	}
	return st, nil
}

func resolveRegion(ss *entity.ShippingSettings, region string) (string, error) {
	region = strings.TrimSpace(region)
	if region == "" || strings.EqualFold(region, AllRegions) {
		return AllRegions, nil
	}
	if town, ok := ss.LookupTown(region); ok {
		return town, nil
	}
	return "", gerr.Validation("region", "unknown region %q", region)
}

// load fetches the current and previous windows concurrently.
func (s *Service) load(ctx context.Context, p Period) (Snapshot, Snapshot, error) {
	var cur, prev Snapshot
	records := s.rep.Records()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cur.Orders, err = records.ListOrders(ctx, p.Range)
		return err
	})
	g.Go(func() (err error) {
		cur.Receipts, err = records.ListReceipts(ctx, p.Range)
		return err
	})
	g.Go(func() (err error) {
		prev.Orders, err = records.ListOrders(ctx, p.Compare)
		return err
	})
	g.Go(func() (err error) {
		prev.Receipts, err = records.ListReceipts(ctx, p.Compare)
		return err
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, Snapshot{}, fmt.Errorf("can't load records: %w", err)
	}
	return cur, prev, nil
}

func (s *Service) cacheKey(ctx context.Context, p Period, region string, end time.Time) (string, error) {
	v, err := s.cache.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("stats:v%d:%s:%s:%s:%d:%d",
		v, p.Kind, p.Label, strings.ToLower(region), p.Range.From.UnixNano(), end.UnixNano()), nil
}

func (s *Service) cached(ctx context.Context, key string) (*entity.Statistics, bool) {
	b, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		slog.Default().ErrorContext(ctx, "can't get cached statistics",
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	st := &entity.Statistics{}
	if err := json.Unmarshal(b, st); err != nil {
		slog.Default().ErrorContext(ctx, "can't decode cached statistics",
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
		return nil, false
	}
	return st, true
}

func (s *Service) store(ctx context.Context, key string, st *entity.Statistics) {
	b, err := json.Marshal(st)
	if err != nil {
		slog.Default().ErrorContext(ctx, "can't encode statistics", slog.String("err", err.Error()))
		return
	}
	if err := s.cache.Set(ctx, key, b, s.c.CacheTTL); err != nil {
		slog.Default().ErrorContext(ctx, "can't cache statistics",
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
	}
}

// Invalidate drops every cached answer. It is called after each mutation of
// orders, receipts or shipping settings.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		slog.Default().ErrorContext(ctx, "can't invalidate statistics cache",
			slog.String("err", err.Error()),
		)
	}
}

// Platform returns the all-time order totals and catalogue counters shown on
// the storefront.
func (s *Service) Platform(ctx context.Context) (*entity.PlatformStats, error) {
	orders, err := s.rep.Records().ListOrders(ctx, entity.AllTime())
	if err != nil {
		return nil, fmt.Errorf("can't list orders: %w", err)
	}
	products, err := s.rep.Products().ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't list products: %w", err)
	}
	t := sum(Snapshot{Orders: orders})
	inv := entity.CountInventory(products)
	return &entity.PlatformStats{
		TotalOrders:   t.orders,
		ItemsSold:     t.items,
		Revenue:       t.revenue,
		TotalProducts: inv.Products,
		TotalInStock:  inv.InStock,
	}, nil
}

// POS summarises every saved receipt.
func (s *Service) POS(ctx context.Context) (*entity.POSStatistics, error) {
	receipts, err := s.rep.Records().ListReceipts(ctx, entity.AllTime())
	if err != nil {
		return nil, fmt.Errorf("can't list receipts: %w", err)
	}
	t := sum(Snapshot{Receipts: receipts})

	items := map[string]*entity.ItemSales{}
	days := map[string]*entity.DailySales{}
	for i := range receipts {
		r := &receipts[i]
		for _, it := range r.Items {
			is, ok := items[it.Name]
			if !ok {
				is = &entity.ItemSales{Name: it.Name}
				items[it.Name] = is
			}
			is.Quantity += it.Quantity
			is.Revenue = is.Revenue.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		date := r.Time().In(s.loc).Format(dateLayout)
		d, ok := days[date]
		if !ok {
			d = &entity.DailySales{Date: date}
			days[date] = d
		}
		d.Receipts++
		d.Revenue = d.Revenue.Add(r.Totals.Total)
	}

	top := make([]entity.ItemSales, 0, len(items))
	for _, is := range items {
		top = append(top, *is)
	}
	slices.SortFunc(top, func(a, b entity.ItemSales) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	if len(top) > posTopItems {
		top = top[:posTopItems]
	}

	daily := make([]entity.DailySales, 0, len(days))
	for _, d := range days {
		daily = append(daily, *d)
	}
	slices.SortFunc(daily, func(a, b entity.DailySales) int {
		return strings.Compare(a.Date, b.Date)
	})

	return &entity.POSStatistics{
		TotalSales:    t.revenue,
		TotalReceipts: t.orders,
		AverageSale:   t.average(),
		ItemsSold:     t.items,
		TopItems:      top,
		DailySales:    daily,
	}, nil
}

// Channels splits all orders into in-store and online sales.
func (s *Service) Channels(ctx context.Context) (*entity.SalesChannels, error) {
	orders, err := s.rep.Records().ListOrders(ctx, entity.AllTime())
	if err != nil {
		return nil, fmt.Errorf("can't list orders: %w", err)
	}
	sc := &entity.SalesChannels{PaymentMethods: map[string]int{}}
	for i := range orders {
		o := &orders[i]
		ch := &sc.Online
		if o.IsInStoreSale {
			ch = &sc.InStore
			if o.PaymentMethod != "" {
				sc.PaymentMethods[strings.ToLower(o.PaymentMethod)]++
			}
		}
		ch.Count++
		ch.Revenue = ch.Revenue.Add(o.Totals.Total)
	}
	return sc, nil
}

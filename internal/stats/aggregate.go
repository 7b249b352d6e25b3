package stats

import (
	"strings"
	"time"

	"github.com/myshop/myshop-manager/internal/entity"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

const (
	// AllRegions disables the region filter.
	AllRegions = "all"

	unknownBuyer = "Unknown"

	salesByRegionLimit = 8
	recentOrdersLimit  = 10
)

var hundred = decimal.NewFromInt(100)

// Snapshot is a read-only copy of the records loaded for one window.
type Snapshot struct {
	Orders   []entity.Order
	Receipts []entity.Receipt
}

// Filter restricts aggregation to one region. Receipts have no region and
// belong to MainTown. Towns holds the configured spellings used to merge
// regions that differ only in case.
type Filter struct {
	Region   string
	MainTown string
	Towns    []string
}

func (f Filter) all() bool {
	return f.Region == "" || strings.EqualFold(f.Region, AllRegions)
}

func (f Filter) receiptTown() string {
	if f.MainTown == "" {
		return entity.UnknownRegion
	}
	return f.MainTown
}

func (f Filter) keepOrder(o *entity.Order) bool {
	return f.all() || strings.EqualFold(o.RegionOrUnknown(), f.Region)
}

func (f Filter) keepReceipts() bool {
	return f.all() || strings.EqualFold(f.receiptTown(), f.Region)
}

// apply narrows s to the records inside tr that pass the filter.
func (f Filter) apply(s Snapshot, tr entity.TimeRange) Snapshot {
	out := Snapshot{
		Orders:   make([]entity.Order, 0, len(s.Orders)),
		Receipts: make([]entity.Receipt, 0, len(s.Receipts)),
	}
	for i := range s.Orders {
		if tr.Contains(s.Orders[i].CreatedAt) && f.keepOrder(&s.Orders[i]) {
			out.Orders = append(out.Orders, s.Orders[i])
		}
	}
	if f.keepReceipts() {
		for i := range s.Receipts {
			if tr.Contains(s.Receipts[i].Time()) {
				out.Receipts = append(out.Receipts, s.Receipts[i])
			}
		}
	}
	return out
}

type totals struct {
	revenue decimal.Decimal
	orders  int
	items   int
}

func (t *totals) addOrder(o *entity.Order) {
	t.revenue = t.revenue.Add(o.Totals.Total)
	t.orders++
	t.items += o.ItemsCount()
}

func (t *totals) addReceipt(r *entity.Receipt) {
	t.revenue = t.revenue.Add(r.Totals.Total)
	t.orders++
	t.items += r.ItemsCount()
}

func (t totals) average() decimal.Decimal {
	if t.orders == 0 {
		return decimal.Zero
	}
	return t.revenue.Div(decimal.NewFromInt(int64(t.orders))).Round(2)
}

func sum(s Snapshot) totals {
	var t totals
	for i := range s.Orders {
		t.addOrder(&s.Orders[i])
	}
	for i := range s.Receipts {
		t.addReceipt(&s.Receipts[i])
	}
	return t
}

// trend is the percentage change from prev to cur, 0 when prev is 0.
func trend(cur, prev decimal.Decimal) decimal.Decimal {
	if prev.IsZero() {
		return decimal.Zero
	}
	return cur.Sub(prev).Div(prev).Mul(hundred).Round(2)
}

func percentage(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}

// Aggregate computes the statistics of p from cur, comparing against prev.
// cur and prev may hold records outside p's windows; they are filtered here.
func Aggregate(p Period, cur, prev Snapshot, f Filter) *entity.Statistics {
	cur = f.apply(cur, p.Range)
	prev = f.apply(prev, p.Compare)

	now, before := sum(cur), sum(prev)
	region := AllRegions
	if !f.all() {
		region = f.Region
	}

	st := &entity.Statistics{
		Period:       p.Kind,
		Label:        p.Label,
		Region:       region,
		Range:        p.Range,
		CompareRange: p.Compare,

		TotalRevenue:      now.revenue,
		TotalOrders:       now.orders,
		TotalItemsSold:    now.items,
		AverageOrderValue: now.average(),

		RevenueTrend: trend(now.revenue, before.revenue),
		OrdersTrend:  trend(decimal.NewFromInt(int64(now.orders)), decimal.NewFromInt(int64(before.orders))),
		ItemsTrend:   trend(decimal.NewFromInt(int64(now.items)), decimal.NewFromInt(int64(before.items))),
		AvgTrend:     trend(now.average(), before.average()),
	}

	st.Buckets = fillBuckets(p.Buckets, cur)
	st.SalesByDay = make([]entity.LabelValue, 0, len(st.Buckets))
	for _, b := range st.Buckets {
		st.SalesByDay = append(st.SalesByDay, entity.LabelValue{Label: b.Label, Value: b.Revenue})
	}
	if len(p.Weeks) > 0 {
		st.Weeks = fillWeeks(p.Weeks, cur)
	}

	st.TownBreakdown = townBreakdown(cur, f, now.revenue)
	st.SalesByRegion = make([]entity.LabelValue, 0, salesByRegionLimit)
	for i, t := range st.TownBreakdown {
		if i == salesByRegionLimit {
			break
		}
		st.SalesByRegion = append(st.SalesByRegion, entity.LabelValue{Label: t.Name, Value: t.Revenue})
	}
	if len(st.TownBreakdown) > 0 {
		st.TopRegion = &entity.TopRegion{Name: st.TownBreakdown[0].Name, Revenue: st.TownBreakdown[0].Revenue}
	}

	st.TopProduct = topProduct(cur.Orders)
	st.RecentOrders = recentOrders(cur.Orders)
	st.ActiveUsers = activeUsers(cur.Orders)
	if st.ActiveUsers > 0 {
		st.ConversionRate = percentage(decimal.NewFromInt(int64(len(cur.Orders))), decimal.NewFromInt(int64(st.ActiveUsers)))
	}
	return st
}

// bucketIndex returns the index of the range holding t, or -1.
func bucketIndex(ranges []entity.TimeRange, t time.Time) int {
	for i, r := range ranges {
		if r.Contains(t) {
			return i
		}
	}
	return -1
}

func fillBuckets(tmpl []entity.Bucket, s Snapshot) []entity.Bucket {
	buckets := make([]entity.Bucket, len(tmpl))
	ranges := make([]entity.TimeRange, len(tmpl))
	sums := make([]totals, len(tmpl))
	for i, b := range tmpl {
		ranges[i] = b.Range
	}
	distribute(s, ranges, sums)
	for i, b := range tmpl {
		buckets[i] = entity.Bucket{
			Label:   b.Label,
			Range:   b.Range,
			Revenue: sums[i].revenue,
			Orders:  sums[i].orders,
			Items:   sums[i].items,
		}
	}
	return buckets
}

func fillWeeks(tmpl []entity.WeekBreakdown, s Snapshot) []entity.WeekBreakdown {
	weeks := make([]entity.WeekBreakdown, len(tmpl))
	ranges := make([]entity.TimeRange, len(tmpl))
	sums := make([]totals, len(tmpl))
	for i, w := range tmpl {
		ranges[i] = w.Range
	}
	distribute(s, ranges, sums)
	for i, w := range tmpl {
		w.Revenue = sums[i].revenue
		w.Orders = sums[i].orders
		w.Items = sums[i].items
		weeks[i] = w
	}
	return weeks
}

func distribute(s Snapshot, ranges []entity.TimeRange, sums []totals) {
	for i := range s.Orders {
		if j := bucketIndex(ranges, s.Orders[i].CreatedAt); j >= 0 {
			sums[j].addOrder(&s.Orders[i])
		}
	}
	for i := range s.Receipts {
		if j := bucketIndex(ranges, s.Receipts[i].Time()); j >= 0 {
			sums[j].addReceipt(&s.Receipts[i])
		}
	}
}

// townBreakdown groups revenue by order region, adding receipts to the
// receipt town, sorted by revenue then name. Regions are matched without
// regard to case; a configured town spelling wins over the first one seen.
func townBreakdown(s Snapshot, f Filter, total decimal.Decimal) []entity.TownMetric {
	canonical := make(map[string]string, len(f.Towns))
	for _, t := range f.Towns {
		canonical[strings.ToLower(t)] = t
	}
	byTown := map[string]*totals{}
	get := func(town string) *totals {
		key := strings.ToLower(strings.TrimSpace(town))
		name, ok := canonical[key]
		if !ok {
			name = strings.TrimSpace(town)
			canonical[key] = name
		}
		t, ok := byTown[name]
		if !ok {
			t = &totals{}
			byTown[name] = t
		}
		return t
	}
	for i := range s.Orders {
		get(s.Orders[i].RegionOrUnknown()).addOrder(&s.Orders[i])
	}
	for i := range s.Receipts {
		get(f.receiptTown()).addReceipt(&s.Receipts[i])
	}

	out := make([]entity.TownMetric, 0, len(byTown))
	for name, t := range byTown {
		out = append(out, entity.TownMetric{
			Name:       name,
			Revenue:    t.revenue,
			Orders:     t.orders,
			Items:      t.items,
			Percentage: percentage(t.revenue, total),
		})
	}
	slices.SortFunc(out, func(a, b entity.TownMetric) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

func topProduct(orders []entity.Order) *entity.TopProduct {
	qty := map[string]int{}
	for i := range orders {
		for _, it := range orders[i].Items {
			if it.Quantity > 0 {
				qty[it.Name] += it.Quantity
			}
		}
	}
	var top *entity.TopProduct
	for name, q := range qty {
		if top == nil || q > top.Quantity || (q == top.Quantity && name < top.Name) {
			top = &entity.TopProduct{Name: name, Quantity: q}
		}
	}
	return top
}

func recentOrders(orders []entity.Order) []entity.RecentOrder {
	sorted := slices.Clone(orders)
	slices.SortStableFunc(sorted, func(a, b entity.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(sorted) > recentOrdersLimit {
		sorted = sorted[:recentOrdersLimit]
	}
	out := make([]entity.RecentOrder, 0, len(sorted))
	for _, o := range sorted {
		name := o.Buyer.Name
		if name == "" {
			name = unknownBuyer
		}
		out = append(out, entity.RecentOrder{
			Id:        o.Id,
			BuyerName: name,
			Region:    o.RegionOrUnknown(),
			Total:     o.Totals.Total,
			Items:     len(o.Items),
			Date:      o.CreatedAt,
		})
	}
	return out
}

// activeUsers counts distinct buyers by email, falling back to phone.
func activeUsers(orders []entity.Order) int {
	seen := map[string]struct{}{}
	for i := range orders {
		if id := orders[i].Buyer.Identity(); id != "" {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}

package dto

import (
	"time"

	"github.com/myshop/myshop-manager/internal/entity"
)

type LabelValue struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type Bucket struct {
	Label   string    `json:"label"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
	Revenue float64   `json:"revenue"`
	Orders  int       `json:"orders"`
	Items   int       `json:"items"`
}

type TownMetric struct {
	Name       string  `json:"name"`
	Revenue    float64 `json:"revenue"`
	Orders     int     `json:"orders"`
	Items      int     `json:"items"`
	Percentage float64 `json:"percentage"`
}

type TopRegion struct {
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
}

type TopProduct struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type RecentOrder struct {
	Id        string    `json:"id"`
	BuyerName string    `json:"buyerName"`
	Region    string    `json:"region"`
	Total     float64   `json:"total"`
	Items     int       `json:"items"`
	Date      time.Time `json:"date"`
}

type WeekBreakdown struct {
	WeekNumber int       `json:"weekNumber"`
	Label      string    `json:"label"`
	StartDay   int       `json:"startDay"`
	EndDay     int       `json:"endDay"`
	StartDate  time.Time `json:"startDate"`
	EndDate    time.Time `json:"endDate"`
	Revenue    float64   `json:"revenue"`
	Orders     int       `json:"orders"`
	Items      int       `json:"items"`
}

// Statistics is the dashboard statistics payload.
type Statistics struct {
	Period       entity.PeriodKind `json:"period"`
	Label        string            `json:"label,omitempty"`
	Region       string            `json:"region"`
	Range        TimeRange         `json:"range"`
	CompareRange TimeRange         `json:"compareRange"`

	TotalRevenue      float64 `json:"totalRevenue"`
	TotalOrders       int     `json:"totalOrders"`
	TotalItemsSold    int     `json:"totalItemsSold"`
	AverageOrderValue float64 `json:"averageOrderValue"`

	RevenueTrend float64 `json:"revenueTrend"`
	OrdersTrend  float64 `json:"ordersTrend"`
	ItemsTrend   float64 `json:"itemsTrend"`
	AvgTrend     float64 `json:"avgTrend"`

	SalesByDay    []LabelValue    `json:"salesByDay"`
	SalesByRegion []LabelValue    `json:"salesByRegion"`
	Buckets       []Bucket        `json:"buckets"`
	TownBreakdown []TownMetric    `json:"townBreakdown"`
	Weeks         []WeekBreakdown `json:"weeks,omitempty"`

	TopRegion    *TopRegion    `json:"topRegion"`
	TopProduct   *TopProduct   `json:"topProduct"`
	RecentOrders []RecentOrder `json:"recentOrders"`

	ActiveUsers    *int     `json:"activeUsers,omitempty"`
	ConversionRate *float64 `json:"conversionRate,omitempty"`
}

func labelValues(lvs []entity.LabelValue) []LabelValue {
	out := make([]LabelValue, 0, len(lvs))
	for _, lv := range lvs {
		out = append(out, LabelValue{Label: lv.Label, Value: money(lv.Value)})
	}
	return out
}

// ConvertEntityStatisticsToDto converts aggregated statistics. withPeriodExtras
// adds the week breakdown and the buyer metrics shown by the period view.
func ConvertEntityStatisticsToDto(st *entity.Statistics, withPeriodExtras bool) *Statistics {
	if st == nil {
		return nil
	}
	out := &Statistics{
		Period:            st.Period,
		Label:             st.Label,
		Region:            st.Region,
		Range:             timeRange(st.Range),
		CompareRange:      timeRange(st.CompareRange),
		TotalRevenue:      money(st.TotalRevenue),
		TotalOrders:       st.TotalOrders,
		TotalItemsSold:    st.TotalItemsSold,
		AverageOrderValue: money(st.AverageOrderValue),
		RevenueTrend:      money(st.RevenueTrend),
		OrdersTrend:       money(st.OrdersTrend),
		ItemsTrend:        money(st.ItemsTrend),
		AvgTrend:          money(st.AvgTrend),
		SalesByDay:        labelValues(st.SalesByDay),
		SalesByRegion:     labelValues(st.SalesByRegion),
		Buckets:           make([]Bucket, 0, len(st.Buckets)),
		TownBreakdown:     make([]TownMetric, 0, len(st.TownBreakdown)),
		RecentOrders:      make([]RecentOrder, 0, len(st.RecentOrders)),
	}
	for _, b := range st.Buckets {
		out.Buckets = append(out.Buckets, Bucket{
			Label:   b.Label,
			From:    b.Range.From,
			To:      b.Range.To,
			Revenue: money(b.Revenue),
			Orders:  b.Orders,
			Items:   b.Items,
		})
	}
	for _, t := range st.TownBreakdown {
		out.TownBreakdown = append(out.TownBreakdown, TownMetric{
			Name:       t.Name,
			Revenue:    money(t.Revenue),
			Orders:     t.Orders,
			Items:      t.Items,
			Percentage: money(t.Percentage),
		})
	}
	if st.TopRegion != nil {
		out.TopRegion = &TopRegion{Name: st.TopRegion.Name, Revenue: money(st.TopRegion.Revenue)}
	}
	if st.TopProduct != nil {
		out.TopProduct = &TopProduct{Name: st.TopProduct.Name, Quantity: st.TopProduct.Quantity}
	}
	for _, ro := range st.RecentOrders {
		out.RecentOrders = append(out.RecentOrders, RecentOrder{
			Id:        ro.Id,
			BuyerName: ro.BuyerName,
			Region:    ro.Region,
			Total:     money(ro.Total),
			Items:     ro.Items,
			Date:      ro.Date,
		})
	}

	if !withPeriodExtras {
		return out
	}
	for _, w := range st.Weeks {
		out.Weeks = append(out.Weeks, WeekBreakdown{
			WeekNumber: w.WeekNumber,
			Label:      w.Label,
			StartDay:   w.StartDay,
			EndDay:     w.EndDay,
			StartDate:  w.Range.From,
			EndDate:    w.Range.To,
			Revenue:    money(w.Revenue),
			Orders:     w.Orders,
			Items:      w.Items,
		})
	}
	active := st.ActiveUsers
	conv := money(st.ConversionRate)
	out.ActiveUsers = &active
	out.ConversionRate = &conv
	return out
}

type PlatformStats struct {
	TotalOrders   int     `json:"totalOrders"`
	ItemsSold     int     `json:"itemsSold"`
	Revenue       float64 `json:"revenue"`
	TotalProducts int     `json:"totalProducts"`
	TotalInStock  int     `json:"totalInStock"`
}

func ConvertEntityPlatformStatsToDto(ps *entity.PlatformStats) *PlatformStats {
	return &PlatformStats{
		TotalOrders:   ps.TotalOrders,
		ItemsSold:     ps.ItemsSold,
		Revenue:       money(ps.Revenue),
		TotalProducts: ps.TotalProducts,
		TotalInStock:  ps.TotalInStock,
	}
}

type ItemSales struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

type DailySales struct {
	Date     string  `json:"date"`
	Revenue  float64 `json:"revenue"`
	Receipts int     `json:"receipts"`
}

type POSStatistics struct {
	TotalSales    float64      `json:"totalSales"`
	TotalReceipts int          `json:"totalReceipts"`
	AverageSale   float64      `json:"averageSale"`
	ItemsSold     int          `json:"itemsSold"`
	TopItems      []ItemSales  `json:"topItems"`
	DailySales    []DailySales `json:"dailySales"`
}

func ConvertEntityPOSStatisticsToDto(ps *entity.POSStatistics) *POSStatistics {
	out := &POSStatistics{
		TotalSales:    money(ps.TotalSales),
		TotalReceipts: ps.TotalReceipts,
		AverageSale:   money(ps.AverageSale),
		ItemsSold:     ps.ItemsSold,
		TopItems:      make([]ItemSales, 0, len(ps.TopItems)),
		DailySales:    make([]DailySales, 0, len(ps.DailySales)),
	}
	for _, it := range ps.TopItems {
		out.TopItems = append(out.TopItems, ItemSales{Name: it.Name, Quantity: it.Quantity, Revenue: money(it.Revenue)})
	}
	for _, d := range ps.DailySales {
		out.DailySales = append(out.DailySales, DailySales{Date: d.Date, Revenue: money(d.Revenue), Receipts: d.Receipts})
	}
	return out
}

type ChannelTotals struct {
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

type SalesChannels struct {
	InStore        ChannelTotals  `json:"inStore"`
	Online         ChannelTotals  `json:"online"`
	PaymentMethods map[string]int `json:"paymentMethods"`
}

func ConvertEntitySalesChannelsToDto(sc *entity.SalesChannels) *SalesChannels {
	return &SalesChannels{
		InStore:        ChannelTotals{Count: sc.InStore.Count, Revenue: money(sc.InStore.Revenue)},
		Online:         ChannelTotals{Count: sc.Online.Count, Revenue: money(sc.Online.Revenue)},
		PaymentMethods: sc.PaymentMethods,
	}
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeRange is the half-open interval [From, To).
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (tr TimeRange) Contains(t time.Time) bool {
	return !t.Before(tr.From) && t.Before(tr.To)
}

// AllTime covers every record a store can hold.
func AllTime() TimeRange {
	return TimeRange{
		From: time.Unix(0, 0),
		To:   time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

type PeriodKind string

const (
	PeriodDay   PeriodKind = "day"
	PeriodWeek  PeriodKind = "week"
	PeriodMonth PeriodKind = "month"
	PeriodYear  PeriodKind = "year"
)

// Bucket is one sub-period of a statistics range: an hour of a day, a day of
// a week, a week of a month or a month of a year.
type Bucket struct {
	Label   string          `json:"label"`
	Range   TimeRange       `json:"range"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
	Items   int             `json:"items"`
}

// WeekBreakdown is one of the four weeks a labelled month is split into.
// The fourth week ends on the last day of the month.
type WeekBreakdown struct {
	WeekNumber int             `json:"weekNumber"`
	Label      string          `json:"label"`
	StartDay   int             `json:"startDay"`
	EndDay     int             `json:"endDay"`
	Range      TimeRange       `json:"range"`
	Revenue    decimal.Decimal `json:"revenue"`
	Orders     int             `json:"orders"`
	Items      int             `json:"items"`
}

type LabelValue struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

type TownMetric struct {
	Name       string          `json:"name"`
	Revenue    decimal.Decimal `json:"revenue"`
	Orders     int             `json:"orders"`
	Items      int             `json:"items"`
	Percentage decimal.Decimal `json:"percentage"`
}

type TopRegion struct {
	Name    string          `json:"name"`
	Revenue decimal.Decimal `json:"revenue"`
}

type TopProduct struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type RecentOrder struct {
	Id        string          `json:"id"`
	BuyerName string          `json:"buyerName"`
	Region    string          `json:"region"`
	Total     decimal.Decimal `json:"total"`
	Items     int             `json:"items"`
	Date      time.Time       `json:"date"`
}

// Statistics is the aggregated view of orders and receipts over a period.
type Statistics struct {
	Period       PeriodKind `json:"period"`
	Label        string     `json:"label,omitempty"`
	Region       string     `json:"region"`
	Range        TimeRange  `json:"range"`
	CompareRange TimeRange  `json:"compareRange"`

	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalOrders       int             `json:"totalOrders"`
	TotalItemsSold    int             `json:"totalItemsSold"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`

	RevenueTrend decimal.Decimal `json:"revenueTrend"`
	OrdersTrend  decimal.Decimal `json:"ordersTrend"`
	ItemsTrend   decimal.Decimal `json:"itemsTrend"`
	AvgTrend     decimal.Decimal `json:"avgTrend"`

	Buckets       []Bucket        `json:"buckets"`
	SalesByDay    []LabelValue    `json:"salesByDay"`
	SalesByRegion []LabelValue    `json:"salesByRegion"`
	TownBreakdown []TownMetric    `json:"townBreakdown"`
	Weeks         []WeekBreakdown `json:"weeks,omitempty"`

	TopRegion    *TopRegion    `json:"topRegion"`
	TopProduct   *TopProduct   `json:"topProduct"`
	RecentOrders []RecentOrder `json:"recentOrders"`

	ActiveUsers    int             `json:"activeUsers"`
	ConversionRate decimal.Decimal `json:"conversionRate"`
}

// PlatformStats are the all-time totals shown on the storefront.
type PlatformStats struct {
	TotalOrders int             `json:"totalOrders"`
	ItemsSold   int             `json:"itemsSold"`
	Revenue     decimal.Decimal `json:"revenue"`
	// catalogue counters
	TotalProducts int `json:"totalProducts"`
	TotalInStock  int `json:"totalInStock"`
}

type ItemSales struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type DailySales struct {
	Date     string          `json:"date"`
	Revenue  decimal.Decimal `json:"revenue"`
	Receipts int             `json:"receipts"`
}

// POSStatistics summarises every saved receipt.
type POSStatistics struct {
	TotalSales    decimal.Decimal `json:"totalSales"`
	TotalReceipts int             `json:"totalReceipts"`
	AverageSale   decimal.Decimal `json:"averageSale"`
	ItemsSold     int             `json:"itemsSold"`
	TopItems      []ItemSales     `json:"topItems"`
	DailySales    []DailySales    `json:"dailySales"`
}

type ChannelTotals struct {
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// SalesChannels splits orders into in-store and online sales.
type SalesChannels struct {
	InStore        ChannelTotals  `json:"inStore"`
	Online         ChannelTotals  `json:"online"`
	PaymentMethods map[string]int `json:"paymentMethods"`
}

package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/myshop/myshop-manager/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New("My Shop", language.English, time.UTC)
	require.NoError(t, err)
	return r
}

func TestMoneyAndPercent(t *testing.T) {
	r := newTestRenderer(t)
	assert.Equal(t, "1,234,568 XAF", r.Money(decimal.RequireFromString("1234567.6")))
	assert.Equal(t, "0 XAF", r.Money(decimal.Zero))
	assert.Equal(t, "66.7%", r.Percent(decimal.RequireFromString("66.67")))
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 3, 13, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, "Analytics-month-2024-03-13.html", Filename(entity.PeriodMonth, now))
}

func TestHTML(t *testing.T) {
	r := newTestRenderer(t)
	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	st := &entity.Statistics{
		Period:       entity.PeriodMonth,
		Label:        "February",
		Region:       "all",
		Range:        entity.TimeRange{From: from, To: from.AddDate(0, 1, 0)},
		TotalRevenue: decimal.NewFromInt(40000),
		TotalOrders:  3,
		RevenueTrend: decimal.RequireFromString("12.5"),
		Buckets:      []entity.Bucket{{Label: "Week 1", Revenue: decimal.NewFromInt(40000), Orders: 3}},
		Weeks:        []entity.WeekBreakdown{{WeekNumber: 1, Label: "Week 1 (1-7)"}},
		TownBreakdown: []entity.TownMetric{
			{Name: "Yaoundé", Revenue: decimal.NewFromInt(30000), Orders: 2, Percentage: decimal.NewFromInt(75)},
			{Name: "<script>", Revenue: decimal.NewFromInt(10000), Orders: 1, Percentage: decimal.NewFromInt(25)},
		},
		TopProduct: &entity.TopProduct{Name: "Cap", Quantity: 4},
	}

	var buf bytes.Buffer
	require.NoError(t, r.HTML(&buf, st, from.AddDate(0, 1, 2)))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "Monthly Analytics Report")
	assert.Contains(t, out, "February - My Shop")
	assert.Contains(t, out, "40,000 XAF")
	assert.Contains(t, out, "12.5%")
	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "Yaoundé")
	assert.Contains(t, out, "Week 1 (1-7)")
	assert.Contains(t, out, "Cap")
	assert.NotContains(t, out, "<script>")
}

func TestReceiptPDF(t *testing.T) {
	r := newTestRenderer(t)
	rc := &entity.Receipt{
		Id:       "R-1",
		Customer: entity.ReceiptCustomer{Name: "Ngono", Phone: "677000000"},
		Items: []entity.ReceiptItem{
			{Name: "Chaussures en cuir très élégantes", Price: decimal.NewFromInt(15000), Quantity: 1},
			{Name: "Belt", Price: decimal.NewFromInt(500), Quantity: 2},
		},
		Totals:        entity.ReceiptTotals{Discount: decimal.NewFromInt(1000), Total: decimal.NewFromInt(15000)},
		PaymentMethod: "cash",
		Timestamp:     time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC).UnixMilli(),
	}

	var buf bytes.Buffer
	require.NoError(t, r.ReceiptPDF(&buf, rc))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Belt", truncate("Belt", 5))
	assert.Equal(t, "élég.", truncate("élégance", 5))
}

package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/myshop/myshop-manager/internal/entity"
	gerr "github.com/myshop/myshop-manager/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatisticsNumbersAreJSONNumbers(t *testing.T) {
	st := &entity.Statistics{
		Period:       entity.PeriodDay,
		Region:       "all",
		TotalRevenue: decimal.RequireFromString("1234.5"),
		RevenueTrend: decimal.RequireFromString("-12.34"),
		TopRegion:    &entity.TopRegion{Name: "Douala", Revenue: decimal.NewFromInt(1000)},
		Weeks:        []entity.WeekBreakdown{{WeekNumber: 1, Label: "Week 1 (1-7)"}},
		ActiveUsers:  3,
	}

	b, err := json.Marshal(ConvertEntityStatisticsToDto(st, false))
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, 1234.5, m["totalRevenue"])
	assert.Equal(t, -12.34, m["revenueTrend"])
	assert.Nil(t, m["topProduct"])
	assert.NotContains(t, m, "weeks")
	assert.NotContains(t, m, "activeUsers")
	assert.Equal(t, []any{}, m["recentOrders"])

	b, err = json.Marshal(ConvertEntityStatisticsToDto(st, true))
	require.NoError(t, err)
	m = nil
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Len(t, m["weeks"], 1)
	assert.Equal(t, float64(3), m["activeUsers"])
	assert.Equal(t, float64(0), m["conversionRate"])
}

func TestConvertOrderNewToEntity(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	var on OrderNew
	require.NoError(t, json.Unmarshal([]byte(`{
		"buyer": {"name": "Awa", "email": "awa@example.cm"},
		"items": [{"name": "Cap", "price": 12500, "quantity": 2}],
		"totals": {"subtotal": 25000, "total": "27000"}
	}`), &on))

	o, err := ConvertOrderNewToEntity(&on, "id-1", now)
	require.NoError(t, err)
	assert.Equal(t, entity.UnknownRegion, o.Region)
	assert.Equal(t, entity.OrderStatusPending, o.Status)
	assert.Equal(t, now, o.CreatedAt)
	assert.True(t, decimal.NewFromInt(27000).Equal(o.Totals.Total))

	on.Status = "Lost"
	_, err = ConvertOrderNewToEntity(&on, "id-1", now)
	assert.ErrorIs(t, err, gerr.ErrValidation)

	on.Status = ""
	on.Items = nil
	_, err = ConvertOrderNewToEntity(&on, "id-1", now)
	assert.ErrorIs(t, err, gerr.ErrValidation)
}

func TestConvertSaveReceiptToEntity(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err := ConvertSaveReceiptToEntity(&SaveReceipt{}, now)
	assert.ErrorIs(t, err, gerr.ErrValidation)

	_, err = ConvertSaveReceiptToEntity(&SaveReceipt{Receipt: &entity.Receipt{}}, now)
	assert.ErrorIs(t, err, gerr.ErrValidation)

	r, err := ConvertSaveReceiptToEntity(&SaveReceipt{Receipt: &entity.Receipt{
		Id:        "R-1",
		Timestamp: 42,
		Items:     []entity.ReceiptItem{{Name: "Belt", Price: decimal.NewFromInt(500), Quantity: 1}},
	}}, now)
	require.NoError(t, err)
	assert.Equal(t, now.UnixMilli(), r.Timestamp)
	assert.Equal(t, now, r.SavedAt)
	assert.Equal(t, now, r.CreatedAt)
}

func TestShippingFeesUpdateValidate(t *testing.T) {
	u := ShippingFeesUpdate{ShippingFees: map[string]decimal.Decimal{"Buea": decimal.NewFromInt(-1)}}
	_, err := u.Validate()
	assert.ErrorIs(t, err, gerr.ErrValidation)

	u = ShippingFeesUpdate{ShippingFees: map[string]decimal.Decimal{" Kribi ": decimal.NewFromInt(4000)}}
	fees, err := u.Validate()
	require.NoError(t, err)
	assert.Contains(t, fees, "Kribi")
}

func TestSubAdminPermissions(t *testing.T) {
	sn := SubAdminNew{Name: "Eko", Email: "eko@myshop.cm", Password: "secret1", Permissions: map[string]bool{"fly": true}}
	assert.ErrorIs(t, sn.Validate(), gerr.ErrValidation)

	sn.Permissions = map[string]bool{string(entity.PermManagePOS): true}
	require.NoError(t, sn.Validate())

	sa := &entity.SubAdmin{Id: "1", Permissions: entity.Permissions{entity.PermManagePOS: true}}
	out := ConvertEntitySubAdminToDto(sa)
	assert.Len(t, out.Permissions, len(entity.AllPermissions))
	assert.True(t, out.Permissions[string(entity.PermManagePOS)])
	assert.False(t, out.Permissions[string(entity.PermViewStatistics)])
}

func TestProductUpdateApply(t *testing.T) {
	created := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	p, err := ConvertProductNewToEntity(&ProductNew{
		Name:             "Cap",
		Price:            decimal.NewFromInt(2500),
		AvailableRegions: []string{" Douala ", ""},
	}, "cap", created)
	require.NoError(t, err)
	assert.Equal(t, []string{"Douala"}, p.AvailableRegions)

	_, err = ConvertProductNewToEntity(&ProductNew{Name: " "}, "x", created)
	assert.ErrorIs(t, err, gerr.ErrValidation)

	later := created.Add(time.Hour)
	stock := 7
	require.NoError(t, (&ProductUpdate{Stock: &stock, AvailableRegions: []string{}}).Apply(p, later))
	assert.Equal(t, 7, p.Stock)
	assert.Equal(t, "Cap", p.Name)
	assert.Empty(t, p.AvailableRegions)
	assert.Equal(t, created, p.CreatedAt)
	assert.Equal(t, later, p.UpdatedAt)

	neg := decimal.NewFromInt(-5)
	assert.ErrorIs(t, (&ProductUpdate{Price: &neg}).Apply(p, later), gerr.ErrValidation)
}

func TestChatMessageNew(t *testing.T) {
	now := time.Now()
	m, err := ConvertChatMessageNewToEntity(&ChatMessageNew{DeviceId: " dev ", ImageUrl: "https://cdn.myshop.cm/a.png"}, now)
	require.NoError(t, err)
	assert.Equal(t, "dev", m.DeviceId)
	assert.Equal(t, "Guest", m.UserName)
	assert.Equal(t, entity.ChatSenderCustomer, m.Sender)

	_, err = ConvertChatMessageNewToEntity(&ChatMessageNew{DeviceId: "dev"}, now)
	assert.ErrorIs(t, err, gerr.ErrValidation)
	_, err = ConvertChatReplyToEntity(&ChatReply{}, "dev", now)
	assert.ErrorIs(t, err, gerr.ErrValidation)
}

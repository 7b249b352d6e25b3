package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/myshop/myshop-manager/internal/entity"
	gerr "github.com/myshop/myshop-manager/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDB connects to the database named by MYSQL_TEST_DSN and empties it.
func newTestDB(t *testing.T) *MYSQLStore {
	t.Helper()
	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MYSQL_TEST_DSN is not set")
	}
	ctx := context.Background()
	db, err := New(ctx, Config{
		DSN:         dsn,
		Automigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.db.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS = 0")
	require.NoError(t, err)
	for _, table := range []string{"order_item", "customer_order", "receipt_item", "receipt", "sub_admin", "send_email_request", "product", "chat_message", "hero_section"} {
		_, err = db.db.ExecContext(ctx, "DELETE FROM "+table)
		require.NoError(t, err)
	}
	_, err = db.db.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS = 1")
	require.NoError(t, err)

	return db
}

func testOrder(id string, total int64, at time.Time) *entity.Order {
	return &entity.Order{
		Id:     id,
		Buyer:  entity.Buyer{Name: "Buyer " + id, Email: id + "@example.com", Phone: "6" + id},
		Region: "Douala",
		Items: []entity.OrderItem{
			{Id: "p1", Name: "Shirt", Price: decimal.NewFromInt(total), Quantity: 1},
			{Id: "p2", Name: "Cap", Price: decimal.Zero, Quantity: 2},
		},
		Totals:    entity.OrderTotals{Subtotal: decimal.NewFromInt(total), Total: decimal.NewFromInt(total)},
		Status:    entity.OrderStatusPending,
		CreatedAt: at,
	}
}

func TestOrders(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, db.Order().AddOrder(ctx, testOrder("a", 1000, day.Add(time.Hour))))
	require.NoError(t, db.Order().AddOrder(ctx, testOrder("b", 2000, day.Add(25*time.Hour))))
	assert.ErrorIs(t, db.Order().AddOrder(ctx, testOrder("a", 1, day)), gerr.ErrConflict)

	o, err := db.Order().GetOrderById(ctx, "a")
	require.NoError(t, err)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "Shirt", o.Items[0].Name)
	assert.Equal(t, 3, o.ItemsCount())

	st := entity.OrderStatusDelivered
	o, err = db.Order().UpdateOrder(ctx, "a", entity.OrderUpdate{Status: &st})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDelivered, o.Status)

	inDay, err := db.Records().ListOrders(ctx, entity.TimeRange{From: day, To: day.Add(24 * time.Hour)})
	require.NoError(t, err)
	require.Len(t, inDay, 1)
	assert.Equal(t, "a", inDay[0].Id)

	found, err := db.Order().SearchOrders(ctx, "B@EXAMPLE.COM", "")
	require.NoError(t, err)
	require.Len(t, found, 1)

	require.NoError(t, db.Order().DeleteOrder(ctx, "b"))
	_, err = db.Order().GetOrderById(ctx, "b")
	assert.ErrorIs(t, err, gerr.ErrNotFound)
}

func TestReceiptsAndSettings(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, db.Receipt().SaveReceipt(ctx, &entity.Receipt{
			Id:        id,
			Items:     []entity.ReceiptItem{{Name: "Cap", Price: decimal.NewFromInt(500), Quantity: i + 1}},
			Totals:    entity.ReceiptTotals{Total: decimal.NewFromInt(int64(500 * (i + 1)))},
			CreatedAt: base,
			SavedAt:   base,
			Timestamp: base.Add(time.Duration(i) * time.Hour).UnixMilli(),
		}))
	}
	page, total, err := db.Receipt().ListReceiptsPaged(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "r3", page[0].Id)

	rs, err := db.Records().ListReceipts(ctx, entity.TimeRange{From: base, To: base.Add(time.Hour)})
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, "r1", rs[0].Id)

	s, err := db.Settings().GetShippingSettings(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, s.MainShopTown)
}

func TestProducts(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	now := time.Now().Truncate(time.Millisecond)

	p := &entity.Product{
		Id:               "cap",
		Name:             "Cap",
		Price:            decimal.RequireFromString("2500.50"),
		Stock:            3,
		AvailableRegions: []string{"Douala"},
		Images:           []entity.ProductImage{{Color: "red", URL: "https://cdn.example.com/cap.png"}},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	require.NoError(t, db.Products().AddProduct(ctx, p))
	assert.ErrorIs(t, db.Products().AddProduct(ctx, p), gerr.ErrConflict)
	require.NoError(t, db.Products().AddProduct(ctx, &entity.Product{Id: "bag", Name: "Bag", CreatedAt: now.Add(time.Second), UpdatedAt: now}))

	got, err := db.Products().GetProductById(ctx, "cap")
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(got.Price))
	assert.Equal(t, []string{"Douala"}, got.AvailableRegions)
	assert.Equal(t, p.Images, got.Images)

	got.Stock = 0
	require.NoError(t, db.Products().UpdateProduct(ctx, got))
	assert.ErrorIs(t, db.Products().UpdateProduct(ctx, &entity.Product{Id: "nope"}), gerr.ErrNotFound)

	ps, err := db.Products().ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "bag", ps[0].Id)
	assert.Equal(t, 0, ps[1].Stock)

	require.NoError(t, db.Products().DeleteProduct(ctx, "cap"))
	assert.ErrorIs(t, db.Products().DeleteProduct(ctx, "cap"), gerr.ErrNotFound)
	_, err = db.Products().GetProductById(ctx, "cap")
	assert.ErrorIs(t, err, gerr.ErrNotFound)
}

func TestChatAndHero(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	now := time.Now()

	for _, m := range []entity.ChatMessage{
		{DeviceId: "dev-1", UserName: "Awa", Sender: entity.ChatSenderCustomer, Message: "hello", CreatedAt: now},
		{DeviceId: "dev-1", UserName: "Admin", Sender: entity.ChatSenderAdmin, Message: "hi", Read: true, CreatedAt: now},
		{DeviceId: "dev-2", UserName: "Guest", Sender: entity.ChatSenderCustomer, ImageUrl: "https://cdn.example.com/x.png", CreatedAt: now},
	} {
		m := m
		require.NoError(t, db.Chat().AddChatMessage(ctx, &m))
		assert.NotZero(t, m.Id)
	}

	msgs, err := db.Chat().ListChatMessages(ctx, "dev-1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Message)
	assert.False(t, msgs[0].Read)

	require.NoError(t, db.Chat().MarkConversationRead(ctx, "dev-1"))
	all, err := db.Chat().ListAllChatMessages(ctx)
	require.NoError(t, err)
	cs := entity.GroupConversations(all)
	require.Len(t, cs, 2)
	for _, c := range cs {
		if c.DeviceId == "dev-1" {
			assert.Zero(t, c.UnreadCount)
		} else {
			assert.Equal(t, 1, c.UnreadCount)
			assert.Equal(t, "https://cdn.example.com/x.png", c.Messages[0].ImageUrl)
		}
	}

	require.NoError(t, db.Chat().DeleteConversation(ctx, "dev-1"))
	assert.ErrorIs(t, db.Chat().DeleteConversation(ctx, "dev-1"), gerr.ErrNotFound)

	h, err := db.Settings().GetHeroSection(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultHeroSection(), h)
	h.Title = "Rainy season sale"
	require.NoError(t, db.Settings().SetHeroSection(ctx, h))
	h.Badge = "New"
	require.NoError(t, db.Settings().SetHeroSection(ctx, h))
	got, err := db.Settings().GetHeroSection(ctx)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

package bunt

import (
	"context"
	"testing"
	"time"

	"github.com/myshop/myshop-manager/internal/entity"
	gerr "github.com/myshop/myshop-manager/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *BuntStore {
	t.Helper()
	bs, err := New(context.Background(), Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(bs.Close)
	return bs
}

func testOrder(id string, total int64, region string, at time.Time) *entity.Order {
	return &entity.Order{
		Id:     id,
		Buyer:  entity.Buyer{Name: "Buyer " + id, Email: id + "@example.com", Phone: "6" + id},
		Region: region,
		Items: []entity.OrderItem{
			{Id: "p1", Name: "Shirt", Price: decimal.NewFromInt(total), Quantity: 1},
		},
		Totals:    entity.OrderTotals{Subtotal: decimal.NewFromInt(total), Total: decimal.NewFromInt(total)},
		Status:    entity.OrderStatusPending,
		CreatedAt: at,
	}
}

func TestOrderCRUD(t *testing.T) {
	ctx := context.Background()
	bs := newTestStore(t)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	o := testOrder("a", 1500, "Douala", now)
	require.NoError(t, bs.Order().AddOrder(ctx, o))
	assert.ErrorIs(t, bs.Order().AddOrder(ctx, o), gerr.ErrConflict)

	got, err := bs.Order().GetOrderById(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Buyer a", got.Buyer.Name)
	assert.True(t, decimal.NewFromInt(1500).Equal(got.Totals.Total))
	assert.True(t, now.Equal(got.CreatedAt))

	st := entity.OrderStatusShipped
	agency := "Touristique Express"
	upd, err := bs.Order().UpdateOrder(ctx, "a", entity.OrderUpdate{Status: &st, DeliveryAgency: &agency})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusShipped, upd.Status)
	assert.Equal(t, agency, upd.DeliveryAgency)

	_, err = bs.Order().UpdateOrder(ctx, "missing", entity.OrderUpdate{Status: &st})
	assert.ErrorIs(t, err, gerr.ErrNotFound)

	require.NoError(t, bs.Order().DeleteOrder(ctx, "a"))
	assert.ErrorIs(t, bs.Order().DeleteOrder(ctx, "a"), gerr.ErrNotFound)
	_, err = bs.Order().GetOrderById(ctx, "a")
	assert.ErrorIs(t, err, gerr.ErrNotFound)
}

func TestSearchOrders(t *testing.T) {
	ctx := context.Background()
	bs := newTestStore(t)
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	older := testOrder("old", 100, "Douala", base)
	older.Buyer.Email = "Jane@Example.com"
	newer := testOrder("new", 200, "Douala", base.Add(time.Hour))
	newer.Buyer.Email = "jane@example.com"
	other := testOrder("other", 300, "Douala", base.Add(2*time.Hour))
	for _, o := range []*entity.Order{older, newer, other} {
		require.NoError(t, bs.Order().AddOrder(ctx, o))
	}

	found, err := bs.Order().SearchOrders(ctx, "JANE@example.com", "")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "new", found[0].Id)
	assert.Equal(t, "old", found[1].Id)

	found, err = bs.Order().SearchOrders(ctx, "", "6other")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "other", found[0].Id)

	all, err := bs.Order().ListAllOrders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "other", all[0].Id)
}

func TestRecordsInRange(t *testing.T) {
	ctx := context.Background()
	bs := newTestStore(t)
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, bs.Order().AddOrder(ctx, testOrder("before", 1, "Douala", day.Add(-time.Millisecond))))
	require.NoError(t, bs.Order().AddOrder(ctx, testOrder("start", 2, "Douala", day)))
	require.NoError(t, bs.Order().AddOrder(ctx, testOrder("inside", 3, "Douala", day.Add(5*time.Hour+300*time.Microsecond))))
	require.NoError(t, bs.Order().AddOrder(ctx, testOrder("end", 4, "Douala", day.Add(24*time.Hour))))

	for i, ts := range []time.Time{day.Add(-time.Hour), day.Add(time.Hour), day.Add(25 * time.Hour)} {
		require.NoError(t, bs.Receipt().SaveReceipt(ctx, &entity.Receipt{
			Id:        []string{"r-before", "r-inside", "r-after"}[i],
			Items:     []entity.ReceiptItem{{Name: "Cap", Price: decimal.NewFromInt(10), Quantity: 1}},
			Totals:    entity.ReceiptTotals{Total: decimal.NewFromInt(10)},
			Timestamp: ts.UnixMilli(),
		}))
	}

	tr := entity.TimeRange{From: day, To: day.Add(24 * time.Hour)}
	orders, err := bs.Records().ListOrders(ctx, tr)
	require.NoError(t, err)
	ids := []string{}
	for _, o := range orders {
		ids = append(ids, o.Id)
	}
	assert.Equal(t, []string{"start", "inside"}, ids)

	receipts, err := bs.Records().ListReceipts(ctx, tr)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, "r-inside", receipts[0].Id)
}

func TestReceipts(t *testing.T) {
	ctx := context.Background()
	bs := newTestStore(t)
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, bs.Receipt().SaveReceipt(ctx, &entity.Receipt{
			Id:        string(rune('a' + i)),
			Timestamp: base.Add(time.Duration(i) * time.Minute).UnixMilli(),
		}))
	}
	err := bs.Receipt().SaveReceipt(ctx, &entity.Receipt{Id: "a", Timestamp: base.UnixMilli()})
	assert.ErrorIs(t, err, gerr.ErrConflict)

	page, total, err := bs.Receipt().ListReceiptsPaged(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "d", page[0].Id)
	assert.Equal(t, "c", page[1].Id)

	r, err := bs.Receipt().GetReceiptById(ctx, "e")
	require.NoError(t, err)
	assert.Equal(t, base.Add(4*time.Minute).UnixMilli(), r.Timestamp)

	_, err = bs.Receipt().GetReceiptById(ctx, "zzz")
	assert.ErrorIs(t, err, gerr.ErrNotFound)
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	bs := newTestStore(t)

	s, err := bs.Settings().GetShippingSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Douala", s.MainShopTown)
	assert.True(t, decimal.NewFromInt(3000).Equal(s.ShippingFees["Yaoundé"]))
	assert.True(t, decimal.NewFromInt(50000).Equal(s.FreeShippingThreshold))

	require.NoError(t, bs.Settings().SetShippingFees(ctx, map[string]decimal.Decimal{"Kribi": decimal.NewFromInt(4000)}))
	require.NoError(t, bs.Settings().SetMainShopTown(ctx, "Kribi"))
	require.NoError(t, bs.Settings().SetFreeShipping(ctx, decimal.NewFromInt(10000), map[string]bool{"Kribi": true}))

	s, err = bs.Settings().GetShippingSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Kribi", s.MainShopTown)
	assert.Len(t, s.ShippingFees, 1)
	assert.True(t, decimal.NewFromInt(10000).Equal(s.FreeShippingThreshold))
	assert.True(t, s.RegionFreeShipping["Kribi"])
}

func TestSubAdmins(t *testing.T) {
	ctx := context.Background()
	bs := newTestStore(t)

	sa := &entity.SubAdmin{
		Id:           "sa1",
		Name:         "Cashier",
		Email:        "cashier@shop.cm",
		PasswordHash: "hash",
		Permissions:  entity.Permissions{entity.PermManagePOS: true},
	}
	require.NoError(t, bs.Admin().AddSubAdmin(ctx, sa))

	dup := *sa
	dup.Id = "sa2"
	dup.Email = "CASHIER@shop.cm"
	assert.ErrorIs(t, bs.Admin().AddSubAdmin(ctx, &dup), gerr.ErrConflict)

	got, err := bs.Admin().GetSubAdminByEmail(ctx, "Cashier@Shop.cm")
	require.NoError(t, err)
	assert.Equal(t, "sa1", got.Id)
	assert.True(t, got.Permissions.Has(entity.PermManagePOS))

	got.Name = "Head cashier"
	require.NoError(t, bs.Admin().UpdateSubAdmin(ctx, got))

	list, err := bs.Admin().ListSubAdmins(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Head cashier", list[0].Name)

	require.NoError(t, bs.Admin().DeleteSubAdmin(ctx, "sa1"))
	_, err = bs.Admin().GetSubAdminById(ctx, "sa1")
	assert.ErrorIs(t, err, gerr.ErrNotFound)
}

func TestMailQueue(t *testing.T) {
	ctx := context.Background()
	bs := newTestStore(t)

	id1, err := bs.Mail().AddMail(ctx, &entity.SendEmailRequest{To: "a@example.com", Subject: "one"})
	require.NoError(t, err)
	id2, err := bs.Mail().AddMail(ctx, &entity.SendEmailRequest{To: "b@example.com", Subject: "two"})
	require.NoError(t, err)
	assert.Equal(t, id1+1, id2)

	require.NoError(t, bs.Mail().UpdateSent(ctx, id1))
	require.NoError(t, bs.Mail().AddError(ctx, id2, "boom"))

	unsent, err := bs.Mail().GetAllUnsent(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, unsent)

	unsent, err = bs.Mail().GetAllUnsent(ctx, true)
	require.NoError(t, err)
	require.Len(t, unsent, 1)
	assert.Equal(t, "boom", unsent[0].ErrMsg.String)
}

func TestProducts(t *testing.T) {
	ctx := context.Background()
	bs := newTestStore(t)
	now := time.Now()

	c := &entity.Product{Id: "cap", Name: "Cap", Price: decimal.NewFromInt(2500), Stock: 2, CreatedAt: now}
	require.NoError(t, bs.Products().AddProduct(ctx, c))
	assert.ErrorIs(t, bs.Products().AddProduct(ctx, c), gerr.ErrConflict)
	require.NoError(t, bs.Products().AddProduct(ctx, &entity.Product{Id: "bag", Name: "Bag", CreatedAt: now.Add(time.Minute)}))

	ps, err := bs.Products().ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "bag", ps[0].Id)

	// the stored creation time wins over the one in the update
	require.NoError(t, bs.Products().UpdateProduct(ctx, &entity.Product{Id: "cap", Name: "Red cap", Stock: 5, CreatedAt: now.Add(time.Hour)}))
	got, err := bs.Products().GetProductById(ctx, "cap")
	require.NoError(t, err)
	assert.Equal(t, "Red cap", got.Name)
	assert.Equal(t, 5, got.Stock)
	assert.True(t, got.CreatedAt.Equal(now))
	ps, err = bs.Products().ListProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bag", ps[0].Id)

	assert.ErrorIs(t, bs.Products().UpdateProduct(ctx, &entity.Product{Id: "nope"}), gerr.ErrNotFound)
	require.NoError(t, bs.Products().DeleteProduct(ctx, "cap"))
	assert.ErrorIs(t, bs.Products().DeleteProduct(ctx, "cap"), gerr.ErrNotFound)
	_, err = bs.Products().GetProductById(ctx, "cap")
	assert.ErrorIs(t, err, gerr.ErrNotFound)
}

func TestChat(t *testing.T) {
	ctx := context.Background()
	bs := newTestStore(t)
	now := time.Now()

	var ids []int
	for _, m := range []entity.ChatMessage{
		{DeviceId: "dev-1", UserName: "Awa", Sender: entity.ChatSenderCustomer, Message: "hello", CreatedAt: now},
		{DeviceId: "dev-2", UserName: "Guest", Sender: entity.ChatSenderCustomer, Message: "price?", CreatedAt: now},
		{DeviceId: "dev-1", UserName: "Admin", Sender: entity.ChatSenderAdmin, Message: "hi", Read: true, CreatedAt: now},
		{DeviceId: "dev-1", UserName: "Awa", Sender: entity.ChatSenderCustomer, Message: "thanks", CreatedAt: now},
	} {
		m := m
		require.NoError(t, bs.Chat().AddChatMessage(ctx, &m))
		ids = append(ids, m.Id)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, ids)

	msgs, err := bs.Chat().ListChatMessages(ctx, "dev-1")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"hello", "hi", "thanks"}, []string{msgs[0].Message, msgs[1].Message, msgs[2].Message})

	require.NoError(t, bs.Chat().MarkConversationRead(ctx, "dev-1"))
	all, err := bs.Chat().ListAllChatMessages(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for _, m := range all {
		assert.Equal(t, m.DeviceId == "dev-1", m.Read, m.Message)
	}

	require.NoError(t, bs.Chat().DeleteConversation(ctx, "dev-1"))
	assert.ErrorIs(t, bs.Chat().DeleteConversation(ctx, "dev-1"), gerr.ErrNotFound)
	all, err = bs.Chat().ListAllChatMessages(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "dev-2", all[0].DeviceId)
}

func TestHeroSection(t *testing.T) {
	ctx := context.Background()
	bs := newTestStore(t)

	h, err := bs.Settings().GetHeroSection(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultHeroSection(), h)

	h.Title = "Rainy season sale"
	require.NoError(t, bs.Settings().SetHeroSection(ctx, h))
	got, err := bs.Settings().GetHeroSection(ctx)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

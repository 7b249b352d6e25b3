package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductAvailableIn(t *testing.T) {
	everywhere := Product{}
	assert.True(t, everywhere.AvailableIn("Kribi"))

	p := Product{AvailableRegions: []string{"Douala", "Buea"}}
	assert.True(t, p.AvailableIn(" douala "))
	assert.False(t, p.AvailableIn("Kribi"))
	assert.True(t, p.AvailableIn(""))

	all := Product{AvailableRegions: []string{"all"}}
	assert.True(t, all.AvailableIn("Kribi"))
}

func TestProductValidate(t *testing.T) {
	p := Product{Name: "Cap", Price: decimal.NewFromInt(100)}
	require.NoError(t, p.Validate())

	p.Price = decimal.NewFromInt(-1)
	assert.Error(t, p.Validate())
	p.Price, p.Stock = decimal.Zero, -1
	assert.Error(t, p.Validate())
	p.Stock, p.Images = 0, []ProductImage{{Color: "red"}}
	assert.Error(t, p.Validate())
	p.Images, p.Name = nil, ""
	assert.Error(t, p.Validate())
}

func TestGroupConversations(t *testing.T) {
	at := time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC)
	cs := GroupConversations([]ChatMessage{
		{Id: 1, DeviceId: "a", UserName: "Guest", Sender: ChatSenderCustomer, CreatedAt: at},
		{Id: 2, DeviceId: "b", UserName: "Bih", Sender: ChatSenderCustomer, CreatedAt: at.Add(time.Minute)},
		{Id: 3, DeviceId: "a", UserName: "Awa", Sender: ChatSenderCustomer, CreatedAt: at.Add(2 * time.Minute)},
		{Id: 4, DeviceId: "a", UserName: "Admin", Sender: ChatSenderAdmin, CreatedAt: at.Add(3 * time.Minute)},
		{Id: 5, DeviceId: "b", UserName: "Bih", Sender: ChatSenderCustomer, Read: true, CreatedAt: at.Add(-time.Hour)},
	})
	require.Len(t, cs, 2)

	assert.Equal(t, "a", cs[0].DeviceId)
	assert.Equal(t, "Awa", cs[0].UserName)
	assert.Equal(t, 2, cs[0].UnreadCount)
	assert.Equal(t, 4, cs[0].LastMessage.Id)
	assert.Len(t, cs[0].Messages, 3)

	assert.Equal(t, "b", cs[1].DeviceId)
	assert.Equal(t, 1, cs[1].UnreadCount)
}

func TestCountInventory(t *testing.T) {
	inv := CountInventory([]Product{{Stock: 3}, {Stock: 0}, {Stock: -4}, {Stock: 2}})
	assert.Equal(t, Inventory{Products: 4, InStock: 5}, inv)
}

func TestHeroSectionMerge(t *testing.T) {
	base := DefaultHeroSection()
	h := HeroSection{Title: "Sale"}.Merge(base)
	assert.Equal(t, "Sale", h.Title)
	assert.Equal(t, base.Badge, h.Badge)
	assert.Equal(t, base.BackgroundImage, h.BackgroundImage)
}

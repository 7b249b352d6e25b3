package mail

import (
	"context"

	"github.com/myshop/myshop-manager/internal/entity"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	OrderConfirmed = "order_confirmed.gohtml"
	OrderStatus    = "order_status.gohtml"
)

var templateSubjects = map[string]string{
	OrderConfirmed: "Your order has been received",
	OrderStatus:    "Your order status has changed",
}

type orderLine struct {
	Name     string
	Variant  string
	Quantity int
	Total    decimal.Decimal
}

type orderDetails struct {
	OrderId        string
	Name           string
	Region         string
	Status         string
	DeliveryAgency string
	Lines          []orderLine
	Shipping       decimal.Decimal
	Total          decimal.Decimal
	ShopName       string
}

func (m *Mailer) orderDetails(o *entity.Order) *orderDetails {
	od := &orderDetails{
		OrderId:        o.Id,
		Name:           o.Buyer.Name,
		Region:         o.RegionOrUnknown(),
		Status:         cases.Title(language.English).String(string(o.Status)),
		DeliveryAgency: o.DeliveryAgency,
		Shipping:       o.Totals.Shipping,
		Total:          o.Totals.Total,
		ShopName:       m.c.FromName,
	}
	for _, it := range o.Items {
		od.Lines = append(od.Lines, orderLine{
			Name:     it.Name,
			Variant:  it.SelectedVariant,
			Quantity: it.Quantity,
			Total:    it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))),
		})
	}
	return od
}

// QueueOrderConfirmation queues the confirmation email of a new order. Buyers
// without an email are skipped.
func (m *Mailer) QueueOrderConfirmation(ctx context.Context, o *entity.Order) error {
	if o.Buyer.Email == "" {
		return nil
	}
	return m.queue(ctx, o.Buyer.Email, OrderConfirmed, m.orderDetails(o))
}

// QueueOrderStatus queues an email telling the buyer about a status change.
func (m *Mailer) QueueOrderStatus(ctx context.Context, o *entity.Order) error {
	if o.Buyer.Email == "" || o.Status == "" {
		return nil
	}
	return m.queue(ctx, o.Buyer.Email, OrderStatus, m.orderDetails(o))
}

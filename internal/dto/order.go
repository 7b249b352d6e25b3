package dto

import (
	"strings"
	"time"

	"github.com/myshop/myshop-manager/internal/entity"
	gerr "github.com/myshop/myshop-manager/internal/errors"
	"github.com/shopspring/decimal"
)

// OrderNew is the checkout and POS order payload. Money may be sent as JSON
// numbers or strings.
type OrderNew struct {
	Buyer           entity.Buyer       `json:"buyer"`
	Region          string             `json:"region"`
	ShippingFee     decimal.Decimal    `json:"shippingFee"`
	Items           []entity.OrderItem `json:"items"`
	Totals          entity.OrderTotals `json:"totals"`
	Status          string             `json:"status"`
	DeliveryAgency  string             `json:"deliveryAgency"`
	PaymentMethod   string             `json:"paymentMethod"`
	IsInStoreSale   bool               `json:"isInStoreSale"`
	DiscountPercent decimal.Decimal    `json:"discountPercent"`
	Change          decimal.Decimal    `json:"change"`
	PaidAmount      decimal.Decimal    `json:"paidAmount"`
	Notes           string             `json:"notes"`
}

// ConvertOrderNewToEntity builds a validated order. The region falls back to
// entity.UnknownRegion and the status to pending.
func ConvertOrderNewToEntity(on *OrderNew, id string, now time.Time) (*entity.Order, error) {
	status := entity.OrderStatusPending
	if strings.TrimSpace(on.Status) != "" {
		st, ok := entity.ParseOrderStatus(on.Status)
		if !ok {
			return nil, gerr.Validation("status", "unknown value %q", on.Status)
		}
		status = st
	}

	o := &entity.Order{
		Id:              id,
		Buyer:           on.Buyer,
		Region:          strings.TrimSpace(on.Region),
		ShippingFee:     on.ShippingFee,
		Items:           on.Items,
		Totals:          on.Totals,
		Status:          status,
		DeliveryAgency:  on.DeliveryAgency,
		PaymentMethod:   on.PaymentMethod,
		IsInStoreSale:   on.IsInStoreSale,
		DiscountPercent: on.DiscountPercent,
		Change:          on.Change,
		PaidAmount:      on.PaidAmount,
		Notes:           on.Notes,
		CreatedAt:       now,
	}
	if o.Region == "" {
		o.Region = entity.UnknownRegion
	}
	if err := o.Validate(); err != nil {
		return nil, gerr.Validation("order", "%v", err)
	}
	return o, nil
}

// OrderUpdate is the admin order update payload.
type OrderUpdate struct {
	Status         *string `json:"status"`
	DeliveryAgency *string `json:"deliveryAgency"`
}

func ConvertOrderUpdateToEntity(ou *OrderUpdate) (entity.OrderUpdate, error) {
	var upd entity.OrderUpdate
	if ou.Status != nil {
		st, ok := entity.ParseOrderStatus(*ou.Status)
		if !ok {
			return upd, gerr.Validation("status", "unknown value %q", *ou.Status)
		}
		upd.Status = &st
	}
	upd.DeliveryAgency = ou.DeliveryAgency
	return upd, nil
}

type OrderItem struct {
	Id               string  `json:"id"`
	Name             string  `json:"name"`
	Price            float64 `json:"price"`
	Quantity         int     `json:"quantity"`
	SelectedVariant  string  `json:"selectedVariant,omitempty"`
	SelectedImageUrl string  `json:"selectedImageUrl,omitempty"`
}

type OrderTotals struct {
	Subtotal              float64 `json:"subtotal"`
	Discount              float64 `json:"discount"`
	SubtotalAfterDiscount float64 `json:"subtotalAfterDiscount"`
	Tax                   float64 `json:"tax"`
	Shipping              float64 `json:"shipping"`
	Total                 float64 `json:"total"`
}

type Order struct {
	Id              string       `json:"id"`
	Buyer           entity.Buyer `json:"buyer"`
	Region          string       `json:"region"`
	ShippingFee     float64      `json:"shippingFee"`
	Items           []OrderItem  `json:"items"`
	Totals          OrderTotals  `json:"totals"`
	Status          string       `json:"status"`
	DeliveryAgency  string       `json:"deliveryAgency"`
	PaymentMethod   string       `json:"paymentMethod,omitempty"`
	IsInStoreSale   bool         `json:"isInStoreSale"`
	DiscountPercent float64      `json:"discountPercent,omitempty"`
	Change          float64      `json:"change,omitempty"`
	PaidAmount      float64      `json:"paidAmount,omitempty"`
	Notes           string       `json:"notes,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
}

func ConvertEntityOrderToDto(o *entity.Order) *Order {
	out := &Order{
		Id:          o.Id,
		Buyer:       o.Buyer,
		Region:      o.RegionOrUnknown(),
		ShippingFee: money(o.ShippingFee),
		Items:       make([]OrderItem, 0, len(o.Items)),
		Totals: OrderTotals{
			Subtotal:              money(o.Totals.Subtotal),
			Discount:              money(o.Totals.Discount),
			SubtotalAfterDiscount: money(o.Totals.SubtotalAfterDiscount),
			Tax:                   money(o.Totals.Tax),
			Shipping:              money(o.Totals.Shipping),
			Total:                 money(o.Totals.Total),
		},
		Status:          string(o.Status),
		DeliveryAgency:  o.DeliveryAgency,
		PaymentMethod:   o.PaymentMethod,
		IsInStoreSale:   o.IsInStoreSale,
		DiscountPercent: money(o.DiscountPercent),
		Change:          money(o.Change),
		PaidAmount:      money(o.PaidAmount),
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, OrderItem{
			Id:               it.Id,
			Name:             it.Name,
			Price:            money(it.Price),
			Quantity:         it.Quantity,
			SelectedVariant:  it.SelectedVariant,
			SelectedImageUrl: it.SelectedImageUrl,
		})
	}
	return out
}

func ConvertEntityOrdersToDto(orders []entity.Order) []*Order {
	out := make([]*Order, 0, len(orders))
	for i := range orders {
		out = append(out, ConvertEntityOrderToDto(&orders[i]))
	}
	return out
}

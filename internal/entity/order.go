package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderStatuses = map[OrderStatus]bool{
	OrderStatusPending:    true,
	OrderStatusProcessing: true,
	OrderStatusShipped:    true,
	OrderStatusDelivered:  true,
	OrderStatusCancelled:  true,
}

// ParseOrderStatus accepts a status name in any letter case.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	return st, orderStatuses[st]
}

// UnknownRegion is used for orders placed without a delivery town.
const UnknownRegion = "Unknown"

// Order is a storefront checkout or an in-store sale recorded through the POS.
type Order struct {
	Id              string          `json:"id"`
	Buyer           Buyer           `json:"buyer"`
	Region          string          `json:"region"`
	ShippingFee     decimal.Decimal `json:"shippingFee"`
	Items           []OrderItem     `json:"items"`
	Totals          OrderTotals     `json:"totals"`
	Status          OrderStatus     `json:"status"`
	DeliveryAgency  string          `json:"deliveryAgency"`
	PaymentMethod   string          `json:"paymentMethod"`
	IsInStoreSale   bool            `json:"isInStoreSale"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	Change          decimal.Decimal `json:"change"`
	PaidAmount      decimal.Decimal `json:"paidAmount"`
	Notes           string          `json:"notes"`
	CreatedAt       time.Time       `json:"createdAt"`
}

type OrderItem struct {
	Id               string          `json:"id" valid:"-"`
	Name             string          `json:"name" valid:"required"`
	Price            decimal.Decimal `json:"price" valid:"-"`
	Quantity         int             `json:"quantity" valid:"-"`
	SelectedVariant  string          `json:"selectedVariant" valid:"-"`
	SelectedImageUrl string          `json:"selectedImageUrl" valid:"-"`
}

// OrderTotals holds the amounts computed by the checkout. Total is not
// recomputed from the other fields.
type OrderTotals struct {
	Subtotal              decimal.Decimal `json:"subtotal"`
	Discount              decimal.Decimal `json:"discount"`
	SubtotalAfterDiscount decimal.Decimal `json:"subtotalAfterDiscount"`
	Tax                   decimal.Decimal `json:"tax"`
	Shipping              decimal.Decimal `json:"shipping"`
	Total                 decimal.Decimal `json:"total"`
}

// ItemsCount returns the sum of line item quantities.
func (o *Order) ItemsCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// RegionOrUnknown returns the delivery town, or UnknownRegion when it is blank.
func (o *Order) RegionOrUnknown() string {
	if r := strings.TrimSpace(o.Region); r != "" {
		return r
	}
	return UnknownRegion
}

// Validate rejects orders that can not be aggregated safely.
func (o *Order) Validate() error {
	if _, err := govalidator.ValidateStruct(o.Buyer); err != nil {
		return fmt.Errorf("buyer: %w", err)
	}
	if len(o.Items) == 0 {
		return fmt.Errorf("items: at least one item is required")
	}
	for i, it := range o.Items {
		if _, err := govalidator.ValidateStruct(it); err != nil {
			return fmt.Errorf("items[%d]: %w", i, err)
		}
		if it.Quantity < 1 {
			return fmt.Errorf("items[%d]: quantity must be positive", i)
		}
		if it.Price.IsNegative() {
			return fmt.Errorf("items[%d]: price must not be negative", i)
		}
	}
	for name, v := range map[string]decimal.Decimal{
		"shippingFee":                  o.ShippingFee,
		"totals.subtotal":              o.Totals.Subtotal,
		"totals.discount":              o.Totals.Discount,
		"totals.subtotalAfterDiscount": o.Totals.SubtotalAfterDiscount,
		"totals.tax":                   o.Totals.Tax,
		"totals.shipping":              o.Totals.Shipping,
		"totals.total":                 o.Totals.Total,
		"paidAmount":                   o.PaidAmount,
	} {
		if v.IsNegative() {
			return fmt.Errorf("%s: must not be negative", name)
		}
	}
	if o.Status != "" && !orderStatuses[o.Status] {
		return fmt.Errorf("status: unknown value %q", o.Status)
	}
	return nil
}

// OrderUpdate carries the fields an admin may change on an existing order.
type OrderUpdate struct {
	Status         *OrderStatus
	DeliveryAgency *string
}

package entity

import (
	"fmt"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/shopspring/decimal"
)

// Receipt is a POS sale. Receipts are append-only.
type Receipt struct {
	Id            string          `json:"id" valid:"required"`
	Customer      ReceiptCustomer `json:"customer" valid:"-"`
	Items         []ReceiptItem   `json:"items" valid:"-"`
	Totals        ReceiptTotals   `json:"totals" valid:"-"`
	PaymentMethod string          `json:"paymentMethod" valid:"-"`
	CreatedAt     time.Time       `json:"createdAt" valid:"-"`
	SavedAt       time.Time       `json:"savedAt" valid:"-"`
	// Timestamp is milliseconds since epoch, set by the server on save.
	Timestamp int64 `json:"timestamp" valid:"-"`
}

type ReceiptCustomer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type ReceiptItem struct {
	Name       string          `json:"name" valid:"required"`
	Price      decimal.Decimal `json:"price" valid:"-"`
	Quantity   int             `json:"quantity" valid:"-"`
	Properties []string        `json:"properties,omitempty" valid:"-"`
}

type ReceiptTotals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Time returns the instant the receipt is counted at.
func (r *Receipt) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

func (r *Receipt) ItemsCount() int {
	n := 0
	for _, it := range r.Items {
		n += it.Quantity
	}
	return n
}

func (r *Receipt) Validate() error {
	if _, err := govalidator.ValidateStruct(r); err != nil {
		return err
	}
	for i, it := range r.Items {
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
	if r.Totals.Total.IsNegative() || r.Totals.Subtotal.IsNegative() || r.Totals.Discount.IsNegative() {
		return fmt.Errorf("totals: amounts must not be negative")
	}
	return nil
}

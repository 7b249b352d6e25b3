package dto

import (
	"time"

	"github.com/myshop/myshop-manager/internal/entity"
	gerr "github.com/myshop/myshop-manager/internal/errors"
)

// SaveReceipt wraps the receipt the POS sends after a sale.
type SaveReceipt struct {
	Receipt *entity.Receipt `json:"receipt"`
}

// ConvertSaveReceiptToEntity validates the receipt and stamps savedAt and
// timestamp with now.
func ConvertSaveReceiptToEntity(sr *SaveReceipt, now time.Time) (*entity.Receipt, error) {
	if sr.Receipt == nil {
		return nil, gerr.Validation("receipt", "is required")
	}
	r := *sr.Receipt
	if err := r.Validate(); err != nil {
		return nil, gerr.Validation("receipt", "%v", err)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.SavedAt = now
	r.Timestamp = now.UnixMilli()
	return &r, nil
}

type ReceiptItem struct {
	Name       string   `json:"name"`
	Price      float64  `json:"price"`
	Quantity   int      `json:"quantity"`
	Properties []string `json:"properties,omitempty"`
}

type ReceiptTotals struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

type Receipt struct {
	Id            string                 `json:"id"`
	Customer      entity.ReceiptCustomer `json:"customer"`
	Items         []ReceiptItem          `json:"items"`
	Totals        ReceiptTotals          `json:"totals"`
	PaymentMethod string                 `json:"paymentMethod"`
	CreatedAt     time.Time              `json:"createdAt"`
	SavedAt       time.Time              `json:"savedAt"`
	Timestamp     int64                  `json:"timestamp"`
}

func ConvertEntityReceiptToDto(r *entity.Receipt) *Receipt {
	out := &Receipt{
		Id:       r.Id,
		Customer: r.Customer,
		Items:    make([]ReceiptItem, 0, len(r.Items)),
		Totals: ReceiptTotals{
			Subtotal: money(r.Totals.Subtotal),
			Discount: money(r.Totals.Discount),
			Total:    money(r.Totals.Total),
		},
		PaymentMethod: r.PaymentMethod,
		CreatedAt:     r.CreatedAt,
		SavedAt:       r.SavedAt,
		Timestamp:     r.Timestamp,
	}
	for _, it := range r.Items {
		out.Items = append(out.Items, ReceiptItem{
			Name:       it.Name,
			Price:      money(it.Price),
			Quantity:   it.Quantity,
			Properties: it.Properties,
		})
	}
	return out
}

type ReceiptsPage struct {
	Receipts []*Receipt `json:"receipts"`
	Total    int        `json:"total"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

func ConvertEntityReceiptsToPage(rs []entity.Receipt, total, limit, offset int) *ReceiptsPage {
	page := &ReceiptsPage{
		Receipts: make([]*Receipt, 0, len(rs)),
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}
	for i := range rs {
		page.Receipts = append(page.Receipts, ConvertEntityReceiptToDto(&rs[i]))
	}
	return page
}

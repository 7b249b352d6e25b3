package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/myshop/myshop-manager/internal/entity"
	gerr "github.com/myshop/myshop-manager/internal/errors"
	"github.com/shopspring/decimal"
)

type receiptStore struct {
	*MYSQLStore
}

// receiptRow represents the receipt table
type receiptRow struct {
	Id            string          `db:"id"`
	CustomerName  string          `db:"customer_name"`
	CustomerPhone string          `db:"customer_phone"`
	Subtotal      decimal.Decimal `db:"subtotal"`
	Discount      decimal.Decimal `db:"discount"`
	Total         decimal.Decimal `db:"total"`
	PaymentMethod string          `db:"payment_method"`
	CreatedAt     time.Time       `db:"created_at"`
	SavedAt       time.Time       `db:"saved_at"`
	Ts            int64           `db:"ts"`
}

// receiptItemRow represents the receipt_item table
type receiptItemRow struct {
	ReceiptId  string          `db:"receipt_id"`
	Position   int             `db:"position"`
	Name       string          `db:"name"`
	Price      decimal.Decimal `db:"price"`
	Quantity   int             `db:"quantity"`
	Properties sql.NullString  `db:"properties"`
}

const receiptColumns = `id, customer_name, customer_phone, subtotal, discount, total,
	payment_method, created_at, saved_at, ts`

func (s *receiptStore) SaveReceipt(ctx context.Context, r *entity.Receipt) error {
	return s.Tx(ctx, func(ctx context.Context, ms *MYSQLStore) error {
		query := `
		INSERT INTO receipt (` + receiptColumns + `)
		VALUES (:id, :customerName, :customerPhone, :subtotal, :discount, :total,
			:paymentMethod, :createdAt, :savedAt, :ts)`
		err := ExecNamed(ctx, ms.DB(), query, map[string]any{
			"id":            r.Id,
			"customerName":  r.Customer.Name,
			"customerPhone": r.Customer.Phone,
			"subtotal":      r.Totals.Subtotal,
			"discount":      r.Totals.Discount,
			"total":         r.Totals.Total,
			"paymentMethod": r.PaymentMethod,
			"createdAt":     r.CreatedAt.UTC(),
			"savedAt":       r.SavedAt.UTC(),
			"ts":            r.Timestamp,
		})
		if err != nil {
			if IsErrUniqueViolation(err) {
				return gerr.ReceiptExists
			}
			return fmt.Errorf("can't insert receipt: %w", err)
		}

		rows := make([]map[string]any, 0, len(r.Items))
		for i, it := range r.Items {
			props, err := json.Marshal(it.Properties)
			if err != nil {
				return fmt.Errorf("can't marshal item properties: %w", err)
			}
			rows = append(rows, map[string]any{
				"receipt_id": r.Id,
				"position":   i,
				"name":       it.Name,
				"price":      it.Price,
				"quantity":   it.Quantity,
				"properties": string(props),
			})
		}
		if err := BulkInsert(ctx, ms.DB(), "receipt_item", rows); err != nil {
			return fmt.Errorf("can't insert receipt items: %w", err)
		}
		return nil
	})
}

func (ms *MYSQLStore) receiptsWithItems(ctx context.Context, rows []receiptRow) ([]entity.Receipt, error) {
	if len(rows) == 0 {
		return []entity.Receipt{}, nil
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.Id)
	}
	query := `
	SELECT receipt_id, position, name, price, quantity, properties
	FROM receipt_item
	WHERE receipt_id IN (:ids)
	ORDER BY receipt_id, position`
	itemRows, err := QueryListNamed[receiptItemRow](ctx, ms.DB(), query, map[string]any{
		"ids": ids,
	})
	if err != nil {
		return nil, fmt.Errorf("can't get receipt items: %w", err)
	}

	items := make(map[string][]entity.ReceiptItem, len(rows))
	for _, ir := range itemRows {
		it := entity.ReceiptItem{
			Name:     ir.Name,
			Price:    ir.Price,
			Quantity: ir.Quantity,
		}
		if ir.Properties.Valid && ir.Properties.String != "" {
			_ = json.Unmarshal([]byte(ir.Properties.String), &it.Properties)
		}
		items[ir.ReceiptId] = append(items[ir.ReceiptId], it)
	}

	receipts := make([]entity.Receipt, 0, len(rows))
	for _, r := range rows {
		receipts = append(receipts, entity.Receipt{
			Id:            r.Id,
			Customer:      entity.ReceiptCustomer{Name: r.CustomerName, Phone: r.CustomerPhone},
			Items:         items[r.Id],
			Totals:        entity.ReceiptTotals{Subtotal: r.Subtotal, Discount: r.Discount, Total: r.Total},
			PaymentMethod: r.PaymentMethod,
			CreatedAt:     r.CreatedAt,
			SavedAt:       r.SavedAt,
			Timestamp:     r.Ts,
		})
	}
	return receipts, nil
}

func (s *receiptStore) GetReceiptById(ctx context.Context, id string) (*entity.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipt WHERE id = :id`
	row, err := QueryNamedOne[receiptRow](ctx, s.DB(), query, map[string]any{"id": id})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gerr.ReceiptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't get receipt %s: %w", id, err)
	}
	receipts, err := s.receiptsWithItems(ctx, []receiptRow{row})
	if err != nil {
		return nil, err
	}
	return &receipts[0], nil
}

func (s *receiptStore) ListReceiptsPaged(ctx context.Context, limit, offset int) ([]entity.Receipt, int, error) {
	total, err := QueryCountNamed(ctx, s.DB(), `SELECT COUNT(*) FROM receipt`, map[string]any{})
	if err != nil {
		return nil, 0, fmt.Errorf("can't count receipts: %w", err)
	}
	query := `
	SELECT ` + receiptColumns + `
	FROM receipt
	ORDER BY ts DESC
	LIMIT :limit OFFSET :offset`
	rows, err := QueryListNamed[receiptRow](ctx, s.DB(), query, map[string]any{
		"limit":  limit,
		"offset": offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("can't list receipts: %w", err)
	}
	receipts, err := s.receiptsWithItems(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return receipts, int(total), nil
}

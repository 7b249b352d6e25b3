package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/myshop/myshop-manager/internal/entity"
	gerr "github.com/myshop/myshop-manager/internal/errors"
	"github.com/shopspring/decimal"
)

type orderStore struct {
	*MYSQLStore
}

// orderRow represents the customer_order table
type orderRow struct {
	Id                    string          `db:"id"`
	BuyerName             string          `db:"buyer_name"`
	BuyerEmail            string          `db:"buyer_email"`
	BuyerPhone            string          `db:"buyer_phone"`
	BuyerAddress          sql.NullString  `db:"buyer_address"`
	BuyerAgencies         sql.NullString  `db:"buyer_agencies"`
	Region                string          `db:"region"`
	ShippingFee           decimal.Decimal `db:"shipping_fee"`
	Subtotal              decimal.Decimal `db:"subtotal"`
	Discount              decimal.Decimal `db:"discount"`
	SubtotalAfterDiscount decimal.Decimal `db:"subtotal_after_discount"`
	Tax                   decimal.Decimal `db:"tax"`
	Shipping              decimal.Decimal `db:"shipping"`
	Total                 decimal.Decimal `db:"total"`
	Status                string          `db:"status"`
	DeliveryAgency        string          `db:"delivery_agency"`
	PaymentMethod         string          `db:"payment_method"`
	IsInStoreSale         bool            `db:"is_in_store_sale"`
	DiscountPercent       decimal.Decimal `db:"discount_percent"`
	ChangeAmount          decimal.Decimal `db:"change_amount"`
	PaidAmount            decimal.Decimal `db:"paid_amount"`
	Notes                 sql.NullString  `db:"notes"`
	CreatedAt             time.Time       `db:"created_at"`
}

// orderItemRow represents the order_item table
type orderItemRow struct {
	OrderId          string          `db:"order_id"`
	Position         int             `db:"position"`
	ItemId           string          `db:"item_id"`
	Name             string          `db:"name"`
	Price            decimal.Decimal `db:"price"`
	Quantity         int             `db:"quantity"`
	SelectedVariant  string          `db:"selected_variant"`
	SelectedImageUrl sql.NullString  `db:"selected_image_url"`
}

const orderColumns = `id, buyer_name, buyer_email, buyer_phone, buyer_address, buyer_agencies,
	region, shipping_fee, subtotal, discount, subtotal_after_discount, tax, shipping, total,
	status, delivery_agency, payment_method, is_in_store_sale, discount_percent,
	change_amount, paid_amount, notes, created_at`

func (r *orderRow) toEntity(items []entity.OrderItem) entity.Order {
	o := entity.Order{
		Id: r.Id,
		Buyer: entity.Buyer{
			Name:    r.BuyerName,
			Email:   r.BuyerEmail,
			Phone:   r.BuyerPhone,
			Address: r.BuyerAddress.String,
		},
		Region:      r.Region,
		ShippingFee: r.ShippingFee,
		Items:       items,
		Totals: entity.OrderTotals{
			Subtotal:              r.Subtotal,
			Discount:              r.Discount,
			SubtotalAfterDiscount: r.SubtotalAfterDiscount,
			Tax:                   r.Tax,
			Shipping:              r.Shipping,
			Total:                 r.Total,
		},
		Status:          entity.OrderStatus(r.Status),
		DeliveryAgency:  r.DeliveryAgency,
		PaymentMethod:   r.PaymentMethod,
		IsInStoreSale:   r.IsInStoreSale,
		DiscountPercent: r.DiscountPercent,
		Change:          r.ChangeAmount,
		PaidAmount:      r.PaidAmount,
		Notes:           r.Notes.String,
		CreatedAt:       r.CreatedAt,
	}
	if r.BuyerAgencies.Valid && r.BuyerAgencies.String != "" {
		_ = json.Unmarshal([]byte(r.BuyerAgencies.String), &o.Buyer.Agencies)
	}
	return o
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *orderStore) AddOrder(ctx context.Context, o *entity.Order) error {
	agencies, err := json.Marshal(o.Buyer.Agencies)
	if err != nil {
		return fmt.Errorf("can't marshal agencies: %w", err)
	}
	status := o.Status
	if status == "" {
		status = entity.OrderStatusPending
	}

	return s.Tx(ctx, func(ctx context.Context, ms *MYSQLStore) error {
		query := `
		INSERT INTO customer_order (` + orderColumns + `)
		VALUES (:id, :buyerName, :buyerEmail, :buyerPhone, :buyerAddress, :buyerAgencies,
			:region, :shippingFee, :subtotal, :discount, :subtotalAfterDiscount, :tax, :shipping, :total,
			:status, :deliveryAgency, :paymentMethod, :isInStoreSale, :discountPercent,
			:changeAmount, :paidAmount, :notes, :createdAt)`
		err := ExecNamed(ctx, ms.DB(), query, map[string]any{
			"id":                    o.Id,
			"buyerName":             o.Buyer.Name,
			"buyerEmail":            o.Buyer.Email,
			"buyerPhone":            o.Buyer.Phone,
			"buyerAddress":          nullString(o.Buyer.Address),
			"buyerAgencies":         string(agencies),
			"region":                o.RegionOrUnknown(),
			"shippingFee":           o.ShippingFee,
			"subtotal":              o.Totals.Subtotal,
			"discount":              o.Totals.Discount,
			"subtotalAfterDiscount": o.Totals.SubtotalAfterDiscount,
			"tax":                   o.Totals.Tax,
			"shipping":              o.Totals.Shipping,
			"total":                 o.Totals.Total,
			"status":                status,
			"deliveryAgency":        o.DeliveryAgency,
			"paymentMethod":         o.PaymentMethod,
			"isInStoreSale":         o.IsInStoreSale,
			"discountPercent":       o.DiscountPercent,
			"changeAmount":          o.Change,
			"paidAmount":            o.PaidAmount,
			"notes":                 nullString(o.Notes),
			"createdAt":             o.CreatedAt.UTC(),
		})
		if err != nil {
			if IsErrUniqueViolation(err) {
				return fmt.Errorf("order %s: %w", o.Id, gerr.ErrConflict)
			}
			return fmt.Errorf("can't insert order: %w", err)
		}

		rows := make([]map[string]any, 0, len(o.Items))
		for i, it := range o.Items {
			rows = append(rows, map[string]any{
				"order_id":           o.Id,
				"position":           i,
				"item_id":            it.Id,
				"name":               it.Name,
				"price":              it.Price,
				"quantity":           it.Quantity,
				"selected_variant":   it.SelectedVariant,
				"selected_image_url": nullString(it.SelectedImageUrl),
			})
		}
		if err := BulkInsert(ctx, ms.DB(), "order_item", rows); err != nil {
			return fmt.Errorf("can't insert order items: %w", err)
		}
		return nil
	})
}

// withItems loads line items for the given rows and converts them to entities.
func (ms *MYSQLStore) withItems(ctx context.Context, rows []orderRow) ([]entity.Order, error) {
	if len(rows) == 0 {
		return []entity.Order{}, nil
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.Id)
	}
	query := `
	SELECT order_id, position, item_id, name, price, quantity, selected_variant, selected_image_url
	FROM order_item
	WHERE order_id IN (:ids)
	ORDER BY order_id, position`
	itemRows, err := QueryListNamed[orderItemRow](ctx, ms.DB(), query, map[string]any{
		"ids": ids,
	})
	if err != nil {
		return nil, fmt.Errorf("can't get order items: %w", err)
	}

	items := make(map[string][]entity.OrderItem, len(rows))
	for _, ir := range itemRows {
		items[ir.OrderId] = append(items[ir.OrderId], entity.OrderItem{
			Id:               ir.ItemId,
			Name:             ir.Name,
			Price:            ir.Price,
			Quantity:         ir.Quantity,
			SelectedVariant:  ir.SelectedVariant,
			SelectedImageUrl: ir.SelectedImageUrl.String,
		})
	}

	orders := make([]entity.Order, 0, len(rows))
	for i := range rows {
		orders = append(orders, rows[i].toEntity(items[rows[i].Id]))
	}
	return orders, nil
}

func (s *orderStore) GetOrderById(ctx context.Context, id string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM customer_order WHERE id = :id`
	row, err := QueryNamedOne[orderRow](ctx, s.DB(), query, map[string]any{"id": id})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gerr.OrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't get order %s: %w", id, err)
	}
	orders, err := s.withItems(ctx, []orderRow{row})
	if err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (s *orderStore) ListAllOrders(ctx context.Context) ([]entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM customer_order ORDER BY created_at DESC`
	rows, err := QueryListNamed[orderRow](ctx, s.DB(), query, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("can't list orders: %w", err)
	}
	return s.withItems(ctx, rows)
}

func (s *orderStore) SearchOrders(ctx context.Context, email, phone string) ([]entity.Order, error) {
	query := `
	SELECT ` + orderColumns + `
	FROM customer_order
	WHERE (:email <> '' AND LOWER(buyer_email) = :email)
		OR (:phone <> '' AND buyer_phone = :phone)
	ORDER BY created_at DESC`
	rows, err := QueryListNamed[orderRow](ctx, s.DB(), query, map[string]any{
		"email": strings.ToLower(strings.TrimSpace(email)),
		"phone": strings.TrimSpace(phone),
	})
	if err != nil {
		return nil, fmt.Errorf("can't search orders: %w", err)
	}
	return s.withItems(ctx, rows)
}

func (s *orderStore) UpdateOrder(ctx context.Context, id string, upd entity.OrderUpdate) (*entity.Order, error) {
	var o *entity.Order
	err := s.Tx(ctx, func(ctx context.Context, ms *MYSQLStore) error {
		status := sql.NullString{}
		if upd.Status != nil {
			status = sql.NullString{String: string(*upd.Status), Valid: true}
		}
		agency := sql.NullString{}
		if upd.DeliveryAgency != nil {
			agency = sql.NullString{String: *upd.DeliveryAgency, Valid: true}
		}
		query := `
		UPDATE customer_order
		SET status = COALESCE(:status, status),
			delivery_agency = COALESCE(:agency, delivery_agency)
		WHERE id = :id`
		if err := ExecNamed(ctx, ms.DB(), query, map[string]any{
			"id":     id,
			"status": status,
			"agency": agency,
		}); err != nil {
			return fmt.Errorf("can't update order: %w", err)
		}
		var err error
		o, err = ms.Order().GetOrderById(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *orderStore) DeleteOrder(ctx context.Context, id string) error {
	res, err := s.DB().ExecContext(ctx, `DELETE FROM customer_order WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("can't delete order %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("can't get affected rows: %w", err)
	}
	if n == 0 {
		return gerr.OrderNotFound
	}
	return nil
}

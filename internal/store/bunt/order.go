package bunt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/myshop/myshop-manager/internal/entity"
	gerr "github.com/myshop/myshop-manager/internal/errors"
	"github.com/tidwall/buntdb"
)

type orderStore struct {
	*BuntStore
}

type orderDoc struct {
	Ts    int64        `json:"ts"`
	Order entity.Order `json:"order"`
}

func orderKey(id string) string {
	return orderPrefix + id
}

func (s *orderStore) AddOrder(ctx context.Context, o *entity.Order) error {
	if o.Id == "" {
		return fmt.Errorf("order id is empty")
	}
	return s.db.Update(func(tx *buntdb.Tx) error {
		if _, err := tx.Get(orderKey(o.Id)); err == nil {
			return fmt.Errorf("order %s: %w", o.Id, gerr.ErrConflict)
		}
		return setJSON(tx, orderKey(o.Id), orderDoc{Ts: o.CreatedAt.UnixMilli(), Order: *o})
	})
}

func (s *orderStore) GetOrderById(ctx context.Context, id string) (*entity.Order, error) {
	var doc orderDoc
	err := s.db.View(func(tx *buntdb.Tx) error {
		return getJSON(tx, orderKey(id), &doc)
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return nil, gerr.OrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't get order %s: %w", id, err)
	}
	return &doc.Order, nil
}

func (s *orderStore) ListAllOrders(ctx context.Context) ([]entity.Order, error) {
	return s.scanDesc(func(o *entity.Order) bool { return true })
}

func (s *orderStore) SearchOrders(ctx context.Context, email, phone string) ([]entity.Order, error) {
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)
	return s.scanDesc(func(o *entity.Order) bool {
		if email != "" && strings.EqualFold(strings.TrimSpace(o.Buyer.Email), email) {
			return true
		}
		return phone != "" && strings.TrimSpace(o.Buyer.Phone) == phone
	})
}

// scanDesc walks the time index newest first and keeps the orders match accepts.
func (s *orderStore) scanDesc(match func(o *entity.Order) bool) ([]entity.Order, error) {
	var (
		orders  []entity.Order
		scanErr error
	)
	err := s.db.View(func(tx *buntdb.Tx) error {
		return tx.Descend(ordersByTs, func(key, value string) bool {
			var doc orderDoc
			if scanErr = unmarshalDoc(key, value, &doc); scanErr != nil {
				return false
			}
			if match(&doc.Order) {
				orders = append(orders, doc.Order)
			}
			return true
		})
	})
	if err == nil {
		err = scanErr
	}
	if err != nil {
		return nil, fmt.Errorf("can't list orders: %w", err)
	}
	return orders, nil
}

func (s *orderStore) UpdateOrder(ctx context.Context, id string, upd entity.OrderUpdate) (*entity.Order, error) {
	var doc orderDoc
	err := s.db.Update(func(tx *buntdb.Tx) error {
		if err := getJSON(tx, orderKey(id), &doc); err != nil {
			return err
		}
		if upd.Status != nil {
			doc.Order.Status = *upd.Status
		}
		if upd.DeliveryAgency != nil {
			doc.Order.DeliveryAgency = *upd.DeliveryAgency
		}
		return setJSON(tx, orderKey(id), doc)
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return nil, gerr.OrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't update order %s: %w", id, err)
	}
	return &doc.Order, nil
}

func (s *orderStore) DeleteOrder(ctx context.Context, id string) error {
	err := s.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(orderKey(id))
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return gerr.OrderNotFound
	}
	if err != nil {
		return fmt.Errorf("can't delete order %s: %w", id, err)
	}
	return nil
}

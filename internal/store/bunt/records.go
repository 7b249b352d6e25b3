package bunt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/myshop/myshop-manager/internal/entity"
	"github.com/tidwall/buntdb"
)

type recordStore struct {
	*BuntStore
}

// msBounds converts tr to millisecond index pivots. The upper bound is rounded
// up so sub-millisecond ends still include the records before them.
func msBounds(tr entity.TimeRange) (string, string) {
	to := tr.To.UnixMilli()
	if tr.To.After(time.UnixMilli(to)) {
		to++
	}
	return tsPivot(tr.From.UnixMilli()), tsPivot(to)
}

func (rs *recordStore) ListOrders(ctx context.Context, tr entity.TimeRange) ([]entity.Order, error) {
	from, to := msBounds(tr)
	var (
		orders  []entity.Order
		scanErr error
	)
	err := rs.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendRange(ordersByTs, from, to, func(key, value string) bool {
			var doc orderDoc
			if scanErr = unmarshalDoc(key, value, &doc); scanErr != nil {
				return false
			}
			if tr.Contains(doc.Order.CreatedAt) {
				orders = append(orders, doc.Order)
			}
			return true
		})
	})
	if err == nil {
		err = scanErr
	}
	if err != nil {
		return nil, fmt.Errorf("can't list orders in range: %w", err)
	}
	return orders, nil
}

func (rs *recordStore) ListReceipts(ctx context.Context, tr entity.TimeRange) ([]entity.Receipt, error) {
	from, to := msBounds(tr)
	var (
		receipts []entity.Receipt
		scanErr  error
	)
	err := rs.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendRange(receiptsByTs, from, to, func(key, value string) bool {
			var doc receiptDoc
			if scanErr = unmarshalDoc(key, value, &doc); scanErr != nil {
				return false
			}
			if tr.Contains(doc.Receipt.Time()) {
				receipts = append(receipts, doc.Receipt)
			}
			return true
		})
	})
	if err == nil {
		err = scanErr
	}
	if err != nil {
		return nil, fmt.Errorf("can't list receipts in range: %w", err)
	}
	return receipts, nil
}

func unmarshalDoc(key, value string, v any) error {
	if err := json.Unmarshal([]byte(value), v); err != nil {
		return fmt.Errorf("bad document %s: %w", key, err)
	}
	return nil
}

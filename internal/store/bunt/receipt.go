package bunt

import (
	"context"
	"errors"
	"fmt"

	"github.com/myshop/myshop-manager/internal/entity"
	gerr "github.com/myshop/myshop-manager/internal/errors"
	"github.com/tidwall/buntdb"
)

type receiptStore struct {
	*BuntStore
}

type receiptDoc struct {
	Ts      int64          `json:"ts"`
	Receipt entity.Receipt `json:"receipt"`
}

func receiptKey(id string) string {
	return receiptPrefix + id
}

func (rs *receiptStore) SaveReceipt(ctx context.Context, r *entity.Receipt) error {
	err := rs.db.Update(func(tx *buntdb.Tx) error {
		if _, err := tx.Get(receiptKey(r.Id)); err == nil {
			return gerr.ReceiptExists
		}
		return setJSON(tx, receiptKey(r.Id), receiptDoc{Ts: r.Timestamp, Receipt: *r})
	})
	if err != nil {
		return fmt.Errorf("can't save receipt %s: %w", r.Id, err)
	}
	return nil
}

func (rs *receiptStore) GetReceiptById(ctx context.Context, id string) (*entity.Receipt, error) {
	var doc receiptDoc
	err := rs.db.View(func(tx *buntdb.Tx) error {
		return getJSON(tx, receiptKey(id), &doc)
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return nil, gerr.ReceiptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't get receipt %s: %w", id, err)
	}
	return &doc.Receipt, nil
}

func (rs *receiptStore) ListReceiptsPaged(ctx context.Context, limit, offset int) ([]entity.Receipt, int, error) {
	var (
		receipts []entity.Receipt
		total    int
		scanErr  error
	)
	err := rs.db.View(func(tx *buntdb.Tx) error {
		return tx.Descend(receiptsByTs, func(key, value string) bool {
			total++
			if total <= offset || len(receipts) >= limit {
				return true
			}
			var doc receiptDoc
			if scanErr = unmarshalDoc(key, value, &doc); scanErr != nil {
				return false
			}
			receipts = append(receipts, doc.Receipt)
			return true
		})
	})
	if err == nil {
		err = scanErr
	}
	if err != nil {
		return nil, 0, fmt.Errorf("can't list receipts: %w", err)
	}
	return receipts, total, nil
}

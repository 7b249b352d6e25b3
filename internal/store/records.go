package store

import (
	"context"
	"fmt"
	"time"

	"github.com/myshop/myshop-manager/internal/entity"
)

type recordStore struct {
	*MYSQLStore
}

func (s *recordStore) ListOrders(ctx context.Context, tr entity.TimeRange) ([]entity.Order, error) {
	query := `
	SELECT ` + orderColumns + `
	FROM customer_order
	WHERE created_at >= :from AND created_at < :to
	ORDER BY created_at ASC`
	rows, err := QueryListNamed[orderRow](ctx, s.DB(), query, map[string]any{
		"from": tr.From.UTC(),
		"to":   tr.To.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("can't list orders in range: %w", err)
	}
	return s.withItems(ctx, rows)
}

func (s *recordStore) ListReceipts(ctx context.Context, tr entity.TimeRange) ([]entity.Receipt, error) {
	query := `
	SELECT ` + receiptColumns + `
	FROM receipt
	WHERE ts >= :from AND ts < :to
	ORDER BY ts ASC`
	rows, err := QueryListNamed[receiptRow](ctx, s.DB(), query, map[string]any{
		"from": ceilMilli(tr.From),
		"to":   ceilMilli(tr.To),
	})
	if err != nil {
		return nil, fmt.Errorf("can't list receipts in range: %w", err)
	}
	return s.receiptsWithItems(ctx, rows)
}

// ceilMilli rounds t up to the next whole millisecond.
func ceilMilli(t time.Time) int64 {
	ms := t.UnixMilli()
	if t.After(time.UnixMilli(ms)) {
		ms++
	}
	return ms
}

// Package bunt implements the repository on top of a single embedded buntdb
// file. Records are kept as JSON documents wrapped with a numeric "ts" field
// that the time indexes are built on.
package bunt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/myshop/myshop-manager/internal/dependency"
	"github.com/myshop/myshop-manager/internal/entity"
	"github.com/tidwall/buntdb"
)

// Config defines where the database file lives. ":memory:" keeps everything in RAM.
type Config struct {
	Path string `mapstructure:"path"`
}

const (
	ordersByTs    = "orders_ts"
	receiptsByTs  = "receipts_ts"
	subAdminEmail = "subadmins_email"
	mailById      = "mail_id"
	productsByTs  = "products_ts"
	chatById      = "chat_id"

	orderPrefix    = "order:"
	receiptPrefix  = "receipt:"
	subAdminPrefix = "subadmin:"
	mailPrefix     = "mail:"
	productPrefix  = "product:"
	chatPrefix     = "chat:"
	mailSeqKey     = "seq:mail"
	chatSeqKey     = "seq:chat"
	settingsKey    = "settings:shipping"
	heroKey        = "settings:hero"
)

// BuntStore implements dependency.Repository.
type BuntStore struct {
	db    *buntdb.DB
	close context.CancelFunc
}

// New opens the database file, creates the indexes and seeds default shipping settings.
func New(ctx context.Context, cfg Config) (*BuntStore, error) {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't open bunt database %s: %w", path, err)
	}

	indexes := []struct {
		name, pattern string
		less          func(a, b string) bool
	}{
		{ordersByTs, orderPrefix + "*", buntdb.IndexJSON("ts")},
		{receiptsByTs, receiptPrefix + "*", buntdb.IndexJSON("ts")},
		{subAdminEmail, subAdminPrefix + "*", buntdb.IndexJSON("email")},
		{mailById, mailPrefix + "*", buntdb.IndexJSON("id")},
		{productsByTs, productPrefix + "*", buntdb.IndexJSON("ts")},
		{chatById, chatPrefix + "*", buntdb.IndexJSON("id")},
	}
	for _, idx := range indexes {
		if err := db.ReplaceIndex(idx.name, idx.pattern, idx.less); err != nil {
			db.Close()
			return nil, fmt.Errorf("can't create index %s: %w", idx.name, err)
		}
	}

	ctx, c := context.WithCancel(ctx)
	bs := &BuntStore{
		db:    db,
		close: c,
	}

	if err := bs.seedSettings(); err != nil {
		db.Close()
		return nil, fmt.Errorf("can't seed settings: %w", err)
	}

	go func() {
		<-ctx.Done()
		if err := db.Close(); err != nil && !errors.Is(err, buntdb.ErrDatabaseClosed) {
			slog.Default().Error("can't close bunt database", slog.String("err", err.Error()))
		}
	}()

	slog.Default().InfoContext(ctx, "bunt store opened", slog.String("path", path))
	return bs, nil
}

func (bs *BuntStore) seedSettings() error {
	return bs.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Get(settingsKey)
		if err == nil {
			return nil
		}
		if !errors.Is(err, buntdb.ErrNotFound) {
			return err
		}
		return setJSON(tx, settingsKey, entity.DefaultShippingSettings())
	})
}

func (bs *BuntStore) Close() {
	bs.close()
}

// Ping checks the database is still open.
func (bs *BuntStore) Ping(ctx context.Context) error {
	return bs.db.View(func(tx *buntdb.Tx) error {
		_, err := tx.Len()
		return err
	})
}

func (bs *BuntStore) Order() dependency.Order {
	return &orderStore{BuntStore: bs}
}

func (bs *BuntStore) Receipt() dependency.Receipt {
	return &receiptStore{BuntStore: bs}
}

func (bs *BuntStore) Records() dependency.RecordStore {
	return &recordStore{BuntStore: bs}
}

func (bs *BuntStore) Settings() dependency.Settings {
	return &settingsStore{BuntStore: bs}
}

func (bs *BuntStore) Admin() dependency.Admin {
	return &adminStore{BuntStore: bs}
}

func (bs *BuntStore) Mail() dependency.Mail {
	return &mailStore{BuntStore: bs}
}

func (bs *BuntStore) Products() dependency.Products {
	return &productStore{BuntStore: bs}
}

func (bs *BuntStore) Chat() dependency.Chat {
	return &chatStore{BuntStore: bs}
}

func setJSON(tx *buntdb.Tx, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	_, _, err = tx.Set(key, string(b), nil)
	return err
}

func getJSON(tx *buntdb.Tx, key string, v any) error {
	s, err := tx.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

// nextSeq increments the counter stored under key and returns the new value.
func nextSeq(tx *buntdb.Tx, key string) (int, error) {
	cur, err := tx.Get(key)
	if err != nil && !errors.Is(err, buntdb.ErrNotFound) {
		return 0, err
	}
	n := 0
	if cur != "" {
		if n, err = strconv.Atoi(cur); err != nil {
			return 0, fmt.Errorf("bad sequence %s %q: %w", key, cur, err)
		}
	}
	n++
	if _, _, err := tx.Set(key, strconv.Itoa(n), nil); err != nil {
		return 0, err
	}
	return n, nil
}

// tsPivot builds the index pivot for a numeric "ts" value.
func tsPivot(ms int64) string {
	return fmt.Sprintf(`{"ts":%d}`, ms)
}

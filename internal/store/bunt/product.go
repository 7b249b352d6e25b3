package bunt

import (
	"context"
	"errors"
	"fmt"

	"github.com/myshop/myshop-manager/internal/entity"
	gerr "github.com/myshop/myshop-manager/internal/errors"
	"github.com/tidwall/buntdb"
)

type productStore struct {
	*BuntStore
}

type productDoc struct {
	Ts      int64          `json:"ts"`
	Product entity.Product `json:"product"`
}

func productKey(id string) string {
	return productPrefix + id
}

func (ps *productStore) AddProduct(ctx context.Context, p *entity.Product) error {
	if p.Id == "" {
		return fmt.Errorf("product id is empty")
	}
	err := ps.db.Update(func(tx *buntdb.Tx) error {
		if _, err := tx.Get(productKey(p.Id)); err == nil {
			return gerr.ProductExists
		}
		return setJSON(tx, productKey(p.Id), productDoc{Ts: p.CreatedAt.UnixMilli(), Product: *p})
	})
	if err != nil {
		return fmt.Errorf("can't add product %s: %w", p.Id, err)
	}
	return nil
}

func (ps *productStore) GetProductById(ctx context.Context, id string) (*entity.Product, error) {
	var doc productDoc
	err := ps.db.View(func(tx *buntdb.Tx) error {
		return getJSON(tx, productKey(id), &doc)
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return nil, gerr.ProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't get product %s: %w", id, err)
	}
	return &doc.Product, nil
}

func (ps *productStore) ListProducts(ctx context.Context) ([]entity.Product, error) {
	var (
		products = []entity.Product{}
		scanErr  error
	)
	err := ps.db.View(func(tx *buntdb.Tx) error {
		return tx.Descend(productsByTs, func(key, value string) bool {
			var doc productDoc
			if scanErr = unmarshalDoc(key, value, &doc); scanErr != nil {
				return false
			}
			products = append(products, doc.Product)
			return true
		})
	})
	if err == nil {
		err = scanErr
	}
	if err != nil {
		return nil, fmt.Errorf("can't list products: %w", err)
	}
	return products, nil
}

// UpdateProduct keeps the original creation time so the listing order is stable.
func (ps *productStore) UpdateProduct(ctx context.Context, p *entity.Product) error {
	err := ps.db.Update(func(tx *buntdb.Tx) error {
		var doc productDoc
		if err := getJSON(tx, productKey(p.Id), &doc); err != nil {
			return err
		}
		upd := *p
		upd.CreatedAt = doc.Product.CreatedAt
		return setJSON(tx, productKey(p.Id), productDoc{Ts: doc.Ts, Product: upd})
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return gerr.ProductNotFound
	}
	if err != nil {
		return fmt.Errorf("can't update product %s: %w", p.Id, err)
	}
	return nil
}

func (ps *productStore) DeleteProduct(ctx context.Context, id string) error {
	err := ps.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(productKey(id))
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return gerr.ProductNotFound
	}
	if err != nil {
		return fmt.Errorf("can't delete product %s: %w", id, err)
	}
	return nil
}

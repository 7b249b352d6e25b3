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

type productStore struct {
	*MYSQLStore
}

// productRow represents the product table
type productRow struct {
	Id               string          `db:"id"`
	Name             string          `db:"name"`
	Price            decimal.Decimal `db:"price"`
	Description      sql.NullString  `db:"description"`
	Stock            int             `db:"stock"`
	Category         string          `db:"category"`
	Image            sql.NullString  `db:"image"`
	MostOrdered      bool            `db:"most_ordered"`
	IsNew            bool            `db:"is_new"`
	AvailableRegions sql.NullString  `db:"available_regions"`
	Images           sql.NullString  `db:"images"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

func (r *productRow) toEntity() entity.Product {
	p := entity.Product{
		Id:          r.Id,
		Name:        r.Name,
		Price:       r.Price,
		Description: r.Description.String,
		Stock:       r.Stock,
		Category:    r.Category,
		Image:       r.Image.String,
		MostOrdered: r.MostOrdered,
		IsNew:       r.IsNew,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.AvailableRegions.Valid && r.AvailableRegions.String != "" {
		_ = json.Unmarshal([]byte(r.AvailableRegions.String), &p.AvailableRegions)
	}
	if r.Images.Valid && r.Images.String != "" {
		_ = json.Unmarshal([]byte(r.Images.String), &p.Images)
	}
	return p
}

func productParams(p *entity.Product) (map[string]any, error) {
	regions, err := json.Marshal(p.AvailableRegions)
	if err != nil {
		return nil, fmt.Errorf("can't marshal available regions: %w", err)
	}
	images, err := json.Marshal(p.Images)
	if err != nil {
		return nil, fmt.Errorf("can't marshal images: %w", err)
	}
	return map[string]any{
		"id":               p.Id,
		"name":             p.Name,
		"price":            p.Price,
		"description":      p.Description,
		"stock":            p.Stock,
		"category":         p.Category,
		"image":            p.Image,
		"mostOrdered":      p.MostOrdered,
		"isNew":            p.IsNew,
		"availableRegions": string(regions),
		"images":           string(images),
		"createdAt":        p.CreatedAt.UTC(),
		"updatedAt":        p.UpdatedAt.UTC(),
	}, nil
}

const productColumns = `id, name, price, description, stock, category, image,
	most_ordered, is_new, available_regions, images, created_at, updated_at`

func (s *productStore) AddProduct(ctx context.Context, p *entity.Product) error {
	params, err := productParams(p)
	if err != nil {
		return err
	}
	err = ExecNamed(ctx, s.DB(), `
	INSERT INTO product (`+productColumns+`)
	VALUES (:id, :name, :price, :description, :stock, :category, :image,
		:mostOrdered, :isNew, :availableRegions, :images, :createdAt, :updatedAt)`, params)
	if err != nil {
		if IsErrUniqueViolation(err) {
			return gerr.ProductExists
		}
		return fmt.Errorf("can't add product: %w", err)
	}
	return nil
}

func (s *productStore) GetProductById(ctx context.Context, id string) (*entity.Product, error) {
	row, err := QueryNamedOne[productRow](ctx, s.DB(),
		`SELECT `+productColumns+` FROM product WHERE id = :id`, map[string]any{"id": id})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gerr.ProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't get product %s: %w", id, err)
	}
	p := row.toEntity()
	return &p, nil
}

func (s *productStore) ListProducts(ctx context.Context) ([]entity.Product, error) {
	rows, err := QueryListNamed[productRow](ctx, s.DB(),
		`SELECT `+productColumns+` FROM product ORDER BY created_at DESC, id`, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("can't list products: %w", err)
	}
	products := make([]entity.Product, 0, len(rows))
	for i := range rows {
		products = append(products, rows[i].toEntity())
	}
	return products, nil
}

// UpdateProduct leaves created_at untouched.
func (s *productStore) UpdateProduct(ctx context.Context, p *entity.Product) error {
	params, err := productParams(p)
	if err != nil {
		return err
	}
	res, err := s.DB().ExecContext(ctx, `
	UPDATE product SET name = ?, price = ?, description = ?, stock = ?, category = ?, image = ?,
		most_ordered = ?, is_new = ?, available_regions = ?, images = ?, updated_at = ?
	WHERE id = ?`,
		params["name"], params["price"], params["description"], params["stock"], params["category"],
		params["image"], params["mostOrdered"], params["isNew"], params["availableRegions"],
		params["images"], params["updatedAt"], p.Id)
	if err != nil {
		return fmt.Errorf("can't update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.GetProductById(ctx, p.Id); err != nil {
			return err
		}
	}
	return nil
}

func (s *productStore) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.DB().ExecContext(ctx, `DELETE FROM product WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("can't delete product: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if ra == 0 {
		return gerr.ProductNotFound
	}
	return nil
}

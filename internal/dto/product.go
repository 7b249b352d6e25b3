package dto

import (
	"strings"
	"time"

	"github.com/myshop/myshop-manager/internal/entity"
	gerr "github.com/myshop/myshop-manager/internal/errors"
	"github.com/shopspring/decimal"
)

type ProductImage struct {
	Color string `json:"color"`
	URL   string `json:"url"`
}

type ProductNew struct {
	Name             string          `json:"name"`
	Price            decimal.Decimal `json:"price"`
	Description      string          `json:"description"`
	Stock            int             `json:"stock"`
	Category         string          `json:"category"`
	Image            string          `json:"image"`
	MostOrdered      bool            `json:"mostOrdered"`
	IsNew            bool            `json:"isNew"`
	AvailableRegions []string        `json:"availableRegions"`
	Images           []ProductImage  `json:"images"`
}

func convertImages(in []ProductImage) []entity.ProductImage {
	out := make([]entity.ProductImage, 0, len(in))
	for _, img := range in {
		out = append(out, entity.ProductImage{
			Color: strings.TrimSpace(img.Color),
			URL:   strings.TrimSpace(img.URL),
		})
	}
	return out
}

func cleanRegions(in []string) []string {
	out := make([]string, 0, len(in))
	for _, r := range in {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func validateProduct(p *entity.Product) error {
	if err := p.Validate(); err != nil {
		return gerr.Validation("", "%s", err.Error())
	}
	return nil
}

// ConvertProductNewToEntity validates pn and builds a product created at now.
func ConvertProductNewToEntity(pn *ProductNew, id string, now time.Time) (*entity.Product, error) {
	p := &entity.Product{
		Id:               id,
		Name:             strings.TrimSpace(pn.Name),
		Price:            pn.Price,
		Description:      pn.Description,
		Stock:            pn.Stock,
		Category:         strings.TrimSpace(pn.Category),
		Image:            strings.TrimSpace(pn.Image),
		MostOrdered:      pn.MostOrdered,
		IsNew:            pn.IsNew,
		AvailableRegions: cleanRegions(pn.AvailableRegions),
		Images:           convertImages(pn.Images),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	return p, nil
}

// ProductUpdate carries the fields to change; absent fields keep their value.
type ProductUpdate struct {
	Name             *string          `json:"name"`
	Price            *decimal.Decimal `json:"price"`
	Description      *string          `json:"description"`
	Stock            *int             `json:"stock"`
	Category         *string          `json:"category"`
	Image            *string          `json:"image"`
	MostOrdered      *bool            `json:"mostOrdered"`
	IsNew            *bool            `json:"isNew"`
	AvailableRegions []string         `json:"availableRegions"`
	Images           []ProductImage   `json:"images"`
}

// Apply merges pu into p and validates the result.
func (pu *ProductUpdate) Apply(p *entity.Product, now time.Time) error {
	if pu.Name != nil {
		p.Name = strings.TrimSpace(*pu.Name)
	}
	if pu.Price != nil {
		p.Price = *pu.Price
	}
	if pu.Description != nil {
		p.Description = *pu.Description
	}
	if pu.Stock != nil {
		p.Stock = *pu.Stock
	}
	if pu.Category != nil {
		p.Category = strings.TrimSpace(*pu.Category)
	}
	if pu.Image != nil {
		p.Image = strings.TrimSpace(*pu.Image)
	}
	if pu.MostOrdered != nil {
		p.MostOrdered = *pu.MostOrdered
	}
	if pu.IsNew != nil {
		p.IsNew = *pu.IsNew
	}
	if pu.AvailableRegions != nil {
		p.AvailableRegions = cleanRegions(pu.AvailableRegions)
	}
	if pu.Images != nil {
		p.Images = convertImages(pu.Images)
	}
	p.UpdatedAt = now
	return validateProduct(p)
}

type Product struct {
	Id               string         `json:"id"`
	Name             string         `json:"name"`
	Price            float64        `json:"price"`
	Description      string         `json:"description"`
	Stock            int            `json:"stock"`
	Category         string         `json:"category"`
	Image            string         `json:"image"`
	MostOrdered      bool           `json:"mostOrdered"`
	IsNew            bool           `json:"isNew"`
	AvailableRegions []string       `json:"availableRegions"`
	Images           []ProductImage `json:"images"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

func ConvertEntityProductToDto(p *entity.Product) *Product {
	out := &Product{
		Id:               p.Id,
		Name:             p.Name,
		Price:            money(p.Price),
		Description:      p.Description,
		Stock:            p.Stock,
		Category:         p.Category,
		Image:            p.Image,
		MostOrdered:      p.MostOrdered,
		IsNew:            p.IsNew,
		AvailableRegions: p.AvailableRegions,
		Images:           make([]ProductImage, 0, len(p.Images)),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if out.AvailableRegions == nil {
		out.AvailableRegions = []string{}
	}
	for _, img := range p.Images {
		out.Images = append(out.Images, ProductImage{Color: img.Color, URL: img.URL})
	}
	return out
}

func ConvertEntityProductsToDto(ps []entity.Product) []*Product {
	out := make([]*Product, 0, len(ps))
	for i := range ps {
		out = append(out, ConvertEntityProductToDto(&ps[i]))
	}
	return out
}

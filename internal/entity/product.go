package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/shopspring/decimal"
)

// AllRegionsMarker in AvailableRegions makes a product available everywhere.
const AllRegionsMarker = "ALL"

// Product is a catalogue entry shown on the storefront.
type Product struct {
	Id               string          `json:"id" valid:"-"`
	Name             string          `json:"name" valid:"required"`
	Price            decimal.Decimal `json:"price" valid:"-"`
	Description      string          `json:"description" valid:"-"`
	Stock            int             `json:"stock" valid:"-"`
	Category         string          `json:"category" valid:"-"`
	Image            string          `json:"image" valid:"-"`
	MostOrdered      bool            `json:"mostOrdered" valid:"-"`
	IsNew            bool            `json:"isNew" valid:"-"`
	AvailableRegions []string        `json:"availableRegions" valid:"-"`
	Images           []ProductImage  `json:"images" valid:"-"`
	CreatedAt        time.Time       `json:"createdAt" valid:"-"`
	UpdatedAt        time.Time       `json:"updatedAt" valid:"-"`
}

// ProductImage is a picture of one colour variant.
type ProductImage struct {
	Color string `json:"color" valid:"-"`
	URL   string `json:"url" valid:"required"`
}

// AvailableIn reports whether the product can be delivered to region. A
// product without regions is available everywhere.
func (p *Product) AvailableIn(region string) bool {
	region = strings.TrimSpace(region)
	if region == "" || len(p.AvailableRegions) == 0 {
		return true
	}
	for _, r := range p.AvailableRegions {
		if strings.EqualFold(r, AllRegionsMarker) || strings.EqualFold(r, region) {
			return true
		}
	}
	return false
}

func (p *Product) Validate() error {
	if _, err := govalidator.ValidateStruct(p); err != nil {
		return err
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("price: must not be negative")
	}
	if p.Stock < 0 {
		return fmt.Errorf("stock: must not be negative")
	}
	for i, img := range p.Images {
		if _, err := govalidator.ValidateStruct(img); err != nil {
			return fmt.Errorf("images[%d]: %w", i, err)
		}
	}
	return nil
}

// Inventory summarises the catalogue for the storefront counters.
type Inventory struct {
	Products int
	InStock  int
}

func CountInventory(ps []Product) Inventory {
	inv := Inventory{Products: len(ps)}
	for _, p := range ps {
		if p.Stock > 0 {
			inv.InStock += p.Stock
		}
	}
	return inv
}

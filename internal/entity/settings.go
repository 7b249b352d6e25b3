package entity

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ShippingSettings are the per-town delivery fees and free shipping rules.
type ShippingSettings struct {
	ShippingFees          map[string]decimal.Decimal `json:"shippingFees"`
	MainShopTown          string                     `json:"mainShopTown"`
	FreeShippingThreshold decimal.Decimal            `json:"freeShippingThreshold"`
	RegionFreeShipping    map[string]bool            `json:"regionFreeShipping"`
}

// DefaultShippingSettings returns the settings a fresh store starts with.
func DefaultShippingSettings() *ShippingSettings {
	return &ShippingSettings{
		ShippingFees: map[string]decimal.Decimal{
			"Douala":     decimal.Zero,
			"Yaoundé":    decimal.NewFromInt(3000),
			"Bafoussam":  decimal.NewFromInt(5000),
			"Bamenda":    decimal.NewFromInt(6000),
			"Garoua":     decimal.NewFromInt(8000),
			"Maroua":     decimal.NewFromInt(9000),
			"Ngaoundéré": decimal.NewFromInt(7000),
			"Bertoua":    decimal.NewFromInt(6500),
			"Buea":       decimal.NewFromInt(2000),
			"Limbe":      decimal.NewFromInt(2500),
		},
		MainShopTown:          "Douala",
		FreeShippingThreshold: decimal.NewFromInt(50000),
		RegionFreeShipping:    map[string]bool{},
	}
}

// Towns returns every region name an order may carry: the towns with a
// shipping fee, the main shop town and UnknownRegion, sorted.
func (s *ShippingSettings) Towns() []string {
	seen := map[string]bool{UnknownRegion: true}
	if s.MainShopTown != "" {
		seen[s.MainShopTown] = true
	}
	for t := range s.ShippingFees {
		seen[t] = true
	}
	towns := make([]string, 0, len(seen))
	for t := range seen {
		towns = append(towns, t)
	}
	sort.Strings(towns)
	return towns
}

// LookupTown returns the canonical spelling of town, matched case-insensitively.
func (s *ShippingSettings) LookupTown(town string) (string, bool) {
	town = strings.TrimSpace(town)
	for _, t := range s.Towns() {
		if strings.EqualFold(t, town) {
			return t, true
		}
	}
	return "", false
}

package dto

import (
	"strings"

	"github.com/myshop/myshop-manager/internal/entity"
	gerr "github.com/myshop/myshop-manager/internal/errors"
	"github.com/shopspring/decimal"
)

type ShippingSettings struct {
	ShippingFees          map[string]float64 `json:"shippingFees"`
	MainShopTown          string             `json:"mainShopTown"`
	FreeShippingThreshold float64            `json:"freeShippingThreshold"`
	RegionFreeShipping    map[string]bool    `json:"regionFreeShipping"`
}

func ConvertEntityShippingSettingsToDto(ss *entity.ShippingSettings) *ShippingSettings {
	out := &ShippingSettings{
		ShippingFees:          make(map[string]float64, len(ss.ShippingFees)),
		MainShopTown:          ss.MainShopTown,
		FreeShippingThreshold: money(ss.FreeShippingThreshold),
		RegionFreeShipping:    ss.RegionFreeShipping,
	}
	if out.RegionFreeShipping == nil {
		out.RegionFreeShipping = map[string]bool{}
	}
	for town, fee := range ss.ShippingFees {
		out.ShippingFees[town] = money(fee)
	}
	return out
}

type ShippingFeesUpdate struct {
	ShippingFees map[string]decimal.Decimal `json:"shippingFees"`
}

// Validate rejects blank towns and negative fees.
func (u *ShippingFeesUpdate) Validate() (map[string]decimal.Decimal, error) {
	if u.ShippingFees == nil {
		return nil, gerr.Validation("shippingFees", "is required")
	}
	fees := make(map[string]decimal.Decimal, len(u.ShippingFees))
	for town, fee := range u.ShippingFees {
		town = strings.TrimSpace(town)
		if town == "" {
			return nil, gerr.Validation("shippingFees", "town name is empty")
		}
		if fee.IsNegative() {
			return nil, gerr.Validation("shippingFees", "fee for %s must not be negative", town)
		}
		fees[town] = fee
	}
	return fees, nil
}

type MainShopTown struct {
	MainShopTown string `json:"mainShopTown"`
}

type FreeShippingUpdate struct {
	Threshold          *decimal.Decimal `json:"threshold"`
	RegionFreeShipping map[string]bool  `json:"regionFreeShipping"`
}

func (u *FreeShippingUpdate) Validate() error {
	if u.Threshold == nil {
		return gerr.Validation("threshold", "is required")
	}
	if u.Threshold.IsNegative() {
		return gerr.Validation("threshold", "must not be negative")
	}
	return nil
}

type FreeShipping struct {
	Threshold          float64         `json:"threshold"`
	RegionFreeShipping map[string]bool `json:"regionFreeShipping"`
}

func ConvertEntityFreeShippingToDto(ss *entity.ShippingSettings) *FreeShipping {
	fs := &FreeShipping{
		Threshold:          money(ss.FreeShippingThreshold),
		RegionFreeShipping: ss.RegionFreeShipping,
	}
	if fs.RegionFreeShipping == nil {
		fs.RegionFreeShipping = map[string]bool{}
	}
	return fs
}

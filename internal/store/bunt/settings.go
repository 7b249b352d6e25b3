package bunt

import (
	"context"
	"errors"
	"fmt"

	"github.com/myshop/myshop-manager/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/tidwall/buntdb"
)

type settingsStore struct {
	*BuntStore
}

func (ss *settingsStore) GetShippingSettings(ctx context.Context) (*entity.ShippingSettings, error) {
	s := &entity.ShippingSettings{}
	err := ss.db.View(func(tx *buntdb.Tx) error {
		return getJSON(tx, settingsKey, s)
	})
	if err != nil {
		return nil, fmt.Errorf("can't get shipping settings: %w", err)
	}
	if s.ShippingFees == nil {
		s.ShippingFees = map[string]decimal.Decimal{}
	}
	if s.RegionFreeShipping == nil {
		s.RegionFreeShipping = map[string]bool{}
	}
	return s, nil
}

// modify applies f to the stored settings within one write transaction.
func (ss *settingsStore) modify(f func(s *entity.ShippingSettings)) error {
	return ss.db.Update(func(tx *buntdb.Tx) error {
		s := &entity.ShippingSettings{}
		if err := getJSON(tx, settingsKey, s); err != nil {
			return err
		}
		f(s)
		return setJSON(tx, settingsKey, s)
	})
}

func (ss *settingsStore) SetShippingFees(ctx context.Context, fees map[string]decimal.Decimal) error {
	err := ss.modify(func(s *entity.ShippingSettings) {
		s.ShippingFees = fees
	})
	if err != nil {
		return fmt.Errorf("can't set shipping fees: %w", err)
	}
	return nil
}

func (ss *settingsStore) SetMainShopTown(ctx context.Context, town string) error {
	err := ss.modify(func(s *entity.ShippingSettings) {
		s.MainShopTown = town
	})
	if err != nil {
		return fmt.Errorf("can't set main shop town: %w", err)
	}
	return nil
}

func (ss *settingsStore) SetFreeShipping(ctx context.Context, threshold decimal.Decimal, regions map[string]bool) error {
	err := ss.modify(func(s *entity.ShippingSettings) {
		s.FreeShippingThreshold = threshold
		if regions != nil {
			s.RegionFreeShipping = regions
		}
	})
	if err != nil {
		return fmt.Errorf("can't set free shipping: %w", err)
	}
	return nil
}

func (ss *settingsStore) GetHeroSection(ctx context.Context) (*entity.HeroSection, error) {
	h := &entity.HeroSection{}
	err := ss.db.View(func(tx *buntdb.Tx) error {
		return getJSON(tx, heroKey, h)
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return entity.DefaultHeroSection(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("can't get hero section: %w", err)
	}
	return h, nil
}

func (ss *settingsStore) SetHeroSection(ctx context.Context, h *entity.HeroSection) error {
	err := ss.db.Update(func(tx *buntdb.Tx) error {
		return setJSON(tx, heroKey, h)
	})
	if err != nil {
		return fmt.Errorf("can't set hero section: %w", err)
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/myshop/myshop-manager/internal/entity"
	"github.com/shopspring/decimal"
)

type settingsStore struct {
	*MYSQLStore
}

type shippingFeeRow struct {
	Town         string          `db:"town"`
	Fee          decimal.Decimal `db:"fee"`
	FreeShipping bool            `db:"free_shipping"`
}

type shopSettingsRow struct {
	MainShopTown          string          `db:"main_shop_town"`
	FreeShippingThreshold decimal.Decimal `db:"free_shipping_threshold"`
}

const shopSettingsId = 1

// seedSettings stores the default shipping settings on an empty database.
func (ms *MYSQLStore) seedSettings(ctx context.Context) error {
	n, err := QueryCountNamed(ctx, ms.DB(), `SELECT COUNT(*) FROM shop_settings`, map[string]any{})
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	def := entity.DefaultShippingSettings()
	return ms.Tx(ctx, func(ctx context.Context, ms *MYSQLStore) error {
		if err := ExecNamed(ctx, ms.DB(), `
		INSERT INTO shop_settings (id, main_shop_town, free_shipping_threshold)
		VALUES (:id, :town, :threshold)`, map[string]any{
			"id":        shopSettingsId,
			"town":      def.MainShopTown,
			"threshold": def.FreeShippingThreshold,
		}); err != nil {
			return fmt.Errorf("can't insert shop settings: %w", err)
		}
		return insertFees(ctx, ms, def.ShippingFees, def.RegionFreeShipping)
	})
}

func insertFees(ctx context.Context, ms *MYSQLStore, fees map[string]decimal.Decimal, free map[string]bool) error {
	rows := make([]map[string]any, 0, len(fees))
	for town, fee := range fees {
		rows = append(rows, map[string]any{
			"town":          town,
			"fee":           fee,
			"free_shipping": free[town],
		})
	}
	if err := BulkInsert(ctx, ms.DB(), "shipping_fee", rows); err != nil {
		return fmt.Errorf("can't insert shipping fees: %w", err)
	}
	return nil
}

func (s *settingsStore) GetShippingSettings(ctx context.Context) (*entity.ShippingSettings, error) {
	shop, err := QueryNamedOne[shopSettingsRow](ctx, s.DB(), `
	SELECT main_shop_town, free_shipping_threshold FROM shop_settings WHERE id = :id`, map[string]any{
		"id": shopSettingsId,
	})
	if err != nil {
		return nil, fmt.Errorf("can't get shop settings: %w", err)
	}
	fees, err := QueryListNamed[shippingFeeRow](ctx, s.DB(), `
	SELECT town, fee, free_shipping FROM shipping_fee ORDER BY town`, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("can't get shipping fees: %w", err)
	}

	ss := &entity.ShippingSettings{
		ShippingFees:          make(map[string]decimal.Decimal, len(fees)),
		MainShopTown:          shop.MainShopTown,
		FreeShippingThreshold: shop.FreeShippingThreshold,
		RegionFreeShipping:    map[string]bool{},
	}
	for _, f := range fees {
		ss.ShippingFees[f.Town] = f.Fee
		if f.FreeShipping {
			ss.RegionFreeShipping[f.Town] = true
		}
	}
	return ss, nil
}

// SetShippingFees replaces the fee table. Free shipping flags survive for
// towns that are still present.
func (s *settingsStore) SetShippingFees(ctx context.Context, fees map[string]decimal.Decimal) error {
	return s.Tx(ctx, func(ctx context.Context, ms *MYSQLStore) error {
		current, err := QueryListNamed[shippingFeeRow](ctx, ms.DB(), `
		SELECT town, fee, free_shipping FROM shipping_fee`, map[string]any{})
		if err != nil {
			return fmt.Errorf("can't get shipping fees: %w", err)
		}
		free := map[string]bool{}
		for _, f := range current {
			free[f.Town] = f.FreeShipping
		}
		if _, err := ms.DB().ExecContext(ctx, `DELETE FROM shipping_fee`); err != nil {
			return fmt.Errorf("can't clear shipping fees: %w", err)
		}
		return insertFees(ctx, ms, fees, free)
	})
}

func (s *settingsStore) SetMainShopTown(ctx context.Context, town string) error {
	err := ExecNamed(ctx, s.DB(), `UPDATE shop_settings SET main_shop_town = :town WHERE id = :id`, map[string]any{
		"id":   shopSettingsId,
		"town": town,
	})
	if err != nil {
		return fmt.Errorf("can't set main shop town: %w", err)
	}
	return nil
}

func (s *settingsStore) SetFreeShipping(ctx context.Context, threshold decimal.Decimal, regions map[string]bool) error {
	return s.Tx(ctx, func(ctx context.Context, ms *MYSQLStore) error {
		err := ExecNamed(ctx, ms.DB(), `
		UPDATE shop_settings SET free_shipping_threshold = :threshold WHERE id = :id`, map[string]any{
			"id":        shopSettingsId,
			"threshold": threshold,
		})
		if err != nil {
			return fmt.Errorf("can't set free shipping threshold: %w", err)
		}
		if regions == nil {
			return nil
		}
		if _, err := ms.DB().ExecContext(ctx, `UPDATE shipping_fee SET free_shipping = FALSE`); err != nil {
			return fmt.Errorf("can't reset free shipping: %w", err)
		}
		for town, free := range regions {
			if !free {
				continue
			}
			err := ExecNamed(ctx, ms.DB(), `
			UPDATE shipping_fee SET free_shipping = TRUE WHERE town = :town`, map[string]any{
				"town": town,
			})
			if err != nil {
				return fmt.Errorf("can't set free shipping for %s: %w", town, err)
			}
		}
		return nil
	})
}

type heroSectionRow struct {
	Badge               string         `db:"badge"`
	Title               string         `db:"title"`
	Description         sql.NullString `db:"description"`
	PrimaryButtonText   string         `db:"primary_button_text"`
	SecondaryButtonText string         `db:"secondary_button_text"`
	BackgroundImage     sql.NullString `db:"background_image"`
}

const heroSectionId = 1

func (s *settingsStore) GetHeroSection(ctx context.Context) (*entity.HeroSection, error) {
	row, err := QueryNamedOne[heroSectionRow](ctx, s.DB(), `
	SELECT badge, title, description, primary_button_text, secondary_button_text, background_image
	FROM hero_section WHERE id = :id`, map[string]any{"id": heroSectionId})
	if errors.Is(err, sql.ErrNoRows) {
		return entity.DefaultHeroSection(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("can't get hero section: %w", err)
	}
	return &entity.HeroSection{
		Badge:               row.Badge,
		Title:               row.Title,
		Description:         row.Description.String,
		PrimaryButtonText:   row.PrimaryButtonText,
		SecondaryButtonText: row.SecondaryButtonText,
		BackgroundImage:     row.BackgroundImage.String,
	}, nil
}

func (s *settingsStore) SetHeroSection(ctx context.Context, h *entity.HeroSection) error {
	err := ExecNamed(ctx, s.DB(), `
	INSERT INTO hero_section (id, badge, title, description, primary_button_text, secondary_button_text, background_image)
	VALUES (:id, :badge, :title, :description, :primary, :secondary, :background)
	ON DUPLICATE KEY UPDATE
		badge = VALUES(badge),
		title = VALUES(title),
		description = VALUES(description),
		primary_button_text = VALUES(primary_button_text),
		secondary_button_text = VALUES(secondary_button_text),
		background_image = VALUES(background_image)`, map[string]any{
		"id":          heroSectionId,
		"badge":       h.Badge,
		"title":       h.Title,
		"description": h.Description,
		"primary":     h.PrimaryButtonText,
		"secondary":   h.SecondaryButtonText,
		"background":  h.BackgroundImage,
	})
	if err != nil {
		return fmt.Errorf("can't set hero section: %w", err)
	}
	return nil
}

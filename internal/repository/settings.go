package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ironkart/ironkart/internal/domain/pricing"
)

const (
	listTaxSettingsSQL = `SELECT id, COALESCE(product_id, ''), state, tax_percentage, is_default, updated_at
		FROM tax_settings ORDER BY state, product_id NULLS FIRST`

	insertTaxSettingSQL = `INSERT INTO tax_settings (id, product_id, state, tax_percentage, is_default)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5)`

	deleteTaxSettingSQL = `DELETE FROM tax_settings WHERE id = $1`

	listShippingSettingsSQL = `SELECT id, COALESCE(product_id, ''), state, shipping_charge,
		free_shipping_threshold, is_default, updated_at
		FROM shipping_settings ORDER BY state, product_id NULLS FIRST`

	insertShippingSettingSQL = `INSERT INTO shipping_settings
		(id, product_id, state, shipping_charge, free_shipping_threshold, is_default)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)`

	deleteShippingSettingSQL = `DELETE FROM shipping_settings WHERE id = $1`

	listGlobalSettingsSQL = `SELECT setting_key, setting_value, description, updated_at
		FROM global_settings ORDER BY setting_key`

	upsertGlobalSettingSQL = `INSERT INTO global_settings (setting_key, setting_value, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (setting_key)
		DO UPDATE SET setting_value = EXCLUDED.setting_value,
			description = EXCLUDED.description, updated_at = now()`
)

var _ pricing.SettingsRepository = (*SettingsRepository)(nil)

// SettingsRepository implements pricing.SettingsRepository backed by PostgreSQL.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository returns a SettingsRepository that uses the given pool.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// ListTax returns all configured tax settings.
func (r *SettingsRepository) ListTax(ctx context.Context) ([]pricing.TaxSetting, error) {
	rows, err := r.pool.Query(ctx, listTaxSettingsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing tax settings: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (pricing.TaxSetting, error) {
		var s pricing.TaxSetting
		err := row.Scan(&s.ID, &s.ProductID, &s.State, &s.TaxPercentage, &s.IsDefault, &s.UpdatedAt)
		return s, err
	})
}

// CreateTax inserts a new tax setting.
func (r *SettingsRepository) CreateTax(ctx context.Context, s *pricing.TaxSetting) error {
	_, err := r.pool.Exec(ctx, insertTaxSettingSQL,
		s.ID, s.ProductID, s.State, s.TaxPercentage, s.IsDefault,
	)
	if err != nil {
		return fmt.Errorf("creating tax setting: %w", err)
	}
	return nil
}

// DeleteTax removes a tax setting by ID.
func (r *SettingsRepository) DeleteTax(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteTaxSettingSQL, id)
	if err != nil {
		return fmt.Errorf("deleting tax setting %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return pricing.ErrSettingNotFound
	}
	return nil
}

// ListShipping returns all configured shipping settings.
func (r *SettingsRepository) ListShipping(ctx context.Context) ([]pricing.ShippingSetting, error) {
	rows, err := r.pool.Query(ctx, listShippingSettingsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing shipping settings: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (pricing.ShippingSetting, error) {
		var s pricing.ShippingSetting
		err := row.Scan(&s.ID, &s.ProductID, &s.State, &s.ShippingCharge,
			&s.FreeShippingThreshold, &s.IsDefault, &s.UpdatedAt)
		return s, err
	})
}

// CreateShipping inserts a new shipping setting.
func (r *SettingsRepository) CreateShipping(ctx context.Context, s *pricing.ShippingSetting) error {
	_, err := r.pool.Exec(ctx, insertShippingSettingSQL,
		s.ID, s.ProductID, s.State, s.ShippingCharge, s.FreeShippingThreshold, s.IsDefault,
	)
	if err != nil {
		return fmt.Errorf("creating shipping setting: %w", err)
	}
	return nil
}

// DeleteShipping removes a shipping setting by ID.
func (r *SettingsRepository) DeleteShipping(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteShippingSettingSQL, id)
	if err != nil {
		return fmt.Errorf("deleting shipping setting %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return pricing.ErrSettingNotFound
	}
	return nil
}

// ListGlobal returns all global settings.
func (r *SettingsRepository) ListGlobal(ctx context.Context) ([]pricing.GlobalSetting, error) {
	rows, err := r.pool.Query(ctx, listGlobalSettingsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing global settings: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (pricing.GlobalSetting, error) {
		var s pricing.GlobalSetting
		err := row.Scan(&s.Key, &s.Value, &s.Description, &s.UpdatedAt)
		return s, err
	})
}

// UpsertGlobal inserts or updates a global setting by key.
func (r *SettingsRepository) UpsertGlobal(ctx context.Context, s *pricing.GlobalSetting) error {
	_, err := r.pool.Exec(ctx, upsertGlobalSettingSQL, s.Key, s.Value, s.Description)
	if err != nil {
		return fmt.Errorf("upserting global setting %q: %w", s.Key, err)
	}
	return nil
}

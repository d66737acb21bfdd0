package pricing

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrSettingNotFound is returned when a setting targeted by an update or
// delete does not exist.
var ErrSettingNotFound = errors.New("setting not found")

// TaxSetting configures the tax percentage for a state, optionally scoped to
// a single product. An empty ProductID means the setting covers the whole
// state; IsDefault marks the state's fallback row.
type TaxSetting struct {
	ID            string
	ProductID     string
	State         string
	TaxPercentage decimal.Decimal
	IsDefault     bool
	UpdatedAt     time.Time
}

// Validate checks the invariants enforced on admin tax-setting writes.
func (s TaxSetting) Validate() error {
	if strings.TrimSpace(s.State) == "" {
		return errors.New("state must not be empty")
	}
	if !s.TaxPercentage.IsPositive() {
		return errors.New("tax percentage must be greater than 0")
	}
	return nil
}

// ShippingSetting configures the flat shipping charge and free-shipping
// threshold for a state, optionally scoped to a single product.
type ShippingSetting struct {
	ID                    string
	ProductID             string
	State                 string
	ShippingCharge        decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	IsDefault             bool
	UpdatedAt             time.Time
}

// Validate checks the invariants enforced on admin shipping-setting writes.
func (s ShippingSetting) Validate() error {
	if strings.TrimSpace(s.State) == "" {
		return errors.New("state must not be empty")
	}
	if s.ShippingCharge.IsNegative() {
		return errors.New("shipping charge must not be negative")
	}
	if s.FreeShippingThreshold.IsNegative() {
		return errors.New("free shipping threshold must not be negative")
	}
	return nil
}

// GlobalSetting is a free-form key/value pair read by the resolver for
// store-wide defaults.
type GlobalSetting struct {
	Key         string
	Value       string
	Description string
	UpdatedAt   time.Time
}

// Global setting keys the resolver understands.
const (
	KeyDefaultTaxPercentage  = "default_tax_percentage"
	KeyDefaultShippingRate   = "default_shipping_rate"
	KeyMinShippingFee        = "min_shipping_fee"
	KeyFreeShippingThreshold = "free_shipping_threshold"
)

// SettingsRepository provides CRUD over the configured pricing rules.
type SettingsRepository interface {
	ListTax(ctx context.Context) ([]TaxSetting, error)
	CreateTax(ctx context.Context, s *TaxSetting) error
	DeleteTax(ctx context.Context, id string) error

	ListShipping(ctx context.Context) ([]ShippingSetting, error)
	CreateShipping(ctx context.Context, s *ShippingSetting) error
	DeleteShipping(ctx context.Context, id string) error

	ListGlobal(ctx context.Context) ([]GlobalSetting, error)
	UpsertGlobal(ctx context.Context, s *GlobalSetting) error
}

package pricing

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Line is a cart line item reduced to what the resolver needs.
type Line struct {
	ProductID string
	Subtotal  decimal.Decimal
}

// Resolver turns the configured settings tables into concrete Rates. The
// precedence per concern is: product+state row, then state default row, then
// global settings, then built-in defaults. Settings-layer failures degrade to
// the built-in defaults so a quote is always produced.
type Resolver struct {
	settings SettingsRepository
}

// NewResolver creates a Resolver over the given settings repository. A nil
// repository always resolves the built-in defaults.
func NewResolver(settings SettingsRepository) *Resolver {
	return &Resolver{settings: settings}
}

// QuoteCart computes the full quote for a cart shipped to the given state.
// Tax is resolved per line (product-specific settings apply to their line
// only); shipping is resolved once against the whole subtotal, from the
// highest-precedence shipping setting among the cart's products.
func (r *Resolver) QuoteCart(ctx context.Context, lines []Line, state string) Quote {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal)
	}

	base := r.baseRates(ctx)
	shipRates := r.shippingRates(ctx, base, state, lines)

	// Shipping and threshold from the state-level resolution.
	q := Compute(subtotal, shipRates)

	// Recompute tax line by line so product-scoped tax settings apply.
	taxSettings := r.taxSettings(ctx)
	if len(taxSettings) > 0 {
		tax := decimal.Zero
		for _, l := range lines {
			pct := resolveTaxPercentage(taxSettings, l.ProductID, state, base.TaxPercentage)
			tax = tax.Add(l.Subtotal.Mul(pct).Div(hundred))
		}
		q.Tax = tax.Round(2)
		q.Total = q.Subtotal.Add(q.Shipping).Add(q.Tax).Round(2)
	}

	return q
}

// baseRates loads global settings on top of the built-in defaults.
func (r *Resolver) baseRates(ctx context.Context) Rates {
	rates := DefaultRates()
	if r.settings == nil {
		return rates
	}

	globals, err := r.settings.ListGlobal(ctx)
	if err != nil {
		zctx.From(ctx).Warn("global settings unavailable, using defaults", zap.Error(err))
		return rates
	}

	for _, g := range globals {
		v, err := decimal.NewFromString(g.Value)
		if err != nil {
			zctx.From(ctx).Warn("unparsable global setting",
				zap.String("key", g.Key),
				zap.String("value", g.Value),
			)
			continue
		}
		switch g.Key {
		case KeyDefaultTaxPercentage:
			rates.TaxPercentage = v
		case KeyDefaultShippingRate:
			rates.ShippingRate = v
		case KeyMinShippingFee:
			rates.MinShippingFee = v
		case KeyFreeShippingThreshold:
			rates.FreeShippingThreshold = v
		}
	}
	return rates
}

// shippingRates applies the best-matching shipping setting for the state on
// top of the base rates. A configured row carries a flat charge and its own
// free-shipping threshold. A row scoped to a product in the cart beats the
// state default; when several cart products carry their own row, the highest
// charge wins, since the order ships as one parcel.
func (r *Resolver) shippingRates(ctx context.Context, base Rates, state string, lines []Line) Rates {
	if r.settings == nil || state == "" {
		return base
	}

	settings, err := r.settings.ListShipping(ctx)
	if err != nil {
		zctx.From(ctx).Warn("shipping settings unavailable, using defaults", zap.Error(err))
		return base
	}

	inCart := make(map[string]bool, len(lines))
	for _, l := range lines {
		inCart[l.ProductID] = true
	}

	var productMatch, stateDefault *ShippingSetting
	for i := range settings {
		s := &settings[i]
		if s.State != state {
			continue
		}
		if s.ProductID != "" {
			if !inCart[s.ProductID] {
				continue
			}
			if productMatch == nil || s.ShippingCharge.GreaterThan(productMatch.ShippingCharge) {
				productMatch = s
			}
			continue
		}
		if stateDefault == nil || (s.IsDefault && !stateDefault.IsDefault) {
			stateDefault = s
		}
	}

	match := productMatch
	if match == nil {
		match = stateDefault
	}
	if match == nil {
		return base
	}

	charge := match.ShippingCharge
	base.FlatShippingCharge = &charge
	base.FreeShippingThreshold = match.FreeShippingThreshold
	return base
}

func (r *Resolver) taxSettings(ctx context.Context) []TaxSetting {
	if r.settings == nil {
		return nil
	}
	settings, err := r.settings.ListTax(ctx)
	if err != nil {
		zctx.From(ctx).Warn("tax settings unavailable, using defaults", zap.Error(err))
		return nil
	}
	return settings
}

// resolveTaxPercentage picks the tax percentage for one product line:
// product+state match first, then the state default row, then fallback.
func resolveTaxPercentage(settings []TaxSetting, productID, state string, fallback decimal.Decimal) decimal.Decimal {
	var stateDefault *TaxSetting
	for i := range settings {
		s := &settings[i]
		if s.State != state {
			continue
		}
		if s.ProductID == productID && productID != "" {
			return s.TaxPercentage
		}
		if s.ProductID == "" {
			if stateDefault == nil || (s.IsDefault && !stateDefault.IsDefault) {
				stateDefault = s
			}
		}
	}
	if stateDefault != nil {
		return stateDefault.TaxPercentage
	}
	return fallback
}

// Package pricing computes shipping and tax for a cart subtotal.
//
// Rates come from one authoritative resolver: configured per-product and
// per-state settings with a fallback chain down to built-in defaults. The
// quote itself is a pure function of (subtotal, rates).
package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Built-in defaults, applied when no configured setting matches.
var (
	defaultTaxPercentage         = decimal.NewFromInt(5)
	defaultShippingRate          = decimal.NewFromInt(5)
	defaultMinShippingFee        = decimal.NewFromInt(100)
	defaultFreeShippingThreshold = decimal.NewFromInt(50000)
)

// Rates holds the resolved pricing rules for a single quote.
type Rates struct {
	// TaxPercentage is applied to the subtotal (e.g. 5 means 5%).
	TaxPercentage decimal.Decimal
	// FreeShippingThreshold waives shipping entirely at or above this subtotal.
	FreeShippingThreshold decimal.Decimal
	// ShippingRate is the percentage of subtotal charged for shipping.
	ShippingRate decimal.Decimal
	// MinShippingFee floors the computed shipping charge.
	MinShippingFee decimal.Decimal
	// FlatShippingCharge, when set, replaces the percentage computation below
	// the free-shipping threshold.
	FlatShippingCharge *decimal.Decimal
}

// DefaultRates returns the built-in rates: 5% tax, free shipping at 50000,
// otherwise max(100, 5% of subtotal).
func DefaultRates() Rates {
	return Rates{
		TaxPercentage:         defaultTaxPercentage,
		FreeShippingThreshold: defaultFreeShippingThreshold,
		ShippingRate:          defaultShippingRate,
		MinShippingFee:        defaultMinShippingFee,
	}
}

// Quote holds the derived pricing for a cart.
type Quote struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Compute derives shipping, tax, and total from a subtotal and rates. All
// amounts are rounded to 2 decimal places.
func Compute(subtotal decimal.Decimal, r Rates) Quote {
	if !subtotal.IsPositive() {
		// Nothing to ship or tax on an empty cart.
		return Quote{
			Subtotal: decimal.Zero,
			Shipping: decimal.Zero,
			Tax:      decimal.Zero,
			Total:    decimal.Zero,
		}
	}

	shipping := decimal.Zero
	if subtotal.LessThan(r.FreeShippingThreshold) {
		if r.FlatShippingCharge != nil {
			shipping = *r.FlatShippingCharge
		} else {
			shipping = decimal.Max(r.MinShippingFee, subtotal.Mul(r.ShippingRate).Div(hundred))
		}
	}
	shipping = shipping.Round(2)

	tax := subtotal.Mul(r.TaxPercentage).Div(hundred).Round(2)

	return Quote{
		Subtotal: subtotal.Round(2),
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax).Round(2),
	}
}

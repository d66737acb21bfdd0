package pricing

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
)

type mockSettingsRepo struct {
	tax      []TaxSetting
	shipping []ShippingSetting
	global   []GlobalSetting

	taxErr      error
	shippingErr error
	globalErr   error
}

func (m *mockSettingsRepo) ListTax(context.Context) ([]TaxSetting, error) {
	return m.tax, m.taxErr
}
func (m *mockSettingsRepo) CreateTax(context.Context, *TaxSetting) error { return nil }
func (m *mockSettingsRepo) DeleteTax(context.Context, string) error      { return nil }

func (m *mockSettingsRepo) ListShipping(context.Context) ([]ShippingSetting, error) {
	return m.shipping, m.shippingErr
}
func (m *mockSettingsRepo) CreateShipping(context.Context, *ShippingSetting) error { return nil }
func (m *mockSettingsRepo) DeleteShipping(context.Context, string) error           { return nil }

func (m *mockSettingsRepo) ListGlobal(context.Context) ([]GlobalSetting, error) {
	return m.global, m.globalErr
}
func (m *mockSettingsRepo) UpsertGlobal(context.Context, *GlobalSetting) error { return nil }

func lines(subtotals ...string) []Line {
	out := make([]Line, len(subtotals))
	for i, s := range subtotals {
		out[i] = Line{ProductID: "p" + string(rune('1'+i)), Subtotal: dec(s)}
	}
	return out
}

func TestResolver_NilRepositoryUsesDefaults(t *testing.T) {
	r := NewResolver(nil)

	q := r.QuoteCart(context.Background(), lines("20000"), "KA")

	assertDecEqual(t, "1000", q.Shipping)
	assertDecEqual(t, "1000", q.Tax)
	assertDecEqual(t, "22000", q.Total)
}

func TestResolver_GlobalSettingsOverrideDefaults(t *testing.T) {
	r := NewResolver(&mockSettingsRepo{
		global: []GlobalSetting{
			{Key: KeyDefaultTaxPercentage, Value: "18"},
			{Key: KeyFreeShippingThreshold, Value: "10000"},
		},
	})

	q := r.QuoteCart(context.Background(), lines("20000"), "KA")

	// Above the configured 10000 threshold: free shipping, 18% tax.
	assertDecEqual(t, "0", q.Shipping)
	assertDecEqual(t, "3600", q.Tax)
	assertDecEqual(t, "23600", q.Total)
}

func TestResolver_UnparsableGlobalSettingIgnored(t *testing.T) {
	r := NewResolver(&mockSettingsRepo{
		global: []GlobalSetting{{Key: KeyDefaultTaxPercentage, Value: "lots"}},
	})

	q := r.QuoteCart(context.Background(), lines("20000"), "KA")

	assertDecEqual(t, "1000", q.Tax)
}

func TestResolver_SettingsFailureDegradesToDefaults(t *testing.T) {
	r := NewResolver(&mockSettingsRepo{
		globalErr:   errors.New("db down"),
		taxErr:      errors.New("db down"),
		shippingErr: errors.New("db down"),
	})

	q := r.QuoteCart(context.Background(), lines("85000"), "KA")

	// A quote is always produced.
	assertDecEqual(t, "0", q.Shipping)
	assertDecEqual(t, "4250", q.Tax)
	assertDecEqual(t, "89250", q.Total)
}

func TestResolver_StateShippingSettingApplies(t *testing.T) {
	r := NewResolver(&mockSettingsRepo{
		shipping: []ShippingSetting{
			{ID: "s1", State: "KA", ShippingCharge: dec("300"), FreeShippingThreshold: dec("30000"), IsDefault: true},
		},
	})

	// Below the state threshold: flat 300.
	q := r.QuoteCart(context.Background(), lines("20000"), "KA")
	assertDecEqual(t, "300", q.Shipping)

	// Above the state threshold: free.
	q = r.QuoteCart(context.Background(), lines("35000"), "KA")
	assertDecEqual(t, "0", q.Shipping)

	// Other states fall back to the defaults.
	q = r.QuoteCart(context.Background(), lines("20000"), "MH")
	assertDecEqual(t, "1000", q.Shipping)
}

func TestResolver_ProductShippingBeatsStateDefault(t *testing.T) {
	r := NewResolver(&mockSettingsRepo{
		shipping: []ShippingSetting{
			{ID: "s1", State: "KA", ShippingCharge: dec("300"), FreeShippingThreshold: dec("30000"), IsDefault: true},
			{ID: "s2", State: "KA", ProductID: "p1", ShippingCharge: dec("2500"), FreeShippingThreshold: dec("100000")},
		},
	})

	// p1 in the cart: its row wins over the state default, including the
	// row's own free-shipping threshold.
	q := r.QuoteCart(context.Background(), []Line{
		{ProductID: "p1", Subtotal: dec("20000")},
		{ProductID: "p2", Subtotal: dec("15000")},
	}, "KA")
	assertDecEqual(t, "2500", q.Shipping)

	// p1 absent: its row is ignored and the state default applies.
	q = r.QuoteCart(context.Background(), []Line{
		{ProductID: "p2", Subtotal: dec("20000")},
	}, "KA")
	assertDecEqual(t, "300", q.Shipping)
}

func TestResolver_HighestProductShippingChargeWins(t *testing.T) {
	r := NewResolver(&mockSettingsRepo{
		shipping: []ShippingSetting{
			{ID: "s1", State: "KA", ProductID: "p1", ShippingCharge: dec("800"), FreeShippingThreshold: dec("50000")},
			{ID: "s2", State: "KA", ProductID: "p2", ShippingCharge: dec("2500"), FreeShippingThreshold: dec("50000")},
		},
	})

	// One parcel: the bulkier product's charge covers the order.
	q := r.QuoteCart(context.Background(), []Line{
		{ProductID: "p1", Subtotal: dec("10000")},
		{ProductID: "p2", Subtotal: dec("10000")},
	}, "KA")
	assertDecEqual(t, "2500", q.Shipping)
}

func TestResolver_ProductTaxBeatsStateDefault(t *testing.T) {
	r := NewResolver(&mockSettingsRepo{
		tax: []TaxSetting{
			{ID: "t1", State: "KA", TaxPercentage: dec("12"), IsDefault: true},
			{ID: "t2", State: "KA", ProductID: "p1", TaxPercentage: dec("28")},
		},
	})

	q := r.QuoteCart(context.Background(), []Line{
		{ProductID: "p1", Subtotal: dec("10000")},
		{ProductID: "p2", Subtotal: dec("10000")},
	}, "KA")

	// p1 taxed at 28%, p2 at the state default 12%.
	assertDecEqual(t, "4000", q.Tax)
}

func TestResolver_StateTaxFallsBackToGlobal(t *testing.T) {
	r := NewResolver(&mockSettingsRepo{
		tax: []TaxSetting{
			{ID: "t1", State: "MH", TaxPercentage: dec("12"), IsDefault: true},
		},
	})

	q := r.QuoteCart(context.Background(), lines("10000"), "KA")

	// No KA rule: built-in 5% applies.
	assertDecEqual(t, "500", q.Tax)
}

func TestResolver_EmptyCart(t *testing.T) {
	r := NewResolver(nil)

	q := r.QuoteCart(context.Background(), nil, "KA")

	assert.True(t, q.Total.IsZero())
	assert.True(t, q.Shipping.IsZero())
}

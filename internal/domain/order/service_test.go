package order

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironkart/ironkart/internal/domain/cart"
	"github.com/ironkart/ironkart/internal/domain/pricing"
)

// --- Mock implementations ---

type mockGateway struct {
	lastAmount decimal.Decimal
	err        error
}

func (m *mockGateway) Charge(_ context.Context, amount decimal.Decimal, _ string) (*PaymentResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastAmount = amount
	return &PaymentResult{PaymentID: "SIM-test"}, nil
}

type mockOrderRepo struct {
	lastCustomer *Customer
	lastOrder    *Order
	createErr    error
}

func (m *mockOrderRepo) CreateCheckout(_ context.Context, c *Customer, o *Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.lastCustomer = c
	m.lastOrder = o
	return nil
}

func (m *mockOrderRepo) List(context.Context) ([]Order, error) { return nil, nil }

func (m *mockOrderRepo) GetByID(context.Context, string) (*Order, error) {
	return nil, ErrNotFound
}
func (m *mockOrderRepo) UpdateStatus(context.Context, string, string, string) error {
	return nil
}

// --- Helpers ---

func validRequest() CheckoutRequest {
	return CheckoutRequest{
		SessionID:  "sess",
		FullName:   "Asha Rao",
		Phone:      "9876543210",
		Address:    "12 MG Road",
		City:       "Bengaluru",
		State:      "KA",
		Pincode:    "560001",
		AgreeTerms: true,
	}
}

func storeWithCart(t *testing.T, items ...cart.LineItem) *cart.Store {
	t.Helper()
	s := cart.NewStore(nil)
	for _, li := range items {
		require.NoError(t, s.AddItem(context.Background(), "sess", li.Product, li.Quantity))
	}
	return s
}

func line(id, price string, qty int) cart.LineItem {
	return cart.LineItem{
		Product: cart.ProductSnapshot{
			ID:    id,
			Name:  "Product " + id,
			Price: decimal.RequireFromString(price),
		},
		Quantity: qty,
	}
}

func newCheckoutService(carts *cart.Store, gw PaymentGateway, repo Repository) *Service {
	return NewService(carts, pricing.NewResolver(nil), gw, repo)
}

// --- Tests ---

func TestCheckout_MissingRequiredFields(t *testing.T) {
	svc := newCheckoutService(storeWithCart(t, line("p1", "100", 1)), &mockGateway{}, &mockOrderRepo{})

	fields := []struct {
		name   string
		mutate func(*CheckoutRequest)
	}{
		{"fullName", func(r *CheckoutRequest) { r.FullName = "" }},
		{"phone", func(r *CheckoutRequest) { r.Phone = "  " }},
		{"address", func(r *CheckoutRequest) { r.Address = "" }},
		{"city", func(r *CheckoutRequest) { r.City = "" }},
		{"state", func(r *CheckoutRequest) { r.State = "" }},
		{"pincode", func(r *CheckoutRequest) { r.Pincode = "" }},
	}
	for _, f := range fields {
		req := validRequest()
		f.mutate(&req)

		_, err := svc.Checkout(context.Background(), req)

		var missing *MissingFieldError
		require.ErrorAs(t, err, &missing, "field %s", f.name)
		assert.Equal(t, f.name, missing.Field)
	}
}

func TestCheckout_EmailIsOptional(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := newCheckoutService(storeWithCart(t, line("p1", "20000", 1)), &mockGateway{}, repo)

	req := validRequest()
	req.Email = ""

	_, err := svc.Checkout(context.Background(), req)
	require.NoError(t, err)
}

func TestCheckout_TermsNotAccepted(t *testing.T) {
	svc := newCheckoutService(storeWithCart(t, line("p1", "100", 1)), &mockGateway{}, &mockOrderRepo{})

	req := validRequest()
	req.AgreeTerms = false

	_, err := svc.Checkout(context.Background(), req)
	require.ErrorIs(t, err, ErrTermsNotAccepted)
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc := newCheckoutService(cart.NewStore(nil), &mockGateway{}, &mockOrderRepo{})

	_, err := svc.Checkout(context.Background(), validRequest())
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_Success(t *testing.T) {
	gw := &mockGateway{}
	repo := &mockOrderRepo{}
	svc := newCheckoutService(storeWithCart(t, line("p1", "85000", 1)), gw, repo)

	o, err := svc.Checkout(context.Background(), validRequest())
	require.NoError(t, err)

	// Free shipping above 50000, 5% tax.
	assert.True(t, o.Subtotal.Equal(decimal.RequireFromString("85000")))
	assert.True(t, o.Shipping.IsZero())
	assert.True(t, o.Tax.Equal(decimal.RequireFromString("4250")))
	assert.True(t, o.Total.Equal(decimal.RequireFromString("89250")))
	assert.True(t, gw.lastAmount.Equal(o.Total))

	assert.Equal(t, StatusConfirmed, o.Status)
	assert.Equal(t, PaymentPaid, o.PaymentStatus)
	assert.Equal(t, "SIM-test", o.PaymentID)
	assert.True(t, strings.HasPrefix(o.Number, "ORD-"))

	require.NotNil(t, repo.lastOrder)
	require.NotNil(t, repo.lastCustomer)
	assert.Equal(t, "Asha Rao", repo.lastCustomer.Name)
	assert.Contains(t, repo.lastCustomer.Address, "Bengaluru")
}

func TestCheckout_ItemsSnapshotNameAndPrice(t *testing.T) {
	repo := &mockOrderRepo{}
	svc := newCheckoutService(storeWithCart(t, line("p1", "14500", 2)), &mockGateway{}, repo)

	o, err := svc.Checkout(context.Background(), validRequest())
	require.NoError(t, err)

	require.Len(t, o.Items, 1)
	it := o.Items[0]
	assert.Equal(t, "p1", it.ProductID)
	assert.Equal(t, "Product p1", it.ProductName)
	assert.True(t, it.ProductPrice.Equal(decimal.RequireFromString("14500")))
	assert.Equal(t, 2, it.Quantity)
	assert.True(t, it.Subtotal.Equal(decimal.RequireFromString("29000")))
	assert.Equal(t, o.ID, it.OrderID)
}

func TestCheckout_PaymentDeclined(t *testing.T) {
	carts := storeWithCart(t, line("p1", "100", 1))
	repo := &mockOrderRepo{}
	svc := newCheckoutService(carts, &mockGateway{err: ErrPaymentDeclined}, repo)

	_, err := svc.Checkout(context.Background(), validRequest())
	require.ErrorIs(t, err, ErrPaymentDeclined)

	// Nothing persisted, cart untouched.
	assert.Nil(t, repo.lastOrder)
	assert.Equal(t, 1, carts.Get(context.Background(), "sess").ItemCount())
}

func TestCheckout_PersistFailureKeepsCart(t *testing.T) {
	carts := storeWithCart(t, line("p1", "100", 1))
	repo := &mockOrderRepo{createErr: errors.New("db down")}
	svc := newCheckoutService(carts, &mockGateway{}, repo)

	_, err := svc.Checkout(context.Background(), validRequest())
	require.Error(t, err)

	assert.Equal(t, 1, carts.Get(context.Background(), "sess").ItemCount())
}

func TestCheckout_ClearsCartOnSuccess(t *testing.T) {
	carts := storeWithCart(t, line("p1", "100", 1))
	svc := newCheckoutService(carts, &mockGateway{}, &mockOrderRepo{})

	_, err := svc.Checkout(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, carts.Get(context.Background(), "sess").IsEmpty())
}

func TestOrderNumberFormat(t *testing.T) {
	svc := newCheckoutService(cart.NewStore(nil), &mockGateway{}, &mockOrderRepo{})
	svc.now = func() time.Time { return time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC) }

	n := svc.orderNumber()

	assert.True(t, strings.HasPrefix(n, "ORD-20250314-"))
	assert.Len(t, n, len("ORD-20250314-")+6)
}

func TestSimulatedGateway_Charge(t *testing.T) {
	gw := NewSimulatedGateway(0)

	res, err := gw.Charge(context.Background(), decimal.NewFromInt(100), "card")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.PaymentID, "SIM-"))
}

func TestSimulatedGateway_RejectsNonPositiveAmount(t *testing.T) {
	gw := NewSimulatedGateway(0)

	_, err := gw.Charge(context.Background(), decimal.Zero, "card")
	assert.Error(t, err)
}

func TestSimulatedGateway_HonorsContextCancellation(t *testing.T) {
	gw := NewSimulatedGateway(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gw.Charge(ctx, decimal.NewFromInt(100), "card")
	require.ErrorIs(t, err, context.Canceled)
}

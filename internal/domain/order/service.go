package order

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/ironkart/ironkart/internal/domain/cart"
	"github.com/ironkart/ironkart/internal/domain/pricing"
)

// Sentinel errors for checkout validation.
var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrTermsNotAccepted = errors.New("terms and conditions must be accepted")
)

// MissingFieldError indicates a required delivery form field was left blank.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// CheckoutRequest holds the delivery form and the session whose cart is being
// purchased.
type CheckoutRequest struct {
	SessionID  string
	FullName   string
	Email      string
	Phone      string
	Address    string
	City       string
	State      string
	Pincode    string
	Notes      string
	AgreeTerms bool
}

// validate mirrors the storefront form rules: name, phone, address, city,
// state, and pincode are required, email is optional, and the terms checkbox
// must be ticked.
func (r CheckoutRequest) validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"fullName", r.FullName},
		{"phone", r.Phone},
		{"address", r.Address},
		{"city", r.City},
		{"state", r.State},
		{"pincode", r.Pincode},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &MissingFieldError{Field: f.name}
		}
	}
	if !r.AgreeTerms {
		return ErrTermsNotAccepted
	}
	return nil
}

// Service encapsulates checkout business logic.
type Service struct {
	carts    *cart.Store
	pricing  *pricing.Resolver
	payments PaymentGateway
	orders   Repository
	now      func() time.Time
}

// NewService creates a checkout Service with the required collaborators.
func NewService(
	carts *cart.Store,
	resolver *pricing.Resolver,
	payments PaymentGateway,
	orders Repository,
) *Service {
	return &Service{
		carts:    carts,
		pricing:  resolver,
		payments: payments,
		orders:   orders,
		now:      time.Now,
	}
}

// Checkout validates the delivery form, quotes the session's cart, charges
// the payment gateway, persists customer + order + items in one transaction,
// and clears the cart on success.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*Order, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	c := s.carts.Get(ctx, req.SessionID)
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	items := c.Items()
	lines := make([]pricing.Line, len(items))
	for i, li := range items {
		lines[i] = pricing.Line{
			ProductID: li.Product.ID,
			Subtotal:  li.Subtotal(),
		}
	}
	quote := s.pricing.QuoteCart(ctx, lines, req.State)

	payment, err := s.payments.Charge(ctx, quote.Total, "card")
	if err != nil {
		if errors.Is(err, ErrPaymentDeclined) {
			return nil, ErrPaymentDeclined
		}
		return nil, errors.Wrap(err, "charge payment")
	}

	customer := &Customer{
		ID:      uuid.New().String(),
		Name:    req.FullName,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: formatAddress(req),
	}

	o := &Order{
		ID:            uuid.New().String(),
		Number:        s.orderNumber(),
		CustomerID:    customer.ID,
		Subtotal:      quote.Subtotal,
		Shipping:      quote.Shipping,
		Tax:           quote.Tax,
		Total:         quote.Total,
		Status:        StatusConfirmed,
		PaymentStatus: PaymentPaid,
		PaymentMethod: "card",
		PaymentID:     payment.PaymentID,
		Notes:         req.Notes,
	}
	o.Items = make([]Item, len(items))
	for i, li := range items {
		o.Items[i] = Item{
			ID:           uuid.New().String(),
			OrderID:      o.ID,
			ProductID:    li.Product.ID,
			ProductName:  li.Product.Name,
			ProductPrice: li.Product.Price,
			Quantity:     li.Quantity,
			Subtotal:     li.Subtotal(),
		}
	}

	if err := s.orders.CreateCheckout(ctx, customer, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	// Persistence succeeded; the cart is spent. A failed clear only leaves a
	// stale badge, so the error is not surfaced to the buyer.
	_ = s.carts.Clear(ctx, req.SessionID)

	return o, nil
}

// orderNumber generates a human-readable order number: ORD-YYYYMMDD-NNNNNN.
func (s *Service) orderNumber() string {
	return fmt.Sprintf("ORD-%s-%06d", s.now().Format("20060102"), rand.IntN(1_000_000))
}

func formatAddress(req CheckoutRequest) string {
	return fmt.Sprintf("%s, %s, %s %s", req.Address, req.City, req.State, req.Pincode)
}

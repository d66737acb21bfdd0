package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrPaymentDeclined is returned when the payment collaborator refuses the
// charge.
var ErrPaymentDeclined = errors.New("payment declined")

// PaymentResult holds the gateway's reference for a successful charge.
type PaymentResult struct {
	PaymentID string
}

// PaymentGateway is the external payment confirmation collaborator. Checkout
// never embeds payment logic inline.
type PaymentGateway interface {
	Charge(ctx context.Context, amount decimal.Decimal, method string) (*PaymentResult, error)
}

// SimulatedGateway approves every charge after a fixed processing delay. It
// stands in for a real gateway integration.
type SimulatedGateway struct {
	delay time.Duration
}

// NewSimulatedGateway creates a gateway that waits the given delay per charge.
func NewSimulatedGateway(delay time.Duration) *SimulatedGateway {
	return &SimulatedGateway{delay: delay}
}

// Charge waits the configured delay, honoring context cancellation, and
// returns a synthetic payment reference.
func (g *SimulatedGateway) Charge(ctx context.Context, amount decimal.Decimal, _ string) (*PaymentResult, error) {
	if !amount.IsPositive() {
		return nil, errors.New("charge amount must be positive")
	}

	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return &PaymentResult{
		PaymentID: fmt.Sprintf("SIM-%s", uuid.New().String()),
	}, nil
}

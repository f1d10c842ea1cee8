// internal/app/system/payments/stripe.go
package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/helal366/flexora-server/internal/app/system/apperr"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"go.uber.org/zap"
)

// StripeProcessor implements Processor against the Stripe API.
type StripeProcessor struct {
	log *zap.Logger
}

// NewStripeProcessor sets the package-level API key. Stripe's Go client keys
// every call off this global, so construction owns it.
func NewStripeProcessor(secretKey string, logger *zap.Logger) (*StripeProcessor, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}
	stripe.Key = secretKey
	return &StripeProcessor{log: logger}, nil
}

// CreateIntent creates a card payment intent for the given whole-unit USD
// amount. An idempotency key guards against double charges on client retries.
func (p *StripeProcessor) CreateIntent(ctx context.Context, amount int64) (Intent, error) {
	if amount <= 0 {
		return Intent{}, apperr.E(apperr.InvalidInput, "amount must be positive")
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount * 100),
		Currency:           stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(uuid.NewString())

	pi, err := paymentintent.New(params)
	if err != nil {
		p.log.Error("payment intent creation failed", zap.Error(err))
		return Intent{}, apperr.Wrap(apperr.Upstream, "failed to create payment intent", err)
	}
	return Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

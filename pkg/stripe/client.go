package stripe

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/balance"
	"github.com/stripe/stripe-go/v81/paymentintent"
)

// CaptureRequest describes a single all-or-nothing card charge. AmountMinor
// is in the currency's smallest unit.
type CaptureRequest struct {
	AmountMinor     int64
	Currency        string
	Description     string
	PaymentMethodID string
	IdempotencyKey  string
}

// defines the methods that any of payment client must implement.
type Client interface {
	CapturePayment(ctx context.Context, req CaptureRequest) (*stripe.PaymentIntent, error)
	Ping(ctx context.Context) error
}

type stripeClient struct{}

func NewStripeClient(apiKey string) Client {
	stripe.Key = apiKey

	return &stripeClient{}
}

// CapturePayment creates and confirms a PaymentIntent in one call. Anything
// other than a succeeded intent is reported as an error.
func (s *stripeClient) CapturePayment(ctx context.Context, req CaptureRequest) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: ctx,
		},
		Amount:        stripe.Int64(req.AmountMinor),
		Currency:      stripe.String(strings.ToLower(req.Currency)),
		Description:   stripe.String(req.Description),
		PaymentMethod: stripe.String(req.PaymentMethodID),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}

	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return intent, fmt.Errorf("payment intent %s was not captured, status: %s", intent.ID, intent.Status)
	}

	return intent, nil
}

// Ping fetches the account balance, which needs nothing but a valid key.
func (s *stripeClient) Ping(ctx context.Context) error {
	params := &stripe.BalanceParams{
		Params: stripe.Params{
			Context: ctx,
		},
	}

	if _, err := balance.Get(params); err != nil {
		return fmt.Errorf("failed to connect to stripe: %w", err)
	}

	return nil
}
